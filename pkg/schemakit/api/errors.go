package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/schemakit/schemakit/pkg/schemakit"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, schemakit.ErrSchemaNotFound),
		errors.Is(err, schemakit.ErrFieldNotFound),
		errors.Is(err, schemakit.ErrItemNotFound),
		errors.Is(err, schemakit.ErrRelationNotFound):
		return http.StatusNotFound
	case errors.Is(err, schemakit.ErrInvalidArgument),
		errors.Is(err, schemakit.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, schemakit.ErrInvalidState),
		errors.Is(err, schemakit.ErrConcurrentModification):
		return http.StatusConflict
	default:
		var verr *schemakit.ValidationError
		if errors.As(err, &verr) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	}
}

// writeError renders a domain error with its mapped status. Validation
// failures carry the individual messages in the details field.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var verr *schemakit.ValidationError
	if errors.As(err, &verr) {
		resp.Details = verr.Errors
	}
	render.Status(r, statusForError(err))
	render.JSON(w, r, resp)
}
