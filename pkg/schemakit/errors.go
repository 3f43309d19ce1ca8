package schemakit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrSchemaNotFound indicates a schema was not found
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrFieldNotFound indicates a field was not found on the schema
	ErrFieldNotFound = errors.New("field not found")

	// ErrItemNotFound indicates an item was not found
	ErrItemNotFound = errors.New("item not found")

	// ErrRelationNotFound indicates a relation was not found
	ErrRelationNotFound = errors.New("relation not found")

	// ErrInvalidArgument indicates malformed or blank required input
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState indicates an operation not permitted from the current lifecycle state
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidValue indicates a strict parse failure while storing a value
	ErrInvalidValue = errors.New("invalid value")

	// ErrConcurrentModification indicates the stored aggregate changed since
	// it was loaded, so the save was rejected
	ErrConcurrentModification = errors.New("concurrent modification")
)

// ValidationError aggregates business-rule violations on a value or schema.
// It always carries the complete list of violations, never just the first.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// NewValidationError wraps a list of violation messages.
func NewValidationError(errs []string) *ValidationError {
	return &ValidationError{Errors: errs}
}

// SchemaError represents an error related to schema operations
type SchemaError struct {
	SchemaID uuid.UUID
	Op       string
	Err      error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema operation %s failed for schema %s: %v", e.Op, e.SchemaID, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ItemError represents an error related to item operations
type ItemError struct {
	ItemID uuid.UUID
	Op     string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item operation %s failed for item %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}
