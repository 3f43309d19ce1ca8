package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/schemakit/schemakit/pkg/schemakit"
)

// SchemaHandler handles HTTP requests for schema definitions using pkg/schemakit
type SchemaHandler struct {
	service schemakit.Service
}

// NewSchemaHandler creates a new schema handler
func NewSchemaHandler(service schemakit.Service) *SchemaHandler {
	return &SchemaHandler{service: service}
}

// Routes returns the routes for schemas
func (h *SchemaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSchema)
	r.Get("/", h.ListSchemas)
	r.Get("/by-name/{systemName}", h.GetSchemaBySystemName)
	r.Get("/{id}", h.GetSchema)
	r.Delete("/{id}", h.DeleteSchema)

	// Lifecycle
	r.Post("/{id}/activate", h.ActivateSchema)
	r.Post("/{id}/archive", h.ArchiveSchema)
	r.Post("/{id}/deprecate", h.DeprecateSchema)
	r.Post("/{id}/restore", h.RestoreSchema)
	r.Post("/{id}/clone", h.CloneSchema)
	r.Get("/{id}/history", h.GetSchemaHistory)

	// Fields
	r.Post("/{id}/fields", h.AddField)
	r.Put("/{id}/fields/order", h.ReorderFields)
	r.Delete("/{id}/fields/{systemName}", h.RemoveField)

	// Relations
	r.Post("/{id}/relations", h.AddRelation)
	r.Get("/{id}/relations/available", h.GetAvailableRelations)

	return r
}

// CreateSchemaRequest is the request body for creating a schema
type CreateSchemaRequest struct {
	Name            string `json:"name"`
	SystemName      string `json:"system_name"`
	Description     string `json:"description,omitempty"`
	Icon            string `json:"icon,omitempty"`
	Color           string `json:"color,omitempty"`
	IsSystem        bool   `json:"is_system,omitempty"`
	AllowsHierarchy bool   `json:"allows_hierarchy,omitempty"`
	Configuration   string `json:"configuration,omitempty"`
	CreatedBy       string `json:"created_by"`
}

// lifecycleRequest is the shared request body for lifecycle transitions
type lifecycleRequest struct {
	UpdatedBy string `json:"updated_by"`
	Reason    string `json:"reason,omitempty"`
}

// CreateSchema creates a new draft schema
func (h *SchemaHandler) CreateSchema(w http.ResponseWriter, r *http.Request) {
	var req CreateSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	schema, err := h.service.CreateSchema(r.Context(), schemakit.CreateSchemaRequest{
		Name:            req.Name,
		SystemName:      req.SystemName,
		Description:     req.Description,
		Icon:            req.Icon,
		Color:           req.Color,
		IsSystem:        req.IsSystem,
		AllowsHierarchy: req.AllowsHierarchy,
		Configuration:   req.Configuration,
		CreatedBy:       req.CreatedBy,
	})
	if err != nil {
		slog.Error("Failed to create schema", "system_name", req.SystemName, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Schema created", "schema_id", schema.ID.String(), "system_name", schema.SystemName)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, schema)
}

// GetSchema retrieves a schema by ID
func (h *SchemaHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}

	schema, err := h.service.GetSchema(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get schema", "schema_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, schema)
}

// GetSchemaBySystemName retrieves a schema by its system name
func (h *SchemaHandler) GetSchemaBySystemName(w http.ResponseWriter, r *http.Request) {
	systemName := chi.URLParam(r, "systemName")

	schema, err := h.service.GetSchemaBySystemName(r.Context(), systemName)
	if err != nil {
		slog.Error("Failed to get schema", "system_name", systemName, "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, schema)
}

// ListSchemas lists schemas, optionally filtered by status
// Query parameters:
//   - status: filter by lifecycle status
//   - include_deleted=true: include soft-deleted schemas
func (h *SchemaHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	var params schemakit.ListSchemasParams
	if s := r.URL.Query().Get("status"); s != "" {
		status := schemakit.SchemaStatus(s)
		params.Status = &status
	}
	params.IncludeDeleted = r.URL.Query().Get("include_deleted") == "true"

	schemas, err := h.service.ListSchemas(r.Context(), params)
	if err != nil {
		slog.Error("Failed to list schemas", "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, schemas)
}

// ActivateSchema transitions a draft schema to active
func (h *SchemaHandler) ActivateSchema(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}
	var req lifecycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.ActivateSchema(r.Context(), id, req.UpdatedBy); err != nil {
		slog.Error("Failed to activate schema", "schema_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Schema activated", "schema_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveSchema archives a schema
func (h *SchemaHandler) ArchiveSchema(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "archive", func(r *http.Request, id uuid.UUID, req lifecycleRequest) error {
		return h.service.ArchiveSchema(r.Context(), id, req.UpdatedBy, req.Reason)
	})
}

// DeprecateSchema marks a schema as deprecated
func (h *SchemaHandler) DeprecateSchema(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "deprecate", func(r *http.Request, id uuid.UUID, req lifecycleRequest) error {
		return h.service.DeprecateSchema(r.Context(), id, req.UpdatedBy, req.Reason)
	})
}

// DeleteSchema soft-deletes a schema
func (h *SchemaHandler) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "delete", func(r *http.Request, id uuid.UUID, req lifecycleRequest) error {
		return h.service.DeleteSchema(r.Context(), id, req.UpdatedBy, req.Reason)
	})
}

// RestoreSchema restores a soft-deleted schema
func (h *SchemaHandler) RestoreSchema(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "restore", func(r *http.Request, id uuid.UUID, req lifecycleRequest) error {
		return h.service.RestoreSchema(r.Context(), id, req.UpdatedBy)
	})
}

// lifecycle runs a schema lifecycle transition with the shared request shape.
func (h *SchemaHandler) lifecycle(w http.ResponseWriter, r *http.Request, op string, fn func(*http.Request, uuid.UUID, lifecycleRequest) error) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}
	var req lifecycleRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := fn(r, id, req); err != nil {
		slog.Error("Schema lifecycle transition failed", "schema_id", id.String(), "op", op, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Schema lifecycle transition", "schema_id", id.String(), "op", op)
	w.WriteHeader(http.StatusNoContent)
}

// CloneSchemaRequest is the request body for cloning a schema
type CloneSchemaRequest struct {
	NewSystemName string `json:"new_system_name,omitempty"`
	CreatedBy     string `json:"created_by"`
}

// CloneSchema creates a draft copy of a schema
func (h *SchemaHandler) CloneSchema(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}
	var req CloneSchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	clone, err := h.service.CloneSchema(r.Context(), schemakit.CloneSchemaRequest{
		SchemaID:      id,
		NewSystemName: req.NewSystemName,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		slog.Error("Failed to clone schema", "schema_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Schema cloned", "schema_id", id.String(), "clone_id", clone.ID.String())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, clone)
}

// GetSchemaHistory retrieves the audit history of a schema
func (h *SchemaHandler) GetSchemaHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}

	history, err := h.service.GetSchemaHistory(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get schema history", "schema_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, history)
}

// AddFieldRequest is the request body for adding a field
type AddFieldRequest struct {
	Name            string `json:"name"`
	SystemName      string `json:"system_name"`
	Type            string `json:"type"`
	Description     string `json:"description,omitempty"`
	IsRequired      bool   `json:"is_required,omitempty"`
	IsSystem        bool   `json:"is_system,omitempty"`
	IsSearchable    bool   `json:"is_searchable,omitempty"`
	IsFilterable    bool   `json:"is_filterable,omitempty"`
	DefaultValue    string `json:"default_value,omitempty"`
	Configuration   string `json:"configuration,omitempty"`
	ValidationRules string `json:"validation_rules,omitempty"`
	UpdatedBy       string `json:"updated_by"`
}

// AddField adds a field to a schema
func (h *SchemaHandler) AddField(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}
	var req AddFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	field, err := h.service.AddField(r.Context(), schemakit.AddFieldRequest{
		SchemaID:        id,
		Name:            req.Name,
		SystemName:      req.SystemName,
		Type:            schemakit.FieldType(req.Type),
		Description:     req.Description,
		IsRequired:      req.IsRequired,
		IsSystem:        req.IsSystem,
		IsSearchable:    req.IsSearchable,
		IsFilterable:    req.IsFilterable,
		DefaultValue:    req.DefaultValue,
		Configuration:   req.Configuration,
		ValidationRules: req.ValidationRules,
		UpdatedBy:       req.UpdatedBy,
	})
	if err != nil {
		slog.Error("Failed to add field", "schema_id", id.String(), "system_name", req.SystemName, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Field added", "schema_id", id.String(), "field", field.SystemName)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, field)
}

// RemoveField removes a non-system field from a schema
func (h *SchemaHandler) RemoveField(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}
	systemName := chi.URLParam(r, "systemName")
	updatedBy := r.URL.Query().Get("updated_by")

	if err := h.service.RemoveField(r.Context(), id, systemName, updatedBy); err != nil {
		slog.Error("Failed to remove field", "schema_id", id.String(), "field", systemName, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Field removed", "schema_id", id.String(), "field", systemName)
	w.WriteHeader(http.StatusNoContent)
}

// ReorderFieldsRequest is the request body for reordering fields
type ReorderFieldsRequest struct {
	OrderedSystemNames []string `json:"ordered_system_names"`
	UpdatedBy          string   `json:"updated_by"`
}

// ReorderFields reassigns display order for all fields of a schema
func (h *SchemaHandler) ReorderFields(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}
	var req ReorderFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.service.ReorderFields(r.Context(), schemakit.ReorderFieldsRequest{
		SchemaID:           id,
		OrderedSystemNames: req.OrderedSystemNames,
		UpdatedBy:          req.UpdatedBy,
	})
	if err != nil {
		slog.Error("Failed to reorder fields", "schema_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Fields reordered", "schema_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// AddRelationRequest is the request body for adding a schema relation
type AddRelationRequest struct {
	TargetSchemaID string `json:"target_schema_id"`
	Name           string `json:"name"`
	SystemName     string `json:"system_name"`
	Cardinality    string `json:"cardinality"`
	IsRequired     bool   `json:"is_required,omitempty"`
	Configuration  string `json:"configuration,omitempty"`
	UpdatedBy      string `json:"updated_by"`
}

// AddRelation adds a relation from one schema to another
func (h *SchemaHandler) AddRelation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}
	var req AddRelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	targetID, err := uuid.Parse(req.TargetSchemaID)
	if err != nil {
		slog.Error("Invalid target schema ID", "target_schema_id", req.TargetSchemaID, "error", err)
		http.Error(w, "Invalid target schema ID", http.StatusBadRequest)
		return
	}

	relation, err := h.service.AddSchemaRelation(r.Context(), schemakit.AddRelationRequest{
		SourceSchemaID: id,
		TargetSchemaID: targetID,
		Name:           req.Name,
		SystemName:     req.SystemName,
		Cardinality:    schemakit.RelationCardinality(req.Cardinality),
		IsRequired:     req.IsRequired,
		Configuration:  req.Configuration,
		UpdatedBy:      req.UpdatedBy,
	})
	if err != nil {
		slog.Error("Failed to add relation", "schema_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Relation added", "schema_id", id.String(), "relation", relation.SystemName)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, relation)
}

// GetAvailableRelations lists active schemas a schema can relate to
func (h *SchemaHandler) GetAvailableRelations(w http.ResponseWriter, r *http.Request) {
	id, ok := h.schemaID(w, r)
	if !ok {
		return
	}

	relations, err := h.service.GetAvailableRelations(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get available relations", "schema_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, relations)
}

// schemaID parses the {id} URL parameter, writing a 400 on failure.
func (h *SchemaHandler) schemaID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid schema ID", "schema_id", idStr, "error", err)
		http.Error(w, "Invalid schema ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
