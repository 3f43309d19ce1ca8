package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/schemakit/schemakit/pkg/schemakit"
)

// ItemHandler handles HTTP requests for items using pkg/schemakit
type ItemHandler struct {
	service schemakit.Service
}

// NewItemHandler creates a new item handler
func NewItemHandler(service schemakit.Service) *ItemHandler {
	return &ItemHandler{service: service}
}

// Routes returns the routes for items
func (h *ItemHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateItem)
	r.Get("/", h.ListItems)
	r.Post("/search", h.SearchItems)
	r.Get("/public/{publicID}", h.GetItemByPublicID)
	r.Get("/{id}", h.GetItem)
	r.Delete("/{id}", h.DeleteItem)

	// Values
	r.Put("/{id}/values/{systemName}", h.SetItemValue)
	r.Get("/{id}/values/{systemName}", h.GetItemValue)

	// Lifecycle
	r.Post("/{id}/publish", h.PublishItem)
	r.Post("/{id}/unpublish", h.UnpublishItem)
	r.Post("/{id}/archive", h.ArchiveItem)
	r.Post("/{id}/unarchive", h.UnarchiveItem)
	r.Post("/{id}/restore", h.RestoreItem)
	r.Get("/{id}/history", h.GetItemHistory)

	// Versioning
	r.Post("/{id}/versions", h.CreateItemVersion)
	r.Post("/{id}/versions/{versionID}/restore", h.RestoreItemVersion)

	// Relations
	r.Post("/{id}/relations", h.AddItemRelation)
	r.Delete("/{id}/relations/{targetID}", h.RemoveItemRelation)
	r.Get("/{id}/relations", h.GetRelatedItems)

	return r
}

// CreateItemRequest is the request body for creating an item
type CreateItemRequest struct {
	SchemaID     string  `json:"schema_id"`
	DisplayName  string  `json:"display_name"`
	ParentItemID *string `json:"parent_item_id,omitempty"`
	CreatedBy    string  `json:"created_by"`
}

// CreateItem creates a new draft item against an active schema
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	schemaID, err := uuid.Parse(req.SchemaID)
	if err != nil {
		slog.Error("Invalid schema ID", "schema_id", req.SchemaID, "error", err)
		http.Error(w, "Invalid schema ID", http.StatusBadRequest)
		return
	}

	createReq := schemakit.CreateItemRequest{
		SchemaID:    schemaID,
		DisplayName: req.DisplayName,
		CreatedBy:   req.CreatedBy,
	}
	if req.ParentItemID != nil {
		parentID, err := uuid.Parse(*req.ParentItemID)
		if err != nil {
			slog.Error("Invalid parent item ID", "parent_item_id", *req.ParentItemID, "error", err)
			http.Error(w, "Invalid parent item ID", http.StatusBadRequest)
			return
		}
		createReq.ParentItemID = &parentID
	}

	item, err := h.service.CreateItem(r.Context(), createReq)
	if err != nil {
		slog.Error("Failed to create item", "schema_id", req.SchemaID, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Item created", "item_id", item.ID.String(), "public_id", item.PublicID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

// GetItem retrieves an item by ID
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get item", "item_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, item)
}

// GetItemByPublicID retrieves an item by its public identifier
func (h *ItemHandler) GetItemByPublicID(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")

	item, err := h.service.GetItemByPublicID(r.Context(), publicID)
	if err != nil {
		slog.Error("Failed to get item", "public_id", publicID, "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, item)
}

// ListItems lists items
// Query parameters:
//   - schema_id: filter by schema
//   - status: filter by lifecycle status
//   - slug: look up a single current item by slug (requires schema_id)
//   - current_only=true: only current versions
//   - include_deleted=true: include soft-deleted items
//   - limit, offset: pagination
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var params schemakit.ListItemsParams
	if s := q.Get("schema_id"); s != "" {
		schemaID, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "Invalid schema ID", http.StatusBadRequest)
			return
		}
		params.SchemaID = &schemaID
	}

	// Slug lookup returns a single item.
	if slug := q.Get("slug"); slug != "" {
		if params.SchemaID == nil {
			http.Error(w, "slug lookup requires schema_id", http.StatusBadRequest)
			return
		}
		item, err := h.service.GetItemBySlug(r.Context(), *params.SchemaID, slug)
		if err != nil {
			slog.Error("Failed to get item by slug", "slug", slug, "error", err)
			writeError(w, r, err)
			return
		}
		render.JSON(w, r, item)
		return
	}

	if s := q.Get("status"); s != "" {
		status := schemakit.ItemStatus(s)
		params.Status = &status
	}
	params.CurrentOnly = q.Get("current_only") == "true"
	params.IncludeDeleted = q.Get("include_deleted") == "true"
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		params.Limit = &limit
	}
	if s := q.Get("offset"); s != "" {
		offset, err := strconv.Atoi(s)
		if err != nil || offset < 0 {
			http.Error(w, "Invalid offset", http.StatusBadRequest)
			return
		}
		params.Offset = &offset
	}

	items, err := h.service.ListItems(r.Context(), params)
	if err != nil {
		slog.Error("Failed to list items", "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, items)
}

// SetItemValueRequest is the request body for writing a field value
type SetItemValueRequest struct {
	Value     interface{} `json:"value"`
	UpdatedBy string      `json:"updated_by"`
}

// SetItemValue validates and stores one field value on an item
func (h *ItemHandler) SetItemValue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	systemName := chi.URLParam(r, "systemName")

	var req SetItemValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.service.SetItemValue(r.Context(), schemakit.SetItemValueRequest{
		ItemID:     id,
		SystemName: systemName,
		Value:      req.Value,
		UpdatedBy:  req.UpdatedBy,
	})
	if err != nil {
		slog.Error("Failed to set item value", "item_id", id.String(), "field", systemName, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Item value set", "item_id", id.String(), "field", systemName)
	w.WriteHeader(http.StatusNoContent)
}

// GetItemValue retrieves one field value, falling back to the field default
func (h *ItemHandler) GetItemValue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	systemName := chi.URLParam(r, "systemName")

	value, err := h.service.GetItemValue(r.Context(), id, systemName)
	if err != nil {
		slog.Error("Failed to get item value", "item_id", id.String(), "field", systemName, "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"field": systemName, "value": value})
}

// PublishItem transitions a draft item to published
func (h *ItemHandler) PublishItem(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "publish", h.service.PublishItem)
}

// UnpublishItem returns a published item to draft
func (h *ItemHandler) UnpublishItem(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "unpublish", h.service.UnpublishItem)
}

// ArchiveItem archives an item
func (h *ItemHandler) ArchiveItem(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "archive", h.service.ArchiveItem)
}

// UnarchiveItem returns an archived item to draft
func (h *ItemHandler) UnarchiveItem(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "unarchive", h.service.UnarchiveItem)
}

// DeleteItem soft-deletes an item
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "delete", h.service.DeleteItem)
}

// RestoreItem restores a soft-deleted item to draft
func (h *ItemHandler) RestoreItem(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "restore", h.service.RestoreItem)
}

// lifecycle runs an item lifecycle transition with the shared request shape.
func (h *ItemHandler) lifecycle(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id uuid.UUID, actor string) error) {
	id, ok := h.itemID(w, r)
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

	if err := fn(r.Context(), id, req.UpdatedBy); err != nil {
		slog.Error("Item lifecycle transition failed", "item_id", id.String(), "op", op, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Item lifecycle transition", "item_id", id.String(), "op", op)
	w.WriteHeader(http.StatusNoContent)
}

// GetItemHistory retrieves the audit history of an item
func (h *ItemHandler) GetItemHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	history, err := h.service.GetItemHistory(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get item history", "item_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, history)
}

// CreateItemVersion branches a new draft version from an item
func (h *ItemHandler) CreateItemVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	var req lifecycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	version, err := h.service.CreateItemVersion(r.Context(), id, req.UpdatedBy)
	if err != nil {
		slog.Error("Failed to create item version", "item_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Item version created", "item_id", id.String(), "version_id", version.ID.String(), "version", version.Version)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, version)
}

// RestoreItemVersion copies values back from an older version
func (h *ItemHandler) RestoreItemVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	versionIDStr := chi.URLParam(r, "versionID")
	versionID, err := uuid.Parse(versionIDStr)
	if err != nil {
		slog.Error("Invalid version ID", "version_id", versionIDStr, "error", err)
		http.Error(w, "Invalid version ID", http.StatusBadRequest)
		return
	}
	var req lifecycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.RestoreItemVersion(r.Context(), id, versionID, req.UpdatedBy); err != nil {
		slog.Error("Failed to restore item version", "item_id", id.String(), "version_id", versionIDStr, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Item version restored", "item_id", id.String(), "version_id", versionIDStr)
	w.WriteHeader(http.StatusNoContent)
}

// AddItemRelationRequest is the request body for linking two items
type AddItemRelationRequest struct {
	TargetItemID string `json:"target_item_id"`
	RelationType string `json:"relation_type"`
	UpdatedBy    string `json:"updated_by"`
}

// AddItemRelation links an item to a target item
func (h *ItemHandler) AddItemRelation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	var req AddItemRelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	targetID, err := uuid.Parse(req.TargetItemID)
	if err != nil {
		slog.Error("Invalid target item ID", "target_item_id", req.TargetItemID, "error", err)
		http.Error(w, "Invalid target item ID", http.StatusBadRequest)
		return
	}

	err = h.service.AddItemRelation(r.Context(), schemakit.AddItemRelationRequest{
		ItemID:       id,
		TargetItemID: targetID,
		RelationType: req.RelationType,
		UpdatedBy:    req.UpdatedBy,
	})
	if err != nil {
		slog.Error("Failed to add item relation", "item_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Item relation added", "item_id", id.String(), "target_item_id", req.TargetItemID)
	w.WriteHeader(http.StatusNoContent)
}

// RemoveItemRelation removes a typed link between two items
func (h *ItemHandler) RemoveItemRelation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	targetIDStr := chi.URLParam(r, "targetID")
	targetID, err := uuid.Parse(targetIDStr)
	if err != nil {
		slog.Error("Invalid target item ID", "target_item_id", targetIDStr, "error", err)
		http.Error(w, "Invalid target item ID", http.StatusBadRequest)
		return
	}
	relationType := r.URL.Query().Get("type")
	updatedBy := r.URL.Query().Get("updated_by")

	if err := h.service.RemoveItemRelation(r.Context(), id, targetID, relationType, updatedBy); err != nil {
		slog.Error("Failed to remove item relation", "item_id", id.String(), "target_item_id", targetIDStr, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Item relation removed", "item_id", id.String(), "target_item_id", targetIDStr)
	w.WriteHeader(http.StatusNoContent)
}

// GetRelatedItems lists items linked from an item
// Query parameters:
//   - type: filter by relation type (empty matches all)
func (h *ItemHandler) GetRelatedItems(w http.ResponseWriter, r *http.Request) {
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	relationType := r.URL.Query().Get("type")

	items, err := h.service.GetRelatedItems(r.Context(), id, relationType)
	if err != nil {
		slog.Error("Failed to get related items", "item_id", id.String(), "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, items)
}

// SearchItemsRequest is the request body for searching items
type SearchItemsRequest struct {
	SchemaID     string                 `json:"schema_id"`
	Query        string                 `json:"query,omitempty"`
	SearchFields bool                   `json:"search_fields,omitempty"`
	Filters      map[string]interface{} `json:"filters,omitempty"`
}

// SearchItems searches current items of a schema by query and field filters
func (h *ItemHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	var req SearchItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	schemaID, err := uuid.Parse(req.SchemaID)
	if err != nil {
		slog.Error("Invalid schema ID", "schema_id", req.SchemaID, "error", err)
		http.Error(w, "Invalid schema ID", http.StatusBadRequest)
		return
	}

	items, err := h.service.SearchItems(r.Context(), schemakit.SearchItemsRequest{
		SchemaID:     schemaID,
		Query:        req.Query,
		SearchFields: req.SearchFields,
		Filters:      req.Filters,
	})
	if err != nil {
		slog.Error("Failed to search items", "schema_id", req.SchemaID, "error", err)
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, items)
}

// itemID parses the {id} URL parameter, writing a 400 on failure.
func (h *ItemHandler) itemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid item ID", "item_id", idStr, "error", err)
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
