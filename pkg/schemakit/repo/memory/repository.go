package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/schemakit/schemakit/pkg/schemakit"
)

// Repository implements schemakit.Repository using in-memory storage.
// Aggregates are deep-copied on the way in and out so callers can never
// mutate stored state without going through a save. Saves check the
// aggregate's concurrency token against the stored one and reject stale
// writes.
type Repository struct {
	mu                  sync.RWMutex
	schemas             map[uuid.UUID]*schemakit.Schema
	schemasBySystemName map[string]uuid.UUID
	items               map[uuid.UUID]*schemakit.Item
	itemsByPublicID     map[string]uuid.UUID
}

// New creates a new in-memory repository
func New() schemakit.Repository {
	return &Repository{
		schemas:             make(map[uuid.UUID]*schemakit.Schema),
		schemasBySystemName: make(map[string]uuid.UUID),
		items:               make(map[uuid.UUID]*schemakit.Item),
		itemsByPublicID:     make(map[string]uuid.UUID),
	}
}

// Schema operations

func (r *Repository) CreateSchema(ctx context.Context, schema *schemakit.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemasBySystemName[schema.SystemName]; exists {
		return fmt.Errorf("schema system name %q already exists", schema.SystemName)
	}
	r.schemas[schema.ID] = copySchema(schema)
	r.schemasBySystemName[schema.SystemName] = schema.ID
	return nil
}

func (r *Repository) GetSchema(ctx context.Context, id uuid.UUID) (*schemakit.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[id]
	if !exists {
		return nil, schemakit.ErrSchemaNotFound
	}
	return copySchema(schema), nil
}

func (r *Repository) GetSchemaBySystemName(ctx context.Context, systemName string) (*schemakit.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.schemasBySystemName[systemName]
	if !exists {
		return nil, schemakit.ErrSchemaNotFound
	}
	return copySchema(r.schemas[id]), nil
}

func (r *Repository) SaveSchema(ctx context.Context, schema *schemakit.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.schemas[schema.ID]
	if !exists {
		return schemakit.ErrSchemaNotFound
	}
	if stored.ConcurrencyToken != schema.ConcurrencyToken {
		return schemakit.ErrConcurrentModification
	}
	if stored.SystemName != schema.SystemName {
		delete(r.schemasBySystemName, stored.SystemName)
		r.schemasBySystemName[schema.SystemName] = schema.ID
	}
	schema.ConcurrencyToken++
	r.schemas[schema.ID] = copySchema(schema)
	return nil
}

func (r *Repository) ListSchemas(ctx context.Context, params schemakit.ListSchemasParams) ([]*schemakit.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*schemakit.Schema
	for _, schema := range r.schemas {
		if schema.DeletedAt != nil && !params.IncludeDeleted {
			continue
		}
		if params.Status != nil && schema.Status != *params.Status {
			continue
		}
		result = append(result, copySchema(schema))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SystemName < result[j].SystemName
	})
	return result, nil
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *schemakit.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = copyItem(item)
	r.itemsByPublicID[item.PublicID] = item.ID
	return nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*schemakit.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, schemakit.ErrItemNotFound
	}
	return copyItem(item), nil
}

func (r *Repository) GetItemByPublicID(ctx context.Context, publicID string) (*schemakit.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.itemsByPublicID[publicID]
	if !exists {
		return nil, schemakit.ErrItemNotFound
	}
	return copyItem(r.items[id]), nil
}

func (r *Repository) GetItemBySlug(ctx context.Context, schemaID uuid.UUID, slug string) (*schemakit.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.SchemaID == schemaID && item.Slug == slug && item.IsCurrentVersion && item.DeletedAt == nil {
			return copyItem(item), nil
		}
	}
	return nil, schemakit.ErrItemNotFound
}

func (r *Repository) SaveItem(ctx context.Context, item *schemakit.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.items[item.ID]
	if !exists {
		return schemakit.ErrItemNotFound
	}
	if stored.ConcurrencyToken != item.ConcurrencyToken {
		return schemakit.ErrConcurrentModification
	}
	item.ConcurrencyToken++
	r.items[item.ID] = copyItem(item)
	return nil
}

func (r *Repository) ListItems(ctx context.Context, params schemakit.ListItemsParams) ([]*schemakit.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*schemakit.Item
	for _, item := range r.items {
		if item.DeletedAt != nil && !params.IncludeDeleted {
			continue
		}
		if params.SchemaID != nil && item.SchemaID != *params.SchemaID {
			continue
		}
		if params.Status != nil && item.Status != *params.Status {
			continue
		}
		if params.CurrentOnly && !item.IsCurrentVersion {
			continue
		}
		result = append(result, copyItem(item))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	result = paginate(result, params.Limit, params.Offset)
	return result, nil
}

func paginate(items []*schemakit.Item, limit, offset *int) []*schemakit.Item {
	if offset != nil {
		if *offset >= len(items) {
			return nil
		}
		items = items[*offset:]
	}
	if limit != nil && *limit < len(items) {
		items = items[:*limit]
	}
	return items
}

// copySchema deep-copies a schema aggregate including its owned collections.
// The transient TargetSchema pointers are not stored.
func copySchema(schema *schemakit.Schema) *schemakit.Schema {
	cp := *schema
	cp.Fields = make([]*schemakit.Field, len(schema.Fields))
	for i, f := range schema.Fields {
		fieldCopy := *f
		cp.Fields[i] = &fieldCopy
	}
	cp.Relations = make([]*schemakit.Relation, len(schema.Relations))
	for i, r := range schema.Relations {
		relCopy := *r
		relCopy.TargetSchema = nil
		cp.Relations[i] = &relCopy
	}
	cp.History = append([]schemakit.AuditEntry(nil), schema.History...)
	return &cp
}

// copyItem deep-copies an item aggregate including its owned collections.
// The transient Schema pointer is not stored.
func copyItem(item *schemakit.Item) *schemakit.Item {
	cp := *item
	cp.Schema = nil
	cp.Values = make(map[uuid.UUID]*schemakit.Value, len(item.Values))
	for fieldID, v := range item.Values {
		valueCopy := *v
		cp.Values[fieldID] = &valueCopy
	}
	cp.Relations = make([]*schemakit.ItemRelation, len(item.Relations))
	for i, r := range item.Relations {
		relCopy := *r
		cp.Relations[i] = &relCopy
	}
	cp.History = append([]schemakit.AuditEntry(nil), item.History...)
	return &cp
}
