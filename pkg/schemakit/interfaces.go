package schemakit

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for schema and item
// aggregates. Implementations must return aggregates with their owned
// collections (fields, relations, values, history) fully materialized;
// the engine never compensates for a partial load. Save operations persist
// the aggregate and its owned collections atomically.
type Repository interface {
	// Schema operations
	CreateSchema(ctx context.Context, schema *Schema) error
	GetSchema(ctx context.Context, id uuid.UUID) (*Schema, error)
	GetSchemaBySystemName(ctx context.Context, systemName string) (*Schema, error)
	SaveSchema(ctx context.Context, schema *Schema) error
	ListSchemas(ctx context.Context, params ListSchemasParams) ([]*Schema, error)

	// Item operations
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	GetItemByPublicID(ctx context.Context, publicID string) (*Item, error)
	GetItemBySlug(ctx context.Context, schemaID uuid.UUID, slug string) (*Item, error)
	SaveItem(ctx context.Context, item *Item) error
	ListItems(ctx context.Context, params ListItemsParams) ([]*Item, error)
}

// ListSchemasParams defines filtering options for listing schemas.
type ListSchemasParams struct {
	Status         *SchemaStatus
	IncludeDeleted bool
}

// ListItemsParams defines filtering options for listing items.
type ListItemsParams struct {
	SchemaID       *uuid.UUID
	Status         *ItemStatus
	CurrentOnly    bool
	IncludeDeleted bool
	Limit          *int
	Offset         *int
}
