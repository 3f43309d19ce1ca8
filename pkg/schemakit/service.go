package schemakit

import (
	"context"

	"github.com/google/uuid"
)

// Service orchestrates schema and item operations over a Repository:
// aggregates are loaded, mutated in memory and saved back whole.
type Service interface {
	// Schema operations
	CreateSchema(ctx context.Context, req CreateSchemaRequest) (*Schema, error)
	GetSchema(ctx context.Context, id uuid.UUID) (*Schema, error)
	GetSchemaBySystemName(ctx context.Context, systemName string) (*Schema, error)
	ListSchemas(ctx context.Context, params ListSchemasParams) ([]*Schema, error)
	ActivateSchema(ctx context.Context, id uuid.UUID, updatedBy string) error
	ArchiveSchema(ctx context.Context, id uuid.UUID, updatedBy, reason string) error
	DeprecateSchema(ctx context.Context, id uuid.UUID, updatedBy, reason string) error
	DeleteSchema(ctx context.Context, id uuid.UUID, deletedBy, reason string) error
	RestoreSchema(ctx context.Context, id uuid.UUID, updatedBy string) error
	CloneSchema(ctx context.Context, req CloneSchemaRequest) (*Schema, error)
	GetSchemaHistory(ctx context.Context, id uuid.UUID) ([]AuditEntry, error)

	// Field operations
	AddField(ctx context.Context, req AddFieldRequest) (*Field, error)
	RemoveField(ctx context.Context, schemaID uuid.UUID, systemName, updatedBy string) error
	ReorderFields(ctx context.Context, req ReorderFieldsRequest) error

	// Schema relation operations
	AddSchemaRelation(ctx context.Context, req AddRelationRequest) (*Relation, error)
	GetAvailableRelations(ctx context.Context, schemaID uuid.UUID) ([]*Relation, error)

	// Item operations
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	GetItemByPublicID(ctx context.Context, publicID string) (*Item, error)
	GetItemBySlug(ctx context.Context, schemaID uuid.UUID, slug string) (*Item, error)
	ListItems(ctx context.Context, params ListItemsParams) ([]*Item, error)
	SetItemValue(ctx context.Context, req SetItemValueRequest) error
	GetItemValue(ctx context.Context, itemID uuid.UUID, systemName string) (interface{}, error)
	PublishItem(ctx context.Context, id uuid.UUID, updatedBy string) error
	UnpublishItem(ctx context.Context, id uuid.UUID, updatedBy string) error
	ArchiveItem(ctx context.Context, id uuid.UUID, updatedBy string) error
	UnarchiveItem(ctx context.Context, id uuid.UUID, updatedBy string) error
	DeleteItem(ctx context.Context, id uuid.UUID, deletedBy string) error
	RestoreItem(ctx context.Context, id uuid.UUID, updatedBy string) error
	GetItemHistory(ctx context.Context, id uuid.UUID) ([]AuditEntry, error)

	// Item versioning
	CreateItemVersion(ctx context.Context, id uuid.UUID, createdBy string) (*Item, error)
	RestoreItemVersion(ctx context.Context, id, versionID uuid.UUID, restoredBy string) error

	// Item relations
	AddItemRelation(ctx context.Context, req AddItemRelationRequest) error
	RemoveItemRelation(ctx context.Context, itemID, targetItemID uuid.UUID, relationType, updatedBy string) error
	GetRelatedItems(ctx context.Context, itemID uuid.UUID, relationType string) ([]*Item, error)

	// Item querying
	SearchItems(ctx context.Context, req SearchItemsRequest) ([]*Item, error)
}
