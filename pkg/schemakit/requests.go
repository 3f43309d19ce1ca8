package schemakit

import "github.com/google/uuid"

// CreateSchemaRequest contains parameters for creating a schema.
type CreateSchemaRequest struct {
	Name            string
	SystemName      string
	Description     string
	Icon            string
	Color           string
	IsSystem        bool
	AllowsHierarchy bool
	Configuration   string
	CreatedBy       string
}

// AddFieldRequest contains parameters for adding a field to a schema.
type AddFieldRequest struct {
	SchemaID        uuid.UUID
	Name            string
	SystemName      string
	Type            FieldType
	Description     string
	IsRequired      bool
	IsSystem        bool
	IsSearchable    bool
	IsFilterable    bool
	DefaultValue    string
	Configuration   string
	ValidationRules string
	UpdatedBy       string
}

// ReorderFieldsRequest contains parameters for reordering a schema's fields.
type ReorderFieldsRequest struct {
	SchemaID           uuid.UUID
	OrderedSystemNames []string
	UpdatedBy          string
}

// AddRelationRequest contains parameters for adding a schema relation.
type AddRelationRequest struct {
	SourceSchemaID uuid.UUID
	TargetSchemaID uuid.UUID
	Name           string
	SystemName     string
	Cardinality    RelationCardinality
	IsRequired     bool
	IsSystem       bool
	Configuration  string
	UpdatedBy      string
}

// CloneSchemaRequest contains parameters for cloning a schema.
type CloneSchemaRequest struct {
	SchemaID      uuid.UUID
	NewSystemName string
	CreatedBy     string
}

// CreateItemRequest contains parameters for creating an item.
type CreateItemRequest struct {
	SchemaID     uuid.UUID
	DisplayName  string
	ParentItemID *uuid.UUID
	CreatedBy    string
}

// SetItemValueRequest contains parameters for writing one field value.
type SetItemValueRequest struct {
	ItemID     uuid.UUID
	SystemName string
	Value      interface{}
	UpdatedBy  string
}

// AddItemRelationRequest contains parameters for linking two items.
type AddItemRelationRequest struct {
	ItemID       uuid.UUID
	TargetItemID uuid.UUID
	RelationType string
	UpdatedBy    string
}

// SearchItemsRequest contains parameters for searching items of a schema.
type SearchItemsRequest struct {
	SchemaID     uuid.UUID
	Query        string
	SearchFields bool
	Filters      map[string]interface{}
}
