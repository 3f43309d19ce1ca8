package schemakit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SchemaStatus is the domain type for schema lifecycle states.
type SchemaStatus string

// Schema status constants (typed).
const (
	SchemaStatusDraft      SchemaStatus = "draft"
	SchemaStatusActive     SchemaStatus = "active"
	SchemaStatusArchived   SchemaStatus = "archived"
	SchemaStatusDeprecated SchemaStatus = "deprecated"
)

// ItemStatus is the domain type for item lifecycle states.
type ItemStatus string

// Item status constants (typed).
const (
	ItemStatusDraft     ItemStatus = "draft"
	ItemStatusPublished ItemStatus = "published"
	ItemStatusArchived  ItemStatus = "archived"
	ItemStatusDeleted   ItemStatus = "deleted"
)

// RelationCardinality tags a schema-to-schema relation with its multiplicity.
type RelationCardinality string

// Relation cardinality constants (typed).
const (
	CardinalityOneToOne   RelationCardinality = "one_to_one"
	CardinalityOneToMany  RelationCardinality = "one_to_many"
	CardinalityManyToOne  RelationCardinality = "many_to_one"
	CardinalityManyToMany RelationCardinality = "many_to_many"
)

// Schema represents a runtime-defined content type: an ordered set of typed
// field definitions, outgoing relations to other schemas, a lifecycle state
// machine and an append-only audit history.
type Schema struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	SystemName      string       `json:"system_name"`
	Description     string       `json:"description,omitempty"`
	Icon            string       `json:"icon,omitempty"`
	Color           string       `json:"color,omitempty"`
	Status          SchemaStatus `json:"status"`
	IsSystem        bool         `json:"is_system"`
	SchemaVersion   int          `json:"schema_version"`
	AllowsHierarchy bool         `json:"allows_hierarchy"`
	IsRelational    bool         `json:"is_relational"`
	Configuration   string       `json:"configuration,omitempty"`

	// ConcurrencyToken is the optimistic-lock token checked and bumped by
	// the repository on every save.
	ConcurrencyToken int `json:"concurrency_token"`

	Fields    []*Field     `json:"fields"`
	Relations []*Relation  `json:"relations"`
	History   []AuditEntry `json:"history,omitempty"`

	CreatedBy string     `json:"created_by"`
	UpdatedBy string     `json:"updated_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy string     `json:"deleted_by,omitempty"`
}

// Field represents one typed, ordered attribute declared on a schema. A field
// has no lifecycle of its own; it is owned by exactly one schema.
type Field struct {
	ID              uuid.UUID `json:"id"`
	SchemaID        uuid.UUID `json:"schema_id"`
	Name            string    `json:"name"`
	SystemName      string    `json:"system_name"`
	Type            FieldType `json:"type"`
	Description     string    `json:"description,omitempty"`
	DisplayOrder    int       `json:"display_order"`
	IsRequired      bool      `json:"is_required"`
	IsSystem        bool      `json:"is_system"`
	IsSearchable    bool      `json:"is_searchable"`
	IsFilterable    bool      `json:"is_filterable"`
	DefaultValue    string    `json:"default_value,omitempty"`
	Configuration   string    `json:"configuration,omitempty"`
	ValidationRules string    `json:"validation_rules,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Relation represents a directed, cardinality-tagged edge from one schema to
// another. TargetSchema is populated by the service layer on load and by
// AddRelation; only TargetSchemaID is persisted.
type Relation struct {
	ID             uuid.UUID           `json:"id"`
	SourceSchemaID uuid.UUID           `json:"source_schema_id"`
	TargetSchemaID uuid.UUID           `json:"target_schema_id"`
	Name           string              `json:"name"`
	SystemName     string              `json:"system_name"`
	Cardinality    RelationCardinality `json:"cardinality"`
	IsRequired     bool                `json:"is_required"`
	IsSystem       bool                `json:"is_system"`
	Configuration  string              `json:"configuration,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`

	// Populated by the service layer (not persisted)
	TargetSchema *Schema `json:"target_schema,omitempty" db:"-"`
}

// Item represents a concrete record instantiated against an active schema.
// Schema is populated by the service layer on load; only SchemaID is
// persisted.
type Item struct {
	ID                uuid.UUID  `json:"id"`
	PublicID          string     `json:"public_id"`
	SchemaID          uuid.UUID  `json:"schema_id"`
	DisplayName       string     `json:"display_name"`
	Slug              string     `json:"slug"`
	Status            ItemStatus `json:"status"`
	Version           int        `json:"version"`
	IsCurrentVersion  bool       `json:"is_current_version"`
	PreviousVersionID *uuid.UUID `json:"previous_version_id,omitempty"`
	ParentItemID      *uuid.UUID `json:"parent_item_id,omitempty"`

	// ConcurrencyToken is the optimistic-lock token checked and bumped by
	// the repository on every save.
	ConcurrencyToken int `json:"concurrency_token"`

	// Values is keyed by field ID; one entry per field ever written.
	Values    map[uuid.UUID]*Value `json:"values"`
	Relations []*ItemRelation      `json:"relations"`
	History   []AuditEntry         `json:"history,omitempty"`

	CreatedBy   string     `json:"created_by"`
	UpdatedBy   string     `json:"updated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	DeletedBy   string     `json:"deleted_by,omitempty"`

	// Populated by the service layer (not persisted)
	Schema *Schema `json:"-" db:"-"`
}

// Value holds the stored content of one field on one item as a fixed set of
// typed slots. Exactly one slot is populated per the field's declared type,
// or all slots are empty when the value is unset.
type Value struct {
	ID       uuid.UUID `json:"id"`
	ItemID   uuid.UUID `json:"item_id"`
	FieldID  uuid.UUID `json:"field_id"`
	Revision int       `json:"revision"`

	// ConcurrencyToken mirrors the owning item's token at write time; value
	// rows are replaced whole with the item aggregate, which carries the
	// checked token.
	ConcurrencyToken int `json:"concurrency_token"`

	StringValue   *string          `json:"string_value,omitempty"`
	IntValue      *int64           `json:"int_value,omitempty"`
	DecimalValue  *decimal.Decimal `json:"decimal_value,omitempty"`
	BoolValue     *bool            `json:"bool_value,omitempty"`
	TimeValue     *time.Time       `json:"time_value,omitempty"`
	FilePathValue *string          `json:"file_path_value,omitempty"`
	RelationValue *int64           `json:"relation_value,omitempty"`
	JSONValue     *string          `json:"json_value,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemRelation represents a typed link from one item to another.
type ItemRelation struct {
	ID           uuid.UUID `json:"id"`
	ItemID       uuid.UUID `json:"item_id"`
	TargetItemID uuid.UUID `json:"target_item_id"`
	RelationType string    `json:"relation_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditEntry records one human-readable change description with its actor and
// timestamp. Histories are append-only.
type AuditEntry struct {
	ID          uuid.UUID `json:"id"`
	Actor       string    `json:"actor"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
