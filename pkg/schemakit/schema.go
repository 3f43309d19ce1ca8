package schemakit

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var systemNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reservedFieldNames are system names that field definitions may not use;
// they collide with the persisted item columns.
var reservedFieldNames = map[string]bool{
	"id": true, "tenantid": true, "createdat": true, "createdby": true,
	"updatedat": true, "updatedby": true, "deletedat": true,
}

// NewSchema creates a schema definition in draft status. The system name is
// lowercased and must match the identifier pattern (a lowercase letter
// followed by lowercase letters, digits or underscores).
func NewSchema(name, systemName, createdBy string, isSystem bool) (*Schema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	systemName = strings.ToLower(strings.TrimSpace(systemName))
	if systemName == "" {
		return nil, fmt.Errorf("%w: system name is required", ErrInvalidArgument)
	}
	if !systemNameRe.MatchString(systemName) {
		return nil, fmt.Errorf("%w: system name %q must start with a lowercase letter and contain only lowercase letters, digits and underscores", ErrInvalidArgument, systemName)
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, fmt.Errorf("%w: created by is required", ErrInvalidArgument)
	}

	now := time.Now().UTC()
	s := &Schema{
		ID:            uuid.New(),
		Name:          name,
		SystemName:    systemName,
		Status:        SchemaStatusDraft,
		IsSystem:      isSystem,
		SchemaVersion: 1,
		CreatedBy:     createdBy,
		UpdatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.appendHistory(createdBy, fmt.Sprintf("schema %q created", systemName))
	return s, nil
}

// FieldBySystemName returns the field with the given system name, or nil.
func (s *Schema) FieldBySystemName(systemName string) *Field {
	systemName = strings.ToLower(strings.TrimSpace(systemName))
	for _, f := range s.Fields {
		if f.SystemName == systemName {
			return f
		}
	}
	return nil
}

// Activate moves a draft schema to active. The schema must have at least one
// field and pass integrity validation. The transition is irreversible.
func (s *Schema) Activate(updatedBy string) error {
	if s.Status != SchemaStatusDraft {
		return fmt.Errorf("%w: only draft schemas can be activated (status: %s)", ErrInvalidState, s.Status)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: schema must have at least one field to be activated", ErrInvalidState)
	}
	if errs := s.ValidateSchema(); len(errs) > 0 {
		return NewValidationError(errs)
	}
	s.Status = SchemaStatusActive
	s.touch(updatedBy)
	s.appendHistory(updatedBy, "schema activated")
	return nil
}

// Archive moves the schema to archived. Archived is terminal; there is no
// path back to active.
func (s *Schema) Archive(updatedBy, reason string) error {
	if s.Status == SchemaStatusArchived {
		return fmt.Errorf("%w: schema is already archived", ErrInvalidState)
	}
	s.Status = SchemaStatusArchived
	s.touch(updatedBy)
	s.appendHistory(updatedBy, archiveDescription("schema archived", reason))
	return nil
}

// Deprecate moves the schema to deprecated. Deprecated is terminal.
func (s *Schema) Deprecate(updatedBy, reason string) error {
	if s.Status == SchemaStatusDeprecated {
		return fmt.Errorf("%w: schema is already deprecated", ErrInvalidState)
	}
	s.Status = SchemaStatusDeprecated
	s.touch(updatedBy)
	s.appendHistory(updatedBy, archiveDescription("schema deprecated", reason))
	return nil
}

// Delete soft-deletes the schema. System schemas cannot be deleted, and an
// active schema must be archived or deprecated first.
func (s *Schema) Delete(deletedBy, reason string) error {
	if s.IsSystem {
		return fmt.Errorf("%w: system schemas cannot be deleted", ErrInvalidState)
	}
	if s.Status == SchemaStatusActive {
		return fmt.Errorf("%w: active schemas cannot be deleted, archive first", ErrInvalidState)
	}
	if s.DeletedAt != nil {
		return fmt.Errorf("%w: schema is already deleted", ErrInvalidState)
	}
	now := time.Now().UTC()
	s.DeletedAt = &now
	s.DeletedBy = deletedBy
	s.touch(deletedBy)
	s.appendHistory(deletedBy, archiveDescription("schema deleted", reason))
	return nil
}

// Restore clears the soft-delete markers on a deleted schema.
func (s *Schema) Restore(updatedBy string) error {
	if s.DeletedAt == nil {
		return fmt.Errorf("%w: schema is not deleted", ErrInvalidState)
	}
	s.DeletedAt = nil
	s.DeletedBy = ""
	s.touch(updatedBy)
	s.appendHistory(updatedBy, "schema restored")
	return nil
}

// AddFieldParams carries the definition of a new field.
type AddFieldParams struct {
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

// AddField appends a field definition with the next sequential display order
// and increments the schema version.
func (s *Schema) AddField(p AddFieldParams) (*Field, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: field name is required", ErrInvalidArgument)
	}
	systemName := strings.ToLower(strings.TrimSpace(p.SystemName))
	if systemName == "" {
		return nil, fmt.Errorf("%w: field system name is required", ErrInvalidArgument)
	}
	if !systemNameRe.MatchString(systemName) {
		return nil, fmt.Errorf("%w: field system name %q must start with a lowercase letter and contain only lowercase letters, digits and underscores", ErrInvalidArgument, systemName)
	}
	if reservedFieldNames[systemName] {
		return nil, fmt.Errorf("%w: field system name %q is reserved", ErrInvalidArgument, systemName)
	}
	if s.FieldBySystemName(systemName) != nil {
		return nil, fmt.Errorf("%w: field system name %q already exists on schema %q", ErrInvalidArgument, systemName, s.SystemName)
	}
	if !IsValidFieldType(p.Type) {
		return nil, fmt.Errorf("%w: unknown field type %q", ErrInvalidArgument, p.Type)
	}

	now := time.Now().UTC()
	field := &Field{
		ID:              uuid.New(),
		SchemaID:        s.ID,
		Name:            name,
		SystemName:      systemName,
		Type:            p.Type,
		Description:     p.Description,
		DisplayOrder:    len(s.Fields) + 1,
		IsRequired:      p.IsRequired,
		IsSystem:        p.IsSystem,
		IsSearchable:    p.IsSearchable,
		IsFilterable:    p.IsFilterable,
		DefaultValue:    p.DefaultValue,
		Configuration:   p.Configuration,
		ValidationRules: p.ValidationRules,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.Fields = append(s.Fields, field)
	s.SchemaVersion++
	s.touch(p.UpdatedBy)
	s.appendHistory(p.UpdatedBy, fmt.Sprintf("field %q added", systemName))
	return field, nil
}

// RemoveField removes a non-system field and re-sequences the remaining
// display orders to stay contiguous starting at 1.
func (s *Schema) RemoveField(systemName, updatedBy string) error {
	field := s.FieldBySystemName(systemName)
	if field == nil {
		return fmt.Errorf("%w: field %q on schema %q", ErrFieldNotFound, systemName, s.SystemName)
	}
	if field.IsSystem {
		return fmt.Errorf("%w: system field %q cannot be removed", ErrInvalidState, field.SystemName)
	}
	s.Fields = slices.DeleteFunc(s.Fields, func(f *Field) bool { return f.ID == field.ID })
	s.normalizeFieldOrders()
	s.SchemaVersion++
	s.touch(updatedBy)
	s.appendHistory(updatedBy, fmt.Sprintf("field %q removed", field.SystemName))
	return nil
}

// ReorderFields reassigns display orders by list position. The supplied list
// must name every current field exactly once; orders are re-normalized to a
// contiguous 1..N sequence afterwards.
func (s *Schema) ReorderFields(orderedSystemNames []string, updatedBy string) error {
	if len(orderedSystemNames) != len(s.Fields) {
		return fmt.Errorf("%w: expected %d field names, got %d", ErrInvalidArgument, len(s.Fields), len(orderedSystemNames))
	}
	// Resolve the whole list before touching any order so a bad name
	// leaves the aggregate untouched.
	resolved := make([]*Field, len(orderedSystemNames))
	for i, systemName := range orderedSystemNames {
		field := s.FieldBySystemName(systemName)
		if field == nil {
			return fmt.Errorf("%w: field %q on schema %q", ErrFieldNotFound, systemName, s.SystemName)
		}
		resolved[i] = field
	}
	for i, field := range resolved {
		field.DisplayOrder = i + 1
	}
	slices.SortStableFunc(s.Fields, func(a, b *Field) int { return a.DisplayOrder - b.DisplayOrder })
	s.normalizeFieldOrders()
	s.SchemaVersion++
	s.touch(updatedBy)
	s.appendHistory(updatedBy, "fields reordered")
	return nil
}

// normalizeFieldOrders rewrites display orders to 1..N in slice order.
func (s *Schema) normalizeFieldOrders() {
	for i, f := range s.Fields {
		f.DisplayOrder = i + 1
	}
}

// ValidateSchema checks structural integrity: unique field system names,
// required relation fields carrying a target relation in their configuration,
// and no relation targeting the schema itself. All violations are collected.
func (s *Schema) ValidateSchema() []string {
	var errs []string

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if seen[f.SystemName] {
			errs = append(errs, fmt.Sprintf("duplicate field system name %q", f.SystemName))
		}
		seen[f.SystemName] = true
	}

	for _, f := range s.Fields {
		if f.Type != FieldTypeRelation || !f.IsRequired {
			continue
		}
		cfg, err := ParseRelationConfig(f.Configuration)
		if err != nil || cfg == nil || cfg.RequiredRelationID == nil {
			errs = append(errs, fmt.Sprintf("required relation field %q has no target relation configured", f.SystemName))
		}
	}

	for _, r := range s.Relations {
		if r.TargetSchemaID == s.ID {
			errs = append(errs, fmt.Sprintf("relation %q targets its own schema", r.SystemName))
		}
	}

	return errs
}

// AddRelationParams carries the definition of a new schema relation.
type AddRelationParams struct {
	Name          string
	SystemName    string
	Cardinality   RelationCardinality
	IsRequired    bool
	IsSystem      bool
	Configuration string
	UpdatedBy     string
}

// AddRelation creates a directed relation to the target schema, marks this
// schema relational and increments the schema version. A duplicate relation
// system name is rejected.
func (s *Schema) AddRelation(target *Schema, p AddRelationParams) (*Relation, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: target schema is required", ErrInvalidArgument)
	}
	systemName := strings.ToLower(strings.TrimSpace(p.SystemName))
	if systemName == "" {
		return nil, fmt.Errorf("%w: relation system name is required", ErrInvalidArgument)
	}
	for _, r := range s.Relations {
		if r.SystemName == systemName {
			return nil, fmt.Errorf("%w: relation system name %q already exists on schema %q", ErrInvalidArgument, systemName, s.SystemName)
		}
	}

	relation := &Relation{
		ID:             uuid.New(),
		SourceSchemaID: s.ID,
		TargetSchemaID: target.ID,
		Name:           strings.TrimSpace(p.Name),
		SystemName:     systemName,
		Cardinality:    p.Cardinality,
		IsRequired:     p.IsRequired,
		IsSystem:       p.IsSystem,
		Configuration:  p.Configuration,
		CreatedAt:      time.Now().UTC(),
		TargetSchema:   target,
	}
	s.Relations = append(s.Relations, relation)
	s.IsRelational = true
	s.SchemaVersion++
	s.touch(p.UpdatedBy)
	s.appendHistory(p.UpdatedBy, fmt.Sprintf("relation %q to schema %q added", systemName, target.SystemName))
	return relation, nil
}

// GetAvailableRelations returns the outgoing relations whose target schema is
// active. Relations with an unresolved target are skipped.
func (s *Schema) GetAvailableRelations() []*Relation {
	var available []*Relation
	for _, r := range s.Relations {
		if r.TargetSchema != nil && r.TargetSchema.Status == SchemaStatusActive {
			available = append(available, r)
		}
	}
	return available
}

// Clone produces a new draft schema with the same fields re-added under new
// identities. Relations are not copied; they reference other schemas and
// would be wrong to duplicate blindly.
func (s *Schema) Clone(createdBy, newSystemName string) (*Schema, error) {
	if newSystemName == "" {
		newSystemName = s.SystemName + "_copy"
	}
	clone, err := NewSchema(s.Name, newSystemName, createdBy, false)
	if err != nil {
		return nil, err
	}
	clone.Description = s.Description
	clone.Icon = s.Icon
	clone.Color = s.Color
	clone.AllowsHierarchy = s.AllowsHierarchy
	clone.Configuration = s.Configuration

	for _, f := range s.Fields {
		if _, err := clone.AddField(AddFieldParams{
			Name:            f.Name,
			SystemName:      f.SystemName,
			Type:            f.Type,
			Description:     f.Description,
			IsRequired:      f.IsRequired,
			IsSystem:        f.IsSystem,
			IsSearchable:    f.IsSearchable,
			IsFilterable:    f.IsFilterable,
			DefaultValue:    f.DefaultValue,
			Configuration:   f.Configuration,
			ValidationRules: f.ValidationRules,
			UpdatedBy:       createdBy,
		}); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

func (s *Schema) touch(updatedBy string) {
	if updatedBy != "" {
		s.UpdatedBy = updatedBy
	}
	s.UpdatedAt = time.Now().UTC()
}

func (s *Schema) appendHistory(actor, description string) {
	s.History = append(s.History, AuditEntry{
		ID:          uuid.New(),
		Actor:       actor,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
}

func archiveDescription(base, reason string) string {
	if strings.TrimSpace(reason) == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, reason)
}
