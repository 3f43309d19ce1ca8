package schemakit

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewItem creates a draft item against an active schema. The slug is derived
// from the display name and the public identifier is a freshly minted ULID.
func NewItem(schema *Schema, displayName, createdBy string, parent *Item) (*Item, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: schema is required", ErrInvalidArgument)
	}
	if schema.Status != SchemaStatusActive {
		return nil, fmt.Errorf("%w: items can only be created against an active schema (status: %s)", ErrInvalidState, schema.Status)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, fmt.Errorf("%w: created by is required", ErrInvalidArgument)
	}

	now := time.Now().UTC()
	item := &Item{
		ID:               uuid.New(),
		PublicID:         ulid.Make().String(),
		SchemaID:         schema.ID,
		Schema:           schema,
		DisplayName:      displayName,
		Slug:             Slugify(displayName),
		Status:           ItemStatusDraft,
		Version:          1,
		IsCurrentVersion: true,
		Values:           make(map[uuid.UUID]*Value),
		CreatedBy:        createdBy,
		UpdatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if parent != nil {
		item.ParentItemID = &parent.ID
	}
	item.appendHistory(createdBy, fmt.Sprintf("item %q created", displayName))
	return item, nil
}

// SetFieldValue validates raw against the field's type and rules, then stores
// it in the corresponding value slot. All violations are reported together.
func (i *Item) SetFieldValue(systemName string, raw interface{}, updatedBy string) error {
	field, err := i.field(systemName)
	if err != nil {
		return err
	}
	if errs := ValidateValue(raw, field); len(errs) > 0 {
		return NewValidationError(errs)
	}

	value, ok := i.Values[field.ID]
	if !ok {
		value = NewValue(i.ID, field.ID)
		i.Values[field.ID] = value
	}
	if err := value.Set(raw, field.Type); err != nil {
		return err
	}
	i.touch(updatedBy)
	i.appendHistory(updatedBy, fmt.Sprintf("field %q updated", field.SystemName))
	return nil
}

// GetFieldValue returns the stored value for the field, or the field's
// declared default converted from its storage form when never set, or nil.
func (i *Item) GetFieldValue(systemName string) (interface{}, error) {
	field, err := i.field(systemName)
	if err != nil {
		return nil, err
	}
	if value, ok := i.Values[field.ID]; ok && value.IsSet() {
		return value.Get(field.Type), nil
	}
	if field.DefaultValue != "" {
		return ConvertFromStorage(field.DefaultValue, field.Type), nil
	}
	return nil, nil
}

// Publish moves a draft item to published. Every required field must hold a
// non-empty value; all missing fields are reported together.
func (i *Item) Publish(updatedBy string) error {
	if i.Status != ItemStatusDraft {
		return fmt.Errorf("%w: only draft items can be published (status: %s)", ErrInvalidState, i.Status)
	}
	if errs := i.missingRequiredFields(); len(errs) > 0 {
		return NewValidationError(errs)
	}
	now := time.Now().UTC()
	i.Status = ItemStatusPublished
	i.PublishedAt = &now
	i.touch(updatedBy)
	i.appendHistory(updatedBy, "item published")
	return nil
}

// Unpublish moves a published item back to draft.
func (i *Item) Unpublish(updatedBy string) error {
	if i.Status != ItemStatusPublished {
		return fmt.Errorf("%w: only published items can be unpublished (status: %s)", ErrInvalidState, i.Status)
	}
	i.Status = ItemStatusDraft
	i.PublishedAt = nil
	i.touch(updatedBy)
	i.appendHistory(updatedBy, "item unpublished")
	return nil
}

// Archive moves a draft or published item to archived.
func (i *Item) Archive(updatedBy string) error {
	if i.Status != ItemStatusDraft && i.Status != ItemStatusPublished {
		return fmt.Errorf("%w: only draft or published items can be archived (status: %s)", ErrInvalidState, i.Status)
	}
	now := time.Now().UTC()
	i.Status = ItemStatusArchived
	i.ArchivedAt = &now
	i.touch(updatedBy)
	i.appendHistory(updatedBy, "item archived")
	return nil
}

// Unarchive moves an archived item back to draft.
func (i *Item) Unarchive(updatedBy string) error {
	if i.Status != ItemStatusArchived {
		return fmt.Errorf("%w: only archived items can be unarchived (status: %s)", ErrInvalidState, i.Status)
	}
	i.Status = ItemStatusDraft
	i.ArchivedAt = nil
	i.touch(updatedBy)
	i.appendHistory(updatedBy, "item unarchived")
	return nil
}

// Delete soft-deletes the item. A published item must be unpublished first;
// deletion is reversible via Restore.
func (i *Item) Delete(deletedBy string) error {
	if i.Status == ItemStatusPublished {
		return fmt.Errorf("%w: published items cannot be deleted, unpublish first", ErrInvalidState)
	}
	if i.Status == ItemStatusDeleted {
		return fmt.Errorf("%w: item is already deleted", ErrInvalidState)
	}
	now := time.Now().UTC()
	i.Status = ItemStatusDeleted
	i.DeletedAt = &now
	i.DeletedBy = deletedBy
	i.touch(deletedBy)
	i.appendHistory(deletedBy, "item deleted")
	return nil
}

// Restore moves a deleted item back to draft and clears the delete markers.
func (i *Item) Restore(updatedBy string) error {
	if i.Status != ItemStatusDeleted {
		return fmt.Errorf("%w: only deleted items can be restored (status: %s)", ErrInvalidState, i.Status)
	}
	i.Status = ItemStatusDraft
	i.DeletedAt = nil
	i.DeletedBy = ""
	i.touch(updatedBy)
	i.appendHistory(updatedBy, "item restored")
	return nil
}

// CreateNewVersion marks this item as no longer current and constructs a
// draft sibling at version+1 on the same schema and parent. Every current
// field value is copied through SetFieldValue so it is re-validated rather
// than raw-copied.
func (i *Item) CreateNewVersion(createdBy string) (*Item, error) {
	if i.Schema == nil {
		return nil, fmt.Errorf("%w: schema is not loaded", ErrInvalidArgument)
	}
	if !i.IsCurrentVersion {
		return nil, fmt.Errorf("%w: only the current version can be branched (version %d is superseded)", ErrInvalidState, i.Version)
	}

	now := time.Now().UTC()
	next := &Item{
		ID:                uuid.New(),
		PublicID:          ulid.Make().String(),
		SchemaID:          i.SchemaID,
		Schema:            i.Schema,
		DisplayName:       i.DisplayName,
		Slug:              i.Slug,
		Status:            ItemStatusDraft,
		Version:           i.Version + 1,
		IsCurrentVersion:  true,
		PreviousVersionID: &i.ID,
		ParentItemID:      i.ParentItemID,
		Values:            make(map[uuid.UUID]*Value),
		CreatedBy:         createdBy,
		UpdatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := next.copyValuesFrom(i, createdBy); err != nil {
		return nil, err
	}

	i.IsCurrentVersion = false
	i.touch(createdBy)
	i.appendHistory(createdBy, fmt.Sprintf("version %d branched", next.Version))
	next.appendHistory(createdBy, fmt.Sprintf("created as version %d of item %s", next.Version, i.PublicID))
	return next, nil
}

// RestoreVersion copies every field value from an older version of this item
// into the current one, re-validating each value on the way.
func (i *Item) RestoreVersion(older *Item, restoredBy string) error {
	if older == nil {
		return fmt.Errorf("%w: version to restore is required", ErrInvalidArgument)
	}
	if older.ID == i.ID {
		return fmt.Errorf("%w: cannot restore an item from itself", ErrInvalidArgument)
	}
	if older.SchemaID != i.SchemaID {
		return fmt.Errorf("%w: version belongs to a different schema", ErrInvalidArgument)
	}
	if err := i.copyValuesFrom(older, restoredBy); err != nil {
		return err
	}
	i.touch(restoredBy)
	i.appendHistory(restoredBy, fmt.Sprintf("values restored from version %d", older.Version))
	return nil
}

func (i *Item) copyValuesFrom(src *Item, actor string) error {
	for fieldID, value := range src.Values {
		if !value.IsSet() {
			continue
		}
		field := i.Schema.fieldByID(fieldID)
		if field == nil {
			continue
		}
		if err := i.SetFieldValue(field.SystemName, value.Get(field.Type), actor); err != nil {
			return err
		}
	}
	return nil
}

// AddRelation links this item to a target item with a typed relation. The
// operation is idempotent per (target, type): a duplicate is a silent no-op
// and produces no new history entry.
func (i *Item) AddRelation(target *Item, relationType, updatedBy string) error {
	if target == nil {
		return fmt.Errorf("%w: target item is required", ErrInvalidArgument)
	}
	for _, r := range i.Relations {
		if r.TargetItemID == target.ID && r.RelationType == relationType {
			return nil
		}
	}
	i.Relations = append(i.Relations, &ItemRelation{
		ID:           uuid.New(),
		ItemID:       i.ID,
		TargetItemID: target.ID,
		RelationType: relationType,
		CreatedAt:    time.Now().UTC(),
	})
	i.touch(updatedBy)
	i.appendHistory(updatedBy, fmt.Sprintf("relation %q to item %s added", relationType, target.PublicID))
	return nil
}

// RemoveRelation removes the typed link to the target item.
func (i *Item) RemoveRelation(targetItemID uuid.UUID, relationType, updatedBy string) error {
	for idx, r := range i.Relations {
		if r.TargetItemID == targetItemID && r.RelationType == relationType {
			i.Relations = append(i.Relations[:idx], i.Relations[idx+1:]...)
			i.touch(updatedBy)
			i.appendHistory(updatedBy, fmt.Sprintf("relation %q removed", relationType))
			return nil
		}
	}
	return fmt.Errorf("%w: relation %q to item %s", ErrRelationNotFound, relationType, targetItemID)
}

// GetRelatedItems returns the target item IDs of every relation with the
// given type. Resolution to loaded items is the service layer's job.
func (i *Item) GetRelatedItems(relationType string) []uuid.UUID {
	var targets []uuid.UUID
	for _, r := range i.Relations {
		if r.RelationType == relationType {
			targets = append(targets, r.TargetItemID)
		}
	}
	return targets
}

// MatchesSearch reports whether text occurs, case-insensitively, in the
// display name or, when searchFields is set, in any stored value's text form.
// An empty query matches everything.
func (i *Item) MatchesSearch(text string, searchFields bool) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(i.DisplayName), needle) {
		return true
	}
	if !searchFields || i.Schema == nil {
		return false
	}
	for fieldID, value := range i.Values {
		field := i.Schema.fieldByID(fieldID)
		if field == nil {
			continue
		}
		if strings.Contains(strings.ToLower(value.Text(field.Type)), needle) {
			return true
		}
	}
	return false
}

// MatchesFilters reports whether every filter entry equals the stored value
// for that field. A filter key with no stored value and a non-nil expected
// value is a non-match.
func (i *Item) MatchesFilters(filters map[string]interface{}) bool {
	if i.Schema == nil {
		return len(filters) == 0
	}
	for systemName, expected := range filters {
		field := i.Schema.FieldBySystemName(systemName)
		if field == nil {
			return false
		}
		value, ok := i.Values[field.ID]
		if !ok || !value.IsSet() {
			if expected != nil {
				return false
			}
			continue
		}
		if expected == nil {
			return false
		}
		if value.Text(field.Type) != ConvertToStorage(expected, field.Type) {
			return false
		}
	}
	return true
}

func (i *Item) field(systemName string) (*Field, error) {
	if i.Schema == nil {
		return nil, fmt.Errorf("%w: schema is not loaded", ErrInvalidArgument)
	}
	field := i.Schema.FieldBySystemName(systemName)
	if field == nil {
		return nil, fmt.Errorf("%w: field %q on schema %q", ErrFieldNotFound, systemName, i.Schema.SystemName)
	}
	return field, nil
}

func (i *Item) missingRequiredFields() []string {
	var errs []string
	if i.Schema == nil {
		return errs
	}
	for _, field := range i.Schema.Fields {
		if !field.IsRequired {
			continue
		}
		effective, err := i.GetFieldValue(field.SystemName)
		if err != nil || IsEmptyValue(effective, field.Type) {
			errs = append(errs, fmt.Sprintf("%s is required", field.Name))
		}
	}
	return errs
}

func (i *Item) touch(updatedBy string) {
	if updatedBy != "" {
		i.UpdatedBy = updatedBy
	}
	i.UpdatedAt = time.Now().UTC()
}

func (i *Item) appendHistory(actor, description string) {
	i.History = append(i.History, AuditEntry{
		ID:          uuid.New(),
		Actor:       actor,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
}

func (s *Schema) fieldByID(id uuid.UUID) *Field {
	for _, f := range s.Fields {
		if f.ID == id {
			return f
		}
	}
	return nil
}

var (
	slugQuoteRe    = regexp.MustCompile(`['"’]`)
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9-]`)
	slugCollapseRe = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL-safe slug from a display name: lowercase, spaces to
// hyphens, quotes stripped, anything outside [a-z0-9-] stripped, repeated
// hyphens collapsed, leading and trailing hyphens trimmed.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugQuoteRe.ReplaceAllString(slug, "")
	slug = slugInvalidRe.ReplaceAllString(slug, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
