package schemakit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}
	for _, option := range options {
		option(s)
	}
	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	return s, nil
}

// Schema operations

func (s *service) CreateSchema(ctx context.Context, req CreateSchemaRequest) (*Schema, error) {
	schema, err := NewSchema(req.Name, req.SystemName, req.CreatedBy, req.IsSystem)
	if err != nil {
		return nil, err
	}
	schema.Description = req.Description
	schema.Icon = req.Icon
	schema.Color = req.Color
	schema.AllowsHierarchy = req.AllowsHierarchy
	schema.Configuration = req.Configuration

	if err := s.repository.CreateSchema(ctx, schema); err != nil {
		return nil, &SchemaError{SchemaID: schema.ID, Op: "create", Err: err}
	}
	return schema, nil
}

func (s *service) GetSchema(ctx context.Context, id uuid.UUID) (*Schema, error) {
	schema, err := s.repository.GetSchema(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelationTargets(ctx, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

func (s *service) GetSchemaBySystemName(ctx context.Context, systemName string) (*Schema, error) {
	schema, err := s.repository.GetSchemaBySystemName(ctx, systemName)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelationTargets(ctx, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

func (s *service) ListSchemas(ctx context.Context, params ListSchemasParams) ([]*Schema, error) {
	return s.repository.ListSchemas(ctx, params)
}

func (s *service) ActivateSchema(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return s.mutateSchema(ctx, id, "activate", func(schema *Schema) error {
		return schema.Activate(updatedBy)
	})
}

func (s *service) ArchiveSchema(ctx context.Context, id uuid.UUID, updatedBy, reason string) error {
	return s.mutateSchema(ctx, id, "archive", func(schema *Schema) error {
		return schema.Archive(updatedBy, reason)
	})
}

func (s *service) DeprecateSchema(ctx context.Context, id uuid.UUID, updatedBy, reason string) error {
	return s.mutateSchema(ctx, id, "deprecate", func(schema *Schema) error {
		return schema.Deprecate(updatedBy, reason)
	})
}

func (s *service) DeleteSchema(ctx context.Context, id uuid.UUID, deletedBy, reason string) error {
	return s.mutateSchema(ctx, id, "delete", func(schema *Schema) error {
		return schema.Delete(deletedBy, reason)
	})
}

func (s *service) RestoreSchema(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return s.mutateSchema(ctx, id, "restore", func(schema *Schema) error {
		return schema.Restore(updatedBy)
	})
}

func (s *service) CloneSchema(ctx context.Context, req CloneSchemaRequest) (*Schema, error) {
	schema, err := s.GetSchema(ctx, req.SchemaID)
	if err != nil {
		return nil, err
	}
	clone, err := schema.Clone(req.CreatedBy, req.NewSystemName)
	if err != nil {
		return nil, err
	}
	if err := s.repository.CreateSchema(ctx, clone); err != nil {
		return nil, &SchemaError{SchemaID: clone.ID, Op: "clone", Err: err}
	}
	return clone, nil
}

func (s *service) GetSchemaHistory(ctx context.Context, id uuid.UUID) ([]AuditEntry, error) {
	schema, err := s.repository.GetSchema(ctx, id)
	if err != nil {
		return nil, err
	}
	return schema.History, nil
}

// Field operations

func (s *service) AddField(ctx context.Context, req AddFieldRequest) (*Field, error) {
	var field *Field
	err := s.mutateSchema(ctx, req.SchemaID, "add_field", func(schema *Schema) error {
		var opErr error
		field, opErr = schema.AddField(AddFieldParams{
			Name:            req.Name,
			SystemName:      req.SystemName,
			Type:            req.Type,
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
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return field, nil
}

func (s *service) RemoveField(ctx context.Context, schemaID uuid.UUID, systemName, updatedBy string) error {
	return s.mutateSchema(ctx, schemaID, "remove_field", func(schema *Schema) error {
		return schema.RemoveField(systemName, updatedBy)
	})
}

func (s *service) ReorderFields(ctx context.Context, req ReorderFieldsRequest) error {
	return s.mutateSchema(ctx, req.SchemaID, "reorder_fields", func(schema *Schema) error {
		return schema.ReorderFields(req.OrderedSystemNames, req.UpdatedBy)
	})
}

// Schema relation operations

func (s *service) AddSchemaRelation(ctx context.Context, req AddRelationRequest) (*Relation, error) {
	target, err := s.repository.GetSchema(ctx, req.TargetSchemaID)
	if err != nil {
		return nil, fmt.Errorf("target schema not found: %w", err)
	}

	var relation *Relation
	err = s.mutateSchema(ctx, req.SourceSchemaID, "add_relation", func(schema *Schema) error {
		var opErr error
		relation, opErr = schema.AddRelation(target, AddRelationParams{
			Name:          req.Name,
			SystemName:    req.SystemName,
			Cardinality:   req.Cardinality,
			IsRequired:    req.IsRequired,
			IsSystem:      req.IsSystem,
			Configuration: req.Configuration,
			UpdatedBy:     req.UpdatedBy,
		})
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return relation, nil
}

func (s *service) GetAvailableRelations(ctx context.Context, schemaID uuid.UUID) ([]*Relation, error) {
	schema, err := s.GetSchema(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	return schema.GetAvailableRelations(), nil
}

// Item operations

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	schema, err := s.repository.GetSchema(ctx, req.SchemaID)
	if err != nil {
		return nil, fmt.Errorf("schema not found: %w", err)
	}

	var parent *Item
	if req.ParentItemID != nil {
		parent, err = s.repository.GetItem(ctx, *req.ParentItemID)
		if err != nil {
			return nil, fmt.Errorf("parent item not found: %w", err)
		}
	}

	item, err := NewItem(schema, req.DisplayName, req.CreatedBy, parent)
	if err != nil {
		return nil, err
	}
	if err := s.repository.CreateItem(ctx, item); err != nil {
		return nil, &ItemError{ItemID: item.ID, Op: "create", Err: err}
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.loadItem(ctx, id)
}

func (s *service) GetItemByPublicID(ctx context.Context, publicID string) (*Item, error) {
	item, err := s.repository.GetItemByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return s.attachSchema(ctx, item)
}

func (s *service) GetItemBySlug(ctx context.Context, schemaID uuid.UUID, slug string) (*Item, error) {
	item, err := s.repository.GetItemBySlug(ctx, schemaID, slug)
	if err != nil {
		return nil, err
	}
	return s.attachSchema(ctx, item)
}

func (s *service) ListItems(ctx context.Context, params ListItemsParams) ([]*Item, error) {
	items, err := s.repository.ListItems(ctx, params)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if _, err := s.attachSchema(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *service) SetItemValue(ctx context.Context, req SetItemValueRequest) error {
	return s.mutateItem(ctx, req.ItemID, "set_value", func(item *Item) error {
		return item.SetFieldValue(req.SystemName, req.Value, req.UpdatedBy)
	})
}

func (s *service) GetItemValue(ctx context.Context, itemID uuid.UUID, systemName string) (interface{}, error) {
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return item.GetFieldValue(systemName)
}

func (s *service) PublishItem(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return s.mutateItem(ctx, id, "publish", func(item *Item) error {
		return item.Publish(updatedBy)
	})
}

func (s *service) UnpublishItem(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return s.mutateItem(ctx, id, "unpublish", func(item *Item) error {
		return item.Unpublish(updatedBy)
	})
}

func (s *service) ArchiveItem(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return s.mutateItem(ctx, id, "archive", func(item *Item) error {
		return item.Archive(updatedBy)
	})
}

func (s *service) UnarchiveItem(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return s.mutateItem(ctx, id, "unarchive", func(item *Item) error {
		return item.Unarchive(updatedBy)
	})
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return s.mutateItem(ctx, id, "delete", func(item *Item) error {
		return item.Delete(deletedBy)
	})
}

func (s *service) RestoreItem(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return s.mutateItem(ctx, id, "restore", func(item *Item) error {
		return item.Restore(updatedBy)
	})
}

func (s *service) GetItemHistory(ctx context.Context, id uuid.UUID) ([]AuditEntry, error) {
	item, err := s.repository.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return item.History, nil
}

// Item versioning

func (s *service) CreateItemVersion(ctx context.Context, id uuid.UUID, createdBy string) (*Item, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := item.CreateNewVersion(createdBy)
	if err != nil {
		return nil, &ItemError{ItemID: id, Op: "create_version", Err: err}
	}
	if err := s.repository.CreateItem(ctx, next); err != nil {
		return nil, &ItemError{ItemID: next.ID, Op: "create_version", Err: err}
	}
	if err := s.repository.SaveItem(ctx, item); err != nil {
		return nil, &ItemError{ItemID: id, Op: "create_version", Err: err}
	}
	return next, nil
}

func (s *service) RestoreItemVersion(ctx context.Context, id, versionID uuid.UUID, restoredBy string) error {
	older, err := s.loadItem(ctx, versionID)
	if err != nil {
		return err
	}
	return s.mutateItem(ctx, id, "restore_version", func(item *Item) error {
		return item.RestoreVersion(older, restoredBy)
	})
}

// Item relations

func (s *service) AddItemRelation(ctx context.Context, req AddItemRelationRequest) error {
	target, err := s.repository.GetItem(ctx, req.TargetItemID)
	if err != nil {
		return fmt.Errorf("target item not found: %w", err)
	}
	return s.mutateItem(ctx, req.ItemID, "add_relation", func(item *Item) error {
		return item.AddRelation(target, req.RelationType, req.UpdatedBy)
	})
}

func (s *service) RemoveItemRelation(ctx context.Context, itemID, targetItemID uuid.UUID, relationType, updatedBy string) error {
	return s.mutateItem(ctx, itemID, "remove_relation", func(item *Item) error {
		return item.RemoveRelation(targetItemID, relationType, updatedBy)
	})
}

func (s *service) GetRelatedItems(ctx context.Context, itemID uuid.UUID, relationType string) ([]*Item, error) {
	item, err := s.repository.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	targets := item.GetRelatedItems(relationType)
	related := make([]*Item, 0, len(targets))
	for _, targetID := range targets {
		target, err := s.loadItem(ctx, targetID)
		if err != nil {
			return nil, err
		}
		related = append(related, target)
	}
	return related, nil
}

// Item querying

func (s *service) SearchItems(ctx context.Context, req SearchItemsRequest) ([]*Item, error) {
	items, err := s.ListItems(ctx, ListItemsParams{SchemaID: &req.SchemaID, CurrentOnly: true})
	if err != nil {
		return nil, err
	}
	var matched []*Item
	for _, item := range items {
		if !item.MatchesSearch(req.Query, req.SearchFields) {
			continue
		}
		if len(req.Filters) > 0 && !item.MatchesFilters(req.Filters) {
			continue
		}
		matched = append(matched, item)
	}
	return matched, nil
}

// Helper methods

// mutateSchema loads a schema aggregate, applies op and saves it back.
func (s *service) mutateSchema(ctx context.Context, id uuid.UUID, op string, mutate func(*Schema) error) error {
	schema, err := s.repository.GetSchema(ctx, id)
	if err != nil {
		return err
	}
	if err := s.attachRelationTargets(ctx, schema); err != nil {
		return err
	}
	if err := mutate(schema); err != nil {
		return err
	}
	if err := s.repository.SaveSchema(ctx, schema); err != nil {
		return &SchemaError{SchemaID: id, Op: op, Err: err}
	}
	return nil
}

// mutateItem loads an item aggregate with its schema, applies op and saves it
// back.
func (s *service) mutateItem(ctx context.Context, id uuid.UUID, op string, mutate func(*Item) error) error {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return err
	}
	if err := mutate(item); err != nil {
		return err
	}
	if err := s.repository.SaveItem(ctx, item); err != nil {
		return &ItemError{ItemID: id, Op: op, Err: err}
	}
	return nil
}

func (s *service) loadItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := s.repository.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachSchema(ctx, item)
}

func (s *service) attachSchema(ctx context.Context, item *Item) (*Item, error) {
	schema, err := s.repository.GetSchema(ctx, item.SchemaID)
	if err != nil {
		return nil, fmt.Errorf("schema not found for item %s: %w", item.ID, err)
	}
	item.Schema = schema
	return item, nil
}

// attachRelationTargets resolves the target schema of every relation so
// GetAvailableRelations and ValidateSchema can see target statuses.
func (s *service) attachRelationTargets(ctx context.Context, schema *Schema) error {
	for _, r := range schema.Relations {
		if r.TargetSchema != nil {
			continue
		}
		target, err := s.repository.GetSchema(ctx, r.TargetSchemaID)
		if err != nil {
			continue
		}
		r.TargetSchema = target
	}
	return nil
}
