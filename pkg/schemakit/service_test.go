package schemakit_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemakit/schemakit/pkg/schemakit"
	"github.com/schemakit/schemakit/pkg/schemakit/repo/memory"
)

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []schemakit.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []schemakit.Option{},
			expectError: true,
		},
		{
			name: "with repository should succeed",
			options: []schemakit.Option{
				schemakit.WithRepository(memory.New()),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := schemakit.New(tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func newTestService(t *testing.T) schemakit.Service {
	t.Helper()
	svc, err := schemakit.New(schemakit.WithRepository(memory.New()))
	require.NoError(t, err)
	return svc
}

// buildActiveSchema creates and activates a product schema through the
// service.
func buildActiveSchema(t *testing.T, svc schemakit.Service) *schemakit.Schema {
	t.Helper()
	ctx := context.Background()

	schema, err := svc.CreateSchema(ctx, schemakit.CreateSchemaRequest{
		Name: "Product", SystemName: "product", CreatedBy: "tester",
	})
	require.NoError(t, err)

	for _, req := range []schemakit.AddFieldRequest{
		{SchemaID: schema.ID, Name: "Title", SystemName: "title", Type: schemakit.FieldTypeString, IsRequired: true, IsSearchable: true, UpdatedBy: "tester"},
		{SchemaID: schema.ID, Name: "Price", SystemName: "price", Type: schemakit.FieldTypeDecimal, IsFilterable: true, UpdatedBy: "tester"},
	} {
		_, err := svc.AddField(ctx, req)
		require.NoError(t, err)
	}

	require.NoError(t, svc.ActivateSchema(ctx, schema.ID, "tester"))

	schema, err = svc.GetSchema(ctx, schema.ID)
	require.NoError(t, err)
	return schema
}

func TestServiceSchemaWorkflow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	schema := buildActiveSchema(t, svc)
	assert.Equal(t, schemakit.SchemaStatusActive, schema.Status)
	assert.Len(t, schema.Fields, 2)
	// create + two fields + activate
	assert.Equal(t, 3, schema.SchemaVersion)

	t.Run("lookup by system name", func(t *testing.T) {
		found, err := svc.GetSchemaBySystemName(ctx, "product")
		require.NoError(t, err)
		assert.Equal(t, schema.ID, found.ID)
	})

	t.Run("unknown schema", func(t *testing.T) {
		_, err := svc.GetSchema(ctx, uuid.New())
		assert.ErrorIs(t, err, schemakit.ErrSchemaNotFound)
	})

	t.Run("duplicate system name", func(t *testing.T) {
		_, err := svc.CreateSchema(ctx, schemakit.CreateSchemaRequest{
			Name: "Product 2", SystemName: "product", CreatedBy: "tester",
		})
		assert.Error(t, err)
	})

	t.Run("history is persisted", func(t *testing.T) {
		history, err := svc.GetSchemaHistory(ctx, schema.ID)
		require.NoError(t, err)
		// create, two field adds, activate
		assert.Len(t, history, 4)
	})

	t.Run("remove and reorder persist", func(t *testing.T) {
		_, err := svc.AddField(ctx, schemakit.AddFieldRequest{
			SchemaID: schema.ID, Name: "Stock", SystemName: "stock",
			Type: schemakit.FieldTypeInteger, UpdatedBy: "tester",
		})
		require.NoError(t, err)

		require.NoError(t, svc.ReorderFields(ctx, schemakit.ReorderFieldsRequest{
			SchemaID:           schema.ID,
			OrderedSystemNames: []string{"stock", "title", "price"},
			UpdatedBy:          "tester",
		}))

		reloaded, err := svc.GetSchema(ctx, schema.ID)
		require.NoError(t, err)
		assert.Equal(t, "stock", reloaded.Fields[0].SystemName)

		require.NoError(t, svc.RemoveField(ctx, schema.ID, "stock", "tester"))
		reloaded, err = svc.GetSchema(ctx, schema.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Fields, 2)
		assert.Equal(t, 1, reloaded.Fields[0].DisplayOrder)
	})

	t.Run("clone", func(t *testing.T) {
		clone, err := svc.CloneSchema(ctx, schemakit.CloneSchemaRequest{
			SchemaID: schema.ID, CreatedBy: "tester",
		})
		require.NoError(t, err)
		assert.Equal(t, "product_copy", clone.SystemName)

		found, err := svc.GetSchemaBySystemName(ctx, "product_copy")
		require.NoError(t, err)
		assert.Equal(t, schemakit.SchemaStatusDraft, found.Status)
	})
}

func TestServiceSchemaRelations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	source := buildActiveSchema(t, svc)

	target, err := svc.CreateSchema(ctx, schemakit.CreateSchemaRequest{
		Name: "Category", SystemName: "category", CreatedBy: "tester",
	})
	require.NoError(t, err)
	_, err = svc.AddField(ctx, schemakit.AddFieldRequest{
		SchemaID: target.ID, Name: "Name", SystemName: "name",
		Type: schemakit.FieldTypeString, UpdatedBy: "tester",
	})
	require.NoError(t, err)
	require.NoError(t, svc.ActivateSchema(ctx, target.ID, "tester"))

	relation, err := svc.AddSchemaRelation(ctx, schemakit.AddRelationRequest{
		SourceSchemaID: source.ID,
		TargetSchemaID: target.ID,
		Name:           "Category",
		SystemName:     "category",
		Cardinality:    schemakit.CardinalityManyToOne,
		UpdatedBy:      "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, target.ID, relation.TargetSchemaID)

	t.Run("available relations resolve target status", func(t *testing.T) {
		available, err := svc.GetAvailableRelations(ctx, source.ID)
		require.NoError(t, err)
		require.Len(t, available, 1)
		assert.Equal(t, "category", available[0].SystemName)
		require.NotNil(t, available[0].TargetSchema)
		assert.Equal(t, schemakit.SchemaStatusActive, available[0].TargetSchema.Status)
	})

	t.Run("unknown target rejected", func(t *testing.T) {
		_, err := svc.AddSchemaRelation(ctx, schemakit.AddRelationRequest{
			SourceSchemaID: source.ID,
			TargetSchemaID: uuid.New(),
			SystemName:     "ghost",
			UpdatedBy:      "tester",
		})
		assert.ErrorIs(t, err, schemakit.ErrSchemaNotFound)
	})
}

func TestServiceItemWorkflow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	schema := buildActiveSchema(t, svc)

	item, err := svc.CreateItem(ctx, schemakit.CreateItemRequest{
		SchemaID: schema.ID, DisplayName: "Red Widget", CreatedBy: "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, "red-widget", item.Slug)

	t.Run("set and get values through the service", func(t *testing.T) {
		require.NoError(t, svc.SetItemValue(ctx, schemakit.SetItemValueRequest{
			ItemID: item.ID, SystemName: "title", Value: "Red Widget", UpdatedBy: "tester",
		}))
		require.NoError(t, svc.SetItemValue(ctx, schemakit.SetItemValueRequest{
			ItemID: item.ID, SystemName: "price", Value: "19.99", UpdatedBy: "tester",
		}))

		got, err := svc.GetItemValue(ctx, item.ID, "title")
		require.NoError(t, err)
		assert.Equal(t, "Red Widget", got)
	})

	t.Run("validation failures do not persist", func(t *testing.T) {
		err := svc.SetItemValue(ctx, schemakit.SetItemValueRequest{
			ItemID: item.ID, SystemName: "price", Value: "free", UpdatedBy: "tester",
		})
		var verr *schemakit.ValidationError
		require.ErrorAs(t, err, &verr)

		got, err := svc.GetItemValue(ctx, item.ID, "price")
		require.NoError(t, err)
		assert.Equal(t, "19.99", schemakit.ConvertToStorage(got, schemakit.FieldTypeDecimal))
	})

	t.Run("lookups", func(t *testing.T) {
		byPublic, err := svc.GetItemByPublicID(ctx, item.PublicID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, byPublic.ID)

		bySlug, err := svc.GetItemBySlug(ctx, schema.ID, "red-widget")
		require.NoError(t, err)
		assert.Equal(t, item.ID, bySlug.ID)

		_, err = svc.GetItem(ctx, uuid.New())
		assert.ErrorIs(t, err, schemakit.ErrItemNotFound)
	})

	t.Run("publish then delete is blocked", func(t *testing.T) {
		require.NoError(t, svc.PublishItem(ctx, item.ID, "tester"))
		assert.ErrorIs(t, svc.DeleteItem(ctx, item.ID, "tester"), schemakit.ErrInvalidState)

		require.NoError(t, svc.UnpublishItem(ctx, item.ID, "tester"))
		require.NoError(t, svc.DeleteItem(ctx, item.ID, "tester"))
		require.NoError(t, svc.RestoreItem(ctx, item.ID, "tester"))
	})

	t.Run("history accumulates", func(t *testing.T) {
		history, err := svc.GetItemHistory(ctx, item.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(history), 5)
	})
}

func TestServiceItemVersioning(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	schema := buildActiveSchema(t, svc)
	item, err := svc.CreateItem(ctx, schemakit.CreateItemRequest{
		SchemaID: schema.ID, DisplayName: "Widget", CreatedBy: "tester",
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetItemValue(ctx, schemakit.SetItemValueRequest{
		ItemID: item.ID, SystemName: "title", Value: "Widget v1", UpdatedBy: "tester",
	}))

	next, err := svc.CreateItemVersion(ctx, item.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2, next.Version)

	t.Run("original is demoted and persisted", func(t *testing.T) {
		original, err := svc.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, original.IsCurrentVersion)
	})

	t.Run("values copied", func(t *testing.T) {
		got, err := svc.GetItemValue(ctx, next.ID, "title")
		require.NoError(t, err)
		assert.Equal(t, "Widget v1", got)
	})

	t.Run("restore older version", func(t *testing.T) {
		require.NoError(t, svc.SetItemValue(ctx, schemakit.SetItemValueRequest{
			ItemID: next.ID, SystemName: "title", Value: "Widget v2", UpdatedBy: "tester",
		}))
		require.NoError(t, svc.RestoreItemVersion(ctx, next.ID, item.ID, "tester"))

		got, err := svc.GetItemValue(ctx, next.ID, "title")
		require.NoError(t, err)
		assert.Equal(t, "Widget v1", got)
	})

	t.Run("slug lookup returns the current version", func(t *testing.T) {
		bySlug, err := svc.GetItemBySlug(ctx, schema.ID, "widget")
		require.NoError(t, err)
		assert.Equal(t, next.ID, bySlug.ID)
	})
}

func TestServiceItemRelations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	schema := buildActiveSchema(t, svc)
	widget, err := svc.CreateItem(ctx, schemakit.CreateItemRequest{
		SchemaID: schema.ID, DisplayName: "Widget", CreatedBy: "tester",
	})
	require.NoError(t, err)
	accessory, err := svc.CreateItem(ctx, schemakit.CreateItemRequest{
		SchemaID: schema.ID, DisplayName: "Accessory", CreatedBy: "tester",
	})
	require.NoError(t, err)

	req := schemakit.AddItemRelationRequest{
		ItemID: widget.ID, TargetItemID: accessory.ID,
		RelationType: "accessory", UpdatedBy: "tester",
	}
	require.NoError(t, svc.AddItemRelation(ctx, req))
	// Second add of the same link is a no-op.
	require.NoError(t, svc.AddItemRelation(ctx, req))

	related, err := svc.GetRelatedItems(ctx, widget.ID, "accessory")
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, accessory.ID, related[0].ID)

	require.NoError(t, svc.RemoveItemRelation(ctx, widget.ID, accessory.ID, "accessory", "tester"))
	err = svc.RemoveItemRelation(ctx, widget.ID, accessory.ID, "accessory", "tester")
	assert.ErrorIs(t, err, schemakit.ErrRelationNotFound)
}

func TestServiceSearchItems(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	schema := buildActiveSchema(t, svc)

	seed := []struct {
		displayName string
		title       string
		price       string
	}{
		{"Red Widget", "Crimson Gadget", "19.99"},
		{"Blue Widget", "Azure Gadget", "24.99"},
		{"Green Gizmo", "Verdant Gizmo", "19.99"},
	}
	for _, row := range seed {
		item, err := svc.CreateItem(ctx, schemakit.CreateItemRequest{
			SchemaID: schema.ID, DisplayName: row.displayName, CreatedBy: "tester",
		})
		require.NoError(t, err)
		require.NoError(t, svc.SetItemValue(ctx, schemakit.SetItemValueRequest{
			ItemID: item.ID, SystemName: "title", Value: row.title, UpdatedBy: "tester",
		}))
		require.NoError(t, svc.SetItemValue(ctx, schemakit.SetItemValueRequest{
			ItemID: item.ID, SystemName: "price", Value: row.price, UpdatedBy: "tester",
		}))
	}

	t.Run("query matches display names", func(t *testing.T) {
		found, err := svc.SearchItems(ctx, schemakit.SearchItemsRequest{
			SchemaID: schema.ID, Query: "widget",
		})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("query matches field values when enabled", func(t *testing.T) {
		found, err := svc.SearchItems(ctx, schemakit.SearchItemsRequest{
			SchemaID: schema.ID, Query: "crimson", SearchFields: true,
		})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("filters narrow results", func(t *testing.T) {
		found, err := svc.SearchItems(ctx, schemakit.SearchItemsRequest{
			SchemaID: schema.ID,
			Filters:  map[string]interface{}{"price": "19.99"},
		})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("query and filters combine", func(t *testing.T) {
		found, err := svc.SearchItems(ctx, schemakit.SearchItemsRequest{
			SchemaID: schema.ID, Query: "widget",
			Filters: map[string]interface{}{"price": "19.99"},
		})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Red Widget", found[0].DisplayName)
	})

	t.Run("empty query matches all current items", func(t *testing.T) {
		found, err := svc.SearchItems(ctx, schemakit.SearchItemsRequest{SchemaID: schema.ID})
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})
}
