package schemakit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemakit/schemakit/pkg/schemakit"
)

// activeProductSchema builds an active schema with a mix of field shapes used
// across the item tests.
func activeProductSchema(t *testing.T) *schemakit.Schema {
	t.Helper()
	schema, err := schemakit.NewSchema("Product", "product", "tester", false)
	require.NoError(t, err)

	fields := []schemakit.AddFieldParams{
		{Name: "Title", SystemName: "title", Type: schemakit.FieldTypeString, IsRequired: true, IsSearchable: true},
		{Name: "Price", SystemName: "price", Type: schemakit.FieldTypeDecimal, IsFilterable: true},
		{Name: "Stock", SystemName: "stock", Type: schemakit.FieldTypeInteger, DefaultValue: "0"},
		{Name: "Released", SystemName: "released", Type: schemakit.FieldTypeDate},
		{Name: "Color", SystemName: "color", Type: schemakit.FieldTypeColor, DefaultValue: "#000"},
	}
	for _, p := range fields {
		p.UpdatedBy = "tester"
		_, err := schema.AddField(p)
		require.NoError(t, err)
	}
	require.NoError(t, schema.Activate("tester"))
	return schema
}

func newProductItem(t *testing.T, schema *schemakit.Schema, displayName string) *schemakit.Item {
	t.Helper()
	item, err := schemakit.NewItem(schema, displayName, "tester", nil)
	require.NoError(t, err)
	return item
}

func TestNewItem(t *testing.T) {
	t.Run("created against active schema", func(t *testing.T) {
		schema := activeProductSchema(t)
		item := newProductItem(t, schema, "Iphone 15 'Pro'")

		assert.Equal(t, schemakit.ItemStatusDraft, item.Status)
		assert.Equal(t, 1, item.Version)
		assert.True(t, item.IsCurrentVersion)
		assert.Equal(t, "iphone-15-pro", item.Slug)
		assert.Len(t, item.PublicID, 26)
	})

	t.Run("draft schema rejected", func(t *testing.T) {
		schema, err := schemakit.NewSchema("Product", "product", "tester", false)
		require.NoError(t, err)

		_, err = schemakit.NewItem(schema, "Widget", "tester", nil)
		assert.ErrorIs(t, err, schemakit.ErrInvalidState)
	})

	t.Run("blank display name rejected", func(t *testing.T) {
		schema := activeProductSchema(t)
		_, err := schemakit.NewItem(schema, "   ", "tester", nil)
		assert.ErrorIs(t, err, schemakit.ErrInvalidArgument)
	})

	t.Run("parent link recorded", func(t *testing.T) {
		schema := activeProductSchema(t)
		parent := newProductItem(t, schema, "Parent")
		child, err := schemakit.NewItem(schema, "Child", "tester", parent)
		require.NoError(t, err)
		require.NotNil(t, child.ParentItemID)
		assert.Equal(t, parent.ID, *child.ParentItemID)
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Iphone 15 'Pro'", "iphone-15-pro"},
		{" Café — Crème ", "caf-crme"},
		{"Hello   World", "hello-world"},
		{`"Quoted" name`, "quoted-name"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER case", "upper-case"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, schemakit.Slugify(tt.in))
		})
	}
}

func TestItemSetAndGetFieldValue(t *testing.T) {
	schema := activeProductSchema(t)
	item := newProductItem(t, schema, "Widget")

	t.Run("set and read back", func(t *testing.T) {
		require.NoError(t, item.SetFieldValue("title", "Widget Deluxe", "tester"))
		got, err := item.GetFieldValue("title")
		require.NoError(t, err)
		assert.Equal(t, "Widget Deluxe", got)
	})

	t.Run("unknown field", func(t *testing.T) {
		err := item.SetFieldValue("ghost", "x", "tester")
		assert.ErrorIs(t, err, schemakit.ErrFieldNotFound)

		_, err = item.GetFieldValue("ghost")
		assert.ErrorIs(t, err, schemakit.ErrFieldNotFound)
	})

	t.Run("validation failure reported as aggregate", func(t *testing.T) {
		err := item.SetFieldValue("color", "red", "tester")
		var verr *schemakit.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Errors[0], "hex color")
	})

	t.Run("default value fallback", func(t *testing.T) {
		got, err := item.GetFieldValue("stock")
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)
	})

	t.Run("no value and no default yields nil", func(t *testing.T) {
		got, err := item.GetFieldValue("released")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("stored value wins over default", func(t *testing.T) {
		require.NoError(t, item.SetFieldValue("stock", 12, "tester"))
		got, err := item.GetFieldValue("stock")
		require.NoError(t, err)
		assert.Equal(t, int64(12), got)
	})
}

func TestItemPublish(t *testing.T) {
	t.Run("missing required fields reported together", func(t *testing.T) {
		schema, err := schemakit.NewSchema("Event", "event", "tester", false)
		require.NoError(t, err)
		for _, p := range []schemakit.AddFieldParams{
			{Name: "Title", SystemName: "title", Type: schemakit.FieldTypeString, IsRequired: true},
			{Name: "Venue", SystemName: "venue", Type: schemakit.FieldTypeString, IsRequired: true},
		} {
			p.UpdatedBy = "tester"
			_, err := schema.AddField(p)
			require.NoError(t, err)
		}
		require.NoError(t, schema.Activate("tester"))

		item := newProductItem(t, schema, "Launch")
		err = item.Publish("tester")
		var verr *schemakit.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Errors, 2)
		assert.Equal(t, schemakit.ItemStatusDraft, item.Status)
	})

	t.Run("default satisfies required field", func(t *testing.T) {
		schema, err := schemakit.NewSchema("Note", "note", "tester", false)
		require.NoError(t, err)
		_, err = schema.AddField(schemakit.AddFieldParams{
			Name: "Kind", SystemName: "kind", Type: schemakit.FieldTypeString,
			IsRequired: true, DefaultValue: "general", UpdatedBy: "tester",
		})
		require.NoError(t, err)
		require.NoError(t, schema.Activate("tester"))

		item := newProductItem(t, schema, "Memo")
		require.NoError(t, item.Publish("tester"))
		assert.Equal(t, schemakit.ItemStatusPublished, item.Status)
		assert.NotNil(t, item.PublishedAt)
	})

	t.Run("publish then unpublish", func(t *testing.T) {
		schema := activeProductSchema(t)
		item := newProductItem(t, schema, "Widget")
		require.NoError(t, item.SetFieldValue("title", "Widget", "tester"))

		require.NoError(t, item.Publish("tester"))
		assert.ErrorIs(t, item.Publish("tester"), schemakit.ErrInvalidState)

		require.NoError(t, item.Unpublish("tester"))
		assert.Equal(t, schemakit.ItemStatusDraft, item.Status)
		assert.Nil(t, item.PublishedAt)
	})
}

func TestItemArchiveAndDelete(t *testing.T) {
	schema := activeProductSchema(t)

	t.Run("published item cannot be deleted", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		require.NoError(t, item.SetFieldValue("title", "Widget", "tester"))
		require.NoError(t, item.Publish("tester"))

		err := item.Delete("tester")
		assert.ErrorIs(t, err, schemakit.ErrInvalidState)
		assert.Equal(t, schemakit.ItemStatusPublished, item.Status)
	})

	t.Run("archive from published, then unarchive", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		require.NoError(t, item.SetFieldValue("title", "Widget", "tester"))
		require.NoError(t, item.Publish("tester"))

		require.NoError(t, item.Archive("tester"))
		assert.Equal(t, schemakit.ItemStatusArchived, item.Status)
		assert.ErrorIs(t, item.Archive("tester"), schemakit.ErrInvalidState)

		require.NoError(t, item.Unarchive("tester"))
		assert.Equal(t, schemakit.ItemStatusDraft, item.Status)
	})

	t.Run("delete from draft and restore", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		require.NoError(t, item.Delete("tester"))
		assert.Equal(t, schemakit.ItemStatusDeleted, item.Status)
		require.NotNil(t, item.DeletedAt)
		assert.ErrorIs(t, item.Delete("tester"), schemakit.ErrInvalidState)

		require.NoError(t, item.Restore("tester"))
		assert.Equal(t, schemakit.ItemStatusDraft, item.Status)
		assert.Nil(t, item.DeletedAt)
	})

	t.Run("delete from archived", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		require.NoError(t, item.Archive("tester"))
		require.NoError(t, item.Delete("tester"))
	})
}

func TestItemVersioning(t *testing.T) {
	schema := activeProductSchema(t)

	t.Run("branching copies values and demotes the original", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		require.NoError(t, item.SetFieldValue("title", "Widget", "tester"))
		require.NoError(t, item.SetFieldValue("price", "19.99", "tester"))
		require.NoError(t, item.SetFieldValue("released", "2024-01-15", "tester"))

		next, err := item.CreateNewVersion("tester")
		require.NoError(t, err)

		assert.Equal(t, 2, next.Version)
		assert.True(t, next.IsCurrentVersion)
		assert.False(t, item.IsCurrentVersion)
		assert.Equal(t, schemakit.ItemStatusDraft, next.Status)
		require.NotNil(t, next.PreviousVersionID)
		assert.Equal(t, item.ID, *next.PreviousVersionID)
		assert.NotEqual(t, item.ID, next.ID)
		assert.NotEqual(t, item.PublicID, next.PublicID)

		title, err := next.GetFieldValue("title")
		require.NoError(t, err)
		assert.Equal(t, "Widget", title)
		released, err := next.GetFieldValue("released")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), released)
	})

	t.Run("superseded version cannot branch again", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		next, err := item.CreateNewVersion("tester")
		require.NoError(t, err)

		_, err = item.CreateNewVersion("tester")
		assert.ErrorIs(t, err, schemakit.ErrInvalidState)
		assert.True(t, next.IsCurrentVersion)
	})

	t.Run("new version edits do not touch the original", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		require.NoError(t, item.SetFieldValue("title", "Widget", "tester"))

		next, err := item.CreateNewVersion("tester")
		require.NoError(t, err)
		require.NoError(t, next.SetFieldValue("title", "Widget v2", "tester"))

		original, err := item.GetFieldValue("title")
		require.NoError(t, err)
		assert.Equal(t, "Widget", original)
	})

	t.Run("restore version copies values back", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		require.NoError(t, item.SetFieldValue("title", "Widget v1", "tester"))

		next, err := item.CreateNewVersion("tester")
		require.NoError(t, err)
		require.NoError(t, next.SetFieldValue("title", "Widget v2", "tester"))

		require.NoError(t, next.RestoreVersion(item, "tester"))
		title, err := next.GetFieldValue("title")
		require.NoError(t, err)
		assert.Equal(t, "Widget v1", title)
	})

	t.Run("restore guards", func(t *testing.T) {
		item := newProductItem(t, schema, "Widget")
		assert.ErrorIs(t, item.RestoreVersion(nil, "tester"), schemakit.ErrInvalidArgument)
		assert.ErrorIs(t, item.RestoreVersion(item, "tester"), schemakit.ErrInvalidArgument)

		other, err := schemakit.NewSchema("Other", "other", "tester", false)
		require.NoError(t, err)
		_, err = other.AddField(schemakit.AddFieldParams{
			Name: "Title", SystemName: "title",
			Type: schemakit.FieldTypeString, UpdatedBy: "tester",
		})
		require.NoError(t, err)
		require.NoError(t, other.Activate("tester"))
		foreign := newProductItem(t, other, "Foreign")

		assert.ErrorIs(t, item.RestoreVersion(foreign, "tester"), schemakit.ErrInvalidArgument)
	})
}

func TestItemRelations(t *testing.T) {
	schema := activeProductSchema(t)
	item := newProductItem(t, schema, "Widget")
	accessory := newProductItem(t, schema, "Accessory")

	t.Run("add is idempotent per target and type", func(t *testing.T) {
		require.NoError(t, item.AddRelation(accessory, "accessory", "tester"))
		historyLen := len(item.History)

		require.NoError(t, item.AddRelation(accessory, "accessory", "tester"))
		assert.Len(t, item.Relations, 1)
		// The duplicate is a no-op and leaves no audit trace.
		assert.Len(t, item.History, historyLen)

		require.NoError(t, item.AddRelation(accessory, "replacement", "tester"))
		assert.Len(t, item.Relations, 2)
	})

	t.Run("typed lookup", func(t *testing.T) {
		targets := item.GetRelatedItems("accessory")
		require.Len(t, targets, 1)
		assert.Equal(t, accessory.ID, targets[0])
		assert.Empty(t, item.GetRelatedItems("unknown"))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, item.RemoveRelation(accessory.ID, "replacement", "tester"))
		assert.Len(t, item.Relations, 1)

		err := item.RemoveRelation(accessory.ID, "replacement", "tester")
		assert.ErrorIs(t, err, schemakit.ErrRelationNotFound)
	})

	t.Run("nil target rejected", func(t *testing.T) {
		assert.ErrorIs(t, item.AddRelation(nil, "accessory", "tester"), schemakit.ErrInvalidArgument)
	})
}

func TestItemSearchAndFilters(t *testing.T) {
	schema := activeProductSchema(t)
	item := newProductItem(t, schema, "Red Widget")
	require.NoError(t, item.SetFieldValue("title", "Crimson Gadget", "tester"))
	require.NoError(t, item.SetFieldValue("price", "19.99", "tester"))

	t.Run("search display name", func(t *testing.T) {
		assert.True(t, item.MatchesSearch("red", false))
		assert.True(t, item.MatchesSearch("WIDGET", false))
		assert.False(t, item.MatchesSearch("blue", false))
	})

	t.Run("search field values when enabled", func(t *testing.T) {
		assert.False(t, item.MatchesSearch("crimson", false))
		assert.True(t, item.MatchesSearch("crimson", true))
	})

	t.Run("empty query matches", func(t *testing.T) {
		assert.True(t, item.MatchesSearch("", false))
		assert.True(t, item.MatchesSearch("   ", true))
	})

	t.Run("filters compare canonical text", func(t *testing.T) {
		assert.True(t, item.MatchesFilters(map[string]interface{}{"price": "19.99"}))
		assert.True(t, item.MatchesFilters(map[string]interface{}{"title": "Crimson Gadget"}))
		assert.False(t, item.MatchesFilters(map[string]interface{}{"price": "10.00"}))
	})

	t.Run("missing stored value fails non-nil filter", func(t *testing.T) {
		assert.False(t, item.MatchesFilters(map[string]interface{}{"released": "2024-01-15"}))
	})

	t.Run("unknown filter field fails", func(t *testing.T) {
		assert.False(t, item.MatchesFilters(map[string]interface{}{"ghost": "x"}))
	})

	t.Run("empty filters match", func(t *testing.T) {
		assert.True(t, item.MatchesFilters(nil))
	})
}
