package schemakit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemakit/schemakit/pkg/schemakit"
)

func TestFieldTypeSlots(t *testing.T) {
	tests := []struct {
		fieldType schemakit.FieldType
		slot      schemakit.StorageSlot
	}{
		{schemakit.FieldTypeString, schemakit.SlotString},
		{schemakit.FieldTypeText, schemakit.SlotString},
		{schemakit.FieldTypeEmail, schemakit.SlotString},
		{schemakit.FieldTypeURL, schemakit.SlotString},
		{schemakit.FieldTypePhone, schemakit.SlotString},
		{schemakit.FieldTypeColor, schemakit.SlotString},
		{schemakit.FieldTypeSelect, schemakit.SlotString},
		{schemakit.FieldTypeTime, schemakit.SlotString},
		{schemakit.FieldTypeInteger, schemakit.SlotInteger},
		{schemakit.FieldTypeDecimal, schemakit.SlotDecimal},
		{schemakit.FieldTypeBoolean, schemakit.SlotBoolean},
		{schemakit.FieldTypeDate, schemakit.SlotTimestamp},
		{schemakit.FieldTypeDateTime, schemakit.SlotTimestamp},
		{schemakit.FieldTypeFile, schemakit.SlotFile},
		{schemakit.FieldTypeImage, schemakit.SlotFile},
		{schemakit.FieldTypeRelation, schemakit.SlotRelation},
		{schemakit.FieldTypeMultiSelect, schemakit.SlotJSON},
		{schemakit.FieldTypeJSON, schemakit.SlotJSON},
		{schemakit.FieldTypeCalculated, schemakit.SlotNone},
		{schemakit.FieldTypeFormula, schemakit.SlotNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.fieldType), func(t *testing.T) {
			assert.True(t, schemakit.IsValidFieldType(tt.fieldType))
			assert.Equal(t, tt.slot, tt.fieldType.Slot())
		})
	}

	assert.False(t, schemakit.IsValidFieldType("geo_point"))
}

func TestIsEmptyValue(t *testing.T) {
	tests := []struct {
		name      string
		raw       interface{}
		fieldType schemakit.FieldType
		empty     bool
	}{
		{"nil is empty", nil, schemakit.FieldTypeString, true},
		{"blank string is empty", "   ", schemakit.FieldTypeString, true},
		{"text is not empty", "hello", schemakit.FieldTypeString, false},
		{"zero integer is empty", 0, schemakit.FieldTypeInteger, true},
		{"non-zero integer is not empty", 42, schemakit.FieldTypeInteger, false},
		{"zero decimal is empty", decimal.Zero, schemakit.FieldTypeDecimal, true},
		{"non-zero decimal is not empty", decimal.NewFromFloat(1.5), schemakit.FieldTypeDecimal, false},
		{"false boolean is not empty", false, schemakit.FieldTypeBoolean, false},
		{"true boolean is not empty", true, schemakit.FieldTypeBoolean, false},
		{"zero time is empty", time.Time{}, schemakit.FieldTypeDateTime, true},
		{"real time is not empty", time.Now(), schemakit.FieldTypeDateTime, false},
		{"zero relation target is empty", int64(0), schemakit.FieldTypeRelation, true},
		{"relation target is not empty", int64(7), schemakit.FieldTypeRelation, false},
		{"blank json is empty", "", schemakit.FieldTypeJSON, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.empty, schemakit.IsEmptyValue(tt.raw, tt.fieldType))
		})
	}
}

func TestValidateValue(t *testing.T) {
	tests := []struct {
		name      string
		field     schemakit.Field
		raw       interface{}
		wantErrs  int
		errSubstr string
	}{
		{
			name:      "required empty short-circuits",
			field:     schemakit.Field{Name: "Title", Type: schemakit.FieldTypeString, IsRequired: true},
			raw:       "",
			wantErrs:  1,
			errSubstr: "required",
		},
		{
			name:     "nil non-required is valid",
			field:    schemakit.Field{Name: "Title", Type: schemakit.FieldTypeString},
			raw:      nil,
			wantErrs: 0,
		},
		{
			name:      "blank non-required still runs syntactic checks",
			field:     schemakit.Field{Name: "Contact", Type: schemakit.FieldTypeEmail},
			raw:       "",
			wantErrs:  1,
			errSubstr: "email",
		},
		{
			name:     "blank non-required plain string is valid",
			field:    schemakit.Field{Name: "Subtitle", Type: schemakit.FieldTypeString},
			raw:      "",
			wantErrs: 0,
		},
		{
			name:      "bad email",
			field:     schemakit.Field{Name: "Contact", Type: schemakit.FieldTypeEmail},
			raw:       "not-an-email",
			wantErrs:  1,
			errSubstr: "email",
		},
		{
			name:     "good email",
			field:    schemakit.Field{Name: "Contact", Type: schemakit.FieldTypeEmail},
			raw:      "dev@example.com",
			wantErrs: 0,
		},
		{
			name:      "bad url",
			field:     schemakit.Field{Name: "Homepage", Type: schemakit.FieldTypeURL},
			raw:       "not a url",
			wantErrs:  1,
			errSubstr: "URL",
		},
		{
			name:     "good url",
			field:    schemakit.Field{Name: "Homepage", Type: schemakit.FieldTypeURL},
			raw:      "https://example.com/docs",
			wantErrs: 0,
		},
		{
			name:      "bad color",
			field:     schemakit.Field{Name: "Accent", Type: schemakit.FieldTypeColor},
			raw:       "red",
			wantErrs:  1,
			errSubstr: "hex color",
		},
		{
			name:     "short hex color",
			field:    schemakit.Field{Name: "Accent", Type: schemakit.FieldTypeColor},
			raw:      "#f0a",
			wantErrs: 0,
		},
		{
			name:      "integer below min",
			field:     schemakit.Field{Name: "Count", Type: schemakit.FieldTypeInteger, Configuration: `{"min_value": 1, "max_value": 10}`},
			raw:       -3,
			wantErrs:  1,
			errSubstr: "at least",
		},
		{
			name:      "integer above max",
			field:     schemakit.Field{Name: "Count", Type: schemakit.FieldTypeInteger, Configuration: `{"min_value": 1, "max_value": 10}`},
			raw:       11,
			wantErrs:  1,
			errSubstr: "at most",
		},
		{
			name:     "integer in range",
			field:    schemakit.Field{Name: "Count", Type: schemakit.FieldTypeInteger, Configuration: `{"min_value": 1, "max_value": 10}`},
			raw:      5,
			wantErrs: 0,
		},
		{
			name:      "non-integer",
			field:     schemakit.Field{Name: "Count", Type: schemakit.FieldTypeInteger},
			raw:       "five",
			wantErrs:  1,
			errSubstr: "integer",
		},
		{
			name:      "decimal below min",
			field:     schemakit.Field{Name: "Price", Type: schemakit.FieldTypeDecimal, Configuration: `{"min_value": "0"}`},
			raw:       "-9.99",
			wantErrs:  1,
			errSubstr: "at least",
		},
		{
			name:      "bad date",
			field:     schemakit.Field{Name: "Released", Type: schemakit.FieldTypeDate},
			raw:       "15/01/2024",
			wantErrs:  1,
			errSubstr: "date",
		},
		{
			name:     "good date",
			field:    schemakit.Field{Name: "Released", Type: schemakit.FieldTypeDate},
			raw:      "2024-01-15",
			wantErrs: 0,
		},
		{
			name:      "bad datetime",
			field:     schemakit.Field{Name: "PublishedAt", Type: schemakit.FieldTypeDateTime},
			raw:       "yesterday",
			wantErrs:  1,
			errSubstr: "RFC 3339",
		},
		{
			name:      "bad duration",
			field:     schemakit.Field{Name: "Runtime", Type: schemakit.FieldTypeTime},
			raw:       "ninety minutes",
			wantErrs:  1,
			errSubstr: "duration",
		},
		{
			name:     "good duration",
			field:    schemakit.Field{Name: "Runtime", Type: schemakit.FieldTypeTime},
			raw:      "1h30m",
			wantErrs: 0,
		},
		{
			name:      "malformed json",
			field:     schemakit.Field{Name: "Meta", Type: schemakit.FieldTypeJSON},
			raw:       `{"open":`,
			wantErrs:  1,
			errSubstr: "JSON",
		},
		{
			name:      "select outside options",
			field:     schemakit.Field{Name: "Size", Type: schemakit.FieldTypeSelect, Configuration: `{"options":[{"value":"s"},{"value":"m"},{"value":"l"}]}`},
			raw:       "xxl",
			wantErrs:  1,
			errSubstr: "options",
		},
		{
			name:     "select with custom allowed",
			field:    schemakit.Field{Name: "Size", Type: schemakit.FieldTypeSelect, Configuration: `{"options":[{"value":"s"}],"allow_custom":true}`},
			raw:      "xxl",
			wantErrs: 0,
		},
		{
			name:      "custom min_length rule",
			field:     schemakit.Field{Name: "Code", Type: schemakit.FieldTypeString, ValidationRules: `[{"rule":"min_length","value":4}]`},
			raw:       "ab",
			wantErrs:  1,
			errSubstr: "at least 4 characters",
		},
		{
			name:      "custom pattern rule with message",
			field:     schemakit.Field{Name: "SKU", Type: schemakit.FieldTypeString, ValidationRules: `[{"rule":"pattern","value":"^[A-Z]{3}-\\d+$","message":"SKU format is AAA-123"}]`},
			raw:       "bad sku",
			wantErrs:  1,
			errSubstr: "SKU format is AAA-123",
		},
		{
			name:     "malformed rule blob is ignored",
			field:    schemakit.Field{Name: "Code", Type: schemakit.FieldTypeString, ValidationRules: `{broken`},
			raw:      "anything",
			wantErrs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := schemakit.ValidateValue(tt.raw, &tt.field)
			assert.Len(t, errs, tt.wantErrs)
			if tt.errSubstr != "" && len(errs) > 0 {
				assert.Contains(t, errs[0], tt.errSubstr)
			}
		})
	}
}

func TestValidateValueAccumulatesErrors(t *testing.T) {
	field := schemakit.Field{
		Name:            "Code",
		Type:            schemakit.FieldTypeString,
		ValidationRules: `[{"rule":"min_length","value":10},{"rule":"pattern","value":"^\\d+$"}]`,
	}

	errs := schemakit.ValidateValue("abc", &field)
	assert.Len(t, errs, 2)
}

func TestConvertStorageRoundTrip(t *testing.T) {
	released := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	publishedAt := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		fieldType schemakit.FieldType
		typed     interface{}
		stored    string
	}{
		{"string", schemakit.FieldTypeString, "hello", "hello"},
		{"integer", schemakit.FieldTypeInteger, int64(42), "42"},
		{"decimal", schemakit.FieldTypeDecimal, decimal.RequireFromString("19.99"), "19.99"},
		{"boolean", schemakit.FieldTypeBoolean, true, "true"},
		{"date", schemakit.FieldTypeDate, released, "2024-01-15"},
		{"datetime", schemakit.FieldTypeDateTime, publishedAt, "2024-01-15T09:30:00Z"},
		{"duration", schemakit.FieldTypeTime, 90 * time.Minute, "1h30m0s"},
		{"relation", schemakit.FieldTypeRelation, int64(7), "7"},
		{"json", schemakit.FieldTypeJSON, `{"a":1}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := schemakit.ConvertToStorage(tt.typed, tt.fieldType)
			require.Equal(t, tt.stored, stored)

			back := schemakit.ConvertFromStorage(stored, tt.fieldType)
			assert.Equal(t, tt.typed, back)
		})
	}
}

func TestConvertFromStorageLenientFallback(t *testing.T) {
	// Unparseable stored text comes back as the raw string rather than an
	// error; reads never fail on historical data.
	assert.Equal(t, "not-a-number", schemakit.ConvertFromStorage("not-a-number", schemakit.FieldTypeInteger))
	assert.Equal(t, "not-a-date", schemakit.ConvertFromStorage("not-a-date", schemakit.FieldTypeDate))
	assert.Equal(t, "nope", schemakit.ConvertFromStorage("nope", schemakit.FieldTypeBoolean))
	assert.Equal(t, "broken", schemakit.ConvertFromStorage("broken", schemakit.FieldTypeDecimal))
}

func TestConvertToStorageNil(t *testing.T) {
	assert.Equal(t, "", schemakit.ConvertToStorage(nil, schemakit.FieldTypeString))
}

func TestParseValidationRules(t *testing.T) {
	rules := schemakit.ParseValidationRules(`[{"rule":"min_length","value":3,"message":"too short"}]`)
	require.Len(t, rules, 1)
	assert.Equal(t, "min_length", rules[0].Rule)
	assert.Equal(t, "too short", rules[0].Message)

	assert.Nil(t, schemakit.ParseValidationRules(""))
	assert.Nil(t, schemakit.ParseValidationRules(`{not json`))
}
