package schemakit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewValue creates an unset value for one (item, field) pair.
func NewValue(itemID, fieldID uuid.UUID) *Value {
	now := time.Now().UTC()
	return &Value{
		ID:        uuid.New(),
		ItemID:    itemID,
		FieldID:   fieldID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Set clears all slots and, for a non-nil raw value, stores it in the slot
// determined by the field type. Unlike ConvertFromStorage this path is
// strict: a parse failure fails with ErrInvalidValue citing the offending
// literal. The revision counter is incremented on every mutation.
func (v *Value) Set(raw interface{}, ft FieldType) error {
	v.clearSlots()
	if raw == nil {
		v.bump()
		return nil
	}

	switch ft.Slot() {
	case SlotString:
		if ft == FieldTypeTime {
			d, err := parseDuration(raw)
			if err != nil {
				return fmt.Errorf("%w: cannot parse %q as duration", ErrInvalidValue, valueText(raw, ft))
			}
			text := d.String()
			v.StringValue = &text
			break
		}
		text := valueText(raw, ft)
		v.StringValue = &text
	case SlotInteger:
		n, err := parseInt(raw)
		if err != nil {
			return fmt.Errorf("%w: cannot parse %q as integer", ErrInvalidValue, valueText(raw, ft))
		}
		v.IntValue = &n
	case SlotDecimal:
		d, err := parseDecimal(raw)
		if err != nil {
			return fmt.Errorf("%w: cannot parse %q as decimal", ErrInvalidValue, valueText(raw, ft))
		}
		v.DecimalValue = &d
	case SlotBoolean:
		b, err := parseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: cannot parse %q as boolean", ErrInvalidValue, valueText(raw, ft))
		}
		v.BoolValue = &b
	case SlotTimestamp:
		layout := time.RFC3339
		if ft == FieldTypeDate {
			layout = dateLayout
		}
		t, err := parseTimestamp(raw, layout)
		if err != nil {
			return fmt.Errorf("%w: cannot parse %q as timestamp", ErrInvalidValue, valueText(raw, ft))
		}
		v.TimeValue = &t
	case SlotFile:
		// File and image values are dual-written to the string and file-path
		// slots so the path survives text-only projections.
		text := valueText(raw, ft)
		v.StringValue = &text
		v.FilePathValue = &text
	case SlotRelation:
		n, err := parseInt(raw)
		if err != nil {
			return fmt.Errorf("%w: cannot parse %q as relation target id", ErrInvalidValue, valueText(raw, ft))
		}
		v.RelationValue = &n
	case SlotJSON:
		text, err := jsonText(raw)
		if err != nil {
			return fmt.Errorf("%w: cannot store %q as JSON", ErrInvalidValue, valueText(raw, ft))
		}
		v.JSONValue = &text
	case SlotNone:
		return fmt.Errorf("%w: %s fields are evaluated externally and hold no stored value", ErrInvalidValue, ft)
	}

	v.bump()
	return nil
}

// Get returns the populated slot for the field type, or nil when unset. Time
// fields are reconstituted from their canonical text form.
func (v *Value) Get(ft FieldType) interface{} {
	switch ft.Slot() {
	case SlotString:
		if v.StringValue == nil {
			return nil
		}
		if ft == FieldTypeTime {
			if d, err := time.ParseDuration(*v.StringValue); err == nil {
				return d
			}
		}
		return *v.StringValue
	case SlotInteger:
		if v.IntValue == nil {
			return nil
		}
		return *v.IntValue
	case SlotDecimal:
		if v.DecimalValue == nil {
			return nil
		}
		return *v.DecimalValue
	case SlotBoolean:
		if v.BoolValue == nil {
			return nil
		}
		return *v.BoolValue
	case SlotTimestamp:
		if v.TimeValue == nil {
			return nil
		}
		return *v.TimeValue
	case SlotFile:
		if v.FilePathValue != nil {
			return *v.FilePathValue
		}
		if v.StringValue != nil {
			return *v.StringValue
		}
		return nil
	case SlotRelation:
		if v.RelationValue == nil {
			return nil
		}
		return *v.RelationValue
	case SlotJSON:
		if v.JSONValue == nil {
			return nil
		}
		return *v.JSONValue
	default:
		return nil
	}
}

// IsSet reports whether any slot is populated.
func (v *Value) IsSet() bool {
	return v.StringValue != nil || v.IntValue != nil || v.DecimalValue != nil ||
		v.BoolValue != nil || v.TimeValue != nil || v.FilePathValue != nil ||
		v.RelationValue != nil || v.JSONValue != nil
}

// AsString returns the string slot. The second result is false when the slot
// is empty.
func (v *Value) AsString() (string, bool) {
	if v.StringValue != nil {
		return *v.StringValue, true
	}
	if v.JSONValue != nil {
		return *v.JSONValue, true
	}
	if v.FilePathValue != nil {
		return *v.FilePathValue, true
	}
	return "", false
}

// AsInt returns the integer or relation-target slot.
func (v *Value) AsInt() (int64, bool) {
	if v.IntValue != nil {
		return *v.IntValue, true
	}
	if v.RelationValue != nil {
		return *v.RelationValue, true
	}
	return 0, false
}

// AsDecimal returns the decimal slot, falling back to the integer slot.
func (v *Value) AsDecimal() (decimal.Decimal, bool) {
	if v.DecimalValue != nil {
		return *v.DecimalValue, true
	}
	if v.IntValue != nil {
		return decimal.NewFromInt(*v.IntValue), true
	}
	return decimal.Zero, false
}

// AsBool returns the boolean slot.
func (v *Value) AsBool() (bool, bool) {
	if v.BoolValue == nil {
		return false, false
	}
	return *v.BoolValue, true
}

// AsTime returns the timestamp slot.
func (v *Value) AsTime() (time.Time, bool) {
	if v.TimeValue == nil {
		return time.Time{}, false
	}
	return *v.TimeValue, true
}

// Text renders the populated slot in its canonical storage form, or "" when
// unset.
func (v *Value) Text(ft FieldType) string {
	raw := v.Get(ft)
	if raw == nil {
		return ""
	}
	return ConvertToStorage(raw, ft)
}

func (v *Value) clearSlots() {
	v.StringValue = nil
	v.IntValue = nil
	v.DecimalValue = nil
	v.BoolValue = nil
	v.TimeValue = nil
	v.FilePathValue = nil
	v.RelationValue = nil
	v.JSONValue = nil
}

func (v *Value) bump() {
	v.Revision++
	v.UpdatedAt = time.Now().UTC()
}
