package schemakit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType is the closed enumeration of supported field data types.
type FieldType string

// Field type constants (typed).
const (
	FieldTypeString      FieldType = "string"
	FieldTypeText        FieldType = "text"
	FieldTypeEmail       FieldType = "email"
	FieldTypeURL         FieldType = "url"
	FieldTypePhone       FieldType = "phone"
	FieldTypeColor       FieldType = "color"
	FieldTypeSelect      FieldType = "select"
	FieldTypeInteger     FieldType = "integer"
	FieldTypeDecimal     FieldType = "decimal"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeDate        FieldType = "date"
	FieldTypeDateTime    FieldType = "datetime"
	FieldTypeTime        FieldType = "time"
	FieldTypeFile        FieldType = "file"
	FieldTypeImage       FieldType = "image"
	FieldTypeRelation    FieldType = "relation"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeJSON        FieldType = "json"
	FieldTypeCalculated  FieldType = "calculated"
	FieldTypeFormula     FieldType = "formula"
)

// StorageSlot identifies which typed slot of a Value a field type writes to.
type StorageSlot int

// Storage slot constants.
const (
	SlotNone StorageSlot = iota
	SlotString
	SlotInteger
	SlotDecimal
	SlotBoolean
	SlotTimestamp
	SlotFile
	SlotRelation
	SlotJSON
)

const dateLayout = "2006-01-02"

var validFieldTypes = map[FieldType]bool{
	FieldTypeString: true, FieldTypeText: true, FieldTypeEmail: true,
	FieldTypeURL: true, FieldTypePhone: true, FieldTypeColor: true,
	FieldTypeSelect: true, FieldTypeInteger: true, FieldTypeDecimal: true,
	FieldTypeBoolean: true, FieldTypeDate: true, FieldTypeDateTime: true,
	FieldTypeTime: true, FieldTypeFile: true, FieldTypeImage: true,
	FieldTypeRelation: true, FieldTypeMultiSelect: true, FieldTypeJSON: true,
	FieldTypeCalculated: true, FieldTypeFormula: true,
}

// IsValidFieldType reports whether ft is a recognized field type.
func IsValidFieldType(ft FieldType) bool {
	return validFieldTypes[ft]
}

// Slot returns the storage slot for the field type. Calculated and formula
// fields are evaluated externally and have no slot.
func (ft FieldType) Slot() StorageSlot {
	switch ft {
	case FieldTypeString, FieldTypeText, FieldTypeEmail, FieldTypeURL,
		FieldTypePhone, FieldTypeColor, FieldTypeSelect, FieldTypeTime:
		return SlotString
	case FieldTypeInteger:
		return SlotInteger
	case FieldTypeDecimal:
		return SlotDecimal
	case FieldTypeBoolean:
		return SlotBoolean
	case FieldTypeDate, FieldTypeDateTime:
		return SlotTimestamp
	case FieldTypeFile, FieldTypeImage:
		return SlotFile
	case FieldTypeRelation:
		return SlotRelation
	case FieldTypeMultiSelect, FieldTypeJSON:
		return SlotJSON
	case FieldTypeCalculated, FieldTypeFormula:
		return SlotNone
	default:
		return SlotNone
	}
}

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	colorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// IsEmptyValue reports whether raw counts as "empty" for the given field
// type. Emptiness is type-specific: blank text, zero numbers, the zero
// instant for timestamps. A boolean is never empty once set.
func IsEmptyValue(raw interface{}, ft FieldType) bool {
	if raw == nil {
		return true
	}
	switch ft.Slot() {
	case SlotString, SlotFile, SlotJSON:
		return strings.TrimSpace(valueText(raw, ft)) == ""
	case SlotInteger, SlotRelation:
		n, err := parseInt(raw)
		return err == nil && n == 0
	case SlotDecimal:
		d, err := parseDecimal(raw)
		return err == nil && d.IsZero()
	case SlotBoolean:
		return false
	case SlotTimestamp:
		if t, ok := raw.(time.Time); ok {
			return t.IsZero()
		}
		return strings.TrimSpace(valueText(raw, ft)) == ""
	default:
		return false
	}
}

// ValidateValue checks raw against the field's type and validation rules.
// A required empty value yields a single error and short-circuits; a nil
// non-required value is valid. Any other value, empty text included, runs
// through the syntactic checks, and all applicable syntactic and
// custom-rule violations are collected.
func ValidateValue(raw interface{}, field *Field) []string {
	if field.IsRequired && IsEmptyValue(raw, field.Type) {
		return []string{fmt.Sprintf("%s is required", field.Name)}
	}
	if raw == nil {
		return nil
	}

	var errs []string
	text := valueText(raw, field.Type)

	switch field.Type {
	case FieldTypeEmail:
		if !emailRe.MatchString(text) {
			errs = append(errs, fmt.Sprintf("%s must be a valid email address", field.Name))
		}
	case FieldTypeURL:
		if u, err := url.Parse(text); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("%s must be a valid URL", field.Name))
		}
	case FieldTypeColor:
		if !colorRe.MatchString(text) {
			errs = append(errs, fmt.Sprintf("%s must be a hex color like #RGB or #RRGGBB", field.Name))
		}
	case FieldTypeInteger:
		n, err := parseInt(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be an integer", field.Name))
		} else if cfg, cfgErr := ParseIntegerConfig(field.Configuration); cfgErr == nil && cfg != nil {
			if cfg.MinValue != nil && n < *cfg.MinValue {
				errs = append(errs, fmt.Sprintf("%s must be at least %d", field.Name, *cfg.MinValue))
			}
			if cfg.MaxValue != nil && n > *cfg.MaxValue {
				errs = append(errs, fmt.Sprintf("%s must be at most %d", field.Name, *cfg.MaxValue))
			}
		}
	case FieldTypeDecimal:
		d, err := parseDecimal(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a decimal number", field.Name))
		} else if cfg, cfgErr := ParseDecimalConfig(field.Configuration); cfgErr == nil && cfg != nil {
			if cfg.MinValue != nil && d.LessThan(*cfg.MinValue) {
				errs = append(errs, fmt.Sprintf("%s must be at least %s", field.Name, cfg.MinValue.String()))
			}
			if cfg.MaxValue != nil && d.GreaterThan(*cfg.MaxValue) {
				errs = append(errs, fmt.Sprintf("%s must be at most %s", field.Name, cfg.MaxValue.String()))
			}
		}
	case FieldTypeBoolean:
		if _, err := parseBool(raw); err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a boolean", field.Name))
		}
	case FieldTypeDate:
		if _, err := parseTimestamp(raw, dateLayout); err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a date in the form %s", field.Name, dateLayout))
		}
	case FieldTypeDateTime:
		if _, err := parseTimestamp(raw, time.RFC3339); err != nil {
			errs = append(errs, fmt.Sprintf("%s must be an RFC 3339 timestamp", field.Name))
		}
	case FieldTypeTime:
		if _, err := parseDuration(raw); err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a duration like 1h30m", field.Name))
		}
	case FieldTypeRelation:
		if _, err := parseInt(raw); err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a relation target id", field.Name))
		}
	case FieldTypeMultiSelect, FieldTypeJSON:
		if _, err := jsonText(raw); err != nil {
			errs = append(errs, fmt.Sprintf("%s must be valid JSON", field.Name))
		}
	case FieldTypeSelect:
		if cfg, err := ParseSelectConfig(field.Configuration); err == nil && cfg != nil &&
			!cfg.AllowCustom && len(cfg.Options) > 0 && !cfg.HasOption(text) {
			errs = append(errs, fmt.Sprintf("%s must be one of the configured options", field.Name))
		}
	}

	errs = append(errs, applyValidationRules(text, field)...)
	return errs
}

// ConvertFromStorage parses the string-encoded form of a value back into its
// typed representation. On parse failure the raw text is returned unchanged;
// this path is a defensive fallback and never fails.
func ConvertFromStorage(text string, ft FieldType) interface{} {
	switch ft.Slot() {
	case SlotInteger, SlotRelation:
		if n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64); err == nil {
			return n
		}
	case SlotDecimal:
		if d, err := decimal.NewFromString(strings.TrimSpace(text)); err == nil {
			return d
		}
	case SlotBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
			return b
		}
	case SlotTimestamp:
		layout := time.RFC3339
		if ft == FieldTypeDate {
			layout = dateLayout
		}
		if t, err := time.Parse(layout, strings.TrimSpace(text)); err == nil {
			return t
		}
	case SlotString:
		if ft == FieldTypeTime {
			if d, err := time.ParseDuration(strings.TrimSpace(text)); err == nil {
				return d
			}
		}
	}
	return text
}

// ConvertToStorage encodes a typed value into its canonical string form:
// dates as yyyy-MM-dd, datetimes as RFC 3339, durations via their canonical
// text form, everything else via its default text conversion.
func ConvertToStorage(raw interface{}, ft FieldType) string {
	if raw == nil {
		return ""
	}
	switch ft {
	case FieldTypeDate:
		if t, ok := raw.(time.Time); ok {
			return t.Format(dateLayout)
		}
	case FieldTypeDateTime:
		if t, ok := raw.(time.Time); ok {
			return t.Format(time.RFC3339)
		}
	case FieldTypeTime:
		if d, ok := raw.(time.Duration); ok {
			return d.String()
		}
	case FieldTypeDecimal:
		if d, err := parseDecimal(raw); err == nil {
			return d.String()
		}
	}
	return valueText(raw, ft)
}

// valueText renders raw as text for matching and storage purposes.
func valueText(raw interface{}, ft FieldType) string {
	switch v := raw.(type) {
	case string:
		return v
	case time.Time:
		if ft == FieldTypeDate {
			return v.Format(dateLayout)
		}
		return v.Format(time.RFC3339)
	case time.Duration:
		return v.String()
	case decimal.Decimal:
		return v.String()
	default:
		return fmt.Sprintf("%v", raw)
	}
}

func parseInt(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("cannot interpret %T as integer", raw)
	}
}

func parseDecimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	default:
		return decimal.Zero, fmt.Errorf("cannot interpret %T as decimal", raw)
	}
}

func parseBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("cannot interpret %T as boolean", raw)
	}
}

func parseTimestamp(raw interface{}, layout string) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(layout, strings.TrimSpace(v))
	default:
		return time.Time{}, fmt.Errorf("cannot interpret %T as timestamp", raw)
	}
}

func parseDuration(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case string:
		return time.ParseDuration(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("cannot interpret %T as duration", raw)
	}
}

// jsonText renders raw as a JSON document string, validating it on the way.
func jsonText(raw interface{}) (string, error) {
	if s, ok := raw.(string); ok {
		if !json.Valid([]byte(s)) {
			return "", fmt.Errorf("malformed JSON document")
		}
		return s, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ValidationRule is one externally supplied predicate applied on top of the
// type-level checks. Rules are stored as a JSON array on the field; a
// malformed rule set is ignored, not fatal.
type ValidationRule struct {
	Rule    string      `json:"rule"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ParseValidationRules decodes the field's validation-rule blob. Malformed
// input yields nil.
func ParseValidationRules(text string) []ValidationRule {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var rules []ValidationRule
	if err := json.Unmarshal([]byte(text), &rules); err != nil {
		return nil
	}
	return rules
}

func applyValidationRules(text string, field *Field) []string {
	var errs []string
	for _, rule := range ParseValidationRules(field.ValidationRules) {
		msg := rule.Message
		switch rule.Rule {
		case "min_length":
			n, err := parseInt(rule.Value)
			if err != nil {
				continue
			}
			if int64(len(text)) < n {
				if msg == "" {
					msg = fmt.Sprintf("%s must be at least %d characters", field.Name, n)
				}
				errs = append(errs, msg)
			}
		case "max_length":
			n, err := parseInt(rule.Value)
			if err != nil {
				continue
			}
			if int64(len(text)) > n {
				if msg == "" {
					msg = fmt.Sprintf("%s must be at most %d characters", field.Name, n)
				}
				errs = append(errs, msg)
			}
		case "pattern":
			expr, ok := rule.Value.(string)
			if !ok {
				continue
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				continue
			}
			if !re.MatchString(text) {
				if msg == "" {
					msg = fmt.Sprintf("%s does not match the required pattern", field.Name)
				}
				errs = append(errs, msg)
			}
		case "min":
			bound, err := parseDecimal(rule.Value)
			if err != nil {
				continue
			}
			d, err := parseDecimal(text)
			if err != nil {
				continue
			}
			if d.LessThan(bound) {
				if msg == "" {
					msg = fmt.Sprintf("%s must be at least %s", field.Name, bound.String())
				}
				errs = append(errs, msg)
			}
		case "max":
			bound, err := parseDecimal(rule.Value)
			if err != nil {
				continue
			}
			d, err := parseDecimal(text)
			if err != nil {
				continue
			}
			if d.GreaterThan(bound) {
				if msg == "" {
					msg = fmt.Sprintf("%s must be at most %s", field.Name, bound.String())
				}
				errs = append(errs, msg)
			}
		}
	}
	return errs
}
