package schemakit

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SelectOption is one selectable choice of a select or multiselect field.
type SelectOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Order       int    `json:"order"`
}

// SelectConfig is the configuration blob recognized on select fields.
type SelectConfig struct {
	Options      []SelectOption `json:"options"`
	AllowCustom  bool           `json:"allow_custom"`
	DefaultValue string         `json:"default_value,omitempty"`
}

// HasOption reports whether value is one of the configured option values.
func (c *SelectConfig) HasOption(value string) bool {
	for _, opt := range c.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// RelationConfig is the configuration blob recognized on relation fields.
type RelationConfig struct {
	RequiredRelationID *uuid.UUID `json:"required_relation_id,omitempty"`
	DisplayField       string     `json:"display_field,omitempty"`
	AllowMultiple      bool       `json:"allow_multiple"`
	Filter             string     `json:"filter,omitempty"`
	OrderBy            string     `json:"order_by,omitempty"`
	IsCascading        bool       `json:"is_cascading"`
}

// IntegerConfig is the configuration blob recognized on integer fields.
type IntegerConfig struct {
	MinValue *int64 `json:"min_value,omitempty"`
	MaxValue *int64 `json:"max_value,omitempty"`
	Step     int64  `json:"step,omitempty"`
}

// DecimalConfig is the configuration blob recognized on decimal fields.
type DecimalConfig struct {
	Precision int32            `json:"precision"`
	Scale     int32            `json:"scale"`
	MinValue  *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue  *decimal.Decimal `json:"max_value,omitempty"`
	Currency  string           `json:"currency,omitempty"`
}

// ParseSelectConfig decodes a select field configuration blob. An empty blob
// yields nil without error.
func ParseSelectConfig(text string) (*SelectConfig, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var cfg SelectConfig
	if err := json.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseRelationConfig decodes a relation field configuration blob.
func ParseRelationConfig(text string) (*RelationConfig, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var cfg RelationConfig
	if err := json.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseIntegerConfig decodes an integer field configuration blob.
func ParseIntegerConfig(text string) (*IntegerConfig, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var cfg IntegerConfig
	if err := json.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseDecimalConfig decodes a decimal field configuration blob.
func ParseDecimalConfig(text string) (*DecimalConfig, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var cfg DecimalConfig
	if err := json.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
