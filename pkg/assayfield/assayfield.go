// Package assayfield validates and normalizes assay field values against the
// field schema declared by an assay type.
package assayfield

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

type Type string

const (
	TypeString  Type = "STRING"
	TypeText    Type = "TEXT"
	TypeDate    Type = "DATE"
	TypeInteger Type = "INTEGER"
	TypeFloat   Type = "FLOAT"
	TypeBoolean Type = "BOOLEAN"
)

const DateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeText, TypeDate, TypeInteger, TypeFloat, TypeBoolean:
		return true
	}
	return false
}

type Definition struct {
	Name     string
	Type     Type
	Required bool
}

// Schema is the field contract of an assay type. RequiredFields may name keys
// that have no Definition; those must be present but are not type checked.
type Schema struct {
	Fields         []Definition
	RequiredFields []string
}

// FieldError reports the first field that broke the schema.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

// Validate checks values against schema and returns a copy with every declared
// field coerced to its canonical representation: strings, int64, float64,
// bool and dates as YYYY-MM-DD. Undeclared keys are copied through.
func Validate(schema Schema, values map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}

	declared := make(map[string]bool, len(schema.Fields))
	for _, def := range schema.Fields {
		declared[def.Name] = true
		raw, present := lookup(values, def.Name)
		if !present {
			if def.Required || slices.Contains(schema.RequiredFields, def.Name) {
				return nil, &FieldError{Field: def.Name, Reason: "is required"}
			}
			continue
		}
		coerced, err := Coerce(def.Type, raw)
		if err != nil {
			return nil, &FieldError{Field: def.Name, Reason: err.Error()}
		}
		out[def.Name] = coerced
	}

	for _, name := range schema.RequiredFields {
		if declared[name] {
			continue
		}
		if _, present := lookup(values, name); !present {
			return nil, &FieldError{Field: name, Reason: "is required"}
		}
	}
	return out, nil
}

// Normalize re-applies declared field types to stored values, leaving any
// value that no longer conforms untouched. Used when reading values back from
// JSON columns, where every number decodes as float64.
func Normalize(schema Schema, values map[string]interface{}) map[string]interface{} {
	if values == nil {
		return nil
	}
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, def := range schema.Fields {
		raw, ok := values[def.Name]
		if !ok || raw == nil {
			continue
		}
		if coerced, err := Coerce(def.Type, raw); err == nil {
			out[def.Name] = coerced
		}
	}
	return out
}

// Coerce converts v to the canonical representation of t.
func Coerce(t Type, v interface{}) (interface{}, error) {
	switch t {
	case TypeString, TypeText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		return s, nil
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("must be a boolean")
		}
		return b, nil
	case TypeInteger:
		return toInt(v)
	case TypeFloat:
		return toFloat(v)
	case TypeDate:
		d, err := toDate(v)
		if err != nil {
			return nil, err
		}
		return d.Format(DateLayout), nil
	}
	return nil, fmt.Errorf("has unknown type %s", t)
}

func toInt(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float32:
		return integral(float64(n))
	case float64:
		return integral(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return integral(f)
	}
	return 0, fmt.Errorf("must be an integer")
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, fmt.Errorf("must be an integer")
	}
	return int64(f), nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("must be a number")
		}
		return f, nil
	}
	return 0, fmt.Errorf("must be a number")
}

// toDate accepts a time.Time, an ISO-8601 string or epoch milliseconds.
func toDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case *time.Time:
		if d != nil {
			return d.UTC(), nil
		}
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
	default:
		if ms, err := toInt(v); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("must be a date (ISO-8601 string or epoch milliseconds)")
}

func lookup(values map[string]interface{}, name string) (interface{}, bool) {
	v, ok := values[name]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}
