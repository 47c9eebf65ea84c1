// Package toolschema translates a tool's declared JSON-Schema-like parameter
// description into a runtime-validated call signature.
//
// Translation is total: a schema that is absent or whose shape is not
// understood falls back to a signature accepting any single opaque input.
package toolschema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mcpbridge/mcpbridge/internal/model"
)

// FieldKind is the closed set of field variants a signature can declare.
type FieldKind string

const (
	KindString   FieldKind = "string"
	KindEnum     FieldKind = "enum"
	KindNumber   FieldKind = "number"
	KindBoolean  FieldKind = "boolean"
	KindSequence FieldKind = "sequence"
	KindOpaque   FieldKind = "opaque"
)

// Field is one declared parameter of a tool signature.
type Field struct {
	Name        string
	Kind        FieldKind
	Description string
	Required    bool

	// Enum is the exact value set for KindEnum fields.
	Enum []string

	// Default is applied when the field is absent from the input.
	// nil means no default.
	Default any
}

// Signature is a validated call signature produced from a tool schema.
type Signature struct {
	// Fields are sorted by name for deterministic iteration.
	Fields []Field

	// opaque marks the fallback signature that accepts any input as-is.
	opaque bool
}

// Opaque reports whether this is the accept-anything fallback signature.
func (s Signature) Opaque() bool { return s.opaque }

// Field returns the declared field with the given name.
func (s Signature) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// rawSchema mirrors the subset of JSON Schema that providers declare.
type rawSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]rawProperty `json:"properties"`
	Required   []string               `json:"required"`
}

type rawProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Enum        []any  `json:"enum"`
	Default     any    `json:"default"`
}

// Translate converts a JSON-Schema-like description into a Signature.
// It never fails: anything it does not understand becomes the opaque
// fallback (whole schema) or an opaque field (single property).
func Translate(raw json.RawMessage) Signature {
	if len(raw) == 0 {
		return opaqueFallback()
	}

	var schema rawSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return opaqueFallback()
	}
	if schema.Type != "object" || schema.Properties == nil {
		return opaqueFallback()
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	fields := make([]Field, 0, len(schema.Properties))
	for name, prop := range schema.Properties {
		f := Field{
			Name:        name,
			Description: prop.Description,
			Required:    required[name],
			Default:     prop.Default,
		}

		switch prop.Type {
		case "string":
			f.Kind = KindString
			if values := stringEnum(prop.Enum); len(values) > 0 {
				f.Kind = KindEnum
				f.Enum = values
			}
		case "number", "integer":
			f.Kind = KindNumber
		case "boolean":
			f.Kind = KindBoolean
		case "array":
			f.Kind = KindSequence
		default:
			f.Kind = KindOpaque
		}

		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	return Signature{Fields: fields}
}

// Validate applies the signature to a candidate input.
// On success it returns a new input object containing only declared
// properties (unknown keys are dropped, defaults are applied). On mismatch
// it returns a ValidationError naming the offending field.
func (s Signature) Validate(input map[string]any) (map[string]any, error) {
	if s.opaque {
		// the fallback forwards the whole input verbatim rather than
		// requiring the single "input" key: the tool declared no usable
		// shape, so the caller's keys must survive untouched
		out := make(map[string]any, len(input))
		for k, v := range input {
			out[k] = v
		}
		return out, nil
	}

	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		value, present := input[f.Name]
		if !present {
			if f.Default != nil {
				out[f.Name] = f.Default
				continue
			}
			if f.Required {
				return nil, &model.ValidationError{
					Field:  f.Name,
					Reason: "missing required field",
				}
			}
			continue
		}

		if err := f.check(value); err != nil {
			return nil, err
		}
		out[f.Name] = value
	}
	return out, nil
}

func (f Field) check(value any) error {
	switch f.Kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return f.typeMismatch("string", value)
		}
	case KindEnum:
		str, ok := value.(string)
		if !ok {
			return f.typeMismatch("string", value)
		}
		for _, allowed := range f.Enum {
			if str == allowed {
				return nil
			}
		}
		return &model.ValidationError{
			Field:  f.Name,
			Reason: fmt.Sprintf("value %q is not one of %v", str, f.Enum),
		}
	case KindNumber:
		if !isNumber(value) {
			return f.typeMismatch("number", value)
		}
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return f.typeMismatch("boolean", value)
		}
	case KindSequence:
		if _, ok := value.([]any); !ok {
			return f.typeMismatch("array", value)
		}
	case KindOpaque:
		// accepts anything
	}
	return nil
}

func (f Field) typeMismatch(want string, got any) error {
	return &model.ValidationError{
		Field:  f.Name,
		Reason: fmt.Sprintf("expected %s, got %T", want, got),
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

func stringEnum(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// opaqueFallback is the accept-any-single-opaque-input signature.
func opaqueFallback() Signature {
	return Signature{
		Fields: []Field{{Name: "input", Kind: KindOpaque}},
		opaque: true,
	}
}
