package toolschema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpbridge/mcpbridge/internal/model"
)

const actionSchema = `{
	"type": "object",
	"properties": {
		"action": {"type": "string", "enum": ["read", "write"]}
	},
	"required": ["action"]
}`

func TestTranslateActionEnum(t *testing.T) {
	sig := Translate(json.RawMessage(actionSchema))
	require.False(t, sig.Opaque())
	require.Len(t, sig.Fields, 1)

	f, ok := sig.Field("action")
	require.True(t, ok)
	assert.Equal(t, KindEnum, f.Kind)
	assert.True(t, f.Required)
	assert.Equal(t, []string{"read", "write"}, f.Enum)

	out, err := sig.Validate(map[string]any{"action": "read"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"action": "read"}, out)

	_, err = sig.Validate(map[string]any{"action": "delete"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "action", verr.Field)
	assert.Contains(t, verr.Reason, `"delete"`)

	_, err = sig.Validate(map[string]any{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "action", verr.Field)
	assert.Contains(t, verr.Reason, "missing required field")
}

func TestTranslateFieldKinds(t *testing.T) {
	raw := `{
		"type": "object",
		"properties": {
			"query":   {"type": "string"},
			"limit":   {"type": "integer", "default": 20},
			"deep":    {"type": "boolean"},
			"filters": {"type": "array"},
			"extra":   {"type": "object"}
		},
		"required": ["query"]
	}`
	sig := Translate(json.RawMessage(raw))
	require.Len(t, sig.Fields, 5)

	tests := []struct {
		field string
		kind  FieldKind
	}{
		{"query", KindString},
		{"limit", KindNumber},
		{"deep", KindBoolean},
		{"filters", KindSequence},
		{"extra", KindOpaque},
	}
	for _, tt := range tests {
		f, ok := sig.Field(tt.field)
		require.True(t, ok, "field %s should be declared", tt.field)
		assert.Equal(t, tt.kind, f.Kind, "field %s", tt.field)
	}
}

func TestValidateAppliesDefaultsAndPrunesUnknownKeys(t *testing.T) {
	raw := `{
		"type": "object",
		"properties": {
			"query": {"type": "string"},
			"limit": {"type": "integer", "default": 20}
		},
		"required": ["query"]
	}`
	sig := Translate(json.RawMessage(raw))

	out, err := sig.Validate(map[string]any{
		"query":      "rain tomorrow",
		"surprise":   true,
		"other_junk": []any{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": "rain tomorrow", "limit": 20.0}, out)
}

func TestValidateTypeMismatch(t *testing.T) {
	raw := `{
		"type": "object",
		"properties": {
			"count": {"type": "number"},
			"flag":  {"type": "boolean"},
			"list":  {"type": "array"}
		}
	}`
	sig := Translate(json.RawMessage(raw))

	tests := []struct {
		name  string
		input map[string]any
		field string
	}{
		{"string for number", map[string]any{"count": "nine"}, "count"},
		{"number for boolean", map[string]any{"flag": 1.0}, "flag"},
		{"string for array", map[string]any{"list": "a,b"}, "list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sig.Validate(tt.input)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestTranslateFallsBackToOpaque(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "{nope"},
		{"non-object type", `{"type": "string"}`},
		{"missing properties", `{"type": "object"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Translate(json.RawMessage(tt.raw))
			require.True(t, sig.Opaque())

			// the fallback accepts anything and forwards it unchanged
			in := map[string]any{"whatever": 42.0, "or": "not"}
			out, err := sig.Validate(in)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestNonStringEnumValuesAreIgnored(t *testing.T) {
	raw := `{
		"type": "object",
		"properties": {
			"mode": {"type": "string", "enum": [1, 2, 3]}
		}
	}`
	sig := Translate(json.RawMessage(raw))
	f, ok := sig.Field("mode")
	require.True(t, ok)
	// an enum with no usable values degrades to a plain string field
	assert.Equal(t, KindString, f.Kind)
}
