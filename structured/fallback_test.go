package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFenced(t *testing.T) {
	text := "Sure, here you go:\n```json\n{\"a\": 1}\n```\nThanks!"
	got, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, got)
}

func TestExtractJSONBalancedBraces(t *testing.T) {
	text := `the result is {"a": {"b": 1}, "c": [1,2,3]} and nothing else`
	got, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.JSONEq(t, `{"a":{"b":1},"c":[1,2,3]}`, got)
}

func TestExtractJSONNone(t *testing.T) {
	_, ok := ExtractJSON("no json here at all")
	assert.False(t, ok)
}

func TestParseFallbackSuccess(t *testing.T) {
	schema := NewObjectSchema().AddProperty("name", &JSONSchema{Type: TypeString}).AddRequired("name")
	validator := NewValidator()

	canonical, ok, err := ParseFallback(`here: {"name": "ada"}`, schema, validator)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"ada"}`, string(canonical))
}

func TestParseFallbackSchemaViolation(t *testing.T) {
	schema := NewObjectSchema().AddProperty("name", &JSONSchema{Type: TypeString}).AddRequired("name")
	validator := NewValidator()

	_, ok, err := ParseFallback(`here: {"other": 1}`, schema, validator)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestParseFallbackNoJSON(t *testing.T) {
	schema := NewObjectSchema()
	_, ok, err := ParseFallback("plain text response", schema, NewValidator())
	require.Error(t, err)
	assert.False(t, ok)
}
