package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorRequiredFields(t *testing.T) {
	schema := NewObjectSchema().
		AddProperty("name", &JSONSchema{Type: TypeString}).
		AddProperty("age", &JSONSchema{Type: TypeInteger, Minimum: ptr(0.0)}).
		AddRequired("name", "age")

	v := NewValidator()

	err := v.Validate([]byte(`{"name":"ada","age":30}`), schema)
	require.NoError(t, err)

	err = v.Validate([]byte(`{"name":"ada"}`), schema)
	require.Error(t, err)
	var ve *ValidationErrors
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 1)
	assert.Equal(t, "age", ve.Errors[0].Path)
}

func TestValidatorArrayAndEnum(t *testing.T) {
	schema := NewObjectSchema().
		AddProperty("tag", &JSONSchema{Type: TypeString, Enum: []any{"a", "b"}}).
		AddProperty("items", &JSONSchema{Type: TypeArray, Items: &JSONSchema{Type: TypeString}, MinItems: ptr(1)})

	v := NewValidator()
	require.NoError(t, v.Validate([]byte(`{"tag":"a","items":["x"]}`), schema))
	require.Error(t, v.Validate([]byte(`{"tag":"c","items":[]}`), schema))
}

func TestValidatorInvalidJSON(t *testing.T) {
	v := NewValidator()
	err := v.Validate([]byte(`{not json`), NewObjectSchema())
	require.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
