package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_String(t *testing.T) {
	id, ok := Normalize("u-123")
	assert.True(t, ok)
	assert.Equal(t, "u-123", id)
}

func TestNormalize_EmptyString(t *testing.T) {
	_, ok := Normalize("")
	assert.False(t, ok)
}

func TestNormalize_ObjectWithMongoID(t *testing.T) {
	id, ok := Normalize(map[string]interface{}{"_id": "64afc0", "name": "Ana"})
	assert.True(t, ok)
	assert.Equal(t, "64afc0", id)
}

func TestNormalize_ObjectWithPlainID(t *testing.T) {
	id, ok := Normalize(map[string]interface{}{"id": "u-9"})
	assert.True(t, ok)
	assert.Equal(t, "u-9", id)
}

func TestNormalize_NestedNumericID(t *testing.T) {
	// payload de token: {"id": 42}
	id, ok := Normalize(map[string]interface{}{"id": float64(42)})
	assert.True(t, ok)
	assert.Equal(t, "42", id)
}

func TestNormalize_Number(t *testing.T) {
	id, ok := Normalize(float64(1001))
	assert.True(t, ok)
	assert.Equal(t, "1001", id)

	id, ok = Normalize(json.Number("77"))
	assert.True(t, ok)
	assert.Equal(t, "77", id)
}

func TestNormalize_UnknownShapes(t *testing.T) {
	for _, v := range []interface{}{
		nil,
		[]interface{}{"a", "b"},
		map[string]interface{}{"email": "x@y.z"},
		true,
	} {
		_, ok := Normalize(v)
		assert.False(t, ok, "shape %#v", v)
	}
}
