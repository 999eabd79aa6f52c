package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullableFloat64States(t *testing.T) {
	var payload struct {
		Price NullableFloat64 `json:"price"`
	}

	err := json.Unmarshal([]byte(`{}`), &payload)
	assert.NoError(t, err)
	assert.False(t, payload.Price.Present)

	err = json.Unmarshal([]byte(`{"price": null}`), &payload)
	assert.NoError(t, err)
	assert.True(t, payload.Price.Present)
	assert.True(t, payload.Price.IsNil())
	assert.Nil(t, payload.Price.Ptr())

	err = json.Unmarshal([]byte(`{"price": 49.99}`), &payload)
	assert.NoError(t, err)
	assert.True(t, payload.Price.Present)
	assert.False(t, payload.Price.IsNil())
	assert.Equal(t, 49.99, payload.Price.Float64())
}

func TestNullableFloat64Marshal(t *testing.T) {
	out, err := json.Marshal(NullableFloat64From(12.5))
	assert.NoError(t, err)
	assert.Equal(t, `12.5`, string(out))

	out, err = json.Marshal(NullFloat64())
	assert.NoError(t, err)
	assert.Equal(t, `null`, string(out))
}

func TestNullableStringStates(t *testing.T) {
	var payload struct {
		Image NullableString `json:"image"`
	}

	err := json.Unmarshal([]byte(`{"image": "https://cdn.example.com/a.png"}`), &payload)
	assert.NoError(t, err)
	assert.True(t, payload.Image.Present)
	assert.Equal(t, "https://cdn.example.com/a.png", payload.Image.String())

	err = json.Unmarshal([]byte(`{"image": null}`), &payload)
	assert.NoError(t, err)
	assert.True(t, payload.Image.Present)
	assert.True(t, payload.Image.IsNil())

	var ns NullableString
	assert.False(t, ns.Present)
	ns.Set("x")
	assert.True(t, ns.Present)
	assert.False(t, ns.IsNil())
}
