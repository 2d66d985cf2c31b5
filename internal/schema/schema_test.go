// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string         `json:"name" jsonschema:"minLength=1"`
	Count  int            `json:"count" jsonschema:"minimum=0"`
	Labels map[int]string `json:"labels,omitempty"`
}

var sampleDoc = Document{
	ID:          "https://venueshare.dev/schemas/sample.schema.json",
	Title:       "Sample",
	Description: "A test document",
	Type:        &sample{},
}

func TestGenerate(t *testing.T) {
	data, err := Generate(sampleDoc)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, sampleDoc.ID, doc["$id"])
	assert.Equal(t, "Sample", doc["title"])
	assert.Equal(t, "A test document", doc["description"])
	assert.ElementsMatch(t, []any{"name", "count"}, doc["required"])
	assert.Equal(t, false, doc["additionalProperties"])
	assert.NotContains(t, doc, "$defs", "types are inlined")
}

func TestValidator_JSON(t *testing.T) {
	v := NewValidator(sampleDoc)

	assert.NoError(t, v.ValidateJSON([]byte(`{"name": "a", "count": 2}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"name": "", "count": 2}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"name": "a", "count": -1}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"name": "a"}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"name": "a", "count": 1, "extra": true}`)))
	assert.Error(t, v.ValidateJSON([]byte(`{"name":`)))
}

func TestValidator_YAML(t *testing.T) {
	v := NewValidator(sampleDoc)

	assert.NoError(t, v.ValidateYAML([]byte("name: a\ncount: 3\nlabels:\n  1: one\n  2: two\n")))
	assert.Error(t, v.ValidateYAML([]byte("name: a\ncount: three\n")))
	assert.Error(t, v.ValidateYAML([]byte("name: [a\n")))
}

func TestToJSONValue(t *testing.T) {
	in := map[string]any{
		"nested": map[any]any{1: "one", "two": []any{map[any]any{true: 1}}},
	}
	out := toJSONValue(in)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nested": {"1": "one", "two": [{"true": 1}]}}`, string(data))
}
