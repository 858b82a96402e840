// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

package schema_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyrdmud/wyrd/internal/schema"
)

type sample struct {
	Name  string   `json:"name" jsonschema:"minLength=1"`
	Tags  []string `json:"tags,omitempty"`
	Count int      `json:"count,omitempty"`
}

func newSampleValidator() *schema.Validator {
	return schema.New("sample", "Sample", "A sample document", func() any { return &sample{} })
}

func TestGenerate(t *testing.T) {
	v := newSampleValidator()
	data, err := v.Generate()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "https://wyrd.dev/schemas/sample.schema.json", doc["$id"])
	assert.Equal(t, "Sample", doc["title"])
	assert.Equal(t, []any{"name"}, doc["required"])
}

func TestValidateJSON(t *testing.T) {
	v := newSampleValidator()
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"name":"x","tags":["a"]}`, false},
		{"missing required", `{"tags":[]}`, true},
		{"wrong type", `{"name":3}`, true},
		{"empty name", `{"name":""}`, true},
		{"unknown field", `{"name":"x","extra":1}`, true},
		{"not json", `{name:`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateJSON([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateYAML(t *testing.T) {
	v := newSampleValidator()
	assert.NoError(t, v.ValidateYAML([]byte("name: x\ncount: 3\n")))
	err := v.ValidateYAML([]byte("count: 3\n"))
	require.Error(t, err)
	msg := schema.FormatError(err)
	assert.False(t, strings.HasPrefix(msg, "schema validation failed"), msg)
	assert.False(t, strings.HasPrefix(msg, "jsonschema validation failed"), msg)
	assert.NotContains(t, msg, "\n")
	assert.Contains(t, msg, "name")
}

func TestFormatError(t *testing.T) {
	assert.Empty(t, schema.FormatError(nil))
	assert.Equal(t, "document is empty", schema.FormatError(errors.New("document is empty")))
	assert.Equal(t,
		"at '': missing property 'name'; at '/count': got string, want integer",
		schema.FormatError(errors.New("schema validation failed: jsonschema validation failed with 'https://wyrd.dev/schemas/sample.schema.json#'\n"+
			"- at '': missing property 'name'\n"+
			"- at '/count': got string, want integer")))
}
