// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Wyrd Contributors

// Package schema reflects Go payload types into JSON Schema documents and
// validates untrusted JSON or YAML against them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// BaseURL prefixes every generated schema $id.
const BaseURL = "https://wyrd.dev/schemas/"

// Validator validates documents against the schema reflected from one Go
// type. The schema is compiled on first use.
type Validator struct {
	name        string
	title       string
	description string
	newValue    func() any

	once     sync.Once
	compiled *jschema.Schema
	err      error
}

// New creates a validator for the type produced by newValue. name becomes
// the file part of the schema $id, e.g. "world" for world.schema.json.
func New(name, title, description string, newValue func() any) *Validator {
	return &Validator{name: name, title: title, description: description, newValue: newValue}
}

// ID returns the schema $id.
func (v *Validator) ID() string {
	return BaseURL + v.name + ".schema.json"
}

// Name returns the short schema name.
func (v *Validator) Name() string {
	return v.name
}

// Generate renders the JSON Schema document.
func (v *Validator) Generate() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(v.newValue())
	s.ID = jsonschema.ID(v.ID())
	s.Title = v.title
	s.Description = v.description

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

func (v *Validator) schema() (*jschema.Schema, error) {
	v.once.Do(func() {
		data, err := v.Generate()
		if err != nil {
			v.err = err
			return
		}
		doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			v.err = fmt.Errorf("failed to parse schema JSON: %w", err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource(v.ID(), doc); err != nil {
			v.err = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		v.compiled, v.err = c.Compile(v.ID())
		if v.err != nil {
			v.err = fmt.Errorf("failed to compile schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}

// ValidateJSON validates a JSON document.
func (v *Validator) ValidateJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("document is empty")
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return v.validate(doc)
}

// ValidateYAML validates a YAML document.
func (v *Validator) ValidateYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("document is empty")
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return v.validate(convertToJSONTypes(doc))
}

func (v *Validator) validate(doc any) error {
	sch, err := v.schema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// convertToJSONTypes converts YAML-parsed data to JSON-compatible types.
func convertToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = convertToJSONTypes(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = convertToJSONTypes(v)
		}
		return result
	case string, int, int64, float64, bool, nil:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			var result any
			if err := json.Unmarshal(b, &result); err == nil {
				return result
			}
		}
		return val
	}
}

// FormatError renders a validation error on one line for display. The
// validator's header line is dropped and each violation is joined with "; ".
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimPrefix(err.Error(), "schema validation failed: ")
	header, details, found := strings.Cut(msg, "\n")
	if !found || !strings.HasPrefix(header, "jsonschema validation failed") {
		return msg
	}
	var violations []string
	for _, line := range strings.Split(details, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-"))
		if line != "" {
			violations = append(violations, line)
		}
	}
	if len(violations) == 0 {
		return header
	}
	return strings.Join(violations, "; ")
}
