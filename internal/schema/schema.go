// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

// Package schema reflects JSON Schemas from Go types and validates documents
// against them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Document describes a schema to reflect.
type Document struct {
	ID          string
	Title       string
	Description string
	// Type is a pointer to a zero value of the described Go type.
	Type any
}

// Generate reflects the JSON Schema for d.
func Generate(d Document) ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(d.Type)
	s.ID = jsonschema.ID(d.ID)
	s.Title = d.Title
	s.Description = d.Description

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// Validator validates documents against a lazily compiled schema.
type Validator struct {
	doc Document

	once     sync.Once
	compiled *jschema.Schema
	err      error
}

// NewValidator returns a validator for d. The schema is compiled on first use.
func NewValidator(d Document) *Validator {
	return &Validator{doc: d}
}

// ValidateJSON checks raw JSON data against the schema.
func (v *Validator) ValidateJSON(data []byte) error {
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return v.validate(inst)
}

// ValidateYAML checks raw YAML data against the schema.
func (v *Validator) ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	// Round-trip through JSON so the validator sees json.Number values and
	// string keys, the same shape it would get from a .json file.
	raw, err := json.Marshal(toJSONValue(doc))
	if err != nil {
		return fmt.Errorf("convert YAML to JSON: %w", err)
	}
	return v.ValidateJSON(raw)
}

func (v *Validator) validate(inst any) error {
	sch, err := v.schema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func (v *Validator) schema() (*jschema.Schema, error) {
	v.once.Do(func() {
		v.compiled, v.err = compile(v.doc)
	})
	return v.compiled, v.err
}

func compile(d Document) (*jschema.Schema, error) {
	schemaBytes, err := Generate(d)
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource(d.ID, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := c.Compile(d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// toJSONValue converts YAML-decoded data into types encoding/json accepts.
// YAML mappings with non-string keys decode as map[any]any.
func toJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toJSONValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = toJSONValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toJSONValue(item)
		}
		return out
	default:
		return val
	}
}
