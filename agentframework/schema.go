// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// GenerateSchema derives the JSON Schema for the struct type T. Field names
// come from json tags, descriptions from jsonschema tags, and fields without
// omitempty are required.
func GenerateSchema[T any]() (json.RawMessage, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}
	return json.Marshal(s)
}

// compileSchema resolves a raw JSON Schema so it can validate arguments.
// An empty schema accepts any object.
func compileSchema(raw json.RawMessage) (*jsonschema.Resolved, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{"type":"object"}`)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return resolved, nil
}

// decodeArguments turns model-supplied JSON into the value a resolved schema
// validates. Empty arguments are treated as an empty object.
func decodeArguments(args json.RawMessage) (any, error) {
	if len(args) == 0 {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return map[string]any{}, nil
	}
	return v, nil
}
