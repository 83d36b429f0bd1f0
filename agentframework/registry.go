// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// Registry maps tool names to tools and their compiled parameter schemas.
// Arguments are validated against the declared schema before a tool runs.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]registryEntry
}

type registryEntry struct {
	tool   Tool
	schema *jsonschema.Resolved
}

// NewRegistry creates a registry holding tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{entries: make(map[string]registryEntry, len(tools))}
	if err := r.Register(tools...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds tools. It fails on an empty or duplicate name, or on a
// parameter schema that does not compile; in that case nothing is added.
func (r *Registry) Register(tools ...Tool) error {
	compiled := make([]registryEntry, 0, len(tools))
	seen := make(map[string]bool, len(tools))

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return fmt.Errorf("%w: empty tool name", ErrToolRegistration)
		}
		if _, exists := r.entries[name]; exists || seen[name] {
			return fmt.Errorf("%w: duplicate tool %q", ErrToolRegistration, name)
		}
		schema, err := compileSchema(t.Parameters())
		if err != nil {
			return fmt.Errorf("%w: tool %q: %w", ErrToolRegistration, name, err)
		}
		seen[name] = true
		compiled = append(compiled, registryEntry{tool: t, schema: schema})
	}
	for _, e := range compiled {
		r.entries[e.tool.Name()] = e
		r.order = append(r.order, e.tool.Name())
	}
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.tool, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].tool)
	}
	return tools
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Validate checks args against the named tool's schema.
func (r *Registry) Validate(name string, args json.RawMessage) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return &ToolError{ToolName: name, Message: "unknown tool", Err: ErrToolExecution}
	}
	instance, err := decodeArguments(args)
	if err != nil {
		return &ToolError{ToolName: name, Message: "arguments are not valid JSON: " + err.Error(), Err: ErrToolArguments}
	}
	if err := e.schema.Validate(instance); err != nil {
		return &ToolError{ToolName: name, Message: err.Error(), Err: ErrToolArguments}
	}
	return nil
}

// Invoke validates args and, if they conform, calls the named tool.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	if err := r.Validate(name, args); err != nil {
		return nil, err
	}
	t, _ := r.Lookup(name)
	return t.Invoke(ctx, args)
}
