// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is a function the model may call.
type Tool interface {
	Name() string
	Description() string
	// Parameters is the JSON Schema of the arguments object.
	Parameters() json.RawMessage
	Invoke(ctx context.Context, args json.RawMessage) (any, error)
}

// ToolFunc handles the raw JSON arguments of a call.
type ToolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// FunctionTool is a [Tool] backed by a Go function.
type FunctionTool struct {
	name, description string
	parameters        json.RawMessage
	fn                ToolFunc
}

// NewTool returns a tool with a hand-written schema.
func NewTool(name, description string, parameters json.RawMessage, fn ToolFunc) *FunctionTool {
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// NewTypedTool returns a tool whose schema is generated from Args. The
// model's arguments are decoded into Args before fn runs:
//
//	type HotelArgs struct {
//	    Query string `json:"query" jsonschema:"The name of the city"`
//	}
//
// It panics if Args has no JSON Schema, which is a programming error.
func NewTypedTool[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error)) *FunctionTool {
	schema, err := GenerateSchema[Args]()
	if err != nil {
		panic(fmt.Sprintf("agentframework: tool %q: %v", name, err))
	}
	return NewTool(name, description, schema, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args Args
		if len(raw) == 0 {
			return fn(ctx, args)
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, &ToolError{ToolName: name, Message: "invalid arguments: " + err.Error(), Err: ErrToolArguments}
		}
		return fn(ctx, args)
	})
}

func (t *FunctionTool) Name() string                { return t.name }
func (t *FunctionTool) Description() string         { return t.description }
func (t *FunctionTool) Parameters() json.RawMessage { return t.parameters }

func (t *FunctionTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	if t.fn == nil {
		return nil, &ToolError{ToolName: t.name, Message: "tool has no handler", Err: ErrToolExecution}
	}
	return t.fn(ctx, args)
}
