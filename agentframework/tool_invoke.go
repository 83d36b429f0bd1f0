// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// InvocationConfig controls the function invocation loop behavior.
type InvocationConfig struct {
	// MaxIterations is the maximum number of LLM round-trips for tool calling.
	// Default: 40.
	MaxIterations int

	// MaxConsecutiveErrors is the maximum number of consecutive tool errors
	// before aborting. Default: 3.
	MaxConsecutiveErrors int

	// TerminateOnUnknown aborts if the model calls an unknown tool.
	TerminateOnUnknown bool

	// IncludeDetailedErrors includes full error text in tool results sent
	// back to the model. When false, a generic error message is used.
	IncludeDetailedErrors bool
}

// DefaultInvocationConfig returns the default configuration.
func DefaultInvocationConfig() InvocationConfig {
	return InvocationConfig{
		MaxIterations:        40,
		MaxConsecutiveErrors: 3,
	}
}

func (c InvocationConfig) withDefaults() InvocationConfig {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 40
	}
	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = 3
	}
	return c
}

// functionCall is an extracted function call from a response.
type functionCall struct {
	CallID    string
	Name      string
	Arguments string
}

// extractFunctionCalls finds all FunctionCallContent in a response's messages.
func extractFunctionCalls(resp *ChatResponse) []functionCall {
	var calls []functionCall
	for _, msg := range resp.Messages {
		for _, c := range msg.Contents {
			if fc, ok := c.(*FunctionCallContent); ok {
				calls = append(calls, functionCall{
					CallID:    fc.CallID,
					Name:      fc.Name,
					Arguments: fc.Arguments,
				})
			}
		}
	}
	return calls
}

// toolDispatcher runs the calls a model requests against a registry, one at
// a time, through the function middleware pipeline.
type toolDispatcher struct {
	registry          *Registry
	config            InvocationConfig
	middleware        []FunctionMiddleware
	consecutiveErrors int
}

func newToolDispatcher(tools []Tool, config InvocationConfig, mws []FunctionMiddleware) (*toolDispatcher, error) {
	registry, err := NewRegistry(tools...)
	if err != nil {
		return nil, err
	}
	return &toolDispatcher{
		registry:   registry,
		config:     config.withDefaults(),
		middleware: mws,
	}, nil
}

// dispatch invokes each call in order and returns the tool-role messages to
// feed back to the model.
func (d *toolDispatcher) dispatch(ctx context.Context, calls []functionCall) ([]Message, error) {
	results := make([]Message, 0, len(calls))
	for _, call := range calls {
		tool, ok := d.registry.Lookup(call.Name)
		if !ok {
			if d.config.TerminateOnUnknown {
				return nil, fmt.Errorf("%w: unknown tool %q", ErrToolExecution, call.Name)
			}
			slog.WarnContext(ctx, "unknown tool called", "tool", call.Name)
			results = append(results, NewToolMessage(call.CallID, call.Name, "error: unknown tool"))
			d.consecutiveErrors++
			continue
		}

		result, err := d.invoke(ctx, tool, call)
		if err != nil {
			d.consecutiveErrors++
			slog.WarnContext(ctx, "tool invocation error",
				"tool", call.Name,
				"error", err,
				"consecutive_errors", d.consecutiveErrors,
			)
			if d.consecutiveErrors >= d.config.MaxConsecutiveErrors {
				return nil, fmt.Errorf("%w: max consecutive errors reached (%d): %w", ErrToolExecution, d.consecutiveErrors, err)
			}
			errMsg := "error invoking tool"
			if d.config.IncludeDetailedErrors {
				errMsg = err.Error()
			}
			results = append(results, NewToolMessage(call.CallID, call.Name, errMsg))
			continue
		}

		d.consecutiveErrors = 0
		results = append(results, NewToolMessage(call.CallID, call.Name, result))
	}
	return results, nil
}

// invoke validates the call's arguments and runs the tool inside the
// function middleware pipeline.
func (d *toolDispatcher) invoke(ctx context.Context, tool Tool, call functionCall) (any, error) {
	args := json.RawMessage(call.Arguments)
	if err := d.registry.Validate(call.Name, args); err != nil {
		return nil, err
	}

	fc := &FunctionInvocationContext{
		Function:  tool,
		CallID:    call.CallID,
		Arguments: args,
	}
	run := func(ctx context.Context, fc *FunctionInvocationContext) error {
		res, err := fc.Function.Invoke(ctx, fc.Arguments)
		if err != nil {
			return err
		}
		fc.Result = res
		return nil
	}

	slog.DebugContext(ctx, "invoking tool", "tool", call.Name, "call_id", call.CallID)
	if err := chainFunctionMiddleware(run, d.middleware...)(ctx, fc); err != nil {
		return nil, err
	}
	return fc.Result, nil
}

// toolLoop tracks the messages a tool-calling run adds after the request and
// the usage of all its model rounds.
type toolLoop struct {
	messages []Message
	added    []Message
	usage    UsageDetails
}

func (l *toolLoop) round(resp *ChatResponse, results []Message) {
	l.usage.Add(resp.Usage)
	l.added = append(l.added, resp.Messages...)
	l.added = append(l.added, results...)
	l.messages = append(l.messages, resp.Messages...)
	l.messages = append(l.messages, results...)
}

func (l *toolLoop) finish(resp *ChatResponse) (*ChatResponse, []Message) {
	l.usage.Add(resp.Usage)
	resp.Usage = l.usage
	return resp, append(l.added, resp.Messages...)
}

// invokeFunctions runs the tool-calling loop: extract function_call content
// from the response, invoke matched tools, append results, and re-call the LLM.
//
// It returns the final ChatResponse, with usage summed over all rounds, and
// every message added after the request: each round's tool calls and tool
// results followed by the final answer.
func invokeFunctions(
	ctx context.Context,
	client ChatClient,
	messages []Message,
	opts *ChatOptions,
	config InvocationConfig,
	fnMiddleware []FunctionMiddleware,
) (*ChatResponse, []Message, error) {
	d, err := newToolDispatcher(opts.Tools, config, fnMiddleware)
	if err != nil {
		return nil, nil, err
	}

	loop := &toolLoop{messages: messages}
	for iteration := 0; iteration < d.config.MaxIterations; iteration++ {
		resp, err := client.Response(ctx, loop.messages, opts)
		if err != nil {
			return nil, nil, err
		}

		calls := extractFunctionCalls(resp)
		if len(calls) == 0 {
			final, added := loop.finish(resp)
			return final, added, nil
		}

		results, err := d.dispatch(ctx, calls)
		if err != nil {
			return nil, nil, err
		}
		loop.round(resp, results)
	}

	return nil, nil, fmt.Errorf("%w: max iterations reached (%d)", ErrExecution, d.config.MaxIterations)
}

// streamFunctions is the streaming form of [invokeFunctions]. Every update
// from the model is passed to emit as it arrives; after each round of tool
// calls one tool-role update carrying the results is emitted. It returns the
// response of the final model round and the messages added after the
// request.
func streamFunctions(
	ctx context.Context,
	client ChatClient,
	messages []Message,
	opts *ChatOptions,
	config InvocationConfig,
	fnMiddleware []FunctionMiddleware,
	emit func(ChatResponseUpdate) error,
) (*ChatResponse, []Message, error) {
	d, err := newToolDispatcher(opts.Tools, config, fnMiddleware)
	if err != nil {
		return nil, nil, err
	}

	loop := &toolLoop{messages: messages}
	for iteration := 0; iteration < d.config.MaxIterations; iteration++ {
		resp, err := streamRound(ctx, client, loop.messages, opts, emit)
		if err != nil {
			return nil, nil, err
		}

		calls := extractFunctionCalls(resp)
		if len(calls) == 0 {
			final, added := loop.finish(resp)
			return final, added, nil
		}

		results, err := d.dispatch(ctx, calls)
		if err != nil {
			return nil, nil, err
		}

		var resultContents Contents
		for _, m := range results {
			resultContents = append(resultContents, m.Contents...)
		}
		if err := emit(ChatResponseUpdate{Role: RoleTool, Contents: resultContents}); err != nil {
			return nil, nil, err
		}
		loop.round(resp, results)
	}

	return nil, nil, fmt.Errorf("%w: max iterations reached (%d)", ErrExecution, d.config.MaxIterations)
}

// streamRound consumes one model stream to exhaustion, forwarding each
// update, and merges the updates into a response.
func streamRound(
	ctx context.Context,
	client ChatClient,
	messages []Message,
	opts *ChatOptions,
	emit func(ChatResponseUpdate) error,
) (*ChatResponse, error) {
	stream, err := client.StreamResponse(ctx, messages, opts)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var updates []ChatResponseUpdate
	for {
		u, ok, err := stream.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		updates = append(updates, u)
		if err := emit(u); err != nil {
			return nil, err
		}
	}
	return ChatResponseFromUpdates(updates), nil
}
