// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"slices"
)

// AgentRequest is what an [AgentMiddleware] sees of a run.
type AgentRequest struct {
	Messages []Message
	Thread   *Thread
	Options  *ChatOptions
}

// AgentHandler runs an agent request to completion.
type AgentHandler func(ctx context.Context, req *AgentRequest) (*AgentResponse, error)

// AgentMiddleware decorates every [Agent.Run]. Returning without calling
// next short-circuits the run.
type AgentMiddleware func(next AgentHandler) AgentHandler

// ChatHandler sends one request to the model.
type ChatHandler func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)

// ChatMiddleware decorates the requests a chat client sends.
type ChatMiddleware func(next ChatHandler) ChatHandler

// FunctionInvocationContext is one tool call on its way through the
// function middleware.
type FunctionInvocationContext struct {
	Function  Tool
	CallID    string
	Arguments json.RawMessage

	// Result holds the tool output once next returns. A middleware that
	// skips next may set it to what the model should see instead.
	Result any
}

// FunctionNext continues a tool call. The innermost one runs the tool.
type FunctionNext func(ctx context.Context, fc *FunctionInvocationContext) error

// FunctionMiddleware intercepts a tool call. The tool only runs if next is
// called; otherwise fc.Result is reported as-is.
type FunctionMiddleware func(ctx context.Context, fc *FunctionInvocationContext, next FunctionNext) error

// chain wraps h so that mws[0] is the outermost layer.
func chain[H any, M ~func(H) H](h H, mws []M) H {
	for _, mw := range slices.Backward(mws) {
		h = mw(h)
	}
	return h
}

func chainAgentMiddleware(h AgentHandler, mws ...AgentMiddleware) AgentHandler {
	return chain(h, mws)
}

// ChainChatMiddleware wraps h in mws, first outermost. Chat clients use it
// to build their request pipeline.
func ChainChatMiddleware(h ChatHandler, mws ...ChatMiddleware) ChatHandler {
	return chain(h, mws)
}

func chainFunctionMiddleware(final FunctionNext, mws ...FunctionMiddleware) FunctionNext {
	layers := make([]func(FunctionNext) FunctionNext, len(mws))
	for i, mw := range mws {
		layers[i] = func(next FunctionNext) FunctionNext {
			return func(ctx context.Context, fc *FunctionInvocationContext) error {
				return mw(ctx, fc, next)
			}
		}
	}
	return chain(final, layers)
}
