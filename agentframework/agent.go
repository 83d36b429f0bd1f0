// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Agent runs conversations against a [ChatClient], calling its tools as the
// model requests them. It is safe for concurrent use once built.
type Agent struct {
	id, name, description string
	instructions          string

	client   ChatClient
	tools    []Tool
	defaults *ChatOptions
	newStore func() MessageStore

	agentMiddleware    []AgentMiddleware
	functionMiddleware []FunctionMiddleware
	invocation         InvocationConfig
}

// AgentOption configures [NewAgent].
type AgentOption func(*Agent)

func WithName(name string) AgentOption { return func(a *Agent) { a.name = name } }

func WithDescription(desc string) AgentOption { return func(a *Agent) { a.description = desc } }

// WithInstructions sets the system message sent ahead of every run.
func WithInstructions(text string) AgentOption {
	return func(a *Agent) { a.instructions = text }
}

func WithTools(tools ...Tool) AgentOption {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

// WithDefaultOptions sets the options every run starts from.
func WithDefaultOptions(opts *ChatOptions) AgentOption {
	return func(a *Agent) { a.defaults = opts }
}

// WithMessageStoreFactory chooses the store behind threads the agent
// creates. The default is [NewInMemoryStore].
func WithMessageStoreFactory(f func() MessageStore) AgentOption {
	return func(a *Agent) { a.newStore = f }
}

func WithAgentMiddleware(mws ...AgentMiddleware) AgentOption {
	return func(a *Agent) { a.agentMiddleware = append(a.agentMiddleware, mws...) }
}

func WithFunctionMiddleware(mws ...FunctionMiddleware) AgentOption {
	return func(a *Agent) { a.functionMiddleware = append(a.functionMiddleware, mws...) }
}

// WithInvocationConfig replaces [DefaultInvocationConfig] for the tool loop.
func WithInvocationConfig(cfg InvocationConfig) AgentOption {
	return func(a *Agent) { a.invocation = cfg }
}

// NewAgent builds an agent with a fresh random ID.
func NewAgent(client ChatClient, opts ...AgentOption) *Agent {
	a := &Agent{
		id:         uuid.NewString(),
		client:     client,
		newStore:   func() MessageStore { return NewInMemoryStore() },
		invocation: DefaultInvocationConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) ID() string          { return a.id }
func (a *Agent) Name() string        { return a.name }
func (a *Agent) Description() string { return a.description }

// RunOption adjusts a single run.
type RunOption func(*runConfig)

type runConfig struct {
	thread  *Thread
	tools   []Tool
	options *ChatOptions
}

// WithThread continues the conversation held by t.
func WithThread(t *Thread) RunOption { return func(c *runConfig) { c.thread = t } }

// WithRunTools offers extra tools for this run only.
func WithRunTools(tools ...Tool) RunOption { return func(c *runConfig) { c.tools = tools } }

// WithRunOptions overlays opts on the agent defaults for this run.
func WithRunOptions(opts *ChatOptions) RunOption { return func(c *runConfig) { c.options = opts } }

func newRunConfig(opts []RunOption) (*runConfig, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.thread != nil {
		if err := cfg.thread.checkUsable(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Run answers messages, calling tools until the model replies in text.
// Failures wrap [ErrExecution].
func (a *Agent) Run(ctx context.Context, messages []Message, opts ...RunOption) (*AgentResponse, error) {
	cfg, err := newRunConfig(opts)
	if err != nil {
		return nil, err
	}
	run := chainAgentMiddleware(func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
		return a.run(ctx, req.Messages, cfg)
	}, a.agentMiddleware...)

	return run(ctx, &AgentRequest{Messages: messages, Thread: cfg.thread, Options: cfg.options})
}

func (a *Agent) run(ctx context.Context, messages []Message, cfg *runConfig) (*AgentResponse, error) {
	t, err := a.startTurn(ctx, "agent run", messages, cfg)
	if err != nil {
		return nil, err
	}

	var resp *ChatResponse
	var added []Message
	if len(t.opts.Tools) > 0 {
		resp, added, err = invokeFunctions(ctx, a.client, t.prompt, t.opts, a.invocation, a.functionMiddleware)
	} else if resp, err = a.client.Response(ctx, t.prompt, t.opts); err == nil {
		added = resp.Messages
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	a.finishTurn(ctx, t, added, resp.ConversationID)

	return &AgentResponse{
		Messages:   resp.Messages,
		ResponseID: resp.ResponseID,
		AgentID:    a.id,
		AgentName:  a.name,
		Usage:      resp.Usage,
		Raw:        resp.Raw,
	}, nil
}

// RunStream is [Agent.Run] delivered as updates: text fragments as they
// arrive, the calls of each tool round, one tool-role update with that
// round's results, and then the follow-up answer. Agent middleware does
// not apply to streamed runs.
func (a *Agent) RunStream(ctx context.Context, messages []Message, opts ...RunOption) (*AgentResponseStream, error) {
	cfg, err := newRunConfig(opts)
	if err != nil {
		return nil, err
	}
	t, err := a.startTurn(ctx, "agent stream", messages, cfg)
	if err != nil {
		return nil, err
	}

	stream := NewResponseStream(ctx, func(ctx context.Context, ch chan<- AgentResponseUpdate) error {
		emit := func(u ChatResponseUpdate) error {
			select {
			case ch <- a.agentUpdate(u):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		resp, added, err := streamFunctions(ctx, a.client, t.prompt, t.opts, a.invocation, a.functionMiddleware, emit)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecution, err)
		}
		a.finishTurn(ctx, t, added, resp.ConversationID)
		return nil
	})
	return NewAgentResponseStream(stream), nil
}

// NewThread returns a local thread backed by the agent's message store.
// A client that implements [ThreadDeleter] is attached for [Thread.Delete].
func (a *Agent) NewThread() *Thread {
	opts := []ThreadOption{WithThreadStore(a.newStore())}
	if d, ok := a.client.(ThreadDeleter); ok {
		opts = append(opts, WithThreadDeleter(d))
	}
	return NewThread(opts...)
}

func (a *Agent) agentUpdate(u ChatResponseUpdate) AgentResponseUpdate {
	return AgentResponseUpdate{
		Contents:   u.Contents,
		Role:       u.Role,
		AgentID:    a.id,
		AgentName:  a.name,
		ResponseID: u.ResponseID,
		Usage:      u.Usage,
		Raw:        u.Raw,
	}
}

// turn is one request in flight: what the caller sent, the options the
// model gets, and the full prompt including history and instructions.
type turn struct {
	thread  *Thread
	request []Message
	opts    *ChatOptions
	prompt  []Message
}

func (a *Agent) startTurn(ctx context.Context, kind string, request []Message, cfg *runConfig) (*turn, error) {
	t := &turn{thread: cfg.thread, request: request, opts: a.chatOptions(cfg)}

	if t.thread != nil {
		if store := t.thread.Store(); store != nil {
			history, err := store.ListMessages(ctx)
			if err != nil {
				return nil, fmt.Errorf("%w: load history: %w", ErrThread, err)
			}
			t.prompt = append(t.prompt, history...)
		}
		if sid := t.thread.ServiceID(); sid != "" {
			t.opts.ConversationID = sid
		}
	}
	t.prompt = PrependInstructions(append(t.prompt, request...), t.opts.Instructions)

	slog.DebugContext(ctx, kind,
		"agent_id", a.id,
		"agent_name", a.name,
		"message_count", len(t.prompt),
		"tool_count", len(t.opts.Tools),
	)
	return t, nil
}

// chatOptions layers the run options over the agent defaults. Agent tools
// come first, then run tools; agent instructions precede run instructions.
func (a *Agent) chatOptions(cfg *runConfig) *ChatOptions {
	opts := MergeChatOptions(a.defaults, cfg.options)
	if tools := append(append([]Tool(nil), a.tools...), cfg.tools...); len(tools) > 0 {
		opts.Tools = tools
	}
	opts.Instructions = joinInstructions(a.instructions, opts.Instructions)
	return opts
}

// finishTurn records the turn on its thread. A failure here is logged and
// does not fail the run, whose answer is already complete.
func (a *Agent) finishTurn(ctx context.Context, t *turn, added []Message, conversationID string) {
	if t.thread == nil {
		return
	}
	if err := a.updateThread(ctx, t.thread, t.request, added, conversationID); err != nil {
		slog.WarnContext(ctx, "failed to update thread", "error", err)
	}
}

// updateThread stores the request and every message the turn added, tool
// calls and tool results included, so the next turn sees them. A thread
// without a store adopts the backend's conversation ID when one is given.
func (a *Agent) updateThread(ctx context.Context, thread *Thread, request, added []Message, conversationID string) error {
	store := thread.Store()
	if store == nil {
		switch {
		case conversationID != "":
			return thread.SetServiceID(conversationID)
		case thread.ServiceID() != "":
			return nil
		}
		store = a.newStore()
		if err := thread.SetStore(store); err != nil {
			return err
		}
	}
	if err := store.AddMessages(ctx, request); err != nil {
		return err
	}
	return store.AddMessages(ctx, added)
}
