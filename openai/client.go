// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

// Client is an [af.ChatClient] for a Chat Completions endpoint.
type Client struct {
	tp      transport
	model   string
	handler af.ChatHandler
}

var _ af.ChatClient = (*Client)(nil)

// New creates a Client for GitHub Models authenticated with apiKey, a
// GitHub token. Options retarget it, e.g. to an Azure AI Foundry project.
func New(apiKey string, opts ...Option) *Client {
	cfg := newClientConfig(opts)
	c := &Client{tp: newHTTPTransport(apiKey, cfg), model: cfg.model}
	c.handler = af.ChainChatMiddleware(c.complete, cfg.chatMiddleware...)
	return c
}

const completionsPath = "/chat/completions"

// Response sends messages through the chat middleware and returns the
// complete reply.
func (c *Client) Response(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

func (c *Client) complete(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	resp, err := c.tp.do(ctx, http.MethodPost, completionsPath, newCompletionRequest(c.model, messages, opts))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body completion
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode completion: %v", af.ErrService, err)
	}
	return body.response(), nil
}

// StreamResponse requests a streamed completion. Chat middleware does not
// apply to streams.
func (c *Client) StreamResponse(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ResponseStream[af.ChatResponseUpdate], error) {
	req := newCompletionRequest(c.model, messages, opts)
	req.Stream = true
	req.StreamOptions = &wireStreamUsage{IncludeUsage: true}

	resp, err := c.tp.do(ctx, http.MethodPost, completionsPath, req)
	if err != nil {
		return nil, err
	}
	return af.NewResponseStream(ctx, func(ctx context.Context, ch chan<- af.ChatResponseUpdate) error {
		defer resp.Body.Close()
		return streamUpdates(ctx, resp.Body, ch)
	}), nil
}
