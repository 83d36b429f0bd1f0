// Copyright (c) Microsoft. All rights reserved.

package openai

import "encoding/json"

// Chat Completions wire format. Only the fields the client reads or writes
// are declared.

type completionRequest struct {
	Model         string           `json:"model"`
	Messages      []wireMessage    `json:"messages"`
	Tools         []wireTool       `json:"tools,omitempty"`
	ToolChoice    any              `json:"tool_choice,omitempty"`
	Temperature   *float64         `json:"temperature,omitempty"`
	TopP          *float64         `json:"top_p,omitempty"`
	MaxTokens     *int             `json:"max_completion_tokens,omitempty"`
	Seed          *int             `json:"seed,omitempty"`
	User          string           `json:"user,omitempty"`
	Stream        bool             `json:"stream,omitempty"`
	StreamOptions *wireStreamUsage `json:"stream_options,omitempty"`
}

type wireStreamUsage struct {
	IncludeUsage bool `json:"include_usage"`
}

// wireMessage is one chat message. Content is omitted for assistant turns
// that only call tools.
type wireMessage struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []wireCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// wireCall is a tool call. In stream chunks it is a fragment keyed by
// Index, and only the first fragment of a call carries ID and name.
type wireCall struct {
	Index    *int         `json:"index,omitempty"`
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string          `json:"type"`
	Function wireToolFunction `json:"function"`
}

type wireToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type wireUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// completion is a non-streaming response body.
type completion struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *wireUsage `json:"usage,omitempty"`
}

// chunk is one server-sent event of a streaming response.
type chunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta        wireMessage `json:"delta"`
		FinishReason *string     `json:"finish_reason"`
	} `json:"choices"`
	Usage *wireUsage `json:"usage,omitempty"`
}
