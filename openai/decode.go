// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"slices"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

func (u *wireUsage) details() af.UsageDetails {
	if u == nil {
		return af.UsageDetails{}
	}
	return af.UsageDetails{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
	}
}

// response converts the first choice. The framework's finish reasons use the
// same strings as the wire.
func (c *completion) response() *af.ChatResponse {
	resp := &af.ChatResponse{
		ResponseID: c.ID,
		ModelID:    c.Model,
		Usage:      c.Usage.details(),
		Raw:        c,
	}
	if len(c.Choices) == 0 {
		return resp
	}

	first := c.Choices[0]
	resp.FinishReason = af.FinishReason(first.FinishReason)
	msg := af.Message{Role: af.Role(first.Message.Role)}
	if first.Message.Content != nil && *first.Message.Content != "" {
		msg.Contents = append(msg.Contents, &af.TextContent{Text: *first.Message.Content})
	}
	for _, tc := range first.Message.ToolCalls {
		msg.Contents = append(msg.Contents, &af.FunctionCallContent{
			CallID:    tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	resp.Messages = []af.Message{msg}
	return resp
}

// update converts the text part of a chunk. Tool-call fragments are left to
// a [callAssembler].
func (c *chunk) update() af.ChatResponseUpdate {
	u := af.ChatResponseUpdate{
		ResponseID: c.ID,
		ModelID:    c.Model,
		Usage:      c.Usage.details(),
		Raw:        c,
	}
	if len(c.Choices) == 0 {
		return u
	}

	first := c.Choices[0]
	u.Role = af.Role(first.Delta.Role)
	if first.FinishReason != nil {
		u.FinishReason = af.FinishReason(*first.FinishReason)
	}
	if first.Delta.Content != nil && *first.Delta.Content != "" {
		u.Contents = af.Contents{&af.TextContent{Text: *first.Delta.Content}}
	}
	return u
}

// callAssembler joins streamed tool-call fragments by index. Arguments
// arrive in pieces and are concatenated.
type callAssembler struct {
	byIndex map[int]*af.FunctionCallContent
}

func (a *callAssembler) add(fragments []wireCall) {
	for pos, f := range fragments {
		idx := pos
		if f.Index != nil {
			idx = *f.Index
		}
		if a.byIndex == nil {
			a.byIndex = make(map[int]*af.FunctionCallContent)
		}
		call := a.byIndex[idx]
		if call == nil {
			call = &af.FunctionCallContent{}
			a.byIndex[idx] = call
		}
		if f.ID != "" {
			call.CallID = f.ID
		}
		if f.Function.Name != "" {
			call.Name = f.Function.Name
		}
		call.Arguments += f.Function.Arguments
	}
}

// take returns the completed calls in index order and empties the assembler.
func (a *callAssembler) take() af.Contents {
	if len(a.byIndex) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(a.byIndex))
	for idx := range a.byIndex {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)

	out := make(af.Contents, len(indexes))
	for i, idx := range indexes {
		out[i] = a.byIndex[idx]
	}
	a.byIndex = nil
	return out
}
