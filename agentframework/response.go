// Copyright (c) Microsoft. All rights reserved.

package agentframework

import "strings"

// ChatResponse is a complete reply from a [ChatClient].
type ChatResponse struct {
	Messages       []Message
	ResponseID     string
	ConversationID string
	ModelID        string
	FinishReason   FinishReason
	Usage          UsageDetails
	Raw            any
}

// Text joins the text of every message.
func (r *ChatResponse) Text() string { return joinText(r.Messages) }

// ChatResponseUpdate is one streamed fragment from a [ChatClient].
type ChatResponseUpdate struct {
	Contents       Contents
	Role           Role
	ResponseID     string
	ConversationID string
	ModelID        string
	FinishReason   FinishReason
	Usage          UsageDetails
	Raw            any
}

// Text joins the update's text fragments.
func (u *ChatResponseUpdate) Text() string { return u.Contents.Text() }

// AgentResponse is the result of [Agent.Run].
type AgentResponse struct {
	Messages   []Message
	ResponseID string
	AgentID    string
	AgentName  string
	Usage      UsageDetails
	Raw        any
}

// Text joins the text of every message.
func (r *AgentResponse) Text() string { return joinText(r.Messages) }

// AgentResponseUpdate is one event of [Agent.RunStream]: a text fragment, a
// tool call the model made, or (with Role [RoleTool]) the results of a round
// of tool calls. Events arrive in the order they happened.
type AgentResponseUpdate struct {
	Contents   Contents
	Role       Role
	AgentID    string
	AgentName  string
	ResponseID string
	Usage      UsageDetails
	Raw        any
}

// Text joins the update's text fragments.
func (u *AgentResponseUpdate) Text() string { return u.Contents.Text() }

// FunctionCalls returns the tool calls in the update.
func (u *AgentResponseUpdate) FunctionCalls() []*FunctionCallContent {
	return contentsOf[*FunctionCallContent](u.Contents)
}

// FunctionResults returns the tool results in the update.
func (u *AgentResponseUpdate) FunctionResults() []*FunctionResultContent {
	return contentsOf[*FunctionResultContent](u.Contents)
}

func contentsOf[T Content](cs Contents) []T {
	var out []T
	for _, c := range cs {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// ChatResponseFromUpdates merges one model stream into a single-message
// response. Adjacent text fragments are joined; the last non-empty value of
// each metadata field wins.
func ChatResponseFromUpdates(updates []ChatResponseUpdate) *ChatResponse {
	resp := &ChatResponse{}
	role := RoleAssistant
	var all Contents
	for i, u := range updates {
		if i == 0 && u.Role != "" {
			role = u.Role
		}
		all = append(all, u.Contents...)
		setIfAny(&resp.ResponseID, u.ResponseID)
		setIfAny(&resp.ConversationID, u.ConversationID)
		setIfAny(&resp.ModelID, u.ModelID)
		setIfAny(&resp.FinishReason, u.FinishReason)
		if u.Usage.TotalTokens > 0 {
			resp.Usage = u.Usage
		}
	}
	if merged := coalesceText(all); len(merged) > 0 {
		resp.Messages = []Message{{Role: role, Contents: merged}}
	}
	return resp
}

// AgentResponseFromUpdates merges the events of an agent stream into the
// agent's answer. Tool-role events are left out, and usage is summed over
// every model round.
func AgentResponseFromUpdates(updates []AgentResponseUpdate) *AgentResponse {
	resp := &AgentResponse{}
	var all Contents
	for _, u := range updates {
		if u.Role == RoleTool {
			continue
		}
		all = append(all, u.Contents...)
		setIfAny(&resp.AgentID, u.AgentID)
		setIfAny(&resp.AgentName, u.AgentName)
		setIfAny(&resp.ResponseID, u.ResponseID)
		resp.Usage.Add(u.Usage)
	}
	if merged := coalesceText(all); len(merged) > 0 {
		resp.Messages = []Message{{Role: RoleAssistant, Contents: merged}}
	}
	return resp
}

func setIfAny[S ~string](dst *S, v S) {
	if v != "" {
		*dst = v
	}
}

// coalesceText joins each run of adjacent text fragments into one
// [TextContent], leaving other contents in place. Empty runs vanish.
func coalesceText(cs Contents) Contents {
	var out Contents
	var run strings.Builder
	endRun := func() {
		if run.Len() > 0 {
			out = append(out, &TextContent{Text: run.String()})
			run.Reset()
		}
	}
	for _, c := range cs {
		if t, ok := c.(*TextContent); ok {
			run.WriteString(t.Text)
			continue
		}
		endRun()
		out = append(out, c)
	}
	endRun()
	return out
}

func joinText(msgs []Message) string {
	var b strings.Builder
	for i := range msgs {
		b.WriteString(msgs[i].Text())
	}
	return b.String()
}
