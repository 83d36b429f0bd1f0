// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"
	"strings"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

// newCompletionRequest maps framework messages and options onto the wire.
// opts.ModelID, when set, takes precedence over model.
func newCompletionRequest(model string, messages []af.Message, opts *af.ChatOptions) *completionRequest {
	req := &completionRequest{Model: model}
	for _, m := range messages {
		req.Messages = append(req.Messages, encodeMessage(m))
	}
	if opts == nil {
		return req
	}

	if opts.ModelID != "" {
		req.Model = opts.ModelID
	}
	req.Temperature, req.TopP = opts.Temperature, opts.TopP
	req.MaxTokens, req.Seed = opts.MaxTokens, opts.Seed
	req.User = opts.User
	req.ToolChoice = encodeToolChoice(opts.ToolChoice)
	for _, t := range opts.Tools {
		req.Tools = append(req.Tools, wireTool{
			Type: "function",
			Function: wireToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return req
}

func encodeMessage(m af.Message) wireMessage {
	wm := wireMessage{Role: string(m.Role), Name: m.AuthorName}

	var text strings.Builder
	hasText := false
	for _, c := range m.Contents {
		switch v := c.(type) {
		case *af.TextContent:
			text.WriteString(v.Text)
			hasText = true
		case *af.FunctionCallContent:
			wm.ToolCalls = append(wm.ToolCalls, wireCall{
				ID:       v.CallID,
				Type:     "function",
				Function: wireFunction{Name: v.Name, Arguments: v.Arguments},
			})
		case *af.FunctionResultContent:
			// A tool message answers exactly one call.
			wm.ToolCallID = v.CallID
			s := resultString(v.Result)
			wm.Content = &s
		}
	}
	if hasText {
		s := text.String()
		wm.Content = &s
	}
	return wm
}

// resultString renders a tool result for the model: strings as they are,
// anything else as JSON.
func resultString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "error: unencodable tool result"
	}
	return string(b)
}

// encodeToolChoice accepts the named choices and "function:<name>" to force
// one tool.
func encodeToolChoice(tc af.ToolChoice) any {
	if tc == "" {
		return nil
	}
	if name, ok := strings.CutPrefix(string(tc), "function:"); ok && name != "" {
		return map[string]any{
			"type":     "function",
			"function": map[string]string{"name": name},
		}
	}
	return string(tc)
}
