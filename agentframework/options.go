// Copyright (c) Microsoft. All rights reserved.

package agentframework

// ToolChoice controls how the model selects tools. A value of the form
// "function:<name>" forces that tool.
type ToolChoice string

const (
	ToolChoiceAuto     ToolChoice = "auto"
	ToolChoiceRequired ToolChoice = "required"
	ToolChoiceNone     ToolChoice = "none"
)

// ChatOptions configures one chat request. Nil pointers and empty strings
// leave the backend default in place.
type ChatOptions struct {
	ModelID        string
	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	Seed           *int
	Tools          []Tool
	ToolChoice     ToolChoice
	User           string
	Instructions   string
	ConversationID string
}

// MergeChatOptions returns a fresh ChatOptions holding base with every set
// field of override laid on top. Instructions are joined with a newline and
// tools are merged by name, override first in precedence.
func MergeChatOptions(base, override *ChatOptions) *ChatOptions {
	var merged ChatOptions
	if base != nil {
		merged = *base
	}
	if override == nil {
		return &merged
	}

	overlay(&merged.ModelID, override.ModelID)
	overlay(&merged.ToolChoice, override.ToolChoice)
	overlay(&merged.User, override.User)
	overlay(&merged.ConversationID, override.ConversationID)
	overlayPtr(&merged.Temperature, override.Temperature)
	overlayPtr(&merged.TopP, override.TopP)
	overlayPtr(&merged.MaxTokens, override.MaxTokens)
	overlayPtr(&merged.Seed, override.Seed)

	merged.Instructions = joinInstructions(merged.Instructions, override.Instructions)
	if len(override.Tools) > 0 {
		merged.Tools = mergeTools(merged.Tools, override.Tools)
	}
	return &merged
}

func overlay[S ~string](dst *S, v S) {
	if v != "" {
		*dst = v
	}
}

func overlayPtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func joinInstructions(first, second string) string {
	switch {
	case first == "":
		return second
	case second == "":
		return first
	}
	return first + "\n" + second
}

// mergeTools keeps the order of base. A tool in override replaces the base
// tool of the same name; the rest of override is appended.
func mergeTools(base, override []Tool) []Tool {
	replacement := make(map[string]Tool, len(override))
	for _, t := range override {
		replacement[t.Name()] = t
	}
	tools := make([]Tool, 0, len(base)+len(override))
	for _, t := range base {
		if o, ok := replacement[t.Name()]; ok {
			t = o
			delete(replacement, t.Name())
		}
		tools = append(tools, t)
	}
	for _, t := range override {
		if _, pending := replacement[t.Name()]; pending {
			tools = append(tools, t)
			delete(replacement, t.Name())
		}
	}
	return tools
}
