// Copyright (c) Microsoft. All rights reserved.

package agentframework

// Role is the author of a [Message].
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// FinishReason says why the model stopped. The values match the Chat
// Completions wire format.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Message is one turn of a conversation.
type Message struct {
	Role       Role     `json:"role"`
	Contents   Contents `json:"contents,omitempty"`
	AuthorName string   `json:"authorName,omitempty"`

	// Raw is the provider's own form of the message, when there is one.
	Raw any `json:"-"`
}

// Text joins the message's text contents.
func (m *Message) Text() string { return m.Contents.Text() }

func textMessage(role Role, text string) Message {
	return Message{Role: role, Contents: Contents{&TextContent{Text: text}}}
}

// NewUserMessage returns a user message holding text.
func NewUserMessage(text string) Message { return textMessage(RoleUser, text) }

// NewAssistantMessage returns an assistant message holding text.
func NewAssistantMessage(text string) Message { return textMessage(RoleAssistant, text) }

// NewSystemMessage returns a system message holding text.
func NewSystemMessage(text string) Message { return textMessage(RoleSystem, text) }

// NewToolMessage returns the tool message that answers call callID of the
// tool name.
func NewToolMessage(callID, name string, result any) Message {
	return Message{
		Role:     RoleTool,
		Contents: Contents{&FunctionResultContent{CallID: callID, Name: name, Result: result}},
	}
}

// PrependInstructions puts instructions in front of messages as a system
// message. A conversation that already has a system message is returned
// unchanged, as is one with empty instructions.
func PrependInstructions(messages []Message, instructions string) []Message {
	if instructions == "" {
		return messages
	}
	for _, m := range messages {
		if m.Role == RoleSystem {
			return messages
		}
	}
	out := make([]Message, 0, len(messages)+1)
	out = append(out, NewSystemMessage(instructions))
	return append(out, messages...)
}
