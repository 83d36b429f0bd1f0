// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentType names a kind of [Content]. It is the "$type" discriminator in
// serialized threads.
type ContentType string

const (
	ContentTypeText           ContentType = "text"
	ContentTypeFunctionCall   ContentType = "functionCall"
	ContentTypeFunctionResult ContentType = "functionResult"
)

// Content is one part of a [Message]. The set of implementations is closed;
// switch on the concrete type.
type Content interface {
	Type() ContentType
	isContent()
}

// TextContent is text. In a streamed update it is a fragment.
type TextContent struct {
	Text string
}

// FunctionCallContent is a tool call requested by the model. Arguments is
// the JSON object the model produced, unparsed.
type FunctionCallContent struct {
	CallID    string
	Name      string
	Arguments string
}

// FunctionResultContent answers the call with the same CallID.
type FunctionResultContent struct {
	CallID string
	Name   string
	Result any
}

func (*TextContent) Type() ContentType           { return ContentTypeText }
func (*FunctionCallContent) Type() ContentType   { return ContentTypeFunctionCall }
func (*FunctionResultContent) Type() ContentType { return ContentTypeFunctionResult }

func (*TextContent) isContent()           {}
func (*FunctionCallContent) isContent()   {}
func (*FunctionResultContent) isContent() {}

// Contents is an ordered list of [Content]. In JSON each item is an object
// tagged with "$type".
type Contents []Content

// Text joins the text items.
func (cs Contents) Text() string {
	var b strings.Builder
	for _, c := range cs {
		if t, ok := c.(*TextContent); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// taggedContent is the JSON shape of every content kind; unused fields are
// omitted.
type taggedContent struct {
	Type      ContentType     `json:"$type"`
	Text      string          `json:"text,omitempty"`
	CallID    string          `json:"callId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    any             `json:"result,omitempty"`
}

func (cs Contents) MarshalJSON() ([]byte, error) {
	tagged := make([]taggedContent, len(cs))
	for i, c := range cs {
		t := taggedContent{Type: c.Type()}
		switch v := c.(type) {
		case *TextContent:
			t.Text = v.Text
		case *FunctionCallContent:
			t.CallID, t.Name = v.CallID, v.Name
			if v.Arguments != "" {
				t.Arguments = json.RawMessage(v.Arguments)
			}
		case *FunctionResultContent:
			t.CallID, t.Name, t.Result = v.CallID, v.Name, v.Result
		default:
			return nil, fmt.Errorf("contents[%d]: unsupported %T", i, c)
		}
		tagged[i] = t
	}
	return json.Marshal(tagged)
}

func (cs *Contents) UnmarshalJSON(data []byte) error {
	var tagged []taggedContent
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	out := make(Contents, len(tagged))
	for i, t := range tagged {
		switch t.Type {
		case ContentTypeText:
			out[i] = &TextContent{Text: t.Text}
		case ContentTypeFunctionCall:
			out[i] = &FunctionCallContent{CallID: t.CallID, Name: t.Name, Arguments: string(t.Arguments)}
		case ContentTypeFunctionResult:
			out[i] = &FunctionResultContent{CallID: t.CallID, Name: t.Name, Result: t.Result}
		default:
			return fmt.Errorf("contents[%d]: unknown $type %q", i, t.Type)
		}
	}
	*cs = out
	return nil
}
