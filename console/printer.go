// Copyright (c) Microsoft. All rights reserved.

package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

// FunctionCallPrinter returns a function middleware that prints each tool
// call before it runs and its result after. Arguments and result pass
// through untouched.
func FunctionCallPrinter(w io.Writer) af.FunctionMiddleware {
	return func(ctx context.Context, fc *af.FunctionInvocationContext, next af.FunctionNext) error {
		fmt.Fprintf(w, "Function Call:> %s with arguments: %s\n\n", fc.Function.Name(), formatArguments(fc.Arguments))
		if err := next(ctx, fc); err != nil {
			return err
		}
		fmt.Fprintf(w, "Function Result:> %s\n\n", formatValue(fc.Result))
		return nil
	}
}

// IntermediatePrinter returns an update hook for [WithUpdateHook] that
// prints the tool call and tool result events carried by the stream.
func IntermediatePrinter(w io.Writer) func(af.AgentResponseUpdate) {
	return func(u af.AgentResponseUpdate) {
		for _, c := range u.Contents {
			switch v := c.(type) {
			case *af.FunctionCallContent:
				fmt.Fprintf(w, "\nFunction Call:> %s with arguments: %s\n", v.Name, formatArguments(json.RawMessage(v.Arguments)))
			case *af.FunctionResultContent:
				fmt.Fprintf(w, "\nFunction Result:> %s for function: %s\n\n", formatValue(v.Result), v.Name)
			}
		}
	}
}

func formatArguments(args json.RawMessage) string {
	if len(args) == 0 {
		return "{}"
	}
	return string(args)
}

func formatValue(v any) string {
	switch r := v.(type) {
	case nil:
		return "null"
	case string:
		return r
	case json.RawMessage:
		if r == nil {
			return "null"
		}
		return string(r)
	case fmt.Stringer:
		return r.String()
	default:
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Sprint(r)
		}
		return string(b)
	}
}
