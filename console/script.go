// Copyright (c) Microsoft. All rights reserved.

package console

import (
	"context"
	"fmt"
	"io"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

// Responder is the part of an agent [RunScript] drives.
type Responder interface {
	NewThread() *af.Thread
	Run(ctx context.Context, messages []af.Message, opts ...af.RunOption) (*af.AgentResponse, error)
}

// RunScript sends each input in order on one thread, without streaming,
// and prints a transcript to w:
//
//	# User: '<input>'
//	# <speaker>: '<reply>'
func RunScript(ctx context.Context, r Responder, speaker string, inputs []string, w io.Writer) error {
	thread := r.NewThread()
	for _, input := range inputs {
		fmt.Fprintf(w, "# User: '%s'\n", input)
		resp, err := r.Run(ctx, []af.Message{af.NewUserMessage(input)}, af.WithThread(thread))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# %s: '%s'\n", speaker, resp.Text())
	}
	return nil
}
