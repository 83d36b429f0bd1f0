// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	af "github.com/microsoft/ai-agents-for-beginners/go/agentframework"
)

// maxEventSize bounds a single server-sent event line.
const maxEventSize = 1 << 20

var (
	dataPrefix = []byte("data:")
	doneMarker = []byte("[DONE]")
)

// events yields the payload of each "data:" line until "[DONE]" or end of
// input.
func events(r io.Reader, yield func([]byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	for sc.Scan() {
		payload, ok := bytes.CutPrefix(sc.Bytes(), dataPrefix)
		if !ok {
			continue
		}
		payload = bytes.TrimSpace(payload)
		if bytes.Equal(payload, doneMarker) {
			return nil
		}
		if err := yield(payload); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: read event stream: %v", af.ErrService, err)
	}
	return nil
}

// streamUpdates decodes a completion event stream into updates on ch. Text
// is forwarded as it arrives. Tool calls are held until their choice
// finishes and then sent whole, so consumers never see partial arguments.
func streamUpdates(ctx context.Context, body io.Reader, ch chan<- af.ChatResponseUpdate) error {
	send := func(u af.ChatResponseUpdate) error {
		select {
		case ch <- u:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var calls callAssembler
	err := events(body, func(payload []byte) error {
		var c chunk
		if err := json.Unmarshal(payload, &c); err != nil {
			slog.DebugContext(ctx, "skipping undecodable chunk", "error", err)
			return nil
		}
		u := c.update()
		if len(c.Choices) > 0 {
			calls.add(c.Choices[0].Delta.ToolCalls)
			if c.Choices[0].FinishReason != nil {
				u.Contents = append(u.Contents, calls.take()...)
			}
		}
		return send(u)
	})
	if err != nil {
		return err
	}

	// Streams that end without a finish reason still deliver their calls.
	if pending := calls.take(); len(pending) > 0 {
		return send(af.ChatResponseUpdate{
			Role:         af.RoleAssistant,
			Contents:     pending,
			FinishReason: af.FinishReasonToolCalls,
		})
	}
	return nil
}
