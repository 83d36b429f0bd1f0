// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"iter"
	"sync"
)

// ResponseStream delivers the values of a producer goroutine in the order
// they were sent, followed by the producer's error, if any.
//
// Close must be called, even after the stream is exhausted; it cancels the
// producer and waits for it to finish.
type ResponseStream[T any] struct {
	values <-chan T
	cancel context.CancelFunc
	closed sync.Once

	// err is written by the producer goroutine before values is closed, so
	// it may be read by anyone who has seen the close.
	err error
}

// NewResponseStream starts producer on its own goroutine. The producer sends
// on ch and should return promptly once ctx is done; its return value
// becomes the stream's terminal error.
func NewResponseStream[T any](ctx context.Context, producer func(ctx context.Context, ch chan<- T) error) *ResponseStream[T] {
	ctx, cancel := context.WithCancel(ctx)
	values := make(chan T, 1)
	s := &ResponseStream[T]{values: values, cancel: cancel}

	go func() {
		err := producer(ctx, values)
		s.err = err
		close(values)
	}()
	return s
}

// Next blocks for the next value. At the end of the stream it returns ok
// false together with the producer's error.
func (s *ResponseStream[T]) Next(ctx context.Context) (v T, ok bool, err error) {
	select {
	case v, ok = <-s.values:
		if !ok {
			return v, false, s.err
		}
		return v, true, nil
	case <-ctx.Done():
		return v, false, ctx.Err()
	}
}

// All ranges over the remaining values. A failure is yielded once, as the
// last element.
func (s *ResponseStream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := s.Next(ctx)
			switch {
			case err != nil:
				yield(v, err)
				return
			case !ok:
				return
			case !yield(v, nil):
				return
			}
		}
	}
}

// Collect reads the stream to its end. On failure it returns the values
// read so far with the error.
func (s *ResponseStream[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for v, err := range s.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Close cancels the producer and drains what it still sends. It is safe to
// call more than once.
func (s *ResponseStream[T]) Close() error {
	s.closed.Do(func() {
		s.cancel()
		for range s.values {
		}
	})
	return nil
}

// AgentResponseStream is the stream returned by [Agent.RunStream]. It
// remembers every update it hands out so [AgentResponseStream.FinalResponse]
// can assemble the whole answer.
type AgentResponseStream struct {
	stream *ResponseStream[AgentResponseUpdate]
	seen   []AgentResponseUpdate
}

// NewAgentResponseStream wraps an update stream.
func NewAgentResponseStream(stream *ResponseStream[AgentResponseUpdate]) *AgentResponseStream {
	return &AgentResponseStream{stream: stream}
}

// Next returns the next update.
func (s *AgentResponseStream) Next(ctx context.Context) (AgentResponseUpdate, bool, error) {
	u, ok, err := s.stream.Next(ctx)
	if ok {
		s.seen = append(s.seen, u)
	}
	return u, ok, err
}

// Updates ranges over the remaining updates.
func (s *AgentResponseStream) Updates(ctx context.Context) iter.Seq2[AgentResponseUpdate, error] {
	return func(yield func(AgentResponseUpdate, error) bool) {
		for u, err := range s.stream.All(ctx) {
			if err == nil {
				s.seen = append(s.seen, u)
			}
			if !yield(u, err) {
				return
			}
		}
	}
}

// FinalResponse drains the stream and merges every update, including those
// already consumed, into one response.
func (s *AgentResponseStream) FinalResponse(ctx context.Context) (*AgentResponse, error) {
	for _, err := range s.Updates(ctx) {
		if err != nil {
			return nil, err
		}
	}
	return AgentResponseFromUpdates(s.seen), nil
}

// Close releases the underlying stream.
func (s *AgentResponseStream) Close() error { return s.stream.Close() }
