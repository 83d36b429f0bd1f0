// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"slices"
	"sync"
)

// MessageStore holds the history of a local [Thread].
type MessageStore interface {
	ListMessages(ctx context.Context) ([]Message, error)
	AddMessages(ctx context.Context, msgs []Message) error
	Clear(ctx context.Context) error
}

// InMemoryStore keeps history in memory. It is safe for concurrent use.
type InMemoryStore struct {
	mu   sync.Mutex
	msgs []Message
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore { return &InMemoryStore{} }

// ListMessages returns a copy of the history, oldest first.
func (s *InMemoryStore) ListMessages(context.Context) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.msgs), nil
}

func (s *InMemoryStore) AddMessages(_ context.Context, msgs []Message) error {
	s.mu.Lock()
	s.msgs = append(s.msgs, msgs...)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.msgs = nil
	s.mu.Unlock()
	return nil
}
