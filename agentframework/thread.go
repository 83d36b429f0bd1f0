// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Thread is a conversation handle. It tracks message history across turns
// in one of two mutually exclusive modes:
//   - Service-managed: history lives server-side, identified by ServiceID
//   - Locally-managed: messages are stored locally via a [MessageStore]
//
// Setting one mode locks out the other. Once deleted, a thread cannot be
// used for further runs.
type Thread struct {
	mu         sync.Mutex
	id         string
	serviceID  string
	store      MessageStore
	modeLocked bool
	deleted    bool
	deleter    ThreadDeleter
}

// ThreadOption configures a [Thread].
type ThreadOption func(*Thread)

// WithThreadStore sets the local message store for the thread.
func WithThreadStore(store MessageStore) ThreadOption {
	return func(t *Thread) { t.store = store }
}

// WithThreadDeleter sets the backend used to dispose service-managed state.
func WithThreadDeleter(d ThreadDeleter) ThreadOption {
	return func(t *Thread) { t.deleter = d }
}

// NewThread creates a new Thread with a generated ID.
func NewThread(opts ...ThreadOption) *Thread {
	t := &Thread{id: uuid.NewString()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the thread's unique identifier.
func (t *Thread) ID() string { return t.id }

// ServiceID returns the service-managed thread ID, or empty if locally managed.
func (t *Thread) ServiceID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.serviceID
}

// SetServiceID locks the thread into service-managed mode.
func (t *Thread) SetServiceID(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.modeLocked && t.store != nil {
		return fmt.Errorf("%w: cannot switch to service mode", ErrThreadModeLocked)
	}
	t.store = nil
	t.serviceID = id
	t.modeLocked = true
	return nil
}

// Store returns the local message store, or nil if service-managed.
func (t *Thread) Store() MessageStore {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store
}

// SetStore locks the thread into locally-managed mode.
func (t *Thread) SetStore(store MessageStore) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.modeLocked && t.serviceID != "" {
		return fmt.Errorf("%w: cannot switch to local mode", ErrThreadModeLocked)
	}
	t.serviceID = ""
	t.store = store
	t.modeLocked = true
	return nil
}

// Deleted reports whether [Thread.Delete] has run.
func (t *Thread) Deleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleted
}

// Delete disposes the thread. Service-managed state is released through the
// thread's [ThreadDeleter]; local history is cleared. Calling Delete on an
// already deleted thread is a no-op.
func (t *Thread) Delete(ctx context.Context) error {
	t.mu.Lock()
	if t.deleted {
		t.mu.Unlock()
		return nil
	}
	t.deleted = true
	serviceID, store, deleter := t.serviceID, t.store, t.deleter
	t.mu.Unlock()

	if serviceID != "" && deleter != nil {
		if err := deleter.DeleteThread(ctx, serviceID); err != nil {
			return fmt.Errorf("%w: delete %s: %w", ErrThread, serviceID, err)
		}
	}
	if store != nil {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("%w: clear store: %w", ErrThread, err)
		}
	}
	return nil
}

// threadState is the serialized form of a [Thread].
type threadState struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"serviceId,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
}

// Serialize returns the thread state as JSON.
func (t *Thread) Serialize(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	state := threadState{ID: t.id, ServiceID: t.serviceID}
	store := t.store
	t.mu.Unlock()

	if store != nil {
		msgs, err := store.ListMessages(ctx)
		if err != nil {
			return nil, fmt.Errorf("serialize store: %w", err)
		}
		state.Messages = msgs
	}
	return json.Marshal(state)
}

// checkUsable returns ErrThreadDeleted for disposed threads.
func (t *Thread) checkUsable() error {
	if t.Deleted() {
		return fmt.Errorf("%w: %s", ErrThreadDeleted, t.id)
	}
	return nil
}
