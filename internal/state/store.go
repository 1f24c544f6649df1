// Package state keeps per-user conversation state behind a pluggable store.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/dodorico/property-assistant/internal/model"
)

// Store is the per-user conversation state store. Implementations must be
// safe for concurrent access from different users; one user's messages are
// processed one at a time, so per-user writes need no coordination.
type Store interface {
	// Get returns the user's state, or a fresh initial state when the user
	// is unknown. The initial state is not persisted by the read.
	Get(ctx context.Context, userID string) (*model.ConversationState, error)

	// Set stores the user's state, stamping the last-activity time.
	Set(ctx context.Context, userID string, st *model.ConversationState) error

	// Reset removes the user's state.
	Reset(ctx context.Context, userID string) error
}

// MemoryStore is the in-memory Store. State lives for the process lifetime
// only.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*model.ConversationState

	// now is injectable for tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*model.ConversationState),
		now:    time.Now,
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, userID string) (*model.ConversationState, error) {
	s.mu.RLock()
	st, ok := s.states[userID]
	s.mu.RUnlock()

	if !ok {
		return model.NewConversationState(s.now()), nil
	}

	// Copy so callers can mutate freely before Set.
	cp := *st
	return &cp, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, userID string, st *model.ConversationState) error {
	st.LastActivityAt = s.now()

	s.mu.Lock()
	cp := *st
	s.states[userID] = &cp
	s.mu.Unlock()
	return nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.states, userID)
	s.mu.Unlock()
	return nil
}
