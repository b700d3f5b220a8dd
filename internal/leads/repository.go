package leads

import (
	"context"
	"sync"
)

// SessionStore holds each user's current lead batch. A new search replaces
// the whole batch.
type SessionStore interface {
	Load(ctx context.Context, userID string) ([]Lead, error)
	Save(ctx context.Context, userID string, leads []Lead) error
	Clear(ctx context.Context, userID string) error
}

// MemorySessionStore keeps batches in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]Lead
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string][]Lead)}
}

// Load returns a copy of the user's batch, or an empty batch.
func (s *MemorySessionStore) Load(ctx context.Context, userID string) ([]Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.sessions[userID]
	out := make([]Lead, len(stored))
	copy(out, stored)
	return out, nil
}

// Save replaces the user's batch.
func (s *MemorySessionStore) Save(ctx context.Context, userID string, leads []Lead) error {
	stored := make([]Lead, len(leads))
	copy(stored, leads)
	s.mu.Lock()
	s.sessions[userID] = stored
	s.mu.Unlock()
	return nil
}

// Clear drops the user's batch.
func (s *MemorySessionStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}
