package leads

import (
	"context"
	"fmt"
	"sync"
)

// Sessions wraps a SessionStore and serializes every mutation of a user's
// batch. All handlers that write pipelines must share one Sessions value so
// a stage change in flight cannot overwrite a batch saved meanwhile.
type Sessions struct {
	store SessionStore
	locks sync.Map
}

// NewSessions wraps store. Wrapping a *Sessions returns it unchanged.
func NewSessions(store SessionStore) *Sessions {
	if s, ok := store.(*Sessions); ok {
		return s
	}
	return &Sessions{store: store}
}

// Unwrap returns the underlying store.
func (s *Sessions) Unwrap() SessionStore {
	return s.store
}

// Load returns the user's current batch.
func (s *Sessions) Load(ctx context.Context, userID string) ([]Lead, error) {
	return s.store.Load(ctx, userID)
}

// Save replaces the user's batch once any in-flight mutation has finished.
func (s *Sessions) Save(ctx context.Context, userID string, leads []Lead) error {
	unlock := s.lock(userID)
	defer unlock()
	return s.store.Save(ctx, userID, leads)
}

// Clear drops the user's batch once any in-flight mutation has finished.
func (s *Sessions) Clear(ctx context.Context, userID string) error {
	unlock := s.lock(userID)
	defer unlock()
	return s.store.Clear(ctx, userID)
}

// Update loads the user's batch, passes it to fn and saves what fn returns,
// all under the user's lock. Nothing is saved when fn returns an error.
func (s *Sessions) Update(ctx context.Context, userID string, fn func([]Lead) ([]Lead, error)) error {
	unlock := s.lock(userID)
	defer unlock()
	batch, err := s.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("leads: load session: %w", err)
	}
	next, err := fn(batch)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, userID, next); err != nil {
		return fmt.Errorf("leads: save session: %w", err)
	}
	return nil
}

// lock returns the release func for the user's held lock.
func (s *Sessions) lock(userID string) func() {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
