package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/microtix/lead-platform/internal/leads"
)

// Job is a background search the user started.
type Job struct {
	ID        string              `json:"id"`
	Search    leads.SearchContext `json:"search"`
	CreatedAt time.Time           `json:"createdAt"`
}

// Store tracks each user's background search jobs.
type Store interface {
	Add(ctx context.Context, userID string, job Job) error
	Get(ctx context.Context, userID, jobID string) (Job, error)
	List(ctx context.Context, userID string) ([]Job, error)
	Remove(ctx context.Context, userID, jobID string) error
}

// MemoryStore keeps jobs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]map[string]Job
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]map[string]Job)}
}

// Add records job; re-adding an id replaces it.
func (s *MemoryStore) Add(ctx context.Context, userID string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.jobs[userID]
	if !ok {
		byID = make(map[string]Job)
		s.jobs[userID] = byID
	}
	byID[job.ID] = job
	return nil
}

// Get returns a tracked job.
func (s *MemoryStore) Get(ctx context.Context, userID, jobID string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[userID][jobID]
	if !ok {
		return Job{}, fmt.Errorf("jobs: %s: %w", jobID, ErrJobNotFound)
	}
	return job, nil
}

// List returns the user's jobs, oldest first.
func (s *MemoryStore) List(ctx context.Context, userID string) ([]Job, error) {
	s.mu.RLock()
	out := make([]Job, 0, len(s.jobs[userID]))
	for _, job := range s.jobs[userID] {
		out = append(out, job)
	}
	s.mu.RUnlock()
	sortJobs(out)
	return out, nil
}

// Remove stops tracking a job. Unknown ids are ignored.
func (s *MemoryStore) Remove(ctx context.Context, userID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs[userID], jobID)
	return nil
}

func sortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
}

// Tracker registers jobs returned by the search webhook.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker creates a tracker over store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Track records jobID for the user with the search that started it.
func (t *Tracker) Track(ctx context.Context, userID, jobID string, sc leads.SearchContext) error {
	return t.store.Add(ctx, userID, Job{ID: jobID, Search: sc, CreatedAt: t.now().UTC()})
}
