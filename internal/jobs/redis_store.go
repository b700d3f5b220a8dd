package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const jobsKeyPrefix = "microtix:jobs:"

// RedisStore keeps a set of job ids per user plus a hash of job records.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed job store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("jobs: redis client cannot be nil")
	}
	return &RedisStore{client: client}
}

// Add records job; re-adding an id replaces it.
func (s *RedisStore) Add(ctx context.Context, userID string, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("jobs: failed to encode job: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, idsKey(userID), job.ID)
	pipe.HSet(ctx, recordsKey(userID), job.ID, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("jobs: failed to add job: %w", err)
	}
	return nil
}

// Get returns a tracked job.
func (s *RedisStore) Get(ctx context.Context, userID, jobID string) (Job, error) {
	raw, err := s.client.HGet(ctx, recordsKey(userID), jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, fmt.Errorf("jobs: %s: %w", jobID, ErrJobNotFound)
	}
	if err != nil {
		return Job{}, fmt.Errorf("jobs: failed to load job: %w", err)
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("jobs: failed to decode job: %w", err)
	}
	return job, nil
}

// List returns the user's jobs, oldest first.
func (s *RedisStore) List(ctx context.Context, userID string) ([]Job, error) {
	ids, err := s.client.SMembers(ctx, idsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("jobs: failed to list jobs: %w", err)
	}
	out := make([]Job, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	values, err := s.client.HMGet(ctx, recordsKey(userID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("jobs: failed to load jobs: %w", err)
	}
	for i, v := range values {
		job := Job{ID: ids[i]}
		if str, ok := v.(string); ok {
			if err := json.Unmarshal([]byte(str), &job); err != nil {
				return nil, fmt.Errorf("jobs: failed to decode job %s: %w", ids[i], err)
			}
		}
		out = append(out, job)
	}
	sortJobs(out)
	return out, nil
}

// Remove stops tracking a job.
func (s *RedisStore) Remove(ctx context.Context, userID, jobID string) error {
	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, idsKey(userID), jobID)
	pipe.HDel(ctx, recordsKey(userID), jobID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("jobs: failed to remove job: %w", err)
	}
	return nil
}

func idsKey(userID string) string {
	return jobsKeyPrefix + userID
}

func recordsKey(userID string) string {
	return jobsKeyPrefix + userID + ":records"
}
