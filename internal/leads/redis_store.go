package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "microtix:session:"

// RedisSessionStore keeps each batch as one JSON value with a TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store. A zero ttl keeps
// batches until cleared.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("leads: redis client cannot be nil")
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

// Load returns the user's batch, or an empty batch if none is stored.
func (s *RedisSessionStore) Load(ctx context.Context, userID string) ([]Lead, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Lead{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leads: failed to load session: %w", err)
	}
	var out []Lead
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("leads: failed to decode session: %w", err)
	}
	if out == nil {
		out = []Lead{}
	}
	return out, nil
}

// Save replaces the user's batch and refreshes its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, userID string, leads []Lead) error {
	if leads == nil {
		leads = []Lead{}
	}
	payload, err := json.Marshal(leads)
	if err != nil {
		return fmt.Errorf("leads: failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(userID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("leads: failed to save session: %w", err)
	}
	return nil
}

// Clear deletes the user's batch.
func (s *RedisSessionStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("leads: failed to clear session: %w", err)
	}
	return nil
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID + ":leads"
}
