package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/microtix/lead-platform/internal/config"
	"github.com/microtix/lead-platform/internal/jobs"
	"github.com/microtix/lead-platform/internal/leads"
	"github.com/microtix/lead-platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, using in-memory stores", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// Stores groups the per-user state backends. Sessions is shared by every
// handler that writes pipelines.
type Stores struct {
	Sessions *leads.Sessions
	Jobs     jobs.Store
	Backend  string
}

// BuildStores returns Redis-backed stores when a client is available and
// in-memory stores otherwise.
func BuildStores(redisClient *redis.Client, cfg *appconfig.Config) Stores {
	if redisClient == nil {
		return Stores{
			Sessions: leads.NewSessions(leads.NewMemorySessionStore()),
			Jobs:     jobs.NewMemoryStore(),
			Backend:  "memory",
		}
	}
	return Stores{
		Sessions: leads.NewSessions(leads.NewRedisSessionStore(redisClient, cfg.SessionTTL)),
		Jobs:     jobs.NewRedisStore(redisClient),
		Backend:  "redis",
	}
}
