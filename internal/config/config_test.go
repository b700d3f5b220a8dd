package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "MICROTIX_WEBHOOK_URL", "SEARCH_WEBHOOK_URL",
		"ACCOUNT_WEBHOOK_URL", "BILLING_WEBHOOK_URL", "ADMIN_WEBHOOK_URL", "WEBHOOK_TIMEOUT",
		"BILLING_DRY_RUN", "REDIS_ADDR", "SESSION_TTL", "CORS_ALLOWED_ORIGINS",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" || cfg.IsProduction() {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SearchWebhookURL != "" {
		t.Fatalf("expected no search webhook by default, got %s", cfg.SearchWebhookURL)
	}
	if cfg.WebhookTimeout != 2*time.Minute {
		t.Fatalf("expected default webhook timeout, got %s", cfg.WebhookTimeout)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.BillingDryRun {
		t.Fatalf("expected billing dry run disabled by default")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected default origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Fatalf("unexpected rate limit defaults %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestWebhookURLsDefaultToShared(t *testing.T) {
	clearEnv(t)
	t.Setenv("MICROTIX_WEBHOOK_URL", "https://n8n.example/webhook/microtix")
	t.Setenv("BILLING_WEBHOOK_URL", "https://n8n.example/webhook/billing")
	cfg := Load()

	if cfg.SearchWebhookURL != "https://n8n.example/webhook/microtix" {
		t.Fatalf("expected search to inherit shared url, got %s", cfg.SearchWebhookURL)
	}
	if cfg.AccountWebhookURL != cfg.WebhookURL || cfg.AdminWebhookURL != cfg.WebhookURL {
		t.Fatalf("expected account/admin to inherit shared url")
	}
	if cfg.BillingWebhookURL != "https://n8n.example/webhook/billing" {
		t.Fatalf("expected billing override, got %s", cfg.BillingWebhookURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("WEBHOOK_TIMEOUT", "30s")
	t.Setenv("BILLING_DRY_RUN", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.microtix.io, ,https://microtix.io ")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	cfg := Load()

	if cfg.Port != "9090" || !cfg.IsProduction() {
		t.Fatalf("unexpected port/env %s/%s", cfg.Port, cfg.Env)
	}
	if cfg.WebhookTimeout != 30*time.Second {
		t.Fatalf("expected timeout override, got %s", cfg.WebhookTimeout)
	}
	if !cfg.BillingDryRun {
		t.Fatalf("expected dry run enabled")
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected redis settings %s/%s", cfg.RedisAddr, cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://microtix.io" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 5 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEBHOOK_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_BURST", "lots")
	cfg := Load()
	if cfg.WebhookTimeout != 2*time.Minute || cfg.RateLimitBurst != 20 {
		t.Fatalf("expected defaults for invalid values")
	}
}
