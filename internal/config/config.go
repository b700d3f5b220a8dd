package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Workflow webhooks. Each specific URL defaults to WebhookURL.
	WebhookURL        string
	SearchWebhookURL  string
	AccountWebhookURL string
	BillingWebhookURL string
	AdminWebhookURL   string
	WebhookTimeout    time.Duration

	// Stripe price ids per tier
	StripePriceStarter string
	StripePricePro     string
	StripePricePremium string
	BillingSuccessURL  string
	BillingCancelURL   string
	BillingDryRun      bool

	FirebaseProjectID string
	FirebaseJWKSURL   string
	DevAuthSecret     string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	webhook := getEnv("MICROTIX_WEBHOOK_URL", "")
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		WebhookURL:        webhook,
		SearchWebhookURL:  getEnv("SEARCH_WEBHOOK_URL", webhook),
		AccountWebhookURL: getEnv("ACCOUNT_WEBHOOK_URL", webhook),
		BillingWebhookURL: getEnv("BILLING_WEBHOOK_URL", webhook),
		AdminWebhookURL:   getEnv("ADMIN_WEBHOOK_URL", webhook),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 2*time.Minute),

		StripePriceStarter: getEnv("STRIPE_PRICE_STARTER", ""),
		StripePricePro:     getEnv("STRIPE_PRICE_PRO", ""),
		StripePricePremium: getEnv("STRIPE_PRICE_PREMIUM", ""),
		BillingSuccessURL:  getEnv("BILLING_SUCCESS_URL", "http://localhost:5173/dashboard?checkout=success"),
		BillingCancelURL:   getEnv("BILLING_CANCEL_URL", "http://localhost:5173/pricing?checkout=cancel"),
		BillingDryRun:      getEnvAsBool("BILLING_DRY_RUN", false),

		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseJWKSURL:   getEnv("FIREBASE_JWKS_URL", ""),
		DevAuthSecret:     getEnv("DEV_AUTH_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	return env == "production" || env == "prod"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
