package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/microtix/lead-platform/internal/admin"
	"github.com/microtix/lead-platform/internal/api/router"
	"github.com/microtix/lead-platform/internal/backend"
	"github.com/microtix/lead-platform/internal/billing"
	appconfig "github.com/microtix/lead-platform/internal/config"
	httpmiddleware "github.com/microtix/lead-platform/internal/http/middleware"
	"github.com/microtix/lead-platform/internal/jobs"
	"github.com/microtix/lead-platform/internal/leads"
	"github.com/microtix/lead-platform/internal/observability/metrics"
	"github.com/microtix/lead-platform/internal/subscription"
	"github.com/microtix/lead-platform/pkg/logging"
)

// App is the assembled API: the HTTP handler plus the resources that need
// releasing on shutdown.
type App struct {
	Handler http.Handler
	Stores  Stores

	redis   *redis.Client
	limiter *httpmiddleware.RateLimiter
}

// Close releases background resources.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Options override pieces of the default wiring (for testing).
type Options struct {
	Registerer  prometheus.Registerer
	Gatherer    prometheus.Gatherer
	RedisClient *redis.Client
	HTTPClient  *http.Client
}

// BuildApp wires config into handlers and the router.
func BuildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	reg, gatherer := opts.Registerer, opts.Gatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		r.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg, gatherer = r, r
	}
	leadMetrics := metrics.NewLeadMetrics(reg)

	redisClient := opts.RedisClient
	if redisClient == nil {
		redisClient = BuildRedisClient(ctx, cfg, logger, true)
	}
	stores := BuildStores(redisClient, cfg)

	client := BuildBackend(cfg, logger).WithHTTPClient(opts.HTTPClient).WithObserver(leadMetrics)
	prices := subscription.PriceIDs{
		Starter: cfg.StripePriceStarter,
		Pro:     cfg.StripePricePro,
		Premium: cfg.StripePricePremium,
	}
	resolver := subscription.NewResolver(client, logger.Component("subscription"))
	billingService := billing.NewService(client, billing.Config{
		Prices:     prices,
		SuccessURL: cfg.BillingSuccessURL,
		CancelURL:  cfg.BillingCancelURL,
		DryRun:     cfg.BillingDryRun,
	}, logger.Component("billing"))

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	var metricsHandler http.Handler
	if gatherer != nil {
		metricsHandler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	handler := router.New(&router.Config{
		Logger: logger,
		LeadsHandler: leads.NewHandler(stores.Sessions, client, logger.Component("leads")).
			WithSubscriptions(resolver).
			WithJobTracker(jobs.NewTracker(stores.Jobs)).
			WithMetrics(leadMetrics),
		JobsHandler:         jobs.NewHandler(stores.Jobs, client, stores.Sessions, logger.Component("jobs")),
		SubscriptionHandler: subscription.NewHandler(resolver, prices, logger.Component("subscription")),
		BillingHandler:      billing.NewHandler(billingService, logger.Component("billing")),
		AdminHandler:        admin.NewHandler(client, logger.Component("admin")),
		MetricsHandler:      metricsHandler,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		Auth:                BuildAuth(cfg, logger),
		RateLimiter:         limiter,
	})

	logger.Info("api wired",
		"store", stores.Backend,
		"search_webhook", cfg.SearchWebhookURL != "",
		"billing_dry_run", cfg.BillingDryRun,
	)
	return &App{Handler: handler, Stores: stores, redis: redisClient, limiter: limiter}, nil
}

// BuildBackend creates the webhook client from the configured endpoints.
func BuildBackend(cfg *appconfig.Config, logger *logging.Logger) *backend.Client {
	return backend.NewClient(backend.Endpoints{
		Search:  cfg.SearchWebhookURL,
		Account: cfg.AccountWebhookURL,
		Billing: cfg.BillingWebhookURL,
		Admin:   cfg.AdminWebhookURL,
	}, cfg.WebhookTimeout, logger.Component("backend"))
}

// BuildAuth picks the authenticator. Dev tokens are refused in production
// even when a secret is set.
func BuildAuth(cfg *appconfig.Config, logger *logging.Logger) func(http.Handler) http.Handler {
	firebase := httpmiddleware.FirebaseConfig{
		ProjectID: cfg.FirebaseProjectID,
		JWKSURL:   cfg.FirebaseJWKSURL,
	}
	devSecret := cfg.DevAuthSecret
	if devSecret != "" && cfg.IsProduction() {
		logger.Warn("DEV_AUTH_SECRET ignored in production")
		devSecret = ""
	}
	switch {
	case firebase.ProjectID != "" && devSecret != "":
		return httpmiddleware.FirebaseOrDevJWT(firebase, devSecret)
	case firebase.ProjectID != "":
		return httpmiddleware.FirebaseJWT(firebase)
	case devSecret != "":
		logger.Warn("firebase not configured, accepting dev tokens only")
		return httpmiddleware.DevJWT(devSecret)
	default:
		logger.Warn("no authenticator configured, user routes will reject all requests")
		return nil
	}
}
