package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/microtix/lead-platform/internal/admin"
	"github.com/microtix/lead-platform/internal/billing"
	httpmiddleware "github.com/microtix/lead-platform/internal/http/middleware"
	"github.com/microtix/lead-platform/internal/http/respond"
	"github.com/microtix/lead-platform/internal/jobs"
	"github.com/microtix/lead-platform/internal/leads"
	"github.com/microtix/lead-platform/internal/subscription"
	"github.com/microtix/lead-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	LeadsHandler        *leads.Handler
	JobsHandler         *jobs.Handler
	SubscriptionHandler *subscription.Handler
	BillingHandler      *billing.Handler
	AdminHandler        *admin.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Auth verifies the caller and stores the identity in the request
	// context. Required for every /api route except /api/plans.
	Auth func(http.Handler) http.Handler

	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.Tracing)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}

		if cfg.SubscriptionHandler != nil {
			api.Get("/plans", cfg.SubscriptionHandler.Plans)
		}

		api.Group(func(authed chi.Router) {
			authed.Use(requireAuth(cfg.Auth))

			if cfg.LeadsHandler != nil {
				authed.Post("/search", cfg.LeadsHandler.Search)
				authed.Route("/pipeline", func(p chi.Router) {
					p.Get("/", cfg.LeadsHandler.Pipeline)
					p.Delete("/", cfg.LeadsHandler.Reset)
					p.Get("/export", cfg.LeadsHandler.Export)
				})
				authed.Patch("/leads/{leadID}/stage", cfg.LeadsHandler.ChangeStage)
			}

			if cfg.JobsHandler != nil {
				authed.Route("/jobs", func(j chi.Router) {
					j.Get("/", cfg.JobsHandler.List)
					j.Route("/{jobID}", func(job chi.Router) {
						job.Get("/", cfg.JobsHandler.Status)
						job.Delete("/", cfg.JobsHandler.Remove)
						job.Get("/results", cfg.JobsHandler.Results)
						job.Post("/retry", cfg.JobsHandler.Retry)
					})
				})
			}

			if cfg.SubscriptionHandler != nil {
				authed.Get("/me", cfg.SubscriptionHandler.Me)
			}

			if cfg.BillingHandler != nil {
				authed.Route("/billing", func(b chi.Router) {
					b.Post("/checkout", cfg.BillingHandler.Checkout)
					b.Post("/portal", cfg.BillingHandler.Portal)
				})
			}

			if cfg.AdminHandler != nil {
				authed.With(httpmiddleware.RequireAdmin).Get("/admin/stats", cfg.AdminHandler.Stats)
			}
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAuth rejects every request when no authenticator is configured
// rather than serving user routes anonymously.
func requireAuth(auth func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if auth != nil {
		return auth
	}
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respond.Error(w, "authentication not configured", http.StatusUnauthorized)
		})
	}
}
