package subscription

import (
	"net/http"
	"time"

	"github.com/microtix/lead-platform/internal/http/respond"
	"github.com/microtix/lead-platform/internal/identity"
	"github.com/microtix/lead-platform/pkg/logging"
)

// Handler serves account and pricing endpoints.
type Handler struct {
	resolver *Resolver
	prices   PriceIDs
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a subscription handler.
func NewHandler(resolver *Resolver, prices PriceIDs, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{resolver: resolver, prices: prices, logger: logger, now: time.Now}
}

// TrialView is the countdown shown while a trial runs.
type TrialView struct {
	Active    bool   `json:"active"`
	Remaining string `json:"remaining,omitempty"`
}

// MeResponse is the response for GET /api/me.
type MeResponse struct {
	User         identity.User `json:"user"`
	Subscription Subscription  `json:"subscription"`
	Trial        TrialView     `json:"trial"`
}

// Me handles GET /api/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	now := h.now()
	sub := h.resolver.Resolve(r.Context(), user)
	respond.JSON(w, http.StatusOK, MeResponse{
		User:         user,
		Subscription: sub,
		Trial: TrialView{
			Active:    sub.TrialActive(now),
			Remaining: sub.TrialRemaining(now),
		},
	})
}

// Plans handles GET /api/plans.
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{"plans": Plans(h.prices)})
}
