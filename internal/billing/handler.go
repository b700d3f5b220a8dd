package billing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/microtix/lead-platform/internal/backend"
	"github.com/microtix/lead-platform/internal/http/respond"
	"github.com/microtix/lead-platform/internal/identity"
	"github.com/microtix/lead-platform/internal/subscription"
	"github.com/microtix/lead-platform/pkg/logging"
)

// Handler serves the checkout and portal endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a billing handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type checkoutRequest struct {
	Tier string `json:"tier"`
}

type urlResponse struct {
	URL string `json:"url"`
}

// Checkout handles POST /api/billing/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	tier, err := subscription.ParseTier(req.Tier)
	if err != nil {
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	url, err := h.service.Checkout(r.Context(), user, tier)
	if err != nil {
		h.writeError(w, "checkout", user, err)
		return
	}
	respond.JSON(w, http.StatusOK, urlResponse{URL: url})
}

// Portal handles POST /api/billing/portal.
func (h *Handler) Portal(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	url, err := h.service.Portal(r.Context(), user)
	if err != nil {
		h.writeError(w, "portal", user, err)
		return
	}
	respond.JSON(w, http.StatusOK, urlResponse{URL: url})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, user identity.User, err error) {
	switch {
	case errors.Is(err, subscription.ErrUnknownTier):
		respond.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPriceNotConfigured), errors.Is(err, backend.ErrNotConfigured):
		h.logger.Error("billing not configured", "op", op, "error", err)
		respond.Error(w, "billing is not configured", http.StatusServiceUnavailable)
	case errors.Is(err, backend.ErrUnauthenticated):
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
	default:
		h.logger.Error("billing call failed", "op", op, "user_id", user.UID, "error", err)
		respond.Error(w, "billing service unavailable", http.StatusBadGateway)
	}
}
