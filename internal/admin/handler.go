package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/microtix/lead-platform/internal/backend"
	"github.com/microtix/lead-platform/internal/http/respond"
	"github.com/microtix/lead-platform/internal/identity"
	"github.com/microtix/lead-platform/pkg/logging"
)

// StatsFetcher is the admin webhook.
type StatsFetcher interface {
	AdminStats(ctx context.Context, token string) (json.RawMessage, error)
}

// Handler serves the super-admin dashboard.
type Handler struct {
	stats  StatsFetcher
	logger *logging.Logger
}

// NewHandler creates an admin handler.
func NewHandler(stats StatsFetcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{stats: stats, logger: logger}
}

// Stats handles GET /api/admin/stats. Callers are already admins.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	raw, err := h.stats.AdminStats(r.Context(), user.Token)
	if err != nil {
		if errors.Is(err, backend.ErrNotConfigured) {
			respond.Error(w, "admin stats are not configured", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("failed to fetch admin stats", "user_id", user.UID, "error", err)
		respond.Error(w, "failed to fetch admin stats", http.StatusBadGateway)
		return
	}

	var stats Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		h.logger.Error("failed to decode admin stats", "error", err)
		respond.Error(w, "invalid admin stats payload", http.StatusBadGateway)
		return
	}
	if stats.RecentActivity == nil {
		stats.RecentActivity = []Activity{}
	}
	respond.JSON(w, http.StatusOK, stats)
}
