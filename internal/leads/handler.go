package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/microtix/lead-platform/internal/backend"
	"github.com/microtix/lead-platform/internal/http/respond"
	"github.com/microtix/lead-platform/internal/identity"
	"github.com/microtix/lead-platform/internal/observability/metrics"
	"github.com/microtix/lead-platform/internal/subscription"
	"github.com/microtix/lead-platform/pkg/logging"
)

// SearchBackend is the subset of the webhook client the lead endpoints use.
type SearchBackend interface {
	StartSearch(ctx context.Context, token string, payload backend.SearchPayload) (json.RawMessage, error)
	UpdateLeadStage(ctx context.Context, token string, update backend.StageUpdate) error
}

// SubscriptionResolver returns the caller's plan.
type SubscriptionResolver interface {
	Resolve(ctx context.Context, user identity.User) subscription.Subscription
}

// JobTracker records background jobs announced by the search webhook.
type JobTracker interface {
	Track(ctx context.Context, userID, jobID string, sc SearchContext) error
}

// Handler handles HTTP requests for the lead pipeline.
type Handler struct {
	sessions      *Sessions
	backend       SearchBackend
	subscriptions SubscriptionResolver
	jobs          JobTracker
	metrics       *metrics.LeadMetrics
	logger        *logging.Logger
	now           func() time.Time

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewHandler creates a new leads handler. Pass the same *Sessions to every
// other handler that writes pipelines; a plain store is wrapped here.
func NewHandler(sessions SessionStore, b SearchBackend, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sessions: NewSessions(sessions),
		backend:  b,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// WithSubscriptions enables plan limit checks on search.
func (h *Handler) WithSubscriptions(resolver SubscriptionResolver) *Handler {
	h.subscriptions = resolver
	return h
}

// WithJobTracker registers job ids returned by the search webhook.
func (h *Handler) WithJobTracker(tracker JobTracker) *Handler {
	h.jobs = tracker
	return h
}

// WithMetrics sets the Prometheus collectors.
func (h *Handler) WithMetrics(m *metrics.LeadMetrics) *Handler {
	h.metrics = m
	return h
}

// SearchResponse is the response for POST /api/search.
type SearchResponse struct {
	Leads []Lead `json:"leads"`
	Count int    `json:"count"`
	Shape Shape  `json:"shape,omitempty"`
	JobID string `json:"jobId,omitempty"`
}

// Search handles POST /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.ObserveSearch("invalid")
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		h.metrics.ObserveSearch("invalid")
		writeValidationError(w, err)
		return
	}

	if h.subscriptions != nil {
		sub := h.subscriptions.Resolve(r.Context(), user)
		if err := sub.CheckSearch(req.LeadCount, h.now()); err != nil {
			h.metrics.ObserveSearch("limited")
			h.logger.Info("search rejected by plan", "user_id", user.UID, "tier", sub.Tier, "error", err)
			respond.Error(w, err.Error(), limitStatus(err))
			return
		}
	}

	if !h.beginSearch(user.UID) {
		h.metrics.ObserveSearch("conflict")
		respond.Error(w, ErrSearchInProgress.Error(), http.StatusConflict)
		return
	}
	defer h.endSearch(user.UID)

	sc := req.Context()
	body, err := h.backend.StartSearch(r.Context(), user.Token, backend.SearchPayload{
		Industry:  req.Industry,
		Location:  sc.Location(),
		Radius:    req.Radius,
		LeadCount: req.LeadCount,
		Keywords:  req.Keywords,
	})
	if err != nil {
		h.metrics.ObserveSearch("backend_error")
		h.logger.Error("lead search failed", "user_id", user.UID, "error", err)
		writeBackendError(w, err)
		return
	}

	raw, err := decodeRaw(body)
	if err != nil {
		h.metrics.ObserveSearch("backend_error")
		h.logger.Error("lead search returned invalid json", "user_id", user.UID, "error", err)
		respond.Error(w, "invalid response from search backend", http.StatusBadGateway)
		return
	}

	jobID, ackOnly := jobReference(raw)
	if jobID != "" && h.jobs != nil {
		if err := h.jobs.Track(r.Context(), user.UID, jobID, sc); err != nil {
			h.logger.Warn("failed to track search job", "user_id", user.UID, "job_id", jobID, "error", err)
		}
	}
	if ackOnly {
		h.metrics.ObserveSearch("queued")
		h.logger.Info("lead search queued", "user_id", user.UID, "job_id", jobID)
		respond.JSON(w, http.StatusAccepted, SearchResponse{Leads: []Lead{}, JobID: jobID})
		return
	}

	env := Classify(raw)
	batch := env.Leads(sc, h.now())

	if err := h.sessions.Save(r.Context(), user.UID, batch); err != nil {
		h.metrics.ObserveSearch("store_error")
		h.logger.Error("failed to save pipeline", "user_id", user.UID, "error", err)
		respond.Error(w, "failed to save pipeline", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveSearch("ok")
	h.metrics.ObserveLeads(string(env.Shape), len(batch))
	h.logger.Info("lead search completed", "user_id", user.UID, "shape", env.Shape, "count", len(batch))
	respond.JSON(w, http.StatusOK, SearchResponse{Leads: batch, Count: len(batch), Shape: env.Shape, JobID: jobID})
}

// PipelineResponse is the response for GET /api/pipeline.
type PipelineResponse struct {
	Columns []Column      `json:"columns"`
	Counts  map[Stage]int `json:"counts"`
	Total   int           `json:"total"`
}

// Pipeline handles GET /api/pipeline.
func (h *Handler) Pipeline(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	batch, err := h.sessions.Load(r.Context(), user.UID)
	if err != nil {
		h.logger.Error("failed to load pipeline", "user_id", user.UID, "error", err)
		respond.Error(w, "failed to load pipeline", http.StatusInternalServerError)
		return
	}
	p := NewPipeline(batch)
	respond.JSON(w, http.StatusOK, PipelineResponse{
		Columns: p.ByStage(),
		Counts:  p.Counts(),
		Total:   p.Len(),
	})
}

type stageRequest struct {
	Stage string `json:"stage"`
}

// ChangeStage handles PATCH /api/leads/{leadID}/stage. The change is
// recorded upstream first; if that fails the local batch is left untouched.
func (h *Handler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	leadID := chi.URLParam(r, "leadID")

	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	stage, err := ParseStage(req.Stage)
	if err != nil {
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The upstream call runs inside the update so the saved batch is the one loaded.
	var updated Lead
	var upstreamErr error
	err = h.sessions.Update(r.Context(), user.UID, func(batch []Lead) ([]Lead, error) {
		p := NewPipeline(batch)
		if _, found := p.Get(leadID); !found {
			return nil, ErrLeadNotFound
		}
		if h.backend != nil {
			err := h.backend.UpdateLeadStage(r.Context(), user.Token, backend.StageUpdate{LeadID: leadID, Stage: string(stage)})
			if err != nil && !errors.Is(err, backend.ErrNotConfigured) {
				upstreamErr = err
				return nil, err
			}
		}
		lead, err := p.SetStage(leadID, stage)
		if err != nil {
			return nil, err
		}
		updated = lead
		return p.Leads(), nil
	})
	switch {
	case err == nil:
	case upstreamErr != nil:
		h.logger.Error("failed to record stage change", "user_id", user.UID, "lead_id", leadID, "error", upstreamErr)
		writeBackendError(w, upstreamErr)
		return
	case errors.Is(err, ErrLeadNotFound):
		respond.Error(w, ErrLeadNotFound.Error(), http.StatusNotFound)
		return
	default:
		h.logger.Error("failed to update pipeline", "user_id", user.UID, "lead_id", leadID, "error", err)
		respond.Error(w, "failed to update pipeline", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveStageChange(string(stage))
	h.logger.Info("lead stage changed", "user_id", user.UID, "lead_id", leadID, "stage", stage)
	respond.JSON(w, http.StatusOK, updated)
}

// Export handles GET /api/pipeline/export?format=csv|xlsx.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	format, err := ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		respond.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	batch, err := h.sessions.Load(r.Context(), user.UID)
	if err != nil {
		h.logger.Error("failed to load pipeline", "user_id", user.UID, "error", err)
		respond.Error(w, "failed to load pipeline", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "microtix-leads."+string(format)))
	if err := Export(w, format, batch); err != nil {
		h.logger.Error("failed to export pipeline", "user_id", user.UID, "format", format, "error", err)
	}
}

// Reset handles DELETE /api/pipeline.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.sessions.Clear(r.Context(), user.UID); err != nil {
		h.logger.Error("failed to clear pipeline", "user_id", user.UID, "error", err)
		respond.Error(w, "failed to clear pipeline", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) beginSearch(userID string) bool {
	h.inflightMu.Lock()
	defer h.inflightMu.Unlock()
	if _, busy := h.inflight[userID]; busy {
		return false
	}
	h.inflight[userID] = struct{}{}
	return true
}

func (h *Handler) endSearch(userID string) {
	h.inflightMu.Lock()
	delete(h.inflight, userID)
	h.inflightMu.Unlock()
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
		return
	}
	respond.Error(w, err.Error(), http.StatusBadRequest)
}

func limitStatus(err error) int {
	switch {
	case errors.Is(err, subscription.ErrNoActivePlan):
		return http.StatusPaymentRequired
	case errors.Is(err, subscription.ErrActiveJobLimit):
		return http.StatusTooManyRequests
	default:
		return http.StatusForbidden
	}
}

func writeBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrUnauthenticated):
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, backend.ErrNotConfigured):
		respond.Error(w, "search backend is not configured", http.StatusServiceUnavailable)
	case errors.Is(err, backend.ErrEmptyResponse):
		respond.Error(w, "empty response from search backend", http.StatusBadGateway)
	case errors.Is(err, backend.ErrInvalidJSON):
		respond.Error(w, "invalid response from search backend", http.StatusBadGateway)
	default:
		respond.Error(w, "search backend unavailable", http.StatusBadGateway)
	}
}
