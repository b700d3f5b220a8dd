package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/microtix/lead-platform/internal/backend"
	"github.com/microtix/lead-platform/internal/http/respond"
	"github.com/microtix/lead-platform/internal/identity"
	"github.com/microtix/lead-platform/internal/leads"
	"github.com/microtix/lead-platform/pkg/logging"
)

// Backend is the subset of the webhook client the job endpoints use.
type Backend interface {
	JobStatus(ctx context.Context, token, jobID string) (*backend.JobStatus, error)
	JobResults(ctx context.Context, token, jobID string) (json.RawMessage, error)
	RetryJob(ctx context.Context, token, jobID string) (json.RawMessage, error)
}

// Handler serves the background job endpoints.
type Handler struct {
	store    Store
	backend  Backend
	sessions *leads.Sessions
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a jobs handler. sessions may be nil, in which case
// results are never adopted into the pipeline. Adopted batches are written
// through sessions, so pass the *leads.Sessions the leads handler uses.
func NewHandler(store Store, b Backend, sessions leads.SessionStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{store: store, backend: b, logger: logger, now: time.Now}
	if sessions != nil {
		h.sessions = leads.NewSessions(sessions)
	}
	return h
}

// List handles GET /api/jobs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	jobs, err := h.store.List(r.Context(), user.UID)
	if err != nil {
		h.logger.Error("failed to list jobs", "user_id", user.UID, "error", err)
		respond.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// Status handles GET /api/jobs/{jobID}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	user, job, ok := h.trackedJob(w, r)
	if !ok {
		return
	}
	status, err := h.backend.JobStatus(r.Context(), user.Token, job.ID)
	if err != nil {
		h.writeBackendError(w, "status", user, err)
		return
	}
	respond.JSON(w, http.StatusOK, status)
}

// ResultsResponse is the response for GET /api/jobs/{jobID}/results.
type ResultsResponse struct {
	JobID   string       `json:"jobId"`
	Leads   []leads.Lead `json:"leads"`
	Count   int          `json:"count"`
	Shape   leads.Shape  `json:"shape"`
	Adopted bool         `json:"adopted"`
}

// Results handles GET /api/jobs/{jobID}/results. With ?adopt=1 the mapped
// leads replace the user's pipeline batch.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	user, job, ok := h.trackedJob(w, r)
	if !ok {
		return
	}
	raw, err := h.backend.JobResults(r.Context(), user.Token, job.ID)
	if err != nil {
		h.writeBackendError(w, "results", user, err)
		return
	}
	env, err := leads.Decode(raw)
	if err != nil {
		h.logger.Error("failed to decode job results", "job_id", job.ID, "error", err)
		respond.Error(w, "invalid job results", http.StatusBadGateway)
		return
	}
	batch := env.Leads(job.Search, h.now())

	adopt, _ := strconv.ParseBool(r.URL.Query().Get("adopt"))
	adopted := false
	if adopt && h.sessions != nil {
		if err := h.sessions.Save(r.Context(), user.UID, batch); err != nil {
			h.logger.Error("failed to adopt job results", "job_id", job.ID, "user_id", user.UID, "error", err)
			respond.Error(w, "failed to save pipeline", http.StatusInternalServerError)
			return
		}
		adopted = true
	}

	respond.JSON(w, http.StatusOK, ResultsResponse{
		JobID:   job.ID,
		Leads:   batch,
		Count:   len(batch),
		Shape:   env.Shape,
		Adopted: adopted,
	})
}

// Retry handles POST /api/jobs/{jobID}/retry. A retry answered with a new
// job id is tracked alongside the original.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	user, job, ok := h.trackedJob(w, r)
	if !ok {
		return
	}
	raw, err := h.backend.RetryJob(r.Context(), user.Token, job.ID)
	if err != nil {
		h.writeBackendError(w, "retry", user, err)
		return
	}

	var ack struct {
		JobID string `json:"jobId"`
	}
	if json.Unmarshal(raw, &ack) == nil && ack.JobID != "" && ack.JobID != job.ID {
		next := Job{ID: ack.JobID, Search: job.Search, CreatedAt: h.now().UTC()}
		if err := h.store.Add(r.Context(), user.UID, next); err != nil {
			h.logger.Warn("failed to track retried job", "job_id", ack.JobID, "error", err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write(raw)
}

// Remove handles DELETE /api/jobs/{jobID}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	jobID := chi.URLParam(r, "jobID")
	if err := h.store.Remove(r.Context(), user.UID, jobID); err != nil {
		h.logger.Error("failed to remove job", "job_id", jobID, "error", err)
		respond.Error(w, "failed to remove job", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) trackedJob(w http.ResponseWriter, r *http.Request) (identity.User, Job, bool) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
		return identity.User{}, Job{}, false
	}
	jobID := chi.URLParam(r, "jobID")
	job, err := h.store.Get(r.Context(), user.UID, jobID)
	if errors.Is(err, ErrJobNotFound) {
		respond.Error(w, "job not found", http.StatusNotFound)
		return identity.User{}, Job{}, false
	}
	if err != nil {
		h.logger.Error("failed to load job", "job_id", jobID, "error", err)
		respond.Error(w, "failed to load job", http.StatusInternalServerError)
		return identity.User{}, Job{}, false
	}
	return user, job, true
}

func (h *Handler) writeBackendError(w http.ResponseWriter, op string, user identity.User, err error) {
	switch {
	case errors.Is(err, backend.ErrUnauthenticated):
		respond.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, backend.ErrNotConfigured):
		respond.Error(w, "search backend is not configured", http.StatusServiceUnavailable)
	default:
		h.logger.Error("job backend call failed", "op", op, "user_id", user.UID, "error", err)
		respond.Error(w, "search backend unavailable", http.StatusBadGateway)
	}
}
