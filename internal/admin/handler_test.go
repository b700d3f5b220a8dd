package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microtix/lead-platform/internal/backend"
	"github.com/microtix/lead-platform/internal/identity"
)

type stubStats struct {
	raw   json.RawMessage
	err   error
	token string
}

func (s *stubStats) AdminStats(ctx context.Context, token string) (json.RawMessage, error) {
	s.token = token
	return s.raw, s.err
}

func adminRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	return req.WithContext(identity.WithUser(req.Context(), identity.User{UID: "admin-1", IsAdmin: true, Token: "tok"}))
}

func TestStats_Success(t *testing.T) {
	stub := &stubStats{raw: json.RawMessage(`{
		"totalUsers": 42,
		"activeSubscriptions": 30,
		"totalRevenue": 2999.7,
		"searchesThisMonth": 120,
		"leadsGenerated": 6000,
		"recentActivity": [{"id":"a1","type":"search","user":"x@y.z","timestamp":"2024-05-01T00:00:00Z","details":"Restaurants in Austin"}],
		"systemHealth": {"n8nStatus":"healthy","stripeStatus":"degraded","lastHealthCheck":"2024-05-01T00:00:00Z"},
		"tierDistribution": {"starter": 10, "pro": 15, "premium": 5}
	}`)}
	rec := httptest.NewRecorder()
	NewHandler(stub, nil).Stats(rec, adminRequest())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", stub.token)

	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 42, stats.TotalUsers)
	assert.InDelta(t, 2999.7, stats.TotalRevenue, 0.001)
	require.Len(t, stats.RecentActivity, 1)
	assert.Equal(t, "search", stats.RecentActivity[0].Type)
	assert.Equal(t, HealthDegraded, stats.SystemHealth.StripeStatus)
	assert.Equal(t, 15, stats.TierDistribution.Pro)
}

func TestStats_Errors(t *testing.T) {
	tests := []struct {
		name   string
		stub   *stubStats
		status int
	}{
		{"webhook failure", &stubStats{err: &backend.HTTPError{Op: "admin", StatusCode: 500}}, http.StatusBadGateway},
		{"not configured", &stubStats{err: backend.ErrNotConfigured}, http.StatusServiceUnavailable},
		{"bad payload", &stubStats{raw: json.RawMessage(`[1,2]`)}, http.StatusBadGateway},
		{"other error", &stubStats{err: errors.New("boom")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(tt.stub, nil).Stats(rec, adminRequest())
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestStats_Unauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(&stubStats{}, nil).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
