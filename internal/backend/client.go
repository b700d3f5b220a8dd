package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/microtix/lead-platform/pkg/logging"
)

var tracer = otel.Tracer("microtix.internal.backend")

const maxErrorBody = 4 << 10

// Endpoints holds the webhook URL for each group of operations.
type Endpoints struct {
	Search  string
	Account string
	Billing string
	Admin   string
}

// LatencyObserver records the duration of each webhook round trip.
type LatencyObserver interface {
	ObserveBackendCall(op, status string, seconds float64)
}

// Client calls the workflow-automation webhooks. Every operation is a single
// POST to {base}?path={op}; nothing is retried.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
	logger     *logging.Logger
	observer   LatencyObserver
}

// NewClient creates a webhook client. A zero timeout means no client-side
// timeout beyond the request context.
func NewClient(endpoints Endpoints, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithHTTPClient overrides the HTTP client (for testing).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithObserver sets the latency observer.
func (c *Client) WithObserver(o LatencyObserver) *Client {
	c.observer = o
	return c
}

// StartSearch submits a lead search. The bearer is sent only when token is
// set; the workflow decides whether anonymous searches are allowed.
func (c *Client) StartSearch(ctx context.Context, token string, payload SearchPayload) (json.RawMessage, error) {
	if payload.Keywords == nil {
		payload.Keywords = []string{}
	}
	return c.call(ctx, c.endpoints.Search, "start", token, nil, payload)
}

// Account fetches the caller's subscription record.
func (c *Client) Account(ctx context.Context, token string) (json.RawMessage, error) {
	if token == "" {
		return nil, fmt.Errorf("backend: me: %w", ErrUnauthenticated)
	}
	return c.call(ctx, c.endpoints.Account, "me", token, nil, nil)
}

// JobStatus fetches the progress of a background search.
func (c *Client) JobStatus(ctx context.Context, token, jobID string) (*JobStatus, error) {
	if token == "" {
		return nil, fmt.Errorf("backend: status: %w", ErrUnauthenticated)
	}
	raw, err := c.call(ctx, c.endpoints.Search, "status", token, url.Values{"jobId": {jobID}}, nil)
	if err != nil {
		return nil, err
	}
	var status JobStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("backend: status: %w", ErrInvalidJSON)
	}
	if status.ID == "" {
		status.ID = jobID
	}
	return &status, nil
}

// JobResults fetches the leads produced by a background search.
func (c *Client) JobResults(ctx context.Context, token, jobID string) (json.RawMessage, error) {
	if token == "" {
		return nil, fmt.Errorf("backend: results: %w", ErrUnauthenticated)
	}
	return c.call(ctx, c.endpoints.Search, "results", token, url.Values{"jobId": {jobID}}, nil)
}

// RetryJob asks the workflow to rerun a failed search.
func (c *Client) RetryJob(ctx context.Context, token, jobID string) (json.RawMessage, error) {
	if token == "" {
		return nil, fmt.Errorf("backend: retry: %w", ErrUnauthenticated)
	}
	return c.call(ctx, c.endpoints.Search, "retry", token, url.Values{"jobId": {jobID}}, nil)
}

// UpdateLeadStage records a stage change upstream.
func (c *Client) UpdateLeadStage(ctx context.Context, token string, update StageUpdate) error {
	if token == "" {
		return fmt.Errorf("backend: update: %w", ErrUnauthenticated)
	}
	_, err := c.call(ctx, c.endpoints.Search, "update", token, nil, update)
	return err
}

// CreateCheckout creates a Stripe checkout session and returns its URL.
func (c *Client) CreateCheckout(ctx context.Context, token string, req CheckoutRequest) (string, error) {
	if token == "" {
		return "", fmt.Errorf("backend: checkout: %w", ErrUnauthenticated)
	}
	raw, err := c.call(ctx, c.endpoints.Billing, "checkout", token, nil, req)
	if err != nil {
		return "", err
	}
	return decodeURL("checkout", raw)
}

// BillingPortal returns the Stripe customer portal URL.
func (c *Client) BillingPortal(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("backend: portal: %w", ErrUnauthenticated)
	}
	raw, err := c.call(ctx, c.endpoints.Billing, "portal", token, nil, nil)
	if err != nil {
		return "", err
	}
	return decodeURL("portal", raw)
}

// AdminStats fetches the platform-wide statistics payload.
func (c *Client) AdminStats(ctx context.Context, token string) (json.RawMessage, error) {
	if token == "" {
		return nil, fmt.Errorf("backend: admin: %w", ErrUnauthenticated)
	}
	return c.call(ctx, c.endpoints.Admin, "admin", token, nil, nil)
}

func (c *Client) call(ctx context.Context, base, op, token string, query url.Values, body any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "backend."+op)
	defer span.End()
	span.SetAttributes(attribute.String("microtix.backend.op", op))

	start := time.Now()
	raw, statusLabel, err := c.do(ctx, base, op, token, query, body)
	c.observe(op, statusLabel, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("backend call failed", "op", op, "status", statusLabel, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("microtix.backend.status", statusLabel))
	return raw, nil
}

func (c *Client) do(ctx context.Context, base, op, token string, query url.Values, body any) (json.RawMessage, string, error) {
	if strings.TrimSpace(base) == "" {
		return nil, "unconfigured", fmt.Errorf("backend: %s: %w", op, ErrNotConfigured)
	}
	endpoint, err := buildURL(base, op, query)
	if err != nil {
		return nil, "error", fmt.Errorf("backend: %s: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, "error", fmt.Errorf("backend: %s: encode: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return nil, "error", fmt.Errorf("backend: %s: request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "error", &HTTPError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	statusLabel := strconv.Itoa(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusLabel, &HTTPError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       string(snippet),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, statusLabel, &HTTPError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, statusLabel, fmt.Errorf("backend: %s: %w", op, ErrEmptyResponse)
	}
	if !json.Valid(data) {
		return nil, statusLabel, fmt.Errorf("backend: %s: %w", op, ErrInvalidJSON)
	}
	return json.RawMessage(data), statusLabel, nil
}

func (c *Client) observe(op, status string, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendCall(op, status, elapsed.Seconds())
}

func buildURL(base, op string, query url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse webhook url: %w", err)
	}
	q := u.Query()
	q.Set("path", op)
	for key, values := range query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeURL(op string, raw json.RawMessage) (string, error) {
	var resp urlResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("backend: %s: %w", op, ErrInvalidJSON)
	}
	if strings.TrimSpace(resp.URL) == "" {
		return "", fmt.Errorf("backend: %s: %w", op, ErrMissingURL)
	}
	return resp.URL, nil
}
