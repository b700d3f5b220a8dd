package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned before any network call when no ID token is available
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrNotConfigured is returned when the webhook for an operation has no URL
	ErrNotConfigured = errors.New("webhook url not configured")

	// ErrEmptyResponse is returned when a 2xx response has an empty body
	ErrEmptyResponse = errors.New("empty response")

	// ErrInvalidJSON is returned when a 2xx response body is not JSON
	ErrInvalidJSON = errors.New("invalid json response")

	// ErrMissingURL is returned when a checkout or portal response has no url
	ErrMissingURL = errors.New("response missing url")
)

// HTTPError reports a non-2xx status or a transport failure for one operation.
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend: %s: %d %s", e.Op, e.StatusCode, e.Status)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
