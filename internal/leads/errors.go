package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead id is not part of the session batch
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidStage is returned for a stage outside the pipeline columns
	ErrInvalidStage = errors.New("invalid stage")

	// ErrSearchInProgress is returned when the user already has a search in flight
	ErrSearchInProgress = errors.New("a search is already in progress")

	// ErrUnsupportedFormat is returned for unknown export formats
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
