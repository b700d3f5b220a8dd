package jobs

import "errors"

var (
	// ErrJobNotFound is returned when the job id is not tracked for the user
	ErrJobNotFound = errors.New("job not found")
)
