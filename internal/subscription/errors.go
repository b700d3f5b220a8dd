package subscription

import "errors"

var (
	// ErrNoActivePlan is returned when the account has neither an active plan nor a running trial
	ErrNoActivePlan = errors.New("no active subscription")

	// ErrActiveJobLimit is returned when the account already runs its maximum concurrent searches
	ErrActiveJobLimit = errors.New("active job limit reached")

	// ErrLeadCountExceeded is returned when a search asks for more leads than the tier allows
	ErrLeadCountExceeded = errors.New("lead count exceeds plan limit")

	// ErrUnknownTier is returned for a tier outside starter, pro and premium
	ErrUnknownTier = errors.New("unknown tier")
)
