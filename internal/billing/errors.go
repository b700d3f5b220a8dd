package billing

import "errors"

var (
	// ErrPriceNotConfigured is returned when the tier has no Stripe price id
	ErrPriceNotConfigured = errors.New("price not configured for tier")
)
