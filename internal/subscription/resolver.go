package subscription

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/microtix/lead-platform/internal/identity"
	"github.com/microtix/lead-platform/pkg/logging"
)

// AccountFetcher returns the raw account record for the caller's token.
type AccountFetcher interface {
	Account(ctx context.Context, token string) (json.RawMessage, error)
}

// Fallback builds the subscription used when the account webhook cannot
// answer: unlimited premium for admins, a basic pro plan for everyone else.
func Fallback(user identity.User) Subscription {
	if user.IsAdmin {
		return Subscription{
			Active: true,
			Status: StatusActive,
			Tier:   TierPremium,
			Limits: Limits{
				LeadsPerSearch: 1000,
				ActiveJobs:     1000,
				Features:       []string{FeatureAdmin},
			},
			IsAdmin:       true,
			CustomerEmail: user.Email,
		}
	}
	return Subscription{
		Active: true,
		Status: StatusActive,
		Tier:   TierPro,
		Limits: Limits{
			LeadsPerSearch: 100,
			ActiveJobs:     5,
			Features:       []string{},
		},
		CustomerEmail: user.Email,
	}
}

// Resolver loads the caller's subscription from the account webhook and
// falls back to Fallback on any error.
type Resolver struct {
	accounts AccountFetcher
	logger   *logging.Logger
}

// NewResolver creates a resolver. A nil fetcher always uses the fallback.
func NewResolver(accounts AccountFetcher, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{accounts: accounts, logger: logger}
}

// Resolve returns the caller's subscription. The admin flag always comes from
// the verified token, never from the webhook payload.
func (r *Resolver) Resolve(ctx context.Context, user identity.User) Subscription {
	if r.accounts == nil {
		return Fallback(user)
	}
	sub, err := r.fetch(ctx, user)
	if err != nil {
		r.logger.Warn("account lookup failed, using fallback subscription", "user_id", user.UID, "error", err)
		return Fallback(user)
	}
	return sub
}

func (r *Resolver) fetch(ctx context.Context, user identity.User) (Subscription, error) {
	raw, err := r.accounts.Account(ctx, user.Token)
	if err != nil {
		return Subscription{}, err
	}
	var sub Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return Subscription{}, fmt.Errorf("subscription: decode account: %w", err)
	}
	if sub.Tier == "" {
		return Subscription{}, fmt.Errorf("subscription: account record missing tier")
	}
	sub.IsAdmin = user.IsAdmin
	if sub.IsAdmin && !sub.HasFeature(FeatureAdmin) {
		sub.Limits.Features = append(sub.Limits.Features, FeatureAdmin)
	}
	if sub.Limits.Features == nil {
		sub.Limits.Features = []string{}
	}
	if sub.CustomerEmail == "" {
		sub.CustomerEmail = user.Email
	}
	return sub, nil
}
