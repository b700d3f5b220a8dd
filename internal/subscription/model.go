package subscription

import (
	"fmt"
	"time"
)

// Tier is a paid plan level.
type Tier string

const (
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// Status mirrors the Stripe subscription status.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusUnpaid   Status = "unpaid"
)

// FeatureAdmin marks the admin fallback subscription.
const FeatureAdmin = "admin"

// Limits are the per-tier allowances.
type Limits struct {
	LeadsPerSearch int      `json:"leadsPerSearch"`
	ActiveJobs     int      `json:"activeJobs"`
	Features       []string `json:"features"`
}

// Usage is the account's consumption in the current period.
type Usage struct {
	ActiveJobs        int `json:"activeJobs"`
	SearchesThisMonth int `json:"searchesThisMonth"`
	LeadsThisMonth    int `json:"leadsThisMonth"`
}

// Subscription is the account record returned by the account webhook.
type Subscription struct {
	Active        bool       `json:"active"`
	Status        Status     `json:"status"`
	TrialEndsAt   *time.Time `json:"trialEndsAt,omitempty"`
	Tier          Tier       `json:"tier"`
	Limits        Limits     `json:"limits"`
	Usage         Usage      `json:"usage"`
	IsAdmin       bool       `json:"isAdmin"`
	CustomerEmail string     `json:"customerEmail"`
}

// TrialActive reports whether a trial end is set and still in the future.
func (s Subscription) TrialActive(now time.Time) bool {
	return s.TrialEndsAt != nil && s.TrialEndsAt.After(now)
}

// TrialRemaining renders the countdown shown in the trial banner: whole hours
// and minutes left, or "Expired". It is empty when no trial is set.
func (s Subscription) TrialRemaining(now time.Time) string {
	if s.TrialEndsAt == nil {
		return ""
	}
	left := s.TrialEndsAt.Sub(now)
	if left <= 0 {
		return "Expired"
	}
	hours := int(left / time.Hour)
	minutes := int((left % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// HasFeature reports whether the plan lists feature.
func (s Subscription) HasFeature(feature string) bool {
	for _, f := range s.Limits.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// CheckSearch reports whether a search for leadCount leads may start now.
// Admins are never limited. A zero limit means unlimited.
func (s Subscription) CheckSearch(leadCount int, now time.Time) error {
	if s.IsAdmin {
		return nil
	}
	if !s.Active && !s.TrialActive(now) {
		return ErrNoActivePlan
	}
	if s.Limits.ActiveJobs > 0 && s.Usage.ActiveJobs >= s.Limits.ActiveJobs {
		return fmt.Errorf("subscription: %d of %d jobs running: %w", s.Usage.ActiveJobs, s.Limits.ActiveJobs, ErrActiveJobLimit)
	}
	if s.Limits.LeadsPerSearch > 0 && leadCount > s.Limits.LeadsPerSearch {
		return fmt.Errorf("subscription: %d requested, %d allowed: %w", leadCount, s.Limits.LeadsPerSearch, ErrLeadCountExceeded)
	}
	return nil
}
