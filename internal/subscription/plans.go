package subscription

import (
	"fmt"
	"strings"
)

// PriceIDs maps each tier to its Stripe price id.
type PriceIDs struct {
	Starter string
	Pro     string
	Premium string
}

// For returns the price id configured for tier.
func (p PriceIDs) For(tier Tier) string {
	switch tier {
	case TierStarter:
		return p.Starter
	case TierPro:
		return p.Pro
	case TierPremium:
		return p.Premium
	default:
		return ""
	}
}

// Plan is one row of the pricing table.
type Plan struct {
	Tier        Tier     `json:"tier"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	PriceID     string   `json:"priceId,omitempty"`
	LeadsPerRun int      `json:"leadsPerRun"`
	ActiveJobs  int      `json:"activeJobs"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular"`
}

// Limits returns the allowances the plan grants.
func (p Plan) Limits() Limits {
	features := make([]string, len(p.Features))
	copy(features, p.Features)
	return Limits{LeadsPerSearch: p.LeadsPerRun, ActiveJobs: p.ActiveJobs, Features: features}
}

// Plans returns the pricing table in display order.
func Plans(prices PriceIDs) []Plan {
	return []Plan{
		{
			Tier:        TierStarter,
			Name:        "Starter",
			Price:       29.99,
			PriceID:     prices.Starter,
			LeadsPerRun: 50,
			ActiveJobs:  1,
			Features: []string{
				"Basic email templates",
				"Standard enrichment",
				"Manual send",
				"Email support",
			},
		},
		{
			Tier:        TierPro,
			Name:        "Pro",
			Price:       99.99,
			PriceID:     prices.Pro,
			LeadsPerRun: 150,
			ActiveJobs:  3,
			Features: []string{
				"Bulk send campaigns",
				"Priority enrichment",
				"CSV export",
				"Advanced templates",
				"Priority support",
			},
			Popular: true,
		},
		{
			Tier:        TierPremium,
			Name:        "Premium",
			Price:       199.99,
			PriceID:     prices.Premium,
			LeadsPerRun: 300,
			ActiveJobs:  10,
			Features: []string{
				"Bulk send + sequencing",
				"Advanced enrichment",
				"Custom templates",
				"Priority support",
				"Dedicated success manager",
			},
		},
	}
}

// ParseTier accepts a tier name in any letter case.
func ParseTier(value string) (Tier, error) {
	switch t := Tier(strings.ToLower(strings.TrimSpace(value))); t {
	case TierStarter, TierPro, TierPremium:
		return t, nil
	default:
		return "", fmt.Errorf("subscription: %q: %w", value, ErrUnknownTier)
	}
}

// PlanFor returns the plan for tier.
func PlanFor(tier Tier, prices PriceIDs) (Plan, error) {
	for _, p := range Plans(prices) {
		if p.Tier == tier {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("subscription: %q: %w", tier, ErrUnknownTier)
}
