package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/microtix/lead-platform/internal/backend"
	"github.com/microtix/lead-platform/internal/identity"
	"github.com/microtix/lead-platform/internal/subscription"
	"github.com/microtix/lead-platform/pkg/logging"
)

var tracer = otel.Tracer("microtix.internal.billing")

// Gateway is the billing webhook.
type Gateway interface {
	CreateCheckout(ctx context.Context, token string, req backend.CheckoutRequest) (string, error)
	BillingPortal(ctx context.Context, token string) (string, error)
}

// Config holds the Stripe price ids and redirect URLs.
type Config struct {
	Prices     subscription.PriceIDs
	SuccessURL string
	CancelURL  string
	DryRun     bool
}

// Service starts Stripe checkout and portal sessions through the billing
// webhook.
type Service struct {
	gateway Gateway
	cfg     Config
	logger  *logging.Logger
}

// NewService creates a billing service.
func NewService(gateway Gateway, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{gateway: gateway, cfg: cfg, logger: logger}
}

// Checkout returns the Stripe checkout URL for upgrading to tier.
func (s *Service) Checkout(ctx context.Context, user identity.User, tier subscription.Tier) (string, error) {
	ctx, span := tracer.Start(ctx, "billing.checkout")
	defer span.End()
	span.SetAttributes(attribute.String("microtix.tier", string(tier)))

	if _, err := subscription.PlanFor(tier, s.cfg.Prices); err != nil {
		return "", err
	}
	priceID := s.cfg.Prices.For(tier)
	if priceID == "" {
		return "", fmt.Errorf("billing: %s: %w", tier, ErrPriceNotConfigured)
	}

	if s.cfg.DryRun {
		fakeID := "cs_dryrun_" + uuid.New().String()[:8]
		s.logger.Info("billing dry run: skipping checkout session creation", "user_id", user.UID, "tier", tier)
		return fmt.Sprintf("https://checkout.stripe.com/dry-run/%s", fakeID), nil
	}

	url, err := s.gateway.CreateCheckout(ctx, user.Token, backend.CheckoutRequest{
		PriceID:    priceID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		return "", fmt.Errorf("billing: checkout: %w", err)
	}
	s.logger.Info("checkout session created", "user_id", user.UID, "tier", tier)
	return url, nil
}

// Portal returns the Stripe customer portal URL.
func (s *Service) Portal(ctx context.Context, user identity.User) (string, error) {
	ctx, span := tracer.Start(ctx, "billing.portal")
	defer span.End()

	if s.cfg.DryRun {
		fakeID := "bps_dryrun_" + uuid.New().String()[:8]
		s.logger.Info("billing dry run: skipping portal session creation", "user_id", user.UID)
		return fmt.Sprintf("https://billing.stripe.com/dry-run/%s", fakeID), nil
	}

	url, err := s.gateway.BillingPortal(ctx, user.Token)
	if err != nil {
		return "", fmt.Errorf("billing: portal: %w", err)
	}
	return url, nil
}
