package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/envis/envis/internal/catalog"
	"github.com/envis/envis/internal/metrics"
	"github.com/envis/envis/internal/payment"
)

// Checkout errors.
var (
	ErrPaymentsNotConfigured = errors.New("payments not configured")
	ErrPriceRequired         = errors.New("priceId or planId is required")
)

// PlanNotFoundError reports a plan identifier with no matching price.
type PlanNotFoundError struct {
	PlanID string
}

func (e *PlanNotFoundError) Error() string {
	return fmt.Sprintf("plan %q not found", e.PlanID)
}

// PlanResolver maps plan identifiers to price IDs.
type PlanResolver interface {
	ResolvePlan(ctx context.Context, plan string) (string, error)
}

// CheckoutService opens hosted checkout sessions.
type CheckoutService struct {
	plans    PlanResolver
	provider payment.Provider
	metrics  metrics.Recorder
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(plans PlanResolver, provider payment.Provider, recorder metrics.Recorder) *CheckoutService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CheckoutService{plans: plans, provider: provider, metrics: recorder}
}

// CheckoutInput selects what to buy. PriceID wins over PlanID. BaseURL is
// the site origin the provider redirects back to.
type CheckoutInput struct {
	PriceID string
	PlanID  string
	BaseURL string
}

// CreateSession opens a subscription checkout for one unit of the chosen
// price.
func (s *CheckoutService) CreateSession(ctx context.Context, input CheckoutInput) (*payment.CheckoutSession, error) {
	if !payment.IsConfigured(s.provider) {
		return nil, ErrPaymentsNotConfigured
	}

	priceID := input.PriceID
	if priceID == "" {
		if input.PlanID == "" {
			return nil, ErrPriceRequired
		}
		resolved, err := s.plans.ResolvePlan(ctx, input.PlanID)
		if err != nil {
			if errors.Is(err, catalog.ErrPlanNotFound) {
				return nil, &PlanNotFoundError{PlanID: input.PlanID}
			}
			return nil, fmt.Errorf("failed to resolve plan: %w", err)
		}
		priceID = resolved
	}

	base := strings.TrimSuffix(input.BaseURL, "/")
	session, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		PriceID:    priceID,
		Quantity:   1,
		Mode:       payment.ModeSubscription,
		SuccessURL: base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/pricing",
	})
	if err != nil {
		s.metrics.IncCheckoutSession(metrics.StatusFailed)
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, ErrPaymentsNotConfigured
		}
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.metrics.IncCheckoutSession(metrics.StatusSuccess)
	return session, nil
}
