// Package payment defines the payment provider port used by the catalog,
// checkout and seeding code, together with its Stripe implementation.
package payment

import (
	"context"
	"errors"

	"github.com/envis/envis/internal/model"
)

// ErrNotConfigured is returned when no provider credentials are set.
var ErrNotConfigured = errors.New("payment provider not configured")

// Checkout session modes.
const (
	ModeSubscription = "subscription"
)

// CheckoutRequest describes a hosted checkout session.
type CheckoutRequest struct {
	PriceID    string
	Quantity   int64
	Mode       string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the provider's answer to a CheckoutRequest.
type CheckoutSession struct {
	ID  string
	URL string
}

// ProductSpec describes a product to create at the provider.
type ProductSpec struct {
	Name        string
	Description string
	Metadata    map[string]string
}

// PriceSpec describes a recurring price to create at the provider.
type PriceSpec struct {
	UnitAmount int64
	Currency   string
	Interval   string
}

// Provider is the payment provider surface the application depends on.
type Provider interface {
	// ListProducts returns every product, active or not.
	ListProducts(ctx context.Context) ([]model.Product, error)
	// ListPrices returns every price, active or not. When productID is set
	// only that product's prices are returned.
	ListPrices(ctx context.Context, productID string) ([]model.Price, error)

	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	CreateProduct(ctx context.Context, spec ProductSpec) (*model.Product, error)
	CreatePrice(ctx context.Context, productID string, spec PriceSpec) (*model.Price, error)
	ArchivePrice(ctx context.Context, priceID string) error
}

// Unconfigured is a Provider used when no secret key is set. Every call
// fails with ErrNotConfigured.
type Unconfigured struct{}

// ListProducts implements Provider.
func (Unconfigured) ListProducts(context.Context) ([]model.Product, error) {
	return nil, ErrNotConfigured
}

// ListPrices implements Provider.
func (Unconfigured) ListPrices(context.Context, string) ([]model.Price, error) {
	return nil, ErrNotConfigured
}

// CreateCheckoutSession implements Provider.
func (Unconfigured) CreateCheckoutSession(context.Context, CheckoutRequest) (*CheckoutSession, error) {
	return nil, ErrNotConfigured
}

// CreateProduct implements Provider.
func (Unconfigured) CreateProduct(context.Context, ProductSpec) (*model.Product, error) {
	return nil, ErrNotConfigured
}

// CreatePrice implements Provider.
func (Unconfigured) CreatePrice(context.Context, string, PriceSpec) (*model.Price, error) {
	return nil, ErrNotConfigured
}

// ArchivePrice implements Provider.
func (Unconfigured) ArchivePrice(context.Context, string) error {
	return ErrNotConfigured
}

// IsConfigured reports whether p can reach a real provider.
func IsConfigured(p Provider) bool {
	if p == nil {
		return false
	}
	_, unconfigured := p.(Unconfigured)
	return !unconfigured
}
