package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/envis/envis/internal/model"
)

// Stripe implements Provider against the Stripe API.
type Stripe struct {
	api *client.API
}

// NewStripe returns a Stripe provider authenticated with secretKey.
func NewStripe(secretKey string) (*Stripe, error) {
	if secretKey == "" {
		return nil, ErrNotConfigured
	}
	return &Stripe{api: client.New(secretKey, nil)}, nil
}

// ListProducts implements Provider.
func (s *Stripe) ListProducts(ctx context.Context) ([]model.Product, error) {
	params := &stripe.ProductListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	var out []model.Product
	it := s.api.Products.List(params)
	for it.Next() {
		out = append(out, productFromStripe(it.Product()))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list products: %w", err)
	}
	return out, nil
}

// ListPrices implements Provider.
func (s *Stripe) ListPrices(ctx context.Context, productID string) ([]model.Price, error) {
	params := &stripe.PriceListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	if productID != "" {
		params.Product = stripe.String(productID)
	}

	var out []model.Price
	it := s.api.Prices.List(params)
	for it.Next() {
		out = append(out, priceFromStripe(it.Price()))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list prices: %w", err)
	}
	return out, nil
}

// CreateCheckoutSession implements Provider.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := checkoutParams(req)
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// CreateProduct implements Provider.
func (s *Stripe) CreateProduct(ctx context.Context, spec ProductSpec) (*model.Product, error) {
	params := &stripe.ProductParams{
		Name:        stripe.String(spec.Name),
		Description: stripe.String(spec.Description),
	}
	params.Context = ctx
	for k, v := range spec.Metadata {
		params.AddMetadata(k, v)
	}

	p, err := s.api.Products.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create product: %w", err)
	}
	product := productFromStripe(p)
	return &product, nil
}

// CreatePrice implements Provider.
func (s *Stripe) CreatePrice(ctx context.Context, productID string, spec PriceSpec) (*model.Price, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(spec.UnitAmount),
		Currency:   stripe.String(spec.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(spec.Interval),
		},
	}
	params.Context = ctx

	p, err := s.api.Prices.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create price: %w", err)
	}
	price := priceFromStripe(p)
	return &price, nil
}

// ArchivePrice implements Provider.
func (s *Stripe) ArchivePrice(ctx context.Context, priceID string) error {
	params := &stripe.PriceParams{Active: stripe.Bool(false)}
	params.Context = ctx

	if _, err := s.api.Prices.Update(priceID, params); err != nil {
		return fmt.Errorf("stripe: archive price %s: %w", priceID, err)
	}
	return nil
}

func checkoutParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeSubscription
	}

	return &stripe.CheckoutSessionParams{
		Mode: stripe.String(mode),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(quantity),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
}

func productFromStripe(p *stripe.Product) model.Product {
	metadata := make(map[string]string, len(p.Metadata))
	for k, v := range p.Metadata {
		metadata[k] = v
	}
	return model.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Metadata:    metadata,
		Active:      p.Active,
		CreatedAt:   time.Unix(p.Created, 0).UTC(),
	}
}

func priceFromStripe(p *stripe.Price) model.Price {
	price := model.Price{
		ID:         p.ID,
		UnitAmount: p.UnitAmount,
		Currency:   string(p.Currency),
		Active:     p.Active,
		CreatedAt:  time.Unix(p.Created, 0).UTC(),
	}
	if p.Product != nil {
		price.ProductID = p.Product.ID
	}
	if p.Recurring != nil {
		price.RecurringInterval = string(p.Recurring.Interval)
	}
	return price
}
