package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/envis/envis/internal/model"
)

// fakeProvider is an in-memory Provider for seeding tests.
type fakeProvider struct {
	products []model.Product
	prices   []model.Price
	archived []string
	seq      int
}

func (f *fakeProvider) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%d", prefix, f.seq)
}

func (f *fakeProvider) ListProducts(context.Context) ([]model.Product, error) {
	return append([]model.Product(nil), f.products...), nil
}

func (f *fakeProvider) ListPrices(_ context.Context, productID string) ([]model.Price, error) {
	var out []model.Price
	for _, p := range f.prices {
		if productID == "" || p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	id := f.nextID("cs")
	return &CheckoutSession{ID: id, URL: "https://checkout.example/" + id}, nil
}

func (f *fakeProvider) CreateProduct(_ context.Context, spec ProductSpec) (*model.Product, error) {
	p := model.Product{
		ID:        f.nextID("prod"),
		Name:      spec.Name,
		Metadata:  spec.Metadata,
		Active:    true,
		CreatedAt: time.Now(),
	}
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeProvider) CreatePrice(_ context.Context, productID string, spec PriceSpec) (*model.Price, error) {
	p := model.Price{
		ID:                f.nextID("price"),
		ProductID:         productID,
		UnitAmount:        spec.UnitAmount,
		Currency:          spec.Currency,
		RecurringInterval: spec.Interval,
		Active:            true,
	}
	f.prices = append(f.prices, p)
	return &p, nil
}

func (f *fakeProvider) ArchivePrice(_ context.Context, priceID string) error {
	for i := range f.prices {
		if f.prices[i].ID == priceID {
			f.prices[i].Active = false
		}
	}
	f.archived = append(f.archived, priceID)
	return nil
}
