package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/envis/envis/internal/model"
)

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	PriceID string `json:"priceId" validate:"required_without=PlanID,max=255"`
	PlanID  string `json:"planId" validate:"required_without=PriceID,max=64"`
}

// CheckoutResponse carries the hosted checkout URL.
type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// StripeConfigResponse exposes the publishable key to the client.
type StripeConfigResponse struct {
	PublishableKey string `json:"publishableKey"`
}

// Recurring describes a price's billing period.
type Recurring struct {
	Interval string `json:"interval"`
}

// PriceResponse is one price in the product listing. UnitAmount is in
// minor units; Amount is the same value in major units.
type PriceResponse struct {
	ID         string     `json:"id"`
	UnitAmount int64      `json:"unit_amount"`
	Currency   string     `json:"currency"`
	Recurring  *Recurring `json:"recurring"`
	Amount     string     `json:"amount"`
	Display    string     `json:"display"`
}

// ProductResponse is one product in the listing.
type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	Tag         string            `json:"tag"`
	Prices      []PriceResponse   `json:"prices"`
}

// ProductListResponse is the body of GET /api/products.
type ProductListResponse struct {
	Data []ProductResponse `json:"data"`
}

// zeroDecimalCurrencies are charged in whole units by Stripe.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

var currencySymbols = map[string]string{
	"gbp": "£",
	"usd": "$",
	"eur": "€",
	"jpy": "¥",
}

// FormatAmount converts a minor-unit amount to a major-unit decimal string
// and a display string, e.g. (1999, "gbp") -> "19.99", "£19.99".
func FormatAmount(unitAmount int64, currency string) (amount, display string) {
	currency = strings.ToLower(currency)
	places := int32(2)
	if zeroDecimalCurrencies[currency] {
		places = 0
	}

	amount = decimal.New(unitAmount, -places).StringFixed(places)
	if symbol, ok := currencySymbols[currency]; ok {
		return amount, symbol + amount
	}
	return amount, amount + " " + strings.ToUpper(currency)
}

// ToProductListResponse converts the arranged catalog.
func ToProductListResponse(products []model.Product) *ProductListResponse {
	data := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		prices := make([]PriceResponse, 0, len(p.Prices))
		for _, pr := range p.Prices {
			amount, display := FormatAmount(pr.UnitAmount, pr.Currency)
			var recurring *Recurring
			if pr.RecurringInterval != "" {
				recurring = &Recurring{Interval: pr.RecurringInterval}
			}
			prices = append(prices, PriceResponse{
				ID:         pr.ID,
				UnitAmount: pr.UnitAmount,
				Currency:   pr.Currency,
				Recurring:  recurring,
				Amount:     amount,
				Display:    display,
			})
		}
		metadata := p.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		data = append(data, ProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Metadata:    metadata,
			Tag:         p.Tag(),
			Prices:      prices,
		})
	}
	return &ProductListResponse{Data: data}
}
