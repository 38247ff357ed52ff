package model

import "time"

// Metadata keys used to classify provider products.
const (
	MetadataTier    = "tier"
	MetadataBilling = "billing"
)

// Product is the local read-only view of a payment provider product.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"createdAt"`
	Prices      []Price           `json:"prices,omitempty"`
}

// Tag returns the product's classification tag. The tier key wins over the
// billing key; products with neither are untagged.
func (p *Product) Tag() string {
	if p.Metadata == nil {
		return ""
	}
	if tier := p.Metadata[MetadataTier]; tier != "" {
		return tier
	}
	return p.Metadata[MetadataBilling]
}

// MatchesPlan reports whether either classification key equals plan.
func (p *Product) MatchesPlan(plan string) bool {
	if plan == "" || p.Metadata == nil {
		return false
	}
	return p.Metadata[MetadataTier] == plan || p.Metadata[MetadataBilling] == plan
}

// Price is the local read-only view of a provider price. UnitAmount is in
// minor units of Currency.
type Price struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"productId"`
	UnitAmount        int64     `json:"unitAmount"`
	Currency          string    `json:"currency"`
	RecurringInterval string    `json:"recurringInterval,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
}
