package payment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/envis/envis/internal/model"
)

// Plan is a subscription product the site sells. MetadataKey/PlanID is
// the classification that checkout plan identifiers resolve against.
type Plan struct {
	PlanID      string
	MetadataKey string
	Name        string
	Description string
	Price       PriceSpec
}

// DefaultPlans are the billing products checkout expects to find.
var DefaultPlans = []Plan{
	{
		PlanID:      "monthly",
		MetadataKey: model.MetadataBilling,
		Name:        "Envis Monthly Plan",
		Description: "Complete family financial coaching with all features. Billed monthly.",
		Price:       PriceSpec{UnitAmount: 1999, Currency: "gbp", Interval: "month"},
	},
	{
		PlanID:      "annual",
		MetadataKey: model.MetadataBilling,
		Name:        "Envis Annual Plan",
		Description: "Complete family financial coaching with all features. Billed annually - save 44%.",
		Price:       PriceSpec{UnitAmount: 13499, Currency: "gbp", Interval: "year"},
	},
	{
		PlanID:      "family",
		MetadataKey: model.MetadataTier,
		Name:        "Envis Family",
		Description: "Essential financial coaching for couples and families. Includes intelligent account categorisation, fairness tracking, and progress monitoring.",
		Price:       PriceSpec{UnitAmount: 999, Currency: "gbp", Interval: "month"},
	},
	{
		PlanID:      "family_plus",
		MetadataKey: model.MetadataTier,
		Name:        "Envis Family Plus",
		Description: "Complete financial coaching experience with all five proprietary modules. Includes values mediation and proactive coaching for deeper relationship alignment.",
		Price:       PriceSpec{UnitAmount: 1999, Currency: "gbp", Interval: "month"},
	},
}

// SeedResult reports what Seed did for one plan.
type SeedResult struct {
	PlanID         string
	ProductID      string
	PriceID        string
	ProductCreated bool
	PriceCreated   bool
	ArchivedPrices []string
}

// Seed makes sure every plan exists at the provider with an active price
// at the expected amount. Existing products are reused. When a product has
// no matching active price a new one is created and the product's other
// active prices are archived.
func Seed(ctx context.Context, provider Provider, plans []Plan) ([]SeedResult, error) {
	products, err := provider.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SeedResult, 0, len(plans))
	for _, plan := range plans {
		res, err := seedPlan(ctx, provider, products, plan)
		if err != nil {
			return results, fmt.Errorf("seed plan %q: %w", plan.PlanID, err)
		}
		slog.Info("plan_seeded",
			"plan", res.PlanID,
			"product_id", res.ProductID,
			"price_id", res.PriceID,
			"product_created", res.ProductCreated,
			"price_created", res.PriceCreated,
			"archived_prices", len(res.ArchivedPrices),
		)
		results = append(results, res)
	}
	return results, nil
}

func seedPlan(ctx context.Context, provider Provider, products []model.Product, plan Plan) (SeedResult, error) {
	res := SeedResult{PlanID: plan.PlanID}

	product := findPlanProduct(products, plan)
	if product == nil {
		created, err := provider.CreateProduct(ctx, ProductSpec{
			Name:        plan.Name,
			Description: plan.Description,
			Metadata:    map[string]string{plan.MetadataKey: plan.PlanID},
		})
		if err != nil {
			return res, err
		}
		product = created
		res.ProductCreated = true
	}
	res.ProductID = product.ID

	var active []model.Price
	if !res.ProductCreated {
		prices, err := provider.ListPrices(ctx, product.ID)
		if err != nil {
			return res, err
		}
		for _, p := range prices {
			if p.Active {
				active = append(active, p)
			}
		}
	}

	for _, p := range active {
		if priceMatches(p, plan.Price) {
			res.PriceID = p.ID
			return res, nil
		}
	}

	price, err := provider.CreatePrice(ctx, product.ID, plan.Price)
	if err != nil {
		return res, err
	}
	res.PriceID = price.ID
	res.PriceCreated = true

	for _, old := range active {
		if err := provider.ArchivePrice(ctx, old.ID); err != nil {
			return res, err
		}
		res.ArchivedPrices = append(res.ArchivedPrices, old.ID)
	}

	return res, nil
}

// findPlanProduct returns the newest active product classified as plan.
func findPlanProduct(products []model.Product, plan Plan) *model.Product {
	var matches []model.Product
	for _, p := range products {
		if p.Active && p.Metadata[plan.MetadataKey] == plan.PlanID {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	return &matches[0]
}

func priceMatches(p model.Price, spec PriceSpec) bool {
	return p.UnitAmount == spec.UnitAmount &&
		p.Currency == spec.Currency &&
		p.RecurringInterval == spec.Interval
}
