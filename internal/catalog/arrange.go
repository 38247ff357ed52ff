package catalog

import (
	"sort"

	"github.com/envis/envis/internal/model"
)

// Arrange turns mirrored products into the public catalog: untagged
// products are dropped, only the newest product per tag is kept, prices are
// sorted ascending and products are ordered by their lowest price. A newest
// product without prices hides its tag; older products never stand in.
func Arrange(products []model.Product) []model.Product {
	newest := make(map[string]model.Product)
	for _, p := range products {
		tag := p.Tag()
		if tag == "" || !p.Active {
			continue
		}
		if cur, ok := newest[tag]; !ok || p.CreatedAt.After(cur.CreatedAt) {
			newest[tag] = p
		}
	}

	out := make([]model.Product, 0, len(newest))
	for _, p := range newest {
		if len(p.Prices) == 0 {
			continue
		}
		prices := append([]model.Price(nil), p.Prices...)
		sort.SliceStable(prices, func(i, j int) bool { return prices[i].UnitAmount < prices[j].UnitAmount })
		p.Prices = prices
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Prices[0].UnitAmount, out[j].Prices[0].UnitAmount
		if a != b {
			return a < b
		}
		return out[i].Tag() < out[j].Tag()
	})
	return out
}

// findPlanPrice returns the lowest active price of the newest product whose
// tier or billing classification equals plan. It misses when that product
// has no active price.
func findPlanPrice(products []model.Product, plan string) (model.Price, bool) {
	var match *model.Product
	for i := range products {
		p := &products[i]
		if !p.Active || !p.MatchesPlan(plan) {
			continue
		}
		if match == nil || p.CreatedAt.After(match.CreatedAt) {
			match = p
		}
	}
	if match == nil || len(match.Prices) == 0 {
		return model.Price{}, false
	}

	best := match.Prices[0]
	for _, pr := range match.Prices[1:] {
		if pr.UnitAmount < best.UnitAmount {
			best = pr
		}
	}
	return best, true
}
