package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostBasis is the aggregated stock history of one product
type CostBasis struct {
	ProductID    uuid.UUID
	WeightedCost decimal.Decimal // Σ(quantity * unit cost)
	Quantity     int64           // Σ quantity
}

// AverageUnitCosts computes the quantity-weighted mean unit cost for every requested id.
// Products whose history nets to a non-positive quantity, or that have no history,
// fall back to their recorded cost price; unknown products get zero.
func AverageUnitCosts(productIDs []uuid.UUID, bases []CostBasis, costPrices map[uuid.UUID]decimal.Decimal) map[uuid.UUID]decimal.Decimal {
	result := make(map[uuid.UUID]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return result
	}

	byProduct := make(map[uuid.UUID]CostBasis, len(bases))
	for _, b := range bases {
		byProduct[b.ProductID] = b
	}

	for _, id := range productIDs {
		if b, ok := byProduct[id]; ok && b.Quantity > 0 {
			result[id] = b.WeightedCost.Div(decimal.NewFromInt(b.Quantity))
			continue
		}
		if cost, ok := costPrices[id]; ok {
			result[id] = cost
			continue
		}
		result[id] = decimal.Zero
	}
	return result
}
