package trade

import (
	"context"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
)

// moveStock locks every product named in deltas in ascending id order, applies
// the non-zero deltas and writes the products back. Products in required must
// exist; any other missing product is skipped. The locked products are returned.
func moveStock(ctx context.Context, repo inventory.ProductRepository, tenantID uuid.UUID, deltas map[uuid.UUID]int, required ...uuid.UUID) (map[uuid.UUID]*inventory.Product, error) {
	products, err := repo.FindByIDsForUpdate(ctx, tenantID, trade.SortedIDs(deltas))
	if err != nil {
		return nil, err
	}
	for _, id := range required {
		if _, ok := products[id]; !ok {
			return nil, shared.NewNotFoundError("Product")
		}
	}

	touched := make(map[uuid.UUID]bool, len(deltas))
	for id, delta := range deltas {
		p, ok := products[id]
		if !ok || delta == 0 {
			continue
		}
		p.ApplyStockDelta(delta)
		touched[id] = true
	}
	if err := saveProducts(ctx, repo, products, touched); err != nil {
		return nil, err
	}
	return products, nil
}

// saveProducts writes back the touched products in ascending id order
func saveProducts(ctx context.Context, repo inventory.ProductRepository, products map[uuid.UUID]*inventory.Product, touched map[uuid.UUID]bool) error {
	for _, id := range trade.SortedIDs(touched) {
		if err := repo.SaveWithLock(ctx, products[id]); err != nil {
			return err
		}
	}
	return nil
}
