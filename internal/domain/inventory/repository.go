package inventory

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	CategoryID *uuid.UUID
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate finds a product and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindByIDsForUpdate locks and returns the products that exist among ids, in id order
	FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Product, error)

	// FindByCodes returns the products that carry one of the given codes, keyed by code
	FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) (map[string]*Product, error)

	// FindAll lists products with search and paging
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ProductFilter) ([]Product, int64, error)

	// FindCodesWithPrefix returns every code of the tenant starting with prefix
	FindCodesWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error)

	// CostPrices returns the recorded cost price of each existing product among ids
	CostPrices(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// CountByCategory reports how many products reference a category
	CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// SaveWithLock writes the product if its stored version still equals product.Version,
	// then increments the version. A mismatch returns a Conflict error.
	SaveWithLock(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// StockEventRepository defines the interface for stock history persistence
type StockEventRepository interface {
	// FindByID finds a stock event by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockEvent, error)

	// FindPurchases lists purchase events, newest first
	FindPurchases(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockEvent, int64, error)

	// FindByProduct lists every event of a product, newest first
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]StockEvent, error)

	// CostBases aggregates Σ(qty*unitCost) and Σqty per product
	CostBases(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]CostBasis, error)

	// CountByProduct returns the number of events referencing a product
	CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)

	// Create appends an event
	Create(ctx context.Context, event *StockEvent) error

	// Save updates an event in place
	Save(ctx context.Context, event *StockEvent) error

	// Delete removes an event
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context, tenantID uuid.UUID) ([]Category, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// ExistsByName reports whether another category already uses name; excludeID may be nil
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
