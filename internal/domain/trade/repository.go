package trade

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	CustomerID     *uuid.UUID
	ShippingStatus *ShippingStatus
	DateRange      shared.DateRange
}

// SaleOrderRepository defines the interface for sale persistence
type SaleOrderRepository interface {
	// FindByID finds a sale with its lines
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SaleOrder, error)

	// FindByIDForUpdate finds a sale with its lines and locks the header row
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*SaleOrder, error)

	// FindAll lists sale headers, newest sale date first
	FindAll(ctx context.Context, tenantID uuid.UUID, filter SaleFilter) ([]SaleOrder, int64, error)

	// CountByDate counts the sales whose sale date falls on day
	CountByDate(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error)

	// CountLinesByProduct counts the sale lines referencing a product
	CountLinesByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)

	// SumTotalByCustomer totals the sales of a customer
	SumTotalByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error)

	// CountByCustomer counts the sales of a customer
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)

	// Create inserts a sale with its lines
	Create(ctx context.Context, order *SaleOrder) error

	// SaveWithLock writes the header if its stored version still equals order.Version,
	// then increments the version. A mismatch returns a Conflict error.
	SaveWithLock(ctx context.Context, order *SaleOrder) error

	// ReplaceLines deletes the stored lines of the order and inserts order.Lines
	ReplaceLines(ctx context.Context, order *SaleOrder) error

	// Delete removes a sale and its lines
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByNames returns the customers whose name exactly matches one of names, keyed by name
	FindByNames(ctx context.Context, tenantID uuid.UUID, names []string) (map[string]*Customer, error)

	// FindAll lists customers matching the search text
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)

	// ExistsByID reports whether the customer exists
	ExistsByID(ctx context.Context, tenantID, id uuid.UUID) (bool, error)

	Create(ctx context.Context, customer *Customer) error
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
