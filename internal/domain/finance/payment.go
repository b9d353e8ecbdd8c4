package finance

import (
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is money received by the tenant, optionally from a customer for a sale
type Payment struct {
	shared.TenantEntity
	Category    TransactionCategory
	Method      PaymentMethod
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	CustomerID  *uuid.UUID
	SaleID      *uuid.UUID
}

// NewPayment creates a payment
func NewPayment(tenantID uuid.UUID, d EntryDetails, customerID, saleID *uuid.UUID) (*Payment, error) {
	if err := validateEntry(d, TransactionTypeIncome); err != nil {
		return nil, err
	}
	p := &Payment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		CustomerID:   customerID,
		SaleID:       saleID,
	}
	p.apply(d)
	return p, nil
}

// Update replaces the editable fields. The customer and sale links stay.
func (p *Payment) Update(d EntryDetails) error {
	if err := validateEntry(d, TransactionTypeIncome); err != nil {
		return err
	}
	p.apply(d)
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Payment) apply(d EntryDetails) {
	p.Category = d.Category
	p.Method = d.Method
	p.Amount = d.Amount
	p.Date = d.Date
	p.Description = strings.TrimSpace(d.Description)
}
