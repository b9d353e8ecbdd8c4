package finance

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerTransaction is a row of the unified ledger. A mirror references exactly
// one of ExpenseID or PaymentID; side entries booked with a sale reference neither.
type LedgerTransaction struct {
	shared.TenantEntity
	Type        TransactionType
	Category    TransactionCategory
	Method      PaymentMethod
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	ExpenseID   *uuid.UUID
	PaymentID   *uuid.UUID
}

// NewMirrorForExpense builds the ledger mirror of an expense
func NewMirrorForExpense(e *Expense) *LedgerTransaction {
	id := e.ID
	t := &LedgerTransaction{
		TenantEntity: shared.NewTenantEntity(e.TenantID),
		Type:         TransactionTypeExpense,
		ExpenseID:    &id,
	}
	t.SyncFromExpense(e)
	return t
}

// NewMirrorForPayment builds the ledger mirror of a payment
func NewMirrorForPayment(p *Payment) *LedgerTransaction {
	id := p.ID
	t := &LedgerTransaction{
		TenantEntity: shared.NewTenantEntity(p.TenantID),
		Type:         TransactionTypeIncome,
		PaymentID:    &id,
	}
	t.SyncFromPayment(p)
	return t
}

// NewSideEntry builds a ledger row with no source record
func NewSideEntry(tenantID uuid.UUID, t TransactionType, d EntryDetails) (*LedgerTransaction, error) {
	if err := validateEntry(d, t); err != nil {
		return nil, err
	}
	return &LedgerTransaction{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Type:         t,
		Category:     d.Category,
		Method:       d.Method,
		Amount:       d.Amount,
		Description:  d.Description,
		Date:         d.Date,
	}, nil
}

// SyncFromExpense copies the mirrored fields from the expense
func (t *LedgerTransaction) SyncFromExpense(e *Expense) {
	t.Category = e.Category
	t.Method = e.Method
	t.Amount = e.Amount
	t.Description = e.Description
	t.Date = e.Date
	t.UpdatedAt = time.Now()
}

// SyncFromPayment copies the mirrored fields from the payment
func (t *LedgerTransaction) SyncFromPayment(p *Payment) {
	t.Category = p.Category
	t.Method = p.Method
	t.Amount = p.Amount
	t.Description = p.Description
	t.Date = p.Date
	t.UpdatedAt = time.Now()
}

// IsMirror reports whether the row mirrors a source record
func (t *LedgerTransaction) IsMirror() bool {
	return t.ExpenseID != nil || t.PaymentID != nil
}
