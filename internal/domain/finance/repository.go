package finance

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryFilter narrows expense and payment listings
type EntryFilter struct {
	shared.Filter
	Category  *TransactionCategory
	DateRange shared.DateRange
}

// TransactionFilter narrows ledger listings
type TransactionFilter struct {
	shared.Filter
	Type      *TransactionType
	DateRange shared.DateRange
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	// FindByID finds an expense by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)

	// FindByPurchase finds the expense recorded for a purchase
	FindByPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*Expense, error)

	// FindAll lists expenses, newest first
	FindAll(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]Expense, int64, error)

	Create(ctx context.Context, expense *Expense) error
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindAll lists payments, newest first
	FindAll(ctx context.Context, tenantID uuid.UUID, filter EntryFilter) ([]Payment, int64, error)

	// SumByCustomer totals the payments received from a customer
	SumByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error)

	// CountBySale returns the number of payments booked against a sale
	CountBySale(ctx context.Context, tenantID, saleID uuid.UUID) (int64, error)

	// CountByCustomer returns the number of payments received from a customer
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)

	Create(ctx context.Context, payment *Payment) error
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// LedgerTransactionRepository defines the interface for ledger persistence
type LedgerTransactionRepository interface {
	// FindByExpense finds the mirror of an expense
	FindByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (*LedgerTransaction, error)

	// FindByPayment finds the mirror of a payment
	FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*LedgerTransaction, error)

	// FindAll lists ledger rows, newest first
	FindAll(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]LedgerTransaction, int64, error)

	// Totals sums income and expense amounts within the range
	Totals(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) (income, expense decimal.Decimal, err error)

	Create(ctx context.Context, txn *LedgerTransaction) error
	Save(ctx context.Context, txn *LedgerTransaction) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
