package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is money spent by the tenant. An expense created by a purchase
// carries the purchase id and follows that purchase's lifecycle.
type Expense struct {
	shared.TenantEntity
	Category    TransactionCategory
	Method      PaymentMethod
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	PurchaseID  *uuid.UUID
}

// EntryDetails holds the editable fields shared by expenses and payments
type EntryDetails struct {
	Category    TransactionCategory
	Method      PaymentMethod
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// NewExpense creates a standalone expense
func NewExpense(tenantID uuid.UUID, d EntryDetails) (*Expense, error) {
	if err := validateEntry(d, TransactionTypeExpense); err != nil {
		return nil, err
	}
	e := &Expense{TenantEntity: shared.NewTenantEntity(tenantID)}
	e.apply(d)
	return e, nil
}

// NewPurchaseExpense creates the expense recorded for a stock purchase
func NewPurchaseExpense(tenantID, purchaseID uuid.UUID, productName string, quantity int, description string, total decimal.Decimal, date time.Time) *Expense {
	id := purchaseID
	e := &Expense{
		TenantEntity: shared.NewTenantEntity(tenantID),
		PurchaseID:   &id,
	}
	e.ReviseForPurchase(productName, quantity, description, total, date)
	return e
}

// ReviseForPurchase rewrites the expense after its purchase changed
func (e *Expense) ReviseForPurchase(productName string, quantity int, description string, total decimal.Decimal, date time.Time) {
	e.Category = CategoryStockPurchase
	e.Method = PaymentMethodCash
	e.Amount = total
	e.Date = date
	e.Description = PurchaseExpenseDescription(productName, quantity, description)
	e.UpdatedAt = time.Now()
}

// Update replaces the editable fields
func (e *Expense) Update(d EntryDetails) error {
	if e.IsPurchaseLinked() {
		return shared.NewBusinessRuleError(
			"Expense is managed by its purchase",
			"This expense was created by a stock purchase; edit or delete the purchase instead",
		)
	}
	if err := validateEntry(d, TransactionTypeExpense); err != nil {
		return err
	}
	e.apply(d)
	e.UpdatedAt = time.Now()
	return nil
}

// IsPurchaseLinked reports whether the expense belongs to a purchase
func (e *Expense) IsPurchaseLinked() bool {
	return e.PurchaseID != nil
}

func (e *Expense) apply(d EntryDetails) {
	e.Category = d.Category
	e.Method = d.Method
	e.Amount = d.Amount
	e.Date = d.Date
	e.Description = strings.TrimSpace(d.Description)
}

// PurchaseExpenseDescription builds the ledger text of a purchase expense
func PurchaseExpenseDescription(productName string, quantity int, description string) string {
	if d := strings.TrimSpace(description); d != "" {
		return fmt.Sprintf("%s purchase - %s", productName, d)
	}
	return fmt.Sprintf("Stock purchase: %s (%d units)", productName, quantity)
}

func validateEntry(d EntryDetails, t TransactionType) error {
	if !d.Category.Matches(t) {
		return shared.NewBusinessRuleError(
			"Invalid category",
			fmt.Sprintf("Category %s cannot be used for %s entries", d.Category, strings.ToLower(t.String())),
		)
	}
	if !d.Method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if d.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if d.Date.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Date is required")
	}
	if len(d.Description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	return nil
}
