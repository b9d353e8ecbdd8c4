package finance

import (
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryCommand holds the fields of an expense, a payment or a manual ledger entry
type EntryCommand struct {
	Category    finance.TransactionCategory `json:"category" validate:"required"`
	Method      finance.PaymentMethod       `json:"method" validate:"required,min=1,max=4"`
	Amount      decimal.Decimal             `json:"amount" validate:"gte=0"`
	Date        time.Time                   `json:"date" validate:"required"`
	Description string                      `json:"description" validate:"max=500"`
}

// PaymentCommand records money received, optionally from a customer for a sale
type PaymentCommand struct {
	Category    finance.TransactionCategory `json:"category" validate:"required"`
	Method      finance.PaymentMethod       `json:"method" validate:"required,min=1,max=4"`
	Amount      decimal.Decimal             `json:"amount" validate:"gte=0"`
	Date        time.Time                   `json:"date" validate:"required"`
	Description string                      `json:"description" validate:"max=500"`
	CustomerID  *uuid.UUID                  `json:"customer_id"`
	SaleID      *uuid.UUID                  `json:"sale_id"`
}

// RefundCommand books a refund against a sale
type RefundCommand struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Reason string          `json:"reason" validate:"max=300"`
}

// RegisterRevenueCommand books the revenue of a sale
type RegisterRevenueCommand struct {
	Method finance.PaymentMethod `json:"method" validate:"omitempty,min=1,max=4"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID                   `json:"id"`
	Category    finance.TransactionCategory `json:"category"`
	Method      finance.PaymentMethod       `json:"method"`
	Amount      decimal.Decimal             `json:"amount"`
	Date        time.Time                   `json:"date"`
	Description string                      `json:"description"`
	PurchaseID  *uuid.UUID                  `json:"purchase_id,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID                   `json:"id"`
	Category    finance.TransactionCategory `json:"category"`
	Method      finance.PaymentMethod       `json:"method"`
	Amount      decimal.Decimal             `json:"amount"`
	Date        time.Time                   `json:"date"`
	Description string                      `json:"description"`
	CustomerID  *uuid.UUID                  `json:"customer_id,omitempty"`
	SaleID      *uuid.UUID                  `json:"sale_id,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// TransactionResponse represents a ledger row in API responses
type TransactionResponse struct {
	ID          uuid.UUID                   `json:"id"`
	Type        finance.TransactionType     `json:"type"`
	Category    finance.TransactionCategory `json:"category"`
	Method      finance.PaymentMethod       `json:"method"`
	Amount      decimal.Decimal             `json:"amount"`
	Description string                      `json:"description"`
	Date        time.Time                   `json:"date"`
	ExpenseID   *uuid.UUID                  `json:"expense_id,omitempty"`
	PaymentID   *uuid.UUID                  `json:"payment_id,omitempty"`
}

// TransactionListFilter narrows ledger listings
type TransactionListFilter struct {
	Type      *finance.TransactionType `form:"type"`
	StartDate *time.Time               `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time               `form:"end_date" time_format:"2006-01-02"`
	Search    string                   `form:"search"`
	Page      int                      `form:"page"`
	PageSize  int                      `form:"page_size"`
}

// EntryListFilter narrows expense and payment listings
type EntryListFilter struct {
	Category  *finance.TransactionCategory `form:"category"`
	StartDate *time.Time                   `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time                   `form:"end_date" time_format:"2006-01-02"`
	Search    string                       `form:"search"`
	Page      int                          `form:"page"`
	PageSize  int                          `form:"page_size"`
}

func (c EntryCommand) details() finance.EntryDetails {
	return finance.EntryDetails{
		Category:    c.Category,
		Method:      c.Method,
		Amount:      c.Amount,
		Date:        c.Date,
		Description: c.Description,
	}
}

func (c PaymentCommand) details() finance.EntryDetails {
	return finance.EntryDetails{
		Category:    c.Category,
		Method:      c.Method,
		Amount:      c.Amount,
		Date:        c.Date,
		Description: c.Description,
	}
}

func (f TransactionListFilter) toDomain() finance.TransactionFilter {
	return finance.TransactionFilter{
		Filter:    pageFilter(f.Page, f.PageSize, f.Search),
		Type:      f.Type,
		DateRange: shared.DateRange{Start: f.StartDate, End: f.EndDate},
	}
}

func (f EntryListFilter) toDomain() finance.EntryFilter {
	return finance.EntryFilter{
		Filter:    pageFilter(f.Page, f.PageSize, f.Search),
		Category:  f.Category,
		DateRange: shared.DateRange{Start: f.StartDate, End: f.EndDate},
	}
}

func pageFilter(page, pageSize int, search string) shared.Filter {
	return shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "date",
		OrderDir: "desc",
		Search:   search,
	}.Normalize()
}

// ToExpenseResponse converts an expense to a response
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Category:    e.Category,
		Method:      e.Method,
		Amount:      e.Amount,
		Date:        e.Date,
		Description: e.Description,
		PurchaseID:  e.PurchaseID,
		CreatedAt:   e.CreatedAt,
	}
}

// ToPaymentResponse converts a payment to a response
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		Category:    p.Category,
		Method:      p.Method,
		Amount:      p.Amount,
		Date:        p.Date,
		Description: p.Description,
		CustomerID:  p.CustomerID,
		SaleID:      p.SaleID,
		CreatedAt:   p.CreatedAt,
	}
}

// ToTransactionResponse converts a ledger row to a response
func ToTransactionResponse(t *finance.LedgerTransaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Type:        t.Type,
		Category:    t.Category,
		Method:      t.Method,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.Date,
		ExpenseID:   t.ExpenseID,
		PaymentID:   t.PaymentID,
	}
}
