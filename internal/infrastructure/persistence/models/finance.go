package models

import (
	"time"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for Expense
type ExpenseModel struct {
	TenantModel
	Category    finance.TransactionCategory `gorm:"type:smallint;not null;index"`
	Method      finance.PaymentMethod       `gorm:"type:smallint;not null"`
	Amount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Date        time.Time                   `gorm:"not null;index"`
	Description string                      `gorm:"type:varchar(500)"`
	PurchaseID  *uuid.UUID                  `gorm:"type:uuid;uniqueIndex"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		TenantEntity: m.ToDomainTenantEntity(),
		Category:     m.Category,
		Method:       m.Method,
		Amount:       m.Amount,
		Date:         m.Date,
		Description:  m.Description,
		PurchaseID:   m.PurchaseID,
	}
}

// ExpenseModelFromDomain creates a persistence model from a domain Expense
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Category:    e.Category,
		Method:      e.Method,
		Amount:      e.Amount,
		Date:        e.Date,
		Description: e.Description,
		PurchaseID:  e.PurchaseID,
	}
	m.FromDomainTenantEntity(e.TenantEntity)
	return m
}

// PaymentModel is the persistence model for Payment
type PaymentModel struct {
	TenantModel
	Category    finance.TransactionCategory `gorm:"type:smallint;not null;index"`
	Method      finance.PaymentMethod       `gorm:"type:smallint;not null"`
	Amount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Date        time.Time                   `gorm:"not null;index"`
	Description string                      `gorm:"type:varchar(500)"`
	CustomerID  *uuid.UUID                  `gorm:"type:uuid;index"`
	SaleID      *uuid.UUID                  `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantEntity: m.ToDomainTenantEntity(),
		Category:     m.Category,
		Method:       m.Method,
		Amount:       m.Amount,
		Date:         m.Date,
		Description:  m.Description,
		CustomerID:   m.CustomerID,
		SaleID:       m.SaleID,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		Category:    p.Category,
		Method:      p.Method,
		Amount:      p.Amount,
		Date:        p.Date,
		Description: p.Description,
		CustomerID:  p.CustomerID,
		SaleID:      p.SaleID,
	}
	m.FromDomainTenantEntity(p.TenantEntity)
	return m
}

// LedgerTransactionModel is the persistence model for LedgerTransaction.
// The unique indexes on the back-references keep each mirror 1:1 with its source.
type LedgerTransactionModel struct {
	TenantModel
	Type        finance.TransactionType     `gorm:"type:smallint;not null;index"`
	Category    finance.TransactionCategory `gorm:"type:smallint;not null"`
	Method      finance.PaymentMethod       `gorm:"type:smallint;not null"`
	Amount      decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	Description string                      `gorm:"type:varchar(500)"`
	Date        time.Time                   `gorm:"not null;index"`
	ExpenseID   *uuid.UUID                  `gorm:"type:uuid;uniqueIndex"`
	PaymentID   *uuid.UUID                  `gorm:"type:uuid;uniqueIndex"`
}

// TableName returns the table name for GORM
func (LedgerTransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain LedgerTransaction
func (m *LedgerTransactionModel) ToDomain() *finance.LedgerTransaction {
	return &finance.LedgerTransaction{
		TenantEntity: m.ToDomainTenantEntity(),
		Type:         m.Type,
		Category:     m.Category,
		Method:       m.Method,
		Amount:       m.Amount,
		Description:  m.Description,
		Date:         m.Date,
		ExpenseID:    m.ExpenseID,
		PaymentID:    m.PaymentID,
	}
}

// LedgerTransactionModelFromDomain creates a persistence model from a domain LedgerTransaction
func LedgerTransactionModelFromDomain(t *finance.LedgerTransaction) *LedgerTransactionModel {
	m := &LedgerTransactionModel{
		Type:        t.Type,
		Category:    t.Category,
		Method:      t.Method,
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.Date,
		ExpenseID:   t.ExpenseID,
		PaymentID:   t.PaymentID,
	}
	m.FromDomainTenantEntity(t.TenantEntity)
	return m
}
