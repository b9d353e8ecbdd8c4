package shared

import (
	"context"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	domainshared "github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
)

// TransactionScope runs a unit of work for one tenant atomically.
// Every repository handed to fn shares the same database transaction, so a
// returned error rolls back all of them.
type TransactionScope interface {
	// Execute binds tenantID to the context passed to fn and runs fn inside a
	// transaction. It fails with Unauthorized before touching storage when
	// tenantID is uuid.Nil.
	Execute(ctx context.Context, tenantID uuid.UUID, fn func(ctx context.Context, repos Repositories) error) error
}

// Repositories provides access to every repository within one unit of work
type Repositories interface {
	Products() inventory.ProductRepository
	StockEvents() inventory.StockEventRepository
	Categories() inventory.CategoryRepository
	Expenses() finance.ExpenseRepository
	Payments() finance.PaymentRepository
	Ledger() finance.LedgerTransactionRepository
	Sales() trade.SaleOrderRepository
	Customers() trade.CustomerRepository
}

// RepositorySet is a plain Repositories implementation
type RepositorySet struct {
	ProductRepo    inventory.ProductRepository
	StockEventRepo inventory.StockEventRepository
	CategoryRepo   inventory.CategoryRepository
	ExpenseRepo    finance.ExpenseRepository
	PaymentRepo    finance.PaymentRepository
	LedgerRepo     finance.LedgerTransactionRepository
	SaleRepo       trade.SaleOrderRepository
	CustomerRepo   trade.CustomerRepository
}

func (r *RepositorySet) Products() inventory.ProductRepository       { return r.ProductRepo }
func (r *RepositorySet) StockEvents() inventory.StockEventRepository { return r.StockEventRepo }
func (r *RepositorySet) Categories() inventory.CategoryRepository    { return r.CategoryRepo }
func (r *RepositorySet) Expenses() finance.ExpenseRepository         { return r.ExpenseRepo }
func (r *RepositorySet) Payments() finance.PaymentRepository         { return r.PaymentRepo }
func (r *RepositorySet) Ledger() finance.LedgerTransactionRepository { return r.LedgerRepo }
func (r *RepositorySet) Sales() trade.SaleOrderRepository            { return r.SaleRepo }
func (r *RepositorySet) Customers() trade.CustomerRepository         { return r.CustomerRepo }

// NoOpTransactionScope runs fn directly against fixed repositories.
// Unit tests use it with mock repositories.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over repos
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute checks the tenant and runs fn without a transaction
func (s *NoOpTransactionScope) Execute(ctx context.Context, tenantID uuid.UUID, fn func(ctx context.Context, repos Repositories) error) error {
	if err := domainshared.RequireTenant(tenantID); err != nil {
		return err
	}
	return fn(ctx, s.repos)
}

var (
	_ TransactionScope = (*NoOpTransactionScope)(nil)
	_ Repositories     = (*RepositorySet)(nil)
)
