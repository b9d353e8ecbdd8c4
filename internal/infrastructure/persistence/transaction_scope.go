package persistence

import (
	"context"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope with GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction bound to tenantID. Errors that are not
// domain errors are logged and surface as Unexpected.
func (s *GormTransactionScope) Execute(ctx context.Context, tenantID uuid.UUID, fn func(ctx context.Context, repos appshared.Repositories) error) error {
	if err := shared.RequireTenant(tenantID); err != nil {
		return err
	}
	ctx = logger.WithTenantID(tenant.NewContext(ctx, tenantID), tenantID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormRepositories(tx))
	})
	if err == nil {
		return nil
	}
	de := shared.AsDomainError(err)
	if de.Kind == shared.KindUnexpected {
		logger.L(ctx).Error("transaction failed", zap.Error(err))
	}
	return de
}

// NewGormRepositories returns every repository over db. Outside a
// transaction scope it serves plain reads.
func NewGormRepositories(db *gorm.DB) *appshared.RepositorySet {
	return &appshared.RepositorySet{
		ProductRepo:    NewGormProductRepository(db),
		StockEventRepo: NewGormStockEventRepository(db),
		CategoryRepo:   NewGormCategoryRepository(db),
		ExpenseRepo:    NewGormExpenseRepository(db),
		PaymentRepo:    NewGormPaymentRepository(db),
		LedgerRepo:     NewGormLedgerTransactionRepository(db),
		SaleRepo:       NewGormSaleOrderRepository(db),
		CustomerRepo:   NewGormCustomerRepository(db),
	}
}

var _ appshared.TransactionScope = (*GormTransactionScope)(nil)
