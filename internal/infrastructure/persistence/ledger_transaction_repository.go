package persistence

import (
	"context"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const ledgerResource = "Ledger transaction"

// GormLedgerTransactionRepository implements LedgerTransactionRepository using GORM
type GormLedgerTransactionRepository struct {
	db *gorm.DB
}

// NewGormLedgerTransactionRepository creates a new GormLedgerTransactionRepository
func NewGormLedgerTransactionRepository(db *gorm.DB) *GormLedgerTransactionRepository {
	return &GormLedgerTransactionRepository{db: db}
}

// FindByExpense finds the mirror of an expense
func (r *GormLedgerTransactionRepository) FindByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (*finance.LedgerTransaction, error) {
	return r.findOne(ctx, "expense_id = ? AND tenant_id = ?", expenseID, tenantID)
}

// FindByPayment finds the mirror of a payment
func (r *GormLedgerTransactionRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*finance.LedgerTransaction, error) {
	return r.findOne(ctx, "payment_id = ? AND tenant_id = ?", paymentID, tenantID)
}

func (r *GormLedgerTransactionRepository) findOne(ctx context.Context, where string, args ...any) (*finance.LedgerTransaction, error) {
	var model models.LedgerTransactionModel
	if err := r.db.WithContext(ctx).Where(where, args...).Take(&model).Error; err != nil {
		return nil, translateError(err, ledgerResource)
	}
	return model.ToDomain(), nil
}

// FindAll lists ledger rows, newest first
func (r *GormLedgerTransactionRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.TransactionFilter) ([]finance.LedgerTransaction, int64, error) {
	page := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.LedgerTransactionModel{}).Where("tenant_id = ?", tenantID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	query = applyDateRange(query, "date", filter.DateRange)
	query = applyDescriptionSearch(query, page.Search)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, ledgerResource)
	}

	var rows []models.LedgerTransactionModel
	if err := query.
		Order(orderClause(page, EntrySortFields, "date")).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, ledgerResource)
	}
	txns := make([]finance.LedgerTransaction, len(rows))
	for i := range rows {
		txns[i] = *rows[i].ToDomain()
	}
	return txns, total, nil
}

// Totals sums income and expense amounts within the range
func (r *GormLedgerTransactionRepository) Totals(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) (decimal.Decimal, decimal.Decimal, error) {
	var out struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
	}
	query := r.db.WithContext(ctx).
		Model(&models.LedgerTransactionModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS income, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS expense",
			finance.TransactionTypeIncome, finance.TransactionTypeExpense,
		).
		Where("tenant_id = ?", tenantID)
	if err := applyDateRange(query, "date", dateRange).Scan(&out).Error; err != nil {
		return decimal.Zero, decimal.Zero, translateError(err, ledgerResource)
	}
	return out.Income, out.Expense, nil
}

// Create inserts a ledger row. A second mirror for the same source violates
// the unique back-reference index and fails.
func (r *GormLedgerTransactionRepository) Create(ctx context.Context, txn *finance.LedgerTransaction) error {
	model := models.LedgerTransactionModelFromDomain(txn)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, ledgerResource)
	}
	txn.TenantID = model.TenantID
	return nil
}

// Save updates an existing ledger row
func (r *GormLedgerTransactionRepository) Save(ctx context.Context, txn *finance.LedgerTransaction) error {
	model := models.LedgerTransactionModelFromDomain(txn)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND tenant_id = ?", txn.ID, txn.TenantID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(model)
	return requireAffected(result, ledgerResource)
}

// Delete removes a ledger row
func (r *GormLedgerTransactionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.LedgerTransactionModel{})
	return requireAffected(result, ledgerResource)
}

var _ finance.LedgerTransactionRepository = (*GormLedgerTransactionRepository)(nil)
