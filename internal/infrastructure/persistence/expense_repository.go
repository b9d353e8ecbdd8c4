package persistence

import (
	"context"
	"strings"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const expenseResource = "Expense"

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(&model).Error; err != nil {
		return nil, translateError(err, expenseResource)
	}
	return model.ToDomain(), nil
}

// FindByPurchase finds the expense recorded for a purchase
func (r *GormExpenseRepository) FindByPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ? AND tenant_id = ?", purchaseID, tenantID).
		Take(&model).Error; err != nil {
		return nil, translateError(err, expenseResource)
	}
	return model.ToDomain(), nil
}

// FindAll lists expenses, newest first
func (r *GormExpenseRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]finance.Expense, int64, error) {
	page := filter.Filter.Normalize()
	query := applyEntryFilter(
		r.db.WithContext(ctx).Model(&models.ExpenseModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, expenseResource)
	}

	var rows []models.ExpenseModel
	if err := query.
		Order(orderClause(page, EntrySortFields, "date")).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, expenseResource)
	}
	expenses := make([]finance.Expense, len(rows))
	for i := range rows {
		expenses[i] = *rows[i].ToDomain()
	}
	return expenses, total, nil
}

// Create inserts a new expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *finance.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, expenseResource)
	}
	expense.TenantID = model.TenantID
	return nil
}

// Save updates an existing expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND tenant_id = ?", expense.ID, expense.TenantID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(model)
	return requireAffected(result, expenseResource)
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.ExpenseModel{})
	return requireAffected(result, expenseResource)
}

// applyEntryFilter applies the category, date range and description search of an entry listing
func applyEntryFilter(query *gorm.DB, filter finance.EntryFilter) *gorm.DB {
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	query = applyDateRange(query, "date", filter.DateRange)
	return applyDescriptionSearch(query, filter.Search)
}

// applyDescriptionSearch adds a case-insensitive description match
func applyDescriptionSearch(query *gorm.DB, search string) *gorm.DB {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return query
	}
	return query.Where("LOWER(description) LIKE ?"+escapeClause, likePattern(term))
}

var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
