package persistence

import (
	"context"

	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const paymentResource = "Payment"

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(&model).Error; err != nil {
		return nil, translateError(err, paymentResource)
	}
	return model.ToDomain(), nil
}

// FindAll lists payments, newest first
func (r *GormPaymentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.EntryFilter) ([]finance.Payment, int64, error) {
	page := filter.Filter.Normalize()
	query := applyEntryFilter(
		r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, paymentResource)
	}

	var rows []models.PaymentModel
	if err := query.
		Order(orderClause(page, EntrySortFields, "date")).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, paymentResource)
	}
	payments := make([]finance.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, total, nil
}

// SumByCustomer totals the payments received from a customer
func (r *GormPaymentRepository) SumByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	var out struct{ Total decimal.Decimal }
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Scan(&out).Error; err != nil {
		return decimal.Zero, translateError(err, paymentResource)
	}
	return out.Total, nil
}

// CountBySale returns the number of payments booked against a sale
func (r *GormPaymentRepository) CountBySale(ctx context.Context, tenantID, saleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		Count(&count).Error; err != nil {
		return 0, translateError(err, paymentResource)
	}
	return count, nil
}

// CountByCustomer returns the number of payments received from a customer
func (r *GormPaymentRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&count).Error; err != nil {
		return 0, translateError(err, paymentResource)
	}
	return count, nil
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, paymentResource)
	}
	payment.TenantID = model.TenantID
	return nil
}

// Save updates an existing payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND tenant_id = ?", payment.ID, payment.TenantID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(model)
	return requireAffected(result, paymentResource)
}

// Delete removes a payment
func (r *GormPaymentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.PaymentModel{})
	return requireAffected(result, paymentResource)
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
