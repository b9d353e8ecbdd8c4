package persistence

import (
	"context"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const saleResource = "Sale"

// GormSaleOrderRepository implements SaleOrderRepository using GORM.
// Headers live in sale_orders and lines in sale_lines; lines are written
// explicitly, never through associations.
type GormSaleOrderRepository struct {
	db *gorm.DB
}

// NewGormSaleOrderRepository creates a new GormSaleOrderRepository
func NewGormSaleOrderRepository(db *gorm.DB) *GormSaleOrderRepository {
	return &GormSaleOrderRepository{db: db}
}

// FindByID finds a sale with its lines
func (r *GormSaleOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.SaleOrder, error) {
	return r.find(ctx, r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a sale with its lines and locks the header row
func (r *GormSaleOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.SaleOrder, error) {
	return r.find(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

func (r *GormSaleOrderRepository) find(ctx context.Context, query *gorm.DB, tenantID, id uuid.UUID) (*trade.SaleOrder, error) {
	var header models.SaleOrderModel
	if err := query.
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(&header).Error; err != nil {
		return nil, translateError(err, saleResource)
	}
	var lines []models.SaleLineModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ? AND tenant_id = ?", id, tenantID).
		Order("position ASC").
		Find(&lines).Error; err != nil {
		return nil, translateError(err, saleResource)
	}
	return header.ToDomain(lines), nil
}

// FindAll lists sale headers, newest sale date first
func (r *GormSaleOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter trade.SaleFilter) ([]trade.SaleOrder, int64, error) {
	page := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.SaleOrderModel{}).Where("tenant_id = ?", tenantID)
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ShippingStatus != nil {
		query = query.Where("shipping_status = ?", *filter.ShippingStatus)
	}
	query = applyDateRange(query, "sale_date", filter.DateRange)
	if page.Search != "" {
		term := likePattern(page.Search)
		query = query.Where("(order_code LIKE ?"+escapeClause+" OR external_ref LIKE ?"+escapeClause+")", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, saleResource)
	}

	var rows []models.SaleOrderModel
	if err := query.
		Order(orderClause(page, SaleOrderSortFields, "sale_date")).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, saleResource)
	}
	orders := make([]trade.SaleOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain(nil)
	}
	return orders, total, nil
}

// CountByDate counts the sales whose sale date falls on day, in day's location
func (r *GormSaleOrderRepository) CountByDate(ctx context.Context, tenantID uuid.UUID, day time.Time) (int64, error) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleOrderModel{}).
		Where("tenant_id = ? AND sale_date >= ? AND sale_date < ?", tenantID, start, start.AddDate(0, 0, 1)).
		Count(&count).Error; err != nil {
		return 0, translateError(err, saleResource)
	}
	return count, nil
}

// CountLinesByProduct counts the sale lines referencing a product
func (r *GormSaleOrderRepository) CountLinesByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleLineModel{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Count(&count).Error; err != nil {
		return 0, translateError(err, saleResource)
	}
	return count, nil
}

// SumTotalByCustomer totals the sales of a customer
func (r *GormSaleOrderRepository) SumTotalByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	var out struct{ Total decimal.Decimal }
	if err := r.db.WithContext(ctx).
		Model(&models.SaleOrderModel{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Scan(&out).Error; err != nil {
		return decimal.Zero, translateError(err, saleResource)
	}
	return out.Total, nil
}

// CountByCustomer counts the sales of a customer
func (r *GormSaleOrderRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SaleOrderModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&count).Error; err != nil {
		return 0, translateError(err, saleResource)
	}
	return count, nil
}

// Create inserts a sale with its lines
func (r *GormSaleOrderRepository) Create(ctx context.Context, order *trade.SaleOrder) error {
	header := models.SaleOrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(header).Error; err != nil {
		return translateError(err, saleResource)
	}
	order.TenantID = header.TenantID
	return r.insertLines(ctx, order)
}

// SaveWithLock writes the header if the stored version still equals order.Version
func (r *GormSaleOrderRepository) SaveWithLock(ctx context.Context, order *trade.SaleOrder) error {
	var stored models.SaleOrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "version").
		Where("id = ? AND tenant_id = ?", order.ID, order.TenantID).
		Take(&stored).Error; err != nil {
		return translateError(err, saleResource)
	}
	header := models.SaleOrderModelFromDomain(order)
	err := versionedWrite(order, stored.Version, func(next int) *gorm.DB {
		header.Version = next
		return r.db.WithContext(ctx).
			Model(header).
			Where("id = ? AND tenant_id = ? AND version = ?", order.ID, order.TenantID, order.Version).
			Select("*").
			Omit("id", "tenant_id", "created_at").
			Updates(header)
	}, saleResource)
	if err != nil {
		return err
	}
	order.UpdatedAt = header.UpdatedAt
	return nil
}

// ReplaceLines deletes the stored lines of the order and inserts order.Lines
func (r *GormSaleOrderRepository) ReplaceLines(ctx context.Context, order *trade.SaleOrder) error {
	if err := r.db.WithContext(ctx).
		Where("sale_id = ? AND tenant_id = ?", order.ID, order.TenantID).
		Delete(&models.SaleLineModel{}).Error; err != nil {
		return translateError(err, saleResource)
	}
	return r.insertLines(ctx, order)
}

func (r *GormSaleOrderRepository) insertLines(ctx context.Context, order *trade.SaleOrder) error {
	lines := models.SaleLineModelsFromDomain(order)
	if len(lines) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&lines).Error; err != nil {
		return translateError(err, saleResource)
	}
	return nil
}

// Delete removes a sale and its lines
func (r *GormSaleOrderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("sale_id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.SaleLineModel{}).Error; err != nil {
		return translateError(err, saleResource)
	}
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.SaleOrderModel{})
	return requireAffected(result, saleResource)
}

// applyDateRange restricts column to the inclusive range; End covers its whole day
func applyDateRange(query *gorm.DB, column string, dateRange shared.DateRange) *gorm.DB {
	if dateRange.Start != nil {
		query = query.Where(column+" >= ?", *dateRange.Start)
	}
	if end := dateRange.EndOfRange(); end != nil {
		query = query.Where(column+" <= ?", *end)
	}
	return query
}

var _ trade.SaleOrderRepository = (*GormSaleOrderRepository)(nil)
