package persistence

import (
	"context"
	"strings"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const stockEventResource = "Stock event"

// GormStockEventRepository implements StockEventRepository using GORM
type GormStockEventRepository struct {
	db *gorm.DB
}

// NewGormStockEventRepository creates a new GormStockEventRepository
func NewGormStockEventRepository(db *gorm.DB) *GormStockEventRepository {
	return &GormStockEventRepository{db: db}
}

// FindByID finds a stock event by ID within a tenant
func (r *GormStockEventRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockEvent, error) {
	var model models.StockEventModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(&model).Error; err != nil {
		return nil, translateError(err, stockEventResource)
	}
	return model.ToDomain(), nil
}

// FindPurchases lists purchase events, newest first
func (r *GormStockEventRepository) FindPurchases(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockEvent, int64, error) {
	page := filter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.StockEventModel{}).
		Where("tenant_id = ? AND kind = ?", tenantID, inventory.StockEventPurchase)
	if page.Search != "" {
		query = query.Where("LOWER(reason) LIKE ?"+escapeClause, likePattern(strings.ToLower(strings.TrimSpace(page.Search))))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, stockEventResource)
	}

	var rows []models.StockEventModel
	if err := query.
		Order(orderClause(page, StockEventSortFields, "occurred_at")).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, stockEventResource)
	}
	return stockEventsToDomain(rows), total, nil
}

// FindByProduct lists every event of a product, newest first
func (r *GormStockEventRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.StockEvent, error) {
	var rows []models.StockEventModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("occurred_at DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, stockEventResource)
	}
	return stockEventsToDomain(rows), nil
}

// CostBases aggregates Σ(qty*unitCost) and Σqty per product
func (r *GormStockEventRepository) CostBases(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]inventory.CostBasis, error) {
	if len(productIDs) == 0 {
		return []inventory.CostBasis{}, nil
	}
	var rows []struct {
		ProductID    uuid.UUID
		WeightedCost decimal.Decimal
		Quantity     int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.StockEventModel{}).
		Select("product_id, COALESCE(SUM(quantity * unit_cost), 0) AS weighted_cost, COALESCE(SUM(quantity), 0) AS quantity").
		Where("tenant_id = ? AND product_id IN ?", tenantID, productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, translateError(err, stockEventResource)
	}
	bases := make([]inventory.CostBasis, len(rows))
	for i, row := range rows {
		bases[i] = inventory.CostBasis{
			ProductID:    row.ProductID,
			WeightedCost: row.WeightedCost,
			Quantity:     row.Quantity,
		}
	}
	return bases, nil
}

// CountByProduct returns the number of events referencing a product
func (r *GormStockEventRepository) CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockEventModel{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Count(&count).Error; err != nil {
		return 0, translateError(err, stockEventResource)
	}
	return count, nil
}

// Create appends an event
func (r *GormStockEventRepository) Create(ctx context.Context, event *inventory.StockEvent) error {
	model := models.StockEventModelFromDomain(event)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, stockEventResource)
	}
	event.TenantID = model.TenantID
	return nil
}

// Save updates an event in place
func (r *GormStockEventRepository) Save(ctx context.Context, event *inventory.StockEvent) error {
	model := models.StockEventModelFromDomain(event)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND tenant_id = ?", event.ID, event.TenantID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(model)
	return requireAffected(result, stockEventResource)
}

// Delete removes an event
func (r *GormStockEventRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.StockEventModel{})
	return requireAffected(result, stockEventResource)
}

func stockEventsToDomain(rows []models.StockEventModel) []inventory.StockEvent {
	events := make([]inventory.StockEvent, len(rows))
	for i := range rows {
		events[i] = *rows[i].ToDomain()
	}
	return events
}

var _ inventory.StockEventRepository = (*GormStockEventRepository)(nil)
