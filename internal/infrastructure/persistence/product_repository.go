package persistence

import (
	"context"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const productResource = "Product"

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(&model).Error; err != nil {
		return nil, translateError(err, productResource)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a product and holds its row lock until the transaction ends
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(&model).Error; err != nil {
		return nil, translateError(err, productResource)
	}
	return model.ToDomain(), nil
}

// FindByIDsForUpdate locks the existing products among ids in ascending id order
func (r *GormProductRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*inventory.Product, error) {
	result := make(map[uuid.UUID]*inventory.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, productResource)
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// FindByCodes returns the products carrying one of codes, keyed by code
func (r *GormProductRepository) FindByCodes(ctx context.Context, tenantID uuid.UUID, codes []string) (map[string]*inventory.Product, error) {
	result := make(map[string]*inventory.Product, len(codes))
	if len(codes) == 0 {
		return result, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code IN ?", tenantID, codes).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, productResource)
	}
	for i := range rows {
		if _, seen := result[rows[i].Code]; !seen {
			result[rows[i].Code] = rows[i].ToDomain()
		}
	}
	return result, nil
}

// FindAll lists products with search and paging
func (r *GormProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter inventory.ProductFilter) ([]inventory.Product, int64, error) {
	page := filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("tenant_id = ?", tenantID)
	if term := shared.NormalizeSearchText(page.Search); term != "" {
		query = query.Where("search_text LIKE ?"+escapeClause, likePattern(term))
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, productResource)
	}

	var rows []models.ProductModel
	if err := query.
		Order(orderClause(page, ProductSortFields, "created_at")).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, productResource)
	}
	products := make([]inventory.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

// FindCodesWithPrefix returns every code of the tenant starting with prefix
func (r *GormProductRepository) FindCodesWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND code LIKE ?"+escapeClause, tenantID, escapeLike(prefix)+"%").
		Pluck("code", &codes).Error; err != nil {
		return nil, translateError(err, productResource)
	}
	return codes, nil
}

// CostPrices returns the cost price of each existing product among ids
func (r *GormProductRepository) CostPrices(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	result := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Select("id", "cost_price").
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&rows).Error; err != nil {
		return nil, translateError(err, productResource)
	}
	for _, row := range rows {
		result[row.ID] = row.CostPrice
	}
	return result, nil
}

// CountByCategory reports how many products reference a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Count(&count).Error; err != nil {
		return 0, translateError(err, productResource)
	}
	return count, nil
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *inventory.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, productResource)
	}
	product.TenantID = model.TenantID
	return nil
}

// SaveWithLock writes the product if the stored version still equals product.Version.
// The version row is read FOR UPDATE so the compare and the write are atomic.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *inventory.Product) error {
	var stored models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "version").
		Where("id = ? AND tenant_id = ?", product.ID, product.TenantID).
		Take(&stored).Error; err != nil {
		return translateError(err, productResource)
	}
	model := models.ProductModelFromDomain(product)
	err := versionedWrite(product, stored.Version, func(next int) *gorm.DB {
		model.Version = next
		return r.db.WithContext(ctx).
			Model(model).
			Where("id = ? AND tenant_id = ? AND version = ?", product.ID, product.TenantID, product.Version).
			Select("*").
			Omit("id", "tenant_id", "created_at").
			Updates(model)
	}, productResource)
	if err != nil {
		return err
	}
	product.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes a product
func (r *GormProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.ProductModel{})
	return requireAffected(result, productResource)
}

var _ inventory.ProductRepository = (*GormProductRepository)(nil)
