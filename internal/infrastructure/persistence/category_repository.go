package persistence

import (
	"context"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const categoryResource = "Category"

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by ID within a tenant
func (r *GormCategoryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(&model).Error; err != nil {
		return nil, translateError(err, categoryResource)
	}
	return model.ToDomain(), nil
}

// FindAll lists the tenant's categories by name
func (r *GormCategoryRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]inventory.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, categoryResource)
	}
	categories := make([]inventory.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// Count returns the number of categories of a tenant
func (r *GormCategoryRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CategoryModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, translateError(err, categoryResource)
	}
	return count, nil
}

// ExistsByName reports whether another category of the tenant already uses name
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CategoryModel{}).
		Where("tenant_id = ? AND name = ?", tenantID, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, translateError(err, categoryResource)
	}
	return count > 0, nil
}

// Save updates the category or inserts it when it does not exist yet
func (r *GormCategoryRepository) Save(ctx context.Context, category *inventory.Category) error {
	model := models.CategoryModelFromDomain(category)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND tenant_id = ?", category.ID, category.TenantID).
		Select("name", "updated_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, categoryResource)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, categoryResource)
	}
	category.TenantID = model.TenantID
	return nil
}

// Delete removes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.CategoryModel{})
	return requireAffected(result, categoryResource)
}

var _ inventory.CategoryRepository = (*GormCategoryRepository)(nil)
