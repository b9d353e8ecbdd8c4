package persistence

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const customerResource = "Customer"

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Take(&model).Error; err != nil {
		return nil, translateError(err, customerResource)
	}
	return model.ToDomain(), nil
}

// FindByNames returns the customers whose name exactly matches one of names.
// When a name is shared, the oldest customer wins.
func (r *GormCustomerRepository) FindByNames(ctx context.Context, tenantID uuid.UUID, names []string) (map[string]*trade.Customer, error) {
	result := make(map[string]*trade.Customer, len(names))
	if len(names) == 0 {
		return result, nil
	}
	var rows []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name IN ?", tenantID, names).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, customerResource)
	}
	for i := range rows {
		if _, seen := result[rows[i].Name]; !seen {
			result[rows[i].Name] = rows[i].ToDomain()
		}
	}
	return result, nil
}

// FindAll lists customers matching the search text
func (r *GormCustomerRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]trade.Customer, int64, error) {
	page := filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("tenant_id = ?", tenantID)
	if term := shared.NormalizeSearchText(page.Search); term != "" {
		query = query.Where("search_text LIKE ?"+escapeClause, likePattern(term))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, customerResource)
	}

	var rows []models.CustomerModel
	if err := query.
		Order(orderClause(page, CustomerSortFields, "created_at")).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, customerResource)
	}
	customers := make([]trade.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, total, nil
}

// ExistsByID reports whether the customer exists
func (r *GormCustomerRepository) ExistsByID(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Count(&count).Error; err != nil {
		return false, translateError(err, customerResource)
	}
	return count > 0, nil
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *trade.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, customerResource)
	}
	customer.TenantID = model.TenantID
	return nil
}

// Save updates an existing customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *trade.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND tenant_id = ?", customer.ID, customer.TenantID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(model)
	return requireAffected(result, customerResource)
}

// Delete removes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&models.CustomerModel{})
	return requireAffected(result, customerResource)
}

var _ trade.CustomerRepository = (*GormCustomerRepository)(nil)
