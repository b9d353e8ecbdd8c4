package inventory

import (
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxCategoriesPerTenant is the catalog limit for categories
const MaxCategoriesPerTenant = 50

// Category groups products. Names are unique within a tenant.
type Category struct {
	shared.TenantEntity
	Name string
}

// NewCategory creates a new category
func NewCategory(tenantID uuid.UUID, name string) (*Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	return &Category{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
	}, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name, err := validateCategoryName(name)
	if err != nil {
		return err
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return "", shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return name, nil
}
