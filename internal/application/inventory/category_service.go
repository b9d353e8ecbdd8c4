package inventory

import (
	"context"
	"fmt"
	"strings"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryCommand names a category
type CategoryCommand struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateCategory adds a category. A tenant holds at most MaxCategoriesPerTenant
// categories and names are unique.
func (s *LedgerService) CreateCategory(ctx context.Context, tenantID uuid.UUID, cmd CategoryCommand) (*CategoryResponse, error) {
	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	var result *CategoryResponse
	err := s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		count, err := repos.Categories().Count(ctx, tenantID)
		if err != nil {
			return err
		}
		if count >= inventory.MaxCategoriesPerTenant {
			return shared.NewBusinessRuleError(
				"Category limit reached",
				fmt.Sprintf("A store can have at most %d categories", inventory.MaxCategoriesPerTenant),
			)
		}
		if err := requireUniqueCategory(ctx, repos, tenantID, cmd.Name, nil); err != nil {
			return err
		}

		category, err := inventory.NewCategory(tenantID, cmd.Name)
		if err != nil {
			return err
		}
		if err := repos.Categories().Save(ctx, category); err != nil {
			return err
		}
		resp := ToCategoryResponse(category)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RenameCategory changes the name of a category
func (s *LedgerService) RenameCategory(ctx context.Context, tenantID, categoryID uuid.UUID, cmd CategoryCommand) (*CategoryResponse, error) {
	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	var result *CategoryResponse
	err := s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		category, err := repos.Categories().FindByID(ctx, tenantID, categoryID)
		if err != nil {
			return err
		}
		if err := requireUniqueCategory(ctx, repos, tenantID, cmd.Name, &categoryID); err != nil {
			return err
		}
		if err := category.Rename(cmd.Name); err != nil {
			return err
		}
		if err := repos.Categories().Save(ctx, category); err != nil {
			return err
		}
		resp := ToCategoryResponse(category)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCategory removes a category no product references
func (s *LedgerService) DeleteCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	return s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		category, err := repos.Categories().FindByID(ctx, tenantID, categoryID)
		if err != nil {
			return err
		}
		inUse, err := repos.Products().CountByCategory(ctx, tenantID, categoryID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return shared.NewBusinessRuleError(
				"Category in use",
				fmt.Sprintf("Category %q is assigned to %d product(s)", category.Name, inUse),
			)
		}
		return repos.Categories().Delete(ctx, tenantID, categoryID)
	})
}

// ListCategories returns every category of the tenant
func (s *LedgerService) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]CategoryResponse, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	categories, err := s.repos.Categories().FindAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses, nil
}

func requireUniqueCategory(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := repos.Categories().ExistsByName(ctx, tenantID, strings.TrimSpace(name), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewBusinessRuleError("Duplicate category", fmt.Sprintf("A category named %q already exists", strings.TrimSpace(name)))
	}
	return nil
}
