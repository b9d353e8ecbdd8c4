package inventory

import (
	"context"
	"fmt"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProduct creates a product. A blank code is generated from the name and
// a positive initial stock is recorded as an opening event in the same transaction.
func (s *LedgerService) CreateProduct(ctx context.Context, tenantID uuid.UUID, cmd CreateProductCommand) (result *ProductResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "create_product")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		if err := requireCategory(ctx, repos, tenantID, cmd.CategoryID); err != nil {
			return err
		}

		details := cmd.details()
		if details.Code == "" {
			code, err := nextCode(ctx, repos.Products(), tenantID, details.Name)
			if err != nil {
				return err
			}
			details.Code = code
		}

		product, err := inventory.NewProduct(tenantID, details)
		if err != nil {
			return err
		}
		product.ApplyStockDelta(cmd.InitialStock)
		if err := repos.Products().Create(ctx, product); err != nil {
			return err
		}

		if opening := inventory.NewOpeningEvent(tenantID, product.ID, cmd.InitialStock, product.CostPrice); opening != nil {
			if err := repos.StockEvents().Create(ctx, opening); err != nil {
				return err
			}
		}

		resp := ToProductResponse(product)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrProductID, result.ID.String())
	logger.L(ctx).Info("product created",
		zap.String("product_id", result.ID.String()),
		zap.String("code", result.Code),
		zap.Int("initial_stock", cmd.InitialStock),
	)
	return result, nil
}

// UpdateProduct edits the catalog fields of a product. The presented version
// must match the stored one.
func (s *LedgerService) UpdateProduct(ctx context.Context, tenantID, productID uuid.UUID, cmd UpdateProductCommand) (result *ProductResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "update_product",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		product, err := repos.Products().FindByIDForUpdate(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if err := product.CheckVersion(cmd.Version, "Product"); err != nil {
			return err
		}
		if err := requireCategory(ctx, repos, tenantID, cmd.CategoryID); err != nil {
			return err
		}

		details := cmd.details()
		if details.Code == "" {
			details.Code = product.Code
		}
		if err := product.Update(details); err != nil {
			return err
		}
		if err := repos.Products().SaveWithLock(ctx, product); err != nil {
			return err
		}

		resp := ToProductResponse(product)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteProduct removes a product that no stock event or sale line references
func (s *LedgerService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "delete_product",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	return s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		product, err := repos.Products().FindByIDForUpdate(ctx, tenantID, productID)
		if err != nil {
			return err
		}

		events, err := repos.StockEvents().CountByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		lines, err := repos.Sales().CountLinesByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		if events > 0 || lines > 0 {
			return shared.NewBusinessRuleError(
				"Product in use",
				fmt.Sprintf("Product %s has %d stock movement(s) and %d sale line(s) and cannot be deleted", product.Code, events, lines),
			)
		}

		return repos.Products().Delete(ctx, tenantID, productID)
	})
}

// GetProduct returns a product by id
func (s *LedgerService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	product, err := s.repos.Products().FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListProducts lists products matching the filter, searching name and code
func (s *LedgerService) ListProducts(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	page := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()

	products, total, err := s.repos.Products().FindAll(ctx, tenantID, inventory.ProductFilter{
		Filter:     page,
		CategoryID: filter.CategoryID,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToProductResponses(products), total, page.Page, page.PageSize)
	return &result, nil
}

func requireCategory(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	_, err := repos.Categories().FindByID(ctx, tenantID, *categoryID)
	return err
}
