package inventory

import (
	"context"
	"strings"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const serviceName = "inventory"

// LedgerService keeps product stock in step with its history of stock events
// and owns the product and category catalog.
type LedgerService struct {
	scope   appshared.TransactionScope
	repos   appshared.Repositories
	metrics *telemetry.BusinessMetrics
}

// NewLedgerService creates a new LedgerService. repos serves reads that run
// outside a transaction.
func NewLedgerService(scope appshared.TransactionScope, repos appshared.Repositories) *LedgerService {
	return &LedgerService{
		scope: scope,
		repos: repos,
	}
}

// SetMetrics enables business metrics for manual stock adjustments
func (s *LedgerService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// RecordOpeningStock appends an opening stock event for an existing product.
// A non-positive quantity records nothing and returns nil.
func (s *LedgerService) RecordOpeningStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int, unitCost decimal.Decimal) (result *StockEventResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "record_opening_stock",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, quantity),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if quantity <= 0 {
		return nil, shared.RequireTenant(tenantID)
	}
	if unitCost.IsNegative() {
		return nil, shared.NewBusinessRuleError("Invalid opening stock", "Unit cost cannot be negative")
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, tenantID, productID); err != nil {
			return err
		}
		event := inventory.NewOpeningEvent(tenantID, productID, quantity, unitCost)
		if err := repos.StockEvents().Create(ctx, event); err != nil {
			return err
		}
		resp := ToStockEventResponse(event)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustStock applies a manual correction under the product row lock. It
// refuses to take stock below zero and records an adjustment event.
func (s *LedgerService) AdjustStock(ctx context.Context, tenantID uuid.UUID, cmd AdjustStockCommand) (result *AdjustStockResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "adjust_stock",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, cmd.ProductID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, cmd.Delta),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		product, err := repos.Products().FindByIDForUpdate(ctx, tenantID, cmd.ProductID)
		if err != nil {
			return err
		}
		if err := product.Adjust(cmd.Delta); err != nil {
			return err
		}
		if err := repos.Products().SaveWithLock(ctx, product); err != nil {
			return err
		}

		unitCost := product.EffectiveUnitCost(cmd.UnitCost)
		event := inventory.NewAdjustmentEvent(tenantID, product.ID, cmd.Delta, unitCost, strings.TrimSpace(cmd.Reason))
		if err := repos.StockEvents().Create(ctx, event); err != nil {
			return err
		}

		result = &AdjustStockResult{
			ProductID: product.ID,
			NewStock:  product.Stock,
			Version:   product.Version,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStockAdjustment(ctx, tenantID, cmd.Delta)
	logger.L(ctx).Info("stock adjusted",
		zap.String("product_id", cmd.ProductID.String()),
		zap.Int("delta", cmd.Delta),
		zap.Int("new_stock", result.NewStock),
	)
	return result, nil
}

// AverageUnitCost returns the quantity-weighted mean unit cost of every
// requested product. Every id is present in the result.
func (s *LedgerService) AverageUnitCost(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) (result map[uuid.UUID]decimal.Decimal, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "average_unit_cost",
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(productIDs)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return map[uuid.UUID]decimal.Decimal{}, nil
	}

	bases, err := s.repos.StockEvents().CostBases(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	costPrices, err := s.repos.Products().CostPrices(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	return inventory.AverageUnitCosts(productIDs, bases, costPrices), nil
}

// GenerateCode suggests the next free product code for name
func (s *LedgerService) GenerateCode(ctx context.Context, tenantID uuid.UUID, name string) (string, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return "", err
	}
	return nextCode(ctx, s.repos.Products(), tenantID, name)
}

// ListStockEvents returns the full stock history of a product, newest first
func (s *LedgerService) ListStockEvents(ctx context.Context, tenantID, productID uuid.UUID) ([]StockEventResponse, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Products().FindByID(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	events, err := s.repos.StockEvents().FindByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	return ToStockEventResponses(events), nil
}

func nextCode(ctx context.Context, products inventory.ProductRepository, tenantID uuid.UUID, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return inventory.BlankNameCode, nil
	}
	prefix := inventory.CodePrefix(name)
	existing, err := products.FindCodesWithPrefix(ctx, tenantID, prefix)
	if err != nil {
		return "", err
	}
	return inventory.NextCode(prefix, existing), nil
}
