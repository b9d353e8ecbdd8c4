package trade

import (
	"context"
	"time"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const purchaseServiceName = "purchase"

// PurchaseService records stock purchases. Each purchase moves product stock,
// appends a purchase stock event and books a linked expense with its ledger
// mirror, all in one transaction.
type PurchaseService struct {
	scope   appshared.TransactionScope
	repos   appshared.Repositories
	batches batchGuard
	metrics *telemetry.BusinessMetrics
}

// NewPurchaseService creates a new PurchaseService. repos serves reads that run
// outside a transaction.
func NewPurchaseService(scope appshared.TransactionScope, repos appshared.Repositories) *PurchaseService {
	return &PurchaseService{
		scope: scope,
		repos: repos,
	}
}

// SetIdempotencyStore enables batch keys on BulkCreate
func (s *PurchaseService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.batches = batchGuard{store: store, ttl: ttl}
}

// SetMetrics enables business metrics for recorded purchases and bulk batches
func (s *PurchaseService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// Create records a purchase
func (s *PurchaseService) Create(ctx context.Context, tenantID uuid.UUID, cmd PurchaseCommand) (result *PurchaseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, purchaseServiceName, "create",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, cmd.ProductID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, cmd.Quantity),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		products, err := moveStock(ctx, repos.Products(), tenantID, map[uuid.UUID]int{cmd.ProductID: cmd.Quantity}, cmd.ProductID)
		if err != nil {
			return err
		}
		event, err := recordPurchase(ctx, repos, tenantID, products[cmd.ProductID].Name, cmd.input())
		if err != nil {
			return err
		}
		resp := ToPurchaseResponse(event)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderWithAmount(ctx, tenantID, telemetry.OrderTypePurchase, result.TotalCost)
	logger.L(ctx).Info("purchase recorded",
		zap.String("purchase_id", result.ID.String()),
		zap.String("product_id", cmd.ProductID.String()),
		zap.Int("quantity", cmd.Quantity),
		zap.String("total_cost", result.TotalCost.String()),
	)
	return result, nil
}

// recordPurchase appends the purchase event and books its expense and mirror.
// Stock is moved by the caller.
func recordPurchase(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID, productName string, in inventory.PurchaseInput) (*inventory.StockEvent, error) {
	event, err := inventory.NewPurchaseEvent(tenantID, in)
	if err != nil {
		return nil, err
	}
	if err := repos.StockEvents().Create(ctx, event); err != nil {
		return nil, err
	}

	expense := finance.NewPurchaseExpense(tenantID, event.ID, productName, event.Quantity, in.Description, event.TotalCost, event.OccurredAt)
	if err := repos.Expenses().Create(ctx, expense); err != nil {
		return nil, err
	}
	if _, err := finance.NewMirror(repos.Ledger()).MirrorExpense(ctx, expense); err != nil {
		return nil, err
	}
	return event, nil
}

// Update edits a purchase. Stock follows the quantity difference, or moves
// between products when the product changed. The expense and its mirror are
// rewritten from the new costs.
func (s *PurchaseService) Update(ctx context.Context, tenantID, purchaseID uuid.UUID, cmd PurchaseCommand) (result *PurchaseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, purchaseServiceName, "update",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, cmd.ProductID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, cmd.Quantity),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		event, err := findPurchase(ctx, repos, tenantID, purchaseID)
		if err != nil {
			return err
		}

		deltas := map[uuid.UUID]int{event.ProductID: -event.Quantity}
		deltas[cmd.ProductID] += cmd.Quantity
		if err := event.Revise(cmd.input()); err != nil {
			return err
		}
		products, err := moveStock(ctx, repos.Products(), tenantID, deltas, cmd.ProductID)
		if err != nil {
			return err
		}
		if err := repos.StockEvents().Save(ctx, event); err != nil {
			return err
		}
		if err := revisePurchaseExpense(ctx, repos, event, products[cmd.ProductID].Name); err != nil {
			return err
		}

		resp := ToPurchaseResponse(event)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func revisePurchaseExpense(ctx context.Context, repos appshared.Repositories, event *inventory.StockEvent, productName string) error {
	expense, err := repos.Expenses().FindByPurchase(ctx, event.TenantID, event.ID)
	if shared.IsNotFound(err) {
		logger.L(ctx).Warn("purchase expense missing, left unrepaired", zap.String("purchase_id", event.ID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	expense.ReviseForPurchase(productName, event.Quantity, event.Reason, event.TotalCost, event.OccurredAt)
	if err := repos.Expenses().Save(ctx, expense); err != nil {
		return err
	}
	found, err := finance.NewMirror(repos.Ledger()).SyncExpense(ctx, expense)
	if err != nil {
		return err
	}
	if !found {
		logger.L(ctx).Warn("ledger mirror missing, left unrepaired",
			zap.String("source", "expense"),
			zap.String("source_id", expense.ID.String()),
		)
	}
	return nil
}

// Delete removes a purchase, takes its quantity back out of stock and deletes
// the linked expense and mirror.
func (s *PurchaseService) Delete(ctx context.Context, tenantID, purchaseID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, purchaseServiceName, "delete")
	defer func() { telemetry.EndSpan(span, err) }()

	return s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		event, err := findPurchase(ctx, repos, tenantID, purchaseID)
		if err != nil {
			return err
		}

		expense, err := repos.Expenses().FindByPurchase(ctx, tenantID, event.ID)
		switch {
		case shared.IsNotFound(err):
		case err != nil:
			return err
		default:
			if err := finance.NewMirror(repos.Ledger()).RemoveForExpense(ctx, expense); err != nil {
				return err
			}
			if err := repos.Expenses().Delete(ctx, tenantID, expense.ID); err != nil {
				return err
			}
		}

		if err := repos.StockEvents().Delete(ctx, tenantID, event.ID); err != nil {
			return err
		}
		_, err = moveStock(ctx, repos.Products(), tenantID, map[uuid.UUID]int{event.ProductID: -event.Quantity})
		return err
	})
}

// BulkCreate applies many purchases in one transaction. Items with a
// non-positive quantity, an unknown product or invalid costs are skipped and
// reported. A batch key already applied returns a replayed result.
func (s *PurchaseService) BulkCreate(ctx context.Context, tenantID uuid.UUID, cmd BulkPurchaseCommand) (result *trade.BulkResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, purchaseServiceName, "bulk_create",
		telemetry.WithAttribute(telemetry.SpanAttrBatchKey, cmd.BatchKey),
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(cmd.Items)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	result, err = s.batches.run(ctx, tenantID, "purchase", cmd.BatchKey, func() (*trade.BulkResult, error) {
		return s.bulkCreate(ctx, tenantID, cmd.Items)
	})
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrSkipped, result.SkippedCount)
	if !result.Replayed {
		s.metrics.RecordBatch(ctx, tenantID, "purchase", result.SuccessCount, result.SkippedCount)
	}
	logger.L(ctx).Info("bulk purchases applied",
		zap.Int("success", result.SuccessCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Bool("replayed", result.Replayed),
	)
	return result, nil
}

func (s *PurchaseService) bulkCreate(ctx context.Context, tenantID uuid.UUID, items []PurchaseCommand) (*trade.BulkResult, error) {
	var result *trade.BulkResult
	err := s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		result = &trade.BulkResult{}

		wanted := make(map[uuid.UUID]bool, len(items))
		for _, item := range items {
			if item.ProductID != uuid.Nil {
				wanted[item.ProductID] = true
			}
		}
		products, err := repos.Products().FindByIDsForUpdate(ctx, tenantID, trade.SortedIDs(wanted))
		if err != nil {
			return err
		}

		touched := make(map[uuid.UUID]bool, len(products))
		for i, item := range items {
			row := i + 1
			if item.Quantity <= 0 {
				result.Skip("Item %d: quantity must be greater than zero", row)
				continue
			}
			product, ok := products[item.ProductID]
			if !ok {
				result.Skip("Item %d: product not found", row)
				continue
			}
			if _, err := recordPurchase(ctx, repos, tenantID, product.Name, item.input()); err != nil {
				if shared.IsBusinessRule(err) {
					result.Skip("Item %d: %s", row, shared.AsDomainError(err).Message)
					continue
				}
				return err
			}
			product.ApplyStockDelta(item.Quantity)
			touched[product.ID] = true
			result.Succeeded()
		}
		return saveProducts(ctx, repos.Products(), products, touched)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a purchase by id
func (s *PurchaseService) Get(ctx context.Context, tenantID, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	event, err := findPurchase(ctx, s.repos, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseResponse(event)
	return &resp, nil
}

// List lists purchases, newest first
func (s *PurchaseService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseListFilter) (*shared.Paginated[PurchaseResponse], error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	page := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "occurred_at",
		OrderDir: "desc",
		Search:   filter.Search,
	}.Normalize()
	events, total, err := s.repos.StockEvents().FindPurchases(ctx, tenantID, page)
	if err != nil {
		return nil, err
	}
	items := make([]PurchaseResponse, len(events))
	for i := range events {
		items[i] = ToPurchaseResponse(&events[i])
	}
	result := shared.NewPaginated(items, total, page.Page, page.PageSize)
	return &result, nil
}

// findPurchase loads a stock event and requires it to be a purchase
func findPurchase(ctx context.Context, repos appshared.Repositories, tenantID, purchaseID uuid.UUID) (*inventory.StockEvent, error) {
	event, err := repos.StockEvents().FindByID(ctx, tenantID, purchaseID)
	if shared.IsNotFound(err) || (err == nil && event.Kind != inventory.StockEventPurchase) {
		return nil, shared.NewNotFoundError("Purchase")
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}
