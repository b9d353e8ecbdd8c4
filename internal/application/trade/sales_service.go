package trade

import (
	"context"
	"strings"
	"time"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const salesServiceName = "sales"

// SalesService records sales and keeps product stock in step with their lines.
// Sales never touch the ledger; revenue is booked by the finance service.
type SalesService struct {
	scope   appshared.TransactionScope
	repos   appshared.Repositories
	batches batchGuard
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
}

// NewSalesService creates a new SalesService. repos serves reads that run
// outside a transaction.
func NewSalesService(scope appshared.TransactionScope, repos appshared.Repositories) *SalesService {
	return &SalesService{
		scope: scope,
		repos: repos,
		now:   time.Now,
	}
}

// SetIdempotencyStore enables batch keys on BulkCreate
func (s *SalesService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.batches = batchGuard{store: store, ttl: ttl}
}

// SetMetrics enables business metrics for created sales and bulk batches
func (s *SalesService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// Create records a sale and takes each line's quantity out of stock. Stock may
// go negative. No payment is booked.
func (s *SalesService) Create(ctx context.Context, tenantID uuid.UUID, cmd CreateSaleCommand) (result *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, salesServiceName, "create",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, cmd.CustomerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrLineCount, len(cmd.Lines)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		if err := requireCustomer(ctx, repos, tenantID, cmd.CustomerID); err != nil {
			return err
		}
		code, err := s.nextOrderCode(ctx, repos, tenantID)
		if err != nil {
			return err
		}
		order, err := trade.NewSaleOrder(tenantID, code, cmd.details(), lineInputs(cmd.Lines))
		if err != nil {
			return err
		}

		demand := order.StockDemand()
		deltas := make(map[uuid.UUID]int, len(demand))
		for id, qty := range demand {
			deltas[id] = -qty
		}
		if _, err := moveStock(ctx, repos.Products(), tenantID, deltas, order.ProductIDs()...); err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, order); err != nil {
			return err
		}

		resp := ToSaleResponse(order)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderWithAmount(ctx, tenantID, telemetry.OrderTypeSale, result.TotalAmount)
	logger.L(ctx).Info("sale created",
		zap.String("sale_id", result.ID.String()),
		zap.String("order_code", result.OrderCode),
		zap.String("total", result.TotalAmount.String()),
	)
	return result, nil
}

// Update edits a sale guarded by its version token. The old lines are put back
// into stock, replaced by the new ones and taken out again, so only the net
// difference per product reaches the product rows.
func (s *SalesService) Update(ctx context.Context, tenantID, saleID uuid.UUID, cmd UpdateSaleCommand) (result *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, salesServiceName, "update",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrLineCount, len(cmd.Lines)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		order, err := repos.Sales().FindByIDForUpdate(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if err := order.CheckVersion(cmd.Version, "Sale"); err != nil {
			return err
		}
		if err := requireCustomer(ctx, repos, tenantID, cmd.CustomerID); err != nil {
			return err
		}

		deltas := order.StockDemand()
		if err := order.Update(cmd.details()); err != nil {
			return err
		}
		if err := order.ReplaceLines(lineInputs(cmd.Lines)); err != nil {
			return err
		}
		for id, qty := range order.StockDemand() {
			deltas[id] -= qty
		}
		if _, err := moveStock(ctx, repos.Products(), tenantID, deltas, order.ProductIDs()...); err != nil {
			return err
		}

		if err := repos.Sales().ReplaceLines(ctx, order); err != nil {
			return err
		}
		if err := repos.Sales().SaveWithLock(ctx, order); err != nil {
			return err
		}
		resp := ToSaleResponse(order)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a sale and puts every line's quantity back into stock.
// Payments booked against the sale are kept.
func (s *SalesService) Delete(ctx context.Context, tenantID, saleID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, salesServiceName, "delete",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	return s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		order, err := repos.Sales().FindByIDForUpdate(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if _, err := moveStock(ctx, repos.Products(), tenantID, order.StockDemand()); err != nil {
			return err
		}
		return repos.Sales().Delete(ctx, tenantID, saleID)
	})
}

// UpdateShippingStatus moves a sale along its fulfilment lifecycle. Stock and
// the ledger are not touched. Setting the current status again changes nothing.
func (s *SalesService) UpdateShippingStatus(ctx context.Context, tenantID, saleID uuid.UUID, status trade.ShippingStatus) (result *SaleResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, salesServiceName, "update_shipping_status",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrShippingSts, status.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		order, err := repos.Sales().FindByIDForUpdate(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		changed, err := order.UpdateShippingStatus(status)
		if err != nil {
			return err
		}
		if changed {
			if err := repos.Sales().SaveWithLock(ctx, order); err != nil {
				return err
			}
		}
		resp := ToSaleResponse(order)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BulkCreate applies many orders in one transaction. Customers are matched by
// exact name and created when missing; a blank name becomes the guest customer.
// Lines with an unknown product or a non-positive quantity are dropped, and an
// order left without lines is skipped and reported.
func (s *SalesService) BulkCreate(ctx context.Context, tenantID uuid.UUID, cmd BulkSaleCommand) (result *trade.BulkResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, salesServiceName, "bulk_create",
		telemetry.WithAttribute(telemetry.SpanAttrBatchKey, cmd.BatchKey),
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(cmd.Orders)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	result, err = s.batches.run(ctx, tenantID, "sale", cmd.BatchKey, func() (*trade.BulkResult, error) {
		return s.bulkCreate(ctx, tenantID, cmd.Orders)
	})
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrSkipped, result.SkippedCount)
	if !result.Replayed {
		s.metrics.RecordBatch(ctx, tenantID, "sale", result.SuccessCount, result.SkippedCount)
	}
	logger.L(ctx).Info("bulk sales applied",
		zap.Int("success", result.SuccessCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Bool("replayed", result.Replayed),
	)
	return result, nil
}

func (s *SalesService) bulkCreate(ctx context.Context, tenantID uuid.UUID, orders []BulkSaleOrder) (*trade.BulkResult, error) {
	var result *trade.BulkResult
	err := s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		result = &trade.BulkResult{}

		names := make([]string, 0, len(orders))
		wanted := make(map[uuid.UUID]bool)
		for _, o := range orders {
			names = append(names, bulkCustomerName(o.CustomerName))
			for _, l := range o.Lines {
				wanted[l.ProductID] = true
			}
		}
		customers, err := repos.Customers().FindByNames(ctx, tenantID, names)
		if err != nil {
			return err
		}
		products, err := repos.Products().FindByIDsForUpdate(ctx, tenantID, trade.SortedIDs(wanted))
		if err != nil {
			return err
		}

		today := s.now()
		seq, err := repos.Sales().CountByDate(ctx, tenantID, today)
		if err != nil {
			return err
		}

		touched := make(map[uuid.UUID]bool, len(products))
		for i, o := range orders {
			name := bulkCustomerName(o.CustomerName)
			inputs := make([]trade.LineInput, 0, len(o.Lines))
			for _, l := range o.Lines {
				if _, ok := products[l.ProductID]; !ok || l.Quantity < 1 || l.UnitPrice.IsNegative() {
					continue
				}
				inputs = append(inputs, trade.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
			}
			if len(inputs) == 0 {
				result.Skip("Order %d (%s): no valid line items", i+1, name)
				continue
			}

			customer, known := customers[name]
			if !known {
				customer, err = trade.NewCustomer(tenantID, trade.CustomerDetails{Name: name, Phone: o.Phone, Address: o.Address})
				if err != nil {
					result.Skip("Order %d (%s): %s", i+1, name, shared.AsDomainError(err).Message)
					continue
				}
			}

			saleDate := o.SaleDate
			if saleDate.IsZero() {
				saleDate = today
			}
			order, err := trade.NewSaleOrder(tenantID, trade.OrderCode(today, seq+1), trade.SaleDetails{
				CustomerID:   customer.ID,
				SaleDate:     saleDate,
				ExternalRef:  o.ExternalRef,
				ShippingCost: o.ShippingCost,
			}, inputs)
			if err != nil {
				result.Skip("Order %d (%s): %s", i+1, name, shared.AsDomainError(err).Message)
				continue
			}
			// a new customer is stored only once its first order is accepted
			if !known {
				if err := repos.Customers().Create(ctx, customer); err != nil {
					return err
				}
				customers[name] = customer
			}
			if err := repos.Sales().Create(ctx, order); err != nil {
				return err
			}
			seq++

			for id, qty := range order.StockDemand() {
				products[id].ApplyStockDelta(-qty)
				touched[id] = true
			}
			result.Succeeded()
		}
		return saveProducts(ctx, repos.Products(), products, touched)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a sale with its lines
func (s *SalesService) Get(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	order, err := s.repos.Sales().FindByID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(order)
	return &resp, nil
}

// List lists sale headers, newest sale date first
func (s *SalesService) List(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) (*shared.Paginated[SaleResponse], error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	domainFilter := filter.toDomain()
	orders, total, err := s.repos.Sales().FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]SaleResponse, len(orders))
	for i := range orders {
		items[i] = ToSaleResponse(&orders[i])
	}
	result := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// nextOrderCode numbers the sale after today's existing ones. Concurrent sales
// may draw the same code; the code is a label, not a key.
func (s *SalesService) nextOrderCode(ctx context.Context, repos appshared.Repositories, tenantID uuid.UUID) (string, error) {
	today := s.now()
	count, err := repos.Sales().CountByDate(ctx, tenantID, today)
	if err != nil {
		return "", err
	}
	return trade.OrderCode(today, count+1), nil
}

func requireCustomer(ctx context.Context, repos appshared.Repositories, tenantID, customerID uuid.UUID) error {
	exists, err := repos.Customers().ExistsByID(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewNotFoundError("Customer")
	}
	return nil
}

func bulkCustomerName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return trade.GuestCustomerName
}
