package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const serviceName = "finance"

// FinanceService records expenses and payments together with their ledger
// mirrors and reports on the unified ledger.
type FinanceService struct {
	scope   appshared.TransactionScope
	repos   appshared.Repositories
	metrics *telemetry.BusinessMetrics
}

// NewFinanceService creates a new FinanceService. repos serves reads that run
// outside a transaction.
func NewFinanceService(scope appshared.TransactionScope, repos appshared.Repositories) *FinanceService {
	return &FinanceService{
		scope: scope,
		repos: repos,
	}
}

// SetMetrics enables business metrics for booked payments
func (s *FinanceService) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// SummaryStats totals income and expense over the range. The end date is
// inclusive to the end of its day.
func (s *FinanceService) SummaryStats(ctx context.Context, tenantID uuid.UUID, dateRange shared.DateRange) (result *finance.SummaryStats, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "summary_stats")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	income, expense, err := s.repos.Ledger().Totals(ctx, tenantID, dateRange)
	if err != nil {
		return nil, err
	}
	stats := finance.NewSummaryStats(income, expense)
	return &stats, nil
}

// ListTransactions lists ledger rows, newest first
func (s *FinanceService) ListTransactions(ctx context.Context, tenantID uuid.UUID, filter TransactionListFilter) (*shared.Paginated[TransactionResponse], error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	domainFilter := filter.toDomain()
	txns, total, err := s.repos.Ledger().FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]TransactionResponse, len(txns))
	for i := range txns {
		items[i] = ToTransactionResponse(&txns[i])
	}
	result := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// AddManualIncome records income that did not come from a sale as a payment
// and its mirror. The category must be an income category.
func (s *FinanceService) AddManualIncome(ctx context.Context, tenantID uuid.UUID, cmd EntryCommand) (*PaymentResponse, error) {
	return s.CreatePayment(ctx, tenantID, PaymentCommand{
		Category:    cmd.Category,
		Method:      cmd.Method,
		Amount:      cmd.Amount,
		Date:        cmd.Date,
		Description: cmd.Description,
	})
}

// AddManualExpense records an expense and its mirror. The category must be
// an expense category.
func (s *FinanceService) AddManualExpense(ctx context.Context, tenantID uuid.UUID, cmd EntryCommand) (*ExpenseResponse, error) {
	return s.CreateExpense(ctx, tenantID, cmd)
}

// RefundSale books a refund expense against a sale. Stock is not touched.
func (s *FinanceService) RefundSale(ctx context.Context, tenantID, saleID uuid.UUID, cmd RefundCommand) (result *ExpenseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "refund_sale",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, cmd.Amount.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}

		expense, err := finance.NewExpense(tenantID, finance.EntryDetails{
			Category:    finance.CategoryRefund,
			Method:      finance.PaymentMethodOther,
			Amount:      cmd.Amount,
			Date:        time.Now(),
			Description: refundDescription(sale.OrderCode, cmd.Reason),
		})
		if err != nil {
			return err
		}
		if err := repos.Expenses().Create(ctx, expense); err != nil {
			return err
		}
		if _, err := finance.NewMirror(repos.Ledger()).MirrorExpense(ctx, expense); err != nil {
			return err
		}

		resp := ToExpenseResponse(expense)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RegisterSaleRevenue books the payment of a sale's total with its mirror, plus
// expense side entries for a positive commission and shipping cost. A sale with
// a zero total books nothing and returns nil. A sale is registered once.
func (s *FinanceService) RegisterSaleRevenue(ctx context.Context, tenantID, saleID uuid.UUID, cmd RegisterRevenueCommand) (result *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "register_sale_revenue",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, saleID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}
	method := cmd.Method
	if method == 0 {
		method = finance.PaymentMethodCreditCard
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		sale, err := repos.Sales().FindByID(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if !sale.TotalAmount.IsPositive() {
			return nil
		}

		booked, err := repos.Payments().CountBySale(ctx, tenantID, saleID)
		if err != nil {
			return err
		}
		if booked > 0 {
			return shared.NewBusinessRuleError(
				"Revenue already registered",
				fmt.Sprintf("Order #%s already has a payment", sale.OrderCode),
			)
		}

		payment, err := bookSaleRevenue(ctx, repos, sale, method)
		if err != nil {
			return err
		}
		resp := ToPaymentResponse(payment)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result != nil {
		s.metrics.RecordPayment(ctx, tenantID, telemetry.PaymentSourceSaleRevenue, result.Method.String(), result.Amount)
		logger.L(ctx).Info("sale revenue registered",
			zap.String("sale_id", saleID.String()),
			zap.String("amount", result.Amount.String()),
		)
	}
	return result, nil
}

func bookSaleRevenue(ctx context.Context, repos appshared.Repositories, sale *trade.SaleOrder, method finance.PaymentMethod) (*finance.Payment, error) {
	customerID, saleID := sale.CustomerID, sale.ID
	payment, err := finance.NewPayment(sale.TenantID, finance.EntryDetails{
		Category:    finance.CategorySale,
		Method:      method,
		Amount:      sale.TotalAmount,
		Date:        sale.SaleDate,
		Description: fmt.Sprintf("Order #%s", sale.OrderCode),
	}, &customerID, &saleID)
	if err != nil {
		return nil, err
	}
	if err := repos.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}
	if _, err := finance.NewMirror(repos.Ledger()).MirrorPayment(ctx, payment); err != nil {
		return nil, err
	}

	sides := []struct {
		amount      decimal.Decimal
		description string
	}{
		{sale.PlatformCommission, fmt.Sprintf("Order #%s platform commission", sale.OrderCode)},
		{sale.ShippingCost, fmt.Sprintf("Order #%s shipping cost", sale.OrderCode)},
	}
	for _, side := range sides {
		if !side.amount.IsPositive() {
			continue
		}
		entry, err := finance.NewSideEntry(sale.TenantID, finance.TransactionTypeExpense, finance.EntryDetails{
			Category:    finance.CategoryOtherExpense,
			Method:      finance.PaymentMethodOther,
			Amount:      side.amount,
			Date:        sale.SaleDate,
			Description: side.description,
		})
		if err != nil {
			return nil, err
		}
		if err := repos.Ledger().Create(ctx, entry); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

func refundDescription(orderCode, reason string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return fmt.Sprintf("REFUND - Order #%s: %s", orderCode, r)
	}
	return fmt.Sprintf("REFUND - Order #%s", orderCode)
}

func warnMissingMirror(ctx context.Context, source string, id uuid.UUID) {
	logger.L(ctx).Warn("ledger mirror missing, left unrepaired",
		zap.String("source", source),
		zap.String("source_id", id.String()),
	)
}
