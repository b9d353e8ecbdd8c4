package importapp

import (
	"context"
	"fmt"
	"io"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/domain/shared"
	domain "github.com/erp/retail/internal/domain/trade"
	csvimport "github.com/erp/retail/internal/infrastructure/import"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const serviceName = "import"

// Result reports a CSV import. AcceptedRows counts the rows the reader took;
// RowErrors lists rejected cells and unknown product codes. Bulk is the
// outcome of the bulk run.
type Result struct {
	AcceptedRows int                  `json:"accepted_rows"`
	Bulk         domain.BulkResult    `json:"bulk"`
	RowErrors    []csvimport.RowError `json:"row_errors,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
}

// Service turns CSV uploads into bulk purchase and sale runs. Product codes
// are resolved to ids before the bulk engines see the rows.
type Service struct {
	purchases *trade.PurchaseService
	sales     *trade.SalesService
	repos     appshared.Repositories
	opts      csvimport.Options
}

// NewService creates a new import Service. maxRows caps the data rows of one file.
func NewService(purchases *trade.PurchaseService, sales *trade.SalesService, repos appshared.Repositories, maxRows int) *Service {
	return &Service{
		purchases: purchases,
		sales:     sales,
		repos:     repos,
		opts:      csvimport.Options{MaxRows: maxRows},
	}
}

// ImportPurchases reads a purchase CSV and applies it as one bulk purchase
func (s *Service) ImportPurchases(ctx context.Context, tenantID uuid.UUID, r io.Reader, batchKey string) (result *Result, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "import_purchases",
		telemetry.WithAttribute(telemetry.SpanAttrBatchKey, batchKey),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	rows, errs, err := csvimport.DecodePurchases(r, s.opts)
	if err != nil {
		return nil, fileError(err)
	}

	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.ProductCode)
	}
	products, err := s.repos.Products().FindByCodes(ctx, tenantID, codes)
	if err != nil {
		return nil, err
	}

	cmd := trade.BulkPurchaseCommand{BatchKey: batchKey}
	for _, row := range rows {
		product, ok := products[row.ProductCode]
		if !ok {
			errs.Add(unknownProduct(row.Line, row.ProductCode))
			continue
		}
		cmd.Items = append(cmd.Items, trade.PurchaseCommand{
			ProductID:         product.ID,
			Quantity:          row.Quantity,
			UnitCost:          row.UnitCost,
			TotalKg:           row.TotalKg,
			ShippingCostPerKg: row.ShippingCostPerKg,
			PurchasedAt:       row.Date,
			Description:       row.Description,
		})
	}

	result = newResult(len(rows), errs)
	if len(cmd.Items) > 0 {
		bulk, err := s.purchases.BulkCreate(ctx, tenantID, cmd)
		if err != nil {
			return nil, err
		}
		result.Bulk = *bulk
	}

	logger.L(ctx).Info("purchase file imported",
		zap.Int("rows", result.AcceptedRows),
		zap.Int("rejected", result.TotalErrors),
		zap.Int("applied", result.Bulk.SuccessCount),
	)
	return result, nil
}

// ImportSales reads a sale CSV and applies it as one bulk sale. Lines with an
// unknown product code are reported and dropped before the bulk run.
func (s *Service) ImportSales(ctx context.Context, tenantID uuid.UUID, r io.Reader, batchKey string) (result *Result, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "import_sales",
		telemetry.WithAttribute(telemetry.SpanAttrBatchKey, batchKey),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	orders, errs, err := csvimport.DecodeSales(r, s.opts)
	if err != nil {
		return nil, fileError(err)
	}

	var codes []string
	lineCount := 0
	for _, o := range orders {
		for _, l := range o.Lines {
			codes = append(codes, l.ProductCode)
			lineCount++
		}
	}
	products, err := s.repos.Products().FindByCodes(ctx, tenantID, codes)
	if err != nil {
		return nil, err
	}

	cmd := trade.BulkSaleCommand{BatchKey: batchKey, Orders: make([]trade.BulkSaleOrder, 0, len(orders))}
	for _, o := range orders {
		order := trade.BulkSaleOrder{
			ExternalRef:  o.Ref,
			CustomerName: o.CustomerName,
			Phone:        o.Phone,
			Address:      o.Address,
			SaleDate:     o.Date,
			ShippingCost: o.ShippingCost,
		}
		for _, l := range o.Lines {
			product, ok := products[l.ProductCode]
			if !ok {
				errs.Add(unknownProduct(l.Line, l.ProductCode))
				continue
			}
			order.Lines = append(order.Lines, trade.BulkSaleLine{
				ProductID: product.ID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			})
		}
		cmd.Orders = append(cmd.Orders, order)
	}

	result = newResult(lineCount, errs)
	if len(cmd.Orders) > 0 {
		bulk, err := s.sales.BulkCreate(ctx, tenantID, cmd)
		if err != nil {
			return nil, err
		}
		result.Bulk = *bulk
	}

	logger.L(ctx).Info("sale file imported",
		zap.Int("orders", len(cmd.Orders)),
		zap.Int("rejected", result.TotalErrors),
		zap.Int("applied", result.Bulk.SuccessCount),
	)
	return result, nil
}

func newResult(rows int, errs *csvimport.ErrorCollection) *Result {
	return &Result{
		AcceptedRows: rows,
		RowErrors:    errs.Errors(),
		TotalErrors:  errs.TotalCount(),
		IsTruncated:  errs.IsTruncated(),
	}
}

func unknownProduct(line int, code string) csvimport.RowError {
	return csvimport.RowError{
		Row:     line,
		Column:  csvimport.ColProductCode,
		Code:    csvimport.ErrCodeUnknownRef,
		Message: fmt.Sprintf("product '%s' not found", code),
		Value:   code,
	}
}

// fileError turns a file-level decode failure into a business rule error
func fileError(err error) error {
	return shared.NewBusinessRuleError("Invalid import file", err.Error())
}
