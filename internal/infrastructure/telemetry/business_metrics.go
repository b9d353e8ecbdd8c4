package telemetry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when business metrics are built without a meter.
var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

// OrderType labels order metrics.
type OrderType string

const (
	OrderTypeSale     OrderType = "sale"
	OrderTypePurchase OrderType = "purchase"
)

// PaymentSource labels payment metrics.
type PaymentSource string

const (
	PaymentSourceManual      PaymentSource = "manual"
	PaymentSourceSaleRevenue PaymentSource = "sale_revenue"
)

// BusinessMetrics counts orders, payments, stock adjustments and bulk batch
// outcomes per tenant. A nil *BusinessMetrics records nothing.
type BusinessMetrics struct {
	orderCreatedTotal    *Counter
	orderAmountTotal     *Counter
	paymentTotal         *Counter
	paymentAmountTotal   *Counter
	stockAdjustmentTotal *Counter
	stockAdjustmentUnits *Histogram
	batchItemTotal       *Counter
}

// NewBusinessMetrics registers the business instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	counters := []struct {
		dst  **Counter
		name string
		desc string
		unit string
	}{
		{&bm.orderCreatedTotal, "retail_order_created_total", "Total number of orders created", "{orders}"},
		{&bm.orderAmountTotal, "retail_order_amount_total", "Total order amount in cents", "{cents}"},
		{&bm.paymentTotal, "retail_payment_total", "Total number of payments booked", "{payments}"},
		{&bm.paymentAmountTotal, "retail_payment_amount_total", "Total payment amount in cents", "{cents}"},
		{&bm.stockAdjustmentTotal, "retail_stock_adjustment_total", "Total number of manual stock adjustments", "{adjustments}"},
		{&bm.batchItemTotal, "retail_batch_item_total", "Bulk batch items by outcome", "{items}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	units, err := NewHistogram(meter, HistogramOpts{
		Name:        "retail_stock_adjustment_units",
		Description: "Units moved by one manual stock adjustment",
		Unit:        "{units}",
		Boundaries:  StockUnitBuckets,
	})
	if err != nil {
		return nil, err
	}
	bm.stockAdjustmentUnits = units

	return bm, nil
}

// RecordOrderWithAmount counts one created order and adds its amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, tenantID uuid.UUID, orderType OrderType, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrOrderType.String(string(orderType)),
	}
	bm.orderCreatedTotal.Inc(ctx, attrs...)
	if cents := toCents(amount); cents > 0 {
		bm.orderAmountTotal.Add(ctx, cents, attrs...)
	}
}

// RecordPayment counts one booked payment and adds its amount.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, source PaymentSource, method string, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrPaymentSource.String(string(source)),
		AttrPaymentMethod.String(method),
	}
	bm.paymentTotal.Inc(ctx, attrs...)
	if cents := toCents(amount); cents > 0 {
		bm.paymentAmountTotal.Add(ctx, cents, attrs...)
	}
}

// RecordStockAdjustment counts one manual adjustment and its size.
func (bm *BusinessMetrics) RecordStockAdjustment(ctx context.Context, tenantID uuid.UUID, delta int) {
	if bm == nil || delta == 0 {
		return
	}
	direction, units := "in", delta
	if delta < 0 {
		direction, units = "out", -delta
	}
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrStockDirection.String(direction),
	}
	bm.stockAdjustmentTotal.Inc(ctx, attrs...)
	bm.stockAdjustmentUnits.Record(ctx, float64(units), attrs...)
}

// RecordBatch adds the applied and skipped item counts of one bulk batch.
func (bm *BusinessMetrics) RecordBatch(ctx context.Context, tenantID uuid.UUID, kind string, applied, skipped int) {
	if bm == nil {
		return
	}
	tenant := AttrTenantID.String(tenantID.String())
	batchKind := AttrBatchKind.String(kind)
	if applied > 0 {
		bm.batchItemTotal.Add(ctx, int64(applied), tenant, batchKind, AttrBatchItemResult.String("applied"))
	}
	if skipped > 0 {
		bm.batchItemTotal.Add(ctx, int64(skipped), tenant, batchKind, AttrBatchItemResult.String("skipped"))
	}
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
