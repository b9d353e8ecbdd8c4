package inventory_test

import (
	"context"
	"testing"

	"github.com/erp/retail/internal/application/inventory"
	domain "github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/erp/retail/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) (*inventory.LedgerService, *testutil.Store) {
	t.Helper()
	store := testutil.NewSQLiteStore(t)
	return inventory.NewLedgerService(store.Scope, store.Repos), store
}

func createProduct(t *testing.T, svc *inventory.LedgerService, name string, cost int64, stock int) *inventory.ProductResponse {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), testutil.TestTenantID(), inventory.CreateProductCommand{
		Name:         name,
		CostPrice:    decimal.NewFromInt(cost),
		Price:        decimal.NewFromInt(cost * 2),
		InitialStock: stock,
	})
	require.NoError(t, err)
	return p
}

func TestLedgerService_RecordOpeningStock(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()

	t.Run("non-positive quantity records nothing", func(t *testing.T) {
		svc, _ := newLedger(t)
		p := createProduct(t, svc, "Olive Oil", 10, 0)

		event, err := svc.RecordOpeningStock(ctx, tenantID, p.ID, 0, decimal.NewFromInt(4))
		require.NoError(t, err)
		assert.Nil(t, event)

		events, err := svc.ListStockEvents(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("appends an opening event with its total", func(t *testing.T) {
		svc, _ := newLedger(t)
		p := createProduct(t, svc, "Olive Oil", 10, 0)

		event, err := svc.RecordOpeningStock(ctx, tenantID, p.ID, 3, decimal.NewFromInt(4))
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "opening", event.Kind)
		assert.Equal(t, domain.OpeningStockReason, event.Reason)
		assert.True(t, decimal.NewFromInt(12).Equal(event.TotalCost))
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		svc, _ := newLedger(t)
		_, err := svc.RecordOpeningStock(ctx, tenantID, uuid.New(), 3, decimal.NewFromInt(4))
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestLedgerService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()

	t.Run("applies the delta and records it at cost price", func(t *testing.T) {
		svc, _ := newLedger(t)
		p := createProduct(t, svc, "Green Tea", 5, 10)

		result, err := svc.AdjustStock(ctx, tenantID, inventory.AdjustStockCommand{
			ProductID: p.ID,
			Delta:     -4,
			Reason:    "damaged",
		})
		require.NoError(t, err)
		assert.Equal(t, 6, result.NewStock)
		assert.Equal(t, p.Version+1, result.Version)

		events, err := svc.ListStockEvents(ctx, tenantID, p.ID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		var adjustment *inventory.StockEventResponse
		for i := range events {
			if events[i].Kind == "adjustment" {
				adjustment = &events[i]
			}
		}
		require.NotNil(t, adjustment)
		assert.Equal(t, -4, adjustment.Quantity)
		assert.Equal(t, "[ADJUSTMENT] damaged", adjustment.Reason)
		assert.True(t, decimal.NewFromInt(-20).Equal(adjustment.TotalCost))
	})

	t.Run("explicit unit cost wins over cost price", func(t *testing.T) {
		svc, _ := newLedger(t)
		p := createProduct(t, svc, "Green Tea", 5, 0)
		cost := decimal.NewFromInt(8)

		_, err := svc.AdjustStock(ctx, tenantID, inventory.AdjustStockCommand{ProductID: p.ID, Delta: 2, UnitCost: &cost})
		require.NoError(t, err)

		events, err := svc.ListStockEvents(ctx, tenantID, p.ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, cost.Equal(events[0].UnitCost))
	})

	t.Run("refuses to go below zero and changes nothing", func(t *testing.T) {
		svc, _ := newLedger(t)
		p := createProduct(t, svc, "Green Tea", 5, 3)

		_, err := svc.AdjustStock(ctx, tenantID, inventory.AdjustStockCommand{ProductID: p.ID, Delta: -4})
		require.Error(t, err)
		assert.True(t, shared.IsBusinessRule(err))
		assert.Equal(t, "Invalid stock adjustment", shared.AsDomainError(err).Title)

		after, err := svc.GetProduct(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, after.Stock)
		assert.Equal(t, p.Version, after.Version)

		events, err := svc.ListStockEvents(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("zero delta fails validation", func(t *testing.T) {
		svc, _ := newLedger(t)
		_, err := svc.AdjustStock(ctx, tenantID, inventory.AdjustStockCommand{ProductID: uuid.New()})
		assert.True(t, shared.IsBusinessRule(err))
	})

	t.Run("missing tenant is unauthorized", func(t *testing.T) {
		svc, _ := newLedger(t)
		_, err := svc.AdjustStock(ctx, uuid.Nil, inventory.AdjustStockCommand{ProductID: uuid.New(), Delta: 1})
		assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
	})
}

func TestLedgerService_AverageUnitCost(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	svc, _ := newLedger(t)

	weighted := createProduct(t, svc, "Coffee Beans", 5, 0)
	_, err := svc.RecordOpeningStock(ctx, tenantID, weighted.ID, 10, decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = svc.RecordOpeningStock(ctx, tenantID, weighted.ID, 30, decimal.NewFromInt(9))
	require.NoError(t, err)

	noHistory := createProduct(t, svc, "Sugar", 7, 0)

	drained := createProduct(t, svc, "Flour", 3, 2)
	four := decimal.NewFromInt(4)
	_, err = svc.AdjustStock(ctx, tenantID, inventory.AdjustStockCommand{ProductID: drained.ID, Delta: -2, UnitCost: &four})
	require.NoError(t, err)

	unknown := uuid.New()

	costs, err := svc.AverageUnitCost(ctx, tenantID, []uuid.UUID{weighted.ID, noHistory.ID, drained.ID, unknown})
	require.NoError(t, err)
	require.Len(t, costs, 4)
	// (10*5 + 30*9) / 40 = 8
	assert.True(t, decimal.NewFromInt(8).Equal(costs[weighted.ID]), costs[weighted.ID].String())
	assert.True(t, decimal.NewFromInt(7).Equal(costs[noHistory.ID]))
	assert.True(t, decimal.NewFromInt(3).Equal(costs[drained.ID]))
	assert.True(t, decimal.Zero.Equal(costs[unknown]))

	empty, err := svc.AverageUnitCost(ctx, tenantID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLedgerService_GenerateCode(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	svc, _ := newLedger(t)

	code, err := svc.GenerateCode(ctx, tenantID, "   ")
	require.NoError(t, err)
	assert.Equal(t, domain.BlankNameCode, code)

	code, err = svc.GenerateCode(ctx, tenantID, "Red Apple")
	require.NoError(t, err)
	assert.Equal(t, "RA101", code)

	first := createProduct(t, svc, "Red Apple", 1, 0)
	assert.Equal(t, "RA101", first.Code)
	second := createProduct(t, svc, "Ripe Avocado", 1, 0)
	assert.Equal(t, "RA102", second.Code)

	code, err = svc.GenerateCode(ctx, testutil.OtherTenantID(), "Red Apple")
	require.NoError(t, err)
	assert.Equal(t, "RA101", code)
}

func TestLedgerService_AdjustStockRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	svc, _ := newLedger(t)
	metrics, reader := testutil.NewBusinessMetrics(t)
	svc.SetMetrics(metrics)
	p := createProduct(t, svc, "Green Tea", 5, 3)

	_, err := svc.AdjustStock(ctx, tenantID, inventory.AdjustStockCommand{ProductID: p.ID, Delta: 4})
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, tenantID, inventory.AdjustStockCommand{ProductID: p.ID, Delta: -2})
	require.NoError(t, err)
	_, err = svc.AdjustStock(ctx, tenantID, inventory.AdjustStockCommand{ProductID: p.ID, Delta: -50})
	require.True(t, shared.IsBusinessRule(err))

	assert.Equal(t, int64(1), reader.CounterValue(t, "retail_stock_adjustment_total", telemetry.AttrStockDirection.String("in")))
	assert.Equal(t, int64(1), reader.CounterValue(t, "retail_stock_adjustment_total", telemetry.AttrStockDirection.String("out")))
}
