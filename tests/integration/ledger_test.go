//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/retail/internal/application/finance"
	"github.com/erp/retail/internal/application/inventory"
	"github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	ledger    *inventory.LedgerService
	finance   *finance.FinanceService
	purchases *trade.PurchaseService
	sales     *trade.SalesService
}

func newServices(t *testing.T) *services {
	t.Helper()
	tdb := NewTestDB(t)
	scope := persistence.NewGormTransactionScope(tdb.DB.DB)
	repos := persistence.NewGormRepositories(tdb.DB.DB)
	return &services{
		ledger:    inventory.NewLedgerService(scope, repos),
		finance:   finance.NewFinanceService(scope, repos),
		purchases: trade.NewPurchaseService(scope, repos),
		sales:     trade.NewSalesService(scope, repos),
	}
}

func tenantCtx(tenantID uuid.UUID) context.Context {
	return tenant.NewContext(context.Background(), tenantID)
}

func (s *services) product(t *testing.T, tenantID uuid.UUID, code string, stock int) *inventory.ProductResponse {
	t.Helper()
	p, err := s.ledger.CreateProduct(tenantCtx(tenantID), tenantID, inventory.CreateProductCommand{
		Code:         code,
		Name:         code,
		Price:        decimal.NewFromInt(20),
		CostPrice:    decimal.NewFromInt(8),
		InitialStock: stock,
	})
	require.NoError(t, err)
	return p
}

func (s *services) customer(t *testing.T, tenantID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	c, _, err := s.sales.GetOrCreateCustomer(tenantCtx(tenantID), tenantID, trade.CustomerCommand{Name: name})
	require.NoError(t, err)
	return c.ID
}

func saleOf(customerID, productID uuid.UUID, qty int) trade.CreateSaleCommand {
	return trade.CreateSaleCommand{
		CustomerID: customerID,
		SaleDate:   time.Now().Add(-time.Minute),
		Lines: []trade.SaleLineCommand{
			{ProductID: productID, Quantity: qty, UnitPrice: decimal.NewFromInt(20)},
		},
	}
}

func TestConcurrentStockMovementsConserveStock(t *testing.T) {
	s := newServices(t)
	tenantID := uuid.New()
	ctx := tenantCtx(tenantID)

	const initial, sellers, buyers = 50, 20, 10
	product := s.product(t, tenantID, "TEA-1", initial)
	customerID := s.customer(t, tenantID, "Deniz")

	var (
		wg              sync.WaitGroup
		mu              sync.Mutex
		sold, purchased int
		failures        []error
	)
	record := func(err error, ok *int, qty int) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures = append(failures, err)
			return
		}
		*ok += qty
	}

	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.sales.Create(ctx, tenantID, saleOf(customerID, product.ID, 1))
			record(err, &sold, 1)
		}()
	}
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.purchases.Create(ctx, tenantID, trade.PurchaseCommand{
				ProductID:   product.ID,
				Quantity:    3,
				UnitCost:    decimal.NewFromInt(7),
				PurchasedAt: time.Now(),
			})
			record(err, &purchased, 3)
		}()
	}
	wg.Wait()

	for _, err := range failures {
		assert.True(t, shared.IsConflict(err), "only concurrency conflicts may fail: %v", err)
	}

	got, err := s.ledger.GetProduct(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, initial-sold+purchased, got.Stock)
	assert.Equal(t, product.Version+sellers+buyers-len(failures), got.Version)

	events, err := s.ledger.ListStockEvents(ctx, tenantID, product.ID)
	require.NoError(t, err)
	history := 0
	for _, e := range events {
		history += e.Quantity
	}
	sales, err := s.sales.List(ctx, tenantID, trade.SaleListFilter{PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, got.Stock, history-int(sales.Total), "stock equals event history minus sold units")
}

func TestSaleRevenueAndRefundReachTheLedger(t *testing.T) {
	s := newServices(t)
	tenantID := uuid.New()
	ctx := tenantCtx(tenantID)

	product := s.product(t, tenantID, "CUP-1", 10)
	customerID := s.customer(t, tenantID, "Ayla")

	sale, err := s.sales.Create(ctx, tenantID, saleOf(customerID, product.ID, 2))
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(40)))

	payment, err := s.finance.RegisterSaleRevenue(ctx, tenantID, sale.ID, finance.RegisterRevenueCommand{})
	require.NoError(t, err)
	require.NotNil(t, payment)

	_, err = s.finance.RegisterSaleRevenue(ctx, tenantID, sale.ID, finance.RegisterRevenueCommand{})
	assert.True(t, shared.IsBusinessRule(err))

	_, err = s.finance.RefundSale(ctx, tenantID, sale.ID, finance.RefundCommand{Amount: decimal.NewFromInt(15), Reason: "broken"})
	require.NoError(t, err)

	stats, err := s.finance.SummaryStats(ctx, tenantID, shared.DateRange{})
	require.NoError(t, err)
	assert.True(t, stats.TotalIncome.Equal(decimal.NewFromInt(40)), stats.TotalIncome.String())
	assert.True(t, stats.TotalExpense.Equal(decimal.NewFromInt(15)), stats.TotalExpense.String())
	assert.True(t, stats.NetProfit.Equal(decimal.NewFromInt(25)), stats.NetProfit.String())
}

func TestStaleVersionIsAConflict(t *testing.T) {
	s := newServices(t)
	tenantID := uuid.New()
	ctx := tenantCtx(tenantID)

	product := s.product(t, tenantID, "BAG-1", 0)
	update := inventory.UpdateProductCommand{Version: product.Version, Name: "Bag", Price: decimal.NewFromInt(30)}

	_, err := s.ledger.UpdateProduct(ctx, tenantID, product.ID, update)
	require.NoError(t, err)

	_, err = s.ledger.UpdateProduct(ctx, tenantID, product.ID, update)
	assert.True(t, shared.IsConflict(err))
}

func TestTenantsAreIsolated(t *testing.T) {
	s := newServices(t)
	owner, other := uuid.New(), uuid.New()

	product := s.product(t, owner, "JAR-1", 5)

	_, err := s.ledger.GetProduct(tenantCtx(other), other, product.ID)
	assert.True(t, shared.IsNotFound(err))

	list, err := s.ledger.ListProducts(tenantCtx(other), other, inventory.ProductListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	_, err = s.ledger.AdjustStock(tenantCtx(other), other, inventory.AdjustStockCommand{ProductID: product.ID, Delta: 3})
	assert.True(t, shared.IsNotFound(err))

	got, err := s.ledger.GetProduct(tenantCtx(owner), owner, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestMigrationsRollBackAndReapply(t *testing.T) {
	tdb := NewTestDB(t)

	m := newMigrator(t, tdb.DSN)
	defer m.Close()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
	assert.False(t, dirty)

	require.NoError(t, m.Down(0))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, m.Up())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
}
