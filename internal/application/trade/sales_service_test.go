package trade_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	appfinance "github.com/erp/retail/internal/application/finance"
	"github.com/erp/retail/internal/application/trade"
	finance "github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	domain "github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/cache"
	"github.com/erp/retail/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) customer(t *testing.T, name string) uuid.UUID {
	t.Helper()
	c, _, err := f.sales.GetOrCreateCustomer(context.Background(), testutil.TestTenantID(), trade.CustomerCommand{Name: name})
	require.NoError(t, err)
	return c.ID
}

func line(productID uuid.UUID, qty int, price int64) trade.SaleLineCommand {
	return trade.SaleLineCommand{ProductID: productID, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func saleCommand(customerID uuid.UUID, lines ...trade.SaleLineCommand) trade.CreateSaleCommand {
	return trade.CreateSaleCommand{
		CustomerID: customerID,
		SaleDate:   time.Now().Add(-time.Minute),
		Lines:      lines,
	}
}

func updateCommand(sale *trade.SaleResponse, lines ...trade.SaleLineCommand) trade.UpdateSaleCommand {
	return trade.UpdateSaleCommand{
		Version:    sale.Version,
		CustomerID: sale.CustomerID,
		SaleDate:   sale.SaleDate,
		Lines:      lines,
	}
}

func TestSalesService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	cup := f.product(t, "Cup", 4)
	deniz := f.customer(t, "Deniz")

	cmd := saleCommand(deniz, line(tea, 3, 20), line(cup, 1, 15), line(tea, 1, 20))
	cmd.ShippingCost = decimal.NewFromInt(12)
	cmd.ManualDiscount = decimal.NewFromInt(7)

	sale, err := f.sales.Create(ctx, tenantID, cmd)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderCode(time.Now(), 1), sale.OrderCode)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(100)), "80 + 15 + 12 - 7")
	assert.Equal(t, "RECEIVED", sale.ShippingStatus)
	assert.Len(t, sale.Lines, 3)
	assert.Equal(t, 6, f.stock(t, tea))
	assert.Equal(t, 3, f.stock(t, cup))
	assert.Zero(t, f.ledgerCount(t), "a sale books no money on its own")

	second, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(cup, 1, 15)))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCode(time.Now(), 2), second.OrderCode)
}

func TestSalesService_CreateAllowsNegativeStock(t *testing.T) {
	f := newFixture(t)
	tea := f.product(t, "Tea", 2)
	deniz := f.customer(t, "Deniz")

	_, err := f.sales.Create(context.Background(), testutil.TestTenantID(), saleCommand(deniz, line(tea, 5, 20)))
	require.NoError(t, err)
	assert.Equal(t, -3, f.stock(t, tea))
}

func TestSalesService_CreateRollsBackOnUnknownProduct(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")

	_, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 3, 20), line(uuid.New(), 1, 5)))
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, 10, f.stock(t, tea))

	list, err := f.sales.List(ctx, tenantID, trade.SaleListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestSalesService_CreateRejects(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")

	t.Run("unknown customer", func(t *testing.T) {
		_, err := f.sales.Create(ctx, tenantID, saleCommand(uuid.New(), line(tea, 1, 20)))
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("no lines", func(t *testing.T) {
		_, err := f.sales.Create(ctx, tenantID, saleCommand(deniz))
		assert.True(t, shared.IsBusinessRule(err))
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 0, 20)))
		assert.True(t, shared.IsBusinessRule(err))
	})

	t.Run("future date", func(t *testing.T) {
		cmd := saleCommand(deniz, line(tea, 1, 20))
		cmd.SaleDate = time.Now().Add(24 * time.Hour)
		_, err := f.sales.Create(ctx, tenantID, cmd)
		assert.True(t, shared.IsBusinessRule(err))
	})

	assert.Equal(t, 10, f.stock(t, tea))
}

func TestSalesService_UpdateAppliesNetDifference(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	cup := f.product(t, "Cup", 10)
	pot := f.product(t, "Pot", 10)
	deniz := f.customer(t, "Deniz")

	sale, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 3, 20), line(cup, 2, 15)))
	require.NoError(t, err)
	require.Equal(t, 7, f.stock(t, tea))
	require.Equal(t, 8, f.stock(t, cup))

	updated, err := f.sales.Update(ctx, tenantID, sale.ID, updateCommand(sale, line(tea, 5, 20), line(pot, 1, 40)))
	require.NoError(t, err)

	assert.Equal(t, 5, f.stock(t, tea))
	assert.Equal(t, 10, f.stock(t, cup))
	assert.Equal(t, 9, f.stock(t, pot))
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(140)))
	assert.Equal(t, sale.Version+1, updated.Version)
	assert.Equal(t, sale.OrderCode, updated.OrderCode)

	got, err := f.sales.Get(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
}

func TestSalesService_UpdateStaleVersion(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")

	sale, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 1, 20)))
	require.NoError(t, err)

	_, err = f.sales.Update(ctx, tenantID, sale.ID, updateCommand(sale, line(tea, 2, 20)))
	require.NoError(t, err)

	_, err = f.sales.Update(ctx, tenantID, sale.ID, updateCommand(sale, line(tea, 9, 20)))
	require.Error(t, err)
	assert.True(t, shared.IsConflict(err))
	assert.Equal(t, 8, f.stock(t, tea), "the stale edit changed nothing")
}

func TestSalesService_UpdateUnknownProductRollsBack(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")

	sale, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 4, 20)))
	require.NoError(t, err)

	_, err = f.sales.Update(ctx, tenantID, sale.ID, updateCommand(sale, line(uuid.New(), 1, 20)))
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, 6, f.stock(t, tea))

	got, err := f.sales.Get(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.Version, got.Version)
}

func TestSalesService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")

	sale, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 4, 20), line(tea, 2, 18)))
	require.NoError(t, err)
	require.Equal(t, 4, f.stock(t, tea))

	require.NoError(t, f.sales.Delete(ctx, tenantID, sale.ID))
	assert.Equal(t, 10, f.stock(t, tea))

	_, err = f.sales.Get(ctx, tenantID, sale.ID)
	assert.True(t, shared.IsNotFound(err))
	assert.True(t, shared.IsNotFound(f.sales.Delete(ctx, tenantID, sale.ID)))
}

func TestSalesService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")

	sale, err := f.sales.Create(ctx, testutil.TestTenantID(), saleCommand(deniz, line(tea, 1, 20)))
	require.NoError(t, err)

	other := testutil.OtherTenantID()
	_, err = f.sales.Get(ctx, other, sale.ID)
	assert.True(t, shared.IsNotFound(err))
	assert.True(t, shared.IsNotFound(f.sales.Delete(ctx, other, sale.ID)))
	_, err = f.sales.Create(ctx, other, saleCommand(deniz, line(tea, 1, 20)))
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, 9, f.stock(t, tea))
}

func TestSalesService_UpdateShippingStatus(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")

	sale, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 1, 20)))
	require.NoError(t, err)

	same, err := f.sales.UpdateShippingStatus(ctx, tenantID, sale.ID, domain.ShippingStatusReceived)
	require.NoError(t, err)
	assert.Equal(t, sale.Version, same.Version)

	preparing, err := f.sales.UpdateShippingStatus(ctx, tenantID, sale.ID, domain.ShippingStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, "PREPARING", preparing.ShippingStatus)
	assert.Equal(t, sale.Version+1, preparing.Version)

	_, err = f.sales.UpdateShippingStatus(ctx, tenantID, sale.ID, domain.ShippingStatusDelivered)
	assert.True(t, shared.IsBusinessRule(err))

	cancelled, err := f.sales.UpdateShippingStatus(ctx, tenantID, sale.ID, domain.ShippingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.ShippingStatus)
	assert.Equal(t, 9, f.stock(t, tea), "shipping status never moves stock")
}

func TestSalesService_ConcurrentSalesKeepStockExact(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 20)
	cup := f.product(t, "Cup", 20)
	deniz := f.customer(t, "Deniz")

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lines := []trade.SaleLineCommand{line(tea, 1, 20), line(cup, 2, 15)}
			if i%2 == 1 {
				lines = []trade.SaleLineCommand{line(cup, 2, 15), line(tea, 1, 20)}
			}
			_, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, lines...))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 10, f.stock(t, tea))
	assert.Equal(t, 0, f.stock(t, cup))
}

func TestSalesService_BulkCreate(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	cup := f.product(t, "Cup", 10)
	deniz := f.customer(t, "Deniz")

	result, err := f.sales.BulkCreate(ctx, tenantID, trade.BulkSaleCommand{
		Orders: []trade.BulkSaleOrder{
			{
				CustomerName: "Deniz",
				ExternalRef:  "ETSY-1",
				ShippingCost: decimal.NewFromInt(5),
				Lines: []trade.BulkSaleLine{
					{ProductID: tea, Quantity: 2, UnitPrice: decimal.NewFromInt(20)},
					{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(20)},
				},
			},
			{
				CustomerName: "",
				Lines:        []trade.BulkSaleLine{{ProductID: cup, Quantity: 3, UnitPrice: decimal.NewFromInt(15)}},
			},
			{
				CustomerName: "Ayla",
				Lines: []trade.BulkSaleLine{
					{ProductID: cup, Quantity: 0, UnitPrice: decimal.NewFromInt(15)},
					{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(15)},
				},
			},
			{
				CustomerName: "Mert",
				Phone:        "555-0101",
				Lines:        []trade.BulkSaleLine{{ProductID: tea, Quantity: 1, UnitPrice: decimal.NewFromInt(20)}},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, []string{"Order 3 (Ayla): no valid line items"}, result.Errors)
	assert.Equal(t, 7, f.stock(t, tea))
	assert.Equal(t, 7, f.stock(t, cup))

	list, err := f.sales.List(ctx, tenantID, trade.SaleListFilter{PageSize: 50})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	codes := map[string]bool{}
	for _, s := range list.Items {
		codes[s.OrderCode] = true
	}
	for n := int64(1); n <= 3; n++ {
		assert.True(t, codes[domain.OrderCode(time.Now(), n)], "missing code %d", n)
	}

	customers, err := f.sales.ListCustomers(ctx, tenantID, "", 1, 50)
	require.NoError(t, err)
	names := make([]string, 0, len(customers.Items))
	for _, c := range customers.Items {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Deniz", domain.GuestCustomerName, "Mert"}, names)

	spend, err := f.sales.CustomerSpend(ctx, tenantID, deniz)
	require.NoError(t, err)
	assert.True(t, spend.TotalSold.Equal(decimal.NewFromInt(45)))
}

func TestSalesService_BulkCreateSkippedOrderStoresNoCustomer(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	teaLine := []trade.BulkSaleLine{{ProductID: tea, Quantity: 1, UnitPrice: decimal.NewFromInt(20)}}
	future := time.Now().Add(48 * time.Hour)

	result, err := f.sales.BulkCreate(ctx, tenantID, trade.BulkSaleCommand{
		Orders: []trade.BulkSaleOrder{
			{CustomerName: "Zed", SaleDate: future, Lines: teaLine},
			{CustomerName: "Nova", SaleDate: future, Lines: teaLine},
			{CustomerName: "Zed", Lines: teaLine},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.SkippedCount)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Order 1 (Zed)")
	assert.Contains(t, result.Errors[1], "Order 2 (Nova)")
	assert.Equal(t, 9, f.stock(t, tea))

	customers, err := f.sales.ListCustomers(ctx, tenantID, "", 1, 50)
	require.NoError(t, err)
	require.Len(t, customers.Items, 1)
	assert.Equal(t, "Zed", customers.Items[0].Name)
}

func TestSalesService_BulkCreateReplay(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)

	store := cache.NewInMemoryBatchStore(0)
	t.Cleanup(func() { _ = store.Close() })
	f.sales.SetIdempotencyStore(store, time.Hour)

	cmd := trade.BulkSaleCommand{
		BatchKey: "orders-2026-01",
		Orders: []trade.BulkSaleOrder{{
			CustomerName: "Deniz",
			Lines:        []trade.BulkSaleLine{{ProductID: tea, Quantity: 4, UnitPrice: decimal.NewFromInt(20)}},
		}},
	}

	first, err := f.sales.BulkCreate(ctx, tenantID, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SuccessCount)

	again, err := f.sales.BulkCreate(ctx, tenantID, cmd)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, 6, f.stock(t, tea))

	fresh := cmd
	fresh.BatchKey = "orders-2026-02"
	_, err = f.sales.BulkCreate(ctx, tenantID, fresh)
	require.NoError(t, err)
	assert.Equal(t, 2, f.stock(t, tea))
}

func TestSalesService_GetOrCreateCustomer(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)

	first, created, err := f.sales.GetOrCreateCustomer(ctx, tenantID, trade.CustomerCommand{Name: "  Deniz ", Phone: "555"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Deniz", first.Name)

	again, created, err := f.sales.GetOrCreateCustomer(ctx, tenantID, trade.CustomerCommand{Name: "Deniz"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	other, created, err := f.sales.GetOrCreateCustomer(ctx, testutil.OtherTenantID(), trade.CustomerCommand{Name: "Deniz"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)

	_, _, err = f.sales.GetOrCreateCustomer(ctx, tenantID, trade.CustomerCommand{Name: ""})
	assert.True(t, shared.IsBusinessRule(err))
}

func TestSalesService_CustomerSpend(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")
	fin := appfinance.NewFinanceService(f.store.Scope, f.store.Repos)

	paid, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 2, 30)))
	require.NoError(t, err)
	_, err = f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 1, 40)))
	require.NoError(t, err)
	_, err = fin.RegisterSaleRevenue(ctx, tenantID, paid.ID, appfinance.RegisterRevenueCommand{})
	require.NoError(t, err)

	spend, err := f.sales.CustomerSpend(ctx, tenantID, deniz)
	require.NoError(t, err)
	assert.True(t, spend.TotalSold.Equal(decimal.NewFromInt(100)), fmt.Sprint(spend.TotalSold))
	assert.True(t, spend.Collected.Equal(decimal.NewFromInt(60)))
	assert.True(t, spend.Remaining.Equal(decimal.NewFromInt(40)))

	_, err = f.sales.CustomerSpend(ctx, tenantID, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}

func TestSalesService_ListFilters(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)
	deniz := f.customer(t, "Deniz")
	ayla := f.customer(t, "Ayla")

	old := saleCommand(deniz, line(tea, 1, 20))
	old.SaleDate = time.Now().AddDate(0, 0, -10)
	_, err := f.sales.Create(ctx, tenantID, old)
	require.NoError(t, err)
	recent, err := f.sales.Create(ctx, tenantID, saleCommand(ayla, line(tea, 1, 20)))
	require.NoError(t, err)

	all, err := f.sales.List(ctx, tenantID, trade.SaleListFilter{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, recent.ID, all.Items[0].ID)

	byCustomer, err := f.sales.List(ctx, tenantID, trade.SaleListFilter{CustomerID: &ayla})
	require.NoError(t, err)
	require.Len(t, byCustomer.Items, 1)
	assert.Equal(t, recent.ID, byCustomer.Items[0].ID)

	start := time.Now().AddDate(0, 0, -2)
	byDate, err := f.sales.List(ctx, tenantID, trade.SaleListFilter{StartDate: &start})
	require.NoError(t, err)
	assert.Len(t, byDate.Items, 1)
}

func TestSalesService_UpdateCustomer(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	deniz := f.customer(t, "Deniz")

	updated, err := f.sales.UpdateCustomer(ctx, tenantID, deniz, trade.CustomerCommand{
		Name:    " Deniz Kaya ",
		Phone:   "+90 (555) 010-1010",
		Email:   "Deniz@Example.com",
		Address: "Kadikoy",
	})
	require.NoError(t, err)
	assert.Equal(t, deniz, updated.ID)
	assert.Equal(t, "Deniz Kaya", updated.Name)
	assert.Equal(t, "Kadikoy", updated.Address)

	got, err := f.sales.GetCustomer(ctx, tenantID, deniz)
	require.NoError(t, err)
	assert.Equal(t, "Deniz Kaya", got.Name)
	assert.Equal(t, updated.Phone, got.Phone)

	_, err = f.sales.UpdateCustomer(ctx, tenantID, deniz, trade.CustomerCommand{})
	assert.True(t, shared.IsBusinessRule(err))

	_, err = f.sales.UpdateCustomer(ctx, tenantID, uuid.New(), trade.CustomerCommand{Name: "Nobody"})
	assert.True(t, shared.IsNotFound(err))

	_, err = f.sales.UpdateCustomer(ctx, testutil.OtherTenantID(), deniz, trade.CustomerCommand{Name: "Thief"})
	assert.True(t, shared.IsNotFound(err))
}

func TestSalesService_DeleteCustomer(t *testing.T) {
	ctx := context.Background()
	tenantID := testutil.TestTenantID()
	f := newFixture(t)
	tea := f.product(t, "Tea", 10)

	t.Run("unreferenced customer is removed", func(t *testing.T) {
		ayla := f.customer(t, "Ayla")
		require.NoError(t, f.sales.DeleteCustomer(ctx, tenantID, ayla))

		_, err := f.sales.GetCustomer(ctx, tenantID, ayla)
		assert.True(t, shared.IsNotFound(err))

		err = f.sales.DeleteCustomer(ctx, tenantID, ayla)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("customer with a sale is kept", func(t *testing.T) {
		deniz := f.customer(t, "Deniz")
		_, err := f.sales.Create(ctx, tenantID, saleCommand(deniz, line(tea, 1, 20)))
		require.NoError(t, err)

		err = f.sales.DeleteCustomer(ctx, tenantID, deniz)
		require.Error(t, err)
		assert.True(t, shared.IsBusinessRule(err))
		assert.Contains(t, err.Error(), "1 sale(s)")

		_, err = f.sales.GetCustomer(ctx, tenantID, deniz)
		assert.NoError(t, err)
	})

	t.Run("customer with a payment is kept", func(t *testing.T) {
		mert := f.customer(t, "Mert")
		fin := appfinance.NewFinanceService(f.store.Scope, f.store.Repos)
		_, err := fin.CreatePayment(ctx, tenantID, appfinance.PaymentCommand{
			Category:   finance.CategoryOtherIncome,
			Method:     finance.PaymentMethodCash,
			Amount:     decimal.NewFromInt(30),
			Date:       time.Now().Add(-time.Hour),
			CustomerID: &mert,
		})
		require.NoError(t, err)

		err = f.sales.DeleteCustomer(ctx, tenantID, mert)
		assert.True(t, shared.IsBusinessRule(err))
		assert.Contains(t, err.Error(), "1 payment(s)")
	})
}
