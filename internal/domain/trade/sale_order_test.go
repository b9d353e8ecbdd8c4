package trade

import (
	"testing"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSale(t *testing.T, lines ...LineInput) *SaleOrder {
	t.Helper()
	o, err := NewSaleOrder(uuid.New(), "240301-1", SaleDetails{
		CustomerID: uuid.New(),
		SaleDate:   time.Now(),
	}, lines)
	require.NoError(t, err)
	return o
}

func TestNewSaleOrder(t *testing.T) {
	productID := uuid.New()

	t.Run("computes line and order totals", func(t *testing.T) {
		o := newTestSale(t, LineInput{ProductID: productID, Quantity: 3, UnitPrice: decimal.NewFromInt(20)})

		assert.Equal(t, ShippingStatusReceived, o.ShippingStatus)
		assert.Equal(t, 1, o.Version)
		require.Len(t, o.Lines, 1)
		assert.True(t, o.Lines[0].LineTotal.Equal(decimal.NewFromInt(60)))
		assert.Equal(t, o.ID, o.Lines[0].SaleID)
		assert.Equal(t, o.TenantID, o.Lines[0].TenantID)
		assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(60)))
	})

	t.Run("requires at least one line", func(t *testing.T) {
		_, err := NewSaleOrder(uuid.New(), "240301-1", SaleDetails{CustomerID: uuid.New(), SaleDate: time.Now()}, nil)
		require.Error(t, err)
		assert.True(t, shared.IsBusinessRule(err))
	})

	t.Run("requires a customer", func(t *testing.T) {
		_, err := NewSaleOrder(uuid.New(), "240301-1", SaleDetails{SaleDate: time.Now()},
			[]LineInput{{ProductID: productID, Quantity: 1}})
		assert.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewSaleOrder(uuid.New(), "240301-1", SaleDetails{CustomerID: uuid.New(), SaleDate: time.Now()},
			[]LineInput{{ProductID: productID, Quantity: 0, UnitPrice: decimal.NewFromInt(1)}})
		assert.Error(t, err)
	})

	t.Run("rejects negative unit price", func(t *testing.T) {
		_, err := NewSaleOrder(uuid.New(), "240301-1", SaleDetails{CustomerID: uuid.New(), SaleDate: time.Now()},
			[]LineInput{{ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}})
		assert.Error(t, err)
	})

	t.Run("tolerates a sale date a few minutes ahead", func(t *testing.T) {
		_, err := NewSaleOrder(uuid.New(), "240301-1", SaleDetails{CustomerID: uuid.New(), SaleDate: time.Now().Add(2 * time.Minute)},
			[]LineInput{{ProductID: productID, Quantity: 1}})
		assert.NoError(t, err)
	})

	t.Run("rejects a sale date far in the future", func(t *testing.T) {
		_, err := NewSaleOrder(uuid.New(), "240301-1", SaleDetails{CustomerID: uuid.New(), SaleDate: time.Now().Add(time.Hour)},
			[]LineInput{{ProductID: productID, Quantity: 1}})
		assert.Error(t, err)
	})
}

func TestSaleOrder_TotalAmount(t *testing.T) {
	productID := uuid.New()

	t.Run("adds shipping and subtracts manual discount", func(t *testing.T) {
		o := newTestSale(t, LineInput{ProductID: productID, Quantity: 2, UnitPrice: decimal.NewFromInt(50)})
		require.NoError(t, o.Update(SaleDetails{
			CustomerID:         o.CustomerID,
			SaleDate:           o.SaleDate,
			ShippingCost:       decimal.NewFromInt(15),
			ManualDiscount:     decimal.NewFromInt(10),
			PlatformCommission: decimal.NewFromInt(7),
		}))

		assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(105)), "commission does not change the total")
	})

	t.Run("never goes below zero", func(t *testing.T) {
		o := newTestSale(t, LineInput{ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)})
		require.NoError(t, o.Update(SaleDetails{
			CustomerID:     o.CustomerID,
			SaleDate:       o.SaleDate,
			ManualDiscount: decimal.NewFromInt(50),
		}))

		assert.True(t, o.TotalAmount.IsZero())
	})
}

func TestSaleOrder_ReplaceLines(t *testing.T) {
	productID := uuid.New()
	o := newTestSale(t, LineInput{ProductID: productID, Quantity: 3, UnitPrice: decimal.NewFromInt(20)})

	require.NoError(t, o.ReplaceLines([]LineInput{{ProductID: productID, Quantity: 5, UnitPrice: decimal.NewFromInt(20)}}))

	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, map[uuid.UUID]int{productID: 5}, o.StockDemand())

	t.Run("invalid replacement keeps current lines", func(t *testing.T) {
		err := o.ReplaceLines(nil)
		require.Error(t, err)
		assert.Len(t, o.Lines, 1)
		assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(100)))
	})
}

func TestSaleOrder_StockDemandMergesDuplicateProducts(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	o := newTestSale(t,
		LineInput{ProductID: a, Quantity: 2, UnitPrice: decimal.NewFromInt(1)},
		LineInput{ProductID: b, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		LineInput{ProductID: a, Quantity: 4, UnitPrice: decimal.NewFromInt(1)},
	)

	assert.Equal(t, map[uuid.UUID]int{a: 6, b: 1}, o.StockDemand())
	assert.Len(t, o.ProductIDs(), 2)
}

func TestSaleOrder_UpdateShippingStatus(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name    string
		from    ShippingStatus
		to      ShippingStatus
		changed bool
		wantErr bool
	}{
		{"received to preparing", ShippingStatusReceived, ShippingStatusPreparing, true, false},
		{"preparing to shipped", ShippingStatusPreparing, ShippingStatusShipped, true, false},
		{"shipped to delivered", ShippingStatusShipped, ShippingStatusDelivered, true, false},
		{"received to cancelled", ShippingStatusReceived, ShippingStatusCancelled, true, false},
		{"delivered to returned", ShippingStatusDelivered, ShippingStatusReturned, true, false},
		{"same status is a no-op", ShippingStatusShipped, ShippingStatusShipped, false, false},
		{"cannot skip back", ShippingStatusDelivered, ShippingStatusPreparing, false, true},
		{"cancelled is terminal", ShippingStatusCancelled, ShippingStatusShipped, false, true},
		{"received cannot be returned", ShippingStatusReceived, ShippingStatusReturned, false, true},
		{"unknown status", ShippingStatusReceived, ShippingStatus(42), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestSale(t, LineInput{ProductID: productID, Quantity: 1})
			o.ShippingStatus = tt.from

			changed, err := o.UpdateShippingStatus(tt.to)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.from, o.ShippingStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.to, o.ShippingStatus)
		})
	}
}

func TestOrderCode(t *testing.T) {
	day := time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "240309-1", OrderCode(day, 1))
	assert.Equal(t, "240309-12", OrderCode(day, 12))
}

func TestSortedIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-0000000000ff")
	c := uuid.MustParse("f0000000-0000-0000-0000-000000000000")

	ids := SortedIDs(map[uuid.UUID]int{c: 1, a: 1, b: 1})

	assert.Equal(t, []uuid.UUID{a, b, c}, ids)
}

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer(uuid.New(), CustomerDetails{
		Name:  " Ayşe Yılmaz ",
		Phone: "+90 (532) 111-22-33",
		Email: " Ayse@Example.COM ",
	})

	require.NoError(t, err)
	assert.Equal(t, "Ayşe Yılmaz", c.Name)
	assert.Equal(t, "905321112233", c.Phone)
	assert.Equal(t, "ayse@example.com", c.Email)
	assert.Contains(t, c.SearchText, "ayse yilmaz")

	_, err = NewCustomer(uuid.New(), CustomerDetails{Name: "  "})
	assert.Error(t, err)
}

func TestNewCustomerSpend(t *testing.T) {
	spend := NewCustomerSpend(uuid.New(), decimal.NewFromInt(300), decimal.NewFromInt(120))
	assert.True(t, spend.Remaining.Equal(decimal.NewFromInt(180)))
}

func TestBulkResult(t *testing.T) {
	var r BulkResult
	r.Succeeded()
	r.Skip("row %d: product %s not found", 2, "KB101")

	assert.Equal(t, 1, r.SuccessCount)
	assert.Equal(t, 1, r.SkippedCount)
	assert.Equal(t, []string{"row 2: product KB101 not found"}, r.Errors)
}
