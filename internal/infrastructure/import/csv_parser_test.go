package csvimport

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	t.Run("BOM is stripped and headers normalized", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("\xEF\xBB\xBFProduct_Code, Quantity ,unit_cost\nA1,2,3"))
		require.NoError(t, err)
		assert.Equal(t, []string{"product_code", "quantity", "unit_cost"}, p.Headers())
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := NewParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("custom delimiter", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("a;b\n1;2"), WithDelimiter(';'))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, p.Headers())
	})

	t.Run("invalid UTF-8 header", func(t *testing.T) {
		_, err := NewParser(strings.NewReader("\xff\xfe,b\n1,2"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestParser_Require(t *testing.T) {
	p, err := NewParser(strings.NewReader("product_code,quantity\nA,1"))
	require.NoError(t, err)

	assert.NoError(t, p.Require("product_code", "quantity"))
	err = p.Require("product_code", "unit_cost", "date")
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "unit_cost, date")
}

func TestParser_ReadRowAndAll(t *testing.T) {
	t.Run("short rows and blanks", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("a,b,c\n1,2\n,,\n 4 , 5 ,6\n"))
		require.NoError(t, err)

		rows, err := p.ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, "", rows[0].Get("c"))
		assert.Equal(t, 4, rows[1].Line)
		assert.Equal(t, "5", rows[1].Get("b"))
	})

	t.Run("header only", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("a,b\n"))
		require.NoError(t, err)
		_, err = p.ReadAll()
		assert.ErrorIs(t, err, ErrNoDataRows)
	})

	t.Run("row cap", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("a\n1\n2\n3"), WithMaxRows(2))
		require.NoError(t, err)
		_, err = p.ReadAll()
		assert.ErrorIs(t, err, ErrTooManyRows)
	})

	t.Run("eof", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("a\n1"))
		require.NoError(t, err)
		_, err = p.ReadRow()
		require.NoError(t, err)
		_, err = p.ReadRow()
		assert.Equal(t, io.EOF, err)
	})
}

func TestDecodePurchases(t *testing.T) {
	data := strings.Join([]string{
		"product_code,quantity,unit_cost,total_kg,shipping_cost_per_kg,date,description",
		"RICE-1,5,\"12,50\",20,0.5,2026-03-01,Supplier A",
		"BEAN-1,0,10,,,,",
		",3,10,,,,",
		"BEAN-1,2,-1,,,,",
		"BEAN-1,two,10,,,,",
		"BEAN-1,4,10,,,01.03.2026,",
		"BEAN-1,4,10,,,March 1,",
	}, "\n")

	rows, errs, err := DecodePurchases(strings.NewReader(data), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "RICE-1", first.ProductCode)
	assert.Equal(t, 5, first.Quantity)
	assert.True(t, first.UnitCost.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, first.TotalKg.Equal(decimal.NewFromInt(20)))
	assert.True(t, first.ShippingCostPerKg.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), first.Date)
	assert.Equal(t, "Supplier A", first.Description)

	assert.Equal(t, 7, rows[1].Line)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), rows[1].Date)

	require.Equal(t, 5, errs.TotalCount())
	codes := make(map[int]string)
	for _, e := range errs.Errors() {
		codes[e.Row] = e.Code
	}
	assert.Equal(t, ErrCodeInvalidRange, codes[3])
	assert.Equal(t, ErrCodeRequiredField, codes[4])
	assert.Equal(t, ErrCodeInvalidRange, codes[5])
	assert.Equal(t, ErrCodeInvalidType, codes[6])
	assert.Equal(t, ErrCodeInvalidFormat, codes[8])
}

func TestDecodePurchases_MissingColumns(t *testing.T) {
	_, _, err := DecodePurchases(strings.NewReader("product_code,quantity\nA,1"), Options{})
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestDecodeSales(t *testing.T) {
	data := strings.Join([]string{
		"order_ref,customer_name,phone,address,product_code,quantity,unit_price",
		"ETSY-1,Deniz,555,Izmir,TEA-1,2,20",
		",,,,CUP-1,1,15",
		"ETSY-2,Ayla,,,TEA-1,1,20",
		"ETSY-1,Ignored,,,CUP-1,3,15",
		",,,,CUP-1,1,15",
		"ETSY-3,Mert,,,CUP-1,0,15",
	}, "\n")

	orders, errs, err := DecodeSales(strings.NewReader(data), Options{MaxRows: 10})
	require.NoError(t, err)
	require.Len(t, orders, 4)

	assert.Equal(t, "ETSY-1", orders[0].Ref)
	assert.Equal(t, "Deniz", orders[0].CustomerName)
	assert.Equal(t, "555", orders[0].Phone)
	assert.Equal(t, "Izmir", orders[0].Address)
	require.Len(t, orders[0].Lines, 2)
	assert.Equal(t, 3, orders[0].Lines[1].Quantity)

	assert.Equal(t, "", orders[1].Ref)
	assert.Equal(t, "", orders[1].CustomerName)
	assert.Equal(t, "ETSY-2", orders[2].Ref)
	assert.Equal(t, "", orders[3].Ref, "blank refs are never merged")

	assert.Equal(t, 1, errs.TotalCount())
	assert.Equal(t, 7, errs.Errors()[0].Row)
}

func TestErrorCollection_Limit(t *testing.T) {
	ec := NewErrorCollection(2)
	for i := 0; i < 5; i++ {
		ec.Add(RowError{Row: i + 2, Code: ErrCodeInvalidType, Message: "bad"})
	}
	assert.Len(t, ec.Errors(), 2)
	assert.Equal(t, 5, ec.TotalCount())
	assert.True(t, ec.IsTruncated())
	assert.True(t, ec.HasErrors())
	assert.Equal(t, "row 2: bad", ec.Errors()[0].Error())

	cell := RowError{Row: 3, Column: "quantity", Message: "expected a whole number"}
	assert.Equal(t, "row 3, column 'quantity': expected a whole number", cell.Error())
}
