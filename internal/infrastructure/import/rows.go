package csvimport

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase upload columns
const (
	ColProductCode       = "product_code"
	ColQuantity          = "quantity"
	ColUnitCost          = "unit_cost"
	ColTotalKg           = "total_kg"
	ColShippingCostPerKg = "shipping_cost_per_kg"
	ColDate              = "date"
	ColDescription       = "description"
)

// Sale upload columns
const (
	ColOrderRef     = "order_ref"
	ColCustomerName = "customer_name"
	ColPhone        = "phone"
	ColAddress      = "address"
	ColUnitPrice    = "unit_price"
	ColShippingCost = "shipping_cost"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	time.RFC3339,
	"02.01.2006",
	"02/01/2006",
}

// PurchaseRow is one decoded purchase line
type PurchaseRow struct {
	Line              int
	ProductCode       string
	Quantity          int
	UnitCost          decimal.Decimal
	TotalKg           decimal.Decimal
	ShippingCostPerKg decimal.Decimal
	Date              time.Time
	Description       string
}

// SaleLineRow is one product line of an uploaded order
type SaleLineRow struct {
	Line        int
	ProductCode string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// SaleOrderRows groups the rows sharing an order_ref. Customer fields come
// from the first row of the group.
type SaleOrderRows struct {
	Ref          string
	CustomerName string
	Phone        string
	Address      string
	Date         time.Time
	ShippingCost decimal.Decimal
	Lines        []SaleLineRow
}

// Options bounds a decode
type Options struct {
	MaxRows   int
	Delimiter rune
	MaxErrors int
}

func (o Options) parser(r io.Reader) (*Parser, error) {
	opts := []ParserOption{WithMaxRows(o.MaxRows)}
	if o.Delimiter != 0 {
		opts = append(opts, WithDelimiter(o.Delimiter))
	}
	return NewParser(r, opts...)
}

// DecodePurchases reads a purchase upload. Rows with bad cells are left out
// and reported in the returned collection; the error is file-level.
func DecodePurchases(r io.Reader, opts Options) ([]PurchaseRow, *ErrorCollection, error) {
	p, err := opts.parser(r)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Require(ColProductCode, ColQuantity, ColUnitCost); err != nil {
		return nil, nil, err
	}
	rows, err := p.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	errs := NewErrorCollection(opts.MaxErrors)
	out := make([]PurchaseRow, 0, len(rows))
	for _, row := range rows {
		c := cells{row: row, errs: errs}
		pr := PurchaseRow{
			Line:              row.Line,
			ProductCode:       c.required(ColProductCode),
			Quantity:          c.positiveInt(ColQuantity),
			UnitCost:          c.money(ColUnitCost, true),
			TotalKg:           c.money(ColTotalKg, false),
			ShippingCostPerKg: c.money(ColShippingCostPerKg, false),
			Date:              c.date(ColDate),
			Description:       row.Get(ColDescription),
		}
		if c.failed {
			continue
		}
		out = append(out, pr)
	}
	return out, errs, nil
}

// DecodeSales reads a sale upload, grouping rows into orders by order_ref in
// order of first appearance. A row with a blank order_ref is an order of its own.
func DecodeSales(r io.Reader, opts Options) ([]SaleOrderRows, *ErrorCollection, error) {
	p, err := opts.parser(r)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Require(ColProductCode, ColQuantity, ColUnitPrice); err != nil {
		return nil, nil, err
	}
	rows, err := p.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	errs := NewErrorCollection(opts.MaxErrors)
	var orders []SaleOrderRows
	byRef := make(map[string]int)
	for _, row := range rows {
		c := cells{row: row, errs: errs}
		line := SaleLineRow{
			Line:        row.Line,
			ProductCode: c.required(ColProductCode),
			Quantity:    c.positiveInt(ColQuantity),
			UnitPrice:   c.money(ColUnitPrice, true),
		}
		date := c.date(ColDate)
		shipping := c.money(ColShippingCost, false)
		if c.failed {
			continue
		}

		ref := row.Get(ColOrderRef)
		if i, ok := byRef[ref]; ok && ref != "" {
			orders[i].Lines = append(orders[i].Lines, line)
			continue
		}
		if ref != "" {
			byRef[ref] = len(orders)
		}
		orders = append(orders, SaleOrderRows{
			Ref:          ref,
			CustomerName: row.Get(ColCustomerName),
			Phone:        row.Get(ColPhone),
			Address:      row.Get(ColAddress),
			Date:         date,
			ShippingCost: shipping,
			Lines:        []SaleLineRow{line},
		})
	}
	return orders, errs, nil
}

// cells decodes the columns of one row, recording each failure
type cells struct {
	row    *Row
	errs   *ErrorCollection
	failed bool
}

func (c *cells) fail(column, code, message, value string) {
	c.failed = true
	c.errs.invalid(c.row.Line, column, code, message, value)
}

func (c *cells) required(column string) string {
	v := c.row.Get(column)
	if v == "" {
		c.failed = true
		c.errs.required(c.row.Line, column)
	}
	return v
}

func (c *cells) positiveInt(column string) int {
	v := c.required(column)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.fail(column, ErrCodeInvalidType, "expected a whole number", v)
		return 0
	}
	if n <= 0 {
		c.fail(column, ErrCodeInvalidRange, "must be greater than zero", v)
	}
	return n
}

// money parses a non-negative amount. A lone comma is read as the decimal separator.
func (c *cells) money(column string, mandatory bool) decimal.Decimal {
	v := c.row.Get(column)
	if v == "" {
		if mandatory {
			c.failed = true
			c.errs.required(c.row.Line, column)
		}
		return decimal.Zero
	}
	raw := v
	if strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		c.fail(column, ErrCodeInvalidType, "expected a number", v)
		return decimal.Zero
	}
	if d.IsNegative() {
		c.fail(column, ErrCodeInvalidRange, "cannot be negative", v)
	}
	return d
}

func (c *cells) date(column string) time.Time {
	v := c.row.Get(column)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t
		}
	}
	c.fail(column, ErrCodeInvalidFormat, fmt.Sprintf("invalid date, expected %s", dateLayouts[0]), v)
	return time.Time{}
}
