package trade

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleDateTolerance is how far in the future a sale date may lie
const SaleDateTolerance = 5 * time.Minute

// SaleLineItem is one product line of a sale
type SaleLineItem struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	TenantID  uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// LineInput is the caller-supplied content of a line
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// SaleDetails holds the editable header fields of a sale
type SaleDetails struct {
	CustomerID         uuid.UUID
	SaleDate           time.Time
	ExternalRef        string
	ShippingCost       decimal.Decimal
	PlatformCommission decimal.Decimal
	TaxAmount          decimal.Decimal
	ManualDiscount     decimal.Decimal
	Notes              string
}

// SaleOrder is the aggregate root of a sale. It references its customer and
// products by id only; lines are owned by the order.
type SaleOrder struct {
	shared.TenantAggregateRoot
	OrderCode          string
	ExternalRef        string
	CustomerID         uuid.UUID
	SaleDate           time.Time
	Lines              []SaleLineItem
	ShippingCost       decimal.Decimal
	PlatformCommission decimal.Decimal
	TaxAmount          decimal.Decimal
	ManualDiscount     decimal.Decimal
	TotalAmount        decimal.Decimal
	ShippingStatus     ShippingStatus
	Notes              string
}

// NewSaleOrder creates a sale in the Received state with computed totals
func NewSaleOrder(tenantID uuid.UUID, orderCode string, details SaleDetails, lines []LineInput) (*SaleOrder, error) {
	if strings.TrimSpace(orderCode) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_CODE", "Order code cannot be empty")
	}
	o := &SaleOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderCode:           orderCode,
		ShippingStatus:      ShippingStatusReceived,
	}
	if err := o.Update(details); err != nil {
		return nil, err
	}
	if err := o.ReplaceLines(lines); err != nil {
		return nil, err
	}
	return o, nil
}

// Update replaces the header fields and recomputes the total
func (o *SaleOrder) Update(d SaleDetails) error {
	if d.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if d.SaleDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Sale date is required")
	}
	if d.SaleDate.After(time.Now().Add(SaleDateTolerance)) {
		return shared.NewBusinessRuleError("Invalid sale date", "Sale date cannot be in the future")
	}
	for _, v := range []decimal.Decimal{d.ShippingCost, d.PlatformCommission, d.TaxAmount, d.ManualDiscount} {
		if v.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Shipping, commission, tax and discount cannot be negative")
		}
	}

	o.CustomerID = d.CustomerID
	o.SaleDate = d.SaleDate
	o.ExternalRef = strings.TrimSpace(d.ExternalRef)
	o.ShippingCost = d.ShippingCost
	o.PlatformCommission = d.PlatformCommission
	o.TaxAmount = d.TaxAmount
	o.ManualDiscount = d.ManualDiscount
	o.Notes = d.Notes
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	return nil
}

// ReplaceLines discards every line and builds new ones from the input.
// At least one line is required.
func (o *SaleOrder) ReplaceLines(inputs []LineInput) error {
	if len(inputs) == 0 {
		return shared.NewBusinessRuleError("Invalid sale", "A sale must have at least one line item")
	}
	lines := make([]SaleLineItem, 0, len(inputs))
	for i, in := range inputs {
		if in.ProductID == uuid.Nil {
			return shared.NewDomainError("INVALID_PRODUCT", fmt.Sprintf("Line %d: product is required", i+1))
		}
		if in.Quantity < 1 {
			return shared.NewBusinessRuleError("Invalid sale", fmt.Sprintf("Line %d: quantity must be at least 1", i+1))
		}
		if in.UnitPrice.IsNegative() {
			return shared.NewBusinessRuleError("Invalid sale", fmt.Sprintf("Line %d: unit price cannot be negative", i+1))
		}
		lines = append(lines, SaleLineItem{
			ID:        uuid.New(),
			SaleID:    o.ID,
			TenantID:  o.TenantID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			LineTotal: in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		})
	}
	o.Lines = lines
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	return nil
}

// UpdateShippingStatus moves the order to target. Setting the current status again is a no-op.
func (o *SaleOrder) UpdateShippingStatus(target ShippingStatus) (bool, error) {
	if !target.IsValid() {
		return false, shared.NewDomainError("INVALID_STATUS", "Shipping status is not valid")
	}
	if o.ShippingStatus == target {
		return false, nil
	}
	if !o.ShippingStatus.CanTransitionTo(target) {
		return false, shared.NewBusinessRuleError(
			"Invalid shipping status",
			fmt.Sprintf("Cannot change shipping status from %s to %s", o.ShippingStatus, target),
		)
	}
	o.ShippingStatus = target
	o.UpdatedAt = time.Now()
	return true, nil
}

// StockDemand sums the ordered quantity per product
func (o *SaleOrder) StockDemand() map[uuid.UUID]int {
	demand := make(map[uuid.UUID]int, len(o.Lines))
	for _, l := range o.Lines {
		demand[l.ProductID] += l.Quantity
	}
	return demand
}

// ProductIDs returns the distinct products of the order in ascending order
func (o *SaleOrder) ProductIDs() []uuid.UUID {
	return SortedIDs(o.StockDemand())
}

// SubTotal returns Σ line totals
func (o *SaleOrder) SubTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.Lines {
		sum = sum.Add(l.LineTotal)
	}
	return sum
}

// recalculateTotals applies totalAmount = max(0, Σ line totals + shipping − manual discount)
func (o *SaleOrder) recalculateTotals() {
	total := o.SubTotal().Add(o.ShippingCost).Sub(o.ManualDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.TotalAmount = total
}

// OrderCode formats the human-readable code of the n-th sale of a day
func OrderCode(day time.Time, n int64) string {
	return fmt.Sprintf("%s-%d", day.Format("060102"), n)
}

// SortedIDs returns the keys of m in ascending byte order, the order in which rows are locked
func SortedIDs[V any](m map[uuid.UUID]V) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return strings.Compare(ids[i].String(), ids[j].String()) < 0
	})
	return ids
}
