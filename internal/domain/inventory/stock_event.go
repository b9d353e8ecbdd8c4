package inventory

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockEventKind tells why stock changed
type StockEventKind string

const (
	StockEventPurchase   StockEventKind = "purchase"
	StockEventOpening    StockEventKind = "opening"
	StockEventAdjustment StockEventKind = "adjustment"
)

// IsValid checks if the kind is known
func (k StockEventKind) IsValid() bool {
	switch k {
	case StockEventPurchase, StockEventOpening, StockEventAdjustment:
		return true
	}
	return false
}

const (
	// OpeningStockReason is the reason recorded for opening stock events
	OpeningStockReason = "Opening stock"
	// AdjustmentReasonPrefix marks manual corrections in the history
	AdjustmentReasonPrefix = "[ADJUSTMENT] "
)

// StockEvent is one history row of a quantity change against a product.
// Purchase events are the only ones edited after creation.
type StockEvent struct {
	shared.TenantEntity
	ProductID         uuid.UUID
	Kind              StockEventKind
	Quantity          int
	UnitCost          decimal.Decimal
	TotalKg           decimal.Decimal
	ShippingCostPerKg decimal.Decimal
	ProductCost       decimal.Decimal
	ShippingCost      decimal.Decimal
	TotalCost         decimal.Decimal
	OccurredAt        time.Time
	Reason            string
}

// PurchaseInput holds the costing inputs of a purchase
type PurchaseInput struct {
	ProductID         uuid.UUID
	Quantity          int
	UnitCost          decimal.Decimal
	TotalKg           decimal.Decimal
	ShippingCostPerKg decimal.Decimal
	PurchasedAt       time.Time
	Description       string
}

// NewPurchaseEvent creates a purchase history row with computed costs
func NewPurchaseEvent(tenantID uuid.UUID, in PurchaseInput) (*StockEvent, error) {
	e := &StockEvent{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Kind:         StockEventPurchase,
	}
	if err := e.Revise(in); err != nil {
		return nil, err
	}
	return e, nil
}

// Revise overwrites a purchase event with new inputs and recomputes its costs
func (e *StockEvent) Revise(in PurchaseInput) error {
	if e.Kind != StockEventPurchase {
		return shared.NewDomainError("INVALID_STATE", "Only purchase events can be revised")
	}
	if err := validatePurchaseInput(in); err != nil {
		return err
	}
	e.ProductID = in.ProductID
	e.Quantity = in.Quantity
	e.UnitCost = in.UnitCost
	e.TotalKg = in.TotalKg
	e.ShippingCostPerKg = in.ShippingCostPerKg
	e.Reason = in.Description
	if !in.PurchasedAt.IsZero() {
		e.OccurredAt = in.PurchasedAt
	} else if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	e.calculateCosts()
	e.UpdatedAt = time.Now()
	return nil
}

// NewOpeningEvent creates the history row for a product's initial stock.
// Returns nil when quantity is not positive.
func NewOpeningEvent(tenantID, productID uuid.UUID, quantity int, unitCost decimal.Decimal) *StockEvent {
	if quantity <= 0 {
		return nil
	}
	e := &StockEvent{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		ProductID:         productID,
		Kind:              StockEventOpening,
		Quantity:          quantity,
		UnitCost:          unitCost,
		TotalKg:           decimal.Zero,
		ShippingCostPerKg: decimal.Zero,
		OccurredAt:        time.Now(),
		Reason:            OpeningStockReason,
	}
	e.calculateCosts()
	return e
}

// NewAdjustmentEvent creates the history row for a manual correction
func NewAdjustmentEvent(tenantID, productID uuid.UUID, delta int, unitCost decimal.Decimal, reason string) *StockEvent {
	e := &StockEvent{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		ProductID:         productID,
		Kind:              StockEventAdjustment,
		Quantity:          delta,
		UnitCost:          unitCost,
		TotalKg:           decimal.Zero,
		ShippingCostPerKg: decimal.Zero,
		OccurredAt:        time.Now(),
		Reason:            AdjustmentReasonPrefix + reason,
	}
	e.calculateCosts()
	return e
}

func (e *StockEvent) calculateCosts() {
	e.ProductCost = decimal.NewFromInt(int64(e.Quantity)).Mul(e.UnitCost)
	e.ShippingCost = e.TotalKg.Mul(e.ShippingCostPerKg)
	e.TotalCost = e.ProductCost.Add(e.ShippingCost)
}

func validatePurchaseInput(in PurchaseInput) error {
	if in.ProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if in.Quantity <= 0 {
		return shared.NewBusinessRuleError("Invalid purchase", "Purchased quantity must be greater than zero")
	}
	if in.UnitCost.IsNegative() {
		return shared.NewBusinessRuleError("Invalid purchase", "Unit cost cannot be negative")
	}
	if in.TotalKg.IsNegative() || in.ShippingCostPerKg.IsNegative() {
		return shared.NewBusinessRuleError("Invalid purchase", "Shipping weight and cost cannot be negative")
	}
	return nil
}
