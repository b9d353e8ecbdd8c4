package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the aggregate root for a sellable item and its stock level.
// Stock may be driven negative by sales, never by a manual adjustment.
type Product struct {
	shared.TenantAggregateRoot
	Code            string
	Name            string
	Description     string
	SearchText      string
	CategoryID      *uuid.UUID
	Stock           int
	CostPrice       decimal.Decimal
	Price           decimal.Decimal
	DiscountedPrice *decimal.Decimal
}

// ProductDetails carries the editable catalog fields of a product
type ProductDetails struct {
	Name            string
	Description     string
	Code            string
	CategoryID      *uuid.UUID
	CostPrice       decimal.Decimal
	Price           decimal.Decimal
	DiscountedPrice *decimal.Decimal
}

// NewProduct creates a new product with zero stock
func NewProduct(tenantID uuid.UUID, details ProductDetails) (*Product, error) {
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	p := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
	}
	p.apply(details)
	return p, nil
}

// Update replaces the catalog fields. Stock is not editable here.
func (p *Product) Update(details ProductDetails) error {
	if err := validateDetails(details); err != nil {
		return err
	}
	p.apply(details)
	p.UpdatedAt = time.Now()
	return nil
}

// AssignCode sets the product code and refreshes the search text
func (p *Product) AssignCode(code string) {
	p.Code = strings.TrimSpace(code)
	p.SearchText = shared.NormalizeSearchText(p.Name, p.Code)
}

// ApplyStockDelta changes stock without the non-negative rule.
// Used by purchases, sales and their reversals.
func (p *Product) ApplyStockDelta(delta int) {
	p.Stock += delta
	p.UpdatedAt = time.Now()
}

// Adjust applies a manual correction. It refuses to take stock below zero.
func (p *Product) Adjust(delta int) error {
	newStock := p.Stock + delta
	if newStock < 0 {
		return shared.NewBusinessRuleError(
			"Invalid stock adjustment",
			fmt.Sprintf("An adjustment cannot take stock below zero. Current: %d, requested change: %d", p.Stock, delta),
		)
	}
	p.Stock = newStock
	p.UpdatedAt = time.Now()
	return nil
}

// EffectiveUnitCost returns the explicit cost when given, otherwise the product's cost price
func (p *Product) EffectiveUnitCost(explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	return p.CostPrice
}

func (p *Product) apply(d ProductDetails) {
	p.Name = strings.TrimSpace(d.Name)
	p.Description = d.Description
	p.CategoryID = d.CategoryID
	p.CostPrice = d.CostPrice
	p.Price = d.Price
	p.DiscountedPrice = d.DiscountedPrice
	p.AssignCode(d.Code)
}

func validateDetails(d ProductDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if len(strings.TrimSpace(d.Code)) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	if d.CostPrice.IsNegative() || d.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	return ValidatePrices(d.Price, d.DiscountedPrice)
}

// ValidatePrices enforces that a discounted price is strictly below the list price
func ValidatePrices(price decimal.Decimal, discounted *decimal.Decimal) error {
	if discounted == nil {
		return nil
	}
	if discounted.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Discounted price cannot be negative")
	}
	if discounted.GreaterThanOrEqual(price) {
		return shared.NewBusinessRuleError(
			"Invalid discounted price",
			fmt.Sprintf("Discounted price (%s) must be lower than the list price (%s)", discounted.StringFixed(2), price.StringFixed(2)),
		)
	}
	return nil
}
