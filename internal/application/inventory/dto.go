package inventory

import (
	"time"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID              uuid.UUID        `json:"id"`
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	CategoryID      *uuid.UUID       `json:"category_id,omitempty"`
	Stock           int              `json:"stock"`
	CostPrice       decimal.Decimal  `json:"cost_price"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	Version         int              `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// StockEventResponse represents one stock history row
type StockEventResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Kind              string          `json:"kind"`
	Quantity          int             `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalKg           decimal.Decimal `json:"total_kg"`
	ShippingCostPerKg decimal.Decimal `json:"shipping_cost_per_kg"`
	ProductCost       decimal.Decimal `json:"product_cost"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	OccurredAt        time.Time       `json:"occurred_at"`
	Reason            string          `json:"reason"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AdjustStockCommand is a manual stock correction
type AdjustStockCommand struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Delta     int              `json:"delta" validate:"ne=0"`
	Reason    string           `json:"reason" validate:"max=500"`
	UnitCost  *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0"`
}

// AdjustStockResult reports the stock after an adjustment
type AdjustStockResult struct {
	ProductID uuid.UUID `json:"product_id"`
	NewStock  int       `json:"new_stock"`
	Version   int       `json:"version"`
}

// CreateProductCommand creates a catalog product. A blank code is generated from the name.
type CreateProductCommand struct {
	Code            string           `json:"code" validate:"max=50"`
	Name            string           `json:"name" validate:"required,max=200"`
	Description     string           `json:"description" validate:"max=2000"`
	CategoryID      *uuid.UUID       `json:"category_id"`
	CostPrice       decimal.Decimal  `json:"cost_price" validate:"gte=0"`
	Price           decimal.Decimal  `json:"price" validate:"gte=0"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price" validate:"omitempty,gte=0"`
	InitialStock    int              `json:"initial_stock" validate:"gte=0"`
}

// UpdateProductCommand edits the catalog fields of a product. Stock is not editable here.
type UpdateProductCommand struct {
	Version         int              `json:"version" validate:"required"`
	Code            string           `json:"code" validate:"max=50"`
	Name            string           `json:"name" validate:"required,max=200"`
	Description     string           `json:"description" validate:"max=2000"`
	CategoryID      *uuid.UUID       `json:"category_id"`
	CostPrice       decimal.Decimal  `json:"cost_price" validate:"gte=0"`
	Price           decimal.Decimal  `json:"price" validate:"gte=0"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price" validate:"omitempty,gte=0"`
}

// ProductListFilter narrows product listings
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"category_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		Stock:           p.Stock,
		CostPrice:       p.CostPrice,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []inventory.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToStockEventResponse converts a stock event to a response
func ToStockEventResponse(e *inventory.StockEvent) StockEventResponse {
	return StockEventResponse{
		ID:                e.ID,
		ProductID:         e.ProductID,
		Kind:              string(e.Kind),
		Quantity:          e.Quantity,
		UnitCost:          e.UnitCost,
		TotalKg:           e.TotalKg,
		ShippingCostPerKg: e.ShippingCostPerKg,
		ProductCost:       e.ProductCost,
		ShippingCost:      e.ShippingCost,
		TotalCost:         e.TotalCost,
		OccurredAt:        e.OccurredAt,
		Reason:            e.Reason,
	}
}

// ToStockEventResponses converts a slice of stock events
func ToStockEventResponses(events []inventory.StockEvent) []StockEventResponse {
	responses := make([]StockEventResponse, len(events))
	for i := range events {
		responses[i] = ToStockEventResponse(&events[i])
	}
	return responses
}

// ToCategoryResponse converts a category to a response
func ToCategoryResponse(c *inventory.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

func (c CreateProductCommand) details() inventory.ProductDetails {
	return inventory.ProductDetails{
		Name:            c.Name,
		Description:     c.Description,
		Code:            c.Code,
		CategoryID:      c.CategoryID,
		CostPrice:       c.CostPrice,
		Price:           c.Price,
		DiscountedPrice: c.DiscountedPrice,
	}
}

func (c UpdateProductCommand) details() inventory.ProductDetails {
	return inventory.ProductDetails{
		Name:            c.Name,
		Description:     c.Description,
		Code:            c.Code,
		CategoryID:      c.CategoryID,
		CostPrice:       c.CostPrice,
		Price:           c.Price,
		DiscountedPrice: c.DiscountedPrice,
	}
}
