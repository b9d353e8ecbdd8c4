package trade

import (
	"time"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseCommand records or edits a stock purchase
type PurchaseCommand struct {
	ProductID         uuid.UUID       `json:"product_id" validate:"required"`
	Quantity          int             `json:"quantity" validate:"gt=0"`
	UnitCost          decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	TotalKg           decimal.Decimal `json:"total_kg" validate:"gte=0"`
	ShippingCostPerKg decimal.Decimal `json:"shipping_cost_per_kg" validate:"gte=0"`
	PurchasedAt       time.Time       `json:"purchased_at"`
	Description       string          `json:"description" validate:"max=500"`
}

// BulkPurchaseCommand applies many purchases in one transaction.
// Items are checked one by one and skipped with a message, not validated up front.
type BulkPurchaseCommand struct {
	BatchKey string            `json:"batch_key" validate:"max=100"`
	Items    []PurchaseCommand `json:"items"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	Quantity          int             `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalKg           decimal.Decimal `json:"total_kg"`
	ShippingCostPerKg decimal.Decimal `json:"shipping_cost_per_kg"`
	ProductCost       decimal.Decimal `json:"product_cost"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	PurchasedAt       time.Time       `json:"purchased_at"`
	Description       string          `json:"description"`
}

// PurchaseListFilter pages purchase listings
type PurchaseListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SaleLineCommand is one line of a sale
type SaleLineCommand struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

// CreateSaleCommand records a sale
type CreateSaleCommand struct {
	CustomerID         uuid.UUID         `json:"customer_id" validate:"required"`
	SaleDate           time.Time         `json:"sale_date" validate:"required,notfuture"`
	ExternalRef        string            `json:"external_ref" validate:"max=100"`
	ShippingCost       decimal.Decimal   `json:"shipping_cost" validate:"gte=0"`
	PlatformCommission decimal.Decimal   `json:"platform_commission" validate:"gte=0"`
	TaxAmount          decimal.Decimal   `json:"tax_amount" validate:"gte=0"`
	ManualDiscount     decimal.Decimal   `json:"manual_discount" validate:"gte=0"`
	Notes              string            `json:"notes" validate:"max=1000"`
	Lines              []SaleLineCommand `json:"lines" validate:"min=1,dive"`
}

// UpdateSaleCommand edits a sale. Version is the token read with the sale.
type UpdateSaleCommand struct {
	Version            int               `json:"version" validate:"required"`
	CustomerID         uuid.UUID         `json:"customer_id" validate:"required"`
	SaleDate           time.Time         `json:"sale_date" validate:"required,notfuture"`
	ExternalRef        string            `json:"external_ref" validate:"max=100"`
	ShippingCost       decimal.Decimal   `json:"shipping_cost" validate:"gte=0"`
	PlatformCommission decimal.Decimal   `json:"platform_commission" validate:"gte=0"`
	TaxAmount          decimal.Decimal   `json:"tax_amount" validate:"gte=0"`
	ManualDiscount     decimal.Decimal   `json:"manual_discount" validate:"gte=0"`
	Notes              string            `json:"notes" validate:"max=1000"`
	Lines              []SaleLineCommand `json:"lines" validate:"min=1,dive"`
}

// BulkSaleLine is one line of a bulk-imported order
type BulkSaleLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BulkSaleOrder is one order of a bulk import. The customer is matched by exact name.
type BulkSaleOrder struct {
	ExternalRef  string          `json:"external_ref"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	SaleDate     time.Time       `json:"sale_date"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Lines        []BulkSaleLine  `json:"lines"`
}

// BulkSaleCommand applies many orders in one transaction
type BulkSaleCommand struct {
	BatchKey string          `json:"batch_key" validate:"max=100"`
	Orders   []BulkSaleOrder `json:"orders"`
}

// SaleLineResponse represents a sale line in API responses
type SaleLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID                 uuid.UUID          `json:"id"`
	OrderCode          string             `json:"order_code"`
	ExternalRef        string             `json:"external_ref,omitempty"`
	CustomerID         uuid.UUID          `json:"customer_id"`
	SaleDate           time.Time          `json:"sale_date"`
	ShippingCost       decimal.Decimal    `json:"shipping_cost"`
	PlatformCommission decimal.Decimal    `json:"platform_commission"`
	TaxAmount          decimal.Decimal    `json:"tax_amount"`
	ManualDiscount     decimal.Decimal    `json:"manual_discount"`
	TotalAmount        decimal.Decimal    `json:"total_amount"`
	ShippingStatus     string             `json:"shipping_status"`
	Notes              string             `json:"notes,omitempty"`
	Lines              []SaleLineResponse `json:"lines,omitempty"`
	Version            int                `json:"version"`
	CreatedAt          time.Time          `json:"created_at"`
}

// SaleListFilter narrows sale listings
type SaleListFilter struct {
	CustomerID     *uuid.UUID            `form:"customer_id"`
	ShippingStatus *trade.ShippingStatus `form:"shipping_status"`
	StartDate      *time.Time            `form:"start_date" time_format:"2006-01-02"`
	EndDate        *time.Time            `form:"end_date" time_format:"2006-01-02"`
	Search         string                `form:"search"`
	Page           int                   `form:"page"`
	PageSize       int                   `form:"page_size"`
}

// CustomerCommand identifies a customer by name for get-or-create
type CustomerCommand struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"max=30"`
	Email   string `json:"email" validate:"omitempty,email,max=200"`
	Address string `json:"address" validate:"max=500"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c PurchaseCommand) input() inventory.PurchaseInput {
	return inventory.PurchaseInput{
		ProductID:         c.ProductID,
		Quantity:          c.Quantity,
		UnitCost:          c.UnitCost,
		TotalKg:           c.TotalKg,
		ShippingCostPerKg: c.ShippingCostPerKg,
		PurchasedAt:       c.PurchasedAt,
		Description:       c.Description,
	}
}

func (c CreateSaleCommand) details() trade.SaleDetails {
	return trade.SaleDetails{
		CustomerID:         c.CustomerID,
		SaleDate:           c.SaleDate,
		ExternalRef:        c.ExternalRef,
		ShippingCost:       c.ShippingCost,
		PlatformCommission: c.PlatformCommission,
		TaxAmount:          c.TaxAmount,
		ManualDiscount:     c.ManualDiscount,
		Notes:              c.Notes,
	}
}

func (c UpdateSaleCommand) details() trade.SaleDetails {
	return trade.SaleDetails{
		CustomerID:         c.CustomerID,
		SaleDate:           c.SaleDate,
		ExternalRef:        c.ExternalRef,
		ShippingCost:       c.ShippingCost,
		PlatformCommission: c.PlatformCommission,
		TaxAmount:          c.TaxAmount,
		ManualDiscount:     c.ManualDiscount,
		Notes:              c.Notes,
	}
}

func lineInputs(lines []SaleLineCommand) []trade.LineInput {
	inputs := make([]trade.LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = trade.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return inputs
}

func (f SaleListFilter) toDomain() trade.SaleFilter {
	return trade.SaleFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  "sale_date",
			OrderDir: "desc",
			Search:   f.Search,
		}.Normalize(),
		CustomerID:     f.CustomerID,
		ShippingStatus: f.ShippingStatus,
		DateRange:      shared.DateRange{Start: f.StartDate, End: f.EndDate},
	}
}

// ToPurchaseResponse converts a purchase event to a response
func ToPurchaseResponse(e *inventory.StockEvent) PurchaseResponse {
	return PurchaseResponse{
		ID:                e.ID,
		ProductID:         e.ProductID,
		Quantity:          e.Quantity,
		UnitCost:          e.UnitCost,
		TotalKg:           e.TotalKg,
		ShippingCostPerKg: e.ShippingCostPerKg,
		ProductCost:       e.ProductCost,
		ShippingCost:      e.ShippingCost,
		TotalCost:         e.TotalCost,
		PurchasedAt:       e.OccurredAt,
		Description:       e.Reason,
	}
}

// ToSaleResponse converts a sale to a response
func ToSaleResponse(o *trade.SaleOrder) SaleResponse {
	resp := SaleResponse{
		ID:                 o.ID,
		OrderCode:          o.OrderCode,
		ExternalRef:        o.ExternalRef,
		CustomerID:         o.CustomerID,
		SaleDate:           o.SaleDate,
		ShippingCost:       o.ShippingCost,
		PlatformCommission: o.PlatformCommission,
		TaxAmount:          o.TaxAmount,
		ManualDiscount:     o.ManualDiscount,
		TotalAmount:        o.TotalAmount,
		ShippingStatus:     o.ShippingStatus.String(),
		Notes:              o.Notes,
		Version:            o.Version,
		CreatedAt:          o.CreatedAt,
	}
	if len(o.Lines) > 0 {
		resp.Lines = make([]SaleLineResponse, len(o.Lines))
		for i, l := range o.Lines {
			resp.Lines[i] = SaleLineResponse{
				ID:        l.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				LineTotal: l.LineTotal,
			}
		}
	}
	return resp
}

// ToCustomerResponse converts a customer to a response
func ToCustomerResponse(c *trade.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}
