package models

import (
	"time"

	"github.com/erp/retail/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for Category
type CategoryModel struct {
	TenantModel
	Name string `gorm:"type:varchar(100);not null;index"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *inventory.Category {
	return &inventory.Category{
		TenantEntity: m.ToDomainTenantEntity(),
		Name:         m.Name,
	}
}

// CategoryModelFromDomain creates a persistence model from a domain Category
func CategoryModelFromDomain(c *inventory.Category) *CategoryModel {
	m := &CategoryModel{Name: c.Name}
	m.FromDomainTenantEntity(c.TenantEntity)
	return m
}

// ProductModel is the persistence model for the Product aggregate root
type ProductModel struct {
	TenantAggregateModel
	Code            string           `gorm:"type:varchar(50);not null;index"`
	Name            string           `gorm:"type:varchar(200);not null"`
	Description     string           `gorm:"type:text"`
	SearchText      string           `gorm:"type:varchar(500);index"`
	CategoryID      *uuid.UUID       `gorm:"type:uuid;index"`
	Stock           int              `gorm:"not null;default:0"`
	CostPrice       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Price           decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountedPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		SearchText:          m.SearchText,
		CategoryID:          m.CategoryID,
		Stock:               m.Stock,
		CostPrice:           m.CostPrice,
		Price:               m.Price,
		DiscountedPrice:     m.DiscountedPrice,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{
		Code:            p.Code,
		Name:            p.Name,
		Description:     p.Description,
		SearchText:      p.SearchText,
		CategoryID:      p.CategoryID,
		Stock:           p.Stock,
		CostPrice:       p.CostPrice,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// StockEventModel is the persistence model for StockEvent
type StockEventModel struct {
	TenantModel
	ProductID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	Kind              inventory.StockEventKind `gorm:"type:varchar(20);not null;index"`
	Quantity          int                      `gorm:"not null"`
	UnitCost          decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	TotalKg           decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCostPerKg decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	ProductCost       decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingCost      decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCost         decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	OccurredAt        time.Time                `gorm:"not null;index"`
	Reason            string                   `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockEventModel) TableName() string {
	return "stock_events"
}

// ToDomain converts the persistence model to a domain StockEvent
func (m *StockEventModel) ToDomain() *inventory.StockEvent {
	return &inventory.StockEvent{
		TenantEntity:      m.ToDomainTenantEntity(),
		ProductID:         m.ProductID,
		Kind:              m.Kind,
		Quantity:          m.Quantity,
		UnitCost:          m.UnitCost,
		TotalKg:           m.TotalKg,
		ShippingCostPerKg: m.ShippingCostPerKg,
		ProductCost:       m.ProductCost,
		ShippingCost:      m.ShippingCost,
		TotalCost:         m.TotalCost,
		OccurredAt:        m.OccurredAt,
		Reason:            m.Reason,
	}
}

// StockEventModelFromDomain creates a persistence model from a domain StockEvent
func StockEventModelFromDomain(e *inventory.StockEvent) *StockEventModel {
	m := &StockEventModel{
		ProductID:         e.ProductID,
		Kind:              e.Kind,
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
	m.FromDomainTenantEntity(e.TenantEntity)
	return m
}
