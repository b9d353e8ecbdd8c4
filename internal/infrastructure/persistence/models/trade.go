package models

import (
	"time"

	"github.com/erp/retail/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for Customer
type CustomerModel struct {
	TenantModel
	Name       string `gorm:"type:varchar(200);not null;index"`
	Phone      string `gorm:"type:varchar(50)"`
	Email      string `gorm:"type:varchar(200)"`
	Address    string `gorm:"type:text"`
	SearchText string `gorm:"type:varchar(500);index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *trade.Customer {
	return &trade.Customer{
		TenantEntity: m.ToDomainTenantEntity(),
		Name:         m.Name,
		Phone:        m.Phone,
		Email:        m.Email,
		Address:      m.Address,
		SearchText:   m.SearchText,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *trade.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:       c.Name,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		SearchText: c.SearchText,
	}
	m.FromDomainTenantEntity(c.TenantEntity)
	return m
}

// SaleOrderModel is the persistence model for the SaleOrder aggregate root.
// Lines are stored in sale_lines and loaded explicitly by the repository.
type SaleOrderModel struct {
	TenantAggregateModel
	OrderCode          string               `gorm:"type:varchar(30);not null;index"`
	ExternalRef        string               `gorm:"type:varchar(100);index"`
	CustomerID         uuid.UUID            `gorm:"type:uuid;not null;index"`
	SaleDate           time.Time            `gorm:"not null;index"`
	ShippingCost       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	PlatformCommission decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount          decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ManualDiscount     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingStatus     trade.ShippingStatus `gorm:"type:smallint;not null;default:1;index"`
	Notes              string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SaleOrderModel) TableName() string {
	return "sale_orders"
}

// ToDomain converts the persistence model and its lines to a domain SaleOrder
func (m *SaleOrderModel) ToDomain(lines []SaleLineModel) *trade.SaleOrder {
	o := &trade.SaleOrder{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		OrderCode:           m.OrderCode,
		ExternalRef:         m.ExternalRef,
		CustomerID:          m.CustomerID,
		SaleDate:            m.SaleDate,
		ShippingCost:        m.ShippingCost,
		PlatformCommission:  m.PlatformCommission,
		TaxAmount:           m.TaxAmount,
		ManualDiscount:      m.ManualDiscount,
		TotalAmount:         m.TotalAmount,
		ShippingStatus:      m.ShippingStatus,
		Notes:               m.Notes,
		Lines:               make([]trade.SaleLineItem, len(lines)),
	}
	for i := range lines {
		o.Lines[i] = lines[i].ToDomain()
	}
	return o
}

// SaleOrderModelFromDomain creates a persistence model for the order header
func SaleOrderModelFromDomain(o *trade.SaleOrder) *SaleOrderModel {
	m := &SaleOrderModel{
		OrderCode:          o.OrderCode,
		ExternalRef:        o.ExternalRef,
		CustomerID:         o.CustomerID,
		SaleDate:           o.SaleDate,
		ShippingCost:       o.ShippingCost,
		PlatformCommission: o.PlatformCommission,
		TaxAmount:          o.TaxAmount,
		ManualDiscount:     o.ManualDiscount,
		TotalAmount:        o.TotalAmount,
		ShippingStatus:     o.ShippingStatus,
		Notes:              o.Notes,
	}
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	return m
}

// SaleLineModel is the persistence model for SaleLineItem
type SaleLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null;default:0"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleLineModel) TableName() string {
	return "sale_lines"
}

// GetTenantID implements shared.TenantScoped
func (m *SaleLineModel) GetTenantID() uuid.UUID {
	return m.TenantID
}

// SetTenantID implements shared.TenantScoped
func (m *SaleLineModel) SetTenantID(id uuid.UUID) {
	m.TenantID = id
}

// ToDomain converts the persistence model to a domain SaleLineItem
func (m *SaleLineModel) ToDomain() trade.SaleLineItem {
	return trade.SaleLineItem{
		ID:        m.ID,
		SaleID:    m.SaleID,
		TenantID:  m.TenantID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		LineTotal: m.LineTotal,
	}
}

// SaleLineModelsFromDomain creates persistence models for every line of o, keeping their order
func SaleLineModelsFromDomain(o *trade.SaleOrder) []SaleLineModel {
	lines := make([]SaleLineModel, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = SaleLineModel{
			ID:        l.ID,
			TenantID:  o.TenantID,
			SaleID:    o.ID,
			ProductID: l.ProductID,
			Position:  i,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		}
	}
	return lines
}
