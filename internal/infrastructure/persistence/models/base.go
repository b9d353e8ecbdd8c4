package models

import (
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantModel provides the persistence fields of a tenant-owned row.
// It implements shared.TenantScoped for the tenant callbacks.
type TenantModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// GetTenantID implements shared.TenantScoped
func (m *TenantModel) GetTenantID() uuid.UUID {
	return m.TenantID
}

// SetTenantID implements shared.TenantScoped
func (m *TenantModel) SetTenantID(id uuid.UUID) {
	m.TenantID = id
}

// FromDomainTenantEntity populates TenantModel from a domain TenantEntity
func (m *TenantModel) FromDomainTenantEntity(e shared.TenantEntity) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// ToDomainTenantEntity converts TenantModel to a domain TenantEntity
func (m *TenantModel) ToDomainTenantEntity() shared.TenantEntity {
	return shared.TenantEntity{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID: m.TenantID,
	}
}

// TenantAggregateModel extends TenantModel with the version token of an aggregate root
type TenantAggregateModel struct {
	TenantModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainTenantAggregateRoot populates TenantAggregateModel from a domain TenantAggregateRoot
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(a shared.TenantAggregateRoot) {
	m.ID = a.ID
	m.TenantID = a.TenantID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomainTenantAggregateRoot converts TenantAggregateModel to a domain TenantAggregateRoot
func (m *TenantAggregateModel) ToDomainTenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID: m.TenantID,
	}
}

var (
	_ shared.TenantScoped = (*TenantModel)(nil)
	_ shared.TenantScoped = (*TenantAggregateModel)(nil)
)

// All returns every persistence model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&CategoryModel{},
		&ProductModel{},
		&StockEventModel{},
		&CustomerModel{},
		&SaleOrderModel{},
		&SaleLineModel{},
		&ExpenseModel{},
		&PaymentModel{},
		&LedgerTransactionModel{},
	}
}
