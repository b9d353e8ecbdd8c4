package trade

import (
	"strings"
	"time"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GuestCustomerName is used for bulk-imported orders without a customer name
const GuestCustomerName = "Guest"

// Customer is a buyer of the tenant. Sales and payments reference it by id.
type Customer struct {
	shared.TenantEntity
	Name       string
	Phone      string
	Email      string
	Address    string
	SearchText string
}

// CustomerDetails holds the editable fields of a customer
type CustomerDetails struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, d CustomerDetails) (*Customer, error) {
	c := &Customer{TenantEntity: shared.NewTenantEntity(tenantID)}
	if err := c.Update(d); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the customer fields
func (c *Customer) Update(d CustomerDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	c.Name = name
	c.Phone = shared.NormalizePhone(d.Phone)
	c.Email = shared.NormalizeEmail(d.Email)
	c.Address = strings.TrimSpace(d.Address)
	c.SearchText = shared.NormalizeSearchText(c.Name, c.Phone, c.Email)
	c.UpdatedAt = time.Now()
	return nil
}

// CustomerSpend is the money position of a customer, computed by query
type CustomerSpend struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	TotalSold  decimal.Decimal `json:"total_sold"`
	Collected  decimal.Decimal `json:"collected"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// NewCustomerSpend derives the remaining balance from sold and collected amounts
func NewCustomerSpend(customerID uuid.UUID, sold, collected decimal.Decimal) CustomerSpend {
	return CustomerSpend{
		CustomerID: customerID,
		TotalSold:  sold,
		Collected:  collected,
		Remaining:  sold.Sub(collected),
	}
}
