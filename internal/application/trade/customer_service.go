package trade

import (
	"context"
	"fmt"
	"strings"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/domain/trade"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// GetOrCreateCustomer returns the customer with exactly this name, creating it
// when none exists. created reports whether a new customer was stored.
func (s *SalesService) GetOrCreateCustomer(ctx context.Context, tenantID uuid.UUID, cmd CustomerCommand) (result *CustomerResponse, created bool, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, salesServiceName, "get_or_create_customer")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, false, err
	}
	name := strings.TrimSpace(cmd.Name)

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		found, err := repos.Customers().FindByNames(ctx, tenantID, []string{name})
		if err != nil {
			return err
		}
		if c, ok := found[name]; ok {
			resp := ToCustomerResponse(c)
			result = &resp
			return nil
		}

		customer, err := trade.NewCustomer(tenantID, trade.CustomerDetails{
			Name:    name,
			Phone:   cmd.Phone,
			Email:   cmd.Email,
			Address: cmd.Address,
		})
		if err != nil {
			return err
		}
		if err := repos.Customers().Create(ctx, customer); err != nil {
			return err
		}
		created = true
		resp := ToCustomerResponse(customer)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// UpdateCustomer replaces the details of a customer
func (s *SalesService) UpdateCustomer(ctx context.Context, tenantID, customerID uuid.UUID, cmd CustomerCommand) (result *CustomerResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, salesServiceName, "update_customer")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		customer, err := repos.Customers().FindByID(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if err := customer.Update(trade.CustomerDetails{
			Name:    cmd.Name,
			Phone:   cmd.Phone,
			Email:   cmd.Email,
			Address: cmd.Address,
		}); err != nil {
			return err
		}
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		resp := ToCustomerResponse(customer)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCustomer removes a customer that no sale or payment references
func (s *SalesService) DeleteCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, salesServiceName, "delete_customer")
	defer func() { telemetry.EndSpan(span, err) }()

	return s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		customer, err := repos.Customers().FindByID(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		sales, err := repos.Sales().CountByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		payments, err := repos.Payments().CountByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if sales > 0 || payments > 0 {
			return shared.NewBusinessRuleError(
				"Customer in use",
				fmt.Sprintf("Customer %s has %d sale(s) and %d payment(s) and cannot be deleted", customer.Name, sales, payments),
			)
		}
		return repos.Customers().Delete(ctx, tenantID, customerID)
	})
}

// GetCustomer returns a customer by id
func (s *SalesService) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	customer, err := s.repos.Customers().FindByID(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// ListCustomers lists customers matching the search text
func (s *SalesService) ListCustomers(ctx context.Context, tenantID uuid.UUID, search string, page, pageSize int) (*shared.Paginated[CustomerResponse], error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   search,
	}.Normalize()
	customers, total, err := s.repos.Customers().FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerResponse(&customers[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// CustomerSpend totals what a customer bought and paid
func (s *SalesService) CustomerSpend(ctx context.Context, tenantID, customerID uuid.UUID) (*trade.CustomerSpend, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if err := requireCustomer(ctx, s.repos, tenantID, customerID); err != nil {
		return nil, err
	}
	sold, err := s.repos.Sales().SumTotalByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	collected, err := s.repos.Payments().SumByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	spend := trade.NewCustomerSpend(customerID, sold, collected)
	return &spend, nil
}
