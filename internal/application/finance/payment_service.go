package finance

import (
	"context"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// CreatePayment records a payment and its ledger mirror in one transaction.
// A referenced customer or sale must exist.
func (s *FinanceService) CreatePayment(ctx context.Context, tenantID uuid.UUID, cmd PaymentCommand) (result *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "create_payment",
		telemetry.WithAttribute(telemetry.SpanAttrAmount, cmd.Amount.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		if cmd.CustomerID != nil {
			exists, err := repos.Customers().ExistsByID(ctx, tenantID, *cmd.CustomerID)
			if err != nil {
				return err
			}
			if !exists {
				return shared.NewNotFoundError("Customer")
			}
		}
		if cmd.SaleID != nil {
			if _, err := repos.Sales().FindByID(ctx, tenantID, *cmd.SaleID); err != nil {
				return err
			}
		}

		payment, err := finance.NewPayment(tenantID, cmd.details(), cmd.CustomerID, cmd.SaleID)
		if err != nil {
			return err
		}
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		if _, err := finance.NewMirror(repos.Ledger()).MirrorPayment(ctx, payment); err != nil {
			return err
		}
		resp := ToPaymentResponse(payment)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordPayment(ctx, tenantID, telemetry.PaymentSourceManual, result.Method.String(), result.Amount)
	return result, nil
}

// UpdatePayment edits a payment and overwrites its mirror. The customer and
// sale links are kept.
func (s *FinanceService) UpdatePayment(ctx context.Context, tenantID, paymentID uuid.UUID, cmd EntryCommand) (result *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "update_payment",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentID, paymentID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		payment, err := repos.Payments().FindByID(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if err := payment.Update(cmd.details()); err != nil {
			return err
		}
		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		found, err := finance.NewMirror(repos.Ledger()).SyncPayment(ctx, payment)
		if err != nil {
			return err
		}
		if !found {
			warnMissingMirror(ctx, "payment", payment.ID)
		}
		resp := ToPaymentResponse(payment)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePayment removes a payment together with its mirror
func (s *FinanceService) DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "delete_payment",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentID, paymentID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	return s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		payment, err := repos.Payments().FindByID(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if err := finance.NewMirror(repos.Ledger()).RemoveForPayment(ctx, payment); err != nil {
			return err
		}
		return repos.Payments().Delete(ctx, tenantID, paymentID)
	})
}

// GetPayment returns a payment by id
func (s *FinanceService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	payment, err := s.repos.Payments().FindByID(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ListPayments lists payments, newest first
func (s *FinanceService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter EntryListFilter) (*shared.Paginated[PaymentResponse], error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	domainFilter := filter.toDomain()
	payments, total, err := s.repos.Payments().FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	result := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}
