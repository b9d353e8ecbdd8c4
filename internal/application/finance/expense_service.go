package finance

import (
	"context"

	appshared "github.com/erp/retail/internal/application/shared"
	"github.com/erp/retail/internal/domain/finance"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// CreateExpense records an expense and its ledger mirror in one transaction
func (s *FinanceService) CreateExpense(ctx context.Context, tenantID uuid.UUID, cmd EntryCommand) (result *ExpenseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "create_expense",
		telemetry.WithAttribute(telemetry.SpanAttrAmount, cmd.Amount.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		expense, err := finance.NewExpense(tenantID, cmd.details())
		if err != nil {
			return err
		}
		if err := repos.Expenses().Create(ctx, expense); err != nil {
			return err
		}
		if _, err := finance.NewMirror(repos.Ledger()).MirrorExpense(ctx, expense); err != nil {
			return err
		}
		resp := ToExpenseResponse(expense)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateExpense edits a standalone expense and overwrites its mirror.
// Expenses created by a purchase follow the purchase and are refused here.
func (s *FinanceService) UpdateExpense(ctx context.Context, tenantID, expenseID uuid.UUID, cmd EntryCommand) (result *ExpenseResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "update_expense",
		telemetry.WithAttribute(telemetry.SpanAttrExpenseID, expenseID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := appshared.Validate(cmd); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		expense, err := repos.Expenses().FindByID(ctx, tenantID, expenseID)
		if err != nil {
			return err
		}
		if err := expense.Update(cmd.details()); err != nil {
			return err
		}
		if err := repos.Expenses().Save(ctx, expense); err != nil {
			return err
		}
		found, err := finance.NewMirror(repos.Ledger()).SyncExpense(ctx, expense)
		if err != nil {
			return err
		}
		if !found {
			warnMissingMirror(ctx, "expense", expense.ID)
		}
		resp := ToExpenseResponse(expense)
		result = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteExpense removes a standalone expense together with its mirror
func (s *FinanceService) DeleteExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "delete_expense",
		telemetry.WithAttribute(telemetry.SpanAttrExpenseID, expenseID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	return s.scope.Execute(ctx, tenantID, func(ctx context.Context, repos appshared.Repositories) error {
		expense, err := repos.Expenses().FindByID(ctx, tenantID, expenseID)
		if err != nil {
			return err
		}
		if expense.IsPurchaseLinked() {
			return shared.NewBusinessRuleError(
				"Expense is managed by its purchase",
				"This expense was created by a stock purchase; delete the purchase instead",
			)
		}
		if err := finance.NewMirror(repos.Ledger()).RemoveForExpense(ctx, expense); err != nil {
			return err
		}
		return repos.Expenses().Delete(ctx, tenantID, expenseID)
	})
}

// GetExpense returns an expense by id
func (s *FinanceService) GetExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	expense, err := s.repos.Expenses().FindByID(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// ListExpenses lists expenses, newest first
func (s *FinanceService) ListExpenses(ctx context.Context, tenantID uuid.UUID, filter EntryListFilter) (*shared.Paginated[ExpenseResponse], error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	domainFilter := filter.toDomain()
	expenses, total, err := s.repos.Expenses().FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		items[i] = ToExpenseResponse(&expenses[i])
	}
	result := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}
