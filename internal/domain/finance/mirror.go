package finance

import (
	"context"

	"github.com/erp/retail/internal/domain/shared"
)

// ErrAlreadyMirrored is returned when a source record already has its ledger row
var ErrAlreadyMirrored = shared.NewDomainError("ALREADY_MIRRORED", "The record already has a ledger transaction")

// Mirror keeps exactly one LedgerTransaction per Expense and per Payment.
// It must be built over a repository bound to the caller's transaction so the
// mirror write commits or rolls back together with its source.
type Mirror struct {
	ledger LedgerTransactionRepository
}

// NewMirror creates a Mirror over the given ledger repository
func NewMirror(ledger LedgerTransactionRepository) *Mirror {
	return &Mirror{ledger: ledger}
}

// MirrorExpense inserts the ledger row of a newly created expense
func (m *Mirror) MirrorExpense(ctx context.Context, e *Expense) (*LedgerTransaction, error) {
	existing, err := m.ledger.FindByExpense(ctx, e.TenantID, e.ID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMirrored
	}
	txn := NewMirrorForExpense(e)
	if err := m.ledger.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// MirrorPayment inserts the ledger row of a newly created payment
func (m *Mirror) MirrorPayment(ctx context.Context, p *Payment) (*LedgerTransaction, error) {
	existing, err := m.ledger.FindByPayment(ctx, p.TenantID, p.ID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMirrored
	}
	txn := NewMirrorForPayment(p)
	if err := m.ledger.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// SyncExpense overwrites the mirror of an edited expense.
// It reports false, without error, when no mirror exists.
func (m *Mirror) SyncExpense(ctx context.Context, e *Expense) (bool, error) {
	txn, err := m.ledger.FindByExpense(ctx, e.TenantID, e.ID)
	if shared.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	txn.SyncFromExpense(e)
	return true, m.ledger.Save(ctx, txn)
}

// SyncPayment overwrites the mirror of an edited payment.
// It reports false, without error, when no mirror exists.
func (m *Mirror) SyncPayment(ctx context.Context, p *Payment) (bool, error) {
	txn, err := m.ledger.FindByPayment(ctx, p.TenantID, p.ID)
	if shared.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	txn.SyncFromPayment(p)
	return true, m.ledger.Save(ctx, txn)
}

// RemoveForExpense deletes the mirror of an expense, if any
func (m *Mirror) RemoveForExpense(ctx context.Context, e *Expense) error {
	txn, err := m.ledger.FindByExpense(ctx, e.TenantID, e.ID)
	if shared.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return m.ledger.Delete(ctx, txn.TenantID, txn.ID)
}

// RemoveForPayment deletes the mirror of a payment, if any
func (m *Mirror) RemoveForPayment(ctx context.Context, p *Payment) error {
	txn, err := m.ledger.FindByPayment(ctx, p.TenantID, p.ID)
	if shared.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return m.ledger.Delete(ctx, txn.TenantID, txn.ID)
}
