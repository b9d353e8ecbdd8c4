// Package tenant enforces tenant isolation at the GORM layer.
//
// Repositories always filter by the tenant id they receive explicitly. The
// transaction scope additionally binds that tenant to the session context with
// NewContext, and the callbacks registered by Register use it to:
//
//   - stamp TenantScoped rows created without a tenant,
//   - reject any create or update that would put a row under another tenant,
//   - add tenant_id = ? to SELECT, UPDATE and DELETE statements lacking it.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTenantIDRequired is returned when no tenant is bound to the session
var ErrTenantIDRequired = errors.New("tenant_id is required but not bound to the session")

// ErrTenantReassigned is returned when a write would change the owner of a row.
// It is an integrity violation, never a user error.
var ErrTenantReassigned = errors.New("tenant_id of a persisted row cannot change")

type contextKey struct{}

// NewContext binds the acting tenant to ctx for the GORM callbacks
func NewContext(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKey{}, tenantID)
}

// FromContext returns the tenant bound to ctx, uuid.Nil when none
func FromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if id, ok := ctx.Value(contextKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
