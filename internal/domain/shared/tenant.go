package shared

import "github.com/google/uuid"

// TenantScoped is implemented by every tenant-owned record. The persistence
// layer stamps and verifies ownership only through this interface.
type TenantScoped interface {
	GetTenantID() uuid.UUID
	SetTenantID(id uuid.UUID)
}

// RequireTenant returns Unauthorized when no tenant was resolved for the caller
func RequireTenant(tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return NewUnauthorizedError()
	}
	return nil
}

var (
	_ TenantScoped = (*TenantEntity)(nil)
	_ TenantScoped = (*TenantAggregateRoot)(nil)
)
