package roles

import (
	"time"

	"github.com/platinummonkey/warden/pkg/authority"
)

// RoleKind is a closed tagged variant identifying special roles. It is set
// at creation and never changes afterwards.
type RoleKind string

const (
	// KindOrdinary marks a regular role manageable through the role
	// mutation endpoints.
	KindOrdinary RoleKind = "ordinary"
	// KindSuperadmin marks the built-in per-tenant super-admin role
	// created alongside its tenant.
	KindSuperadmin RoleKind = "superadmin"
	// KindSysadmin marks the platform system-admin role. It is global
	// and seeded by migration.
	KindSysadmin RoleKind = "sysadmin"
)

// Reserved role names. Ordinary role creation and update reject these
// outright, case-insensitively, regardless of the payload's system flag.
const (
	SuperadminName = "Administrator"
	SysadminName   = "SysAdmin"
)

// Role represents a named set of authorities. A nil TenantID marks a
// global role.
type Role struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Kind        RoleKind              `json:"kind"`
	TenantID    *int64                `json:"tenant_id,omitempty"`
	Authorities []authority.Authority `json:"authorities"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// IsSystem reports whether the role is one of the built-in roles that
// cannot be created, edited, or deleted through the normal mutation paths.
func (r *Role) IsSystem() bool {
	return r.Kind != KindOrdinary
}

// IsGlobal reports whether the role applies across all tenants.
func (r *Role) IsGlobal() bool {
	return r.TenantID == nil
}

// BelongsTo reports whether the role is scoped to the given tenant.
// Global roles belong to no tenant.
func (r *Role) BelongsTo(tenantID int64) bool {
	return r.TenantID != nil && *r.TenantID == tenantID
}

// NewSuperadminRole returns the system super-admin role definition for a
// tenant, carrying the full tenant authority universe.
func NewSuperadminRole(tenantID int64) *Role {
	id := tenantID
	return &Role{
		Name:        SuperadminName,
		Kind:        KindSuperadmin,
		TenantID:    &id,
		Authorities: authority.AllTenantAuthorities(),
	}
}
