package roles

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/warden/pkg/authority"
)

// Policy error kinds for role validation. These are deterministic
// user-input errors: the caller must change the request, never retry.
const (
	KindNameRequired           = "name_required"
	KindSystemRoleForbidden    = "system_role_forbidden"
	KindMissingPrerequisites   = "missing_prerequisite_authorities"
	KindAuthorityNotTenant     = "authority_not_tenant_scoped"
	KindReservedName           = "reserved_name"
	KindGlobalRoleForbidden    = "global_role_forbidden"
	KindRoleNotFound           = "role_not_found"
	KindTenantMismatch         = "tenant_mismatch"
	KindRoleNameExists         = "role_name_exists"
	KindTenantNotFound         = "tenant_not_found"
)

// sentinelError is a policy error with no structured detail beyond its kind.
type sentinelError struct {
	kind    string
	message string
}

func (e *sentinelError) Error() string { return e.message }
func (e *sentinelError) Kind() string  { return e.kind }

var (
	// ErrNameRequired is returned when a role name is blank after
	// whitespace normalization.
	ErrNameRequired = &sentinelError{KindNameRequired, "role name is required"}

	// ErrSystemRoleForbidden is returned when the caller flags a role as
	// system, or targets a system role through a normal mutation path.
	ErrSystemRoleForbidden = &sentinelError{KindSystemRoleForbidden, "system roles cannot be created, modified, or deleted"}

	// ErrGlobalRoleForbidden is returned when a role reaches the
	// tenant-scoped mutation path without a tenant.
	ErrGlobalRoleForbidden = &sentinelError{KindGlobalRoleForbidden, "global roles cannot be managed through this path"}

	// ErrRoleNameExists is returned when a role name collides with
	// another role anywhere in the system.
	ErrRoleNameExists = &sentinelError{KindRoleNameExists, "a role with this name already exists"}
)

// MissingPrerequisitesError reports authorities whose declared
// prerequisites are absent from the requested set. Both lists are sorted
// lexicographically for stable output.
type MissingPrerequisitesError struct {
	Authorities []authority.Authority `json:"authorities"`
	Required    []authority.Authority `json:"required"`
}

func (e *MissingPrerequisitesError) Error() string {
	return fmt.Sprintf("authorities %s require %s to also be granted",
		joinAuthorities(e.Authorities), joinAuthorities(e.Required))
}

// Kind returns the machine-readable error kind.
func (e *MissingPrerequisitesError) Kind() string { return KindMissingPrerequisites }

// NotTenantAuthorityError reports authorities outside the tenant universe
// on a tenant-scoped role.
type NotTenantAuthorityError struct {
	Authorities []authority.Authority `json:"authorities"`
}

func (e *NotTenantAuthorityError) Error() string {
	return fmt.Sprintf("authorities %s are not tenant authorities", joinAuthorities(e.Authorities))
}

// Kind returns the machine-readable error kind.
func (e *NotTenantAuthorityError) Kind() string { return KindAuthorityNotTenant }

// ReservedNameError reports an attempt to use a reserved sentinel name.
type ReservedNameError struct {
	Name string `json:"name"`
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("role name %q is reserved", e.Name)
}

// Kind returns the machine-readable error kind.
func (e *ReservedNameError) Kind() string { return KindReservedName }

// RoleNotFoundError reports an update or lookup against a missing role.
type RoleNotFoundError struct {
	RoleID int64 `json:"role_id"`
}

func (e *RoleNotFoundError) Error() string {
	return fmt.Sprintf("role %d not found", e.RoleID)
}

// Kind returns the machine-readable error kind.
func (e *RoleNotFoundError) Kind() string { return KindRoleNotFound }

// TenantMismatchError reports a role operation whose target belongs to a
// different tenant than the acting tenant.
type TenantMismatchError struct {
	RoleTenantID   *int64 `json:"role_tenant_id"`
	ActingTenantID int64  `json:"acting_tenant_id"`
}

func (e *TenantMismatchError) Error() string {
	if e.RoleTenantID == nil {
		return fmt.Sprintf("role belongs to no tenant, acting tenant is %d", e.ActingTenantID)
	}
	return fmt.Sprintf("role belongs to tenant %d, acting tenant is %d", *e.RoleTenantID, e.ActingTenantID)
}

// Kind returns the machine-readable error kind.
func (e *TenantMismatchError) Kind() string { return KindTenantMismatch }

// TenantNotFoundError reports a role operation against a missing tenant.
type TenantNotFoundError struct {
	TenantID int64 `json:"tenant_id"`
}

func (e *TenantNotFoundError) Error() string {
	return fmt.Sprintf("tenant %d not found", e.TenantID)
}

// Kind returns the machine-readable error kind.
func (e *TenantNotFoundError) Kind() string { return KindTenantNotFound }

func joinAuthorities(as []authority.Authority) string {
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}
