package users

import "fmt"

// Machine-readable error kinds for role-assignment policy failures.
const (
	KindSuperadminGrantRequiresSuperadmin = "superadmin_grant_requires_superadmin"
	KindCannotModifyAnothersSuperadmin    = "cannot_modify_anothers_superadmin_role"
	KindSysadminRoleReserved              = "system_admin_role_reserved"
	KindSysadminRoleImmutable             = "system_admin_role_immutable"
	KindGlobalRoleNotAssignable           = "global_role_not_assignable"
	KindTenantScopeMismatch               = "tenant_scope_mismatch"
	KindRoleNotPermits                    = "role_not_permits"
	KindPrincipalRequired                 = "principal_required"
	KindPrincipalExists                   = "principal_exists"
)

type sentinelError struct {
	kind    string
	message string
}

func (e *sentinelError) Error() string { return e.message }

// Kind returns the machine-readable error kind.
func (e *sentinelError) Kind() string { return e.kind }

// Guard policy errors, in check order.
var (
	// ErrSuperadminGrantRequiresSuperadmin is returned when a caller who
	// does not hold the tenant's super-admin role tries to grant it.
	ErrSuperadminGrantRequiresSuperadmin = &sentinelError{
		kind:    KindSuperadminGrantRequiresSuperadmin,
		message: "only a super-admin of the tenant may grant its super-admin role",
	}
	// ErrCannotModifyAnothersSuperadmin is returned when a caller who
	// does not hold the tenant's super-admin role tries to strip it from
	// another user.
	ErrCannotModifyAnothersSuperadmin = &sentinelError{
		kind:    KindCannotModifyAnothersSuperadmin,
		message: "only a super-admin of the tenant may revoke its super-admin role",
	}
	// ErrSysadminRoleReserved is returned when a change tries to grant
	// the platform system-admin role.
	ErrSysadminRoleReserved = &sentinelError{
		kind:    KindSysadminRoleReserved,
		message: "the system admin role cannot be granted",
	}
	// ErrSysadminRoleImmutable is returned when a change tries to revoke
	// the platform system-admin role.
	ErrSysadminRoleImmutable = &sentinelError{
		kind:    KindSysadminRoleImmutable,
		message: "the system admin role cannot be revoked",
	}
	// ErrGlobalRoleNotAssignable is returned when a change tries to
	// grant a global role through the tenant-scoped path.
	ErrGlobalRoleNotAssignable = &sentinelError{
		kind:    KindGlobalRoleNotAssignable,
		message: "global roles cannot be assigned through tenant role changes",
	}
)

// ErrPrincipalRequired is returned when registration carries no usable
// principal strings.
var ErrPrincipalRequired = &sentinelError{
	kind:    KindPrincipalRequired,
	message: "at least one principal is required",
}

// PrincipalExistsError is returned when a registration principal is
// already claimed by another user.
type PrincipalExistsError struct {
	Principal string
}

func (e *PrincipalExistsError) Error() string {
	return fmt.Sprintf("principal %q is already in use", e.Principal)
}

// Kind returns the machine-readable error kind.
func (e *PrincipalExistsError) Kind() string { return KindPrincipalExists }

// TenantScopeMismatchError is returned when a role in the change belongs
// to a tenant other than the acting tenant.
type TenantScopeMismatchError struct {
	RoleID         int64
	RoleTenantID   *int64
	ActingTenantID int64
}

func (e *TenantScopeMismatchError) Error() string {
	if e.RoleTenantID == nil {
		return fmt.Sprintf("role %d is not scoped to tenant %d", e.RoleID, e.ActingTenantID)
	}
	return fmt.Sprintf("role %d belongs to tenant %d, not acting tenant %d", e.RoleID, *e.RoleTenantID, e.ActingTenantID)
}

// Kind returns the machine-readable error kind.
func (e *TenantScopeMismatchError) Kind() string { return KindTenantScopeMismatch }

// RoleNotPermitsError is returned when a membership removal is blocked
// by a protected role the target holds.
type RoleNotPermitsError struct {
	UserID   int64
	RoleName string
}

func (e *RoleNotPermitsError) Error() string {
	return fmt.Sprintf("user %d holds protected role %q and cannot be removed", e.UserID, e.RoleName)
}

// Kind returns the machine-readable error kind.
func (e *RoleNotPermitsError) Kind() string { return KindRoleNotPermits }
