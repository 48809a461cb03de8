package users

import (
	"github.com/platinummonkey/warden/pkg/roles"
)

// ValidateRolesChange is the role-assignment guard. It is the single
// gate for every change to a user's role set in a tenant: direct
// replacement and invite issuance (which passes an empty oldRoles).
//
// The checks run in a fixed order and the first failure wins:
//
//  1. granting a super-admin role requires the acting user to hold one
//     in the acting tenant
//  2. revoking a super-admin role requires the same
//  3. the system-admin role can never be granted here
//  4. the system-admin role can never be revoked here
//  5. global roles cannot be granted through the tenant path
//  6. every role involved must belong to the acting tenant
func ValidateRolesChange(actingTenantID int64, actingUser *User, oldRoles, newRoles []roles.Role) error {
	if err := checkSuperadminGrant(actingTenantID, actingUser, newRoles); err != nil {
		return err
	}
	if err := checkSuperadminRevoke(actingTenantID, actingUser, oldRoles); err != nil {
		return err
	}
	if err := checkSysadminGrant(newRoles); err != nil {
		return err
	}
	if err := checkSysadminRevoke(oldRoles); err != nil {
		return err
	}
	if err := checkGlobalGrant(newRoles); err != nil {
		return err
	}
	return checkTenantScope(actingTenantID, oldRoles, newRoles)
}

func checkSuperadminGrant(actingTenantID int64, actingUser *User, newRoles []roles.Role) error {
	for _, role := range newRoles {
		if role.Kind == roles.KindSuperadmin && !IsSuperadminIn(actingUser, actingTenantID) {
			return ErrSuperadminGrantRequiresSuperadmin
		}
	}
	return nil
}

func checkSuperadminRevoke(actingTenantID int64, actingUser *User, oldRoles []roles.Role) error {
	for _, role := range oldRoles {
		if role.Kind == roles.KindSuperadmin && !IsSuperadminIn(actingUser, actingTenantID) {
			return ErrCannotModifyAnothersSuperadmin
		}
	}
	return nil
}

func checkSysadminGrant(newRoles []roles.Role) error {
	for _, role := range newRoles {
		if role.Kind == roles.KindSysadmin {
			return ErrSysadminRoleReserved
		}
	}
	return nil
}

func checkSysadminRevoke(oldRoles []roles.Role) error {
	for _, role := range oldRoles {
		if role.Kind == roles.KindSysadmin {
			return ErrSysadminRoleImmutable
		}
	}
	return nil
}

func checkGlobalGrant(newRoles []roles.Role) error {
	for _, role := range newRoles {
		if role.IsGlobal() {
			return ErrGlobalRoleNotAssignable
		}
	}
	return nil
}

func checkTenantScope(actingTenantID int64, oldRoles, newRoles []roles.Role) error {
	for _, set := range [][]roles.Role{oldRoles, newRoles} {
		for _, role := range set {
			if !role.BelongsTo(actingTenantID) {
				return &TenantScopeMismatchError{
					RoleID:         role.ID,
					RoleTenantID:   role.TenantID,
					ActingTenantID: actingTenantID,
				}
			}
		}
	}
	return nil
}
