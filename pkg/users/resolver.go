package users

import (
	"github.com/platinummonkey/warden/pkg/authority"
	"github.com/platinummonkey/warden/pkg/roles"
)

// EffectiveAuthorities computes the authority set a user exercises while
// acting within one tenant: the union over every role that is either
// global or scoped to that tenant, deduplicated and sorted.
func EffectiveAuthorities(user *User, tenantID int64) []authority.Authority {
	seen := make(map[authority.Authority]bool)
	var effective []authority.Authority
	for _, role := range user.Roles {
		if !role.IsGlobal() && !role.BelongsTo(tenantID) {
			continue
		}
		for _, a := range role.Authorities {
			if !seen[a] {
				seen[a] = true
				effective = append(effective, a)
			}
		}
	}
	authority.Sort(effective)
	return effective
}

// GlobalAuthorities computes the authority set granted by the user's
// global roles alone, deduplicated and sorted.
func GlobalAuthorities(user *User) []authority.Authority {
	seen := make(map[authority.Authority]bool)
	var global []authority.Authority
	for _, role := range user.Roles {
		if !role.IsGlobal() {
			continue
		}
		for _, a := range role.Authorities {
			if !seen[a] {
				seen[a] = true
				global = append(global, a)
			}
		}
	}
	authority.Sort(global)
	return global
}

// RolesInTenant returns the user's roles scoped to exactly the given
// tenant. Global roles are excluded; this is the role-removal and
// privilege-check view, distinct from EffectiveAuthorities which merges
// global grants in.
func RolesInTenant(user *User, tenantID int64) []roles.Role {
	var scoped []roles.Role
	for _, role := range user.Roles {
		if role.BelongsTo(tenantID) {
			scoped = append(scoped, role)
		}
	}
	return scoped
}

// HasAuthority reports whether the user's effective authority set in the
// tenant contains the given authority.
func HasAuthority(user *User, tenantID int64, a authority.Authority) bool {
	for _, role := range user.Roles {
		if !role.IsGlobal() && !role.BelongsTo(tenantID) {
			continue
		}
		for _, held := range role.Authorities {
			if held == a {
				return true
			}
		}
	}
	return false
}

// HasGlobalAuthority reports whether any of the user's global roles
// grants the given authority.
func HasGlobalAuthority(user *User, a authority.Authority) bool {
	for _, role := range user.Roles {
		if !role.IsGlobal() {
			continue
		}
		for _, held := range role.Authorities {
			if held == a {
				return true
			}
		}
	}
	return false
}

// IsSuperadminIn reports whether the user holds the tenant's super-admin
// role.
func IsSuperadminIn(user *User, tenantID int64) bool {
	for _, role := range user.Roles {
		if role.Kind == roles.KindSuperadmin && role.BelongsTo(tenantID) {
			return true
		}
	}
	return false
}

// IsSysadmin reports whether the user holds the platform system-admin
// role.
func IsSysadmin(user *User) bool {
	for _, role := range user.Roles {
		if role.Kind == roles.KindSysadmin {
			return true
		}
	}
	return false
}
