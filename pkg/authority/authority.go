package authority

import "sort"

// Authority represents an atomic permission tag attachable to a role.
type Authority string

// Tenant-scoped authorities.
const (
	ModifyTenant    Authority = "MODIFY_TENANT"
	ViewUsers       Authority = "VIEW_USERS"
	CreateUsers     Authority = "CREATE_USERS"
	DeleteUsers     Authority = "DELETE_USERS"
	ViewRoles       Authority = "VIEW_ROLES"
	CreateRoles     Authority = "CREATE_ROLES"
	ModifyRoles     Authority = "MODIFY_ROLES"
	DeleteRoles     Authority = "DELETE_ROLES"
	ModifyUserRoles Authority = "MODIFY_USER_ROLES"
)

// Global authorities. These are only valid on roles that have no tenant.
const (
	CreateTenants Authority = "CREATE_TENANTS"
)

// maxClosureRounds bounds the fixed-point iteration in MissingPrerequisites.
// The table is currently one level deep, but the check tolerates deeper
// chains up to this bound.
const maxClosureRounds = 10

// requires maps an authority to the authorities that must be granted
// alongside it. Declared as an explicit constant table so it is
// inspectable and directly testable.
var requires = map[Authority][]Authority{
	CreateUsers:     {ViewUsers},
	DeleteUsers:     {ViewUsers},
	CreateRoles:     {ViewRoles},
	ModifyRoles:     {ViewRoles},
	DeleteRoles:     {ViewRoles},
	ModifyUserRoles: {ViewRoles, ViewUsers},
}

// tenantAuthorities is the universe of authorities usable on tenant-scoped roles.
var tenantAuthorities = map[Authority]bool{
	ModifyTenant:    true,
	ViewUsers:       true,
	CreateUsers:     true,
	DeleteUsers:     true,
	ViewRoles:       true,
	CreateRoles:     true,
	ModifyRoles:     true,
	DeleteRoles:     true,
	ModifyUserRoles: true,
}

// globalAuthorities is the universe of authorities usable on global roles.
var globalAuthorities = map[Authority]bool{
	CreateTenants: true,
}

// AllTenantAuthorities returns the tenant authority universe, sorted.
func AllTenantAuthorities() []Authority {
	return sortedKeys(tenantAuthorities)
}

// AllGlobalAuthorities returns the global authority universe, sorted.
func AllGlobalAuthorities() []Authority {
	return sortedKeys(globalAuthorities)
}

// IsTenantAuthority reports whether a is usable on a tenant-scoped role.
func IsTenantAuthority(a Authority) bool {
	return tenantAuthorities[a]
}

// IsGlobalAuthority reports whether a is usable on a global role.
func IsGlobalAuthority(a Authority) bool {
	return globalAuthorities[a]
}

// RequiredBy returns the declared prerequisites of a, sorted. The result
// is a copy; callers may mutate it freely.
func RequiredBy(a Authority) []Authority {
	reqs := requires[a]
	if len(reqs) == 0 {
		return nil
	}
	out := make([]Authority, len(reqs))
	copy(out, reqs)
	Sort(out)
	return out
}

// MissingPrerequisites returns the subset of candidate whose declared
// prerequisites are not fully contained in candidate. An empty result
// means the set is self-consistent. The containment check is repeated
// until it reaches a fixed point so that multi-level prerequisite chains
// are handled without code changes, even though the current table is
// only one level deep.
func MissingPrerequisites(candidate []Authority) []Authority {
	present := make(map[Authority]bool, len(candidate))
	for _, a := range candidate {
		present[a] = true
	}

	invalid := make(map[Authority]bool)
	for round := 0; round < maxClosureRounds; round++ {
		changed := false
		for a := range present {
			if invalid[a] {
				continue
			}
			for _, req := range requires[a] {
				if !present[req] || invalid[req] {
					invalid[a] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}

	if len(invalid) == 0 {
		return nil
	}
	return sortedKeys(invalid)
}

// Sort orders a slice of authorities lexicographically in place.
func Sort(as []Authority) {
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
}

// Dedup returns a sorted copy of as with duplicates removed.
func Dedup(as []Authority) []Authority {
	seen := make(map[Authority]bool, len(as))
	for _, a := range as {
		seen[a] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[Authority]bool) []Authority {
	out := make([]Authority, 0, len(m))
	for a := range m {
		out = append(out, a)
	}
	Sort(out)
	return out
}
