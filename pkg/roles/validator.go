package roles

import (
	"strings"

	"github.com/platinummonkey/warden/pkg/authority"
)

// NormalizeName collapses interior whitespace runs to single spaces and
// trims leading and trailing whitespace, matching how names are stored.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ValidateNewRole runs the ordered definition checks shared by role
// creation and update. The role's Name is expected to be normalized
// already. The first failing check wins; each check maps to a distinct
// error so callers can render a precise message.
//
// The system flag is carried separately from Role.Kind because it
// reflects what the caller asked for on the wire, not what is stored.
func ValidateNewRole(role *Role, systemRequested bool) error {
	if role.Name == "" {
		return ErrNameRequired
	}

	if systemRequested {
		return ErrSystemRoleForbidden
	}

	if invalid := authority.MissingPrerequisites(role.Authorities); len(invalid) > 0 {
		seen := make(map[authority.Authority]bool)
		var required []authority.Authority
		for _, a := range invalid {
			for _, req := range authority.RequiredBy(a) {
				if !seen[req] {
					seen[req] = true
					required = append(required, req)
				}
			}
		}
		authority.Sort(required)
		return &MissingPrerequisitesError{Authorities: invalid, Required: required}
	}

	if foreign := nonTenantAuthorities(role.Authorities); len(foreign) > 0 {
		return &NotTenantAuthorityError{Authorities: foreign}
	}

	if strings.EqualFold(role.Name, SuperadminName) {
		return &ReservedNameError{Name: SuperadminName}
	}
	if strings.EqualFold(role.Name, SysadminName) {
		return &ReservedNameError{Name: SysadminName}
	}

	if role.TenantID == nil {
		return ErrGlobalRoleForbidden
	}

	return nil
}

func nonTenantAuthorities(as []authority.Authority) []authority.Authority {
	var foreign []authority.Authority
	for _, a := range authority.Dedup(as) {
		if !authority.IsTenantAuthority(a) {
			foreign = append(foreign, a)
		}
	}
	return foreign
}

// filterTenantAuthorities drops any authority outside the tenant universe
// and deduplicates. Applied before persisting, mirroring the validation
// so stored roles never carry foreign authorities.
func filterTenantAuthorities(as []authority.Authority) []authority.Authority {
	kept := make([]authority.Authority, 0, len(as))
	for _, a := range authority.Dedup(as) {
		if authority.IsTenantAuthority(a) {
			kept = append(kept, a)
		}
	}
	return kept
}
