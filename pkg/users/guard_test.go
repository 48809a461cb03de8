package users

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/warden/pkg/roles"
)

func TestValidateRolesChange(t *testing.T) {
	tenantID := int64(7)

	superadmin := &User{ID: 1, Roles: []roles.Role{tenantRole(2, tenantID, roles.KindSuperadmin)}}
	member := &User{ID: 2, Roles: []roles.Role{tenantRole(10, tenantID, roles.KindOrdinary)}}

	ordinary := tenantRole(10, tenantID, roles.KindOrdinary)
	other := tenantRole(11, tenantID, roles.KindOrdinary)
	superadminRole := tenantRole(2, tenantID, roles.KindSuperadmin)
	sysadminRole := globalRole(1, roles.KindSysadmin)
	globalOrdinary := globalRole(20, roles.KindOrdinary)
	foreignRole := tenantRole(30, 8, roles.KindOrdinary)

	t.Run("plain swap passes", func(t *testing.T) {
		err := ValidateRolesChange(tenantID, member, []roles.Role{ordinary}, []roles.Role{other})
		assert.NoError(t, err)
	})

	t.Run("empty change passes", func(t *testing.T) {
		assert.NoError(t, ValidateRolesChange(tenantID, member, nil, nil))
	})

	t.Run("superadmin grant requires superadmin", func(t *testing.T) {
		err := ValidateRolesChange(tenantID, member, nil, []roles.Role{superadminRole})
		assert.ErrorIs(t, err, ErrSuperadminGrantRequiresSuperadmin)

		assert.NoError(t, ValidateRolesChange(tenantID, superadmin, nil, []roles.Role{superadminRole}))
	})

	t.Run("superadmin held in another tenant does not count", func(t *testing.T) {
		otherTenantAdmin := &User{ID: 3, Roles: []roles.Role{tenantRole(40, 8, roles.KindSuperadmin)}}
		err := ValidateRolesChange(tenantID, otherTenantAdmin, nil, []roles.Role{superadminRole})
		assert.ErrorIs(t, err, ErrSuperadminGrantRequiresSuperadmin)
	})

	t.Run("superadmin revoke requires superadmin", func(t *testing.T) {
		err := ValidateRolesChange(tenantID, member, []roles.Role{superadminRole}, nil)
		assert.ErrorIs(t, err, ErrCannotModifyAnothersSuperadmin)

		assert.NoError(t, ValidateRolesChange(tenantID, superadmin, []roles.Role{superadminRole}, nil))
	})

	t.Run("sysadmin can never be granted", func(t *testing.T) {
		err := ValidateRolesChange(tenantID, superadmin, nil, []roles.Role{sysadminRole})
		assert.ErrorIs(t, err, ErrSysadminRoleReserved)
	})

	t.Run("sysadmin can never be revoked", func(t *testing.T) {
		err := ValidateRolesChange(tenantID, superadmin, []roles.Role{sysadminRole}, nil)
		assert.ErrorIs(t, err, ErrSysadminRoleImmutable)
	})

	t.Run("global roles are not assignable", func(t *testing.T) {
		err := ValidateRolesChange(tenantID, superadmin, nil, []roles.Role{globalOrdinary})
		assert.ErrorIs(t, err, ErrGlobalRoleNotAssignable)
	})

	t.Run("foreign tenant role in grant", func(t *testing.T) {
		err := ValidateRolesChange(tenantID, member, nil, []roles.Role{foreignRole})
		var tsm *TenantScopeMismatchError
		require.True(t, errors.As(err, &tsm))
		assert.Equal(t, int64(30), tsm.RoleID)
		assert.Equal(t, tenantID, tsm.ActingTenantID)
	})

	t.Run("foreign tenant role in revoke", func(t *testing.T) {
		err := ValidateRolesChange(tenantID, member, []roles.Role{foreignRole}, nil)
		var tsm *TenantScopeMismatchError
		assert.True(t, errors.As(err, &tsm))
	})

	t.Run("first failing check wins", func(t *testing.T) {
		// A change that violates several rules at once reports the
		// superadmin grant first.
		err := ValidateRolesChange(tenantID, member,
			[]roles.Role{sysadminRole},
			[]roles.Role{superadminRole, globalOrdinary, foreignRole})
		assert.ErrorIs(t, err, ErrSuperadminGrantRequiresSuperadmin)

		// With superadmin privilege, the sysadmin revoke is next after
		// the grant checks.
		err = ValidateRolesChange(tenantID, superadmin,
			[]roles.Role{sysadminRole},
			[]roles.Role{globalOrdinary, foreignRole})
		assert.ErrorIs(t, err, ErrSysadminRoleImmutable)

		// Drop the sysadmin revoke and the global grant is reported
		// before the tenant scope mismatch.
		err = ValidateRolesChange(tenantID, superadmin,
			nil,
			[]roles.Role{globalOrdinary, foreignRole})
		assert.ErrorIs(t, err, ErrGlobalRoleNotAssignable)
	})
}
