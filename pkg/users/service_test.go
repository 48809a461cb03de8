package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/warden/pkg/roles"
)

type serviceFixture struct {
	svc       *Service
	userMock  sqlmock.Sqlmock
	roleMock  sqlmock.Sqlmock
	closeFunc func()
}

func newServiceFixture(t *testing.T) *serviceFixture {
	userStore, userMock, userDB := newMockStore(t)
	roleDB, roleMock, err := sqlmock.New()
	require.NoError(t, err)

	return &serviceFixture{
		svc:      NewService(userStore, roles.NewStore(roleDB)),
		userMock: userMock,
		roleMock: roleMock,
		closeFunc: func() {
			userDB.Close()
			roleDB.Close()
		},
	}
}

func (f *serviceFixture) expectUser(userID int64, rows *sqlmock.Rows, roleRows *sqlmock.Rows) {
	f.userMock.ExpectQuery(`SELECT id, principals, display_name, created_at, updated_at FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(rows)
	if roleRows != nil {
		f.userMock.ExpectQuery(`SELECT r.id, r.name.+FROM roles r`).
			WithArgs(userID).
			WillReturnRows(roleRows)
	}
}

func (f *serviceFixture) expectRolesByIDs(rows *sqlmock.Rows) {
	f.roleMock.ExpectQuery(`SELECT .+ FROM roles\s+WHERE id = ANY\(\$1\)`).
		WillReturnRows(rows)
}

func storedRoleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "kind", "tenant_id", "authorities", "created_at", "updated_at"})
}

func TestServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with normalized principals", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.userMock.ExpectQuery(`SELECT id, principals, display_name, created_at, updated_at FROM users WHERE principals @> \$1`).
			WithArgs(`["alice@example.com"]`).
			WillReturnRows(userRows())
		f.userMock.ExpectQuery(`INSERT INTO users`).
			WithArgs(`["alice@example.com"]`, "Alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

		user, err := f.svc.Register(ctx, &RegisterRequest{
			Principals:  []string{" alice@example.com ", "", "alice@example.com"},
			DisplayName: " Alice ",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"alice@example.com"}, user.Principals)
		assert.Equal(t, "Alice", user.DisplayName)

		require.NoError(t, f.userMock.ExpectationsWereMet())
	})

	t.Run("no usable principals", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		_, err := f.svc.Register(ctx, &RegisterRequest{Principals: []string{"", "  "}})
		assert.ErrorIs(t, err, ErrPrincipalRequired)
	})

	t.Run("claimed principal", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		now := time.Now()
		f.userMock.ExpectQuery(`SELECT id, principals, display_name, created_at, updated_at FROM users WHERE principals @> \$1`).
			WithArgs(`["alice@example.com"]`).
			WillReturnRows(userRows().AddRow(5, `["alice@example.com"]`, "Alice", now, now))
		f.userMock.ExpectQuery(`SELECT r.id, r.name.+FROM roles r`).
			WithArgs(int64(5)).
			WillReturnRows(membershipRoleRows())

		_, err := f.svc.Register(ctx, &RegisterRequest{Principals: []string{"alice@example.com"}})
		var pee *PrincipalExistsError
		require.True(t, errors.As(err, &pee))
		assert.Equal(t, "alice@example.com", pee.Principal)
	})
}

func TestServiceModifyRoles(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	tenantID := int64(7)

	actingSuperadmin := &User{ID: 1, Roles: []roles.Role{tenantRole(2, tenantID, roles.KindSuperadmin)}}
	actingMember := &User{ID: 2, Roles: []roles.Role{tenantRole(10, tenantID, roles.KindOrdinary)}}

	t.Run("swap passes the guard and replaces memberships", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(5, userRows().AddRow(5, `["bob@example.com"]`, "Bob", now, now), membershipRoleRows())
		f.expectRolesByIDs(storedRoleRows().AddRow(10, "Auditors", "ordinary", tenantID, `[]`, now, now))
		f.expectRolesByIDs(storedRoleRows().AddRow(11, "Operators", "ordinary", tenantID, `[]`, now, now))

		f.userMock.ExpectBegin()
		f.userMock.ExpectExec(`DELETE FROM user_roles WHERE user_id = \$1 AND role_id = ANY\(\$2\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.userMock.ExpectExec(`INSERT INTO user_roles`).
			WithArgs(int64(5), int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.userMock.ExpectCommit()

		err := f.svc.ModifyRoles(ctx, tenantID, actingMember, 5, []int64{10}, []int64{11})
		require.NoError(t, err)
		require.NoError(t, f.userMock.ExpectationsWereMet())
	})

	t.Run("unresolvable ids are dropped before validation", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(5, userRows().AddRow(5, `["bob@example.com"]`, "Bob", now, now), membershipRoleRows())
		// Requested old role 99 no longer exists; the resolved old set is
		// empty so only the grant happens.
		f.expectRolesByIDs(storedRoleRows())
		f.expectRolesByIDs(storedRoleRows().AddRow(11, "Operators", "ordinary", tenantID, `[]`, now, now))

		f.userMock.ExpectBegin()
		f.userMock.ExpectExec(`INSERT INTO user_roles`).
			WithArgs(int64(5), int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.userMock.ExpectCommit()

		err := f.svc.ModifyRoles(ctx, tenantID, actingMember, 5, []int64{99}, []int64{11})
		require.NoError(t, err)
	})

	t.Run("missing target is a no-op", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(99, userRows(), nil)

		err := f.svc.ModifyRoles(ctx, tenantID, actingMember, 99, []int64{10}, []int64{11})
		require.NoError(t, err)
		require.NoError(t, f.userMock.ExpectationsWereMet())
	})

	t.Run("guard failure stops before persistence", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(5, userRows().AddRow(5, `["bob@example.com"]`, "Bob", now, now), membershipRoleRows())
		f.expectRolesByIDs(storedRoleRows())
		f.expectRolesByIDs(storedRoleRows().AddRow(2, roles.SuperadminName, "superadmin", tenantID, `[]`, now, now))

		err := f.svc.ModifyRoles(ctx, tenantID, actingMember, 5, nil, []int64{2})
		assert.ErrorIs(t, err, ErrSuperadminGrantRequiresSuperadmin)
		require.NoError(t, f.userMock.ExpectationsWereMet())
	})

	t.Run("superadmin may hand the role on", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(5, userRows().AddRow(5, `["bob@example.com"]`, "Bob", now, now), membershipRoleRows())
		f.expectRolesByIDs(storedRoleRows())
		f.expectRolesByIDs(storedRoleRows().AddRow(2, roles.SuperadminName, "superadmin", tenantID, `[]`, now, now))

		f.userMock.ExpectBegin()
		f.userMock.ExpectExec(`INSERT INTO user_roles`).
			WithArgs(int64(5), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.userMock.ExpectCommit()

		err := f.svc.ModifyRoles(ctx, tenantID, actingSuperadmin, 5, nil, []int64{2})
		require.NoError(t, err)
	})
}

func TestServiceRemoveFromTenant(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	tenantID := int64(7)

	t.Run("strips tenant memberships", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(5, userRows().AddRow(5, `["bob@example.com"]`, "Bob", now, now),
			membershipRoleRows().AddRow(10, "Auditors", "ordinary", tenantID, `[]`, now, now))
		f.userMock.ExpectExec(`DELETE FROM user_roles ur\s+USING roles r`).
			WithArgs(int64(5), tenantID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, f.svc.RemoveFromTenant(ctx, tenantID, 5))
		require.NoError(t, f.userMock.ExpectationsWereMet())
	})

	t.Run("refuses the tenant superadmin", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(5, userRows().AddRow(5, `["bob@example.com"]`, "Bob", now, now),
			membershipRoleRows().AddRow(2, roles.SuperadminName, "superadmin", tenantID, `[]`, now, now))

		err := f.svc.RemoveFromTenant(ctx, tenantID, 5)
		var rnp *RoleNotPermitsError
		require.True(t, errors.As(err, &rnp))
		assert.Equal(t, roles.SuperadminName, rnp.RoleName)
	})

	t.Run("superadmin of another tenant is removable", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(5, userRows().AddRow(5, `["bob@example.com"]`, "Bob", now, now),
			membershipRoleRows().
				AddRow(40, roles.SuperadminName, "superadmin", 8, `[]`, now, now).
				AddRow(10, "Auditors", "ordinary", tenantID, `[]`, now, now))
		f.userMock.ExpectExec(`DELETE FROM user_roles ur\s+USING roles r`).
			WithArgs(int64(5), tenantID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, f.svc.RemoveFromTenant(ctx, tenantID, 5))
	})

	t.Run("refuses a sysadmin", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(5, userRows().AddRow(5, `["root@example.com"]`, "Root", now, now),
			membershipRoleRows().AddRow(1, roles.SysadminName, "sysadmin", nil, `["CREATE_TENANTS"]`, now, now))

		err := f.svc.RemoveFromTenant(ctx, tenantID, 5)
		var rnp *RoleNotPermitsError
		require.True(t, errors.As(err, &rnp))
		assert.Equal(t, roles.SysadminName, rnp.RoleName)
	})

	t.Run("missing target is a no-op", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.expectUser(99, userRows(), nil)

		require.NoError(t, f.svc.RemoveFromTenant(ctx, tenantID, 99))
	})
}

func TestServiceDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an ordinary account", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		f.userMock.ExpectBegin()
		f.userMock.ExpectExec(`DELETE FROM user_roles WHERE user_id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.userMock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.userMock.ExpectCommit()

		user := &User{ID: 5, Roles: []roles.Role{tenantRole(10, 7, roles.KindOrdinary)}}
		require.NoError(t, f.svc.DeleteAccount(ctx, user))
		require.NoError(t, f.userMock.ExpectationsWereMet())
	})

	t.Run("sysadmin cannot self-delete", func(t *testing.T) {
		f := newServiceFixture(t)
		defer f.closeFunc()

		user := &User{ID: 1, Roles: []roles.Role{globalRole(1, roles.KindSysadmin)}}
		err := f.svc.DeleteAccount(ctx, user)
		var rnp *RoleNotPermitsError
		assert.True(t, errors.As(err, &rnp))
	})
}
