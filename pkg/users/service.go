package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/platinummonkey/warden/pkg/roles"
)

// Service implements user account and membership mutations. Every role
// set change goes through the role-assignment guard before persisting.
type Service struct {
	store     *Store
	roleStore *roles.Store
}

// NewService creates a new user service.
func NewService(store *Store, roleStore *roles.Store) *Service {
	return &Service{store: store, roleStore: roleStore}
}

// RegisterRequest is the payload for user creation.
type RegisterRequest struct {
	Principals  []string `json:"principals"`
	DisplayName string   `json:"display_name"`
}

// Register creates a new user account with no role memberships.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	principals := normalizePrincipals(req.Principals)
	if len(principals) == 0 {
		return nil, ErrPrincipalRequired
	}

	for _, principal := range principals {
		existing, err := s.store.GetUserByPrincipal(ctx, principal)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &PrincipalExistsError{Principal: principal}
		}
	}

	user := &User{
		Principals:  principals,
		DisplayName: strings.TrimSpace(req.DisplayName),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// ModifyRoles replaces part of the target user's role set in the acting
// tenant: the old role ids are removed and the new role ids added, after
// the change passes the role-assignment guard. Role ids that no longer
// resolve are dropped before validation. A missing target user is a
// no-op.
func (s *Service) ModifyRoles(ctx context.Context, actingTenantID int64, actingUser *User, targetUserID int64, oldRoleIDs, newRoleIDs []int64) error {
	target, err := s.store.GetUserByID(ctx, targetUserID)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	oldRoles, err := s.roleStore.GetRolesByIDs(ctx, oldRoleIDs)
	if err != nil {
		return err
	}
	newRoles, err := s.roleStore.GetRolesByIDs(ctx, newRoleIDs)
	if err != nil {
		return err
	}

	if err := ValidateRolesChange(actingTenantID, actingUser, oldRoles, newRoles); err != nil {
		return err
	}

	return s.store.ReplaceRoles(ctx, target.ID, roleIDs(oldRoles), roleIDs(newRoles))
}

// RemoveFromTenant strips all of the target user's roles in the acting
// tenant. Refused when the target holds the tenant's super-admin role or
// the platform system-admin role. A missing target user is a no-op.
func (s *Service) RemoveFromTenant(ctx context.Context, actingTenantID, targetUserID int64) error {
	target, err := s.store.GetUserByID(ctx, targetUserID)
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	if IsSuperadminIn(target, actingTenantID) {
		return &RoleNotPermitsError{UserID: target.ID, RoleName: roles.SuperadminName}
	}
	if IsSysadmin(target) {
		return &RoleNotPermitsError{UserID: target.ID, RoleName: roles.SysadminName}
	}

	return s.store.RemoveTenantMemberships(ctx, target.ID, actingTenantID)
}

// DeleteAccount removes the acting user's own account and all of its
// memberships. System admins cannot self-delete.
func (s *Service) DeleteAccount(ctx context.Context, actingUser *User) error {
	if IsSysadmin(actingUser) {
		return &RoleNotPermitsError{UserID: actingUser.ID, RoleName: roles.SysadminName}
	}
	return s.store.DeleteUser(ctx, actingUser.ID)
}

// ListTenantMembers returns the users holding at least one role in the
// acting tenant.
func (s *Service) ListTenantMembers(ctx context.Context, actingTenantID int64) ([]User, error) {
	return s.store.ListTenantMembers(ctx, actingTenantID)
}

func roleIDs(rs []roles.Role) []int64 {
	ids := make([]int64, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}

func normalizePrincipals(principals []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range principals {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
