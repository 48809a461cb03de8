package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/platinummonkey/warden/pkg/authority"
)

// Service implements role mutations: validation first, persistence only
// after every check passes. All failures it returns for bad input are
// policy errors carrying a machine-readable kind.
type Service struct {
	store *Store
}

// NewService creates a new role service.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// CreateRequest is the payload for role creation. The System flag is
// accepted on the wire only so it can be rejected.
type CreateRequest struct {
	Name        string   `json:"name"`
	System      bool     `json:"is_system"`
	Authorities []string `json:"authorities"`
}

// UpdateRequest is the payload for role update.
type UpdateRequest struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Authorities []string `json:"authorities"`
}

// Create validates and persists a new ordinary role in the acting tenant.
func (s *Service) Create(ctx context.Context, actingTenantID int64, req *CreateRequest) (*Role, error) {
	exists, err := s.store.TenantExists(ctx, actingTenantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &TenantNotFoundError{TenantID: actingTenantID}
	}

	role := &Role{
		Name:        NormalizeName(req.Name),
		Kind:        KindOrdinary,
		TenantID:    &actingTenantID,
		Authorities: toAuthorities(req.Authorities),
	}

	if err := ValidateNewRole(role, req.System); err != nil {
		return nil, err
	}

	nameUsed, err := s.store.NameExists(ctx, role.Name)
	if err != nil {
		return nil, err
	}
	if nameUsed {
		return nil, ErrRoleNameExists
	}

	if err := s.store.CreateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to persist role: %w", err)
	}

	return role, nil
}

// Update validates and persists changes to an existing role's name and
// authority set. The stored role's tenant and kind are immutable.
func (s *Service) Update(ctx context.Context, actingTenantID int64, req *UpdateRequest) (*Role, error) {
	stored, err := s.store.GetRole(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, &RoleNotFoundError{RoleID: req.ID}
	}

	proposed := &Role{
		Name:        NormalizeName(req.Name),
		Kind:        stored.Kind,
		TenantID:    stored.TenantID,
		Authorities: toAuthorities(req.Authorities),
	}

	if err := ValidateNewRole(proposed, stored.IsSystem()); err != nil {
		return nil, err
	}

	if !stored.BelongsTo(actingTenantID) {
		return nil, &TenantMismatchError{RoleTenantID: stored.TenantID, ActingTenantID: actingTenantID}
	}

	if !strings.EqualFold(stored.Name, proposed.Name) {
		nameUsed, err := s.store.NameExists(ctx, proposed.Name)
		if err != nil {
			return nil, err
		}
		if nameUsed {
			return nil, ErrRoleNameExists
		}
	}

	stored.Name = proposed.Name
	stored.Authorities = filterTenantAuthorities(proposed.Authorities)

	if err := s.store.UpdateRole(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to persist role: %w", err)
	}

	return stored, nil
}

// Delete removes a role and detaches it from every holder. Deleting a
// missing role is a no-op.
func (s *Service) Delete(ctx context.Context, actingTenantID, roleID int64) error {
	stored, err := s.store.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}

	if !stored.BelongsTo(actingTenantID) {
		return &TenantMismatchError{RoleTenantID: stored.TenantID, ActingTenantID: actingTenantID}
	}

	if stored.IsSystem() {
		return ErrSystemRoleForbidden
	}

	return s.store.DeleteRole(ctx, roleID)
}

// List returns the acting tenant's roles.
func (s *Service) List(ctx context.Context, actingTenantID int64) ([]Role, error) {
	return s.store.ListRoles(ctx, actingTenantID)
}

func toAuthorities(names []string) []authority.Authority {
	out := make([]authority.Authority, 0, len(names))
	for _, n := range names {
		out = append(out, authority.Authority(n))
	}
	return out
}
