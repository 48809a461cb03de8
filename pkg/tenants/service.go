package tenants

import (
	"context"
	"strings"
)

// Service implements tenant registration and renaming.
type Service struct {
	store *Store
}

// NewService creates a new tenant service.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// CreateRequest is the payload for tenant registration.
type CreateRequest struct {
	Name string `json:"name"`
}

// RenameRequest is the payload for tenant renaming.
type RenameRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Create registers a new tenant. The creator receives the tenant's
// built-in super-admin role so the new tenant is never ownerless.
func (s *Service) Create(ctx context.Context, creatorUserID int64, req *CreateRequest) (*Tenant, error) {
	name := normalizeName(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	taken, err := s.store.NameExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &NameExistsError{Name: name}
	}

	tenant := &Tenant{Name: name}
	if _, err := s.store.CreateTenant(ctx, tenant, creatorUserID); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Rename changes a tenant's name.
func (s *Service) Rename(ctx context.Context, req *RenameRequest) (*Tenant, error) {
	name := normalizeName(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	tenant, err := s.store.GetTenant(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, &NotFoundError{TenantID: req.ID}
	}

	if !strings.EqualFold(tenant.Name, name) {
		taken, err := s.store.NameExists(ctx, name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &NameExistsError{Name: name}
		}
	}

	if err := s.store.RenameTenant(ctx, tenant.ID, name); err != nil {
		return nil, err
	}
	tenant.Name = name
	return tenant, nil
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
