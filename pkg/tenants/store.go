package tenants

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/platinummonkey/warden/pkg/roles"
)

// Store handles tenant persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new tenant store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTenant creates the tenant, its built-in super-admin role, and
// the creator's membership in that role, in one transaction. The tenant
// and role are populated with their generated ids on success.
func (s *Store) CreateTenant(ctx context.Context, tenant *Tenant, creatorUserID int64) (*roles.Role, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO tenants (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		tenant.Name, now, now,
	).Scan(&tenant.ID); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	tenant.CreatedAt = now
	tenant.UpdatedAt = now

	admin := roles.NewSuperadminRole(tenant.ID)
	authoritiesJSON, err := json.Marshal(admin.Authorities)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal authorities: %w", err)
	}

	if err := tx.QueryRowContext(ctx,
		`INSERT INTO roles (name, kind, tenant_id, authorities, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		admin.Name, admin.Kind, admin.TenantID, string(authoritiesJSON), now, now,
	).Scan(&admin.ID); err != nil {
		return nil, fmt.Errorf("failed to create super-admin role: %w", err)
	}
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
		creatorUserID, admin.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to grant super-admin role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return admin, nil
}

// GetTenant retrieves a tenant by ID. Returns nil without error when the
// tenant does not exist.
func (s *Store) GetTenant(ctx context.Context, tenantID int64) (*Tenant, error) {
	var tenant Tenant
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE id = $1`, tenantID,
	).Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &tenant, nil
}

// NameExists reports whether any tenant uses the given name.
func (s *Store) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tenants WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tenant name: %w", err)
	}
	return exists, nil
}

// RenameTenant persists a tenant's new name.
func (s *Store) RenameTenant(ctx context.Context, tenantID int64, name string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET name = $1, updated_at = $2 WHERE id = $3`,
		name, time.Now(), tenantID,
	); err != nil {
		return fmt.Errorf("failed to rename tenant: %w", err)
	}
	return nil
}
