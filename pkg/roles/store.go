package roles

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/platinummonkey/warden/pkg/authority"
)

// Store handles role persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new role store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const roleColumns = `id, name, kind, tenant_id, authorities, created_at, updated_at`

// CreateRole inserts a new role.
func (s *Store) CreateRole(ctx context.Context, role *Role) error {
	authoritiesJSON, err := json.Marshal(authority.Dedup(role.Authorities))
	if err != nil {
		return fmt.Errorf("failed to marshal authorities: %w", err)
	}

	query := `
		INSERT INTO roles (name, kind, tenant_id, authorities, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	if err := s.db.QueryRowContext(ctx, query,
		role.Name,
		role.Kind,
		role.TenantID,
		string(authoritiesJSON),
		now,
		now,
	).Scan(&role.ID); err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	role.CreatedAt = now
	role.UpdatedAt = now
	return nil
}

// GetRole retrieves a role by ID. Returns nil without error when the
// role does not exist.
func (s *Store) GetRole(ctx context.Context, roleID int64) (*Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`

	role, err := scanRole(s.db.QueryRowContext(ctx, query, roleID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// GetRolesByIDs retrieves the roles for the given id set. IDs that do
// not resolve are silently absent from the result.
func (s *Store) GetRolesByIDs(ctx context.Context, roleIDs []int64) ([]Role, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + roleColumns + `
		FROM roles
		WHERE id = ANY($1)
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(roleIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		result = append(result, *role)
	}

	return result, rows.Err()
}

// NameExists reports whether any role in the system uses the given name.
// Role names are unique across all tenants.
func (s *Store) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM roles WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role name: %w", err)
	}
	return exists, nil
}

// ListRoles lists the roles scoped to a tenant, ordered by name.
func (s *Store) ListRoles(ctx context.Context, tenantID int64) ([]Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE tenant_id = $1 ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		result = append(result, *role)
	}

	return result, rows.Err()
}

// UpdateRole persists a role's name and authorities.
func (s *Store) UpdateRole(ctx context.Context, role *Role) error {
	authoritiesJSON, err := json.Marshal(authority.Dedup(role.Authorities))
	if err != nil {
		return fmt.Errorf("failed to marshal authorities: %w", err)
	}

	query := `UPDATE roles SET name = $1, authorities = $2, updated_at = $3 WHERE id = $4`

	role.UpdatedAt = time.Now()
	if _, err := s.db.ExecContext(ctx, query,
		role.Name,
		string(authoritiesJSON),
		role.UpdatedAt,
		role.ID,
	); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	return nil
}

// DeleteRole removes a role and detaches it from every user holding it.
// Membership rows are deleted explicitly before the role row so the
// cascade is visible in one place rather than hidden in the schema.
func (s *Store) DeleteRole(ctx context.Context, roleID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to detach role from users: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	return tx.Commit()
}

// TenantExists reports whether a tenant row exists.
func (s *Store) TenantExists(ctx context.Context, tenantID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tenants WHERE id = $1)`, tenantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tenant: %w", err)
	}
	return exists, nil
}

// scanRole scans a role from a database row.
func scanRole(scanner interface {
	Scan(dest ...interface{}) error
}) (*Role, error) {
	var role Role
	var authoritiesJSON string
	var tenantID sql.NullInt64

	err := scanner.Scan(
		&role.ID,
		&role.Name,
		&role.Kind,
		&tenantID,
		&authoritiesJSON,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tenantID.Valid {
		id := tenantID.Int64
		role.TenantID = &id
	}

	if authoritiesJSON != "" {
		if err := json.Unmarshal([]byte(authoritiesJSON), &role.Authorities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal authorities: %w", err)
		}
	}

	return &role, nil
}
