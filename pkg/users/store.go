package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/platinummonkey/warden/pkg/roles"
)

// Store handles user and membership persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new user store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a new user account with no role memberships.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	principalsJSON, err := json.Marshal(user.Principals)
	if err != nil {
		return fmt.Errorf("failed to marshal principals: %w", err)
	}

	query := `
		INSERT INTO users (principals, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	now := time.Now()
	if err := s.db.QueryRowContext(ctx, query,
		string(principalsJSON),
		user.DisplayName,
		now,
		now,
	).Scan(&user.ID); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUserByID retrieves a user and all of their role memberships.
// Returns nil without error when the user does not exist.
func (s *Store) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	query := `SELECT id, principals, display_name, created_at, updated_at FROM users WHERE id = $1`
	return s.getUser(ctx, query, userID)
}

// GetUserByPrincipal retrieves the user owning the given principal
// string. Returns nil without error when no user claims it.
func (s *Store) GetUserByPrincipal(ctx context.Context, principal string) (*User, error) {
	principalJSON, err := json.Marshal([]string{principal})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal principal: %w", err)
	}

	query := `SELECT id, principals, display_name, created_at, updated_at FROM users WHERE principals @> $1`
	return s.getUser(ctx, query, string(principalJSON))
}

func (s *Store) getUser(ctx context.Context, query string, arg interface{}) (*User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Roles, err = s.loadRoles(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// loadRoles fetches every role the user holds, across all tenants and
// including global roles.
func (s *Store) loadRoles(ctx context.Context, userID int64) ([]roles.Role, error) {
	query := `
		SELECT r.id, r.name, r.kind, r.tenant_id, r.authorities, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}
	defer rows.Close()

	var held []roles.Role
	for rows.Next() {
		role, err := scanRoleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		held = append(held, *role)
	}

	return held, rows.Err()
}

// ListTenantMembers returns every user holding at least one role scoped
// to the tenant, with their full role sets loaded.
func (s *Store) ListTenantMembers(ctx context.Context, tenantID int64) ([]User, error) {
	query := `
		SELECT DISTINCT u.id, u.principals, u.display_name, u.created_at, u.updated_at
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN roles r ON r.id = ur.role_id
		WHERE r.tenant_id = $1
		ORDER BY u.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant members: %w", err)
	}
	defer rows.Close()

	var members []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		members = append(members, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range members {
		if members[i].Roles, err = s.loadRoles(ctx, members[i].ID); err != nil {
			return nil, err
		}
	}
	return members, nil
}

// ReplaceRoles removes exactly the old role memberships and adds the new
// ones, in one transaction. Memberships outside both sets are untouched.
func (s *Store) ReplaceRoles(ctx context.Context, userID int64, oldRoleIDs, newRoleIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(oldRoleIDs) > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_roles WHERE user_id = $1 AND role_id = ANY($2)`,
			userID, pq.Array(oldRoleIDs),
		); err != nil {
			return fmt.Errorf("failed to remove role memberships: %w", err)
		}
	}

	for _, roleID := range newRoleIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, roleID,
		); err != nil {
			return fmt.Errorf("failed to add role membership: %w", err)
		}
	}

	return tx.Commit()
}

// GrantRole adds a single role membership, idempotently.
func (s *Store) GrantRole(ctx context.Context, userID, roleID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, roleID,
	); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

// RemoveTenantMemberships detaches all of the user's roles scoped to the
// given tenant. Roles in other tenants and global roles are untouched.
func (s *Store) RemoveTenantMemberships(ctx context.Context, userID, tenantID int64) error {
	query := `
		DELETE FROM user_roles ur
		USING roles r
		WHERE ur.role_id = r.id AND ur.user_id = $1 AND r.tenant_id = $2
	`
	if _, err := s.db.ExecContext(ctx, query, userID, tenantID); err != nil {
		return fmt.Errorf("failed to remove tenant memberships: %w", err)
	}
	return nil
}

// DeleteUser removes a user account and all of its role memberships.
// Deleting a missing user is a no-op.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to remove memberships: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return tx.Commit()
}

// scanUser scans a user row (without roles).
func scanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*User, error) {
	var user User
	var principalsJSON string

	err := scanner.Scan(
		&user.ID,
		&principalsJSON,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if principalsJSON != "" {
		if err := json.Unmarshal([]byte(principalsJSON), &user.Principals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal principals: %w", err)
		}
	}

	return &user, nil
}

// scanRoleRow scans a role from the membership join.
func scanRoleRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*roles.Role, error) {
	var role roles.Role
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
