package invites

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Store handles invite token persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new invite store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateToken inserts a new invite token.
func (s *Store) CreateToken(ctx context.Context, token *InviteToken) error {
	roleIDsJSON, err := json.Marshal(token.RoleIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal role ids: %w", err)
	}

	query := `
		INSERT INTO invite_tokens (token, tenant_id, role_ids, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	token.CreatedAt = time.Now()
	if _, err := s.db.ExecContext(ctx, query,
		token.Token,
		token.TenantID,
		string(roleIDsJSON),
		token.ExpiryDate,
		token.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create invite token: %w", err)
	}
	return nil
}

// GetToken retrieves an invite token by its opaque string. Returns nil
// without error when absent. No expiry filtering: callers distinguish
// "does not exist" from "expired" themselves.
func (s *Store) GetToken(ctx context.Context, token string) (*InviteToken, error) {
	query := `SELECT token, tenant_id, role_ids, expiry_date, created_at FROM invite_tokens WHERE token = $1`

	var invite InviteToken
	var roleIDsJSON string
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&invite.Token,
		&invite.TenantID,
		&roleIDsJSON,
		&invite.ExpiryDate,
		&invite.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite token: %w", err)
	}

	if roleIDsJSON != "" {
		if err := json.Unmarshal([]byte(roleIDsJSON), &invite.RoleIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal role ids: %w", err)
		}
	}
	return &invite, nil
}

// Consume deletes the token and grants the given roles to the user in
// one transaction. Returns ErrInvalidToken when the token row is already
// gone, which happens when acceptance races the expiry sweep and loses.
func (s *Store) Consume(ctx context.Context, token string, userID int64, roleIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM invite_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete invite token: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check invite token deletion: %w", err)
	} else if rows == 0 {
		return ErrInvalidToken
	}

	for _, roleID := range roleIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, roleID,
		); err != nil {
			return fmt.Errorf("failed to grant invited role: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteExpired removes every token whose expiry is in the past and
// returns how many were swept. Idempotent.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invite_tokens WHERE expiry_date < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired tokens: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept tokens: %w", err)
	}
	return rows, nil
}
