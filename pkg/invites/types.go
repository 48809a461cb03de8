package invites

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// TokenTTL is the fixed lifetime of an invite token from issuance.
const TokenTTL = 24 * time.Hour

// InviteToken is a single-use credential granting a predefined role set
// to whoever redeems it. RoleIDs are stored raw rather than resolved:
// roles may be deleted between issuance and acceptance, and acceptance
// silently drops ids that no longer resolve.
type InviteToken struct {
	Token      string    `json:"token"`
	TenantID   int64     `json:"tenant_id"`
	RoleIDs    []int64   `json:"role_ids"`
	ExpiryDate time.Time `json:"expiry_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsExpired reports whether the token's expiry is strictly in the past.
func (t *InviteToken) IsExpired() bool {
	return t.ExpiryDate.Before(time.Now())
}

// TokenGenerator produces opaque token strings. Injected so tests can
// pin the value.
type TokenGenerator func() (string, error)

// DefaultTokenGenerator returns 32 bytes of crypto/rand entropy,
// hex-encoded.
func DefaultTokenGenerator() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Machine-readable error kinds for invite policy failures.
const (
	KindInvalidToken   = "invalid_token"
	KindNoRolesInvited = "no_roles_invited"
)

type sentinelError struct {
	kind    string
	message string
}

func (e *sentinelError) Error() string { return e.message }

// Kind returns the machine-readable error kind.
func (e *sentinelError) Kind() string { return e.kind }

// ErrInvalidToken is returned when an invite token does not exist or has
// expired at acceptance time.
var ErrInvalidToken = &sentinelError{
	kind:    KindInvalidToken,
	message: "invite token is invalid or expired",
}

// ErrNoRolesInvited is returned when issuance names no resolvable roles.
var ErrNoRolesInvited = &sentinelError{
	kind:    KindNoRolesInvited,
	message: "an invite must carry at least one existing role",
}
