package invites

import (
	"context"
	"time"

	"github.com/platinummonkey/warden/pkg/roles"
	"github.com/platinummonkey/warden/pkg/users"
)

// Service implements the invite lifecycle. Issuance is guarded by the
// role-assignment guard; acceptance deliberately is not, because the
// grant was already validated when the invite was issued.
type Service struct {
	store     *Store
	roleStore *roles.Store
	generate  TokenGenerator
}

// NewService creates a new invite service.
func NewService(store *Store, roleStore *roles.Store, generate TokenGenerator) *Service {
	if generate == nil {
		generate = DefaultTokenGenerator
	}
	return &Service{store: store, roleStore: roleStore, generate: generate}
}

// Issue creates an invite token granting the given roles in the acting
// tenant. The pending grant must pass the role-assignment guard as if it
// were applied right now, with no roles being removed. The token stores
// the raw role ids; roles deleted before acceptance are dropped then.
func (s *Service) Issue(ctx context.Context, actingTenantID int64, actingUser *users.User, roleIDs []int64) (*InviteToken, error) {
	resolved, err := s.roleStore.GetRolesByIDs(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, ErrNoRolesInvited
	}

	if err := users.ValidateRolesChange(actingTenantID, actingUser, nil, resolved); err != nil {
		return nil, err
	}

	opaque, err := s.generate()
	if err != nil {
		return nil, err
	}

	token := &InviteToken{
		Token:      opaque,
		TenantID:   actingTenantID,
		RoleIDs:    roleIDs,
		ExpiryDate: time.Now().Add(TokenTTL),
	}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Resolve looks up a token without mutating it. Expired tokens are
// returned as-is so callers can distinguish "does not exist" from
// "expired". Returns nil when the token is unknown.
func (s *Service) Resolve(ctx context.Context, token string) (*InviteToken, error) {
	return s.store.GetToken(ctx, token)
}

// Accept redeems a token for the accepting user: the stored role ids are
// resolved against current role data (ids that no longer resolve are
// silently dropped), the surviving roles are added to the user's set,
// and the token is deleted, all in one transaction. Fails with
// ErrInvalidToken when the token is unknown or expired.
func (s *Service) Accept(ctx context.Context, acceptingUser *users.User, token string) ([]roles.Role, error) {
	invite, err := s.store.GetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite == nil || invite.IsExpired() {
		return nil, ErrInvalidToken
	}

	resolved, err := s.roleStore.GetRolesByIDs(ctx, invite.RoleIDs)
	if err != nil {
		return nil, err
	}

	granted := make([]int64, 0, len(resolved))
	for _, role := range resolved {
		granted = append(granted, role.ID)
	}

	if err := s.store.Consume(ctx, token, acceptingUser.ID, granted); err != nil {
		return nil, err
	}
	return resolved, nil
}

// CleanupExpired deletes every expired token. Driven by the scheduled
// sweep; safe to run concurrently with acceptance.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx)
}
