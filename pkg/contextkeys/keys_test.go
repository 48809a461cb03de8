package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActingUser(t *testing.T) {
	type fakeUser struct{ ID int64 }

	ctx := context.Background()
	assert.Nil(t, ActingUser(ctx))

	user := &fakeUser{ID: 5}
	ctx = WithActingUser(ctx, user)
	assert.Same(t, user, ActingUser(ctx).(*fakeUser))
}

func TestActingTenant(t *testing.T) {
	ctx := context.Background()

	_, ok := ActingTenant(ctx)
	assert.False(t, ok)

	ctx = WithTenant(ctx, 7)
	tenantID, ok := ActingTenant(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), tenantID)
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}
