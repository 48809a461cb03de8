package middleware

import (
	"net/http"

	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/users"
)

// ActingUser extracts the acting user from the request, or nil when the
// identity middleware did not run or found no identity headers.
func ActingUser(r *http.Request) *users.User {
	user, _ := contextkeys.ActingUser(r.Context()).(*users.User)
	return user
}

// ActingTenant extracts the acting tenant ID from the request. The
// second return is false when no tenant header was supplied.
func ActingTenant(r *http.Request) (int64, bool) {
	return contextkeys.ActingTenant(r.Context())
}
