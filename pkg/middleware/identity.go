package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/users"
)

// Identity headers. These are set by the fronting proxy after it has
// authenticated the caller; the service trusts them as-is.
const (
	UserIDHeader    = "X-User-ID"
	PrincipalHeader = "X-Principal"
)

// UserSource loads users for the identity middleware.
type UserSource interface {
	GetUserByID(ctx context.Context, userID int64) (*users.User, error)
	GetUserByPrincipal(ctx context.Context, principal string) (*users.User, error)
}

// IdentityMiddleware resolves the acting user from the identity headers
// and places it in the request context. X-User-ID wins when both are
// present. Requests with neither header, or naming an unknown user, are
// rejected with 401.
func IdentityMiddleware(source UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveIdentity(r, source)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			if user == nil {
				httputil.WriteUnauthorized(w, "unknown or missing identity")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextkeys.WithActingUser(r.Context(), user)))
		})
	}
}

func resolveIdentity(r *http.Request, source UserSource) (*users.User, error) {
	if idStr := r.Header.Get(UserIDHeader); idStr != "" {
		userID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, nil
		}
		return source.GetUserByID(r.Context(), userID)
	}

	if principal := r.Header.Get(PrincipalHeader); principal != "" {
		return source.GetUserByPrincipal(r.Context(), principal)
	}

	return nil, nil
}
