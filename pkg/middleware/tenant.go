package middleware

import (
	"net/http"
	"strconv"

	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/httputil"
)

// TenantHeader names the tenant the caller is acting within.
const TenantHeader = "X-TenantID"

// TenantMiddleware parses the tenant header into the request context.
// The header is optional at this layer; routes that need a tenant
// enforce its presence through their authority gate or handler.
func TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := r.Header.Get(TenantHeader)
		if idStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		tenantID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "invalid "+TenantHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextkeys.WithTenant(r.Context(), tenantID)))
	})
}
