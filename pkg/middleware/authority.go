package middleware

import (
	"net/http"
	"strconv"

	"github.com/platinummonkey/warden/pkg/authority"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/observability"
	"github.com/platinummonkey/warden/pkg/users"
)

// Gatekeeper builds per-route authority gates backed by the resolver.
type Gatekeeper struct {
	metrics *observability.Metrics
}

// NewGatekeeper creates a gatekeeper. Metrics may be nil.
func NewGatekeeper(metrics *observability.Metrics) *Gatekeeper {
	return &Gatekeeper{metrics: metrics}
}

// RequireAuthority gates a route on the acting user holding the given
// authority. Tenant authorities are resolved within the acting tenant
// from the tenant header; global authorities need no tenant context.
func (g *Gatekeeper) RequireAuthority(required authority.Authority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := ActingUser(r)
			if user == nil {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			if authority.IsGlobalAuthority(required) {
				g.decide(w, r, next, required, users.HasGlobalAuthority(user, required))
				return
			}

			tenantID, ok := ActingTenant(r)
			if !ok {
				httputil.WriteBadRequest(w, "missing "+TenantHeader+" header")
				return
			}

			g.decide(w, r, next, required, users.HasAuthority(user, tenantID, required))
		})
	}
}

func (g *Gatekeeper) decide(w http.ResponseWriter, r *http.Request, next http.Handler, required authority.Authority, allowed bool) {
	if g.metrics != nil {
		g.metrics.AuthorityChecksTotal.WithLabelValues(string(required), strconv.FormatBool(allowed)).Inc()
	}
	if !allowed {
		httputil.WriteForbidden(w, "missing authority: "+string(required))
		return
	}
	next.ServeHTTP(w, r)
}
