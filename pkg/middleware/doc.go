// Package middleware provides the HTTP middleware chain: request IDs,
// structured request logging, identity and tenant context extraction,
// and per-route authority gates.
//
// Identity is established from trusted headers set by the fronting
// proxy (X-User-ID or X-Principal); this service does not verify
// credentials itself.
package middleware
