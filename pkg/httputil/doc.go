// Package httputil provides HTTP utilities for standardized
// request/response handling.
//
// Response helpers:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteCreated(w, resource)
//	httputil.WriteError(w, err) // policy errors -> 400, rest -> 500
//
// Request parsing:
//
//	var req CreateRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // error response already written
//	}
//	id, err := httputil.ParsePathInt64(r, "id")
//
// Related packages:
//
//   - pkg/middleware: identity, tenant, and authority middleware
package httputil
