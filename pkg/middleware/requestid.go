package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/platinummonkey/warden/pkg/contextkeys"
)

// RequestIDHeader is the header carrying the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with a unique ID, honoring an
// incoming X-Request-ID so IDs survive proxy hops. The ID is echoed on
// the response and placed in the request context for log correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := contextkeys.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
