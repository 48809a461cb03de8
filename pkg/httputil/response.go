package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/platinummonkey/warden/pkg/authority"
)

// Gate wraps a handler with an authority requirement. Domain packages
// receive it at route registration; the binary wires it to
// middleware.RequireAuthority.
type Gate func(authority.Authority) func(http.Handler) http.Handler

// PolicyError is implemented by deterministic user-input errors raised by
// the validation and guard layers. They always map to a client error
// response, never a server fault, and must not be retried unchanged.
type PolicyError interface {
	error
	Kind() string
}

// ErrorResponse is the standardized error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response. Policy errors surface as
// 400 Bad Request with their machine-readable kind; anything else is a
// storage or programming fault and surfaces as 500.
func WriteError(w http.ResponseWriter, err error) {
	if perr, ok := err.(PolicyError); ok {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   perr.Kind(),
			Message: perr.Error(),
		})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal",
		Message: err.Error(),
	})
}

// WriteErrorMessage writes a JSON error response with a custom kind and message.
func WriteErrorMessage(w http.ResponseWriter, status int, kind, message string) {
	WriteJSON(w, status, ErrorResponse{Error: kind, Message: message})
}

// WriteBadRequest writes a bad request error (400).
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, "bad_request", message)
}

// WriteUnauthorized writes an unauthorized error (401).
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusUnauthorized, "unauthorized", message)
}

// WriteForbidden writes a forbidden error (403).
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusForbidden, "forbidden", message)
}

// WriteNotFound writes a not found error (404).
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusNotFound, "not_found", message)
}

// WriteCreated writes a successful creation response (201 Created).
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteSuccess writes a successful response (200 OK).
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a successful response with no content (204).
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
