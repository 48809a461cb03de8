package users

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/warden/pkg/audit"
	"github.com/platinummonkey/warden/pkg/authority"
	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/observability"
)

// Handlers provides HTTP handlers for user operations
type Handlers struct {
	service     *Service
	auditLogger audit.Logger
	metrics     *observability.Metrics
}

// NewHandlers creates new user handlers. Metrics may be nil.
func NewHandlers(service *Service, auditLogger audit.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{service: service, auditLogger: auditLogger, metrics: metrics}
}

// countGuardDenial records a role-assignment guard rejection by kind.
func (h *Handlers) countGuardDenial(err error) {
	if h.metrics == nil {
		return
	}
	if perr, ok := err.(httputil.PolicyError); ok {
		h.metrics.GuardDenialsTotal.WithLabelValues(perr.Kind()).Inc()
	}
}

// RegisterRoutes registers all user routes
func (h *Handlers) RegisterRoutes(router *mux.Router, gate httputil.Gate) {
	router.Handle("/users", gate(authority.CreateUsers)(http.HandlerFunc(h.Register))).Methods("POST")
	router.Handle("/users", gate(authority.ViewUsers)(http.HandlerFunc(h.ListMembers))).Methods("GET")
	router.HandleFunc("/users/authorities", h.Authorities).Methods("GET")
	router.HandleFunc("/users", h.DeleteAccount).Methods("DELETE")
	router.Handle("/users/{id}", gate(authority.DeleteUsers)(http.HandlerFunc(h.RemoveFromTenant))).Methods("DELETE")
	router.Handle("/users/{id}/roles", gate(authority.ModifyUserRoles)(http.HandlerFunc(h.ModifyRoles))).Methods("PUT")
}

// Register creates a new user account.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeUserCreate, "user", strconv.FormatInt(user.ID, 10), nil)
	httputil.WriteCreated(w, user)
}

// ListMembers lists the users holding roles in the acting tenant.
func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if !ok {
		httputil.WriteBadRequest(w, "missing tenant header")
		return
	}

	members, err := h.service.ListTenantMembers(r.Context(), tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"users": members})
}

// Authorities returns the calling user's effective authority set in the
// acting tenant. This is the read path behind the capability gate.
func (h *Handlers) Authorities(w http.ResponseWriter, r *http.Request) {
	actingUser, _ := contextkeys.ActingUser(r.Context()).(*User)
	if actingUser == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if !ok {
		httputil.WriteBadRequest(w, "missing tenant header")
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"authorities": EffectiveAuthorities(actingUser, tenantID),
	})
}

// ModifyRolesRequest is the payload for replacing part of a user's role
// set in the acting tenant.
type ModifyRolesRequest struct {
	OldRoleIDs []int64 `json:"old_role_ids"`
	NewRoleIDs []int64 `json:"new_role_ids"`
}

// ModifyRoles replaces part of the target user's role set.
func (h *Handlers) ModifyRoles(w http.ResponseWriter, r *http.Request) {
	actingUser, _ := contextkeys.ActingUser(r.Context()).(*User)
	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if actingUser == nil || !ok {
		httputil.WriteBadRequest(w, "missing identity or tenant context")
		return
	}

	targetID, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	var req ModifyRolesRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.service.ModifyRoles(r.Context(), tenantID, actingUser, targetID, req.OldRoleIDs, req.NewRoleIDs); err != nil {
		h.countGuardDenial(err)
		h.logAudit(r, audit.EventTypeUserRolesChange, "user", strconv.FormatInt(targetID, 10), err)
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeUserRolesChange, "user", strconv.FormatInt(targetID, 10), nil)
	httputil.WriteNoContent(w)
}

// RemoveFromTenant strips the target user's roles in the acting tenant.
func (h *Handlers) RemoveFromTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if !ok {
		httputil.WriteBadRequest(w, "missing tenant header")
		return
	}

	targetID, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.RemoveFromTenant(r.Context(), tenantID, targetID); err != nil {
		h.logAudit(r, audit.EventTypeUserTenantRemove, "user", strconv.FormatInt(targetID, 10), err)
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeUserTenantRemove, "user", strconv.FormatInt(targetID, 10), nil)
	httputil.WriteNoContent(w)
}

// DeleteAccount removes the calling user's own account.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	actingUser, _ := contextkeys.ActingUser(r.Context()).(*User)
	if actingUser == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	if err := h.service.DeleteAccount(r.Context(), actingUser); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeUserDelete, "user", strconv.FormatInt(actingUser.ID, 10), nil)
	httputil.WriteNoContent(w)
}

// logAudit records an audit event for a user mutation.
func (h *Handlers) logAudit(r *http.Request, eventType audit.EventType, resourceType, resourceID string, err error) {
	if h.auditLogger == nil {
		return
	}

	event := &audit.Event{
		Timestamp:    time.Now(),
		EventType:    eventType,
		Status:       audit.EventStatusSuccess,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
	if actingUser, ok := contextkeys.ActingUser(r.Context()).(*User); ok && actingUser != nil {
		event.UserID = &actingUser.ID
	}
	if tenantID, ok := contextkeys.ActingTenant(r.Context()); ok {
		event.TenantID = &tenantID
	}
	if err != nil {
		event.Status = audit.EventStatusDenied
		event.ErrorMessage = err.Error()
	}

	h.auditLogger.Log(r.Context(), event)
}
