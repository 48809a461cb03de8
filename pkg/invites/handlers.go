package invites

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/warden/pkg/audit"
	"github.com/platinummonkey/warden/pkg/authority"
	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/observability"
	"github.com/platinummonkey/warden/pkg/users"
)

// Handlers provides HTTP handlers for invite operations
type Handlers struct {
	service     *Service
	auditLogger audit.Logger
	metrics     *observability.Metrics
}

// NewHandlers creates new invite handlers. Metrics may be nil.
func NewHandlers(service *Service, auditLogger audit.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{service: service, auditLogger: auditLogger, metrics: metrics}
}

// RegisterRoutes registers all invite routes
func (h *Handlers) RegisterRoutes(router *mux.Router, gate httputil.Gate) {
	router.Handle("/invites", gate(authority.ModifyUserRoles)(http.HandlerFunc(h.Issue))).Methods("POST")
	router.HandleFunc("/invites/{token}", h.Resolve).Methods("GET")
	router.HandleFunc("/invites/{token}/accept", h.Accept).Methods("POST")
}

// IssueRequest is the payload for invite issuance.
type IssueRequest struct {
	RoleIDs []int64 `json:"role_ids"`
}

// Issue creates an invite token for the acting tenant.
func (h *Handlers) Issue(w http.ResponseWriter, r *http.Request) {
	actingUser, _ := contextkeys.ActingUser(r.Context()).(*users.User)
	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if actingUser == nil || !ok {
		httputil.WriteBadRequest(w, "missing identity or tenant context")
		return
	}

	var req IssueRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	token, err := h.service.Issue(r.Context(), tenantID, actingUser, req.RoleIDs)
	if err != nil {
		if perr, ok := err.(httputil.PolicyError); ok && h.metrics != nil {
			h.metrics.GuardDenialsTotal.WithLabelValues(perr.Kind()).Inc()
		}
		h.logAudit(r, audit.EventTypeInviteIssue, "", err)
		httputil.WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.InvitesIssuedTotal.Inc()
	}
	h.logAudit(r, audit.EventTypeInviteIssue, token.Token, nil)
	httputil.WriteCreated(w, token)
}

// Resolve looks up an invite token. Expired tokens are still returned so
// the caller can render a precise message; unknown tokens are 404.
func (h *Handlers) Resolve(w http.ResponseWriter, r *http.Request) {
	opaque, err := httputil.ParsePathString(r, "token")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	token, err := h.service.Resolve(r.Context(), opaque)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if token == nil {
		httputil.WriteNotFound(w, "invite token not found")
		return
	}

	httputil.WriteSuccess(w, token)
}

// Accept redeems an invite token for the calling user.
func (h *Handlers) Accept(w http.ResponseWriter, r *http.Request) {
	actingUser, _ := contextkeys.ActingUser(r.Context()).(*users.User)
	if actingUser == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	opaque, err := httputil.ParsePathString(r, "token")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	granted, err := h.service.Accept(r.Context(), actingUser, opaque)
	if err != nil {
		h.logAudit(r, audit.EventTypeInviteAccept, opaque, err)
		httputil.WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.InvitesAcceptedTotal.Inc()
	}
	h.logAudit(r, audit.EventTypeInviteAccept, opaque, nil)
	httputil.WriteSuccess(w, map[string]interface{}{"granted_roles": granted})
}

// logAudit records an audit event for an invite mutation.
func (h *Handlers) logAudit(r *http.Request, eventType audit.EventType, resourceID string, err error) {
	if h.auditLogger == nil {
		return
	}

	event := &audit.Event{
		Timestamp:    time.Now(),
		EventType:    eventType,
		Status:       audit.EventStatusSuccess,
		ResourceType: "invite_token",
		ResourceID:   resourceID,
	}
	if actingUser, ok := contextkeys.ActingUser(r.Context()).(*users.User); ok && actingUser != nil {
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
