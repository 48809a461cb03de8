package roles

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

// Handlers provides HTTP handlers for role operations
type Handlers struct {
	service     *Service
	auditLogger audit.Logger
	metrics     *observability.Metrics
}

// NewHandlers creates new role handlers. Metrics may be nil.
func NewHandlers(service *Service, auditLogger audit.Logger, metrics *observability.Metrics) *Handlers {
	return &Handlers{service: service, auditLogger: auditLogger, metrics: metrics}
}

// countValidationFailure records a validator rejection by kind.
func (h *Handlers) countValidationFailure(err error) {
	if h.metrics == nil {
		return
	}
	if perr, ok := err.(httputil.PolicyError); ok {
		h.metrics.ValidationFailsTotal.WithLabelValues(perr.Kind()).Inc()
	}
}

// RegisterRoutes registers all role routes
func (h *Handlers) RegisterRoutes(router *mux.Router, gate httputil.Gate) {
	router.Handle("/roles", gate(authority.CreateRoles)(http.HandlerFunc(h.Create))).Methods("POST")
	router.Handle("/roles", gate(authority.ViewRoles)(http.HandlerFunc(h.List))).Methods("GET")
	router.Handle("/roles", gate(authority.ModifyRoles)(http.HandlerFunc(h.Update))).Methods("PUT")
	router.Handle("/roles/{id}", gate(authority.DeleteRoles)(http.HandlerFunc(h.Delete))).Methods("DELETE")
}

// Create validates and creates a new role in the acting tenant.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if !ok {
		httputil.WriteBadRequest(w, "missing tenant header")
		return
	}

	var req CreateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	role, err := h.service.Create(r.Context(), tenantID, &req)
	if err != nil {
		h.countValidationFailure(err)
		h.logAudit(r, audit.EventTypeRoleCreate, "", err)
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeRoleCreate, strconv.FormatInt(role.ID, 10), nil)
	httputil.WriteCreated(w, role)
}

// List returns the acting tenant's roles.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if !ok {
		httputil.WriteBadRequest(w, "missing tenant header")
		return
	}

	list, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"roles": list})
}

// Update validates and persists changes to a role's name and authority
// set.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if !ok {
		httputil.WriteBadRequest(w, "missing tenant header")
		return
	}

	var req UpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	role, err := h.service.Update(r.Context(), tenantID, &req)
	if err != nil {
		h.countValidationFailure(err)
		h.logAudit(r, audit.EventTypeRoleUpdate, strconv.FormatInt(req.ID, 10), err)
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeRoleUpdate, strconv.FormatInt(role.ID, 10), nil)
	httputil.WriteSuccess(w, role)
}

// Delete removes a role and detaches it from every holder. Deleting a
// missing role succeeds.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := contextkeys.ActingTenant(r.Context())
	if !ok {
		httputil.WriteBadRequest(w, "missing tenant header")
		return
	}

	roleID, err := httputil.ParsePathInt64(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), tenantID, roleID); err != nil {
		h.logAudit(r, audit.EventTypeRoleDelete, strconv.FormatInt(roleID, 10), err)
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeRoleDelete, strconv.FormatInt(roleID, 10), nil)
	httputil.WriteNoContent(w)
}

// logAudit records an audit event for a role mutation.
func (h *Handlers) logAudit(r *http.Request, eventType audit.EventType, resourceID string, err error) {
	if h.auditLogger == nil {
		return
	}

	event := &audit.Event{
		Timestamp:    time.Now(),
		EventType:    eventType,
		Status:       audit.EventStatusSuccess,
		ResourceType: "role",
		ResourceID:   resourceID,
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
