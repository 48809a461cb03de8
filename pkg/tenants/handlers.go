package tenants

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/warden/pkg/audit"
	"github.com/platinummonkey/warden/pkg/authority"
	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/users"
)

// Handlers provides HTTP handlers for tenant operations
type Handlers struct {
	service     *Service
	auditLogger audit.Logger
}

// NewHandlers creates new tenant handlers
func NewHandlers(service *Service, auditLogger audit.Logger) *Handlers {
	return &Handlers{service: service, auditLogger: auditLogger}
}

// RegisterRoutes registers all tenant routes
func (h *Handlers) RegisterRoutes(router *mux.Router, gate httputil.Gate) {
	router.Handle("/tenants", gate(authority.CreateTenants)(http.HandlerFunc(h.Create))).Methods("POST")
	router.Handle("/tenants", gate(authority.ModifyTenant)(http.HandlerFunc(h.Rename))).Methods("PUT")
}

// Create registers a new tenant.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	actingUser, _ := contextkeys.ActingUser(r.Context()).(*users.User)
	if actingUser == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return
	}

	var req CreateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	tenant, err := h.service.Create(r.Context(), actingUser.ID, &req)
	if err != nil {
		h.logAudit(r, audit.EventTypeTenantCreate, "", err)
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeTenantCreate, strconv.FormatInt(tenant.ID, 10), nil)
	httputil.WriteCreated(w, tenant)
}

// Rename changes the acting tenant's name. The MODIFY_TENANT gate binds
// the caller to the acting tenant, so the body must name that tenant.
func (h *Handlers) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if tenantID, ok := contextkeys.ActingTenant(r.Context()); !ok || tenantID != req.ID {
		httputil.WriteForbidden(w, "tenant id does not match acting tenant")
		return
	}

	tenant, err := h.service.Rename(r.Context(), &req)
	if err != nil {
		h.logAudit(r, audit.EventTypeTenantRename, strconv.FormatInt(req.ID, 10), err)
		httputil.WriteError(w, err)
		return
	}

	h.logAudit(r, audit.EventTypeTenantRename, strconv.FormatInt(tenant.ID, 10), nil)
	httputil.WriteSuccess(w, tenant)
}

// logAudit records an audit event for a tenant mutation.
func (h *Handlers) logAudit(r *http.Request, eventType audit.EventType, resourceID string, err error) {
	if h.auditLogger == nil {
		return
	}

	event := &audit.Event{
		Timestamp:    time.Now(),
		EventType:    eventType,
		Status:       audit.EventStatusSuccess,
		ResourceType: "tenant",
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
