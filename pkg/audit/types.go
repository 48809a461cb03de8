package audit

import "time"

// EventType represents the category of audit event
type EventType string

const (
	// Tenant events
	EventTypeTenantCreate EventType = "tenant.create"
	EventTypeTenantRename EventType = "tenant.rename"

	// Role definition events
	EventTypeRoleCreate EventType = "role.create"
	EventTypeRoleUpdate EventType = "role.update"
	EventTypeRoleDelete EventType = "role.delete"

	// User and membership events
	EventTypeUserCreate       EventType = "user.create"
	EventTypeUserDelete       EventType = "user.delete"
	EventTypeUserRolesChange  EventType = "user.roles_change"
	EventTypeUserTenantRemove EventType = "user.tenant_remove"

	// Invite events
	EventTypeInviteIssue  EventType = "invite.issue"
	EventTypeInviteAccept EventType = "invite.accept"
	EventTypeInviteSweep  EventType = "invite.sweep"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor information
	UserID   *int64 `json:"user_id,omitempty"`
	TenantID *int64 `json:"tenant_id,omitempty"`

	// Resource information
	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`

	// Request context
	RequestID string `json:"request_id,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
}
