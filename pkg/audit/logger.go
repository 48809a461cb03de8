package audit

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/warden/pkg/contextkeys"
)

// Logger records audit events. Implementations must be safe for
// concurrent use and must never fail the request that produced the
// event.
type Logger interface {
	Log(ctx context.Context, event *Event)
}

// LogrusLogger emits audit events as structured log lines.
type LogrusLogger struct {
	logger *logrus.Logger
}

// NewLogrusLogger creates an audit logger backed by the given logrus
// instance.
func NewLogrusLogger(logger *logrus.Logger) *LogrusLogger {
	return &LogrusLogger{logger: logger}
}

// Log records an audit event.
func (l *LogrusLogger) Log(ctx context.Context, event *Event) {
	if event.RequestID == "" {
		event.RequestID = contextkeys.GetRequestID(ctx)
	}

	fields := logrus.Fields{
		"audit":         true,
		"event_type":    event.EventType,
		"status":        event.Status,
		"resource_type": event.ResourceType,
		"resource_id":   event.ResourceID,
		"request_id":    event.RequestID,
	}
	if event.UserID != nil {
		fields["user_id"] = *event.UserID
	}
	if event.TenantID != nil {
		fields["tenant_id"] = *event.TenantID
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	entry := l.logger.WithFields(fields)
	if event.Status == EventStatusSuccess {
		entry.Info("audit event")
	} else {
		entry.Warn("audit event")
	}
}

// NopLogger discards all events. Useful in tests.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(ctx context.Context, event *Event) {}
