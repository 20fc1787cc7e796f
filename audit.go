package goSession

import (
	"context"
	"io"

	"github.com/MrEthical07/goSession/internal/audit"
)

// AuditEvent is one session lifecycle record: a login attempt, a logout, a
// hydration, or the outcome of a server logout notification.
type AuditEvent = audit.Event

// AuditSink receives audit events from the Store's dispatcher goroutine.
type AuditSink = audit.Sink

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink buffers audit events in a channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

const (
	AuditLoginSuccess      = "login_success"
	AuditLoginFailure      = "login_failure"
	AuditLoginSuperseded   = "login_superseded"
	AuditLogout            = "logout"
	AuditLogoutNotified    = "logout_notified"
	AuditLogoutNotifyError = "logout_notify_failed"
	AuditHydrated          = "session_hydrated"
	AuditHydrateRejected   = "session_rejected"
)

func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

func (s *Store) emitAudit(ctx context.Context, eventType string, success bool, admin *Admin, err error, metadata map[string]string) {
	if s == nil || s.audit == nil {
		return
	}
	s.audit.Emit(ctx, s.auditEvent(ctx, eventType, success, admin, err, metadata))
}

// tryAudit never waits for buffer space, whatever DropIfFull says. Logout
// uses it so a slow sink cannot hold up a logout that already took effect.
func (s *Store) tryAudit(ctx context.Context, eventType string, success bool, admin *Admin, err error, metadata map[string]string) {
	if s == nil || s.audit == nil {
		return
	}
	s.audit.TryEmit(s.auditEvent(ctx, eventType, success, admin, err, metadata))
}

func (s *Store) auditEvent(ctx context.Context, eventType string, success bool, admin *Admin, err error, metadata map[string]string) AuditEvent {
	event := AuditEvent{
		Timestamp: s.now().UTC(),
		EventType: eventType,
		RequestID: RequestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if admin != nil {
		event.AdminID = admin.ID
		event.Email = admin.Email
	}
	if err != nil {
		event.Error = err.Error()
	}
	return event
}
