package goSession

import (
	"context"
	"log/slog"
)

// Logout ends the session. State and storage are cleared before Logout
// returns, whether or not the server can be reached; an in-flight login is
// superseded. When a token was held the server is told in the background.
// That notification is never retried and its outcome only reaches logs,
// metrics, and the audit sink.
func (s *Store) Logout(ctx context.Context) {
	if s == nil {
		return
	}

	s.writeMu.Lock()
	s.mu.Lock()
	admin := s.state.Admin
	token := s.state.Token
	s.epoch++
	s.state.Admin = nil
	s.state.Token = ""
	s.state.IsLoading = false
	s.state.Error = ""
	s.state.ErrorKind = KindNone
	s.state.Revision++
	snap := s.state.clone()
	s.mu.Unlock()

	s.clearStorage(ctx)
	s.writeMu.Unlock()

	s.publish(snap)

	s.metricInc(MetricLogout)
	s.logger.InfoContext(ctx, "logged out", slog.Bool("had_session", token != ""))
	s.tryAudit(ctx, AuditLogout, true, admin, nil, nil)

	if token != "" {
		s.notifyLogout(ctx, admin, token)
	}
}

func (s *Store) notifyLogout(ctx context.Context, admin *Admin, token string) {
	requestID := RequestIDFromContext(ctx)

	started := s.notifications.Go(func(taskCtx context.Context) {
		nctx := taskCtx
		if requestID != "" {
			nctx = WithRequestID(nctx, requestID)
		}
		if timeout := s.config.Logout.NotifyTimeout; timeout > 0 {
			var cancel context.CancelFunc
			nctx, cancel = context.WithTimeout(nctx, timeout)
			defer cancel()
		}

		res := s.flows.NotifyLogout(nctx, token)
		switch {
		case res.Panicked:
			s.metricInc(MetricLogoutNotifyFailure)
			s.logger.ErrorContext(nctx, "logout notification panicked", slog.Any("error", res.Err))
			s.emitAudit(nctx, AuditLogoutNotifyError, false, admin, res.Err, nil)
		case res.Err != nil:
			s.metricInc(MetricLogoutNotifyFailure)
			s.logger.WarnContext(nctx, "logout notification failed", slog.Any("error", res.Err))
			s.emitAudit(nctx, AuditLogoutNotifyError, false, admin, res.Err, nil)
		default:
			s.metricInc(MetricLogoutNotifySuccess)
			s.logger.InfoContext(nctx, "logout notification sent", slog.String("message", res.Message))
			s.emitAudit(nctx, AuditLogoutNotified, true, admin, nil, map[string]string{
				"message": res.Message,
			})
		}
	})
	if !started {
		s.logger.DebugContext(ctx, "logout notification skipped: store closed")
	}
}
