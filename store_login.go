package goSession

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/MrEthical07/goSession/session"
)

// Login authenticates with the auth API and commits the outcome.
//
// While a login is in flight a second call returns ErrLoginInFlight without
// contacting the server or touching state. On success the admin and token
// are committed and persisted together. On failure the session is cleared,
// State.Error carries the classified message, and a *LoginError wrapping the
// auth client's error is returned. If Logout runs while the call is pending,
// its result is discarded and ErrLoginSuperseded is returned.
//
// The in-flight slot is released when Login returns, not when IsLoading
// drops. A call made in between, for example from a subscriber or right after
// Logout superseded the pending login, still gets ErrLoginInFlight. Retry
// after the first call has returned.
//
// Login imposes no timeout; bound it with ctx or in the AuthClient.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	if s == nil {
		return ErrStoreNotReady
	}
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if !s.Hydrated() {
		return ErrNotHydrated
	}
	if !s.inflight.CompareAndSwap(false, true) {
		s.metricInc(MetricLoginRejectedInFlight)
		s.logger.DebugContext(ctx, "login rejected: another login is in flight")
		return ErrLoginInFlight
	}
	defer s.inflight.Store(false)

	s.mu.Lock()
	epoch := s.epoch
	s.state.IsLoading = true
	s.state.Error = ""
	s.state.ErrorKind = KindNone
	s.state.Revision++
	snap := s.state.clone()
	s.mu.Unlock()
	s.publish(snap)

	res := s.flows.Login(ctx, creds.Email, creds.Password)
	if s.metrics.LatencyEnabled() {
		s.metrics.Observe(MetricLoginLatency, res.Latency)
	}

	if res.Err == nil {
		if !s.commit(ctx, epoch, res.Record, KindNone, "") {
			return s.superseded(ctx, creds)
		}
		s.metricInc(MetricLoginSuccess)
		s.logger.InfoContext(ctx, "login succeeded", slog.Int64("admin_id", res.Record.Admin.ID))
		s.emitAudit(ctx, AuditLoginSuccess, true, res.Record.Admin, nil, nil)
		return nil
	}

	kind := s.classify(context.WithoutCancel(ctx), res.Err)
	msg := s.config.Messages.message(kind, res.Err)
	if !s.commit(ctx, epoch, session.Record{}, kind, msg) {
		return s.superseded(ctx, creds)
	}

	s.metricInc(MetricLoginFailure)
	if id, ok := kindMetric[kind]; ok {
		s.metricInc(id)
	}
	s.logger.InfoContext(ctx, "login failed",
		slog.String("kind", kind.String()),
		slog.Any("error", res.Err),
	)
	meta := map[string]string{
		"kind":  kind.String(),
		"email": creds.Email,
	}
	if status := loginErrorStatus(res.Err); status != "" {
		meta["status"] = status
	}
	s.emitAudit(ctx, AuditLoginFailure, false, nil, res.Err, meta)

	return &LoginError{Kind: kind, Message: msg, Err: res.Err}
}

// commit applies a login outcome as one transition and writes it through.
// It reports false, committing nothing, when a Logout has run since the login
// started.
func (s *Store) commit(ctx context.Context, epoch uint64, rec session.Record, kind ErrorKind, msg string) bool {
	s.writeMu.Lock()
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.writeMu.Unlock()
		return false
	}
	s.state.Admin = rec.Admin.Clone()
	s.state.Token = rec.Token
	s.state.IsLoading = false
	s.state.Error = msg
	s.state.ErrorKind = kind
	s.state.Revision++
	snap := s.state.clone()
	s.mu.Unlock()

	s.persist(ctx, rec)
	s.writeMu.Unlock()

	s.publish(snap)
	return true
}

func (s *Store) superseded(ctx context.Context, creds Credentials) error {
	s.metricInc(MetricLoginSuperseded)
	s.logger.InfoContext(ctx, "login result discarded after logout")
	s.emitAudit(ctx, AuditLoginSuperseded, false, nil, ErrLoginSuperseded, map[string]string{
		"email": creds.Email,
	})
	return ErrLoginSuperseded
}

// loginErrorStatus extracts the HTTP status carried by err, if any.
func loginErrorStatus(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) && ae.Status > 0 {
		return strconv.Itoa(ae.Status)
	}
	return ""
}
