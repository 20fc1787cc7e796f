package goSession

import (
	"context"
	"log/slog"

	"github.com/MrEthical07/goSession/session"
)

// Hydrate restores the persisted session. Only the first call does any work;
// later calls return immediately. Hydrate never fails: an unreadable,
// unsupported, partial, or (optionally) expired record is treated as absent.
// HasHydrated is true once Hydrate returns.
func (s *Store) Hydrate(ctx context.Context) {
	if s == nil {
		return
	}
	s.hydrateOnce.Do(func() {
		s.hydrate(ctx)
	})
}

func (s *Store) hydrate(ctx context.Context) {
	s.writeMu.Lock()

	rec, restored := s.restore(ctx)

	s.mu.Lock()
	s.state.Admin = rec.Admin.Clone()
	s.state.Token = rec.Token
	s.state.HasHydrated = true
	s.state.Revision++
	snap := s.state.clone()
	s.mu.Unlock()
	close(s.hydrated)

	s.writeMu.Unlock()

	s.publish(snap)

	if restored {
		s.metricInc(MetricHydrateRestored)
		s.logger.InfoContext(ctx, "session restored", slog.Int64("admin_id", rec.Admin.ID))
		s.emitAudit(ctx, AuditHydrated, true, rec.Admin, nil, nil)
		return
	}
	s.metricInc(MetricHydrateEmpty)
	s.logger.DebugContext(ctx, "no session restored")
}

// restore loads the slot and decides whether its record can be used. The
// caller holds writeMu.
func (s *Store) restore(ctx context.Context) (session.Record, bool) {
	rec, found, err := s.load(ctx)
	switch {
	case err != nil && session.Unusable(err):
		s.reject(ctx, "unusable record", err)
		return session.Record{}, false
	case err != nil:
		s.logger.WarnContext(ctx, "session load failed", slog.Any("error", err))
		return session.Record{}, false
	case !found || rec.Empty():
		return session.Record{}, false
	case !rec.Complete():
		s.reject(ctx, "partial record", session.ErrPartialRecord)
		return session.Record{}, false
	}

	if s.config.Hydration.DropExpiredTokens && s.inspector != nil {
		at := s.now().Add(-s.config.Hydration.ClockSkew)
		expired, err := s.inspector.Expired(rec.Token, at)
		switch {
		case err != nil:
			s.logger.DebugContext(ctx, "token not inspectable, keeping session", slog.Any("error", err))
		case expired:
			s.reject(ctx, "expired token", nil)
			return session.Record{}, false
		}
	}

	return rec.Clone(), true
}

// load calls the persister, treating a panic as an absent slot so hydration
// still completes.
func (s *Store) load(ctx context.Context) (rec session.Record, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "session load panicked", slog.Any("panic", r))
			rec, found, err = session.Record{}, false, nil
		}
	}()
	return s.persister.Load(ctx)
}

func (s *Store) reject(ctx context.Context, reason string, err error) {
	s.metricInc(MetricHydrateRejected)
	attrs := []any{slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	s.logger.WarnContext(ctx, "stored session rejected", attrs...)
	s.emitAudit(ctx, AuditHydrateRejected, false, nil, err, map[string]string{"reason": reason})

	if s.config.Hydration.ClearRejectedRecords {
		s.clearStorage(ctx)
	}
}
