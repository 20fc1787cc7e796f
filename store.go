package goSession

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/internal/tasks"
	"github.com/MrEthical07/goSession/session"
)

// Store is the single owner of the admin session. It is safe for concurrent
// use. Build one with New().…Build(), call Hydrate once at start, and inject
// the *Store wherever the session is needed.
type Store struct {
	config    Config
	client    AuthClient
	persister Persister
	logger    *slog.Logger
	probe     ConnectivityProbe
	inspector TokenInspector
	now       func() time.Time

	flows         flows.Service
	metrics       *Metrics
	audit         *audit.Dispatcher
	notifications *tasks.Group

	// writeMu serializes persistence and is always taken before mu.
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   State
	epoch   uint64

	inflight atomic.Bool

	hydrateOnce sync.Once
	hydrated    chan struct{}

	subMu   sync.Mutex
	subs    map[uint64]func(State)
	nextSub uint64

	closed    atomic.Bool
	closeOnce sync.Once
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	if s == nil {
		return State{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Hydrated reports whether Hydrate has completed.
func (s *Store) Hydrated() bool {
	if s == nil {
		return false
	}
	select {
	case <-s.hydrated:
		return true
	default:
		return false
	}
}

// WaitHydrated blocks until Hydrate completes or ctx is done.
func (s *Store) WaitHydrated(ctx context.Context) error {
	if s == nil {
		return ErrStoreNotReady
	}
	select {
	case <-s.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn to receive a snapshot after every committed change.
// fn runs on the goroutine that made the change, outside the Store's locks,
// so concurrent changes may be delivered out of order; compare Revision to
// drop stale snapshots. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	if s == nil || fn == nil {
		return func() {}
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// ClearError removes the current error message, leaving everything else
// untouched. Calling it without an error is a no-op.
func (s *Store) ClearError() {
	if s == nil {
		return
	}

	s.mu.Lock()
	if s.state.Error == "" && s.state.ErrorKind == KindNone {
		s.mu.Unlock()
		return
	}
	s.state.Error = ""
	s.state.ErrorKind = KindNone
	s.state.Revision++
	snap := s.state.clone()
	s.mu.Unlock()

	s.publish(snap)
}

// Close stops accepting logins, waits up to Logout.DrainTimeout for pending
// logout notifications, and flushes the audit dispatcher. It is idempotent.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if !s.notifications.Close(s.config.Logout.DrainTimeout) {
			s.logger.Warn("logout notifications cancelled on close",
				slog.Int64("pending", s.notifications.Pending()))
		}
		s.audit.Close()
	})
}

// PendingNotifications returns the number of logout notifications still running.
func (s *Store) PendingNotifications() int64 {
	if s == nil {
		return 0
	}
	return s.notifications.Pending()
}

// AuditDropped returns how many audit events were discarded because the
// buffer was full.
func (s *Store) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// MetricsSnapshot returns a copy of the Store's counters.
func (s *Store) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

func (s *Store) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

func (s *Store) publish(snap State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		s.deliver(fn, snap)
	}
}

func (s *Store) deliver(fn func(State), snap State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session subscriber panicked", slog.Any("panic", r))
		}
	}()
	fn(snap.clone())
}

// persist writes rec through to storage. The caller holds writeMu. Failures
// are logged and counted; memory stays authoritative.
func (s *Store) persist(ctx context.Context, rec session.Record) {
	if err := s.persister.Save(context.WithoutCancel(ctx), rec); err != nil {
		s.metricInc(MetricPersistFailure)
		s.logger.WarnContext(ctx, "session save failed", slog.Any("error", err))
	}
}

// clearStorage wipes the slot. The caller holds writeMu.
func (s *Store) clearStorage(ctx context.Context) {
	if err := s.persister.Clear(context.WithoutCancel(ctx)); err != nil {
		s.metricInc(MetricPersistFailure)
		s.logger.WarnContext(ctx, "session clear failed", slog.Any("error", err))
	}
}
