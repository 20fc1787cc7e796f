package goSession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/session"
)

type fixedInspector struct {
	expired bool
	err     error
	seenAt  time.Time
}

func (i *fixedInspector) Expired(_ string, now time.Time) (bool, error) {
	i.seenAt = now
	return i.expired, i.err
}

func TestHydrateRestoresWithoutNetworkCall(t *testing.T) {
	client := newFakeAuthClient()
	p := &recordingPersister{}
	p.seed(t, session.Record{Admin: testAdmin(), Token: "persisted"})

	store := buildTestStore(t, client, p)
	if st := store.State(); st.Phase() != PhaseUninitialized || st.Access() != AccessPending {
		t.Fatalf("expected pending before hydration, got %s/%s", st.Phase(), st.Access())
	}

	store.Hydrate(context.Background())

	st := store.State()
	if !st.HasHydrated || st.Token != "persisted" || st.Admin == nil || st.Admin.Email != "nadia@example.com" {
		t.Fatalf("unexpected hydrated state: %+v", st)
	}
	if st.Access() != AccessGranted {
		t.Fatalf("expected granted, got %s", st.Access())
	}
	if client.loginCalls.Load() != 0 || client.logoutCalls.Load() != 0 {
		t.Fatal("hydration must not contact the server")
	}
	if store.MetricsSnapshot().Counters[MetricHydrateRestored] != 1 {
		t.Fatal("expected restored metric")
	}
}

func TestHydrateIsIdempotent(t *testing.T) {
	p := &recordingPersister{}
	p.seed(t, session.Record{Admin: testAdmin(), Token: "persisted"})
	store := buildTestStore(t, newFakeAuthClient(), p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Hydrate(context.Background())
		}()
	}
	wg.Wait()
	first := store.State()

	p.seed(t, session.Record{Admin: testAdmin(), Token: "changed"})
	store.Hydrate(context.Background())

	if p.loads != 1 {
		t.Fatalf("expected a single load, got %d", p.loads)
	}
	if second := store.State(); second.Token != first.Token || second.Revision != first.Revision {
		t.Fatalf("second hydrate changed state: %+v vs %+v", first, second)
	}
}

func TestHydrateEmptySlot(t *testing.T) {
	store := newHydratedStore(t, newFakeAuthClient(), &recordingPersister{})

	st := store.State()
	if !st.HasHydrated || st.Admin != nil || st.Access() != AccessDenied {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestHydrateLoadErrorTreatedAsAbsent(t *testing.T) {
	p := &recordingPersister{loadErr: errors.New("permission denied")}
	logger, logs := captureLogger()
	store := newHydratedStore(t, newFakeAuthClient(), p, func(b *Builder) { b.WithLogger(logger) })

	st := store.State()
	if !st.HasHydrated || st.Admin != nil {
		t.Fatalf("expected empty hydrated state, got %+v", st)
	}
	if !containsAll(logs.String(), "session load failed", "permission denied") {
		t.Fatalf("expected load failure to be logged, got %s", logs.String())
	}
	if len(p.history()) != 0 {
		t.Fatal("I/O failures must not wipe the slot")
	}
}

type panickingPersister struct {
	recordingPersister
}

func (p *panickingPersister) Load(context.Context) (session.Record, bool, error) {
	panic("slot backend exploded")
}

func TestHydratePanickingLoadStillCompletes(t *testing.T) {
	client := newFakeAuthClient()
	client.respond(&LoginResult{Admin: testAdmin(), Token: "tok"}, nil)
	logger, logs := captureLogger()
	store := buildTestStore(t, client, &panickingPersister{}, func(b *Builder) { b.WithLogger(logger) })

	done := make(chan struct{})
	go func() {
		store.Hydrate(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Hydrate did not return after a panicking Load")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := store.WaitHydrated(ctx); err != nil {
		t.Fatalf("WaitHydrated: %v", err)
	}
	if st := store.State(); !st.HasHydrated || st.Admin != nil {
		t.Fatalf("expected empty hydrated state, got %+v", st)
	}
	if !containsAll(logs.String(), "session load panicked", "slot backend exploded") {
		t.Fatalf("expected panic to be logged, got %s", logs.String())
	}

	store.Logout(context.Background())
	if err := store.Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"}); err != nil {
		t.Fatalf("Login after recovered hydrate: %v", err)
	}
}

func TestHydrateRejectsUnusableRecords(t *testing.T) {
	cases := map[string]string{
		"corrupt":     `{"v":1,"admin":`,
		"unsupported": `{"v":2,"admin":{"id":1},"token":"t"}`,
		"token only":  `{"v":1,"admin":null,"token":"t"}`,
		"admin only":  `{"admin":{"id":1},"token":null}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			p := &recordingPersister{}
			p.seedRaw([]byte(raw))
			store := newHydratedStore(t, newFakeAuthClient(), p)

			st := store.State()
			assertInvariant(t, st)
			if !st.HasHydrated || st.Admin != nil {
				t.Fatalf("expected record to be treated as absent, got %+v", st)
			}
			hist := p.history()
			if len(hist) != 1 || !hist[0].cleared {
				t.Fatalf("expected rejected slot to be cleared, got %+v", hist)
			}
			if store.MetricsSnapshot().Counters[MetricHydrateRejected] != 1 {
				t.Fatal("expected rejected metric")
			}
		})
	}
}

func TestHydrateKeepsRejectedSlotWhenConfigured(t *testing.T) {
	p := &recordingPersister{}
	p.seedRaw([]byte(`{"v":3}`))
	cfg := DefaultConfig()
	cfg.Hydration.ClearRejectedRecords = false
	store := newHydratedStore(t, newFakeAuthClient(), p, func(b *Builder) { b.WithConfig(cfg) })

	if store.State().Admin != nil {
		t.Fatal("unsupported record must not be restored")
	}
	if len(p.history()) != 0 {
		t.Fatal("slot must be left alone")
	}
}

func TestHydrateAcceptsLegacyRecord(t *testing.T) {
	p := &recordingPersister{}
	p.seedRaw([]byte(`{"admin":{"id":3,"name":"Legacy","email":"l@x.io","role":"staff","role_label":"Staff"},"token":"old"}`))
	store := newHydratedStore(t, newFakeAuthClient(), p)

	if st := store.State(); st.Token != "old" || st.Admin.ID != 3 {
		t.Fatalf("expected legacy record restored, got %+v", st)
	}
}

func TestHydrateDropsExpiredToken(t *testing.T) {
	p := &recordingPersister{}
	p.seed(t, session.Record{Admin: testAdmin(), Token: "jwt"})
	inspector := &fixedInspector{expired: true}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cfg := DefaultConfig()
	cfg.Hydration.DropExpiredTokens = true
	cfg.Hydration.ClockSkew = time.Minute
	store := newHydratedStore(t, newFakeAuthClient(), p, func(b *Builder) {
		b.WithConfig(cfg).WithTokenInspector(inspector).withClock(func() time.Time { return now })
	})

	if store.State().IsAuthenticated() {
		t.Fatal("expired token must not be restored")
	}
	if !inspector.seenAt.Equal(now.Add(-time.Minute)) {
		t.Fatalf("expected skewed check time, got %v", inspector.seenAt)
	}
	if !p.stored(t).Empty() {
		t.Fatal("expired record must be cleared")
	}
}

func TestHydrateKeepsOpaqueToken(t *testing.T) {
	p := &recordingPersister{}
	p.seed(t, session.Record{Admin: testAdmin(), Token: "opaque"})

	cfg := DefaultConfig()
	cfg.Hydration.DropExpiredTokens = true
	store := newHydratedStore(t, newFakeAuthClient(), p, func(b *Builder) {
		b.WithConfig(cfg).WithTokenInspector(&fixedInspector{err: errors.New("not a jwt")})
	})

	if !store.State().IsAuthenticated() {
		t.Fatal("uninspectable token must be kept")
	}
}

func TestLogoutBeforeHydrateWipesSlot(t *testing.T) {
	p := &recordingPersister{}
	p.seed(t, session.Record{Admin: testAdmin(), Token: "persisted"})
	store := buildTestStore(t, newFakeAuthClient(), p)

	store.Logout(context.Background())
	store.Hydrate(context.Background())

	if store.State().IsAuthenticated() {
		t.Fatal("session wiped by logout must not come back on hydrate")
	}
}
