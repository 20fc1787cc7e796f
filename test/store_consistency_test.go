//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/session"
)

func TestStoreConsistencyRestoreAcrossProcesses(t *testing.T) {
	ctx := context.Background()
	_, rdb, cleanup := newIntegrationRedis(t)
	defer cleanup()

	auth := &slowAuth{}
	first, _ := buildRedisStore(t, rdb, auth, "shared")
	first.Hydrate(ctx)
	if err := first.Login(ctx, goSession.Credentials{Email: "ada@example.com", Password: "x"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	second, _ := buildRedisStore(t, rdb, auth, "shared")
	second.Hydrate(ctx)
	got := second.State()
	if !got.IsAuthenticated() || got.Token != first.State().Token {
		t.Fatalf("expected restored session, got %+v", got)
	}
}

func TestStoreConsistencyMemoryMirrorsSlotUnderRaces(t *testing.T) {
	ctx := context.Background()
	_, rdb, cleanup := newIntegrationRedis(t)
	defer cleanup()

	store, p := buildRedisStore(t, rdb, &slowAuth{delay: time.Millisecond}, "race")
	store.Hydrate(ctx)

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if (worker+i)%4 == 0 {
					store.Logout(ctx)
					continue
				}
				err := store.Login(ctx, goSession.Credentials{Email: "ada@example.com", Password: "x"})
				if err != nil && !errors.Is(err, goSession.ErrLoginInFlight) && !errors.Is(err, goSession.ErrLoginSuperseded) {
					t.Errorf("unexpected login error: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	st := store.State()
	rec, found, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if st.IsAuthenticated() != found {
		t.Fatalf("memory authenticated=%v but slot found=%v", st.IsAuthenticated(), found)
	}
	if found && (rec.Token != st.Token || rec.Admin.ID != st.Admin.ID) {
		t.Fatalf("slot %+v does not match memory %+v", rec, st)
	}
	if st.IsLoading {
		t.Fatal("expected no login in flight")
	}
}

func TestStoreConsistencyLegacyAndFutureRecords(t *testing.T) {
	ctx := context.Background()
	mr, rdb, cleanup := newIntegrationRedis(t)
	defer cleanup()

	if err := mr.Set("it:legacy", `{"admin":{"id":4,"name":"Old"},"token":"legacy-tok"}`); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	legacy, _ := buildRedisStore(t, rdb, &slowAuth{}, "legacy")
	legacy.Hydrate(ctx)
	if st := legacy.State(); st.Token != "legacy-tok" || st.Admin.ID != 4 {
		t.Fatalf("expected legacy record restored, got %+v", st)
	}

	if err := mr.Set("it:future", `{"v":99,"admin":{"id":4},"token":"x"}`); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	future, p := buildRedisStore(t, rdb, &slowAuth{}, "future")
	future.Hydrate(ctx)
	if future.State().IsAuthenticated() {
		t.Fatal("expected unsupported record to be ignored")
	}
	if mr.Exists("it:future") {
		t.Fatal("expected rejected record to be cleared")
	}
	if _, found, err := p.Load(ctx); err != nil || found {
		t.Fatalf("expected empty slot, found=%v err=%v", found, err)
	}
}

func TestStoreConsistencyLogoutClearsSlotAndRevokes(t *testing.T) {
	ctx := context.Background()
	mr, rdb, cleanup := newIntegrationRedis(t)
	defer cleanup()

	auth := &slowAuth{}
	store, _ := buildRedisStore(t, rdb, auth, "logout")
	store.Hydrate(ctx)
	if err := store.Login(ctx, goSession.Credentials{Email: "ada@example.com", Password: "x"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	token := store.State().Token

	store.Logout(ctx)
	if mr.Exists("it:logout") {
		raw, _ := mr.Get("it:logout")
		rec, err := session.Decode([]byte(raw))
		if err != nil || !rec.Empty() {
			t.Fatalf("expected cleared slot, got %q", raw)
		}
	}

	store.Close()
	auth.mu.Lock()
	defer auth.mu.Unlock()
	if len(auth.revoked) != 1 || auth.revoked[0] != token {
		t.Fatalf("expected %q revoked, got %v", token, auth.revoked)
	}
}
