//go:build integration
// +build integration

package test

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/persist"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newIntegrationRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return mr, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

// slowAuth issues a fresh token per login after a fixed delay.
type slowAuth struct {
	delay   time.Duration
	tokens  atomic.Int64
	mu      sync.Mutex
	revoked []string
}

func (a *slowAuth) Login(ctx context.Context, creds goSession.Credentials) (*goSession.LoginResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(a.delay):
	}
	n := a.tokens.Add(1)
	return &goSession.LoginResult{
		Admin: &goSession.Admin{ID: n, Name: "Ada", Email: creds.Email},
		Token: "tok-" + strconv.FormatInt(n, 10),
	}, nil
}

func (a *slowAuth) Logout(_ context.Context, token string) (string, error) {
	a.mu.Lock()
	a.revoked = append(a.revoked, token)
	a.mu.Unlock()
	return "ok", nil
}

func buildRedisStore(t *testing.T, rdb redis.UniversalClient, auth goSession.AuthClient, slot string) (*goSession.Store, *persist.Redis) {
	t.Helper()

	p := persist.NewRedis(rdb, persist.RedisConfig{Prefix: "it", Slot: slot})
	store, err := goSession.New().
		WithAuthClient(auth).
		WithPersister(p).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(store.Close)
	return store, p
}
