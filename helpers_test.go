package goSession

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/session"
)

func testAdmin() *Admin {
	return &Admin{
		ID:        7,
		Name:      "Nadia Ops",
		Email:     "nadia@example.com",
		Role:      "owner",
		RoleLabel: "Owner",
	}
}

type fakeAuthClient struct {
	mu          sync.Mutex
	result      *LoginResult
	err         error
	gate        chan struct{}
	started     chan struct{}
	loginCalls  atomic.Int32
	logoutCalls atomic.Int32

	logoutGate chan struct{}
	logoutErr  error
	logoutSeen chan string
	logoutCtx  chan context.Context
}

func newFakeAuthClient() *fakeAuthClient {
	return &fakeAuthClient{
		started:    make(chan struct{}, 8),
		logoutSeen: make(chan string, 8),
		logoutCtx:  make(chan context.Context, 8),
	}
}

func (c *fakeAuthClient) respond(res *LoginResult, err error) {
	c.mu.Lock()
	c.result = res
	c.err = err
	c.mu.Unlock()
}

// hold makes Login block until the returned function is called.
func (c *fakeAuthClient) hold() func() {
	gate := make(chan struct{})
	c.mu.Lock()
	c.gate = gate
	c.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (c *fakeAuthClient) Login(ctx context.Context, _ Credentials) (*LoginResult, error) {
	c.loginCalls.Add(1)
	c.started <- struct{}{}

	c.mu.Lock()
	gate, res, err := c.gate, c.result, c.err
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if res != nil {
		cp := *res
		cp.Admin = res.Admin.Clone()
		res = &cp
	}
	return res, err
}

func (c *fakeAuthClient) Logout(ctx context.Context, token string) (string, error) {
	c.logoutCalls.Add(1)
	c.logoutCtx <- ctx
	if c.logoutGate != nil {
		select {
		case <-c.logoutGate:
		case <-ctx.Done():
			c.logoutSeen <- token
			return "", ctx.Err()
		}
	}
	c.logoutSeen <- token
	return "Logged out", c.logoutErr
}

type savedRecord struct {
	rec     session.Record
	cleared bool
}

// recordingPersister is an in-memory slot that keeps the history of writes.
type recordingPersister struct {
	mu      sync.Mutex
	slot    []byte
	loadErr error
	saveErr error
	writes  []savedRecord
	loads   int
}

func (p *recordingPersister) seed(t *testing.T, rec session.Record) {
	t.Helper()
	raw, err := session.Encode(rec)
	if err != nil {
		t.Fatalf("seed encode failed: %v", err)
	}
	p.seedRaw(raw)
}

func (p *recordingPersister) seedRaw(raw []byte) {
	p.mu.Lock()
	p.slot = append([]byte(nil), raw...)
	p.mu.Unlock()
}

func (p *recordingPersister) Load(context.Context) (session.Record, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	if p.loadErr != nil {
		return session.Record{}, false, p.loadErr
	}
	if p.slot == nil {
		return session.Record{}, false, nil
	}
	rec, err := session.Decode(p.slot)
	if err != nil {
		return session.Record{}, false, err
	}
	return rec, !rec.Empty(), nil
}

func (p *recordingPersister) Save(_ context.Context, rec session.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, savedRecord{rec: rec.Clone()})
	if p.saveErr != nil {
		return p.saveErr
	}
	raw, err := session.Encode(rec)
	if err != nil {
		return err
	}
	p.slot = raw
	return nil
}

func (p *recordingPersister) Clear(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, savedRecord{cleared: true})
	p.slot = nil
	return nil
}

// stored decodes the current slot; a missing slot reads as empty.
func (p *recordingPersister) stored(t *testing.T) session.Record {
	t.Helper()
	p.mu.Lock()
	raw := p.slot
	p.mu.Unlock()
	if raw == nil {
		return session.Record{}
	}
	rec, err := session.Decode(raw)
	if err != nil {
		t.Fatalf("stored slot does not decode: %v", err)
	}
	return rec
}

func (p *recordingPersister) history() []savedRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]savedRecord(nil), p.writes...)
}

type storeOption func(*Builder)

func buildTestStore(t *testing.T, client AuthClient, p Persister, opts ...storeOption) *Store {
	t.Helper()

	b := New().
		WithAuthClient(client).
		WithPersister(p).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithMetricsEnabled(true)
	for _, opt := range opts {
		opt(b)
	}

	store, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func newHydratedStore(t *testing.T, client AuthClient, p Persister, opts ...storeOption) *Store {
	t.Helper()
	store := buildTestStore(t, client, p, opts...)
	store.Hydrate(context.Background())
	return store
}

// captureLogger returns a logger writing into a buffer the test can inspect.
func captureLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func assertInvariant(t *testing.T, st State) {
	t.Helper()
	if (st.Admin == nil) != (st.Token == "") {
		t.Fatalf("admin/token pairing violated: admin=%v token=%q", st.Admin, st.Token)
	}
}

func waitStarted(t *testing.T, c *fakeAuthClient) {
	t.Helper()
	select {
	case <-c.started:
	case <-time.After(2 * time.Second):
		t.Fatal("login call did not start")
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
