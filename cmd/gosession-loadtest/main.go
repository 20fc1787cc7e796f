package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/persist"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// latencyClient answers every call after a fixed delay.
type latencyClient struct {
	delay  time.Duration
	tokens atomic.Int64
}

func (c *latencyClient) Login(ctx context.Context, creds goSession.Credentials) (*goSession.LoginResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	n := c.tokens.Add(1)
	return &goSession.LoginResult{
		Admin: &goSession.Admin{ID: n, Name: "load", Email: creds.Email, Role: "owner"},
		Token: "tok-" + strconv.FormatInt(n, 10),
	}, nil
}

func (c *latencyClient) Logout(ctx context.Context, _ string) (string, error) {
	return "ok", c.wait(ctx)
}

func (c *latencyClient) wait(ctx context.Context) error {
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type storeSlot struct {
	store     *goSession.Store
	persister *persist.Redis
}

func main() {
	var (
		stores      = flag.Int("stores", 64, "number of independent session stores")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (login, then login/logout race)")
		latency     = flag.Duration("latency", 2*time.Millisecond, "simulated auth API latency")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gsload", "session key prefix")
	)
	flag.Parse()

	if *stores <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "stores, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	auth := &latencyClient{delay: *latency}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	slots := make([]storeSlot, *stores)
	fmt.Printf("building %d stores...\n", *stores)
	for i := range slots {
		p := persist.NewRedis(client, persist.RedisConfig{Prefix: *prefix, Slot: "slot-" + strconv.Itoa(i)})
		if err := p.Clear(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "clear failed: %v\n", err)
			os.Exit(1)
		}
		s, err := goSession.New().
			WithAuthClient(auth).
			WithPersister(p).
			WithLogger(logger).
			WithMetricsEnabled(true).
			Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
			os.Exit(1)
		}
		s.Hydrate(ctx)
		slots[i] = storeSlot{store: s, persister: p}
	}

	loginStats := runPhase(ctx, slots, *ops, *concurrency, 0)
	raceStats := runPhase(ctx, slots, *ops, *concurrency, 3)

	for _, slot := range slots {
		slot.store.Close()
	}

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("login/logout", raceStats)
	fmt.Printf("slot mismatches: %d\n", verifySlots(ctx, slots))
}

// runPhase issues ops calls spread over random stores. One call in every
// logoutEvery is a Logout; zero means logins only.
func runPhase(ctx context.Context, slots []storeSlot, ops, concurrency, logoutEvery int) phaseStats {
	var (
		wg         sync.WaitGroup
		cursor     int64
		failures   int64
		rejected   int64
		superseded int64
		latencies  = make([]time.Duration, 0, ops)
		mu         sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				s := slots[r.Intn(len(slots))].store

				t0 := time.Now()
				var err error
				if logoutEvery > 0 && r.Intn(logoutEvery) == 0 {
					s.Logout(ctx)
				} else {
					err = s.Login(ctx, goSession.Credentials{Email: "load@example.com", Password: "x"})
				}
				d := time.Since(t0)

				switch {
				case err == nil:
				case errors.Is(err, goSession.ErrLoginInFlight):
					atomic.AddInt64(&rejected, 1)
				case errors.Is(err, goSession.ErrLoginSuperseded):
					atomic.AddInt64(&superseded, 1)
				default:
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	stats := computeStats(total, latencies, failures)
	stats.rejected = rejected
	stats.superseded = superseded
	return stats
}

// verifySlots counts stores whose memory state differs from their slot.
func verifySlots(ctx context.Context, slots []storeSlot) int {
	mismatches := 0
	for _, slot := range slots {
		st := slot.store.State()
		rec, found, err := slot.persister.Load(ctx)
		if err != nil {
			mismatches++
			continue
		}
		if st.IsAuthenticated() != found || (found && rec.Token != st.Token) {
			mismatches++
		}
	}
	return mismatches
}

type phaseStats struct {
	total      time.Duration
	ops        int
	failures   int64
	rejected   int64
	superseded int64
	p50        time.Duration
	p95        time.Duration
	p99        time.Duration
	opsPerS    float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d in_flight=%d superseded=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.rejected,
		s.superseded,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
