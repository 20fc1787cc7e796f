package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/session"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every Redis failure other than a missing key.
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisConfig names the slot. Key defaults to "gosession:admin".
type RedisConfig struct {
	Prefix string
	Slot   string
	// TTL expires the slot server-side. Zero keeps it until cleared.
	TTL time.Duration
}

// Redis stores the slot under a single key, for clients that share a session
// across processes on one host.
type Redis struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, cfg RedisConfig) *Redis {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "gosession"
	}
	slot := strings.TrimSpace(cfg.Slot)
	if slot == "" {
		slot = "admin"
	}
	return &Redis{
		client: client,
		key:    prefix + ":" + slot,
		ttl:    cfg.TTL,
	}
}

// Key returns the Redis key holding the slot.
func (r *Redis) Key() string {
	return r.key
}

func (r *Redis) Load(ctx context.Context) (session.Record, bool, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Record{}, false, nil
		}
		return session.Record{}, false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return decodeSlot(data)
}

func (r *Redis) Save(ctx context.Context, rec session.Record) error {
	data, err := session.Encode(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Clear deletes the key. Clearing an absent slot is not an error.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
