package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/persist"
	"github.com/redis/go-redis/v9"
)

// Runtime is a built Store plus the resources it owns.
type Runtime struct {
	Store   *goSession.Store
	Logger  *slog.Logger
	closers []func() error
}

// Close shuts the Store down (draining logout notifications) and releases
// the storage backend.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	r.Store.Close()
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewRuntime wires the HTTP auth client, the configured storage slot and
// the optional token inspector into a hydrated Store.
func NewRuntime(ctx context.Context, cfg Config, logger *slog.Logger) (*Runtime, error) {
	client, err := authclient.New(authclient.Config{
		BaseURL:    cfg.APIBaseURL,
		LoginPath:  cfg.LoginPath,
		LogoutPath: cfg.LogoutPath,
		Timeout:    cfg.APITimeout,
		UserAgent:  "adminctl",
	})
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Logger: logger}
	persister, err := rt.openStorage(cfg)
	if err != nil {
		return nil, err
	}

	sessionCfg := goSession.DefaultConfig()
	sessionCfg.Hydration.DropExpiredTokens = cfg.DropExpiredTokens
	sessionCfg.Hydration.ClockSkew = cfg.ClockSkew
	sessionCfg.Logout.NotifyTimeout = cfg.NotifyTimeout
	sessionCfg.Logout.DrainTimeout = cfg.DrainTimeout
	sessionCfg.Metrics.Enabled = true
	sessionCfg.Metrics.EnableLatencyHistograms = true

	b := goSession.New().
		WithConfig(sessionCfg).
		WithAuthClient(client).
		WithPersister(persister).
		WithLogger(logger)
	if cfg.DropExpiredTokens {
		inspector, err := jwt.NewInspector(jwt.Config{SigningMethod: jwt.MethodNone})
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		b = b.WithTokenInspector(inspector)
	}

	store, err := b.Build()
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Store = store
	store.Hydrate(ctx)
	return rt, nil
}

func (r *Runtime) openStorage(cfg Config) (goSession.Persister, error) {
	switch cfg.Storage {
	case StorageMemory:
		return persist.NewMemory(), nil
	case StorageRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		client := redis.NewClient(opts)
		r.closers = append(r.closers, client.Close)
		return persist.NewRedis(client, persist.RedisConfig{
			Prefix: cfg.RedisPrefix,
			TTL:    cfg.RedisTTL,
		}), nil
	default:
		path := cfg.FilePath
		if path == "" {
			dir, err := os.UserConfigDir()
			if err != nil {
				return nil, fmt.Errorf("locate config dir: %w", err)
			}
			path = filepath.Join(dir, "adminctl", "session.json")
		}
		fileCfg := persist.FileConfig{Path: path}
		if cfg.SealPassphrase != "" {
			sealer, err := persist.NewSealer(persist.DefaultSealConfig(cfg.SealPassphrase))
			if err != nil {
				return nil, err
			}
			fileCfg.Sealer = sealer
		}
		return persist.NewFile(fileCfg)
	}
}
