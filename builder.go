package goSession

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/internal/tasks"
)

// Builder assembles a Store. A Builder is single-use.
type Builder struct {
	config Config

	client    AuthClient
	persister Persister
	logger    *slog.Logger
	auditSink AuditSink
	probe     ConnectivityProbe
	inspector TokenInspector
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithAuthClient(client AuthClient) *Builder {
	b.client = client
	return b
}

func (b *Builder) WithPersister(p Persister) *Builder {
	b.persister = p
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the sink used when Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithConnectivityProbe lets unclassified failures be reported as
// KindNetworkUnreachable while the client is offline.
func (b *Builder) WithConnectivityProbe(probe ConnectivityProbe) *Builder {
	b.probe = probe
	return b
}

// WithTokenInspector is required when Hydration.DropExpiredTokens is set.
func (b *Builder) WithTokenInspector(inspector TokenInspector) *Builder {
	b.inspector = inspector
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

func (b *Builder) withClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns an unhydrated Store. Call
// Hydrate before Login.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.client == nil {
		return nil, ErrNilAuthClient
	}
	if b.persister == nil {
		return nil, ErrNilPersister
	}
	if cfg.Hydration.DropExpiredTokens && b.inspector == nil {
		return nil, errors.New("Hydration DropExpiredTokens requires a token inspector")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	client := b.client
	s := &Store{
		config:        cfg,
		client:        client,
		persister:     b.persister,
		logger:        logger.With(slog.String("component", "session")),
		probe:         b.probe,
		inspector:     b.inspector,
		now:           now,
		metrics:       NewMetrics(cfg.Metrics),
		notifications: tasks.NewGroup(),
		hydrated:      make(chan struct{}),
		subs:          make(map[uint64]func(State)),
	}

	s.flows = flows.New(flows.Deps{
		Login: flows.LoginDeps{
			Authenticate: func(ctx context.Context, email, password string) (*Admin, string, error) {
				res, err := client.Login(ctx, Credentials{Email: email, Password: password})
				if err != nil {
					return nil, "", err
				}
				if res == nil {
					return nil, "", nil
				}
				return res.Admin, res.Token, nil
			},
			Errors: flows.LoginErrors{InvalidResponse: ErrInvalidResponse},
		},
		Logout: flows.LogoutDeps{
			Notify: client.Logout,
		},
	})

	if cfg.Audit.Enabled {
		s.audit = audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}

	b.built = true
	return s, nil
}
