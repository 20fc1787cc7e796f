package goSession

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Messages  MessagesConfig
	Hydration HydrationConfig
	Logout    LogoutConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
MESSAGES CONFIG
====================================
*/

// MessagesConfig holds the user-facing text exposed in State.Error for each
// ErrorKind. Unclassified failures show the server's raw message when there is
// one and fall back to Unclassified otherwise.
type MessagesConfig struct {
	InvalidCredentials string
	Forbidden          string
	RateLimited        string
	ServerError        string
	Timeout            string
	NetworkUnreachable string
	InvalidResponse    string
	Unclassified       string
}

func (m MessagesConfig) message(kind ErrorKind, err error) string {
	switch kind {
	case KindInvalidCredentials:
		return m.InvalidCredentials
	case KindForbidden:
		return m.Forbidden
	case KindRateLimited:
		return m.RateLimited
	case KindServerError:
		return m.ServerError
	case KindTimeout:
		return m.Timeout
	case KindNetworkUnreachable:
		return m.NetworkUnreachable
	case KindInvalidResponse:
		return m.InvalidResponse
	}
	if raw := strings.TrimSpace(rawMessage(err)); raw != "" {
		return raw
	}
	return m.Unclassified
}

/*
====================================
HYDRATION CONFIG
====================================
*/

// HydrationConfig controls what Hydrate accepts from storage.
type HydrationConfig struct {
	// DropExpiredTokens discards a restored session whose token the
	// TokenInspector reports as expired. Requires WithTokenInspector.
	DropExpiredTokens bool
	// ClockSkew is subtracted from "now" before the expiry check.
	ClockSkew time.Duration
	// ClearRejectedRecords wipes the slot when a stored record cannot be
	// used (unknown schema, partial pair, expired token), so storage keeps
	// mirroring memory.
	ClearRejectedRecords bool
}

/*
====================================
LOGOUT CONFIG
====================================
*/

// LogoutConfig controls the detached server notification sent on logout.
type LogoutConfig struct {
	// NotifyTimeout bounds a single notification. Zero leaves the deadline to
	// the auth client.
	NotifyTimeout time.Duration
	// DrainTimeout bounds how long Close waits for pending notifications
	// before cancelling them. Zero waits indefinitely.
	DrainTimeout time.Duration
}

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events when the buffer is full. When false, Login
	// and hydration wait for room; Logout never waits and drops instead.
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Messages: MessagesConfig{
			InvalidCredentials: "Wrong email or password.",
			Forbidden:          "You are not authorized to access the admin area.",
			RateLimited:        "Too many login attempts. Please wait a moment and try again.",
			ServerError:        "The server ran into a problem. Please try again later.",
			Timeout:            "The server took too long to respond. Please try again.",
			NetworkUnreachable: "Unable to reach the server. Check your connection.",
			InvalidResponse:    "Invalid response from server.",
			Unclassified:       "Login failed.",
		},
		Hydration: HydrationConfig{
			DropExpiredTokens:    false,
			ClockSkew:            30 * time.Second,
			ClearRejectedRecords: true,
		},
		Logout: LogoutConfig{
			NotifyTimeout: 0,
			DrainTimeout:  5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Messages
	for name, msg := range map[string]string{
		"InvalidCredentials": c.Messages.InvalidCredentials,
		"Forbidden":          c.Messages.Forbidden,
		"RateLimited":        c.Messages.RateLimited,
		"ServerError":        c.Messages.ServerError,
		"Timeout":            c.Messages.Timeout,
		"NetworkUnreachable": c.Messages.NetworkUnreachable,
		"InvalidResponse":    c.Messages.InvalidResponse,
		"Unclassified":       c.Messages.Unclassified,
	} {
		if strings.TrimSpace(msg) == "" {
			return errors.New("Messages " + name + " must not be empty")
		}
	}

	// Hydration
	if c.Hydration.ClockSkew < 0 {
		return errors.New("Hydration ClockSkew must be >= 0")
	}
	if c.Hydration.ClockSkew > time.Hour {
		return errors.New("Hydration ClockSkew must be <= 1h")
	}

	// Logout
	if c.Logout.NotifyTimeout < 0 {
		return errors.New("Logout NotifyTimeout must be >= 0")
	}
	if c.Logout.DrainTimeout < 0 {
		return errors.New("Logout DrainTimeout must be >= 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
