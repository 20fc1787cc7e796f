package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable read by LoadConfig.
const EnvPrefix = "ADMINCTL_"

// Storage backends accepted by Config.Storage.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

var (
	// ErrParsingConfig wraps env decoding failures.
	ErrParsingConfig = errors.New("failed to parse adminctl configuration")
	// ErrInvalidConfig wraps semantic validation failures.
	ErrInvalidConfig = errors.New("invalid adminctl configuration")
)

// Config is the adminctl environment. Every variable carries EnvPrefix.
type Config struct {
	APIBaseURL string        `env:"API_URL,required"`
	LoginPath  string        `env:"LOGIN_PATH" envDefault:"/admin/login"`
	LogoutPath string        `env:"LOGOUT_PATH" envDefault:"/admin/logout"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	Storage        string        `env:"STORAGE" envDefault:"file"`
	FilePath       string        `env:"FILE_PATH"`
	SealPassphrase string        `env:"SEAL_PASSPHRASE"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix    string        `env:"REDIS_PREFIX" envDefault:"gosession"`
	RedisTTL       time.Duration `env:"REDIS_TTL"`

	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`

	DropExpiredTokens bool          `env:"DROP_EXPIRED_TOKENS" envDefault:"false"`
	ClockSkew         time.Duration `env:"CLOCK_SKEW" envDefault:"30s"`
	NotifyTimeout     time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	DrainTimeout      time.Duration `env:"DRAIN_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	ListenAddr  string        `env:"LISTEN_ADDR" envDefault:"127.0.0.1:8089"`
	Upstream    string        `env:"UPSTREAM"`
	LoginURL    string        `env:"GUARD_LOGIN_URL"`
	RetryAfter  time.Duration `env:"GUARD_RETRY_AFTER" envDefault:"1s"`
	ShutdownTTL time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// LoadConfig preloads the given dotenv files and decodes the process
// environment. With no files, a ".env" in the working directory is loaded
// when present. Variables already set in the environment win over dotenv
// values.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return parseConfig(env.Options{Prefix: EnvPrefix})
}

// LoadConfigFrom decodes cfg from an explicit variable map instead of the
// process environment. Keys carry EnvPrefix.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	return parseConfig(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("%w: STORAGE must be one of %s, %s, %s", ErrInvalidConfig, StorageFile, StorageRedis, StorageMemory)
	}
	if c.Storage == StorageRedis && strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("%w: REDIS_URL is required for redis storage", ErrInvalidConfig)
	}
	if c.SealPassphrase != "" && c.Storage != StorageFile {
		return fmt.Errorf("%w: SEAL_PASSPHRASE only applies to file storage", ErrInvalidConfig)
	}
	if c.NotifyTimeout < 0 || c.DrainTimeout < 0 || c.ClockSkew < 0 {
		return fmt.Errorf("%w: timeouts must be >= 0", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch Format(c.LogFormat) {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("%w: LOG_FORMAT must be %q or %q", ErrInvalidConfig, FormatJSON, FormatText)
	}
	return nil
}
