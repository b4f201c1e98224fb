// Package config loads process configuration from environment variables,
// with an optional YAML file overlay, following the teacher's
// "explicit struct + defaults" style
// (runtime/toolregistry/provider.Options). Configuration loading is an
// external collaborator concern kept out of the engine/store/bus core so
// those packages stay constructible purely from in-process values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"goa.design/hierarchical-agents/internal/errs"
	"goa.design/hierarchical-agents/internal/eventbus"
	"goa.design/hierarchical-agents/internal/statestore"
)

// StoreBackend selects which statestore.Store implementation the process
// wires up at startup.
type StoreBackend string

const (
	StoreBackendMemory StoreBackend = "memory"
	StoreBackendRedis  StoreBackend = "redis"
)

// Config is the complete set of process-level knobs. Every field documents
// the environment variable it is populated from so a CLI wrapper or
// operator can discover them without reading code.
type Config struct {
	// HTTPAddr is the listen address for internal/httpapi.
	// Env: ORCHESTRAD_HTTP_ADDR (default ":8080").
	HTTPAddr string `yaml:"http_addr"`

	// StoreBackend selects "memory" or "redis".
	// Env: ORCHESTRAD_STORE_BACKEND (default "memory").
	StoreBackend StoreBackend `yaml:"store_backend"`

	// RedisAddr is the Redis server address, used when StoreBackend is
	// "redis". Env: ORCHESTRAD_REDIS_ADDR (default "localhost:6379").
	RedisAddr string `yaml:"redis_addr"`

	// RedisPassword authenticates to Redis when non-empty.
	// Env: ORCHESTRAD_REDIS_PASSWORD.
	RedisPassword string `yaml:"redis_password"`

	// RedisDB selects the Redis logical database.
	// Env: ORCHESTRAD_REDIS_DB (default 0).
	RedisDB int `yaml:"redis_db"`

	// Store carries the key prefix/TTL/retry/lock knobs passed to
	// whichever statestore.Store backend is constructed.
	// Env: ORCHESTRAD_STORE_KEY_PREFIX sets KeyPrefix; the other store knobs
	// come from defaults or the YAML file.
	Store statestore.Config `yaml:"store"`

	// Bus carries the event bus's subscriber/buffer/eviction bounds.
	// Env: ORCHESTRAD_BUS_MAX_SUBSCRIBERS sets MaxSubscribers; the other bus
	// knobs come from defaults or the YAML file.
	Bus eventbus.Config `yaml:"bus"`

	// DefaultMaxTotalExecutionSeconds seeds model.GlobalConfig.
	// MaxTotalExecutionSeconds for team specs that omit it when an
	// execution starts, and bounds every HTTP request's context.
	// Env: ORCHESTRAD_DEFAULT_MAX_EXECUTION_SECONDS (default 300).
	DefaultMaxTotalExecutionSeconds int `yaml:"default_max_total_execution_seconds"`

	// RetentionWindow is parsed and reported by String(); no other
	// component reads it, and stored state expires by Store.DefaultTTL.
	// Env: ORCHESTRAD_RETENTION_WINDOW (default 24h).
	RetentionWindow time.Duration `yaml:"retention_window"`
}

// Default returns the config's baseline values before env/file overlays.
func Default() Config {
	return Config{
		HTTPAddr:                        ":8080",
		StoreBackend:                    StoreBackendMemory,
		RedisAddr:                       "localhost:6379",
		RedisDB:                         0,
		Store:                           statestore.DefaultConfig(),
		Bus:                             eventbus.DefaultConfig(),
		DefaultMaxTotalExecutionSeconds: 300,
		RetentionWindow:                 24 * time.Hour,
	}
}

// Load builds a Config starting from Default(), optionally overlaying a
// YAML file (when path is non-empty), then overlaying environment
// variables, which always take precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errs.Wrap(errs.KindInternal, "reading config file", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errs.Wrap(errs.KindInternal, "parsing config file", err)
		}
	}

	if err := overlayEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayEnv(cfg *Config) error {
	if v := os.Getenv("ORCHESTRAD_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("ORCHESTRAD_STORE_BACKEND"); v != "" {
		cfg.StoreBackend = StoreBackend(v)
	}
	if v := os.Getenv("ORCHESTRAD_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("ORCHESTRAD_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("ORCHESTRAD_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.KindValidation, "parsing ORCHESTRAD_REDIS_DB", err)
		}
		cfg.RedisDB = n
	}
	if v := os.Getenv("ORCHESTRAD_DEFAULT_MAX_EXECUTION_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.KindValidation, "parsing ORCHESTRAD_DEFAULT_MAX_EXECUTION_SECONDS", err)
		}
		cfg.DefaultMaxTotalExecutionSeconds = n
	}
	if v := os.Getenv("ORCHESTRAD_RETENTION_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errs.Wrap(errs.KindValidation, "parsing ORCHESTRAD_RETENTION_WINDOW", err)
		}
		cfg.RetentionWindow = d
	}
	if v := os.Getenv("ORCHESTRAD_STORE_KEY_PREFIX"); v != "" {
		cfg.Store.KeyPrefix = v
	}
	if v := os.Getenv("ORCHESTRAD_BUS_MAX_SUBSCRIBERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.KindValidation, "parsing ORCHESTRAD_BUS_MAX_SUBSCRIBERS", err)
		}
		cfg.Bus.MaxSubscribers = n
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendMemory, StoreBackendRedis:
	default:
		return errs.Errorf(errs.KindValidation, "unknown store backend %q", c.StoreBackend)
	}
	if c.HTTPAddr == "" {
		return errs.New(errs.KindValidation, "http addr cannot be empty")
	}
	if c.DefaultMaxTotalExecutionSeconds <= 0 {
		return errs.New(errs.KindValidation, "default max total execution seconds must be positive")
	}
	return nil
}

// String renders the config for startup logging with the Redis password
// redacted.
func (c Config) String() string {
	redacted := "(unset)"
	if c.RedisPassword != "" {
		redacted = "(redacted)"
	}
	return fmt.Sprintf(
		"http_addr=%s store_backend=%s redis_addr=%s redis_password=%s redis_db=%d retention_window=%s",
		c.HTTPAddr, c.StoreBackend, c.RedisAddr, redacted, c.RedisDB, c.RetentionWindow,
	)
}
