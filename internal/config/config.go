// Package config loads the service configuration from TOML files and
// PROMPTCHAN_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/promptchan/pkg/auth"
	"github.com/JaimeStill/promptchan/pkg/database"
	"github.com/JaimeStill/promptchan/pkg/tracing"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPromptchanEnv             = "PROMPTCHAN_ENV"
	EnvPromptchanShutdownTimeout = "PROMPTCHAN_SHUTDOWN_TIMEOUT"
	EnvPromptchanVersion         = "PROMPTCHAN_VERSION"
	EnvPromptchanLogLevel        = "PROMPTCHAN_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	DSN:             "PROMPTCHAN_DB_DSN",
	Host:            "PROMPTCHAN_DB_HOST",
	Port:            "PROMPTCHAN_DB_PORT",
	Name:            "PROMPTCHAN_DB_NAME",
	User:            "PROMPTCHAN_DB_USER",
	Password:        "PROMPTCHAN_DB_PASSWORD",
	SSLMode:         "PROMPTCHAN_DB_SSL_MODE",
	MaxOpenConns:    "PROMPTCHAN_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PROMPTCHAN_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PROMPTCHAN_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PROMPTCHAN_DB_CONN_TIMEOUT",
}

var authEnv = &auth.Env{
	Secret:     "PROMPTCHAN_AUTH_SECRET",
	Issuer:     "PROMPTCHAN_AUTH_ISSUER",
	TokenTTL:   "PROMPTCHAN_AUTH_TOKEN_TTL",
	RefreshTTL: "PROMPTCHAN_AUTH_REFRESH_TTL",
	BcryptCost: "PROMPTCHAN_AUTH_BCRYPT_COST",
}

var tracingEnv = &tracing.Env{
	Enabled:     "PROMPTCHAN_TRACING_ENABLED",
	Endpoint:    "PROMPTCHAN_TRACING_ENDPOINT",
	Insecure:    "PROMPTCHAN_TRACING_INSECURE",
	ServiceName: "PROMPTCHAN_TRACING_SERVICE_NAME",
	SampleRatio: "PROMPTCHAN_TRACING_SAMPLE_RATIO",
}

// Config is the root configuration for the Promptchan service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	API             APIConfig       `toml:"api"`
	Auth            auth.Config     `toml:"auth"`
	Tracing         tracing.Config  `toml:"tracing"`
	Metrics         MetricsConfig   `toml:"metrics"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// Env returns the PROMPTCHAN_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPromptchanEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as an slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads config.toml when present, merges the PROMPTCHAN_ENV overlay,
// and finalizes every section. Without any file, defaults and environment
// variables supply the whole configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// LoadDatabase resolves only the database section. Operational commands use
// it so they do not require API settings such as the auth secret.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize database config: %w", err)
	}
	return &cfg.Database, nil
}

func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		if cfg, err = load(BaseConfigFile); err != nil {
			return nil, err
		}
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Tracing.Merge(&overlay.Tracing)
	c.Metrics.Merge(&overlay.Metrics)
}

// Finalize applies defaults, environment overrides, and validation to the
// root config and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Tracing.Finalize(tracingEnv); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	if err := c.Metrics.Finalize(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPromptchanShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPromptchanVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvPromptchanLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvPromptchanEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
