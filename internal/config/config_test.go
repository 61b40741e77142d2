package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/promptchan/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"
log_level = "debug"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "1m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "promptchan"
user = "promptchan"
password = "promptchan"
ssl_mode = "disable"

[api]
base_path = "/api"
max_body_size = "2MB"

[api.cors]
enabled = true
origins = ["http://localhost:5173"]

[api.pagination]
default_limit = 25
max_limit = 50

[auth]
secret = "0123456789abcdef0123456789abcdef"
token_ttl = "12h"

[tracing]
enabled = false

[metrics]
enabled = true
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[metrics]
enabled = true
path = "/internal/metrics"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"server port", cfg.Server.Port, 8080},
		{"db host", cfg.Database.Host, "localhost"},
		{"base path", cfg.API.BasePath, "/api"},
		{"max body size", int64(cfg.API.MaxBodySize), int64(2 << 20)},
		{"cors enabled", cfg.API.CORS.Enabled, true},
		{"default limit", cfg.API.Pagination.DefaultLimit, 25},
		{"max limit", cfg.API.Pagination.MaxLimit, 50},
		{"token ttl", cfg.Auth.TokenTTLDuration(), 12 * time.Hour},
		{"refresh ttl default", cfg.Auth.RefreshTTLDuration(), 7 * 24 * time.Hour},
		{"issuer default", cfg.Auth.Issuer, "promptchan"},
		{"metrics path default", cfg.Metrics.Path, "/metrics"},
		{"log level", cfg.Level(), slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("PROMPTCHAN_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("env: got %s, want staging", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Metrics.Path != "/internal/metrics" {
		t.Errorf("metrics path: got %s (from overlay)", cfg.Metrics.Path)
	}
	if cfg.Auth.Secret != secret {
		t.Error("auth secret should carry over from base")
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("PROMPTCHAN_VERSION", "2.0.0")
	t.Setenv("PROMPTCHAN_SERVER_PORT", "3000")
	t.Setenv("PROMPTCHAN_API_MAX_BODY_SIZE", "512KB")
	t.Setenv("PROMPTCHAN_PAGINATION_MAX_LIMIT", "100")
	t.Setenv("PROMPTCHAN_LOG_LEVEL", "WARN")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.API.MaxBodySize != 512<<10 {
		t.Errorf("max body size: got %d", cfg.API.MaxBodySize)
	}
	if cfg.API.Pagination.MaxLimit != 100 {
		t.Errorf("max limit: got %d", cfg.API.Pagination.MaxLimit)
	}
	if cfg.Level() != slog.LevelWarn || cfg.LogLevel != "warn" {
		t.Errorf("log level: got %s", cfg.LogLevel)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("PROMPTCHAN_DB_NAME", "testdb")
	t.Setenv("PROMPTCHAN_DB_USER", "testuser")
	t.Setenv("PROMPTCHAN_AUTH_SECRET", secret)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.API.MaxBodySize != 1<<20 {
		t.Errorf("max body size default: got %d", cfg.API.MaxBodySize)
	}
	if cfg.API.Pagination.DefaultLimit != 20 || cfg.API.Pagination.MaxLimit != 100 {
		t.Errorf("pagination defaults: got %+v", cfg.API.Pagination)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("log level default: got %v", cfg.Level())
	}
	if cfg.Env() != "local" {
		t.Errorf("env default: got %s", cfg.Env())
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Run("ignores unrelated sections", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "config.toml", strings.Replace(baseConfig, secret, "short", 1))
		chdir(t, dir)

		if _, err := config.Load(); err == nil {
			t.Fatal("full load should reject the short auth secret")
		}

		db, err := config.LoadDatabase()
		if err != nil {
			t.Fatalf("LoadDatabase: %v", err)
		}
		if db.Name != "promptchan" || db.MaxOpenConns != 25 {
			t.Errorf("database = %+v", db)
		}
	})

	t.Run("dsn environment override", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("PROMPTCHAN_DB_DSN", "postgres://svc:pw@pg.internal:6432/catalog?sslmode=require")

		db, err := config.LoadDatabase()
		if err != nil {
			t.Fatalf("LoadDatabase: %v", err)
		}
		if db.Host != "pg.internal" || db.Port != 6432 || db.Name != "catalog" || db.SSLMode != "require" {
			t.Errorf("database = %s:%d/%s sslmode=%s", db.Host, db.Port, db.Name, db.SSLMode)
		}
	})
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing auth secret",
			env:     map[string]string{"PROMPTCHAN_DB_NAME": "db", "PROMPTCHAN_DB_USER": "u"},
			wantErr: "auth: secret required",
		},
		{
			name: "bad log level",
			env: map[string]string{
				"PROMPTCHAN_DB_NAME": "db", "PROMPTCHAN_DB_USER": "u",
				"PROMPTCHAN_AUTH_SECRET": secret, "PROMPTCHAN_LOG_LEVEL": "loud",
			},
			wantErr: "invalid log_level",
		},
		{
			name: "bad body size",
			env: map[string]string{
				"PROMPTCHAN_DB_NAME": "db", "PROMPTCHAN_DB_USER": "u",
				"PROMPTCHAN_AUTH_SECRET": secret, "PROMPTCHAN_API_MAX_BODY_SIZE": "lots",
			},
			wantErr: "PROMPTCHAN_API_MAX_BODY_SIZE",
		},
		{
			name: "bad metrics path",
			env: map[string]string{
				"PROMPTCHAN_DB_NAME": "db", "PROMPTCHAN_DB_USER": "u",
				"PROMPTCHAN_AUTH_SECRET": secret, "PROMPTCHAN_METRICS_PATH": "metrics",
			},
			wantErr: "metrics: path must start with /",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestServerConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg config.ServerConfig
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Addr() != "0.0.0.0:8080" {
			t.Errorf("addr: got %s", cfg.Addr())
		}
		if cfg.ReadTimeoutDuration() != 30*time.Second {
			t.Errorf("read timeout: got %v", cfg.ReadTimeoutDuration())
		}
		if cfg.ReadHeaderTimeoutDuration() != 5*time.Second {
			t.Errorf("read header timeout: got %v", cfg.ReadHeaderTimeoutDuration())
		}
	})

	t.Run("platform port", func(t *testing.T) {
		t.Setenv("PORT", "3000")
		var cfg config.ServerConfig
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Port != 3000 {
			t.Errorf("port: got %d, want 3000", cfg.Port)
		}

		t.Setenv("PROMPTCHAN_SERVER_PORT", "4000")
		cfg = config.ServerConfig{}
		cfg.Finalize()
		if cfg.Port != 4000 {
			t.Errorf("port: got %d, want PROMPTCHAN_SERVER_PORT to win", cfg.Port)
		}
	})

	t.Run("invalid idle timeout", func(t *testing.T) {
		cfg := config.ServerConfig{IdleTimeout: "eventually"}
		if err := cfg.Finalize(); err == nil || !strings.Contains(err.Error(), "invalid idle_timeout") {
			t.Errorf("error: got %v", err)
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		cfg := config.ServerConfig{Port: 70000}
		if err := cfg.Finalize(); err == nil || !strings.Contains(err.Error(), "invalid port") {
			t.Errorf("error: got %v", err)
		}
	})
}
