// Package database owns the PostgreSQL connection pool and ties its
// readiness and teardown to the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/promptchan/pkg/lifecycle"
)

// System exposes the connection pool and its lifecycle hooks.
type System interface {
	Connection() *sql.DB
	// Start registers the readiness check plus startup and shutdown hooks.
	Start(lc *lifecycle.Coordinator) error
	// Ping reports ErrNotReady when the database cannot be reached within
	// the configured connect timeout.
	Ping(ctx context.Context) error
}

type database struct {
	pool    *sql.DB
	logger  *slog.Logger
	timeout time.Duration
}

// New opens a lazily connecting pool through the pgx stdlib driver.
// No connection is attempted until the first query or Ping.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	cc, err := cfg.ConnConfig()
	if err != nil {
		return nil, err
	}

	pool := stdlib.OpenDB(*cc)
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		pool:    pool,
		logger:  logger.With("system", "database", "host", cc.Host, "name", cc.Database),
		timeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.pool
}

func (d *database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.pool.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.RegisterCheck("database", d.Ping)

	lc.OnStartup(func() {
		if err := d.Ping(lc.Context()); err != nil {
			d.logger.Error("database unreachable at startup", "error", err)
			return
		}
		stats := d.pool.Stats()
		d.logger.Info("database connected", "max_open", stats.MaxOpenConnections)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := d.pool.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database pool closed")
	})

	return nil
}
