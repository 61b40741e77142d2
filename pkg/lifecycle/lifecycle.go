// Package lifecycle coordinates process startup, readiness, and graceful
// shutdown across the components that make up the server.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Check tests a dependency and returns an error when it cannot serve traffic.
type Check func(ctx context.Context) error

// Coordinator tracks startup and shutdown hooks and the readiness checks
// registered by infrastructure components.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	starting sync.WaitGroup
	stopping sync.WaitGroup
	ready    atomic.Bool

	mu     sync.RWMutex
	checks map[string]Check
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: map[string]Check{},
	}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine. WaitForStartup waits for it.
func (c *Coordinator) OnStartup(fn func()) {
	c.starting.Go(fn)
}

// OnShutdown runs fn in its own goroutine. Hooks block on Context().Done()
// before releasing their resources; Shutdown waits for them.
func (c *Coordinator) OnShutdown(fn func()) {
	c.stopping.Go(fn)
}

func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// RegisterCheck adds a named readiness check, replacing any earlier check
// with the same name.
func (c *Coordinator) RegisterCheck(name string, check Check) {
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

// RunChecks runs the registered checks concurrently and returns the failures
// keyed by check name, or nil when every check passed.
func (c *Coordinator) RunChecks(ctx context.Context) map[string]error {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures map[string]error
	)

	for name, check := range checks {
		wg.Go(func() {
			err := check(ctx)
			if err == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if failures == nil {
				failures = map[string]error{}
			}
			failures[name] = err
		})
	}

	wg.Wait()
	return failures
}

// WaitForStartup blocks until every startup hook returns, then marks the
// coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.starting.Wait()
	c.ready.Store(true)
}

// Shutdown cancels Context and waits up to timeout for the shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.stopping.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown hooks still running after %v", timeout)
	}
}
