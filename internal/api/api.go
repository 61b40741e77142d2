// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/promptchan/internal/config"
	"github.com/JaimeStill/promptchan/internal/infrastructure"
	"github.com/JaimeStill/promptchan/pkg/handlers"
	"github.com/JaimeStill/promptchan/pkg/middleware"
	"github.com/JaimeStill/promptchan/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The stack runs CORS, request logging, tracing, and metrics in that order;
// metrics sit innermost so they observe the matched route pattern.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
		runtime.Tracing.Middleware,
	)

	if cfg.Metrics.Enabled {
		metrics, err := middleware.NewMetrics(runtime.Registry, cfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("register api metrics: %w", err)
		}
		m.Use(metrics.Middleware)
	}

	m.Use(handlers.MaxBytes(int64(cfg.API.MaxBodySize)))

	return m, nil
}
