package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/promptchan/internal/api"
	"github.com/JaimeStill/promptchan/internal/config"
	"github.com/JaimeStill/promptchan/internal/infrastructure"
	"github.com/JaimeStill/promptchan/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			respond(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready"})
			return
		}

		if failures := infra.Lifecycle.RunChecks(r.Context()); failures != nil {
			checks := make(map[string]string, len(failures))
			for name, err := range failures {
				checks[name] = err.Error()
			}
			respond(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not ready",
				"checks": checks,
			})
			return
		}

		respond(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	if cfg.Metrics.Enabled {
		router.Handle(
			"GET "+cfg.Metrics.Path,
			promhttp.HandlerFor(infra.Registry, promhttp.HandlerOpts{Registry: infra.Registry}),
		)
	}

	return router
}

func respond(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
