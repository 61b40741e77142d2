package main

import (
	"time"

	"github.com/JaimeStill/promptchan/internal/config"
	"github.com/JaimeStill/promptchan/internal/infrastructure"
)

// Server owns the infrastructure and the HTTP listener for one process.
type Server struct {
	cfg   *config.Config
	infra *infrastructure.Infrastructure
	http  *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra, cfg)
	modules.Mount(router)

	return &Server{
		cfg:   cfg,
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start launches every subsystem. Readiness flips once all startup hooks finish.
func (s *Server) Start() error {
	s.infra.Logger.Info(
		"starting promptchan",
		"version", s.cfg.Version,
		"env", s.cfg.Env(),
		"addr", s.cfg.Server.Addr(),
	)

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("shutting down", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
