package api

import (
	"github.com/JaimeStill/promptchan/internal/config"
	"github.com/JaimeStill/promptchan/internal/infrastructure"
	"github.com/JaimeStill/promptchan/pkg/auth"
	"github.com/JaimeStill/promptchan/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration
// and the credential capabilities shared by domain systems.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Passwords  *auth.Passwords
	Tokens     *auth.Tokens
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Tracing:   infra.Tracing,
			Registry:  infra.Registry,
		},
		Pagination: cfg.API.Pagination,
		Passwords:  auth.NewPasswords(cfg.Auth.BcryptCost),
		Tokens:     auth.NewTokens(&cfg.Auth),
	}
}
