package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/promptchan/pkg/formatting"
	"github.com/JaimeStill/promptchan/pkg/middleware"
	"github.com/JaimeStill/promptchan/pkg/pagination"
)

const (
	EnvAPIBasePath    = "PROMPTCHAN_API_BASE_PATH"
	EnvAPIMaxBodySize = "PROMPTCHAN_API_MAX_BODY_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "PROMPTCHAN_CORS_ENABLED",
	Origins:          "PROMPTCHAN_CORS_ORIGINS",
	AllowedMethods:   "PROMPTCHAN_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "PROMPTCHAN_CORS_ALLOWED_HEADERS",
	AllowCredentials: "PROMPTCHAN_CORS_ALLOW_CREDENTIALS",
	ExposedHeaders:   "PROMPTCHAN_CORS_EXPOSED_HEADERS",
	MaxAge:           "PROMPTCHAN_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultLimit: "PROMPTCHAN_PAGINATION_DEFAULT_LIMIT",
	MaxLimit:     "PROMPTCHAN_PAGINATION_MAX_LIMIT",
}

// APIConfig holds API routing, request limits, CORS, and pagination settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize formatting.ByteSize   `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != 0 {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 1 << 20
	}
}

func (c *APIConfig) loadEnv() error {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		if err := c.MaxBodySize.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAPIMaxBodySize, err)
		}
	}
	return nil
}

func (c *APIConfig) validate() error {
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max_body_size must be positive")
	}
	return nil
}
