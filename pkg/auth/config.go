package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the shortest accepted HMAC signing secret, in bytes.
const MinSecretLength = 32

// Config holds token signing and password hashing parameters.
type Config struct {
	Secret     string `toml:"secret"`
	Issuer     string `toml:"issuer"`
	TokenTTL   string `toml:"token_ttl"`
	RefreshTTL string `toml:"refresh_ttl"`
	BcryptCost int    `toml:"bcrypt_cost"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Secret     string
	Issuer     string
	TokenTTL   string
	RefreshTTL string
	BcryptCost string
}

// TokenTTLDuration returns TokenTTL as a time.Duration.
func (c *Config) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// RefreshTTLDuration returns RefreshTTL as a time.Duration.
func (c *Config) RefreshTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.RefreshTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.RefreshTTL != "" {
		c.RefreshTTL = overlay.RefreshTTL
	}
	if overlay.BcryptCost != 0 {
		c.BcryptCost = overlay.BcryptCost
	}
}

func (c *Config) loadDefaults() {
	if c.Issuer == "" {
		c.Issuer = "promptchan"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "24h"
	}
	if c.RefreshTTL == "" {
		c.RefreshTTL = "168h"
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Secret != "" {
		if v := os.Getenv(env.Secret); v != "" {
			c.Secret = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.TokenTTL != "" {
		if v := os.Getenv(env.TokenTTL); v != "" {
			c.TokenTTL = v
		}
	}
	if env.RefreshTTL != "" {
		if v := os.Getenv(env.RefreshTTL); v != "" {
			c.RefreshTTL = v
		}
	}
	if env.BcryptCost != "" {
		if v := os.Getenv(env.BcryptCost); v != "" {
			if cost, err := strconv.Atoi(v); err == nil {
				c.BcryptCost = cost
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return fmt.Errorf("secret required")
	}
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("secret must be at least %d bytes", MinSecretLength)
	}
	ttl, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("token_ttl must be positive: %s", c.TokenTTL)
	}
	refresh, err := time.ParseDuration(c.RefreshTTL)
	if err != nil {
		return fmt.Errorf("invalid refresh_ttl: %w", err)
	}
	if refresh < ttl {
		return fmt.Errorf("refresh_ttl %s must not be shorter than token_ttl %s", c.RefreshTTL, c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
