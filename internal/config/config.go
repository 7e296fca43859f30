// Package config loads application configuration from environment variables
// using go-envconfig. Struct tags declare the variable name and default in
// one place, so main.go never touches os.Getenv directly.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds everything the server needs to start.
type Config struct {
	Port     int    `env:"PORT, default=8080"`
	DBPath   string `env:"DB_PATH, default=data/mediapro.db"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs session tokens. Must be a long random string:
	//   JWT_SECRET=$(openssl rand -hex 32)
	JWTSecret string `env:"JWT_SECRET"`

	Admin AdminConfig
}

// AdminConfig is the externally supplied initial-administrator identity.
// The seeded credential is configuration, never a literal in the code.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME, default=Administrator"`
	Email    string `env:"ADMIN_EMAIL, default=admin@mediapro.local"`
	Password string `env:"ADMIN_PASSWORD"`

	// LegacyEmail names an administrator account from an older deployment
	// that the one-time migration rewrites to the identity above. Leave
	// empty when there is nothing to migrate.
	LegacyEmail string `env:"ADMIN_LEGACY_EMAIL"`
}

// Load reads configuration from the environment and checks the values that
// have no usable default.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}
	if cfg.Admin.Password == "" {
		return nil, errors.New("config: ADMIN_PASSWORD must be set")
	}

	return &cfg, nil
}
