// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// LinkedIn holds the OAuth client settings for LinkedIn identity verification.
type LinkedIn struct {
	ClientID     string `env:"LINKEDIN_CLIENT_ID"`
	ClientSecret string `env:"LINKEDIN_CLIENT_SECRET"`
	CallbackURL  string `env:"LINKEDIN_CALLBACK_URL"`
	PKCE         bool   `env:"LINKEDIN_PKCE" envDefault:"true"`
}

// Spotify holds the client-credentials settings for the search proxy.
type Spotify struct {
	ClientID     string `env:"SPOTIFY_CLIENT_ID"`
	ClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
}

// Config is the full application configuration.
type Config struct {
	Host        string   `env:"HOST" envDefault:"127.0.0.1"`
	Port        string   `env:"PORT" envDefault:"8080"`
	Environment string   `env:"APP_ENV" envDefault:"development"`
	DBPath      string   `env:"DB_PATH" envDefault:"wanderdate.db"`
	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	JWTSecret   string   `env:"JWT_SECRET"`
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// Optional YAML file overriding/extending the OAuth provider catalog.
	ProvidersConfig string `env:"PROVIDERS_CONFIG"`

	LinkedIn LinkedIn
	Spotify  Spotify
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the deployment enforces production rules
// (most notably HTTPS on the OAuth callback URL).
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsAdmin reports whether the email is on the admin allowlist.
func (c *Config) IsAdmin(email string) bool {
	for _, admin := range c.AdminEmails {
		if strings.TrimSpace(admin) == email {
			return true
		}
	}
	return false
}
