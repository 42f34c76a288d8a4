package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, loaded from environment variables.
type Config struct {
	ClientID     string `env:"MELI_CLIENT_ID"`
	ClientSecret string `env:"MELI_CLIENT_SECRET"`
	RedirectURI  string `env:"MELI_REDIRECT_URI"`

	Host   string `env:"HOST" envDefault:"127.0.0.1"`
	Port   string `env:"PORT" envDefault:"8080"`
	DBPath string `env:"MELI_DB_PATH" envDefault:"ecosearch.db"`

	SiteID       string `env:"MELI_SITE" envDefault:"MLA"`
	DefaultQuery string `env:"MELI_DEFAULT_QUERY" envDefault:"eco-friendly"`
	SitesFile    string `env:"MELI_SITES_FILE"`

	// TokenSkew is subtracted from a token's expiry before deciding it
	// is still usable, so a token never expires mid-request.
	TokenSkew   time.Duration `env:"MELI_TOKEN_SKEW" envDefault:"60s"`
	HTTPTimeout time.Duration `env:"MELI_HTTP_TIMEOUT" envDefault:"15s"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// CredentialsConfigured reports whether all Mercado Libre app
// credentials are present. The server runs without them, but every
// OAuth operation fails fast until they are set.
func (c *Config) CredentialsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
