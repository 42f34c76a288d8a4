package config

import (
	"os"
	"testing"
	"time"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		// t.Setenv registers restoration of the original value.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "MELI_CLIENT_ID", "MELI_CLIENT_SECRET", "MELI_REDIRECT_URI",
		"HOST", "PORT", "MELI_DB_PATH", "MELI_SITE", "MELI_DEFAULT_QUERY",
		"MELI_TOKEN_SKEW", "MELI_HTTP_TIMEOUT", "MELI_SITES_FILE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr() != "127.0.0.1:8080" {
		t.Fatalf("unexpected default addr: %s", cfg.Addr())
	}
	if cfg.SiteID != "MLA" {
		t.Fatalf("unexpected default site: %s", cfg.SiteID)
	}
	if cfg.DefaultQuery != "eco-friendly" {
		t.Fatalf("unexpected default query: %s", cfg.DefaultQuery)
	}
	if cfg.TokenSkew != 60*time.Second {
		t.Fatalf("unexpected default skew: %s", cfg.TokenSkew)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected default timeout: %s", cfg.HTTPTimeout)
	}
	if cfg.CredentialsConfigured() {
		t.Fatal("expected credentials to be unconfigured")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MELI_CLIENT_ID", "id")
	t.Setenv("MELI_CLIENT_SECRET", "secret")
	t.Setenv("MELI_REDIRECT_URI", "https://example.com/callback")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9090")
	t.Setenv("MELI_SITE", "MLB")
	t.Setenv("MELI_TOKEN_SKEW", "30s")
	t.Setenv("MELI_HTTP_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.CredentialsConfigured() {
		t.Fatal("expected credentials to be configured")
	}
	if cfg.Addr() != "0.0.0.0:9090" {
		t.Fatalf("unexpected addr: %s", cfg.Addr())
	}
	if cfg.SiteID != "MLB" {
		t.Fatalf("unexpected site: %s", cfg.SiteID)
	}
	if cfg.TokenSkew != 30*time.Second || cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected durations: skew=%s timeout=%s", cfg.TokenSkew, cfg.HTTPTimeout)
	}
}

func TestCredentialsConfigured_PartialIsNotConfigured(t *testing.T) {
	cfg := &Config{ClientID: "id", ClientSecret: "", RedirectURI: "https://example.com/cb"}
	if cfg.CredentialsConfigured() {
		t.Fatal("partial credentials must not count as configured")
	}
}
