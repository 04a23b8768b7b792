// Package config loads process configuration from the environment so main
// stays lean. Every knob has a development default; production overrides via
// HUB_* variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr    string
	AppName string
	Env     string
	Version string

	// TokenSigningKey signs and verifies agent bearer tokens.
	TokenSigningKey string
	TokenIssuer     string

	// PostgresDSN selects the Postgres event store when set; otherwise the
	// in-memory store is used.
	PostgresDSN string

	// RedisURL selects the Redis rate-limit counter store when set.
	RedisURL string

	RateLimit       int
	RateLimitWindow time.Duration

	LogLevel string

	SourcesFile string
	Sources     []Source
}

// Source is one registered producer in the static sources registry.
type Source struct {
	ID     string `yaml:"id" json:"id"`
	Type   string `yaml:"type" json:"type"`
	Status string `yaml:"status" json:"status"`
}

// defaultSources is the registry served when no sources file is configured.
var defaultSources = []Source{
	{ID: "energyapp", Type: "agent", Status: "active"},
	{ID: "mailcow", Type: "agent", Status: "active"},
	{ID: "portfolio", Type: "agent", Status: "planned"},
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:            getenv("HUB_ADDR", ":8080"),
		AppName:         getenv("HUB_APP_NAME", "hubgate"),
		Env:             getenv("HUB_ENV", "development"),
		Version:         getenv("HUB_VERSION", "2.1.0"),
		TokenSigningKey: getenv("HUB_TOKEN_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenIssuer:     getenv("HUB_TOKEN_ISSUER", "hubgate"),
		PostgresDSN:     os.Getenv("HUB_POSTGRES_DSN"),
		RedisURL:        os.Getenv("HUB_REDIS_URL"),
		RateLimit:       60,
		RateLimitWindow: time.Minute,
		LogLevel:        getenv("HUB_LOG_LEVEL", "info"),
		SourcesFile:     os.Getenv("HUB_SOURCES_FILE"),
	}

	if v := os.Getenv("HUB_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid HUB_RATE_LIMIT %q", v)
		}
		cfg.RateLimit = n
	}

	sources, err := loadSources(cfg.SourcesFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Sources = sources

	return cfg, nil
}

// loadSources reads the YAML sources registry, falling back to the built-in
// registry when no file is configured.
func loadSources(path string) ([]Source, error) {
	if path == "" {
		return defaultSources, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var doc struct {
		Sources []Source `yaml:"sources"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	return doc.Sources, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
