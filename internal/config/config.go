// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"NESTHUB_DB_PATH" envDefault:"./data/nesthub.db"`
	SessionSecret string `env:"NESTHUB_SESSION_SECRET,required"`
	ServerHost    string `env:"NESTHUB_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"NESTHUB_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"NESTHUB_ENV" envDefault:"development"`
	LogLevel      string `env:"NESTHUB_LOG_LEVEL" envDefault:"info"`

	// DataDir holds the local-state file (session identity and access codes).
	DataDir    string `env:"NESTHUB_DATA_DIR" envDefault:"./data"`
	UploadsDir string `env:"NESTHUB_UPLOADS_DIR" envDefault:"./uploads"`

	// PublicBaseURL is the externally reachable base URL used to build and
	// verify public image references.
	PublicBaseURL string `env:"NESTHUB_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Demo mode: when true the sync layer never talks to the database and
	// all mutations live in memory only.
	DemoMode bool `env:"NESTHUB_DEMO_MODE" envDefault:"false"`

	// Cache configuration
	RedisURL     string `env:"NESTHUB_REDIS_URL"` // Optional Redis URL for the listings cache
	CachePrefix  string `env:"NESTHUB_CACHE_PREFIX" envDefault:"nesthub:"`
	CacheTTL     int    `env:"NESTHUB_CACHE_TTL" envDefault:"60"`        // Listings cache TTL in seconds
	CacheMaxSize int    `env:"NESTHUB_CACHE_MAX_SIZE" envDefault:"1000"` // Max memory cache entries

	// OpenAI configuration for listing description generation
	OpenAIAPIKey string `env:"NESTHUB_OPENAI_API_KEY"`
	OpenAIModel  string `env:"NESTHUB_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// GeoIP configuration
	GeoIPDBPath string `env:"NESTHUB_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Seeding configuration
	DoSeed bool `env:"NESTHUB_DO_SEED" envDefault:"false"` // Enable demo database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AIEnabled returns true if the description generator is configured.
func (c Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("NESTHUB_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	return cfg, nil
}
