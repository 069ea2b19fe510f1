// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	PackBaseURL  string `env:"PACK_BASE_URL" envDefault:"https://packs.voicelang.app/v1"`
	ModelsPath   string `env:"MODELS_PATH" envDefault:"/data/models"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"langpack.db"`
	ServerPort   string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// IdleTimeout aborts a transfer when the mirror stops sending bytes.
	IdleTimeout time.Duration `env:"DOWNLOAD_IDLE_TIMEOUT" envDefault:"30s"`
	// ScanInterval drives the background sweep for interrupted downloads.
	ScanInterval time.Duration `env:"RESUME_SCAN_INTERVAL" envDefault:"30s"`
	// RequireUnmetered defers background retries until the network is
	// reported unmetered.
	RequireUnmetered bool `env:"REQUIRE_UNMETERED" envDefault:"false"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.PackBaseURL == "" {
		return fmt.Errorf("PACK_BASE_URL cannot be empty")
	}
	if !strings.HasPrefix(c.PackBaseURL, "http://") && !strings.HasPrefix(c.PackBaseURL, "https://") {
		return fmt.Errorf("PACK_BASE_URL must be an http(s) URL, got: %s", c.PackBaseURL)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	if c.ModelsPath == "" {
		return fmt.Errorf("MODELS_PATH cannot be empty")
	}
	cleanPath := filepath.Clean(c.ModelsPath)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("MODELS_PATH must be an absolute path, got: %s", c.ModelsPath)
	}
	c.ModelsPath = cleanPath

	if c.IdleTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_IDLE_TIMEOUT must be positive, got: %s", c.IdleTimeout)
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("RESUME_SCAN_INTERVAL must be positive, got: %s", c.ScanInterval)
	}

	return nil
}
