// Package config provides configuration loading and validation for the srp6a service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the srp6a service configuration.
type Config struct {
	Service  ServiceSettings  `yaml:"service"`
	Listen   ListenSettings   `yaml:"listen"`
	Verifier VerifierSettings `yaml:"verifier"`
	Logging  LoggingSettings  `yaml:"logging"`
}

// ServiceSettings contains service-level configuration.
type ServiceSettings struct {
	SessionTTL string `yaml:"session_ttl"`
}

// ListenSettings contains the HTTP listener configuration.
type ListenSettings struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// VerifierSettings configures the SRP group, digest, and verifier store.
type VerifierSettings struct {
	GroupID  string `yaml:"group_id"`  // one of srp.Group512 ... srp.Group8192
	Hash     string `yaml:"hash"`      // "sha1" or "sha256"
	StoreDir string `yaml:"store_dir"` // directory containing verifiers.json
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the configuration file.
//
//nolint:gosec // G304: Config path is from command-line argument
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Allow environment variable override for the verifier store directory
	// (useful for tests).
	if storeDir := os.Getenv("SRP6A_STORE_DIR"); storeDir != "" {
		cfg.Verifier.StoreDir = storeDir
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate performs basic validation on the configuration.
// Detailed validation is in validate.go.
func (c *Config) validate() error {
	if c.Service.SessionTTL == "" {
		return fmt.Errorf("service.session_ttl is required")
	}

	if c.Listen.Port <= 0 || c.Listen.Port > 65535 {
		return fmt.Errorf("listen.port must be between 1 and 65535")
	}

	if c.Verifier.GroupID == "" {
		return fmt.Errorf("verifier.group_id is required")
	}

	if c.Verifier.Hash == "" {
		return fmt.Errorf("verifier.hash is required")
	}

	if c.Verifier.StoreDir != "" {
		if !filepath.IsAbs(c.Verifier.StoreDir) {
			return fmt.Errorf("verifier.store_dir must be an absolute path")
		}

		//nolint:gosec // G301: 0755 is standard for directory permissions
		if err := os.MkdirAll(c.Verifier.StoreDir, 0o755); err != nil {
			return fmt.Errorf("failed to create verifier store directory: %w", err)
		}
	}

	return nil
}

// GetSessionTTL parses and returns the session TTL duration.
func (c *Config) GetSessionTTL() (time.Duration, error) {
	duration, err := time.ParseDuration(c.Service.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid session_ttl: %w", err)
	}

	if duration < 5*time.Minute {
		return 0, fmt.Errorf("session_ttl must be at least 5 minutes")
	}

	return duration, nil
}

// VerifierStorePath returns the path to the verifier store's JSON file.
func (c *Config) VerifierStorePath() string {
	return filepath.Join(c.Verifier.StoreDir, "verifiers.json")
}

// ListenAddr returns the address:port pair for net/http to listen on.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Listen.Address, c.Listen.Port)
}
