package config

import (
	"fmt"
	"slices"
	"strings"
)

// Validate performs comprehensive validation on the configuration.
func Validate(cfg *Config) error {
	if err := validateService(cfg); err != nil {
		return fmt.Errorf("service validation failed: %w", err)
	}

	if err := validateListen(cfg); err != nil {
		return fmt.Errorf("listen validation failed: %w", err)
	}

	if err := validateVerifier(cfg); err != nil {
		return fmt.Errorf("verifier validation failed: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	return nil
}

func validateService(cfg *Config) error {
	if _, err := cfg.GetSessionTTL(); err != nil {
		return err
	}
	return nil
}

func validateListen(cfg *Config) error {
	if cfg.Listen.Port <= 0 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen.port must be between 1 and 65535")
	}

	if strings.Contains(cfg.Listen.Address, " ") {
		return fmt.Errorf("listen.address contains invalid characters")
	}

	return nil
}

func validateVerifier(cfg *Config) error {
	validGroups := []string{"512", "1024", "1536", "2048", "3072", "4096", "6144", "8192"}
	if !slices.Contains(validGroups, cfg.Verifier.GroupID) {
		return fmt.Errorf("verifier.group_id must be one of: %s", strings.Join(validGroups, ", "))
	}

	validHashes := []string{"sha1", "sha256"}
	if !slices.Contains(validHashes, strings.ToLower(cfg.Verifier.Hash)) {
		return fmt.Errorf("verifier.hash must be one of: %s", strings.Join(validHashes, ", "))
	}

	return nil
}

func validateLogging(cfg *Config) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, cfg.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %s", strings.Join(validLevels, ", "))
	}

	validFormats := []string{"json", "human"}
	if !slices.Contains(validFormats, cfg.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: %s", strings.Join(validFormats, ", "))
	}

	return nil
}
