// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoaderOptions configures the configuration loader.
type LoaderOptions struct {
	// ConfigDir is the directory containing config files (default: ./config).
	ConfigDir string
	// Environment overrides automatic environment detection.
	Environment string
	// EnvFile is the .env overlay loaded before substitution (default: .env).
	EnvFile string
	// SkipEnvSubstitution disables environment variable substitution.
	SkipEnvSubstitution bool
	// SkipValidation disables configuration validation.
	SkipValidation bool
}

// DefaultLoaderOptions returns default loader options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		ConfigDir: "config",
		EnvFile:   ".env",
	}
}

// Load loads configuration with automatic environment detection, a .env
// overlay, and ${VAR} substitution.
func Load(opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	envFile := options.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	env := options.Environment
	if env == "" {
		env = GetEnvironment()
	}

	envConfigPath := filepath.Join(options.ConfigDir, fmt.Sprintf("%s.yaml", env))
	cfg, err := loadConfigFile(envConfigPath)
	if err != nil {
		defaultConfigPath := filepath.Join(options.ConfigDir, "default.yaml")
		cfg, err = loadConfigFile(defaultConfigPath)
		if err != nil {
			configPath := filepath.Join(options.ConfigDir, "anchor.yaml")
			cfg, err = loadConfigFile(configPath)
			if err != nil {
				cfg = &Config{}
			}
		}
	}

	if cfg.Environment == "" {
		cfg.Environment = env
	}
	setDefaults(cfg)

	if !options.SkipEnvSubstitution {
		SubstituteEnvVarsInConfig(cfg)
	}
	applyEnvironmentOverrides(cfg)

	if !options.SkipValidation {
		if err := validateConfig(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func loadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return LoadFromFile(path)
}

// applyEnvironmentOverrides applies the highest-priority ANCHOR_* env vars
// directly, bypassing ${VAR} substitution.
func applyEnvironmentOverrides(cfg *Config) {
	if v := os.Getenv("ANCHOR_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ANCHOR_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("ANCHOR_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("ANCHOR_KEY_FILE"); v != "" {
		cfg.AnchorKeyFile = v
	}
	if cfg.Logging != nil {
		if v := os.Getenv("ANCHOR_LOG_LEVEL"); v != "" {
			cfg.Logging.Level = v
		}
		if v := os.Getenv("ANCHOR_LOG_FORMAT"); v != "" {
			cfg.Logging.Format = v
		}
	}
	if cfg.Metrics != nil {
		if os.Getenv("ANCHOR_METRICS_ENABLED") == "true" {
			cfg.Metrics.Enabled = true
		}
		if os.Getenv("ANCHOR_METRICS_ENABLED") == "false" {
			cfg.Metrics.Enabled = false
		}
	}
}

// validateConfig rejects configurations that cannot produce a working
// server.
func validateConfig(cfg *Config) error {
	if cfg.Backend != "memory" && cfg.Backend != "postgres" {
		return fmt.Errorf("configuration validation failed: backend must be \"memory\" or \"postgres\", got %q", cfg.Backend)
	}
	if cfg.Backend == "postgres" && cfg.PostgresDSN == "" {
		return fmt.Errorf("configuration validation failed: postgresDSN is required when backend is \"postgres\"")
	}
	if cfg.Quotas.MaxObjectSize <= 0 {
		return fmt.Errorf("configuration validation failed: quotas.maxObjectSize must be positive")
	}
	return nil
}

// LoadFile loads a single named config file directly (the
// `anchor-server run --config <path>` CLI path), applying the .env
// overlay, ${VAR} substitution, ANCHOR_* overrides, and validation the
// same way Load does for the directory/environment-detection path.
func LoadFile(path string, envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = GetEnvironment()
	}

	SubstituteEnvVarsInConfig(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadForEnvironment loads configuration for a specific environment.
func LoadForEnvironment(environment string) (*Config, error) {
	return Load(LoaderOptions{ConfigDir: "config", Environment: environment})
}

// MustLoad loads configuration or panics on error.
func MustLoad(opts ...LoaderOptions) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
