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
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sage-x-project/anchor/anchorserver"
	"github.com/sage-x-project/anchor/pathpolicy"
	"github.com/sage-x-project/anchor/storage"
)

// LoadFromFile loads configuration from a file, trying YAML then JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing format by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setDefaults fills in the server configuration defaults.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8443"
	}
	if cfg.AnchorKeyFile == "" {
		cfg.AnchorKeyFile = "./anchor.key"
	}
	if cfg.Backend == "" {
		cfg.Backend = "memory"
	}

	if cfg.Quotas.MaxObjectSize == 0 {
		cfg.Quotas.MaxObjectSize = 10 << 20
	}
	if cfg.Quotas.MaxObjectsPerUser == 0 {
		cfg.Quotas.MaxObjectsPerUser = 1000
	}
	if cfg.Quotas.MaxStoragePerUser == 0 {
		cfg.Quotas.MaxStoragePerUser = 100 << 20
	}
	if cfg.Quotas.MaxSearchLimit == 0 {
		cfg.Quotas.MaxSearchLimit = 100
	}
	if cfg.Quotas.MaxSignedURLTTL == 0 {
		cfg.Quotas.MaxSignedURLTTL = 86400
	}

	if cfg.SignedURLDefaultTTL == 0 {
		cfg.SignedURLDefaultTTL = 3600
	}

	if cfg.TagValidation.MaxTags == 0 {
		cfg.TagValidation.MaxTags = 10
	}
	if cfg.TagValidation.MaxTagLength == 0 {
		cfg.TagValidation.MaxTagLength = 50
	}
	if cfg.TagValidation.Pattern == "" {
		cfg.TagValidation.Pattern = "^[A-Za-z0-9_-]+$"
	}

	if cfg.Logging != nil {
		if cfg.Logging.Level == "" {
			cfg.Logging.Level = "info"
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = "json"
		}
		if cfg.Logging.Output == "" {
			cfg.Logging.Output = "stdout"
		}
	}
}

// ToQuotaLimits converts the YAML quota block into storage.QuotaLimits,
// expanding the wire's seconds-based TTL into a time.Duration.
func (c *Config) ToQuotaLimits() storage.QuotaLimits {
	return storage.QuotaLimits{
		MaxObjectSize:     c.Quotas.MaxObjectSize,
		MaxObjectsPerUser: c.Quotas.MaxObjectsPerUser,
		MaxStoragePerUser: c.Quotas.MaxStoragePerUser,
		MaxSearchLimit:    c.Quotas.MaxSearchLimit,
		MaxSignedURLTTL:   time.Duration(c.Quotas.MaxSignedURLTTL) * time.Second,
	}
}

// ToTagValidation converts the YAML tag-validation block into
// anchorserver.TagValidation, compiling the pattern.
func (c *Config) ToTagValidation() (anchorserver.TagValidation, error) {
	pattern, err := regexp.Compile(c.TagValidation.Pattern)
	if err != nil {
		return anchorserver.TagValidation{}, fmt.Errorf("config: invalid tagValidation.pattern: %w", err)
	}
	return anchorserver.TagValidation{
		MaxTags:      c.TagValidation.MaxTags,
		MaxTagLength: c.TagValidation.MaxTagLength,
		Pattern:      pattern,
	}, nil
}

// ToCORSOrigin converts the YAML publicCorsOrigin setting into
// anchorserver.CORSOrigin.
func (c *Config) ToCORSOrigin() anchorserver.CORSOrigin {
	if !c.PublicCorsOrigin.Enabled {
		return anchorserver.DisableCORS
	}
	return anchorserver.AllowOrigin(c.PublicCorsOrigin.Origin)
}

// DefaultPathPolicies returns the catch-all policy most deployments start
// from; operators compose a more granular []pathpolicy.Policy in code when
// multiple namespaces need distinct rules.
func DefaultPathPolicies() []pathpolicy.Policy {
	return []pathpolicy.Policy{pathpolicy.NewDefaultPolicy()}
}
