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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCORSSetting_UnmarshalYAML_Bool(t *testing.T) {
	var c CORSSetting
	require.NoError(t, yaml.Unmarshal([]byte("false"), &c))
	assert.False(t, c.Enabled)
	assert.Empty(t, c.Origin)
}

func TestCORSSetting_UnmarshalYAML_String(t *testing.T) {
	var c CORSSetting
	require.NoError(t, yaml.Unmarshal([]byte(`"https://app.example"`), &c))
	assert.True(t, c.Enabled)
	assert.Equal(t, "https://app.example", c.Origin)
}

func TestCORSSetting_MarshalYAML(t *testing.T) {
	disabled, err := yaml.Marshal(CORSSetting{})
	require.NoError(t, err)
	assert.Equal(t, "false\n", string(disabled))

	enabled, err := yaml.Marshal(CORSSetting{Enabled: true, Origin: "https://app.example"})
	require.NoError(t, err)
	assert.Equal(t, "https://app.example\n", string(enabled))
}

func TestDefaultPathPolicies(t *testing.T) {
	policies := DefaultPathPolicies()
	require.Len(t, policies, 1)

	parsed, ok := policies[0].Parse("/user/abc123/notes/todo.txt")
	require.True(t, ok)
	assert.Equal(t, "abc123", parsed.Owner)
	assert.Equal(t, "notes/todo.txt", parsed.Relative)
}

func TestSaveToFile_JSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	cfg := &Config{ListenAddr: ":5000", Backend: "memory"}
	setDefaults(cfg)
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":5000", loaded.ListenAddr)
}

func TestConfig_FullRoundTripThroughServerConversions(t *testing.T) {
	cfg := &Config{
		Backend: "memory",
		Quotas: QuotaConfig{
			MaxObjectSize:     1024,
			MaxObjectsPerUser: 10,
			MaxStoragePerUser: 2048,
			MaxSearchLimit:    5,
			MaxSignedURLTTL:   60,
		},
		TagValidation:    TagValidationConfig{MaxTags: 2, MaxTagLength: 8, Pattern: "^[a-z]+$"},
		PublicCorsOrigin: CORSSetting{Enabled: true, Origin: "https://app.example"},
	}

	limits := cfg.ToQuotaLimits()
	assert.Equal(t, int64(1024), limits.MaxObjectSize)

	tv, err := cfg.ToTagValidation()
	require.NoError(t, err)
	assert.Equal(t, 2, tv.MaxTags)

	origin := cfg.ToCORSOrigin()
	assert.True(t, origin.Enabled)
	assert.Equal(t, "https://app.example", origin.Origin)
}
