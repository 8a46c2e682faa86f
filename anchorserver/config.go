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

// Package anchorserver implements the anchor HTTP server: route
// dispatch, request authentication (URL-signed and body-signed), path
// policy enforcement, quota accounting, and public pre-signed URLs. It is
// built directly on net/http.ServeMux with Go 1.22+ method+wildcard
// patterns; no router framework.
package anchorserver

import (
	"fmt"
	"regexp"
	"time"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/internal/logger"
	"github.com/sage-x-project/anchor/pathpolicy"
	"github.com/sage-x-project/anchor/storage"
)

// Validator runs namespace-specific content validation on a PUT's
// decrypted payload.
type Validator func(path string, content []byte, mimeType string) (valid bool, errMsg string)

// TagValidation bounds the plaintext tags a PUT may attach to an object.
type TagValidation struct {
	MaxTags      int
	MaxTagLength int
	Pattern      *regexp.Regexp
}

// DefaultTagValidation is the tag-validation rule set applied when the
// configuration leaves TagValidation unset.
func DefaultTagValidation() TagValidation {
	return TagValidation{
		MaxTags:      10,
		MaxTagLength: 50,
		Pattern:      regexp.MustCompile(`^[A-Za-z0-9_-]+$`),
	}
}

// DefaultQuotaLimits is the per-user quota applied when the configuration
// leaves Quotas unset.
func DefaultQuotaLimits() storage.QuotaLimits {
	return storage.QuotaLimits{
		MaxObjectSize:     10 << 20,
		MaxObjectsPerUser: 1000,
		MaxStoragePerUser: 100 << 20,
		MaxSearchLimit:    100,
		MaxSignedURLTTL:   24 * time.Hour,
	}
}

// Config configures a Server.
type Config struct {
	Backend       storage.Backend
	AnchorAccount account.Account // must HasPrivateKey(); decrypts public objects
	PathPolicies  []pathpolicy.Policy

	Quotas        storage.QuotaLimits // zero value -> DefaultQuotaLimits
	Validators    map[string]Validator
	TagValidation TagValidation // zero value -> DefaultTagValidation

	SignedURLDefaultTTL time.Duration // zero -> 1 hour
	PublicCorsOrigin    CORSOrigin    // zero value -> disabled

	Logger logger.Logger // nil -> logger.NewDefaultLogger()
}

// CORSOrigin is the `publicCorsOrigin` option: disabled, or a concrete
// Access-Control-Allow-Origin value.
type CORSOrigin struct {
	Enabled bool
	Origin  string
}

// DisableCORS is the `false` default.
var DisableCORS = CORSOrigin{}

// AllowOrigin enables CORS on public endpoints for the given origin.
func AllowOrigin(origin string) CORSOrigin {
	return CORSOrigin{Enabled: true, Origin: origin}
}

func (c Config) validate() error {
	if c.Backend == nil {
		return fmt.Errorf("anchorserver: Backend is required")
	}
	if c.AnchorAccount == nil || !c.AnchorAccount.HasPrivateKey() {
		return fmt.Errorf("anchorserver: AnchorAccount must hold a private key")
	}
	if len(c.PathPolicies) == 0 {
		return fmt.Errorf("anchorserver: at least one PathPolicy is required")
	}
	// An entirely zero-value Quotas means "unset" and is filled in by
	// withDefaults (called after validate); a partially-set Quotas must
	// have every field positive.
	if c.Quotas != (storage.QuotaLimits{}) {
		for name, field := range map[string]int64{
			"Quotas.MaxObjectSize":     c.Quotas.MaxObjectSize,
			"Quotas.MaxObjectsPerUser": c.Quotas.MaxObjectsPerUser,
			"Quotas.MaxStoragePerUser": c.Quotas.MaxStoragePerUser,
		} {
			if field <= 0 {
				return fmt.Errorf("anchorserver: %s must be > 0", name)
			}
		}
		if c.Quotas.MaxSearchLimit <= 0 {
			return fmt.Errorf("anchorserver: Quotas.MaxSearchLimit must be > 0")
		}
		if c.Quotas.MaxSignedURLTTL < 0 {
			return fmt.Errorf("anchorserver: Quotas.MaxSignedURLTTL must not be negative")
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Quotas == (storage.QuotaLimits{}) {
		c.Quotas = DefaultQuotaLimits()
	}
	if c.Quotas.MaxSignedURLTTL == 0 {
		c.Quotas.MaxSignedURLTTL = DefaultQuotaLimits().MaxSignedURLTTL
	}
	if c.TagValidation == (TagValidation{}) {
		c.TagValidation = DefaultTagValidation()
	}
	if c.SignedURLDefaultTTL <= 0 {
		c.SignedURLDefaultTTL = time.Hour
	}
	if c.Logger == nil {
		c.Logger = logger.NewDefaultLogger()
	}
	if c.Validators == nil {
		c.Validators = map[string]Validator{}
	}
	return c
}
