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

package account

import (
	"crypto/ed25519"
	"encoding/pem"
	"fmt"
	"os"
)

const ed25519SeedPEMType = "ANCHOR ED25519 SEED"

// LoadEd25519AccountFromPEMFile reads a PEM-encoded 32-byte Ed25519 seed
// (the server's `anchorKeyFile`, or a client's key file) and builds an
// account holding its private key.
func LoadEd25519AccountFromPEMFile(path string) (*Ed25519Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("account: read key file: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != ed25519SeedPEMType {
		return nil, fmt.Errorf("account: %s does not contain a %q PEM block", path, ed25519SeedPEMType)
	}
	if len(block.Bytes) != ed25519.SeedSize {
		return nil, fmt.Errorf("account: seed must be %d bytes, got %d", ed25519.SeedSize, len(block.Bytes))
	}
	return NewEd25519AccountFromSeed(block.Bytes)
}

// SaveEd25519AccountToPEMFile writes acct's seed as a PEM block, for
// `anchor-server`'s key-generation bootstrap path.
func SaveEd25519AccountToPEMFile(acct *Ed25519Account, path string) error {
	if acct.priv == nil {
		return ErrPrivateKeyRequired
	}
	block := &pem.Block{Type: ed25519SeedPEMType, Bytes: acct.priv.Seed()}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0600)
}
