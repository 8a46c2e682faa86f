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
	"fmt"

	"github.com/mr-tron/base58"
)

// NewSecp256k1PublicAccount wraps a compressed secp256k1 public key with no
// signing/decryption capability, the secp256k1 counterpart to
// NewEd25519PublicAccount — used to represent a remote principal the server
// only ever needs to verify against.
func NewSecp256k1PublicAccount(pub []byte) (*Secp256k1Account, error) {
	key, err := parseSecp256k1PublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &Secp256k1Account{pub: key}, nil
}

// FromPublicKeyString decodes the canonical publicKeyString produced by
// PublicKeyString() back into a public-only Account: base58(keyTypeByte ||
// rawPublicKeyBytes). The anchor server uses this to reconstruct the
// Account it verifies a request's signature against, given only the
// `account` query parameter or JSON field a client supplies — no registry
// lookup is needed because the public key is self-describing.
func FromPublicKeyString(s string) (Account, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("account: invalid publicKeyString: %w", err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("account: publicKeyString too short")
	}
	switch KeyType(raw[0]) {
	case KeyTypeEd25519:
		return NewEd25519PublicAccount(raw[1:]), nil
	case KeyTypeSecp256k1:
		return NewSecp256k1PublicAccount(raw[1:])
	default:
		return nil, fmt.Errorf("account: unknown key type byte %d", raw[0])
	}
}
