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
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
)

// Secp256k1Account signs with ECDSA over secp256k1. It declares no
// encryption capability: container encryption is X25519/HPKE only, so a
// Secp256k1Account can only ever be added to a container as a signer, not
// a principal — a container build that tries to grant it access fails
// NoEncryption.
type Secp256k1Account struct {
	priv *secp256k1.PrivateKey // nil for public-only accounts
	pub  *secp256k1.PublicKey
}

// NewSecp256k1Account generates a fresh secp256k1 account.
func NewSecp256k1Account() (*Secp256k1Account, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Secp256k1Account{priv: priv, pub: priv.PubKey()}, nil
}

func parseSecp256k1PublicKey(raw []byte) (*secp256k1.PublicKey, error) {
	return secp256k1.ParsePubKey(raw)
}

func (a *Secp256k1Account) PublicKey() []byte { return a.pub.SerializeCompressed() }

func (a *Secp256k1Account) PublicKeyString() string {
	buf := make([]byte, 0, 1+33)
	buf = append(buf, byte(KeyTypeSecp256k1))
	buf = append(buf, a.pub.SerializeCompressed()...)
	return base58.Encode(buf)
}

func (a *Secp256k1Account) HasPrivateKey() bool { return a.priv != nil }

func (a *Secp256k1Account) Type() KeyType { return KeyTypeSecp256k1 }

func (a *Secp256k1Account) Sign(msg []byte) (sig []byte, err error) {
	defer instrument("sign", "secp256k1", &err)()
	if a.priv == nil {
		err = ErrPrivateKeyRequired
		return nil, err
	}
	hash := sha256.Sum256(msg)
	r, s, err := ecdsa.Sign(rand.Reader, a.priv.ToECDSA(), hash[:])
	if err != nil {
		return nil, err
	}
	return serializeSignature(r, s), nil
}

func (a *Secp256k1Account) Verify(msg, sig []byte) (err error) {
	defer instrument("verify", "secp256k1", &err)()
	hash := sha256.Sum256(msg)
	r, s, err := deserializeSignature(sig)
	if err != nil {
		err = ErrInvalidSignature
		return err
	}
	if !ecdsa.Verify(a.pub.ToECDSA(), hash[:], r, s) {
		err = ErrInvalidSignature
	}
	return err
}

func (a *Secp256k1Account) ComparePublicKey(other Account) bool {
	return comparePublicKey(a, other)
}

func (a *Secp256k1Account) EncryptTo(plaintext []byte) ([]byte, error) {
	return nil, ErrEncryptionNotSupported
}

func (a *Secp256k1Account) Decrypt(ciphertext []byte) ([]byte, error) {
	return nil, ErrEncryptionNotSupported
}

func serializeSignature(r, s *big.Int) []byte {
	out := make([]byte, 64)
	r.FillBytes(out[:32])
	s.FillBytes(out[32:])
	return out
}

func deserializeSignature(sig []byte) (*big.Int, *big.Int, error) {
	if len(sig) != 64 {
		return nil, nil, fmt.Errorf("invalid secp256k1 signature length: %d", len(sig))
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	return r, s, nil
}
