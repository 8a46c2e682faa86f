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
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/mr-tron/base58"
)

// Ed25519Account signs with Ed25519 and performs asymmetric encryption by
// converting its Ed25519 key to the birationally-equivalent X25519 key and
// running HPKE (Base mode, X25519-HKDF-SHA256 KEM, ChaCha20-Poly1305 AEAD)
// over it.
type Ed25519Account struct {
	priv ed25519.PrivateKey // nil for public-only accounts
	pub  ed25519.PublicKey
}

// NewEd25519Account generates a fresh Ed25519 account with a private key.
func NewEd25519Account() (*Ed25519Account, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Ed25519Account{priv: priv, pub: pub}, nil
}

// NewEd25519AccountFromSeed derives a deterministic account from a 32-byte
// seed, used by tests to build named accounts.
func NewEd25519AccountFromSeed(seed []byte) (*Ed25519Account, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Ed25519Account{priv: priv, pub: pub}, nil
}

// NewEd25519PublicAccount wraps a public key with no signing/decryption
// capability — used to represent a remote principal a container is shared
// with.
func NewEd25519PublicAccount(pub ed25519.PublicKey) *Ed25519Account {
	return &Ed25519Account{pub: pub}
}

func (a *Ed25519Account) PublicKey() []byte { return []byte(a.pub) }

func (a *Ed25519Account) PublicKeyString() string {
	buf := make([]byte, 0, 1+len(a.pub))
	buf = append(buf, byte(KeyTypeEd25519))
	buf = append(buf, a.pub...)
	return base58.Encode(buf)
}

func (a *Ed25519Account) HasPrivateKey() bool { return a.priv != nil }

func (a *Ed25519Account) Type() KeyType { return KeyTypeEd25519 }

func (a *Ed25519Account) Sign(msg []byte) (sig []byte, err error) {
	defer instrument("sign", "ed25519", &err)()
	if a.priv == nil {
		err = ErrPrivateKeyRequired
		return nil, err
	}
	return ed25519.Sign(a.priv, msg), nil
}

func (a *Ed25519Account) Verify(msg, sig []byte) (err error) {
	defer instrument("verify", "ed25519", &err)()
	if !ed25519.Verify(a.pub, msg, sig) {
		err = ErrInvalidSignature
	}
	return err
}

func (a *Ed25519Account) ComparePublicKey(other Account) bool {
	return comparePublicKey(a, other)
}

// EncryptTo seals plaintext to a.pub using HPKE Base mode. Wire format:
// len-prefixed encapsulated key (enc) || sealed ciphertext (includes AEAD tag).
func (a *Ed25519Account) EncryptTo(plaintext []byte) (ct []byte, err error) {
	defer instrument("encrypt", "x25519-hpke", &err)()
	xpub, err := ed25519PubToX25519(a.pub)
	if err != nil {
		return nil, err
	}
	ct, err = hpkeSeal(xpub, plaintext)
	return ct, err
}

// Decrypt reverses EncryptTo; requires the private key.
func (a *Ed25519Account) Decrypt(ciphertext []byte) (pt []byte, err error) {
	defer instrument("decrypt", "x25519-hpke", &err)()
	if a.priv == nil {
		err = ErrPrivateKeyRequired
		return nil, err
	}
	xpriv, err := ed25519PrivToX25519(a.priv)
	if err != nil {
		return nil, err
	}
	pt, err = hpkeOpen(xpriv, ciphertext)
	return pt, err
}

// ed25519PubToX25519 decompresses the Ed25519 point and returns its
// Montgomery-form (X25519) public key bytes.
func ed25519PubToX25519(pub ed25519.PublicKey) ([]byte, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("bad ed25519 public key length: %d", len(pub))
	}
	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("invalid ed25519 public key: %w", err)
	}
	return p.BytesMontgomery(), nil
}

// ed25519PrivToX25519 derives the X25519 scalar from an Ed25519 private
// key's seed, per RFC 8032 §5.1.5.
func ed25519PrivToX25519(priv ed25519.PrivateKey) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("bad ed25519 private key length: %d", len(priv))
	}
	seed := priv.Seed()
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	out := make([]byte, 32)
	copy(out, h[:32])
	return out, nil
}
