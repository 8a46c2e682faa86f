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

// Package account implements the Account capability the anchor protocol
// is built around: a keypair that can sign, verify, and perform
// asymmetric encryption to itself. Two key types are provided: Ed25519
// (signing + HPKE encryption) and Secp256k1 (signing only).
package account

import (
	"time"

	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/internal/metrics"
)

// KeyType identifies the underlying curve of an Account.
type KeyType byte

const (
	KeyTypeEd25519   KeyType = 1
	KeyTypeSecp256k1 KeyType = 2
)

// Account is the capability set the protocol requires of a principal.
type Account interface {
	// PublicKey returns the raw public key bytes.
	PublicKey() []byte

	// PublicKeyString returns the canonical textual form of PublicKey.
	PublicKeyString() string

	// HasPrivateKey reports whether this Account can sign/decrypt.
	HasPrivateKey() bool

	// Sign signs msg with the private key.
	Sign(msg []byte) ([]byte, error)

	// Verify checks sig against msg using the public key.
	Verify(msg, sig []byte) error

	// EncryptTo asymmetrically encrypts plaintext to this account's
	// public key; any holder of the private key can Decrypt it.
	EncryptTo(plaintext []byte) ([]byte, error)

	// Decrypt reverses EncryptTo; requires the private key.
	Decrypt(ciphertext []byte) ([]byte, error)

	// ComparePublicKey reports whether other has the same public key.
	ComparePublicKey(other Account) bool

	// Type reports the underlying key type.
	Type() KeyType
}

var (
	ErrPrivateKeyRequired     = anchorerrors.ErrPrivateKeyRequired
	ErrInvalidSignature       = anchorerrors.ErrSignatureInvalid
	ErrEncryptionNotSupported = anchorerrors.ErrOperationNotSupported.WithMessage("key type does not support asymmetric encryption")
)

// instrument records a crypto operation's outcome and duration against
// the anchor_crypto_* metrics and the in-process collector.
func instrument(op, algo string, err *error) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		metrics.CryptoOperationDuration.WithLabelValues(op, algo).Observe(elapsed.Seconds())
		metrics.CryptoOperations.WithLabelValues(op, algo).Inc()
		if *err != nil {
			metrics.CryptoErrors.WithLabelValues(op).Inc()
		}
		metrics.GetGlobalCollector().RecordCryptoOperation(elapsed)
	}
}

func comparePublicKey(a, b Account) bool {
	pa, pb := a.PublicKey(), b.PublicKey()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}
