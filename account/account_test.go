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
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519AccountSignVerify(t *testing.T) {
	acct, err := NewEd25519Account()
	require.NoError(t, err)
	require.True(t, acct.HasPrivateKey())
	assert.Equal(t, KeyTypeEd25519, acct.Type())

	msg := []byte("hello anchor")
	sig, err := acct.Sign(msg)
	require.NoError(t, err)
	assert.NoError(t, acct.Verify(msg, sig))

	assert.ErrorIs(t, acct.Verify([]byte("tampered"), sig), ErrInvalidSignature)
}

func TestEd25519AccountFromSeedIsDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, ed25519.SeedSize)
	a1, err := NewEd25519AccountFromSeed(seed)
	require.NoError(t, err)
	a2, err := NewEd25519AccountFromSeed(seed)
	require.NoError(t, err)

	assert.Equal(t, a1.PublicKeyString(), a2.PublicKeyString())
	assert.True(t, a1.ComparePublicKey(a2))
}

func TestEd25519AccountFromSeedRejectsWrongLength(t *testing.T) {
	_, err := NewEd25519AccountFromSeed([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestEd25519PublicAccountHasNoPrivateKey(t *testing.T) {
	full, err := NewEd25519Account()
	require.NoError(t, err)

	pubOnly := NewEd25519PublicAccount(full.pub)
	assert.False(t, pubOnly.HasPrivateKey())
	assert.True(t, pubOnly.ComparePublicKey(full))

	_, err = pubOnly.Sign([]byte("x"))
	assert.ErrorIs(t, err, ErrPrivateKeyRequired)

	_, err = pubOnly.Decrypt([]byte("x"))
	assert.ErrorIs(t, err, ErrPrivateKeyRequired)
}

func TestEd25519AccountEncryptDecryptRoundTrip(t *testing.T) {
	acct, err := NewEd25519Account()
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	ciphertext, err := acct.EncryptTo(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := acct.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEd25519AccountDecryptRequiresPrivateKey(t *testing.T) {
	acct, err := NewEd25519Account()
	require.NoError(t, err)
	ciphertext, err := acct.EncryptTo([]byte("secret"))
	require.NoError(t, err)

	pubOnly := NewEd25519PublicAccount(acct.pub)
	_, err = pubOnly.Decrypt(ciphertext)
	assert.ErrorIs(t, err, ErrPrivateKeyRequired)
}

func TestEd25519PublicKeyStringRoundTrip(t *testing.T) {
	acct, err := NewEd25519Account()
	require.NoError(t, err)

	recovered, err := FromPublicKeyString(acct.PublicKeyString())
	require.NoError(t, err)
	assert.Equal(t, KeyTypeEd25519, recovered.Type())
	assert.True(t, acct.ComparePublicKey(recovered))
	assert.False(t, recovered.HasPrivateKey())
}

func TestSecp256k1AccountSignVerify(t *testing.T) {
	acct, err := NewSecp256k1Account()
	require.NoError(t, err)
	assert.Equal(t, KeyTypeSecp256k1, acct.Type())

	msg := []byte("sign me")
	sig, err := acct.Sign(msg)
	require.NoError(t, err)
	assert.NoError(t, acct.Verify(msg, sig))
	assert.ErrorIs(t, acct.Verify([]byte("not me"), sig), ErrInvalidSignature)
}

func TestSecp256k1AccountHasNoEncryption(t *testing.T) {
	acct, err := NewSecp256k1Account()
	require.NoError(t, err)

	_, err = acct.EncryptTo([]byte("x"))
	assert.ErrorIs(t, err, ErrEncryptionNotSupported)

	_, err = acct.Decrypt([]byte("x"))
	assert.ErrorIs(t, err, ErrEncryptionNotSupported)
}

func TestSecp256k1PublicKeyStringRoundTrip(t *testing.T) {
	acct, err := NewSecp256k1Account()
	require.NoError(t, err)

	recovered, err := FromPublicKeyString(acct.PublicKeyString())
	require.NoError(t, err)
	assert.Equal(t, KeyTypeSecp256k1, recovered.Type())
	assert.True(t, acct.ComparePublicKey(recovered))
}

func TestFromPublicKeyStringRejectsGarbage(t *testing.T) {
	_, err := FromPublicKeyString("not-base58-!!!")
	assert.Error(t, err)

	_, err = FromPublicKeyString("")
	assert.Error(t, err)
}

func TestComparePublicKeyAcrossDifferentAccounts(t *testing.T) {
	a, err := NewEd25519Account()
	require.NoError(t, err)
	b, err := NewEd25519Account()
	require.NoError(t, err)
	assert.False(t, a.ComparePublicKey(b))
}
