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

package container

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
)

func newTestAccount(t *testing.T) *account.Ed25519Account {
	t.Helper()
	acct, err := account.NewEd25519Account()
	require.NoError(t, err)
	return acct
}

func TestUnencryptedContainerRoundTrip(t *testing.T) {
	ct, err := FromPlaintext([]byte("plain body"), nil, Options{})
	require.NoError(t, err)
	assert.False(t, ct.IsEncrypted())

	encoded, err := ct.GetEncodedBuffer()
	require.NoError(t, err)

	decoded, err := FromEncodedBuffer(encoded, nil)
	require.NoError(t, err)
	plaintext, err := decoded.GetPlaintext()
	require.NoError(t, err)
	assert.Equal(t, []byte("plain body"), plaintext)
	assert.False(t, decoded.IsEncrypted())
}

func TestEncryptedContainerRoundTripSinglePrincipal(t *testing.T) {
	alice := newTestAccount(t)

	ct, err := FromPlaintext([]byte("secret body"), []account.Account{alice}, Options{})
	require.NoError(t, err)
	assert.True(t, ct.IsEncrypted())

	encoded, err := ct.GetEncodedBuffer()
	require.NoError(t, err)

	decoded, err := FromEncodedBuffer(encoded, []account.Account{alice})
	require.NoError(t, err)
	plaintext, err := decoded.GetPlaintext()
	require.NoError(t, err)
	assert.Equal(t, []byte("secret body"), plaintext)
}

func TestEncryptedContainerMultiPrincipal(t *testing.T) {
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	ct, err := FromPlaintext([]byte("shared body"), []account.Account{alice, bob}, Options{})
	require.NoError(t, err)

	encoded, err := ct.GetEncodedBuffer()
	require.NoError(t, err)

	forBob, err := FromEncodedBuffer(encoded, []account.Account{bob})
	require.NoError(t, err)
	plaintext, err := forBob.GetPlaintext()
	require.NoError(t, err)
	assert.Equal(t, []byte("shared body"), plaintext)
}

func TestEncryptedContainerWrongCandidateFails(t *testing.T) {
	alice := newTestAccount(t)
	mallory := newTestAccount(t)

	ct, err := FromPlaintext([]byte("secret body"), []account.Account{alice}, Options{})
	require.NoError(t, err)
	encoded, err := ct.GetEncodedBuffer()
	require.NoError(t, err)

	_, err = FromEncodedBuffer(encoded, []account.Account{mallory})
	assert.ErrorIs(t, err, anchorerrors.ErrNoMatchingKey)
}

func TestContainerCipherAES256CBCRoundTrip(t *testing.T) {
	alice := newTestAccount(t)

	ct, err := FromPlaintext([]byte("cbc body"), []account.Account{alice}, Options{Cipher: CipherAES256CBC})
	require.NoError(t, err)
	encoded, err := ct.GetEncodedBuffer()
	require.NoError(t, err)

	decoded, err := FromEncodedBuffer(encoded, []account.Account{alice})
	require.NoError(t, err)
	plaintext, err := decoded.GetPlaintext()
	require.NoError(t, err)
	assert.Equal(t, []byte("cbc body"), plaintext)
}

func TestContainerGrantAndRevokeAccess(t *testing.T) {
	alice := newTestAccount(t)
	bob := newTestAccount(t)

	ct, err := FromPlaintext([]byte("body"), []account.Account{alice}, Options{})
	require.NoError(t, err)

	require.NoError(t, ct.GrantAccessSync(bob))
	encoded, err := ct.GetEncodedBuffer()
	require.NoError(t, err)
	decodedForBob, err := FromEncodedBuffer(encoded, []account.Account{bob})
	require.NoError(t, err)
	plaintext, err := decodedForBob.GetPlaintext()
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), plaintext)

	require.NoError(t, ct.RevokeAccessSync(bob))
	encoded, err = ct.GetEncodedBuffer()
	require.NoError(t, err)
	_, err = FromEncodedBuffer(encoded, []account.Account{bob})
	assert.ErrorIs(t, err, anchorerrors.ErrNoMatchingKey)
}

func TestContainerCannotRevokeLastPrincipal(t *testing.T) {
	alice := newTestAccount(t)
	ct, err := FromPlaintext([]byte("body"), []account.Account{alice}, Options{})
	require.NoError(t, err)

	err = ct.RevokeAccessSync(alice)
	assert.ErrorIs(t, err, anchorerrors.ErrCannotRevokeLast)
}

func TestContainerGrantAccessRejectsNonEncryptingAccount(t *testing.T) {
	alice := newTestAccount(t)
	signOnly, err := account.NewSecp256k1Account()
	require.NoError(t, err)

	ct, err := FromPlaintext([]byte("body"), []account.Account{alice}, Options{})
	require.NoError(t, err)

	err = ct.GrantAccessSync(signOnly)
	assert.ErrorIs(t, err, anchorerrors.ErrNoEncryption)
}

func TestContainerGrantAccessOnUnencryptedFails(t *testing.T) {
	bob := newTestAccount(t)

	ct, err := FromPlaintext([]byte("body"), nil, Options{})
	require.NoError(t, err)

	err = ct.GrantAccessSync(bob)
	assert.ErrorIs(t, err, anchorerrors.ErrNotEncrypted)
}

func TestContainerFromPlaintextRejectsNonEncryptingPrincipal(t *testing.T) {
	signOnly, err := account.NewSecp256k1Account()
	require.NoError(t, err)

	_, err = FromPlaintext([]byte("body"), []account.Account{signOnly}, Options{})
	assert.ErrorIs(t, err, anchorerrors.ErrNoEncryption)
}

func TestContainerSignatureVerifiesAndDetectsTamper(t *testing.T) {
	alice := newTestAccount(t)
	signer := newTestAccount(t)

	ct, err := FromPlaintext([]byte("signed body"), []account.Account{alice}, Options{Signer: signer})
	require.NoError(t, err)

	encoded, err := ct.GetEncodedBuffer()
	require.NoError(t, err)

	ok, err := ct.VerifySignature()
	require.NoError(t, err)
	assert.True(t, ok)

	decoded, err := FromEncodedBuffer(encoded, []account.Account{alice})
	require.NoError(t, err)

	ok, err = decoded.VerifySignature()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, decoded.GetSigningAccount().ComparePublicKey(signer))

	decoded.SetPlaintext([]byte("tampered body"))
	ok, err = decoded.VerifySignature()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContainerEncodedBufferIsCachedUntilPlaintextChanges(t *testing.T) {
	alice := newTestAccount(t)
	ct, err := FromPlaintext([]byte("body one"), []account.Account{alice}, Options{})
	require.NoError(t, err)

	first, err := ct.GetEncodedBuffer()
	require.NoError(t, err)
	second, err := ct.GetEncodedBuffer()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	ct.SetPlaintext([]byte("body two"))
	third, err := ct.GetEncodedBuffer()
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestContainerDisablePlaintextClearsState(t *testing.T) {
	alice := newTestAccount(t)
	ct, err := FromPlaintext([]byte("body"), []account.Account{alice}, Options{})
	require.NoError(t, err)

	ct.DisablePlaintext()
	_, err = ct.GetPlaintext()
	assert.ErrorIs(t, err, anchorerrors.ErrPlaintextDisabled)
}

// TestUnencryptedContainerInteropFixture pins the wire format against a
// fixed hex buffer: a minimal unencrypted v1 container of the UTF-8 bytes
// "Test", no signature. Any encoder change that breaks byte-level interop
// with other implementations fails here.
func TestUnencryptedContainerInteropFixture(t *testing.T) {
	raw, err := hex.DecodeString("3015020101a110300e040c789c0b492d2e010003dd01a1")
	require.NoError(t, err)

	ct, err := FromEncodedBuffer(raw, nil)
	require.NoError(t, err)
	assert.False(t, ct.IsEncrypted())

	plaintext, err := ct.GetPlaintext()
	require.NoError(t, err)
	assert.Equal(t, []byte("Test"), plaintext)

	rebuilt, err := FromPlaintext([]byte("Test"), nil, Options{})
	require.NoError(t, err)
	encoded, err := rebuilt.GetEncodedBuffer()
	require.NoError(t, err)
	assert.Equal(t, raw, encoded)
}
