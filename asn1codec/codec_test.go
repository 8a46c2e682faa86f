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

package asn1codec

import (
	"encoding/asn1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/anchor/anchorerrors"
)

func TestEncodeDecodePlaintextRoundTrip(t *testing.T) {
	c := &Container{
		Version:   CurrentVersion,
		Encrypted: false,
		Plaintext: PlaintextBody{Data: []byte("hello")},
	}

	out, err := Encode(c)
	require.NoError(t, err)

	decoded, err := Decode(out)
	require.NoError(t, err)
	assert.False(t, decoded.Encrypted)
	assert.Equal(t, []byte("hello"), decoded.Plaintext.Data)
	assert.False(t, decoded.HasSig)
}

func TestEncodeDecodeEncryptedRoundTrip(t *testing.T) {
	c := &Container{
		Version:   CurrentVersion,
		Encrypted: true,
		EncBody: EncryptedBody{
			Keys: []PrincipalKey{
				{
					PublicKey:             asn1.BitString{Bytes: []byte{1, 2, 3}, BitLength: 24},
					EncryptedSymmetricKey: asn1.BitString{Bytes: []byte{4, 5, 6}, BitLength: 24},
				},
			},
			IV: []byte("0123456789012345"),
			CT: []byte("ciphertext-bytes"),
		},
	}

	out, err := Encode(c)
	require.NoError(t, err)

	decoded, err := Decode(out)
	require.NoError(t, err)
	assert.True(t, decoded.Encrypted)
	require.Len(t, decoded.EncBody.Keys, 1)
	assert.Equal(t, []byte("ciphertext-bytes"), decoded.EncBody.CT)
}

func TestEncodeDecodeWithSignature(t *testing.T) {
	c := &Container{
		Version:   CurrentVersion,
		Encrypted: false,
		Plaintext: PlaintextBody{Data: []byte("signed")},
		HasSig:    true,
		Signature: SignatureBlock{
			SignerPublicKey: asn1.BitString{Bytes: []byte{9, 9}, BitLength: 16},
			Algorithm:       OIDEd25519,
			Signature:       []byte("sig-bytes"),
		},
	}

	out, err := Encode(c)
	require.NoError(t, err)

	decoded, err := Decode(out)
	require.NoError(t, err)
	require.True(t, decoded.HasSig)
	assert.Equal(t, []byte("sig-bytes"), decoded.Signature.Signature)
	assert.True(t, decoded.Signature.Algorithm.Equal(OIDEd25519))
}

func TestEncodeIsDeterministic(t *testing.T) {
	c := &Container{Version: CurrentVersion, Plaintext: PlaintextBody{Data: []byte("det")}}

	a, err := Encode(c)
	require.NoError(t, err)
	b, err := Encode(c)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	c := &Container{Version: CurrentVersion, Plaintext: PlaintextBody{Data: []byte("x")}}
	out, err := Encode(c)
	require.NoError(t, err)

	_, err = Decode(append(out, 0xFF, 0xFF))
	assert.Error(t, err)
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	c := &Container{Version: 99, Plaintext: PlaintextBody{Data: []byte("x")}}
	out, err := Encode(c)
	require.NoError(t, err)

	_, err = Decode(out)
	assert.ErrorIs(t, err, anchorerrors.ErrUnsupportedVersion)
}

func TestDecodeRejectsGarbageBytes(t *testing.T) {
	_, err := Decode([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	assert.Error(t, err)
}

func TestDecodeInteropFixtureMatchesPinnedHex(t *testing.T) {
	raw, err := hex.DecodeString("3015020101a110300e040c789c0b492d2e010003dd01a1")
	require.NoError(t, err)

	c, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, c.Version)
	assert.False(t, c.Encrypted)
}
