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
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/cloudflare/circl/hpke"
)

// hpkeSuite fixes the KEM/KDF/AEAD combination every container key wrap
// uses; changing it breaks decryption of existing containers.
func hpkeSuite() hpke.Suite {
	return hpke.NewSuite(hpke.KEM_X25519_HKDF_SHA256, hpke.KDF_HKDF_SHA256, hpke.AEAD_ChaCha20Poly1305)
}

var hpkeInfo = []byte("anchor-container-principal-key/v1")

// hpkeSeal runs one-shot HPKE Base-mode seal to recipientX25519Pub,
// returning len-prefixed-enc || ciphertext.
func hpkeSeal(recipientX25519Pub, plaintext []byte) ([]byte, error) {
	kem := hpke.KEM_X25519_HKDF_SHA256.Scheme()
	rpub, err := kem.UnmarshalBinaryPublicKey(recipientX25519Pub)
	if err != nil {
		return nil, fmt.Errorf("hpke: unmarshal recipient public key: %w", err)
	}

	sender, err := hpkeSuite().NewSender(rpub, hpkeInfo)
	if err != nil {
		return nil, fmt.Errorf("hpke: new sender: %w", err)
	}
	enc, sealer, err := sender.Setup(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("hpke: sender setup: %w", err)
	}
	ct, err := sealer.Seal(plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("hpke: seal: %w", err)
	}

	out := make([]byte, 4+len(enc)+len(ct))
	binary.BigEndian.PutUint32(out[:4], uint32(len(enc)))
	copy(out[4:], enc)
	copy(out[4+len(enc):], ct)
	return out, nil
}

// hpkeOpen reverses hpkeSeal using the recipient's X25519 private scalar.
func hpkeOpen(recipientX25519Priv, data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("hpke: ciphertext too short")
	}
	encLen := binary.BigEndian.Uint32(data[:4])
	rest := data[4:]
	if uint32(len(rest)) < encLen {
		return nil, fmt.Errorf("hpke: truncated encapsulated key")
	}
	enc, ct := rest[:encLen], rest[encLen:]

	kem := hpke.KEM_X25519_HKDF_SHA256.Scheme()
	skR, err := kem.UnmarshalBinaryPrivateKey(recipientX25519Priv)
	if err != nil {
		return nil, fmt.Errorf("hpke: unmarshal recipient private key: %w", err)
	}

	receiver, err := hpkeSuite().NewReceiver(skR, hpkeInfo)
	if err != nil {
		return nil, fmt.Errorf("hpke: new receiver: %w", err)
	}
	opener, err := receiver.Setup(enc)
	if err != nil {
		return nil, fmt.Errorf("hpke: receiver setup: %w", err)
	}
	pt, err := opener.Open(ct, nil)
	if err != nil {
		return nil, fmt.Errorf("hpke: open: %w", err)
	}
	return pt, nil
}
