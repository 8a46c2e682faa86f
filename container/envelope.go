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
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/asn1"
	"io"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/asn1codec"
)

// GetEncodedBuffer produces the DER-encoded wire form of the container,
// compressing and (re-)encrypting the body as needed. The result is cached
// until plaintext, principals, or the signer change.
func (c *Container) GetEncodedBuffer() ([]byte, error) {
	if c.cacheValid && c.cachedEncoded != nil {
		return append([]byte(nil), c.cachedEncoded...), nil
	}
	if !c.plaintextSet {
		return nil, anchorerrors.ErrPlaintextDisabled
	}

	raw := &asn1codec.Container{Version: asn1codec.CurrentVersion}

	if len(c.principals) == 0 {
		deflated, err := deflate(c.plaintext)
		if err != nil {
			return nil, anchorerrors.ErrMalformedContainer.Wrap(err)
		}
		raw.Encrypted = false
		raw.Plaintext = asn1codec.PlaintextBody{Data: deflated}
	} else {
		if err := c.ensureSymmetricKey(); err != nil {
			return nil, err
		}
		body, err := encryptBody(c.plaintext, c.symKey, c.cipher)
		if err != nil {
			return nil, err
		}
		for _, p := range c.principals {
			wrapped, err := p.EncryptTo(c.symKey)
			if err != nil {
				return nil, anchorerrors.ErrNoEncryption.Wrap(err)
			}
			body.Keys = append(body.Keys, asn1codec.PrincipalKey{
				PublicKey:             asn1.BitString{Bytes: p.PublicKey(), BitLength: len(p.PublicKey()) * 8},
				EncryptedSymmetricKey: asn1.BitString{Bytes: wrapped, BitLength: len(wrapped) * 8},
			})
		}
		raw.Encrypted = true
		raw.EncBody = *body
	}

	if c.signer != nil {
		bodyBytes, err := bodyDERBytes(raw)
		if err != nil {
			return nil, err
		}
		sig, err := c.signer.Sign(bodyBytes)
		if err != nil {
			return nil, err
		}
		raw.HasSig = true
		raw.Signature = asn1codec.SignatureBlock{
			SignerPublicKey: asn1.BitString{Bytes: c.signer.PublicKey(), BitLength: len(c.signer.PublicKey()) * 8},
			Algorithm:       signatureAlgorithmOID(c.signer),
			Signature:       sig,
		}
		c.signature = sig
	}

	encoded, err := asn1codec.Encode(raw)
	if err != nil {
		return nil, err
	}
	c.cachedEncoded = encoded
	c.cacheValid = true
	return append([]byte(nil), encoded...), nil
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func encryptBody(plaintext, key []byte, c Cipher) (*asn1codec.EncryptedBody, error) {
	deflated, err := deflate(plaintext)
	if err != nil {
		return nil, anchorerrors.ErrMalformedContainer.Wrap(err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	switch c {
	case CipherAES256CBC:
		iv := make([]byte, aes.BlockSize)
		if _, err := io.ReadFull(rand.Reader, iv); err != nil {
			return nil, err
		}
		padded := pkcs7Pad(deflated, aes.BlockSize)
		ct := make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
		return &asn1codec.EncryptedBody{IV: iv, CT: ct}, nil
	case CipherAES256GCM, "":
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		nonce := make([]byte, gcm.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return nil, err
		}
		ct := gcm.Seal(nil, nonce, deflated, nil)
		return &asn1codec.EncryptedBody{IV: nonce, CT: ct}, nil
	default:
		return nil, anchorerrors.ErrValidationFailed.WithMessage("unsupported cipher")
	}
}

func decryptBody(body asn1codec.EncryptedBody, key []byte, c Cipher) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	var deflated []byte
	switch c {
	case CipherAES256CBC:
		if len(body.CT)%aes.BlockSize != 0 || len(body.CT) == 0 {
			return nil, anchorerrors.ErrDecryptionFailed.WithMessage("invalid ciphertext length")
		}
		pt := make([]byte, len(body.CT))
		cipher.NewCBCDecrypter(block, body.IV).CryptBlocks(pt, body.CT)
		unpadded, err := pkcs7Unpad(pt, aes.BlockSize)
		if err != nil {
			return nil, anchorerrors.ErrDecryptionFailed.Wrap(err)
		}
		deflated = unpadded
	case CipherAES256GCM:
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		pt, err := gcm.Open(nil, body.IV, body.CT, nil)
		if err != nil {
			return nil, anchorerrors.ErrDecryptionFailed.Wrap(err)
		}
		deflated = pt
	default:
		return nil, anchorerrors.ErrValidationFailed.WithMessage("unsupported cipher")
	}

	plaintext, err := inflate(deflated)
	if err != nil {
		return nil, anchorerrors.ErrDecryptionFailed.Wrap(err)
	}
	return plaintext, nil
}

// cipherFromBody infers CBC vs GCM from the IV/nonce length: GCM nonces
// are conventionally 12 bytes, CBC IVs are always the 16-byte block size.
func cipherFromBody(body asn1codec.EncryptedBody) Cipher {
	if len(body.IV) == 12 {
		return CipherAES256GCM
	}
	return CipherAES256CBC
}

func bodyDERBytes(raw *asn1codec.Container) ([]byte, error) {
	unsigned := *raw
	unsigned.HasSig = false
	unsigned.Signature = asn1codec.SignatureBlock{}
	return asn1codec.Encode(&unsigned)
}

func signatureAlgorithmOID(signer account.Account) asn1.ObjectIdentifier {
	if signer.Type() == account.KeyTypeSecp256k1 {
		return asn1codec.OIDECDSASHA256
	}
	return asn1codec.OIDEd25519
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(data, padding...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, anchorerrors.ErrMalformedContainer.WithMessage("bad padded length")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, anchorerrors.ErrMalformedContainer.WithMessage("bad pkcs7 padding")
	}
	return data[:len(data)-padLen], nil
}
