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

// Package container implements the Encrypted Container: a
// self-describing, multi-principal envelope-encrypted binary blob with an
// optional signature block. Per-principal key wrapping goes through
// account.Account.EncryptTo/Decrypt.
package container

import (
	"bytes"
	"crypto/rand"
	"encoding/asn1"
	"io"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/asn1codec"
)

// Cipher selects the symmetric cipher used for the container body.
type Cipher string

const (
	CipherAES256CBC Cipher = "aes-256-cbc"
	CipherAES256GCM Cipher = "aes-256-gcm"
)

const symmetricKeySize = 32

// Options configures Container construction.
type Options struct {
	Signer account.Account
	Locked bool
	Cipher Cipher // defaults to CipherAES256GCM
}

// Container is the mutable builder/holder for one Encrypted Container.
// It is not safe for concurrent use by multiple goroutines.
type Container struct {
	plaintext    []byte
	plaintextSet bool

	principals  []account.Account // ordered, first match wins on decrypt
	symKey      []byte            // cached 32-byte symmetric key, nil when disabled/unbuilt
	cipher      Cipher
	locked      bool

	signer    account.Account
	signature []byte

	cachedEncoded []byte // valid iff cacheValid
	cacheValid    bool
}

// FromPlaintext builds a new container from plaintext and an optional set
// of principals. A nil/empty principals set with Locked=false yields an
// unencrypted container.
func FromPlaintext(plaintext []byte, principals []account.Account, opts Options) (*Container, error) {
	c := &Container{
		plaintext:    append([]byte(nil), plaintext...),
		plaintextSet: true,
		cipher:       opts.Cipher,
		locked:       opts.Locked,
		signer:       opts.Signer,
	}
	if c.cipher == "" {
		c.cipher = CipherAES256GCM
	}
	for _, p := range principals {
		if err := c.addPrincipal(p); err != nil {
			return nil, err
		}
	}
	if len(principals) > 0 || opts.Locked {
		if err := c.ensureSymmetricKey(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FromEncodedBuffer parses bytes (plaintext or encrypted) and, if
// encrypted, selects the first candidate account able to decrypt one of
// the PrincipalKey entries.
func FromEncodedBuffer(data []byte, candidates []account.Account) (*Container, error) {
	raw, err := asn1codec.Decode(data)
	if err != nil {
		return nil, err
	}
	c := &Container{cipher: CipherAES256GCM}
	if raw.HasSig {
		c.signature = raw.Signature.Signature
		for _, cand := range candidates {
			if bytes.Equal(cand.PublicKey(), raw.Signature.SignerPublicKey.Bytes) {
				c.signer = cand
				break
			}
		}
		if c.signer == nil {
			c.signer = account.NewEd25519PublicAccount(ed25519PublicKeyFromBits(raw.Signature.SignerPublicKey))
		}
	}

	if !raw.Encrypted {
		inflated, err := inflate(raw.Plaintext.Data)
		if err != nil {
			return nil, anchorerrors.ErrMalformedContainer.Wrap(err)
		}
		c.plaintext = inflated
		c.plaintextSet = true
		return c, nil
	}

	c.locked = true

	var (
		symKey  []byte
		lastErr error = anchorerrors.ErrNoMatchingKey
	)
	for _, pk := range raw.EncBody.Keys {
		for _, cand := range candidates {
			if !cand.HasPrivateKey() {
				continue
			}
			if !bytes.Equal(cand.PublicKey(), pk.PublicKey.Bytes) {
				continue
			}
			key, err := cand.Decrypt(pk.EncryptedSymmetricKey.Bytes)
			if err != nil {
				lastErr = anchorerrors.ErrDecryptionFailed.Wrap(err)
				continue
			}
			symKey = key
		}
		if symKey != nil {
			break
		}
	}
	if symKey == nil {
		return nil, lastErr
	}
	if len(symKey) != symmetricKeySize {
		return nil, anchorerrors.ErrDecryptionFailed.WithMessage("unexpected symmetric key length")
	}
	c.symKey = symKey
	c.cipher = cipherFromBody(raw.EncBody)

	plaintext, err := decryptBody(raw.EncBody, symKey, c.cipher)
	if err != nil {
		return nil, err
	}
	c.plaintext = plaintext
	c.plaintextSet = true

	// Reconstruct the principal list as public-only accounts so
	// GrantAccessSync/RevokeAccessSync and re-encoding keep working
	// without requiring every original principal to be a candidate.
	for _, pk := range raw.EncBody.Keys {
		c.principals = append(c.principals, publicAccountFromBits(pk.PublicKey))
	}
	c.cachedEncoded = append([]byte(nil), data...)
	c.cacheValid = true
	return c, nil
}

// FromEncryptedBuffer is FromEncodedBuffer but requires the parsed
// container to actually be encrypted.
func FromEncryptedBuffer(data []byte, candidates []account.Account) (*Container, error) {
	raw, err := asn1codec.Decode(data)
	if err != nil {
		return nil, err
	}
	if !raw.Encrypted {
		return nil, anchorerrors.ErrSchemaMismatch.WithMessage("container is not encrypted")
	}
	return FromEncodedBuffer(data, candidates)
}

// IsEncrypted reports whether this container currently holds an encrypted
// body (i.e. has principals or was built locked).
func (c *Container) IsEncrypted() bool {
	return len(c.principals) > 0 || c.locked
}

// GetPlaintext returns a fresh copy of the decompressed plaintext.
func (c *Container) GetPlaintext() ([]byte, error) {
	if !c.plaintextSet {
		return nil, anchorerrors.ErrPlaintextDisabled
	}
	out := make([]byte, len(c.plaintext))
	copy(out, c.plaintext)
	return out, nil
}

// SetPlaintext replaces the plaintext, invalidating any cached ciphertext.
func (c *Container) SetPlaintext(data []byte) {
	c.plaintext = append([]byte(nil), data...)
	c.plaintextSet = true
	c.cacheValid = false
}

// DisablePlaintext zeroes the in-memory symmetric key and plaintext.
func (c *Container) DisablePlaintext() {
	for i := range c.plaintext {
		c.plaintext[i] = 0
	}
	c.plaintext = nil
	c.plaintextSet = false
	for i := range c.symKey {
		c.symKey[i] = 0
	}
	c.symKey = nil
	c.cacheValid = false
}

// GrantAccessSync adds acct as a principal able to decrypt this container.
// Granting on an unencrypted container fails NotEncrypted; an account with
// no encryption capability fails NoEncryption.
func (c *Container) GrantAccessSync(acct account.Account) error {
	if !c.IsEncrypted() {
		return anchorerrors.ErrNotEncrypted
	}
	return c.addPrincipal(acct)
}

func (c *Container) addPrincipal(acct account.Account) error {
	if _, err := acct.EncryptTo([]byte("capability-probe")); err != nil {
		return anchorerrors.ErrNoEncryption.Wrap(err)
	}
	for _, p := range c.principals {
		if p.ComparePublicKey(acct) {
			return nil // already a principal
		}
	}
	c.principals = append(c.principals, acct)
	c.cacheValid = false
	return c.ensureSymmetricKey()
}

// RevokeAccessSync removes acct as a principal. Revoking the last
// principal on an encrypted container fails CannotRevokeLast.
func (c *Container) RevokeAccessSync(acct account.Account) error {
	if len(c.principals) == 0 {
		return anchorerrors.ErrNotEncrypted
	}
	if len(c.principals) == 1 && c.principals[0].ComparePublicKey(acct) {
		return anchorerrors.ErrCannotRevokeLast
	}
	idx := -1
	for i, p := range c.principals {
		if p.ComparePublicKey(acct) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	c.principals = append(c.principals[:idx], c.principals[idx+1:]...)
	c.cacheValid = false
	return nil
}

// GetSigningAccount returns the account that signed this container, if any.
func (c *Container) GetSigningAccount() account.Account {
	return c.signer
}

// VerifySignature checks the trailing SignatureBlock against the current
// body bytes.
func (c *Container) VerifySignature() (bool, error) {
	if c.signer == nil || c.signature == nil {
		return false, nil
	}
	encoded := c.cachedEncoded
	if !c.cacheValid || encoded == nil {
		// Re-encode without signing, so the stored signature is checked
		// against the current body instead of being replaced by a new one.
		signer := c.signer
		c.signer = nil
		var err error
		encoded, err = c.GetEncodedBuffer()
		c.signer = signer
		c.cacheValid = false
		if err != nil {
			return false, err
		}
	}
	raw, err := asn1codec.Decode(encoded)
	if err != nil {
		return false, err
	}
	bodyBytes, err := bodyDERBytes(raw)
	if err != nil {
		return false, err
	}
	return c.signer.Verify(bodyBytes, c.signature) == nil, nil
}

func (c *Container) ensureSymmetricKey() error {
	if c.symKey != nil {
		return nil
	}
	key := make([]byte, symmetricKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return err
	}
	c.symKey = key
	return nil
}

func ed25519PublicKeyFromBits(bs asn1.BitString) []byte { return bs.Bytes }

func publicAccountFromBits(bs asn1.BitString) account.Account {
	return account.NewEd25519PublicAccount(bs.Bytes)
}
