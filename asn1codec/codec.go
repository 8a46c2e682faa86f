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

// Package asn1codec adapts the DER shapes used by the Encrypted Container
// to Go's stdlib encoding/asn1. It is DER-strict: trailing
// bytes, BER length variants, and schema violations all surface as the
// typed errors from anchorerrors instead of bare encoding/asn1 errors.
//
// Wire shape:
//
//	Container ::= SEQUENCE {
//	    version   INTEGER,
//	    body      [1] EXPLICIT Plaintext | Encrypted,
//	    signature [2] EXPLICIT SignatureBlock OPTIONAL
//	}
//	Plaintext ::= SEQUENCE { data OCTET STRING }
//	Encrypted ::= SEQUENCE {
//	    keys SEQUENCE OF PrincipalKey,
//	    iv   OCTET STRING,
//	    ct   OCTET STRING
//	}
//	PrincipalKey ::= SEQUENCE {
//	    publicKey             BIT STRING,
//	    encryptedSymmetricKey BIT STRING
//	}
//	SignatureBlock ::= SEQUENCE {
//	    signerPublicKey BIT STRING,
//	    algorithm       OBJECT IDENTIFIER,
//	    signature       OCTET STRING
//	}
//
// Both body variants occupy the same explicit tag number; the decoder
// disambiguates structurally (an Encrypted body has three fields, a
// Plaintext body has one), the same "try the more specific shape, fall
// back to the simpler one" technique used elsewhere in the corpus for
// optional/choice ASN.1 fields.
package asn1codec

import (
	"encoding/asn1"
	"fmt"

	"github.com/sage-x-project/anchor/anchorerrors"
)

// CurrentVersion is the only container version this codec emits.
const CurrentVersion = 1

// Cipher / hash OIDs.
var (
	OIDAESCBC  = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 42}
	OIDAESGCM  = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 46}
	OIDSHA3256 = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 8}

	// Signature algorithm OIDs for the SignatureBlock: id-Ed25519 is the
	// IANA-registered arc; the secp256k1-over-SHA256 arm borrows the
	// ECDSA-with-SHA256 arc since no dedicated secp256k1 arc is
	// standardized outside ECDSA's own curve-agnostic OID.
	OIDEd25519     = asn1.ObjectIdentifier{1, 3, 101, 112}
	OIDECDSASHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
)

// PrincipalKey mirrors the wire PrincipalKey.
type PrincipalKey struct {
	PublicKey             asn1.BitString
	EncryptedSymmetricKey asn1.BitString
}

// PlaintextBody mirrors the wire Plaintext body.
type PlaintextBody struct {
	Data []byte
}

// EncryptedBody mirrors the wire Encrypted body.
type EncryptedBody struct {
	Keys []PrincipalKey
	IV   []byte
	CT   []byte
}

// SignatureBlock mirrors the optional trailing SignatureBlock.
type SignatureBlock struct {
	SignerPublicKey asn1.BitString
	Algorithm       asn1.ObjectIdentifier
	Signature       []byte
}

// Container is the decoded logical shape handed to callers.
type Container struct {
	Version   int
	Encrypted bool
	Plaintext PlaintextBody
	EncBody   EncryptedBody
	HasSig    bool
	Signature SignatureBlock
}

type plaintextWire struct {
	Version   int
	Body      PlaintextBody  `asn1:"tag:1,explicit"`
	Signature SignatureBlock `asn1:"tag:2,explicit,optional"`
}

type encryptedWire struct {
	Version   int
	Body      EncryptedBody  `asn1:"tag:1,explicit"`
	Signature SignatureBlock `asn1:"tag:2,explicit,optional"`
}

// Encode renders c as canonical DER bytes. encoding/asn1's Marshal already
// produces DER (definite-length, minimal encodings), so two calls with
// identical field values always produce byte-identical output.
func Encode(c *Container) ([]byte, error) {
	if c.Encrypted {
		w := encryptedWire{Version: c.Version, Body: c.EncBody}
		if c.HasSig {
			w.Signature = c.Signature
		}
		out, err := asn1.Marshal(w)
		if err != nil {
			return nil, encodeErr(err)
		}
		return out, nil
	}
	w := plaintextWire{Version: c.Version, Body: c.Plaintext}
	if c.HasSig {
		w.Signature = c.Signature
	}
	out, err := asn1.Marshal(w)
	if err != nil {
		return nil, encodeErr(err)
	}
	return out, nil
}

// Decode parses DER bytes into a Container, rejecting trailing bytes and
// malformed/mismatched shapes.
func Decode(data []byte) (*Container, error) {
	var enc encryptedWire
	restEnc, errEnc := asn1.Unmarshal(data, &enc)
	if errEnc == nil && len(restEnc) == 0 && len(enc.Body.Keys) > 0 {
		c := &Container{
			Version:   enc.Version,
			Encrypted: true,
			EncBody:   enc.Body,
		}
		if len(enc.Signature.Signature) > 0 {
			c.HasSig = true
			c.Signature = enc.Signature
		}
		return validateVersion(c)
	}

	var plain plaintextWire
	restPlain, errPlain := asn1.Unmarshal(data, &plain)
	if errPlain != nil {
		return nil, encodeErr(errPlain)
	}
	if len(restPlain) != 0 {
		return nil, anchorerrors.ErrMalformedContainer.WithMessage("trailing bytes after container")
	}
	c := &Container{
		Version:   plain.Version,
		Encrypted: false,
		Plaintext: plain.Body,
	}
	if len(plain.Signature.Signature) > 0 {
		c.HasSig = true
		c.Signature = plain.Signature
	}
	return validateVersion(c)
}

func validateVersion(c *Container) (*Container, error) {
	if c.Version != CurrentVersion {
		return nil, anchorerrors.ErrUnsupportedVersion.WithMessage(fmt.Sprintf("version %d", c.Version))
	}
	return c, nil
}

// encodeErr wraps an encoding/asn1 failure per the taxonomy: structural
// violations of DER (bad lengths, indefinite form, trailing garbage) are
// MalformedContainer; a well-formed DER value that does not match the
// expected shape is SchemaMismatch.
func encodeErr(err error) error {
	switch err.(type) {
	case asn1.StructuralError, asn1.SyntaxError:
		return anchorerrors.ErrMalformedContainer.Wrap(err)
	default:
		return anchorerrors.ErrSchemaMismatch.Wrap(err)
	}
}
