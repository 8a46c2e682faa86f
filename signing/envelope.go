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

package signing

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
)

// HTTPSignedField is the wire shape carried alongside a request.
type HTTPSignedField struct {
	Nonce     string `json:"nonce"`
	Timestamp string `json:"timestamp"`
	Signature string `json:"signature"`
}

const isoLayout = time.RFC3339

// FormatData extends signable with nonce/timestamp/signer identity and
// returns the canonical verification buffer alongside the nonce/timestamp
// it used. Both sides of the wire must build this buffer identically.
func FormatData(signer account.Account, signable Signable, nonce, timestamp string) (string, string, []byte) {
	if nonce == "" {
		nonce = uuid.NewString()
	}
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(isoLayout)
	}
	extended := append(append(Signable{}, signable...), String(nonce), String(timestamp), String(signer.PublicKeyString()))
	return nonce, timestamp, canonicalize(extended)
}

// SignData signs signable with signer's private key, generating a fresh
// nonce/timestamp.
func SignData(signer account.Account, signable Signable) (*HTTPSignedField, error) {
	nonce, timestamp, data := FormatData(signer, signable, "", "")
	sig, err := signer.Sign(data)
	if err != nil {
		return nil, err
	}
	return &HTTPSignedField{
		Nonce:     nonce,
		Timestamp: timestamp,
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// VerifyOptions configures VerifySignedData.
type VerifyOptions struct {
	// MaxSkew bounds |now - timestamp|. Zero means DefaultMaxSkew.
	MaxSkew time.Duration
}

// DefaultMaxSkew is the default allowed clock skew.
const DefaultMaxSkew = 300 * time.Second

// VerifySignedData verifies field against signable using account's public
// key. It never panics on a structurally-bad field: malformed base64 or
// timestamps fold into "false" rather than an error.
func VerifySignedData(acct account.Account, signable Signable, field *HTTPSignedField, opts VerifyOptions) bool {
	if field == nil || len(field.Nonce) == 0 || len(field.Nonce) > 64 {
		return false
	}
	maxSkew := opts.MaxSkew
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}

	ts, err := time.Parse(isoLayout, field.Timestamp)
	if err != nil {
		return false
	}
	if skew := time.Since(ts); skew > maxSkew || skew < -maxSkew {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(field.Signature)
	if err != nil {
		return false
	}

	_, _, data := FormatData(acct, signable, field.Nonce, field.Timestamp)
	return acct.Verify(data, sig) == nil
}

// VerifySignedDataErr is VerifySignedData but surfaces why verification
// failed, for server-side error responses that must distinguish an expired
// signature from an invalid one.
func VerifySignedDataErr(acct account.Account, signable Signable, field *HTTPSignedField, opts VerifyOptions) error {
	if field == nil || len(field.Nonce) == 0 || len(field.Nonce) > 64 {
		return anchorerrors.ErrSignatureInvalid.WithMessage("missing or oversized nonce")
	}
	maxSkew := opts.MaxSkew
	if maxSkew <= 0 {
		maxSkew = DefaultMaxSkew
	}

	ts, err := time.Parse(isoLayout, field.Timestamp)
	if err != nil {
		return anchorerrors.ErrSignatureInvalid.Wrap(err)
	}
	if skew := time.Since(ts); skew > maxSkew || skew < -maxSkew {
		return anchorerrors.ErrSignatureExpired
	}

	sig, err := base64.StdEncoding.DecodeString(field.Signature)
	if err != nil {
		return anchorerrors.ErrSignatureInvalid.Wrap(err)
	}

	_, _, data := FormatData(acct, signable, field.Nonce, field.Timestamp)
	if err := acct.Verify(data, sig); err != nil {
		return anchorerrors.ErrSignatureInvalid.Wrap(err)
	}
	return nil
}
