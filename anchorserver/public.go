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

package anchorserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/container"
	"github.com/sage-x-project/anchor/objectpayload"
	"github.com/sage-x-project/anchor/pathpolicy"
	"github.com/sage-x-project/anchor/signing"
	"github.com/sage-x-project/anchor/storage"
)

// handlePublicGet implements GET /api/public/<path>. The signature's
// allowed clock skew is widened to the full maxSignedUrlTTL window, not
// the usual five minutes: a long-TTL pre-signed URL must still verify
// near its expiry, long after the moment it was signed.
func (s *Server) handlePublicGet(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)
	q := r.URL.Query()

	expiresStr := q.Get("expires")
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		writeError(w, anchorerrors.ErrSignatureInvalid.WithMessage("expires must be numeric"))
		return
	}
	now := time.Now().Unix()
	if expires <= now {
		writeError(w, anchorerrors.ErrSignatureExpired.WithMessage("signed URL expired"))
		return
	}
	if expires > now+int64(s.quotas.MaxSignedURLTTL/time.Second) {
		writeError(w, anchorerrors.ErrSignatureExpired.WithMessage("expires exceeds maxSignedUrlTTL"))
		return
	}

	policy, parsed, ok := pathpolicy.Resolve(s.policies, path)
	if !ok {
		writeError(w, anchorerrors.ErrInvalidPath)
		return
	}
	signerKey := policy.GetAuthorizedSigner(parsed)
	if signerKey == "" {
		signerKey = q.Get("account")
		if signerKey == "" {
			writeError(w, anchorerrors.ErrAccountRequired)
			return
		}
	}
	acct, err := account.FromPublicKeyString(signerKey)
	if err != nil {
		writeError(w, anchorerrors.ErrInvalidArgument.Wrap(err))
		return
	}

	field := &signing.HTTPSignedField{
		Nonce:     q.Get("nonce"),
		Timestamp: q.Get("timestamp"),
		Signature: q.Get("signature"),
	}
	signable := signing.Signable{signing.String(path), signing.Int(expires)}
	if err := signing.VerifySignedDataErr(acct, signable, field, signing.VerifyOptions{MaxSkew: s.quotas.MaxSignedURLTTL}); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.backend.Get(r.Context(), path)
	if err != nil {
		writeError(w, err)
		return
	}
	if result == nil {
		writeError(w, anchorerrors.ErrDocumentNotFound)
		return
	}
	if result.Metadata.Visibility != storage.VisibilityPublic {
		writeError(w, anchorerrors.ErrAccessDenied.WithMessage("object is not public"))
		return
	}

	c, err := container.FromEncodedBuffer(result.Data, []account.Account{s.anchor})
	if err != nil {
		writeError(w, err)
		return
	}
	plaintext, err := c.GetPlaintext()
	if err != nil {
		writeError(w, err)
		return
	}
	payload, err := objectpayload.Unmarshal(plaintext)
	if err != nil {
		writeError(w, anchorerrors.ErrMalformedContainer.Wrap(err))
		return
	}

	w.Header().Set("Content-Type", payload.MimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload.Data)
}
