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
	"errors"
	"net/http"
	"time"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/internal/metrics"
	"github.com/sage-x-project/anchor/signing"
)

// resolveURLSigned implements the URL-signed auth path: account,
// signed.nonce, signed.timestamp, and signed.signature come from the
// query string; signable is whatever the caller built for this operation.
func (s *Server) resolveURLSigned(r *http.Request, signable signing.Signable) (account.Account, error) {
	q := r.URL.Query()
	accountStr := q.Get("account")
	if accountStr == "" {
		return nil, anchorerrors.ErrAccountRequired
	}
	acct, err := account.FromPublicKeyString(accountStr)
	if err != nil {
		return nil, anchorerrors.ErrInvalidArgument.Wrap(err)
	}

	field := &signing.HTTPSignedField{
		Nonce:     q.Get("signed.nonce"),
		Timestamp: q.Get("signed.timestamp"),
		Signature: q.Get("signed.signature"),
	}
	if field.Nonce == "" || field.Timestamp == "" || field.Signature == "" {
		return nil, anchorerrors.ErrSignatureInvalid.WithMessage("missing signed.nonce/timestamp/signature")
	}

	if err := verifySigned(acct, signable, field); err != nil {
		return nil, err
	}
	return acct, nil
}

// verifySigned runs the envelope verification and records its outcome and
// timing against both the Prometheus counters and the in-process collector.
func verifySigned(acct account.Account, signable signing.Signable, field *signing.HTTPSignedField) error {
	start := time.Now()
	err := signing.VerifySignedDataErr(acct, signable, field, signing.VerifyOptions{})
	metrics.GetGlobalCollector().RecordSignatureCheck(err == nil, time.Since(start))
	if err != nil {
		metrics.SignatureVerifications.WithLabelValues(verifyOutcome(err)).Inc()
		return err
	}
	metrics.SignatureVerifications.WithLabelValues("valid").Inc()
	return nil
}

func verifyOutcome(err error) string {
	if errors.Is(err, anchorerrors.ErrSignatureExpired) {
		return "expired"
	}
	return "invalid"
}

// bodySignedRequest is the JSON envelope carried by SEARCH.
type bodySignedRequest struct {
	Account string                  `json:"account"`
	Signed  signing.HTTPSignedField `json:"signed"`
}

func (s *Server) resolveBodySigned(accountStr string, field *signing.HTTPSignedField, signable signing.Signable) (account.Account, error) {
	if accountStr == "" {
		return nil, anchorerrors.ErrAccountRequired
	}
	acct, err := account.FromPublicKeyString(accountStr)
	if err != nil {
		return nil, anchorerrors.ErrInvalidArgument.Wrap(err)
	}
	if err := verifySigned(acct, signable, field); err != nil {
		return nil, err
	}
	return acct, nil
}

func pathSignable(op, path string) signing.Signable {
	return signing.Signable{signing.String(op), signing.String(path)}
}
