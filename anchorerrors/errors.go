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

// Package anchorerrors defines the typed error taxonomy shared by the
// anchor server and client. Every variant carries a stable Code so it
// survives the client/server JSON boundary.
package anchorerrors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AnchorError is a typed, wire-serializable error.
type AnchorError struct {
	Code       string
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AnchorError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

func (e *AnchorError) Unwrap() error { return e.Cause }

// WithMessage returns a copy of the error with Message set.
func (e *AnchorError) WithMessage(msg string) *AnchorError {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy of the error with Cause set to err.
func (e *AnchorError) Wrap(err error) *AnchorError {
	cp := *e
	cp.Cause = err
	if cp.Message == "" && err != nil {
		cp.Message = err.Error()
	}
	return &cp
}

// Is allows errors.Is(err, ErrDocumentNotFound) to match any AnchorError
// with the same Code, regardless of Message/Cause.
func (e *AnchorError) Is(target error) bool {
	other, ok := target.(*AnchorError)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

// Canonical error variants.
var (
	ErrInvalidPath              = &AnchorError{Code: "INVALID_PATH", HTTPStatus: http.StatusBadRequest}
	ErrInvalidTag               = &AnchorError{Code: "INVALID_TAG", HTTPStatus: http.StatusBadRequest}
	ErrInvalidArgument          = &AnchorError{Code: "INVALID_ARGUMENT", HTTPStatus: http.StatusBadRequest}
	ErrUnsupportedVersion       = &AnchorError{Code: "UNSUPPORTED_VERSION", HTTPStatus: http.StatusBadRequest}
	ErrSchemaMismatch           = &AnchorError{Code: "SCHEMA_MISMATCH", HTTPStatus: http.StatusBadRequest}
	ErrAccountRequired          = &AnchorError{Code: "ACCOUNT_REQUIRED", HTTPStatus: http.StatusUnauthorized}
	ErrSignerRequired           = &AnchorError{Code: "SIGNER_REQUIRED", HTTPStatus: http.StatusUnauthorized}
	ErrSignatureInvalid         = &AnchorError{Code: "SIGNATURE_INVALID", HTTPStatus: http.StatusUnauthorized}
	ErrSignatureExpired         = &AnchorError{Code: "SIGNATURE_EXPIRED", HTTPStatus: http.StatusUnauthorized, Message: "signature expired"}
	ErrAccessDenied             = &AnchorError{Code: "ACCESS_DENIED", HTTPStatus: http.StatusForbidden, Message: "namespace access denied"}
	ErrDocumentNotFound         = &AnchorError{Code: "DOCUMENT_NOT_FOUND", HTTPStatus: http.StatusNotFound}
	ErrQuotaExceeded            = &AnchorError{Code: "QUOTA_EXCEEDED", HTTPStatus: http.StatusRequestEntityTooLarge}
	ErrValidationFailed         = &AnchorError{Code: "VALIDATION_FAILED", HTTPStatus: http.StatusUnprocessableEntity}
	ErrAnchorPrincipalRequired  = &AnchorError{Code: "ANCHOR_PRINCIPAL_REQUIRED", HTTPStatus: http.StatusBadRequest}
	ErrOperationNotSupported    = &AnchorError{Code: "OPERATION_NOT_SUPPORTED", HTTPStatus: http.StatusNotImplemented}
	ErrUnsupportedAuthMethod    = &AnchorError{Code: "UNSUPPORTED_AUTH_METHOD", HTTPStatus: http.StatusNotImplemented}
	ErrServiceUnavailable       = &AnchorError{Code: "SERVICE_UNAVAILABLE", HTTPStatus: http.StatusServiceUnavailable}
	ErrPrivateKeyRequired       = &AnchorError{Code: "PRIVATE_KEY_REQUIRED", HTTPStatus: http.StatusUnauthorized}
	ErrNoMatchingKey            = &AnchorError{Code: "NO_MATCHING_KEY", HTTPStatus: http.StatusInternalServerError}
	ErrDecryptionFailed         = &AnchorError{Code: "DECRYPTION_FAILED", HTTPStatus: http.StatusInternalServerError}
	ErrPlaintextDisabled        = &AnchorError{Code: "PLAINTEXT_DISABLED", HTTPStatus: http.StatusInternalServerError}
	ErrCannotRevokeLast         = &AnchorError{Code: "CANNOT_REVOKE_LAST", HTTPStatus: http.StatusInternalServerError}
	ErrNotEncrypted             = &AnchorError{Code: "NOT_ENCRYPTED", HTTPStatus: http.StatusInternalServerError}
	ErrNoEncryption             = &AnchorError{Code: "NO_ENCRYPTION", HTTPStatus: http.StatusInternalServerError}
	ErrMalformedContainer       = &AnchorError{Code: "MALFORMED_CONTAINER", HTTPStatus: http.StatusBadRequest}
	ErrInvalidResponse          = &AnchorError{Code: "INVALID_RESPONSE", HTTPStatus: http.StatusBadGateway}
	ErrInvariantViolation       = &AnchorError{Code: "INVARIANT_VIOLATION", HTTPStatus: http.StatusInternalServerError}
)

var registry = map[string]*AnchorError{}

func register(errs ...*AnchorError) {
	for _, e := range errs {
		registry[e.Code] = e
	}
}

func init() {
	register(
		ErrInvalidPath, ErrInvalidTag, ErrInvalidArgument, ErrUnsupportedVersion, ErrSchemaMismatch,
		ErrAccountRequired, ErrSignerRequired, ErrSignatureInvalid, ErrSignatureExpired, ErrAccessDenied,
		ErrDocumentNotFound, ErrQuotaExceeded, ErrValidationFailed, ErrAnchorPrincipalRequired,
		ErrOperationNotSupported, ErrUnsupportedAuthMethod, ErrServiceUnavailable, ErrPrivateKeyRequired,
		ErrNoMatchingKey, ErrDecryptionFailed, ErrPlaintextDisabled, ErrCannotRevokeLast, ErrNotEncrypted,
		ErrNoEncryption, ErrMalformedContainer, ErrInvalidResponse, ErrInvariantViolation,
	)
}

// wireError is the JSON shape exchanged on the wire.
type wireError struct {
	OK         bool   `json:"ok"`
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// ToJSON renders err as the wire error body. Non-AnchorError values are
// mapped to InvariantViolation with a generic message, never exposed
// verbatim beyond a 500.
func ToJSON(err error) []byte {
	ae, ok := err.(*AnchorError)
	if !ok {
		ae = ErrInvariantViolation
	}
	body := wireError{
		OK:         false,
		Error:      ae.Error(),
		Code:       ae.Code,
		StatusCode: ae.HTTPStatus,
	}
	data, _ := json.Marshal(body)
	return data
}

// FromJSON reconstructs the typed error variant from a wire error body,
// dispatching on Code. Unknown codes fall back to InvariantViolation with
// the original message preserved.
func FromJSON(data []byte) error {
	var body wireError
	if err := json.Unmarshal(data, &body); err != nil {
		return ErrInvalidResponse.Wrap(err)
	}
	if canonical, ok := registry[body.Code]; ok {
		return canonical.WithMessage(body.Error)
	}
	return ErrInvariantViolation.WithMessage(body.Error)
}

// HTTPStatus returns the status code that should be used for err, falling
// back to 500 for anything not in the taxonomy.
func HTTPStatus(err error) int {
	if ae, ok := err.(*AnchorError); ok {
		return ae.HTTPStatus
	}
	return http.StatusInternalServerError
}
