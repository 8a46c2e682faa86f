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

// Package pathpolicy implements path parsing, validation, and
// access-authorization for anchor object paths: a closed Operation enum
// and a small Policy interface resolved first-match-wins.
package pathpolicy

import (
	"strings"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
)

// Operation names one of the access kinds a path policy can authorize.
type Operation int

const (
	OpGet Operation = iota
	OpPut
	OpDelete
	OpSearch
	OpMetadata
)

// Parsed is the result of successfully parsing a path under some Policy.
type Parsed struct {
	Owner    string // canonical public-key string
	Relative string // the path segment after the owner prefix
	Raw      string
}

// Policy is implemented by every path scheme the server accepts.
type Policy interface {
	// Parse is total: it never panics, returning (nil, false) for any
	// path this policy does not recognize.
	Parse(path string) (*Parsed, bool)
	// Validate re-parses path and additionally rejects traversal
	// segments, returning InvalidPath on violation.
	Validate(path string) (*Parsed, error)
	// CheckAccess reports whether acct may perform op against parsed.
	CheckAccess(acct account.Account, parsed *Parsed, op Operation) bool
	// GetAuthorizedSigner returns the public-key string that must sign
	// requests against parsed, or "" if the server should instead accept
	// any signer named by the request's own account parameter.
	GetAuthorizedSigner(parsed *Parsed) string
}

// DefaultPolicy implements the `/user/<publicKeyString>/<relative...>`
// grammar.
type DefaultPolicy struct{}

// NewDefaultPolicy constructs the default owner-scoped path policy.
func NewDefaultPolicy() *DefaultPolicy { return &DefaultPolicy{} }

func (p *DefaultPolicy) Parse(path string) (*Parsed, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	segments := strings.Split(trimmed, "/")
	if len(segments) < 3 || segments[0] != "user" {
		return nil, false
	}
	owner := segments[1]
	if owner == "" {
		return nil, false
	}
	relative := strings.Join(segments[2:], "/")
	if relative == "" {
		return nil, false
	}
	return &Parsed{Owner: owner, Relative: relative, Raw: path}, true
}

func (p *DefaultPolicy) Validate(path string) (*Parsed, error) {
	parsed, ok := p.Parse(path)
	if !ok {
		return nil, anchorerrors.ErrInvalidPath.WithMessage("path does not match /user/<publicKeyString>/<relative...>")
	}
	if err := validateSegments(parsed.Relative); err != nil {
		return nil, err
	}
	return parsed, nil
}

// validateSegments rejects empty, ".", and ".." segments and any
// doubled-slash collapse.
func validateSegments(relative string) error {
	if strings.Contains(relative, "//") {
		return anchorerrors.ErrInvalidPath.WithMessage("empty path segment")
	}
	for _, seg := range strings.Split(relative, "/") {
		switch seg {
		case "":
			return anchorerrors.ErrInvalidPath.WithMessage("empty path segment")
		case ".":
			return anchorerrors.ErrInvalidPath.WithMessage("path traversal segment '.'")
		case "..":
			return anchorerrors.ErrInvalidPath.WithMessage("path traversal segment '..'")
		}
	}
	return nil
}

func (p *DefaultPolicy) CheckAccess(acct account.Account, parsed *Parsed, op Operation) bool {
	if acct == nil || parsed == nil {
		return false
	}
	if op == OpSearch {
		return true // server scopes SEARCH results to the owner itself
	}
	return parsed.Owner == acct.PublicKeyString()
}

// GetAuthorizedSigner returns "": the default policy designates no fixed
// signer for pre-signed URLs, so the server accepts any signer the URL's
// own account parameter names. A public object's fetchability then rests
// on its visibility flag and the URL's expiry, not on who minted the URL.
func (p *DefaultPolicy) GetAuthorizedSigner(parsed *Parsed) string {
	return ""
}

// Resolve runs path against policies in order, returning the first match.
func Resolve(policies []Policy, path string) (Policy, *Parsed, bool) {
	for _, pol := range policies {
		if parsed, ok := pol.Parse(path); ok {
			return pol, parsed, true
		}
	}
	return nil, nil, false
}

// AssertPathAccess runs parse -> validate -> checkAccess against the first
// matching policy, returning AccessDenied on policy denial and InvalidPath
// on schema failure.
func AssertPathAccess(policies []Policy, path string, acct account.Account, op Operation) (Policy, *Parsed, error) {
	for _, pol := range policies {
		if _, ok := pol.Parse(path); !ok {
			continue
		}
		parsed, err := pol.Validate(path)
		if err != nil {
			return nil, nil, err
		}
		if !pol.CheckAccess(acct, parsed, op) {
			return nil, nil, anchorerrors.ErrAccessDenied
		}
		return pol, parsed, nil
	}
	return nil, nil, anchorerrors.ErrInvalidPath.WithMessage("no policy recognizes this path")
}
