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

package pathpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorerrors"
)

func newAcct(t *testing.T) *account.Ed25519Account {
	t.Helper()
	acct, err := account.NewEd25519Account()
	require.NoError(t, err)
	return acct
}

func TestParseValidPath(t *testing.T) {
	p := NewDefaultPolicy()
	parsed, ok := p.Parse("/user/abc123/docs/report.pdf")
	require.True(t, ok)
	assert.Equal(t, "abc123", parsed.Owner)
	assert.Equal(t, "docs/report.pdf", parsed.Relative)
}

func TestParseRejectsWrongPrefix(t *testing.T) {
	p := NewDefaultPolicy()
	_, ok := p.Parse("/group/abc123/docs")
	assert.False(t, ok)
}

func TestParseRejectsMissingRelative(t *testing.T) {
	p := NewDefaultPolicy()
	_, ok := p.Parse("/user/abc123")
	assert.False(t, ok)
}

func TestValidateRejectsTraversalSegments(t *testing.T) {
	p := NewDefaultPolicy()

	_, err := p.Validate("/user/abc123/../secret")
	assert.ErrorIs(t, err, anchorerrors.ErrInvalidPath)

	_, err = p.Validate("/user/abc123/./docs")
	assert.ErrorIs(t, err, anchorerrors.ErrInvalidPath)

	_, err = p.Validate("/user/abc123//docs")
	assert.ErrorIs(t, err, anchorerrors.ErrInvalidPath)
}

func TestValidateAcceptsCleanPath(t *testing.T) {
	p := NewDefaultPolicy()
	parsed, err := p.Validate("/user/abc123/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "docs/a.txt", parsed.Relative)
}

func TestCheckAccessOwnerOnly(t *testing.T) {
	p := NewDefaultPolicy()
	owner := newAcct(t)
	other := newAcct(t)

	parsed := &Parsed{Owner: owner.PublicKeyString(), Relative: "a"}
	assert.True(t, p.CheckAccess(owner, parsed, OpGet))
	assert.False(t, p.CheckAccess(other, parsed, OpGet))
}

func TestCheckAccessSearchAlwaysAllowed(t *testing.T) {
	p := NewDefaultPolicy()
	owner := newAcct(t)
	other := newAcct(t)
	parsed := &Parsed{Owner: owner.PublicKeyString(), Relative: "a"}

	assert.True(t, p.CheckAccess(other, parsed, OpSearch))
}

func TestCheckAccessRejectsNilInputs(t *testing.T) {
	p := NewDefaultPolicy()
	owner := newAcct(t)
	parsed := &Parsed{Owner: owner.PublicKeyString(), Relative: "a"}

	assert.False(t, p.CheckAccess(nil, parsed, OpGet))
	assert.False(t, p.CheckAccess(owner, nil, OpGet))
}

func TestGetAuthorizedSignerIsEmptyForDefaultPolicy(t *testing.T) {
	p := NewDefaultPolicy()
	parsed := &Parsed{Owner: "abc", Relative: "a"}
	assert.Equal(t, "", p.GetAuthorizedSigner(parsed))
}

func TestResolveReturnsFirstMatchingPolicy(t *testing.T) {
	p := NewDefaultPolicy()
	pol, parsed, ok := Resolve([]Policy{p}, "/user/abc123/docs")
	require.True(t, ok)
	assert.Same(t, p, pol)
	assert.Equal(t, "abc123", parsed.Owner)
}

func TestResolveNoMatch(t *testing.T) {
	p := NewDefaultPolicy()
	_, _, ok := Resolve([]Policy{p}, "/other/thing")
	assert.False(t, ok)
}

func TestAssertPathAccessSucceedsForOwner(t *testing.T) {
	p := NewDefaultPolicy()
	owner := newAcct(t)
	path := "/user/" + owner.PublicKeyString() + "/docs/a.txt"

	pol, parsed, err := AssertPathAccess([]Policy{p}, path, owner, OpPut)
	require.NoError(t, err)
	assert.Same(t, p, pol)
	assert.Equal(t, "docs/a.txt", parsed.Relative)
}

func TestAssertPathAccessDeniesNonOwner(t *testing.T) {
	p := NewDefaultPolicy()
	owner := newAcct(t)
	other := newAcct(t)
	path := "/user/" + owner.PublicKeyString() + "/docs/a.txt"

	_, _, err := AssertPathAccess([]Policy{p}, path, other, OpGet)
	assert.ErrorIs(t, err, anchorerrors.ErrAccessDenied)
}

func TestAssertPathAccessRejectsUnrecognizedPath(t *testing.T) {
	p := NewDefaultPolicy()
	owner := newAcct(t)

	_, _, err := AssertPathAccess([]Policy{p}, "/nope", owner, OpGet)
	assert.ErrorIs(t, err, anchorerrors.ErrInvalidPath)
}

func TestAssertPathAccessRejectsTraversalEvenForOwner(t *testing.T) {
	p := NewDefaultPolicy()
	owner := newAcct(t)
	path := "/user/" + owner.PublicKeyString() + "/../escape"

	_, _, err := AssertPathAccess([]Policy{p}, path, owner, OpGet)
	assert.ErrorIs(t, err, anchorerrors.ErrInvalidPath)
}
