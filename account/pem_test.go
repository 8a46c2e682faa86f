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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadEd25519AccountPEMFile(t *testing.T) {
	acct, err := NewEd25519Account()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "account.key")
	require.NoError(t, SaveEd25519AccountToPEMFile(acct, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadEd25519AccountFromPEMFile(path)
	require.NoError(t, err)
	assert.Equal(t, acct.PublicKeyString(), loaded.PublicKeyString())
	assert.True(t, loaded.HasPrivateKey())

	msg := []byte("round trip")
	sig, err := loaded.Sign(msg)
	require.NoError(t, err)
	assert.NoError(t, acct.Verify(msg, sig))
}

func TestLoadEd25519AccountPEMFileMissing(t *testing.T) {
	_, err := LoadEd25519AccountFromPEMFile(filepath.Join(t.TempDir(), "nope.key"))
	assert.Error(t, err)
}

func TestLoadEd25519AccountPEMFileWrongBlockType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.key")
	require.NoError(t, os.WriteFile(path, []byte("-----BEGIN NOT A SEED-----\nAAAA\n-----END NOT A SEED-----\n"), 0600))

	_, err := LoadEd25519AccountFromPEMFile(path)
	assert.Error(t, err)
}

func TestSaveEd25519AccountPEMFileRequiresPrivateKey(t *testing.T) {
	full, err := NewEd25519Account()
	require.NoError(t, err)
	pubOnly := NewEd25519PublicAccount(full.pub)

	err = SaveEd25519AccountToPEMFile(pubOnly, filepath.Join(t.TempDir(), "pub.key"))
	assert.ErrorIs(t, err, ErrPrivateKeyRequired)
}
