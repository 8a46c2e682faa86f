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

package main

import (
	"fmt"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorclient"
)

// loadAccount loads the caller's own signing/decrypting identity from
// --key, generating and persisting a fresh one if the file doesn't exist
// yet.
func loadAccount() (*account.Ed25519Account, error) {
	acct, err := account.LoadEd25519AccountFromPEMFile(keyFile)
	if err == nil {
		return acct, nil
	}
	acct, genErr := account.NewEd25519Account()
	if genErr != nil {
		return nil, genErr
	}
	if saveErr := account.SaveEd25519AccountToPEMFile(acct, keyFile); saveErr != nil {
		return nil, fmt.Errorf("save generated account key: %w", saveErr)
	}
	fmt.Printf("anchor-client: generated new account key at %s (public key: %s)\n", keyFile, acct.PublicKeyString())
	return acct, nil
}

// newClient builds an anchorclient.Client against --server, optionally
// resolving --anchor-key as the public co-principal for public objects.
func newClient() (*anchorclient.Client, error) {
	var anchorAcct account.Account
	if anchorPublicKey != "" {
		acct, err := account.FromPublicKeyString(anchorPublicKey)
		if err != nil {
			return nil, fmt.Errorf("anchor-key: %w", err)
		}
		anchorAcct = acct
	}
	return anchorclient.New(anchorclient.Options{
		BaseURL:       serverURL,
		AnchorAccount: anchorAcct,
	})
}
