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
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anchor/account"
)

var keygenOutput string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the anchor server's signing/decryption key without starting the server",
	Long: `keygen pre-provisions the Ed25519 key anchorKeyFile names, so an
operator can stage a deployment's key material (and publish its
public key to callers) before the server ever runs. "run" generates
the same key automatically on first start if the file is missing, so
keygen is only needed for this out-of-band provisioning step.`,
	Example: `  anchor-server keygen --output anchor.key`,
	RunE:    runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOutput, "output", "o", "anchor.key", "path to write the PEM-encoded Ed25519 seed")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(keygenOutput); err == nil {
		return fmt.Errorf("refusing to overwrite existing key file %s", keygenOutput)
	}
	acct, err := account.NewEd25519Account()
	if err != nil {
		return err
	}
	if err := account.SaveEd25519AccountToPEMFile(acct, keygenOutput); err != nil {
		return fmt.Errorf("save key: %w", err)
	}
	fmt.Printf("generated anchor key at %s\npublic key: %s\n", keygenOutput, acct.PublicKeyString())
	return nil
}
