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
)

var rootCmd = &cobra.Command{
	Use:   "anchor-client",
	Short: "Anchor object-storage client",
	Long: `anchor-client talks to an anchor server: it builds and uploads
Encrypted Containers, fetches and decrypts them, and drives search,
quota, and public-URL operations from the command line.`,
}

var (
	serverURL  string
	keyFile    string
	anchorPublicKey string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8443", "anchor server base URL")
	rootCmd.PersistentFlags().StringVarP(&keyFile, "key", "k", "account.key", "path to this account's PEM-encoded Ed25519 seed")
	rootCmd.PersistentFlags().StringVar(&anchorPublicKey, "anchor-key", "", "the anchor's base58 public key string (co-principal for public objects; optional)")
	// Note: commands are registered in their respective files
	// - put.go: putCmd
	// - get.go: getCmd
	// - delete.go: deleteCmd
	// - search.go: searchCmd
	// - quota.go: quotaCmd
	// - publicurl.go: publicURLCmd
}
