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
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anchor/anchorclient"
)

var (
	publicURLPath string
	publicURLTTL  int64
)

var publicURLCmd = &cobra.Command{
	Use:   "public-url",
	Short: "Mint a signed, time-limited fetch URL for a public object",
	Example: `  anchor-client public-url --path /docs/report.pdf --ttl 3600`,
	RunE: runPublicURL,
}

func init() {
	rootCmd.AddCommand(publicURLCmd)
	publicURLCmd.Flags().StringVar(&publicURLPath, "path", "", "object path (required)")
	publicURLCmd.Flags().Int64Var(&publicURLTTL, "ttl", 3600, "URL lifetime in seconds")
	publicURLCmd.MarkFlagRequired("path")
}

func runPublicURL(cmd *cobra.Command, args []string) error {
	acct, err := loadAccount()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	url, err := client.GetPublicURL(anchorclient.PublicURLRequest{
		Path:    publicURLPath,
		TTL:     time.Duration(publicURLTTL) * time.Second,
		Account: acct,
	})
	if err != nil {
		return err
	}

	fmt.Println(url)
	return nil
}
