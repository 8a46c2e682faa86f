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
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	getPath   string
	getOutput string
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch and decrypt an object",
	Example: `  anchor-client get --path /docs/report.pdf -o report.pdf`,
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVar(&getPath, "path", "", "object path (required)")
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "output file (default: stdout)")
	getCmd.MarkFlagRequired("path")
}

func runGet(cmd *cobra.Command, args []string) error {
	acct, err := loadAccount()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	result, err := client.Get(context.Background(), getPath, acct)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("not found: %s", getPath)
	}

	if getOutput == "" {
		_, err := os.Stdout.Write(result.Data)
		return err
	}
	if err := os.WriteFile(getOutput, result.Data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "saved %s (%s, %d bytes) to %s\n", getPath, result.MimeType, len(result.Data), getOutput)
	return nil
}
