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

	"github.com/spf13/cobra"
)

var deletePath string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an object",
	Example: `  anchor-client delete --path /docs/report.pdf`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deletePath, "path", "", "object path (required)")
	deleteCmd.MarkFlagRequired("path")
}

func runDelete(cmd *cobra.Command, args []string) error {
	acct, err := loadAccount()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	deleted, err := client.Delete(context.Background(), deletePath, acct)
	if err != nil {
		return err
	}
	if deleted {
		fmt.Printf("deleted %s\n", deletePath)
	} else {
		fmt.Printf("not found: %s\n", deletePath)
	}
	return nil
}
