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
	"strings"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anchor/storage"
)

var (
	searchPrefix    string
	searchRecursive bool
	searchTags      string
	searchName      string
	searchLimit     int
	searchCursor    string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search objects under a path prefix",
	Example: `  anchor-client search --prefix /docs --tag report --recursive`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchPrefix, "prefix", "", "path prefix to search under")
	searchCmd.Flags().BoolVar(&searchRecursive, "recursive", false, "search recursively under prefix")
	searchCmd.Flags().StringVar(&searchTags, "tag", "", "comma-separated tags to filter by")
	searchCmd.Flags().StringVar(&searchName, "name", "", "substring filter on the final path segment")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "maximum results per page")
	searchCmd.Flags().StringVar(&searchCursor, "cursor", "", "pagination cursor from a previous search")
}

func runSearch(cmd *cobra.Command, args []string) error {
	acct, err := loadAccount()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	var tags []string
	if searchTags != "" {
		tags = strings.Split(searchTags, ",")
	}

	result, err := client.Search(context.Background(), storage.SearchCriteria{
		PathPrefix: searchPrefix,
		Recursive:  searchRecursive,
		Tags:       tags,
		Name:       searchName,
	}, storage.Pagination{Limit: searchLimit, Cursor: searchCursor}, acct)
	if err != nil {
		return err
	}

	for _, obj := range result.Results {
		fmt.Printf("%s\t%d bytes\t%s\t%s\n", obj.Path, obj.Size, obj.Visibility, strings.Join(obj.Tags, ","))
	}
	if result.NextCursor != "" {
		fmt.Printf("next cursor: %s\n", result.NextCursor)
	}
	return nil
}
