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
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anchor/anchorclient"
	"github.com/sage-x-project/anchor/storage"
)

var (
	putPath       string
	putFile       string
	putTags       string
	putVisibility string
	putMimeType   string
)

var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Upload a file as an Encrypted Container",
	Example: `  anchor-client put --path /docs/report.pdf --file report.pdf --tags report,2026 --visibility private`,
	RunE: runPut,
}

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().StringVar(&putPath, "path", "", "destination path (required)")
	putCmd.Flags().StringVar(&putFile, "file", "", "local file to upload (required)")
	putCmd.Flags().StringVar(&putTags, "tags", "", "comma-separated tags")
	putCmd.Flags().StringVar(&putVisibility, "visibility", "private", "visibility: private or public")
	putCmd.Flags().StringVar(&putMimeType, "mime-type", "", "MIME type (default: sniffed from the file extension)")
	putCmd.MarkFlagRequired("path")
	putCmd.MarkFlagRequired("file")
}

func runPut(cmd *cobra.Command, args []string) error {
	acct, err := loadAccount()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(putFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	mimeType := putMimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(putFile))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
	}

	var tags []string
	if putTags != "" {
		tags = strings.Split(putTags, ",")
	}

	visibility := storage.VisibilityPrivate
	if putVisibility == string(storage.VisibilityPublic) {
		visibility = storage.VisibilityPublic
	}

	obj, err := client.Put(context.Background(), anchorclient.PutRequest{
		Path:       putPath,
		Data:       data,
		MimeType:   mimeType,
		Tags:       tags,
		Visibility: visibility,
		Account:    acct,
	})
	if err != nil {
		return err
	}

	fmt.Printf("uploaded %s (%d bytes, visibility=%s)\n", obj.Path, obj.Size, obj.Visibility)
	return nil
}
