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
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anchor/account"
	"github.com/sage-x-project/anchor/anchorserver"
	"github.com/sage-x-project/anchor/config"
	"github.com/sage-x-project/anchor/internal/logger"
	"github.com/sage-x-project/anchor/storage"
	"github.com/sage-x-project/anchor/storage/memory"
	"github.com/sage-x-project/anchor/storage/postgres"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the anchor server",
	Example: `  anchor-server run --config anchor.yaml`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&configPath, "config", "c", "anchor.yaml", "path to the server's YAML configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath, "")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	anchorAcct, err := loadOrCreateAnchorKey(cfg.AnchorKeyFile)
	if err != nil {
		return fmt.Errorf("anchor key: %w", err)
	}

	ctx := context.Background()
	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage backend: %w", err)
	}
	defer backend.Close()

	tagValidation, err := cfg.ToTagValidation()
	if err != nil {
		return err
	}

	log := logger.NewDefaultLogger()
	srv, err := anchorserver.New(anchorserver.Config{
		Backend:             backend,
		AnchorAccount:       anchorAcct,
		PathPolicies:        config.DefaultPathPolicies(),
		Quotas:              cfg.ToQuotaLimits(),
		TagValidation:       tagValidation,
		SignedURLDefaultTTL: time.Duration(cfg.SignedURLDefaultTTL) * time.Second,
		PublicCorsOrigin:    cfg.ToCORSOrigin(),
		Logger:              log,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	log.Info("anchor-server listening", logger.String("addr", cfg.ListenAddr), logger.String("backend", cfg.Backend))
	return http.ListenAndServe(cfg.ListenAddr, srv.Handler())
}

func loadOrCreateAnchorKey(path string) (*account.Ed25519Account, error) {
	if _, err := os.Stat(path); err == nil {
		return account.LoadEd25519AccountFromPEMFile(path)
	}
	acct, err := account.NewEd25519Account()
	if err != nil {
		return nil, err
	}
	if err := account.SaveEd25519AccountToPEMFile(acct, path); err != nil {
		return nil, fmt.Errorf("save generated anchor key: %w", err)
	}
	fmt.Fprintf(os.Stderr, "anchor-server: generated new anchor key at %s (public key: %s)\n", path, acct.PublicKeyString())
	return acct, nil
}

func buildBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return memory.NewStoreWithLimits(cfg.ToQuotaLimits()), nil
	case "postgres":
		return postgres.NewStoreFromDSN(ctx, cfg.PostgresDSN, cfg.ToQuotaLimits())
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
