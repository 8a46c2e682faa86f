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

// Package postgres implements storage.Backend against PostgreSQL via pgx,
// for durable single-anchor deployments.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sage-x-project/anchor/storage"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Store implements storage.Backend for PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	limits storage.QuotaLimits
}

// NewStore creates a Store, opening (and pinging) a connection pool, and
// issuing the schema DDL the object/reservation tables need.
func NewStore(ctx context.Context, cfg *Config, limits storage.QuotaLimits) (*Store, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{pool: pool, limits: limits}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS anchor_objects (
			path        TEXT PRIMARY KEY,
			owner       TEXT NOT NULL,
			tags        TEXT[] NOT NULL DEFAULT '{}',
			visibility  TEXT NOT NULL,
			data        BYTEA NOT NULL,
			size        BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS anchor_objects_owner_idx ON anchor_objects (owner);

		CREATE TABLE IF NOT EXISTS anchor_reservations (
			id          TEXT PRIMARY KEY,
			owner       TEXT NOT NULL,
			path        TEXT NOT NULL,
			size        BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			expires_at  TIMESTAMPTZ NOT NULL,
			UNIQUE (owner, path)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// NewStoreFromDSN creates a Store directly from a postgres connection
// string, letting pgx parse host/port/user
// rather than requiring the caller to decompose it into Config.
func NewStoreFromDSN(ctx context.Context, dsn string, limits storage.QuotaLimits) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{pool: pool, limits: limits}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ storage.Backend = (*Store)(nil)

// coalesceUpdatedAt converts a zero time.Time to nil for a nullable column.
func coalesceUpdatedAt(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
