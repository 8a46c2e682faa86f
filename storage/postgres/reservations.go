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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/storage"
)

const defaultReservationTTL = 5 * time.Minute

func (s *Store) pruneExpiredReservations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM anchor_reservations WHERE expires_at < now()`)
	if err != nil {
		return fmt.Errorf("failed to prune expired reservations: %w", err)
	}
	return nil
}

func (s *Store) ReserveUpload(ctx context.Context, owner, path string, size int64, opts storage.ReserveOptions) (storage.Reservation, error) {
	if size < 0 {
		return storage.Reservation{}, anchorerrors.ErrInvalidArgument.WithMessage("negative reservation size")
	}
	if err := s.pruneExpiredReservations(ctx); err != nil {
		return storage.Reservation{}, err
	}

	limits := s.limits
	if opts.Limits != nil {
		limits = *opts.Limits
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultReservationTTL
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.Reservation{}, fmt.Errorf("failed to begin reservation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var onDiskSize int64
	err = tx.QueryRow(ctx, `SELECT size FROM anchor_objects WHERE path = $1`, path).Scan(&onDiskSize)
	if err != nil && err != pgx.ErrNoRows {
		return storage.Reservation{}, fmt.Errorf("failed to check existing object size: %w", err)
	}
	hasObj := err == nil
	delta := size - onDiskSize
	if delta < 0 {
		delta = 0
	}

	now := time.Now().UTC()
	var existing storage.Reservation
	err = tx.QueryRow(ctx, `
		SELECT id, size, created_at FROM anchor_reservations WHERE owner = $1 AND path = $2
	`, owner, path).Scan(&existing.ID, &existing.Size, &existing.CreatedAt)

	var result storage.Reservation
	switch {
	case err == nil:
		widened := delta
		if existing.Size > widened {
			widened = existing.Size
		}
		if err := s.checkQuotaTx(ctx, tx, owner, widened, hasObj, limits); err != nil {
			return storage.Reservation{}, err
		}
		expiresAt := now.Add(ttl)
		_, err = tx.Exec(ctx, `
			UPDATE anchor_reservations SET size = $1, expires_at = $2 WHERE id = $3
		`, widened, expiresAt, existing.ID)
		if err != nil {
			return storage.Reservation{}, fmt.Errorf("failed to widen reservation: %w", err)
		}
		result = storage.Reservation{ID: existing.ID, Owner: owner, Path: path, Size: widened, CreatedAt: existing.CreatedAt, ExpiresAt: expiresAt}
	case err == pgx.ErrNoRows:
		if err := s.checkQuotaTx(ctx, tx, owner, delta, hasObj, limits); err != nil {
			return storage.Reservation{}, err
		}
		result = storage.Reservation{
			ID:        uuid.NewString(),
			Owner:     owner,
			Path:      path,
			Size:      delta,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO anchor_reservations (id, owner, path, size, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, result.ID, result.Owner, result.Path, result.Size, result.CreatedAt, result.ExpiresAt)
		if err != nil {
			return storage.Reservation{}, fmt.Errorf("failed to insert reservation: %w", err)
		}
	default:
		return storage.Reservation{}, fmt.Errorf("failed to look up reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.Reservation{}, fmt.Errorf("failed to commit reservation transaction: %w", err)
	}
	return result, nil
}

// checkQuotaTx must run inside tx. isExistingObject tells it whether the
// reservation's path is already an object owned by owner — an overwrite of
// an existing path adds no new object, so the object-count check must not
// charge it.
func (s *Store) checkQuotaTx(ctx context.Context, tx pgx.Tx, owner string, incrementalSize int64, isExistingObject bool, limits storage.QuotaLimits) error {
	var count, size int64
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size), 0) FROM anchor_objects WHERE owner = $1
	`, owner).Scan(&count, &size); err != nil {
		return fmt.Errorf("failed to compute quota usage: %w", err)
	}

	var reserved int64
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(size), 0) FROM anchor_reservations WHERE owner = $1
	`, owner).Scan(&reserved); err != nil {
		return fmt.Errorf("failed to compute reserved quota: %w", err)
	}

	if limits.MaxStoragePerUser > 0 && size+reserved+incrementalSize > limits.MaxStoragePerUser {
		return anchorerrors.ErrQuotaExceeded.WithMessage("storage quota exceeded")
	}
	newObjects := int64(1)
	if isExistingObject {
		newObjects = 0
	}
	if limits.MaxObjectsPerUser > 0 && count+newObjects > limits.MaxObjectsPerUser {
		return anchorerrors.ErrQuotaExceeded.WithMessage("object count quota exceeded")
	}
	if limits.MaxObjectSize > 0 && incrementalSize > limits.MaxObjectSize {
		return anchorerrors.ErrQuotaExceeded.WithMessage("object size exceeds maxObjectSize")
	}
	return nil
}

func (s *Store) CommitUpload(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM anchor_reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}
	return nil
}

func (s *Store) ReleaseUpload(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM anchor_reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	return nil
}
