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
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sage-x-project/anchor/storage"
)

func (s *Store) Put(ctx context.Context, path string, data []byte, opts storage.PutOptions) (storage.Object, error) {
	now := time.Now().UTC()

	var createdAt time.Time
	err := s.pool.QueryRow(ctx, `SELECT created_at FROM anchor_objects WHERE path = $1`, path).Scan(&createdAt)
	isNew := err == pgx.ErrNoRows
	if err != nil && !isNew {
		return storage.Object{}, fmt.Errorf("failed to check existing object: %w", err)
	}

	obj := storage.Object{
		Path:       path,
		Owner:      opts.Owner,
		Tags:       append([]string(nil), opts.Tags...),
		Visibility: opts.Visibility,
		Size:       int64(len(data)),
	}
	if isNew {
		obj.CreatedAt = now
	} else {
		obj.CreatedAt = createdAt
		obj.UpdatedAt = now
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO anchor_objects (path, owner, tags, visibility, data, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (path) DO UPDATE SET
			owner = EXCLUDED.owner,
			tags = EXCLUDED.tags,
			visibility = EXCLUDED.visibility,
			data = EXCLUDED.data,
			size = EXCLUDED.size,
			updated_at = EXCLUDED.updated_at
	`, obj.Path, obj.Owner, obj.Tags, string(obj.Visibility), data, obj.Size, obj.CreatedAt, coalesceUpdatedAt(obj.UpdatedAt))
	if err != nil {
		return storage.Object{}, fmt.Errorf("failed to put object: %w", err)
	}
	return obj, nil
}

func (s *Store) Get(ctx context.Context, path string) (*storage.GetResult, error) {
	var (
		data              []byte
		owner, visibility string
		tags              []string
		size              int64
		createdAt         time.Time
		updatedAt         *time.Time // nullable: never overwritten
	)
	err := s.pool.QueryRow(ctx, `
		SELECT data, owner, tags, visibility, size, created_at, updated_at
		FROM anchor_objects WHERE path = $1
	`, path).Scan(&data, &owner, &tags, &visibility, &size, &createdAt, &updatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	meta := storage.Object{
		Path:       path,
		Owner:      owner,
		Tags:       tags,
		Visibility: storage.Visibility(visibility),
		Size:       size,
		CreatedAt:  createdAt,
	}
	if updatedAt != nil {
		meta.UpdatedAt = *updatedAt
	}
	return &storage.GetResult{Data: data, Metadata: meta}, nil
}

func (s *Store) Delete(ctx context.Context, path string) (bool, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM anchor_objects WHERE path = $1`, path)
	if err != nil {
		return false, fmt.Errorf("failed to delete object: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (s *Store) Search(ctx context.Context, criteria storage.SearchCriteria, pagination storage.Pagination) (storage.SearchResult, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if criteria.PathPrefix != "" {
		where = append(where, "path LIKE "+arg(criteria.PathPrefix+"%"))
		if !criteria.Recursive {
			where = append(where, fmt.Sprintf("position('/' in substring(path from %d)) = 0", len(criteria.PathPrefix)+1))
		}
	}
	if len(criteria.Tags) > 0 {
		where = append(where, "tags && "+arg(criteria.Tags))
	}
	if criteria.Name != "" {
		// substring match on the final path segment only
		where = append(where, "regexp_replace(path, '.*/', '') LIKE "+arg("%"+criteria.Name+"%"))
	}
	if criteria.Owner != "" {
		where = append(where, "owner = "+arg(criteria.Owner))
	}
	if criteria.HasVisibility {
		where = append(where, "visibility = "+arg(string(criteria.Visibility)))
	}
	if pagination.Cursor != "" {
		where = append(where, "path > "+arg(pagination.Cursor))
	}

	query := `SELECT path, owner, tags, visibility, size, created_at, updated_at FROM anchor_objects`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY path ASC"

	limit := pagination.Limit
	if limit > 0 {
		query += " LIMIT " + arg(limit+1)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return storage.SearchResult{}, fmt.Errorf("failed to search objects: %w", err)
	}
	defer rows.Close()

	var results []storage.Object
	for rows.Next() {
		var o storage.Object
		var visibility string
		var updatedAt *time.Time
		if err := rows.Scan(&o.Path, &o.Owner, &o.Tags, &visibility, &o.Size, &o.CreatedAt, &updatedAt); err != nil {
			return storage.SearchResult{}, fmt.Errorf("failed to scan object: %w", err)
		}
		o.Visibility = storage.Visibility(visibility)
		if updatedAt != nil {
			o.UpdatedAt = *updatedAt
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return storage.SearchResult{}, fmt.Errorf("error iterating search results: %w", err)
	}

	out := storage.SearchResult{Results: results}
	if limit > 0 && len(results) > limit {
		out.Results = results[:limit]
		out.NextCursor = out.Results[limit-1].Path
	}
	return out, nil
}

func (s *Store) GetQuotaStatus(ctx context.Context, owner string) (storage.QuotaStatus, error) {
	if err := s.pruneExpiredReservations(ctx); err != nil {
		return storage.QuotaStatus{}, err
	}

	var count, size int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size), 0) FROM anchor_objects WHERE owner = $1
	`, owner).Scan(&count, &size)
	if err != nil {
		return storage.QuotaStatus{}, fmt.Errorf("failed to compute quota usage: %w", err)
	}

	var reserved int64
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(size), 0) FROM anchor_reservations WHERE owner = $1
	`, owner).Scan(&reserved)
	if err != nil {
		return storage.QuotaStatus{}, fmt.Errorf("failed to compute reserved quota: %w", err)
	}

	limits := s.limits
	return storage.QuotaStatus{
		ObjectCount:      count,
		TotalSize:        size + reserved,
		RemainingObjects: maxInt64(0, limits.MaxObjectsPerUser-count),
		RemainingSize:    maxInt64(0, limits.MaxStoragePerUser-(size+reserved)),
	}, nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
