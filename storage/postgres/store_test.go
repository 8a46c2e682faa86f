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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/storage"
)

// newTestStore connects to the database named by ANCHOR_TEST_POSTGRES_DSN.
// These tests are skipped rather than faked when no live database is
// available.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("ANCHOR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ANCHOR_TEST_POSTGRES_DSN not set, skipping postgres integration test")
	}

	store, err := NewStoreFromDSN(context.Background(), dsn, storage.QuotaLimits{
		MaxObjectSize:     10 << 20,
		MaxObjectsPerUser: 1000,
		MaxStoragePerUser: 100 << 20,
		MaxSearchLimit:    100,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "/user/alice/pg-a.txt", []byte("hello postgres"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Delete(ctx, "/user/alice/pg-a.txt") })

	got, err := s.Get(ctx, "/user/alice/pg-a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello postgres"), got.Data)
}

func TestPostgresDeleteReportsExistence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "/user/alice/pg-b.txt", []byte("x"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)

	ok, err := s.Delete(ctx, "/user/alice/pg-b.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, "/user/alice/pg-b.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresReserveCommitUpload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, err := s.ReserveUpload(ctx, "alice", "/user/alice/pg-c.txt", 20, storage.ReserveOptions{})
	require.NoError(t, err)
	require.NoError(t, s.CommitUpload(ctx, res.ID))
}

func TestPostgresReserveUploadOverwriteAtObjectLimitDoesNotCountAsNewObject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	limits := storage.QuotaLimits{MaxObjectSize: 1000, MaxObjectsPerUser: 1, MaxStoragePerUser: 1000}

	_, err := s.Put(ctx, "/user/carol/pg-e.txt", make([]byte, 10), storage.PutOptions{Owner: "carol"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Delete(ctx, "/user/carol/pg-e.txt") })

	// carol is already at MaxObjectsPerUser=1; reserving a bigger upload to
	// the SAME path is an overwrite, not a new object, so it must succeed.
	res, err := s.ReserveUpload(ctx, "carol", "/user/carol/pg-e.txt", 20, storage.ReserveOptions{Limits: &limits})
	require.NoError(t, err)
	require.NoError(t, s.ReleaseUpload(ctx, res.ID))

	// a reservation for a DIFFERENT path still hits the object-count limit.
	_, err = s.ReserveUpload(ctx, "carol", "/user/carol/pg-f.txt", 5, storage.ReserveOptions{Limits: &limits})
	assert.ErrorIs(t, err, anchorerrors.ErrQuotaExceeded)
}

func TestPostgresQuotaStatusReflectsUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "/user/alice/pg-d.txt", []byte("twelve bytes"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Delete(ctx, "/user/alice/pg-d.txt") })

	status, err := s.GetQuotaStatus(ctx, "alice")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, status.ObjectCount, int64(1))
}
