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

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/storage"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	obj, err := s.Put(ctx, "/user/alice/a.txt", []byte("hello"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), obj.Size)
	assert.False(t, obj.CreatedAt.IsZero())
	assert.True(t, obj.UpdatedAt.IsZero())

	got, err := s.Get(ctx, "/user/alice/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got.Data)
	assert.Equal(t, "alice", got.Metadata.Owner)
}

func TestGetMissingReturnsNilWithoutError(t *testing.T) {
	s := NewStore()
	got, err := s.Get(context.Background(), "/user/alice/nope.txt")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOverwritePreservesCreatedAtAndSetsUpdatedAt(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first, err := s.Put(ctx, "/user/alice/a.txt", []byte("v1"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)

	second, err := s.Put(ctx, "/user/alice/a.txt", []byte("v2-longer"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.UpdatedAt.IsZero())
	assert.Equal(t, int64(len("v2-longer")), second.Size)
}

func TestOverwriteDoesNotInflateObjectCount(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Put(ctx, "/user/alice/a.txt", []byte("v1"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)
	_, err = s.Put(ctx, "/user/alice/a.txt", []byte("v2"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)

	status, err := s.GetQuotaStatus(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.ObjectCount)
}

func TestDeleteRemovesObjectAndReportsExistence(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.Put(ctx, "/user/alice/a.txt", []byte("v1"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)

	ok, err := s.Delete(ctx, "/user/alice/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, "/user/alice/a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchByPrefixNonRecursiveExcludesNestedPaths(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _ = s.Put(ctx, "/user/alice/docs/a.txt", []byte("a"), storage.PutOptions{Owner: "alice"})
	_, _ = s.Put(ctx, "/user/alice/docs/nested/b.txt", []byte("b"), storage.PutOptions{Owner: "alice"})

	result, err := s.Search(ctx, storage.SearchCriteria{PathPrefix: "/user/alice/docs/", Recursive: false}, storage.Pagination{})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "/user/alice/docs/a.txt", result.Results[0].Path)
}

func TestSearchByPrefixRecursiveIncludesNestedPaths(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _ = s.Put(ctx, "/user/alice/docs/a.txt", []byte("a"), storage.PutOptions{Owner: "alice"})
	_, _ = s.Put(ctx, "/user/alice/docs/nested/b.txt", []byte("b"), storage.PutOptions{Owner: "alice"})

	result, err := s.Search(ctx, storage.SearchCriteria{PathPrefix: "/user/alice/docs/", Recursive: true}, storage.Pagination{})
	require.NoError(t, err)
	assert.Len(t, result.Results, 2)
}

func TestSearchByTagAndName(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _ = s.Put(ctx, "/user/alice/report.pdf", []byte("x"), storage.PutOptions{Owner: "alice", Tags: []string{"finance"}})
	_, _ = s.Put(ctx, "/user/alice/photo.png", []byte("y"), storage.PutOptions{Owner: "alice", Tags: []string{"personal"}})

	byTag, err := s.Search(ctx, storage.SearchCriteria{Tags: []string{"finance"}}, storage.Pagination{})
	require.NoError(t, err)
	require.Len(t, byTag.Results, 1)
	assert.Equal(t, "/user/alice/report.pdf", byTag.Results[0].Path)

	byName, err := s.Search(ctx, storage.SearchCriteria{Name: "photo"}, storage.Pagination{})
	require.NoError(t, err)
	require.Len(t, byName.Results, 1)
	assert.Equal(t, "/user/alice/photo.png", byName.Results[0].Path)
}

func TestSearchPaginationReturnsCursorAndRemainder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for _, p := range []string{"/user/alice/a", "/user/alice/b", "/user/alice/c"} {
		_, err := s.Put(ctx, p, []byte("x"), storage.PutOptions{Owner: "alice"})
		require.NoError(t, err)
	}

	page1, err := s.Search(ctx, storage.SearchCriteria{Owner: "alice"}, storage.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Results, 2)
	assert.NotEmpty(t, page1.NextCursor)

	page2, err := s.Search(ctx, storage.SearchCriteria{Owner: "alice"}, storage.Pagination{Limit: 2, Cursor: page1.NextCursor})
	require.NoError(t, err)
	assert.Len(t, page2.Results, 1)
	assert.Empty(t, page2.NextCursor)
}

func TestQuotaStatusReflectsStoredObjects(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.Put(ctx, "/user/alice/a.txt", []byte("hello"), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)

	status, err := s.GetQuotaStatus(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), status.ObjectCount)
	assert.Equal(t, int64(5), status.TotalSize)
	assert.Equal(t, DefaultQuotaLimits().MaxObjectsPerUser-1, status.RemainingObjects)
}

func TestQuotaStatusCountsLiveReservations(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.ReserveUpload(ctx, "alice", "/user/alice/a", 10, storage.ReserveOptions{})
	require.NoError(t, err)
	_, err = s.ReserveUpload(ctx, "alice", "/user/alice/b", 25, storage.ReserveOptions{})
	require.NoError(t, err)

	status, err := s.GetQuotaStatus(ctx, "alice")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, status.TotalSize, int64(35))
	assert.Equal(t, DefaultQuotaLimits().MaxStoragePerUser-35, status.RemainingSize)
}

func TestReserveUploadEnforcesObjectSizeLimit(t *testing.T) {
	s := NewStoreWithLimits(storage.QuotaLimits{MaxObjectSize: 10, MaxObjectsPerUser: 100, MaxStoragePerUser: 1000})
	_, err := s.ReserveUpload(context.Background(), "alice", "/user/alice/big", 100, storage.ReserveOptions{})
	assert.ErrorIs(t, err, anchorerrors.ErrQuotaExceeded)
}

func TestReserveUploadEnforcesStorageQuota(t *testing.T) {
	s := NewStoreWithLimits(storage.QuotaLimits{MaxObjectSize: 1000, MaxObjectsPerUser: 100, MaxStoragePerUser: 50})
	_, err := s.ReserveUpload(context.Background(), "alice", "/user/alice/a", 60, storage.ReserveOptions{})
	assert.ErrorIs(t, err, anchorerrors.ErrQuotaExceeded)
}

func TestReserveUploadRejectsNegativeSize(t *testing.T) {
	s := NewStore()
	_, err := s.ReserveUpload(context.Background(), "alice", "/user/alice/a", -1, storage.ReserveOptions{})
	assert.ErrorIs(t, err, anchorerrors.ErrInvalidArgument)
}

func TestReserveUploadDeltaAccountsForExistingObjectSize(t *testing.T) {
	s := NewStoreWithLimits(storage.QuotaLimits{MaxObjectSize: 1000, MaxObjectsPerUser: 100, MaxStoragePerUser: 20})
	ctx := context.Background()
	_, err := s.Put(ctx, "/user/alice/a", make([]byte, 15), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)

	res, err := s.ReserveUpload(ctx, "alice", "/user/alice/a", 18, storage.ReserveOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Size)
}

func TestReserveUploadOverwriteAtObjectLimitDoesNotCountAsNewObject(t *testing.T) {
	s := NewStoreWithLimits(storage.QuotaLimits{MaxObjectSize: 1000, MaxObjectsPerUser: 1, MaxStoragePerUser: 1000})
	ctx := context.Background()
	_, err := s.Put(ctx, "/user/alice/a", make([]byte, 10), storage.PutOptions{Owner: "alice"})
	require.NoError(t, err)

	// alice is already at MaxObjectsPerUser=1; reserving a bigger upload to
	// the SAME path is an overwrite, not a new object, so it must succeed.
	_, err = s.ReserveUpload(ctx, "alice", "/user/alice/a", 20, storage.ReserveOptions{})
	require.NoError(t, err)

	// a reservation for a DIFFERENT path still hits the object-count limit.
	_, err = s.ReserveUpload(ctx, "alice", "/user/alice/b", 5, storage.ReserveOptions{})
	assert.ErrorIs(t, err, anchorerrors.ErrQuotaExceeded)
}

func TestReserveUploadWidensExistingReservationForSamePath(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	first, err := s.ReserveUpload(ctx, "alice", "/user/alice/a", 10, storage.ReserveOptions{})
	require.NoError(t, err)

	second, err := s.ReserveUpload(ctx, "alice", "/user/alice/a", 25, storage.ReserveOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(25), second.Size)
}

func TestCommitUploadRemovesReservation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	res, err := s.ReserveUpload(ctx, "alice", "/user/alice/a", 10, storage.ReserveOptions{})
	require.NoError(t, err)

	require.NoError(t, s.CommitUpload(ctx, res.ID))

	status, err := s.GetQuotaStatus(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.TotalSize)
}

func TestReleaseUploadFreesReservedQuota(t *testing.T) {
	s := NewStoreWithLimits(storage.QuotaLimits{MaxObjectSize: 1000, MaxObjectsPerUser: 100, MaxStoragePerUser: 10})
	ctx := context.Background()
	res, err := s.ReserveUpload(ctx, "alice", "/user/alice/a", 10, storage.ReserveOptions{})
	require.NoError(t, err)

	require.NoError(t, s.ReleaseUpload(ctx, res.ID))

	_, err = s.ReserveUpload(ctx, "alice", "/user/alice/b", 10, storage.ReserveOptions{})
	assert.NoError(t, err)
}

func TestCommitAndReleaseAreIdempotentForUnknownID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	assert.NoError(t, s.CommitUpload(ctx, "does-not-exist"))
	assert.NoError(t, s.ReleaseUpload(ctx, "does-not-exist"))
}

func TestReserveUploadExpiresAfterTTL(t *testing.T) {
	s := NewStoreWithLimits(storage.QuotaLimits{MaxObjectSize: 1000, MaxObjectsPerUser: 100, MaxStoragePerUser: 10})
	ctx := context.Background()
	_, err := s.ReserveUpload(ctx, "alice", "/user/alice/a", 10, storage.ReserveOptions{TTL: time.Millisecond})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = s.ReserveUpload(ctx, "alice", "/user/alice/b", 10, storage.ReserveOptions{})
	assert.NoError(t, err)
}
