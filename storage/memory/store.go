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

// Package memory implements storage.Backend with an in-memory,
// mutex-guarded map. It exists for tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sage-x-project/anchor/anchorerrors"
	"github.com/sage-x-project/anchor/storage"
)

const defaultReservationTTL = 5 * time.Minute

// DefaultQuotaLimits mirrors the anchor server's own quota defaults.
func DefaultQuotaLimits() storage.QuotaLimits {
	return storage.QuotaLimits{
		MaxObjectSize:     10 << 20,
		MaxObjectsPerUser: 1000,
		MaxStoragePerUser: 100 << 20,
		MaxSearchLimit:    100,
		MaxSignedURLTTL:   24 * time.Hour,
	}
}

type record struct {
	data []byte
	meta storage.Object
}

// Store is a mutex-guarded in-memory storage.Backend: one lock family for
// objects, one for reservations, deep copies on every read.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*record // keyed by path

	resMu        sync.Mutex
	reservations map[string]*storage.Reservation // keyed by id
	byOwnerPath  map[string]string                // "owner\x00path" -> reservation id

	limits storage.QuotaLimits
}

// NewStore creates an empty in-memory backend using DefaultQuotaLimits.
func NewStore() *Store {
	return NewStoreWithLimits(DefaultQuotaLimits())
}

// NewStoreWithLimits creates an empty in-memory backend with custom quota
// limits, used as the fallback when ReserveOptions.Limits is nil.
func NewStoreWithLimits(limits storage.QuotaLimits) *Store {
	return &Store{
		objects:      make(map[string]*record),
		reservations: make(map[string]*storage.Reservation),
		byOwnerPath:  make(map[string]string),
		limits:       limits,
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) Put(ctx context.Context, path string, data []byte, opts storage.PutOptions) (storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.objects[path]

	meta := storage.Object{
		Path:       path,
		Owner:      opts.Owner,
		Tags:       append([]string(nil), opts.Tags...),
		Visibility: opts.Visibility,
		Size:       int64(len(data)),
		CreatedAt:  now,
	}
	if ok {
		meta.CreatedAt = existing.meta.CreatedAt
		meta.UpdatedAt = now
	}

	cp := append([]byte(nil), data...)
	s.objects[path] = &record{data: cp, meta: meta}
	return meta, nil
}

func (s *Store) Get(ctx context.Context, path string) (*storage.GetResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.objects[path]
	if !ok {
		return nil, nil
	}
	return &storage.GetResult{
		Data:     append([]byte(nil), rec.data...),
		Metadata: rec.meta,
	}, nil
}

func (s *Store) Delete(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[path]; !ok {
		return false, nil
	}
	delete(s.objects, path)
	return true, nil
}

func (s *Store) Search(ctx context.Context, criteria storage.SearchCriteria, pagination storage.Pagination) (storage.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []storage.Object
	for path, rec := range s.objects {
		if !matchesCriteria(path, rec.meta, criteria) {
			continue
		}
		matched = append(matched, rec.meta)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Path < matched[j].Path })

	start := 0
	if pagination.Cursor != "" {
		for i, obj := range matched {
			if obj.Path > pagination.Cursor {
				start = i
				break
			}
			start = i + 1
		}
	}
	if start > len(matched) {
		start = len(matched)
	}

	limit := pagination.Limit
	if limit <= 0 || limit > len(matched)-start {
		limit = len(matched) - start
	}
	page := matched[start : start+limit]

	result := storage.SearchResult{Results: page}
	if start+limit < len(matched) {
		result.NextCursor = page[len(page)-1].Path
	}
	return result, nil
}

func matchesCriteria(path string, meta storage.Object, c storage.SearchCriteria) bool {
	if c.PathPrefix != "" {
		if !strings.HasPrefix(path, c.PathPrefix) {
			return false
		}
		if !c.Recursive {
			rest := strings.TrimPrefix(path, c.PathPrefix)
			if strings.Contains(rest, "/") {
				return false
			}
		}
	}
	if len(c.Tags) > 0 && !anyTagMatches(meta.Tags, c.Tags) {
		return false
	}
	if c.Name != "" {
		segs := strings.Split(path, "/")
		last := segs[len(segs)-1]
		if !strings.Contains(last, c.Name) {
			return false
		}
	}
	if c.Owner != "" && meta.Owner != c.Owner {
		return false
	}
	if c.HasVisibility && meta.Visibility != c.Visibility {
		return false
	}
	return true
}

func anyTagMatches(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

func (s *Store) GetQuotaStatus(ctx context.Context, owner string) (storage.QuotaStatus, error) {
	s.pruneExpired()

	s.mu.RLock()
	var count, size int64
	for _, rec := range s.objects {
		if rec.meta.Owner == owner {
			count++
			size += rec.meta.Size
		}
	}
	s.mu.RUnlock()

	s.resMu.Lock()
	var reserved int64
	for _, r := range s.reservations {
		if r.Owner == owner {
			reserved += r.Size
		}
	}
	s.resMu.Unlock()

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

func ownerPathKey(owner, path string) string { return owner + "\x00" + path }

func (s *Store) pruneExpired() {
	s.resMu.Lock()
	defer s.resMu.Unlock()
	now := time.Now()
	for id, r := range s.reservations {
		if now.After(r.ExpiresAt) {
			delete(s.reservations, id)
			delete(s.byOwnerPath, ownerPathKey(r.Owner, r.Path))
		}
	}
}

func (s *Store) ReserveUpload(ctx context.Context, owner, path string, size int64, opts storage.ReserveOptions) (storage.Reservation, error) {
	if size < 0 {
		return storage.Reservation{}, anchorerrors.ErrInvalidArgument.WithMessage("negative reservation size")
	}
	s.pruneExpired()

	limits := s.limits
	if opts.Limits != nil {
		limits = *opts.Limits
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultReservationTTL
	}

	s.mu.RLock()
	existingObj, hasObj := s.objects[path]
	s.mu.RUnlock()
	var onDiskSize int64
	if hasObj {
		onDiskSize = existingObj.meta.Size
	}
	delta := size - onDiskSize
	if delta < 0 {
		delta = 0
	}

	s.resMu.Lock()
	defer s.resMu.Unlock()

	key := ownerPathKey(owner, path)
	now := time.Now()

	if id, ok := s.byOwnerPath[key]; ok {
		existing := s.reservations[id]
		widened := delta
		if existing.Size > widened {
			widened = existing.Size
		}
		if err := s.checkQuotaLocked(owner, widened, hasObj, limits); err != nil {
			return storage.Reservation{}, err
		}
		existing.Size = widened
		existing.ExpiresAt = now.Add(ttl)
		return *existing, nil
	}

	if err := s.checkQuotaLocked(owner, delta, hasObj, limits); err != nil {
		return storage.Reservation{}, err
	}

	res := storage.Reservation{
		ID:        uuid.NewString(),
		Owner:     owner,
		Path:      path,
		Size:      delta,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.reservations[res.ID] = &res
	s.byOwnerPath[key] = res.ID
	return res, nil
}

// checkQuotaLocked must be called with resMu held. isExistingObject tells
// it whether the reservation's path is already an object owned by owner —
// an overwrite of an existing path adds no new object, so the object-count
// check must not charge it.
func (s *Store) checkQuotaLocked(owner string, incrementalSize int64, isExistingObject bool, limits storage.QuotaLimits) error {
	s.mu.RLock()
	var count, size int64
	for _, rec := range s.objects {
		if rec.meta.Owner == owner {
			count++
			size += rec.meta.Size
		}
	}
	s.mu.RUnlock()

	var reserved int64
	for _, r := range s.reservations {
		if r.Owner == owner {
			reserved += r.Size
		}
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
	s.resMu.Lock()
	defer s.resMu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil // idempotent w.r.t. unknown IDs
	}
	delete(s.reservations, id)
	delete(s.byOwnerPath, ownerPathKey(r.Owner, r.Path))
	return nil
}

func (s *Store) ReleaseUpload(ctx context.Context, id string) error {
	s.resMu.Lock()
	defer s.resMu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil
	}
	delete(s.reservations, id)
	delete(s.byOwnerPath, ownerPathKey(r.Owner, r.Path))
	return nil
}

var _ storage.Backend = (*Store)(nil)
