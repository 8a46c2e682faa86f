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

package storage

import "context"

// Backend is the storage contract an anchor server is built on.
// Implementations are conceptually transactional: a PUT observed after a
// commit must be visible to every subsequent Get on that path.
type Backend interface {
	Put(ctx context.Context, path string, data []byte, opts PutOptions) (Object, error)
	Get(ctx context.Context, path string) (*GetResult, error)
	Delete(ctx context.Context, path string) (bool, error)
	Search(ctx context.Context, criteria SearchCriteria, pagination Pagination) (SearchResult, error)
	GetQuotaStatus(ctx context.Context, owner string) (QuotaStatus, error)

	ReserveUpload(ctx context.Context, owner, path string, size int64, opts ReserveOptions) (Reservation, error)
	CommitUpload(ctx context.Context, id string) error
	ReleaseUpload(ctx context.Context, id string) error

	Close() error
}
