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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ObjectOperations tracks backend operations by kind and outcome.
	ObjectOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "operations_total",
			Help:      "Total number of object store operations",
		},
		[]string{"operation", "status"}, // put/get/delete/search, ok/not_found/error
	)

	// ObjectCount tracks the total number of stored objects.
	ObjectCount = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "count",
			Help:      "Number of objects currently stored",
		},
	)

	// ObjectOperationDuration tracks backend operation latency.
	ObjectOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "operation_duration_seconds",
			Help:      "Object store operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to 1.6s
		},
		[]string{"operation"},
	)

	// ObjectSize tracks ciphertext sizes written to the backend.
	ObjectSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "objects",
			Name:      "size_bytes",
			Help:      "Size in bytes of ciphertext written to the backend",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 12), // 64B to 256MB
		},
	)
)
