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
	// ReservationsCreated tracks upload reservations opened.
	ReservationsCreated = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reservations",
			Name:      "created_total",
			Help:      "Total number of upload reservations created or widened",
		},
		[]string{"status"}, // created, widened, quota_exceeded
	)

	// ReservationsActive tracks currently live reservations.
	ReservationsActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reservations",
			Name:      "active",
			Help:      "Number of currently live upload reservations",
		},
	)

	// ReservationsExpired tracks reservations pruned by TTL.
	ReservationsExpired = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reservations",
			Name:      "expired_total",
			Help:      "Total number of upload reservations pruned by TTL",
		},
	)

	// ReservationsResolved tracks reservations ending in commit or release.
	ReservationsResolved = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reservations",
			Name:      "resolved_total",
			Help:      "Total number of upload reservations committed or released",
		},
		[]string{"outcome"}, // commit, release
	)

	// ReservationDuration tracks how long a reservation lived before it
	// was resolved.
	ReservationDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reservations",
			Name:      "lifetime_seconds",
			Help:      "Time a reservation stayed open before commit or release",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
		},
	)
)
