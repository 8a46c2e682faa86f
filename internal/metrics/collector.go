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
	"sync"
	"time"
)

// MetricsCollector accumulates in-process timing samples for the anchor
// server, independent of the Prometheus registry. Used by callers that
// want a point-in-time snapshot (e.g. a debug endpoint) without scraping.
type MetricsCollector struct {
	mu sync.RWMutex

	// Counters
	CryptoOperationCount  int64
	ObjectOperationCount  int64
	SuccessfulOperations  int64
	FailedOperations      int64
	ReservationsOpened    int64
	ReservationsCommitted int64
	ReservationsReleased  int64
	SignatureChecks       int64
	SignatureFailures     int64

	// Timing metrics (in microseconds)
	CryptoOperationTimes []int64
	ObjectOperationTimes []int64
	ReservationLifetimes []int64
	SignatureCheckTimes  []int64

	// Start time for uptime calculation
	startTime time.Time

	// Configuration
	maxTimingSamples int
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startTime:        time.Now(),
		maxTimingSamples: 1000, // Keep last 1000 samples for each timing metric
	}
}

// RecordCryptoOperation records a sign/verify/encrypt/decrypt operation.
func (mc *MetricsCollector) RecordCryptoOperation(duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.CryptoOperationCount++
	mc.recordTiming(&mc.CryptoOperationTimes, duration)
}

// RecordObjectOperation records a backend put/get/delete/search call.
func (mc *MetricsCollector) RecordObjectOperation(success bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.ObjectOperationCount++
	if success {
		mc.SuccessfulOperations++
	} else {
		mc.FailedOperations++
	}
	mc.recordTiming(&mc.ObjectOperationTimes, duration)
}

// RecordReservationOpened records a new or widened upload reservation.
func (mc *MetricsCollector) RecordReservationOpened() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.ReservationsOpened++
}

// RecordReservationResolved records a reservation commit or release and
// its lifetime from creation to resolution.
func (mc *MetricsCollector) RecordReservationResolved(committed bool, lifetime time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if committed {
		mc.ReservationsCommitted++
	} else {
		mc.ReservationsReleased++
	}
	mc.recordTiming(&mc.ReservationLifetimes, lifetime)
}

// RecordSignatureCheck records a request signature verification.
func (mc *MetricsCollector) RecordSignatureCheck(valid bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.SignatureChecks++
	if !valid {
		mc.SignatureFailures++
	}
	mc.recordTiming(&mc.SignatureCheckTimes, duration)
}

// recordTiming records a timing sample, keeping only the most recent
// maxTimingSamples entries.
func (mc *MetricsCollector) recordTiming(timings *[]int64, duration time.Duration) {
	microseconds := duration.Microseconds()
	*timings = append(*timings, microseconds)

	if len(*timings) > mc.maxTimingSamples {
		*timings = (*timings)[len(*timings)-mc.maxTimingSamples:]
	}
}

// GetSnapshot returns a snapshot of current metrics.
func (mc *MetricsCollector) GetSnapshot() *MetricsSnapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return &MetricsSnapshot{
		Timestamp:                time.Now(),
		Uptime:                   time.Since(mc.startTime),
		CryptoOperationCount:     mc.CryptoOperationCount,
		ObjectOperationCount:     mc.ObjectOperationCount,
		SuccessfulOperations:     mc.SuccessfulOperations,
		FailedOperations:         mc.FailedOperations,
		ReservationsOpened:       mc.ReservationsOpened,
		ReservationsCommitted:    mc.ReservationsCommitted,
		ReservationsReleased:     mc.ReservationsReleased,
		SignatureChecks:          mc.SignatureChecks,
		SignatureFailures:        mc.SignatureFailures,
		AvgCryptoOperationTime:   calculateAverage(mc.CryptoOperationTimes),
		AvgObjectOperationTime:   calculateAverage(mc.ObjectOperationTimes),
		AvgReservationLifetime:   calculateAverage(mc.ReservationLifetimes),
		AvgSignatureCheckTime:    calculateAverage(mc.SignatureCheckTimes),
		P95CryptoOperationTime:   calculatePercentile(mc.CryptoOperationTimes, 95),
		P95ObjectOperationTime:   calculatePercentile(mc.ObjectOperationTimes, 95),
		P95ReservationLifetime:   calculatePercentile(mc.ReservationLifetimes, 95),
		P95SignatureCheckTime:    calculatePercentile(mc.SignatureCheckTimes, 95),
	}
}

// Reset clears all accumulated metrics.
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.CryptoOperationCount = 0
	mc.ObjectOperationCount = 0
	mc.SuccessfulOperations = 0
	mc.FailedOperations = 0
	mc.ReservationsOpened = 0
	mc.ReservationsCommitted = 0
	mc.ReservationsReleased = 0
	mc.SignatureChecks = 0
	mc.SignatureFailures = 0

	mc.CryptoOperationTimes = nil
	mc.ObjectOperationTimes = nil
	mc.ReservationLifetimes = nil
	mc.SignatureCheckTimes = nil

	mc.startTime = time.Now()
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Timestamp time.Time
	Uptime    time.Duration

	// Counters
	CryptoOperationCount  int64
	ObjectOperationCount  int64
	SuccessfulOperations  int64
	FailedOperations      int64
	ReservationsOpened    int64
	ReservationsCommitted int64
	ReservationsReleased  int64
	SignatureChecks       int64
	SignatureFailures     int64

	// Timing averages (microseconds)
	AvgCryptoOperationTime float64
	AvgObjectOperationTime float64
	AvgReservationLifetime float64
	AvgSignatureCheckTime  float64

	// 95th percentile timings (microseconds)
	P95CryptoOperationTime int64
	P95ObjectOperationTime int64
	P95ReservationLifetime int64
	P95SignatureCheckTime  int64
}

// GetObjectSuccessRate returns the backend operation success rate as a percentage.
func (ms *MetricsSnapshot) GetObjectSuccessRate() float64 {
	if ms.ObjectOperationCount == 0 {
		return 0
	}
	return float64(ms.SuccessfulOperations) / float64(ms.ObjectOperationCount) * 100
}

// GetSignatureFailureRate returns the request signature failure rate as a percentage.
func (ms *MetricsSnapshot) GetSignatureFailureRate() float64 {
	if ms.SignatureChecks == 0 {
		return 0
	}
	return float64(ms.SignatureFailures) / float64(ms.SignatureChecks) * 100
}

// Helper functions

func calculateAverage(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func calculatePercentile(values []int64, percentile int) int64 {
	if len(values) == 0 {
		return 0
	}

	index := len(values) * percentile / 100
	if index >= len(values) {
		index = len(values) - 1
	}

	sorted := make([]int64, len(values))
	copy(sorted, values)

	for i := 0; i < len(sorted)-1; i++ {
		for j := 0; j < len(sorted)-i-1; j++ {
			if sorted[j] > sorted[j+1] {
				sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
			}
		}
	}

	return sorted[index]
}

// globalCollector is a process-wide collector for callers that don't want
// to thread a *MetricsCollector through every call site.
var globalCollector = NewMetricsCollector()

// GetGlobalCollector returns the global metrics collector.
func GetGlobalCollector() *MetricsCollector {
	return globalCollector
}
