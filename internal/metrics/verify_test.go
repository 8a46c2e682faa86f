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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistration(t *testing.T) {
	if ReservationsCreated == nil {
		t.Error("ReservationsCreated metric is nil")
	}
	if ReservationsActive == nil {
		t.Error("ReservationsActive metric is nil")
	}
	if ReservationsExpired == nil {
		t.Error("ReservationsExpired metric is nil")
	}
	if ReservationDuration == nil {
		t.Error("ReservationDuration metric is nil")
	}

	if ObjectOperations == nil {
		t.Error("ObjectOperations metric is nil")
	}
	if ObjectCount == nil {
		t.Error("ObjectCount metric is nil")
	}
	if ObjectSize == nil {
		t.Error("ObjectSize metric is nil")
	}

	if CryptoOperations == nil {
		t.Error("CryptoOperations metric is nil")
	}

	if RequestsHandled == nil {
		t.Error("RequestsHandled metric is nil")
	}
	if SignatureVerifications == nil {
		t.Error("SignatureVerifications metric is nil")
	}
}

func TestMetricsIncrement(t *testing.T) {
	ReservationsCreated.WithLabelValues("created").Inc()
	ReservationsActive.Inc()
	ReservationsExpired.Inc()
	ReservationDuration.Observe(0.5)

	ObjectOperations.WithLabelValues("put", "ok").Inc()
	ObjectCount.Set(1)
	ObjectSize.Observe(1024)

	CryptoOperations.WithLabelValues("encrypt", "ed25519").Inc()
	CryptoOperations.WithLabelValues("decrypt", "ed25519").Inc()

	RequestsHandled.WithLabelValues("object", "200").Inc()
	SignatureVerifications.WithLabelValues("valid").Inc()

	if count := testutil.CollectAndCount(ReservationsCreated); count == 0 {
		t.Error("ReservationsCreated has no metrics collected")
	}
	if count := testutil.CollectAndCount(ObjectOperations); count == 0 {
		t.Error("ObjectOperations has no metrics collected")
	}
	if count := testutil.CollectAndCount(CryptoOperations); count == 0 {
		t.Error("CryptoOperations has no metrics collected")
	}
	if count := testutil.CollectAndCount(RequestsHandled); count == 0 {
		t.Error("RequestsHandled has no metrics collected")
	}
}

func TestCollectorSnapshot(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordCryptoOperation(100 * time.Microsecond)
	mc.RecordObjectOperation(true, 200*time.Microsecond)
	mc.RecordObjectOperation(false, 400*time.Microsecond)
	mc.RecordReservationOpened()
	mc.RecordReservationResolved(true, time.Millisecond)
	mc.RecordSignatureCheck(true, 50*time.Microsecond)
	mc.RecordSignatureCheck(false, 50*time.Microsecond)

	snap := mc.GetSnapshot()
	if snap.CryptoOperationCount != 1 {
		t.Errorf("CryptoOperationCount = %d, want 1", snap.CryptoOperationCount)
	}
	if snap.ObjectOperationCount != 2 || snap.SuccessfulOperations != 1 || snap.FailedOperations != 1 {
		t.Errorf("object operation counters = %d/%d/%d, want 2/1/1",
			snap.ObjectOperationCount, snap.SuccessfulOperations, snap.FailedOperations)
	}
	if snap.ReservationsOpened != 1 || snap.ReservationsCommitted != 1 {
		t.Errorf("reservation counters = %d/%d, want 1/1", snap.ReservationsOpened, snap.ReservationsCommitted)
	}
	if rate := snap.GetObjectSuccessRate(); rate != 50 {
		t.Errorf("GetObjectSuccessRate() = %v, want 50", rate)
	}
	if rate := snap.GetSignatureFailureRate(); rate != 50 {
		t.Errorf("GetSignatureFailureRate() = %v, want 50", rate)
	}

	mc.Reset()
	if snap := mc.GetSnapshot(); snap.ObjectOperationCount != 0 {
		t.Errorf("ObjectOperationCount after Reset = %d, want 0", snap.ObjectOperationCount)
	}
}
