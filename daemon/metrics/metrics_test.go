// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordReconcile(t *testing.T) {
	ReconcilesTotal.Reset()

	RecordReconcile("bound")
	RecordReconcile("bound")
	RecordReconcile("assign")

	if got := testutil.ToFloat64(ReconcilesTotal.WithLabelValues("bound")); got != 2 {
		t.Errorf("ReconcilesTotal bound = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ReconcilesTotal.WithLabelValues("assign")); got != 1 {
		t.Errorf("ReconcilesTotal assign = %v, want 1", got)
	}
}

func TestRecordPoolClaim(t *testing.T) {
	PoolClaimsTotal.Reset()

	RecordPoolClaim("claimed")
	RecordPoolClaim("empty")
	RecordPoolClaim("empty")

	if got := testutil.ToFloat64(PoolClaimsTotal.WithLabelValues("claimed")); got != 1 {
		t.Errorf("PoolClaimsTotal claimed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(PoolClaimsTotal.WithLabelValues("empty")); got != 2 {
		t.Errorf("PoolClaimsTotal empty = %v, want 2", got)
	}
}

func TestRecordCloneTerminal(t *testing.T) {
	CloneOperationsTotal.Reset()

	RecordCloneTerminal("succeeded", 12.5)
	RecordCloneTerminal("failed", 0)

	if got := testutil.ToFloat64(CloneOperationsTotal.WithLabelValues("succeeded")); got != 1 {
		t.Errorf("CloneOperationsTotal succeeded = %v, want 1", got)
	}

	count := testutil.CollectAndCount(CloneDuration)
	if count == 0 {
		t.Error("CloneDuration did not collect any metrics")
	}
}

func TestRecordGatewayNotification(t *testing.T) {
	GatewayNotificationsTotal.Reset()

	RecordGatewayNotification("sent")

	if got := testutil.ToFloat64(GatewayNotificationsTotal.WithLabelValues("sent")); got != 1 {
		t.Errorf("GatewayNotificationsTotal sent = %v, want 1", got)
	}
}

func TestRecordStatusStoreWrite(t *testing.T) {
	StatusStoreWritesTotal.Reset()

	RecordStatusStoreWrite("ok")
	RecordStatusStoreWrite("write_error")

	if got := testutil.ToFloat64(StatusStoreWritesTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("StatusStoreWritesTotal ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(StatusStoreWritesTotal.WithLabelValues("write_error")); got != 1 {
		t.Errorf("StatusStoreWritesTotal write_error = %v, want 1", got)
	}
}
