// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes Prometheus instrumentation for the Cyberdesk
// reconciliation state machine and its watchers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcilesTotal tracks reconciler invocations by the transition taken.
	ReconcilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyberdesk_reconciles_total",
			Help: "Total number of Cyberdesk reconcile invocations",
		},
		[]string{"transition"},
	)

	// PoolClaimsTotal tracks warm-pool claim attempts by outcome.
	PoolClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyberdesk_pool_claims_total",
			Help: "Total number of warm-pool claim attempts",
		},
		[]string{"outcome"},
	)

	// CloneOperationsTotal tracks clone operations by terminal phase.
	CloneOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyberdesk_clone_operations_total",
			Help: "Total number of clone operations by terminal phase",
		},
		[]string{"phase"},
	)

	// CloneDuration tracks wall-clock time from clone creation to a terminal phase.
	CloneDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cyberdesk_clone_duration_seconds",
			Help:    "Duration of clone operations from creation to terminal phase",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10), // 5s to ~43min
		},
	)

	// GatewayNotificationsTotal tracks readiness notifications by result.
	GatewayNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyberdesk_gateway_notifications_total",
			Help: "Total number of gateway readiness notifications",
		},
		[]string{"result"},
	)

	// StatusStoreWritesTotal tracks external status-store writes by result.
	StatusStoreWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cyberdesk_status_store_writes_total",
			Help: "Total number of external status store writes",
		},
		[]string{"result"},
	)

	// ActiveDesktops tracks desktops currently bound to a VM.
	ActiveDesktops = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cyberdesk_active_desktops",
			Help: "Number of Cyberdesk resources currently bound to a VM",
		},
	)

	// ExpiredDesktopsTotal tracks desktops torn down by the expiry timer.
	ExpiredDesktopsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cyberdesk_expired_desktops_total",
			Help: "Total number of desktops deleted by the expiry timer",
		},
	)
)

// RecordReconcile records a reconciler invocation and the transition it took.
func RecordReconcile(transition string) {
	ReconcilesTotal.WithLabelValues(transition).Inc()
}

// RecordPoolClaim records a pool claim attempt outcome ("claimed", "empty", "list_error").
func RecordPoolClaim(outcome string) {
	PoolClaimsTotal.WithLabelValues(outcome).Inc()
}

// RecordCloneTerminal records a clone operation reaching a terminal phase.
func RecordCloneTerminal(phase string, durationSeconds float64) {
	CloneOperationsTotal.WithLabelValues(phase).Inc()
	CloneDuration.Observe(durationSeconds)
}

// RecordGatewayNotification records a readiness notification attempt.
func RecordGatewayNotification(result string) {
	GatewayNotificationsTotal.WithLabelValues(result).Inc()
}

// RecordStatusStoreWrite records an external status-store write attempt.
func RecordStatusStoreWrite(result string) {
	StatusStoreWritesTotal.WithLabelValues(result).Inc()
}
