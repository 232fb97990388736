// SPDX-License-Identifier: LGPL-3.0-or-later

// Package outcome gives handlers a return-value vocabulary for retryable vs.
// permanent failure, replacing exception-typed control flow with an explicit
// result every caller must switch on.
package outcome

import (
	"time"

	ctrl "sigs.k8s.io/controller-runtime"
)

type kind int

const (
	kindDone kind = iota
	kindRetry
	kindFail
)

// Outcome is the result of a single handler step.
type Outcome struct {
	kind  kind
	after time.Duration
	err   error
}

// Done reports that the handler made as much progress as it can for this
// invocation and needs no further scheduling.
func Done() Outcome {
	return Outcome{kind: kindDone}
}

// Requeue reports that the handler made progress and wants to be invoked again
// immediately (used after a forward status transition, to pick up the next step
// without waiting for an external watch event).
func Requeue() Outcome {
	return Outcome{kind: kindRetry, after: 0}
}

// Retry reports a transient condition; the caller should be invoked again after
// the given delay.
func Retry(after time.Duration) Outcome {
	return Outcome{kind: kindRetry, after: after}
}

// RetryError is Retry with an error attached for logging; it does not halt
// reconciliation (controller-runtime retries on returned error too, but callers
// use this when they want a specific backoff rather than the default one).
func RetryError(after time.Duration, err error) Outcome {
	return Outcome{kind: kindRetry, after: after, err: err}
}

// Fail reports a permanent condition. Reconciliation halts for the resource
// until its next external change.
func Fail(err error) Outcome {
	return Outcome{kind: kindFail, err: err}
}

// IsFail reports whether this outcome is permanent.
func (o Outcome) IsFail() bool {
	return o.kind == kindFail
}

// Err returns the attached error, if any.
func (o Outcome) Err() error {
	return o.err
}

// ToResult adapts the outcome to controller-runtime's (ctrl.Result, error) pair,
// the single point where the return-value discipline described in the design
// notes meets controller-runtime's native retry mechanism.
func (o Outcome) ToResult() (ctrl.Result, error) {
	switch o.kind {
	case kindDone:
		return ctrl.Result{}, nil
	case kindRetry:
		if o.after == 0 {
			return ctrl.Result{Requeue: true}, nil
		}
		return ctrl.Result{RequeueAfter: o.after}, nil
	case kindFail:
		// Permanent failures are surfaced via logs and status, not by returning
		// an error: controller-runtime would otherwise requeue with backoff,
		// contradicting "halt until the next external change".
		return ctrl.Result{}, nil
	default:
		return ctrl.Result{}, nil
	}
}
