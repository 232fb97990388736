// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	cyberdeskv1alpha1 "cyberdesk-operator/pkg/apis/cyberdesk/v1alpha1"
	"cyberdesk-operator/daemon/metrics"
	"cyberdesk-operator/pkg/operator"
	"cyberdesk-operator/pkg/operator/outcome"
	"cyberdesk-operator/pkg/operator/vm"
)

const (
	cloneBaselineDelay = 5 * time.Second
	cloneMaxAttempts   = 20
)

// reconcileCloning gets or creates the clone object by its deterministic
// name, then dispatches on its reported phase.
func reconcileCloning(ctx context.Context, c *operator.Context, desktop *cyberdeskv1alpha1.Cyberdesk) outcome.Outcome {
	namespace := c.Config.Cluster.Namespace
	cloneName := desktop.Status.Cyberdesk.CloneOpName

	clone := vm.NewCloneLookupKey()
	err := c.Client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: cloneName}, clone)
	switch {
	case apierrors.IsNotFound(err):
		created := vm.NewCloneObject(namespace, cloneName, c.Config.Cluster.GoldenSnapshot, desktop.Name)
		if err := c.Client.Create(ctx, created); err != nil {
			return outcome.RetryError(cloneBaselineDelay, fmt.Errorf("failed to create clone object %q: %w", cloneName, err))
		}
		return outcome.Retry(cloneBaselineDelay)
	case err != nil:
		return outcome.RetryError(cloneBaselineDelay, fmt.Errorf("failed to fetch clone object %q: %w", cloneName, err))
	}

	phase := vm.ClonePhase(clone)

	switch phase {
	case vm.ClonePhaseSucceeded:
		if err := finalizeVM(ctx, c, namespace, desktop.Name); err != nil {
			return outcome.RetryError(cloneBaselineDelay, err)
		}

		now := metav1.Now()
		expiry := metav1.NewTime(now.Add(time.Duration(desktop.Spec.TimeoutMs) * time.Millisecond))
		desktop.Status.Cyberdesk = cyberdeskv1alpha1.CyberdeskState{
			VMRef:      desktop.Name,
			Phase:      cyberdeskv1alpha1.PhaseCloned,
			StartTime:  &now,
			ExpiryTime: &expiry,
		}
		if err := c.Client.Status().Update(ctx, desktop); err != nil {
			return outcome.RetryError(cloneBaselineDelay, fmt.Errorf("failed to record clone success: %w", err))
		}

		metrics.RecordCloneTerminal("succeeded", time.Since(clone.GetCreationTimestamp().Time).Seconds())
		metrics.ActiveDesktops.Inc()
		notifyIfAlreadyReady(ctx, c, namespace, desktop.Name, desktop.Name)
		return outcome.Done()

	case vm.ClonePhaseFailed:
		desktop.Status.Cyberdesk.Phase = cyberdeskv1alpha1.PhaseCloneFailed
		desktop.Status.Cyberdesk.CloneOpName = ""
		desktop.Status.Cyberdesk.CloneAttempts = 0
		if err := c.Client.Status().Update(ctx, desktop); err != nil {
			return outcome.RetryError(cloneBaselineDelay, fmt.Errorf("failed to record clone failure: %w", err))
		}
		metrics.RecordCloneTerminal("failed", time.Since(clone.GetCreationTimestamp().Time).Seconds())
		return outcome.Fail(fmt.Errorf("clone operation %q reported Failed", cloneName))

	case vm.ClonePhaseUnknown:
		return outcome.Retry(cloneBaselineDelay)

	default:
		// Any in-progress phase: empty, SnapshotInProgress, RestoreInProgress, etc.
		attempts := desktop.Status.Cyberdesk.CloneAttempts + 1
		desktop.Status.Cyberdesk.CloneAttempts = attempts
		if err := c.Client.Status().Update(ctx, desktop); err != nil {
			return outcome.RetryError(cloneBaselineDelay, fmt.Errorf("failed to record clone attempt count: %w", err))
		}

		if attempts >= cloneMaxAttempts {
			if err := c.Client.Delete(ctx, clone); err != nil && !apierrors.IsNotFound(err) {
				return outcome.RetryError(cloneBaselineDelay, fmt.Errorf("failed to delete timed-out clone %q: %w", cloneName, err))
			}
			desktop.Status.Cyberdesk.Phase = cyberdeskv1alpha1.PhaseCloneTimeout
			desktop.Status.Cyberdesk.CloneOpName = ""
			desktop.Status.Cyberdesk.CloneAttempts = 0
			if err := c.Client.Status().Update(ctx, desktop); err != nil {
				return outcome.RetryError(cloneBaselineDelay, fmt.Errorf("failed to record clone timeout: %w", err))
			}
			metrics.RecordCloneTerminal("timeout", time.Since(clone.GetCreationTimestamp().Time).Seconds())
			return outcome.Fail(fmt.Errorf("clone operation %q exceeded %d attempts", cloneName, cloneMaxAttempts))
		}

		return outcome.Retry(cloneBaselineDelay)
	}
}
