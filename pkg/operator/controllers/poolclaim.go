// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	kubevirtv1 "kubevirt.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"cyberdesk-operator/daemon/metrics"
	"cyberdesk-operator/pkg/operator"
	"cyberdesk-operator/pkg/operator/vm"
)

const poolClaimNotifyTimeout = 5 * time.Second

// claimFromPool lists warm candidates and attempts to claim the first one
// whose patch succeeds, returning its name. Returning ("", nil) means the
// pool had nothing usable right now, not an error.
func claimFromPool(ctx context.Context, c *operator.Context, namespace string) (string, error) {
	var candidates kubevirtv1.VirtualMachineList
	if err := c.Client.List(ctx, &candidates,
		client.InNamespace(namespace),
		client.MatchingLabels{vm.LabelPoolWarm: vm.PoolWarmReady},
	); err != nil {
		metrics.RecordPoolClaim("list_error")
		return "", fmt.Errorf("failed to list warm pool VMs: %w", err)
	}

	for i := range candidates.Items {
		candidate := &candidates.Items[i]

		if candidate.Labels[vm.LabelPoolInUse] == vm.PoolInUseTrue {
			continue
		}
		if candidate.Status.PrintableStatus != kubevirtv1.VirtualMachineStatusRunning {
			continue
		}

		original := candidate.DeepCopy()
		candidate.OwnerReferences = nil
		if candidate.Labels == nil {
			candidate.Labels = map[string]string{}
		}
		candidate.Labels[vm.LabelPoolInUse] = vm.PoolInUseTrue
		candidate.Labels[vm.LabelPoolWarm] = vm.PoolWarmClaimed

		if err := c.Client.Patch(ctx, candidate, client.MergeFrom(original)); err != nil {
			// Another reconciler may have won the race, or the VM may have
			// been deleted out from under us. Either way: try the next one.
			c.Log.Debug("pool claim patch failed, trying next candidate", "vm", candidate.Name, "error", err)
			continue
		}

		metrics.RecordPoolClaim("claimed")
		return candidate.Name, nil
	}

	metrics.RecordPoolClaim("empty")
	return "", nil
}

// notifyIfAlreadyReady performs a best-effort immediate readiness check and
// gateway notification right after a pool claim or a clone success. It never
// blocks or fails the reconcile: the readiness-notifier watcher is the
// authoritative mechanism for desktops that aren't ready yet at that point.
func notifyIfAlreadyReady(ctx context.Context, c *operator.Context, namespace, vmName, desktopName string) {
	vmi := &kubevirtv1.VirtualMachineInstance{}
	if err := c.Client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: vmName}, vmi); err != nil {
		if !apierrors.IsNotFound(err) {
			c.Log.Debug("post-claim readiness check failed", "vm", vmName, "error", err)
		}
		return
	}

	if !vm.IsRunningWithIP(vmi) {
		return
	}

	if vm.ReadyConditionStatus(vmi) == corev1.ConditionTrue {
		c.Gateway.NotifyReady(ctx, desktopName, poolClaimNotifyTimeout)
	}
}
