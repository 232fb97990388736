// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	kubevirtv1 "kubevirt.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"cyberdesk-operator/pkg/operator"
	"cyberdesk-operator/pkg/operator/vm"
)

// finalizeVM applies the post-bind finalization contract: identity
// labels merged onto the VM and its instance template, always-on run
// strategy, and hostname. It is shared verbatim by the pool-claim path and
// the clone-success path, mirroring how the source uses one helper for both
// callers.
func finalizeVM(ctx context.Context, c *operator.Context, namespace, desktopName string) error {
	target := &kubevirtv1.VirtualMachine{}
	if err := c.Client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: desktopName}, target); err != nil {
		return fmt.Errorf("failed to fetch VM %q for finalization: %w", desktopName, err)
	}

	original := target.DeepCopy()

	target.Labels = vm.MergeLabels(target.Labels, c.Config.Cluster.SystemTag, desktopName, c.Config.Cluster.OperatorIdentity)
	vm.ApplyRunStrategyAlways(target)
	vm.ApplyTemplateIdentity(target, desktopName, c.Config.Cluster.SystemTag, c.Config.Cluster.OperatorIdentity)

	if err := c.Client.Patch(ctx, target, client.MergeFrom(original)); err != nil {
		if apierrors.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to patch VM %q during finalization: %w", desktopName, err)
	}
	return nil
}
