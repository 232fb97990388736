// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"

	"k8s.io/apimachinery/pkg/runtime"
	kubevirtv1 "kubevirt.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"cyberdesk-operator/daemon/metrics"
	"cyberdesk-operator/pkg/operator"
	"cyberdesk-operator/pkg/operator/vm"
	"cyberdesk-operator/pkg/store"
)

// VMIPhaseReconciler keeps the external relational status store in sync with
// the runtime phase of every VM instance the operator manages. It never
// touches the Cyberdesk resource itself; the store is the only output.
type VMIPhaseReconciler struct {
	*operator.Context
	Scheme *runtime.Scheme
}

func (r *VMIPhaseReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	vmi := &kubevirtv1.VirtualMachineInstance{}
	if err := r.Client.Get(ctx, req.NamespacedName, vmi); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	if _, ok := vmi.Labels[vm.LabelApp]; !ok {
		return ctrl.Result{}, nil
	}
	instance, ok := vmi.Labels[vm.LabelInstance]
	if !ok {
		return ctrl.Result{}, nil
	}

	desired := vm.ExternalStatusForPhase(vmi.Status.Phase)

	current, found, err := r.Store.Get(ctx, instance)
	if err != nil {
		metrics.RecordStatusStoreWrite("read_error")
		logger.Error(err, "failed to read current status from store", "instance", instance)
		return ctrl.Result{}, nil
	}
	if found && string(current) == desired {
		return ctrl.Result{}, nil
	}

	if err := r.Store.Set(ctx, instance, store.Status(desired)); err != nil {
		metrics.RecordStatusStoreWrite("write_error")
		logger.Error(err, "failed to write status to store", "instance", instance, "status", desired)
		return ctrl.Result{}, nil
	}

	metrics.RecordStatusStoreWrite("ok")
	return ctrl.Result{}, nil
}

func (r *VMIPhaseReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&kubevirtv1.VirtualMachineInstance{}).
		WithEventFilter(predicate.Funcs{
			CreateFunc: func(e event.CreateEvent) bool { return true },
			UpdateFunc: func(e event.UpdateEvent) bool { return true },
			DeleteFunc: func(e event.DeleteEvent) bool { return false },
		}).
		Complete(r)
}
