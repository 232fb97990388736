// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	corev1 "k8s.io/api/core/v1"
	kubevirtv1 "kubevirt.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"cyberdesk-operator/pkg/operator"
	"cyberdesk-operator/pkg/operator/vm"
)

const readinessNotifyTimeout = 10 * time.Second

// VMIReadyReconciler notifies the external gateway the first time a VM
// instance's Ready condition flips to true. The transition is detected in
// the watch predicate, not here: by the time Reconcile runs, the resource
// may already have moved on, so this handler re-reads the live object and
// notifies only if it is currently ready, accepting that a notification can
// occasionally be sent more than once for the same instance.
type VMIReadyReconciler struct {
	*operator.Context
	Scheme *runtime.Scheme
}

func (r *VMIReadyReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	vmi := &kubevirtv1.VirtualMachineInstance{}
	if err := r.Client.Get(ctx, req.NamespacedName, vmi); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	instance, ok := vmi.Labels[vm.LabelInstance]
	if !ok {
		return ctrl.Result{}, nil
	}

	if !vm.IsRunningWithIP(vmi) || vm.ReadyConditionStatus(vmi) != corev1.ConditionTrue {
		return ctrl.Result{}, nil
	}

	r.Gateway.NotifyReady(ctx, instance, readinessNotifyTimeout)
	logger.Info("notified gateway of desktop readiness", "instance", instance)
	return ctrl.Result{}, nil
}

func (r *VMIReadyReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&kubevirtv1.VirtualMachineInstance{}).
		WithEventFilter(predicate.Funcs{
			CreateFunc: func(e event.CreateEvent) bool { return false },
			DeleteFunc: func(e event.DeleteEvent) bool { return false },
			GenericFunc: func(e event.GenericEvent) bool { return false },
			UpdateFunc: func(e event.UpdateEvent) bool {
				oldVMI, ok := e.ObjectOld.(*kubevirtv1.VirtualMachineInstance)
				if !ok {
					return false
				}
				newVMI, ok := e.ObjectNew.(*kubevirtv1.VirtualMachineInstance)
				if !ok {
					return false
				}
				return vm.ReadyConditionStatus(oldVMI) != corev1.ConditionTrue &&
					vm.ReadyConditionStatus(newVMI) == corev1.ConditionTrue
			},
		}).
		Complete(r)
}
