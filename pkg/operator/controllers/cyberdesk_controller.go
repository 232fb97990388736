// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	kubevirtv1 "kubevirt.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	cyberdeskv1alpha1 "cyberdesk-operator/pkg/apis/cyberdesk/v1alpha1"
	"cyberdesk-operator/daemon/metrics"
	"cyberdesk-operator/pkg/operator"
	"cyberdesk-operator/pkg/operator/vm"
)

const (
	desktopFinalizer = "cyberdesk.io/desktop-finalizer"

	expiryCheckInterval = 60 * time.Second
)

// CyberdeskReconciler drives a single Cyberdesk through assignment, binding,
// and expiry. It never keeps state of its own between invocations: every
// decision is read back off the resource's status and the cluster.
type CyberdeskReconciler struct {
	*operator.Context
	Scheme *runtime.Scheme
}

// +kubebuilder:rbac:groups=cyberdesk.io,resources=cyberdesks,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=cyberdesk.io,resources=cyberdesks/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=cyberdesk.io,resources=cyberdesks/finalizers,verbs=update
// +kubebuilder:rbac:groups=kubevirt.io,resources=virtualmachines;virtualmachineinstances,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=clone.kubevirt.io,resources=virtualmachineclones,verbs=get;list;watch;create;delete

func (r *CyberdeskReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	desktop := &cyberdeskv1alpha1.Cyberdesk{}
	if err := r.Client.Get(ctx, req.NamespacedName, desktop); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if !desktop.DeletionTimestamp.IsZero() {
		return r.handleDeletion(ctx, desktop)
	}

	if !controllerutil.ContainsFinalizer(desktop, desktopFinalizer) {
		controllerutil.AddFinalizer(desktop, desktopFinalizer)
		if err := r.Client.Update(ctx, desktop); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{Requeue: true}, nil
	}

	state := desktop.Status.Cyberdesk

	switch {
	case state.VMRef != "":
		metrics.RecordReconcile("bound")
		return r.reconcileBound(ctx, desktop)

	case state.CloneOpName != "":
		metrics.RecordReconcile("cloning")
		o := reconcileCloning(ctx, r.Context, desktop)
		if o.IsFail() {
			logger.Error(o.Err(), "clone reconciliation failed permanently", "desktop", desktop.Name)
		} else if err := o.Err(); err != nil {
			logger.Error(err, "clone reconciliation hit a transient error", "desktop", desktop.Name)
		}
		return o.ToResult()

	default:
		metrics.RecordReconcile("assign")
		return r.reconcileAssignment(ctx, desktop)
	}
}

// reconcileAssignment implements the fresh-resource path: try the warm pool
// first, and fall back to starting a clone when the pool has nothing usable.
func (r *CyberdeskReconciler) reconcileAssignment(ctx context.Context, desktop *cyberdeskv1alpha1.Cyberdesk) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	namespace := r.Config.Cluster.Namespace

	claimed, err := claimFromPool(ctx, r.Context, namespace)
	if err != nil {
		logger.Error(err, "pool claim attempt failed", "desktop", desktop.Name)
		return ctrl.Result{RequeueAfter: cloneBaselineDelay}, nil
	}

	if claimed != "" {
		if err := finalizeVM(ctx, r.Context, namespace, desktop.Name); err != nil {
			// The claimed VM has already been labeled as in-use; a finalize
			// failure here must retry the same VM rather than reclaim a new one.
			return ctrl.Result{}, err
		}

		now := metav1.Now()
		expiry := metav1.NewTime(now.Add(time.Duration(desktop.Spec.TimeoutMs) * time.Millisecond))
		desktop.Status.Cyberdesk = cyberdeskv1alpha1.CyberdeskState{
			VMRef:      desktop.Name,
			Phase:      cyberdeskv1alpha1.PhaseAssignedFromPool,
			StartTime:  &now,
			ExpiryTime: &expiry,
		}
		if err := r.Client.Status().Update(ctx, desktop); err != nil {
			return ctrl.Result{}, err
		}

		metrics.ActiveDesktops.Inc()
		notifyIfAlreadyReady(ctx, r.Context, namespace, claimed, desktop.Name)
		return ctrl.Result{}, nil
	}

	desktop.Status.Cyberdesk.Phase = cyberdeskv1alpha1.PhaseCloningInitiated
	desktop.Status.Cyberdesk.CloneOpName = vm.CloneName(desktop.Name)
	if err := r.Client.Status().Update(ctx, desktop); err != nil {
		return ctrl.Result{}, err
	}
	return ctrl.Result{Requeue: true}, nil
}

// reconcileBound handles a desktop that already has a bound VM: the only
// work left is watching for expiry.
func (r *CyberdeskReconciler) reconcileBound(ctx context.Context, desktop *cyberdeskv1alpha1.Cyberdesk) (ctrl.Result, error) {
	state := desktop.Status.Cyberdesk
	if state.ExpiryTime == nil {
		return ctrl.Result{RequeueAfter: expiryCheckInterval}, nil
	}

	if time.Now().Before(state.ExpiryTime.Time) {
		remaining := time.Until(state.ExpiryTime.Time)
		if remaining > expiryCheckInterval {
			remaining = expiryCheckInterval
		}
		return ctrl.Result{RequeueAfter: remaining}, nil
	}

	logger := log.FromContext(ctx)
	if err := r.Client.Delete(ctx, desktop); err != nil && !apierrors.IsNotFound(err) {
		logger.Error(err, "failed to delete expired desktop", "desktop", desktop.Name)
		return ctrl.Result{RequeueAfter: expiryCheckInterval}, nil
	}

	metrics.RecordReconcile("expired")
	metrics.ExpiredDesktopsTotal.Inc()
	return ctrl.Result{}, nil
}

// handleDeletion tears down whatever external state the desktop was holding
// before letting the finalizer clear: a bound VM is deleted outright, and an
// in-flight clone operation is deleted rather than left to finish unattended.
// Either delete tolerates the target already being gone. A failed VM delete
// is retried; a failed clone delete is logged and the finalizer still clears.
func (r *CyberdeskReconciler) handleDeletion(ctx context.Context, desktop *cyberdeskv1alpha1.Cyberdesk) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	namespace := r.Config.Cluster.Namespace
	state := desktop.Status.Cyberdesk

	if !controllerutil.ContainsFinalizer(desktop, desktopFinalizer) {
		return ctrl.Result{}, nil
	}

	switch {
	case state.VMRef != "":
		target := &kubevirtv1.VirtualMachine{
			ObjectMeta: metav1.ObjectMeta{Name: state.VMRef, Namespace: namespace},
		}
		if err := r.Client.Delete(ctx, target); err != nil && !apierrors.IsNotFound(err) && !apierrors.IsGone(err) {
			logger.Error(err, "failed to delete bound VM", "desktop", desktop.Name, "vm", state.VMRef)
			return ctrl.Result{}, err
		}
		metrics.ActiveDesktops.Dec()

	case state.CloneOpName != "":
		clone := vm.NewCloneLookupKey()
		clone.SetNamespace(namespace)
		clone.SetName(state.CloneOpName)
		if err := r.Client.Delete(ctx, clone); err != nil && !apierrors.IsNotFound(err) {
			logger.Error(err, "failed to delete in-flight clone", "desktop", desktop.Name, "clone", state.CloneOpName)
		}
	}

	controllerutil.RemoveFinalizer(desktop, desktopFinalizer)
	if err := r.Client.Update(ctx, desktop); err != nil {
		return ctrl.Result{}, err
	}

	metrics.RecordReconcile("deleted")
	return ctrl.Result{}, nil
}

func (r *CyberdeskReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&cyberdeskv1alpha1.Cyberdesk{}).
		Complete(r)
}
