// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	kubevirtv1 "kubevirt.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/event"

	"cyberdesk-operator/logger"
	"cyberdesk-operator/pkg/gateway"
	"cyberdesk-operator/pkg/operator/vm"
)

func readyVMI(name, instance string) *kubevirtv1.VirtualMachineInstance {
	return &kubevirtv1.VirtualMachineInstance{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "default",
			Labels:    map[string]string{vm.LabelInstance: instance},
		},
		Status: kubevirtv1.VirtualMachineInstanceStatus{
			Phase:      kubevirtv1.Running,
			Interfaces: []kubevirtv1.VirtualMachineInstanceNetworkInterface{{IP: "10.0.0.5"}},
			Conditions: []kubevirtv1.VirtualMachineInstanceCondition{
				{Type: kubevirtv1.VirtualMachineInstanceReady, Status: corev1.ConditionTrue},
			},
		},
	}
}

func TestVMIReadyReconcilerNotifiesWhenReady(t *testing.T) {
	var notified bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notified = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ctx := context.Background()
	vmi := readyVMI("desk-1", "desk-1")
	tctx := newTestContext(t, vmi)
	tctx.Gateway = gateway.New(server.URL, logger.New("debug"))

	r := &VMIReadyReconciler{Context: tctx}
	_, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "desk-1"}})
	require.NoError(t, err)
	assert.True(t, notified)
}

func TestVMIReadyReconcilerSkipsWhenNotReady(t *testing.T) {
	var notified bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notified = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	ctx := context.Background()
	vmi := readyVMI("desk-1", "desk-1")
	vmi.Status.Phase = kubevirtv1.Scheduled
	vmi.Status.Interfaces = nil
	tctx := newTestContext(t, vmi)
	tctx.Gateway = gateway.New(server.URL, logger.New("debug"))

	r := &VMIReadyReconciler{Context: tctx}
	_, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "desk-1"}})
	require.NoError(t, err)
	assert.False(t, notified)
}

func TestVMIReadyUpdatePredicateFiresOnlyOnTransitionToTrue(t *testing.T) {
	notReady := readyVMI("desk-1", "desk-1")
	notReady.Status.Conditions[0].Status = corev1.ConditionFalse
	ready := readyVMI("desk-1", "desk-1")

	predFn := func(e event.UpdateEvent) bool {
		oldVMI := e.ObjectOld.(*kubevirtv1.VirtualMachineInstance)
		newVMI := e.ObjectNew.(*kubevirtv1.VirtualMachineInstance)
		return vm.ReadyConditionStatus(oldVMI) != corev1.ConditionTrue &&
			vm.ReadyConditionStatus(newVMI) == corev1.ConditionTrue
	}

	assert.True(t, predFn(event.UpdateEvent{ObjectOld: notReady, ObjectNew: ready}))
	assert.False(t, predFn(event.UpdateEvent{ObjectOld: ready, ObjectNew: ready}))
}
