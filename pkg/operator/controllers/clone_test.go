// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	kubevirtv1 "kubevirt.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	cyberdeskv1alpha1 "cyberdesk-operator/pkg/apis/cyberdesk/v1alpha1"
	"cyberdesk-operator/pkg/operator/vm"
)

func newTestDesktop(name string) *cyberdeskv1alpha1.Cyberdesk {
	return &cyberdeskv1alpha1.Cyberdesk{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
		Spec:       cyberdeskv1alpha1.CyberdeskSpec{TimeoutMs: 60000},
		Status: cyberdeskv1alpha1.CyberdeskStatus{
			Cyberdesk: cyberdeskv1alpha1.CyberdeskState{
				Phase:       cyberdeskv1alpha1.PhaseCloningInitiated,
				CloneOpName: vm.CloneName(name),
			},
		},
	}
}

func TestReconcileCloningCreatesCloneWhenAbsent(t *testing.T) {
	ctx := context.Background()
	desktop := newTestDesktop("desk-1")
	tctx := newTestContext(t, desktop)

	o := reconcileCloning(ctx, tctx, desktop)
	assert.False(t, o.IsFail())

	var clone unstructured.Unstructured
	clone.SetGroupVersionKind(vm.CloneGVK)
	require.NoError(t, tctx.Client.Get(ctx, client.ObjectKey{Namespace: "default", Name: vm.CloneName("desk-1")}, &clone))
}

func TestReconcileCloningFinalizesOnSuccess(t *testing.T) {
	ctx := context.Background()
	desktop := newTestDesktop("desk-1")
	targetVM := &kubevirtv1.VirtualMachine{
		ObjectMeta: metav1.ObjectMeta{Name: "desk-1", Namespace: "default"},
	}

	clone := vm.NewCloneObject("default", vm.CloneName("desk-1"), "cyberdesk-golden", "desk-1")
	require.NoError(t, unstructured.SetNestedField(clone.Object, "Succeeded", "status", "phase"))

	tctx := newTestContext(t, desktop, targetVM)
	require.NoError(t, tctx.Client.Create(ctx, clone))

	o := reconcileCloning(ctx, tctx, desktop)
	assert.False(t, o.IsFail())
	assert.Equal(t, cyberdeskv1alpha1.PhaseCloned, desktop.Status.Cyberdesk.Phase)
	assert.Equal(t, "desk-1", desktop.Status.Cyberdesk.VMRef)
}

func TestReconcileCloningFailsOnCloneFailure(t *testing.T) {
	ctx := context.Background()
	desktop := newTestDesktop("desk-1")

	clone := vm.NewCloneObject("default", vm.CloneName("desk-1"), "cyberdesk-golden", "desk-1")
	require.NoError(t, unstructured.SetNestedField(clone.Object, "Failed", "status", "phase"))

	tctx := newTestContext(t, desktop)
	require.NoError(t, tctx.Client.Create(ctx, clone))

	o := reconcileCloning(ctx, tctx, desktop)
	assert.True(t, o.IsFail())
	assert.Equal(t, cyberdeskv1alpha1.PhaseCloneFailed, desktop.Status.Cyberdesk.Phase)
}

func TestReconcileCloningTimesOutAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	desktop := newTestDesktop("desk-1")
	desktop.Status.Cyberdesk.CloneAttempts = cloneMaxAttempts - 1

	clone := vm.NewCloneObject("default", vm.CloneName("desk-1"), "cyberdesk-golden", "desk-1")

	tctx := newTestContext(t, desktop)
	require.NoError(t, tctx.Client.Create(ctx, clone))

	o := reconcileCloning(ctx, tctx, desktop)
	assert.True(t, o.IsFail())
	assert.Equal(t, cyberdeskv1alpha1.PhaseCloneTimeout, desktop.Status.Cyberdesk.Phase)
}
