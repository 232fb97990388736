// SPDX-License-Identifier: LGPL-3.0-or-later

package controllers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	kubevirtv1 "kubevirt.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"

	"cyberdesk-operator/pkg/operator/vm"
	"cyberdesk-operator/pkg/store"
)

// fakeStore is an in-memory store.Store used where a live Postgres
// connection isn't available.
type fakeStore struct {
	mu   sync.Mutex
	rows map[string]store.Status
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]store.Status)}
}

func (f *fakeStore) Get(ctx context.Context, name string) (store.Status, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[name]
	return s, ok, nil
}

func (f *fakeStore) Set(ctx context.Context, name string, status store.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[name] = status
	return nil
}

func (f *fakeStore) Close() {}

func vmiWithInstance(name, instance string, phase kubevirtv1.VirtualMachineInstancePhase) *kubevirtv1.VirtualMachineInstance {
	return &kubevirtv1.VirtualMachineInstance{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "default",
			Labels: map[string]string{
				vm.LabelApp:      "cyberdesk",
				vm.LabelInstance: instance,
			},
		},
		Status: kubevirtv1.VirtualMachineInstanceStatus{Phase: phase},
	}
}

func TestVMIPhaseReconcilerWritesMappedStatus(t *testing.T) {
	ctx := context.Background()
	vmi := vmiWithInstance("desk-1", "desk-1", kubevirtv1.Running)
	tctx := newTestContext(t, vmi)
	fs := newFakeStore()
	tctx.Store = fs

	r := &VMIPhaseReconciler{Context: tctx}
	_, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "desk-1"}})
	require.NoError(t, err)

	got, found, err := fs.Get(ctx, "desk-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, store.Status(vm.ExternalStatusForPhase(kubevirtv1.Running)), got)
}

func TestVMIPhaseReconcilerSkipsUnlabeledVMI(t *testing.T) {
	ctx := context.Background()
	vmi := &kubevirtv1.VirtualMachineInstance{
		ObjectMeta: metav1.ObjectMeta{Name: "not-ours", Namespace: "default"},
	}
	tctx := newTestContext(t, vmi)
	fs := newFakeStore()
	tctx.Store = fs

	r := &VMIPhaseReconciler{Context: tctx}
	_, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "not-ours"}})
	require.NoError(t, err)

	_, found, _ := fs.Get(ctx, "not-ours")
	assert.False(t, found)
}

func TestVMIPhaseReconcilerSkipsWriteWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	vmi := vmiWithInstance("desk-1", "desk-1", kubevirtv1.Running)
	tctx := newTestContext(t, vmi)
	fs := newFakeStore()
	fs.rows["desk-1"] = store.Status(vm.ExternalStatusForPhase(kubevirtv1.Running))
	tctx.Store = fs

	r := &VMIPhaseReconciler{Context: tctx}
	_, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: types.NamespacedName{Namespace: "default", Name: "desk-1"}})
	require.NoError(t, err)

	assert.Len(t, fs.rows, 1)
}
