// SPDX-License-Identifier: LGPL-3.0-or-later

// Package startup holds preconditions that must hold before the manager
// starts accepting reconcile work.
package startup

import (
	"context"
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"cyberdesk-operator/pkg/operator/vm"
)

// ErrGoldenSnapshotNotFound is wrapped into CheckGoldenSnapshot's returned
// error when the snapshot genuinely does not exist. Callers should treat
// this as a permanent startup failure; any other error from CheckGoldenSnapshot
// is transient (API server unreachable, RBAC not yet propagated, etc.) and
// should be retried.
var ErrGoldenSnapshotNotFound = errors.New("golden snapshot not found")

// CheckGoldenSnapshot verifies the configured golden snapshot exists before
// the operator begins reconciling, since no clone can ever succeed without
// it. A missing snapshot wraps ErrGoldenSnapshotNotFound; any other lookup
// error is transient and returned for the caller to retry.
func CheckGoldenSnapshot(ctx context.Context, c client.Client, namespace, name string) error {
	snapshot := &unstructured.Unstructured{}
	snapshot.SetGroupVersionKind(vm.SnapshotGVK)

	err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, snapshot)
	switch {
	case err == nil:
		return nil
	case apierrors.IsNotFound(err):
		return fmt.Errorf("golden snapshot %q not found in namespace %q: %w", name, namespace, ErrGoldenSnapshotNotFound)
	default:
		return fmt.Errorf("failed to look up golden snapshot %q: %w", name, err)
	}
}
