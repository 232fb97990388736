// SPDX-License-Identifier: LGPL-3.0-or-later

package vm

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// CloneGVK and SnapshotGVK are handled as unstructured objects rather than
// generated Go types: the operator only ever touches a handful of fields on
// each (source/target refs, a readiness probe, status.phase), and there is
// no local schema for either custom resource. Typed structs would buy
// nothing here and would commit to field shapes that aren't pinned down
// anywhere else in this codebase.
var (
	CloneGVK = schema.GroupVersionKind{
		Group:   "clone.kubevirt.io",
		Version: "v1beta1",
		Kind:    "VirtualMachineClone",
	}
	SnapshotGVK = schema.GroupVersionKind{
		Group:   "snapshot.kubevirt.io",
		Version: "v1beta1",
		Kind:    "VirtualMachineSnapshot",
	}
	VirtualMachineGVK = schema.GroupVersionKind{
		Group:   "kubevirt.io",
		Version: "v1",
		Kind:    "VirtualMachine",
	}
)

// Clone phase values reported at status.phase.
const (
	ClonePhaseSucceeded = "Succeeded"
	ClonePhaseFailed    = "Failed"
	ClonePhaseUnknown   = "Unknown"
)

// NewCloneObject builds the unstructured VirtualMachineClone spec: source is
// the golden snapshot, target is the VM named after the desktop, with a
// readiness probe gating on cloud-init completion.
func NewCloneObject(namespace, name, goldenSnapshot, targetName string) *unstructured.Unstructured {
	u := &unstructured.Unstructured{}
	u.SetGroupVersionKind(CloneGVK)
	u.SetNamespace(namespace)
	u.SetName(name)

	u.Object["spec"] = map[string]interface{}{
		"source": map[string]interface{}{
			"apiGroup": SnapshotGVK.Group,
			"kind":     "VirtualMachineSnapshot",
			"name":     goldenSnapshot,
		},
		"target": map[string]interface{}{
			"apiGroup": VirtualMachineGVK.Group,
			"kind":     "VirtualMachine",
			"name":     targetName,
			"template": map[string]interface{}{
				"spec": map[string]interface{}{
					"readinessProbe": map[string]interface{}{
						"exec": map[string]interface{}{
							"command": []interface{}{
								"test", "-f", "/var/lib/cloud/instance/boot-finished",
							},
						},
						"initialDelaySeconds": int64(30),
						"periodSeconds":       int64(10),
						"failureThreshold":    int64(3),
						"successThreshold":    int64(1),
					},
				},
			},
		},
	}

	return u
}

// ClonePhase reads status.phase off an unstructured clone object. An absent
// field (clone just created) reports as the empty string, which the caller
// treats as in-progress.
func ClonePhase(u *unstructured.Unstructured) string {
	phase, _, _ := unstructured.NestedString(u.Object, "status", "phase")
	return phase
}

// NewCloneLookupKey returns an empty unstructured object pre-addressed with
// the clone GVK, ready for client.Get.
func NewCloneLookupKey() *unstructured.Unstructured {
	u := &unstructured.Unstructured{}
	u.SetGroupVersionKind(CloneGVK)
	return u
}
