// SPDX-License-Identifier: LGPL-3.0-or-later

package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestNewCloneObjectSpec(t *testing.T) {
	u := NewCloneObject("default", "clone-for-desk-1", "cyberdesk-golden", "desk-1")

	assert.Equal(t, "default", u.GetNamespace())
	assert.Equal(t, "clone-for-desk-1", u.GetName())
	assert.Equal(t, CloneGVK, u.GroupVersionKind())

	source, _, _ := unstructured.NestedString(u.Object, "spec", "source", "name")
	assert.Equal(t, "cyberdesk-golden", source)

	target, _, _ := unstructured.NestedString(u.Object, "spec", "target", "name")
	assert.Equal(t, "desk-1", target)

	command, _, _ := unstructured.NestedStringSlice(u.Object, "spec", "target", "template", "spec", "readinessProbe", "exec", "command")
	assert.Equal(t, []string{"test", "-f", "/var/lib/cloud/instance/boot-finished"}, command)
}

func TestClonePhaseDefaultsToEmpty(t *testing.T) {
	u := NewCloneLookupKey()
	assert.Equal(t, "", ClonePhase(u))
}

func TestClonePhaseReadsStatus(t *testing.T) {
	u := &unstructured.Unstructured{}
	u.SetGroupVersionKind(CloneGVK)
	_ = unstructured.SetNestedField(u.Object, "Succeeded", "status", "phase")
	assert.Equal(t, ClonePhaseSucceeded, ClonePhase(u))
}
