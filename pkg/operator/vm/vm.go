// SPDX-License-Identifier: LGPL-3.0-or-later

package vm

import (
	corev1 "k8s.io/api/core/v1"
	kubevirtv1 "kubevirt.io/api/core/v1"
)

// MergeLabels returns a copy of existing with the identity labels applied,
// without discarding any unrelated key the pool controller (or anything else)
// already set. Union, never overwrite-and-drop.
func MergeLabels(existing map[string]string, systemTag, instance, managedBy string) map[string]string {
	out := make(map[string]string, len(existing)+3)
	for k, v := range existing {
		out[k] = v
	}
	out[LabelApp] = systemTag
	out[LabelInstance] = instance
	out[LabelManagedBy] = managedBy
	return out
}

// ApplyRunStrategyAlways sets the VM to always-on, required after binding.
func ApplyRunStrategyAlways(v *kubevirtv1.VirtualMachine) {
	always := kubevirtv1.RunStrategyAlways
	v.Spec.RunStrategy = &always
	v.Spec.Running = nil
}

// ApplyTemplateIdentity stamps the instance template's metadata labels
// (identity labels plus the KubeVirt domain label) and hostname with the
// desktop name as part of post-bind finalization.
func ApplyTemplateIdentity(v *kubevirtv1.VirtualMachine, desktopName, systemTag, managedBy string) {
	if v.Spec.Template == nil {
		v.Spec.Template = &kubevirtv1.VirtualMachineInstanceTemplateSpec{}
	}
	v.Spec.Template.ObjectMeta.Labels = MergeLabels(v.Spec.Template.ObjectMeta.Labels, systemTag, desktopName, managedBy)
	v.Spec.Template.ObjectMeta.Labels[LabelKubeVirtDomain] = desktopName
	v.Spec.Template.Spec.Hostname = desktopName
}

// IsRunningWithIP reports whether a VMI has reached Running phase and
// advertises at least one interface with an assigned address, the readiness
// gate applied after a pool claim.
func IsRunningWithIP(vmi *kubevirtv1.VirtualMachineInstance) bool {
	if vmi.Status.Phase != kubevirtv1.Running {
		return false
	}
	for _, iface := range vmi.Status.Interfaces {
		if iface.IP != "" {
			return true
		}
	}
	return false
}

// ReadyConditionStatus returns the current value of the VMI Ready condition,
// or corev1.ConditionUnknown if the condition is absent.
func ReadyConditionStatus(vmi *kubevirtv1.VirtualMachineInstance) corev1.ConditionStatus {
	for _, c := range vmi.Status.Conditions {
		if c.Type == kubevirtv1.VirtualMachineInstanceReady {
			return c.Status
		}
	}
	return corev1.ConditionUnknown
}

// ExternalStatusForPhase implements the mapping table used for external status reporting.
func ExternalStatusForPhase(phase kubevirtv1.VirtualMachineInstancePhase) string {
	switch phase {
	case kubevirtv1.Pending, kubevirtv1.Scheduling, kubevirtv1.Scheduled, kubevirtv1.Running:
		return "pending"
	case kubevirtv1.Succeeded:
		return "terminated"
	case kubevirtv1.Failed, kubevirtv1.Unknown:
		return "error"
	default:
		return "error"
	}
}
