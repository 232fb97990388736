// SPDX-License-Identifier: LGPL-3.0-or-later

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Phase is the reconciler's own lifecycle state for a Cyberdesk, distinct from the
// runtime phase of the bound VM instance.
type Phase string

const (
	PhaseCloningInitiated Phase = "CloningInitiated"
	PhaseAssignedFromPool Phase = "AssignedFromPool"
	PhaseCloned           Phase = "Cloned"
	PhaseCloneFailed      Phase = "CloneFailed"
	PhaseCloneTimeout     Phase = "CloneTimeout"
)

// CyberdeskSpec is the desired state of a desktop.
type CyberdeskSpec struct {
	// TimeoutMs is the desktop's lifetime in milliseconds from first assignment.
	// +kubebuilder:validation:Minimum=1000
	TimeoutMs int64 `json:"timeoutMs"`
}

// CyberdeskState is the reconciler's authoritative record of progress, nested under
// a dedicated sub-key so it can coexist with any status conventions a surrounding
// framework reserves at the top level.
type CyberdeskState struct {
	// Phase is empty until the first reconcile makes progress.
	Phase Phase `json:"phase,omitempty"`

	// VMRef is the name of the bound VM once any provisioning path succeeds.
	VMRef string `json:"vmRef,omitempty"`

	// CloneOpName is the name of an in-flight clone operation. Mutually exclusive
	// with VMRef in steady state.
	CloneOpName string `json:"cloneOpName,omitempty"`

	// StartTime and ExpiryTime are set atomically when VMRef is first set.
	StartTime   *metav1.Time `json:"startTime,omitempty"`
	ExpiryTime  *metav1.Time `json:"expiryTime,omitempty"`

	// CloneAttempts counts reconciles spent polling the current clone operation;
	// reset whenever CloneOpName changes.
	CloneAttempts int `json:"cloneAttempts,omitempty"`
}

// CyberdeskStatus wraps the nested state record.
type CyberdeskStatus struct {
	Cyberdesk CyberdeskState `json:"cyberdesk,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=".status.cyberdesk.phase"
// +kubebuilder:printcolumn:name="VM",type=string,JSONPath=".status.cyberdesk.vmRef"

// Cyberdesk is the desired-state object for a single on-demand virtual desktop.
type Cyberdesk struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   CyberdeskSpec   `json:"spec,omitempty"`
	Status CyberdeskStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// CyberdeskList is a list of Cyberdesk resources.
type CyberdeskList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Cyberdesk `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Cyberdesk{}, &CyberdeskList{})
}
