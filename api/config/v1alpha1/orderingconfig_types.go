/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package v1alpha1 contains the file-based configuration API of the ordering module.
package v1alpha1

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// GroupVersion is the apiVersion expected in configuration files.
	GroupVersion = "config.techpractice.io/v1alpha1"
	// Kind is the kind expected in configuration files.
	Kind = "OrderingConfig"
)

// OrderingConfig is the Schema for ordering module configuration files.
type OrderingConfig struct {
	metav1.TypeMeta `json:",inline"`

	// +optional
	// OutputCapacity is the maximum number of messages held by the output queue.
	// If omitted, the module default is used.
	OutputCapacity int `json:"outputCapacity,omitempty"`

	// +optional
	// PassDelay is how long the scheduler waits before each pass. An explicit
	// zero disables the wait. If omitted, the module default is used.
	PassDelay *metav1.Duration `json:"passDelay,omitempty"`

	// +optional
	// +kubebuilder:validation:Enum=once;indefinite
	// RunMode is either "once" or "indefinite".
	RunMode string `json:"runMode,omitempty"`

	// +optional
	// Channels is the static priority table. If omitted, the standard
	// four-channel layout is used.
	Channels []ChannelSpec `json:"channels,omitempty"`
}

func (cfg OrderingConfig) String() string {
	passDelay := "<default>"
	if cfg.PassDelay != nil {
		passDelay = cfg.PassDelay.Duration.String()
	}
	return fmt.Sprintf(
		"{OutputCapacity: %d, PassDelay: %s, RunMode: %s, Channels: %v}",
		cfg.OutputCapacity,
		passDelay,
		cfg.RunMode,
		cfg.Channels,
	)
}

// ChannelSpec assigns a weight to one channel.
type ChannelSpec struct {
	// +required
	// ID is the channel identifier carried by messages.
	ID int `json:"id"`

	// +required
	// +kubebuilder:validation:Minimum=1
	// Weight is both the channel's priority (higher drains first) and the
	// maximum number of its messages moved per sweep.
	Weight int `json:"weight"`
}

func (cs ChannelSpec) String() string {
	return fmt.Sprintf("{%d:%d}", cs.ID, cs.Weight)
}
