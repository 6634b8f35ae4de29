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

package loader

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	configapi "github.com/juneligan/techpractice/api/config/v1alpha1"
	"github.com/juneligan/techpractice/pkg/ordering/priority"
	"github.com/juneligan/techpractice/pkg/ordering/scheduler"
)

// setDefaults fills in every field the configuration left unset:
//  1. TypeMeta, so logs always show what was loaded
//  2. Output capacity, pass delay and run mode from the scheduler defaults
//  3. The standard four-channel priority table when no channels are listed
func setDefaults(cfg *configapi.OrderingConfig) {
	if cfg.APIVersion == "" {
		cfg.APIVersion = configapi.GroupVersion
	}
	if cfg.Kind == "" {
		cfg.Kind = configapi.Kind
	}

	if cfg.OutputCapacity == 0 {
		cfg.OutputCapacity = scheduler.DefaultOutputCapacity
	}
	if cfg.PassDelay == nil {
		cfg.PassDelay = &metav1.Duration{Duration: scheduler.DefaultPassDelay}
	}
	if cfg.RunMode == "" {
		cfg.RunMode = string(scheduler.DefaultRunMode)
	}

	if len(cfg.Channels) == 0 {
		table := priority.DefaultTable()
		for _, id := range table.Channels() {
			cfg.Channels = append(cfg.Channels, configapi.ChannelSpec{ID: id, Weight: table.Weight(id)})
		}
	}
}
