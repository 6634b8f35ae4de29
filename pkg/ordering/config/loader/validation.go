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
	"fmt"

	"go.uber.org/multierr"
	"k8s.io/apimachinery/pkg/util/sets"

	configapi "github.com/juneligan/techpractice/api/config/v1alpha1"
	"github.com/juneligan/techpractice/pkg/ordering/scheduler"
	"github.com/juneligan/techpractice/pkg/ordering/types"
)

// validate checks a defaulted configuration and reports every problem found.
func validate(cfg *configapi.OrderingConfig) error {
	var errs error

	if cfg.APIVersion != configapi.GroupVersion {
		errs = multierr.Append(errs, fmt.Errorf("unsupported apiVersion '%s', expected '%s'", cfg.APIVersion, configapi.GroupVersion))
	}
	if cfg.Kind != configapi.Kind {
		errs = multierr.Append(errs, fmt.Errorf("unsupported kind '%s', expected '%s'", cfg.Kind, configapi.Kind))
	}
	if cfg.OutputCapacity <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("outputCapacity must be positive, got %d", cfg.OutputCapacity))
	}
	if cfg.PassDelay.Duration < 0 {
		errs = multierr.Append(errs, fmt.Errorf("passDelay cannot be negative, got %v", cfg.PassDelay.Duration))
	}
	if _, err := scheduler.ParseRunMode(cfg.RunMode); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("runMode '%s' is not supported", cfg.RunMode))
	}

	ids := sets.New[int]()
	for _, ch := range cfg.Channels {
		if ids.Has(ch.ID) {
			errs = multierr.Append(errs, fmt.Errorf("channel %d: %w", ch.ID, types.ErrDuplicateChannel))
		}
		ids.Insert(ch.ID)
		if ch.Weight <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("channel %d: %w, got %d", ch.ID, types.ErrInvalidWeight, ch.Weight))
		}
	}
	return errs
}
