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
	"os"

	"github.com/go-logr/logr"
	"sigs.k8s.io/yaml"

	configapi "github.com/juneligan/techpractice/api/config/v1alpha1"
	"github.com/juneligan/techpractice/pkg/ordering/priority"
	"github.com/juneligan/techpractice/pkg/ordering/scheduler"
	"github.com/juneligan/techpractice/pkg/ordering/types"
)

// LoadConfig parses configuration text, applies defaults, validates it and returns the scheduler configuration.
func LoadConfig(configBytes []byte, logger logr.Logger) (*scheduler.Config, error) {
	rawConfig, err := loadRawConfig(configBytes)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", "config", rawConfig)

	setDefaults(rawConfig)

	logger.Info("Configuration with defaults set", "config", rawConfig)

	if err := validate(rawConfig); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidConfig, err)
	}

	return toSchedulerConfig(rawConfig)
}

// LoadConfigFile reads a configuration file and passes its content to `LoadConfig`.
func LoadConfigFile(path string, logger logr.Logger) (*scheduler.Config, error) {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from a file '%s' - %w", path, err)
	}
	return LoadConfig(configBytes, logger)
}

func loadRawConfig(configBytes []byte) (*configapi.OrderingConfig, error) {
	rawConfig := &configapi.OrderingConfig{}
	if err := yaml.UnmarshalStrict(configBytes, rawConfig); err != nil {
		return nil, fmt.Errorf("the configuration is invalid - %w", err)
	}
	return rawConfig, nil
}

func toSchedulerConfig(rawConfig *configapi.OrderingConfig) (*scheduler.Config, error) {
	weights := make(map[int]int, len(rawConfig.Channels))
	for _, ch := range rawConfig.Channels {
		weights[ch.ID] = ch.Weight
	}
	table, err := priority.NewTable(weights)
	if err != nil {
		return nil, err
	}
	runMode, err := scheduler.ParseRunMode(rawConfig.RunMode)
	if err != nil {
		return nil, err
	}

	return scheduler.NewConfig(
		scheduler.WithOutputCapacity(rawConfig.OutputCapacity),
		scheduler.WithPassDelay(rawConfig.PassDelay.Duration),
		scheduler.WithRunMode(runMode),
		scheduler.WithPriorities(table),
	)
}
