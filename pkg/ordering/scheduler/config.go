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

package scheduler

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/juneligan/techpractice/pkg/ordering/priority"
	"github.com/juneligan/techpractice/pkg/ordering/types"
)

// RunMode selects whether `Scheduler.Run` performs a single pass or loops until cancelled.
type RunMode string

const (
	// RunModeOnce runs a single pass and returns.
	RunModeOnce RunMode = "once"
	// RunModeIndefinite runs passes until the context is cancelled.
	RunModeIndefinite RunMode = "indefinite"
)

const (
	// DefaultOutputCapacity is the default capacity of the output queue.
	DefaultOutputCapacity = 500
	// DefaultPassDelay is the default wait before each pass, giving channel buffers time to accumulate.
	DefaultPassDelay = 2 * time.Second
	// DefaultRunMode is the default run mode.
	DefaultRunMode = RunModeOnce
)

// ParseRunMode converts a string into a `RunMode`.
func ParseRunMode(s string) (RunMode, error) {
	switch RunMode(s) {
	case RunModeOnce, RunModeIndefinite:
		return RunMode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown run mode %q, expected %q or %q",
			types.ErrInvalidConfig, s, RunModeOnce, RunModeIndefinite)
	}
}

// Config holds the construction-time settings of a `Scheduler`. It is fixed for the lifetime of the scheduler.
type Config struct {
	// OutputCapacity is the maximum number of messages the output queue holds.
	// Optional: Defaults to `DefaultOutputCapacity` (500).
	OutputCapacity int

	// PassDelay is how long `Run` waits before each pass. Zero disables the wait.
	// Optional: Defaults to `DefaultPassDelay` (2s).
	PassDelay time.Duration

	// RunMode selects single-pass or looping behavior for `Run`.
	// Optional: Defaults to `RunModeOnce`.
	RunMode RunMode

	// Priorities maps channel ids to weights.
	// Optional: Defaults to `priority.DefaultTable()`.
	Priorities *priority.Table
}

// ConfigOption is a functional option for configuring the Scheduler.
type ConfigOption func(*Config)

// NewConfig creates a new Config with the given options, applying defaults and validation.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	c := &Config{
		OutputCapacity: DefaultOutputCapacity,
		PassDelay:      DefaultPassDelay,
		RunMode:        DefaultRunMode,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.Priorities == nil {
		c.Priorities = priority.DefaultTable()
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// WithOutputCapacity sets the output queue capacity.
func WithOutputCapacity(capacity int) ConfigOption {
	return func(c *Config) {
		c.OutputCapacity = capacity
	}
}

// WithPassDelay sets the delay before each pass.
func WithPassDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.PassDelay = d
	}
}

// WithRunMode sets the run mode.
func WithRunMode(mode RunMode) ConfigOption {
	return func(c *Config) {
		c.RunMode = mode
	}
}

// WithPriorities sets the channel priority table.
func WithPriorities(table *priority.Table) ConfigOption {
	return func(c *Config) {
		c.Priorities = table
	}
}

// validate checks the configuration for validity.
func (c *Config) validate() error {
	var errs error
	if c.OutputCapacity <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("OutputCapacity must be positive, but got %d", c.OutputCapacity))
	}
	if c.PassDelay < 0 {
		errs = multierr.Append(errs, fmt.Errorf("PassDelay cannot be negative, but got %v", c.PassDelay))
	}
	if _, err := ParseRunMode(string(c.RunMode)); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("RunMode %q is not supported", c.RunMode))
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidConfig, errs)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("{OutputCapacity: %d, PassDelay: %v, RunMode: %s, Priorities: %v}",
		c.OutputCapacity, c.PassDelay, c.RunMode, c.Priorities)
}
