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

package types

import "errors"

// Construction-time errors. Runtime operations of the ordering module never fail; they can only stall for capacity.
var (
	// ErrInvalidConfig is returned when a configuration value is out of range. Errors returned by constructors and
	// loaders wrap it, so callers should use `errors.Is(err, ErrInvalidConfig)`.
	ErrInvalidConfig = errors.New("invalid ordering configuration")

	// ErrInvalidWeight indicates a priority table entry with a non-positive transfer size.
	ErrInvalidWeight = errors.New("channel weight must be positive")

	// ErrDuplicateChannel indicates the same channel id was configured more than once.
	ErrDuplicateChannel = errors.New("channel configured more than once")
)
