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

// Package priority provides the static channel priority table used by the scheduler.
//
// A channel's weight ("transfer size") plays two roles: it orders channels (higher weight drains first) and it caps the
// number of messages moved from that channel in a single sweep. Channels with equal weight are ordered by ascending
// channel id, so the drain order never depends on map iteration order.
package priority

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/juneligan/techpractice/pkg/ordering/types"
)

const (
	// DefaultWeight is applied to channels that are absent from the table. It matches the lowest configured tier, so an
	// unexpected channel is still drained but never ahead of a configured one with a higher weight.
	DefaultWeight = 1

	// HighestWeight, SecondHighestWeight and the DefaultWeight form the standard four-channel layout.
	HighestWeight       = 5
	SecondHighestWeight = 3
)

// Table is an immutable mapping from channel id to a positive weight. It is safe for concurrent use.
type Table struct {
	weights map[int]int
	// ordered holds the configured channel ids in drain order.
	ordered []int
}

// NewTable validates the weights and returns a new `Table`. The map is copied; later changes to it have no effect.
func NewTable(weights map[int]int) (*Table, error) {
	var errs error
	for _, id := range sets.List(sets.KeySet(weights)) {
		if weights[id] <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("channel %d: %w, got %d", id, types.ErrInvalidWeight, weights[id]))
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidConfig, errs)
	}

	t := &Table{weights: maps.Clone(weights)}
	if t.weights == nil {
		t.weights = map[int]int{}
	}
	t.ordered = sets.List(sets.KeySet(t.weights))
	t.Sort(t.ordered)
	return t, nil
}

// MustNewTable is like `NewTable` but panics on invalid input. Intended for package-level defaults and tests.
func MustNewTable(weights map[int]int) *Table {
	t, err := NewTable(weights)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTable returns the standard layout: channels 1 and 2 at the default weight, channel 3 at the second highest
// weight and channel 4 at the highest.
func DefaultTable() *Table {
	return MustNewTable(map[int]int{
		1: DefaultWeight,
		2: DefaultWeight,
		3: SecondHighestWeight,
		4: HighestWeight,
	})
}

// Weight returns the transfer size of a channel, or `DefaultWeight` if the channel is not configured.
func (t *Table) Weight(channel int) int {
	if w, ok := t.weights[channel]; ok {
		return w
	}
	return DefaultWeight
}

// Len returns the number of configured channels.
func (t *Table) Len() int {
	return len(t.weights)
}

// Channels returns the configured channel ids in drain order.
func (t *Table) Channels() []int {
	return slices.Clone(t.ordered)
}

// Compare orders two channels for draining. It returns a negative number when a drains before b: higher weight first,
// then lower channel id.
func (t *Table) Compare(a, b int) int {
	if c := cmp.Compare(t.Weight(b), t.Weight(a)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// Sort orders channel ids in place by drain order.
func (t *Table) Sort(channels []int) {
	slices.SortFunc(channels, t.Compare)
}

func (t *Table) String() string {
	parts := make([]string, 0, len(t.ordered))
	for _, id := range t.ordered {
		parts = append(parts, fmt.Sprintf("%d:%d", id, t.weights[id]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
