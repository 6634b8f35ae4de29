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

package priority

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juneligan/techpractice/pkg/ordering/types"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		weights   map[int]int
		expectErr bool
		expected  []int
	}{
		{
			name:     "DefaultLayout",
			weights:  map[int]int{1: 1, 2: 1, 3: 3, 4: 5},
			expected: []int{4, 3, 1, 2},
		},
		{
			name:     "TiesBrokenByAscendingID",
			weights:  map[int]int{9: 2, 7: 2, 8: 2, 1: 1},
			expected: []int{7, 8, 9, 1},
		},
		{
			name:     "EmptyTable",
			weights:  nil,
			expected: []int{},
		},
		{
			name:      "ZeroWeight_Invalid",
			weights:   map[int]int{1: 0},
			expectErr: true,
		},
		{
			name:      "NegativeWeight_Invalid",
			weights:   map[int]int{1: 1, 2: -3},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			table, err := NewTable(tc.weights)
			if tc.expectErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrInvalidConfig), "error should wrap ErrInvalidConfig")
				assert.True(t, errors.Is(err, types.ErrInvalidWeight), "error should wrap ErrInvalidWeight")
				assert.Nil(t, table)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, table.Channels()); diff != "" {
				t.Errorf("Unexpected channel order (-want +got): %s", diff)
			}
		})
	}
}

func TestTable_ReportsAllInvalidWeights(t *testing.T) {
	t.Parallel()
	_, err := NewTable(map[int]int{1: 0, 2: -1, 3: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel 1")
	assert.Contains(t, err.Error(), "channel 2")
	assert.NotContains(t, err.Error(), "channel 3")
}

func TestTable_WeightAndDefaults(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, HighestWeight, table.Weight(4))
	assert.Equal(t, SecondHighestWeight, table.Weight(3))
	assert.Equal(t, DefaultWeight, table.Weight(1))
	assert.Equal(t, DefaultWeight, table.Weight(99), "unknown channels fall back to the default weight")
	assert.Equal(t, "{4:5, 3:3, 1:1, 2:1}", table.String())
}

func TestTable_IsImmutable(t *testing.T) {
	t.Parallel()

	weights := map[int]int{1: 1, 2: 2}
	table := MustNewTable(weights)
	weights[1] = 10
	assert.Equal(t, 1, table.Weight(1), "mutating the source map must not change the table")

	channels := table.Channels()
	channels[0] = 42
	assert.Equal(t, []int{2, 1}, table.Channels(), "mutating the returned slice must not change the table")
}

func TestTable_Sort(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	channels := []int{1, 2, 99, 3, 4, 5}
	table.Sort(channels)
	// 99 and 5 are unconfigured and share the default weight with channels 1 and 2.
	assert.Equal(t, []int{4, 3, 1, 2, 5, 99}, channels)
}

func TestMustNewTable_Panics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { MustNewTable(map[int]int{1: 0}) })
}
