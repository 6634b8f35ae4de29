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

package output

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juneligan/techpractice/pkg/ordering/types"
)

func TestNewQueue_RejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1} {
		q, err := NewQueue(capacity)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrInvalidConfig))
		assert.Nil(t, q)
	}
}

func TestQueue_OfferAndPoll(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(2)
	require.NoError(t, err)
	assert.Equal(t, 2, q.Capacity())
	assert.Equal(t, 2, q.Remaining())

	_, ok := q.Poll()
	assert.False(t, ok, "polling an empty queue returns no message")

	assert.True(t, q.Offer(types.NewMessage(1, 1, "a")))
	assert.True(t, q.Offer(types.NewMessage(2, 1, "b")))
	assert.False(t, q.Offer(types.NewMessage(3, 1, "c")), "offer on a full queue is rejected")
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 0, q.Remaining())

	msg, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, int64(1), msg.ID)

	// Wrap around the ring.
	assert.True(t, q.Offer(types.NewMessage(4, 1, "d")))
	got := q.PollN(10)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)
	assert.Empty(t, q.PollN(3))
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ConcurrentAccessNeverExceedsCapacity(t *testing.T) {
	t.Parallel()

	const (
		capacity = 8
		total    = 5000
		readers  = 4
	)
	q, err := NewQueue(capacity)
	require.NoError(t, err)

	var consumed atomic.Int64
	var maxSeen atomic.Int64
	var wg sync.WaitGroup
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for consumed.Load() < total {
				storeMax(&maxSeen, int64(q.Len()))
				if _, ok := q.Poll(); ok {
					consumed.Add(1)
				}
			}
		}()
	}

	for i := 0; i < total; {
		if q.Offer(types.NewMessage(int64(i), 1, "")) {
			i++
		}
	}
	wg.Wait()

	assert.Equal(t, int64(total), consumed.Load())
	assert.LessOrEqual(t, maxSeen.Load(), int64(capacity))
}

// storeMax raises v to n unless a concurrent writer already stored something larger.
func storeMax(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n <= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func TestQueue_SpaceAvailable(t *testing.T) {
	t.Parallel()

	q, err := NewQueue(2)
	require.NoError(t, err)

	assertNoSignal := func(msg string) {
		t.Helper()
		select {
		case <-q.SpaceAvailable():
			t.Fatal(msg)
		default:
		}
	}

	assertNoSignal("a new queue has freed nothing")
	require.True(t, q.Offer(types.NewMessage(1, 1, "")))
	require.True(t, q.Offer(types.NewMessage(2, 1, "")))
	assertNoSignal("offers never signal space")

	_, ok := q.Poll()
	require.True(t, ok)
	require.Len(t, q.PollN(5), 1)
	select {
	case <-q.SpaceAvailable():
	default:
		t.Fatal("a removal should signal space")
	}
	assertNoSignal("removals between receives are coalesced")

	assert.Empty(t, q.PollN(1))
	_, ok = q.Poll()
	assert.False(t, ok)
	assertNoSignal("polling an empty queue frees nothing")
}
