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

package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testclock "k8s.io/utils/clock/testing"

	"github.com/juneligan/techpractice/pkg/ordering/output"
	"github.com/juneligan/techpractice/pkg/ordering/types"
	logutil "github.com/juneligan/techpractice/pkg/ordering/util/logging"
)

const (
	testInterval    = time.Second
	testWaitTimeout = 2 * time.Second
	testPollTick    = time.Millisecond
)

func newFilledQueue(t *testing.T, capacity int, ids ...int64) *output.Queue {
	t.Helper()
	q, err := output.NewQueue(capacity)
	require.NoError(t, err)
	for _, id := range ids {
		require.True(t, q.Offer(types.NewMessage(id, 1, "")))
	}
	return q
}

func TestConsumer_ConsumeBatch(t *testing.T) {
	t.Parallel()

	q := newFilledQueue(t, 5, 4, 8, 12)
	c := NewConsumer(q, testclock.NewFakeClock(time.Now()), testInterval, DefaultBatches, logutil.NewTestLogger())

	msgs := c.ConsumeBatch(1)
	require.Len(t, msgs, 3)
	assert.Equal(t, int64(4), msgs[0].ID)
	assert.Equal(t, int64(12), msgs[2].ID)
	assert.Equal(t, int64(3), c.Consumed())
	assert.Zero(t, q.Len())

	assert.Empty(t, c.ConsumeBatch(2), "an empty queue yields an empty batch")
}

func TestConsumer_RunConsumesConfiguredBatches(t *testing.T) {
	t.Parallel()

	clk := testclock.NewFakeClock(time.Now())
	q := newFilledQueue(t, 10, 1, 2)
	c := NewConsumer(q, clk, testInterval, 2, logutil.NewTestLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(context.Background())
	}()

	require.Eventually(t, clk.HasWaiters, testWaitTimeout, testPollTick)
	clk.Step(testInterval)
	require.Eventually(t, func() bool { return c.Consumed() == 2 }, testWaitTimeout, testPollTick)

	require.True(t, q.Offer(types.NewMessage(3, 2, "")))
	require.Eventually(t, clk.HasWaiters, testWaitTimeout, testPollTick)
	clk.Step(testInterval)

	select {
	case <-done:
	case <-time.After(testWaitTimeout):
		t.Fatal("Run did not return after the configured number of batches")
	}
	assert.Equal(t, int64(3), c.Consumed())
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	clk := testclock.NewFakeClock(time.Now())
	q := newFilledQueue(t, 2, 1)
	c := NewConsumer(q, clk, testInterval, 0, logutil.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	require.Eventually(t, clk.HasWaiters, testWaitTimeout, testPollTick)
	cancel()
	select {
	case <-done:
	case <-time.After(testWaitTimeout):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.Zero(t, c.Consumed())
	assert.Equal(t, 1, q.Len())
}

func TestConsumer_UnboundedRunWithoutIntervalWaits(t *testing.T) {
	t.Parallel()

	clk := testclock.NewFakeClock(time.Now())
	q := newFilledQueue(t, 2, 1)
	c := NewConsumer(q, clk, 0, 0, logutil.NewTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()

	require.Eventually(t, clk.HasWaiters, testWaitTimeout, testPollTick, "consumer should wait on the default interval")
	assert.Zero(t, c.Consumed())

	clk.Step(DefaultInterval)
	require.Eventually(t, func() bool { return c.Consumed() == 1 }, testWaitTimeout, testPollTick)
	require.Eventually(t, clk.HasWaiters, testWaitTimeout, testPollTick, "consumer should wait again before the next batch")

	cancel()
	select {
	case <-done:
	case <-time.After(testWaitTimeout):
		t.Fatal("Run did not stop after cancellation")
	}
}
