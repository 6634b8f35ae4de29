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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

func TestChannelCounters(t *testing.T) {
	Register()
	Reset()

	RecordReceived(1)
	RecordReceived(1)
	RecordReceived(4)
	RecordTransferred(4, 3)
	RecordTransferred(1, 0)
	RecordConsumed(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(receivedCounter.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(receivedCounter.WithLabelValues("4")))
	assert.Equal(t, 3.0, testutil.ToFloat64(transferredCounter.WithLabelValues("4")))
	assert.Equal(t, 1.0, testutil.ToFloat64(consumedCounter.WithLabelValues("4")))
	assert.Equal(t, 1, testutil.CollectAndCount(transferredCounter), "zero transfers should not create a series")
}

func TestGauges(t *testing.T) {
	Register()
	Reset()

	SetChannelPending(3, 7)
	SetOutputQueue(4, 10)
	RecordOrderingInfo("abc123", "main")

	assert.Equal(t, 7.0, testutil.ToFloat64(pendingGauge.WithLabelValues("3")))
	assert.Equal(t, 4.0, testutil.ToFloat64(outputQueueSize))
	assert.Equal(t, 10.0, testutil.ToFloat64(outputQueueCapacity))
	assert.Equal(t, 1.0, testutil.ToFloat64(OrderingInfo.WithLabelValues("abc123", "main")))
}

func TestRecordPass(t *testing.T) {
	Register()

	before := testutil.ToFloat64(capacityStallsCounter)
	sweepsBefore := histogramOf(t, passSweeps)
	RecordPass(time.Millisecond, 3, true)
	RecordPass(time.Millisecond, 1, false)
	assert.Equal(t, before+1, testutil.ToFloat64(capacityStallsCounter))

	sweeps := histogramOf(t, passSweeps)
	assert.Equal(t, sweepsBefore.GetSampleCount()+2, sweeps.GetSampleCount())
	assert.InDelta(t, sweepsBefore.GetSampleSum()+4, sweeps.GetSampleSum(), 1e-9)
	assert.GreaterOrEqual(t, histogramOf(t, passDuration).GetSampleCount(), uint64(2))
}

func histogramOf(t *testing.T, h prometheus.Histogram) *dto.Histogram {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, h.Write(m))
	return m.GetHistogram()
}

func TestRegister_IsIdempotent(t *testing.T) {
	Register()
	Register()

	count, err := testutil.GatherAndCount(metrics.Registry, "ordering_output_queue_capacity")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReset(t *testing.T) {
	Register()
	RecordReceived(2)
	RecordTransferred(2, 1)
	RecordConsumed(2)
	SetChannelPending(2, 5)
	SetOutputQueue(3, 10)
	RecordOrderingInfo("abc123", "main")
	RecordPass(time.Millisecond, 1, true)
	stalls := testutil.ToFloat64(capacityStallsCounter)

	Reset()

	assert.Zero(t, testutil.CollectAndCount(receivedCounter))
	assert.Zero(t, testutil.CollectAndCount(transferredCounter))
	assert.Zero(t, testutil.CollectAndCount(consumedCounter))
	assert.Zero(t, testutil.CollectAndCount(pendingGauge))
	assert.Zero(t, testutil.CollectAndCount(OrderingInfo))
	assert.Zero(t, testutil.ToFloat64(outputQueueSize))
	assert.Zero(t, testutil.ToFloat64(outputQueueCapacity))
	assert.Equal(t, stalls, testutil.ToFloat64(capacityStallsCounter), "the stall counter is not reset")
}
