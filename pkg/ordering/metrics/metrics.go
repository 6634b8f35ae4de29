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
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	// --- Subsystems ---
	OrderingComponent = "ordering"
)

var (
	// --- Common Label Sets ---
	ChannelLabels = []string{"channel"}

	// PassLatencyBuckets covers in-memory passes from 1us to 1s.
	PassLatencyBuckets = []float64{
		0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0,
	}
)

// --- Channel Metrics ---
var (
	receivedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: OrderingComponent,
			Name:      "messages_received_total",
			Help:      "Counter of messages accepted by the ingress listener, per source channel.",
		},
		ChannelLabels,
	)

	transferredCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: OrderingComponent,
			Name:      "messages_transferred_total",
			Help:      "Counter of messages moved from a channel buffer into the output queue, per source channel.",
		},
		ChannelLabels,
	)

	consumedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: OrderingComponent,
			Name:      "messages_consumed_total",
			Help:      "Counter of messages polled from the output queue by consumers, per source channel.",
		},
		ChannelLabels,
	)

	pendingGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: OrderingComponent,
			Name:      "channel_pending_messages",
			Help:      "Number of messages waiting in a channel buffer, sampled after every pass.",
		},
		ChannelLabels,
	)
)

// --- Output Queue and Scheduler Metrics ---
var (
	outputQueueSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: OrderingComponent,
			Name:      "output_queue_size",
			Help:      "Number of messages in the output queue, sampled after every pass.",
		},
	)

	outputQueueCapacity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: OrderingComponent,
			Name:      "output_queue_capacity",
			Help:      "Configured capacity of the output queue.",
		},
	)

	capacityStallsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: OrderingComponent,
			Name:      "capacity_stalls_total",
			Help:      "Counter of passes that ended with messages still pending because the output queue was full.",
		},
	)

	passDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Subsystem: OrderingComponent,
			Name:      "pass_duration_seconds",
			Help:      "Distribution of scheduling pass durations in seconds.",
			Buckets:   PassLatencyBuckets,
		},
	)

	passSweeps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Subsystem: OrderingComponent,
			Name:      "pass_sweeps",
			Help:      "Distribution of the number of priority-ordered sweeps performed per pass.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256},
		},
	)

	// Info metric carrying build labels.
	OrderingInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: OrderingComponent,
			Name:      "info",
			Help:      "General information of the current build of the ordering module.",
		},
		[]string{"commit", "build_ref"},
	)
)

var registerMetrics sync.Once

// Register all metrics.
func Register(customCollectors ...prometheus.Collector) {
	registerMetrics.Do(func() {
		metrics.Registry.MustRegister(receivedCounter)
		metrics.Registry.MustRegister(transferredCounter)
		metrics.Registry.MustRegister(consumedCounter)
		metrics.Registry.MustRegister(pendingGauge)
		metrics.Registry.MustRegister(outputQueueSize)
		metrics.Registry.MustRegister(outputQueueCapacity)
		metrics.Registry.MustRegister(capacityStallsCounter)
		metrics.Registry.MustRegister(passDuration)
		metrics.Registry.MustRegister(passSweeps)
		metrics.Registry.MustRegister(OrderingInfo)
		for _, collector := range customCollectors {
			metrics.Registry.MustRegister(collector)
		}
	})
}

// Reset clears the per-channel series, the output queue gauges and the info metric. Just for tests.
// The capacity stall counter and the pass histograms are plain collectors without a reset and keep accumulating, so
// tests assert on their deltas.
func Reset() {
	receivedCounter.Reset()
	transferredCounter.Reset()
	consumedCounter.Reset()
	pendingGauge.Reset()
	outputQueueSize.Set(0)
	outputQueueCapacity.Set(0)
	OrderingInfo.Reset()
}

// RecordReceived records a message accepted on a channel.
func RecordReceived(channel int) {
	receivedCounter.WithLabelValues(strconv.Itoa(channel)).Inc()
}

// RecordTransferred records n messages moved from a channel buffer to the output queue.
func RecordTransferred(channel int, n int) {
	if n <= 0 {
		return
	}
	transferredCounter.WithLabelValues(strconv.Itoa(channel)).Add(float64(n))
}

// RecordConsumed records a message polled from the output queue.
func RecordConsumed(channel int) {
	consumedCounter.WithLabelValues(strconv.Itoa(channel)).Inc()
}

// SetChannelPending records the number of messages pending in a channel buffer.
func SetChannelPending(channel int, pending int) {
	pendingGauge.WithLabelValues(strconv.Itoa(channel)).Set(float64(pending))
}

// SetOutputQueue records the size and capacity of the output queue.
func SetOutputQueue(size, capacity int) {
	outputQueueSize.Set(float64(size))
	outputQueueCapacity.Set(float64(capacity))
}

// RecordPass records the duration and sweep count of a scheduling pass and whether it stalled on capacity.
func RecordPass(duration time.Duration, sweeps int, stalled bool) {
	passDuration.Observe(duration.Seconds())
	passSweeps.Observe(float64(sweeps))
	if stalled {
		capacityStallsCounter.Inc()
	}
}

// RecordOrderingInfo records the build information.
func RecordOrderingInfo(commitSha, buildRef string) {
	OrderingInfo.WithLabelValues(commitSha, buildRef).Set(1)
}
