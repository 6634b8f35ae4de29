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

// Package consumer provides a message consumer that periodically drains the ordered output queue in batches.
package consumer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/juneligan/techpractice/pkg/ordering/metrics"
	"github.com/juneligan/techpractice/pkg/ordering/types"
	logutil "github.com/juneligan/techpractice/pkg/ordering/util/logging"
)

const (
	// DefaultBatches is the default number of batches consumed before `Run` returns.
	DefaultBatches = 2
	// DefaultInterval is the default wait before each batch.
	DefaultInterval = time.Second
)

// Source is the queue a `Consumer` polls.
type Source interface {
	PollN(n int) []types.Message
	Len() int
}

// Consumer polls a `Source` in batches. A batch takes whatever is queued at the moment it starts.
type Consumer struct {
	source   Source
	clock    clock.Clock
	interval time.Duration
	batches  int
	logger   logr.Logger
	consumed atomic.Int64
}

// NewConsumer creates a new `Consumer`. A batches value of zero consumes until the context is cancelled; such a
// consumer always waits between batches, so a non-positive interval is replaced by `DefaultInterval`.
func NewConsumer(source Source, clock clock.Clock, interval time.Duration, batches int, logger logr.Logger) *Consumer {
	logger = logger.WithName("consumer")
	if batches == 0 && interval <= 0 {
		logger.Info("Unbounded consumer needs a positive interval, using the default",
			"interval", interval, "default", DefaultInterval)
		interval = DefaultInterval
	}
	return &Consumer{
		source:   source,
		clock:    clock,
		interval: interval,
		batches:  batches,
		logger:   logger,
	}
}

// Consumed returns the total number of messages consumed so far.
func (c *Consumer) Consumed() int64 {
	return c.consumed.Load()
}

// ConsumeBatch polls every message currently queued and returns them in order.
func (c *Consumer) ConsumeBatch(batch int) []types.Message {
	msgs := c.source.PollN(c.source.Len())
	for i, msg := range msgs {
		metrics.RecordConsumed(msg.SourceChannel)
		c.logger.V(logutil.VERBOSE).Info("Consumed",
			"payload", msg.Payload, "channel", msg.SourceChannel, "counter", i+1)
	}
	c.consumed.Add(int64(len(msgs)))
	c.logger.V(logutil.DEFAULT).Info("Batch done", "batch", batch, "size", len(msgs), "total", c.Consumed())
	return msgs
}

// Run consumes the configured number of batches, waiting the interval before each one. It returns early, without
// error, if the context is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for batch := 1; c.batches == 0 || batch <= c.batches; batch++ {
		if !c.wait(ctx) {
			return
		}
		c.ConsumeBatch(batch)
	}
}

func (c *Consumer) wait(ctx context.Context) bool {
	if c.interval <= 0 {
		return ctx.Err() == nil
	}
	timer := c.clock.NewTimer(c.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C():
		return true
	}
}
