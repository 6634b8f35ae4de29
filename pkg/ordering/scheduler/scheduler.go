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
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/juneligan/techpractice/pkg/ordering/buffer"
	"github.com/juneligan/techpractice/pkg/ordering/metrics"
	"github.com/juneligan/techpractice/pkg/ordering/output"
	"github.com/juneligan/techpractice/pkg/ordering/priority"
	"github.com/juneligan/techpractice/pkg/ordering/types"
	logutil "github.com/juneligan/techpractice/pkg/ordering/util/logging"
)

// Listener accepts messages arriving from producers.
type Listener interface {
	// Receive appends the message to the buffer of its source channel. It is safe for concurrent use and never fails.
	Receive(msg types.Message)
}

// OutputQueue is the consumer-facing view of the bounded output queue.
type OutputQueue interface {
	// Poll removes and returns the head message. The boolean is false if the queue is empty; it never blocks.
	Poll() (types.Message, bool)
	// PollN removes up to n messages from the head, in order.
	PollN(n int) []types.Message
	// Len returns the number of queued messages.
	Len() int
	// Capacity returns the configured capacity.
	Capacity() int
}

// OutputProvider exposes the output queue to consumers.
type OutputProvider interface {
	OutputQueue() OutputQueue
}

// SweepResult describes one priority-ordered sweep over the pending channels.
type SweepResult struct {
	// Channels lists the channels that contributed, in the order they were served.
	Channels []int
	// Transferred maps each contributing channel to the number of messages it moved. Never more than its weight.
	Transferred map[int]int
}

// Total returns the number of messages moved in the sweep.
func (r SweepResult) Total() int {
	total := 0
	for _, n := range r.Transferred {
		total += n
	}
	return total
}

// PassResult describes one scheduling pass.
type PassResult struct {
	Sweeps []SweepResult
	// Transferred is the number of messages moved during the pass.
	Transferred int
	// Stalled is true when the pass ended on a full output queue while messages were still pending.
	Stalled bool
}

// Stats is a point-in-time snapshot of the scheduler's buffers and output queue.
type Stats struct {
	PendingPerChannel map[int]int
	TotalPending      int
	OutputLen         int
	OutputCapacity    int
	// Passes is the number of passes completed since construction.
	Passes int64
}

// Scheduler drains per-channel buffers into a bounded output queue in weighted priority order.
type Scheduler struct {
	config  *Config
	table   *priority.Table
	buffers *buffer.Registry
	output  *output.Queue
	clock   clock.Clock
	logger  logr.Logger

	// passMu serializes passes so that the buffers only ever have one draining goroutine.
	passMu sync.Mutex
	passes atomic.Int64
	// received holds at most one pending notification that a message arrived.
	received chan struct{}
}

var (
	_ Listener       = &Scheduler{}
	_ OutputProvider = &Scheduler{}
)

// NewScheduler creates a new `Scheduler`. A nil config selects all defaults and a nil clock selects the real clock.
// The output queue gauges are process-wide, so with more than one scheduler they reflect the last writer.
func NewScheduler(config *Config, clk clock.Clock, logger logr.Logger) (*Scheduler, error) {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if config == nil {
		var err error
		if config, err = NewConfig(); err != nil {
			return nil, err
		}
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	table := config.Priorities
	if table == nil {
		table = priority.DefaultTable()
	}

	out, err := output.NewQueue(config.OutputCapacity)
	if err != nil {
		return nil, err
	}
	logger = logger.WithName("scheduler")
	metrics.SetOutputQueue(0, out.Capacity())

	return &Scheduler{
		config:  config,
		table:   table,
		buffers: buffer.NewRegistry(logger, table.Channels()...),
		output:  out,
		clock:    clk,
		logger:   logger,
		received: make(chan struct{}, 1),
	}, nil
}

// Receive implements `Listener`.
func (s *Scheduler) Receive(msg types.Message) {
	s.buffers.Push(msg)
	select {
	case s.received <- struct{}{}:
	default:
	}
	metrics.RecordReceived(msg.SourceChannel)
	s.logger.V(logutil.TRACE).Info("Message received", "id", msg.ID, "channel", msg.SourceChannel)
}

// OutputQueue implements `OutputProvider`.
func (s *Scheduler) OutputQueue() OutputQueue {
	return s.output
}

// ChannelCount returns the number of channels in the priority table.
func (s *Scheduler) ChannelCount() int {
	return s.table.Len()
}

// Stats returns a snapshot of pending and queued message counts.
func (s *Scheduler) Stats() Stats {
	return Stats{
		PendingPerChannel: s.buffers.PendingCounts(),
		TotalPending:      s.buffers.TotalPending(),
		OutputLen:         s.output.Len(),
		OutputCapacity:    s.output.Capacity(),
		Passes:            s.passes.Load(),
	}
}

// Run is the scheduler's control loop. It blocks until the context is cancelled, or until the first pass completes
// when the run mode is `RunModeOnce`.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.V(logutil.DEFAULT).Info("Scheduler run loop starting", "config", s.config.String())
	defer s.logger.V(logutil.DEFAULT).Info("Scheduler run loop stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		if !s.waitForPass(ctx) {
			return
		}
		result := s.RunPass(ctx)
		if s.config.RunMode == RunModeOnce {
			return
		}
		if result.Transferred == 0 && s.config.PassDelay == 0 && !s.waitForWork(ctx) {
			return
		}
	}
}

// waitForWork parks an idle loop that has no pass delay. A full output queue waits for a consumer to free a slot;
// otherwise the buffers are empty and it waits for the next message. It returns false if the context was cancelled
// first.
func (s *Scheduler) waitForWork(ctx context.Context) bool {
	var wake <-chan struct{} = s.received
	outputFull := s.output.Remaining() == 0
	if outputFull {
		wake = s.output.SpaceAvailable()
	}
	s.logger.V(logutil.TRACE).Info("Scheduler idle", "outputFull", outputFull)

	select {
	case <-ctx.Done():
		return false
	case <-wake:
		return true
	}
}

// waitForPass waits out the pass delay. It returns false if the context was cancelled first.
func (s *Scheduler) waitForPass(ctx context.Context) bool {
	if s.config.PassDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := s.clock.NewTimer(s.config.PassDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C():
		return true
	}
}

// RunPass performs one scheduling pass: it sweeps the pending channels in priority order until the output queue is
// full or every buffer is empty. Calls are serialized.
func (s *Scheduler) RunPass(ctx context.Context) PassResult {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	defer s.passes.Add(1)

	start := s.clock.Now()
	logger := s.logger.WithName("pass")
	var result PassResult

	for s.output.Remaining() > 0 && ctx.Err() == nil {
		pending := s.pendingInPriorityOrder()
		if len(pending) == 0 {
			break
		}
		sweep := s.sweep(pending, logger)
		if sweep.Total() == 0 {
			break
		}
		result.Sweeps = append(result.Sweeps, sweep)
		result.Transferred += sweep.Total()
	}

	stats := s.Stats()
	result.Stalled = s.output.Remaining() == 0 && stats.TotalPending > 0

	for ch, n := range stats.PendingPerChannel {
		metrics.SetChannelPending(ch, n)
	}
	metrics.SetOutputQueue(stats.OutputLen, stats.OutputCapacity)
	metrics.RecordPass(s.clock.Since(start), len(result.Sweeps), result.Stalled)

	logger.V(logutil.DEBUG).Info("Pass complete",
		"transferred", result.Transferred,
		"sweeps", len(result.Sweeps),
		"stalled", result.Stalled,
		"pending", stats.TotalPending,
		"outputLen", stats.OutputLen,
	)
	return result
}

// pendingInPriorityOrder returns the buffers with pending messages, highest weight first.
func (s *Scheduler) pendingInPriorityOrder() []*buffer.ChannelBuffer {
	pending := s.buffers.Pending()
	slices.SortFunc(pending, func(a, b *buffer.ChannelBuffer) int {
		return s.table.Compare(a.Channel(), b.Channel())
	})
	return pending
}

// sweep visits each pending channel once, moving up to its weight in messages.
func (s *Scheduler) sweep(pending []*buffer.ChannelBuffer, logger logr.Logger) SweepResult {
	result := SweepResult{
		Channels:    make([]int, 0, len(pending)),
		Transferred: make(map[int]int, len(pending)),
	}
	for _, b := range pending {
		ch := b.Channel()
		weight := s.table.Weight(ch)
		moved := 0
		for moved < weight && s.transferOne(b, logger) {
			moved++
		}
		if moved > 0 {
			result.Channels = append(result.Channels, ch)
			result.Transferred[ch] = moved
			metrics.RecordTransferred(ch, moved)
		}
		if s.output.Remaining() == 0 {
			break
		}
	}
	return result
}

// transferOne moves the head of a buffer into the output queue. It returns false, leaving the buffer untouched, if the
// buffer is empty or the output queue rejected the message.
func (s *Scheduler) transferOne(b *buffer.ChannelBuffer, logger logr.Logger) bool {
	msg, ok := b.Peek()
	if !ok {
		return false
	}
	if !s.output.Offer(msg) {
		return false
	}
	// This goroutine is the only one that removes from buffers, so the head is still msg.
	b.Pop()
	logger.V(logutil.TRACE).Info("Message transferred", "id", msg.ID, "channel", msg.SourceChannel)
	return true
}
