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

// Package output provides the bounded FIFO queue that the scheduler drains channel buffers into and consumers poll
// from.
package output

import (
	"fmt"
	"sync"

	"github.com/juneligan/techpractice/pkg/ordering/types"
)

// Queue is a fixed-capacity, concurrent-safe FIFO of messages.
//
// The queue never grows past its capacity. `Offer` on a full queue is rejected and returns false instead of blocking,
// which is how the scheduler observes backpressure. `Poll` on an empty queue returns false instead of blocking.
// Insertion and removal are each a single critical section, so any mix of one writer and many readers is race-free.
type Queue struct {
	mu    sync.Mutex
	ring  []types.Message
	head  int
	count int
	// space holds at most one pending notification that a removal freed a slot.
	space chan struct{}
}

// NewQueue creates a new `Queue` with the given capacity.
func NewQueue(capacity int) (*Queue, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: output queue capacity must be positive, got %d", types.ErrInvalidConfig, capacity)
	}
	return &Queue{
		ring:  make([]types.Message, capacity),
		space: make(chan struct{}, 1),
	}, nil
}

// Offer appends a message to the tail. It returns false, leaving the queue unchanged, if the queue is full.
func (q *Queue) Offer(msg types.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == len(q.ring) {
		return false
	}
	q.ring[(q.head+q.count)%len(q.ring)] = msg
	q.count++
	return true
}

// Poll removes and returns the head message. The boolean is false if the queue is empty.
func (q *Queue) Poll() (types.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return types.Message{}, false
	}
	msg := q.ring[q.head]
	q.ring[q.head] = types.Message{}
	q.head = (q.head + 1) % len(q.ring)
	q.count--
	q.signalSpace()
	return msg, true
}

// PollN removes up to n messages from the head, in order. It returns an empty slice if the queue is empty.
func (q *Queue) PollN(n int) []types.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	n = min(n, q.count)
	msgs := make([]types.Message, 0, max(n, 0))
	for i := 0; i < n; i++ {
		msgs = append(msgs, q.ring[q.head])
		q.ring[q.head] = types.Message{}
		q.head = (q.head + 1) % len(q.ring)
	}
	q.count -= len(msgs)
	if len(msgs) > 0 {
		q.signalSpace()
	}
	return msgs
}

// SpaceAvailable returns a channel that receives after a removal frees a slot. Notifications are coalesced: several
// removals between two receives produce a single one, and a notification may be stale by the time it is received.
func (q *Queue) SpaceAvailable() <-chan struct{} {
	return q.space
}

// signalSpace must be called with q.mu held.
func (q *Queue) signalSpace() {
	select {
	case q.space <- struct{}{}:
	default:
	}
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity returns the fixed maximum number of messages the queue can hold.
func (q *Queue) Capacity() int {
	return len(q.ring)
}

// Remaining returns the number of free slots. A concurrent `Poll` can only make the true value larger.
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ring) - q.count
}
