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

// Package buffer provides the per-channel message buffers that hold messages between ingress and the output queue.
//
// Each `ChannelBuffer` is a strict FIFO that is written by any number of producers and drained by exactly one
// scheduler. The `Registry` owns the set of buffers, one per channel id, and guarantees that concurrent first arrivals
// on the same channel resolve to a single buffer.
package buffer

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/juneligan/techpractice/pkg/ordering/types"
)

// ChannelBuffer is an unbounded, concurrent-safe FIFO of messages for a single channel.
//
// # Concurrency
//
// `Push` may be called from any number of goroutines. `Peek` and `Pop` are expected to be called from the single
// draining goroutine; under that contract a `Peek` followed by a `Pop` always observes the same head message, which is
// what lets the scheduler move one message atomically (the head is only removed after the output accepted it).
// `Len` reads an atomic counter and never takes the lock.
type ChannelBuffer struct {
	channel  int
	messages *list.List
	len      atomic.Int64
	mu       sync.Mutex
}

// newChannelBuffer creates a new, empty `ChannelBuffer` for a channel.
func newChannelBuffer(channel int) *ChannelBuffer {
	return &ChannelBuffer{
		channel:  channel,
		messages: list.New(),
	}
}

// Channel returns the channel id this buffer holds messages for.
func (b *ChannelBuffer) Channel() int {
	return b.channel
}

// Push appends a message to the tail of the buffer.
func (b *ChannelBuffer) Push(msg types.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages.PushBack(msg)
	b.len.Add(1)
}

// Peek returns the head message without removing it. The boolean is false if the buffer is empty.
func (b *ChannelBuffer) Peek() (types.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	head := b.messages.Front()
	if head == nil {
		return types.Message{}, false
	}
	return head.Value.(types.Message), true
}

// Pop removes and returns the head message. The boolean is false if the buffer is empty.
func (b *ChannelBuffer) Pop() (types.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	head := b.messages.Front()
	if head == nil {
		return types.Message{}, false
	}
	b.messages.Remove(head)
	b.len.Add(-1)
	return head.Value.(types.Message), true
}

// Len returns the number of pending messages.
func (b *ChannelBuffer) Len() int {
	return int(b.len.Load())
}

// IsEmpty reports whether the buffer has no pending messages.
func (b *ChannelBuffer) IsEmpty() bool {
	return b.Len() == 0
}
