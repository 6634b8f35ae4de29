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

package buffer

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/juneligan/techpractice/pkg/ordering/types"
	logutil "github.com/juneligan/techpractice/pkg/ordering/util/logging"
)

// Registry is the set of channel buffers, keyed by channel id.
//
// Buffers for the channels passed to `NewRegistry` exist from the start. Any other channel gets its buffer on first
// use through `GetOrCreate`, which is a single atomic get-or-create: two producers racing on a new channel always end
// up appending to the same buffer. Buffers are never removed.
type Registry struct {
	mu      sync.RWMutex
	buffers map[int]*ChannelBuffer
	logger  logr.Logger
}

// NewRegistry creates a `Registry` pre-populated with empty buffers for the given channels.
func NewRegistry(logger logr.Logger, channels ...int) *Registry {
	r := &Registry{
		buffers: make(map[int]*ChannelBuffer, len(channels)),
		logger:  logger.WithName("buffer-registry"),
	}
	for _, ch := range channels {
		if _, ok := r.buffers[ch]; !ok {
			r.buffers[ch] = newChannelBuffer(ch)
		}
	}
	return r
}

// Get returns the buffer for a channel, if it exists.
func (r *Registry) Get(channel int) (*ChannelBuffer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buffers[channel]
	return b, ok
}

// GetOrCreate returns the buffer for a channel, creating it if this is the first message seen on that channel.
func (r *Registry) GetOrCreate(channel int) *ChannelBuffer {
	// Fast path: every channel after its first message.
	if b, ok := r.Get(channel); ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buffers[channel]; ok {
		return b
	}
	b := newChannelBuffer(channel)
	r.buffers[channel] = b
	r.logger.V(logutil.VERBOSE).Info("Created buffer for previously unseen channel", "channel", channel)
	return b
}

// Push appends a message to the buffer of its source channel.
func (r *Registry) Push(msg types.Message) {
	r.GetOrCreate(msg.SourceChannel).Push(msg)
}

// Pending returns the buffers that currently hold at least one message, in no particular order.
func (r *Registry) Pending() []*ChannelBuffer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]*ChannelBuffer, 0, len(r.buffers))
	for _, b := range r.buffers {
		if !b.IsEmpty() {
			pending = append(pending, b)
		}
	}
	return pending
}

// PendingCounts returns a snapshot of the number of pending messages per known channel, including empty ones.
func (r *Registry) PendingCounts() map[int]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[int]int, len(r.buffers))
	for ch, b := range r.buffers {
		counts[ch] = b.Len()
	}
	return counts
}

// TotalPending returns the number of pending messages across all channels.
func (r *Registry) TotalPending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, b := range r.buffers {
		total += b.Len()
	}
	return total
}

// Len returns the number of known channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buffers)
}
