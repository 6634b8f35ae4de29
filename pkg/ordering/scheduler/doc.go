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

// Package scheduler contains the weighted ordering engine: the ingress listener that accepts messages into per-channel
// buffers, and the scheduler that drains those buffers into a single bounded output queue.
//
// # Drain Order
//
// A pass repeatedly sweeps the channels that have pending messages. Within a sweep, channels are visited in priority
// order (highest weight first, ties by ascending channel id) and each channel contributes at most `weight` messages.
// After a sweep the pending set is rebuilt, so producers running concurrently are picked up by the next sweep. A pass
// ends when the output queue is full or when no channel has anything pending.
//
// For example, with weights {1:1, 2:1, 3:3, 4:5}, messages 1..15 assigned round-robin to channels 1..4 and an output
// capacity of 10, a single pass yields ids [4 8 12 3 7 11 1 2 15 5]: the first sweep takes everything channel 4 has,
// three from channel 3 and one each from channels 1 and 2; the second sweep fills the last two slots.
//
// # Concurrency Model
//
// `Receive` is safe for any number of concurrent producers. Exactly one goroutine drains: `RunPass` is serialized
// internally, and `Run` is expected to be started once. Moving a message is atomic from the caller's point of view:
// the head of a buffer is offered to the output queue and only removed from the buffer once the offer succeeded, so a
// full queue leaves the message where it was for the next pass.
//
// Consumers poll the output queue concurrently with the scheduler. A full queue is backpressure, not an error; the
// scheduler simply stops the pass and waits for the next one.
//
// # Run Loop
//
// `Run` waits the configured pass delay on the injected clock, runs a pass, and either returns (`RunModeOnce`) or
// repeats (`RunModeIndefinite`). With a zero delay, a pass that moved nothing parks the loop until a consumer frees an
// output slot or, when the output has room, until the next message arrives. Cancelling the context stops the loop at
// the top of the next pass, in the middle of the delay or while parked. Tests drive the loop with a fake clock, or call
// `RunPass` directly.
package scheduler
