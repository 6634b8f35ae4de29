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

package types

import "fmt"

// Message is a single unit of work arriving on a logical input channel.
//
// Messages are plain values: two messages are equal when their ID, SourceChannel and Payload are equal. They are never
// mutated after construction.
type Message struct {
	// ID identifies the message within its producer's stream.
	ID int64
	// SourceChannel is the logical channel the message arrived on. It selects both the channel buffer the message is
	// held in and the priority weight applied when draining it.
	SourceChannel int
	// Payload is the opaque message body.
	Payload string
}

// NewMessage creates a new `Message`.
func NewMessage(id int64, sourceChannel int, payload string) Message {
	return Message{ID: id, SourceChannel: sourceChannel, Payload: payload}
}

func (m Message) String() string {
	return fmt.Sprintf("Message{messageId=%d,sourceChannelId=%d,payload='%s'}", m.ID, m.SourceChannel, m.Payload)
}
