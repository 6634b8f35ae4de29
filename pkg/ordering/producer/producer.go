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

// Package producer provides a message producer that feeds a generated batch of messages into an ingress listener.
package producer

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/juneligan/techpractice/pkg/ordering/types"
	logutil "github.com/juneligan/techpractice/pkg/ordering/util/logging"
)

const (
	// DefaultMessageCount is the default number of messages generated, chosen to overrun the default output capacity.
	DefaultMessageCount = 505
	// DefaultChannelCount is the default number of channels messages are spread over.
	DefaultChannelCount = 4
)

// Listener accepts produced messages.
type Listener interface {
	Receive(msg types.Message)
}

// GenerateMessages builds count messages assigned round-robin to channels 1..channels. Message i (0-based) gets id
// i+1, channel i%channels+1 and payload "Message i".
func GenerateMessages(count, channels int) []types.Message {
	if count <= 0 {
		return nil
	}
	channels = max(channels, 1)
	msgs := make([]types.Message, 0, count)
	for i := 0; i < count; i++ {
		msgs = append(msgs, types.NewMessage(int64(i+1), i%channels+1, fmt.Sprintf("Message %d", i)))
	}
	return msgs
}

// Producer sends a fixed batch of messages to a `Listener`.
type Producer struct {
	listener Listener
	messages []types.Message
	logger   logr.Logger
}

// NewProducer creates a new `Producer`. Each producer is tagged with a batch id in its logs.
func NewProducer(listener Listener, messages []types.Message, logger logr.Logger) *Producer {
	return &Producer{
		listener: listener,
		messages: messages,
		logger:   logger.WithName("producer").WithValues("batchID", uuid.NewString()),
	}
}

// Run sends every message in order and returns the number sent. It stops early, without error, if the context is
// cancelled.
func (p *Producer) Run(ctx context.Context) int {
	p.logger.V(logutil.DEFAULT).Info("Producing messages", "count", len(p.messages))
	sent := 0
	for _, msg := range p.messages {
		if ctx.Err() != nil {
			p.logger.V(logutil.DEFAULT).Info("Producer cancelled", "sent", sent, "remaining", len(p.messages)-sent)
			return sent
		}
		p.logger.V(logutil.TRACE).Info("Produced", "payload", msg.Payload, "channel", msg.SourceChannel)
		p.listener.Receive(msg)
		sent++
	}
	p.logger.V(logutil.DEFAULT).Info("Producer finished", "sent", sent)
	return sent
}
