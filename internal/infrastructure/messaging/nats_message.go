// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go"

	"github.com/gatherhall/event-service/internal/domain"
)

// NatsMessage adapts a NATS message to the domain Message interface.
type NatsMessage struct {
	msg *nats.Msg
}

// NewNatsMessage wraps a NATS message.
func NewNatsMessage(msg *nats.Msg) *NatsMessage {
	return &NatsMessage{msg: msg}
}

var _ domain.Message = (*NatsMessage)(nil)

// Subject returns the subject of the message.
func (m *NatsMessage) Subject() string {
	return m.msg.Subject
}

// Data returns the payload of the message.
func (m *NatsMessage) Data() []byte {
	return m.msg.Data
}

// Respond replies to the message.
func (m *NatsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

// HasReply reports whether the sender expects a reply.
func (m *NatsMessage) HasReply() bool {
	return m.msg.Reply != ""
}
