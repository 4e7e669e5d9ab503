// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// EventIndexSender handles indexing operations for events.
type EventIndexSender interface {
	SendIndexEvent(ctx context.Context, action models.MessageAction, data models.Event) error
	SendDeleteIndexEvent(ctx context.Context, eventUID string) error
}

// ParticipantIndexSender handles indexing operations for participants.
type ParticipantIndexSender interface {
	SendIndexParticipant(ctx context.Context, action models.MessageAction, data models.Participant) error
	SendDeleteIndexParticipant(ctx context.Context, key string) error
}
