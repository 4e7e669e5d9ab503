// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"
	"time"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// Notifier delivers fire-and-forget notifications to users. A failed delivery
// must never abort or roll back the state change that triggered it; callers
// log the error and move on.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, message string) error
}

// EventInvitation carries everything the invitation mailer needs to send a
// calendar invite for an event.
type EventInvitation struct {
	RecipientEmail      string
	RecipientName       string
	EventUID            string
	EventTitle          string
	Description         string
	Location            string
	StartTime           time.Time
	EndTime             time.Time
	InvitedBy           string
	RecurrenceFrequency models.RecurrenceFrequency // empty for one-off events
	RecurrenceEnd       *time.Time
}

// InvitationMailer sends rich invitation email when the invitee's address is
// known. Like Notifier, failures are logged and swallowed by callers.
type InvitationMailer interface {
	SendEventInvitation(ctx context.Context, invitation EventInvitation) error
}
