// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/logging"
)

// NatsNotifier publishes fire-and-forget notification messages. Delivery to
// the user (in-app, email digest) is owned by the consumer of the subject.
type NatsNotifier struct {
	NatsConn INatsConn
}

// NewNatsNotifier creates a new NatsNotifier.
func NewNatsNotifier(natsConn INatsConn) *NatsNotifier {
	return &NatsNotifier{
		NatsConn: natsConn,
	}
}

// Notify publishes a notification message for the recipient.
func (n *NatsNotifier) Notify(ctx context.Context, recipient, subject, message string) error {
	notification := models.Notification{
		Recipient: recipient,
		Subject:   subject,
		Message:   message,
	}

	data, err := json.Marshal(notification)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling notification into JSON", logging.ErrKey, err)
		return err
	}

	if err := n.NatsConn.Publish(models.NotificationSubject, data); err != nil {
		slog.ErrorContext(ctx, "error publishing notification to NATS", logging.ErrKey, err,
			"recipient", recipient,
		)
		return err
	}

	slog.DebugContext(ctx, "published notification", "recipient", recipient, "subject", subject)
	return nil
}
