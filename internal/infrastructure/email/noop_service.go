// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"log/slog"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/logging"
)

// NoOpService is a no-operation email service that logs but doesn't send emails.
type NoOpService struct{}

// NewNoOpService creates a new no-op email service.
func NewNoOpService() *NoOpService {
	return &NoOpService{}
}

// SendEventInvitation logs the invitation but doesn't send an email.
func (s *NoOpService) SendEventInvitation(ctx context.Context, invitation domain.EventInvitation) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", invitation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("event_title", invitation.EventTitle))

	slog.DebugContext(ctx, "email service disabled, skipping invitation email")
	return nil
}
