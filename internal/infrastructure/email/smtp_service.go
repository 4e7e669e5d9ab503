// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/logging"
	"github.com/gatherhall/event-service/pkg/constants"
)

// SMTPService implements the InvitationMailer interface using SMTP.
type SMTPService struct {
	config     SMTPConfig
	templates  Templates
	ics        EventICSGenerator
	appBaseURL string
	send       func(recipient, message string, config SMTPConfig) error
}

// SMTPConfig holds the SMTP server configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string // Optional for authenticated SMTP
	Password string // Optional for authenticated SMTP
}

// NewSMTPService creates a new SMTP email service. The appBaseURL is used to
// build the event links embedded in email bodies; it may be empty.
func NewSMTPService(config SMTPConfig, appBaseURL string) (*SMTPService, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	return &SMTPService{
		config:     config,
		templates:  templates,
		ics:        NewICSGenerator(),
		appBaseURL: appBaseURL,
		send:       sendEmailMessage,
	}, nil
}

// SendEventInvitation sends an invitation email with an attached calendar invite.
func (s *SMTPService) SendEventInvitation(ctx context.Context, invitation domain.EventInvitation) error {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", invitation.RecipientEmail))
	ctx = logging.AppendCtx(ctx, slog.String("event_title", invitation.EventTitle))

	data := invitationTemplateData{
		EventInvitation: invitation,
		EventURL:        constants.EventURL(s.appBaseURL, invitation.EventUID),
	}

	htmlContent, err := renderTemplate(s.templates.Invitation.HTML, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render HTML template", logging.ErrKey, err)
		return fmt.Errorf("failed to render HTML template: %w", err)
	}

	textContent, err := renderTemplate(s.templates.Invitation.Text, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render text template", logging.ErrKey, err)
		return fmt.Errorf("failed to render text template: %w", err)
	}

	icsContent, err := s.ics.GenerateEventInvitationICS(ICSEventInvitationParams{
		EventUID:       invitation.EventUID,
		EventTitle:     invitation.EventTitle,
		Description:    invitation.Description,
		Location:       invitation.Location,
		StartTime:      invitation.StartTime,
		EndTime:        invitation.EndTime,
		OrganizerName:  invitation.InvitedBy,
		RecipientEmail: invitation.RecipientEmail,
		EventURL:       data.EventURL,
		Frequency:      invitation.RecurrenceFrequency,
		RecurrenceEnd:  invitation.RecurrenceEnd,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate calendar invite", logging.ErrKey, err)
		return fmt.Errorf("failed to generate calendar invite: %w", err)
	}

	subject := fmt.Sprintf("Invitation: %s", invitation.EventTitle)
	message := buildEmailMessage(invitation.RecipientEmail, subject, htmlContent, textContent, icsContent, s.config)
	if err := s.send(invitation.RecipientEmail, message, s.config); err != nil {
		slog.ErrorContext(ctx, "failed to send invitation email", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "invitation email sent successfully")
	return nil
}
