// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/logging"
	"github.com/gatherhall/event-service/pkg/concurrent"
)

// ParticipantService governs the invitation and approval lifecycle of the
// (event, user) relationship. Every transition is guarded by the actor's
// resolved role and applied with an optimistic revision check, so two racing
// writers to one row cannot both win.
type ParticipantService struct {
	EventRepository       domain.EventRepository
	ParticipantRepository domain.ParticipantRepository
	OrganizationRoster    domain.OrganizationRoster
	AccessService         *AccessService
	Notifier              domain.Notifier
	InvitationMailer      domain.InvitationMailer
	MessageBuilder        domain.ParticipantIndexSender
	Config                ServiceConfig
}

// NewParticipantService creates a new ParticipantService.
func NewParticipantService(
	eventRepository domain.EventRepository,
	participantRepository domain.ParticipantRepository,
	organizationRoster domain.OrganizationRoster,
	accessService *AccessService,
	notifier domain.Notifier,
	invitationMailer domain.InvitationMailer,
	messageBuilder domain.ParticipantIndexSender,
	config ServiceConfig,
) *ParticipantService {
	return &ParticipantService{
		EventRepository:       eventRepository,
		ParticipantRepository: participantRepository,
		OrganizationRoster:    organizationRoster,
		AccessService:         accessService,
		Notifier:              notifier,
		InvitationMailer:      invitationMailer,
		MessageBuilder:        messageBuilder,
		Config:                config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ParticipantService) ServiceReady() bool {
	return s.EventRepository != nil &&
		s.ParticipantRepository != nil &&
		s.AccessService != nil &&
		s.MessageBuilder != nil
}

// RequestAccess creates a pending access request for the actor. An approved
// row for the pair blocks the request; a non-approved row (a denied or still
// pending one) is reset back to the pending-request state. The event creator
// is notified.
func (s *ParticipantService) RequestAccess(ctx context.Context, actor models.Actor, eventUID string) (*models.Participant, error) {
	if actor.IsAnonymous() {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	event, err := s.EventRepository.Get(ctx, eventUID)
	if err != nil {
		return nil, err
	}

	if event.Creator == actor.Username {
		return nil, domain.NewConflictError("event creator cannot request access to their own event")
	}

	now := time.Now().UTC()
	existing, revision, err := s.ParticipantRepository.GetWithRevision(ctx, eventUID, actor.Username)
	switch {
	case err != nil && domain.GetErrorType(err) == domain.ErrorTypeNotFound:
		participant := &models.Participant{
			EventUID:  eventUID,
			Username:  actor.Username,
			Status:    models.StatusInvited,
			Approved:  false,
			CreatedAt: &now,
			UpdatedAt: &now,
		}
		if err := s.ParticipantRepository.Create(ctx, participant); err != nil {
			slog.ErrorContext(ctx, "error creating access request", logging.ErrKey, err)
			return nil, err
		}
		s.indexParticipant(ctx, models.ActionCreated, participant)
		s.notify(ctx, event.Creator, "New access request",
			fmt.Sprintf("%s requested access to %q", actor.Username, event.Title))
		return participant, nil

	case err != nil:
		slog.ErrorContext(ctx, "error getting participant", logging.ErrKey, err)
		return nil, err
	}

	if existing.Approved {
		return nil, domain.NewConflictError("user already holds an approved participation for this event")
	}

	existing.Status = models.StatusInvited
	existing.Approved = false
	existing.UpdatedAt = &now
	if err := s.ParticipantRepository.Update(ctx, existing, revision); err != nil {
		slog.ErrorContext(ctx, "error resetting access request", logging.ErrKey, err)
		return nil, err
	}

	s.indexParticipant(ctx, models.ActionUpdated, existing)
	s.notify(ctx, event.Creator, "New access request",
		fmt.Sprintf("%s requested access to %q", actor.Username, event.Title))

	return existing, nil
}

// InviteUser creates a pending invite for the named user. Only the creator
// or an admin may invite, the creator cannot be invited, and any existing
// row for the pair blocks the invite. The invitee is notified, and emailed a
// calendar invite when their address is known.
func (s *ParticipantService) InviteUser(ctx context.Context, actor models.Actor, eventUID, username, email string) (*models.Participant, error) {
	if username == "" {
		return nil, domain.NewValidationError("invitee username is required")
	}

	role, err := s.AccessService.ResolveAccess(ctx, actor, eventUID)
	if err != nil {
		return nil, err
	}
	if !role.HasOwnerPermissions() {
		return nil, domain.NewUnauthorizedError("only the event creator can invite users")
	}

	event, err := s.EventRepository.Get(ctx, eventUID)
	if err != nil {
		return nil, err
	}

	if username == event.Creator {
		return nil, domain.NewConflictError("the event creator cannot be invited")
	}

	_, err = s.ParticipantRepository.Get(ctx, eventUID, username)
	if err == nil {
		return nil, domain.NewConflictError("user already has a participation row for this event")
	}
	if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		slog.ErrorContext(ctx, "error checking for existing participant", logging.ErrKey, err)
		return nil, err
	}

	now := time.Now().UTC()
	participant := &models.Participant{
		EventUID:  eventUID,
		Username:  username,
		Email:     email,
		Status:    models.StatusInvited,
		Approved:  true,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	if err := s.ParticipantRepository.Create(ctx, participant); err != nil {
		slog.ErrorContext(ctx, "error creating invite", logging.ErrKey, err)
		return nil, err
	}

	s.indexParticipant(ctx, models.ActionCreated, participant)
	s.notify(ctx, username, "Event invitation",
		fmt.Sprintf("%s invited you to %q", actor.Username, event.Title))
	s.sendInvitationEmail(ctx, event, participant, actor.Username)

	return participant, nil
}

// AcceptInvite confirms the actor's pending invite.
func (s *ParticipantService) AcceptInvite(ctx context.Context, actor models.Actor, eventUID string) (*models.Participant, error) {
	return s.settleInvite(ctx, actor, eventUID, models.StatusConfirmed, true)
}

// DeclineInvite rejects the actor's pending invite.
func (s *ParticipantService) DeclineInvite(ctx context.Context, actor models.Actor, eventUID string) (*models.Participant, error) {
	return s.settleInvite(ctx, actor, eventUID, models.StatusDenied, false)
}

// settleInvite moves the actor's pending invite to its accepted or declined
// terminal state.
func (s *ParticipantService) settleInvite(ctx context.Context, actor models.Actor, eventUID string, status models.ParticipantStatus, approved bool) (*models.Participant, error) {
	if actor.IsAnonymous() {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	participant, revision, err := s.ParticipantRepository.GetWithRevision(ctx, eventUID, actor.Username)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, domain.NewInvalidTransitionError("no pending invite for this event")
		}
		return nil, err
	}

	if !participant.IsPendingInvite() {
		return nil, domain.NewInvalidTransitionError(
			fmt.Sprintf("cannot settle invite from state %s/%t", participant.Status, participant.Approved))
	}

	now := time.Now().UTC()
	participant.Status = status
	participant.Approved = approved
	participant.UpdatedAt = &now
	if err := s.ParticipantRepository.Update(ctx, participant, revision); err != nil {
		slog.ErrorContext(ctx, "error settling invite", logging.ErrKey, err)
		return nil, err
	}

	s.indexParticipant(ctx, models.ActionUpdated, participant)

	return participant, nil
}

// ApproveRequest confirms a pending access request. Creator-only; the
// requester is notified of the decision.
func (s *ParticipantService) ApproveRequest(ctx context.Context, actor models.Actor, eventUID, username string) (*models.Participant, error) {
	return s.settleRequest(ctx, actor, eventUID, username, models.StatusConfirmed, true)
}

// DenyRequest rejects a pending access request. Creator-only; the requester
// is notified of the decision.
func (s *ParticipantService) DenyRequest(ctx context.Context, actor models.Actor, eventUID, username string) (*models.Participant, error) {
	return s.settleRequest(ctx, actor, eventUID, username, models.StatusDenied, false)
}

// settleRequest moves a pending access request to its approved or denied
// terminal state and tells the requester what happened.
func (s *ParticipantService) settleRequest(ctx context.Context, actor models.Actor, eventUID, username string, status models.ParticipantStatus, approved bool) (*models.Participant, error) {
	role, err := s.AccessService.ResolveAccess(ctx, actor, eventUID)
	if err != nil {
		return nil, err
	}
	if !role.HasOwnerPermissions() {
		return nil, domain.NewUnauthorizedError("only the event creator can settle access requests")
	}

	participant, revision, err := s.ParticipantRepository.GetWithRevision(ctx, eventUID, username)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, domain.NewInvalidTransitionError("no pending access request for this user")
		}
		return nil, err
	}

	if !participant.IsPendingRequest() {
		return nil, domain.NewInvalidTransitionError(
			fmt.Sprintf("cannot settle access request from state %s/%t", participant.Status, participant.Approved))
	}

	now := time.Now().UTC()
	participant.Status = status
	participant.Approved = approved
	participant.UpdatedAt = &now
	if err := s.ParticipantRepository.Update(ctx, participant, revision); err != nil {
		slog.ErrorContext(ctx, "error settling access request", logging.ErrKey, err)
		return nil, err
	}

	s.indexParticipant(ctx, models.ActionUpdated, participant)

	event, eventErr := s.EventRepository.Get(ctx, eventUID)
	title := eventUID
	if eventErr == nil {
		title = event.Title
	}
	if status == models.StatusConfirmed {
		s.notify(ctx, username, "Access request approved",
			fmt.Sprintf("your request to join %q was approved", title))
	} else {
		s.notify(ctx, username, "Access request denied",
			fmt.Sprintf("your request to join %q was denied", title))
	}

	return participant, nil
}

// RevokeInvite deletes the named user's participation row. Creator-only.
func (s *ParticipantService) RevokeInvite(ctx context.Context, actor models.Actor, eventUID, username string) error {
	role, err := s.AccessService.ResolveAccess(ctx, actor, eventUID)
	if err != nil {
		return err
	}
	if !role.HasOwnerPermissions() {
		return domain.NewUnauthorizedError("only the event creator can revoke participations")
	}

	return s.deleteParticipant(ctx, eventUID, username)
}

// RemoveSelf deletes the actor's own participation row.
func (s *ParticipantService) RemoveSelf(ctx context.Context, actor models.Actor, eventUID string) error {
	if actor.IsAnonymous() {
		return domain.NewUnauthorizedError("authentication required")
	}

	return s.deleteParticipant(ctx, eventUID, actor.Username)
}

func (s *ParticipantService) deleteParticipant(ctx context.Context, eventUID, username string) error {
	_, revision, err := s.ParticipantRepository.GetWithRevision(ctx, eventUID, username)
	if err != nil {
		return err
	}

	if err := s.ParticipantRepository.Delete(ctx, eventUID, username, revision); err != nil {
		slog.ErrorContext(ctx, "error deleting participant", logging.ErrKey, err)
		return err
	}

	s.deleteIndexParticipant(ctx, eventUID, username)

	return nil
}

// InviteOrganization invites every member of the organization's roster who
// does not already hold a participation row, skipping the event creator.
// Creator-only. Row creation and notification fan out over a worker pool.
func (s *ParticipantService) InviteOrganization(ctx context.Context, actor models.Actor, eventUID, organization string) ([]*models.Participant, error) {
	role, err := s.AccessService.ResolveAccess(ctx, actor, eventUID)
	if err != nil {
		return nil, err
	}
	if !role.HasOwnerPermissions() {
		return nil, domain.NewUnauthorizedError("only the event creator can invite an organization")
	}

	event, err := s.EventRepository.Get(ctx, eventUID)
	if err != nil {
		return nil, err
	}

	members, err := s.OrganizationRoster.Members(ctx, organization)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var pending []*models.Participant
	for _, member := range members {
		if member == event.Creator {
			continue
		}

		_, err := s.ParticipantRepository.Get(ctx, eventUID, member)
		if err == nil {
			continue
		}
		if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			slog.ErrorContext(ctx, "error checking roster member participation", logging.ErrKey, err,
				"username", member)
			return nil, err
		}

		pending = append(pending, &models.Participant{
			EventUID:  eventUID,
			Username:  member,
			Status:    models.StatusInvited,
			Approved:  true,
			CreatedAt: &now,
			UpdatedAt: &now,
		})
	}

	tasks := make([]func() error, 0, len(pending))
	for _, participant := range pending {
		tasks = append(tasks, func() error {
			if err := s.ParticipantRepository.Create(ctx, participant); err != nil {
				return fmt.Errorf("inviting %s: %w", participant.Username, err)
			}
			s.indexParticipant(ctx, models.ActionCreated, participant)
			s.notify(ctx, participant.Username, "Event invitation",
				fmt.Sprintf("%s invited you to %q", actor.Username, event.Title))
			return nil
		})
	}

	pool := concurrent.NewWorkerPool(len(tasks))
	errs := pool.RunAll(ctx, tasks...)
	if len(errs) > 0 {
		for _, taskErr := range errs {
			slog.ErrorContext(ctx, "error inviting organization member", logging.ErrKey, taskErr)
		}
		return pending, domain.NewInternalError(
			fmt.Sprintf("failed to invite %d of %d organization members", len(errs), len(pending)), errs...)
	}

	return pending, nil
}

// RemoveOrganization deletes the participation rows of every roster member
// of the organization. Creator-only. Members without a row are skipped.
func (s *ParticipantService) RemoveOrganization(ctx context.Context, actor models.Actor, eventUID, organization string) ([]string, error) {
	role, err := s.AccessService.ResolveAccess(ctx, actor, eventUID)
	if err != nil {
		return nil, err
	}
	if !role.HasOwnerPermissions() {
		return nil, domain.NewUnauthorizedError("only the event creator can remove an organization")
	}

	members, err := s.OrganizationRoster.Members(ctx, organization)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		removed []string
	)
	tasks := make([]func() error, 0, len(members))
	for _, member := range members {
		tasks = append(tasks, func() error {
			err := s.deleteParticipant(ctx, eventUID, member)
			if err != nil {
				// Members without a row are not part of the cascade.
				if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
					return nil
				}
				return fmt.Errorf("removing %s: %w", member, err)
			}
			mu.Lock()
			removed = append(removed, member)
			mu.Unlock()
			return nil
		})
	}

	pool := concurrent.NewWorkerPool(len(tasks))
	errs := pool.RunAll(ctx, tasks...)
	if len(errs) > 0 {
		for _, taskErr := range errs {
			slog.ErrorContext(ctx, "error removing organization member", logging.ErrKey, taskErr)
		}
		return removed, domain.NewInternalError(
			fmt.Sprintf("failed to remove %d of %d organization members", len(errs), len(members)), errs...)
	}

	return removed, nil
}

// ListParticipants returns every participation row of an event.
func (s *ParticipantService) ListParticipants(ctx context.Context, eventUID string) ([]*models.Participant, error) {
	exists, err := s.EventRepository.Exists(ctx, eventUID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewNotFoundError("event not found")
	}

	return s.ParticipantRepository.ListByEvent(ctx, eventUID)
}

// notify delivers a fire-and-forget notification. Failures are logged and
// never abort the transition that triggered them.
func (s *ParticipantService) notify(ctx context.Context, recipient, subject, message string) {
	if s.Config.SkipNotifications || s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, recipient, subject, message); err != nil {
		slog.WarnContext(ctx, "error sending notification", logging.ErrKey, err,
			"recipient", recipient)
	}
}

func (s *ParticipantService) sendInvitationEmail(ctx context.Context, event *models.Event, participant *models.Participant, invitedBy string) {
	if s.Config.SkipNotifications || s.InvitationMailer == nil || participant.Email == "" {
		return
	}

	invitation := domain.EventInvitation{
		RecipientEmail:      participant.Email,
		RecipientName:       participant.Username,
		EventUID:            event.UID,
		EventTitle:          event.Title,
		Description:         event.Description,
		Location:            event.Location,
		StartTime:           event.StartTime,
		EndTime:             event.EndTime,
		InvitedBy:           invitedBy,
		RecurrenceFrequency: event.RecurrenceFrequency,
		RecurrenceEnd:       event.RecurrenceEnd,
	}
	if err := s.InvitationMailer.SendEventInvitation(ctx, invitation); err != nil {
		slog.WarnContext(ctx, "error sending invitation email", logging.ErrKey, err,
			"recipient", participant.Email)
	}
}

func (s *ParticipantService) indexParticipant(ctx context.Context, action models.MessageAction, participant *models.Participant) {
	if err := s.MessageBuilder.SendIndexParticipant(ctx, action, *participant); err != nil {
		slog.ErrorContext(ctx, "error sending participant indexing message", logging.ErrKey, err,
			logging.PriorityCritical())
	}
}

func (s *ParticipantService) deleteIndexParticipant(ctx context.Context, eventUID, username string) {
	key := fmt.Sprintf("%s/%s", eventUID, username)
	if err := s.MessageBuilder.SendDeleteIndexParticipant(ctx, key); err != nil {
		slog.ErrorContext(ctx, "error sending participant deletion indexing message", logging.ErrKey, err,
			logging.PriorityCritical())
	}
}
