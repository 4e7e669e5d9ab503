// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/logging"
	"github.com/gatherhall/event-service/pkg/concurrent"
)

// EventService owns event creation, recurring series generation, cascading
// deletion, and event comments.
//
// Series generation and future-occurrence deletion for one recurrence group
// are serialized through a per-group mutex, so a generate racing a cascade
// cannot slip a new occurrence past the deletion cutoff.
type EventService struct {
	EventRepository   domain.EventRepository
	CommentRepository domain.CommentRepository
	OccurrenceService *OccurrenceService
	AccessService     *AccessService
	MessageBuilder    domain.EventIndexSender
	Config            ServiceConfig

	groupLocks *concurrent.KeyedMutex
}

// NewEventService creates a new EventService.
func NewEventService(
	eventRepository domain.EventRepository,
	commentRepository domain.CommentRepository,
	occurrenceService *OccurrenceService,
	accessService *AccessService,
	messageBuilder domain.EventIndexSender,
	config ServiceConfig,
) *EventService {
	return &EventService{
		EventRepository:   eventRepository,
		CommentRepository: commentRepository,
		OccurrenceService: occurrenceService,
		AccessService:     accessService,
		MessageBuilder:    messageBuilder,
		Config:            config,
		groupLocks:        concurrent.NewKeyedMutex(),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *EventService) ServiceReady() bool {
	return s.EventRepository != nil &&
		s.CommentRepository != nil &&
		s.OccurrenceService != nil &&
		s.AccessService != nil &&
		s.MessageBuilder != nil
}

// CreateEvent stores a new event for the actor. When recurrence is requested
// the event becomes a series template: a recurrence group is minted and the
// bounded follow-on occurrences are generated and stored alongside it.
//
// A failure partway through series generation aborts the remaining
// occurrences; the returned error reports how many rows were stored.
func (s *EventService) CreateEvent(ctx context.Context, actor models.Actor, event *models.Event, recurrence *models.RecurrenceOptions) (*models.Event, []*models.Event, error) {
	if actor.IsAnonymous() {
		return nil, nil, domain.NewUnauthorizedError("authentication required")
	}
	if err := validateEvent(event, recurrence); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	event.UID = uuid.New().String()
	event.Creator = actor.Username
	event.CreatedAt = &now
	event.UpdatedAt = &now

	if recurrence == nil {
		event.IsRecurring = false
		event.RecurrenceFrequency = ""
		event.RecurrenceEnd = nil
		event.RecurrenceGroupID = ""

		if err := s.EventRepository.Create(ctx, event); err != nil {
			slog.ErrorContext(ctx, "error creating event", logging.ErrKey, err)
			return nil, nil, err
		}
		s.indexEvent(ctx, models.ActionCreated, event)
		return event, nil, nil
	}

	event.IsRecurring = true
	event.RecurrenceFrequency = recurrence.Frequency
	recurrenceEnd := recurrence.End
	event.RecurrenceEnd = &recurrenceEnd
	event.RecurrenceGroupID = uuid.New().String()

	s.groupLocks.Lock(event.RecurrenceGroupID)
	defer s.groupLocks.Unlock(event.RecurrenceGroupID)

	if err := s.EventRepository.Create(ctx, event); err != nil {
		slog.ErrorContext(ctx, "error creating series template", logging.ErrKey, err)
		return nil, nil, err
	}
	s.indexEvent(ctx, models.ActionCreated, event)

	occurrences := s.OccurrenceService.ExpandSeries(event, recurrence.Frequency, recurrence.End)
	for i, occurrence := range occurrences {
		occurrence.UID = uuid.New().String()
		occurrence.CreatedAt = &now
		occurrence.UpdatedAt = &now
		if err := s.EventRepository.Create(ctx, occurrence); err != nil {
			slog.ErrorContext(ctx, "error creating series occurrence", logging.ErrKey, err,
				"recurrence_group_id", event.RecurrenceGroupID)
			return event, occurrences[:i], domain.NewInternalError(
				fmt.Sprintf("series partially generated: stored %d of %d occurrences", i, len(occurrences)), err)
		}
		s.indexEvent(ctx, models.ActionCreated, occurrence)
	}

	return event, occurrences, nil
}

func validateEvent(event *models.Event, recurrence *models.RecurrenceOptions) error {
	if event == nil {
		return domain.NewValidationError("event is required")
	}
	if event.Title == "" {
		return domain.NewValidationError("event title is required")
	}
	if event.StartTime.IsZero() || event.EndTime.IsZero() {
		return domain.NewValidationError("event start and end times are required")
	}
	if event.EndTime.Before(event.StartTime) {
		return domain.NewValidationError("event start time must not be after its end time")
	}
	if recurrence != nil {
		if !recurrence.Frequency.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("unsupported recurrence frequency %q", recurrence.Frequency))
		}
		if recurrence.End.IsZero() {
			return domain.NewValidationError("recurrence end date is required")
		}
	}
	return nil
}

// GetEvent returns one event row.
func (s *EventService) GetEvent(ctx context.Context, eventUID string) (*models.Event, error) {
	if eventUID == "" {
		return nil, domain.NewValidationError("event UID is required")
	}
	return s.EventRepository.Get(ctx, eventUID)
}

// DeleteEvent removes an event. ScopeInstance deletes exactly the named row;
// ScopeAllFuture also cascades to every row of its recurrence group whose
// start is strictly later than the named row's. Creator-only.
func (s *EventService) DeleteEvent(ctx context.Context, actor models.Actor, eventUID string, scope models.DeletionScope) error {
	role, err := s.AccessService.ResolveAccess(ctx, actor, eventUID)
	if err != nil {
		return err
	}
	if !role.HasOwnerPermissions() {
		return domain.NewUnauthorizedError("only the event creator can delete an event")
	}

	event, revision, err := s.EventRepository.GetWithRevision(ctx, eventUID)
	if err != nil {
		return err
	}

	switch scope {
	case models.ScopeInstance:
		return s.deleteRow(ctx, event, revision)

	case models.ScopeAllFuture:
		if event.RecurrenceGroupID == "" {
			return s.deleteRow(ctx, event, revision)
		}
		return s.deleteFutureOccurrences(ctx, event, revision)

	default:
		return domain.NewValidationError(fmt.Sprintf("unsupported deletion scope %q", scope))
	}
}

func (s *EventService) deleteRow(ctx context.Context, event *models.Event, revision uint64) error {
	if err := s.EventRepository.Delete(ctx, event.UID, revision); err != nil {
		slog.ErrorContext(ctx, "error deleting event", logging.ErrKey, err)
		return err
	}
	s.deleteIndexEvent(ctx, event.UID)
	return nil
}

// deleteFutureOccurrences deletes the event and every group member starting
// strictly after it. The group lock is held for the whole cutoff-and-delete
// sequence.
func (s *EventService) deleteFutureOccurrences(ctx context.Context, event *models.Event, revision uint64) error {
	s.groupLocks.Lock(event.RecurrenceGroupID)
	defer s.groupLocks.Unlock(event.RecurrenceGroupID)

	siblings, err := s.EventRepository.ListByGroup(ctx, event.RecurrenceGroupID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing recurrence group", logging.ErrKey, err)
		return err
	}

	if err := s.deleteRow(ctx, event, revision); err != nil {
		return err
	}

	cutoff := event.StartTime
	for _, sibling := range siblings {
		if sibling.UID == event.UID || !sibling.StartTime.After(cutoff) {
			continue
		}

		_, siblingRevision, err := s.EventRepository.GetWithRevision(ctx, sibling.UID)
		if err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
				continue
			}
			return err
		}
		if err := s.deleteRow(ctx, &models.Event{UID: sibling.UID}, siblingRevision); err != nil {
			return err
		}
	}

	return nil
}

// NextOccurrence projects the following occurrence of a recurring event
// without consulting the stored series.
func (s *EventService) NextOccurrence(ctx context.Context, eventUID string) (start, end time.Time, ok bool, err error) {
	event, err := s.EventRepository.Get(ctx, eventUID)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	start, end, ok = s.OccurrenceService.NextOccurrence(event)
	return start, end, ok, nil
}

// AddComment records a remark on an event. Only the creator, an admin, or a
// confirmed participant may comment.
func (s *EventService) AddComment(ctx context.Context, actor models.Actor, eventUID, text string) (*models.Comment, error) {
	if text == "" {
		return nil, domain.NewValidationError("comment text is required")
	}

	role, err := s.AccessService.ResolveAccess(ctx, actor, eventUID)
	if err != nil {
		return nil, err
	}
	if !role.HasOwnerPermissions() && role != models.RoleParticipant {
		return nil, domain.NewUnauthorizedError("only the creator or a confirmed participant can comment")
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		UID:       uuid.New().String(),
		EventUID:  eventUID,
		Author:    actor.Username,
		Text:      text,
		CreatedAt: &now,
	}
	if err := s.CommentRepository.Create(ctx, comment); err != nil {
		slog.ErrorContext(ctx, "error creating comment", logging.ErrKey, err)
		return nil, err
	}

	return comment, nil
}

// DeleteComment removes a comment. Allowed for its author and for anyone
// holding owner permissions on the event.
func (s *EventService) DeleteComment(ctx context.Context, actor models.Actor, commentUID string) error {
	comment, err := s.CommentRepository.Get(ctx, commentUID)
	if err != nil {
		return err
	}

	if comment.Author != actor.Username {
		role, err := s.AccessService.ResolveAccess(ctx, actor, comment.EventUID)
		if err != nil {
			return err
		}
		if !role.HasOwnerPermissions() {
			return domain.NewUnauthorizedError("only the comment author or the event creator can delete a comment")
		}
	}

	if err := s.CommentRepository.Delete(ctx, commentUID); err != nil {
		slog.ErrorContext(ctx, "error deleting comment", logging.ErrKey, err)
		return err
	}

	return nil
}

// ListComments returns an event's comments, oldest first. Visible to the
// creator, admins, and confirmed participants.
func (s *EventService) ListComments(ctx context.Context, actor models.Actor, eventUID string) ([]*models.Comment, error) {
	role, err := s.AccessService.ResolveAccess(ctx, actor, eventUID)
	if err != nil {
		return nil, err
	}
	if !role.HasOwnerPermissions() && role != models.RoleParticipant {
		return nil, domain.NewUnauthorizedError("only the creator or a confirmed participant can read comments")
	}

	comments, err := s.CommentRepository.ListByEvent(ctx, eventUID)
	if err != nil {
		return nil, err
	}

	sortCommentsByCreation(comments)
	return comments, nil
}

func sortCommentsByCreation(comments []*models.Comment) {
	slices.SortStableFunc(comments, func(a, b *models.Comment) int {
		switch {
		case a.CreatedAt == nil || b.CreatedAt == nil:
			return 0
		case a.CreatedAt.Before(*b.CreatedAt):
			return -1
		case a.CreatedAt.After(*b.CreatedAt):
			return 1
		}
		return 0
	})
}

func (s *EventService) indexEvent(ctx context.Context, action models.MessageAction, event *models.Event) {
	if err := s.MessageBuilder.SendIndexEvent(ctx, action, *event); err != nil {
		slog.ErrorContext(ctx, "error sending event indexing message", logging.ErrKey, err,
			logging.PriorityCritical())
	}
}

func (s *EventService) deleteIndexEvent(ctx context.Context, eventUID string) {
	if err := s.MessageBuilder.SendDeleteIndexEvent(ctx, eventUID); err != nil {
		slog.ErrorContext(ctx, "error sending event deletion indexing message", logging.ErrKey, err,
			logging.PriorityCritical())
	}
}
