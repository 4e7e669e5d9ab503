// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/logging"
)

// AccessService resolves the access role of an actor for a single event.
// Sources are consulted in a fixed priority order, so an actor matching
// several of them always receives the highest-ranked role.
type AccessService struct {
	eventRepository       domain.EventRepository
	participantRepository domain.ParticipantRepository
}

// NewAccessService creates a new access service.
func NewAccessService(
	eventRepository domain.EventRepository,
	participantRepository domain.ParticipantRepository,
) *AccessService {
	return &AccessService{
		eventRepository:       eventRepository,
		participantRepository: participantRepository,
	}
}

// ServiceReady checks if the service is ready to resolve roles.
func (s *AccessService) ServiceReady() bool {
	return s.eventRepository != nil && s.participantRepository != nil
}

// ResolveAccess computes the actor's role for the event.
//
// Priority order: missing event yields a NotFound error; an anonymous actor
// is Anonymous; the event creator is Owner even when a participant row
// exists for them; the admin flag grants Admin; a pending access request is
// PendingApproval; a confirmed row is Participant; everything else is
// Outsider.
func (s *AccessService) ResolveAccess(ctx context.Context, actor models.Actor, eventUID string) (models.AccessRole, error) {
	if eventUID == "" {
		return "", domain.NewValidationError("event UID is required")
	}

	event, err := s.eventRepository.Get(ctx, eventUID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting event for access resolution", logging.ErrKey, err)
		return "", err
	}

	if actor.IsAnonymous() {
		return models.RoleAnonymous, nil
	}

	if event.Creator == actor.Username {
		return models.RoleOwner, nil
	}

	if actor.Admin {
		return models.RoleAdmin, nil
	}

	participant, err := s.participantRepository.Get(ctx, eventUID, actor.Username)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return models.RoleOutsider, nil
		}
		slog.ErrorContext(ctx, "error getting participant for access resolution", logging.ErrKey, err)
		return "", err
	}

	switch {
	case participant.IsPendingRequest():
		return models.RolePendingApproval, nil
	case participant.IsConfirmed():
		return models.RoleParticipant, nil
	}

	return models.RoleOutsider, nil
}
