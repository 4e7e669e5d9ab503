// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// EventRepository defines the interface for event storage operations.
// This interface can be implemented by different storage backends (NATS, PostgreSQL, etc.)
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Exists(ctx context.Context, eventUID string) (bool, error)
	Get(ctx context.Context, eventUID string) (*models.Event, error)
	GetWithRevision(ctx context.Context, eventUID string) (*models.Event, uint64, error)
	Update(ctx context.Context, event *models.Event, revision uint64) error
	Delete(ctx context.Context, eventUID string, revision uint64) error

	// ListByGroup returns every event sharing a recurrence group.
	ListByGroup(ctx context.Context, recurrenceGroupID string) ([]*models.Event, error)
	// ListByCreator returns every event created by a user.
	ListByCreator(ctx context.Context, username string) ([]*models.Event, error)
	ListAll(ctx context.Context) ([]*models.Event, error)
}

// ParticipantRepository defines the interface for participant storage
// operations. Rows are keyed by (event, user), so at most one row exists per
// pair.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	Get(ctx context.Context, eventUID, username string) (*models.Participant, error)
	GetWithRevision(ctx context.Context, eventUID, username string) (*models.Participant, uint64, error)
	Update(ctx context.Context, participant *models.Participant, revision uint64) error
	Delete(ctx context.Context, eventUID, username string, revision uint64) error

	ListByEvent(ctx context.Context, eventUID string) ([]*models.Participant, error)
	ListByUser(ctx context.Context, username string) ([]*models.Participant, error)
}

// CommentRepository defines the interface for event comment storage.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	Get(ctx context.Context, commentUID string) (*models.Comment, error)
	Delete(ctx context.Context, commentUID string) error
	ListByEvent(ctx context.Context, eventUID string) ([]*models.Comment, error)
}

// FriendRoster exposes the friend subsystem as a read-only roster.
type FriendRoster interface {
	// AcceptedFriends returns the usernames whose friendship with the user is
	// in the accepted state.
	AcceptedFriends(ctx context.Context, username string) ([]string, error)
}

// OrganizationRoster exposes the organization subsystem as a read-only roster.
type OrganizationRoster interface {
	// Members returns the usernames belonging to the organization, including
	// its owner. A missing organization yields a NotFound error.
	Members(ctx context.Context, organization string) ([]string, error)
}
