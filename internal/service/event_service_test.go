// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/mocks"
	"github.com/gatherhall/event-service/internal/domain/models"
)

type eventServiceMocks struct {
	eventRepo       *mocks.MockEventRepository
	participantRepo *mocks.MockParticipantRepository
	commentRepo     *mocks.MockCommentRepository
	messageBuilder  *mocks.MockMessageBuilder
}

func newEventService() (*EventService, eventServiceMocks) {
	m := eventServiceMocks{
		eventRepo:       new(mocks.MockEventRepository),
		participantRepo: new(mocks.MockParticipantRepository),
		commentRepo:     new(mocks.MockCommentRepository),
		messageBuilder:  new(mocks.MockMessageBuilder),
	}

	service := NewEventService(
		m.eventRepo,
		m.commentRepo,
		NewOccurrenceService(),
		NewAccessService(m.eventRepo, m.participantRepo),
		m.messageBuilder,
		ServiceConfig{},
	)

	return service, m
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	alice := models.Actor{Username: "alice"}

	template := func() *models.Event {
		return &models.Event{
			Title:     "Book Club",
			StartTime: time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC),
		}
	}

	t.Run("anonymous actor rejected", func(t *testing.T) {
		service, _ := newEventService()
		_, _, err := service.CreateEvent(ctx, models.Actor{}, template(), nil)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeUnauthorized, domain.GetErrorType(err))
	})

	t.Run("missing title rejected", func(t *testing.T) {
		service, _ := newEventService()
		event := template()
		event.Title = ""
		_, _, err := service.CreateEvent(ctx, alice, event, nil)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("start after end rejected", func(t *testing.T) {
		service, _ := newEventService()
		event := template()
		event.StartTime, event.EndTime = event.EndTime, event.StartTime
		_, _, err := service.CreateEvent(ctx, alice, event, nil)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("unsupported frequency rejected", func(t *testing.T) {
		service, _ := newEventService()
		_, _, err := service.CreateEvent(ctx, alice, template(), &models.RecurrenceOptions{
			Frequency: "hourly",
			End:       time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})

	t.Run("one-off event stored without a series", func(t *testing.T) {
		service, m := newEventService()
		m.eventRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Event) bool {
			return e.UID != "" && e.Creator == "alice" && !e.IsRecurring && e.RecurrenceGroupID == ""
		})).Return(nil)
		m.messageBuilder.On("SendIndexEvent", mock.Anything, models.ActionCreated, mock.Anything).Return(nil)

		event, occurrences, err := service.CreateEvent(ctx, alice, template(), nil)
		require.NoError(t, err)
		assert.NotEmpty(t, event.UID)
		assert.Empty(t, occurrences)
		m.eventRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("recurring event stores template plus occurrences", func(t *testing.T) {
		service, m := newEventService()
		m.eventRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.messageBuilder.On("SendIndexEvent", mock.Anything, models.ActionCreated, mock.Anything).Return(nil)

		event, occurrences, err := service.CreateEvent(ctx, alice, template(), &models.RecurrenceOptions{
			Frequency: models.RecurrenceWeekly,
			End:       time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, occurrences, 3)
		assert.True(t, event.IsRecurring)
		assert.NotEmpty(t, event.RecurrenceGroupID)
		for _, occurrence := range occurrences {
			assert.NotEmpty(t, occurrence.UID)
			assert.Equal(t, event.RecurrenceGroupID, occurrence.RecurrenceGroupID)
		}
		// Template plus three occurrences.
		m.eventRepo.AssertNumberOfCalls(t, "Create", 4)
	})

	t.Run("partial series failure reports stored count", func(t *testing.T) {
		service, m := newEventService()
		storeErr := domain.NewUnavailableError("store unavailable")
		m.eventRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Event) bool {
			// Fail the second generated occurrence.
			return e.StartTime.Equal(time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC))
		})).Return(storeErr)
		m.eventRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		m.messageBuilder.On("SendIndexEvent", mock.Anything, models.ActionCreated, mock.Anything).Return(nil)

		event, occurrences, err := service.CreateEvent(ctx, alice, template(), &models.RecurrenceOptions{
			Frequency: models.RecurrenceWeekly,
			End:       time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
		})
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
		assert.Contains(t, err.Error(), "stored 1 of 3")
		assert.NotNil(t, event)
		assert.Len(t, occurrences, 1)
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	alice := models.Actor{Username: "alice"}

	groupEvent := func(uid string, start time.Time) *models.Event {
		return &models.Event{
			UID:               uid,
			Title:             "Standup",
			Creator:           "alice",
			StartTime:         start,
			EndTime:           start.Add(30 * time.Minute),
			IsRecurring:       true,
			RecurrenceGroupID: "group-1",
		}
	}

	t.Run("non-owner cannot delete", func(t *testing.T) {
		service, m := newEventService()
		event := groupEvent("event-a", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
		m.eventRepo.On("Get", mock.Anything, "event-a").Return(event, nil)
		m.participantRepo.On("Get", mock.Anything, "event-a", "bob").
			Return(nil, domain.NewNotFoundError("participant not found"))

		err := service.DeleteEvent(ctx, models.Actor{Username: "bob"}, "event-a", models.ScopeInstance)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeUnauthorized, domain.GetErrorType(err))
	})

	t.Run("instance scope deletes exactly one row", func(t *testing.T) {
		service, m := newEventService()
		event := groupEvent("event-a", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
		m.eventRepo.On("Get", mock.Anything, "event-a").Return(event, nil)
		m.eventRepo.On("GetWithRevision", mock.Anything, "event-a").Return(event, uint64(2), nil)
		m.eventRepo.On("Delete", mock.Anything, "event-a", uint64(2)).Return(nil)
		m.messageBuilder.On("SendDeleteIndexEvent", mock.Anything, "event-a").Return(nil)

		err := service.DeleteEvent(ctx, alice, "event-a", models.ScopeInstance)
		require.NoError(t, err)
		m.eventRepo.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("all-future scope cascades to later occurrences only", func(t *testing.T) {
		service, m := newEventService()
		first := groupEvent("event-1", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
		second := groupEvent("event-2", time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC))
		third := groupEvent("event-3", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))

		m.eventRepo.On("Get", mock.Anything, "event-2").Return(second, nil)
		m.eventRepo.On("GetWithRevision", mock.Anything, "event-2").Return(second, uint64(1), nil)
		m.eventRepo.On("ListByGroup", mock.Anything, "group-1").
			Return([]*models.Event{first, second, third}, nil)
		m.eventRepo.On("GetWithRevision", mock.Anything, "event-3").Return(third, uint64(1), nil)
		m.eventRepo.On("Delete", mock.Anything, "event-2", uint64(1)).Return(nil)
		m.eventRepo.On("Delete", mock.Anything, "event-3", uint64(1)).Return(nil)
		m.messageBuilder.On("SendDeleteIndexEvent", mock.Anything, mock.Anything).Return(nil)

		err := service.DeleteEvent(ctx, alice, "event-2", models.ScopeAllFuture)
		require.NoError(t, err)

		// The earlier occurrence is untouched.
		m.eventRepo.AssertNotCalled(t, "Delete", mock.Anything, "event-1", mock.Anything)
		m.eventRepo.AssertNumberOfCalls(t, "Delete", 2)
	})

	t.Run("all-future on a one-off event deletes just the row", func(t *testing.T) {
		service, m := newEventService()
		event := &models.Event{
			UID:       "solo",
			Title:     "One-off",
			Creator:   "alice",
			StartTime: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		}
		m.eventRepo.On("Get", mock.Anything, "solo").Return(event, nil)
		m.eventRepo.On("GetWithRevision", mock.Anything, "solo").Return(event, uint64(1), nil)
		m.eventRepo.On("Delete", mock.Anything, "solo", uint64(1)).Return(nil)
		m.messageBuilder.On("SendDeleteIndexEvent", mock.Anything, "solo").Return(nil)

		err := service.DeleteEvent(ctx, alice, "solo", models.ScopeAllFuture)
		require.NoError(t, err)
		m.eventRepo.AssertNotCalled(t, "ListByGroup", mock.Anything, mock.Anything)
	})
}

func TestEventService_NextOccurrence(t *testing.T) {
	ctx := context.Background()
	service, m := newEventService()

	event := &models.Event{
		UID:                 "event-1",
		StartTime:           time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:             time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		IsRecurring:         true,
		RecurrenceFrequency: models.RecurrenceDaily,
	}
	m.eventRepo.On("Get", mock.Anything, "event-1").Return(event, nil)

	start, end, ok, err := service.NextOccurrence(ctx, "event-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, start.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))
	assert.True(t, end.Equal(time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC)))
}

func TestEventService_Comments(t *testing.T) {
	ctx := context.Background()
	event := testEvent()

	t.Run("confirmed participant can comment", func(t *testing.T) {
		service, m := newEventService()
		m.eventRepo.On("Get", mock.Anything, "event-1").Return(event, nil)
		m.participantRepo.On("Get", mock.Anything, "event-1", "bob").
			Return(&models.Participant{
				EventUID: "event-1", Username: "bob",
				Status: models.StatusConfirmed, Approved: true,
			}, nil)
		m.commentRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Comment) bool {
			return c.EventUID == "event-1" && c.Author == "bob" && c.Text == "see you there"
		})).Return(nil)

		comment, err := service.AddComment(ctx, models.Actor{Username: "bob"}, "event-1", "see you there")
		require.NoError(t, err)
		assert.NotEmpty(t, comment.UID)
	})

	t.Run("outsider cannot comment", func(t *testing.T) {
		service, m := newEventService()
		m.eventRepo.On("Get", mock.Anything, "event-1").Return(event, nil)
		m.participantRepo.On("Get", mock.Anything, "event-1", "mallory").
			Return(nil, domain.NewNotFoundError("participant not found"))

		_, err := service.AddComment(ctx, models.Actor{Username: "mallory"}, "event-1", "hi")
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeUnauthorized, domain.GetErrorType(err))
	})

	t.Run("author deletes own comment", func(t *testing.T) {
		service, m := newEventService()
		m.commentRepo.On("Get", mock.Anything, "comment-1").
			Return(&models.Comment{UID: "comment-1", EventUID: "event-1", Author: "bob"}, nil)
		m.commentRepo.On("Delete", mock.Anything, "comment-1").Return(nil)

		err := service.DeleteComment(ctx, models.Actor{Username: "bob"}, "comment-1")
		require.NoError(t, err)
	})

	t.Run("creator deletes another user's comment", func(t *testing.T) {
		service, m := newEventService()
		m.commentRepo.On("Get", mock.Anything, "comment-1").
			Return(&models.Comment{UID: "comment-1", EventUID: "event-1", Author: "bob"}, nil)
		m.eventRepo.On("Get", mock.Anything, "event-1").Return(event, nil)
		m.commentRepo.On("Delete", mock.Anything, "comment-1").Return(nil)

		err := service.DeleteComment(ctx, models.Actor{Username: "alice"}, "comment-1")
		require.NoError(t, err)
	})

	t.Run("stranger cannot delete another user's comment", func(t *testing.T) {
		service, m := newEventService()
		m.commentRepo.On("Get", mock.Anything, "comment-1").
			Return(&models.Comment{UID: "comment-1", EventUID: "event-1", Author: "bob"}, nil)
		m.eventRepo.On("Get", mock.Anything, "event-1").Return(event, nil)
		m.participantRepo.On("Get", mock.Anything, "event-1", "mallory").
			Return(nil, domain.NewNotFoundError("participant not found"))

		err := service.DeleteComment(ctx, models.Actor{Username: "mallory"}, "comment-1")
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeUnauthorized, domain.GetErrorType(err))
	})

	t.Run("comments are listed oldest first", func(t *testing.T) {
		service, m := newEventService()
		early := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		late := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
		m.eventRepo.On("Get", mock.Anything, "event-1").Return(event, nil)
		m.commentRepo.On("ListByEvent", mock.Anything, "event-1").Return([]*models.Comment{
			{UID: "c2", CreatedAt: &late},
			{UID: "c1", CreatedAt: &early},
		}, nil)

		comments, err := service.ListComments(ctx, models.Actor{Username: "alice"}, "event-1")
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "c1", comments[0].UID)
		assert.Equal(t, "c2", comments[1].UID)
	})
}

func TestEventService_ServiceReady(t *testing.T) {
	service, _ := newEventService()
	assert.True(t, service.ServiceReady())

	var empty EventService
	assert.False(t, empty.ServiceReady())
}
