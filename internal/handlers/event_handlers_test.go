// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/mocks"
	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/infrastructure/auth"
	"github.com/gatherhall/event-service/internal/service"
)

type handlerMocks struct {
	eventRepo       *mocks.MockEventRepository
	participantRepo *mocks.MockParticipantRepository
	commentRepo     *mocks.MockCommentRepository
	orgRoster       *mocks.MockOrganizationRoster
	friendRoster    *mocks.MockFriendRoster
	notifier        *mocks.MockNotifier
	messageBuilder  *mocks.MockMessageBuilder
}

func newEventHandler() (*EventHandler, *handlerMocks) {
	m := &handlerMocks{
		eventRepo:       &mocks.MockEventRepository{},
		participantRepo: &mocks.MockParticipantRepository{},
		commentRepo:     &mocks.MockCommentRepository{},
		orgRoster:       &mocks.MockOrganizationRoster{},
		friendRoster:    &mocks.MockFriendRoster{},
		notifier:        &mocks.MockNotifier{},
		messageBuilder:  &mocks.MockMessageBuilder{},
	}

	config := service.ServiceConfig{SkipNotifications: true}
	accessService := service.NewAccessService(m.eventRepo, m.participantRepo)
	eventService := service.NewEventService(m.eventRepo, m.commentRepo, service.NewOccurrenceService(), accessService, m.messageBuilder, config)
	participantService := service.NewParticipantService(m.eventRepo, m.participantRepo, m.orgRoster, accessService, m.notifier, nil, m.messageBuilder, config)
	searchService := service.NewSearchService(m.eventRepo, m.participantRepo, m.friendRoster)

	return NewEventHandler(eventService, participantService, accessService, searchService, nil), m
}

func newRequestMessage(t *testing.T, subject string, payload any) *mocks.MockMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	msg := &mocks.MockMessage{}
	msg.On("Subject").Return(subject)
	msg.On("Data").Return(data)
	msg.On("HasReply").Return(true)
	return msg
}

func handlerTestEvent() *models.Event {
	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	return &models.Event{
		UID:       "event-1",
		Title:     "Garden Meetup",
		Creator:   "alice",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestEventHandler_HandlerReady(t *testing.T) {
	handler, _ := newEventHandler()
	assert.True(t, handler.HandlerReady())

	empty := NewEventHandler(
		service.NewEventService(nil, nil, nil, nil, nil, service.ServiceConfig{}),
		service.NewParticipantService(nil, nil, nil, nil, nil, nil, nil, service.ServiceConfig{}),
		service.NewAccessService(nil, nil),
		service.NewSearchService(nil, nil, nil),
		nil,
	)
	assert.False(t, empty.HandlerReady())
}

func TestEventHandler_HandleResolveAccess(t *testing.T) {
	handler, m := newEventHandler()
	m.eventRepo.On("Get", mock.Anything, "event-1").Return(handlerTestEvent(), nil)

	msg := newRequestMessage(t, models.EventResolveAccessSubject, ResolveAccessRequest{
		Actor:    models.Actor{Username: "alice"},
		EventUID: "event-1",
	})

	data, err := handler.HandleResolveAccess(context.Background(), msg)
	require.NoError(t, err)

	var response ResolveAccessResponse
	require.NoError(t, json.Unmarshal(data, &response))
	assert.Equal(t, models.RoleOwner, response.Role)
}

func TestEventHandler_HandleResolveAccess_BearerToken(t *testing.T) {
	handler, m := newEventHandler()
	jwtAuth, err := auth.NewJWTAuth(auth.JWTAuthConfig{MockLocalPrincipal: "alice"})
	require.NoError(t, err)
	handler.authService = service.NewAuthService(jwtAuth)

	m.eventRepo.On("Get", mock.Anything, "event-1").Return(handlerTestEvent(), nil)

	msg := newRequestMessage(t, models.EventResolveAccessSubject, ResolveAccessRequest{
		Token:    "Bearer opaque-token",
		EventUID: "event-1",
	})

	data, err := handler.HandleResolveAccess(context.Background(), msg)
	require.NoError(t, err)

	var response ResolveAccessResponse
	require.NoError(t, json.Unmarshal(data, &response))
	assert.Equal(t, models.RoleOwner, response.Role)
}

func TestEventHandler_HandleResolveAccess_TokenWithoutAuthService(t *testing.T) {
	handler, _ := newEventHandler()

	msg := newRequestMessage(t, models.EventResolveAccessSubject, ResolveAccessRequest{
		Token:    "Bearer opaque-token",
		EventUID: "event-1",
	})

	_, err := handler.HandleResolveAccess(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestEventHandler_HandleMessage_UnknownSubject(t *testing.T) {
	handler, _ := newEventHandler()

	msg := &mocks.MockMessage{}
	msg.On("Subject").Return("gatherhall.events-api.bogus")
	msg.On("HasReply").Return(true)
	msg.On("Respond", mock.Anything).Return(nil)

	handler.HandleMessage(context.Background(), msg)
	msg.AssertCalled(t, "Respond", mock.Anything)
}

func TestEventHandler_HandleMessage_ErrorEnvelope(t *testing.T) {
	handler, m := newEventHandler()
	m.eventRepo.On("Get", mock.Anything, "missing").Return(nil, domain.NewNotFoundError("event not found", nil))

	var response []byte
	msg := &mocks.MockMessage{}
	msg.On("Subject").Return(models.EventGetSubject)
	payload, err := json.Marshal(GetEventRequest{EventUID: "missing"})
	require.NoError(t, err)
	msg.On("Data").Return(payload)
	msg.On("HasReply").Return(true)
	msg.On("Respond", mock.Anything).Run(func(args mock.Arguments) {
		response = args.Get(0).([]byte)
	}).Return(nil)

	handler.HandleMessage(context.Background(), msg)

	var envelope ErrorResponse
	require.NoError(t, json.Unmarshal(response, &envelope))
	assert.Equal(t, "not_found", envelope.Code)
}

func TestMarshalErrorResponse_TaxonomyNames(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{domain.NewValidationError("bad input"), "validation"},
		{domain.NewNotFoundError("missing"), "not_found"},
		{domain.NewInvalidTransitionError("no pending invite"), "invalid_transition"},
		{domain.NewConflictError("stale revision"), "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			var envelope ErrorResponse
			require.NoError(t, json.Unmarshal(marshalErrorResponse(tt.err), &envelope))
			assert.Equal(t, tt.code, envelope.Code)
		})
	}
}

func TestEventHandler_HandleCreateEvent(t *testing.T) {
	handler, m := newEventHandler()
	m.eventRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.messageBuilder.On("SendIndexEvent", mock.Anything, models.ActionCreated, mock.Anything).Return(nil)

	event := handlerTestEvent()
	event.UID = ""
	msg := newRequestMessage(t, models.EventCreateSubject, CreateEventRequest{
		Actor: models.Actor{Username: "alice"},
		Event: *event,
	})

	data, err := handler.HandleCreateEvent(context.Background(), msg)
	require.NoError(t, err)

	var response CreateEventResponse
	require.NoError(t, json.Unmarshal(data, &response))
	require.NotNil(t, response.Event)
	assert.NotEmpty(t, response.Event.UID)
	assert.Empty(t, response.Occurrences)
}

func TestEventHandler_HandleCreateEvent_ValidationError(t *testing.T) {
	handler, _ := newEventHandler()

	msg := newRequestMessage(t, models.EventCreateSubject, CreateEventRequest{
		Actor: models.Actor{Username: "alice"},
		Event: models.Event{}, // no title, no times
	})

	_, err := handler.HandleCreateEvent(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestEventHandler_HandleGetEvent(t *testing.T) {
	handler, m := newEventHandler()
	m.eventRepo.On("Get", mock.Anything, "event-1").Return(handlerTestEvent(), nil)

	msg := newRequestMessage(t, models.EventGetSubject, GetEventRequest{EventUID: "event-1"})

	data, err := handler.HandleGetEvent(context.Background(), msg)
	require.NoError(t, err)

	var event models.Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "Garden Meetup", event.Title)
}

func TestEventHandler_HandleDeleteEvent(t *testing.T) {
	handler, m := newEventHandler()
	event := handlerTestEvent()
	m.eventRepo.On("Get", mock.Anything, "event-1").Return(event, nil)
	m.eventRepo.On("GetWithRevision", mock.Anything, "event-1").Return(event, uint64(3), nil)
	m.eventRepo.On("Delete", mock.Anything, "event-1", uint64(3)).Return(nil)
	m.messageBuilder.On("SendDeleteIndexEvent", mock.Anything, "event-1").Return(nil)

	msg := newRequestMessage(t, models.EventDeleteSubject, DeleteEventRequest{
		Actor:    models.Actor{Username: "alice"},
		EventUID: "event-1",
		Scope:    models.ScopeInstance,
	})

	data, err := handler.HandleDeleteEvent(context.Background(), msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":true}`, string(data))
}

func TestEventHandler_HandleNextOccurrence(t *testing.T) {
	handler, m := newEventHandler()
	event := handlerTestEvent()
	event.IsRecurring = true
	event.RecurrenceFrequency = models.RecurrenceWeekly
	m.eventRepo.On("Get", mock.Anything, "event-1").Return(event, nil)

	msg := newRequestMessage(t, models.EventNextOccurrenceSubject, NextOccurrenceRequest{EventUID: "event-1"})

	data, err := handler.HandleNextOccurrence(context.Background(), msg)
	require.NoError(t, err)

	var response NextOccurrenceResponse
	require.NoError(t, json.Unmarshal(data, &response))
	assert.True(t, response.HasNext)
	require.NotNil(t, response.StartTime)
	assert.Equal(t, event.StartTime.AddDate(0, 0, 7), response.StartTime.UTC())
}

func TestEventHandler_HandleParticipantTransition(t *testing.T) {
	t.Run("accept invite returns confirmed row", func(t *testing.T) {
		handler, m := newEventHandler()
		row := &models.Participant{EventUID: "event-1", Username: "bob", Status: models.StatusInvited, Approved: true}
		m.participantRepo.On("GetWithRevision", mock.Anything, "event-1", "bob").Return(row, uint64(1), nil)
		m.participantRepo.On("Update", mock.Anything, mock.Anything, uint64(1)).Return(nil)
		m.messageBuilder.On("SendIndexParticipant", mock.Anything, models.ActionUpdated, mock.Anything).Return(nil)

		msg := newRequestMessage(t, models.ParticipantTransitionSubject, ParticipantTransitionRequest{
			Actor:    models.Actor{Username: "bob"},
			Action:   models.ActionAcceptInvite,
			EventUID: "event-1",
		})

		data, err := handler.HandleParticipantTransition(context.Background(), msg)
		require.NoError(t, err)

		var response ParticipantTransitionResponse
		require.NoError(t, json.Unmarshal(data, &response))
		require.NotNil(t, response.Participant)
		assert.Equal(t, models.StatusConfirmed, response.Participant.Status)
		assert.False(t, response.Removed)
	})

	t.Run("remove self reports removal", func(t *testing.T) {
		handler, m := newEventHandler()
		row := &models.Participant{EventUID: "event-1", Username: "bob", Status: models.StatusConfirmed, Approved: true}
		m.participantRepo.On("GetWithRevision", mock.Anything, "event-1", "bob").Return(row, uint64(2), nil)
		m.participantRepo.On("Delete", mock.Anything, "event-1", "bob", uint64(2)).Return(nil)
		m.messageBuilder.On("SendDeleteIndexParticipant", mock.Anything, mock.Anything).Return(nil)

		msg := newRequestMessage(t, models.ParticipantTransitionSubject, ParticipantTransitionRequest{
			Actor:    models.Actor{Username: "bob"},
			Action:   models.ActionRemoveSelf,
			EventUID: "event-1",
		})

		data, err := handler.HandleParticipantTransition(context.Background(), msg)
		require.NoError(t, err)

		var response ParticipantTransitionResponse
		require.NoError(t, json.Unmarshal(data, &response))
		assert.True(t, response.Removed)
		assert.Nil(t, response.Participant)
	})

	t.Run("unknown action is a validation error", func(t *testing.T) {
		handler, _ := newEventHandler()

		msg := newRequestMessage(t, models.ParticipantTransitionSubject, ParticipantTransitionRequest{
			Actor:    models.Actor{Username: "bob"},
			Action:   "teleport",
			EventUID: "event-1",
		})

		_, err := handler.HandleParticipantTransition(context.Background(), msg)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}

func TestEventHandler_HandleSearchEvents(t *testing.T) {
	handler, m := newEventHandler()
	m.eventRepo.On("ListAll", mock.Anything).Return([]*models.Event{handlerTestEvent()}, nil)

	msg := newRequestMessage(t, models.EventSearchSubject, SearchEventsRequest{
		Actor:    models.Actor{Username: "bob"},
		Criteria: models.SearchCriteria{TitleContains: "garden", Page: 1},
	})

	data, err := handler.HandleSearchEvents(context.Background(), msg)
	require.NoError(t, err)

	var result models.SearchResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "event-1", result.Events[0].UID)
}

func TestEventHandler_HandleListParticipants(t *testing.T) {
	handler, m := newEventHandler()
	rows := []*models.Participant{
		{EventUID: "event-1", Username: "bob", Status: models.StatusConfirmed, Approved: true},
	}
	m.eventRepo.On("Exists", mock.Anything, "event-1").Return(true, nil)
	m.participantRepo.On("ListByEvent", mock.Anything, "event-1").Return(rows, nil)

	msg := newRequestMessage(t, models.EventListParticipantsSubject, ListParticipantsRequest{EventUID: "event-1"})

	data, err := handler.HandleListParticipants(context.Background(), msg)
	require.NoError(t, err)

	var participants []*models.Participant
	require.NoError(t, json.Unmarshal(data, &participants))
	require.Len(t, participants, 1)
	assert.Equal(t, "bob", participants[0].Username)
}

func TestEventHandler_HandleInviteOrganization(t *testing.T) {
	handler, m := newEventHandler()
	m.eventRepo.On("Get", mock.Anything, "event-1").Return(handlerTestEvent(), nil)
	m.orgRoster.On("Members", mock.Anything, "garden-club").Return([]string{"bob"}, nil)
	m.participantRepo.On("Get", mock.Anything, "event-1", "bob").Return(nil, domain.NewNotFoundError("not found", nil))
	m.participantRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.messageBuilder.On("SendIndexParticipant", mock.Anything, models.ActionCreated, mock.Anything).Return(nil)

	msg := newRequestMessage(t, models.OrganizationInviteSubject, OrganizationRequest{
		Actor:        models.Actor{Username: "alice"},
		EventUID:     "event-1",
		Organization: "garden-club",
	})

	data, err := handler.HandleInviteOrganization(context.Background(), msg)
	require.NoError(t, err)

	var invited []*models.Participant
	require.NoError(t, json.Unmarshal(data, &invited))
	require.Len(t, invited, 1)
	assert.Equal(t, "bob", invited[0].Username)
}

func TestEventHandler_HandleComments(t *testing.T) {
	t.Run("add comment", func(t *testing.T) {
		handler, m := newEventHandler()
		m.eventRepo.On("Get", mock.Anything, "event-1").Return(handlerTestEvent(), nil)
		m.commentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		msg := newRequestMessage(t, models.EventAddCommentSubject, AddCommentRequest{
			Actor:    models.Actor{Username: "alice"},
			EventUID: "event-1",
			Text:     "Looking forward to it",
		})

		data, err := handler.HandleAddComment(context.Background(), msg)
		require.NoError(t, err)

		var comment models.Comment
		require.NoError(t, json.Unmarshal(data, &comment))
		assert.Equal(t, "alice", comment.Author)
		assert.NotEmpty(t, comment.UID)
	})

	t.Run("list comments", func(t *testing.T) {
		handler, m := newEventHandler()
		m.eventRepo.On("Get", mock.Anything, "event-1").Return(handlerTestEvent(), nil)
		m.commentRepo.On("ListByEvent", mock.Anything, "event-1").Return([]*models.Comment{
			{UID: "comment-1", EventUID: "event-1", Author: "alice", Text: "hi"},
		}, nil)

		msg := newRequestMessage(t, models.EventListCommentsSubject, ListCommentsRequest{
			Actor:    models.Actor{Username: "alice"},
			EventUID: "event-1",
		})

		data, err := handler.HandleListComments(context.Background(), msg)
		require.NoError(t, err)

		var comments []*models.Comment
		require.NoError(t, json.Unmarshal(data, &comments))
		require.Len(t, comments, 1)
	})
}

func TestEventHandler_InvalidPayload(t *testing.T) {
	handler, _ := newEventHandler()

	msg := &mocks.MockMessage{}
	msg.On("Data").Return([]byte("not json"))

	_, err := handler.HandleGetEvent(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}
