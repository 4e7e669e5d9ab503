// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/pkg/constants"
)

// MockNATSConn is a testify mock for the NATS connection.
type MockNATSConn struct {
	mock.Mock
	published map[string][][]byte
}

func NewMockNATSConn() *MockNATSConn {
	return &MockNATSConn{published: make(map[string][][]byte)}
}

func (m *MockNATSConn) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockNATSConn) Publish(subj string, data []byte) error {
	args := m.Called(subj, data)
	if args.Error(0) == nil {
		m.published[subj] = append(m.published[subj], data)
	}
	return args.Error(0)
}

func (m *MockNATSConn) lastPublished(t *testing.T, subject string) []byte {
	t.Helper()
	msgs := m.published[subject]
	require.NotEmpty(t, msgs, "no message published on %s", subject)
	return msgs[len(msgs)-1]
}

func TestMessageBuilder_SendIndexEvent(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	event := models.Event{
		UID:       "event-1",
		Title:     "Garden Meetup",
		Creator:   "alice",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}

	mockConn := NewMockNATSConn()
	mockConn.On("Publish", models.IndexEventSubject, mock.Anything).Return(nil)

	builder := NewMessageBuilder(mockConn)
	require.NoError(t, builder.SendIndexEvent(ctx, models.ActionCreated, event))

	var message models.EventIndexerMessage
	require.NoError(t, json.Unmarshal(mockConn.lastPublished(t, models.IndexEventSubject), &message))

	assert.Equal(t, models.ActionCreated, message.Action)
	assert.Contains(t, message.Tags, "creator:alice")

	// Created payloads are a decoded JSON object, not a raw string.
	payload, ok := message.Data.(map[string]any)
	require.True(t, ok, "expected object payload, got %T", message.Data)
	assert.Equal(t, "event-1", payload["uid"])

	// No auth context on this call, so the service fallback header is used.
	assert.Equal(t, "Bearer event-service", message.Headers[constants.AuthorizationHeader])
	mockConn.AssertExpectations(t)
}

func TestMessageBuilder_SendIndexEvent_ForwardsAuthContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), constants.AuthorizationContextID, "Bearer user-token")
	ctx = context.WithValue(ctx, constants.PrincipalContextID, "alice")

	mockConn := NewMockNATSConn()
	mockConn.On("Publish", models.IndexEventSubject, mock.Anything).Return(nil)

	builder := NewMessageBuilder(mockConn)
	require.NoError(t, builder.SendIndexEvent(ctx, models.ActionUpdated, models.Event{UID: "event-1"}))

	var message models.EventIndexerMessage
	require.NoError(t, json.Unmarshal(mockConn.lastPublished(t, models.IndexEventSubject), &message))
	assert.Equal(t, "Bearer user-token", message.Headers[constants.AuthorizationHeader])
	assert.Equal(t, "alice", message.Headers[constants.XOnBehalfOfHeader])
}

func TestMessageBuilder_SendDeleteIndexEvent(t *testing.T) {
	mockConn := NewMockNATSConn()
	mockConn.On("Publish", models.IndexEventSubject, mock.Anything).Return(nil)

	builder := NewMessageBuilder(mockConn)
	require.NoError(t, builder.SendDeleteIndexEvent(context.Background(), "event-1"))

	var message models.EventIndexerMessage
	require.NoError(t, json.Unmarshal(mockConn.lastPublished(t, models.IndexEventSubject), &message))

	assert.Equal(t, models.ActionDeleted, message.Action)
	// Deleted payloads carry the key as a plain string.
	assert.Equal(t, "event-1", message.Data)
	assert.Empty(t, message.Tags)
}

func TestMessageBuilder_SendIndexParticipant(t *testing.T) {
	row := models.Participant{
		EventUID: "event-1",
		Username: "bob",
		Status:   models.StatusConfirmed,
		Approved: true,
	}

	mockConn := NewMockNATSConn()
	mockConn.On("Publish", models.IndexParticipantSubject, mock.Anything).Return(nil)

	builder := NewMessageBuilder(mockConn)
	require.NoError(t, builder.SendIndexParticipant(context.Background(), models.ActionCreated, row))

	var message models.EventIndexerMessage
	require.NoError(t, json.Unmarshal(mockConn.lastPublished(t, models.IndexParticipantSubject), &message))
	assert.Contains(t, message.Tags, "username:bob")
	assert.Contains(t, message.Tags, "status:Confirmed")
}

func TestMessageBuilder_SendDeleteIndexParticipant(t *testing.T) {
	mockConn := NewMockNATSConn()
	mockConn.On("Publish", models.IndexParticipantSubject, mock.Anything).Return(nil)

	builder := NewMessageBuilder(mockConn)
	require.NoError(t, builder.SendDeleteIndexParticipant(context.Background(), "event-1/bob"))

	var message models.EventIndexerMessage
	require.NoError(t, json.Unmarshal(mockConn.lastPublished(t, models.IndexParticipantSubject), &message))
	assert.Equal(t, "event-1/bob", message.Data)
}

func TestMessageBuilder_PublishError(t *testing.T) {
	mockConn := NewMockNATSConn()
	mockConn.On("Publish", models.IndexEventSubject, mock.Anything).Return(errors.New("publish failed"))

	builder := NewMessageBuilder(mockConn)
	err := builder.SendDeleteIndexEvent(context.Background(), "event-1")
	require.Error(t, err)
}
