// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatherhall/event-service/internal/domain/models"
)

func TestNatsNotifier_Notify(t *testing.T) {
	mockConn := NewMockNATSConn()
	mockConn.On("Publish", models.NotificationSubject, mock.Anything).Return(nil)

	notifier := NewNatsNotifier(mockConn)
	err := notifier.Notify(context.Background(), "bob", "You have been invited", "alice invited you to Garden Meetup")
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, json.Unmarshal(mockConn.lastPublished(t, models.NotificationSubject), &notification))
	assert.Equal(t, "bob", notification.Recipient)
	assert.Equal(t, "You have been invited", notification.Subject)
	mockConn.AssertExpectations(t)
}

func TestNatsNotifier_NotifyPublishError(t *testing.T) {
	mockConn := NewMockNATSConn()
	mockConn.On("Publish", models.NotificationSubject, mock.Anything).Return(errors.New("connection closed"))

	notifier := NewNatsNotifier(mockConn)
	err := notifier.Notify(context.Background(), "bob", "subject", "message")
	require.Error(t, err)
}
