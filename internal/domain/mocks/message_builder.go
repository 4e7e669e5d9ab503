// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// MockMessageBuilder implements EventIndexSender and ParticipantIndexSender
// for testing
type MockMessageBuilder struct {
	mock.Mock
}

func (m *MockMessageBuilder) SendIndexEvent(ctx context.Context, action models.MessageAction, data models.Event) error {
	args := m.Called(ctx, action, data)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendDeleteIndexEvent(ctx context.Context, eventUID string) error {
	args := m.Called(ctx, eventUID)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendIndexParticipant(ctx context.Context, action models.MessageAction, data models.Participant) error {
	args := m.Called(ctx, action, data)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendDeleteIndexParticipant(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
