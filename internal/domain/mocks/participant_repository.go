// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// MockParticipantRepository implements ParticipantRepository for testing
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockParticipantRepository) Get(ctx context.Context, eventUID, username string) (*models.Participant, error) {
	args := m.Called(ctx, eventUID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetWithRevision(ctx context.Context, eventUID, username string) (*models.Participant, uint64, error) {
	args := m.Called(ctx, eventUID, username)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Participant), args.Get(1).(uint64), args.Error(2)
}

func (m *MockParticipantRepository) Update(ctx context.Context, participant *models.Participant, revision uint64) error {
	args := m.Called(ctx, participant, revision)
	return args.Error(0)
}

func (m *MockParticipantRepository) Delete(ctx context.Context, eventUID, username string, revision uint64) error {
	args := m.Called(ctx, eventUID, username, revision)
	return args.Error(0)
}

func (m *MockParticipantRepository) ListByEvent(ctx context.Context, eventUID string) ([]*models.Participant, error) {
	args := m.Called(ctx, eventUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListByUser(ctx context.Context, username string) ([]*models.Participant, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}
