// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// MockEventRepository implements EventRepository for testing
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Exists(ctx context.Context, eventUID string) (bool, error) {
	args := m.Called(ctx, eventUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) Get(ctx context.Context, eventUID string) (*models.Event, error) {
	args := m.Called(ctx, eventUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) GetWithRevision(ctx context.Context, eventUID string) (*models.Event, uint64, error) {
	args := m.Called(ctx, eventUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.Event), args.Get(1).(uint64), args.Error(2)
}

func (m *MockEventRepository) Update(ctx context.Context, event *models.Event, revision uint64) error {
	args := m.Called(ctx, event, revision)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, eventUID string, revision uint64) error {
	args := m.Called(ctx, eventUID, revision)
	return args.Error(0)
}

func (m *MockEventRepository) ListByGroup(ctx context.Context, recurrenceGroupID string) ([]*models.Event, error) {
	args := m.Called(ctx, recurrenceGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventRepository) ListByCreator(ctx context.Context, username string) ([]*models.Event, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventRepository) ListAll(ctx context.Context) ([]*models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}
