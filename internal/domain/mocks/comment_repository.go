// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// MockCommentRepository implements CommentRepository for testing
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Get(ctx context.Context, commentUID string) (*models.Comment, error) {
	args := m.Called(ctx, commentUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, commentUID string) error {
	args := m.Called(ctx, commentUID)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByEvent(ctx context.Context, eventUID string) ([]*models.Comment, error) {
	args := m.Called(ctx, eventUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}
