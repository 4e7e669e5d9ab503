// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gatherhall/event-service/internal/domain"
)

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, recipient, subject, message string) error {
	args := m.Called(ctx, recipient, subject, message)
	return args.Error(0)
}

// MockInvitationMailer implements InvitationMailer for testing
type MockInvitationMailer struct {
	mock.Mock
}

func (m *MockInvitationMailer) SendEventInvitation(ctx context.Context, invitation domain.EventInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}
