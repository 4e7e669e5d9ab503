// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockFriendRoster implements FriendRoster for testing
type MockFriendRoster struct {
	mock.Mock
}

func (m *MockFriendRoster) AcceptedFriends(ctx context.Context, username string) ([]string, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockOrganizationRoster implements OrganizationRoster for testing
type MockOrganizationRoster struct {
	mock.Mock
}

func (m *MockOrganizationRoster) Members(ctx context.Context, organization string) ([]string, error) {
	args := m.Called(ctx, organization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
