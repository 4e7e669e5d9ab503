// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpService(t *testing.T) {
	service := NewNoOpService()
	assert.NotNil(t, service)

	err := service.SendEventInvitation(context.Background(), testInvitation())
	assert.NoError(t, err)
}
