// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "message only",
			err:      NewNotFoundError("event not found"),
			expected: "event not found",
		},
		{
			name:     "message with wrapped error",
			err:      NewInternalError("failed to store event", errors.New("kv timeout")),
			expected: "failed to store event: kv timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("expected error message %q, got %q", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"validation", NewValidationError("bad input"), ErrorTypeValidation},
		{"unauthorized", NewUnauthorizedError("not the creator"), ErrorTypeUnauthorized},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound},
		{"conflict", NewConflictError("duplicate"), ErrorTypeConflict},
		{"invalid transition", NewInvalidTransitionError("no pending invite"), ErrorTypeInvalidTransition},
		{"internal", NewInternalError("boom"), ErrorTypeInternal},
		{"unavailable", NewUnavailableError("store down"), ErrorTypeUnavailable},
		{"plain error falls back to internal", errors.New("plain"), ErrorTypeInternal},
		{"wrapped domain error", fmt.Errorf("outer: %w", NewConflictError("duplicate")), ErrorTypeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorType(tt.err); got != tt.expected {
				t.Errorf("expected error type %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  string
	}{
		{ErrorTypeValidation, "validation"},
		{ErrorTypeUnauthorized, "unauthorized"},
		{ErrorTypeNotFound, "not_found"},
		{ErrorTypeConflict, "conflict"},
		{ErrorTypeInvalidTransition, "invalid_transition"},
		{ErrorTypeInternal, "internal"},
		{ErrorTypeUnavailable, "unavailable"},
		{ErrorType(99), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.errorType.String(); got != tt.expected {
				t.Errorf("expected error type name %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewInternalError("outer", inner)
	if !errors.Is(err, inner) {
		t.Error("expected wrapped error to be found by errors.Is")
	}
}
