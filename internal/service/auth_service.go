// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/infrastructure/auth"
)

// AuthService resolves bearer tokens to acting users.
type AuthService struct {
	auth auth.IJWTAuth
}

// NewAuthService creates a new AuthService.
func NewAuthService(auth auth.IJWTAuth) *AuthService {
	return &AuthService{
		auth: auth,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AuthService) ServiceReady() bool {
	return s.auth != nil
}

// ParseActor parses the authorized acting user from the bearer token.
func (s *AuthService) ParseActor(ctx context.Context, bearerToken string, logger *slog.Logger) (models.Actor, error) {
	if !s.ServiceReady() {
		return models.Actor{}, domain.NewUnavailableError("auth service not ready")
	}

	return s.auth.ParsePrincipal(ctx, bearerToken, logger)
}
