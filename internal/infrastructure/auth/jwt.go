// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

// Package auth validates bearer tokens issued by the identity proxy and
// resolves them to an acting user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// Default configuration values for the JWT authentication.
const (
	defaultJWKSURL  = "http://localhost:4457/.well-known/jwks"
	defaultAudience = "event-service"
)

// IdentityClaims are the custom claims the identity proxy sets on tokens.
type IdentityClaims struct {
	Principal string `json:"principal"`
	Admin     bool   `json:"admin,omitempty"`
}

// Validate checks that the required claims are present.
func (c *IdentityClaims) Validate(_ context.Context) error {
	if c.Principal == "" {
		return errors.New("principal must be provided")
	}
	return nil
}

// JWTAuthConfig is the configuration for the JWT authentication.
type JWTAuthConfig struct {
	// JWKSURL is the URL of the JWKS endpoint of the identity proxy.
	JWKSURL string
	// Audience is the expected audience of the tokens.
	Audience string
	// MockLocalPrincipal bypasses token validation and acts as the given
	// user. Local development only.
	MockLocalPrincipal string
}

// IJWTAuth parses a bearer token into the acting user.
type IJWTAuth interface {
	ParsePrincipal(ctx context.Context, bearerToken string, logger *slog.Logger) (models.Actor, error)
}

// JWTAuth validates tokens against the identity proxy's JWKS endpoint.
type JWTAuth struct {
	config    JWTAuthConfig
	validator *validator.Validator
}

var _ IJWTAuth = (*JWTAuth)(nil)

// NewJWTAuth creates a new JWTAuth with the given configuration.
func NewJWTAuth(config JWTAuthConfig) (*JWTAuth, error) {
	if config.JWKSURL == "" {
		config.JWKSURL = defaultJWKSURL
	}
	if config.Audience == "" {
		config.Audience = defaultAudience
	}

	issuerURL, err := url.Parse(config.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWKS URL %q: %w", config.JWKSURL, err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute, jwks.WithCustomJWKSURI(issuerURL))

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{config.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &IdentityClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up JWT validator: %w", err)
	}

	return &JWTAuth{
		config:    config,
		validator: jwtValidator,
	}, nil
}

// ParsePrincipal parses the authorized principal from the bearer token.
func (a *JWTAuth) ParsePrincipal(ctx context.Context, bearerToken string, logger *slog.Logger) (models.Actor, error) {
	if a.config.MockLocalPrincipal != "" {
		logger.WarnContext(ctx, "mock authentication enabled, skipping token validation",
			"principal", a.config.MockLocalPrincipal,
		)
		return models.Actor{Username: a.config.MockLocalPrincipal}, nil
	}

	if a.validator == nil {
		return models.Actor{}, errors.New("JWT validator is not set up")
	}

	token := strings.TrimPrefix(bearerToken, "Bearer ")
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Actor{}, errors.New("bearer token is empty")
	}

	claims, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return models.Actor{}, fmt.Errorf("token validation failed: %w", err)
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return models.Actor{}, errors.New("unexpected claims type")
	}

	custom, ok := validated.CustomClaims.(*IdentityClaims)
	if !ok {
		return models.Actor{}, errors.New("missing identity claims")
	}

	return models.Actor{
		Username: custom.Principal,
		Admin:    custom.Admin,
	}, nil
}
