// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

// Package main is the event service API. It handles NATS request/reply
// messages for event scheduling, RSVP state, role resolution and search,
// and exposes HTTP health probes.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gatherhall/event-service/internal/handlers"
	"github.com/gatherhall/event-service/internal/infrastructure/messaging"
	"github.com/gatherhall/event-service/internal/logging"
	"github.com/gatherhall/event-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	jwtAuth, err := setupJWTAuth()
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up JWT authentication")
		os.Exit(1)
	}

	// Invitation mailer is independent of NATS.
	invitationMailer, err := setupEmailService(env)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up email service")
		return
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	natsConn, err := setupNATS(env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	serviceConfig := service.ServiceConfig{
		SkipNotifications: env.SkipNotifications,
		AppBaseURL:        env.AppBaseURL,
	}
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	notifier := messaging.NewNatsNotifier(natsConn)
	authService := service.NewAuthService(jwtAuth)
	occurrenceService := service.NewOccurrenceService()
	accessService := service.NewAccessService(repos.Event, repos.Participant)
	eventService := service.NewEventService(
		repos.Event,
		repos.Comment,
		occurrenceService,
		accessService,
		messageBuilder,
		serviceConfig,
	)
	participantService := service.NewParticipantService(
		repos.Event,
		repos.Participant,
		repos.OrganizationRoster,
		accessService,
		notifier,
		invitationMailer,
		messageBuilder,
		serviceConfig,
	)
	searchService := service.NewSearchService(
		repos.Event,
		repos.Participant,
		repos.FriendRoster,
	)

	if !authService.ServiceReady() {
		slog.Error("auth service not ready")
		return
	}

	eventHandler := handlers.NewEventHandler(
		eventService,
		participantService,
		accessService,
		searchService,
		authService,
	)

	httpServer := setupHealthServer(flags, eventHandler, &gracefulCloseWG)

	if err := createNatsSubscriptions(ctx, eventHandler, natsConn); err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	slog.Info("event service ready")

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
