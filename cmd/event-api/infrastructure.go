// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/infrastructure/auth"
	"github.com/gatherhall/event-service/internal/infrastructure/email"
	"github.com/gatherhall/event-service/internal/infrastructure/messaging"
	"github.com/gatherhall/event-service/internal/infrastructure/store"
	"github.com/gatherhall/event-service/internal/logging"
)

// setupJWTAuth configures JWT authentication for the service.
func setupJWTAuth() (*auth.JWTAuth, error) {
	jwtAuthConfig := auth.JWTAuthConfig{
		JWKSURL:            os.Getenv("JWKS_URL"),
		Audience:           os.Getenv("JWT_AUDIENCE"),
		MockLocalPrincipal: os.Getenv("JWT_AUTH_DISABLED_MOCK_LOCAL_PRINCIPAL"),
	}
	return auth.NewJWTAuth(jwtAuthConfig)
}

// setupEmailService configures the invitation mailer. When SMTP is disabled
// the no-op service is used.
func setupEmailService(env environment) (domain.InvitationMailer, error) {
	if !env.SMTP.Enabled {
		slog.Info("SMTP disabled, invitation email delivery is a no-op")
		return email.NewNoOpService(), nil
	}

	return email.NewSMTPService(email.SMTPConfig{
		Host:     env.SMTP.Host,
		Port:     env.SMTP.Port,
		From:     env.SMTP.From,
		Username: env.SMTP.Username,
		Password: env.SMTP.Password,
	}, env.AppBaseURL)
}

// setupNATS connects to the NATS server with reconnection handling.
func setupNATS(env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.With("nats_url", env.NatsURL).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			// Drain finished or the connection is gone for good.
			slog.Info("NATS connection closed")
			gracefulCloseWG.Done()
			done <- os.Interrupt
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", env.NatsURL, err)
	}

	// Balance the Done call in the closed handler.
	gracefulCloseWG.Add(1)

	return natsConn, nil
}

// repositories bundles every NATS KV backed repository of the service.
type repositories struct {
	Event              *store.NatsEventRepository
	Participant        *store.NatsParticipantRepository
	Comment            *store.NatsCommentRepository
	FriendRoster       *store.NatsFriendRosterRepository
	OrganizationRoster *store.NatsOrganizationRosterRepository
}

// getKeyValueStores creates or binds the KV buckets and wraps them in
// repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	buckets := map[string]jetstream.KeyValue{}
	for _, bucket := range []string{
		store.KVStoreNameEvents,
		store.KVStoreNameEventParticipants,
		store.KVStoreNameEventComments,
		store.KVStoreNameFriends,
		store.KVStoreNameOrganizationMembers,
	} {
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:  bucket,
			History: 20,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to bind KV bucket %s: %w", bucket, err)
		}
		buckets[bucket] = kv
	}

	return &repositories{
		Event:              store.NewNatsEventRepository(buckets[store.KVStoreNameEvents]),
		Participant:        store.NewNatsParticipantRepository(buckets[store.KVStoreNameEventParticipants]),
		Comment:            store.NewNatsCommentRepository(buckets[store.KVStoreNameEventComments]),
		FriendRoster:       store.NewNatsFriendRosterRepository(buckets[store.KVStoreNameFriends]),
		OrganizationRoster: store.NewNatsOrganizationRosterRepository(buckets[store.KVStoreNameOrganizationMembers]),
	}, nil
}

// createNatsSubscriptions subscribes the handler to every events API subject
// in the shared queue group.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	for _, subject := range models.EventsAPISubjects {
		_, err := natsConn.QueueSubscribe(subject, models.EventsAPIQueue, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMessage(msg))
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		slog.With("subject", subject, "queue", models.EventsAPIQueue).Debug("subscribed to NATS subject")
	}

	return nil
}

// setupHealthServer starts the HTTP listener with the liveness and readiness
// probes.
func setupHealthServer(flags flags, handler domain.MessageHandler, gracefulCloseWG *sync.WaitGroup) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !handler.HandlerReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})

	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting health endpoints, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// ErrServerClosed is returned as soon as Shutdown starts, so the wait
		// group is decremented by gracefulShutdown once Shutdown completes.
	}()

	return httpServer
}

// gracefulShutdown drains NATS and stops the HTTP listener.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if natsConn != nil && !natsConn.IsClosed() {
		// Drain lets in-flight handlers finish; the closed handler releases
		// the wait group entry added in setupNATS.
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	waitWithTimeout(gracefulCloseWG, 30*time.Second)
}

// waitWithTimeout waits for the wait group, giving up after the timeout.
func waitWithTimeout(wg *sync.WaitGroup, timeout time.Duration) {
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(timeout):
		slog.Warn("graceful shutdown timed out")
	}
}
