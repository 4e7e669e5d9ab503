// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/gatherhall/event-service/internal/logging"
)

// flags are the command line flags for the event service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the event service.
type environment struct {
	Port              string
	NatsURL           string
	AppBaseURL        string
	SkipNotifications bool
	SMTP              smtpConfig
}

// smtpConfig holds the SMTP server configuration from the environment.
type smtpConfig struct {
	Enabled  bool
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// parseFlags parses command line flags for the event service.
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// The debug flag sets the log level environment variable used by
	// [logging.InitStructureLogConfig].
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the event service.
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return environment{
		Port:              port,
		NatsURL:           natsURL,
		AppBaseURL:        os.Getenv("APP_BASE_URL"),
		SkipNotifications: os.Getenv("SKIP_NOTIFICATIONS") == "true",
		SMTP:              parseSMTPConfig(),
	}
}

// parseSMTPConfig parses the SMTP configuration from environment variables.
func parseSMTPConfig() smtpConfig {
	enabled := os.Getenv("SMTP_ENABLED") == "true"
	if !enabled {
		return smtpConfig{}
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "localhost"
	}

	port := 587
	if portRaw := os.Getenv("SMTP_PORT"); portRaw != "" {
		parsed, err := strconv.Atoi(portRaw)
		if err != nil {
			slog.With(logging.ErrKey, err, "port", portRaw).Error("invalid SMTP_PORT, using default")
		} else {
			port = parsed
		}
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@gatherhall.io"
	}

	return smtpConfig{
		Enabled:  true,
		Host:     host,
		Port:     port,
		From:     from,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
}
