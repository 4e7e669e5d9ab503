// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package service

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// SkipNotifications suppresses notification and email delivery - only
	// meant for local development.
	SkipNotifications bool
	// AppBaseURL is the public base URL used in notification links.
	AppBaseURL string
}
