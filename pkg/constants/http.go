// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package constants

import (
	"fmt"
	"strings"
)

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// XOnBehalfOfHeader is the header name for the on behalf of principal
	XOnBehalfOfHeader string = "x-on-behalf-of"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"

// contextAuthorization is the type for the authorization context key
type contextAuthorization string

// AuthorizationContextID is the context ID for the authorization
const AuthorizationContextID contextAuthorization = "authorization"

// contextPrincipal is the type for the principal context key
type contextPrincipal string

// PrincipalContextID is the context ID for the principal
const PrincipalContextID contextPrincipal = "x-on-behalf-of"

// EventURL builds the user-facing URL of an event page from the configured
// application base URL. The base URL may or may not carry a trailing slash.
func EventURL(appBaseURL, eventUID string) string {
	if appBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/events/%s", strings.TrimRight(appBaseURL, "/"), eventUID)
}
