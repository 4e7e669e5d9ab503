// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package models

// AccessRole is the computed access level of a user for one event. It decides
// which view a hosting layer renders and which mutations are permitted.
type AccessRole string

const (
	// RoleAnonymous is an unauthenticated caller; read-only public view.
	RoleAnonymous AccessRole = "anonymous"
	// RoleOwner is the event creator; full control, identified as owner.
	RoleOwner AccessRole = "owner"
	// RoleAdmin holds owner-equivalent permissions on every event.
	RoleAdmin AccessRole = "admin"
	// RolePendingApproval has a pending access request; read-only, limited message.
	RolePendingApproval AccessRole = "pending_approval"
	// RoleParticipant is a confirmed participant.
	RoleParticipant AccessRole = "participant"
	// RoleOutsider is an authenticated user with no standing on the event.
	RoleOutsider AccessRole = "outsider"
)

// HasOwnerPermissions reports whether the role may perform creator-level
// mutations (invite, approve, deny, revoke, delete).
func (r AccessRole) HasOwnerPermissions() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Actor is the authenticated caller of an operation. An empty Username means
// the caller is anonymous.
type Actor struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// IsAnonymous reports whether the actor carries no principal.
func (a Actor) IsAnonymous() bool {
	return a.Username == ""
}
