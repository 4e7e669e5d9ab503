// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"
)

// ParticipantStatus is the invitation lifecycle state of a participant row.
type ParticipantStatus string

const (
	// StatusInvited marks a pending row: a creator invite when Approved is
	// true, an access request when Approved is false.
	StatusInvited ParticipantStatus = "Invited"
	// StatusConfirmed marks an accepted participant, via either path.
	StatusConfirmed ParticipantStatus = "Confirmed"
	// StatusDenied marks a rejected row, in either direction.
	StatusDenied ParticipantStatus = "Denied"
	// StatusMaybe exists in the schema but no transition sets or consumes it.
	StatusMaybe ParticipantStatus = "Maybe"
)

// Participant is the join entity linking a user to an event.
//
// The (Status, Approved) pair encodes the invitation lifecycle:
//
//	Invited/true    creator invited the user; awaiting their accept/decline
//	Invited/false   user requested access; awaiting the creator's decision
//	Confirmed/true  accepted participant
//	Denied/false    rejected
//
// One row exists per (event, user); the store keys rows by that pair.
type Participant struct {
	EventUID  string            `json:"event_uid"`
	Username  string            `json:"username"`
	Email     string            `json:"email,omitempty"`
	Status    ParticipantStatus `json:"status"`
	Approved  bool              `json:"approved"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// IsPendingInvite reports whether the row is a creator invite awaiting the user.
func (p *Participant) IsPendingInvite() bool {
	return p != nil && p.Status == StatusInvited && p.Approved
}

// IsPendingRequest reports whether the row is an access request awaiting the creator.
func (p *Participant) IsPendingRequest() bool {
	return p != nil && p.Status == StatusInvited && !p.Approved
}

// IsConfirmed reports whether the row is an accepted participant.
func (p *Participant) IsConfirmed() bool {
	return p != nil && p.Status == StatusConfirmed && p.Approved
}

// Tags generates a consistent set of tags for the participant for searching/indexing.
func (p *Participant) Tags() []string {
	if p == nil {
		return nil
	}

	tags := []string{}

	if p.EventUID != "" {
		tags = append(tags, fmt.Sprintf("event_uid:%s", p.EventUID))
	}

	if p.Username != "" {
		tags = append(tags, fmt.Sprintf("username:%s", p.Username))
	}

	if p.Status != "" {
		tags = append(tags, fmt.Sprintf("status:%s", p.Status))
	}

	tags = append(tags, fmt.Sprintf("approved:%t", p.Approved))

	return tags
}

// ParticipantAction is the tagged action a hosting layer dispatches to the
// participant state machine. Each action maps to exactly one transition.
type ParticipantAction string

const (
	ActionRequestAccess  ParticipantAction = "request_access"
	ActionInviteUser     ParticipantAction = "invite_user"
	ActionAcceptInvite   ParticipantAction = "accept_invite"
	ActionDeclineInvite  ParticipantAction = "decline_invite"
	ActionApproveRequest ParticipantAction = "approve_request"
	ActionDenyRequest    ParticipantAction = "deny_request"
	ActionRevokeInvite   ParticipantAction = "revoke_invite"
	ActionRemoveSelf     ParticipantAction = "remove_self"
)
