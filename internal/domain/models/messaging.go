// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package models

// NATS subjects that the event service sends messages about.
const (
	// IndexEventSubject is the subject for event indexing.
	// The subject is of the form: gatherhall.index.event
	IndexEventSubject = "gatherhall.index.event"

	// IndexParticipantSubject is the subject for participant indexing.
	// The subject is of the form: gatherhall.index.participant
	IndexParticipantSubject = "gatherhall.index.participant"

	// NotificationSubject is the subject notifications are published on.
	// Delivery (email, SMS, in-app) is owned by whatever consumes it.
	// The subject is of the form: gatherhall.notification.send
	NotificationSubject = "gatherhall.notification.send"
)

// NATS wildcard subjects that the event service handles messages about.
const (
	// EventsAPIQueue is the queue group name for the events API.
	EventsAPIQueue = "gatherhall.events-api.queue"
)

// NATS specific subjects that the event service handles messages about.
const (
	// EventResolveAccessSubject answers role-resolution requests.
	// The subject is of the form: gatherhall.events-api.resolve_access
	EventResolveAccessSubject = "gatherhall.events-api.resolve_access"

	// EventCreateSubject handles event creation requests.
	EventCreateSubject = "gatherhall.events-api.create_event"

	// EventGetSubject answers single-event lookups.
	EventGetSubject = "gatherhall.events-api.get_event"

	// EventDeleteSubject handles event deletion requests.
	EventDeleteSubject = "gatherhall.events-api.delete_event"

	// EventNextOccurrenceSubject answers next-occurrence projections.
	EventNextOccurrenceSubject = "gatherhall.events-api.next_occurrence"

	// ParticipantTransitionSubject handles participant state transitions.
	ParticipantTransitionSubject = "gatherhall.events-api.transition_participant"

	// EventSearchSubject handles event search requests.
	EventSearchSubject = "gatherhall.events-api.search_events"

	// EventListParticipantsSubject answers participant listings of an event.
	EventListParticipantsSubject = "gatherhall.events-api.list_participants"

	// OrganizationInviteSubject handles bulk invitations of an organization.
	OrganizationInviteSubject = "gatherhall.events-api.invite_organization"

	// OrganizationRemoveSubject handles bulk removals of an organization.
	OrganizationRemoveSubject = "gatherhall.events-api.remove_organization"

	// EventAddCommentSubject handles comment creation on an event.
	EventAddCommentSubject = "gatherhall.events-api.add_comment"

	// EventDeleteCommentSubject handles comment deletion.
	EventDeleteCommentSubject = "gatherhall.events-api.delete_comment"

	// EventListCommentsSubject answers comment listings of an event.
	EventListCommentsSubject = "gatherhall.events-api.list_comments"
)

// EventsAPISubjects lists every subject the events API subscribes to.
var EventsAPISubjects = []string{
	EventResolveAccessSubject,
	EventCreateSubject,
	EventGetSubject,
	EventDeleteSubject,
	EventNextOccurrenceSubject,
	ParticipantTransitionSubject,
	EventSearchSubject,
	EventListParticipantsSubject,
	OrganizationInviteSubject,
	OrganizationRemoveSubject,
	EventAddCommentSubject,
	EventDeleteCommentSubject,
	EventListCommentsSubject,
}

// MessageAction is a type for the action of an indexing message.
type MessageAction string

// MessageAction constants for the action of an indexing message.
const (
	// ActionCreated is the action for a resource creation message.
	ActionCreated MessageAction = "created"
	// ActionUpdated is the action for a resource update message.
	ActionUpdated MessageAction = "updated"
	// ActionDeleted is the action for a resource deletion message.
	ActionDeleted MessageAction = "deleted"
)

// EventIndexerMessage is the NATS message schema for resource CRUD indexing.
type EventIndexerMessage struct {
	Action  MessageAction     `json:"action"`
	Headers map[string]string `json:"headers"`
	Data    any               `json:"data"`
	// Tags is a list of tags to be set on the indexed resource for search.
	Tags []string `json:"tags"`
}

// Notification is the schema of a fire-and-forget notification message.
type Notification struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}
