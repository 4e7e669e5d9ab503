// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/logging"
	"github.com/gatherhall/event-service/internal/service"
)

// EventHandler handles event-related NATS messages.
type EventHandler struct {
	eventService       *service.EventService
	participantService *service.ParticipantService
	accessService      *service.AccessService
	searchService      *service.SearchService
	authService        *service.AuthService
}

// NewEventHandler creates a new EventHandler. The auth service is optional;
// without it requests must carry an inline actor.
func NewEventHandler(
	eventService *service.EventService,
	participantService *service.ParticipantService,
	accessService *service.AccessService,
	searchService *service.SearchService,
	authService *service.AuthService,
) *EventHandler {
	return &EventHandler{
		eventService:       eventService,
		participantService: participantService,
		accessService:      accessService,
		searchService:      searchService,
		authService:        authService,
	}
}

// resolveActor returns the acting user of a request. A bearer token takes
// precedence over the inline actor; an empty token leaves the inline actor
// as-is, which keeps anonymous requests possible.
func (h *EventHandler) resolveActor(ctx context.Context, actor models.Actor, token string) (models.Actor, error) {
	if token == "" {
		return actor, nil
	}
	if h.authService == nil {
		return models.Actor{}, domain.NewUnavailableError("token authentication is not configured")
	}
	parsed, err := h.authService.ParseActor(ctx, token, slog.Default())
	if err != nil {
		return models.Actor{}, domain.NewUnauthorizedError("invalid bearer token", err)
	}
	return parsed, nil
}

// HandlerReady reports whether every backing service is ready.
func (h *EventHandler) HandlerReady() bool {
	return h.eventService.ServiceReady() &&
		h.participantService.ServiceReady() &&
		h.accessService.ServiceReady() &&
		h.searchService.ServiceReady()
}

// ErrorResponse is the reply envelope of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HandleMessage implements the domain.MessageHandler interface.
func (h *EventHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.EventResolveAccessSubject:    h.HandleResolveAccess,
		models.EventCreateSubject:           h.HandleCreateEvent,
		models.EventGetSubject:              h.HandleGetEvent,
		models.EventDeleteSubject:           h.HandleDeleteEvent,
		models.EventNextOccurrenceSubject:   h.HandleNextOccurrence,
		models.ParticipantTransitionSubject: h.HandleParticipantTransition,
		models.EventSearchSubject:           h.HandleSearchEvents,
		models.EventListParticipantsSubject: h.HandleListParticipants,
		models.OrganizationInviteSubject:    h.HandleInviteOrganization,
		models.OrganizationRemoveSubject:    h.HandleRemoveOrganization,
		models.EventAddCommentSubject:       h.HandleAddComment,
		models.EventDeleteCommentSubject:    h.HandleDeleteComment,
		models.EventListCommentsSubject:     h.HandleListComments,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		h.respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		h.respond(ctx, msg, marshalErrorResponse(err))
		return
	}

	h.respond(ctx, msg, response)
}

// respond replies to the message when a reply is expected.
func (h *EventHandler) respond(ctx context.Context, msg domain.Message, response []byte) {
	if !msg.HasReply() {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
		return
	}

	if err := msg.Respond(response); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
		return
	}
	slog.DebugContext(ctx, "responded to NATS message")
}

// marshalErrorResponse builds the error reply envelope. The error type gives
// callers the taxonomy without parsing messages.
func marshalErrorResponse(err error) []byte {
	response := ErrorResponse{
		Error: err.Error(),
		Code:  domain.GetErrorType(err).String(),
	}
	data, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		return nil
	}
	return data
}

func unmarshalRequest[T any](msg domain.Message) (*T, error) {
	var request T
	if err := json.Unmarshal(msg.Data(), &request); err != nil {
		return nil, domain.NewValidationError("invalid request payload", err)
	}
	return &request, nil
}

// ResolveAccessRequest is the payload of a role-resolution request.
type ResolveAccessRequest struct {
	Actor    models.Actor `json:"actor"`
	Token    string       `json:"token,omitempty"`
	EventUID string       `json:"event_uid"`
}

// ResolveAccessResponse carries the resolved role.
type ResolveAccessResponse struct {
	Role models.AccessRole `json:"role"`
}

// HandleResolveAccess is the message handler for the resolve-access subject.
func (h *EventHandler) HandleResolveAccess(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[ResolveAccessRequest](msg)
	if err != nil {
		return nil, err
	}

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	role, err := h.accessService.ResolveAccess(ctx, actor, request.EventUID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(ResolveAccessResponse{Role: role})
}

// CreateEventRequest is the payload of an event creation request.
type CreateEventRequest struct {
	Actor      models.Actor              `json:"actor"`
	Token      string                    `json:"token,omitempty"`
	Event      models.Event              `json:"event"`
	Recurrence *models.RecurrenceOptions `json:"recurrence,omitempty"`
}

// CreateEventResponse carries the stored template and, for a series, every
// generated occurrence.
type CreateEventResponse struct {
	Event       *models.Event   `json:"event"`
	Occurrences []*models.Event `json:"occurrences,omitempty"`
}

// HandleCreateEvent is the message handler for the create-event subject.
func (h *EventHandler) HandleCreateEvent(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[CreateEventRequest](msg)
	if err != nil {
		return nil, err
	}

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	event, occurrences, err := h.eventService.CreateEvent(ctx, actor, &request.Event, request.Recurrence)
	if err != nil {
		return nil, err
	}

	return json.Marshal(CreateEventResponse{Event: event, Occurrences: occurrences})
}

// GetEventRequest is the payload of a single-event lookup.
type GetEventRequest struct {
	EventUID string `json:"event_uid"`
}

// HandleGetEvent is the message handler for the get-event subject.
func (h *EventHandler) HandleGetEvent(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[GetEventRequest](msg)
	if err != nil {
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_uid", request.EventUID))

	event, err := h.eventService.GetEvent(ctx, request.EventUID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(event)
}

// DeleteEventRequest is the payload of an event deletion request.
type DeleteEventRequest struct {
	Actor    models.Actor         `json:"actor"`
	Token    string               `json:"token,omitempty"`
	EventUID string               `json:"event_uid"`
	Scope    models.DeletionScope `json:"scope"`
}

// HandleDeleteEvent is the message handler for the delete-event subject.
func (h *EventHandler) HandleDeleteEvent(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[DeleteEventRequest](msg)
	if err != nil {
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_uid", request.EventUID))

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	if err := h.eventService.DeleteEvent(ctx, actor, request.EventUID, request.Scope); err != nil {
		return nil, err
	}

	return json.Marshal(map[string]bool{"deleted": true})
}

// NextOccurrenceRequest is the payload of a next-occurrence projection.
type NextOccurrenceRequest struct {
	EventUID string `json:"event_uid"`
}

// NextOccurrenceResponse carries the projected next start and end, or
// HasNext=false when the series has run out.
type NextOccurrenceResponse struct {
	HasNext   bool       `json:"has_next"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// HandleNextOccurrence is the message handler for the next-occurrence subject.
func (h *EventHandler) HandleNextOccurrence(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[NextOccurrenceRequest](msg)
	if err != nil {
		return nil, err
	}

	start, end, ok, err := h.eventService.NextOccurrence(ctx, request.EventUID)
	if err != nil {
		return nil, err
	}

	response := NextOccurrenceResponse{HasNext: ok}
	if ok {
		response.StartTime = &start
		response.EndTime = &end
	}

	return json.Marshal(response)
}

// ParticipantTransitionRequest is the payload of a participant state
// transition. Username names the target row for creator-side actions and is
// ignored for self actions.
type ParticipantTransitionRequest struct {
	Actor    models.Actor             `json:"actor"`
	Token    string                   `json:"token,omitempty"`
	Action   models.ParticipantAction `json:"action"`
	EventUID string                   `json:"event_uid"`
	Username string                   `json:"username,omitempty"`
	Email    string                   `json:"email,omitempty"`
}

// ParticipantTransitionResponse carries the row after the transition, or
// Removed=true when the transition deleted the row.
type ParticipantTransitionResponse struct {
	Participant *models.Participant `json:"participant,omitempty"`
	Removed     bool                `json:"removed,omitempty"`
}

// HandleParticipantTransition is the message handler for the
// transition-participant subject. Each action maps to exactly one service
// method.
func (h *EventHandler) HandleParticipantTransition(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[ParticipantTransitionRequest](msg)
	if err != nil {
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_uid", request.EventUID))
	ctx = logging.AppendCtx(ctx, slog.String("action", string(request.Action)))

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	var participant *models.Participant
	removed := false

	switch request.Action {
	case models.ActionRequestAccess:
		participant, err = h.participantService.RequestAccess(ctx, actor, request.EventUID)
	case models.ActionInviteUser:
		participant, err = h.participantService.InviteUser(ctx, actor, request.EventUID, request.Username, request.Email)
	case models.ActionAcceptInvite:
		participant, err = h.participantService.AcceptInvite(ctx, actor, request.EventUID)
	case models.ActionDeclineInvite:
		participant, err = h.participantService.DeclineInvite(ctx, actor, request.EventUID)
	case models.ActionApproveRequest:
		participant, err = h.participantService.ApproveRequest(ctx, actor, request.EventUID, request.Username)
	case models.ActionDenyRequest:
		participant, err = h.participantService.DenyRequest(ctx, actor, request.EventUID, request.Username)
	case models.ActionRevokeInvite:
		err = h.participantService.RevokeInvite(ctx, actor, request.EventUID, request.Username)
		removed = err == nil
	case models.ActionRemoveSelf:
		err = h.participantService.RemoveSelf(ctx, actor, request.EventUID)
		removed = err == nil
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unknown participant action %q", request.Action), nil)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(ParticipantTransitionResponse{Participant: participant, Removed: removed})
}

// SearchEventsRequest is the payload of an event search.
type SearchEventsRequest struct {
	Actor    models.Actor          `json:"actor"`
	Token    string                `json:"token,omitempty"`
	Criteria models.SearchCriteria `json:"criteria"`
}

// HandleSearchEvents is the message handler for the search-events subject.
func (h *EventHandler) HandleSearchEvents(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[SearchEventsRequest](msg)
	if err != nil {
		return nil, err
	}

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	result, err := h.searchService.SearchEvents(ctx, actor, request.Criteria)
	if err != nil {
		return nil, err
	}

	return json.Marshal(result)
}

// ListParticipantsRequest is the payload of a participant listing.
type ListParticipantsRequest struct {
	EventUID string `json:"event_uid"`
}

// HandleListParticipants is the message handler for the list-participants subject.
func (h *EventHandler) HandleListParticipants(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[ListParticipantsRequest](msg)
	if err != nil {
		return nil, err
	}

	participants, err := h.participantService.ListParticipants(ctx, request.EventUID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(participants)
}

// OrganizationRequest is the payload of a bulk organization operation.
type OrganizationRequest struct {
	Actor        models.Actor `json:"actor"`
	Token        string       `json:"token,omitempty"`
	EventUID     string       `json:"event_uid"`
	Organization string       `json:"organization"`
}

// HandleInviteOrganization is the message handler for the invite-organization subject.
func (h *EventHandler) HandleInviteOrganization(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[OrganizationRequest](msg)
	if err != nil {
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("organization", request.Organization))

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	invited, err := h.participantService.InviteOrganization(ctx, actor, request.EventUID, request.Organization)
	if err != nil {
		return nil, err
	}

	return json.Marshal(invited)
}

// HandleRemoveOrganization is the message handler for the remove-organization subject.
func (h *EventHandler) HandleRemoveOrganization(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[OrganizationRequest](msg)
	if err != nil {
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("organization", request.Organization))

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	removed, err := h.participantService.RemoveOrganization(ctx, actor, request.EventUID, request.Organization)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string][]string{"removed": removed})
}

// AddCommentRequest is the payload of a comment creation request.
type AddCommentRequest struct {
	Actor    models.Actor `json:"actor"`
	Token    string       `json:"token,omitempty"`
	EventUID string       `json:"event_uid"`
	Text     string       `json:"text"`
}

// HandleAddComment is the message handler for the add-comment subject.
func (h *EventHandler) HandleAddComment(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[AddCommentRequest](msg)
	if err != nil {
		return nil, err
	}

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	comment, err := h.eventService.AddComment(ctx, actor, request.EventUID, request.Text)
	if err != nil {
		return nil, err
	}

	return json.Marshal(comment)
}

// DeleteCommentRequest is the payload of a comment deletion request.
type DeleteCommentRequest struct {
	Actor      models.Actor `json:"actor"`
	Token      string       `json:"token,omitempty"`
	CommentUID string       `json:"comment_uid"`
}

// HandleDeleteComment is the message handler for the delete-comment subject.
func (h *EventHandler) HandleDeleteComment(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[DeleteCommentRequest](msg)
	if err != nil {
		return nil, err
	}

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	if err := h.eventService.DeleteComment(ctx, actor, request.CommentUID); err != nil {
		return nil, err
	}

	return json.Marshal(map[string]bool{"deleted": true})
}

// ListCommentsRequest is the payload of a comment listing.
type ListCommentsRequest struct {
	Actor    models.Actor `json:"actor"`
	Token    string       `json:"token,omitempty"`
	EventUID string       `json:"event_uid"`
}

// HandleListComments is the message handler for the list-comments subject.
func (h *EventHandler) HandleListComments(ctx context.Context, msg domain.Message) ([]byte, error) {
	request, err := unmarshalRequest[ListCommentsRequest](msg)
	if err != nil {
		return nil, err
	}

	actor, err := h.resolveActor(ctx, request.Actor, request.Token)
	if err != nil {
		return nil, err
	}

	comments, err := h.eventService.ListComments(ctx, actor, request.EventUID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(comments)
}
