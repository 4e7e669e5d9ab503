// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
	"github.com/gatherhall/event-service/internal/logging"
)

// SearchService filters the event catalog by textual and membership criteria
// and serves fixed-size result pages.
type SearchService struct {
	EventRepository       domain.EventRepository
	ParticipantRepository domain.ParticipantRepository
	FriendRoster          domain.FriendRoster
}

// NewSearchService creates a new SearchService.
func NewSearchService(
	eventRepository domain.EventRepository,
	participantRepository domain.ParticipantRepository,
	friendRoster domain.FriendRoster,
) *SearchService {
	return &SearchService{
		EventRepository:       eventRepository,
		ParticipantRepository: participantRepository,
		FriendRoster:          friendRoster,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *SearchService) ServiceReady() bool {
	return s.EventRepository != nil &&
		s.ParticipantRepository != nil &&
		s.FriendRoster != nil
}

// SearchEvents applies the criteria to the full catalog and returns the
// requested page. All filters AND together; OnlyFriendsAccepted is itself an
// OR between friend-created and friend-attended events. Results are ordered
// by ascending start time. A page past the last one resets to page 1.
func (s *SearchService) SearchEvents(ctx context.Context, actor models.Actor, criteria models.SearchCriteria) (*models.SearchResult, error) {
	if actor.IsAnonymous() && criteriaNeedsIdentity(criteria) {
		return nil, domain.NewUnauthorizedError("membership filters require authentication")
	}

	events, err := s.EventRepository.ListAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error listing events for search", logging.ErrKey, err)
		return nil, err
	}

	matches, err := s.applyFilters(ctx, actor, criteria, events)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(matches, func(a, b *models.Event) int {
		return a.StartTime.Compare(b.StartTime)
	})

	return paginate(matches, criteria.Page), nil
}

func criteriaNeedsIdentity(criteria models.SearchCriteria) bool {
	return criteria.OnlyMine || criteria.OnlyInvited || criteria.OnlyAccepted || criteria.OnlyFriendsAccepted
}

func (s *SearchService) applyFilters(ctx context.Context, actor models.Actor, criteria models.SearchCriteria, events []*models.Event) ([]*models.Event, error) {
	titleNeedle := strings.ToLower(criteria.TitleContains)
	creatorNeedle := strings.ToLower(criteria.CreatorContains)

	var invitedEvents, acceptedEvents map[string]bool
	if criteria.OnlyInvited || criteria.OnlyAccepted {
		rows, err := s.ParticipantRepository.ListByUser(ctx, actor.Username)
		if err != nil {
			slog.ErrorContext(ctx, "error listing user participations for search", logging.ErrKey, err)
			return nil, err
		}
		invitedEvents = make(map[string]bool)
		acceptedEvents = make(map[string]bool)
		for _, row := range rows {
			if row.IsPendingInvite() {
				invitedEvents[row.EventUID] = true
			}
			if row.IsConfirmed() {
				acceptedEvents[row.EventUID] = true
			}
		}
	}

	var friends map[string]bool
	if criteria.OnlyFriendsAccepted {
		names, err := s.FriendRoster.AcceptedFriends(ctx, actor.Username)
		if err != nil {
			slog.ErrorContext(ctx, "error listing accepted friends for search", logging.ErrKey, err)
			return nil, err
		}
		friends = make(map[string]bool, len(names))
		for _, name := range names {
			friends[name] = true
		}
	}

	var matches []*models.Event
	for _, event := range events {
		if titleNeedle != "" && !strings.Contains(strings.ToLower(event.Title), titleNeedle) {
			continue
		}
		if creatorNeedle != "" && !strings.Contains(strings.ToLower(event.Creator), creatorNeedle) {
			continue
		}
		if criteria.StartAfter != nil && !event.StartTime.After(*criteria.StartAfter) {
			continue
		}
		if criteria.StartBefore != nil && !event.StartTime.Before(*criteria.StartBefore) {
			continue
		}
		if criteria.OnlyMine && event.Creator != actor.Username {
			continue
		}
		if criteria.OnlyRecurring && !event.IsRecurring {
			continue
		}
		if criteria.OnlyInvited && !invitedEvents[event.UID] {
			continue
		}
		if criteria.OnlyAccepted && !acceptedEvents[event.UID] {
			continue
		}
		if criteria.OnlyFriendsAccepted {
			ok, err := s.friendConnected(ctx, event, friends)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		matches = append(matches, event)
	}

	return matches, nil
}

// friendConnected reports whether the event was created by an accepted
// friend or has a confirmed participant who is one.
func (s *SearchService) friendConnected(ctx context.Context, event *models.Event, friends map[string]bool) (bool, error) {
	if friends[event.Creator] {
		return true, nil
	}

	participants, err := s.ParticipantRepository.ListByEvent(ctx, event.UID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing event participants for search", logging.ErrKey, err,
			"event_uid", event.UID)
		return false, err
	}
	for _, participant := range participants {
		if participant.IsConfirmed() && friends[participant.Username] {
			return true, nil
		}
	}

	return false, nil
}

// paginate slices one fixed-size page out of the ordered matches. Pages are
// 1-indexed; a request past the highest page falls back to the first.
func paginate(matches []*models.Event, page int) *models.SearchResult {
	total := len(matches)
	highestPage := (total + models.SearchPageSize - 1) / models.SearchPageSize
	if highestPage < 1 {
		highestPage = 1
	}

	if page < 1 || page > highestPage {
		page = 1
	}

	start := (page - 1) * models.SearchPageSize
	end := min(start+models.SearchPageSize, total)
	if start > total {
		start = total
	}

	return &models.SearchResult{
		Events:      matches[start:end],
		TotalCount:  total,
		Page:        page,
		HighestPage: highestPage,
	}
}
