// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// SearchPageSize is the fixed number of events per result page.
const SearchPageSize = 10

// SearchCriteria is the filter set of an event search. Criteria combine with
// logical AND; OnlyFriendsAccepted is internally an OR between friend-created
// and friend-attended events.
type SearchCriteria struct {
	// TitleContains matches event titles case-insensitively.
	TitleContains string `json:"title_contains,omitempty"`
	// CreatorContains matches creator usernames case-insensitively.
	CreatorContains string `json:"creator_contains,omitempty"`
	// StartAfter keeps events with start strictly after this instant.
	StartAfter *time.Time `json:"start_after,omitempty"`
	// StartBefore keeps events with start strictly before this instant.
	StartBefore *time.Time `json:"start_before,omitempty"`
	// OnlyMine keeps events created by the searching user.
	OnlyMine bool `json:"only_mine,omitempty"`
	// OnlyRecurring keeps recurring events.
	OnlyRecurring bool `json:"only_recurring,omitempty"`
	// OnlyInvited keeps events where the user holds a pending creator invite.
	OnlyInvited bool `json:"only_invited,omitempty"`
	// OnlyAccepted keeps events where the user is a confirmed participant.
	OnlyAccepted bool `json:"only_accepted,omitempty"`
	// OnlyFriendsAccepted keeps events created by an accepted friend or with a
	// confirmed participant who is an accepted friend.
	OnlyFriendsAccepted bool `json:"only_friends_accepted,omitempty"`
	// Page is the 1-indexed result page. Out-of-range pages reset to 1.
	Page int `json:"page,omitempty"`
}

// SearchResult is one page of matching events with pagination totals.
type SearchResult struct {
	Events      []*Event `json:"events"`
	TotalCount  int      `json:"total_count"`
	Page        int      `json:"page"`
	HighestPage int      `json:"highest_page"`
}
