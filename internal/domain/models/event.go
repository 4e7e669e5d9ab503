// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"fmt"
	"time"
)

// RecurrenceFrequency is the calendar unit between occurrences of a series.
type RecurrenceFrequency string

const (
	// RecurrenceDaily advances a series by one day per occurrence.
	RecurrenceDaily RecurrenceFrequency = "daily"
	// RecurrenceWeekly advances a series by seven days per occurrence.
	RecurrenceWeekly RecurrenceFrequency = "weekly"
	// RecurrenceMonthly advances a series by one calendar month per occurrence.
	RecurrenceMonthly RecurrenceFrequency = "monthly"
	// RecurrenceYearly advances a series by one calendar year per occurrence.
	RecurrenceYearly RecurrenceFrequency = "yearly"
)

// IsValid reports whether the frequency is one of the supported units.
func (f RecurrenceFrequency) IsValid() bool {
	switch f {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// Event is the key-value store representation of an event.
//
// All rows sharing a RecurrenceGroupID belong to one series: they carry
// identical title/description/location/creator/frequency and strictly
// increasing start times. The row with the earliest start is the series
// template.
type Event struct {
	UID                 string              `json:"uid"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Location            string              `json:"location"`
	StartTime           time.Time           `json:"start_time"`
	EndTime             time.Time           `json:"end_time"`
	Creator             string              `json:"creator"`
	IsRecurring         bool                `json:"is_recurring"`
	RecurrenceFrequency RecurrenceFrequency `json:"recurrence_frequency,omitempty"`
	RecurrenceEnd       *time.Time          `json:"recurrence_end,omitempty"`
	RecurrenceGroupID   string              `json:"recurrence_group_id,omitempty"`
	CreatedAt           *time.Time          `json:"created_at,omitempty"`
	UpdatedAt           *time.Time          `json:"updated_at,omitempty"`
}

// Tags generates a consistent set of tags for the event for searching/indexing.
func (e *Event) Tags() []string {
	if e == nil {
		return nil
	}

	tags := []string{}

	if e.UID != "" {
		tags = append(tags, e.UID)
		tags = append(tags, fmt.Sprintf("event_uid:%s", e.UID))
	}

	if e.Title != "" {
		tags = append(tags, fmt.Sprintf("title:%s", e.Title))
	}

	if e.Creator != "" {
		tags = append(tags, fmt.Sprintf("creator:%s", e.Creator))
	}

	if e.RecurrenceGroupID != "" {
		tags = append(tags, fmt.Sprintf("recurrence_group_id:%s", e.RecurrenceGroupID))
	}

	return tags
}

// RecurrenceOptions describes the recurrence requested at event creation.
type RecurrenceOptions struct {
	Frequency RecurrenceFrequency `json:"frequency"`
	End       time.Time           `json:"end"`
}

// DeletionScope selects how much of a series an event deletion removes.
type DeletionScope string

const (
	// ScopeInstance deletes exactly one event row.
	ScopeInstance DeletionScope = "instance"
	// ScopeAllFuture deletes the row and every later occurrence of its series.
	ScopeAllFuture DeletionScope = "all_future"
)

// Comment is a remark left on an event by its creator or a confirmed participant.
type Comment struct {
	UID       string     `json:"uid"`
	EventUID  string     `json:"event_uid"`
	Author    string     `json:"author"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
