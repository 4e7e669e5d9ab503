// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"time"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// OccurrenceExpander defines the interface for deterministically expanding a
// recurring event template into its bounded follow-on occurrences.
type OccurrenceExpander interface {
	// ExpandSeries produces the occurrences that follow the template, one
	// calendar unit of frequency apart, until the end bound's date is passed.
	// The template itself is not included in the result.
	ExpandSeries(template *models.Event, frequency models.RecurrenceFrequency, endBound time.Time) []*models.Event

	// NextOccurrence projects the single next occurrence of a recurring event
	// without consulting the store. It returns false if the event is not
	// recurring or the projected date falls past the recurrence end date.
	NextOccurrence(event *models.Event) (start, end time.Time, ok bool)
}
