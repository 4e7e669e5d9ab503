// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"time"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
)

// MaxSeriesOccurrences caps how many follow-on occurrences a single series
// expansion may produce, regardless of the end bound.
const MaxSeriesOccurrences = 30

// OccurrenceService implements the domain.OccurrenceExpander interface.
type OccurrenceService struct{}

// NewOccurrenceService creates a new OccurrenceService
func NewOccurrenceService() *OccurrenceService {
	return &OccurrenceService{}
}

// ExpandSeries expands a recurring template into its follow-on occurrences.
//
// Start and end advance together by one calendar unit per step. After each
// advance the new start's date (time-of-day ignored) is compared against the
// end bound's date; expansion stops without emitting once the bound is
// passed. An end bound on the template's own start date therefore yields no
// occurrences.
func (s *OccurrenceService) ExpandSeries(template *models.Event, frequency models.RecurrenceFrequency, endBound time.Time) []*models.Event {
	if template == nil || !frequency.IsValid() {
		return nil
	}

	occurrences := []*models.Event{}
	start := template.StartTime
	end := template.EndTime

	for len(occurrences) < MaxSeriesOccurrences {
		start = s.advance(start, frequency)
		end = s.advance(end, frequency)

		if dateAfter(start, endBound) {
			break
		}

		bound := endBound
		occurrences = append(occurrences, &models.Event{
			Title:               template.Title,
			Description:         template.Description,
			Location:            template.Location,
			StartTime:           start,
			EndTime:             end,
			Creator:             template.Creator,
			IsRecurring:         true,
			RecurrenceFrequency: frequency,
			RecurrenceEnd:       &bound,
			RecurrenceGroupID:   template.RecurrenceGroupID,
		})
	}

	return occurrences
}

// NextOccurrence projects the next occurrence of a recurring event. The
// projection is independent of the store: it applies the same per-frequency
// advance rule as ExpandSeries to the event's own times.
func (s *OccurrenceService) NextOccurrence(event *models.Event) (time.Time, time.Time, bool) {
	if event == nil || !event.IsRecurring || !event.RecurrenceFrequency.IsValid() {
		return time.Time{}, time.Time{}, false
	}

	start := s.advance(event.StartTime, event.RecurrenceFrequency)
	end := s.advance(event.EndTime, event.RecurrenceFrequency)

	if event.RecurrenceEnd != nil && dateAfter(start, *event.RecurrenceEnd) {
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// advance moves a time forward by one calendar unit of the frequency.
func (s *OccurrenceService) advance(t time.Time, frequency models.RecurrenceFrequency) time.Time {
	switch frequency {
	case models.RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case models.RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case models.RecurrenceMonthly:
		return addMonthsClamped(t, 1)
	case models.RecurrenceYearly:
		return addMonthsClamped(t, 12)
	}
	return t
}

// addMonthsClamped adds calendar months, clamping the day-of-month to the
// last day of the target month (Jan 31 + 1 month = Feb 28/29) instead of
// letting the date normalize into the following month.
func addMonthsClamped(t time.Time, months int) time.Time {
	year := t.Year()
	month := int(t.Month()) + months
	for month > 12 {
		year++
		month -= 12
	}

	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, t.Location()).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(
		year, time.Month(month), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		t.Location(),
	)
}

// dateAfter reports whether a's calendar date is strictly after b's,
// ignoring time-of-day.
func dateAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}

// Compile-time interface check
var _ domain.OccurrenceExpander = (*OccurrenceService)(nil)
