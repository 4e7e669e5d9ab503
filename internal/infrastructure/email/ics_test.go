// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhall/event-service/internal/domain/models"
)

func TestGenerateEventInvitationICS(t *testing.T) {
	generator := NewICSGenerator()
	start := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)

	t.Run("one-off event", func(t *testing.T) {
		ics, err := generator.GenerateEventInvitationICS(ICSEventInvitationParams{
			EventUID:       "event-1",
			EventTitle:     "Garden Meetup",
			Description:    "Bring gloves",
			Location:       "Community Garden",
			StartTime:      start,
			EndTime:        start.Add(time.Hour),
			OrganizerName:  "alice",
			RecipientEmail: "bob@example.com",
			EventURL:       "https://gatherhall.io/events/event-1",
		})
		require.NoError(t, err)

		assert.Contains(t, ics, "BEGIN:VCALENDAR")
		assert.Contains(t, ics, "METHOD:REQUEST")
		assert.Contains(t, ics, "UID:event-1")
		assert.Contains(t, ics, "DTSTART:20240601T180000Z")
		assert.Contains(t, ics, "DTEND:20240601T190000Z")
		assert.Contains(t, ics, "SUMMARY:Garden Meetup")
		assert.Contains(t, ics, "LOCATION:Community Garden")
		assert.Contains(t, ics, "ATTENDEE;CUTYPE=INDIVIDUAL;ROLE=REQ-PARTICIPANT;PARTSTAT=NEEDS-ACTION;RSVP=TRUE;CN=bob@example.com:mailto:bob@example.com")
		assert.Contains(t, ics, "URL:https://gatherhall.io/events/event-1")
		assert.NotContains(t, ics, "RRULE:")
		assert.Contains(t, ics, "END:VCALENDAR")
	})

	t.Run("recurring event carries RRULE", func(t *testing.T) {
		until := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
		ics, err := generator.GenerateEventInvitationICS(ICSEventInvitationParams{
			EventUID:      "event-2",
			EventTitle:    "Weekly Standup",
			StartTime:     start,
			EndTime:       start.Add(30 * time.Minute),
			Frequency:     models.RecurrenceWeekly,
			RecurrenceEnd: &until,
		})
		require.NoError(t, err)

		assert.Contains(t, ics, "RRULE:")
		assert.Contains(t, ics, "FREQ=WEEKLY")
		assert.Contains(t, ics, "UNTIL=20240801T000000Z")
	})

	t.Run("unbounded series omits UNTIL", func(t *testing.T) {
		ics, err := generator.GenerateEventInvitationICS(ICSEventInvitationParams{
			EventUID:   "event-3",
			EventTitle: "Daily Walk",
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Frequency:  models.RecurrenceDaily,
		})
		require.NoError(t, err)

		assert.Contains(t, ics, "FREQ=DAILY")
		assert.NotContains(t, ics, "UNTIL=")
	})

	t.Run("special characters are escaped", func(t *testing.T) {
		ics, err := generator.GenerateEventInvitationICS(ICSEventInvitationParams{
			EventUID:   "event-4",
			EventTitle: "Dinner; wine, cheese",
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
		})
		require.NoError(t, err)

		assert.Contains(t, ics, "SUMMARY:Dinner\\; wine\\, cheese")
	})
}

func TestEscapeICSText(t *testing.T) {
	assert.Equal(t, "a\\,b\\;c\\\\d\\ne", escapeICSText("a,b;c\\d\ne"))
}

func TestFoldICSLine(t *testing.T) {
	t.Run("short line untouched", func(t *testing.T) {
		assert.Equal(t, "short", foldICSLine("short", ICALMaxLineLength))
	})

	t.Run("long line folded with leading space", func(t *testing.T) {
		long := strings.Repeat("a", 200)
		folded := foldICSLine(long, ICALMaxLineLength)

		lines := strings.Split(folded, "\r\n")
		require.Greater(t, len(lines), 1)
		for i, line := range lines {
			if i > 0 {
				assert.True(t, strings.HasPrefix(line, " "), "continuation line %d must start with a space", i)
			}
			assert.LessOrEqual(t, len(line), ICALMaxLineLength)
		}
		assert.Equal(t, long, strings.ReplaceAll(strings.ReplaceAll(folded, "\r\n ", ""), "\r\n", ""))
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		long := strings.Repeat("é", 100)
		folded := foldICSLine(long, ICALMaxLineLength)
		unfolded := strings.ReplaceAll(folded, "\r\n ", "")
		assert.Equal(t, long, unfolded)
	})
}
