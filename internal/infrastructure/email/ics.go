// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// ICS constants for consistent values across all generated ICS files
const (
	ICSProdID         = "-//Gatherhall//Gatherhall Event Service//EN"
	ICALVersion       = "2.0"
	ICALScale         = "GREGORIAN"
	ICALMaxLineLength = 75
)

// UTF-8 byte masks for line folding safety
const (
	UTF8TwoBitMask         = 0xC0 // Mask to isolate first two bits (11000000)
	UTF8ContinuationPrefix = 0x80 // UTF-8 continuation byte prefix (10000000)
)

// EventICSGenerator is the interface for generating ICS calendar files.
type EventICSGenerator interface {
	GenerateEventInvitationICS(params ICSEventInvitationParams) (string, error)
}

// ICSGenerator generates ICS (iCalendar) files for event invitations.
type ICSGenerator struct{}

// NewICSGenerator creates a new ICS generator.
func NewICSGenerator() *ICSGenerator {
	return &ICSGenerator{}
}

var _ EventICSGenerator = (*ICSGenerator)(nil)

// ICSEventInvitationParams contains all the information needed to generate an
// ICS file for an event invitation. Event times are stored in UTC, so the
// generated file uses UTC timestamps rather than a VTIMEZONE block.
type ICSEventInvitationParams struct {
	EventUID       string
	EventTitle     string
	Description    string
	Location       string
	StartTime      time.Time
	EndTime        time.Time
	OrganizerName  string
	RecipientEmail string
	EventURL       string
	// Frequency is empty for one-off events.
	Frequency     models.RecurrenceFrequency
	RecurrenceEnd *time.Time
}

// GenerateEventInvitationICS generates the ICS file content for an event invitation.
func (g *ICSGenerator) GenerateEventInvitationICS(params ICSEventInvitationParams) (string, error) {
	dtstamp := time.Now().UTC().Format("20060102T150405Z")
	dtstart := params.StartTime.UTC().Format("20060102T150405Z")
	dtend := params.EndTime.UTC().Format("20060102T150405Z")

	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString(fmt.Sprintf("VERSION:%s\r\n", ICALVersion))
	ics.WriteString(fmt.Sprintf("PRODID:%s\r\n", ICSProdID))
	ics.WriteString(fmt.Sprintf("CALSCALE:%s\r\n", ICALScale))
	ics.WriteString("METHOD:REQUEST\r\n")

	ics.WriteString("BEGIN:VEVENT\r\n")
	ics.WriteString(fmt.Sprintf("UID:%s\r\n", params.EventUID))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", dtstamp))
	if params.OrganizerName != "" {
		ics.WriteString(fmt.Sprintf("ORGANIZER;CN=%s:mailto:noreply@gatherhall.io\r\n", params.OrganizerName))
	}
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", dtstart))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", dtend))

	if params.Frequency != "" {
		rule, err := generateRRule(params.Frequency, params.StartTime, params.RecurrenceEnd)
		if err != nil {
			return "", err
		}
		if rule != "" {
			ics.WriteString(fmt.Sprintf("RRULE:%s\r\n", rule))
		}
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICSText(params.EventTitle)))
	if params.Description != "" {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICSText(params.Description)))
	}
	if params.Location != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICSText(params.Location)))
	}
	if params.EventURL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", params.EventURL))
	}

	if params.RecipientEmail != "" {
		ics.WriteString(fmt.Sprintf("ATTENDEE;CUTYPE=INDIVIDUAL;ROLE=REQ-PARTICIPANT;PARTSTAT=NEEDS-ACTION;RSVP=TRUE;CN=%s:mailto:%s\r\n",
			params.RecipientEmail, params.RecipientEmail))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("CLASS:PUBLIC\r\n")
	ics.WriteString("SEQUENCE:0\r\n")

	ics.WriteString("BEGIN:VALARM\r\n")
	ics.WriteString("TRIGGER:-PT10M\r\n")
	ics.WriteString("ACTION:DISPLAY\r\n")
	ics.WriteString(fmt.Sprintf("DESCRIPTION:Reminder: %s\r\n", escapeICSText(params.EventTitle)))
	ics.WriteString("END:VALARM\r\n")

	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String(), nil
}

// generateRRule builds the RFC 5545 recurrence rule value for a series.
func generateRRule(frequency models.RecurrenceFrequency, start time.Time, until *time.Time) (string, error) {
	var freq rrule.Frequency
	switch frequency {
	case models.RecurrenceDaily:
		freq = rrule.DAILY
	case models.RecurrenceWeekly:
		freq = rrule.WEEKLY
	case models.RecurrenceMonthly:
		freq = rrule.MONTHLY
	case models.RecurrenceYearly:
		freq = rrule.YEARLY
	default:
		return "", fmt.Errorf("unsupported recurrence frequency %q", frequency)
	}

	option := rrule.ROption{
		Freq:    freq,
		Dtstart: start.UTC(),
	}
	if until != nil {
		option.Until = until.UTC()
	}

	rule, err := rrule.NewRRule(option)
	if err != nil {
		return "", fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	return rule.OrigOptions.RRuleString(), nil
}

// escapeICSText escapes special characters according to RFC 5545 and folds
// long lines.
func escapeICSText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "\n", "\\n")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, ";", "\\;")

	return foldICSLine(text, ICALMaxLineLength)
}

// foldICSLine folds a line to the given maximum length. Continued lines start
// with a space per RFC 5545; breaks never land inside a UTF-8 sequence.
func foldICSLine(line string, maxLength int) string {
	if len(line) <= maxLength {
		return line
	}

	var folded strings.Builder
	remaining := line
	first := true

	for len(remaining) > 0 {
		cutLength := maxLength
		if !first {
			cutLength = maxLength - 1
		}

		if len(remaining) <= cutLength {
			if !first {
				folded.WriteString("\r\n ")
			}
			folded.WriteString(remaining)
			break
		}

		breakPoint := cutLength
		for breakPoint > 0 && remaining[breakPoint-1]&UTF8TwoBitMask == UTF8ContinuationPrefix {
			breakPoint--
		}

		if !first {
			folded.WriteString("\r\n ")
		}
		folded.WriteString(remaining[:breakPoint])
		remaining = remaining[breakPoint:]
		first = false
	}

	return folded.String()
}
