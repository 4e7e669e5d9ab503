// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
)

//go:embed templates/*
var templateFS embed.FS

// RenderedEmail holds both HTML and text versions of a rendered email.
type RenderedEmail struct {
	HTML string
	Text string
}

// TemplateSet pairs the HTML and plain text templates of one email kind.
type TemplateSet struct {
	HTML *template.Template
	Text *template.Template
}

// Templates holds the loaded email templates.
type Templates struct {
	Invitation TemplateSet
}

// invitationTemplateData is what the invitation templates render against.
type invitationTemplateData struct {
	domain.EventInvitation
	EventURL string
}

type templateConfig struct {
	name string
	path string
}

// loadTemplates loads every email template with the shared function map.
func loadTemplates() (Templates, error) {
	templateConfigs := map[string]templateConfig{
		"invitationHTML": {"event_invitation.html", "templates/event_invitation.html"},
		"invitationText": {"event_invitation.txt", "templates/event_invitation.txt"},
	}

	loaded := make(map[string]*template.Template)
	for key, cfg := range templateConfigs {
		tmpl, err := loadTemplate(cfg)
		if err != nil {
			return Templates{}, err
		}
		loaded[key] = tmpl
	}

	return Templates{
		Invitation: TemplateSet{
			HTML: loaded["invitationHTML"],
			Text: loaded["invitationText"],
		},
	}, nil
}

// loadTemplate loads a single template with the shared function map.
func loadTemplate(config templateConfig) (*template.Template, error) {
	tmpl, err := template.New(config.name).Funcs(template.FuncMap{
		"formatEventTime":    formatEventTime,
		"formatRecurrence":   formatRecurrence,
		"newLineToBreakLine": newLineToBreakLine,
	}).ParseFS(templateFS, config.path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", config.name, err)
	}
	return tmpl, nil
}

// renderTemplate renders any template with the provided data.
func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatEventTime formats a time for display in emails. Event times are
// stored in UTC.
func formatEventTime(t time.Time) string {
	utc := t.UTC()

	day := utc.Day()
	var suffix string
	switch {
	case day >= 11 && day <= 13:
		suffix = "th"
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	default:
		suffix = "th"
	}

	// Format: Wednesday, September 15th, 10:30 UTC
	return fmt.Sprintf("%s, %s %d%s, %s UTC",
		utc.Format("Monday"),
		utc.Format("January"),
		day,
		suffix,
		utc.Format("15:04"))
}

// formatRecurrence describes a series schedule in plain words, or returns an
// empty string for one-off events.
func formatRecurrence(frequency models.RecurrenceFrequency, end *time.Time) string {
	if frequency == "" {
		return ""
	}

	description := fmt.Sprintf("Repeats %s", string(frequency))
	if end != nil {
		description += fmt.Sprintf(" until %s", end.UTC().Format("January 2, 2006"))
	}
	return description
}

// newLineToBreakLine converts newlines to HTML break tags for HTML emails.
func newLineToBreakLine(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>")) // #nosec G203 -- input is escaped above
}
