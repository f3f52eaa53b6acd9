package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/model"
)

const subjectPrefix = "D3NTAL TECH — "

type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

type field struct {
	Label string
	Value string
}

var changeTemplate = template.Must(template.New("change").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
<h2 style="color: #333;">{{.Heading}}</h2>
<table style="border-collapse: collapse; width: 100%;">
{{range .Fields}}<tr><td style="padding: 6px; border-bottom: 1px solid #eee; font-weight: bold;">{{.Label}}</td><td style="padding: 6px; border-bottom: 1px solid #eee;">{{.Value}}</td></tr>
{{end}}</table>
</div>`))

var recapTemplate = template.Must(template.New("recap").Parse(`<div style="font-family: Arial, sans-serif; max-width: 700px; margin: auto; padding: 20px;">
<h2 style="color: #333;">{{.Heading}}</h2>
{{range .Days}}<h3>{{.Label}}</h3>
<table style="border-collapse: collapse; width: 100%;">
<tr><th align="left">Heure</th><th align="left">Type</th><th align="left">Titre</th><th align="left">Collaborateurs</th><th align="left">Priorité</th><th align="left">Notes</th></tr>
{{range .Entries}}<tr><td>{{.Time}}</td><td>{{.Category}}</td><td>{{.Title}}</td><td>{{.Collaborators}}</td><td>{{.Priority}}</td><td>{{.Notes}}</td></tr>
{{end}}</table>
{{end}}</div>`))

func headingFor(action model.Action) string {
	switch action {
	case model.ActionCreated:
		return "Nouvel événement"
	case model.ActionUpdated:
		return "Événement modifié"
	case model.ActionDeleted:
		return "Événement supprimé"
	default:
		return "Événement"
	}
}

// RenderChange builds the mail for one committed change. Recipients are
// filled in by the dispatcher.
func RenderChange(change model.Change) (Message, error) {
	event := change.Event
	heading := headingFor(change.Action)
	fields := []field{
		{Label: "Titre", Value: event.Title},
		{Label: "Date", Value: event.Date},
		{Label: "Heure", Value: event.DisplayTime()},
		{Label: "Type", Value: event.Category},
		{Label: "Collaborateurs", Value: event.CollaboratorList()},
		{Label: "Priorité", Value: event.Priority},
		{Label: "Notes", Value: event.Notes},
		{Label: "Par", Value: change.Actor},
	}

	var html bytes.Buffer
	if err := changeTemplate.Execute(&html, struct {
		Heading string
		Fields  []field
	}{Heading: heading, Fields: fields}); err != nil {
		return Message{}, err
	}

	var text strings.Builder
	text.WriteString(heading + "\n\n")
	for _, f := range fields {
		fmt.Fprintf(&text, "%s : %s\n", f.Label, f.Value)
	}

	return Message{
		Subject: subjectPrefix + heading,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// RenderRecap builds a summary mail for the given days.
func RenderRecap(title string, days []calendar.RecapDay) (Message, error) {
	type dayBlock struct {
		Label   string
		Entries []calendar.RecapEntry
	}
	blocks := make([]dayBlock, 0, len(days))
	var text strings.Builder
	text.WriteString(title + "\n")
	for _, day := range days {
		label := FormatDay(day.Date)
		blocks = append(blocks, dayBlock{Label: label, Entries: day.Entries})
		fmt.Fprintf(&text, "\n%s\n", label)
		for _, entry := range day.Entries {
			fmt.Fprintf(&text, "- %s %s (%s) %s\n", entry.Time, entry.Title, entry.Category, entry.Priority)
		}
	}

	var html bytes.Buffer
	if err := recapTemplate.Execute(&html, struct {
		Heading string
		Days    []dayBlock
	}{Heading: title, Days: blocks}); err != nil {
		return Message{}, err
	}

	return Message{Subject: subjectPrefix + title, HTML: html.String(), Text: text.String()}, nil
}

var weekdayNames = [...]string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}

// FormatDay renders a date as e.g. "Lundi 31/03/2025".
func FormatDay(day time.Time) string {
	return weekdayNames[day.Weekday()] + " " + day.Format("02/01/2006")
}
