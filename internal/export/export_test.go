package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/config"
	"github.com/d3ntaltech/calendrier/internal/model"
)

func sampleEvents() []model.Event {
	return []model.Event{
		{ID: 1, Owner: "denis@d3ntal-tech.fr", Title: "Congés", Date: "2025-03-31", Time: model.AllDay, Category: "Absence", Priority: "Basse"},
		{
			ID:            2,
			Owner:         "isis@d3ntal-tech.fr",
			Title:         "Client, visite",
			Date:          "2025-03-31",
			Time:          "14:30",
			Category:      "Rendez-vous Client",
			Collaborators: []string{"Denis", "Isis"},
			Priority:      "Urgent",
			Notes:         "apporter les empreintes",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleEvents()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "date,heure,type,titre,collaborateurs,priorite,notes,auteur" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][1] != "Journée" {
		t.Fatalf("expected all-day label, got %q", records[1][1])
	}
	if records[2][3] != "Client, visite" || records[2][4] != "Denis, Isis" || records[2][7] != "isis@d3ntal-tech.fr" {
		t.Fatalf("unexpected row %v", records[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestWritePDF(t *testing.T) {
	tagger := calendar.NewTagger(config.DefaultCategoryRules(), "autre")
	days := calendar.BuildRecap(sampleEvents(), tagger)

	var buf bytes.Buffer
	if err := WritePDF(&buf, "Récapitulatif mars 2025", days); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected a PDF document")
	}

	buf.Reset()
	if err := WritePDF(&buf, "Vide", nil); err != nil {
		t.Fatalf("write empty pdf: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected output for empty recap")
	}
}

func TestWriteICS(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	stamp := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := WriteICS(&buf, sampleEvents(), loc, stamp); err != nil {
		t.Fatalf("write ics: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + productID,
		"UID:event-1@calendrier",
		"DTSTART;VALUE=DATE:20250331",
		"DTEND;VALUE=DATE:20250401",
		"UID:event-2@calendrier",
		// 14:30 Paris summer time is 12:30 UTC.
		"DTSTART:20250331T123000Z",
		"DTEND:20250331T133000Z",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
	if strings.Count(out, "BEGIN:VEVENT") != 2 {
		t.Fatalf("expected 2 events in\n%s", out)
	}
}

func TestWriteICSToleratesUnreadableStoredValues(t *testing.T) {
	events := []model.Event{
		{ID: 9, Title: "Sans heure", Date: "2025-03-31", Time: "", Priority: "Normal"},
		{ID: 10, Title: "Sans date", Date: "31/03/2025", Time: "09:00", Priority: "Normal"},
	}
	var buf bytes.Buffer
	if err := WriteICS(&buf, events, time.UTC, time.Now()); err != nil {
		t.Fatalf("write ics: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "UID:event-9@calendrier") || !strings.Contains(out, "DTSTART;VALUE=DATE:20250331") {
		t.Fatalf("expected event without time as all-day in\n%s", out)
	}
	if strings.Contains(out, "event-10@calendrier") {
		t.Fatalf("expected event with unreadable date to be skipped in\n%s", out)
	}
}
