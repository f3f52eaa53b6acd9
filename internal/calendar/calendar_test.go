package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/d3ntaltech/calendrier/internal/config"
	"github.com/d3ntaltech/calendrier/internal/model"
)

func TestNewGridMarch2025(t *testing.T) {
	grid, err := NewGrid(2025, 3)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}

	first := grid.Weeks[0][0]
	last := grid.Weeks[len(grid.Weeks)-1][6]
	if got := first.Format(model.DateLayout); got != "2025-02-24" {
		t.Fatalf("expected grid to start on 2025-02-24, got %s", got)
	}
	if got := last.Format(model.DateLayout); got != "2025-04-06" {
		t.Fatalf("expected grid to end on 2025-04-06, got %s", got)
	}
	if first.Weekday() != time.Monday || last.Weekday() != time.Sunday {
		t.Fatalf("expected Monday..Sunday, got %s..%s", first.Weekday(), last.Weekday())
	}
	if grid.MonthName != "Mars" {
		t.Fatalf("expected month name 'Mars', got %q", grid.MonthName)
	}
	if grid.Prev != (YearMonth{Year: 2025, Month: time.February}) {
		t.Fatalf("unexpected prev %v", grid.Prev)
	}
	if grid.Next != (YearMonth{Year: 2025, Month: time.April}) {
		t.Fatalf("unexpected next %v", grid.Next)
	}
}

func TestNewGridCoversEveryMonthExactlyOnce(t *testing.T) {
	for year := 1999; year <= 2029; year++ {
		for month := 1; month <= 12; month++ {
			grid, err := NewGrid(year, month)
			if err != nil {
				t.Fatalf("new grid %d-%d: %v", year, month, err)
			}

			seen := make(map[string]int)
			var prev time.Time
			inMonth := 0
			for w, week := range grid.Weeks {
				for d, day := range week {
					if !(w == 0 && d == 0) && day.Sub(prev) != 24*time.Hour {
						t.Fatalf("%d-%02d: gap between %s and %s", year, month, prev, day)
					}
					prev = day
					seen[day.Format(model.DateLayout)]++
					if grid.Contains(day) {
						inMonth++
					}
				}
			}
			for key, count := range seen {
				if count != 1 {
					t.Fatalf("%d-%02d: date %s appears %d times", year, month, key, count)
				}
			}
			if inMonth != grid.Last.Day() {
				t.Fatalf("%d-%02d: expected %d in-month days, got %d", year, month, grid.Last.Day(), inMonth)
			}
			if grid.Weeks[0][0].Weekday() != time.Monday {
				t.Fatalf("%d-%02d: week does not start on Monday", year, month)
			}
		}
	}
}

func TestNewGridLeapFebruary(t *testing.T) {
	grid, err := NewGrid(2024, 2)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	if grid.Last.Day() != 29 {
		t.Fatalf("expected 29 days in February 2024, got %d", grid.Last.Day())
	}

	grid, err = NewGrid(1900, 2)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	if grid.Last.Day() != 28 {
		t.Fatalf("expected 28 days in February 1900, got %d", grid.Last.Day())
	}
}

func TestNewGridRejectsInvalidParameters(t *testing.T) {
	cases := []struct{ year, month int }{
		{2025, 0},
		{2025, 13},
		{0, 5},
		{-1, 5},
	}
	for _, tc := range cases {
		if _, err := NewGrid(tc.year, tc.month); !errors.Is(err, ErrInvalidCalendarParameters) {
			t.Fatalf("NewGrid(%d, %d): expected ErrInvalidCalendarParameters, got %v", tc.year, tc.month, err)
		}
	}
}

func TestYearMonthNavigationWraps(t *testing.T) {
	jan := YearMonth{Year: 2025, Month: time.January}
	if got := jan.Prev(); got != (YearMonth{Year: 2024, Month: time.December}) {
		t.Fatalf("expected 2024-12, got %v", got)
	}
	dec := YearMonth{Year: 2025, Month: time.December}
	if got := dec.Next(); got != (YearMonth{Year: 2026, Month: time.January}) {
		t.Fatalf("expected 2026-01, got %v", got)
	}

	for month := time.January; month <= time.December; month++ {
		ym := YearMonth{Year: 2030, Month: month}
		if ym.Next().Prev() != ym || ym.Prev().Next() != ym {
			t.Fatalf("navigation is not reversible for %v", ym)
		}
	}
}

func TestTaggerDefaultRules(t *testing.T) {
	tagger := NewTagger(config.DefaultCategoryRules(), "autre")

	cases := map[string]string{
		"Rendez-vous Client":   "rdv",
		"Visite fournisseur":   "rdv",
		"Réunion d'équipe":     "reunion",
		"RÉUNION":              "reunion",
		"Team meeting":         "reunion",
		"Administratif":        "admin",
		"Urgence patient":      "urgence",
		"Formation CFAO":       "formation",
		"Déjeuner":             "autre",
		"":                     "autre",
		"Réunion client":       "rdv",
		"Urgent: admin report": "admin",
	}
	for category, want := range cases {
		if got := tagger.Tag(category); got != want {
			t.Fatalf("Tag(%q) = %q, want %q", category, got, want)
		}
		if again := tagger.Tag(category); again != want {
			t.Fatalf("Tag(%q) is not deterministic", category)
		}
	}
}

func TestTaggerCustomRulesKeepOrder(t *testing.T) {
	tagger := NewTagger([]config.CategoryRule{
		{Tag: "first", Keywords: []string{" Labo "}},
		{Tag: "second", Keywords: []string{"labo", "atelier"}},
	}, "other")

	if got := tagger.Tag("Livraison LABO"); got != "first" {
		t.Fatalf("expected first rule to win, got %q", got)
	}
	if got := tagger.Tag("Atelier"); got != "second" {
		t.Fatalf("expected second rule, got %q", got)
	}
	if got := tagger.Tag("Autre chose"); got != "other" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestBuildMonthViewGroupsEventsByDate(t *testing.T) {
	grid, err := NewGrid(2025, 3)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	tagger := NewTagger(config.DefaultCategoryRules(), "autre")

	events := []model.Event{
		{ID: 1, Title: "Inventaire", Date: "2025-03-03", Time: model.AllDay, Category: "Admin", Priority: "Normal"},
		{ID: 2, Title: "Point hebdo", Date: "2025-03-03", Time: "09:00", Category: "Réunion", Priority: "Normal"},
		{ID: 3, Title: "Client visit", Date: "2025-03-31", Time: "14:30", Category: "Rendez-vous Client",
			Collaborators: []string{"Denis", "Isis"}, Priority: "Urgent"},
	}
	today := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	view := BuildMonthView(grid, events, tagger, today)

	if len(view.EventsByDate["2025-03-03"]) != 2 {
		t.Fatalf("expected 2 events on 2025-03-03, got %d", len(view.EventsByDate["2025-03-03"]))
	}
	visit := view.EventsByDate["2025-03-31"]
	if len(visit) != 1 || visit[0].CSSClass != "rdv" {
		t.Fatalf("expected client visit tagged rdv, got %+v", visit)
	}

	if len(view.Recap) != 2 {
		t.Fatalf("expected 2 recap days, got %d", len(view.Recap))
	}
	if view.Recap[0].Key != "2025-03-03" || len(view.Recap[0].Entries) != 2 {
		t.Fatalf("unexpected first recap day %+v", view.Recap[0])
	}
	if view.Recap[0].Entries[0].Time != "Journée" {
		t.Fatalf("expected all-day entry first, got %q", view.Recap[0].Entries[0].Time)
	}
	last := view.Recap[1].Entries[0]
	if last.Collaborators != "Denis, Isis" || last.Priority != "Urgent" {
		t.Fatalf("unexpected recap entry %+v", last)
	}
	if view.RecapStart.Format(model.DateLayout) != "2025-03-01" || view.RecapEnd.Format(model.DateLayout) != "2025-03-31" {
		t.Fatalf("unexpected recap bounds %s..%s", view.RecapStart, view.RecapEnd)
	}

	var todayCells, paddingCells int
	for _, week := range view.Weeks {
		for _, cell := range week {
			if cell.IsToday {
				todayCells++
				if cell.Key != "2025-03-31" || len(cell.Events) != 1 {
					t.Fatalf("unexpected today cell %+v", cell)
				}
			}
			if !cell.InMonth {
				paddingCells++
			}
		}
	}
	if todayCells != 1 {
		t.Fatalf("expected exactly one today cell, got %d", todayCells)
	}
	if paddingCells != 11 {
		t.Fatalf("expected 11 padding cells for March 2025, got %d", paddingCells)
	}
}
