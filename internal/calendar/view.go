package calendar

import (
	"time"

	"github.com/d3ntaltech/calendrier/internal/model"
)

type TaggedEvent struct {
	model.Event
	CSSClass string
}

type DayCell struct {
	Date    time.Time
	Key     string
	InMonth bool
	IsToday bool
	Events  []TaggedEvent
}

type RecapEntry struct {
	ID            int64
	Time          string
	Category      string
	Title         string
	Collaborators string
	Priority      string
	Notes         string
	CSSClass      string
}

type RecapDay struct {
	Date    time.Time
	Key     string
	Entries []RecapEntry
}

type MonthView struct {
	Grid
	Weeks        [][]DayCell
	EventsByDate map[string][]TaggedEvent
	Recap        []RecapDay
	RecapStart   time.Time
	RecapEnd     time.Time
	Today        time.Time
}

// BuildMonthView places events on the grid. events must already be ordered
// by date then time, as the store returns them.
func BuildMonthView(grid Grid, events []model.Event, tagger *Tagger, today time.Time) MonthView {
	todayKey := today.Format(model.DateLayout)

	byDate := make(map[string][]TaggedEvent)
	for _, event := range events {
		byDate[event.Date] = append(byDate[event.Date], TaggedEvent{Event: event, CSSClass: tagger.Tag(event.Category)})
	}

	weeks := make([][]DayCell, 0, len(grid.Weeks))
	for _, week := range grid.Weeks {
		cells := make([]DayCell, 0, len(week))
		for _, day := range week {
			key := day.Format(model.DateLayout)
			cells = append(cells, DayCell{
				Date:    day,
				Key:     key,
				InMonth: grid.Contains(day),
				IsToday: key == todayKey,
				Events:  byDate[key],
			})
		}
		weeks = append(weeks, cells)
	}

	return MonthView{
		Grid:         grid,
		Weeks:        weeks,
		EventsByDate: byDate,
		Recap:        BuildRecap(events, tagger),
		RecapStart:   grid.First,
		RecapEnd:     grid.Last,
		Today:        today,
	}
}

// BuildRecap groups ordered events by date, keeping only dates that have events.
func BuildRecap(events []model.Event, tagger *Tagger) []RecapDay {
	var days []RecapDay
	for _, event := range events {
		if len(days) == 0 || days[len(days)-1].Key != event.Date {
			days = append(days, RecapDay{Date: event.Day(), Key: event.Date})
		}
		current := &days[len(days)-1]
		current.Entries = append(current.Entries, RecapEntry{
			ID:            event.ID,
			Time:          event.DisplayTime(),
			Category:      event.Category,
			Title:         event.Title,
			Collaborators: event.CollaboratorList(),
			Priority:      event.Priority,
			Notes:         event.Notes,
			CSSClass:      tagger.Tag(event.Category),
		})
	}
	return days
}
