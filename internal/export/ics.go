package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/d3ntaltech/calendrier/internal/log"
	"github.com/d3ntaltech/calendrier/internal/model"
)

const productID = "-//D3NTAL TECH//Calendrier//FR"

// WriteICS encodes events as a VCALENDAR. Timed events last one hour in loc;
// all-day events and events with an unreadable time use DATE values. Events
// with an unreadable date are left out.
func WriteICS(w io.Writer, events []model.Event, loc *time.Location, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, event := range events {
		vevent, ok := toVEvent(event, loc, stamp)
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, vevent)
	}

	return ical.NewEncoder(w).Encode(cal)
}

func toVEvent(event model.Event, loc *time.Location, stamp time.Time) (*ical.Component, bool) {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, fmt.Sprintf("event-%d@calendrier", event.ID))
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

	day, err := time.ParseInLocation(model.DateLayout, event.Date, loc)
	if err != nil {
		log.Warn("event skipped in ics export", "event_id", event.ID, "date", event.Date)
		return nil, false
	}

	clock, err := time.Parse(model.TimeLayout, event.Time)
	if !event.IsAllDay() && err != nil {
		log.Warn("unreadable event time exported as all-day", "event_id", event.ID, "time", event.Time)
	}
	if event.IsAllDay() || err != nil {
		ve.Props.SetDate(ical.PropDateTimeStart, day)
		ve.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	} else {
		start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
		ve.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Hour).UTC())
	}

	if event.Category != "" {
		ve.Props.SetText(ical.PropCategories, event.Category)
	}

	var description []string
	if len(event.Collaborators) > 0 {
		description = append(description, "Collaborateurs : "+event.CollaboratorList())
	}
	description = append(description, "Priorité : "+event.Priority)
	if event.Notes != "" {
		description = append(description, event.Notes)
	}
	ve.Props.SetText(ical.PropDescription, strings.Join(description, "\n"))

	return ve, true
}
