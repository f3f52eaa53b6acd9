package recap

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/log"
	"github.com/d3ntaltech/calendrier/internal/model"
	"github.com/d3ntaltech/calendrier/internal/notify"
)

const Title = "Récapitulatif du jour"

type EventLister interface {
	ListEventsForDate(ctx context.Context, day time.Time) ([]model.Event, error)
}

type Sender interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Scheduler mails the day's events on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	events EventLister
	sender Sender
	tagger *calendar.Tagger
	loc    *time.Location
	now    func() time.Time
}

// New parses schedule as a standard five-field cron expression evaluated in loc.
func New(schedule string, loc *time.Location, events EventLister, sender Sender, tagger *calendar.Tagger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		events: events,
		sender: sender,
		tagger: tagger,
		loc:    loc,
		now:    time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("parse recap schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running tick, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) tick() {
	sent, err := s.RunOnce(context.Background())
	if err != nil {
		log.Error("daily recap failed", err)
		return
	}
	if sent {
		log.Info("daily recap sent")
	}
}

// RunOnce sends the recap for the current day. It reports false without
// sending when the day has no events.
func (s *Scheduler) RunOnce(ctx context.Context) (bool, error) {
	today := s.now().In(s.loc)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	events, err := s.events.ListEventsForDate(ctx, day)
	if err != nil {
		return false, fmt.Errorf("list events for %s: %w", day.Format(model.DateLayout), err)
	}
	if len(events) == 0 {
		log.Debug("no events today, recap skipped", "date", day.Format(model.DateLayout))
		return false, nil
	}

	msg, err := notify.RenderRecap(Title, calendar.BuildRecap(events, s.tagger))
	if err != nil {
		return false, err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}
