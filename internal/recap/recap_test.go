package recap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/config"
	"github.com/d3ntaltech/calendrier/internal/model"
	"github.com/d3ntaltech/calendrier/internal/notify"
)

type stubLister struct {
	asked  []string
	events []model.Event
	err    error
}

func (s *stubLister) ListEventsForDate(_ context.Context, day time.Time) ([]model.Event, error) {
	s.asked = append(s.asked, day.Format(model.DateLayout))
	return s.events, s.err
}

type stubSender struct {
	sent []notify.Message
	err  error
}

func (s *stubSender) Send(_ context.Context, msg notify.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newScheduler(t *testing.T, lister *stubLister, sender *stubSender, now time.Time) *Scheduler {
	t.Helper()
	s, err := New("0 7 * * 1-5", time.FixedZone("CET", 3600), lister, sender, calendar.NewTagger(config.DefaultCategoryRules(), "autre"))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.now = func() time.Time { return now }
	return s
}

func TestRunOnceSendsTodaysEvents(t *testing.T) {
	lister := &stubLister{events: []model.Event{
		{ID: 1, Title: "Réunion équipe", Date: "2025-03-04", Time: "09:00", Category: "Réunion", Priority: "Normal"},
	}}
	sender := &stubSender{}
	// 23:30 UTC on the 3rd is already the 4th in CET.
	s := newScheduler(t, lister, sender, time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC))

	sent, err := s.RunOnce(context.Background())
	if err != nil || !sent {
		t.Fatalf("expected recap to be sent, got sent=%v err=%v", sent, err)
	}
	if len(lister.asked) != 1 || lister.asked[0] != "2025-03-04" {
		t.Fatalf("expected lookup for 2025-03-04, got %v", lister.asked)
	}
	if len(sender.sent) != 1 || !strings.Contains(sender.sent[0].Subject, Title) {
		t.Fatalf("unexpected messages %+v", sender.sent)
	}
	if !strings.Contains(sender.sent[0].Text, "Réunion équipe") {
		t.Fatalf("expected event in body, got %q", sender.sent[0].Text)
	}
}

func TestRunOnceSkipsEmptyDay(t *testing.T) {
	sender := &stubSender{}
	s := newScheduler(t, &stubLister{}, sender, time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC))

	sent, err := s.RunOnce(context.Background())
	if err != nil || sent {
		t.Fatalf("expected skip, got sent=%v err=%v", sent, err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no mail, got %d", len(sender.sent))
	}
}

func TestRunOncePropagatesErrors(t *testing.T) {
	s := newScheduler(t, &stubLister{err: errors.New("disk I/O error")}, &stubSender{}, time.Now())
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}

	lister := &stubLister{events: []model.Event{{ID: 1, Title: "x", Date: "2025-03-04", Time: model.AllDay, Priority: "Normal"}}}
	s = newScheduler(t, lister, &stubSender{err: errors.New("smtp down")}, time.Now())
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected send error")
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New("every morning", time.UTC, &stubLister{}, &stubSender{}, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestStartStop(t *testing.T) {
	s := newScheduler(t, &stubLister{}, &stubSender{}, time.Now())
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
