package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/d3ntaltech/calendrier/internal/calendar"
	sqlc "github.com/d3ntaltech/calendrier/internal/db/sqlc"
	"github.com/d3ntaltech/calendrier/internal/log"
	"github.com/d3ntaltech/calendrier/internal/model"
)

// Scope decides which events an actor may update or delete.
type Scope int

const (
	ScopeOwner Scope = iota
	ScopeShared
)

// Hook observes committed changes. It runs after the transaction commits and
// cannot affect the outcome of the mutation.
type Hook func(ctx context.Context, change model.Change)

type Store struct {
	DB      *sql.DB
	Queries *sqlc.Queries

	scope Scope
	hooks []Hook
	now   func() time.Time
}

type EventInput struct {
	Title         string
	Date          string
	Time          string
	Category      string
	Collaborators []string
	Priority      string
	Notes         string
	// Attachments replaces the stored handles when non-nil.
	Attachments []string
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Queries: sqlc.New(db), now: time.Now}
}

func (s *Store) SetScope(scope Scope) {
	s.scope = scope
}

// OnChange registers a hook. Hooks must be registered before the store is
// shared between goroutines.
func (s *Store) OnChange(hook Hook) {
	s.hooks = append(s.hooks, hook)
}

func (s *Store) AddEvent(ctx context.Context, owner string, input EventInput) (model.Event, error) {
	actor, err := normalizeActor(owner)
	if err != nil {
		return model.Event{}, err
	}
	fields, err := validateInput(input)
	if err != nil {
		return model.Event{}, err
	}

	var created model.Event
	err = s.inTx(ctx, func(q *sqlc.Queries) error {
		id, err := q.CreateEvent(ctx, sqlc.CreateEventParams{
			UserEmail:     actor,
			Title:         fields.Title,
			EventDate:     fields.Date,
			EventTime:     fields.Time,
			EventType:     fields.Category,
			Collaborators: strings.Join(fields.Collaborators, ", "),
			Priority:      fields.Priority,
			Notes:         fields.Notes,
			Files:         encodeAttachments(fields.Attachments),
		})
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}

		row, err := q.GetEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("reload event %d: %w", id, err)
		}
		created = mapEvent(row)
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	s.publish(ctx, model.ActionCreated, created, actor)
	return created, nil
}

func (s *Store) UpdateEvent(ctx context.Context, eventID int64, owner string, input EventInput) (model.Event, error) {
	actor, err := normalizeActor(owner)
	if err != nil {
		return model.Event{}, err
	}
	fields, err := validateInput(input)
	if err != nil {
		return model.Event{}, err
	}

	var updated model.Event
	err = s.inTx(ctx, func(q *sqlc.Queries) error {
		before, err := s.getForActor(ctx, q, eventID, actor)
		if err != nil {
			return err
		}

		files := before.Files
		if fields.Attachments != nil {
			files = encodeAttachments(fields.Attachments)
		}

		if _, err := q.UpdateEvent(ctx, sqlc.UpdateEventParams{
			Title:         fields.Title,
			EventDate:     fields.Date,
			EventTime:     fields.Time,
			EventType:     fields.Category,
			Collaborators: strings.Join(fields.Collaborators, ", "),
			Priority:      fields.Priority,
			Notes:         fields.Notes,
			Files:         files,
			ID:            eventID,
		}); err != nil {
			return fmt.Errorf("update event %d: %w", eventID, err)
		}

		row, err := q.GetEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("reload event %d: %w", eventID, err)
		}
		updated = mapEvent(row)
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	s.publish(ctx, model.ActionUpdated, updated, actor)
	return updated, nil
}

// DeleteEvent removes the event and returns the row as it was before deletion.
func (s *Store) DeleteEvent(ctx context.Context, eventID int64, owner string) (model.Event, error) {
	actor, err := normalizeActor(owner)
	if err != nil {
		return model.Event{}, err
	}

	var deleted model.Event
	err = s.inTx(ctx, func(q *sqlc.Queries) error {
		before, err := s.getForActor(ctx, q, eventID, actor)
		if err != nil {
			return err
		}
		if _, err := q.DeleteEvent(ctx, eventID); err != nil {
			return fmt.Errorf("delete event %d: %w", eventID, err)
		}
		deleted = mapEvent(before)
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	s.publish(ctx, model.ActionDeleted, deleted, actor)
	return deleted, nil
}

func (s *Store) GetEvent(ctx context.Context, eventID int64) (model.Event, error) {
	row, err := s.Queries.GetEvent(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	return mapEvent(row), nil
}

// ListEventsForMonth returns the month's events ordered by date, time and
// title, with all-day events first on each date.
func (s *Store) ListEventsForMonth(ctx context.Context, year, month int) ([]model.Event, error) {
	grid, err := calendar.NewGrid(year, month)
	if err != nil {
		return nil, err
	}
	return s.ListEventsBetween(ctx, grid.First, grid.Last)
}

func (s *Store) ListEventsForDate(ctx context.Context, day time.Time) ([]model.Event, error) {
	return s.ListEventsBetween(ctx, day, day)
}

// ListEventsBetween returns events whose date lies in [from, to], inclusive.
func (s *Store) ListEventsBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	rows, err := s.Queries.ListEventsBetween(ctx, sqlc.ListEventsBetweenParams{
		FromDate: from.Format(model.DateLayout),
		ToDate:   to.Format(model.DateLayout),
	})
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, mapEvent(row))
	}
	return events, nil
}

func (s *Store) getForActor(ctx context.Context, q *sqlc.Queries, eventID int64, actor string) (sqlc.Event, error) {
	row, err := q.GetEventForActor(ctx, sqlc.GetEventForActorParams{
		ID:     eventID,
		Shared: s.scope == ScopeShared,
		Actor:  actor,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return sqlc.Event{}, ErrNotFound
	}
	if err != nil {
		return sqlc.Event{}, fmt.Errorf("load event %d: %w", eventID, err)
	}
	return row, nil
}

func (s *Store) inTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(s.Queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) publish(ctx context.Context, action model.Action, event model.Event, actor string) {
	change := model.Change{Action: action, Event: event, Actor: actor, At: s.now()}
	for _, hook := range s.hooks {
		runHook(ctx, hook, change)
	}
}

func runHook(ctx context.Context, hook Hook, change model.Change) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("change hook panicked", fmt.Errorf("%v", r), "action", change.Action, "event_id", change.Event.ID)
		}
	}()
	hook(ctx, change)
}

func normalizeActor(owner string) (string, error) {
	actor := strings.ToLower(strings.TrimSpace(owner))
	if actor == "" {
		return "", ErrUnauthorized
	}
	return actor, nil
}

func validateInput(input EventInput) (EventInput, error) {
	fields := EventInput{
		Title:         strings.TrimSpace(input.Title),
		Category:      strings.TrimSpace(input.Category),
		Collaborators: model.NormalizeCollaborators(input.Collaborators),
		Notes:         strings.TrimSpace(input.Notes),
	}

	if fields.Title == "" {
		return EventInput{}, &ValidationError{Field: "title", Message: "le titre est obligatoire"}
	}

	date := strings.TrimSpace(input.Date)
	if date == "" {
		return EventInput{}, &ValidationError{Field: "date", Message: "la date est obligatoire"}
	}
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return EventInput{}, &ValidationError{Field: "date", Message: fmt.Sprintf("date invalide %q, format attendu AAAA-MM-JJ", date)}
	}
	fields.Date = day.Format(model.DateLayout)

	clock := strings.TrimSpace(input.Time)
	switch {
	case clock == "":
		return EventInput{}, &ValidationError{Field: "time", Message: "l'heure est obligatoire"}
	case strings.EqualFold(clock, model.AllDay):
		fields.Time = model.AllDay
	default:
		parsed, err := time.Parse(model.TimeLayout, clock)
		if err != nil {
			return EventInput{}, &ValidationError{Field: "time", Message: fmt.Sprintf("heure invalide %q, format attendu HH:MM", clock)}
		}
		fields.Time = parsed.Format(model.TimeLayout)
	}

	if fields.Category == "" {
		return EventInput{}, &ValidationError{Field: "category", Message: "le type est obligatoire"}
	}

	priority, ok := model.CanonicalPriority(input.Priority)
	if !ok {
		return EventInput{}, &ValidationError{
			Field:   "priority",
			Message: fmt.Sprintf("priorité inconnue %q, valeurs possibles : %s", input.Priority, strings.Join(model.Priorities, ", ")),
		}
	}
	fields.Priority = priority

	if input.Attachments != nil {
		fields.Attachments = make([]string, 0, len(input.Attachments))
		for _, handle := range input.Attachments {
			if trimmed := strings.TrimSpace(handle); trimmed != "" {
				fields.Attachments = append(fields.Attachments, trimmed)
			}
		}
	}

	return fields, nil
}

func mapEvent(row sqlc.Event) model.Event {
	return model.Event{
		ID:            row.ID,
		Owner:         row.UserEmail,
		Title:         row.Title,
		Date:          row.EventDate,
		Time:          row.EventTime,
		Category:      row.EventType,
		Collaborators: model.SplitCollaborators(row.Collaborators),
		Priority:      row.Priority,
		Notes:         row.Notes,
		Attachments:   decodeAttachments(row.Files),
		CreatedAt:     row.CreatedAt,
	}
}

func encodeAttachments(handles []string) string {
	if len(handles) == 0 {
		return "[]"
	}
	data, err := json.Marshal(handles)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeAttachments tolerates the comma-separated format of early databases.
func decodeAttachments(value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return []string{}
	}
	var handles []string
	if err := json.Unmarshal([]byte(trimmed), &handles); err == nil {
		if handles == nil {
			return []string{}
		}
		return handles
	}
	handles = []string{}
	for _, part := range strings.Split(trimmed, ",") {
		if p := strings.TrimSpace(part); p != "" {
			handles = append(handles, p)
		}
	}
	return handles
}
