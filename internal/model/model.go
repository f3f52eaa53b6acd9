package model

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// AllDay is stored in place of a time-of-day for events without one.
	AllDay = "all-day"
)

type Event struct {
	ID            int64     `json:"id"`
	Owner         string    `json:"owner"`
	Title         string    `json:"title"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Category      string    `json:"category"`
	Collaborators []string  `json:"collaborators"`
	Priority      string    `json:"priority"`
	Notes         string    `json:"notes"`
	Attachments   []string  `json:"attachments"`
	CreatedAt     time.Time `json:"created_at"`
}

func (e Event) IsAllDay() bool {
	return e.Time == AllDay
}

// Day parses Date. Events loaded from the store always hold a valid date.
func (e Event) Day() time.Time {
	day, _ := time.Parse(DateLayout, e.Date)
	return day
}

func (e Event) CollaboratorList() string {
	return strings.Join(e.Collaborators, ", ")
}

func (e Event) DisplayTime() string {
	if e.IsAllDay() {
		return "Journée"
	}
	return e.Time
}

type AuthorizedUser struct {
	Email     string    `json:"email"`
	Hash      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change describes a committed mutation of one event.
type Change struct {
	Action Action
	Event  Event
	Actor  string
	At     time.Time
}

const DefaultPriority = "Normal"

var Priorities = []string{"Basse", "Normal", "Haute", "Urgent"}

// CanonicalPriority maps a case-insensitive priority to its stored spelling.
// An empty value maps to DefaultPriority.
func CanonicalPriority(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultPriority, true
	}
	for _, p := range Priorities {
		if strings.EqualFold(p, trimmed) {
			return p, true
		}
	}
	return "", false
}

// SplitCollaborators parses a comma- or semicolon-separated list of names,
// dropping blanks and case-insensitive duplicates.
func SplitCollaborators(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	return NormalizeCollaborators(parts)
}

func NormalizeCollaborators(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
