package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/db"
	"github.com/d3ntaltech/calendrier/internal/log"
	"github.com/d3ntaltech/calendrier/internal/model"
)

const loginFailed = "Email ou mot de passe incorrect."

type loginData struct {
	Email string
	Error string
}

type calendarData struct {
	User       string
	View       calendar.MonthView
	Priorities []string
	Weekdays   []string
}

var weekdayHeaders = []string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, http.StatusOK, loginData{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, http.StatusBadRequest, loginData{Error: loginFailed})
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")

	user, err := s.store.Authenticate(r.Context(), s.verifier, email, password)
	if errors.Is(err, db.ErrInvalidCredentials) {
		log.Info("login rejected", "email", email)
		s.renderLogin(w, http.StatusUnauthorized, loginData{Email: email, Error: loginFailed})
		return
	}
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	token, err := s.sessions.Issue(user.Email)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	s.setSession(w, token)
	log.Info("login", "email", user.Email)
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) calendarPage(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	year, month, err := monthFromQuery(r, today.Year(), int(today.Month()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	grid, err := calendar.NewGrid(year, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.store.ListEventsForMonth(r.Context(), year, month)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	data := calendarData{
		User:       currentUser(r.Context()),
		View:       calendar.BuildMonthView(grid, events, s.tagger, today),
		Priorities: model.Priorities,
		Weekdays:   weekdayHeaders,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := calendarTemplate.Execute(w, data); err != nil {
		log.Error("render calendar", err)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, data loginData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := loginTemplate.Execute(w, data); err != nil {
		log.Error("render login", err)
	}
}

// monthFromQuery reads year and month, falling back to the given defaults
// when a parameter is absent.
func monthFromQuery(r *http.Request, defaultYear, defaultMonth int) (int, int, error) {
	year, month := defaultYear, defaultMonth
	query := r.URL.Query()
	if value := strings.TrimSpace(query.Get("year")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, 0, calendar.ErrInvalidCalendarParameters
		}
		year = parsed
	}
	if value := strings.TrimSpace(query.Get("month")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, 0, calendar.ErrInvalidCalendarParameters
		}
		month = parsed
	}
	return year, month, nil
}
