package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	goerrors "github.com/go-errors/errors"

	"github.com/d3ntaltech/calendrier/internal/auth"
	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/db"
	"github.com/d3ntaltech/calendrier/internal/log"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	loginTemplate    = template.Must(template.ParseFS(templateFS, "templates/login.tmpl"))
	calendarTemplate = template.Must(template.ParseFS(templateFS, "templates/calendar.tmpl"))
)

const sessionCookie = "calendrier_session"

type Server struct {
	store    *db.Store
	verifier *auth.CredentialVerifier
	sessions *auth.Sessions
	tagger   *calendar.Tagger
	loc      *time.Location
	now      func() time.Time

	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool
}

func NewServer(store *db.Store, verifier *auth.CredentialVerifier, sessions *auth.Sessions, tagger *calendar.Tagger, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	return &Server{
		store:    store,
		verifier: verifier,
		sessions: sessions,
		tagger:   tagger,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.loginPage)
	mux.HandleFunc("POST /{$}", s.login)
	mux.HandleFunc("GET /logout", s.logout)
	mux.HandleFunc("GET /health", s.health)

	mux.Handle("GET /calendar", s.requirePage(s.calendarPage))
	mux.Handle("GET /export/day", s.requirePage(s.exportDay))
	mux.Handle("GET /export/pdf", s.requirePage(s.exportPDF))
	mux.Handle("GET /export/ics", s.requirePage(s.exportICS))

	mux.Handle("GET /api/events/{id}", s.requireAPI(s.getEvent))
	mux.Handle("POST /api/events", s.requireAPI(s.addEvent))
	mux.Handle("POST /api/events/{id}", s.requireAPI(s.updateEvent))
	mux.Handle("DELETE /api/events/{id}", s.requireAPI(s.deleteEvent))
	return logRequests(mux)
}

type userKey struct{}

// currentUser returns the email attached by the session middleware.
func currentUser(ctx context.Context) string {
	user, _ := ctx.Value(userKey{}).(string)
	return user
}

func (s *Server) sessionUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	email, err := s.sessions.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return email, true
}

// requirePage redirects anonymous visitors to the login form.
func (s *Server) requirePage(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.sessionUser(r)
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

// requireAPI answers anonymous calls with 403.
func (s *Server) requireAPI(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.sessionUser(r)
		if !ok {
			writeJSON(w, http.StatusForbidden, apiResponse{Status: statusError, Message: "authentification requise"})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	})
}

func (s *Server) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// today is the current date in the configured zone, as a UTC midnight.
func (s *Server) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Event   any    `json:"event,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeStoreError maps repository errors onto API status codes.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *db.ValidationError
	switch {
	case errors.Is(err, db.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, apiResponse{Status: statusError, Message: "non autorisé"})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, apiResponse{Status: statusError, Message: validationErr.Message})
	case errors.Is(err, db.ErrNotFound):
		writeJSON(w, http.StatusNotFound, apiResponse{Status: statusError, Message: "événement introuvable"})
	default:
		logInternal(r, err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Status: statusError, Message: "erreur interne"})
	}
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	logInternal(r, err)
	http.Error(w, "erreur interne", http.StatusInternalServerError)
}

func logInternal(r *http.Request, err error) {
	log.Error("request failed", err, "method", r.Method, "path", r.URL.Path, "stack", goerrors.Wrap(err, 2).ErrorStack())
}
