package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/export"
	"github.com/d3ntaltech/calendrier/internal/log"
	"github.com/d3ntaltech/calendrier/internal/model"
)

func (s *Server) exportDay(w http.ResponseWriter, r *http.Request) {
	day := s.today()
	if value := strings.TrimSpace(r.URL.Query().Get("date")); value != "" {
		parsed, err := time.Parse(model.DateLayout, value)
		if err != nil {
			http.Error(w, fmt.Sprintf("date invalide %q", value), http.StatusBadRequest)
			return
		}
		day = parsed
	}

	events, err := s.store.ListEventsForDate(r.Context(), day)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeDownload(w, r, "text/csv; charset=utf-8", "evenements-"+day.Format(model.DateLayout)+".csv", func(out io.Writer) error {
		return export.WriteCSV(out, events)
	})
}

func (s *Server) exportPDF(w http.ResponseWriter, r *http.Request) {
	grid, events, ok := s.monthEvents(w, r)
	if !ok {
		return
	}

	writeDownload(w, r, "application/pdf", "recap-"+grid.YearMonth.String()+".pdf", func(out io.Writer) error {
		return export.WritePDF(out, "Récapitulatif "+grid.Title(), calendar.BuildRecap(events, s.tagger))
	})
}

func (s *Server) exportICS(w http.ResponseWriter, r *http.Request) {
	grid, events, ok := s.monthEvents(w, r)
	if !ok {
		return
	}

	writeDownload(w, r, "text/calendar; charset=utf-8", "calendrier-"+grid.YearMonth.String()+".ics", func(out io.Writer) error {
		return export.WriteICS(out, events, s.loc, s.now())
	})
}

func (s *Server) monthEvents(w http.ResponseWriter, r *http.Request) (calendar.Grid, []model.Event, bool) {
	today := s.today()
	year, month, err := monthFromQuery(r, today.Year(), int(today.Month()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return calendar.Grid{}, nil, false
	}
	grid, err := calendar.NewGrid(year, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return calendar.Grid{}, nil, false
	}
	events, err := s.store.ListEventsBetween(r.Context(), grid.First, grid.Last)
	if err != nil {
		writeInternalError(w, r, err)
		return calendar.Grid{}, nil, false
	}
	return grid, events, true
}

// writeDownload renders the whole file before sending headers, so a failed
// export answers 500 instead of an empty attachment.
func writeDownload(w http.ResponseWriter, r *http.Request, contentType, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeInternalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug("download interrupted", "path", r.URL.Path, "err", err)
	}
}
