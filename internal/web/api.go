package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/d3ntaltech/calendrier/internal/db"
	"github.com/d3ntaltech/calendrier/internal/log"
	"github.com/d3ntaltech/calendrier/internal/model"
)

const maxBodyBytes = 1 << 20

type eventRequest struct {
	Title         string   `json:"title"`
	Date          string   `json:"event_date"`
	Time          string   `json:"event_time"`
	Category      string   `json:"event_type"`
	Collaborators string   `json:"collaborators"`
	Priority      string   `json:"priority"`
	Notes         string   `json:"notes"`
	Attachments   []string `json:"attachments"`
}

func (req eventRequest) input() db.EventInput {
	return db.EventInput{
		Title:         req.Title,
		Date:          req.Date,
		Time:          req.Time,
		Category:      req.Category,
		Collaborators: model.SplitCollaborators(req.Collaborators),
		Priority:      req.Priority,
		Notes:         req.Notes,
		Attachments:   req.Attachments,
	}
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	event, err := s.store.GetEvent(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Status: statusSuccess, Event: event})
}

func (s *Server) addEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	event, err := s.store.AddEvent(r.Context(), currentUser(r.Context()), req.input())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	log.Info("event created", "event_id", event.ID, "actor", event.Owner)
	writeJSON(w, http.StatusOK, apiResponse{Status: statusSuccess, Event: event})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	req, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	actor := currentUser(r.Context())
	event, err := s.store.UpdateEvent(r.Context(), id, actor, req.input())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	log.Info("event updated", "event_id", event.ID, "actor", actor)
	writeJSON(w, http.StatusOK, apiResponse{Status: statusSuccess, Event: event})
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	actor := currentUser(r.Context())
	event, err := s.store.DeleteEvent(r.Context(), id, actor)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	log.Info("event deleted", "event_id", event.ID, "actor", actor)
	writeJSON(w, http.StatusOK, apiResponse{Status: statusSuccess, Event: event})
}

func eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, apiResponse{Status: statusError, Message: "identifiant invalide"})
		return 0, false
	}
	return id, true
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (eventRequest, bool) {
	var req eventRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		message := "corps JSON invalide"
		if errors.Is(err, io.EOF) {
			message = "corps JSON manquant"
		}
		writeJSON(w, http.StatusBadRequest, apiResponse{Status: statusError, Message: message})
		return eventRequest{}, false
	}
	return req, true
}
