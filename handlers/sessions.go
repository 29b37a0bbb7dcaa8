package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/interaction"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/internal/session"
	"github.com/SantiagoMartinezBonafine/urbanly-ba-subte-map/models"
)

// SessionStore defines the session operations used by SessionHandler
type SessionStore interface {
	Create() *session.Session
	Get(id string) (*session.Session, error)
}

// StationLookup resolves the station named in a select request
type StationLookup interface {
	Station(id int) (models.Station, bool)
}

// SessionHandler drives the interaction controller of each map client
type SessionHandler struct {
	store    SessionStore
	stations StationLookup
}

// NewSessionHandler creates a new handler with the given store and station lookup
func NewSessionHandler(store SessionStore, stations StationLookup) *SessionHandler {
	return &SessionHandler{store: store, stations: stations}
}

// SessionResponse is the JSON response for session endpoints
type SessionResponse struct {
	SessionID string                  `json:"sessionId"`
	CreatedAt time.Time               `json:"createdAt"`
	Detail    *interaction.DetailView `json:"detail"`
}

// SelectRequest is the body of POST /api/sessions/{sessionId}/select
type SelectRequest struct {
	StationID *int `json:"stationId"`
}

// CommandsResponse is the JSON response for GET /api/sessions/{sessionId}/commands
type CommandsResponse struct {
	Commands []session.Command `json:"commands"`
	Dropped  int               `json:"dropped"`
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.store.Create()
	writeJSON(w, http.StatusCreated, "", SessionResponse{
		SessionID: s.ID.String(),
		CreatedAt: s.CreatedAt,
	})
}

// GetSession handles GET /api/sessions/{sessionId}
// Returns the detail view currently open in the session, if any
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, "", sessionResponse(s, s.Current()))
}

// Select handles POST /api/sessions/{sessionId}/select
// Called when a station is clicked on the map or picked from search results
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", map[string]interface{}{
			"internal": err.Error(),
		})
		return
	}
	if req.StationID == nil {
		writeError(w, http.StatusBadRequest, "stationId is required", nil)
		return
	}

	station, found := h.stations.Station(*req.StationID)
	if !found {
		writeError(w, http.StatusNotFound, ErrStationNotFound.Error(), map[string]interface{}{
			"id": *req.StationID,
		})
		return
	}

	view, err := s.Select(station)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to select station", map[string]interface{}{
			"internal": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, "", sessionResponse(s, view))
}

// Next handles POST /api/sessions/{sessionId}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*session.Session).Next)
}

// Previous handles POST /api/sessions/{sessionId}/previous
func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*session.Session).Previous)
}

func (h *SessionHandler) navigate(w http.ResponseWriter, r *http.Request, step func(*session.Session) (*interaction.DetailView, error)) {
	s, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	view, err := step(s)
	switch {
	case errors.Is(err, interaction.ErrNoSelection), errors.Is(err, interaction.ErrNoNeighbor):
		writeError(w, http.StatusConflict, err.Error(), nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to select station", map[string]interface{}{
			"internal": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, "", sessionResponse(s, view))
}

// CloseDetail handles DELETE /api/sessions/{sessionId}/detail
func (h *SessionHandler) CloseDetail(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}
	s.Close()
	w.WriteHeader(http.StatusNoContent)
}

// GetCommands handles GET /api/sessions/{sessionId}/commands
// Returns and clears the render commands queued since the last poll
func (h *SessionHandler) GetCommands(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	commands, dropped := s.DrainCommands()
	writeJSON(w, http.StatusOK, "", CommandsResponse{
		Commands: commands,
		Dropped:  dropped,
	})
}

func (h *SessionHandler) sessionFromPath(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionId")
	s, err := h.store.Get(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error(), map[string]interface{}{
			"sessionId": id,
		})
		return nil, false
	}
	return s, true
}

func sessionResponse(s *session.Session, view *interaction.DetailView) SessionResponse {
	return SessionResponse{
		SessionID: s.ID.String(),
		CreatedAt: s.CreatedAt,
		Detail:    view,
	}
}
