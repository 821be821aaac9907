package server

import (
	"encoding/json"
	"net/http"
	"time"
)

type createSeasonRequest struct {
	GroupID  string    `json:"group_id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Active   bool      `json:"active"`
}

func (s *TrackerServer) createSeason(w http.ResponseWriter, r *http.Request) {
	var req createSeasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if req.GroupID == "" {
		s.badRequest(w, "group_id is required")
		return
	}

	season, err := s.seasonSvc.Create(r.Context(), req.GroupID, req.Name, req.StartsAt, req.EndsAt, req.Active)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, season)
}

func (s *TrackerServer) listSeasons(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group")
	if groupID == "" {
		s.badRequest(w, "group is required")
		return
	}

	seasons, err := s.seasonSvc.List(r.Context(), groupID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"seasons": seasons})
}

func (s *TrackerServer) activeSeason(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group")
	if groupID == "" {
		s.badRequest(w, "group is required")
		return
	}

	season, err := s.seasonSvc.Active(r.Context(), groupID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, season)
}
