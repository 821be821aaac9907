package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"foosball-tracker/internal/domain"
	"foosball-tracker/internal/engine"
	"foosball-tracker/internal/service"
)

// TrackerServer exposes the tracker as a JSON API under /api/v1.
type TrackerServer struct {
	playerSvc  *service.PlayerService
	matchSvc   *service.MatchService
	matchupSvc *service.MatchupService
	seasonSvc  *service.SeasonService
	logger     zerolog.Logger
}

func NewTrackerServer(
	playerSvc *service.PlayerService,
	matchSvc *service.MatchService,
	matchupSvc *service.MatchupService,
	seasonSvc *service.SeasonService,
	logger zerolog.Logger,
) *TrackerServer {
	return &TrackerServer{
		playerSvc:  playerSvc,
		matchSvc:   matchSvc,
		matchupSvc: matchupSvc,
		seasonSvc:  seasonSvc,
		logger:     logger,
	}
}

func (s *TrackerServer) Routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/players", s.createPlayer).Methods(http.MethodPost)
	api.HandleFunc("/players", s.listPlayers).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", s.getPlayer).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/history", s.playerHistory).Methods(http.MethodGet)

	api.HandleFunc("/matches", s.recordMatch).Methods(http.MethodPost)
	api.HandleFunc("/matches", s.listMatches).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", s.getMatch).Methods(http.MethodGet)

	api.HandleFunc("/matchups", s.generateMatchup).Methods(http.MethodPost)
	api.HandleFunc("/matchups/latest", s.latestMatchup).Methods(http.MethodGet)

	api.HandleFunc("/seasons", s.createSeason).Methods(http.MethodPost)
	api.HandleFunc("/seasons", s.listSeasons).Methods(http.MethodGet)
	api.HandleFunc("/seasons/active", s.activeSeason).Methods(http.MethodGet)

	return r
}

type createPlayerRequest struct {
	GroupID   string `json:"group_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (s *TrackerServer) createPlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if req.GroupID == "" || req.Name == "" {
		s.badRequest(w, "group_id and name are required")
		return
	}

	player, err := s.playerSvc.Create(r.Context(), req.GroupID, req.Name, req.AvatarURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, player)
}

func (s *TrackerServer) listPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groupID := q.Get("group")
	seasonID := q.Get("season")
	format := domain.Format(q.Get("format"))
	if format == "" {
		format = domain.FormatDoubles
	}

	if groupID == "" || seasonID == "" {
		s.badRequest(w, "group and season are required")
		return
	}

	players, err := s.playerSvc.ListScoped(r.Context(), groupID, seasonID, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"players": players})
}

func (s *TrackerServer) getPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.playerSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, player)
}

func (s *TrackerServer) playerHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seasonID := q.Get("season")
	format := domain.Format(q.Get("format"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	if seasonID == "" {
		s.badRequest(w, "season is required")
		return
	}

	entries, err := s.playerSvc.History(r.Context(), mux.Vars(r)["id"], seasonID, format, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

type recordMatchRequest struct {
	SeasonID string    `json:"season_id"`
	Format   string    `json:"format"`
	Team1    []string  `json:"team1"`
	Team2    []string  `json:"team2"`
	Score1   int       `json:"score1"`
	Score2   int       `json:"score2"`
	PlayedAt time.Time `json:"played_at"`
}

func (s *TrackerServer) recordMatch(w http.ResponseWriter, r *http.Request) {
	var req recordMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	match, err := s.matchSvc.RecordMatch(
		r.Context(),
		req.SeasonID,
		domain.Format(req.Format),
		service.TeamInput{PlayerIDs: req.Team1},
		service.TeamInput{PlayerIDs: req.Team2},
		req.Score1,
		req.Score2,
		req.PlayedAt,
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, match)
}

func (s *TrackerServer) listMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seasonID := q.Get("season")
	format := domain.Format(q.Get("format"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	if seasonID == "" {
		s.badRequest(w, "season is required")
		return
	}

	matches, err := s.matchSvc.ListBySeason(r.Context(), seasonID, format, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *TrackerServer) getMatch(w http.ResponseWriter, r *http.Request) {
	match, err := s.matchSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, match)
}

type generateMatchupRequest struct {
	SeasonID  string   `json:"season_id"`
	PlayerIDs []string `json:"player_ids"`
	Mode      string   `json:"mode"`
}

func (s *TrackerServer) generateMatchup(w http.ResponseWriter, r *http.Request) {
	var req generateMatchupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	mode := domain.MatchupMode(req.Mode)
	if mode == "" {
		mode = domain.ModeBalanced
	}

	matchup, err := s.matchupSvc.Generate(r.Context(), req.SeasonID, req.PlayerIDs, mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, matchup)
}

func (s *TrackerServer) latestMatchup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	seasonID := q.Get("season")
	mode := domain.MatchupMode(q.Get("mode"))
	if mode == "" {
		mode = domain.ModeBalanced
	}

	if seasonID == "" {
		s.badRequest(w, "season is required")
		return
	}

	matchup, err := s.matchupSvc.Latest(r.Context(), seasonID, mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, matchup)
}

func (s *TrackerServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *TrackerServer) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps service errors onto HTTP statuses: precondition
// violations are the caller's fault, missing rows are 404s, anything
// else is a 500.
func (s *TrackerServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case isNotFound(err):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidFormat,
		domain.ErrInvalidMode,
		domain.ErrInvalidScore,
		domain.ErrDrawScore,
		domain.ErrWrongTeamSize,
		domain.ErrDuplicatePlayer,
		engine.ErrInvalidPoolSize,
		engine.ErrMissingRating,
		engine.ErrDrawNotSupported,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	for _, target := range []error{
		domain.ErrPlayerNotFound,
		domain.ErrSeasonNotFound,
		domain.ErrMatchNotFound,
		domain.ErrMatchupNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
