package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"foosball-tracker/internal/config"
	"foosball-tracker/internal/constants"
	"foosball-tracker/internal/domain"
	"foosball-tracker/internal/engine"
	"foosball-tracker/internal/repository"
)

type MatchService struct {
	cfg     *config.Config
	matches *repository.MatchRepository
	players *repository.PlayerRepository
	seasons *repository.SeasonRepository
	logger  zerolog.Logger
}

func NewMatchService(
	cfg *config.Config,
	matches *repository.MatchRepository,
	players *repository.PlayerRepository,
	seasons *repository.SeasonRepository,
	logger zerolog.Logger,
) *MatchService {
	return &MatchService{
		cfg:     cfg,
		matches: matches,
		players: players,
		seasons: seasons,
		logger:  logger,
	}
}

// TeamInput names one side of a match to record. Players are listed
// attacker first; in singles the lone player is recorded as attacker.
type TeamInput struct {
	PlayerIDs []string
}

// RecordMatch validates a finished match, recomputes every
// participant's rating in the match's scope, and persists the match
// together with the pre/post snapshots in a single transaction.
//
// Draws are rejected here, before the rating engine is ever invoked:
// the update rule has no defined behavior for equal scores.
func (s *MatchService) RecordMatch(
	ctx context.Context,
	seasonID string,
	format domain.Format,
	team1, team2 TeamInput,
	score1, score2 int,
	playedAt time.Time,
) (*repository.MatchWithParticipants, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if !format.Valid() {
		return nil, domain.ErrInvalidFormat
	}
	if score1 < 0 || score2 < 0 {
		return nil, domain.ErrInvalidScore
	}
	if score1 == score2 {
		return nil, domain.ErrDrawScore
	}

	size := format.TeamSize()
	if len(team1.PlayerIDs) != size || len(team2.PlayerIDs) != size {
		return nil, fmt.Errorf("%w: want %d per team", domain.ErrWrongTeamSize, size)
	}

	if _, err := s.seasons.Get(ctx, seasonID); err != nil {
		return nil, err
	}

	participants1, err := s.resolveTeam(ctx, team1, seasonID, format)
	if err != nil {
		return nil, err
	}
	participants2, err := s.resolveTeam(ctx, team2, seasonID, format)
	if err != nil {
		return nil, err
	}

	results, err := engine.UpdateRatings(format, participants1, participants2, score1, score2)
	if err != nil {
		return nil, fmt.Errorf("rating update failed: %w", err)
	}
	resultFor := make(map[string]engine.RatingResult, len(results))
	for _, r := range results {
		resultFor[r.PlayerID] = r
	}

	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	match := &domain.Match{
		SeasonID:   seasonID,
		Format:     format,
		Team1Score: score1,
		Team2Score: score2,
		PlayedAt:   playedAt,
	}

	team1Won := score1 > score2
	rows := make([]domain.MatchParticipant, 0, 2*size)
	rows = append(rows, participantRows(team1, 1, team1Won, resultFor)...)
	rows = append(rows, participantRows(team2, 2, !team1Won, resultFor)...)

	if err := s.matches.Record(ctx, match, rows); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("match_id", match.ID).
		Str("season_id", seasonID).
		Str("format", string(format)).
		Int("score1", score1).
		Int("score2", score2).
		Msg("match recorded with rating snapshots")

	return s.matches.Get(ctx, match.ID)
}

func (s *MatchService) resolveTeam(ctx context.Context, team TeamInput, seasonID string, format domain.Format) ([]engine.Participant, error) {
	participants := make([]engine.Participant, 0, len(team.PlayerIDs))
	for _, id := range team.PlayerIDs {
		rating, err := s.players.ScopedRating(ctx, id, seasonID, format, s.cfg.DefaultRating)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve rating for player %s: %w", id, err)
		}
		participants = append(participants, engine.Participant{PlayerID: id, Rating: rating})
	}
	return participants, nil
}

// participantRows maps a team input onto snapshot rows. The first
// listed player is the attacker, the second (doubles only) the
// defender.
func participantRows(team TeamInput, teamNo int, won bool, results map[string]engine.RatingResult) []domain.MatchParticipant {
	roles := []domain.Role{domain.RoleAttacker, domain.RoleDefender}

	rows := make([]domain.MatchParticipant, 0, len(team.PlayerIDs))
	for i, id := range team.PlayerIDs {
		r := results[id]
		rows = append(rows, domain.MatchParticipant{
			PlayerID:        id,
			Team:            teamNo,
			Role:            roles[i],
			Won:             won,
			PreMatchRating:  r.PreMatchRating,
			PostMatchRating: r.PostMatchRating,
		})
	}
	return rows
}

func (s *MatchService) Get(ctx context.Context, matchID string) (*repository.MatchWithParticipants, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.matches.Get(ctx, matchID)
}

func (s *MatchService) ListBySeason(ctx context.Context, seasonID string, format domain.Format, limit int) ([]repository.MatchWithParticipants, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if !format.Valid() {
		return nil, domain.ErrInvalidFormat
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	return s.matches.ListBySeason(ctx, seasonID, format, limit)
}
