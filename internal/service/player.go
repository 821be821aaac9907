package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"foosball-tracker/internal/config"
	"foosball-tracker/internal/constants"
	"foosball-tracker/internal/domain"
	"foosball-tracker/internal/repository"
)

type PlayerService struct {
	cfg         *config.Config
	players     *repository.PlayerRepository
	ratingHisto *repository.RatingHistoryRepository
	logger      zerolog.Logger
}

func NewPlayerService(
	cfg *config.Config,
	players *repository.PlayerRepository,
	ratingHisto *repository.RatingHistoryRepository,
	logger zerolog.Logger,
) *PlayerService {
	return &PlayerService{
		cfg:         cfg,
		players:     players,
		ratingHisto: ratingHisto,
		logger:      logger,
	}
}

func (s *PlayerService) Create(ctx context.Context, groupID, name, avatarURL string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if name == "" {
		return nil, fmt.Errorf("player name is required")
	}

	player := &domain.Player{
		GroupID:   groupID,
		Name:      name,
		AvatarURL: avatarURL,
	}
	if err := s.players.Create(ctx, player); err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID).Msg("failed to create player")
		return nil, err
	}

	s.logger.Info().Str("player_id", player.ID).Str("name", name).Msg("player created")
	return player, nil
}

func (s *PlayerService) Get(ctx context.Context, playerID string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.players.Get(ctx, playerID)
}

// ListScoped returns a group's players with ratings and tallies
// resolved to one season/format scope. Players with no matches in
// scope carry the configured default rating.
func (s *PlayerService) ListScoped(ctx context.Context, groupID, seasonID string, format domain.Format) ([]domain.ScopedPlayer, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if !format.Valid() {
		return nil, domain.ErrInvalidFormat
	}

	players, err := s.players.ListScoped(ctx, groupID, seasonID, format, s.cfg.DefaultRating)
	if err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID).Str("season_id", seasonID).Msg("failed to list scoped players")
		return nil, err
	}

	s.logger.Debug().
		Str("group_id", groupID).
		Str("season_id", seasonID).
		Str("format", string(format)).
		Int("count", len(players)).
		Msg("scoped players listed")
	return players, nil
}

// History returns a player's rating trajectory in one scope.
func (s *PlayerService) History(ctx context.Context, playerID, seasonID string, format domain.Format, limit int) ([]domain.RatingHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if !format.Valid() {
		return nil, domain.ErrInvalidFormat
	}
	if limit <= 0 {
		limit = 100
	}

	if _, err := s.players.Get(ctx, playerID); err != nil {
		return nil, err
	}

	return s.ratingHisto.ForPlayer(ctx, playerID, seasonID, format, limit)
}
