package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"foosball-tracker/internal/constants"
	"foosball-tracker/internal/domain"
	"foosball-tracker/internal/repository"
)

type SeasonService struct {
	seasons *repository.SeasonRepository
	logger  zerolog.Logger
}

func NewSeasonService(seasons *repository.SeasonRepository, logger zerolog.Logger) *SeasonService {
	return &SeasonService{seasons: seasons, logger: logger}
}

func (s *SeasonService) Create(ctx context.Context, groupID, name string, startsAt, endsAt time.Time, active bool) (*domain.Season, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if name == "" {
		return nil, fmt.Errorf("season name is required")
	}
	if !endsAt.After(startsAt) {
		return nil, fmt.Errorf("season must end after it starts")
	}

	season := &domain.Season{
		GroupID:  groupID,
		Name:     name,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Active:   active,
	}
	if err := s.seasons.Create(ctx, season); err != nil {
		s.logger.Error().Err(err).Str("group_id", groupID).Msg("failed to create season")
		return nil, err
	}

	s.logger.Info().Str("season_id", season.ID).Str("name", name).Msg("season created")
	return season, nil
}

func (s *SeasonService) List(ctx context.Context, groupID string) ([]domain.Season, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.seasons.ListByGroup(ctx, groupID)
}

func (s *SeasonService) Active(ctx context.Context, groupID string) (*domain.Season, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.seasons.Active(ctx, groupID)
}
