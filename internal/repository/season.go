package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"foosball-tracker/internal/domain"
)

type SeasonRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSeasonRepository(sqlDB *sql.DB, logger zerolog.Logger) *SeasonRepository {
	return &SeasonRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *SeasonRepository) Create(ctx context.Context, season *domain.Season) error {
	if season.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		season.ID = id
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO seasons (id, group_id, name, starts_at, ends_at, active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		season.ID, season.GroupID, season.Name, season.StartsAt, season.EndsAt, season.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to insert season: %w", err)
	}

	r.logger.Debug().Str("season_id", season.ID).Str("group_id", season.GroupID).Msg("season created")
	return nil
}

func (r *SeasonRepository) Get(ctx context.Context, id string) (*domain.Season, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, name, starts_at, ends_at, active
		FROM seasons WHERE id = ?`, id)

	var s domain.Season
	err := row.Scan(&s.ID, &s.GroupID, &s.Name, &s.StartsAt, &s.EndsAt, &s.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSeasonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return &s, nil
}

// Active returns a group's currently active season.
func (r *SeasonRepository) Active(ctx context.Context, groupID string) (*domain.Season, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, name, starts_at, ends_at, active
		FROM seasons
		WHERE group_id = ? AND active = 1
		ORDER BY starts_at DESC
		LIMIT 1`, groupID)

	var s domain.Season
	err := row.Scan(&s.ID, &s.GroupID, &s.Name, &s.StartsAt, &s.EndsAt, &s.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSeasonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}
	return &s, nil
}

func (r *SeasonRepository) ListByGroup(ctx context.Context, groupID string) ([]domain.Season, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, group_id, name, starts_at, ends_at, active
		FROM seasons WHERE group_id = ? ORDER BY starts_at DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []domain.Season
	for rows.Next() {
		var s domain.Season
		if err := rows.Scan(&s.ID, &s.GroupID, &s.Name, &s.StartsAt, &s.EndsAt, &s.Active); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}
