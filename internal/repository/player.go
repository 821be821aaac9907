package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"foosball-tracker/internal/domain"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *PlayerRepository) Create(ctx context.Context, player *domain.Player) error {
	if player.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		player.ID = id
	}

	now := time.Now()
	player.CreatedAt = now
	player.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (id, group_id, name, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		player.ID, player.GroupID, player.Name, player.AvatarURL, player.CreatedAt, player.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}

	r.logger.Debug().Str("player_id", player.ID).Str("group_id", player.GroupID).Msg("player created")
	return nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, name, avatar_url, created_at, updated_at
		FROM players WHERE id = ?`, id)

	var p domain.Player
	err := row.Scan(&p.ID, &p.GroupID, &p.Name, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

func (r *PlayerRepository) ListByGroup(ctx context.Context, groupID string) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, group_id, name, avatar_url, created_at, updated_at
		FROM players WHERE group_id = ? ORDER BY name`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ListScoped returns a group's players with their standing resolved to
// one rating scope. The current rating is the post-match snapshot of
// the player's latest match in scope; players without matches get
// defaultRating.
func (r *PlayerRepository) ListScoped(ctx context.Context, groupID, seasonID string, format domain.Format, defaultRating int) ([]domain.ScopedPlayer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.group_id, p.name, p.avatar_url, p.created_at, p.updated_at,
		       COALESCE((
		           SELECT mp.post_match_rating
		           FROM match_participants mp
		           JOIN matches m ON m.id = mp.match_id
		           WHERE mp.player_id = p.id AND m.season_id = ? AND m.format = ?
		           ORDER BY m.played_at DESC, m.created_at DESC
		           LIMIT 1
		       ), ?) AS rating,
		       (
		           SELECT COUNT(*)
		           FROM match_participants mp
		           JOIN matches m ON m.id = mp.match_id
		           WHERE mp.player_id = p.id AND m.season_id = ? AND m.format = ?
		       ) AS matches,
		       (
		           SELECT COUNT(*)
		           FROM match_participants mp
		           JOIN matches m ON m.id = mp.match_id
		           WHERE mp.player_id = p.id AND m.season_id = ? AND m.format = ? AND mp.won = 1
		       ) AS wins
		FROM players p
		WHERE p.group_id = ?
		ORDER BY rating DESC, p.name`,
		seasonID, format, defaultRating,
		seasonID, format,
		seasonID, format,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scoped players: %w", err)
	}
	defer rows.Close()

	var players []domain.ScopedPlayer
	for rows.Next() {
		var p domain.ScopedPlayer
		err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt,
			&p.Rating, &p.Matches, &p.Wins)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scoped player: %w", err)
		}
		p.Losses = p.Matches - p.Wins
		players = append(players, p)
	}
	return players, rows.Err()
}

// ScopedRating resolves one player's current rating inside a scope,
// falling back to defaultRating for a player unseen in that scope. The
// player must exist.
func (r *PlayerRepository) ScopedRating(ctx context.Context, playerID, seasonID string, format domain.Format, defaultRating int) (int, error) {
	if _, err := r.Get(ctx, playerID); err != nil {
		return 0, err
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT mp.post_match_rating
		FROM match_participants mp
		JOIN matches m ON m.id = mp.match_id
		WHERE mp.player_id = ? AND m.season_id = ? AND m.format = ?
		ORDER BY m.played_at DESC, m.created_at DESC
		LIMIT 1`, playerID, seasonID, format)

	var rating int
	err := row.Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultRating, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve scoped rating: %w", err)
	}
	return rating, nil
}
