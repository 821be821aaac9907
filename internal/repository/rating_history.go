package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"foosball-tracker/internal/domain"
)

type RatingHistoryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRatingHistoryRepository(sqlDB *sql.DB, logger zerolog.Logger) *RatingHistoryRepository {
	return &RatingHistoryRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// ForPlayer returns a player's rating trajectory in one scope, oldest
// first, read straight from the participant snapshots. No replay of
// the match log is ever needed.
func (r *RatingHistoryRepository) ForPlayer(ctx context.Context, playerID, seasonID string, format domain.Format, limit int) ([]domain.RatingHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mp.match_id, mp.player_id, m.format, mp.pre_match_rating, mp.post_match_rating, m.played_at
		FROM match_participants mp
		JOIN matches m ON m.id = mp.match_id
		WHERE mp.player_id = ? AND m.season_id = ? AND m.format = ?
		ORDER BY m.played_at ASC, m.created_at ASC
		LIMIT ?`, playerID, seasonID, format, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var entries []domain.RatingHistoryEntry
	for rows.Next() {
		var e domain.RatingHistoryEntry
		if err := rows.Scan(&e.MatchID, &e.PlayerID, &e.Format, &e.PreMatchRating, &e.PostMatchRating, &e.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RoleStats aggregates per-role games and wins for every player in a
// scope. Only doubles matches carry meaningful role data.
func (r *RatingHistoryRepository) RoleStats(ctx context.Context, seasonID string) (map[string]*domain.RoleStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mp.player_id, mp.role, COUNT(*), SUM(mp.won)
		FROM match_participants mp
		JOIN matches m ON m.id = mp.match_id
		WHERE m.season_id = ? AND m.format = ?
		GROUP BY mp.player_id, mp.role`,
		seasonID, domain.FormatDoubles)
	if err != nil {
		return nil, fmt.Errorf("failed to query role stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*domain.RoleStats)
	for rows.Next() {
		var playerID string
		var role domain.Role
		var games, wins int
		if err := rows.Scan(&playerID, &role, &games, &wins); err != nil {
			return nil, fmt.Errorf("failed to scan role stats: %w", err)
		}

		s, ok := stats[playerID]
		if !ok {
			s = &domain.RoleStats{PlayerID: playerID}
			stats[playerID] = s
		}
		if role == domain.RoleAttacker {
			s.AttackerGames = games
			s.AttackerWins = wins
		} else {
			s.DefenderGames = games
			s.DefenderWins = wins
		}
	}
	return stats, rows.Err()
}
