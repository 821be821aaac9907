package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"foosball-tracker/internal/constants"
	"foosball-tracker/internal/domain"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// MatchWithParticipants is a match row joined with its participant
// snapshots.
type MatchWithParticipants struct {
	Match        domain.Match
	Participants []domain.MatchParticipant
}

// Record writes the match row and every participant snapshot in one
// transaction. The pre/post rating pairs land together with the match
// or not at all; there is no update path for them afterwards.
func (r *MatchRepository) Record(ctx context.Context, match *domain.Match, participants []domain.MatchParticipant) error {
	if match.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		match.ID = id
	}
	match.CreatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (id, season_id, format, team1_score, team2_score, played_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		match.ID, match.SeasonID, match.Format, match.Team1Score, match.Team2Score,
		match.PlayedAt, match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	for i := range participants {
		p := &participants[i]
		p.MatchID = match.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO match_participants (match_id, player_id, team, role, won, pre_match_rating, post_match_rating)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.MatchID, p.PlayerID, p.Team, p.Role, p.Won, p.PreMatchRating, p.PostMatchRating,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant %s: %w", p.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match: %w", err)
	}

	r.logger.Info().
		Str("match_id", match.ID).
		Str("season_id", match.SeasonID).
		Str("format", string(match.Format)).
		Int("participants", len(participants)).
		Msg("match recorded")
	return nil
}

func (r *MatchRepository) Get(ctx context.Context, id string) (*MatchWithParticipants, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, season_id, format, team1_score, team2_score, played_at, created_at
		FROM matches WHERE id = ?`, id)

	var m domain.Match
	err := row.Scan(&m.ID, &m.SeasonID, &m.Format, &m.Team1Score, &m.Team2Score, &m.PlayedAt, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	participants, err := r.participantsFor(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return &MatchWithParticipants{Match: m, Participants: participants}, nil
}

func (r *MatchRepository) ListBySeason(ctx context.Context, seasonID string, format domain.Format, limit int) ([]MatchWithParticipants, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, season_id, format, team1_score, team2_score, played_at, created_at
		FROM matches
		WHERE season_id = ? AND format = ?
		ORDER BY played_at DESC, created_at DESC
		LIMIT ?`, seasonID, format, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []MatchWithParticipants
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.SeasonID, &m.Format, &m.Team1Score, &m.Team2Score, &m.PlayedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, MatchWithParticipants{Match: m})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range matches {
		participants, err := r.participantsFor(ctx, matches[i].Match.ID)
		if err != nil {
			return nil, err
		}
		matches[i].Participants = participants
	}
	return matches, nil
}

func (r *MatchRepository) participantsFor(ctx context.Context, matchID string) ([]domain.MatchParticipant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, player_id, team, role, won, pre_match_rating, post_match_rating
		FROM match_participants WHERE match_id = ? ORDER BY team, role`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.MatchParticipant
	for rows.Next() {
		var p domain.MatchParticipant
		if err := rows.Scan(&p.MatchID, &p.PlayerID, &p.Team, &p.Role, &p.Won, &p.PreMatchRating, &p.PostMatchRating); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// PairCounts tallies, over the season's most recent matches, how often
// each unordered player pair appeared in the same match, whether as
// teammates or as opponents. Keys are ordered (smaller ID first).
func (r *MatchRepository) PairCounts(ctx context.Context, seasonID string) (map[[2]string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.player_id, b.player_id, COUNT(*)
		FROM match_participants a
		JOIN match_participants b ON a.match_id = b.match_id AND a.player_id < b.player_id
		WHERE a.match_id IN (
		    SELECT id FROM matches
		    WHERE season_id = ?
		    ORDER BY played_at DESC, created_at DESC
		    LIMIT ?
		)
		GROUP BY a.player_id, b.player_id`,
		seasonID, constants.RarityHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pair counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[[2]string]int)
	for rows.Next() {
		var a, b string
		var n int
		if err := rows.Scan(&a, &b, &n); err != nil {
			return nil, fmt.Errorf("failed to scan pair count: %w", err)
		}
		counts[[2]string{a, b}] = n
	}
	return counts, rows.Err()
}
