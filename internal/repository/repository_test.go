package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foosball-tracker/internal/database"
	"foosball-tracker/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// A second connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, zerolog.Nop()))
	return db
}

func seedPlayer(t *testing.T, repo *PlayerRepository, name string) *domain.Player {
	t.Helper()
	p := &domain.Player{GroupID: "g1", Name: name}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func seedSeason(t *testing.T, repo *SeasonRepository) *domain.Season {
	t.Helper()
	s := &domain.Season{
		GroupID:  "g1",
		Name:     "Spring",
		StartsAt: time.Now().AddDate(0, -1, 0),
		EndsAt:   time.Now().AddDate(0, 2, 0),
		Active:   true,
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestPlayerRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlayerRepository(db, zerolog.Nop())
	ctx := context.Background()

	p := seedPlayer(t, repo, "Alice")
	require.NotEmpty(t, p.ID)

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "g1", got.GroupID)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestPlayerRepository_ScopedRatingDefaults(t *testing.T) {
	db := newTestDB(t)
	players := NewPlayerRepository(db, zerolog.Nop())
	seasons := NewSeasonRepository(db, zerolog.Nop())
	ctx := context.Background()

	p := seedPlayer(t, players, "Alice")
	season := seedSeason(t, seasons)

	// No matches in scope: the configured default applies.
	rating, err := players.ScopedRating(ctx, p.ID, season.ID, domain.FormatDoubles, 1200)
	require.NoError(t, err)
	assert.Equal(t, 1200, rating)

	// Unknown player is a hard error, never a default.
	_, err = players.ScopedRating(ctx, "missing", season.ID, domain.FormatDoubles, 1200)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestMatchRepository_RecordAndResolve(t *testing.T) {
	db := newTestDB(t)
	players := NewPlayerRepository(db, zerolog.Nop())
	seasons := NewSeasonRepository(db, zerolog.Nop())
	matches := NewMatchRepository(db, zerolog.Nop())
	ctx := context.Background()

	season := seedSeason(t, seasons)
	a := seedPlayer(t, players, "Alice")
	b := seedPlayer(t, players, "Bob")

	match := &domain.Match{
		SeasonID:   season.ID,
		Format:     domain.FormatSingles,
		Team1Score: 10,
		Team2Score: 7,
		PlayedAt:   time.Now(),
	}
	rows := []domain.MatchParticipant{
		{PlayerID: a.ID, Team: 1, Role: domain.RoleAttacker, Won: true, PreMatchRating: 1200, PostMatchRating: 1218},
		{PlayerID: b.ID, Team: 2, Role: domain.RoleAttacker, Won: false, PreMatchRating: 1200, PostMatchRating: 1185},
	}
	require.NoError(t, matches.Record(ctx, match, rows))
	require.NotEmpty(t, match.ID)

	got, err := matches.Get(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Match.Team1Score)
	require.Len(t, got.Participants, 2)

	// The snapshot is now the scope's current rating.
	rating, err := players.ScopedRating(ctx, a.ID, season.ID, domain.FormatSingles, 1200)
	require.NoError(t, err)
	assert.Equal(t, 1218, rating)

	// A different scope is untouched.
	rating, err = players.ScopedRating(ctx, a.ID, season.ID, domain.FormatDoubles, 1200)
	require.NoError(t, err)
	assert.Equal(t, 1200, rating)
}

func TestPlayerRepository_ListScopedTallies(t *testing.T) {
	db := newTestDB(t)
	players := NewPlayerRepository(db, zerolog.Nop())
	seasons := NewSeasonRepository(db, zerolog.Nop())
	matches := NewMatchRepository(db, zerolog.Nop())
	ctx := context.Background()

	season := seedSeason(t, seasons)
	a := seedPlayer(t, players, "Alice")
	b := seedPlayer(t, players, "Bob")

	for i := 0; i < 3; i++ {
		won := i < 2
		post := 1210 + i*10
		match := &domain.Match{
			SeasonID:   season.ID,
			Format:     domain.FormatSingles,
			Team1Score: 10,
			Team2Score: 5,
			PlayedAt:   time.Now().Add(time.Duration(i) * time.Minute),
		}
		if !won {
			match.Team1Score, match.Team2Score = 5, 10
		}
		rows := []domain.MatchParticipant{
			{PlayerID: a.ID, Team: 1, Role: domain.RoleAttacker, Won: won, PreMatchRating: 1200, PostMatchRating: post},
			{PlayerID: b.ID, Team: 2, Role: domain.RoleAttacker, Won: !won, PreMatchRating: 1200, PostMatchRating: 1200},
		}
		require.NoError(t, matches.Record(ctx, match, rows))
	}

	scoped, err := players.ListScoped(ctx, "g1", season.ID, domain.FormatSingles, 1200)
	require.NoError(t, err)
	require.Len(t, scoped, 2)

	byName := map[string]domain.ScopedPlayer{}
	for _, p := range scoped {
		byName[p.Name] = p
	}

	alice := byName["Alice"]
	assert.Equal(t, 3, alice.Matches)
	assert.Equal(t, 2, alice.Wins)
	assert.Equal(t, 1, alice.Losses)
	assert.Equal(t, 1230, alice.Rating, "latest snapshot wins")
}

func TestMatchRepository_PairCounts(t *testing.T) {
	db := newTestDB(t)
	players := NewPlayerRepository(db, zerolog.Nop())
	seasons := NewSeasonRepository(db, zerolog.Nop())
	matches := NewMatchRepository(db, zerolog.Nop())
	ctx := context.Background()

	season := seedSeason(t, seasons)
	ids := make([]string, 4)
	for i, name := range []string{"A", "B", "C", "D"} {
		ids[i] = seedPlayer(t, players, name).ID
	}

	// Two doubles matches with identical teams: every pair co-occurs
	// twice, teammates and opponents alike.
	for i := 0; i < 2; i++ {
		match := &domain.Match{
			SeasonID:   season.ID,
			Format:     domain.FormatDoubles,
			Team1Score: 10,
			Team2Score: 8,
			PlayedAt:   time.Now().Add(time.Duration(i) * time.Hour),
		}
		rows := []domain.MatchParticipant{
			{PlayerID: ids[0], Team: 1, Role: domain.RoleAttacker, Won: true, PreMatchRating: 1200, PostMatchRating: 1210},
			{PlayerID: ids[1], Team: 1, Role: domain.RoleDefender, Won: true, PreMatchRating: 1200, PostMatchRating: 1210},
			{PlayerID: ids[2], Team: 2, Role: domain.RoleAttacker, Won: false, PreMatchRating: 1200, PostMatchRating: 1190},
			{PlayerID: ids[3], Team: 2, Role: domain.RoleDefender, Won: false, PreMatchRating: 1200, PostMatchRating: 1190},
		}
		require.NoError(t, matches.Record(ctx, match, rows))
	}

	counts, err := matches.PairCounts(ctx, season.ID)
	require.NoError(t, err)

	total := 0
	for _, n := range counts {
		assert.Equal(t, 2, n)
		total += n
	}
	// 6 unordered pairs, each seen twice.
	assert.Equal(t, 12, total)
}

func TestRatingHistoryRepository(t *testing.T) {
	db := newTestDB(t)
	players := NewPlayerRepository(db, zerolog.Nop())
	seasons := NewSeasonRepository(db, zerolog.Nop())
	matches := NewMatchRepository(db, zerolog.Nop())
	history := NewRatingHistoryRepository(db, zerolog.Nop())
	ctx := context.Background()

	season := seedSeason(t, seasons)
	a := seedPlayer(t, players, "Alice")
	b := seedPlayer(t, players, "Bob")
	c := seedPlayer(t, players, "Cara")
	d := seedPlayer(t, players, "Dan")

	match := &domain.Match{
		SeasonID:   season.ID,
		Format:     domain.FormatDoubles,
		Team1Score: 10,
		Team2Score: 6,
		PlayedAt:   time.Now(),
	}
	rows := []domain.MatchParticipant{
		{PlayerID: a.ID, Team: 1, Role: domain.RoleAttacker, Won: true, PreMatchRating: 1200, PostMatchRating: 1215},
		{PlayerID: b.ID, Team: 1, Role: domain.RoleDefender, Won: true, PreMatchRating: 1200, PostMatchRating: 1215},
		{PlayerID: c.ID, Team: 2, Role: domain.RoleAttacker, Won: false, PreMatchRating: 1200, PostMatchRating: 1187},
		{PlayerID: d.ID, Team: 2, Role: domain.RoleDefender, Won: false, PreMatchRating: 1200, PostMatchRating: 1187},
	}
	require.NoError(t, matches.Record(ctx, match, rows))

	entries, err := history.ForPlayer(ctx, a.ID, season.ID, domain.FormatDoubles, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1200, entries[0].PreMatchRating)
	assert.Equal(t, 1215, entries[0].PostMatchRating)

	stats, err := history.RoleStats(ctx, season.ID)
	require.NoError(t, err)

	require.Contains(t, stats, a.ID)
	assert.Equal(t, 1, stats[a.ID].AttackerGames)
	assert.Equal(t, 1, stats[a.ID].AttackerWins)
	assert.Equal(t, 0, stats[a.ID].DefenderGames)

	require.Contains(t, stats, d.ID)
	assert.Equal(t, 1, stats[d.ID].DefenderGames)
	assert.Equal(t, 0, stats[d.ID].DefenderWins)
}
