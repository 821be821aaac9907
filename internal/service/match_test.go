package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foosball-tracker/internal/config"
	"foosball-tracker/internal/database"
	"foosball-tracker/internal/domain"
	"foosball-tracker/internal/repository"
)

type matchFixture struct {
	svc     *MatchService
	players *repository.PlayerRepository
	season  *domain.Season
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db, zerolog.Nop()))

	log := zerolog.Nop()
	cfg := &config.Config{DefaultRating: 1200}
	players := repository.NewPlayerRepository(db, log)
	seasons := repository.NewSeasonRepository(db, log)
	matches := repository.NewMatchRepository(db, log)

	season := &domain.Season{
		GroupID:  "g1",
		Name:     "Spring",
		StartsAt: time.Now().AddDate(0, -1, 0),
		EndsAt:   time.Now().AddDate(0, 2, 0),
		Active:   true,
	}
	require.NoError(t, seasons.Create(context.Background(), season))

	return &matchFixture{
		svc:     NewMatchService(cfg, matches, players, seasons, log),
		players: players,
		season:  season,
	}
}

func (f *matchFixture) player(t *testing.T, name string) string {
	t.Helper()
	p := &domain.Player{GroupID: "g1", Name: name}
	require.NoError(t, f.players.Create(context.Background(), p))
	return p.ID
}

func TestRecordMatch_SinglesRatings(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	alice := f.player(t, "Alice")
	bob := f.player(t, "Bob")

	// Two fresh 1200 players: +18 for the winner, -15 for the loser.
	match, err := f.svc.RecordMatch(ctx, f.season.ID, domain.FormatSingles,
		TeamInput{PlayerIDs: []string{alice}},
		TeamInput{PlayerIDs: []string{bob}},
		10, 7, time.Now())
	require.NoError(t, err)
	require.Len(t, match.Participants, 2)

	byPlayer := map[string]domain.MatchParticipant{}
	for _, p := range match.Participants {
		byPlayer[p.PlayerID] = p
	}

	assert.Equal(t, 1200, byPlayer[alice].PreMatchRating)
	assert.Equal(t, 1218, byPlayer[alice].PostMatchRating)
	assert.True(t, byPlayer[alice].Won)
	assert.Equal(t, 1200, byPlayer[bob].PreMatchRating)
	assert.Equal(t, 1185, byPlayer[bob].PostMatchRating)
	assert.False(t, byPlayer[bob].Won)

	// The next match starts from the snapshots, not from the default.
	match, err = f.svc.RecordMatch(ctx, f.season.ID, domain.FormatSingles,
		TeamInput{PlayerIDs: []string{alice}},
		TeamInput{PlayerIDs: []string{bob}},
		3, 10, time.Now().Add(time.Minute))
	require.NoError(t, err)

	for _, p := range match.Participants {
		if p.PlayerID == alice {
			assert.Equal(t, 1218, p.PreMatchRating)
		} else {
			assert.Equal(t, 1185, p.PreMatchRating)
		}
	}
}

func TestRecordMatch_DoublesRoles(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	ids := []string{f.player(t, "A"), f.player(t, "B"), f.player(t, "C"), f.player(t, "D")}

	match, err := f.svc.RecordMatch(ctx, f.season.ID, domain.FormatDoubles,
		TeamInput{PlayerIDs: []string{ids[0], ids[1]}},
		TeamInput{PlayerIDs: []string{ids[2], ids[3]}},
		10, 8, time.Now())
	require.NoError(t, err)
	require.Len(t, match.Participants, 4)

	byPlayer := map[string]domain.MatchParticipant{}
	for _, p := range match.Participants {
		byPlayer[p.PlayerID] = p
	}

	// First listed player attacks, second defends.
	assert.Equal(t, domain.RoleAttacker, byPlayer[ids[0]].Role)
	assert.Equal(t, domain.RoleDefender, byPlayer[ids[1]].Role)
	assert.Equal(t, domain.RoleAttacker, byPlayer[ids[2]].Role)
	assert.Equal(t, domain.RoleDefender, byPlayer[ids[3]].Role)
}

func TestRecordMatch_Validation(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	alice := f.player(t, "Alice")
	bob := f.player(t, "Bob")

	_, err := f.svc.RecordMatch(ctx, f.season.ID, domain.FormatSingles,
		TeamInput{PlayerIDs: []string{alice}},
		TeamInput{PlayerIDs: []string{bob}},
		5, 5, time.Now())
	assert.ErrorIs(t, err, domain.ErrDrawScore)

	_, err = f.svc.RecordMatch(ctx, f.season.ID, domain.FormatDoubles,
		TeamInput{PlayerIDs: []string{alice}},
		TeamInput{PlayerIDs: []string{bob}},
		10, 5, time.Now())
	assert.ErrorIs(t, err, domain.ErrWrongTeamSize)

	_, err = f.svc.RecordMatch(ctx, f.season.ID, "best-of-3",
		TeamInput{PlayerIDs: []string{alice}},
		TeamInput{PlayerIDs: []string{bob}},
		10, 5, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)

	_, err = f.svc.RecordMatch(ctx, f.season.ID, domain.FormatSingles,
		TeamInput{PlayerIDs: []string{alice}},
		TeamInput{PlayerIDs: []string{"ghost"}},
		10, 5, time.Now())
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	_, err = f.svc.RecordMatch(ctx, "no-such-season", domain.FormatSingles,
		TeamInput{PlayerIDs: []string{alice}},
		TeamInput{PlayerIDs: []string{bob}},
		10, 5, time.Now())
	assert.ErrorIs(t, err, domain.ErrSeasonNotFound)
}
