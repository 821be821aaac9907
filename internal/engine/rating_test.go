package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foosball-tracker/internal/domain"
)

func TestUpdateRatings_AsymmetricKFactors(t *testing.T) {
	// Two equal 1200 players: expected score is exactly 0.5 for both,
	// so the winner moves by 35*0.5 = +17.5 -> +18 and the loser by
	// 29*0.5 = -14.5 -> -15. The system gains 3 points net.
	results, err := UpdateRatings(domain.FormatSingles,
		[]Participant{{PlayerID: "winner", Rating: 1200}},
		[]Participant{{PlayerID: "loser", Rating: 1200}},
		10, 7)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byID := resultMap(results)
	assert.Equal(t, 1218, byID["winner"].PostMatchRating)
	assert.Equal(t, 1185, byID["loser"].PostMatchRating)
	assert.Equal(t, 1200, byID["winner"].PreMatchRating)
	assert.Equal(t, 1200, byID["loser"].PreMatchRating)
}

func TestUpdateRatings_UpsetGain(t *testing.T) {
	// An 800 player beating a 1600 player takes nearly the full K.
	results, err := UpdateRatings(domain.FormatSingles,
		[]Participant{{PlayerID: "underdog", Rating: 800}},
		[]Participant{{PlayerID: "favorite", Rating: 1600}},
		10, 8)
	require.NoError(t, err)

	byID := resultMap(results)
	underdogGain := byID["underdog"].PostMatchRating - 800
	favoriteLoss := 1600 - byID["favorite"].PostMatchRating

	// expected(800 vs 1600) ~ 0.0099: gain ~ 35*0.99, loss ~ 29*0.99.
	assert.Equal(t, 35, underdogGain)
	assert.Equal(t, 29, favoriteLoss)
	assert.Greater(t, underdogGain, favoriteLoss)
}

func TestUpdateRatings_DoublesOpponentMean(t *testing.T) {
	// Each player's expectation is against the mean of the opposing
	// pair; the teammate's rating must not matter. p1 at 1200 faces a
	// mean of 1400 either way here, so p1's delta is identical in both
	// matches even though the teammate differs wildly.
	run := func(teammate int) int {
		results, err := UpdateRatings(domain.FormatDoubles,
			[]Participant{{PlayerID: "p1", Rating: 1200}, {PlayerID: "p2", Rating: teammate}},
			[]Participant{{PlayerID: "p3", Rating: 1300}, {PlayerID: "p4", Rating: 1500}},
			10, 4)
		require.NoError(t, err)
		return resultMap(results)["p1"].PostMatchRating
	}

	assert.Equal(t, run(900), run(2200))
}

func TestUpdateRatings_ClampBounds(t *testing.T) {
	// A 2400 player farming an 800 player forever never escapes the
	// ceiling, and the 800 player never falls through the floor.
	high, low := 2400, 800
	for i := 0; i < 50; i++ {
		results, err := UpdateRatings(domain.FormatSingles,
			[]Participant{{PlayerID: "high", Rating: high}},
			[]Participant{{PlayerID: "low", Rating: low}},
			10, 0)
		require.NoError(t, err)

		byID := resultMap(results)
		high = byID["high"].PostMatchRating
		low = byID["low"].PostMatchRating

		require.LessOrEqual(t, high, MaxRating)
		require.GreaterOrEqual(t, low, MinRating)
	}
	assert.Equal(t, MaxRating, high)
	assert.Equal(t, MinRating, low)
}

func TestUpdateRatings_RejectsDraw(t *testing.T) {
	_, err := UpdateRatings(domain.FormatSingles,
		[]Participant{{PlayerID: "p1", Rating: 1200}},
		[]Participant{{PlayerID: "p2", Rating: 1200}},
		5, 5)
	assert.ErrorIs(t, err, ErrDrawNotSupported)
}

func TestUpdateRatings_RejectsMissingRating(t *testing.T) {
	// A zero rating means the caller skipped scope resolution. The
	// engine must fail loudly instead of substituting a default.
	_, err := UpdateRatings(domain.FormatSingles,
		[]Participant{{PlayerID: "p1", Rating: 0}},
		[]Participant{{PlayerID: "p2", Rating: 1200}},
		10, 5)
	assert.ErrorIs(t, err, ErrMissingRating)
}

func TestUpdateRatings_RejectsBadTeams(t *testing.T) {
	_, err := UpdateRatings(domain.FormatDoubles,
		[]Participant{{PlayerID: "p1", Rating: 1200}},
		[]Participant{{PlayerID: "p2", Rating: 1200}, {PlayerID: "p3", Rating: 1200}},
		10, 5)
	assert.ErrorIs(t, err, domain.ErrWrongTeamSize)

	_, err = UpdateRatings(domain.FormatDoubles,
		[]Participant{{PlayerID: "p1", Rating: 1200}, {PlayerID: "p2", Rating: 1200}},
		[]Participant{{PlayerID: "p1", Rating: 1200}, {PlayerID: "p3", Rating: 1200}},
		10, 5)
	assert.ErrorIs(t, err, domain.ErrDuplicatePlayer)

	_, err = UpdateRatings("3v3",
		[]Participant{{PlayerID: "p1", Rating: 1200}},
		[]Participant{{PlayerID: "p2", Rating: 1200}},
		10, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)
}

func resultMap(results []RatingResult) map[string]RatingResult {
	m := make(map[string]RatingResult, len(results))
	for _, r := range results {
		m[r.PlayerID] = r
	}
	return m
}
