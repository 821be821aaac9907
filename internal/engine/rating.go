package engine

import (
	"fmt"
	"math"

	"foosball-tracker/internal/domain"
)

const (
	MinRating = 800
	MaxRating = 2400

	// Winners and losers learn at different rates. The asymmetry
	// injects a few points of net inflation per match while keeping
	// the usual logistic ELO shape for any single pairing.
	kFactorWin  = 35
	kFactorLoss = 29
)

// ErrMissingRating marks a participant whose scope rating was not
// resolved by the caller. The engine never substitutes a default here;
// a silently defaulted rating would corrupt the scope's statistics.
// (An unseen player legitimately starts at the configured default, but
// that resolution happens before this engine is called.)
var ErrMissingRating = fmt.Errorf("participant rating missing or outside [%d, %d]", MinRating, MaxRating)

// ErrDrawNotSupported mirrors the domain-level draw rejection: the
// update rule has no defined behavior for equal scores, so a draw
// reaching the engine is a precondition violation.
var ErrDrawNotSupported = fmt.Errorf("rating update undefined for draw scores")

// Participant is one player entering the rating update, with their
// current rating in the match's scope.
type Participant struct {
	PlayerID string
	Rating   int
}

// RatingResult is the pre/post snapshot for one participant, persisted
// verbatim alongside the match record.
type RatingResult struct {
	PlayerID        string
	PreMatchRating  int
	PostMatchRating int
}

// UpdateRatings recomputes every participant's rating from a finished
// match. In 2v2 a player's expected score is taken against the mean of
// the opposing pair; the own teammate's rating is irrelevant. Rating
// deltas are rounded half away from zero and the result is clamped to
// [MinRating, MaxRating].
func UpdateRatings(format domain.Format, team1, team2 []Participant, score1, score2 int) ([]RatingResult, error) {
	if !format.Valid() {
		return nil, domain.ErrInvalidFormat
	}
	size := format.TeamSize()
	if len(team1) != size || len(team2) != size {
		return nil, fmt.Errorf("%w: want %d per team, got %d vs %d",
			domain.ErrWrongTeamSize, size, len(team1), len(team2))
	}
	if score1 == score2 {
		return nil, ErrDrawNotSupported
	}
	if err := validateParticipants(team1, team2); err != nil {
		return nil, err
	}

	team1Won := score1 > score2

	results := make([]RatingResult, 0, len(team1)+len(team2))
	for _, p := range team1 {
		results = append(results, updateOne(p, meanRating(team2), team1Won))
	}
	for _, p := range team2 {
		results = append(results, updateOne(p, meanRating(team1), !team1Won))
	}
	return results, nil
}

func updateOne(p Participant, opponentRating float64, won bool) RatingResult {
	expected := ExpectedScore(float64(p.Rating), opponentRating)

	actual := 0.0
	k := float64(kFactorLoss)
	if won {
		actual = 1.0
		k = kFactorWin
	}

	// The delta is rounded half away from zero before it is applied,
	// so a +17.5 swing lands at +18 and a -14.5 swing at -15.
	newRating := p.Rating + int(math.Round(k*(actual-expected)))
	if newRating < MinRating {
		newRating = MinRating
	}
	if newRating > MaxRating {
		newRating = MaxRating
	}

	return RatingResult{
		PlayerID:        p.PlayerID,
		PreMatchRating:  p.Rating,
		PostMatchRating: newRating,
	}
}

// ExpectedScore is the standard logistic win expectation for a player
// rated own against an opponent rated opp.
func ExpectedScore(own, opp float64) float64 {
	return 1 / (1 + math.Pow(10, (opp-own)/400))
}

func meanRating(team []Participant) float64 {
	sum := 0
	for _, p := range team {
		sum += p.Rating
	}
	return float64(sum) / float64(len(team))
}

func validateParticipants(team1, team2 []Participant) error {
	seen := make(map[string]struct{}, len(team1)+len(team2))
	for _, p := range append(append([]Participant{}, team1...), team2...) {
		if _, dup := seen[p.PlayerID]; dup {
			return fmt.Errorf("%w: %s", domain.ErrDuplicatePlayer, p.PlayerID)
		}
		seen[p.PlayerID] = struct{}{}

		if p.Rating < MinRating || p.Rating > MaxRating {
			return fmt.Errorf("%w: player %s has rating %d", ErrMissingRating, p.PlayerID, p.Rating)
		}
	}
	return nil
}
