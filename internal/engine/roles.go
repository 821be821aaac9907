package engine

import (
	"foosball-tracker/internal/domain"
)

const (
	// maxRankingGap is the rating-sum gap at which the balance score
	// bottoms out, roughly the distance between a top-tier and an
	// entry-tier pair under this rating scale.
	maxRankingGap = 400.0

	balanceWeight   = 0.8
	happinessWeight = 0.2
)

// RoleAssignment fixes which player of a pair attacks and which
// defends.
type RoleAssignment struct {
	Attacker PoolPlayer
	Defender PoolPlayer
}

// TeamAssignment is the engine's final output for one generated
// matchup: both teams with roles fixed, the absolute rating-sum gap,
// and a 0..1 quality (or novelty) confidence.
type TeamAssignment struct {
	Team1             RoleAssignment
	Team2             RoleAssignment
	RankingDifference int
	Confidence        float64
}

// scoredAssignment is an internal search candidate.
type scoredAssignment struct {
	team1 RoleAssignment
	team2 RoleAssignment
	score float64
}

// optimizeRoles evaluates the four possible role assignments of a team
// pair and returns the best by quality score. Ties go to the first
// assignment in enumeration order, which keeps the search fully
// deterministic.
func optimizeRoles(pair TeamPair, prefs map[string]PositionPreference) scoredAssignment {
	ranking := rankingScore(pair)

	var best scoredAssignment
	first := true
	for _, t1 := range orderings(pair.Team1) {
		for _, t2 := range orderings(pair.Team2) {
			happiness := positionHappiness([]assigned{
				{t1.Attacker, domain.RoleAttacker},
				{t1.Defender, domain.RoleDefender},
				{t2.Attacker, domain.RoleAttacker},
				{t2.Defender, domain.RoleDefender},
			}, prefs)

			score := balanceWeight*ranking + happinessWeight*happiness
			if first || score > best.score {
				best = scoredAssignment{team1: t1, team2: t2, score: score}
				first = false
			}
		}
	}
	return best
}

// rankingScore maps the rating-sum gap onto [0,1]: equal sums score 1,
// a gap of maxRankingGap or more scores 0.
func rankingScore(pair TeamPair) float64 {
	gap := ratingGap(pair)
	normalized := float64(gap) / maxRankingGap
	if normalized > 1 {
		normalized = 1
	}
	return 1 - normalized
}

func ratingGap(pair TeamPair) int {
	sum1 := pair.Team1[0].Rating + pair.Team1[1].Rating
	sum2 := pair.Team2[0].Rating + pair.Team2[1].Rating
	gap := sum1 - sum2
	if gap < 0 {
		gap = -gap
	}
	return gap
}

type assigned struct {
	player PoolPlayer
	role   domain.Role
}

// positionHappiness averages per-player role fit, weighted by each
// player's preference confidence. A player is happiest (1.0) when the
// assigned role's win rate beats the other role's by 50 points or
// more; indifferent players sit at 0.5. With zero total confidence
// there is nothing to measure and the result defaults to 0.5.
func positionHappiness(assignments []assigned, prefs map[string]PositionPreference) float64 {
	var weighted, totalConfidence float64
	for _, a := range assignments {
		pref, ok := prefs[a.player.ID]
		if !ok {
			continue
		}

		own := pref.winRateFor(a.role)
		other := pref.winRateFor(otherRole(a.role))
		happiness := clamp01(0.5 + (own-other)/100)

		weighted += happiness * pref.Confidence
		totalConfidence += pref.Confidence
	}

	if totalConfidence == 0 {
		return 0.5
	}
	return weighted / totalConfidence
}

func otherRole(r domain.Role) domain.Role {
	if r == domain.RoleAttacker {
		return domain.RoleDefender
	}
	return domain.RoleAttacker
}

// orderings yields both role orderings of a pair.
func orderings(pair [2]PoolPlayer) [2]RoleAssignment {
	return [2]RoleAssignment{
		{Attacker: pair[0], Defender: pair[1]},
		{Attacker: pair[1], Defender: pair[0]},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
