package engine

import (
	"math/rand"
)

// rarityCeiling is the pairing-frequency count beyond which "more
// rare" stops being distinguishable; it anchors the novelty confidence
// scale.
const rarityCeiling = 20.0

// PairCountFn reports how many historical matches placed two players
// together, as teammates or as opponents. It must be symmetric in its
// arguments.
type PairCountFn func(a, b string) int

// FindBalanced brute-forces every team pairing and every role
// assignment and returns the single highest-quality matchup. The
// search space is bounded (at most 105 pairings for a 7-player pool),
// so the result is the true optimum under the quality score, not an
// approximation. The search is fully deterministic: identical inputs
// yield an identical assignment.
func FindBalanced(pool []PoolPlayer, prefs map[string]PositionPreference) (*TeamAssignment, error) {
	pairs, err := Combinations(pool)
	if err != nil {
		return nil, err
	}

	var best scoredAssignment
	var bestGap int
	first := true
	for pair := range pairs {
		candidate := optimizeRoles(pair, prefs)
		if first || candidate.score > best.score {
			best = candidate
			bestGap = ratingGap(pair)
			first = false
		}
	}

	confidence := best.score
	if confidence > 1 {
		confidence = 1
	}

	return &TeamAssignment{
		Team1:             best.team1,
		Team2:             best.team2,
		RankingDifference: bestGap,
		Confidence:        confidence,
	}, nil
}

// FindNovelty brute-forces every team pairing and returns the one
// whose four players have the least shared history. Rarity counts both
// teammate and opponent encounters, since the objective is overall
// pairing novelty. Ties go to the first candidate found. Roles on the
// winning pairing are drawn uniformly at random per team from rng;
// novelty mode deliberately does not optimize role fit.
func FindNovelty(pool []PoolPlayer, counts PairCountFn, rng *rand.Rand) (*TeamAssignment, error) {
	pairs, err := Combinations(pool)
	if err != nil {
		return nil, err
	}

	var best TeamPair
	var bestRarity int
	first := true
	for pair := range pairs {
		rarity := rarityScore(pair, counts)
		if first || rarity < bestRarity {
			best = pair
			bestRarity = rarity
			first = false
		}
	}

	confidence := 1 - float64(bestRarity)/rarityCeiling
	if confidence < 0 {
		confidence = 0
	}

	return &TeamAssignment{
		Team1:             randomRoles(best.Team1, rng),
		Team2:             randomRoles(best.Team2, rng),
		RankingDifference: ratingGap(best),
		Confidence:        confidence,
	}, nil
}

// rarityScore measures how much shared history a candidate carries.
// All six unordered pairs among the four players count, teammate and
// opponent encounters alike, with the two pairs that would share a
// team counted double: putting repeat teammates back together hurts
// novelty more than a repeat opponent does.
func rarityScore(pair TeamPair, counts PairCountFn) int {
	total := 2 * counts(pair.Team1[0].ID, pair.Team1[1].ID)
	total += 2 * counts(pair.Team2[0].ID, pair.Team2[1].ID)
	for _, a := range pair.Team1 {
		for _, b := range pair.Team2 {
			total += counts(a.ID, b.ID)
		}
	}
	return total
}

func randomRoles(pair [2]PoolPlayer, rng *rand.Rand) RoleAssignment {
	if rng.Intn(2) == 0 {
		return RoleAssignment{Attacker: pair[0], Defender: pair[1]}
	}
	return RoleAssignment{Attacker: pair[1], Defender: pair[0]}
}
