// Package engine holds the matchmaking and rating core. Everything in
// here is a pure function of its inputs: no storage access, no logging,
// no clock. Callers materialize players and history first and persist
// whatever the engine returns.
package engine

import (
	"foosball-tracker/internal/domain"
)

const (
	// neutralWinRate is assumed for both roles when a player has no
	// role history in scope.
	neutralWinRate = 50.0

	// unmeasuredConfidence reflects the irreducible uncertainty of a
	// player with zero data. Such a player is unmeasured, not neutral
	// in skill.
	unmeasuredConfidence = 0.3

	// confidenceSaturationGames is the role-game count at which the
	// confidence ramp reaches 1.
	confidenceSaturationGames = 10

	// preferenceDeadZone suppresses noisy preferences: a role must
	// beat the other by more than this many percentage points before
	// it counts as preferred.
	preferenceDeadZone = 5.0
)

// PositionPreference is a player's derived positional profile. It is
// recomputed on demand from match history and never persisted.
type PositionPreference struct {
	PlayerID        string
	AttackerWinRate float64
	DefenderWinRate float64
	PreferredRole   *domain.Role
	Confidence      float64
}

// EstimatePreference derives a player's positional win-rate profile
// from their per-role record. A nil or empty stats input yields the
// neutral profile.
func EstimatePreference(playerID string, stats *domain.RoleStats) PositionPreference {
	if stats == nil || stats.AttackerGames+stats.DefenderGames == 0 {
		return PositionPreference{
			PlayerID:        playerID,
			AttackerWinRate: neutralWinRate,
			DefenderWinRate: neutralWinRate,
			Confidence:      unmeasuredConfidence,
		}
	}

	attackerRate := roleWinRate(stats.AttackerWins, stats.AttackerGames)
	defenderRate := roleWinRate(stats.DefenderWins, stats.DefenderGames)

	totalGames := stats.AttackerGames + stats.DefenderGames
	confidence := float64(totalGames) / confidenceSaturationGames
	if confidence > 1 {
		confidence = 1
	}

	var preferred *domain.Role
	switch {
	case attackerRate-defenderRate > preferenceDeadZone:
		role := domain.RoleAttacker
		preferred = &role
	case defenderRate-attackerRate > preferenceDeadZone:
		role := domain.RoleDefender
		preferred = &role
	}

	return PositionPreference{
		PlayerID:        playerID,
		AttackerWinRate: attackerRate,
		DefenderWinRate: defenderRate,
		PreferredRole:   preferred,
		Confidence:      confidence,
	}
}

func roleWinRate(wins, games int) float64 {
	if games == 0 {
		return neutralWinRate
	}
	return float64(wins) / float64(games) * 100
}

func (p PositionPreference) winRateFor(role domain.Role) float64 {
	if role == domain.RoleAttacker {
		return p.AttackerWinRate
	}
	return p.DefenderWinRate
}
