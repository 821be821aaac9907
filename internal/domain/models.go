package domain

import (
	"time"
)

// Format identifies how many players stand on each side of the table.
type Format string

const (
	FormatSingles Format = "1v1"
	FormatDoubles Format = "2v2"
)

func (f Format) Valid() bool {
	return f == FormatSingles || f == FormatDoubles
}

// TeamSize returns the number of players per team for the format.
func (f Format) TeamSize() int {
	if f == FormatSingles {
		return 1
	}
	return 2
}

// Role is a positional label within a team. It affects only which
// win-rate statistic applies to a player, never the game rules.
type Role string

const (
	RoleAttacker Role = "attacker"
	RoleDefender Role = "defender"
)

type Player struct {
	ID        string // nanoid
	GroupID   string
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScopedPlayer is a player together with their standing inside one
// rating scope (season x format). Rating is derived from the match
// snapshots, never stored on the player row itself.
type ScopedPlayer struct {
	Player
	Rating  int
	Matches int
	Wins    int
	Losses  int
}

type Season struct {
	ID       string
	GroupID  string
	Name     string
	StartsAt time.Time
	EndsAt   time.Time
	Active   bool
}

type Match struct {
	ID         string
	SeasonID   string
	Format     Format
	Team1Score int
	Team2Score int
	PlayedAt   time.Time
	CreatedAt  time.Time
}

// MatchParticipant is one player's row in a recorded match, including
// the rating snapshot captured at recording time. The pre/post pair is
// immutable once written; rating history is read straight from these
// rows instead of replaying the match log.
type MatchParticipant struct {
	MatchID         string
	PlayerID        string
	Team            int // 1 or 2
	Role            Role
	Won             bool
	PreMatchRating  int
	PostMatchRating int
}

// RoleStats aggregates a player's per-role record inside one scope.
type RoleStats struct {
	PlayerID      string
	AttackerGames int
	AttackerWins  int
	DefenderGames int
	DefenderWins  int
}

// RatingHistoryEntry is one step of a player's rating trajectory.
type RatingHistoryEntry struct {
	MatchID         string
	PlayerID        string
	Format          Format
	PreMatchRating  int
	PostMatchRating int
	PlayedAt        time.Time
}

// MatchupMode selects the search objective for team generation.
type MatchupMode string

const (
	// ModeBalanced minimizes the rating-sum gap between teams.
	ModeBalanced MatchupMode = "balanced"
	// ModeNovelty minimizes historical pairing frequency among the
	// four selected players.
	ModeNovelty MatchupMode = "novelty"
)

func (m MatchupMode) Valid() bool {
	return m == ModeBalanced || m == ModeNovelty
}

// SavedMatchup is a generated team assignment kept around so the group
// can reuse it instead of regenerating. Expiry is owned by the cache
// (48h TTL), not by this struct.
type SavedMatchup struct {
	SeasonID   string      `json:"season_id"`
	Mode       MatchupMode `json:"mode"`
	Team1      SavedTeam   `json:"team1"`
	Team2      SavedTeam   `json:"team2"`
	RankDiff   int         `json:"rank_diff"`
	Confidence float64     `json:"confidence"`
	CreatedAt  time.Time   `json:"created_at"`
}

type SavedTeam struct {
	AttackerID string `json:"attacker_id"`
	DefenderID string `json:"defender_id"`
}
