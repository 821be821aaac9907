package domain

import "errors"

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSeasonNotFound  = errors.New("season not found")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchupNotFound = errors.New("no saved matchup")

	// ErrDrawScore is returned when a recorded match has equal team
	// scores. The rating engine has no defined behavior for a draw, so
	// draws are rejected before it is ever invoked.
	ErrDrawScore = errors.New("draw scores are not supported")

	ErrInvalidFormat   = errors.New("invalid match format")
	ErrInvalidMode     = errors.New("invalid matchup mode")
	ErrDuplicatePlayer = errors.New("player listed more than once")
	ErrWrongTeamSize   = errors.New("team size does not match format")
	ErrInvalidScore    = errors.New("scores must be non-negative")
)
