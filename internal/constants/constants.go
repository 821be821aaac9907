package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second

	// SavedMatchupTTL bounds how long a generated matchup can be
	// reused before the group has to generate a fresh one.
	SavedMatchupTTL = 48 * time.Hour
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// RarityHistoryLimit caps how many recent matches feed the
	// novelty-mode pairing counts.
	RarityHistoryLimit = 200
)
