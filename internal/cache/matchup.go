// Package cache holds the ephemeral saved-matchup store. Expiry is a
// cache policy (Redis TTL), never something the matchmaking engine
// knows about.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"foosball-tracker/internal/config"
	"foosball-tracker/internal/constants"
	"foosball-tracker/internal/domain"
)

const matchupKeyPrefix = "matchup:latest:"

type MatchupCache struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewMatchupCache(cfg *config.Config, logger zerolog.Logger) *MatchupCache {
	return &MatchupCache{
		client: redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		}),
		logger: logger,
	}
}

func matchupKey(seasonID string, mode domain.MatchupMode) string {
	return matchupKeyPrefix + seasonID + ":" + string(mode)
}

// Save stores the latest generated matchup for a season and mode,
// replacing any previous one. The 48h TTL restarts on every save.
func (c *MatchupCache) Save(ctx context.Context, matchup *domain.SavedMatchup) error {
	payload, err := json.Marshal(matchup)
	if err != nil {
		return fmt.Errorf("failed to marshal saved matchup: %w", err)
	}

	key := matchupKey(matchup.SeasonID, matchup.Mode)
	if err := c.client.Set(ctx, key, payload, constants.SavedMatchupTTL).Err(); err != nil {
		return fmt.Errorf("failed to save matchup: %w", err)
	}

	c.logger.Debug().Str("key", key).Msg("matchup saved")
	return nil
}

// Latest returns the most recent unexpired matchup for a season and
// mode, or domain.ErrMatchupNotFound.
func (c *MatchupCache) Latest(ctx context.Context, seasonID string, mode domain.MatchupMode) (*domain.SavedMatchup, error) {
	payload, err := c.client.Get(ctx, matchupKey(seasonID, mode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrMatchupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load matchup: %w", err)
	}

	var matchup domain.SavedMatchup
	if err := json.Unmarshal(payload, &matchup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal saved matchup: %w", err)
	}
	return &matchup, nil
}

// Close releases the underlying Redis connection.
func (c *MatchupCache) Close() error {
	return c.client.Close()
}
