package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"foosball-tracker/internal/cache"
	"foosball-tracker/internal/config"
	"foosball-tracker/internal/constants"
	"foosball-tracker/internal/domain"
	"foosball-tracker/internal/engine"
	"foosball-tracker/internal/repository"
)

type MatchupService struct {
	cfg         *config.Config
	players     *repository.PlayerRepository
	matches     *repository.MatchRepository
	seasons     *repository.SeasonRepository
	ratingHisto *repository.RatingHistoryRepository
	matchups    *cache.MatchupCache
	logger      zerolog.Logger

	// seed feeds the per-call RNG for novelty-mode role assignment.
	// Injectable so tests can pin it; everything else in the search is
	// deterministic.
	seed func() int64
}

func NewMatchupService(
	cfg *config.Config,
	players *repository.PlayerRepository,
	matches *repository.MatchRepository,
	seasons *repository.SeasonRepository,
	ratingHisto *repository.RatingHistoryRepository,
	matchups *cache.MatchupCache,
	logger zerolog.Logger,
) *MatchupService {
	return &MatchupService{
		cfg:         cfg,
		players:     players,
		matches:     matches,
		seasons:     seasons,
		ratingHisto: ratingHisto,
		matchups:    matchups,
		logger:      logger,
		seed:        func() int64 { return time.Now().UnixNano() },
	}
}

// GeneratedMatchup is the engine result enriched with player details
// for presentation.
type GeneratedMatchup struct {
	SeasonID          string             `json:"season_id"`
	Mode              domain.MatchupMode `json:"mode"`
	Team1             GeneratedTeam      `json:"team1"`
	Team2             GeneratedTeam      `json:"team2"`
	RankingDifference int                `json:"ranking_difference"`
	Confidence        float64            `json:"confidence"`
	CreatedAt         time.Time          `json:"created_at"`
}

type GeneratedTeam struct {
	Attacker MatchupPlayer `json:"attacker"`
	Defender MatchupPlayer `json:"defender"`
}

type MatchupPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

// Generate splits the given player pool into two teams with roles
// assigned, in either balanced or novelty mode, and saves the result
// for the 48h reuse window. Ratings and role history are resolved in
// the season's doubles scope before the pure search runs.
func (s *MatchupService) Generate(ctx context.Context, seasonID string, playerIDs []string, mode domain.MatchupMode) (*GeneratedMatchup, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if !mode.Valid() {
		return nil, domain.ErrInvalidMode
	}
	if len(playerIDs) < engine.MinPoolSize || len(playerIDs) > engine.MaxPoolSize {
		return nil, fmt.Errorf("%w: got %d", engine.ErrInvalidPoolSize, len(playerIDs))
	}
	if err := checkDistinct(playerIDs); err != nil {
		return nil, err
	}

	season, err := s.seasons.Get(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	var (
		scoped     []domain.ScopedPlayer
		roleStats  map[string]*domain.RoleStats
		pairCounts map[[2]string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scoped, err = s.players.ListScoped(gctx, season.GroupID, seasonID, domain.FormatDoubles, s.cfg.DefaultRating)
		return err
	})
	g.Go(func() error {
		var err error
		roleStats, err = s.ratingHisto.RoleStats(gctx, seasonID)
		return err
	})
	g.Go(func() error {
		var err error
		pairCounts, err = s.matches.PairCounts(gctx, seasonID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("season_id", seasonID).Msg("failed to load matchup inputs")
		return nil, err
	}

	byID := make(map[string]domain.ScopedPlayer, len(scoped))
	for _, p := range scoped {
		byID[p.ID] = p
	}

	pool := make([]engine.PoolPlayer, 0, len(playerIDs))
	for _, id := range playerIDs {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrPlayerNotFound, id)
		}
		pool = append(pool, engine.PoolPlayer{ID: p.ID, Rating: p.Rating})
	}

	var assignment *engine.TeamAssignment
	switch mode {
	case domain.ModeBalanced:
		prefs := make(map[string]engine.PositionPreference, len(pool))
		for _, p := range pool {
			prefs[p.ID] = engine.EstimatePreference(p.ID, roleStats[p.ID])
		}
		assignment, err = engine.FindBalanced(pool, prefs)
	case domain.ModeNovelty:
		counts := func(a, b string) int {
			return pairCounts[[2]string{a, b}] + pairCounts[[2]string{b, a}]
		}
		assignment, err = engine.FindNovelty(pool, counts, rand.New(rand.NewSource(s.seed())))
	}
	if err != nil {
		return nil, err
	}

	result := s.present(seasonID, mode, assignment, byID)

	saved := &domain.SavedMatchup{
		SeasonID: seasonID,
		Mode:     mode,
		Team1: domain.SavedTeam{
			AttackerID: assignment.Team1.Attacker.ID,
			DefenderID: assignment.Team1.Defender.ID,
		},
		Team2: domain.SavedTeam{
			AttackerID: assignment.Team2.Attacker.ID,
			DefenderID: assignment.Team2.Defender.ID,
		},
		RankDiff:   assignment.RankingDifference,
		Confidence: assignment.Confidence,
		CreatedAt:  result.CreatedAt,
	}
	if err := s.matchups.Save(ctx, saved); err != nil {
		// The assignment is still good; losing the reuse window is not
		// worth failing the request over.
		s.logger.Warn().Err(err).Str("season_id", seasonID).Msg("failed to cache matchup")
	}

	s.logger.Info().
		Str("season_id", seasonID).
		Str("mode", string(mode)).
		Int("ranking_difference", assignment.RankingDifference).
		Float64("confidence", assignment.Confidence).
		Msg("matchup generated")

	return result, nil
}

// Latest returns the saved matchup for a season and mode if one is
// still inside its reuse window.
func (s *MatchupService) Latest(ctx context.Context, seasonID string, mode domain.MatchupMode) (*domain.SavedMatchup, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if !mode.Valid() {
		return nil, domain.ErrInvalidMode
	}
	return s.matchups.Latest(ctx, seasonID, mode)
}

func (s *MatchupService) present(seasonID string, mode domain.MatchupMode, a *engine.TeamAssignment, byID map[string]domain.ScopedPlayer) *GeneratedMatchup {
	describe := func(p engine.PoolPlayer) MatchupPlayer {
		return MatchupPlayer{ID: p.ID, Name: byID[p.ID].Name, Rating: p.Rating}
	}

	return &GeneratedMatchup{
		SeasonID: seasonID,
		Mode:     mode,
		Team1: GeneratedTeam{
			Attacker: describe(a.Team1.Attacker),
			Defender: describe(a.Team1.Defender),
		},
		Team2: GeneratedTeam{
			Attacker: describe(a.Team2.Attacker),
			Defender: describe(a.Team2.Defender),
		},
		RankingDifference: a.RankingDifference,
		Confidence:        a.Confidence,
		CreatedAt:         time.Now(),
	}
}

func checkDistinct(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", domain.ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
