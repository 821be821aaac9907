package fx

import (
	"go.uber.org/fx"

	"foosball-tracker/internal/cache"
	"foosball-tracker/internal/config"
	"foosball-tracker/internal/database"
	"foosball-tracker/internal/logger"
	"foosball-tracker/internal/repository"
	"foosball-tracker/internal/server"
	"foosball-tracker/internal/service"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewSeasonRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewRatingHistoryRepository),
	// cache
	fx.Provide(cache.NewMatchupCache),
	// svc
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewSeasonService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewMatchupService),
	// server
	fx.Provide(server.NewTrackerServer),
)
