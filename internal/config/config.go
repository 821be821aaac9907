package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	RedisAddr  string
	ServerPort string
	LogLevel   string

	// DefaultRating seeds a player's rating in a scope they have no
	// matches in yet. Deployment configuration, not an engine
	// constant: different games start at different conventions.
	DefaultRating int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	defaultRating, err := getEnvInt("DEFAULT_RATING", 1200)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_RATING: %w", err)
	}

	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "foosball.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DefaultRating: defaultRating,
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("redis_addr", cfg.RedisAddr).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Int("default_rating", cfg.DefaultRating).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

var Module = fx.Provide(Load)
