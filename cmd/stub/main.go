package main

import (
	"github.com/joho/godotenv"

	"github.com/tranminh/clubhub/internal/config"
	"github.com/tranminh/clubhub/internal/pkg/logger"
	"github.com/tranminh/clubhub/internal/seed"
	"github.com/tranminh/clubhub/internal/stubserver"
)

// main runs the in-memory development backend with seeded data. Everything is
// gone on exit; this exists so the client has something to talk to locally.
func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("No .env file found, using environment variables")
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(config.GetEnv("LOG_LEVEL", "info")),
		Pretty: config.GetEnv("LOG_FORMAT", "pretty") == "pretty",
	})
	lgr := logger.With("stub")

	store := stubserver.NewStore()
	if err := seed.CreateDefaultData(store, lgr); err != nil {
		lgr.Fatal().Err(err).Msg("Failed to seed default data")
	}

	server := stubserver.New(store, stubserver.Config{
		JWTSecret:   config.GetEnv("CLUBHUB_JWT_SECRET", ""),
		TokenExpiry: config.GetEnvAsDuration("CLUBHUB_TOKEN_EXPIRY", 0),
	})

	addr := config.GetEnv("CLUBHUB_STUB_ADDR", ":9999")
	lgr.Info().Str("addr", addr).Msgf("Seeded accounts share the password %q", seed.DefaultPassword)
	if err := server.Run(addr); err != nil {
		lgr.Fatal().Err(err).Msg("Backend stopped")
	}
}
