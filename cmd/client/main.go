package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/tranminh/clubhub/internal/app/api"
	"github.com/tranminh/clubhub/internal/app/guard"
	"github.com/tranminh/clubhub/internal/app/inbox"
	"github.com/tranminh/clubhub/internal/app/session"
	"github.com/tranminh/clubhub/internal/app/stores"
	"github.com/tranminh/clubhub/internal/config"
	"github.com/tranminh/clubhub/internal/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("No .env file found, using environment variables")
	}

	configPath := config.GetEnv("CLUBHUB_CONFIG", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "pretty",
	})

	sessions := session.NewStore(cfg.Session.Path)
	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, sessions.Token)

	a := newApp(appDeps{
		cfg:      cfg,
		sessions: sessions,
		client:   client,
		guard:    guard.New(sessions),
		inbox: inbox.New(client, sessions, inbox.Config{
			PollInterval:    cfg.Inbox.PollInterval,
			ThreadPageSize:  cfg.Inbox.ThreadPage,
			MessagePageSize: cfg.Inbox.MessagePage,
		}),
		notifications: stores.NewNotificationStore(client, cfg.Notifications.PageSize),
	})

	if err := a.run(); err != nil {
		logger.Error().Err(err).Msg("Client exited with error")
		os.Exit(1)
	}
}
