package main

import (
	"context"
	"os"

	"github.com/desertthunder/nowbar/internal/services"
	"github.com/desertthunder/nowbar/internal/shared"
	"github.com/desertthunder/nowbar/internal/tokens"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}
	config.ApplyEnv()

	var spotifyService services.Service
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		}
	}

	store := tokens.NewStore(config.Storage.TokenPath)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Store:   store,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "nowbar",
		Usage:    "Spotify now-playing bridge for streaming overlays",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
