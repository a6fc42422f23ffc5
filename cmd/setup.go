package main

import (
	"context"

	"github.com/desertthunder/nowbar/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config.toml from the embedded template.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Created %s\n", configPath)
	r.writePlain("Fill in your Spotify client_id and client_secret, then run: nowbar login\n")

	return nil
}
