package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowbar/internal/services"
	"github.com/desertthunder/nowbar/internal/shared"
	"github.com/desertthunder/nowbar/internal/ui"
	"github.com/urfave/cli/v3"
)

// fetchNowPlaying runs the full token-then-track path once.
func (r *Runner) fetchNowPlaying(ctx context.Context) (*services.NowPlaying, error) {
	token, err := r.manager.Access(ctx)
	if err != nil {
		return nil, err
	}

	return r.spotify.CurrentlyPlaying(ctx, token)
}

// Now prints the currently playing track once.
func (r *Runner) Now(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	np, err := r.fetchNowPlaying(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(np, cmd.Bool("pretty"))
	}

	if !np.IsPlaying {
		return r.writePlain("Nothing playing\n")
	}

	r.writePlain("♪ %s\n", np.Title)
	r.writePlain("  %s\n", np.Artist)
	if np.Album != "" {
		r.writePlain("  %s\n", np.Album)
	}

	return nil
}

// Widget launches the terminal now-playing widget.
func (r *Runner) Widget(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireService(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with the rendered view
	fileLogger, err := shared.NewFileLogger("./tmp/nowbar-widget.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.fetchNowPlaying)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running widget: %w", err)
	}

	return nil
}
