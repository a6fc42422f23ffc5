package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowbar/internal/services"
	"github.com/desertthunder/nowbar/internal/shared"
	"github.com/desertthunder/nowbar/internal/tokens"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	spotify services.Service
	store   *tokens.Store
	manager *tokens.Manager
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Spotify services.Service
	Store   *tokens.Store
	Manager *tokens.Manager
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Store == nil {
		opts.Store = tokens.NewStore(opts.Config.Storage.TokenPath)
	}
	if opts.Manager == nil && opts.Spotify != nil {
		opts.Manager = tokens.NewManager(opts.Store, opts.Spotify, opts.Logger)
	}

	return &Runner{
		config:  opts.Config,
		spotify: opts.Spotify,
		store:   opts.Store,
		manager: opts.Manager,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger swaps the runner's logger (used by the widget to log to a file).
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.manager != nil && r.spotify != nil {
		r.manager = tokens.NewManager(r.store, r.spotify, logger)
	}
}

// loadConfigFlag reloads configuration from the command's --config flag and
// rebuilds the service stack from it. An absent default config.toml is not an
// error: credentials may come entirely from the environment.
func (r *Runner) loadConfigFlag(cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		return nil
	}

	if _, err := os.Stat(configPath); err != nil {
		if cmd.IsSet("config") {
			return fmt.Errorf("%w: cannot read %s: %v", shared.ErrMissingConfig, configPath, err)
		}
		return nil
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	config.ApplyEnv()

	r.config = config
	r.store = tokens.NewStore(config.Storage.TokenPath)
	r.spotify = nil
	r.manager = nil
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
		if err != nil {
			return err
		}
		r.spotify = svc
		r.manager = tokens.NewManager(r.store, svc, r.logger)
	}

	return nil
}

// sessionRecord reads the stored token record, through the manager's lock when
// the service stack is configured.
func (r *Runner) sessionRecord() (*tokens.Record, error) {
	if r.manager != nil {
		return r.manager.Record()
	}
	return r.store.Load()
}

// requireService fails when the Spotify credentials were never configured.
func (r *Runner) requireService() error {
	if r.spotify == nil || r.manager == nil {
		return fmt.Errorf("%w: Spotify service not initialized, run `nowbar setup` and fill in credentials", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
