package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/nowbar/internal/server"
	"github.com/desertthunder/nowbar/internal/shared"
	"github.com/desertthunder/nowbar/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the bridge server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFlag(cmd); err != nil {
		return err
	}
	if err := r.requireService(); err != nil {
		return err
	}

	config := r.config
	if port := cmd.Int("port"); port != 0 {
		config.Server.Port = int(port)
	}

	r.logger.Info("starting bridge",
		"addr", config.Server.Addr(),
		"client_id", shared.RedactSecret(config.Credentials.Spotify.ClientID),
		"redirect_uri", config.Credentials.Spotify.RedirectURI,
		"token_path", r.store.Path())

	api := server.NewAPI(r.spotify, r.manager, r.store, r.logger)

	router := server.NewRouter()
	router.Use(server.Logging(r.logger), server.CORS(), server.RateLimit(10, 20))
	router.Handler(api)
	router.Handle(http.MethodGet, "/", web.Handler())

	srv := server.New(config.Server.Addr(), router, r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	r.writePlain("Bridge running on http://localhost:%d\n", config.Server.Port)
	r.writePlain("1. Visit http://localhost:%d/login to authenticate\n", config.Server.Port)
	r.writePlain("2. Add http://localhost:%d as a Browser Source in OBS\n", config.Server.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
