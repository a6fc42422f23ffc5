package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/desertthunder/nowbar/internal/server"
	"github.com/desertthunder/nowbar/internal/shared"
	"github.com/desertthunder/nowbar/internal/tokens"
	"github.com/urfave/cli/v3"
)

const loginTimeout = 2 * time.Minute

// Login performs the OAuth2 authorization flow from the terminal.
//
// Starts a temporary HTTP server on the redirect URI's port, opens the browser
// for user authorization, exchanges the auth code, and persists the record.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFlag(cmd); err != nil {
		return err
	}
	if err := r.requireService(); err != nil {
		return err
	}

	redirect, err := url.Parse(r.config.Credentials.Spotify.RedirectURI)
	if err != nil {
		return fmt.Errorf("%w: invalid redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(r.spotify, state)

	router := server.NewRouter()
	router.Handler(handler)

	srv := server.New(redirect.Host, router, r.logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := r.spotify.AuthURL(state)
	r.writePlain("Opening browser for authorization...\n")
	r.writePlain("If it does not open, visit:\n%s\n", authURL)

	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
	}

	var record *tokens.Record
	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
		record = result.Record
	case <-time.After(loginTimeout):
		return fmt.Errorf("%w: no callback received within %v", shared.ErrTimeout, loginTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := r.store.Save(record); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.store.Path())
	r.writePlain("You can now use: nowbar serve\n")

	return nil
}

// Logout removes the stored token record.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.Clear(); err != nil {
		return err
	}

	r.writePlain("✓ Logged out, token record removed\n")
	return nil
}

// Status reports configuration and authentication state without touching the network.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	spotify := r.config.Credentials.Spotify

	r.writePlain("Client ID:    %s\n", shared.RedactSecret(spotify.ClientID))
	r.writePlain("Redirect URI: %s\n", spotify.RedirectURI)
	r.writePlain("Token file:   %s\n", r.store.Path())

	record, err := r.sessionRecord()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.writePlain("Session:      ✗ Not logged in\n")
			return nil
		}
		return err
	}

	r.writePlain("Session:      ✓ Logged in\n")
	if record.Stale(time.Now()) {
		r.writePlain("Access token: stale, will refresh on next poll\n")
	} else {
		r.writePlain("Access token: valid until %s\n", record.ExpiresAt().Format(time.RFC1123))
	}

	return nil
}
