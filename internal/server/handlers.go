package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowbar/internal/services"
	"github.com/desertthunder/nowbar/internal/shared"
	"github.com/desertthunder/nowbar/internal/tokens"
)

// API serves the bridge's JSON surface: the login redirect, the OAuth
// callback, the now-playing projection and the health probe.
type API struct {
	service services.Service
	manager *tokens.Manager
	store   *tokens.Store
	logger  *log.Logger

	mu    sync.Mutex
	state string // state issued by the last /login redirect
}

// NewAPI wires the route handlers to the service, lifecycle manager and store.
func NewAPI(service services.Service, manager *tokens.Manager, store *tokens.Store, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{
		service: service,
		manager: manager,
		store:   store,
		logger:  logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (a *API) Routes() []string {
	return []string{"/login", "/callback", "/now-playing", "/health"}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		a.handleLogin(w, r)
	case "/callback":
		a.handleCallback(w, r)
	case "/now-playing":
		a.handleNowPlaying(w, r)
	case "/health":
		a.handleHealth(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleLogin redirects the browser to the upstream authorize endpoint with a
// fresh state token.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := shared.GenerateID()

	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	http.Redirect(w, r, a.service.AuthURL(state), http.StatusFound)
}

// handleCallback exchanges the authorization code and persists the record.
// A missing code or a mismatched state token is a client error, answered 400.
func (a *API) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	a.mu.Lock()
	expected := a.state
	a.state = ""
	a.mu.Unlock()

	if expected != "" && query.Get("state") != expected {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Error(w, "No code provided", http.StatusBadRequest)
		return
	}

	record, err := a.service.Exchange(r.Context(), code)
	if err != nil {
		a.logger.Error("code exchange failed", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := a.store.Save(record); err != nil {
		a.logger.Error("failed to persist tokens", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	a.logger.Info("login successful",
		"access_token", shared.RedactSecret(record.AccessToken),
		"expires_in", record.ExpiresIn)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Login successful! You can close this window and check your widget."))
}

// handleNowPlaying returns the projection for the overlay widget.
func (a *API) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	token, err := a.manager.Access(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrRefreshFailed) {
			a.writeError(w, http.StatusUnauthorized, "Not logged in")
			return
		}
		a.logger.Error("token lookup failed", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Failed to fetch data")
		return
	}

	np, err := a.service.CurrentlyPlaying(r.Context(), token)
	if err != nil {
		a.logger.Error("failed to fetch current track", "error", err)
		a.writeError(w, http.StatusInternalServerError, "Failed to fetch data")
		return
	}

	a.writeJSON(w, http.StatusOK, np)
}

// handleHealth reports process liveness and whether a token record is stored.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"authenticated": a.manager.Authenticated(),
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}
