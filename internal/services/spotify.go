// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/nowbar/internal/shared"
	"github.com/desertthunder/nowbar/internal/tokens"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRedirectURI is used when no redirect_uri is configured.
	DefaultRedirectURI = "http://localhost:8888/callback"

	requestTimeout = 10 * time.Second
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// currentlyPlayingResponse is the /me/player/currently-playing payload. Item
// is nil when nothing is loaded in the player.
type currentlyPlayingResponse struct {
	IsPlaying  bool          `json:"is_playing"`
	ProgressMS int           `json:"progress_ms"`
	Item       *SpotifyTrack `json:"item"`
}

// SpotifyService implements [Service] for the Spotify Web API.
// Uses [oauth2] for the token endpoints.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	// Endpoint overrides, used when pointing the service at a stub.
	authURL := credentials["auth_url"]
	if authURL == "" {
		authURL = spotifyAuthURL
	}
	tokenURL := credentials["token_url"]
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	baseURL := credentials["base_url"]
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-currently-playing",
			"user-read-playback-state",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// RedirectURI returns the configured callback URL.
func (s *SpotifyService) RedirectURI() string {
	return s.config.RedirectURL
}

// Exchange trades an authorization code for tokens. Client credentials are
// sent as HTTP Basic auth per the token endpoint's AuthStyle.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*tokens.Record, error) {
	token, err := s.config.Exchange(s.oauthContext(ctx), code)
	if err != nil {
		return nil, wrapOAuthError(shared.ErrAuthFailed, err)
	}

	return s.record(token), nil
}

// Refresh performs a refresh_token grant. The returned record carries whatever
// refresh token the upstream responded with; [tokens.Record.Apply] preserves
// the previous one when the response had none.
func (s *SpotifyService) Refresh(ctx context.Context, refreshToken string) (*tokens.Record, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, shared.ErrNoRefreshToken)
	}

	// Seeding the source with only a refresh token forces the refresh grant.
	src := s.config.TokenSource(s.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, wrapOAuthError(shared.ErrRefreshFailed, err)
	}

	record := s.record(token)
	if record.RefreshToken == refreshToken {
		// oauth2 carries the seed forward when the response had no
		// refresh_token; report it as absent so the caller merges.
		record.RefreshToken = ""
	}
	return record, nil
}

// CurrentlyPlaying fetches the active track with bearer authentication.
//
// A 204, an empty body, or a response without an item all mean the player is
// idle and projects to {is_playing: false}. Anything else non-2xx is an
// upstream error, never coerced into "not playing".
func (s *SpotifyService) CurrentlyPlaying(ctx context.Context, accessToken string) (*NowPlaying, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/me/player/currently-playing", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return &NowPlaying{IsPlaying: false}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return &NowPlaying{IsPlaying: false}, nil
	}

	var payload currentlyPlayingResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}

	if payload.Item == nil {
		return &NowPlaying{IsPlaying: false}, nil
	}

	return projectTrack(&payload), nil
}

// projectTrack maps the upstream payload into the client-facing shape.
func projectTrack(payload *currentlyPlayingResponse) *NowPlaying {
	item := payload.Item

	names := make([]string, 0, len(item.Artists))
	for _, artist := range item.Artists {
		names = append(names, artist.Name)
	}

	np := &NowPlaying{
		IsPlaying: payload.IsPlaying,
		Title:     item.Name,
		Artist:    strings.Join(names, ", "),
		Album:     item.Album.Name,
	}

	if len(item.Album.Images) > 0 {
		np.AlbumArt = item.Album.Images[0].URL
	}

	return np
}

// record converts an [oauth2.Token] into a persisted record issued now.
func (s *SpotifyService) record(token *oauth2.Token) *tokens.Record {
	expiresIn := token.ExpiresIn
	if expiresIn == 0 && !token.Expiry.IsZero() {
		expiresIn = int64(time.Until(token.Expiry).Seconds())
	}
	return tokens.NewRecord(token.AccessToken, token.RefreshToken, expiresIn, time.Now())
}

// oauthContext routes the oauth2 transport through the service's bounded client.
func (s *SpotifyService) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// wrapOAuthError wraps a token endpoint failure with the sentinel, including
// the upstream error body when the oauth2 layer captured one.
func wrapOAuthError(sentinel error, err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		return fmt.Errorf("%w: status %d: %s", sentinel, rErr.Response.StatusCode, strings.TrimSpace(string(rErr.Body)))
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
