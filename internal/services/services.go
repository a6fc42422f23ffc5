package services

import (
	"context"

	"github.com/desertthunder/nowbar/internal/tokens"
)

// Service defines the upstream operations the bridge depends on.
type Service interface {
	// AuthURL returns the authorization URL the user is redirected to.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token record issued now.
	Exchange(ctx context.Context, code string) (*tokens.Record, error)

	// Refresh trades a refresh token for a new token record. The returned
	// record's RefreshToken may be empty when the upstream did not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*tokens.Record, error)

	// CurrentlyPlaying fetches the active track and maps it into a projection.
	// An idle player is a valid result, not an error.
	CurrentlyPlaying(ctx context.Context, accessToken string) (*NowPlaying, error)

	// Name returns the name of the service (e.g. "Spotify")
	Name() string
}

// NowPlaying is the projection served to overlay clients. When IsPlaying is
// false every other field is omitted.
type NowPlaying struct {
	IsPlaying bool   `json:"is_playing"`
	Title     string `json:"title,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	AlbumArt  string `json:"album_art,omitempty"`
}
