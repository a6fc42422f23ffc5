package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/nowbar/internal/shared"
)

func testCredentials(overrides map[string]string) map[string]string {
	credentials := map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}
	for k, v := range overrides {
		credentials[k] = v
	}
	return credentials
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials(nil))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "s"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "c"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials(nil))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.RedirectURI() != DefaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", srv.RedirectURI())
			}
		})
	})

	t.Run("AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials(nil))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.AuthURL("test_state")
		for _, want := range []string{
			"accounts.spotify.com",
			"response_type=code",
			"test_client_id",
			"test_state",
			"user-read-currently-playing",
		} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q, got %s", want, authURL)
			}
		}
	})

	t.Run("Exchange", func(t *testing.T) {
		t.Run("builds a record issued now", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Errorf("failed to parse form: %v", err)
				}
				if got := r.FormValue("grant_type"); got != "authorization_code" {
					t.Errorf("expected authorization_code grant, got %s", got)
				}
				if _, _, ok := r.BasicAuth(); !ok {
					t.Error("expected client credentials as HTTP Basic auth")
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"access_token":"X","refresh_token":"Y","expires_in":3600,"token_type":"Bearer"}`))
			}))
			defer ts.Close()

			srv, err := NewSpotifyService(testCredentials(map[string]string{"token_url": ts.URL}))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			before := time.Now()
			record, err := srv.Exchange(ctx, "abc123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if record.AccessToken != "X" {
				t.Errorf("expected access token X, got %s", record.AccessToken)
			}
			if record.RefreshToken != "Y" {
				t.Errorf("expected refresh token Y, got %s", record.RefreshToken)
			}
			if record.ExpiresIn != 3600 {
				t.Errorf("expected expires_in 3600, got %d", record.ExpiresIn)
			}
			if issued := time.UnixMilli(record.IssuedAt); issued.Before(before.Add(-time.Second)) || issued.After(time.Now().Add(time.Second)) {
				t.Errorf("expected issued_at near now, got %v", issued)
			}
		})

		t.Run("non-2xx fails with the upstream body", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant"}`))
			}))
			defer ts.Close()

			srv, err := NewSpotifyService(testCredentials(map[string]string{"token_url": ts.URL}))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			_, err = srv.Exchange(ctx, "bad-code")
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
			if err == nil || !strings.Contains(err.Error(), "invalid_grant") {
				t.Errorf("expected upstream body in error, got %v", err)
			}
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("reports absent refresh token as empty", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Errorf("failed to parse form: %v", err)
				}
				if got := r.FormValue("grant_type"); got != "refresh_token" {
					t.Errorf("expected refresh_token grant, got %s", got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"access_token":"new-access","expires_in":3600,"token_type":"Bearer"}`))
			}))
			defer ts.Close()

			srv, err := NewSpotifyService(testCredentials(map[string]string{"token_url": ts.URL}))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			record, err := srv.Refresh(ctx, "seed-refresh")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if record.AccessToken != "new-access" {
				t.Errorf("expected new access token, got %s", record.AccessToken)
			}
			if record.RefreshToken != "" {
				t.Errorf("expected empty refresh token when upstream omits it, got %s", record.RefreshToken)
			}
		})

		t.Run("surfaces a rotated refresh token", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"access_token":"new-access","refresh_token":"rotated","expires_in":3600,"token_type":"Bearer"}`))
			}))
			defer ts.Close()

			srv, err := NewSpotifyService(testCredentials(map[string]string{"token_url": ts.URL}))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			record, err := srv.Refresh(ctx, "seed-refresh")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if record.RefreshToken != "rotated" {
				t.Errorf("expected rotated refresh token, got %s", record.RefreshToken)
			}
		})

		t.Run("empty refresh token fails fast", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials(nil))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			if _, err := srv.Refresh(ctx, ""); !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
		})

		t.Run("rejected grant fails with ErrRefreshFailed", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant"}`))
			}))
			defer ts.Close()

			srv, err := NewSpotifyService(testCredentials(map[string]string{"token_url": ts.URL}))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			if _, err := srv.Refresh(ctx, "revoked"); !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
		})
	})

	t.Run("CurrentlyPlaying", func(t *testing.T) {
		newService := func(t *testing.T, handler http.HandlerFunc) *SpotifyService {
			t.Helper()
			ts := httptest.NewServer(handler)
			t.Cleanup(ts.Close)

			srv, err := NewSpotifyService(testCredentials(map[string]string{"base_url": ts.URL}))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			return srv
		}

		t.Run("204 means not playing", func(t *testing.T) {
			srv := newService(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
					t.Errorf("expected bearer auth, got %q", got)
				}
				w.WriteHeader(http.StatusNoContent)
			})

			np, err := srv.CurrentlyPlaying(ctx, "token-abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if np.IsPlaying {
				t.Error("expected is_playing false")
			}
			if np.Title != "" || np.Artist != "" || np.Album != "" || np.AlbumArt != "" {
				t.Errorf("expected no track fields when idle, got %+v", np)
			}
		})

		t.Run("null item means not playing", func(t *testing.T) {
			srv := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"is_playing":false,"item":null}`))
			})

			np, err := srv.CurrentlyPlaying(ctx, "token-abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if np.IsPlaying || np.Title != "" {
				t.Errorf("expected empty idle projection, got %+v", np)
			}
		})

		t.Run("empty body means not playing", func(t *testing.T) {
			srv := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			np, err := srv.CurrentlyPlaying(ctx, "token-abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if np.IsPlaying {
				t.Error("expected is_playing false for empty body")
			}
		})

		t.Run("maps a playing track", func(t *testing.T) {
			srv := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{
					"is_playing": true,
					"item": {
						"name": "Song Title",
						"artists": [{"name":"A"},{"name":"B"}],
						"album": {
							"name": "Album Name",
							"images": [{"url":"https://img.example/large.jpg"},{"url":"https://img.example/small.jpg"}]
						}
					}
				}`))
			})

			np, err := srv.CurrentlyPlaying(ctx, "token-abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !np.IsPlaying {
				t.Error("expected is_playing true")
			}
			if np.Title != "Song Title" {
				t.Errorf("expected title mapped, got %s", np.Title)
			}
			if np.Artist != "A, B" {
				t.Errorf("expected artists joined in order, got %q", np.Artist)
			}
			if np.Album != "Album Name" {
				t.Errorf("expected album mapped, got %s", np.Album)
			}
			if np.AlbumArt != "https://img.example/large.jpg" {
				t.Errorf("expected first image URL, got %s", np.AlbumArt)
			}
		})

		t.Run("album without images leaves album_art absent", func(t *testing.T) {
			srv := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"is_playing":true,"item":{"name":"T","artists":[{"name":"A"}],"album":{"name":"Al","images":[]}}}`))
			})

			np, err := srv.CurrentlyPlaying(ctx, "token-abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if np.AlbumArt != "" {
				t.Errorf("expected empty album_art, got %q", np.AlbumArt)
			}

			data, err := shared.MarshalJSON(np, false)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if strings.Contains(string(data), "album_art") {
				t.Errorf("expected album_art omitted from JSON, got %s", data)
			}
		})

		t.Run("upstream failure is an error, never idle", func(t *testing.T) {
			srv := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("upstream exploded"))
			})

			np, err := srv.CurrentlyPlaying(ctx, "token-abc")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if np != nil {
				t.Errorf("expected nil projection on failure, got %+v", np)
			}
		})
	})
}
