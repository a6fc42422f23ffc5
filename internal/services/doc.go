// Package services implements the upstream music service client.
//
// [SpotifyService] covers the two halves of the bridge's remote surface: the
// OAuth2 token endpoints (authorization-code exchange and refresh grant) and
// the currently-playing resource, which it projects into the minimal
// [NowPlaying] shape served to overlay clients.
package services
