// Package web embeds the overlay widget served at the server root.
//
// The widget is a static page meant to be added as a browser source in OBS:
// it polls /now-playing every 3 seconds, hides itself when nothing is
// playing, and scrolls titles that overflow the card.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler serves the embedded widget assets.
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		// The static directory is embedded at compile time.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
