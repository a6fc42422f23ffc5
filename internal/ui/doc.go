// Package ui implements the terminal now-playing widget, a bubbletea program
// mirroring the browser overlay: it polls the projection every three seconds
// and renders the current track as a small card.
package ui
