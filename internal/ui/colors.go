package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#1DB954", "#FFFFFF", "#B3B3B3", "#FF0000", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	accent lipgloss.Style
	title  lipgloss.Style
	artist lipgloss.Style
	err    lipgloss.Style
	help   lipgloss.Style
	card   lipgloss.Style
}

func NewPalette(accent, title, artist, err, help string) *Palette {
	return &Palette{
		accent: NewBold(accent),
		title:  NewBold(title),
		artist: NewStyle(artist),
		err:    NewBold(err),
		help:   NewEm(help),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(accent)).
			Padding(0, 1),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
