package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowbar/internal/services"
)

// pollInterval matches the browser widget's cadence.
const pollInterval = 3 * time.Second

// FetchFunc retrieves the current projection. The widget stays agnostic of
// whether it talks to the service directly or through a running bridge.
type FetchFunc func(ctx context.Context) (*services.NowPlaying, error)

type tickMsg struct{}

// nowPlayingMsg carries a completed fetch into the update loop.
type nowPlayingMsg struct {
	np  *services.NowPlaying
	err error
}

// Model represents the widget state.
type Model struct {
	ctx     context.Context
	fetch   FetchFunc
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	np      *services.NowPlaying
	err     error
	loaded  bool
	width   int
}

// NewModel creates a widget model polling through fetch.
func NewModel(ctx context.Context, fetch FetchFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.accent

	return Model{
		ctx:     ctx,
		fetch:   fetch,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
		width:   60,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			return m, m.fetchCmd()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case nowPlayingMsg:
		m.loaded = true
		m.np = msg.np
		m.err = msg.err
		return m, scheduleTick()
	case tickMsg:
		return m, m.fetchCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var body string

	switch {
	case !m.loaded:
		body = m.spinner.View() + " fetching current track..."
	case m.err != nil:
		body = styles.err.Render("✗ " + m.err.Error())
	case m.np == nil || !m.np.IsPlaying:
		body = styles.artist.Render("nothing playing")
	default:
		width := m.width - 6
		if width < 10 {
			width = 10
		}
		body = styles.title.Render(truncate(m.np.Title, width)) + "\n" +
			styles.artist.Render(truncate(m.np.Artist, width))
		if m.np.Album != "" {
			body += "\n" + styles.help.Render(truncate(m.np.Album, width))
		}
	}

	return styles.card.Render(body) + "\n" + m.help.View(m.keys) + "\n"
}

func (m Model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		np, err := m.fetch(m.ctx)
		return nowPlayingMsg{np: np, err: err}
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// truncate cuts text to max runes, marking the overflow with an ellipsis.
// The terminal card has no marquee, so overflow is clipped instead.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
