// Package tui implements chanx-driver's "watch" dashboard: a live
// terminal view of every channel a running scenario owns, built on
// bubbletea/v2 and lipgloss/v2 the way
// cmd/ansi_video_renderer/main.go drives its own render loop —
// poll-on-tick, re-render, no persistent render thread of its own.
package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	clog "charm.land/log/v2"

	"github.com/chanlab/chanx"
)

// Row is one channel's current stats, sampled for display.
type Row struct {
	Name string
	chanx.Stats
}

// Source supplies the current Rows to display; the driver implements
// this over its live set of named channels.
type Source interface {
	Snapshot() []Row
}

// tickMsg triggers the next poll of Source.
type tickMsg struct{}

// Model is the bubbletea model backing the watch dashboard. Debug
// output goes through clog rather than stdout/stderr, since the
// alt-screen render owns the terminal for the program's lifetime.
type Model struct {
	source   Source
	rows     []Row
	interval time.Duration
	started  time.Time
	quitting bool
	debug    *clog.Logger
}

// New builds a Model that polls source every interval. debug may be
// nil, in which case tick/quit events are not logged.
func New(source Source, interval time.Duration, debug *clog.Logger) *Model {
	return &Model{source: source, interval: interval, started: time.Now(), debug: debug}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Init samples once immediately so the first frame is never empty.
func (m *Model) Init() tea.Cmd {
	m.rows = m.source.Snapshot()
	return m.tick()
}

// Update advances the dashboard on each tick and handles quit keys.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			if m.debug != nil {
				m.debug.Info("quit requested", "key", msg.String())
			}
			return m, tea.Quit
		}
	case tickMsg:
		m.rows = m.source.Snapshot()
		if m.debug != nil {
			m.debug.Debug("snapshot refreshed", "rows", len(m.rows))
		}
		return m, m.tick()
	}
	return m, nil
}
