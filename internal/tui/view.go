package tui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	closedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	openStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barFullCh   = "█"
	barEmptyCh  = "░"
	barWidth    = 20
)

// View renders the current rows as a table with a fill bar per
// channel, one screen refresh per tick.
func (m *Model) View() tea.View {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("chanx-driver watch — uptime %s", time.Since(m.started).Round(time.Second))))
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-20s %-8s %-8s %-6s %-6s  %s", "CHANNEL", "ITEMS", "SLOTS", "SUBS", "STATE", "FILL")))
	b.WriteString("\n")

	for _, r := range m.rows {
		state := openStyle.Render("open")
		if r.Closed {
			state = closedStyle.Render("closed")
		}
		b.WriteString(fmt.Sprintf(
			"%-20s %-8d %-8d %-6d %-14s %s\n",
			nameStyle.Render(r.Name),
			r.ItemCount,
			r.SlotCount,
			r.Subscribers,
			state,
			fillBar(r.ItemCount, r.Capacity),
		))
	}

	if m.quitting {
		b.WriteString("\nbye.\n")
	} else {
		b.WriteString("\n(q to quit)\n")
	}

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

func fillBar(items, capacity int) string {
	if capacity <= 0 {
		return ""
	}
	filled := items * barWidth / capacity
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat(barFullCh, filled) + strings.Repeat(barEmptyCh, barWidth-filled)
}
