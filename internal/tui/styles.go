package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"expensetracker/internal/chart"
)

var (
	colorAccent = lipgloss.Color("#3b82f6")
	colorMuted  = lipgloss.Color("#64748b")
	colorDanger = lipgloss.Color("#ef4444")
	colorOK     = lipgloss.Color("#10b981")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headingStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorDanger)
	statusStyle   = lipgloss.NewStyle().Foreground(colorOK)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	editingStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#f59e0b"))
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1)
)

// categoryStyle colors text with the chart palette entry for index i.
func categoryStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(chart.Palette[i%len(chart.Palette)]))
}

// bar renders a horizontal bar of width cells filled to pct (0..1).
func bar(pct float64, width int, style lipgloss.Style) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	filled := int(pct*float64(width) + 0.5)
	if pct > 0 && filled == 0 {
		filled = 1
	}
	return style.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}
