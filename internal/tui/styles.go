package tui

import (
	"ai-nutricare/internal/dashboard"

	"github.com/charmbracelet/lipgloss"
)

var (
	teal    = lipgloss.Color("#06B6D4")
	green   = lipgloss.Color("#16A34A")
	amber   = lipgloss.Color("#F59E0B")
	red     = lipgloss.Color("#E53935")
	subtle  = lipgloss.Color("#94A3B8")
	outline = lipgloss.Color("#334155")
)

type styles struct {
	Brand    lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
	Active   lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Day      lipgloss.Style
	Help     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Brand:    lipgloss.NewStyle().Bold(true).Foreground(teal),
		Title:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(subtle),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(red),
		Status:   lipgloss.NewStyle().Foreground(green),
		Active:   lipgloss.NewStyle().Bold(true).Foreground(teal),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(teal),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(outline).Padding(0, 1),
		Day:      lipgloss.NewStyle().Bold(true).Foreground(green),
		Help:     lipgloss.NewStyle().Foreground(subtle).Italic(true),
	}
}

func tierStyle(t dashboard.Tier) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch t {
	case dashboard.TierHigh:
		return s.Foreground(red)
	case dashboard.TierModerate:
		return s.Foreground(amber)
	default:
		return s.Foreground(green)
	}
}
