package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	fileStyle  = lipgloss.NewStyle().Bold(true)
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	countStyle = lipgloss.NewStyle().Faint(true)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// render applies s unless color output is disabled.
func render(s lipgloss.Style, text string) string {
	if noColorFlag {
		return text
	}
	return s.Render(text)
}

// pad fills text with trailing spaces up to width cells.
func pad(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}
