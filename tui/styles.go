package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for the terminal interface.
type Styles struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	On       lipgloss.Style
	Off      lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Info     lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),
		Section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1),
		Value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		On: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Off: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true),
	}
}
