package teaui

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Panel     lipgloss.Style
	Title     lipgloss.Style
	Buy       lipgloss.Style
	Sell      lipgloss.Style
	Help      lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("244"))
	return Theme{
		Tab: tab,
		ActiveTab: tab.
			Foreground(lipgloss.Color("212")).
			Bold(true).
			Underline(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		Title:  lipgloss.NewStyle().Bold(true),
		Buy:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Sell:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("218")),
	}
}
