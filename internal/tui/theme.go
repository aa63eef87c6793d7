package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style of the dashboard.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Income   lipgloss.Style
	Expense  lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Panel    lipgloss.Style
	Primary  lipgloss.Color
	Border   lipgloss.Color
}

// DefaultTheme is the default dashboard theme.
func DefaultTheme() Theme {
	primary := lipgloss.Color("#2EC4B6")
	border := lipgloss.Color("#404040")

	return Theme{
		Primary: primary,
		Border:  border,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a3a3a3")),
		Label: lipgloss.NewStyle().
			Bold(true).
			Width(10),
		Income: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10b981")),
		Expense: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ef4444")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#737373")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ef4444")).
			Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}
