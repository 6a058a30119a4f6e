package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colour palette of the terminal report.
type Theme struct {
	// Primary colours topic headers.
	Primary lipgloss.Color

	// Secondary colours keyword lists.
	Secondary lipgloss.Color

	// Muted is for ids, counts and other supporting text.
	Muted lipgloss.Color

	// Success marks saved runs and written files.
	Success lipgloss.Color

	// Warning marks skipped records and outliers.
	Warning lipgloss.Color

	// Border frames the run summary.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#2E7D32"), // Green
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Light green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Border:    lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains the lipgloss styles used by the report.
type Styles struct {
	Title    lipgloss.Style
	Topic    lipgloss.Style
	Keywords lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Summary  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Topic: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Keywords: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Summary: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}
