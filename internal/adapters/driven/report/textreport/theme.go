package textreport

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

// Theme defines the colour palette of the report.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates aligned content.
	Success lipgloss.Color

	// Warning indicates content that needs review.
	Warning lipgloss.Color

	// Error indicates missing or risky content.
	Error lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	// Title style for the report header.
	Title lipgloss.Style

	// Label style for row labels.
	Label lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Good, Fair and Poor colour the quality index.
	Good lipgloss.Style
	Fair lipgloss.Style
	Poor lipgloss.Style

	// Severity styles keyed by severity.
	Severity map[domain.Severity]lipgloss.Style
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

		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Good: lipgloss.NewStyle().Bold(true).Foreground(theme.Success),
		Fair: lipgloss.NewStyle().Bold(true).Foreground(theme.Warning),
		Poor: lipgloss.NewStyle().Bold(true).Foreground(theme.Error),

		Severity: map[domain.Severity]lipgloss.Style{
			domain.SeverityInfo:     lipgloss.NewStyle().Foreground(theme.Muted),
			domain.SeverityMinor:    lipgloss.NewStyle().Foreground(theme.Warning),
			domain.SeverityMajor:    lipgloss.NewStyle().Bold(true).Foreground(theme.Warning),
			domain.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(theme.Error),
		},
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Title: plain,
		Label: plain,
		Muted: plain,
		Good:  plain,
		Fair:  plain,
		Poor:  plain,
		Severity: map[domain.Severity]lipgloss.Style{
			domain.SeverityInfo:     plain,
			domain.SeverityMinor:    plain,
			domain.SeverityMajor:    plain,
			domain.SeverityCritical: plain,
		},
	}
}

// severity returns the style for s, falling back to Muted.
func (s *Styles) severity(sev domain.Severity) lipgloss.Style {
	if st, ok := s.Severity[sev]; ok {
		return st
	}
	return s.Muted
}
