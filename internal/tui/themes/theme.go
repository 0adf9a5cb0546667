// Package themes defines color themes for the dashboard viewer.
package themes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/decision-queue/internal/model"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Bold     lipgloss.Style
	Selected lipgloss.Style
	Chip     lipgloss.Style
	CTA      lipgloss.Style
	Box      lipgloss.Style
	Primary  lipgloss.Color
	Muted    lipgloss.Color
	Border   lipgloss.Color
	Red      lipgloss.Color
	Orange   lipgloss.Color
	Blue     lipgloss.Color
}

// Severity returns the style for a severity marker.
func (t Theme) Severity(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityRed:
		return lipgloss.NewStyle().Foreground(t.Red)
	case model.SeverityOrange:
		return lipgloss.NewStyle().Foreground(t.Orange)
	case model.SeverityBlue:
		return lipgloss.NewStyle().Foreground(t.Blue)
	default:
		return lipgloss.NewStyle().Foreground(t.Muted)
	}
}

// Default is the default theme.
var Default = newTheme(
	lipgloss.Color("#7c3aed"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#f59e0b"),
	lipgloss.Color("#3b82f6"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(
	lipgloss.Color("#cba6f7"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#fab387"),
	lipgloss.Color("#89b4fa"),
)

func newTheme(primary, muted, border, red, orange, blue lipgloss.Color) Theme {
	return Theme{
		Primary: primary,
		Muted:   muted,
		Border:  border,
		Red:     red,
		Orange:  orange,
		Blue:    blue,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(muted),
		Normal: lipgloss.NewStyle(),
		Bold: lipgloss.NewStyle().
			Bold(true),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),
		Chip: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), false, true).
			BorderForeground(border),
		CTA: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(primary),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}

// GetTheme returns a theme by name, falling back to Default.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
