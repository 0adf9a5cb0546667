package tui

import (
	"time"

	"github.com/Veraticus/decision-queue/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Now      time.Time
	Theme    themes.Theme
	Title    string
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Title:    "Decision queue",
		Width:    80,
		Height:   24,
		ShowHelp: true,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithNow sets the evaluation time used for ages.
func WithNow(now time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithHelp toggles the help footer.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
