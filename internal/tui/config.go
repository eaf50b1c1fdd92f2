package tui

import (
	"github.com/Veraticus/dealflow/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Width    int
	Height   int
	PerPage  int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:   themes.Default,
		Width:   100,
		Height:  30,
		PerPage: 10,
	}
}

// WithTheme sets the visual theme.
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

// WithPerPage sets how many deals the deal table shows per page.
func WithPerPage(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PerPage = n
		}
	}
}

// WithHelp starts the TUI with the full help visible.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
