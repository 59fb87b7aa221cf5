package tui

import (
	"time"

	"github.com/Veraticus/checkbook/internal/service"
	"github.com/Veraticus/checkbook/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme       themes.Theme
	Storage     service.Storage
	Width       int
	Height      int
	LoadTimeout time.Duration
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:       themes.Default,
		Width:       100,
		Height:      24,
		LoadTimeout: 30 * time.Second,
	}
}

// WithStorage sets the store the browser reads from.
func WithStorage(storage service.Storage) Option {
	return func(c *Config) {
		c.Storage = storage
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
