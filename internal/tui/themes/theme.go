// Package themes holds the color schemes of the ledger browser.
package themes

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	StatusError lipgloss.Style
	StatusInfo  lipgloss.Style
	Help        lipgloss.Style
	Box         lipgloss.Style
	Primary     lipgloss.Color
	Foreground  lipgloss.Color
	Background  lipgloss.Color
	Border      lipgloss.Color
	Muted       lipgloss.Color
	Error       lipgloss.Color
	Info        lipgloss.Color
}

func newTheme(primary, foreground, background, border, muted, errColor, info lipgloss.Color) Theme {
	return Theme{
		Primary:    primary,
		Foreground: foreground,
		Background: background,
		Border:     border,
		Muted:      muted,
		Error:      errColor,
		Info:       info,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginBottom(1),
		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(background).
			Background(primary).
			Padding(0, 1),
		TabInactive: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		StatusError: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(info),
		Help: lipgloss.NewStyle().
			Foreground(muted),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border),
	}
}

// Default is the default theme.
var Default = newTheme(
	lipgloss.Color("#2e8b57"),
	lipgloss.Color("#fafafa"),
	lipgloss.Color("#1a1a1a"),
	lipgloss.Color("#404040"),
	lipgloss.Color("#737373"),
	lipgloss.Color("#ef4444"),
	lipgloss.Color("#3b82f6"),
)

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(
	lipgloss.Color("#a6e3a1"),
	lipgloss.Color("#cdd6f4"),
	lipgloss.Color("#1e1e2e"),
	lipgloss.Color("#45475a"),
	lipgloss.Color("#6c7086"),
	lipgloss.Color("#f38ba8"),
	lipgloss.Color("#89dceb"),
)

// ByName returns the theme called name ("default" or "mocha").
func ByName(name string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return Default, true
	case "mocha", "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha, true
	}
	return Theme{}, false
}

// TableStyles returns bubbles/table styles matching t.
func (t Theme) TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(t.Background).
		Background(t.Primary).
		Bold(false)
	return s
}
