// Package ui renders search results, records, and batch reports for the
// terminal. Styling degrades to plain text under NO_COLOR or dumb
// terminals.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	ColorSuccess = lipgloss.Color("#22c55e")
	ColorError   = lipgloss.Color("#ef4444")
	ColorWarning = lipgloss.Color("#eab308")
	ColorInfo    = lipgloss.Color("#06b6d4")
	ColorMuted   = lipgloss.Color("#6b7280")
	ColorAccent  = lipgloss.Color("#8b5cf6")
)

var (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolBullet  = "•"
)

var (
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	langStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	scoreStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	descStyle = lipgloss.NewStyle()

	exampleDescStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	codeStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorInfo)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	successStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)
)

func init() {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
