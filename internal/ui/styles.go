// Package ui is the teacher's lipgloss palette, trimmed and exported:
// cmd/linotuidemo's renderer resolves a resolved style.Values (C6's
// hash-consed attribute set) into one of these the same way the teacher's
// file browser resolved a row's rank into a bar color.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mobanhawi/linotype/internal/style"
)

var (
	ColorBg     = lipgloss.AdaptiveColor{Dark: "#0f0f1a", Light: "#f5f5ff"}
	ColorAccent = lipgloss.Color("#9b59b6")
	ColorDim    = lipgloss.Color("#444466")
	ColorWhite  = lipgloss.Color("#e8e8f0")
	ColorGray   = lipgloss.Color("#888899")
	ColorRed    = lipgloss.Color("#e74c3c")
	ColorYellow = lipgloss.Color("#f1c40f")

	// StyleHeader is the top title bar.
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorAccent).
			Padding(0, 1)

	// StyleFooter is the status/key-hint bar.
	StyleFooter = lipgloss.NewStyle().
			Foreground(ColorGray).
			Background(lipgloss.Color("#111122")).
			Padding(0, 1)

	// StyleKey highlights a key-hint's key name.
	StyleKey = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// StyleCursor marks the insertion point.
	StyleCursor = lipgloss.NewStyle().
			Reverse(true)

	// StyleError renders a reported background error.
	StyleError = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	// StyleScanning mirrors the teacher's progress-spinner color. The demo's
	// status bar does not use it; its sync state is plain footer text.
	StyleScanning = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	// StyleDivider draws the header/footer rule.
	StyleDivider = lipgloss.NewStyle().
			Foreground(ColorDim)

	styleDefaultText = lipgloss.NewStyle().Foreground(ColorWhite)
)

// ChunkStyle resolves a display chunk's interned attribute Values into a
// lipgloss.Style, the renderer's equivalent of the teacher's barColor(rank,
// total): both map a small resolved value into a paint instruction.
func ChunkStyle(v style.Values) lipgloss.Style {
	s := styleDefaultText
	if v.Foreground != "" {
		s = s.Foreground(lipgloss.Color(v.Foreground))
	}
	if v.Background != "" {
		s = s.Background(lipgloss.Color(v.Background))
	}
	if v.Bold {
		s = s.Bold(true)
	}
	if v.Italic {
		s = s.Italic(true)
	}
	if v.Underline {
		s = s.Underline(true)
	}
	return s
}
