// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/skillforge/skillforge/internal/config"
)

// Color palette shared by all CLI output, tuned for dark terminals.
const (
	// ColorPrimary is purple - used for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for passing checks.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for errors and failed checks.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for commands and paths.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for command names, code, and interactive elements.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	pathStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	categoryStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	itemNumberStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Icons are rendered on use so a color mode applied at startup reaches them.
func successIcon() string { return SuccessStyle.Render("✓") }
func errorIcon() string { return ErrorStyle.Render("✗") }
func warningIcon() string { return WarningStyle.Render("!") }
func infoIcon() string { return SubtitleStyle.Render("•") }

// applyColorMode switches the default lipgloss renderer for the configured
// color mode. Auto keeps terminal detection.
func applyColorMode(mode config.ColorMode) {
	switch mode {
	case config.ColorNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.TrueColor)
	case config.ColorAuto:
	}
}

// glamourStyle picks the glamour style matching the color mode.
func glamourStyle(mode config.ColorMode) string {
	if mode == config.ColorNever {
		return "notty"
	}
	return "dark"
}
