package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette. Named constants for all ANSI 256 colors used in the CLI;
// never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: emails, product ids, entitlement ids.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for enabled accounts and added entitlements.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for admin flags.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for disabled accounts and removed entitlements.
	ColorRed = lipgloss.Color("196")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome (prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Account status values shown in table output.
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// StatusStyle returns the lipgloss style for an account status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusEnabled:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusDisabled:
		return lipgloss.NewStyle().Foreground(ColorRed)
	default:
		return lipgloss.NewStyle()
	}
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}
