package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for the captiond TUI
var (
	ColorPrimary   = lipgloss.Color("#0EA5E9") // Sky blue - main accent
	ColorSecondary = lipgloss.Color("#8B5CF6") // Violet - secondary accent

	ColorSuccess = lipgloss.Color("#22C55E") // Green
	ColorError   = lipgloss.Color("#EF4444") // Red

	ColorText   = lipgloss.Color("#F8FAFC") // Bright white
	ColorMuted  = lipgloss.Color("#94A3B8") // Slate gray
	ColorSubtle = lipgloss.Color("#64748B") // Darker gray
)

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

const logoASCII = `
                 _   _                 _
  ___ __ _ _ __ | |_(_) ___  _ __   __| |
 / __/ _` + "`" + ` | '_ \| __| |/ _ \| '_ \ / _` + "`" + ` |
| (_| (_| | |_) | |_| | (_) | | | | (_| |
 \___\__,_| .__/ \__|_|\___/|_| |_|\__,_|
          |_|`

// Logo returns the captiond ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
