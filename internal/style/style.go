// Package style defines the shared lipgloss styles for docket output.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Dim     = lipgloss.NewStyle().Faint(true)
	Heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	Done    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Error   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

// Configure applies a color mode from config: "always", "never", or
// "auto". Auto respects NO_COLOR and otherwise leaves terminal
// detection to lipgloss.
func Configure(mode string) {
	switch mode {
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	default:
		if os.Getenv("NO_COLOR") != "" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	}
}
