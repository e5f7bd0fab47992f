// Package render turns issue markdown into styled terminal output.
package render

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultWidth = 80
	maxWidth     = 110
)

// Issue renders issue markdown for the terminal via glamour. Off-tty, or
// when rendering fails, the raw text comes back unchanged so output
// stays pipeable.
func Issue(text string) string {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return text
	}
	width := defaultWidth
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
		if width > maxWidth {
			width = maxWidth
		}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}
