package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column width for rendered bot messages.
const DefaultWordWrap = 80

// NewRenderer returns a function that renders markdown bot messages using
// glamour with a style matching the terminal background. If the renderer
// cannot be built, messages pass through unchanged.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown, err
		}
		return strings.TrimSpace(out), nil
	}
}
