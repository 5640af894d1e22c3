package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the leadchat banner and a tagline to w.
func PrintBanner(w io.Writer, tagline string) {
	out := termenv.NewOutput(w)
	lines := []struct{ text, color string }{
		{" _                _      _           _   ", "#818cf8"},
		{"| | ___  __ _  __| | ___| |__   __ _| |_ ", "#a78bfa"},
		{"| |/ _ \\/ _` |/ _` |/ __| '_ \\ / _` | __|", "#c084fc"},
		{"| |  __/ (_| | (_| | (__| | | | (_| | |_ ", "#e879f9"},
		{"|_|\\___|\\__,_|\\__,_|\\___|_| |_|\\__,_|\\__|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if tagline != "" {
		fmt.Fprintln(w, out.String(tagline).Faint())
	}
	fmt.Fprintln(w)
}
