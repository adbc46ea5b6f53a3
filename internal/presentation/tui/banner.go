package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the joist ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	// Warm gradient, timber to brass
	lines := []struct {
		text  string
		color string
	}{
		{"       _       _     _   ", "#b45309"},
		{"      (_)___  (_)___| |_ ", "#d97706"},
		{"      | / _ \\ | / __| __|", "#f59e0b"},
		{"      | | (_) || \\__ \\ |_ ", "#fbbf24"},
		{"     _/ |\\___/ |_|___/\\__|", "#fcd34d"},
		{"    |__/                 ", "#fde68a"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("    v"+version).Faint())
	}
	fmt.Fprintln(w)
}
