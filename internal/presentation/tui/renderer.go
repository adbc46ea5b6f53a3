package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// Output that is not a terminal gets the plain "notty" style.
func NewRenderer() func(string) (string, error) {
	style := glamour.WithAutoStyle()
	if !IsTerminal(os.Stdout) {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// OutlineMarkdown renders an outline as a nested markdown list.
func OutlineMarkdown(title string, outline *domain.OutlineNode) string {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	if outline == nil {
		return sb.String()
	}

	outline.Walk(func(n *domain.OutlineNode, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString("- ")
		if n.Slot != "" {
			fmt.Fprintf(&sb, "_%s_ → ", n.Slot)
		}
		name := n.DisplayName
		if name == "" {
			name = n.Type
		}
		fmt.Fprintf(&sb, "**%s** `%s`", name, n.ID)
		var tags []string
		if n.Canvas {
			tags = append(tags, "canvas")
		}
		if n.Hidden {
			tags = append(tags, "hidden")
		}
		if len(tags) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(tags, ", "))
		}
		sb.WriteString("\n")
	})
	return sb.String()
}
