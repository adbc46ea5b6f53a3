package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/joist/pkg/domain"
)

// GraphOverlay contains editor state to highlight on the graph.
type GraphOverlay struct {
	Selected []string
	Dragged  string
}

// GenerateMermaid produces a Mermaid flowchart of an outline.
// Shapes:
// - Root: ((Circle))
// - Canvas: [[Subroutine]]
// - Default: [Rectangle]
// Linked canvases hang off their owner with a dotted edge labelled by slot.
// Hidden nodes and overlay state are applied as classes.
func GenerateMermaid(outline *domain.OutlineNode, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if outline == nil {
		return sb.String()
	}

	var hidden []string
	var visit func(n *domain.OutlineNode)
	visit = func(n *domain.OutlineNode) {
		safeID := sanitizeMermaidID(n.ID)

		opener, closer := "[", "]"
		switch {
		case n.ID == domain.RootNodeID:
			opener, closer = "((", "))"
		case n.Canvas:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label(n), closer))
		if n.Hidden {
			hidden = append(hidden, safeID)
		}

		for _, child := range n.Children {
			safeTo := sanitizeMermaidID(child.ID)
			if child.Slot != "" {
				slot := strings.ReplaceAll(child.Slot, "\"", "'")
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", safeID, slot, safeTo))
			} else {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, safeTo))
			}
			visit(child)
		}
	}
	visit(outline)

	if len(hidden) == 0 && overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Styles\n")
	if len(hidden) > 0 {
		sb.WriteString("    classDef hidden stroke-dasharray:5 5,opacity:0.5;\n")
		for _, id := range hidden {
			sb.WriteString(fmt.Sprintf("    class %s hidden;\n", id))
		}
	}
	if overlay != nil {
		// Force black text (color:#000) for contrast on light fills in both themes
		sb.WriteString("    classDef selected fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef dragged fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Selected {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s selected;\n", safeID))
			}
		}
		if overlay.Dragged != "" {
			sb.WriteString(fmt.Sprintf("    class %s dragged;\n", sanitizeMermaidID(overlay.Dragged)))
		}
	}

	return sb.String()
}

func label(n *domain.OutlineNode) string {
	name := n.DisplayName
	if name == "" {
		name = n.Type
	}
	text := n.ID
	if name != "" && name != n.ID {
		text = fmt.Sprintf("%s <br/> %s", n.ID, name)
	}
	return strings.ReplaceAll(text, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
