package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
	"github.com/aretw0/joist/pkg/schema"
)

// ValidateDocument checks the structural invariants of a serialized document:
// a single parentless root canvas, parent and child links that agree, children
// only on canvases, linked slots pointing at canvases, no cycles and no orphans.
// When resolver is not nil every node type must resolve as well.
func ValidateDocument(doc domain.SerializedNodes, resolver ports.Resolver) error {
	var errors []string

	root, ok := doc[domain.RootNodeID]
	if !ok {
		return domain.NewError(domain.KindInvalidTree, fmt.Sprintf("root node '%s' not found", domain.RootNodeID))
	}
	if !root.IsCanvas {
		errors = append(errors, fmt.Sprintf("Root '%s' is not a canvas", domain.RootNodeID))
	}
	if root.Parent != "" {
		errors = append(errors, fmt.Sprintf("Root '%s' has a parent '%s'", domain.RootNodeID, root.Parent))
	}

	// Crawl from the root over both relations.
	visited := make(map[string]bool)
	queue := []string{domain.RootNodeID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			errors = append(errors, fmt.Sprintf("Node '%s' is reachable more than once", currentID))
			continue
		}
		visited[currentID] = true

		node, ok := doc[currentID]
		if !ok {
			errors = append(errors, fmt.Sprintf("Missing node: '%s'", currentID))
			continue
		}

		if resolver != nil {
			comp, ok := resolver.Resolve(node.Type)
			if !ok {
				errors = append(errors, fmt.Sprintf("Node '%s' has unresolvable type '%s'", currentID, node.Type))
			} else if err := schema.Validate(comp.PropTypes, node.Props); err != nil {
				errors = append(errors, fmt.Sprintf("Node '%s' has invalid props: %v", currentID, err))
			}
		}

		if !node.IsCanvas && len(node.Nodes) > 0 {
			errors = append(errors, fmt.Sprintf("Node '%s' has children but is not a canvas", currentID))
		}

		for i, childID := range node.Nodes {
			if slices.Index(node.Nodes, childID) != i {
				errors = append(errors, fmt.Sprintf("Canvas '%s' lists '%s' twice", currentID, childID))
				continue
			}
			if child, ok := doc[childID]; ok && child.Parent != currentID {
				errors = append(errors, fmt.Sprintf("Node '%s' is listed by '%s' but its parent is '%s'", childID, currentID, child.Parent))
			}
			queue = append(queue, childID)
		}

		for _, slot := range sortedSlots(node.LinkedNodes) {
			linkedID := node.LinkedNodes[slot]
			if linked, ok := doc[linkedID]; ok {
				if !linked.IsCanvas {
					errors = append(errors, fmt.Sprintf("Slot '%s' of '%s' links '%s' which is not a canvas", slot, currentID, linkedID))
				}
				if linked.Parent != currentID {
					errors = append(errors, fmt.Sprintf("Node '%s' is linked by '%s' but its parent is '%s'", linkedID, currentID, linked.Parent))
				}
			}
			queue = append(queue, linkedID)
		}
	}

	for _, id := range doc.IDs() {
		if !visited[id] {
			errors = append(errors, fmt.Sprintf("Unreachable node: '%s' (parent '%s')", id, doc[id].Parent))
		}
	}

	if len(errors) > 0 {
		return domain.NewError(domain.KindInvalidTree, fmt.Sprintf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- ")))
	}

	return nil
}

func sortedSlots(linked map[string]string) []string {
	slots := make([]string, 0, len(linked))
	for slot := range linked {
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	return slots
}
