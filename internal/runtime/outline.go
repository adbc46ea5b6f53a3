package runtime

import "github.com/aretw0/joist/pkg/domain"

// Outline returns the subtree of id as nested nodes. Ordered children come
// first, then linked canvases by slot name.
func (t *Tree) Outline(id string) (*domain.OutlineNode, error) {
	root, err := t.get(id)
	if err != nil {
		return nil, err
	}

	out := outlineOf(root)
	type item struct {
		node    *domain.Node
		outline *domain.OutlineNode
	}
	queue := []item{{node: root, outline: out}}
	seen := map[string]bool{id: true}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		kids := append(append([]string{}, it.node.Data.Nodes...), linkedIDs(it.node)...)
		for _, kid := range kids {
			n, ok := t.nodes[kid]
			if !ok || seen[kid] {
				continue
			}
			seen[kid] = true
			o := outlineOf(n)
			it.outline.Children = append(it.outline.Children, o)
			queue = append(queue, item{node: n, outline: o})
		}
	}
	return out, nil
}

func outlineOf(n *domain.Node) *domain.OutlineNode {
	o := &domain.OutlineNode{
		ID:          n.ID,
		Type:        n.Data.Type,
		DisplayName: n.Data.DisplayName,
		Canvas:      n.IsCanvas(),
		Hidden:      n.Data.Hidden,
	}
	if c, ok := n.Canvas(); ok {
		o.Slot = c.Slot
	}
	return o
}
