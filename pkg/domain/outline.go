package domain

// OutlineNode is a nested view of a subtree, used by renderers that prefer
// a tree over the flat id map.
type OutlineNode struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	DisplayName string `json:"displayName,omitempty"`
	Canvas      bool   `json:"canvas,omitempty"`
	// Slot is set on linked canvases.
	Slot     string         `json:"slot,omitempty"`
	Hidden   bool           `json:"hidden,omitempty"`
	Children []*OutlineNode `json:"children,omitempty"`
}

// Walk visits o and its descendants depth first. depth is 0 for o.
func (o *OutlineNode) Walk(visit func(n *OutlineNode, depth int)) {
	type frame struct {
		n     *OutlineNode
		depth int
	}
	stack := []frame{{n: o}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(f.n, f.depth)
		for i := len(f.n.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{n: f.n.Children[i], depth: f.depth + 1})
		}
	}
}
