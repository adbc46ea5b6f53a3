package domain

import (
	"maps"
	"slices"
)

// Props is the JSON compatible property record of a node.
type Props map[string]any

// Clone returns a deep copy of the record. Nested maps and slices are copied too.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Props:
		return t.Clone()
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}

// Layout is the dominant axis children of a canvas flow along.
type Layout string

const (
	LayoutVertical   Layout = "vertical"
	LayoutHorizontal Layout = "horizontal"
)

// Payload classifies what a node is. It is resolved once when the node is built
// and is either a CanvasPayload or a LeafPayload.
type Payload interface {
	isPayload()
}

// CanvasPayload marks a node as a drop zone owning an ordered child list.
type CanvasPayload struct {
	// Slot is the name under which the canvas is linked into a non-canvas parent.
	// Empty for canvases that live in an ordered child list.
	Slot   string `json:"slot,omitempty"`
	Layout Layout `json:"layout,omitempty"`
}

// LeafPayload marks a node that renders a component and owns no ordered children.
type LeafPayload struct {
	Component string `json:"component"`
}

func (CanvasPayload) isPayload() {}
func (LeafPayload) isPayload()   {}

// Query is the read-only view of the tree handed to custom rules.
type Query interface {
	// Node returns a copy of the node with the given id.
	Node(id string) (*Node, bool)
	// Ancestors returns the parent chain of id, nearest first.
	Ancestors(id string, deep bool) []string
}

// Rules are per-node predicates consulted by drag and drop validation.
// A nil predicate accepts.
type Rules struct {
	// CanDrag decides whether self may be picked up.
	CanDrag func(self *Node, q Query) bool `json:"-"`
	// CanDrop decides whether self may be dropped into destination.
	CanDrop func(destination, self *Node, q Query) bool `json:"-"`
	// CanMoveIn decides whether the canvas self accepts incoming.
	CanMoveIn func(incoming, self *Node, q Query) bool `json:"-"`
	// CanMoveOut decides whether the canvas self lets outgoing leave.
	CanMoveOut func(outgoing, self *Node, q Query) bool `json:"-"`
}

// Ref holds the back-reference to the mounted element. It belongs to the
// rendering layer; the engine only checks whether it is set.
type Ref struct {
	DOM any `json:"-"`
}

// Mounted reports whether the rendering layer attached an element.
func (r Ref) Mounted() bool {
	return r.DOM != nil
}

// NodeEvents are the per-node event flags mirrored from EventsState.
type NodeEvents struct {
	Selected bool `json:"selected"`
	Hovered  bool `json:"hovered"`
	Dragged  bool `json:"dragged"`
}

// NodeData is the structural and presentational record of a node.
type NodeData struct {
	// Type is the resolvable component name persisted with the document.
	Type        string  `json:"type"`
	DisplayName string  `json:"displayName,omitempty"`
	Payload     Payload `json:"payload"`
	Props       Props   `json:"props"`

	// Nodes is the ordered child list. Non-nil iff the node is a canvas.
	Nodes []string `json:"nodes,omitempty"`

	Parent        string `json:"parent,omitempty"`
	ClosestParent string `json:"closestParent,omitempty"`

	// LinkedNodes maps slot names to linked canvases owned by this node.
	LinkedNodes map[string]string `json:"linkedNodes,omitempty"`

	// Index is the insertion hint used by add; it holds the position after move.
	Index *int `json:"index,omitempty"`

	Hidden bool           `json:"hidden,omitempty"`
	Custom map[string]any `json:"custom,omitempty"`
}

// Node is a single record of the document tree.
type Node struct {
	ID     string     `json:"id"`
	Data   NodeData   `json:"data"`
	Rules  Rules      `json:"-"`
	Ref    Ref        `json:"-"`
	Events NodeEvents `json:"events"`
}

// IsCanvas reports whether the node owns an ordered child list.
func (n *Node) IsCanvas() bool {
	_, ok := n.Data.Payload.(CanvasPayload)
	return ok
}

// Canvas returns the canvas payload, if any.
func (n *Node) Canvas() (CanvasPayload, bool) {
	c, ok := n.Data.Payload.(CanvasPayload)
	return c, ok
}

// Layout returns the flow axis of a canvas, vertical when unset.
func (n *Node) Layout() Layout {
	if c, ok := n.Canvas(); ok && c.Layout != "" {
		return c.Layout
	}
	return LayoutVertical
}

// Clone returns a deep copy of the node. Rules and Ref are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Data.Props = n.Data.Props.Clone()
	if n.Data.Nodes != nil {
		c.Data.Nodes = slices.Clone(n.Data.Nodes)
	}
	if n.Data.LinkedNodes != nil {
		c.Data.LinkedNodes = maps.Clone(n.Data.LinkedNodes)
	}
	if n.Data.Custom != nil {
		c.Data.Custom = Props(n.Data.Custom).Clone()
	}
	if n.Data.Index != nil {
		idx := *n.Data.Index
		c.Data.Index = &idx
	}
	return &c
}

// NewCanvas builds a canvas node.
func NewCanvas(id, component string, layout Layout, props Props) *Node {
	if props == nil {
		props = Props{}
	}
	return &Node{
		ID: id,
		Data: NodeData{
			Type:        component,
			Payload:     CanvasPayload{Layout: layout},
			Props:       props,
			Nodes:       []string{},
			LinkedNodes: map[string]string{},
		},
	}
}

// NewLeaf builds a leaf node rendering component.
func NewLeaf(id, component string, props Props) *Node {
	if props == nil {
		props = Props{}
	}
	return &Node{
		ID: id,
		Data: NodeData{
			Type:        component,
			Payload:     LeafPayload{Component: component},
			Props:       props,
			LinkedNodes: map[string]string{},
		},
	}
}
