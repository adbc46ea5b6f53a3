package runtime

import (
	"fmt"
	"slices"
	"sort"

	"github.com/aretw0/joist/pkg/domain"
)

// IncludeOnly restricts which relations Descendants follows.
type IncludeOnly int

const (
	IncludeAll IncludeOnly = iota
	// IncludeChildNodes follows only ordered children.
	IncludeChildNodes
	// IncludeLinkedNodes follows only linked canvases.
	IncludeLinkedNodes
)

// ErrorHandler receives the reason a validity query failed.
type ErrorHandler func(error)

// NodeHelpers is the read-only query layer for one node id.
// Every method tolerates an unknown id.
type NodeHelpers struct {
	t  *Tree
	id string
}

// Query returns the helpers for id.
func (t *Tree) Query(id string) NodeHelpers {
	return NodeHelpers{t: t, id: id}
}

func (h NodeHelpers) node() *domain.Node {
	return h.t.nodes[h.id]
}

// Get returns a copy of the node.
func (h NodeHelpers) Get() (*domain.Node, bool) {
	return h.t.Node(h.id)
}

// Exists reports whether the node is in the store.
func (h NodeHelpers) Exists() bool {
	return h.node() != nil
}

// IsCanvas reports whether the node owns an ordered child list.
func (h NodeHelpers) IsCanvas() bool {
	n := h.node()
	return n != nil && n.IsCanvas()
}

// IsRoot reports whether the node is the document root.
func (h NodeHelpers) IsRoot() bool {
	return h.id == domain.RootNodeID
}

// IsLinkedNode reports whether the node is a linked canvas of its parent.
func (h NodeHelpers) IsLinkedNode() bool {
	return h.t.isLinked(h.id)
}

// IsTopLevelNode reports whether the node is the root or a linked canvas.
func (h NodeHelpers) IsTopLevelNode() bool {
	return h.t.isTopLevel(h.id)
}

// IsDeletable reports whether Delete may remove the node directly.
func (h NodeHelpers) IsDeletable() bool {
	return h.Exists() && !h.IsTopLevelNode()
}

// IsParentOfTopLevelNodes reports whether the node owns linked canvases.
func (h NodeHelpers) IsParentOfTopLevelNodes() bool {
	n := h.node()
	return n != nil && len(n.Data.LinkedNodes) > 0
}

// LinkedNodes returns the ids of the node's linked canvases ordered by slot name.
func (h NodeHelpers) LinkedNodes() []string {
	n := h.node()
	if n == nil {
		return []string{}
	}
	return linkedIDs(n)
}

func linkedIDs(n *domain.Node) []string {
	slots := make([]string, 0, len(n.Data.LinkedNodes))
	for slot := range n.Data.LinkedNodes {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, n.Data.LinkedNodes[slot])
	}
	return ids
}

// Ancestors walks parent links, nearest first. With deep unset only the
// immediate parent is returned.
func (h NodeHelpers) Ancestors(deep bool) []string {
	out := []string{}
	seen := map[string]bool{h.id: true}

	n := h.node()
	for n != nil && n.Data.Parent != "" {
		pid := n.Data.Parent
		if seen[pid] {
			break
		}
		seen[pid] = true
		out = append(out, pid)
		if !deep {
			break
		}
		n = h.t.nodes[pid]
	}
	return out
}

// Descendants walks the subtree depth first (pre-order). Ordered children come
// before linked canvases. With deep unset only direct relations are returned.
func (h NodeHelpers) Descendants(deep bool, include IncludeOnly) []string {
	out := []string{}
	root := h.node()
	if root == nil {
		return out
	}

	children := func(n *domain.Node) []string {
		var ids []string
		if include != IncludeLinkedNodes {
			ids = append(ids, n.Data.Nodes...)
		}
		if include != IncludeChildNodes {
			ids = append(ids, linkedIDs(n)...)
		}
		return ids
	}

	if !deep {
		for _, id := range children(root) {
			if _, ok := h.t.nodes[id]; ok {
				out = append(out, id)
			}
		}
		return out
	}

	seen := map[string]bool{h.id: true}
	stack := slices.Clone(children(root))
	slices.Reverse(stack)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		n, ok := h.t.nodes[id]
		if !ok {
			continue
		}
		seen[id] = true
		out = append(out, id)

		next := children(n)
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return out
}

// IsDraggable reports whether the node may be picked up. When onError is set
// it receives the reason of a refusal.
func (h NodeHelpers) IsDraggable(onError ErrorHandler) bool {
	return report(h.t.draggable(h.id), onError)
}

// IsDroppable reports whether the node with targetID may be dropped into this
// node. When onError is set it receives the reason of a refusal.
func (h NodeHelpers) IsDroppable(targetID string, onError ErrorHandler) bool {
	target, err := h.t.get(targetID)
	if err != nil {
		return report(err, onError)
	}
	return h.IsDroppableNode(target, onError)
}

// IsDroppableNode is IsDroppable for a node that may not be in the store yet.
func (h NodeHelpers) IsDroppableNode(target *domain.Node, onError ErrorHandler) bool {
	dest, err := h.t.get(h.id)
	if err != nil {
		return report(err, onError)
	}
	return report(h.t.droppable(target, dest), onError)
}

func report(err error, onError ErrorHandler) bool {
	if err == nil {
		return true
	}
	if onError != nil {
		onError(err)
	}
	return false
}

// ToSerializedNode returns the persisted form of the node.
func (h NodeHelpers) ToSerializedNode() (domain.SerializedNode, error) {
	n, err := h.t.get(h.id)
	if err != nil {
		return domain.SerializedNode{}, err
	}
	return domain.Serialize(n), nil
}

// ToNodeTree returns a copy of the node and every descendant, keyed by id.
func (h NodeHelpers) ToNodeTree(include IncludeOnly) (domain.NodeTree, error) {
	n, err := h.t.get(h.id)
	if err != nil {
		return domain.NodeTree{}, err
	}
	tree := domain.NodeTree{
		RootNodeID: h.id,
		Nodes:      map[string]*domain.Node{h.id: n.Clone()},
	}
	for _, id := range h.Descendants(true, include) {
		tree.Nodes[id] = h.t.nodes[id].Clone()
	}
	return tree, nil
}

func (t *Tree) draggable(id string) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	if !t.enabled {
		return domain.NodeError(domain.KindCannotDrag, domain.ReasonEditorDisabled, id, "the editor is disabled")
	}
	if t.isTopLevel(id) {
		return domain.NodeError(domain.KindCannotDrag, domain.ReasonTopLevel, id, "top-level nodes cannot be dragged")
	}
	parent, ok := t.nodes[n.Data.Parent]
	if !ok || !parent.IsCanvas() {
		return domain.NodeError(domain.KindCannotDrag, domain.ReasonNonCanvasParent, id, "only direct children of a canvas can be dragged")
	}
	if n.Rules.CanDrag != nil && !n.Rules.CanDrag(n.Clone(), t) {
		return domain.NodeError(domain.KindCannotDrag, domain.ReasonDragRule, id, fmt.Sprintf("node %q refused to be dragged", id))
	}
	return nil
}

// droppable is the admission gate of every structural mutation. target may be
// a node that is not in the store yet.
func (t *Tree) droppable(target, dest *domain.Node) error {
	stored, inStore := t.nodes[target.ID]
	if inStore {
		target = stored
	}

	if inStore && t.isTopLevel(target.ID) {
		return domain.NodeError(domain.KindCannotMoveTopLevelNode, domain.ReasonTopLevel, target.ID, "top-level nodes cannot be moved")
	}
	if !dest.IsCanvas() {
		return domain.NodeError(domain.KindCannotDrop, domain.ReasonNonCanvasTarget, target.ID,
			fmt.Sprintf("cannot drop into %q: it is not a canvas", dest.ID))
	}
	if dest.Rules.CanMoveIn != nil && !dest.Rules.CanMoveIn(target.Clone(), dest.Clone(), t) {
		return domain.NodeError(domain.KindCannotDrop, domain.ReasonIncomingRule, target.ID,
			fmt.Sprintf("canvas %q does not accept %q", dest.ID, target.ID))
	}
	if target.Rules.CanDrop != nil && !target.Rules.CanDrop(dest.Clone(), target.Clone(), t) {
		return domain.NodeError(domain.KindCannotDrop, domain.ReasonDropRule, target.ID,
			fmt.Sprintf("node %q cannot be dropped into %q", target.ID, dest.ID))
	}
	if !inStore {
		return nil
	}

	if dest.ID == target.ID || slices.Contains(t.Query(dest.ID).Ancestors(true), target.ID) {
		return domain.NodeError(domain.KindCannotDrop, domain.ReasonDescendant, target.ID,
			fmt.Sprintf("cannot move %q into itself or one of its descendants", target.ID))
	}

	current, ok := t.nodes[target.Data.Parent]
	if !ok || !current.IsCanvas() {
		return domain.NodeError(domain.KindCannotDrop, domain.ReasonNonCanvasParent, target.ID,
			fmt.Sprintf("node %q is not a direct child of a canvas", target.ID))
	}
	if current.ID != dest.ID && current.Rules.CanMoveOut != nil && !current.Rules.CanMoveOut(target.Clone(), current.Clone(), t) {
		return domain.NodeError(domain.KindCannotDrop, domain.ReasonOutgoingRule, target.ID,
			fmt.Sprintf("canvas %q does not let %q leave", current.ID, target.ID))
	}
	return nil
}
