package runtime

import (
	"fmt"
	"slices"

	"github.com/aretw0/joist/internal/validator"
	"github.com/aretw0/joist/pkg/domain"
)

// txn remembers every node an action touches so a failing action leaves the
// store exactly as it found it.
type txn struct {
	t      *Tree
	saved  map[string]*domain.Node
	events domain.EventsState
}

func (t *Tree) begin() *txn {
	return &txn{t: t, saved: make(map[string]*domain.Node), events: t.Events()}
}

// touch must be called before id is modified or inserted.
func (x *txn) touch(id string) {
	if _, done := x.saved[id]; done {
		return
	}
	x.saved[id] = x.t.nodes[id].Clone()
}

func (x *txn) rollback() {
	for id, n := range x.saved {
		if n == nil {
			delete(x.t.nodes, id)
			continue
		}
		x.t.nodes[id] = n
	}
	x.t.events = x.events
}

// Add inserts nodes under parentID. An empty parentID falls back to each node's
// own Data.Parent. A canvas added under a non-canvas parent becomes a linked
// canvas named after its "id" prop. The batch is atomic: if one node fails,
// none is added.
func (t *Tree) Add(nodes []*domain.Node, parentID string) error {
	x := t.begin()
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if err := t.addOne(x, n, parentID); err != nil {
			x.rollback()
			if domain.IsKind(err, domain.KindCannotDrop) {
				target := parentID
				if target == "" {
					target = n.Data.Parent
				}
				t.rejected(n.ID, target, err)
			}
			return err
		}
		ids = append(ids, n.ID)
	}
	t.notify(domain.ActionAdd, ids...)
	return nil
}

func (t *Tree) addOne(x *txn, in *domain.Node, parentID string) error {
	if in == nil || in.ID == "" {
		return domain.NewError(domain.KindInvalidNodeID, "node id is required")
	}
	if _, exists := t.nodes[in.ID]; exists {
		return domain.NodeError(domain.KindDuplicateNodeID, "", in.ID, fmt.Sprintf("node %q already exists", in.ID))
	}

	n := in.Clone()
	n.Events = domain.NodeEvents{}
	if n.Data.Payload == nil {
		n.Data.Payload = domain.LeafPayload{Component: n.Data.Type}
	}
	if n.Data.Props == nil {
		n.Data.Props = domain.Props{}
	}
	if n.Data.LinkedNodes == nil {
		n.Data.LinkedNodes = map[string]string{}
	}
	if n.IsCanvas() {
		if n.Data.Nodes == nil {
			n.Data.Nodes = []string{}
		}
	} else {
		n.Data.Nodes = nil
	}

	pid := parentID
	if pid == "" {
		pid = n.Data.Parent
	}
	if pid == "" {
		if n.ID != domain.RootNodeID {
			return domain.NodeError(domain.KindNoParent, "", n.ID, fmt.Sprintf("node %q has no parent", n.ID))
		}
		if !n.IsCanvas() {
			return domain.NodeError(domain.KindInvalidTree, "", n.ID, "the root must be a canvas")
		}
		x.touch(n.ID)
		n.Data.Parent, n.Data.ClosestParent, n.Data.Index = "", "", nil
		t.nodes[n.ID] = n
		return nil
	}

	parent, err := t.get(pid)
	if err != nil {
		return err
	}

	if n.IsCanvas() && !parent.IsCanvas() {
		return t.link(x, n, parent)
	}

	if err := t.droppable(n, parent); err != nil {
		return err
	}

	idx := len(parent.Data.Nodes)
	if n.Data.Index != nil && *n.Data.Index >= 0 && *n.Data.Index < idx {
		idx = *n.Data.Index
	}

	x.touch(parent.ID)
	x.touch(n.ID)
	parent.Data.Nodes = slices.Insert(parent.Data.Nodes, idx, n.ID)
	n.Data.Parent = parent.ID
	n.Data.ClosestParent = t.closestParent(parent.ID)
	n.Data.Index = &idx
	t.nodes[n.ID] = n
	return nil
}

// link registers canvas n as a named region of the non-canvas parent.
func (t *Tree) link(x *txn, n, parent *domain.Node) error {
	slot, _ := n.Data.Props[domain.PropSlot].(string)
	if slot == "" {
		return domain.NodeError(domain.KindRootCanvasMissingID, "", n.ID,
			fmt.Sprintf("canvas %q inside non-canvas %q needs an %q prop naming its slot", n.ID, parent.ID, domain.PropSlot))
	}
	if existing, taken := parent.Data.LinkedNodes[slot]; taken {
		return domain.NodeError(domain.KindDuplicateNodeID, domain.ReasonDuplicateLinkSlot, n.ID,
			fmt.Sprintf("slot %q of %q is already linked to %q", slot, parent.ID, existing))
	}

	// The slot moves from the props into the payload; n is already a private copy.
	delete(n.Data.Props, domain.PropSlot)
	c, _ := n.Canvas()
	c.Slot = slot
	n.Data.Payload = c

	x.touch(parent.ID)
	x.touch(n.ID)
	if parent.Data.LinkedNodes == nil {
		parent.Data.LinkedNodes = map[string]string{}
	}
	parent.Data.LinkedNodes[slot] = n.ID
	n.Data.Parent = parent.ID
	n.Data.ClosestParent = parent.ID
	n.Data.Index = nil
	t.nodes[n.ID] = n
	return nil
}

// Move relocates targetID into newParentID at index. index is a position in
// the destination list as it is before the move, which is what the drop
// placement resolver reports.
func (t *Tree) Move(targetID, newParentID string, index int) error {
	target, err := t.get(targetID)
	if err != nil {
		return err
	}
	dest, err := t.get(newParentID)
	if err != nil {
		return err
	}
	if err := t.droppable(target, dest); err != nil {
		t.rejected(targetID, newParentID, err)
		return err
	}

	current := t.nodes[target.Data.Parent]
	oldIdx := slices.Index(current.Data.Nodes, targetID)
	if oldIdx < 0 {
		return domain.NodeError(domain.KindInvalidTree, "", targetID,
			fmt.Sprintf("node %q is not listed by its parent %q", targetID, current.ID))
	}

	index = max(0, min(index, len(dest.Data.Nodes)))

	// Insert first, then drop the old slot by position. When both slots live in
	// the same list the old one shifts right if the new one lands at or before it.
	dest.Data.Nodes = slices.Insert(dest.Data.Nodes, index, targetID)
	if current == dest && index <= oldIdx {
		oldIdx++
	}
	current.Data.Nodes = slices.Delete(current.Data.Nodes, oldIdx, oldIdx+1)

	target.Data.Parent = dest.ID
	target.Data.ClosestParent = t.closestParent(dest.ID)
	pos := slices.Index(dest.Data.Nodes, targetID)
	target.Data.Index = &pos

	t.notify(domain.ActionMove, targetID)
	return nil
}

// Delete removes id and its whole subtree. The root and linked canvases
// cannot be deleted directly.
func (t *Tree) Delete(id string) error {
	if id == domain.RootNodeID {
		return domain.NodeError(domain.KindCannotDeleteRoot, "", id, "the root node cannot be deleted")
	}
	n, err := t.get(id)
	if err != nil {
		return err
	}
	if t.isLinked(id) {
		return domain.NodeError(domain.KindCannotDeleteNonDirectCanvas, domain.ReasonTopLevel, id,
			fmt.Sprintf("linked canvas %q can only be deleted with its owner %q", id, n.Data.Parent))
	}

	doomed := t.postOrder(id)

	if parent, ok := t.nodes[n.Data.Parent]; ok {
		parent.Data.Nodes = slices.DeleteFunc(parent.Data.Nodes, func(c string) bool { return c == id })
	}
	for _, d := range doomed {
		delete(t.nodes, d)
		t.clearEvents(d)
	}

	t.notify(domain.ActionDelete, doomed...)
	return nil
}

// postOrder lists the subtree of id, children before their parent.
func (t *Tree) postOrder(id string) []string {
	type frame struct {
		id       string
		expanded bool
	}
	var out []string
	seen := map[string]bool{}
	stack := []frame{{id: id}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.expanded {
			out = append(out, f.id)
			continue
		}
		n, ok := t.nodes[f.id]
		if !ok || seen[f.id] {
			continue
		}
		seen[f.id] = true
		stack = append(stack, frame{id: f.id, expanded: true})

		kids := append(slices.Clone(n.Data.Nodes), linkedIDs(n)...)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i]})
		}
	}
	return out
}

func (t *Tree) clearEvents(id string) {
	for _, et := range []domain.EventType{domain.EventSelected, domain.EventHovered, domain.EventDragged} {
		if t.events.Holder(et) == id {
			t.events.SetHolder(et, "")
		}
	}
	if ind := t.events.Indicator; ind != nil && (ind.Placement.Parent == id || ind.Placement.CurrentNode == id) {
		t.events.Indicator = nil
	}
}

// SetProp replaces the props of id with what transform returns. transform
// receives a private copy it may modify freely.
func (t *Tree) SetProp(id string, transform func(domain.Props) domain.Props) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	next := transform(n.Data.Props.Clone())
	if next == nil {
		next = domain.Props{}
	}
	if t.resolver != nil {
		if comp, ok := t.resolver.Resolve(n.Data.Type); ok {
			if comp.Name == "" {
				comp.Name = n.Data.Type
			}
			if err := checkProps(comp, id, next); err != nil {
				return err
			}
		}
	}
	n.Data.Props = next
	t.notify(domain.ActionSetProp, id)
	return nil
}

// SetNodeEvent makes id the only holder of eventType. An empty id clears it.
func (t *Tree) SetNodeEvent(eventType string, id string) error {
	et, err := domain.ParseEventType(eventType)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := t.get(id); err != nil {
			return err
		}
	}

	if prev := t.events.Holder(et); prev != "" {
		if p, ok := t.nodes[prev]; ok {
			*p.Events.Flag(et) = false
		}
	}
	t.events.SetHolder(et, id)
	if id != "" {
		*t.nodes[id].Events.Flag(et) = true
	}

	t.notify(domain.ActionSetNodeEvent, id)
	return nil
}

// SetIndicator stores the drop preview. An indicator whose parent or current
// node is not mounted yet is ignored and false is returned. nil clears it.
func (t *Tree) SetIndicator(ind *domain.Indicator) bool {
	if ind == nil {
		t.events.Indicator = nil
		t.notify(domain.ActionSetIndicator)
		return true
	}

	parent, ok := t.nodes[ind.Placement.Parent]
	if !ok || !parent.Ref.Mounted() {
		return false
	}
	if cur := ind.Placement.CurrentNode; cur != "" {
		n, ok := t.nodes[cur]
		if !ok || !n.Ref.Mounted() {
			return false
		}
	}

	stored := *ind
	t.events.Indicator = &stored
	t.notify(domain.ActionSetIndicator, ind.Placement.Parent)
	return true
}

// SetHidden toggles the hidden flag of id.
func (t *Tree) SetHidden(id string, hidden bool) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	n.Data.Hidden = hidden
	t.notify(domain.ActionSetHidden, id)
	return nil
}

// SetCustom replaces the custom payload of id with what transform returns.
func (t *Tree) SetCustom(id string, transform func(map[string]any) map[string]any) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	current := map[string]any{}
	if n.Data.Custom != nil {
		current = domain.Props(n.Data.Custom).Clone()
	}
	n.Data.Custom = transform(current)
	t.notify(domain.ActionSetCustom, id)
	return nil
}

// SetDOM records the element the rendering layer mounted for id.
func (t *Tree) SetDOM(id string, dom any) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	n.Ref.DOM = dom
	t.notify(domain.ActionSetDOM, id)
	return nil
}

// ReplaceNodes swaps the whole store for nodes after checking its invariants.
// Editing state is reset.
func (t *Tree) ReplaceNodes(nodes map[string]*domain.Node) error {
	doc := make(domain.SerializedNodes, len(nodes))
	for id, n := range nodes {
		if n == nil || n.ID != id {
			return domain.NodeError(domain.KindInvalidNodeID, "", id, fmt.Sprintf("record keyed %q does not carry that id", id))
		}
		doc[id] = domain.Serialize(n)
	}
	if err := validator.ValidateDocument(doc, nil); err != nil {
		return err
	}

	fresh := make(map[string]*domain.Node, len(nodes))
	for id, n := range nodes {
		c := n.Clone()
		c.Events = domain.NodeEvents{}
		if c.IsCanvas() && c.Data.Nodes == nil {
			c.Data.Nodes = []string{}
		}
		if c.Data.LinkedNodes == nil {
			c.Data.LinkedNodes = map[string]string{}
		}
		fresh[id] = c
	}
	t.nodes = fresh
	t.events = domain.EventsState{}
	for _, id := range t.IDs() {
		n := t.nodes[id]
		if id != domain.RootNodeID {
			n.Data.ClosestParent = t.closestParent(n.Data.Parent)
		}
		for i, child := range n.Data.Nodes {
			pos := i
			t.nodes[child].Data.Index = &pos
		}
	}

	t.notify(domain.ActionReplaceNodes, t.IDs()...)
	return nil
}

// Reset clears the store and all editing state.
func (t *Tree) Reset() {
	t.nodes = make(map[string]*domain.Node)
	t.events = domain.EventsState{}
	t.notify(domain.ActionReset)
}

func (t *Tree) rejected(nodeID, target string, err error) {
	t.logger.Debug("drop rejected", "node", nodeID, "target", target, "err", err)
	if t.hooks.OnDropRejected != nil {
		t.hooks.OnDropRejected(&domain.DropEvent{NodeID: nodeID, Target: target, Err: err})
	}
}
