package runtime

import (
	"fmt"
	"maps"

	"github.com/aretw0/joist/internal/dto"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
	"github.com/aretw0/joist/pkg/schema"
	"github.com/google/uuid"
)

// Build creates the nodes described by el under parentID in a single atomic
// Add and returns the id of the top node. Pass domain.RootNodeID as the
// element id and an empty parentID to build a document root.
func (t *Tree) Build(el dto.Element, parentID string) (string, error) {
	type item struct {
		el     dto.Element
		parent string
	}

	var nodes []*domain.Node
	stack := []item{{el: el, parent: parentID}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, err := t.newNode(it.el)
		if err != nil {
			return "", err
		}
		n.Data.Parent = it.parent
		nodes = append(nodes, n)

		for i := len(it.el.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{el: it.el.Children[i], parent: n.ID})
		}
	}

	if err := t.Add(nodes, ""); err != nil {
		return "", err
	}
	return nodes[0].ID, nil
}

func (t *Tree) newNode(el dto.Element) (*domain.Node, error) {
	comp, err := t.resolve(el.Component, el.ID)
	if err != nil {
		return nil, err
	}

	props := comp.DefaultProps.Clone()
	maps.Copy(props, domain.Props(el.Props).Clone())

	canvas := el.Canvas || comp.Canvas
	id := el.ID
	if id == "" {
		id = newID(canvas)
	}
	if err := checkProps(comp, id, props); err != nil {
		return nil, err
	}

	var n *domain.Node
	if canvas {
		layout := comp.Layout
		switch domain.Layout(el.Layout) {
		case "":
		case domain.LayoutVertical, domain.LayoutHorizontal:
			layout = domain.Layout(el.Layout)
		default:
			return nil, domain.NodeError(domain.KindInvalidTree, "", id, fmt.Sprintf("unknown layout %q", el.Layout))
		}
		n = domain.NewCanvas(id, comp.Name, layout, props)
	} else {
		n = domain.NewLeaf(id, comp.Name, props)
	}

	n.Data.DisplayName = comp.DisplayName
	if n.Data.DisplayName == "" {
		n.Data.DisplayName = comp.Name
	}
	n.Rules = comp.Rules
	if el.Slot != "" {
		n.Data.Props[domain.PropSlot] = el.Slot
	}
	if el.Index != nil {
		idx := *el.Index
		n.Data.Index = &idx
	}
	return n, nil
}

func (t *Tree) resolve(name, nodeID string) (ports.Component, error) {
	if t.resolver == nil {
		return ports.Component{Name: name}, nil
	}
	c, ok := t.resolver.Resolve(name)
	if !ok {
		return ports.Component{}, domain.NodeError(domain.KindUnresolvedComponent, "", nodeID,
			fmt.Sprintf("component %q is not registered", name))
	}
	if c.Name == "" {
		c.Name = name
	}
	return c, nil
}

// checkProps validates props against the component's PropTypes.
func checkProps(comp ports.Component, nodeID string, props domain.Props) error {
	if err := schema.Validate(comp.PropTypes, props); err != nil {
		return &domain.Error{
			Kind:    domain.KindInvalidProps,
			NodeID:  nodeID,
			Message: fmt.Sprintf("invalid props for %q", comp.Name),
			Cause:   err,
		}
	}
	return nil
}

func newID(canvas bool) string {
	if canvas {
		return domain.CanvasIDPrefix + uuid.NewString()
	}
	return domain.NodeIDPrefix + uuid.NewString()
}
