package runtime

import (
	"maps"
	"slices"

	"github.com/aretw0/joist/internal/validator"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// Serialize returns the persisted form of every node in the store.
func (t *Tree) Serialize() domain.SerializedNodes {
	doc := make(domain.SerializedNodes, len(t.nodes))
	for id, n := range t.nodes {
		doc[id] = domain.Serialize(n)
	}
	return doc
}

// Deserialize replaces the store with doc. Every type must resolve through
// resolver, or through the tree's own resolver when resolver is nil.
func (t *Tree) Deserialize(doc domain.SerializedNodes, resolver ports.Resolver) error {
	if resolver != nil {
		prev := t.resolver
		t.resolver = resolver
		defer func() { t.resolver = prev }()
	}

	if err := validator.ValidateDocument(doc, nil); err != nil {
		return err
	}

	nodes := make(map[string]*domain.Node, len(doc))
	for _, id := range doc.IDs() {
		s := doc[id]
		comp, err := t.resolve(s.Type, id)
		if err != nil {
			return err
		}
		if err := checkProps(comp, id, s.Props); err != nil {
			return err
		}

		var n *domain.Node
		if s.IsCanvas {
			layout := s.Layout
			if layout == "" {
				layout = comp.Layout
			}
			n = domain.NewCanvas(id, s.Type, layout, s.Props.Clone())
			if s.Nodes != nil {
				n.Data.Nodes = slices.Clone(s.Nodes)
			}
		} else {
			n = domain.NewLeaf(id, s.Type, s.Props.Clone())
		}
		n.Data.DisplayName = s.DisplayName
		n.Data.Hidden = s.Hidden
		n.Data.Parent = s.Parent
		if s.Custom != nil {
			n.Data.Custom = domain.Props(s.Custom).Clone()
		}
		if s.LinkedNodes != nil {
			n.Data.LinkedNodes = maps.Clone(s.LinkedNodes)
		}
		n.Rules = comp.Rules
		nodes[id] = n
	}

	// Slot names are only persisted on the owner.
	for _, owner := range nodes {
		for slot, linkedID := range owner.Data.LinkedNodes {
			linked, ok := nodes[linkedID]
			if !ok {
				continue
			}
			if c, ok := linked.Canvas(); ok {
				c.Slot = slot
				linked.Data.Payload = c
			}
		}
	}

	return t.ReplaceNodes(nodes)
}
