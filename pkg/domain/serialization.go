package domain

import (
	"maps"
	"slices"
	"sort"
)

// SerializedNode is the persisted form of a node.
type SerializedNode struct {
	Type        string            `json:"type" yaml:"type"`
	IsCanvas    bool              `json:"isCanvas" yaml:"isCanvas"`
	Props       Props             `json:"props" yaml:"props"`
	DisplayName string            `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Custom      map[string]any    `json:"custom,omitempty" yaml:"custom,omitempty"`
	Hidden      bool              `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Nodes       []string          `json:"children,omitempty" yaml:"children,omitempty"`
	LinkedNodes map[string]string `json:"linkedNodes,omitempty" yaml:"linkedNodes,omitempty"`
	Parent      string            `json:"parent,omitempty" yaml:"parent,omitempty"`
	Layout      Layout            `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// Clone returns a deep copy.
func (s SerializedNode) Clone() SerializedNode {
	c := s
	c.Props = s.Props.Clone()
	if s.Custom != nil {
		c.Custom = Props(s.Custom).Clone()
	}
	if s.Nodes != nil {
		c.Nodes = slices.Clone(s.Nodes)
	}
	if s.LinkedNodes != nil {
		c.LinkedNodes = maps.Clone(s.LinkedNodes)
	}
	return c
}

// SerializedNodes is a whole persisted document keyed by node id.
type SerializedNodes map[string]SerializedNode

// IDs returns the node ids in lexical order.
func (s SerializedNodes) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy.
func (s SerializedNodes) Clone() SerializedNodes {
	out := make(SerializedNodes, len(s))
	for id, n := range s {
		out[id] = n.Clone()
	}
	return out
}

// Serialize converts a node into its persisted form.
func Serialize(n *Node) SerializedNode {
	s := SerializedNode{
		Type:        n.Data.Type,
		IsCanvas:    n.IsCanvas(),
		Props:       n.Data.Props.Clone(),
		DisplayName: n.Data.DisplayName,
		Hidden:      n.Data.Hidden,
		Parent:      n.Data.Parent,
	}
	if n.Data.Custom != nil {
		s.Custom = Props(n.Data.Custom).Clone()
	}
	if c, ok := n.Canvas(); ok {
		s.Nodes = slices.Clone(n.Data.Nodes)
		s.Layout = c.Layout
	}
	if len(n.Data.LinkedNodes) > 0 {
		s.LinkedNodes = maps.Clone(n.Data.LinkedNodes)
	}
	return s
}

// NodeTree is a subtree rooted at RootNodeID.
type NodeTree struct {
	RootNodeID string           `json:"rootNodeId"`
	Nodes      map[string]*Node `json:"nodes"`
}
