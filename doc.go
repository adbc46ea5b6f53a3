/*
Package joist is the node-tree state engine of a drag-and-drop page builder.

A document is a flat store of nodes keyed by id. Canvas nodes own an ordered
list of children and are the only places a node can be dropped into. Leaf
nodes may own linked canvases, named slots that are fixed parts of the
component and cannot be dragged. Every mutation goes through an action that
checks the tree invariants first and leaves the store untouched when it fails.

# Concept

The engine does not render anything. The host (a browser renderer, a CLI or
an agent) reads the tree, measures the rendered boxes and reports pointer
positions back. From those positions the engine resolves a drop placement,
previews it through the indicator and applies it as a move when the drag
ends.

# Usage

	editor := joist.New(joist.WithResolver(registry.Basic()))

	err := editor.Init(joist.Element{
		Component: "Container",
		Children: []joist.Element{
			{Component: "Text", Props: map[string]any{"text": "Hello"}},
			{Component: "Row", ID: "canvas-row"},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	// Move the text into the row.
	text := editor.Serialize()[domain.RootNodeID].Nodes[0]
	if err := editor.Move(text, "canvas-row", 0); err != nil {
		log.Fatal(err)
	}

Editors are safe for concurrent use. Documents are persisted through a
ports.DocumentStore; pkg/session adds per-document locking on top of a store.
*/
package joist
