package runtime_test

import (
	"testing"

	"github.com/aretw0/joist/internal/runtime"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
	"github.com/stretchr/testify/require"
)

// newFixture builds
//
//	rootNode
//	└── canvas-a
//	    ├── node-1
//	    └── node-2
func newFixture(t *testing.T, opts ...runtime.Option) *runtime.Tree {
	t.Helper()
	tree := runtime.NewTree(opts...)
	require.NoError(t, tree.Add([]*domain.Node{domain.NewCanvas(domain.RootNodeID, "Container", domain.LayoutVertical, nil)}, ""))
	require.NoError(t, tree.Add([]*domain.Node{domain.NewCanvas("canvas-a", "Container", "", nil)}, domain.RootNodeID))
	require.NoError(t, tree.Add([]*domain.Node{
		domain.NewLeaf("node-1", "Text", nil),
		domain.NewLeaf("node-2", "Text", nil),
	}, "canvas-a"))
	return tree
}

func children(t *testing.T, tree *runtime.Tree, id string) []string {
	t.Helper()
	n, ok := tree.Node(id)
	require.True(t, ok, "node %s should exist", id)
	return n.Data.Nodes
}

func intPtr(i int) *int {
	return &i
}

// fixtureDOM lays canvas-a out vertically: node-1 spans y 0..40 and node-2 y 50..90.
func fixtureDOM() ports.DOMMap {
	return ports.DOMMap{
		domain.RootNodeID: {Rect: domain.NewRect(0, 0, 200, 200)},
		"canvas-a":        {Rect: domain.NewRect(0, 0, 200, 100)},
		"node-1":          {Rect: domain.NewRect(0, 0, 200, 40)},
		"node-2":          {Rect: domain.NewRect(50, 0, 200, 40)},
	}
}

func mountAll(t *testing.T, tree *runtime.Tree) {
	t.Helper()
	for _, id := range tree.IDs() {
		require.NoError(t, tree.SetDOM(id, "element:"+id))
	}
}
