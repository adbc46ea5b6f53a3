package runtime_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/aretw0/joist/internal/runtime"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_Add(t *testing.T) {
	t.Run("Appends Exactly Once", func(t *testing.T) {
		tree := newFixture(t)
		require.NoError(t, tree.Add([]*domain.Node{domain.NewLeaf("node-3", "Text", nil)}, "canvas-a"))

		kids := children(t, tree, "canvas-a")
		assert.Equal(t, []string{"node-1", "node-2", "node-3"}, kids)

		n, _ := tree.Node("node-3")
		assert.Equal(t, "canvas-a", n.Data.Parent)
		assert.Equal(t, "canvas-a", n.Data.ClosestParent)
		require.NotNil(t, n.Data.Index)
		assert.Equal(t, 2, *n.Data.Index)
	})

	t.Run("Honours Index", func(t *testing.T) {
		tree := newFixture(t)
		n := domain.NewLeaf("node-0", "Text", nil)
		n.Data.Index = intPtr(0)
		require.NoError(t, tree.Add([]*domain.Node{n}, "canvas-a"))
		assert.Equal(t, []string{"node-0", "node-1", "node-2"}, children(t, tree, "canvas-a"))
	})

	t.Run("Uses Declared Parent", func(t *testing.T) {
		tree := newFixture(t)
		n := domain.NewLeaf("node-3", "Text", nil)
		n.Data.Parent = domain.RootNodeID
		require.NoError(t, tree.Add([]*domain.Node{n}, ""))
		assert.Equal(t, []string{"canvas-a", "node-3"}, children(t, tree, domain.RootNodeID))
	})

	t.Run("Failures", func(t *testing.T) {
		tree := newFixture(t)

		err := tree.Add([]*domain.Node{domain.NewLeaf("node-1", "Text", nil)}, "canvas-a")
		assert.True(t, errors.Is(err, domain.ErrDuplicateNodeID), "got %v", err)

		err = tree.Add([]*domain.Node{domain.NewLeaf("node-3", "Text", nil)}, "ghost")
		assert.True(t, errors.Is(err, domain.ErrInvalidNodeID), "got %v", err)

		err = tree.Add([]*domain.Node{domain.NewLeaf("node-3", "Text", nil)}, "")
		assert.True(t, errors.Is(err, domain.ErrNoParent), "got %v", err)

		err = tree.Add([]*domain.Node{domain.NewLeaf("node-3", "Text", nil)}, "node-1")
		assert.True(t, errors.Is(err, domain.ErrCannotDrop), "got %v", err)
		assert.Equal(t, domain.ReasonNonCanvasTarget, domain.ReasonOf(err))
	})

	t.Run("Batch Is Atomic", func(t *testing.T) {
		tree := newFixture(t)
		before := tree.Serialize()

		err := tree.Add([]*domain.Node{
			domain.NewLeaf("node-3", "Text", nil),
			domain.NewLeaf("node-1", "Text", nil),
		}, "canvas-a")
		require.Error(t, err)

		assert.Equal(t, before, tree.Serialize())
		assert.False(t, tree.Query("node-3").Exists())
	})

	t.Run("Reports Rejected Drops", func(t *testing.T) {
		var rejected []*domain.DropEvent
		tree := newFixture(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnDropRejected: func(e *domain.DropEvent) { rejected = append(rejected, e) },
		}))

		_ = tree.Add([]*domain.Node{domain.NewLeaf("node-3", "Text", nil)}, "node-1")
		require.Len(t, rejected, 1)
		assert.Equal(t, "node-3", rejected[0].NodeID)
		assert.Equal(t, "node-1", rejected[0].Target)
	})
}

func TestTree_Add_LinkedCanvas(t *testing.T) {
	tree := newFixture(t)
	require.NoError(t, tree.Add([]*domain.Node{domain.NewLeaf("node-card", "Button", nil)}, domain.RootNodeID))

	props := domain.Props{domain.PropSlot: "header", "padding": 4}
	header := domain.NewCanvas("canvas-header", "Container", "", props)
	require.NoError(t, tree.Add([]*domain.Node{header}, "node-card"))

	card, _ := tree.Node("node-card")
	assert.Equal(t, map[string]string{"header": "canvas-header"}, card.Data.LinkedNodes)
	assert.Empty(t, card.Data.Nodes, "linked canvases are not ordered children")

	linked, _ := tree.Node("canvas-header")
	assert.NotContains(t, linked.Data.Props, domain.PropSlot)
	assert.Equal(t, 4, linked.Data.Props["padding"])
	c, ok := linked.Canvas()
	require.True(t, ok)
	assert.Equal(t, "header", c.Slot)
	assert.Equal(t, "header", props[domain.PropSlot], "caller props are left alone")

	h := tree.Query("canvas-header")
	assert.True(t, h.IsLinkedNode())
	assert.True(t, h.IsTopLevelNode())
	assert.False(t, h.IsDeletable())
	assert.True(t, tree.Query("node-card").IsParentOfTopLevelNodes())
	assert.Equal(t, []string{"canvas-header"}, tree.Query("node-card").LinkedNodes())

	// Children of a linked canvas report the owner as closest parent.
	require.NoError(t, tree.Add([]*domain.Node{domain.NewLeaf("node-title", "Text", nil)}, "canvas-header"))
	title, _ := tree.Node("node-title")
	assert.Equal(t, "node-card", title.Data.ClosestParent)

	t.Run("Missing Slot", func(t *testing.T) {
		err := tree.Add([]*domain.Node{domain.NewCanvas("canvas-footer", "Container", "", nil)}, "node-card")
		assert.True(t, errors.Is(err, domain.ErrRootCanvasMissingID), "got %v", err)
	})

	t.Run("Slot Taken", func(t *testing.T) {
		dup := domain.NewCanvas("canvas-other", "Container", "", domain.Props{domain.PropSlot: "header"})
		err := tree.Add([]*domain.Node{dup}, "node-card")
		assert.True(t, errors.Is(err, domain.ErrDuplicateNodeID), "got %v", err)
		assert.Equal(t, domain.ReasonDuplicateLinkSlot, domain.ReasonOf(err))
	})
}

func TestTree_Move(t *testing.T) {
	t.Run("Onto Itself Is A No-Op", func(t *testing.T) {
		tree := runtime.NewTree()
		require.NoError(t, tree.Add([]*domain.Node{domain.NewCanvas(domain.RootNodeID, "Container", "", nil)}, ""))
		require.NoError(t, tree.Add([]*domain.Node{domain.NewCanvas("canvas-A", "Container", "", nil)}, domain.RootNodeID))
		require.NoError(t, tree.Add([]*domain.Node{domain.NewLeaf("node-1", "Text", nil)}, "canvas-A"))

		require.NoError(t, tree.Move("node-1", "canvas-A", 0))
		assert.Equal(t, []string{"node-1"}, children(t, tree, "canvas-A"))
	})

	t.Run("Across Parents", func(t *testing.T) {
		tree := newFixture(t)
		require.NoError(t, tree.Move("node-2", domain.RootNodeID, 0))

		assert.Equal(t, []string{"node-1"}, children(t, tree, "canvas-a"))
		assert.Equal(t, []string{"node-2", "canvas-a"}, children(t, tree, domain.RootNodeID))
		n, _ := tree.Node("node-2")
		assert.Equal(t, domain.RootNodeID, n.Data.Parent)
	})

	t.Run("Index Is Relative To The List Before The Move", func(t *testing.T) {
		tree := newFixture(t)
		require.NoError(t, tree.Add([]*domain.Node{domain.NewLeaf("node-3", "Text", nil)}, "canvas-a"))

		// "after node-2" from the resolver is index 2.
		require.NoError(t, tree.Move("node-1", "canvas-a", 2))
		assert.Equal(t, []string{"node-2", "node-1", "node-3"}, children(t, tree, "canvas-a"))

		require.NoError(t, tree.Move("node-3", "canvas-a", 0))
		assert.Equal(t, []string{"node-3", "node-2", "node-1"}, children(t, tree, "canvas-a"))
	})

	t.Run("Repeated Moves Leave One Entry", func(t *testing.T) {
		tree := newFixture(t)
		require.NoError(t, tree.Add([]*domain.Node{
			domain.NewLeaf("node-3", "Text", nil),
			domain.NewLeaf("node-4", "Text", nil),
		}, "canvas-a"))

		for i := 0; i <= 4; i++ {
			for j := 0; j <= 4; j++ {
				require.NoError(t, tree.Move("node-2", "canvas-a", i))
				pos := slices.Index(children(t, tree, "canvas-a"), "node-2")
				require.NoError(t, tree.Move("node-2", "canvas-a", j))

				kids := children(t, tree, "canvas-a")
				require.Len(t, kids, 4)
				count := 0
				for _, k := range kids {
					if k == "node-2" {
						count++
					}
				}
				require.Equal(t, 1, count, "i=%d j=%d kids=%v", i, j, kids)

				want := j
				if j > pos {
					want = j - 1
				}
				assert.Equal(t, want, slices.Index(kids, "node-2"), "i=%d j=%d", i, j)
				n, _ := tree.Node("node-2")
				assert.Equal(t, want, *n.Data.Index)
			}
		}
	})

	t.Run("Refusals Leave The Tree Unchanged", func(t *testing.T) {
		tree := newFixture(t)
		before := tree.Serialize()

		err := tree.Move("canvas-a", "canvas-a", 0)
		assert.True(t, errors.Is(err, domain.ErrCannotDrop), "got %v", err)
		assert.Equal(t, domain.ReasonDescendant, domain.ReasonOf(err))

		err = tree.Move(domain.RootNodeID, "canvas-a", 0)
		assert.True(t, errors.Is(err, domain.ErrCannotMoveTopLevelNode), "got %v", err)

		err = tree.Move("node-1", "node-2", 0)
		assert.True(t, errors.Is(err, domain.ErrCannotDrop), "got %v", err)

		err = tree.Move("ghost", "canvas-a", 0)
		assert.True(t, errors.Is(err, domain.ErrInvalidNodeID), "got %v", err)

		assert.Equal(t, before, tree.Serialize())
	})
}

func TestTree_Delete(t *testing.T) {
	t.Run("Root", func(t *testing.T) {
		tree := newFixture(t)
		err := tree.Delete(domain.RootNodeID)
		assert.True(t, errors.Is(err, domain.ErrCannotDeleteRoot), "got %v", err)
	})

	t.Run("Canvas With Descendants", func(t *testing.T) {
		tree := newFixture(t)
		require.NoError(t, tree.Add([]*domain.Node{domain.NewCanvas("canvas-b", "Container", "", nil)}, "canvas-a"))
		require.NoError(t, tree.Add([]*domain.Node{domain.NewLeaf("node-3", "Text", nil)}, "canvas-b"))
		require.NoError(t, tree.SetNodeEvent("selected", "node-3"))

		var change domain.Change
		unsubscribe := tree.Subscribe(func(c domain.Change) { change = c })
		defer unsubscribe()

		require.NoError(t, tree.Delete("canvas-a"))

		assert.Equal(t, []string{domain.RootNodeID}, tree.IDs())
		assert.Empty(t, children(t, tree, domain.RootNodeID))
		assert.Empty(t, tree.Events().Selected)
		assert.Equal(t, domain.ActionDelete, change.Action)
		assert.Equal(t, []string{"node-1", "node-2", "node-3", "canvas-b", "canvas-a"}, change.NodeIDs)
	})

	t.Run("Cascades Through Linked Canvases", func(t *testing.T) {
		tree := newFixture(t)
		require.NoError(t, tree.Add([]*domain.Node{domain.NewLeaf("node-card", "Button", nil)}, "canvas-a"))
		require.NoError(t, tree.Add([]*domain.Node{
			domain.NewCanvas("canvas-header", "Container", "", domain.Props{domain.PropSlot: "header"}),
		}, "node-card"))
		require.NoError(t, tree.Add([]*domain.Node{domain.NewLeaf("node-title", "Text", nil)}, "canvas-header"))

		err := tree.Delete("canvas-header")
		assert.True(t, errors.Is(err, domain.ErrCannotDeleteNonDirectCanvas), "got %v", err)

		require.NoError(t, tree.Delete("node-card"))
		assert.False(t, tree.Query("canvas-header").Exists())
		assert.False(t, tree.Query("node-title").Exists())
		assert.Equal(t, []string{"node-1", "node-2"}, children(t, tree, "canvas-a"))
	})

	t.Run("No Dangling References", func(t *testing.T) {
		tree := newFixture(t)
		require.NoError(t, tree.Delete("node-1"))

		for _, id := range tree.IDs() {
			n, _ := tree.Node(id)
			for _, c := range n.Data.Nodes {
				assert.True(t, tree.Query(c).Exists(), "%s lists missing child %s", id, c)
			}
			if n.Data.Parent != "" {
				assert.True(t, tree.Query(n.Data.Parent).Exists())
			}
		}
	})
}

func TestTree_SetProp(t *testing.T) {
	tree := newFixture(t)
	require.NoError(t, tree.SetProp("node-1", func(p domain.Props) domain.Props {
		p["text"] = "hello"
		p["style"] = map[string]any{"color": "red"}
		return p
	}))

	var seen domain.Props
	require.NoError(t, tree.SetProp("node-1", func(p domain.Props) domain.Props {
		seen = p
		p["style"].(map[string]any)["color"] = "blue"
		return domain.Props{"text": "bye"}
	}))

	n, _ := tree.Node("node-1")
	assert.Equal(t, domain.Props{"text": "bye"}, n.Data.Props)
	assert.Equal(t, "blue", seen["style"].(map[string]any)["color"])

	// The snapshot handed out is not the stored record.
	seen["text"] = "mutated later"
	n, _ = tree.Node("node-1")
	assert.Equal(t, "bye", n.Data.Props["text"])

	require.NoError(t, tree.SetProp("node-1", func(domain.Props) domain.Props { return nil }))
	n, _ = tree.Node("node-1")
	assert.NotNil(t, n.Data.Props)
	assert.Empty(t, n.Data.Props)

	err := tree.SetProp("ghost", func(p domain.Props) domain.Props { return p })
	assert.True(t, errors.Is(err, domain.ErrInvalidNodeID))
}

func TestTree_SetNodeEvent(t *testing.T) {
	tree := newFixture(t)

	require.NoError(t, tree.SetNodeEvent("hover", "node-1"))
	require.NoError(t, tree.SetNodeEvent("hovered", "node-2"))

	n1, _ := tree.Node("node-1")
	n2, _ := tree.Node("node-2")
	assert.False(t, n1.Events.Hovered)
	assert.True(t, n2.Events.Hovered)
	assert.Equal(t, "node-2", tree.Events().Hovered)

	require.NoError(t, tree.SetNodeEvent("active", "node-1"))
	assert.Equal(t, "node-1", tree.Events().Selected)

	require.NoError(t, tree.SetNodeEvent("hovered", ""))
	n2, _ = tree.Node("node-2")
	assert.False(t, n2.Events.Hovered)
	assert.Empty(t, tree.Events().Hovered)

	for _, name := range []string{"focus", "indicator"} {
		err := tree.SetNodeEvent(name, "node-1")
		assert.True(t, errors.Is(err, domain.ErrUnknownEventType), "%s: got %v", name, err)
	}

	err := tree.SetNodeEvent("selected", "ghost")
	assert.True(t, errors.Is(err, domain.ErrInvalidNodeID))
}

func TestTree_SetIndicator(t *testing.T) {
	tree := newFixture(t)
	ind := &domain.Indicator{
		Placement: domain.Placement{Parent: "canvas-a", Index: 1, Where: domain.WhereBefore, CurrentNode: "node-2"},
		Rect:      domain.NewRect(50, 0, 200, 2),
	}

	assert.False(t, tree.SetIndicator(ind), "unmounted geometry is ignored")
	assert.Nil(t, tree.Events().Indicator)

	require.NoError(t, tree.SetDOM("canvas-a", "div"))
	assert.False(t, tree.SetIndicator(ind), "current node is still unmounted")

	require.NoError(t, tree.SetDOM("node-2", "div"))
	assert.True(t, tree.SetIndicator(ind))
	require.NotNil(t, tree.Events().Indicator)
	assert.Equal(t, ind.Placement, tree.Events().Indicator.Placement)

	assert.True(t, tree.SetIndicator(nil))
	assert.Nil(t, tree.Events().Indicator)
}

func TestTree_SetHiddenAndCustom(t *testing.T) {
	tree := newFixture(t)
	require.NoError(t, tree.SetHidden("node-1", true))
	require.NoError(t, tree.SetCustom("node-1", func(c map[string]any) map[string]any {
		c["locked"] = true
		return c
	}))

	n, _ := tree.Node("node-1")
	assert.True(t, n.Data.Hidden)
	assert.Equal(t, true, n.Data.Custom["locked"])

	assert.Error(t, tree.SetHidden("ghost", true))
	assert.Error(t, tree.SetCustom("ghost", func(c map[string]any) map[string]any { return c }))
}

func TestTree_ReplaceNodesAndReset(t *testing.T) {
	tree := newFixture(t)
	require.NoError(t, tree.SetNodeEvent("selected", "node-1"))

	other := newFixture(t)
	require.NoError(t, other.Delete("node-2"))
	nodes := map[string]*domain.Node{}
	for _, id := range other.IDs() {
		nodes[id], _ = other.Node(id)
	}

	require.NoError(t, tree.ReplaceNodes(nodes))
	assert.Equal(t, []string{"canvas-a", "node-1", domain.RootNodeID}, tree.IDs())
	assert.Empty(t, tree.Events().Selected)

	broken := map[string]*domain.Node{"node-1": nodes["node-1"]}
	err := tree.ReplaceNodes(broken)
	assert.True(t, errors.Is(err, domain.ErrInvalidTree), "got %v", err)
	assert.Equal(t, 3, tree.Len(), "a rejected replacement keeps the old store")

	tree.Reset()
	assert.Zero(t, tree.Len())
	assert.Equal(t, domain.EventsState{}, tree.Events())
}

func TestTree_Observers(t *testing.T) {
	var hooked []string
	tree := newFixture(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnMutation: func(c *domain.Change) { hooked = append(hooked, c.Action) },
	}))

	var first, second []string
	unsubscribe := tree.Subscribe(func(c domain.Change) { first = append(first, c.Action) })
	tree.Subscribe(func(c domain.Change) { second = append(second, c.Action) })

	require.NoError(t, tree.SetHidden("node-1", true))
	unsubscribe()
	unsubscribe()
	require.NoError(t, tree.Move("node-1", "canvas-a", 2))

	assert.Equal(t, []string{domain.ActionSetHidden}, first)
	assert.Equal(t, []string{domain.ActionSetHidden, domain.ActionMove}, second)
	assert.Contains(t, hooked, domain.ActionMove)

	// Failed actions notify nobody.
	_ = tree.Delete(domain.RootNodeID)
	assert.Len(t, second, 2)
}
