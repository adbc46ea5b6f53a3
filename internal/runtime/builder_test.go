package runtime_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/joist/internal/dto"
	"github.com/aretw0/joist/internal/runtime"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page() dto.Element {
	return dto.Element{
		Component: "Container",
		ID:        domain.RootNodeID,
		Children: []dto.Element{
			{Component: "Text", ID: "node-title", Props: map[string]any{"text": "Welcome"}},
			{
				Component: "Button",
				ID:        "node-card",
				Children: []dto.Element{
					{Component: "Container", ID: "canvas-header", Slot: "header", Children: []dto.Element{
						{Component: "Image", ID: "node-logo"},
					}},
				},
			},
			{Component: "Row", ID: "canvas-row", Children: []dto.Element{
				{Component: "Text"},
				{Component: "Text"},
			}},
		},
	}
}

func TestTree_Build(t *testing.T) {
	tree := runtime.NewTree(runtime.WithResolver(registry.Basic()))

	id, err := tree.Build(page(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.RootNodeID, id)

	assert.Equal(t, []string{"node-title", "node-card", "canvas-row"}, children(t, tree, domain.RootNodeID))
	assert.Equal(t, []string{"canvas-header"}, tree.Query("node-card").LinkedNodes())
	assert.Equal(t, []string{"node-logo"}, children(t, tree, "canvas-header"))

	title, _ := tree.Node("node-title")
	assert.Equal(t, domain.Props{"text": "Welcome"}, title.Data.Props)
	card, _ := tree.Node("node-card")
	assert.Equal(t, "Click", card.Data.Props["label"], "default props are applied")

	row, _ := tree.Node("canvas-row")
	assert.Equal(t, domain.LayoutHorizontal, row.Layout())
	generated := row.Data.Nodes
	require.Len(t, generated, 2)
	for _, gid := range generated {
		assert.True(t, strings.HasPrefix(gid, domain.NodeIDPrefix), gid)
	}
	assert.NotEqual(t, generated[0], generated[1])

	t.Run("Into An Existing Canvas", func(t *testing.T) {
		id, err := tree.Build(dto.Element{Component: "Container", Layout: "horizontal"}, domain.RootNodeID)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, domain.CanvasIDPrefix))
		n, _ := tree.Node(id)
		assert.Equal(t, domain.LayoutHorizontal, n.Layout())
	})

	t.Run("Unknown Component Adds Nothing", func(t *testing.T) {
		size := tree.Len()
		_, err := tree.Build(dto.Element{Component: "Container", Children: []dto.Element{{Component: "Hero"}}}, domain.RootNodeID)
		assert.True(t, errors.Is(err, domain.ErrUnresolvedComponent), "got %v", err)
		assert.Equal(t, size, tree.Len())
	})

	t.Run("Unknown Layout", func(t *testing.T) {
		_, err := tree.Build(dto.Element{Component: "Container", Layout: "diagonal"}, domain.RootNodeID)
		assert.True(t, errors.Is(err, domain.ErrInvalidTree), "got %v", err)
	})

	t.Run("Children Of A Leaf", func(t *testing.T) {
		size := tree.Len()
		_, err := tree.Build(dto.Element{Component: "Text", Children: []dto.Element{{Component: "Text"}}}, domain.RootNodeID)
		assert.True(t, errors.Is(err, domain.ErrCannotDrop), "got %v", err)
		assert.Equal(t, size, tree.Len())
	})
}

func TestTree_SerializeRoundTrip(t *testing.T) {
	tree := runtime.NewTree(runtime.WithResolver(registry.Basic()))
	_, err := tree.Build(page(), "")
	require.NoError(t, err)
	require.NoError(t, tree.SetHidden("node-logo", true))
	require.NoError(t, tree.SetCustom("node-title", func(c map[string]any) map[string]any {
		c["note"] = "hero copy"
		return c
	}))

	doc := tree.Serialize()
	assert.Equal(t, []string{"node-title", "node-card", "canvas-row"}, doc[domain.RootNodeID].Nodes)
	assert.Equal(t, map[string]string{"header": "canvas-header"}, doc["node-card"].LinkedNodes)

	restored := runtime.NewTree()
	require.NoError(t, restored.Deserialize(doc, registry.Basic()))
	assert.Equal(t, doc, restored.Serialize())

	header, _ := restored.Node("canvas-header")
	c, _ := header.Canvas()
	assert.Equal(t, "header", c.Slot, "slot names are recovered from the owner")
	assert.True(t, restored.Query("canvas-header").IsLinkedNode())

	logo, _ := restored.Node("node-logo")
	require.NotNil(t, logo.Data.Index)
	assert.Equal(t, 0, *logo.Data.Index)
	assert.Equal(t, "node-card", logo.Data.ClosestParent)
}

func TestTree_Deserialize_Failures(t *testing.T) {
	tree := runtime.NewTree(runtime.WithResolver(registry.Basic()))
	_, err := tree.Build(page(), "")
	require.NoError(t, err)
	doc := tree.Serialize()

	t.Run("Unresolvable Type", func(t *testing.T) {
		bad := doc.Clone()
		n := bad["node-title"]
		n.Type = "Hero"
		bad["node-title"] = n

		restored := runtime.NewTree()
		err := restored.Deserialize(bad, registry.Basic())
		assert.True(t, errors.Is(err, domain.ErrUnresolvedComponent), "got %v", err)
		assert.Zero(t, restored.Len())
	})

	t.Run("Allow List", func(t *testing.T) {
		restored := runtime.NewTree()
		err := restored.Deserialize(doc, registry.Basic().AllowList([]string{"Container", "Text"}))
		assert.True(t, errors.Is(err, domain.ErrUnresolvedComponent), "got %v", err)
	})

	t.Run("Broken Structure", func(t *testing.T) {
		bad := doc.Clone()
		delete(bad, "node-card")

		restored := runtime.NewTree()
		err := restored.Deserialize(bad, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidTree), "got %v", err)
	})
}

func TestTree_Outline(t *testing.T) {
	tree := runtime.NewTree(runtime.WithResolver(registry.Basic()))
	_, err := tree.Build(page(), "")
	require.NoError(t, err)

	out, err := tree.Outline(domain.RootNodeID)
	require.NoError(t, err)

	var lines []string
	out.Walk(func(n *domain.OutlineNode, depth int) {
		if strings.HasPrefix(n.ID, domain.NodeIDPrefix) && n.Type == "Text" && depth == 2 {
			lines = append(lines, strings.Repeat("  ", depth)+"Text")
			return
		}
		lines = append(lines, strings.Repeat("  ", depth)+n.ID)
	})
	assert.Equal(t, []string{
		"rootNode",
		"  node-title",
		"  node-card",
		"    canvas-header",
		"      node-logo",
		"  canvas-row",
		"    Text",
		"    Text",
	}, lines)

	header := out.Children[1].Children[0]
	assert.Equal(t, "header", header.Slot)
	assert.True(t, header.Canvas)

	_, err = tree.Outline("ghost")
	assert.Error(t, err)
}

func TestTree_PropTypes(t *testing.T) {
	tree := runtime.NewTree(runtime.WithResolver(registry.Basic()))
	_, err := tree.Build(page(), "")
	require.NoError(t, err)

	_, err = tree.Build(dto.Element{Component: "Button", Props: map[string]any{"variant": "danger"}}, "canvas-row")
	assert.True(t, errors.Is(err, domain.ErrInvalidProps), "got %v", err)

	err = tree.SetProp("node-title", func(p domain.Props) domain.Props {
		p["text"] = 42
		return p
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidProps))
	n, _ := tree.Node("node-title")
	assert.Equal(t, "Welcome", n.Data.Props["text"], "rejected props are not applied")

	// Unlisted props are free.
	require.NoError(t, tree.SetProp("node-title", func(p domain.Props) domain.Props {
		p["style"] = map[string]any{"color": "red"}
		return p
	}))

	doc := tree.Serialize()
	title := doc["node-title"]
	title.Props = domain.Props{"text": true}
	doc["node-title"] = title
	err = runtime.NewTree(runtime.WithResolver(registry.Basic())).Deserialize(doc, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidProps))
}
