package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/joist"
	"github.com/aretw0/joist/pkg/adapters/memory"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/registry"
	"github.com/aretw0/joist/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mgr := session.NewManager(memory.NewStore(),
		session.WithEditorOptions(joist.WithResolver(registry.Basic())),
		session.WithTemplate(joist.Element{Component: "Container", Children: []joist.Element{
			{Component: "Text", ID: "node-title"},
			{Component: "Row", ID: "canvas-row"},
		}}),
	)
	_, err := mgr.Create(context.Background(), "home")
	require.NoError(t, err)
	return NewServer(mgr, nil)
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func mutation(t *testing.T, res *mcp.CallToolResult) MutationResult {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var out MutationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

func TestServer_Tools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleListDocuments(ctx, call(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["home"]`, resultText(t, res))

	res, err = s.handleAddElement(ctx, call(map[string]any{
		"document_id": "home",
		"parent":      "canvas-row",
		"element": map[string]any{
			"component": "Button",
			"props":     map[string]any{"label": "Sign up"},
		},
	}))
	require.NoError(t, err)
	added := mutation(t, res)
	require.NotEmpty(t, added.ID)
	assert.Equal(t, "Sign up", added.Diff.Upserted[added.ID].Props["label"])

	res, err = s.handleMoveNode(ctx, call(map[string]any{
		"document_id": "home",
		"node_id":     "node-title",
		"parent":      "canvas-row",
		"index":       float64(0),
	}))
	require.NoError(t, err)
	moved := mutation(t, res)
	assert.Equal(t, []string{"node-title", added.ID}, moved.Diff.Upserted["canvas-row"].Nodes)

	res, err = s.handleSetProp(ctx, call(map[string]any{
		"document_id": "home",
		"node_id":     "node-title",
		"props":       map[string]any{"text": "Welcome"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Welcome", mutation(t, res).Diff.Upserted["node-title"].Props["text"])

	res, err = s.handleDeleteNode(ctx, call(map[string]any{"document_id": "home", "node_id": added.ID}))
	require.NoError(t, err)
	assert.Equal(t, []string{added.ID}, mutation(t, res).Diff.Removed)

	res, err = s.handleGetTree(ctx, call(map[string]any{"document_id": "home"}))
	require.NoError(t, err)
	var outline domain.OutlineNode
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &outline))
	require.Len(t, outline.Children, 1)
	assert.Equal(t, "canvas-row", outline.Children[0].ID)
	require.Len(t, outline.Children[0].Children, 1)
	assert.Equal(t, "node-title", outline.Children[0].Children[0].ID)
}

func TestServer_ToolErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleDeleteNode(ctx, call(map[string]any{"document_id": "home", "node_id": domain.RootNodeID}))
	require.NoError(t, err, "engine refusals are tool results")
	assert.True(t, res.IsError)

	res, err = s.handleMoveNode(ctx, call(map[string]any{
		"document_id": "home",
		"node_id":     "canvas-row",
		"parent":      "node-title",
		"index":       float64(0),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), string(domain.ReasonNonCanvasTarget))

	res, err = s.handleAddElement(ctx, call(map[string]any{
		"document_id": "home",
		"parent":      domain.RootNodeID,
		"element":     map[string]any{"props": map[string]any{}},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "elements need a component")

	res, err = s.handleCreateDocument(ctx, call(map[string]any{"document_id": "home"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGetTree(ctx, call(map[string]any{"document_id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleMoveNode(ctx, call(map[string]any{"document_id": "home"}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "missing arguments")
}
