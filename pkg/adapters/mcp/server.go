package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/joist"
	"github.com/aretw0/joist/internal/logging"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// documentsURI is the resource listing stored documents.
const documentsURI = "joist://documents"

// MutationResult is what mutating tools return.
type MutationResult struct {
	ID   string           `json:"id,omitempty" jsonschema_description:"Id of the created node"`
	Diff *domain.TreeDiff `json:"diff" jsonschema_description:"Nodes upserted and removed by the change, null when nothing changed"`
}

// Server exposes stored documents as MCP tools, so agents can read and edit pages.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		manager:   mgr,
		mcpServer: server.NewMCPServer("joist-mcp", strings.TrimSpace(joist.Version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the ids of stored documents."),
	), s.handleListDocuments)

	s.mcpServer.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a document from the configured template."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Id of the new document")),
	), s.handleCreateDocument)

	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the nested outline of a document, or of the subtree under root."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("root", mcp.Description("Node to start from (default: the document root)")),
	), s.handleGetTree)

	s.mcpServer.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Build an element (component, props, children) inside a canvas node."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("parent", mcp.Required(), mcp.Description("Id of the canvas receiving the element")),
		mcp.WithObject("element", mcp.Required(), mcp.Description("Element with component, props, children, canvas, id, slot, layout")),
		mcp.WithOutputSchema[MutationResult](),
	), s.handleAddElement)

	s.mcpServer.AddTool(mcp.NewTool("move_node",
		mcp.WithDescription("Move a node into a canvas at an index of its current child list."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node to move")),
		mcp.WithString("parent", mcp.Required(), mcp.Description("Destination canvas")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Insertion index, counted before the node leaves its old place")),
		mcp.WithOutputSchema[MutationResult](),
	), s.handleMoveNode)

	s.mcpServer.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("Delete a node and everything under it."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node to delete")),
		mcp.WithOutputSchema[MutationResult](),
	), s.handleDeleteNode)

	s.mcpServer.AddTool(mcp.NewTool("set_prop",
		mcp.WithDescription("Merge props into a node. Null values remove keys."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node to update")),
		mcp.WithObject("props", mcp.Required(), mcp.Description("Props to merge")),
		mcp.WithOutputSchema[MutationResult](),
	), s.handleSetProp)
}

func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.manager.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if ids == nil {
		ids = []string{}
	}
	return jsonResult(ids)
}

func (s *Server) handleCreateDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.manager.Create(ctx, documentID)
	if err != nil {
		return toolError("create failed", err), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleGetTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root := request.GetString("root", domain.RootNodeID)

	editor, err := s.manager.Open(ctx, documentID)
	if err != nil {
		return toolError("open failed", err), nil
	}
	outline, err := editor.Outline(root)
	if err != nil {
		return toolError("outline failed", err), nil
	}
	return jsonResult(outline)
}

func (s *Server) handleAddElement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parent, err := request.RequireString("parent")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	el, err := joist.DecodeElement(request.GetArguments()["element"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var id string
	return s.edit(ctx, documentID, func(e *joist.Editor) error {
		id, err = e.Build(el, parent)
		return err
	}, func() string { return id })
}

func (s *Server) handleMoveNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodeID, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parent, err := request.RequireString("parent")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.edit(ctx, documentID, func(e *joist.Editor) error {
		return e.Move(nodeID, parent, index)
	}, nil)
}

func (s *Server) handleDeleteNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodeID, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.edit(ctx, documentID, func(e *joist.Editor) error {
		return e.Delete(nodeID)
	}, nil)
}

func (s *Server) handleSetProp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodeID, err := request.RequireString("node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	patch, ok := request.GetArguments()["props"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("props must be an object"), nil
	}

	return s.edit(ctx, documentID, func(e *joist.Editor) error {
		return e.SetProp(nodeID, func(p domain.Props) domain.Props {
			if p == nil {
				p = domain.Props{}
			}
			for k, v := range patch {
				if v == nil {
					delete(p, k)
					continue
				}
				p[k] = v
			}
			return p
		})
	}, nil)
}

// edit applies fn to the stored document. Refusals from the engine are tool
// errors the agent can read, not protocol errors.
func (s *Server) edit(ctx context.Context, documentID string, fn func(*joist.Editor) error, id func() string) (*mcp.CallToolResult, error) {
	diff, err := s.manager.Edit(ctx, documentID, fn)
	if err != nil {
		s.logger.Debug("MCP edit refused", "document", documentID, "err", err)
		return toolError("edit refused", err), nil
	}
	res := MutationResult{Diff: diff}
	if id != nil {
		res.ID = id()
	}
	jsonBytes, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultStructured(res, string(jsonBytes)), nil
}

func toolError(prefix string, err error) *mcp.CallToolResult {
	var de *domain.Error
	if errors.As(err, &de) && de.Reason != "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s (%s): %v", prefix, de.Reason, err))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(documentsURI, "Stored documents",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.manager.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      documentsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
