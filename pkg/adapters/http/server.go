package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/joist"
	"github.com/aretw0/joist/internal/logging"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/observability"
	"github.com/aretw0/joist/pkg/ports"
	"github.com/aretw0/joist/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var rawSpec []byte

// GetSpec parses and validates the embedded OpenAPI description.
var GetSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
})

// Server exposes stored documents to renderers over HTTP.
type Server struct {
	Manager *session.Manager
	Streams *StreamManager

	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics records edit durations and serves /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler over the document manager.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Manager: mgr,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s.Routes()
}

// Routes mounts every endpoint on a chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.ListDocuments)
		r.Post("/", s.CreateDocument)

		r.Route("/{documentID}", func(r chi.Router) {
			r.Get("/", s.GetDocument)
			r.Put("/", s.PutDocument)
			r.Delete("/", s.DeleteDocument)
			r.Get("/outline", s.GetOutline)
			r.Get("/events", s.SubscribeEvents)
			r.Post("/elements", s.AddElement)
			r.Post("/move", s.MoveNode)
			r.Post("/placeholder", s.DropPlaceholder)
			r.Delete("/nodes/{nodeID}", s.DeleteNode)
			r.Patch("/nodes/{nodeID}/props", s.SetProps)
			r.Put("/nodes/{nodeID}/hidden", s.SetHidden)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if spec, err := GetSpec(); err == nil && spec.Info != nil {
		apiVersion = spec.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "joist-http",
		"version":     strings.TrimSpace(joist.Version),
		"api_version": apiVersion,
	})
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Manager.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateDocument handles POST /documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	if body.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	started := time.Now()
	doc, err := s.Manager.Create(r.Context(), body.ID)
	s.observe("create", started, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// GetDocument handles GET /documents/{documentID}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Manager.Load(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PutDocument handles PUT /documents/{documentID}. The document is checked
// before it replaces the stored one.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	var doc domain.SerializedNodes
	if !s.decode(w, r, &doc) {
		return
	}

	documentID := chi.URLParam(r, "documentID")
	started := time.Now()
	err := s.Manager.Save(r.Context(), documentID, doc)
	s.observe("replace", started, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcast(&domain.TreeDiff{DocumentID: documentID, Upserted: doc})
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDocument handles DELETE /documents/{documentID}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOutline handles GET /documents/{documentID}/outline.
func (s *Server) GetOutline(w http.ResponseWriter, r *http.Request) {
	editor, err := s.Manager.Open(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	root := r.URL.Query().Get("root")
	if root == "" {
		root = domain.RootNodeID
	}
	outline, err := editor.Outline(root)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outline)
}

// AddElement handles POST /documents/{documentID}/elements.
func (s *Server) AddElement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Parent  string        `json:"parent"`
		Element joist.Element `json:"element"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	var id string
	s.edit(w, r, "add", func(e *joist.Editor) error {
		var err error
		id, err = e.Build(body.Element, body.Parent)
		return err
	}, func() string { return id })
}

// MoveNode handles POST /documents/{documentID}/move.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Node   string `json:"node"`
		Parent string `json:"parent"`
		Index  int    `json:"index"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	s.edit(w, r, "move", func(e *joist.Editor) error {
		return e.Move(body.Node, body.Parent, body.Index)
	}, nil)
}

// DeleteNode handles DELETE /documents/{documentID}/nodes/{nodeID}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	s.edit(w, r, "delete", func(e *joist.Editor) error {
		return e.Delete(nodeID)
	}, nil)
}

// SetProps handles PATCH /documents/{documentID}/nodes/{nodeID}/props.
func (s *Server) SetProps(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if !s.decode(w, r, &patch) {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.edit(w, r, "set_props", func(e *joist.Editor) error {
		return e.SetProp(nodeID, func(p domain.Props) domain.Props {
			return mergeProps(p, patch)
		})
	}, nil)
}

// SetHidden handles PUT /documents/{documentID}/nodes/{nodeID}/hidden.
func (s *Server) SetHidden(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hidden bool `json:"hidden"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.edit(w, r, "set_hidden", func(e *joist.Editor) error {
		return e.SetHidden(nodeID, body.Hidden)
	}, nil)
}

type indicatorResponse struct {
	Placement domain.Placement `json:"placement"`
	Rect      domain.Rect      `json:"rect"`
	Valid     bool             `json:"valid"`
	Error     string           `json:"error,omitempty"`
	Reason    domain.Reason    `json:"reason,omitempty"`
}

// DropPlaceholder handles POST /documents/{documentID}/placeholder. It does
// not change the document.
func (s *Server) DropPlaceholder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Node   string       `json:"node"`
		Target string       `json:"target"`
		Point  domain.Point `json:"point"`
		DOM    ports.DOMMap `json:"dom"`
	}
	if !s.decode(w, r, &body) {
		return
	}

	editor, err := s.Manager.Open(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	ind := editor.DropPlaceholder(body.Node, body.Target, body.Point, body.DOM)
	if ind == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := indicatorResponse{Placement: ind.Placement, Rect: ind.Rect, Valid: ind.Valid()}
	if ind.Error != nil {
		resp.Error = ind.Error.Error()
		resp.Reason = domain.ReasonOf(ind.Error)
	}
	writeJSON(w, http.StatusOK, resp)
}

type mutationResponse struct {
	ID   string           `json:"id,omitempty"`
	Diff *domain.TreeDiff `json:"diff"`
}

// edit applies fn to the stored document, broadcasts the diff and writes it.
// id, when set, reports the id of a created node.
func (s *Server) edit(w http.ResponseWriter, r *http.Request, operation string, fn func(*joist.Editor) error, id func() string) {
	started := time.Now()
	diff, err := s.Manager.Edit(r.Context(), chi.URLParam(r, "documentID"), fn)
	s.observe(operation, started, err)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if diff != nil {
		s.broadcast(diff)
	}
	resp := mutationResponse{Diff: diff}
	if id != nil {
		resp.ID = id()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) observe(operation string, started time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveEdit(operation, started, err)
	}
}

func (s *Server) broadcast(diff *domain.TreeDiff) {
	bytes, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("failed to encode diff", "err", err)
		return
	}
	s.logger.Debug("diff calculated", "document", diff.DocumentID, "upserted", len(diff.Upserted), "removed", len(diff.Removed))
	s.Streams.Broadcast(diff.DocumentID, string(bytes))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

type errorResponse struct {
	Error  string        `json:"error"`
	Kind   domain.Kind   `json:"kind,omitempty"`
	Reason domain.Reason `json:"reason,omitempty"`
	NodeID string        `json:"node_id,omitempty"`
}

// statusOf maps engine errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound), errors.Is(err, domain.ErrInvalidNodeID):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDocumentExists):
		return http.StatusConflict
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	resp := errorResponse{Error: err.Error()}
	var de *domain.Error
	if errors.As(err, &de) {
		resp.Kind, resp.Reason, resp.NodeID = de.Kind, de.Reason, de.NodeID
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

// mergeProps applies patch on p. Null values remove keys.
func mergeProps(p domain.Props, patch map[string]any) domain.Props {
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
}
