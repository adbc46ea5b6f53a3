package joist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/joist/internal/dto"
	"github.com/aretw0/joist/internal/logging"
	"github.com/aretw0/joist/internal/runtime"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// Element is a declarative description of a subtree. See Editor.Build.
type Element = dto.Element

// DecodeElement converts a generic map (decoded YAML or JSON) into an Element.
var DecodeElement = dto.DecodeElement

// Tree is the unsynchronized node store behind an Editor. It is only handed
// out inside View and Update.
type Tree = runtime.Tree

// NodeHelpers is the read-only query layer of one node.
type NodeHelpers = runtime.NodeHelpers

// IncludeOnly restricts which relations Descendants follows.
type IncludeOnly = runtime.IncludeOnly

const (
	IncludeAll         = runtime.IncludeAll
	IncludeChildNodes  = runtime.IncludeChildNodes
	IncludeLinkedNodes = runtime.IncludeLinkedNodes
)

// ErrorHandler receives the reason a validity query failed.
type ErrorHandler = runtime.ErrorHandler

// HandlerSet is an in-memory ports.HandlerRegistry.
type HandlerSet = runtime.HandlerSet

// NewHandlerSet creates an empty registry.
var NewHandlerSet = runtime.NewHandlerSet

// Editor is the high-level entry point for the joist library.
// It owns the node tree of one document and serializes every access to it.
//
// Observers registered with Subscribe run while the Editor is locked and must
// not call back into it.
type Editor struct {
	mu   sync.Mutex
	tree *runtime.Tree

	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	resolver   ports.Resolver
	rootLayout domain.Layout

	// Name labels the document in logs. It is optional.
	Name string
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithResolver sets the component catalog used to build and load documents.
func WithResolver(r ports.Resolver) Option {
	return func(e *Editor) {
		e.resolver = r
	}
}

// WithRootLayout sets the flow axis Init gives a root that does not name one.
func WithRootLayout(layout domain.Layout) Option {
	return func(e *Editor) {
		e.rootLayout = layout
	}
}

// WithName labels the editor, usually with its document id.
func WithName(name string) Option {
	return func(e *Editor) {
		e.Name = name
	}
}

// New initializes an empty Editor.
func New(opts ...Option) *Editor {
	e := &Editor{rootLayout: domain.LayoutVertical}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.Name != "" {
		e.logger = e.logger.With("document", e.Name)
	}

	e.tree = runtime.NewTree(
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithResolver(e.resolver),
	)
	return e
}

// Resolver returns the component catalog, or nil.
func (e *Editor) Resolver() ports.Resolver {
	return e.resolver
}

// View runs fn with the tree locked. fn must not keep the tree.
func (e *Editor) View(fn func(t *Tree)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.tree)
}

// Update runs fn with the tree locked and returns its error. Actions applied
// by fn before it fails are kept.
func (e *Editor) Update(fn func(t *Tree) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.tree)
}

// Init replaces the document with a fresh tree built from root. The element
// always becomes the root canvas.
func (e *Editor) Init(root Element) error {
	if root.Component == "" {
		root.Component = "Container"
	}
	root.ID = domain.RootNodeID
	root.Canvas = true
	if root.Layout == "" {
		root.Layout = string(e.rootLayout)
	}

	scratch := runtime.NewTree(runtime.WithResolver(e.resolver))
	if _, err := scratch.Build(root, ""); err != nil {
		return err
	}
	nodes := make(map[string]*domain.Node, scratch.Len())
	for _, id := range scratch.IDs() {
		n, _ := scratch.Node(id)
		nodes[id] = n
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.ReplaceNodes(nodes)
}

// Add inserts new nodes. See runtime.Tree.Add.
func (e *Editor) Add(nodes []*domain.Node, parentID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Add(nodes, parentID)
}

// Build creates the nodes described by el under parentID and returns the id
// of the top node.
func (e *Editor) Build(el Element, parentID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Build(el, parentID)
}

// Move relocates a node. index is taken in newParentID's child list before
// the node is removed from its old position, so moving a node further down
// its own canvas leaves it at index-1.
func (e *Editor) Move(targetID, newParentID string, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Move(targetID, newParentID, index)
}

// Delete removes a node and everything under it.
func (e *Editor) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Delete(id)
}

// SetProp applies transform to the props of a node.
func (e *Editor) SetProp(id string, transform func(domain.Props) domain.Props) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.SetProp(id, transform)
}

// SetNodeEvent moves an event slot to id. An empty id clears it.
func (e *Editor) SetNodeEvent(eventType, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.SetNodeEvent(eventType, id)
}

// SetIndicator records the drop preview and reports whether it changed.
func (e *Editor) SetIndicator(ind *domain.Indicator) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.SetIndicator(ind)
}

// SetHidden toggles the hidden flag of a node.
func (e *Editor) SetHidden(id string, hidden bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.SetHidden(id, hidden)
}

// SetCustom applies transform to the custom data of a node.
func (e *Editor) SetCustom(id string, transform func(map[string]any) map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.SetCustom(id, transform)
}

// SetDOM attaches the host's rendered element to a node.
func (e *Editor) SetDOM(id string, dom any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.SetDOM(id, dom)
}

// ReplaceNodes swaps the whole store after checking its invariants.
func (e *Editor) ReplaceNodes(nodes map[string]*domain.Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.ReplaceNodes(nodes)
}

// Reset clears the document and the editing state.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree.Reset()
}

// Enabled reports whether drags may start.
func (e *Editor) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Enabled()
}

// SetEnabled toggles whether drags may start.
func (e *Editor) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree.SetEnabled(enabled)
}

// Node returns a copy of the record of id.
func (e *Editor) Node(id string) (*domain.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Node(id)
}

// IDs returns every node id in lexical order.
func (e *Editor) IDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.IDs()
}

// Len returns the number of nodes.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Len()
}

// Events returns a copy of the editing state.
func (e *Editor) Events() domain.EventsState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Events()
}

// Subscribe registers fn to run after every successful action.
func (e *Editor) Subscribe(fn func(domain.Change)) (unsubscribe func()) {
	e.mu.Lock()
	unsub := e.tree.Subscribe(fn)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		unsub()
	}
}

// Outline returns the nested view of the subtree under id.
func (e *Editor) Outline(id string) (*domain.OutlineNode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Outline(id)
}

// Serialize returns the persisted form of the document.
func (e *Editor) Serialize() domain.SerializedNodes {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Serialize()
}

// Deserialize replaces the document with doc, resolving every type through
// the editor's resolver.
func (e *Editor) Deserialize(doc domain.SerializedNodes) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Deserialize(doc, nil)
}

// Load replaces the document with the one stored under documentID.
func (e *Editor) Load(ctx context.Context, store ports.DocumentStore, documentID string) error {
	doc, err := store.Load(ctx, documentID)
	if err != nil {
		return err
	}
	if err := e.Deserialize(doc); err != nil {
		return fmt.Errorf("failed to load document %q: %w", documentID, err)
	}
	return nil
}

// Save persists the document under documentID.
func (e *Editor) Save(ctx context.Context, store ports.DocumentStore, documentID string) error {
	if err := store.Save(ctx, documentID, e.Serialize()); err != nil {
		e.logger.Warn("failed to save document", "id", documentID, "err", err)
		return err
	}
	return nil
}

// DropPlaceholder resolves where dragID would land when the pointer is at pt
// over targetID.
func (e *Editor) DropPlaceholder(dragID, targetID string, pt domain.Point, lookup ports.DOMLookup) *domain.Indicator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.DropPlaceholder(dragID, targetID, pt, lookup)
}

// LayerPlaceholder is DropPlaceholder for a layer tree panel.
func (e *Editor) LayerPlaceholder(dragID, targetID string, pt domain.Point, lookup ports.DOMLookup, layers ports.LayerLookup) *domain.Indicator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.LayerPlaceholder(dragID, targetID, pt, lookup, layers)
}

// Drag is a drag in progress. Its methods and the handlers it registers lock
// the Editor.
type Drag struct {
	e *Editor
	s *runtime.DragSession
}

// BeginDrag starts dragging id. Handlers for the drag events are attached to
// handlers until the drag ends.
func (e *Editor) BeginDrag(id string, lookup ports.DOMLookup, handlers ports.HandlerRegistry) (*Drag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var reg ports.HandlerRegistry
	if handlers != nil {
		reg = lockedRegistry{e: e, inner: handlers}
	}
	s, err := e.tree.BeginDrag(id, lookup, reg)
	if err != nil {
		return nil, err
	}
	return &Drag{e: e, s: s}, nil
}

// NodeID returns the dragged node.
func (d *Drag) NodeID() string {
	return d.s.NodeID()
}

// Indicator returns the current drop preview.
func (d *Drag) Indicator() *domain.Indicator {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	return d.s.Indicator()
}

// Over recomputes the indicator for the pointer at pt over target.
func (d *Drag) Over(target string, pt domain.Point) *domain.Indicator {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	return d.s.Over(target, pt)
}

// Drop applies the current indicator and ends the drag.
func (d *Drag) Drop() error {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	return d.s.Drop()
}

// Cancel ends the drag without moving anything.
func (d *Drag) Cancel() {
	d.e.mu.Lock()
	defer d.e.mu.Unlock()
	d.s.Cancel()
}

type lockedRegistry struct {
	e     *Editor
	inner ports.HandlerRegistry
}

func (r lockedRegistry) Register(event string, h ports.DragHandler) func() {
	return r.inner.Register(event, func(ev ports.DragEvent) {
		r.e.mu.Lock()
		defer r.e.mu.Unlock()
		h(ev)
	})
}
