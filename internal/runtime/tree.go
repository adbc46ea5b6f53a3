package runtime

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/aretw0/joist/internal/logging"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// Tree is the node store of one document. All mutations go through its actions;
// queries never mutate it. A Tree is not safe for concurrent use: callers
// serialize access (the joist.Editor facade does).
type Tree struct {
	nodes   map[string]*domain.Node
	events  domain.EventsState
	enabled bool

	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	resolver ports.Resolver

	observers  []observer
	nextHandle int
}

type observer struct {
	handle int
	fn     func(domain.Change)
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Tree) {
		t.hooks = hooks
	}
}

// WithResolver sets the component catalog used by Build and Deserialize.
// Without one every component name is accepted and built as a leaf.
func WithResolver(r ports.Resolver) Option {
	return func(t *Tree) {
		t.resolver = r
	}
}

// NewTree creates an empty, enabled tree.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		nodes:   make(map[string]*domain.Node),
		enabled: true,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Subscribe registers fn to be called after every successful action.
// The returned function unregisters it and is safe to call more than once.
func (t *Tree) Subscribe(fn func(domain.Change)) (unsubscribe func()) {
	t.nextHandle++
	handle := t.nextHandle
	t.observers = append(t.observers, observer{handle: handle, fn: fn})

	return func() {
		t.observers = slices.DeleteFunc(t.observers, func(o observer) bool {
			return o.handle == handle
		})
	}
}

func (t *Tree) notify(action string, ids ...string) {
	change := domain.Change{Action: action, NodeIDs: ids}
	t.logger.Debug("tree mutated", "action", action, "nodes", ids)
	if t.hooks.OnMutation != nil {
		t.hooks.OnMutation(&change)
	}
	for _, o := range slices.Clone(t.observers) {
		o.fn(change)
	}
}

// Enabled reports whether the editor accepts drags.
func (t *Tree) Enabled() bool {
	return t.enabled
}

// SetEnabled toggles whether drags may start.
func (t *Tree) SetEnabled(enabled bool) {
	t.enabled = enabled
}

// Events returns a copy of the editing state.
func (t *Tree) Events() domain.EventsState {
	ev := t.events
	if ev.Indicator != nil {
		ind := *ev.Indicator
		ev.Indicator = &ind
	}
	return ev
}

// Len returns the number of nodes in the store.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// IDs returns every node id in lexical order.
func (t *Tree) IDs() []string {
	ids := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Node implements domain.Query. It returns a copy of the record.
func (t *Tree) Node(id string) (*domain.Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Ancestors implements domain.Query.
func (t *Tree) Ancestors(id string, deep bool) []string {
	return t.Query(id).Ancestors(deep)
}

func (t *Tree) get(id string) (*domain.Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, domain.NodeError(domain.KindInvalidNodeID, "", id, fmt.Sprintf("node %q does not exist", id))
	}
	return n, nil
}

func (t *Tree) isLinked(id string) bool {
	n, ok := t.nodes[id]
	if !ok || n.Data.Parent == "" {
		return false
	}
	parent, ok := t.nodes[n.Data.Parent]
	if !ok {
		return false
	}
	for _, linked := range parent.Data.LinkedNodes {
		if linked == id {
			return true
		}
	}
	return false
}

func (t *Tree) isTopLevel(id string) bool {
	return id == domain.RootNodeID || t.isLinked(id)
}

// closestParent is the first ancestor, starting at parentID, that is not a linked canvas.
func (t *Tree) closestParent(parentID string) string {
	if t.isLinked(parentID) {
		return t.nodes[parentID].Data.Parent
	}
	return parentID
}
