package runtime

import (
	"errors"
	"slices"
	"sync"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// ErrDragEnded is returned when a finished drag session is used again.
var ErrDragEnded = errors.New("drag session already ended")

// DragSession tracks one drag from pick-up to drop or cancel.
// Handlers registered at BeginDrag are removed on every exit path.
type DragSession struct {
	t      *Tree
	id     string
	lookup ports.DOMLookup

	deregister []func()
	current    *domain.Indicator
	lastValid  *domain.Indicator
	done       bool
}

// BeginDrag picks up id and, when handlers is set, attaches the session to the
// dragover, dragend and dragcancel events.
func (t *Tree) BeginDrag(id string, lookup ports.DOMLookup, handlers ports.HandlerRegistry) (*DragSession, error) {
	if err := t.draggable(id); err != nil {
		return nil, err
	}
	if err := t.SetNodeEvent(string(domain.EventDragged), id); err != nil {
		return nil, err
	}

	s := &DragSession{t: t, id: id, lookup: lookup}
	if handlers != nil {
		s.deregister = append(s.deregister,
			handlers.Register(ports.DragOver, func(ev ports.DragEvent) { s.Over(ev.Target, ev.Point) }),
			handlers.Register(ports.DragEnd, func(ports.DragEvent) { _ = s.Drop() }),
			handlers.Register(ports.DragCancel, func(ports.DragEvent) { s.Cancel() }),
		)
	}
	t.logger.Debug("drag started", "node", id)
	return s, nil
}

// NodeID returns the dragged node.
func (s *DragSession) NodeID() string {
	return s.id
}

// Indicator returns the current drop preview, or nil.
func (s *DragSession) Indicator() *domain.Indicator {
	return s.current
}

// Over recomputes the preview for the pointer at pt over target. An invalid
// placement keeps the geometry of the last valid one and carries the error.
func (s *DragSession) Over(target string, pt domain.Point) *domain.Indicator {
	if s.done {
		return nil
	}
	ind := s.t.DropPlaceholder(s.id, target, pt, s.lookup)
	if ind == nil {
		return s.current
	}

	if ind.Valid() {
		s.lastValid = ind
	} else if s.lastValid != nil {
		kept := *s.lastValid
		kept.Error = ind.Error
		ind = &kept
	}
	s.current = ind
	s.t.SetIndicator(ind)
	return ind
}

// Drop applies the current placement. A drop over an invalid placement leaves
// the tree untouched and returns the reason. The session ends either way.
func (s *DragSession) Drop() error {
	if s.done {
		return ErrDragEnded
	}
	defer s.end()

	ind := s.current
	if ind == nil {
		return nil
	}
	if ind.Error != nil {
		s.t.rejected(s.id, ind.Placement.Parent, ind.Error)
		return ind.Error
	}
	return s.t.Move(s.id, ind.Placement.Parent, ind.Placement.Index)
}

// Cancel ends the session without touching the tree.
func (s *DragSession) Cancel() {
	if s.done {
		return
	}
	s.end()
}

func (s *DragSession) end() {
	s.done = true
	for _, deregister := range s.deregister {
		deregister()
	}
	s.deregister = nil

	if s.t.events.Dragged == s.id {
		_ = s.t.SetNodeEvent(string(domain.EventDragged), "")
	}
	if s.t.events.Indicator != nil {
		s.t.SetIndicator(nil)
	}
	s.t.logger.Debug("drag ended", "node", s.id)
}

// HandlerSet is an in-memory ports.HandlerRegistry. Hosts feed pointer events
// into it with Fire.
type HandlerSet struct {
	mu       sync.Mutex
	next     int
	handlers map[string][]handlerEntry
}

type handlerEntry struct {
	handle int
	fn     ports.DragHandler
}

// NewHandlerSet creates an empty registry.
func NewHandlerSet() *HandlerSet {
	return &HandlerSet{handlers: make(map[string][]handlerEntry)}
}

// Register implements ports.HandlerRegistry.
func (s *HandlerSet) Register(event string, h ports.DragHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	handle := s.next
	s.handlers[event] = append(s.handlers[event], handlerEntry{handle: handle, fn: h})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.handlers[event] = slices.DeleteFunc(s.handlers[event], func(e handlerEntry) bool {
			return e.handle == handle
		})
		if len(s.handlers[event]) == 0 {
			delete(s.handlers, event)
		}
	}
}

// Fire delivers ev to every handler of event. Handlers may deregister while
// being called.
func (s *HandlerSet) Fire(event string, ev ports.DragEvent) {
	s.mu.Lock()
	entries := slices.Clone(s.handlers[event])
	s.mu.Unlock()

	for _, e := range entries {
		e.fn(ev)
	}
}

// Len returns the number of attached handlers across all events.
func (s *HandlerSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, hs := range s.handlers {
		n += len(hs)
	}
	return n
}
