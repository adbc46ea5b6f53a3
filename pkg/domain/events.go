package domain

import "fmt"

// EventType names an editing-state slot that at most one node holds at a time.
type EventType string

const (
	EventSelected EventType = "selected"
	EventHovered  EventType = "hovered"
	EventDragged  EventType = "dragged"
)

// ParseEventType accepts both the rich names and the short aliases
// (active, hover, dragging).
func ParseEventType(s string) (EventType, error) {
	switch s {
	case "selected", "active":
		return EventSelected, nil
	case "hovered", "hover":
		return EventHovered, nil
	case "dragged", "dragging":
		return EventDragged, nil
	case "indicator":
		return "", NewError(KindUnknownEventType, "the indicator is set through SetIndicator, not as a node event")
	default:
		return "", NewError(KindUnknownEventType, fmt.Sprintf("unknown event type %q", s))
	}
}

// Where is the side of the current node a drop lands on.
type Where string

const (
	WhereBefore Where = "before"
	WhereAfter  Where = "after"
	WhereInside Where = "inside"
)

// Placement is the resolved destination of a drop.
type Placement struct {
	Parent string `json:"parent"`
	// Index is the insertion index in Parent's child list as it is before the move.
	Index       int    `json:"index"`
	Where       Where  `json:"where"`
	CurrentNode string `json:"currentNode,omitempty"`
}

// Indicator is the (possibly invalid) drop preview.
type Indicator struct {
	Placement Placement `json:"placement"`
	// Rect is the suggested overlay rectangle for the preview.
	Rect  Rect  `json:"rect"`
	Error error `json:"-"`
}

// Valid reports whether the indicator carries no error.
func (i *Indicator) Valid() bool {
	return i != nil && i.Error == nil
}

// EventsState tracks which node holds each event slot plus the drop indicator.
type EventsState struct {
	Selected  string     `json:"selected,omitempty"`
	Hovered   string     `json:"hovered,omitempty"`
	Dragged   string     `json:"dragged,omitempty"`
	Indicator *Indicator `json:"indicator,omitempty"`
}

// Holder returns the id holding the event, or "".
func (e *EventsState) Holder(t EventType) string {
	switch t {
	case EventSelected:
		return e.Selected
	case EventHovered:
		return e.Hovered
	case EventDragged:
		return e.Dragged
	}
	return ""
}

// SetHolder records id as the holder of the event.
func (e *EventsState) SetHolder(t EventType, id string) {
	switch t {
	case EventSelected:
		e.Selected = id
	case EventHovered:
		e.Hovered = id
	case EventDragged:
		e.Dragged = id
	}
}

// Flag returns a pointer to the matching per-node flag.
func (n *NodeEvents) Flag(t EventType) *bool {
	switch t {
	case EventSelected:
		return &n.Selected
	case EventHovered:
		return &n.Hovered
	case EventDragged:
		return &n.Dragged
	}
	return nil
}

// Action names reported to observers and hooks.
const (
	ActionAdd          = "add"
	ActionMove         = "move"
	ActionDelete       = "delete"
	ActionSetProp      = "setProp"
	ActionSetNodeEvent = "setNodeEvent"
	ActionSetIndicator = "setIndicator"
	ActionSetHidden    = "setHidden"
	ActionSetCustom    = "setCustom"
	ActionSetDOM       = "setDOM"
	ActionReplaceNodes = "replaceNodes"
	ActionReset        = "reset"
)

// Change is delivered to observers after every successful action.
type Change struct {
	Action  string   `json:"action"`
	NodeIDs []string `json:"node_ids,omitempty"`
}

// DropEvent describes a drop the engine refused.
type DropEvent struct {
	NodeID string `json:"node_id"`
	Target string `json:"target"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnMutation     func(*Change)
	OnDropRejected func(*DropEvent)
}
