package domain

import (
	"errors"
	"fmt"
)

// Kind is the machine readable category of an engine error.
type Kind string

const (
	KindInvalidNodeID               Kind = "InvalidNodeId"
	KindDuplicateNodeID             Kind = "DuplicateNodeId"
	KindNoParent                    Kind = "NoParent"
	KindRootCanvasMissingID         Kind = "RootCanvasMissingId"
	KindCannotDrag                  Kind = "CannotDrag"
	KindCannotDrop                  Kind = "CannotDrop"
	KindCannotMoveTopLevelNode      Kind = "CannotMoveTopLevelNode"
	KindCannotDeleteRoot            Kind = "CannotDeleteRoot"
	KindCannotDeleteNonDirectCanvas Kind = "CannotDeleteNonDirectCanvas"
	KindUnknownEventType            Kind = "UnknownEventType"
	KindUnresolvedComponent         Kind = "UnresolvedComponent"
	KindInvalidTree                 Kind = "InvalidTree"
	KindInvalidProps                Kind = "InvalidProps"
)

// Reason distinguishes the failing link of a drag or drop validation chain.
type Reason string

const (
	ReasonTopLevel          Reason = "top_level"
	ReasonNonCanvasParent   Reason = "non_canvas_parent"
	ReasonDragRule          Reason = "drag_rule"
	ReasonNonCanvasTarget   Reason = "non_canvas_destination"
	ReasonIncomingRule      Reason = "incoming_rule"
	ReasonDropRule          Reason = "drop_rule"
	ReasonDescendant        Reason = "descendant"
	ReasonOutgoingRule      Reason = "outgoing_rule"
	ReasonEditorDisabled    Reason = "editor_disabled"
	ReasonUnmeasuredParent  Reason = "unmeasured_parent"
	ReasonDuplicateLinkSlot Reason = "duplicate_slot"
)

// Error is a structured engine error.
type Error struct {
	Kind    Kind
	Reason  Reason
	NodeID  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Reason == "" || t.Reason == e.Reason)
}

// NewError creates an error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NodeError creates an error of the given kind about a node.
func NodeError(kind Kind, reason Reason, nodeID, message string) *Error {
	return &Error{Kind: kind, Reason: reason, NodeID: nodeID, Message: message}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ReasonOf extracts the validation reason from err, if available.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// Sentinel values for errors.Is.
var (
	ErrInvalidNodeID               = &Error{Kind: KindInvalidNodeID}
	ErrDuplicateNodeID             = &Error{Kind: KindDuplicateNodeID}
	ErrNoParent                    = &Error{Kind: KindNoParent}
	ErrRootCanvasMissingID         = &Error{Kind: KindRootCanvasMissingID}
	ErrCannotDrag                  = &Error{Kind: KindCannotDrag}
	ErrCannotDrop                  = &Error{Kind: KindCannotDrop}
	ErrCannotMoveTopLevelNode      = &Error{Kind: KindCannotMoveTopLevelNode}
	ErrCannotDeleteRoot            = &Error{Kind: KindCannotDeleteRoot}
	ErrCannotDeleteNonDirectCanvas = &Error{Kind: KindCannotDeleteNonDirectCanvas}
	ErrUnknownEventType            = &Error{Kind: KindUnknownEventType}
	ErrUnresolvedComponent         = &Error{Kind: KindUnresolvedComponent}
	ErrInvalidTree                 = &Error{Kind: KindInvalidTree}
	ErrInvalidProps                = &Error{Kind: KindInvalidProps}
)

// ErrDocumentNotFound is returned when a document ID cannot be found in the store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrDocumentExists is returned when creating a document under a taken ID.
var ErrDocumentExists = errors.New("document already exists")
