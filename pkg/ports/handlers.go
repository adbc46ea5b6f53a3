package ports

import "github.com/aretw0/joist/pkg/domain"

// Drag event names understood by a drag session.
const (
	DragOver = "dragover"
	DragEnd  = "dragend"
	// DragCancel is fired when the host loses the pointer.
	DragCancel = "dragcancel"
)

// DragEvent is what the host pointer layer reports during a drag.
type DragEvent struct {
	Target string       `json:"target"`
	Point  domain.Point `json:"point"`
}

// DragHandler reacts to a DragEvent.
type DragHandler func(DragEvent)

// HandlerRegistry is where drag-tracking handlers are attached for the
// duration of a drag.
type HandlerRegistry interface {
	// Register attaches h to the named event and returns its deregistration.
	Register(event string, h DragHandler) (deregister func())
}
