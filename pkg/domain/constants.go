package domain

// RootNodeID is the identifier of the single root canvas of every document.
const RootNodeID = "rootNode"

// Prefixes used when generating node identifiers.
const (
	CanvasIDPrefix = "canvas-"
	NodeIDPrefix   = "node-"
)

// Prop keys with a structural meaning.
const (
	// PropSlot is the prop a canvas declares its slot name with when it is
	// registered as a linked canvas of a non-canvas parent.
	PropSlot = "id"

	// PropChildren is the conventional prop holding declarative children.
	PropChildren = "children"
)

// DefaultIndicatorThickness is the width (or height) in pixels of the suggested drop bar.
const DefaultIndicatorThickness = 2.0
