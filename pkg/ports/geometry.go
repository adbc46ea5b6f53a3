package ports

import "github.com/aretw0/joist/pkg/domain"

// DOMLookup is the geometry collaborator. It returns the measured box of a
// node, or nil when the node is not mounted yet.
type DOMLookup interface {
	Lookup(id string) *domain.DOMInfo
}

// DOMLookupFunc adapts a function to the DOMLookup interface.
type DOMLookupFunc func(id string) *domain.DOMInfo

// Lookup calls f(id).
func (f DOMLookupFunc) Lookup(id string) *domain.DOMInfo {
	return f(id)
}

// DOMMap is a static DOMLookup, handy for hosts that measure in batches.
type DOMMap map[string]domain.DOMInfo

// Lookup returns the recorded box of id.
func (m DOMMap) Lookup(id string) *domain.DOMInfo {
	info, ok := m[id]
	if !ok {
		return nil
	}
	return &info
}

// LayerInfo describes a row of a layer tree panel.
type LayerInfo struct {
	// Heading is the box of the row title.
	Heading domain.Rect
	// Expanded is true when the row shows its children.
	Expanded bool
}

// LayerLookup returns the layer row of a node, or nil when it is not shown.
type LayerLookup interface {
	Layer(id string) *LayerInfo
}

// LayerMap is a static LayerLookup.
type LayerMap map[string]LayerInfo

// Layer returns the recorded row of id.
func (m LayerMap) Layer(id string) *LayerInfo {
	info, ok := m[id]
	if !ok {
		return nil
	}
	return &info
}
