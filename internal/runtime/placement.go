package runtime

import (
	"math"
	"slices"

	"github.com/aretw0/joist/pkg/domain"
	"github.com/aretw0/joist/pkg/ports"
)

// layerHeadingEdge is the height of the bands at the top and bottom of a layer
// heading that retarget a drop to the canvas' own parent.
const layerHeadingEdge = 10.0

type childBox struct {
	id    string
	index int
	info  domain.DOMInfo
}

// DropPlaceholder computes where dragID would land if released at pt while
// hovering targetID. It returns nil while the candidate canvas is not measured.
// The result depends only on the arguments and the current tree.
func (t *Tree) DropPlaceholder(dragID, targetID string, pt domain.Point, lookup ports.DOMLookup) *domain.Indicator {
	parent := t.containingCanvas(targetID)
	if parent == nil || lookup == nil {
		return nil
	}
	parentInfo := lookup.Lookup(parent.ID)
	if parentInfo == nil {
		return nil
	}

	boxes := make([]childBox, 0, len(parent.Data.Nodes))
	for i, id := range parent.Data.Nodes {
		if info := lookup.Lookup(id); info != nil {
			boxes = append(boxes, childBox{id: id, index: i, info: *info})
		}
	}

	layout := parent.Layout()
	if len(boxes) == 0 {
		return t.placed(dragID, domain.Placement{
			Parent: parent.ID,
			Index:  len(parent.Data.Nodes),
			Where:  domain.WhereInside,
		}, emptyCanvasRect(*parentInfo))
	}

	closest := boxes[0]
	best := math.Inf(1)
	for _, b := range boxes {
		if d := math.Abs(axis(pt, layout) - midpoint(b.info, layout)); d < best {
			best, closest = d, b
		}
	}

	// An empty canvas under the pointer takes the drop itself.
	if child := t.nodes[closest.id]; closest.id != dragID && child.IsCanvas() &&
		len(child.Data.Nodes) == 0 && closest.info.Contains(pt) {
		return t.placed(dragID, domain.Placement{
			Parent: child.ID,
			Index:  0,
			Where:  domain.WhereInside,
		}, emptyCanvasRect(closest.info))
	}

	placement := domain.Placement{
		Parent:      parent.ID,
		Index:       closest.index,
		Where:       domain.WhereBefore,
		CurrentNode: closest.id,
	}
	if axis(pt, barAxis(closest.info, layout)) >= midpoint(closest.info, barAxis(closest.info, layout)) {
		placement.Where = domain.WhereAfter
		placement.Index++
	}
	return t.placed(dragID, placement, barRect(closest.info, placement.Where, layout))
}

// LayerPlaceholder is DropPlaceholder for a layer tree panel. Over the heading
// of a nested canvas the top band drops before the canvas, the bottom band of
// a collapsed canvas drops after it and the middle appends into it.
func (t *Tree) LayerPlaceholder(dragID, targetID string, pt domain.Point, lookup ports.DOMLookup, layers ports.LayerLookup) *domain.Indicator {
	ind := t.DropPlaceholder(dragID, targetID, pt, lookup)
	if ind == nil || layers == nil {
		return ind
	}

	canvas := t.nodes[ind.Placement.Parent]
	grand, ok := t.nodes[canvas.Data.Parent]
	if !ok || !grand.IsCanvas() {
		return ind
	}
	layer := layers.Layer(canvas.ID)
	if layer == nil {
		return ind
	}

	pos := slices.Index(grand.Data.Nodes, canvas.ID)
	h := layer.Heading
	var placement domain.Placement
	switch {
	case pos >= 0 && pt.Y < h.Top+layerHeadingEdge:
		placement = domain.Placement{Parent: grand.ID, Index: pos, Where: domain.WhereBefore, CurrentNode: canvas.ID}
	case pos >= 0 && pt.Y > h.Bottom-layerHeadingEdge && !layer.Expanded:
		placement = domain.Placement{Parent: grand.ID, Index: pos + 1, Where: domain.WhereAfter, CurrentNode: canvas.ID}
	case pt.Y >= h.Top+layerHeadingEdge && pt.Y <= h.Bottom-layerHeadingEdge:
		placement = domain.Placement{Parent: canvas.ID, Index: len(canvas.Data.Nodes), Where: domain.WhereInside}
		if n := len(canvas.Data.Nodes); n > 0 {
			placement.Where = domain.WhereAfter
			placement.CurrentNode = canvas.Data.Nodes[n-1]
		}
	default:
		return ind
	}

	rect := ind.Rect
	if pInfo := lookup.Lookup(placement.Parent); pInfo != nil {
		rect = emptyCanvasRect(*pInfo)
		if placement.CurrentNode != "" {
			if cInfo := lookup.Lookup(placement.CurrentNode); cInfo != nil {
				rect = barRect(*cInfo, placement.Where, t.nodes[placement.Parent].Layout())
			}
		}
	}
	return t.placed(dragID, placement, rect)
}

// containingCanvas resolves a hovered node to the closest canvas, itself included.
func (t *Tree) containingCanvas(id string) *domain.Node {
	seen := map[string]bool{}
	for n, ok := t.nodes[id]; ok && !seen[n.ID]; n, ok = t.nodes[n.Data.Parent] {
		if n.IsCanvas() {
			return n
		}
		seen[n.ID] = true
	}
	return nil
}

func (t *Tree) placed(dragID string, placement domain.Placement, rect domain.Rect) *domain.Indicator {
	ind := &domain.Indicator{Placement: placement, Rect: rect}
	if err := t.draggable(dragID); err != nil {
		ind.Error = err
		return ind
	}
	if err := t.droppable(t.nodes[dragID], t.nodes[placement.Parent]); err != nil {
		ind.Error = err
	}
	return ind
}

// barAxis is the axis a child is split on. Floating children in a vertical
// canvas sit side by side.
func barAxis(info domain.DOMInfo, layout domain.Layout) domain.Layout {
	if layout == domain.LayoutVertical && !info.Floating {
		return domain.LayoutVertical
	}
	return domain.LayoutHorizontal
}

func axis(pt domain.Point, layout domain.Layout) float64 {
	if layout == domain.LayoutHorizontal {
		return pt.X
	}
	return pt.Y
}

func midpoint(info domain.DOMInfo, layout domain.Layout) float64 {
	if layout == domain.LayoutHorizontal {
		return info.Left + info.OuterWidth()/2
	}
	return info.Top + info.OuterHeight()/2
}

// barRect is the thin line drawn before or after a sibling.
func barRect(info domain.DOMInfo, where domain.Where, layout domain.Layout) domain.Rect {
	th := domain.DefaultIndicatorThickness
	if barAxis(info, layout) == domain.LayoutVertical {
		top := info.Top
		if where == domain.WhereAfter {
			top = info.Top + info.OuterHeight()
		}
		return domain.NewRect(top, info.Left, info.OuterWidth(), th)
	}
	left := info.Left
	if where == domain.WhereAfter {
		left = info.Left + info.OuterWidth()
	}
	return domain.NewRect(info.Top, left, th, info.OuterHeight())
}

// emptyCanvasRect is a line along the top of the canvas content box.
func emptyCanvasRect(info domain.DOMInfo) domain.Rect {
	width := info.Width - info.Padding.Left - info.Padding.Right
	return domain.NewRect(info.Top+info.Padding.Top, info.Left+info.Padding.Left, width, domain.DefaultIndicatorThickness)
}
