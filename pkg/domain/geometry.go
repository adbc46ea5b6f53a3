package domain

// Rect is a measured bounding box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// NewRect builds a Rect and derives Bottom and Right.
func NewRect(top, left, width, height float64) Rect {
	return Rect{
		Top:    top,
		Left:   left,
		Width:  width,
		Height: height,
		Bottom: top + height,
		Right:  left + width,
	}
}

// Contains reports whether p lies inside the box, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Box holds per-side lengths such as padding or margin.
type Box struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Point is a pointer position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DOMInfo is what the geometry collaborator reports for a mounted node.
type DOMInfo struct {
	Rect
	Padding Box `json:"padding"`
	Margin  Box `json:"margin"`
	// Floating is set for elements laid out across the dominant axis
	// (floated or inline elements in a vertical canvas).
	Floating bool `json:"floating,omitempty"`
}

// OuterWidth is the width including horizontal margins.
func (d DOMInfo) OuterWidth() float64 {
	return d.Width + d.Margin.Left + d.Margin.Right
}

// OuterHeight is the height including vertical margins.
func (d DOMInfo) OuterHeight() float64 {
	return d.Height + d.Margin.Top + d.Margin.Bottom
}
