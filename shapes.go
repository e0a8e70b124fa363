package quill

// Shape is the geometry accepted by Renderer fill, stroke, and clip
// operations. This is a sealed interface - only types in this package
// implement it.
//
// Renderers dispatch on the concrete type: Rect, RoundedRect, Line,
// Circle, and Path each have a dedicated primitive path; anything a
// backend cannot express directly degrades per the backend's rules
// (for clipping, to the transformed bounding box).
type Shape interface {
	// shapeMarker is an unexported method that seals this interface.
	shapeMarker()

	// Bounds returns the axis-aligned bounding box of the shape.
	Bounds() Rect
}

func (Rect) shapeMarker()        {}
func (RoundedRect) shapeMarker() {}
func (Line) shapeMarker()        {}
func (Circle) shapeMarker()      {}
func (*Path) shapeMarker()       {}

// Bounds implements Shape.
func (r Rect) Bounds() Rect { return r }

// Bounds implements Shape.
func (r RoundedRect) Bounds() Rect { return r.Rect }

// Line is a straight segment between two points.
type Line struct {
	P0, P1 Point
}

// Bounds implements Shape.
func (l Line) Bounds() Rect {
	return Rect{
		X0: minf(l.P0.X, l.P1.X),
		Y0: minf(l.P0.Y, l.P1.Y),
		X1: maxf(l.P0.X, l.P1.X),
		Y1: maxf(l.P0.Y, l.P1.Y),
	}
}

// Circle is a circle given by center and radius.
type Circle struct {
	Center Point
	Radius float64
}

// Bounds implements Shape.
func (c Circle) Bounds() Rect {
	return Rect{
		X0: c.Center.X - c.Radius,
		Y0: c.Center.Y - c.Radius,
		X1: c.Center.X + c.Radius,
		Y1: c.Center.Y + c.Radius,
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
