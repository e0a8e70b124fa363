package quill

import "math"

// Rect is an axis-aligned rectangle given by its min and max corners.
type Rect struct {
	X0, Y0 float64
	X1, Y1 float64
}

// NewRect creates a rectangle from two corner coordinates.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// RectFromOriginSize creates a rectangle from an origin point and a size.
func RectFromOriginSize(origin Point, size Size) Rect {
	return Rect{
		X0: origin.X,
		Y0: origin.Y,
		X1: origin.X + size.Width,
		Y1: origin.Y + size.Height,
	}
}

// Width returns the rectangle width.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the rectangle height.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Origin returns the min corner.
func (r Rect) Origin() Point { return Point{X: r.X0, Y: r.Y0} }

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X < r.X1 && p.Y >= r.Y0 && p.Y < r.Y1
}

// Intersect returns the intersection of two rectangles.
// The result may be empty.
func (r Rect) Intersect(q Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, q.X0),
		Y0: math.Max(r.Y0, q.Y0),
		X1: math.Min(r.X1, q.X1),
		Y1: math.Min(r.Y1, q.Y1),
	}
}

// Union returns the smallest rectangle covering both rectangles.
func (r Rect) Union(q Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, q.X0),
		Y0: math.Min(r.Y0, q.Y0),
		X1: math.Max(r.X1, q.X1),
		Y1: math.Max(r.Y1, q.Y1),
	}
}

// Inflate returns the rectangle grown by dx and dy on each side.
func (r Rect) Inflate(dx, dy float64) Rect {
	return Rect{X0: r.X0 - dx, Y0: r.Y0 - dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// Transform returns the axis-aligned bounding box of the rectangle
// after applying m to its four corners.
func (r Rect) Transform(m Matrix) Rect {
	p0 := m.TransformPoint(Point{X: r.X0, Y: r.Y0})
	p1 := m.TransformPoint(Point{X: r.X1, Y: r.Y0})
	p2 := m.TransformPoint(Point{X: r.X0, Y: r.Y1})
	p3 := m.TransformPoint(Point{X: r.X1, Y: r.Y1})
	return Rect{
		X0: math.Min(math.Min(p0.X, p1.X), math.Min(p2.X, p3.X)),
		Y0: math.Min(math.Min(p0.Y, p1.Y), math.Min(p2.Y, p3.Y)),
		X1: math.Max(math.Max(p0.X, p1.X), math.Max(p2.X, p3.X)),
		Y1: math.Max(math.Max(p0.Y, p1.Y), math.Max(p2.Y, p3.Y)),
	}
}

// Scale returns the rectangle with all coordinates multiplied by s.
func (r Rect) Scale(s float64) Rect {
	return Rect{X0: r.X0 * s, Y0: r.Y0 * s, X1: r.X1 * s, Y1: r.Y1 * s}
}

// CornerRadii holds one radius per rectangle corner.
type CornerRadii struct {
	TopLeft     float64
	TopRight    float64
	BottomRight float64
	BottomLeft  float64
}

// Uniform reports whether all four radii are equal.
func (c CornerRadii) Uniform() bool {
	return c.TopLeft == c.TopRight &&
		c.TopRight == c.BottomRight &&
		c.BottomRight == c.BottomLeft
}

// RoundedRect is a rectangle with rounded corners.
type RoundedRect struct {
	Rect  Rect
	Radii CornerRadii
}

// NewRoundedRect creates a rounded rectangle with a uniform corner radius.
func NewRoundedRect(r Rect, radius float64) RoundedRect {
	return RoundedRect{
		Rect: r,
		Radii: CornerRadii{
			TopLeft:     radius,
			TopRight:    radius,
			BottomRight: radius,
			BottomLeft:  radius,
		},
	}
}
