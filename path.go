package quill

import "math"

// DefaultFlattenTolerance is the curve flattening tolerance, in pixels,
// used when converting quadratic segments to line segments.
const DefaultFlattenTolerance = 0.1

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo moves to a point without drawing.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo draws a line to a point.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// QuadTo draws a quadratic Bezier curve.
type QuadTo struct {
	Control Point
	Point   Point
}

func (QuadTo) isPathElement() {}

// CubicTo draws a cubic Bezier curve.
//
// Renderers do not rasterize cubic segments; see Renderer.Stroke and
// Renderer.Fill for how they are handled.
type CubicTo struct {
	Control1 Point
	Control2 Point
	Point    Point
}

func (CubicTo) isPathElement() {}

// ClosePath closes the current subpath.
type ClosePath struct{}

func (ClosePath) isPathElement() {}

// Path represents a vector path.
type Path struct {
	elements []PathElement
	start    Point // Starting point of current subpath
	current  Point // Current point
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		elements: make([]PathElement, 0, 16),
	}
}

// MoveTo moves to a point without drawing.
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, MoveTo{Point: pt})
	p.start = pt
	p.current = pt
}

// LineTo draws a line to a point.
func (p *Path) LineTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
}

// QuadraticTo draws a quadratic Bezier curve.
func (p *Path) QuadraticTo(cx, cy, x, y float64) {
	ctrl := Pt(cx, cy)
	pt := Pt(x, y)
	p.elements = append(p.elements, QuadTo{Control: ctrl, Point: pt})
	p.current = pt
}

// CubicTo draws a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.elements = append(p.elements, CubicTo{
		Control1: Pt(c1x, c1y),
		Control2: Pt(c2x, c2y),
		Point:    Pt(x, y),
	})
	p.current = Pt(x, y)
}

// Close closes the current subpath by drawing a line to the start point.
func (p *Path) Close() {
	p.elements = append(p.elements, ClosePath{})
	p.current = p.start
}

// Clear removes all elements from the path.
func (p *Path) Clear() {
	p.elements = p.elements[:0]
	p.start = Point{}
	p.current = Point{}
}

// Elements returns the path elements.
func (p *Path) Elements() []PathElement {
	return p.elements
}

// IsEmpty reports whether the path has no elements.
func (p *Path) IsEmpty() bool {
	return len(p.elements) == 0
}

// Transform returns a copy of the path with m applied to all points.
func (p *Path) Transform(m Matrix) *Path {
	result := NewPath()
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			pt := m.TransformPoint(e.Point)
			result.MoveTo(pt.X, pt.Y)
		case LineTo:
			pt := m.TransformPoint(e.Point)
			result.LineTo(pt.X, pt.Y)
		case QuadTo:
			ctrl := m.TransformPoint(e.Control)
			pt := m.TransformPoint(e.Point)
			result.QuadraticTo(ctrl.X, ctrl.Y, pt.X, pt.Y)
		case CubicTo:
			c1 := m.TransformPoint(e.Control1)
			c2 := m.TransformPoint(e.Control2)
			pt := m.TransformPoint(e.Point)
			result.CubicTo(c1.X, c1.Y, c2.X, c2.Y, pt.X, pt.Y)
		case ClosePath:
			result.Close()
		}
	}
	return result
}

// Bounds implements Shape. Control points are included, so the box may
// be slightly larger than the exact curve extent.
func (p *Path) Bounds() Rect {
	if len(p.elements) == 0 {
		return Rect{}
	}
	b := Rect{
		X0: math.Inf(1), Y0: math.Inf(1),
		X1: math.Inf(-1), Y1: math.Inf(-1),
	}
	grow := func(pt Point) {
		b.X0 = math.Min(b.X0, pt.X)
		b.Y0 = math.Min(b.Y0, pt.Y)
		b.X1 = math.Max(b.X1, pt.X)
		b.Y1 = math.Max(b.Y1, pt.Y)
	}
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			grow(e.Point)
		case LineTo:
			grow(e.Point)
		case QuadTo:
			grow(e.Control)
			grow(e.Point)
		case CubicTo:
			grow(e.Control1)
			grow(e.Control2)
			grow(e.Point)
		}
	}
	return b
}

// Rectangle adds a rectangle to the path.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Circle adds a circle to the path using quadratic Bezier segments.
// Quadratics are used so the whole path stays within the segment kinds
// every renderer rasterizes directly.
func (p *Path) Circle(cx, cy, r float64) {
	const segments = 8
	step := 2 * math.Pi / segments
	// Control points sit on the tangent intersections.
	k := r / math.Cos(step/2)
	p.MoveTo(cx+r, cy)
	for i := 1; i <= segments; i++ {
		mid := float64(i)*step - step/2
		end := float64(i) * step
		p.QuadraticTo(
			cx+k*math.Cos(mid), cy+k*math.Sin(mid),
			cx+r*math.Cos(end), cy+r*math.Sin(end),
		)
	}
	p.Close()
}

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	result := NewPath()
	result.elements = make([]PathElement, len(p.elements))
	copy(result.elements, p.elements)
	result.start = p.start
	result.current = p.current
	return result
}

// FlattenQuad appends line-segment end points approximating the
// quadratic curve p0..p2 to dst, within the given tolerance. The start
// point p0 itself is not appended.
func FlattenQuad(dst []Point, p0, ctrl, p2 Point, tolerance float64) []Point {
	if tolerance <= 0 {
		tolerance = DefaultFlattenTolerance
	}
	// Distance from the control point to the chord midpoint bounds the
	// curve's deviation from the chord.
	mid := p0.Lerp(p2, 0.5)
	dev := ctrl.Distance(mid)
	n := 1
	if dev > tolerance {
		n = int(math.Ceil(math.Sqrt(dev / tolerance)))
		if n > 64 {
			n = 64
		}
	}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		a := p0.Lerp(ctrl, t)
		b := ctrl.Lerp(p2, t)
		dst = append(dst, a.Lerp(b, t))
	}
	return dst
}
