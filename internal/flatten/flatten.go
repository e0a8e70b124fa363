// Package flatten converts shapes into device-space polyline contours.
// Both rendering backends consume these: the software rasterizer turns
// them into coverage masks, the GPU backend into capsule segments and
// atlas masks.
package flatten

import (
	"math"

	"github.com/quillui/quill"
)

// ArcSegments is the number of line segments per quarter circle when
// flattening arcs and round joins.
const ArcSegments = 8

// Contour is a flattened polyline in device pixels.
type Contour struct {
	Pts    []quill.Point
	Closed bool
}

// Bounds returns the bounding box of a contour set. The second return
// is false when the set has no points.
func Bounds(contours []Contour) (quill.Rect, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range contours {
		for _, p := range c.Pts {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if minX > maxX {
		return quill.Rect{}, false
	}
	return quill.NewRect(minX, minY, maxX, maxY), true
}

// Fill flattens a shape into closed contours for filling. Line shapes
// have no interior and produce nothing.
func Fill(shape quill.Shape, dm quill.Matrix) []Contour {
	switch s := shape.(type) {
	case quill.Rect:
		return []Contour{rectContour(s, dm)}
	case quill.RoundedRect:
		return []Contour{RoundedRectContour(s, dm)}
	case quill.Circle:
		return []Contour{circleContour(s, dm, 0, 2*math.Pi, true)}
	case quill.Line:
		return nil
	case *quill.Path:
		return pathContours(s, dm, true)
	}
	return nil
}

// Stroke flattens a shape into center lines for stroking. Circles
// stroke as a half arc from angle 0 to pi.
func Stroke(shape quill.Shape, dm quill.Matrix) []Contour {
	switch s := shape.(type) {
	case quill.Rect:
		return []Contour{rectContour(s, dm)}
	case quill.RoundedRect:
		return []Contour{RoundedRectContour(s, dm)}
	case quill.Line:
		return []Contour{{Pts: []quill.Point{
			dm.TransformPoint(s.P0),
			dm.TransformPoint(s.P1),
		}}}
	case quill.Circle:
		return []Contour{circleContour(s, dm, 0, math.Pi, false)}
	case *quill.Path:
		return pathContours(s, dm, false)
	}
	return nil
}

func rectContour(r quill.Rect, dm quill.Matrix) Contour {
	return Contour{
		Pts: []quill.Point{
			dm.TransformPoint(quill.Pt(r.X0, r.Y0)),
			dm.TransformPoint(quill.Pt(r.X1, r.Y0)),
			dm.TransformPoint(quill.Pt(r.X1, r.Y1)),
			dm.TransformPoint(quill.Pt(r.X0, r.Y1)),
		},
		Closed: true,
	}
}

// RoundedRectContour builds the rounded outline in logical space and
// maps every sample through dm so rotation and shear survive.
func RoundedRectContour(rr quill.RoundedRect, dm quill.Matrix) Contour {
	r := rr.Rect
	rad := rr.Radii
	clampR := func(v float64) float64 {
		limit := math.Min(r.Width(), r.Height()) / 2
		return math.Min(math.Max(v, 0), limit)
	}
	tl, tr := clampR(rad.TopLeft), clampR(rad.TopRight)
	br, bl := clampR(rad.BottomRight), clampR(rad.BottomLeft)

	var pts []quill.Point
	add := func(p quill.Point) {
		pts = append(pts, dm.TransformPoint(p))
	}
	arc := func(cx, cy, radius, a0, a1 float64) {
		if radius <= 0 {
			add(quill.Pt(cx, cy))
			return
		}
		for i := 0; i <= ArcSegments; i++ {
			a := a0 + (a1-a0)*float64(i)/ArcSegments
			add(quill.Pt(cx+radius*math.Cos(a), cy+radius*math.Sin(a)))
		}
	}

	arc(r.X0+tl, r.Y0+tl, tl, math.Pi, 1.5*math.Pi)
	arc(r.X1-tr, r.Y0+tr, tr, 1.5*math.Pi, 2*math.Pi)
	arc(r.X1-br, r.Y1-br, br, 0, 0.5*math.Pi)
	arc(r.X0+bl, r.Y1-bl, bl, 0.5*math.Pi, math.Pi)
	return Contour{Pts: pts, Closed: true}
}

func circleContour(c quill.Circle, dm quill.Matrix, a0, a1 float64, closed bool) Contour {
	n := int(math.Ceil((a1 - a0) / (math.Pi / 2) * ArcSegments))
	if n < 2 {
		n = 2
	}
	pts := make([]quill.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := a0 + (a1-a0)*float64(i)/float64(n)
		pts = append(pts, dm.TransformPoint(quill.Pt(
			c.Center.X+c.Radius*math.Cos(a),
			c.Center.Y+c.Radius*math.Sin(a),
		)))
	}
	return Contour{Pts: pts, Closed: closed}
}

// pathContours walks path elements into flattened contours. Cubic
// segments are not rasterized: the segment is skipped and a warning
// logged so nothing is drawn in its place.
func pathContours(p *quill.Path, dm quill.Matrix, forFill bool) []Contour {
	var out []Contour
	var cur []quill.Point
	var logical []quill.Point // same contour, pre-transform, for flattening
	closedFlag := false

	flush := func() {
		if len(cur) >= 2 {
			out = append(out, Contour{Pts: cur, Closed: closedFlag})
		}
		cur = nil
		logical = nil
		closedFlag = false
	}

	last := func() (quill.Point, bool) {
		if len(logical) == 0 {
			return quill.Point{}, false
		}
		return logical[len(logical)-1], true
	}

	add := func(pt quill.Point) {
		logical = append(logical, pt)
		cur = append(cur, dm.TransformPoint(pt))
	}

	skipped := 0
	for _, elem := range p.Elements() {
		switch e := elem.(type) {
		case quill.MoveTo:
			flush()
			add(e.Point)
		case quill.LineTo:
			add(e.Point)
		case quill.QuadTo:
			p0, ok := last()
			if !ok {
				add(e.Point)
				continue
			}
			var flat []quill.Point
			flat = quill.FlattenQuad(flat, p0, e.Control, e.Point, quill.DefaultFlattenTolerance)
			for _, fp := range flat {
				add(fp)
			}
		case quill.CubicTo:
			skipped++
		case quill.ClosePath:
			closedFlag = true
			flush()
		}
	}
	flush()

	if skipped > 0 {
		op := "stroke"
		if forFill {
			op = "fill"
		}
		quill.Logger().Warn("path: unsupported cubic segment skipped",
			"op", op, "count", skipped)
	}
	return out
}
