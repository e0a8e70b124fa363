package flatten

import (
	"math"
	"testing"

	"github.com/quillui/quill"
)

func TestBounds(t *testing.T) {
	cs := []Contour{
		{Pts: []quill.Point{quill.Pt(5, 2), quill.Pt(-1, 7)}},
		{Pts: []quill.Point{quill.Pt(3, 10)}},
	}
	b, ok := Bounds(cs)
	if !ok {
		t.Fatal("Bounds reported empty for non-empty contours")
	}
	if b != quill.NewRect(-1, 2, 5, 10) {
		t.Errorf("Bounds = %v, want (-1,2,5,10)", b)
	}
}

func TestBoundsEmpty(t *testing.T) {
	if _, ok := Bounds(nil); ok {
		t.Error("nil contour set should report no bounds")
	}
	if _, ok := Bounds([]Contour{{}}); ok {
		t.Error("contour with no points should report no bounds")
	}
}

func TestFillRect(t *testing.T) {
	cs := Fill(quill.NewRect(0, 0, 10, 20), quill.Scaling(2, 2))
	if len(cs) != 1 {
		t.Fatalf("got %d contours, want 1", len(cs))
	}
	c := cs[0]
	if !c.Closed {
		t.Error("rect fill contour should be closed")
	}
	if len(c.Pts) != 4 {
		t.Fatalf("got %d points, want 4", len(c.Pts))
	}
	if c.Pts[2] != quill.Pt(20, 40) {
		t.Errorf("transformed corner = %v, want (20,40)", c.Pts[2])
	}
}

func TestFillLineEmpty(t *testing.T) {
	if cs := Fill(quill.Line{P0: quill.Pt(0, 0), P1: quill.Pt(5, 5)}, quill.Identity()); cs != nil {
		t.Errorf("line fill = %d contours, want none", len(cs))
	}
}

func TestFillCircleClosed(t *testing.T) {
	cs := Fill(quill.Circle{Center: quill.Pt(0, 0), Radius: 10}, quill.Identity())
	if len(cs) != 1 || !cs[0].Closed {
		t.Fatal("circle fill should be one closed contour")
	}
	for _, p := range cs[0].Pts {
		if d := p.Length(); math.Abs(d-10) > 1e-9 {
			t.Errorf("point %v at radius %v, want 10", p, d)
		}
	}
}

func TestStrokeLineOpen(t *testing.T) {
	cs := Stroke(quill.Line{P0: quill.Pt(1, 2), P1: quill.Pt(3, 4)}, quill.Translate(10, 0))
	if len(cs) != 1 {
		t.Fatalf("got %d contours, want 1", len(cs))
	}
	c := cs[0]
	if c.Closed {
		t.Error("line stroke should be open")
	}
	if len(c.Pts) != 2 || c.Pts[0] != quill.Pt(11, 2) || c.Pts[1] != quill.Pt(13, 4) {
		t.Errorf("points = %v", c.Pts)
	}
}

func TestStrokeCircleHalfArc(t *testing.T) {
	cs := Stroke(quill.Circle{Center: quill.Pt(0, 0), Radius: 10}, quill.Identity())
	if len(cs) != 1 {
		t.Fatalf("got %d contours, want 1", len(cs))
	}
	c := cs[0]
	if c.Closed {
		t.Error("half arc should be open")
	}

	first := c.Pts[0]
	last := c.Pts[len(c.Pts)-1]
	if first.Distance(quill.Pt(10, 0)) > 1e-9 {
		t.Errorf("arc start = %v, want (10,0)", first)
	}
	if last.Distance(quill.Pt(-10, 0)) > 1e-9 {
		t.Errorf("arc end = %v, want (-10,0)", last)
	}
	// The arc runs through positive y only (angles 0..pi).
	for _, p := range c.Pts[1 : len(c.Pts)-1] {
		if p.Y <= 0 {
			t.Errorf("arc point %v on wrong side", p)
		}
	}
}

func TestRoundedRectContourClampsRadii(t *testing.T) {
	rr := quill.NewRoundedRect(quill.NewRect(0, 0, 10, 10), 50)
	c := RoundedRectContour(rr, quill.Identity())
	if !c.Closed {
		t.Fatal("rounded rect contour should be closed")
	}
	b, _ := Bounds([]Contour{c})
	// Radii clamp to half the short side; the outline stays inside the
	// rect.
	if b.X0 < -1e-9 || b.Y0 < -1e-9 || b.X1 > 10+1e-9 || b.Y1 > 10+1e-9 {
		t.Errorf("outline bounds %v exceed the rect", b)
	}
}

func TestRoundedRectContourZeroRadii(t *testing.T) {
	rr := quill.RoundedRect{Rect: quill.NewRect(0, 0, 10, 10)}
	c := RoundedRectContour(rr, quill.Identity())
	if len(c.Pts) != 4 {
		t.Errorf("zero radii produced %d points, want 4 corners", len(c.Pts))
	}
}

func TestRoundedRectContourRotates(t *testing.T) {
	rr := quill.NewRoundedRect(quill.NewRect(-10, -10, 10, 10), 3)
	rot := quill.Rotate(math.Pi / 4)
	c := RoundedRectContour(rr, rot)

	// Rotation happens per sample, so the bounds widen to the rotated
	// extent instead of staying axis aligned.
	b, _ := Bounds([]Contour{c})
	if b.Width() < 20 {
		t.Errorf("rotated outline width = %v, want wider than the rect", b.Width())
	}
}

func TestPathContoursQuadFlattened(t *testing.T) {
	p := quill.NewPath()
	p.MoveTo(0, 0)
	p.QuadraticTo(50, 100, 100, 0)

	cs := Stroke(p, quill.Identity())
	if len(cs) != 1 {
		t.Fatalf("got %d contours, want 1", len(cs))
	}
	if len(cs[0].Pts) < 4 {
		t.Errorf("quad flattened to %d points, want several", len(cs[0].Pts))
	}
	end := cs[0].Pts[len(cs[0].Pts)-1]
	if end.Distance(quill.Pt(100, 0)) > 1e-9 {
		t.Errorf("end point = %v, want (100,0)", end)
	}
}

func TestPathContoursCubicSkipped(t *testing.T) {
	p := quill.NewPath()
	p.MoveTo(0, 0)
	p.CubicTo(10, 10, 20, 10, 30, 0)

	cs := Stroke(p, quill.Identity())
	// Only the move point remains, below the two-point minimum.
	if len(cs) != 0 {
		t.Errorf("cubic-only path produced %d contours, want 0", len(cs))
	}
}

func TestPathContoursMultipleSubpaths(t *testing.T) {
	p := quill.NewPath()
	p.Rectangle(0, 0, 10, 10)
	p.Rectangle(20, 0, 10, 10)

	cs := Fill(p, quill.Identity())
	if len(cs) != 2 {
		t.Fatalf("got %d contours, want 2", len(cs))
	}
	for i, c := range cs {
		if !c.Closed {
			t.Errorf("contour %d should be closed", i)
		}
	}
}

func TestPathContoursCloseSplitsContour(t *testing.T) {
	p := quill.NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.Close()
	p.MoveTo(0, 5)
	p.LineTo(10, 5)

	cs := Stroke(p, quill.Identity())
	if len(cs) != 2 {
		t.Fatalf("got %d contours, want 2", len(cs))
	}
	if !cs[0].Closed {
		t.Error("first contour should be closed")
	}
	if cs[1].Closed {
		t.Error("second contour should be open")
	}
}
