package gpu

import (
	"testing"

	"github.com/quillui/quill"
)

func TestPremul(t *testing.T) {
	got := premul(quill.RGBAOf(1, 0.5, 0, 0.5))
	want := [4]float32{0.5, 0.25, 0, 0.5}
	if got != want {
		t.Errorf("premul = %v, want %v", got, want)
	}
}

func TestMakePaintSolid(t *testing.T) {
	p := makePaint(quill.Solid(quill.Red), quill.Identity())
	if p.gradKind != gradNone {
		t.Errorf("gradKind = %v, want none", p.gradKind)
	}
	if p.c0 != [4]float32{1, 0, 0, 1} {
		t.Errorf("c0 = %v, want opaque red", p.c0)
	}
}

func TestMakePaintLinear(t *testing.T) {
	b := quill.LinearGradient(quill.Pt(0, 0), quill.Pt(100, 0),
		quill.ColorStop{Offset: 0, Color: quill.Black},
		quill.ColorStop{Offset: 1, Color: quill.White},
	)
	p := makePaint(b, quill.Scaling(2, 2))
	if p.gradKind != gradLinear {
		t.Fatalf("gradKind = %v, want linear", p.gradKind)
	}
	// Endpoints map through the device matrix.
	if p.grad != [4]float32{0, 0, 200, 0} {
		t.Errorf("grad = %v, want (0,0,200,0)", p.grad)
	}
}

func TestMakePaintLinearInteriorOffsets(t *testing.T) {
	// Stops at 0.25 and 0.75 pull the gradient segment inward; outside
	// that segment the endpoint colors pad.
	b := quill.LinearGradient(quill.Pt(0, 0), quill.Pt(100, 0),
		quill.ColorStop{Offset: 0.25, Color: quill.Red},
		quill.ColorStop{Offset: 0.75, Color: quill.Blue},
	)
	p := makePaint(b, quill.Identity())
	if p.grad != [4]float32{25, 0, 75, 0} {
		t.Errorf("grad = %v, want remapped (25,0,75,0)", p.grad)
	}
	if p.c0 != [4]float32{1, 0, 0, 1} || p.c1 != [4]float32{0, 0, 1, 1} {
		t.Errorf("colors = %v %v, want red and blue", p.c0, p.c1)
	}
}

func TestMakePaintRadial(t *testing.T) {
	b := quill.RadialGradient(quill.Pt(10, 10), 20,
		quill.ColorStop{Offset: 0, Color: quill.White},
		quill.ColorStop{Offset: 1, Color: quill.Black},
	)
	p := makePaint(b, quill.Scaling(2, 2))
	if p.gradKind != gradRadial {
		t.Fatalf("gradKind = %v, want radial", p.gradKind)
	}
	if p.grad != [4]float32{20, 20, 0, 40} {
		t.Errorf("grad = %v, want center (20,20) radii (0,40)", p.grad)
	}
}

func TestMakePaintDegenerateStops(t *testing.T) {
	empty := quill.LinearGradientBrush{Start: quill.Pt(0, 0), End: quill.Pt(1, 0)}
	p := makePaint(empty, quill.Identity())
	if p.gradKind != gradNone || p.c0 != [4]float32{} {
		t.Errorf("no stops = %+v, want transparent solid", p)
	}

	one := quill.LinearGradient(quill.Pt(0, 0), quill.Pt(1, 0),
		quill.ColorStop{Offset: 0.5, Color: quill.Green})
	p = makePaint(one, quill.Identity())
	if p.gradKind != gradNone {
		t.Errorf("single stop gradKind = %v, want none", p.gradKind)
	}
	if p.c0 != [4]float32{0, 1, 0, 1} {
		t.Errorf("single stop c0 = %v, want green", p.c0)
	}
}

func TestSolidPaint(t *testing.T) {
	p := solidPaint(quill.RGBAOf(0, 0, 1, 0.5))
	if p.gradKind != gradNone {
		t.Errorf("gradKind = %v, want none", p.gradKind)
	}
	if p.c0 != [4]float32{0, 0, 0.5, 0.5} {
		t.Errorf("c0 = %v, want premultiplied half blue", p.c0)
	}
}
