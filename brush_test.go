package quill

import (
	"math"
	"testing"
)

func colorNear(a, b RGBA) bool {
	const eps = 1e-6
	return math.Abs(a.R-b.R) < eps &&
		math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps &&
		math.Abs(a.A-b.A) < eps
}

func TestSolidBrush(t *testing.T) {
	b := Solid(Red)
	if got := b.ColorAt(0, 0); got != Red {
		t.Errorf("ColorAt(0,0) = %v, want red", got)
	}
	if got := b.ColorAt(1000, -1000); got != Red {
		t.Errorf("ColorAt is position dependent: %v", got)
	}
}

func TestLinearGradientBrush(t *testing.T) {
	b := LinearGradient(Pt(0, 0), Pt(100, 0),
		ColorStop{Offset: 0, Color: Black},
		ColorStop{Offset: 1, Color: White},
	)

	tests := []struct {
		name string
		x, y float64
		want RGBA
	}{
		{"start", 0, 0, Black},
		{"middle", 50, 0, RGB(0.5, 0.5, 0.5)},
		{"end", 100, 0, White},
		{"before start clamps", -50, 0, Black},
		{"past end clamps", 200, 0, White},
		{"perpendicular offset ignored", 50, 999, RGB(0.5, 0.5, 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.ColorAt(tt.x, tt.y); !colorNear(got, tt.want) {
				t.Errorf("ColorAt(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestLinearGradientDegenerate(t *testing.T) {
	b := LinearGradient(Pt(10, 10), Pt(10, 10),
		ColorStop{Offset: 0, Color: Green},
		ColorStop{Offset: 1, Color: Blue},
	)
	if got := b.ColorAt(50, 50); !colorNear(got, Green) {
		t.Errorf("zero-length gradient = %v, want first stop", got)
	}
}

func TestRadialGradientBrush(t *testing.T) {
	b := RadialGradient(Pt(50, 50), 10,
		ColorStop{Offset: 0, Color: White},
		ColorStop{Offset: 1, Color: Black},
	)
	if got := b.ColorAt(50, 50); !colorNear(got, White) {
		t.Errorf("center = %v, want white", got)
	}
	if got := b.ColorAt(50, 55); !colorNear(got, RGB(0.5, 0.5, 0.5)) {
		t.Errorf("half radius = %v, want mid gray", got)
	}
	if got := b.ColorAt(50, 500); !colorNear(got, Black) {
		t.Errorf("beyond radius = %v, want black", got)
	}
}

func TestRadialGradientZeroRadius(t *testing.T) {
	b := RadialGradient(Pt(0, 0), 0,
		ColorStop{Offset: 0, Color: Red},
		ColorStop{Offset: 1, Color: Blue},
	)
	if got := b.ColorAt(5, 5); !colorNear(got, Red) {
		t.Errorf("zero-radius gradient = %v, want first stop", got)
	}
}

func TestGradientStopsSorted(t *testing.T) {
	// Constructors sort stops, so out-of-order input still interpolates
	// correctly.
	b := LinearGradient(Pt(0, 0), Pt(10, 0),
		ColorStop{Offset: 1, Color: White},
		ColorStop{Offset: 0, Color: Black},
	)
	if got := b.ColorAt(0, 0); !colorNear(got, Black) {
		t.Errorf("offset 0 = %v, want black", got)
	}
	if got := b.ColorAt(10, 0); !colorNear(got, White) {
		t.Errorf("offset 1 = %v, want white", got)
	}
}

func TestColorAtOffsetEdgeCases(t *testing.T) {
	if got := colorAtOffset(nil, 0.5); got != Transparent {
		t.Errorf("no stops = %v, want transparent", got)
	}

	one := []ColorStop{{Offset: 0.3, Color: Green}}
	if got := colorAtOffset(one, 0.9); got != Green {
		t.Errorf("single stop = %v, want that stop's color", got)
	}

	// Coincident offsets must not divide by zero.
	dup := []ColorStop{
		{Offset: 0.5, Color: Red},
		{Offset: 0.5, Color: Blue},
	}
	got := colorAtOffset(dup, 0.5)
	if got != Red && got != Blue {
		t.Errorf("coincident stops = %v, want one of the stop colors", got)
	}
}

func TestColorAtOffsetInterior(t *testing.T) {
	stops := []ColorStop{
		{Offset: 0, Color: Black},
		{Offset: 0.5, Color: Red},
		{Offset: 1, Color: White},
	}
	if got := colorAtOffset(stops, 0.25); !colorNear(got, RGBAOf(0.5, 0, 0, 1)) {
		t.Errorf("t=0.25 = %v, want half red", got)
	}
	if got := colorAtOffset(stops, 0.75); !colorNear(got, RGBAOf(1, 0.5, 0.5, 1)) {
		t.Errorf("t=0.75 = %v, want red/white midpoint", got)
	}
}

func TestBrushColor(t *testing.T) {
	if got := BrushColor(nil, Pt(0, 0)); got != Transparent {
		t.Errorf("nil brush = %v, want transparent", got)
	}
	if got := BrushColor(Solid(Blue), Pt(3, 4)); got != Blue {
		t.Errorf("solid brush = %v, want blue", got)
	}
}
