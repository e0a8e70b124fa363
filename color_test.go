package quill

import (
	"image/color"
	"math"
	"testing"
)

func TestRGBAToNRGBA(t *testing.T) {
	tests := []struct {
		name string
		in   RGBA
		want color.NRGBA
	}{
		{"red", Red, color.NRGBA{R: 255, A: 255}},
		{"half gray", RGB(0.5, 0.5, 0.5), color.NRGBA{R: 127, G: 127, B: 127, A: 255}},
		{"transparent", Transparent, color.NRGBA{}},
		{"overflow clamps", RGBAOf(2, -1, 0, 1), color.NRGBA{R: 255, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.NRGBA(); got != tt.want {
				t.Errorf("NRGBA = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromColorRoundTrip(t *testing.T) {
	in := color.NRGBA{R: 200, G: 100, B: 50, A: 128}
	got := FromColor(in).NRGBA()

	// Premultiplication through color.Color loses at most one step of
	// 8-bit precision per channel.
	near := func(a, b uint8) bool {
		d := int(a) - int(b)
		return d >= -1 && d <= 1
	}
	if !near(got.R, in.R) || !near(got.G, in.G) || !near(got.B, in.B) || got.A != in.A {
		t.Errorf("round trip = %v, want about %v", got, in)
	}
}

func TestFromColorZeroAlpha(t *testing.T) {
	if got := FromColor(color.NRGBA{R: 255, A: 0}); got != (RGBA{}) {
		t.Errorf("zero alpha = %v, want zero value", got)
	}
}

func TestPremultiply(t *testing.T) {
	c := RGBAOf(1, 0.5, 0, 0.5).Premultiply()
	want := RGBA{R: 0.5, G: 0.25, B: 0, A: 0.5}
	if !colorNear(c, want) {
		t.Errorf("Premultiply = %v, want %v", c, want)
	}
}

func TestColorLerp(t *testing.T) {
	got := Black.Lerp(White, 0.5)
	if !colorNear(got, RGB(0.5, 0.5, 0.5)) {
		t.Errorf("Lerp midpoint = %v, want mid gray", got)
	}
	if got := Red.Lerp(Blue, 0); got != Red {
		t.Errorf("Lerp t=0 = %v, want red", got)
	}
	if got := Red.Lerp(Blue, 1); got != Blue {
		t.Errorf("Lerp t=1 = %v, want blue", got)
	}
}

func TestWithAlpha(t *testing.T) {
	c := Red.WithAlpha(0.25)
	if c.A != 0.25 || c.R != 1 {
		t.Errorf("WithAlpha = %v", c)
	}
}

func TestPointOps(t *testing.T) {
	p := Pt(3, 4)
	if got := p.Length(); got != 5 {
		t.Errorf("Length = %v, want 5", got)
	}
	if got := p.Normalize().Length(); math.Abs(got-1) > 1e-12 {
		t.Errorf("normalized length = %v, want 1", got)
	}
	if got := (Point{}).Normalize(); got != (Point{}) {
		t.Errorf("normalizing zero vector = %v, want zero", got)
	}
	if got := Pt(1, 0).Cross(Pt(0, 1)); got != 1 {
		t.Errorf("Cross = %v, want 1", got)
	}
	if got := Pt(0, 0).Lerp(Pt(10, 20), 0.5); got != Pt(5, 10) {
		t.Errorf("Lerp = %v, want (5, 10)", got)
	}
}
