package software

import (
	"image"
	"math"
	"testing"

	"github.com/quillui/quill"
)

func captureFrame(t *testing.T, r *Renderer) *image.RGBA {
	t.Helper()
	frame := r.Finish(nil)
	if frame == nil {
		t.Fatal("capture Finish returned nil frame")
	}
	return frame
}

func alphaAtPx(frame *image.RGBA, x, y int) uint8 {
	return frame.RGBAAt(x, y).A
}

func TestCaptureFillRect(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	if got := frame.Bounds(); got.Dx() != 20 || got.Dy() != 20 {
		t.Fatalf("frame bounds = %v, want 20x20", got)
	}
	px := frame.RGBAAt(5, 5)
	if px.R < 250 || px.A < 250 {
		t.Errorf("pixel inside fill = %v, want opaque red", px)
	}
	if a := alphaAtPx(frame, 15, 15); a != 0 {
		t.Errorf("pixel outside fill alpha = %d, want 0", a)
	}
}

func TestCaptureTranslucentFill(t *testing.T) {
	r := New(1, quill.SizeOf(10, 10))
	defer r.Release()

	r.Begin(true)
	r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.RGBAOf(1, 0, 0, 0.5)), 0)
	frame := captureFrame(t, r)

	// image.RGBA holds premultiplied pixels: no channel may exceed alpha.
	px := frame.RGBAAt(5, 5)
	if px.R > px.A || px.G > px.A || px.B > px.A {
		t.Fatalf("channel exceeds alpha in premultiplied frame: %v", px)
	}
	if px.A < 120 || px.A > 134 {
		t.Errorf("alpha = %d, want about half coverage", px.A)
	}
	// The straight color is recoverable: R/A should be close to 1.
	if ratio := float64(px.R) / float64(px.A); ratio < 0.95 {
		t.Errorf("R/A = %v, want about 1 (full red)", ratio)
	}
}

func TestCaptureScaleFactor(t *testing.T) {
	// At scale 2, a 10x10 logical size backs a 20x20 pixmap, and a
	// logical rect covers twice the device pixels.
	r := New(2, quill.SizeOf(10, 10))
	defer r.Release()

	r.Begin(true)
	r.Fill(quill.NewRect(0, 0, 5, 5), quill.Solid(quill.Blue), 0)
	frame := captureFrame(t, r)

	if got := frame.Bounds(); got.Dx() != 20 || got.Dy() != 20 {
		t.Fatalf("frame bounds = %v, want 20x20", got)
	}
	if a := alphaAtPx(frame, 9, 9); a < 250 {
		t.Errorf("device pixel (9,9) alpha = %d, want opaque (inside scaled rect)", a)
	}
	if a := alphaAtPx(frame, 11, 11); a != 0 {
		t.Errorf("device pixel (11,11) alpha = %d, want 0", a)
	}
}

func TestBeginClearsFrame(t *testing.T) {
	r := New(1, quill.SizeOf(10, 10))
	defer r.Release()

	r.Begin(true)
	r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.Red), 0)
	captureFrame(t, r)

	r.Begin(true)
	frame := captureFrame(t, r)
	if a := alphaAtPx(frame, 5, 5); a != 0 {
		t.Errorf("pixel alpha after fresh Begin = %d, want 0", a)
	}
}

func TestBeginResetsState(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Transform(quill.Translate(100, 100))
	r.Clip(quill.NewRect(0, 0, 1, 1))
	r.SetZIndex(5)

	// A new frame draws with identity transform and no clip.
	r.Begin(true)
	r.Fill(quill.NewRect(0, 0, 20, 20), quill.Solid(quill.Green), 0)
	frame := captureFrame(t, r)
	if a := alphaAtPx(frame, 10, 10); a < 250 {
		t.Errorf("pixel alpha = %d, want opaque (transform and clip reset)", a)
	}
}

func TestTransformTranslates(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Transform(quill.Translate(10, 10))
	r.Fill(quill.NewRect(0, 0, 5, 5), quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	if a := alphaAtPx(frame, 2, 2); a != 0 {
		t.Errorf("untranslated position alpha = %d, want 0", a)
	}
	if a := alphaAtPx(frame, 12, 12); a < 250 {
		t.Errorf("translated position alpha = %d, want opaque", a)
	}
}

func TestClipRect(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Clip(quill.NewRect(0, 0, 10, 10))
	r.Fill(quill.NewRect(0, 0, 20, 20), quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	if a := alphaAtPx(frame, 5, 5); a < 250 {
		t.Errorf("inside clip alpha = %d, want opaque", a)
	}
	if a := alphaAtPx(frame, 15, 5); a != 0 {
		t.Errorf("outside clip alpha = %d, want 0", a)
	}
}

func TestClearClip(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Clip(quill.NewRect(0, 0, 5, 5))
	r.ClearClip()
	r.Fill(quill.NewRect(0, 0, 20, 20), quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	if a := alphaAtPx(frame, 15, 15); a < 250 {
		t.Errorf("alpha after ClearClip = %d, want opaque", a)
	}
}

func TestClipRoundedRectCorners(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Clip(quill.NewRoundedRect(quill.NewRect(0, 0, 20, 20), 8))
	r.Fill(quill.NewRect(0, 0, 20, 20), quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	if a := alphaAtPx(frame, 10, 10); a < 250 {
		t.Errorf("center alpha = %d, want opaque", a)
	}
	if a := alphaAtPx(frame, 0, 0); a != 0 {
		t.Errorf("rounded corner alpha = %d, want 0", a)
	}
}

func TestStrokeLine(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	line := quill.Line{P0: quill.Pt(2, 10), P1: quill.Pt(18, 10)}
	r.Stroke(line, quill.Solid(quill.Black), 2)
	frame := captureFrame(t, r)

	if a := alphaAtPx(frame, 10, 10); a < 200 {
		t.Errorf("alpha on stroke = %d, want high coverage", a)
	}
	if a := alphaAtPx(frame, 10, 2); a != 0 {
		t.Errorf("alpha far from stroke = %d, want 0", a)
	}
}

func TestStrokeHairlineMinimumWidth(t *testing.T) {
	// A zero width still strokes at one device pixel.
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	line := quill.Line{P0: quill.Pt(2, 10), P1: quill.Pt(18, 10)}
	r.Stroke(line, quill.Solid(quill.Black), 0)
	frame := captureFrame(t, r)

	covered := 0
	for x := 4; x < 16; x++ {
		if alphaAtPx(frame, x, 10) > 0 {
			covered++
		}
	}
	if covered == 0 {
		t.Error("hairline stroke produced no coverage")
	}
}

func TestStrokeCircleHalfArc(t *testing.T) {
	// Circles stroke as the half arc from angle 0 to pi, the lower
	// half in y-down coordinates.
	r := New(1, quill.SizeOf(40, 40))
	defer r.Release()

	r.Begin(true)
	r.Stroke(quill.Circle{Center: quill.Pt(20, 20), Radius: 10}, quill.Solid(quill.Black), 2)
	frame := captureFrame(t, r)

	if a := alphaAtPx(frame, 20, 30); a < 100 {
		t.Errorf("bottom of arc alpha = %d, want coverage", a)
	}
	if a := alphaAtPx(frame, 20, 10); a != 0 {
		t.Errorf("top of circle alpha = %d, want 0 (half arc only)", a)
	}
}

func TestFillCircle(t *testing.T) {
	r := New(1, quill.SizeOf(40, 40))
	defer r.Release()

	r.Begin(true)
	r.Fill(quill.Circle{Center: quill.Pt(20, 20), Radius: 10}, quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	if a := alphaAtPx(frame, 20, 20); a < 250 {
		t.Errorf("circle center alpha = %d, want opaque", a)
	}
	if a := alphaAtPx(frame, 5, 5); a != 0 {
		t.Errorf("outside circle alpha = %d, want 0", a)
	}
}

func TestFillLineIsNoop(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Fill(quill.Line{P0: quill.Pt(0, 0), P1: quill.Pt(20, 20)}, quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	for y := 0; y < 20; y += 5 {
		if a := alphaAtPx(frame, y, y); a != 0 {
			t.Fatalf("filling a line drew pixels at (%d,%d)", y, y)
		}
	}
}

func TestFillCubicOnlyPathSkipped(t *testing.T) {
	// Cubic segments are not rasterized; a path of only cubics
	// contributes nothing.
	p := quill.NewPath()
	p.MoveTo(2, 2)
	p.CubicTo(8, 0, 14, 0, 18, 2)
	p.CubicTo(14, 18, 8, 18, 2, 2)
	p.Close()

	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Fill(p, quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	total := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			total += int(alphaAtPx(frame, x, y))
		}
	}
	if total != 0 {
		t.Errorf("cubic-only path produced coverage %d, want none", total)
	}
}

func TestFillQuadraticPath(t *testing.T) {
	p := quill.NewPath()
	p.MoveTo(2, 18)
	p.QuadraticTo(10, -14, 18, 18)
	p.Close()

	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	r.Fill(p, quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	if a := alphaAtPx(frame, 10, 12); a < 200 {
		t.Errorf("inside curve alpha = %d, want coverage", a)
	}
}

func TestFillBlur(t *testing.T) {
	r := New(1, quill.SizeOf(40, 40))
	defer r.Release()

	r.Begin(true)
	r.Fill(quill.NewRect(15, 15, 25, 25), quill.Solid(quill.Black), 4)
	frame := captureFrame(t, r)

	center := alphaAtPx(frame, 20, 20)
	edge := alphaAtPx(frame, 13, 20)
	if center < 200 {
		t.Errorf("blurred center alpha = %d, want high", center)
	}
	if edge == 0 || edge >= center {
		t.Errorf("blur edge alpha = %d, want soft falloff below %d", edge, center)
	}
}

func TestGradientFill(t *testing.T) {
	r := New(1, quill.SizeOf(20, 20))
	defer r.Release()

	r.Begin(true)
	brush := quill.LinearGradient(quill.Pt(0, 0), quill.Pt(20, 0),
		quill.ColorStop{Offset: 0, Color: quill.Black},
		quill.ColorStop{Offset: 1, Color: quill.White},
	)
	r.Fill(quill.NewRect(0, 0, 20, 20), brush, 0)
	frame := captureFrame(t, r)

	left := frame.RGBAAt(1, 10)
	right := frame.RGBAAt(18, 10)
	if left.R >= right.R {
		t.Errorf("gradient left %v should be darker than right %v", left, right)
	}
}

func TestResizeKeepsPixmapWhenDeviceDimsUnchanged(t *testing.T) {
	r := New(2, quill.SizeOf(10, 10))
	defer r.Release()

	before := r.Pixmap()
	// Halving the scale while doubling the size keeps 20x20 device
	// pixels.
	r.Resize(1, quill.SizeOf(20, 20))
	if r.Pixmap() != before {
		t.Error("pixmap should be retained when device dimensions are unchanged")
	}
	if r.Scale() != 1 {
		t.Errorf("scale = %v, want 1", r.Scale())
	}
}

func TestResizeClampsToMinimumSize(t *testing.T) {
	r := New(1, quill.SizeOf(10, 10))
	defer r.Release()

	r.Resize(1, quill.SizeOf(0, -5))
	if got := r.Size(); got != quill.SizeOf(1, 1) {
		t.Errorf("size after degenerate resize = %v, want (1,1)", got)
	}
	if r.Pixmap().Width() < 1 || r.Pixmap().Height() < 1 {
		t.Error("pixmap must stay at least 1x1")
	}
}

func TestResizeReallocates(t *testing.T) {
	r := New(1, quill.SizeOf(10, 10))
	defer r.Release()

	r.Resize(1, quill.SizeOf(30, 15))
	if w, h := r.Pixmap().Width(), r.Pixmap().Height(); w != 30 || h != 15 {
		t.Errorf("pixmap = %dx%d, want 30x15", w, h)
	}
}

func TestFinishWithPresenter(t *testing.T) {
	var presented *image.RGBA
	p := presenterFunc(func(frame *image.RGBA) error {
		presented = frame
		return nil
	})

	r := New(1, quill.SizeOf(10, 10), WithPresenter(p))
	defer r.Release()

	r.Begin(false)
	r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.Red), 0)
	if frame := r.Finish(nil); frame != nil {
		t.Error("non-capture Finish should return nil")
	}
	if presented == nil {
		t.Fatal("presenter was not called")
	}
	if presented.RGBAAt(5, 5).A < 250 {
		t.Error("presented frame missing fill")
	}
}

type presenterFunc func(*image.RGBA) error

func (f presenterFunc) Present(frame *image.RGBA) error { return f(frame) }

func TestFinishCallbackReceivesZeroContext(t *testing.T) {
	r := New(1, quill.SizeOf(10, 10))
	defer r.Release()

	r.Begin(true)
	called := false
	r.Finish(func(ctx quill.FrameContext) quill.FrameContext {
		called = true
		if ctx.Encoder != nil || ctx.TargetView != nil {
			t.Error("software frame context should carry no GPU objects")
		}
		return ctx
	})
	if !called {
		t.Error("Finish callback was not invoked")
	}
}

func TestZIndexOrdersDraws(t *testing.T) {
	// The software backend paints in call order regardless of z; the
	// later fill wins.
	r := New(1, quill.SizeOf(10, 10))
	defer r.Release()

	r.Begin(true)
	r.SetZIndex(10)
	r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.Red), 0)
	r.SetZIndex(0)
	r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.Blue), 0)
	frame := captureFrame(t, r)

	px := frame.RGBAAt(5, 5)
	if px.B < 250 || px.R > 5 {
		t.Errorf("top pixel = %v, want blue (painter's order)", px)
	}
}

func TestRotatedFill(t *testing.T) {
	r := New(1, quill.SizeOf(40, 40))
	defer r.Release()

	r.Begin(true)
	rot := quill.Translate(20, 20).Multiply(quill.Rotate(math.Pi / 4))
	r.Transform(rot)
	r.Fill(quill.NewRect(-10, -10, 10, 10), quill.Solid(quill.Red), 0)
	frame := captureFrame(t, r)

	// The rotated square's corner reaches past the axis-aligned
	// square's edge midpoint.
	if a := alphaAtPx(frame, 20, 20); a < 250 {
		t.Errorf("center alpha = %d, want opaque", a)
	}
	if a := alphaAtPx(frame, 20, 8); a < 200 {
		t.Errorf("rotated corner alpha = %d, want coverage", a)
	}
	if a := alphaAtPx(frame, 8, 8); a != 0 {
		t.Errorf("outside rotated square alpha = %d, want 0", a)
	}
}
