package render

import (
	"image"
	"testing"

	"github.com/quillui/quill"
)

func newSoftwareRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(1, quill.SizeOf(20, 20), ForceSoftware())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(r.Release)
	return r
}

func TestForceSoftwareOption(t *testing.T) {
	r := newSoftwareRenderer(t)
	if r.Backend() != "software" {
		t.Errorf("Backend = %q, want software", r.Backend())
	}
	if r.Software() == nil {
		t.Error("Software() should return the backend")
	}
	if r.Hardware() != nil {
		t.Error("Hardware() should be nil on the software path")
	}
}

func TestForceSoftwareEnv(t *testing.T) {
	t.Setenv(EnvForceSoftware, "1")
	r, err := New(1, quill.SizeOf(20, 20))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Release()
	if r.Backend() != "software" {
		t.Errorf("Backend = %q, want software with %s=1", r.Backend(), EnvForceSoftware)
	}
}

func TestMustNew(t *testing.T) {
	r := MustNew(1, quill.SizeOf(20, 20), ForceSoftware())
	defer r.Release()
	if r.Backend() != "software" {
		t.Errorf("Backend = %q", r.Backend())
	}
}

func TestBackendStaysFixed(t *testing.T) {
	r := newSoftwareRenderer(t)
	before := r.Backend()

	// Frame churn and resizes never change the chosen backend.
	for i := 0; i < 3; i++ {
		r.Begin(i%2 == 0)
		r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.Red), 0)
		r.Finish(nil)
	}
	r.Resize(2, quill.SizeOf(50, 50))
	if r.Backend() != before {
		t.Errorf("backend changed from %q to %q", before, r.Backend())
	}
}

func TestDispatchToSoftware(t *testing.T) {
	r := newSoftwareRenderer(t)

	r.Begin(true)
	r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.Red), 0)
	frame := r.Finish(nil)
	if frame == nil {
		t.Fatal("capture frame is nil")
	}
	if px := frame.RGBAAt(5, 5); px.R < 250 {
		t.Errorf("pixel = %v, want red", px)
	}
}

func TestDispatchScaleSize(t *testing.T) {
	r := newSoftwareRenderer(t)

	if r.Scale() != 1 {
		t.Errorf("Scale = %v, want 1", r.Scale())
	}
	r.SetScale(2)
	if r.Scale() != 2 {
		t.Errorf("Scale = %v, want 2", r.Scale())
	}
	r.Resize(2, quill.SizeOf(30, 40))
	if got := r.Size(); got != quill.SizeOf(30, 40) {
		t.Errorf("Size = %v, want (30,40)", got)
	}
}

func TestUninitialized(t *testing.T) {
	r := NewUninitialized(1.5, quill.SizeOf(80, 60))

	if r.Backend() != "uninitialized" {
		t.Errorf("Backend = %q, want uninitialized", r.Backend())
	}
	if r.Scale() != 1.5 {
		t.Errorf("Scale = %v, want 1.5", r.Scale())
	}
	if got := r.Size(); got != quill.SizeOf(80, 60) {
		t.Errorf("Size = %v, want (80,60)", got)
	}
	if r.Software() != nil || r.Hardware() != nil {
		t.Error("uninitialized renderer has no backend")
	}
}

func TestUninitializedDrawsAreNoops(t *testing.T) {
	r := NewUninitialized(1, quill.SizeOf(10, 10))

	// None of these may panic.
	r.Begin(true)
	r.Transform(quill.Translate(1, 1))
	r.SetZIndex(3)
	r.Clip(quill.NewRect(0, 0, 5, 5))
	r.ClearClip()
	r.Fill(quill.NewRect(0, 0, 10, 10), quill.Solid(quill.Red), 0)
	r.Stroke(quill.Line{P0: quill.Pt(0, 0), P1: quill.Pt(5, 5)}, quill.Solid(quill.Red), 1)
	r.DrawText(nil, quill.Pt(0, 0))
	r.DrawImg(quill.Img{}, quill.NewRect(0, 0, 5, 5))
	r.DrawSvg(quill.Svg{}, quill.NewRect(0, 0, 5, 5), nil)
	if frame := r.Finish(nil); frame != nil {
		t.Error("uninitialized Finish should return nil")
	}
	r.Release()
}

func TestUninitializedTracksResize(t *testing.T) {
	r := NewUninitialized(1, quill.SizeOf(10, 10))

	r.Resize(2, quill.SizeOf(100, 50))
	if r.Scale() != 2 {
		t.Errorf("Scale = %v, want 2", r.Scale())
	}
	if got := r.Size(); got != quill.SizeOf(100, 50) {
		t.Errorf("Size = %v, want (100,50)", got)
	}

	// Degenerate sizes clamp like the real backends.
	r.Resize(1, quill.SizeOf(0, 0))
	if got := r.Size(); got != quill.SizeOf(1, 1) {
		t.Errorf("Size = %v, want (1,1)", got)
	}

	r.SetScale(3)
	if r.Scale() != 3 {
		t.Errorf("Scale = %v, want 3", r.Scale())
	}
}

func TestBackendKindString(t *testing.T) {
	if backendHardware.String() != "hardware" ||
		backendSoftware.String() != "software" ||
		backendUninitialized.String() != "uninitialized" {
		t.Error("backend kind names are wrong")
	}
}

func TestWithPresenterPassthrough(t *testing.T) {
	called := false
	p := presenterFunc(func() { called = true })

	r, err := New(1, quill.SizeOf(10, 10), ForceSoftware(), WithPresenter(p))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Release()

	r.Begin(false)
	r.Finish(nil)
	if !called {
		t.Error("presenter was not invoked through the dispatcher")
	}
}

type presenterFunc func()

func (f presenterFunc) Present(frame *image.RGBA) error { f(); return nil }
