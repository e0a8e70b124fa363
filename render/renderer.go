package render

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/quillui/quill"
	"github.com/quillui/quill/render/gpu"
	"github.com/quillui/quill/render/software"
	"github.com/quillui/quill/text"
)

// EnvForceSoftware names the environment variable that, when set to
// "1", skips GPU probing entirely.
const EnvForceSoftware = "QUILL_FORCE_SOFTWARE"

// ErrNoBackend is returned when neither backend could be constructed.
var ErrNoBackend = errors.New("render: no usable backend")

// backendKind tags which variant a Renderer dispatches to.
type backendKind int

const (
	backendUninitialized backendKind = iota
	backendHardware
	backendSoftware
)

func (k backendKind) String() string {
	switch k {
	case backendHardware:
		return "hardware"
	case backendSoftware:
		return "software"
	default:
		return "uninitialized"
	}
}

// Option configures backend construction.
type Option func(*config)

type config struct {
	forceSoftware bool
	surface       gpu.Surface
	provider      any
	presenter     software.Presenter
}

// ForceSoftware skips the GPU probe regardless of environment.
func ForceSoftware() Option {
	return func(c *config) {
		c.forceSoftware = true
	}
}

// WithSurface sets the swapchain for the GPU backend.
func WithSurface(s gpu.Surface) Option {
	return func(c *config) {
		c.surface = s
	}
}

// WithDeviceProvider shares an embedding application's GPU device with
// the hardware backend.
func WithDeviceProvider(p any) Option {
	return func(c *config) {
		c.provider = p
	}
}

// WithPresenter sets the frame sink for the software backend.
func WithPresenter(p software.Presenter) Option {
	return func(c *config) {
		c.presenter = p
	}
}

// Renderer dispatches quill.Renderer calls to the backend chosen at
// construction. The backend never changes for the lifetime of the
// value; an uninitialized Renderer stays uninitialized.
type Renderer struct {
	kind backendKind
	hw   *gpu.Renderer
	sw   *software.Renderer

	// scale and size back the uninitialized variant, which has no
	// backend to ask.
	scale float64
	size  quill.Size
}

var _ quill.Renderer = (*Renderer)(nil)

// New constructs a renderer, preferring the GPU backend. GPU failure
// is logged and rendering continues on the CPU; an error is returned
// only when no backend at all could be built.
func New(scale float64, size quill.Size, opts ...Option) (*Renderer, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	force := cfg.forceSoftware || os.Getenv(EnvForceSoftware) == "1"

	var hwErr error
	if !force {
		var gpuOpts []gpu.Option
		if cfg.surface != nil {
			gpuOpts = append(gpuOpts, gpu.WithSurface(cfg.surface))
		}
		if cfg.provider != nil {
			gpuOpts = append(gpuOpts, gpu.WithDeviceProvider(cfg.provider))
		}
		hw, err := gpu.New(scale, size, gpuOpts...)
		if err == nil {
			return &Renderer{kind: backendHardware, hw: hw}, nil
		}
		hwErr = err
		quill.Logger().Warn("render: hardware renderer unavailable, using software",
			"error", err)
	}

	var swOpts []software.Option
	if cfg.presenter != nil {
		swOpts = append(swOpts, software.WithPresenter(cfg.presenter))
	}
	sw := software.New(scale, size, swOpts...)
	if sw == nil {
		if hwErr != nil {
			return nil, fmt.Errorf("%w: gpu: %v", ErrNoBackend, hwErr)
		}
		return nil, ErrNoBackend
	}
	return &Renderer{kind: backendSoftware, sw: sw}, nil
}

// MustNew is New, panicking on failure.
func MustNew(scale float64, size quill.Size, opts ...Option) *Renderer {
	r, err := New(scale, size, opts...)
	if err != nil {
		panic(fmt.Sprintf("render: %v", err))
	}
	return r
}

// NewUninitialized returns a placeholder renderer for the time before
// a window exists. It answers Scale, Size, SetScale and Resize; every
// drawing operation is a no-op.
func NewUninitialized(scale float64, size quill.Size) *Renderer {
	return &Renderer{kind: backendUninitialized, scale: scale, size: size}
}

// Backend reports which backend the renderer dispatches to.
func (r *Renderer) Backend() string {
	return r.kind.String()
}

// Software returns the software backend, or nil.
func (r *Renderer) Software() *software.Renderer {
	return r.sw
}

// Hardware returns the GPU backend, or nil.
func (r *Renderer) Hardware() *gpu.Renderer {
	return r.hw
}

// Begin implements quill.Renderer.
func (r *Renderer) Begin(capture bool) {
	switch r.kind {
	case backendHardware:
		r.hw.Begin(capture)
	case backendSoftware:
		r.sw.Begin(capture)
	case backendUninitialized:
	}
}

// Transform implements quill.Renderer.
func (r *Renderer) Transform(m quill.Matrix) {
	switch r.kind {
	case backendHardware:
		r.hw.Transform(m)
	case backendSoftware:
		r.sw.Transform(m)
	case backendUninitialized:
	}
}

// SetZIndex implements quill.Renderer.
func (r *Renderer) SetZIndex(z int) {
	switch r.kind {
	case backendHardware:
		r.hw.SetZIndex(z)
	case backendSoftware:
		r.sw.SetZIndex(z)
	case backendUninitialized:
	}
}

// Clip implements quill.Renderer.
func (r *Renderer) Clip(shape quill.Shape) {
	switch r.kind {
	case backendHardware:
		r.hw.Clip(shape)
	case backendSoftware:
		r.sw.Clip(shape)
	case backendUninitialized:
	}
}

// ClearClip implements quill.Renderer.
func (r *Renderer) ClearClip() {
	switch r.kind {
	case backendHardware:
		r.hw.ClearClip()
	case backendSoftware:
		r.sw.ClearClip()
	case backendUninitialized:
	}
}

// Stroke implements quill.Renderer.
func (r *Renderer) Stroke(shape quill.Shape, brush quill.Brush, width float64) {
	switch r.kind {
	case backendHardware:
		r.hw.Stroke(shape, brush, width)
	case backendSoftware:
		r.sw.Stroke(shape, brush, width)
	case backendUninitialized:
	}
}

// Fill implements quill.Renderer.
func (r *Renderer) Fill(shape quill.Shape, brush quill.Brush, blurRadius float64) {
	switch r.kind {
	case backendHardware:
		r.hw.Fill(shape, brush, blurRadius)
	case backendSoftware:
		r.sw.Fill(shape, brush, blurRadius)
	case backendUninitialized:
	}
}

// DrawText implements quill.Renderer.
func (r *Renderer) DrawText(layout *text.Layout, pos quill.Point) {
	switch r.kind {
	case backendHardware:
		r.hw.DrawText(layout, pos)
	case backendSoftware:
		r.sw.DrawText(layout, pos)
	case backendUninitialized:
	}
}

// DrawImg implements quill.Renderer.
func (r *Renderer) DrawImg(img quill.Img, rect quill.Rect) {
	switch r.kind {
	case backendHardware:
		r.hw.DrawImg(img, rect)
	case backendSoftware:
		r.sw.DrawImg(img, rect)
	case backendUninitialized:
	}
}

// DrawSvg implements quill.Renderer.
func (r *Renderer) DrawSvg(svg quill.Svg, rect quill.Rect, brush quill.Brush) {
	switch r.kind {
	case backendHardware:
		r.hw.DrawSvg(svg, rect, brush)
	case backendSoftware:
		r.sw.DrawSvg(svg, rect, brush)
	case backendUninitialized:
	}
}

// Resize implements quill.Renderer.
func (r *Renderer) Resize(scale float64, size quill.Size) {
	switch r.kind {
	case backendHardware:
		r.hw.Resize(scale, size)
	case backendSoftware:
		r.sw.Resize(scale, size)
	case backendUninitialized:
		r.scale = scale
		r.size = size.Max(quill.SizeOf(1, 1))
	}
}

// SetScale implements quill.Renderer.
func (r *Renderer) SetScale(scale float64) {
	switch r.kind {
	case backendHardware:
		r.hw.SetScale(scale)
	case backendSoftware:
		r.sw.SetScale(scale)
	case backendUninitialized:
		r.scale = scale
	}
}

// Scale implements quill.Renderer.
func (r *Renderer) Scale() float64 {
	switch r.kind {
	case backendHardware:
		return r.hw.Scale()
	case backendSoftware:
		return r.sw.Scale()
	default:
		return r.scale
	}
}

// Size implements quill.Renderer.
func (r *Renderer) Size() quill.Size {
	switch r.kind {
	case backendHardware:
		return r.hw.Size()
	case backendSoftware:
		return r.sw.Size()
	default:
		return r.size
	}
}

// Finish implements quill.Renderer.
func (r *Renderer) Finish(callback quill.FrameCallback) *image.RGBA {
	switch r.kind {
	case backendHardware:
		return r.hw.Finish(callback)
	case backendSoftware:
		return r.sw.Finish(callback)
	default:
		return nil
	}
}

// Release implements quill.Renderer.
func (r *Renderer) Release() {
	switch r.kind {
	case backendHardware:
		r.hw.Release()
	case backendSoftware:
		r.sw.Release()
	case backendUninitialized:
	}
}
