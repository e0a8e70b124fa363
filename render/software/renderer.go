package software

import (
	"image"
	"math"

	"github.com/quillui/quill"
	"github.com/quillui/quill/cache"
	"github.com/quillui/quill/internal/flatten"
	"github.com/quillui/quill/text"
)

// Presenter hands finished frames to the window system. Embedders that
// blit pixels themselves (X11 shared memory, framebuffer, test sinks)
// implement this; capture-mode rendering needs no Presenter.
type Presenter interface {
	Present(frame *image.RGBA) error
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPresenter sets the presenter that receives non-capture frames.
func WithPresenter(p Presenter) Option {
	return func(r *Renderer) {
		r.presenter = p
	}
}

// clipRegion is the active clip in device pixels. Radii follow the
// rounded-rect corners; a zero radius corner clips square.
type clipRegion struct {
	rect  quill.Rect
	radii quill.CornerRadii
}

// Renderer is the CPU implementation of quill.Renderer.
// It rasterizes into an internal pixmap sized scale times the logical
// size. Not safe for concurrent use.
type Renderer struct {
	pixmap    *quill.Pixmap
	scale     float64
	size      quill.Size
	transform quill.Matrix
	zindex    int
	clip      *clipRegion
	capture   bool
	presenter Presenter

	glyphs *text.GlyphCache
	images *cache.ShardedCache[uint64, *image.RGBA]
	svgs   *cache.ShardedCache[uint64, *image.RGBA]
}

var _ quill.Renderer = (*Renderer)(nil)

// New creates a software renderer with the given scale and logical
// size. The size is clamped to at least 1x1.
func New(scale float64, size quill.Size, opts ...Option) *Renderer {
	size = size.Max(quill.SizeOf(1, 1))
	r := &Renderer{
		scale:     scale,
		size:      size,
		transform: quill.Identity(),
		glyphs:    text.NewGlyphCache(),
		images:    cache.NewSharded[uint64, *image.RGBA](64, cache.Uint64Hasher),
		svgs:      cache.NewSharded[uint64, *image.RGBA](64, cache.Uint64Hasher),
	}
	r.pixmap = quill.NewPixmap(r.deviceWidth(), r.deviceHeight())
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) deviceWidth() int {
	return int(math.Max(1, math.Round(r.size.Width*r.scale)))
}

func (r *Renderer) deviceHeight() int {
	return int(math.Max(1, math.Round(r.size.Height*r.scale)))
}

// deviceMatrix combines the user transform with the hi-dpi scale.
func (r *Renderer) deviceMatrix() quill.Matrix {
	return quill.Scaling(r.scale, r.scale).Multiply(r.transform)
}

// GlyphCache exposes the renderer's glyph mask cache.
func (r *Renderer) GlyphCache() *text.GlyphCache {
	return r.glyphs
}

// Pixmap returns the renderer's backing pixel buffer.
func (r *Renderer) Pixmap() *quill.Pixmap {
	return r.pixmap
}

// Begin implements quill.Renderer.
func (r *Renderer) Begin(capture bool) {
	r.capture = capture
	r.transform = quill.Identity()
	r.zindex = 0
	r.clip = nil
	r.pixmap.Clear(quill.Transparent)
}

// Transform implements quill.Renderer.
func (r *Renderer) Transform(m quill.Matrix) {
	r.transform = m
}

// SetZIndex implements quill.Renderer. The software backend paints in
// call order; the z index only participates in clip-independent
// ordering on the GPU path, so it is recorded and otherwise unused.
func (r *Renderer) SetZIndex(z int) {
	r.zindex = z
}

// Clip implements quill.Renderer.
func (r *Renderer) Clip(shape quill.Shape) {
	dm := r.deviceMatrix()
	switch s := shape.(type) {
	case quill.Rect:
		r.clip = &clipRegion{rect: s.Transform(dm)}
	case quill.RoundedRect:
		sf := dm.ScaleFactor()
		r.clip = &clipRegion{
			rect: s.Rect.Transform(dm),
			radii: quill.CornerRadii{
				TopLeft:     s.Radii.TopLeft * sf,
				TopRight:    s.Radii.TopRight * sf,
				BottomRight: s.Radii.BottomRight * sf,
				BottomLeft:  s.Radii.BottomLeft * sf,
			},
		}
	default:
		r.clip = &clipRegion{rect: shape.Bounds().Transform(dm)}
	}
}

// ClearClip implements quill.Renderer.
func (r *Renderer) ClearClip() {
	r.clip = nil
}

// clipAllows reports whether the device pixel may be written.
func (r *Renderer) clipAllows(x, y int) bool {
	if r.clip == nil {
		return true
	}
	c := r.clip
	fx, fy := float64(x)+0.5, float64(y)+0.5
	if fx < c.rect.X0 || fx >= c.rect.X1 || fy < c.rect.Y0 || fy >= c.rect.Y1 {
		return false
	}
	// Rounded corner test: distance from the corner circle center.
	check := func(radius, cx, cy float64) bool {
		if radius <= 0 {
			return true
		}
		dx, dy := fx-cx, fy-cy
		return dx*dx+dy*dy <= radius*radius
	}
	rd := c.radii
	if fx < c.rect.X0+rd.TopLeft && fy < c.rect.Y0+rd.TopLeft {
		return check(rd.TopLeft, c.rect.X0+rd.TopLeft, c.rect.Y0+rd.TopLeft)
	}
	if fx > c.rect.X1-rd.TopRight && fy < c.rect.Y0+rd.TopRight {
		return check(rd.TopRight, c.rect.X1-rd.TopRight, c.rect.Y0+rd.TopRight)
	}
	if fx > c.rect.X1-rd.BottomRight && fy > c.rect.Y1-rd.BottomRight {
		return check(rd.BottomRight, c.rect.X1-rd.BottomRight, c.rect.Y1-rd.BottomRight)
	}
	if fx < c.rect.X0+rd.BottomLeft && fy > c.rect.Y1-rd.BottomLeft {
		return check(rd.BottomLeft, c.rect.X0+rd.BottomLeft, c.rect.Y1-rd.BottomLeft)
	}
	return true
}

// clipRect returns the active clip rectangle in device pixels, or the
// whole surface when unclipped.
func (r *Renderer) clipRect() quill.Rect {
	if r.clip != nil {
		return r.clip.rect
	}
	return quill.NewRect(0, 0, float64(r.pixmap.Width()), float64(r.pixmap.Height()))
}

// strokeWidth converts a logical stroke width to device pixels.
func (r *Renderer) strokeWidth(width float64) float64 {
	w := math.Round(width * r.deviceMatrix().ScaleFactor())
	if w < 1 {
		w = 1
	}
	return w
}

// Stroke implements quill.Renderer.
func (r *Renderer) Stroke(shape quill.Shape, brush quill.Brush, width float64) {
	if brush == nil {
		return
	}
	dm := r.deviceMatrix()
	contours := flatten.Stroke(shape, dm)
	if len(contours) == 0 {
		return
	}
	half := r.strokeWidth(width) / 2
	r.compositeCoverage(strokeMask(contours, half), brush, dm)
}

// Fill implements quill.Renderer.
func (r *Renderer) Fill(shape quill.Shape, brush quill.Brush, blurRadius float64) {
	if brush == nil {
		return
	}
	dm := r.deviceMatrix()
	contours := flatten.Fill(shape, dm)
	if len(contours) == 0 {
		return
	}
	blur := 0.0
	if blurRadius > 0 {
		if _, ok := shape.(quill.Rect); ok {
			blur = blurRadius * dm.ScaleFactor()
		}
	}
	r.compositeCoverage(contourMask(contours, blur), brush, dm)
}

// Resize implements quill.Renderer.
func (r *Renderer) Resize(scale float64, size quill.Size) {
	size = size.Max(quill.SizeOf(1, 1))
	r.size = size
	prevW, prevH := r.pixmap.Width(), r.pixmap.Height()
	r.scale = scale
	w, h := r.deviceWidth(), r.deviceHeight()
	if w == prevW && h == prevH {
		return
	}
	r.pixmap = quill.NewPixmap(w, h)
}

// SetScale implements quill.Renderer.
func (r *Renderer) SetScale(scale float64) {
	r.scale = scale
}

// Scale implements quill.Renderer.
func (r *Renderer) Scale() float64 {
	return r.scale
}

// Size implements quill.Renderer.
func (r *Renderer) Size() quill.Size {
	return r.size
}

// Finish implements quill.Renderer. The callback receives a zero
// FrameContext; there are no GPU objects on this path.
func (r *Renderer) Finish(callback quill.FrameCallback) *image.RGBA {
	if callback != nil {
		callback(quill.FrameContext{})
	}
	frame := r.pixmap.ToImage()
	if r.capture {
		return frame
	}
	if r.presenter != nil {
		if err := r.presenter.Present(frame); err != nil {
			quill.Logger().Error("software: present failed", "error", err)
		}
	}
	return nil
}

// Release implements quill.Renderer.
func (r *Renderer) Release() {
	r.glyphs.Clear()
	r.images.Clear()
	r.svgs.Clear()
}

// compositeCoverage blends a coverage mask onto the pixmap with the
// brush's color, honoring the clip. Device pixels map back through the
// inverted device matrix for gradient evaluation in logical space.
func (r *Renderer) compositeCoverage(m *coverageMask, brush quill.Brush, dm quill.Matrix) {
	if m == nil || m.alpha == nil {
		return
	}

	solid, isSolid := brush.(quill.SolidBrush)
	inv := dm.Invert()

	bounds := m.alpha.Bounds()
	clip := r.clipRect()
	x0 := int(math.Max(float64(m.originX+bounds.Min.X), math.Floor(clip.X0)))
	y0 := int(math.Max(float64(m.originY+bounds.Min.Y), math.Floor(clip.Y0)))
	x1 := int(math.Min(float64(m.originX+bounds.Max.X), math.Ceil(clip.X1)))
	y1 := int(math.Min(float64(m.originY+bounds.Max.Y), math.Ceil(clip.Y1)))

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			a := m.alpha.AlphaAt(x-m.originX, y-m.originY).A
			if a == 0 || !r.clipAllows(x, y) {
				continue
			}
			var c quill.RGBA
			if isSolid {
				c = solid.Color
			} else {
				p := inv.TransformPoint(quill.Pt(float64(x)+0.5, float64(y)+0.5))
				c = brush.ColorAt(p.X, p.Y)
			}
			c.A *= float64(a) / 255
			r.pixmap.BlendPixel(x, y, c)
		}
	}
}
