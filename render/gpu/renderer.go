package gpu

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/wgpu/hal"

	"github.com/quillui/quill"
	"github.com/quillui/quill/internal/flatten"
	"github.com/quillui/quill/text"
)

// minTextScale is the effective scale below which text is skipped
// entirely; glyphs that small rasterize to noise.
const minTextScale = 0.1

// minTargetDim is the device size below which render targets are not
// recreated. Mid-drag resize events routinely pass through degenerate
// sizes; reallocating attachments for them thrashes the allocator.
const minTargetDim = 10

// Option configures a Renderer.
type Option func(*Renderer)

// WithSurface sets the swapchain that non-capture frames present to.
func WithSurface(s Surface) Option {
	return func(r *Renderer) {
		r.surface = s
	}
}

// WithDeviceProvider shares the GPU device of an embedding application.
// The provider must implement gpucontext.HalProvider, exposing
// HalDevice() any and HalQueue() any.
func WithDeviceProvider(p any) Option {
	return func(r *Renderer) {
		r.provider = p
	}
}

// WithResources uses raw HAL handles directly. The caller keeps
// ownership; Release will not destroy them.
func WithResources(device hal.Device, queue hal.Queue) Option {
	return func(r *Renderer) {
		r.injected = &Resources{Device: device, Queue: queue}
	}
}

// clipRegion is the active clip in device pixels. Radii follow the
// rounded-rect corners; a zero radius corner clips square.
type clipRegion struct {
	rect  quill.Rect
	radii quill.CornerRadii
}

// imageTexture is a cached GPU copy of a scaled image or rasterized
// SVG document.
type imageTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

// Renderer is the GPU implementation of quill.Renderer.
// Not safe for concurrent use.
type Renderer struct {
	res *Resources
	kit *pipelineKit

	surface  Surface
	provider any
	injected *Resources

	scale float64
	size  quill.Size

	transform quill.Matrix
	zindex    int
	clip      *clipRegion

	// surfaceEngine persists for the window; captureEngine is created
	// on the first capture frame and persists alongside it.
	surfaceEngine *engine
	captureEngine *engine
	current       *engine

	glyphAtlas   *alphaAtlas
	maskAtlas    *alphaAtlas
	glyphs       *text.GlyphCache
	glyphRegions map[text.GlyphKey]atlasRegion
	images       map[uint64]*imageTexture
}

var _ quill.Renderer = (*Renderer)(nil)

// New creates a GPU renderer with the given scale and logical size.
// Without WithDeviceProvider or WithResources it opens its own device
// and fails when no real GPU adapter exists.
func New(scale float64, size quill.Size, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		scale:     scale,
		size:      size.Max(quill.SizeOf(1, 1)),
		transform: quill.Identity(),
		glyphs:    text.NewGlyphCache(),
	}
	for _, opt := range opts {
		opt(r)
	}

	var err error
	switch {
	case r.injected != nil:
		r.res = r.injected
	case r.provider != nil:
		r.res, err = resourcesFromProvider(r.provider)
	default:
		r.res, err = openDevice()
	}
	if err != nil {
		return nil, err
	}

	r.kit, err = newPipelineKit(r.res)
	if err != nil {
		r.res.release()
		return nil, err
	}
	r.glyphAtlas, err = newAlphaAtlas(r.res.Device, "quill_glyph_atlas", defaultAtlasSize)
	if err != nil {
		r.destroyStatic()
		return nil, err
	}
	r.maskAtlas, err = newAlphaAtlas(r.res.Device, "quill_mask_atlas", defaultAtlasSize)
	if err != nil {
		r.destroyStatic()
		return nil, err
	}
	r.glyphRegions = make(map[text.GlyphKey]atlasRegion)
	r.images = make(map[uint64]*imageTexture)

	r.Begin(false)
	return r, nil
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

// Begin implements quill.Renderer. Capture frames draw through a
// separate engine with its own offscreen targets; once created it
// persists, so alternating capture and window frames does not
// reallocate attachments.
func (r *Renderer) Begin(capture bool) {
	if capture {
		if r.captureEngine == nil {
			r.captureEngine = &engine{offscreen: true}
		}
		r.current = r.captureEngine
	} else {
		if r.surfaceEngine == nil {
			r.surfaceEngine = &engine{}
		}
		r.current = r.surfaceEngine
	}
	r.transform = quill.Identity()
	r.zindex = 0
	r.clip = nil
	r.current.reset()
	r.maskAtlas.reset()
}

// Transform implements quill.Renderer.
func (r *Renderer) Transform(m quill.Matrix) {
	r.transform = m
}

// SetZIndex implements quill.Renderer. Primitives sort by z before
// encoding; equal z keeps call order.
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

// clipRect returns the active clip rectangle in device pixels, or the
// whole target when unclipped.
func (r *Renderer) clipRect() quill.Rect {
	if r.clip != nil {
		return r.clip.rect
	}
	return quill.NewRect(0, 0, float64(r.deviceWidth()), float64(r.deviceHeight()))
}

// scissor returns the clip as shader scissor data.
func (r *Renderer) scissor() ([4]float32, [4]float32) {
	c := r.clipRect()
	rect := [4]float32{float32(c.X0), float32(c.Y0), float32(c.X1), float32(c.Y1)}
	if r.clip == nil {
		return rect, [4]float32{}
	}
	rd := r.clip.radii
	return rect, [4]float32{
		float32(rd.TopLeft), float32(rd.TopRight),
		float32(rd.BottomRight), float32(rd.BottomLeft),
	}
}

// strokeWidth converts a logical stroke width to device pixels.
func (r *Renderer) strokeWidth(width float64) float64 {
	w := math.Round(width * r.deviceMatrix().ScaleFactor())
	if w < 1 {
		w = 1
	}
	return w
}

// axisAligned reports whether the matrix keeps rectangles axis
// aligned, the precondition for analytic box and circle primitives.
func axisAligned(m quill.Matrix) bool {
	return m.B == 0 && m.D == 0 && m.A > 0 && m.E > 0
}

// push adds a primitive with the current z and clip applied.
func (r *Renderer) push(p primitive) {
	p.z = r.zindex
	p.scissor, p.scissorRadii = r.scissor()
	r.current.push(p)
}

// pushSegment queues one stroke capsule between two device points.
func (r *Renderer) pushSegment(p0, p1 quill.Point, half float64, pnt paint) {
	pad := half + aaMargin
	r.push(primitive{
		kind: kindSegment,
		quad: [4]float32{
			float32(math.Min(p0.X, p1.X) - pad),
			float32(math.Min(p0.Y, p1.Y) - pad),
			float32(math.Max(p0.X, p1.X) + pad),
			float32(math.Max(p0.Y, p1.Y) + pad),
		},
		params: [4]float32{float32(p0.X), float32(p0.Y), float32(p1.X), float32(p1.Y)},
		param:  float32(half),
		pnt:    pnt,
	})
}

// Stroke implements quill.Renderer. Every shape outline flattens to
// polylines whose segments draw as round-capped capsules, so joins and
// caps come out round without a stroke expander.
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
	pnt := makePaint(brush, dm)
	for _, c := range contours {
		pts := c.Pts
		if len(pts) < 2 {
			continue
		}
		for i := 0; i+1 < len(pts); i++ {
			r.pushSegment(pts[i], pts[i+1], half, pnt)
		}
		if c.Closed {
			r.pushSegment(pts[len(pts)-1], pts[0], half, pnt)
		}
	}
}

// Fill implements quill.Renderer. Axis-aligned rects, uniform rounded
// rects and circles draw as analytic SDF quads; everything else is
// rasterized on the CPU into the mask atlas.
func (r *Renderer) Fill(shape quill.Shape, brush quill.Brush, blurRadius float64) {
	if brush == nil {
		return
	}
	dm := r.deviceMatrix()
	pnt := makePaint(brush, dm)

	switch s := shape.(type) {
	case quill.Rect:
		if axisAligned(dm) {
			blur := 0.0
			if blurRadius > 0 {
				blur = blurRadius * dm.ScaleFactor()
			}
			r.pushBox(s.Transform(dm), 0, blur, pnt)
			return
		}
	case quill.RoundedRect:
		rd := s.Radii
		uniform := rd.TopLeft == rd.TopRight && rd.TopRight == rd.BottomRight && rd.BottomRight == rd.BottomLeft
		if axisAligned(dm) && uniform {
			r.pushBox(s.Rect.Transform(dm), rd.TopLeft*dm.ScaleFactor(), 0, pnt)
			return
		}
	case quill.Circle:
		if axisAligned(dm) && dm.A == dm.E {
			center := dm.TransformPoint(s.Center)
			radius := s.Radius * dm.ScaleFactor()
			pad := radius + aaMargin
			r.push(primitive{
				kind: kindCircle,
				quad: [4]float32{
					float32(center.X - pad), float32(center.Y - pad),
					float32(center.X + pad), float32(center.Y + pad),
				},
				params: [4]float32{float32(center.X), float32(center.Y), float32(radius), 0},
				pnt:    pnt,
			})
			return
		}
	case quill.Line:
		return
	}

	r.fillMask(flatten.Fill(shape, dm), pnt)
}

// pushBox queues an axis-aligned rounded box primitive.
func (r *Renderer) pushBox(dr quill.Rect, radius, blur float64, pnt paint) {
	if dr.IsEmpty() {
		return
	}
	cx, cy := (dr.X0+dr.X1)/2, (dr.Y0+dr.Y1)/2
	hx, hy := dr.Width()/2, dr.Height()/2
	pad := aaMargin + blur
	r.push(primitive{
		kind: kindRect,
		quad: [4]float32{
			float32(dr.X0 - pad), float32(dr.Y0 - pad),
			float32(dr.X1 + pad), float32(dr.Y1 + pad),
		},
		params: [4]float32{float32(cx), float32(cy), float32(hx), float32(hy)},
		param:  float32(math.Min(radius, math.Min(hx, hy))),
		blur:   float32(blur),
		pnt:    pnt,
	})
}

// fillMask rasterizes contours on the CPU and queues an atlas quad.
func (r *Renderer) fillMask(contours []flatten.Contour, pnt paint) {
	if len(contours) == 0 {
		return
	}
	mask, ox, oy := rasterizeContours(contours)
	if mask == nil {
		return
	}
	region, ok := r.maskAtlas.allocate(mask.Rect.Dx(), mask.Rect.Dy())
	if !ok {
		quill.Logger().Warn("gpu: mask atlas full, fill dropped")
		return
	}
	r.maskAtlas.upload(r.res.Queue, region, mask)
	u0, v0, u1, v1 := r.maskAtlas.uv(region)
	r.push(primitive{
		kind: kindMask,
		quad: [4]float32{
			float32(ox), float32(oy),
			float32(ox + mask.Rect.Dx()), float32(oy + mask.Rect.Dy()),
		},
		uv:  [4]float32{u0, v0, u1, v1},
		pnt: pnt,
	})
}

// DrawText implements quill.Renderer.
//
// Lines are y-ordered, so once a line falls below the clip the whole
// rest of the layout is culled. Glyphs left of the clip are skipped
// individually; the first glyph past the right edge ends the line.
// Culled glyphs never touch the glyph cache or the atlas.
func (r *Renderer) DrawText(layout *text.Layout, pos quill.Point) {
	if layout == nil {
		return
	}
	dm := r.deviceMatrix()
	sf := dm.ScaleFactor()
	if sf < minTextScale {
		return
	}
	clip := r.clipRect()

	for i := range layout.Lines {
		line := &layout.Lines[i]
		top := dm.TransformPoint(pos.Add(quill.Pt(0, line.Y))).Y
		bottom := top + (line.Ascent+line.Descent)*sf
		if bottom < clip.Y0 {
			continue
		}
		if top > clip.Y1 {
			break
		}

		baseline := line.Baseline()
		for _, run := range line.Runs {
			color := quill.Black
			if run.HasColor {
				color = quill.FromColor(run.Color)
			}
			size := run.Size * sf
			pnt := solidPaint(color)

			for _, g := range run.Glyphs {
				origin := dm.TransformPoint(pos.Add(quill.Pt(g.X, baseline+g.Y)))
				if origin.X+g.Advance*sf < clip.X0 {
					continue
				}
				if origin.X > clip.X1 {
					break
				}

				key, snapped := text.NewGlyphKey(run.Source, g.GID, size, origin.X, 0)
				mask := r.glyphs.GetOrCreate(key, func() *text.GlyphMask {
					m, err := text.Rasterize(run.Source, g.GID, size, key.SubX)
					if err != nil {
						quill.Logger().Warn("gpu: glyph rasterization failed",
							"font", run.Source.Name(), "gid", g.GID, "error", err)
						return &text.GlyphMask{}
					}
					return m
				})
				if mask.IsEmpty() {
					continue
				}
				region, ok := r.glyphRegion(key, mask)
				if !ok {
					continue
				}

				x0 := int(snapped) + mask.Left
				y0 := int(math.Round(origin.Y)) + mask.Top
				u0, v0, u1, v1 := r.glyphAtlas.uv(region)
				r.push(primitive{
					kind: kindGlyph,
					quad: [4]float32{
						float32(x0), float32(y0),
						float32(x0 + region.width), float32(y0 + region.height),
					},
					uv:  [4]float32{u0, v0, u1, v1},
					pnt: pnt,
				})
			}
		}
	}
}

// glyphRegion returns the atlas slot for a glyph, uploading it on
// first use. A full atlas is reset wholesale and the glyph retried;
// live glyphs re-upload lazily on their next draw.
func (r *Renderer) glyphRegion(key text.GlyphKey, mask *text.GlyphMask) (atlasRegion, bool) {
	if region, ok := r.glyphRegions[key]; ok {
		return region, true
	}
	w, h := mask.Mask.Rect.Dx(), mask.Mask.Rect.Dy()
	region, ok := r.glyphAtlas.allocate(w, h)
	if !ok {
		quill.Logger().Debug("gpu: glyph atlas full, resetting")
		r.glyphAtlas.reset()
		clear(r.glyphRegions)
		region, ok = r.glyphAtlas.allocate(w, h)
		if !ok {
			quill.Logger().Warn("gpu: glyph too large for atlas",
				"width", w, "height", h)
			return atlasRegion{}, false
		}
	}
	r.glyphAtlas.upload(r.res.Queue, region, mask.Mask)
	r.glyphRegions[key] = region
	return region, true
}

// DrawImg implements quill.Renderer. The image is scaled on the CPU to
// the transformed rect's device size and uploaded once per content
// hash and target size.
func (r *Renderer) DrawImg(img quill.Img, rect quill.Rect) {
	if img.Image == nil {
		return
	}
	x, y, w, h := r.imageTarget(rect)
	tex := r.imageFor(sizedKey(img.Hash, w, h), func() *image.RGBA {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img.Image, img.Image.Bounds(), xdraw.Over, nil)
		return dst
	})
	if tex == nil {
		return
	}
	r.pushImage(tex, x, y, w, h)
}

// DrawSvg implements quill.Renderer. A non-nil brush recolors the
// rasterized document; the brush color participates in the cache key
// so recolored copies are cached separately.
func (r *Renderer) DrawSvg(svg quill.Svg, rect quill.Rect, brush quill.Brush) {
	if svg.IsZero() {
		return
	}
	x, y, w, h := r.imageTarget(rect)

	var fill *quill.RGBA
	key := svg.Hash
	if brush != nil {
		c := quill.BrushColor(brush, rect.Center())
		fill = &c
		key ^= uint64(c.NRGBA().R)<<24 | uint64(c.NRGBA().G)<<16 |
			uint64(c.NRGBA().B)<<8 | uint64(c.NRGBA().A)
	}

	tex := r.imageFor(sizedKey(key, w, h), func() *image.RGBA {
		return svg.Rasterize(w, h, fill)
	})
	if tex == nil {
		return
	}
	r.pushImage(tex, x, y, w, h)
}

// imageTarget converts a logical rect to a rounded device origin and a
// clamped device size.
func (r *Renderer) imageTarget(rect quill.Rect) (x, y, w, h int) {
	dm := r.deviceMatrix()
	origin := dm.TransformPoint(rect.Origin())
	sf := dm.ScaleFactor()
	x = int(math.Round(origin.X))
	y = int(math.Round(origin.Y))
	w = int(math.Round(rect.Width() * sf))
	h = int(math.Round(rect.Height() * sf))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return x, y, w, h
}

// sizedKey mixes a content hash with target dimensions.
func sizedKey(hash uint64, w, h int) uint64 {
	return hash ^ uint64(w)<<40 ^ uint64(h)<<20 //nolint:gosec // dimensions are small positive ints
}

// imageFor returns the cached texture for a key, rendering and
// uploading it on first use.
func (r *Renderer) imageFor(key uint64, render func() *image.RGBA) *imageTexture {
	if tex, ok := r.images[key]; ok {
		return tex
	}
	src := render()
	if src == nil {
		return nil
	}
	tex, err := newImageTexture(r.res, src)
	if err != nil {
		quill.Logger().Warn("gpu: image upload failed", "error", err)
		return nil
	}
	r.images[key] = tex
	return tex
}

// pushImage queues a textured quad with a white tint.
func (r *Renderer) pushImage(tex *imageTexture, x, y, w, h int) {
	r.push(primitive{
		kind: kindImage,
		quad: [4]float32{
			float32(x), float32(y),
			float32(x + w), float32(y + h),
		},
		uv:  [4]float32{0, 0, 1, 1},
		pnt: solidPaint(quill.White),
		tex: tex.view,
	})
}

// Resize implements quill.Renderer. Same device dimensions update only
// the scale. The swapchain is reconfigured for real size changes;
// render targets follow lazily in Finish.
func (r *Renderer) Resize(scale float64, size quill.Size) {
	size = size.Max(quill.SizeOf(1, 1))
	prevW, prevH := r.deviceWidth(), r.deviceHeight()
	r.scale = scale
	r.size = size
	w, h := r.deviceWidth(), r.deviceHeight()
	if w == prevW && h == prevH {
		return
	}
	if r.surface != nil && w >= minTargetDim && h >= minTargetDim {
		r.surface.Configure(uint32(w), uint32(h))
	}
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

// targetDims returns the attachment size for an engine, holding the
// previous size while the window passes through degenerate dimensions.
func (r *Renderer) targetDims(e *engine) (uint32, uint32) {
	w, h := r.deviceWidth(), r.deviceHeight()
	if (w < minTargetDim || h < minTargetDim) && e.targets.msaaTex != nil {
		return e.targets.width, e.targets.height
	}
	return uint32(w), uint32(h)
}

// Finish implements quill.Renderer.
func (r *Renderer) Finish(callback quill.FrameCallback) *image.RGBA {
	e := r.current
	if e.offscreen {
		img, err := r.finishCapture(e, callback)
		if err != nil {
			quill.Logger().Error("gpu: capture failed", "error", err)
			return nil
		}
		return img
	}
	if err := r.finishSurface(e, callback); err != nil {
		quill.Logger().Error("gpu: frame failed", "error", err)
	}
	return nil
}

// Release implements quill.Renderer.
func (r *Renderer) Release() {
	device := r.res.Device
	if r.surfaceEngine != nil {
		r.surfaceEngine.targets.destroy(device)
	}
	if r.captureEngine != nil {
		r.captureEngine.targets.destroy(device)
	}
	for key, tex := range r.images {
		device.DestroyTextureView(tex.view)
		device.DestroyTexture(tex.tex)
		delete(r.images, key)
	}
	clear(r.glyphRegions)
	r.glyphs.Clear()
	r.destroyStatic()
}

// destroyStatic tears down atlases, pipeline objects and, when owned,
// the device itself.
func (r *Renderer) destroyStatic() {
	device := r.res.Device
	if r.maskAtlas != nil {
		r.maskAtlas.destroy(device)
		r.maskAtlas = nil
	}
	if r.glyphAtlas != nil {
		r.glyphAtlas.destroy(device)
		r.glyphAtlas = nil
	}
	if r.kit != nil {
		r.kit.destroy(device)
		r.kit = nil
	}
	r.res.release()
}
