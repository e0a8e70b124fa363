package software

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/quillui/quill"
)

// DrawImg implements quill.Renderer. The image is scaled to the
// transformed rect's device size; scaled pixels are cached by content
// hash and target size so repeated frames reuse them.
func (r *Renderer) DrawImg(img quill.Img, rect quill.Rect) {
	if img.Image == nil {
		return
	}
	x, y, w, h := r.imageTarget(rect)
	scaled := r.images.GetOrCreate(sizedKey(img.Hash, w, h), func() *image.RGBA {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img.Image, img.Image.Bounds(), xdraw.Over, nil)
		return dst
	})
	r.compositeImage(scaled, x, y)
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

	scaled := r.svgs.GetOrCreate(sizedKey(key, w, h), func() *image.RGBA {
		return svg.Rasterize(w, h, fill)
	})
	r.compositeImage(scaled, x, y)
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

// compositeImage draws a premultiplied RGBA image at a device
// position, honoring the clip.
func (r *Renderer) compositeImage(src *image.RGBA, x0, y0 int) {
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px, py := x0+x, y0+y
			if !r.clipAllows(px, py) {
				continue
			}
			c := quill.FromColor(src.RGBAAt(x, y))
			if c.A == 0 {
				continue
			}
			r.pixmap.BlendPixel(px, py, c)
		}
	}
}
