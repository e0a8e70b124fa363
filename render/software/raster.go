package software

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/quillui/quill"
	"github.com/quillui/quill/internal/flatten"
)

// coverageMask is an alpha mask positioned on the device pixel grid.
type coverageMask struct {
	alpha            *image.Alpha
	originX, originY int
}

// contourMask rasterizes closed contours into a coverage mask.
// A positive blur radius feathers the mask with a box blur.
func contourMask(contours []flatten.Contour, blur float64) *coverageMask {
	m := newMask(contours, blur+1)
	if m == nil {
		return nil
	}
	r := vector.NewRasterizer(m.alpha.Bounds().Dx(), m.alpha.Bounds().Dy())
	for _, c := range contours {
		if len(c.Pts) < 3 {
			continue
		}
		moveLine(r, c.Pts, m.originX, m.originY)
		r.ClosePath()
	}
	r.Draw(m.alpha, m.alpha.Bounds(), image.Opaque, image.Point{})
	if blur > 0 {
		boxBlur(m.alpha, int(math.Round(blur)))
	}
	return m
}

// strokeMask rasterizes polylines stroked at the given half width.
// Each segment contributes a quad and each vertex a round join, so the
// union forms capsules, matching the GPU backend's segment primitive.
func strokeMask(lines []flatten.Contour, half float64) *coverageMask {
	if half <= 0 {
		half = 0.5
	}
	m := newMask(lines, half+1)
	if m == nil {
		return nil
	}
	r := vector.NewRasterizer(m.alpha.Bounds().Dx(), m.alpha.Bounds().Dy())
	ox, oy := float64(m.originX), float64(m.originY)

	quad := func(p0, p1 quill.Point) {
		d := p1.Sub(p0)
		if d.Length() == 0 {
			return
		}
		n := quill.Pt(-d.Y, d.X).Normalize().Mul(half)
		r.MoveTo(float32(p0.X+n.X-ox), float32(p0.Y+n.Y-oy))
		r.LineTo(float32(p1.X+n.X-ox), float32(p1.Y+n.Y-oy))
		r.LineTo(float32(p1.X-n.X-ox), float32(p1.Y-n.Y-oy))
		r.LineTo(float32(p0.X-n.X-ox), float32(p0.Y-n.Y-oy))
		r.ClosePath()
	}
	dot := func(p quill.Point) {
		const n = 4 * flatten.ArcSegments
		r.MoveTo(float32(p.X+half-ox), float32(p.Y-oy))
		for i := 1; i <= n; i++ {
			a := 2 * math.Pi * float64(i) / n
			r.LineTo(float32(p.X+half*math.Cos(a)-ox), float32(p.Y+half*math.Sin(a)-oy))
		}
		r.ClosePath()
	}

	for _, line := range lines {
		pts := line.Pts
		if len(pts) < 2 {
			continue
		}
		for i := 0; i+1 < len(pts); i++ {
			quad(pts[i], pts[i+1])
		}
		if line.Closed {
			quad(pts[len(pts)-1], pts[0])
		}
		for _, p := range pts {
			dot(p)
		}
	}
	r.Draw(m.alpha, m.alpha.Bounds(), image.Opaque, image.Point{})
	return m
}

// newMask allocates a mask covering the contours' bounding box grown
// by pad pixels on every side.
func newMask(contours []flatten.Contour, pad float64) *coverageMask {
	b, ok := flatten.Bounds(contours)
	if !ok {
		return nil
	}
	x0 := int(math.Floor(b.X0 - pad))
	y0 := int(math.Floor(b.Y0 - pad))
	x1 := int(math.Ceil(b.X1 + pad))
	y1 := int(math.Ceil(b.Y1 + pad))
	w, h := x1-x0, y1-y0
	if w < 1 || h < 1 || w > 1<<14 || h > 1<<14 {
		return nil
	}
	return &coverageMask{
		alpha:   image.NewAlpha(image.Rect(0, 0, w, h)),
		originX: x0,
		originY: y0,
	}
}

func moveLine(r *vector.Rasterizer, pts []quill.Point, ox, oy int) {
	r.MoveTo(float32(pts[0].X-float64(ox)), float32(pts[0].Y-float64(oy)))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X-float64(ox)), float32(p.Y-float64(oy)))
	}
}

// boxBlur applies a separable box blur to an alpha mask in place.
func boxBlur(img *image.Alpha, radius int) {
	if radius <= 0 {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := make([]uint8, w*h)
	window := 2*radius + 1

	// Horizontal pass.
	for y := 0; y < h; y++ {
		sum := 0
		for x := -radius; x <= radius; x++ {
			sum += int(alphaAt(img, x, y, w, h))
		}
		for x := 0; x < w; x++ {
			tmp[y*w+x] = uint8(sum / window)
			sum += int(alphaAt(img, x+radius+1, y, w, h))
			sum -= int(alphaAt(img, x-radius, y, w, h))
		}
	}
	// Vertical pass.
	for x := 0; x < w; x++ {
		sum := 0
		for y := -radius; y <= radius; y++ {
			sum += int(tmpAt(tmp, x, y, w, h))
		}
		for y := 0; y < h; y++ {
			img.Pix[y*img.Stride+x] = uint8(sum / window)
			sum += int(tmpAt(tmp, x, y+radius+1, w, h))
			sum -= int(tmpAt(tmp, x, y-radius, w, h))
		}
	}
}

func alphaAt(img *image.Alpha, x, y, w, h int) uint8 {
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0
	}
	return img.Pix[y*img.Stride+x]
}

func tmpAt(tmp []uint8, x, y, w, h int) uint8 {
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0
	}
	return tmp[y*w+x]
}
