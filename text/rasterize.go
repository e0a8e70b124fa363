package text

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Rasterize renders a glyph outline into an alpha mask at the given
// size, shifted right by the subpixel bin's fractional offset. The
// mask is anti-aliased with exact area coverage.
//
// Rasterize acquires the source's outline buffer, so concurrent calls
// for the same FontSource serialize. Renderers cache the result in a
// GlyphCache rather than calling this per frame.
func Rasterize(source *FontSource, gid uint32, size float64, subX uint8) (*GlyphMask, error) {
	if source == nil {
		return nil, ErrGlyphNotFound
	}

	ppem := fixed.Int26_6(size * 64)
	idx := sfnt.GlyphIndex(gid) //nolint:gosec // glyph indices are 16 bit in sfnt

	source.mu.Lock()
	defer source.mu.Unlock()

	segs, err := source.outline.LoadGlyph(&source.buf, idx, ppem, nil)
	if err != nil {
		return nil, ErrGlyphNotFound
	}

	advance := 0.0
	if adv, err := source.outline.GlyphAdvance(&source.buf, idx, ppem, font.HintingNone); err == nil {
		advance = fixedToFloat(adv)
	}

	if len(segs) == 0 {
		// Whitespace: no coverage, advance only.
		return &GlyphMask{Advance: advance}, nil
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	visit := func(p fixed.Point26_6) {
		x := fixedToFloat(p.X)
		y := fixedToFloat(p.Y)
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo, sfnt.SegmentOpLineTo:
			visit(seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			visit(seg.Args[0])
			visit(seg.Args[1])
		case sfnt.SegmentOpCubeTo:
			visit(seg.Args[0])
			visit(seg.Args[1])
			visit(seg.Args[2])
		}
	}

	off := SubXOffset(subX)
	left := int(math.Floor(minX + off))
	top := int(math.Floor(minY))
	width := int(math.Ceil(maxX+off)) - left
	height := int(math.Ceil(maxY)) - top
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	r := vector.NewRasterizer(width, height)
	dx := float32(off - float64(left))
	dy := float32(-float64(top))
	px := func(p fixed.Point26_6) (float32, float32) {
		return float32(fixedToFloat(p.X)) + dx, float32(fixedToFloat(p.Y)) + dy
	}
	started := false
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				r.ClosePath()
			}
			x, y := px(seg.Args[0])
			r.MoveTo(x, y)
			started = true
		case sfnt.SegmentOpLineTo:
			x, y := px(seg.Args[0])
			r.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := px(seg.Args[0])
			x, y := px(seg.Args[1])
			r.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := px(seg.Args[0])
			c2x, c2y := px(seg.Args[1])
			x, y := px(seg.Args[2])
			r.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	if started {
		r.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &GlyphMask{
		Mask:    mask,
		Left:    left,
		Top:     top,
		Advance: advance,
	}, nil
}
