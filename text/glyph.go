package text

import (
	"image"
	"math"
)

// Subpixel bins for horizontal glyph positions. Four bins (0, 0.25,
// 0.5, 0.75) balance quality against cache size; vertical positions
// snap to whole pixels.
const subpixelBins = 4

// GlyphFlags distinguish rendering variants of the same glyph.
type GlyphFlags uint8

const (
	// GlyphColor marks a glyph rasterized from a color table rather
	// than an outline.
	GlyphColor GlyphFlags = 1 << iota
)

// GlyphKey identifies a rasterized glyph mask. Two draw calls that
// produce the same key share one cached mask, so every field that
// affects the mask's pixels must be part of the key.
type GlyphKey struct {
	// SourceID is FontSource.ID().
	SourceID uint64

	// GID is the glyph index within the font.
	GID uint32

	// SizeQ is the font size in 26.6 fixed point.
	SizeQ uint32

	// SubX is the quantized horizontal subpixel bin (0..3).
	SubX uint8

	// Flags distinguish rendering variants.
	Flags GlyphFlags
}

// NewGlyphKey builds a key for a glyph drawn at horizontal position x
// in device pixels. The returned snapped position is x rounded down to
// the pixel the mask must be placed at.
func NewGlyphKey(source *FontSource, gid uint32, size float64, x float64, flags GlyphFlags) (GlyphKey, float64) {
	snapped, sub := QuantizeX(x)
	return GlyphKey{
		SourceID: source.ID(),
		GID:      gid,
		SizeQ:    uint32(size * 64),
		SubX:     sub,
		Flags:    flags,
	}, snapped
}

// QuantizeX splits a horizontal position into a whole-pixel position
// and a subpixel bin index.
func QuantizeX(x float64) (snapped float64, bin uint8) {
	floor := math.Floor(x)
	frac := x - floor
	bin = uint8(frac * subpixelBins)
	if bin >= subpixelBins {
		bin = subpixelBins - 1
	}
	return floor, bin
}

// SubXOffset returns the fractional x offset a bin stands for.
func SubXOffset(bin uint8) float64 {
	return float64(bin) / subpixelBins
}

// GlyphMask is a rasterized glyph: an alpha coverage mask plus its
// placement relative to the glyph origin on the baseline.
type GlyphMask struct {
	// Mask is the coverage bitmap. Nil for whitespace glyphs.
	Mask *image.Alpha

	// Left and Top offset the mask's top-left corner from the glyph
	// origin, in pixels. Top is typically negative (above baseline).
	Left, Top int

	// Advance is the horizontal advance in pixels.
	Advance float64
}

// IsEmpty reports whether the mask has no coverage.
func (g *GlyphMask) IsEmpty() bool {
	return g == nil || g.Mask == nil || g.Mask.Bounds().Empty()
}
