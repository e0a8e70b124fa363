package text

// ShapedGlyph is a single positioned glyph produced by shaping.
// Positions are in pixels, relative to the start of the shaped run,
// with y growing downward from the baseline.
type ShapedGlyph struct {
	// GID is the glyph index within the font.
	GID uint32

	// Cluster is the rune index in the source text this glyph maps to.
	Cluster int

	// X and Y are the glyph origin relative to the run start.
	X, Y float64

	// XAdvance is the horizontal pen advance of this glyph.
	XAdvance float64
}
