package text

import "errors"

var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrGlyphNotFound is returned when a glyph has no outline in the font.
	ErrGlyphNotFound = errors.New("text: glyph not found")
)
