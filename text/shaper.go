package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// shaperPool pools HarfbuzzShaper instances. HarfbuzzShaper has
// internal mutable state and is not safe for concurrent use, but
// reusing instances across sequential calls avoids reallocating its
// buffers.
var shaperPool = sync.Pool{
	New: func() any {
		return &shaping.HarfbuzzShaper{}
	},
}

// Shape converts a run of text into positioned glyphs at the given
// size using HarfBuzz shaping via go-text/typesetting. The run should
// be a single direction and script; Layout handles splitting.
func Shape(source *FontSource, str string, size float64) []ShapedGlyph {
	if str == "" || source == nil {
		return nil
	}

	// font.Face is not safe for concurrent use; font.NewFace is a cheap
	// wrapper around the shared read-only Font.
	face := font.NewFace(source.shapeFont)

	runes := []rune(str)
	dir := di.DirectionLTR
	if baseDirection(str) == bidi.RightToLeft {
		dir = di.DirectionRTL
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      face,
		Size:      fixed.Int26_6(size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hbShaper := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hbShaper.Shape(input)
	shaperPool.Put(hbShaper)

	return convertGlyphs(output.Glyphs)
}

// baseDirection determines the paragraph base direction of a string.
func baseDirection(str string) bidi.Direction {
	var p bidi.Paragraph
	p.SetString(str)
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return bidi.LeftToRight
	}
	return p.Direction()
}

// detectScript inspects the runes and returns the script of the first
// non-space character. Mixed-script runs should be split before
// shaping.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// convertGlyphs converts go-text output glyphs to ShapedGlyph values
// with absolute pen positions.
func convertGlyphs(glyphs []shaping.Glyph) []ShapedGlyph {
	if len(glyphs) == 0 {
		return nil
	}

	result := make([]ShapedGlyph, len(glyphs))
	var x float64
	for i, g := range glyphs {
		adv := fixedToFloat(g.Advance)
		result[i] = ShapedGlyph{
			GID:      uint32(g.GlyphID),
			Cluster:  g.TextIndex(),
			X:        x + fixedToFloat(g.XOffset),
			Y:        -fixedToFloat(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}
	return result
}
