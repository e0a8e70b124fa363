package text

import (
	"image/color"
	"strings"
)

// Glyph is a positioned glyph within a laid-out line. X is relative to
// the line's left edge; Y is the offset from the line baseline
// (non-zero for marks and superscripts).
type Glyph struct {
	GID     uint32
	X, Y    float64
	Advance float64
}

// Run is a maximal sequence of glyphs sharing one font, size, and
// color within a line.
type Run struct {
	Source *FontSource
	Size   float64

	// Color applies when HasColor is set; otherwise renderers draw the
	// run black.
	Color    color.NRGBA
	HasColor bool

	Glyphs []Glyph
}

// Line is one laid-out line of text. Lines within a Layout are ordered
// top to bottom and Y increases strictly, which renderers rely on to
// stop iterating once a line falls below the clip.
type Line struct {
	// Y is the top of the line relative to the layout origin.
	Y float64

	// Width is the advance width of the line.
	Width float64

	// Ascent and Descent are positive distances from the baseline.
	// The baseline sits at Y + Ascent.
	Ascent, Descent float64

	Runs []Run
}

// Baseline returns the line's baseline offset from the layout origin.
func (l *Line) Baseline() float64 {
	return l.Y + l.Ascent
}

// Layout is shaped, wrapped text ready for drawing.
type Layout struct {
	Lines  []Line
	Width  float64
	Height float64
}

// LayoutOption configures layout construction.
type LayoutOption func(*layoutConfig)

type layoutConfig struct {
	maxWidth   float64
	lineHeight float64
	color      color.NRGBA
	hasColor   bool
}

// WithMaxWidth wraps lines at the given width in pixels.
// Zero (the default) disables wrapping.
func WithMaxWidth(w float64) LayoutOption {
	return func(c *layoutConfig) {
		c.maxWidth = w
	}
}

// WithLineHeight multiplies the font's natural line height.
func WithLineHeight(factor float64) LayoutOption {
	return func(c *layoutConfig) {
		if factor > 0 {
			c.lineHeight = factor
		}
	}
}

// WithColor sets the text color for all runs of the layout.
func WithColor(c color.NRGBA) LayoutOption {
	return func(cfg *layoutConfig) {
		cfg.color = c
		cfg.hasColor = true
	}
}

// NewLayout shapes and wraps a string into a Layout.
//
// Wrapping is greedy at word boundaries: each word is shaped on its
// own, so kerning does not cross spaces. Paragraphs ('\n') always
// break.
func NewLayout(source *FontSource, str string, size float64, opts ...LayoutOption) *Layout {
	cfg := layoutConfig{lineHeight: 1.0}
	for _, opt := range opts {
		opt(&cfg)
	}

	ascent, descent, lineGap := source.Metrics(size)
	lineAdvance := (ascent + descent + lineGap) * cfg.lineHeight

	layout := &Layout{}
	y := 0.0

	flush := func(glyphs []Glyph, width float64) {
		line := Line{
			Y:       y,
			Width:   width,
			Ascent:  ascent,
			Descent: descent,
		}
		if len(glyphs) > 0 {
			line.Runs = []Run{{
				Source:   source,
				Size:     size,
				Color:    cfg.color,
				HasColor: cfg.hasColor,
				Glyphs:   glyphs,
			}}
		}
		layout.Lines = append(layout.Lines, line)
		if width > layout.Width {
			layout.Width = width
		}
		y += lineAdvance
	}

	for _, paragraph := range strings.Split(str, "\n") {
		if paragraph == "" {
			flush(nil, 0)
			continue
		}

		var glyphs []Glyph
		penX := 0.0
		words := splitKeepingSpaces(paragraph)
		for _, word := range words {
			shaped := Shape(source, word, size)
			wordWidth := 0.0
			for _, g := range shaped {
				wordWidth += g.XAdvance
			}

			breakable := penX > 0 && !isSpaces(word)
			if cfg.maxWidth > 0 && breakable && penX+wordWidth > cfg.maxWidth {
				flush(glyphs, penX)
				glyphs = nil
				penX = 0
			}

			for _, g := range shaped {
				glyphs = append(glyphs, Glyph{
					GID:     g.GID,
					X:       penX + g.X,
					Y:       g.Y,
					Advance: g.XAdvance,
				})
			}
			penX += wordWidth
		}
		flush(glyphs, penX)
	}

	layout.Height = y
	return layout
}

// splitKeepingSpaces splits a string into alternating word and space
// chunks so wrap decisions can treat trailing spaces as part of the
// preceding break opportunity.
func splitKeepingSpaces(s string) []string {
	var chunks []string
	start := 0
	inSpace := false
	for i, r := range s {
		space := r == ' ' || r == '\t'
		if i > 0 && space != inSpace {
			chunks = append(chunks, s[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

func isSpaces(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
