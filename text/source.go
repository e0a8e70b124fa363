package text

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	gotextfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// sourceIDs hands out process-unique font source IDs for cache keys.
var sourceIDs atomic.Uint64

// FontSource represents a loaded font file.
// It holds the font parsed twice: once by go-text/typesetting for
// shaping, once by x/image/font/sfnt for outline extraction. Both
// parsed forms are read-only and safe for concurrent use.
//
// FontSource is heavyweight and should be shared across the
// application; create it once per font file.
type FontSource struct {
	id   uint64
	data []byte

	shapeFont *gotextfont.Font
	outline   *sfnt.Font

	name string

	// mu guards the sfnt.Buffer used for metrics queries.
	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewFontSource creates a FontSource from font data (TTF or OTF).
// The data slice is copied internally and can be reused after this call.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	shapeFace, err := gotextfont.ParseTTF(bytes.NewReader(dataCopy))
	if err != nil {
		return nil, fmt.Errorf("text: parse font for shaping: %w", err)
	}

	outline, err := sfnt.Parse(dataCopy)
	if err != nil {
		return nil, fmt.Errorf("text: parse font outlines: %w", err)
	}

	s := &FontSource{
		id:        sourceIDs.Add(1),
		data:      dataCopy,
		shapeFont: shapeFace.Font,
		outline:   outline,
	}

	s.mu.Lock()
	name, err := outline.Name(&s.buf, sfnt.NameIDFamily)
	s.mu.Unlock()
	if err != nil || name == "" {
		name = "Unknown Font"
	}
	s.name = name

	return s, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string) (*FontSource, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: read font file: %w", err)
	}
	return NewFontSource(data)
}

// ID returns the process-unique identifier of this source.
// Glyph cache keys embed it so masks from different fonts never collide.
func (s *FontSource) ID() uint64 {
	return s.id
}

// Name returns the font family name.
func (s *FontSource) Name() string {
	return s.name
}

// Metrics returns the font's vertical metrics at the given size in
// pixels. Ascent and descent are both positive distances from the
// baseline.
func (s *FontSource) Metrics(size float64) (ascent, descent, lineGap float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ppem := fixed.Int26_6(size * 64)
	m, err := s.outline.Metrics(&s.buf, ppem, font.HintingNone)
	if err != nil {
		// Reasonable defaults for a broken metrics table.
		return size * 0.8, size * 0.2, 0
	}
	ascent = fixedToFloat(m.Ascent)
	descent = fixedToFloat(m.Descent)
	lineGap = fixedToFloat(m.Height - m.Ascent - m.Descent)
	return ascent, descent, lineGap
}
