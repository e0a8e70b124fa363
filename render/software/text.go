package software

import (
	"math"

	"github.com/quillui/quill"
	"github.com/quillui/quill/text"
)

// minTextScale is the effective scale below which text is skipped
// entirely; glyphs that small rasterize to noise.
const minTextScale = 0.1

// DrawText implements quill.Renderer.
//
// Lines are y-ordered, so once a line falls below the clip the whole
// rest of the layout is culled. Glyphs left of the clip are skipped
// individually; the first glyph past the right edge ends the line.
// Culled glyphs never touch the glyph cache.
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
						quill.Logger().Warn("software: glyph rasterization failed",
							"font", run.Source.Name(), "gid", g.GID, "error", err)
						return &text.GlyphMask{}
					}
					return m
				})
				if mask.IsEmpty() {
					continue
				}
				r.drawGlyphMask(mask,
					int(snapped)+mask.Left,
					int(math.Round(origin.Y))+mask.Top,
					color)
			}
		}
	}
}

// drawGlyphMask composites an alpha mask at the given device position
// with the run color.
func (r *Renderer) drawGlyphMask(mask *text.GlyphMask, x0, y0 int, c quill.RGBA) {
	b := mask.Mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := mask.Mask.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			px, py := x0+x, y0+y
			if !r.clipAllows(px, py) {
				continue
			}
			col := c
			col.A *= float64(a) / 255
			r.pixmap.BlendPixel(px, py, col)
		}
	}
}
