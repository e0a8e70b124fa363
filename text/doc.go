// Package text provides font loading, HarfBuzz shaping, line layout,
// and glyph rasterization for quill renderers.
//
// The flow is: load a [FontSource] once per font file, build a [Layout]
// from a string (shaping and wrapping happen here), then hand the
// layout to a renderer. Renderers rasterize individual glyphs through
// [Rasterize] and cache the masks in a [GlyphCache] keyed by
// [GlyphKey], which includes a quantized subpixel x position so the
// same glyph rendered at x=10.0 and x=10.25 gets distinct masks.
package text
