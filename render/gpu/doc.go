// Package gpu implements the hardware rendering backend.
//
// Scene content is accumulated as screen-space quad primitives whose
// shapes are evaluated analytically in the fragment shader. Glyphs and
// filled paths are rasterized on the CPU into alpha atlases and drawn
// as textured quads. Everything for a frame is submitted in a single
// render pass into a 4x multisampled target that resolves either into
// a swapchain frame or, in capture mode, into an offscreen texture
// that is read back synchronously.
package gpu
