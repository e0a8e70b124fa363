// Package render selects and dispatches to a rendering backend.
//
// New tries the GPU backend first and falls back to the CPU rasterizer
// when no usable adapter exists or QUILL_FORCE_SOFTWARE=1 is set. The
// choice is made once at construction; a renderer never switches
// backend afterwards. NewUninitialized returns a placeholder that
// answers size and scale queries before a window exists.
package render
