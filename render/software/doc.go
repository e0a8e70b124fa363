// Package software is the CPU rendering backend.
//
// It implements quill.Renderer by rasterizing into a quill.Pixmap with
// x/image/vector for coverage and per-pixel brush evaluation for
// color. It exists as the fallback when no usable GPU adapter is
// present and as the reference output the GPU backend is compared
// against.
package software
