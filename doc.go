// Package quill is the rendering layer of a UI toolkit.
//
// UI code draws through the [Renderer] interface using shapes, brushes,
// text layouts, and images defined in this package. Concrete renderers
// live in sub-packages:
//
//   - render: the dispatching renderer that picks a backend at
//     construction time (GPU first, software fallback) and routes every
//     call to it.
//   - render/gpu: hardware rendering on top of gogpu/wgpu with a 4x
//     multisampled color target and a glyph atlas.
//   - render/software: CPU rasterization into a [Pixmap] producing the
//     same visual output for the same draw stream.
//
// The coordinate system is y-down with the origin at the top left, in
// logical pixels. Renderers multiply by a scale factor for hi-dpi
// output.
//
// quill produces no log output by default. Call [SetLogger] to enable
// logging for the whole module.
package quill
