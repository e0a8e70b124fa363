package quill

import (
	"image"

	"github.com/quillui/quill/text"
)

// FrameContext carries the in-flight GPU objects of a frame while a
// FrameCallback runs. The fields are backend-specific handles (wgpu/hal
// types for the GPU renderer) exposed as any so the root package stays
// free of GPU imports; callbacks that draw extra passes assert them
// back to the concrete types. Software renderers pass a zero
// FrameContext.
type FrameContext struct {
	// Encoder is the command encoder the frame is being recorded into.
	Encoder any
	// Frame is the acquired swapchain frame.
	Frame any
	// MSAAView is the multisampled color target view.
	MSAAView any
	// TargetView is the resolve target view (the frame's texture view).
	TargetView any
}

// FrameCallback runs between command encoding and submission during
// Renderer.Finish. It receives the frame context and must return it
// (possibly with a replaced encoder) so the renderer can finish
// recording and submit.
type FrameCallback func(FrameContext) FrameContext

// Renderer is the drawing interface of the toolkit. All coordinates
// are in logical pixels; the renderer applies its scale factor.
//
// A renderer is not safe for concurrent use. The expected call
// sequence per frame is Begin, any number of draw calls, Finish.
type Renderer interface {
	// Begin starts a new frame, discarding any unsubmitted content from
	// the previous one. The current transform is reset to identity, the
	// z index to zero, and the clip is cleared.
	//
	// When capture is true the frame renders to an offscreen target and
	// Finish returns its pixels; otherwise the frame goes to the window
	// surface and Finish returns nil. Toggling capture between frames
	// is cheap once both targets exist.
	Begin(capture bool)

	// Transform replaces the current transformation matrix. It applies
	// to all subsequent geometry, text, and image positions.
	Transform(m Matrix)

	// SetZIndex sets the z index for subsequent draws. Primitives with
	// a higher z draw over lower ones regardless of call order.
	SetZIndex(z int)

	// Clip restricts subsequent drawing to the shape. Rectangles and
	// rounded rectangles clip exactly (including corner radii); any
	// other shape clips to its transformed bounding box.
	Clip(shape Shape)

	// ClearClip removes the current clip.
	ClearClip()

	// Stroke outlines the shape with the brush. The stroke width is in
	// logical pixels and is scaled by the current transform and the
	// renderer scale. Cubic path segments are not stroked; they are
	// skipped with a logged warning.
	Stroke(shape Shape, brush Brush, width float64)

	// Fill paints the interior of the shape. A positive blurRadius
	// feathers the edges; only rectangular shapes support blur.
	// Cubic path segments are skipped.
	Fill(shape Shape, brush Brush, blurRadius float64)

	// DrawText draws a shaped text layout with its origin at pos.
	// Glyph runs carrying no color draw black.
	DrawText(layout *text.Layout, pos Point)

	// DrawImg draws the image scaled into rect.
	DrawImg(img Img, rect Rect)

	// DrawSvg draws the SVG scaled into rect. A non-nil brush recolors
	// the rasterized document (monochrome icons).
	DrawSvg(svg Svg, rect Rect, brush Brush)

	// Resize updates the output dimensions and scale. size is in
	// logical pixels and is clamped to at least 1x1.
	Resize(scale float64, size Size)

	// SetScale updates only the scale factor.
	SetScale(scale float64)

	// Scale returns the current scale factor.
	Scale() float64

	// Size returns the current logical size.
	Size() Size

	// Finish ends the frame. In capture mode it blocks until the GPU
	// work completes and returns the frame pixels; otherwise it
	// presents to the surface and returns nil. A nil return in normal
	// mode can also mean the frame was skipped because no surface
	// texture was available.
	//
	// callback, if non-nil, runs between encoding and submission with
	// the frame's GPU objects (GPU backend only).
	Finish(callback FrameCallback) *image.RGBA

	// Release frees GPU resources. The renderer must not be used after
	// Release.
	Release()
}
