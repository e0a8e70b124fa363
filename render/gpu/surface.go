package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Frame is one acquired swapchain image. Present hands it back to the
// windowing system; the view stays valid until then.
type Frame interface {
	View() hal.TextureView
	Present()
}

// Surface abstracts the swapchain owned by the embedding application.
// Acquire may return a nil Frame with a nil error when no image is
// available this vblank, in which case the renderer skips the frame.
type Surface interface {
	// Acquire returns the next frame to render into.
	Acquire() (Frame, error)

	// Configure resizes the swapchain to the given device pixel size.
	Configure(width, height uint32)

	// Format reports the texture format of acquired frames.
	Format() gputypes.TextureFormat
}
