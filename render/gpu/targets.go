package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// sampleCount is the multisample count for every render target.
const sampleCount = 4

// targetSet owns the per-engine render attachments: a 4x multisampled
// color texture and, for offscreen rendering, a single-sample resolve
// texture that can be copied out.
type targetSet struct {
	msaaTex  hal.Texture
	msaaView hal.TextureView

	resolveTex  hal.Texture
	resolveView hal.TextureView

	width  uint32
	height uint32
	format gputypes.TextureFormat
}

// ensure (re)creates the attachments for the given size. It is a no-op
// when the current textures already match, so callers can invoke it
// every frame.
func (t *targetSet) ensure(device hal.Device, width, height uint32, format gputypes.TextureFormat, withResolve bool) error {
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}
	if t.msaaTex != nil && t.width == width && t.height == height && t.format == format {
		if !withResolve || t.resolveTex != nil {
			return nil
		}
	}
	t.destroy(device)

	msaaTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "quill_msaa",
		Size: hal.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("gpu: create msaa texture: %w", err)
	}
	msaaView, err := device.CreateTextureView(msaaTex, &hal.TextureViewDescriptor{
		Label: "quill_msaa_view",
	})
	if err != nil {
		device.DestroyTexture(msaaTex)
		return fmt.Errorf("gpu: create msaa view: %w", err)
	}

	t.msaaTex = msaaTex
	t.msaaView = msaaView
	t.width = width
	t.height = height
	t.format = format

	if !withResolve {
		return nil
	}

	resolveTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "quill_resolve",
		Size: hal.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		t.destroy(device)
		return fmt.Errorf("gpu: create resolve texture: %w", err)
	}
	resolveView, err := device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
		Label: "quill_resolve_view",
	})
	if err != nil {
		device.DestroyTexture(resolveTex)
		t.destroy(device)
		return fmt.Errorf("gpu: create resolve view: %w", err)
	}
	t.resolveTex = resolveTex
	t.resolveView = resolveView
	return nil
}

// destroy releases all attachments, views before textures.
func (t *targetSet) destroy(device hal.Device) {
	if t.resolveView != nil {
		device.DestroyTextureView(t.resolveView)
		t.resolveView = nil
	}
	if t.resolveTex != nil {
		device.DestroyTexture(t.resolveTex)
		t.resolveTex = nil
	}
	if t.msaaView != nil {
		device.DestroyTextureView(t.msaaView)
		t.msaaView = nil
	}
	if t.msaaTex != nil {
		device.DestroyTexture(t.msaaTex)
		t.msaaTex = nil
	}
	t.width = 0
	t.height = 0
}
