package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/quillui/quill"
)

// rowAlignment is the required bytes-per-row alignment for texture to
// buffer copies.
const rowAlignment = 256

// finishCapture renders the current scene offscreen and reads the
// resolved pixels back synchronously.
func (r *Renderer) finishCapture(e *engine, callback quill.FrameCallback) (*image.RGBA, error) {
	device := r.res.Device
	w, h := r.targetDims(e)
	if err := e.targets.ensure(device, w, h, gputypes.TextureFormatRGBA8Unorm, true); err != nil {
		return nil, err
	}
	pipeline, err := r.kit.pipelineFor(device, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return nil, err
	}

	fb, err := r.prepareFrame(e)
	if err != nil {
		return nil, err
	}
	defer fb.destroy(device)

	width := e.targets.width
	height := e.targets.height
	alignedBytesPerRow := (width*4 + rowAlignment - 1) &^ (rowAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(height)
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quill_capture_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "quill_capture"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quill_capture"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	if err := r.recordScene(encoder, e, pipeline, fb); err != nil {
		encoder.DiscardEncoding()
		return nil, err
	}

	if callback != nil {
		ctx := callback(quill.FrameContext{
			Encoder:    encoder,
			MSAAView:   e.targets.msaaView,
			TargetView: e.targets.resolveView,
		})
		if enc, ok := ctx.Encoder.(hal.CommandEncoder); ok && enc != nil {
			encoder = enc
		}
	}

	recordResolve(encoder, e, e.targets.resolveView)

	encoder.TransitionTextures([]hal.TextureBarrier{
		{
			Texture: e.targets.resolveTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		},
	})
	encoder.CopyTextureToBuffer(e.targets.resolveTex, staging, []hal.BufferTextureCopy{
		{
			BufferLayout: hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  alignedBytesPerRow,
				RowsPerImage: height,
			},
			TextureBase: hal.ImageCopyTexture{
				Texture:  e.targets.resolveTex,
				MipLevel: 0,
			},
			Size: hal.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
		},
	})
	encoder.TransitionTextures([]hal.TextureBarrier{
		{
			Texture: e.targets.resolveTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if err := r.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := r.res.Queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("gpu: read staging buffer: %w", err)
	}

	// Strip the row padding the copy alignment introduced.
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	rowBytes := int(width) * 4
	for y := 0; y < int(height); y++ {
		src := readback[y*int(alignedBytesPerRow):]
		copy(img.Pix[y*img.Stride:y*img.Stride+rowBytes], src[:rowBytes])
	}
	return img, nil
}
