package gpu

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/quillui/quill/internal/flatten"
)

// rasterizeContours renders closed contours into an alpha mask padded
// by one pixel. Returns the mask and its device-space origin.
func rasterizeContours(contours []flatten.Contour) (*image.Alpha, int, int) {
	b, ok := flatten.Bounds(contours)
	if !ok {
		return nil, 0, 0
	}
	const pad = 1.0
	x0 := int(math.Floor(b.X0 - pad))
	y0 := int(math.Floor(b.Y0 - pad))
	x1 := int(math.Ceil(b.X1 + pad))
	y1 := int(math.Ceil(b.Y1 + pad))
	w, h := x1-x0, y1-y0
	if w < 1 || h < 1 || w > 1<<14 || h > 1<<14 {
		return nil, 0, 0
	}

	alpha := image.NewAlpha(image.Rect(0, 0, w, h))
	rz := vector.NewRasterizer(w, h)
	for _, c := range contours {
		if len(c.Pts) < 3 {
			continue
		}
		rz.MoveTo(float32(c.Pts[0].X-float64(x0)), float32(c.Pts[0].Y-float64(y0)))
		for _, p := range c.Pts[1:] {
			rz.LineTo(float32(p.X-float64(x0)), float32(p.Y-float64(y0)))
		}
		rz.ClosePath()
	}
	rz.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})
	return alpha, x0, y0
}

// newImageTexture uploads a premultiplied RGBA image as a sampled
// texture.
func newImageTexture(res *Resources, src *image.RGBA) (*imageTexture, error) {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("gpu: empty image")
	}
	tex, err := res.Device.CreateTexture(&hal.TextureDescriptor{
		Label: "quill_image",
		Size: hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create image texture: %w", err)
	}
	view, err := res.Device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "quill_image_view",
	})
	if err != nil {
		res.Device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create image view: %w", err)
	}
	res.Queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		src.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(src.Stride),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	return &imageTexture{tex: tex, view: view}, nil
}
