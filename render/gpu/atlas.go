package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

const (
	// defaultAtlasSize is the dimension of each alpha atlas texture.
	defaultAtlasSize = 2048

	// atlasPadding is the gap between packed masks, keeping bilinear
	// sampling from bleeding across neighbours.
	atlasPadding = 1
)

// atlasRegion is a packed rectangle inside an alpha atlas.
type atlasRegion struct {
	x, y          int
	width, height int
}

func (r atlasRegion) valid() bool { return r.width > 0 && r.height > 0 }

// atlasShelf is one horizontal row of the shelf packer.
type atlasShelf struct {
	y      int
	height int
	nextX  int
}

// alphaAtlas packs 8-bit coverage masks into a single R8 texture.
// Glyph masks live in a persistent atlas keyed by the glyph cache;
// path fill masks live in a transient atlas reset every frame.
type alphaAtlas struct {
	tex  hal.Texture
	view hal.TextureView

	size    int
	shelves []atlasShelf
}

func newAlphaAtlas(device hal.Device, label string, size int) (*alphaAtlas, error) {
	if size <= 0 {
		size = defaultAtlasSize
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(size),
			Height:             uint32(size),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create atlas texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create atlas view: %w", err)
	}
	return &alphaAtlas{
		tex:     tex,
		view:    view,
		size:    size,
		shelves: make([]atlasShelf, 0, 16),
	}, nil
}

// allocate finds space for a width x height mask using shelf packing.
func (a *alphaAtlas) allocate(width, height int) (atlasRegion, bool) {
	if width <= 0 || height <= 0 || width > a.size || height > a.size {
		return atlasRegion{}, false
	}
	pw := width + atlasPadding
	ph := height + atlasPadding

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+pw > a.size {
			continue
		}
		if ph > s.height && s.nextX > 0 {
			continue
		}
		region := atlasRegion{x: s.nextX, y: s.y, width: width, height: height}
		s.nextX += pw
		if ph > s.height {
			s.height = ph
		}
		return region, true
	}

	newY := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+ph > a.size {
		return atlasRegion{}, false
	}
	a.shelves = append(a.shelves, atlasShelf{y: newY, height: ph, nextX: pw})
	return atlasRegion{x: 0, y: newY, width: width, height: height}, true
}

// upload copies an alpha mask into a previously allocated region.
func (a *alphaAtlas) upload(queue hal.Queue, region atlasRegion, mask *image.Alpha) {
	w := mask.Rect.Dx()
	h := mask.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  a.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(region.x), Y: uint32(region.y), Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		mask.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(mask.Stride),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
	)
}

// uv returns normalized texture coordinates for a region.
func (a *alphaAtlas) uv(region atlasRegion) (u0, v0, u1, v1 float32) {
	s := float32(a.size)
	return float32(region.x) / s, float32(region.y) / s,
		float32(region.x+region.width) / s, float32(region.y+region.height) / s
}

// reset drops all allocations. Texture contents are stale afterwards
// but every live region gets re-uploaded before it is sampled.
func (a *alphaAtlas) reset() {
	a.shelves = a.shelves[:0]
}

func (a *alphaAtlas) destroy(device hal.Device) {
	if a.view != nil {
		device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.tex != nil {
		device.DestroyTexture(a.tex)
		a.tex = nil
	}
}
