package quill

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Img is a decoded raster image plus a content hash.
// Renderers use the hash to key their scaled-texture caches, so two Img
// values built from identical bytes share cache entries.
type Img struct {
	Image image.Image
	Hash  uint64
}

// NewImg decodes an image from its encoded bytes.
// Registered formats (image/png, image/jpeg, ...) must be imported by
// the caller.
func NewImg(data []byte) (Img, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Img{}, fmt.Errorf("decode image: %w", err)
	}
	return Img{Image: img, Hash: contentHash(data)}, nil
}

// ImgFromImage wraps an already decoded image. The hash must identify
// the image content; images with equal hashes are assumed identical.
func ImgFromImage(img image.Image, hash uint64) Img {
	return Img{Image: img, Hash: hash}
}

// Svg is a parsed SVG document plus a content hash.
type Svg struct {
	icon *oksvg.SvgIcon
	Hash uint64
}

// NewSvg parses an SVG document.
func NewSvg(data []byte) (Svg, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return Svg{}, fmt.Errorf("parse svg: %w", err)
	}
	return Svg{icon: icon, Hash: contentHash(data)}, nil
}

// IsZero reports whether the Svg holds no document.
func (s Svg) IsZero() bool {
	return s.icon == nil
}

// Rasterize renders the SVG scaled to width x height pixels.
// If fill is non-nil every pixel keeps its rendered coverage but takes
// the fill color, which is how icon fonts and monochrome UI icons are
// recolored.
func (s Svg) Rasterize(width, height int, fill *RGBA) *image.RGBA {
	if s.icon == nil || width < 1 || height < 1 {
		return image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	s.icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	s.icon.Draw(raster, 1.0)

	if fill != nil {
		c := fill.NRGBA()
		pix := img.Pix
		for i := 0; i < len(pix); i += 4 {
			a := pix[i+3]
			if a == 0 {
				continue
			}
			// The buffer is premultiplied alpha.
			pix[i+0] = uint8(uint32(c.R) * uint32(a) / 255)
			pix[i+1] = uint8(uint32(c.G) * uint32(a) / 255)
			pix[i+2] = uint8(uint32(c.B) * uint32(a) / 255)
		}
	}
	return img
}

// contentHash computes an FNV-1a hash of raw content bytes.
func contentHash(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}
