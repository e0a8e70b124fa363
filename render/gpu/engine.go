package gpu

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/gogpu/wgpu/hal"
)

// Primitive kinds, matched by the fragment shader.
const (
	kindRect    = 0 // rounded box SDF; params = cx, cy, hx, hy
	kindCircle  = 1 // circle SDF; params = cx, cy, r, 0
	kindSegment = 2 // capsule SDF; params = x0, y0, x1, y1
	kindGlyph   = 3 // coverage from the glyph atlas
	kindMask    = 4 // coverage from the transient mask atlas
	kindImage   = 5 // color from a bound image texture
)

// aaMargin is the quad expansion in pixels so SDF antialiasing has room
// to fade out.
const aaMargin = 1.0

// vertexStride is the byte size of one vertex: position, uv, shape
// params, (kind, param, gradKind, blur), two colors, gradient geometry,
// scissor rect and scissor corner radii. 32 floats.
const vertexStride = 128

// primitive is one screen-space quad queued for the frame.
type primitive struct {
	kind float32
	z    int

	// quad is the device-space bounding box the two triangles cover.
	quad [4]float32

	// uv holds normalized atlas or texture coordinates for textured
	// kinds, zero otherwise.
	uv [4]float32

	// params is kind-specific shape geometry.
	params [4]float32

	// param is the corner radius (rect) or half stroke width (segment).
	param float32

	// blur is the fill blur radius in device pixels, 0 for hard edges.
	blur float32

	pnt paint

	scissor      [4]float32
	scissorRadii [4]float32

	// tex is the image texture view for kindImage, nil otherwise.
	tex hal.TextureView
}

// drawBatch is a contiguous run of sorted primitives sharing a texture
// binding.
type drawBatch struct {
	tex         hal.TextureView
	firstVertex uint32
	vertexCount uint32
}

// engine accumulates primitives for one render target. The renderer
// owns two of them, one for the surface and one for captures, and
// switches between them in Begin.
type engine struct {
	targets   targetSet
	offscreen bool

	prims []primitive
	seq   []int
}

// reset drops all queued primitives, keeping capacity.
func (e *engine) reset() {
	e.prims = e.prims[:0]
	e.seq = e.seq[:0]
}

func (e *engine) push(p primitive) {
	e.prims = append(e.prims, p)
	e.seq = append(e.seq, len(e.seq))
}

// sorted returns primitive indices ordered by z index. The sort is
// stable so same-z primitives keep painter order.
func (e *engine) sorted() []int {
	order := e.seq
	sort.SliceStable(order, func(i, j int) bool {
		return e.prims[order[i]].z < e.prims[order[j]].z
	})
	return order
}

// buildFrame encodes all primitives into a vertex byte buffer and the
// draw batches that consume it. Six vertices per primitive.
func (e *engine) buildFrame() ([]byte, []drawBatch) {
	order := e.sorted()
	if len(order) == 0 {
		return nil, nil
	}

	buf := make([]byte, len(order)*6*vertexStride)
	batches := make([]drawBatch, 0, 4)
	offset := 0

	for i, idx := range order {
		p := &e.prims[idx]

		if n := len(batches); n > 0 && batches[n-1].tex == p.tex {
			batches[n-1].vertexCount += 6
		} else {
			batches = append(batches, drawBatch{
				tex:         p.tex,
				firstVertex: uint32(i * 6),
				vertexCount: 6,
			})
		}

		x0, y0, x1, y1 := p.quad[0], p.quad[1], p.quad[2], p.quad[3]
		u0, v0, u1, v1 := p.uv[0], p.uv[1], p.uv[2], p.uv[3]

		type corner struct{ px, py, u, v float32 }
		tl := corner{x0, y0, u0, v0}
		tr := corner{x1, y0, u1, v0}
		bl := corner{x0, y1, u0, v1}
		br := corner{x1, y1, u1, v1}
		for _, c := range [6]corner{tl, tr, bl, tr, br, bl} {
			writeVertex(buf[offset:], c.px, c.py, c.u, c.v, p)
			offset += vertexStride
		}
	}
	return buf, batches
}

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
}

func writeVertex(buf []byte, px, py, u, v float32, p *primitive) {
	putF32(buf, 0, px)
	putF32(buf, 4, py)
	putF32(buf, 8, u)
	putF32(buf, 12, v)
	putF32(buf, 16, p.params[0])
	putF32(buf, 20, p.params[1])
	putF32(buf, 24, p.params[2])
	putF32(buf, 28, p.params[3])
	putF32(buf, 32, p.kind)
	putF32(buf, 36, p.param)
	putF32(buf, 40, p.pnt.gradKind)
	putF32(buf, 44, p.blur)
	putF32(buf, 48, p.pnt.c0[0])
	putF32(buf, 52, p.pnt.c0[1])
	putF32(buf, 56, p.pnt.c0[2])
	putF32(buf, 60, p.pnt.c0[3])
	putF32(buf, 64, p.pnt.c1[0])
	putF32(buf, 68, p.pnt.c1[1])
	putF32(buf, 72, p.pnt.c1[2])
	putF32(buf, 76, p.pnt.c1[3])
	putF32(buf, 80, p.pnt.grad[0])
	putF32(buf, 84, p.pnt.grad[1])
	putF32(buf, 88, p.pnt.grad[2])
	putF32(buf, 92, p.pnt.grad[3])
	putF32(buf, 96, p.scissor[0])
	putF32(buf, 100, p.scissor[1])
	putF32(buf, 104, p.scissor[2])
	putF32(buf, 108, p.scissor[3])
	putF32(buf, 112, p.scissorRadii[0])
	putF32(buf, 116, p.scissorRadii[1])
	putF32(buf, 120, p.scissorRadii[2])
	putF32(buf, 124, p.scissorRadii[3])
}
