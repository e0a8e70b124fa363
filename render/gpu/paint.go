package gpu

import "github.com/quillui/quill"

// Gradient kinds encoded into vertex data for the fragment shader.
const (
	gradNone   = 0
	gradLinear = 1
	gradRadial = 2
)

// paint is a brush resolved into device space, ready for vertex
// encoding. Colors are premultiplied. For gradients, grad holds the
// geometry: linear uses (x0, y0, x1, y1), radial uses (cx, cy, r0, r1).
type paint struct {
	gradKind float32
	c0       [4]float32
	c1       [4]float32
	grad     [4]float32
}

func premul(c quill.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R * c.A),
		float32(c.G * c.A),
		float32(c.B * c.A),
		float32(c.A),
	}
}

// makePaint resolves a brush against the device matrix. Gradient
// geometry is given in logical coordinates and mapped here. Gradients
// with more than two stops keep their endpoint colors; interior stops
// blend linearly between them.
func makePaint(b quill.Brush, dm quill.Matrix) paint {
	switch br := b.(type) {
	case quill.SolidBrush:
		return paint{gradKind: gradNone, c0: premul(br.Color)}

	case quill.LinearGradientBrush:
		if len(br.Stops) == 0 {
			return paint{gradKind: gradNone}
		}
		if len(br.Stops) == 1 {
			return paint{gradKind: gradNone, c0: premul(br.Stops[0].Color)}
		}
		first := br.Stops[0]
		last := br.Stops[len(br.Stops)-1]
		p0 := dm.TransformPoint(br.Start.Lerp(br.End, first.Offset))
		p1 := dm.TransformPoint(br.Start.Lerp(br.End, last.Offset))
		return paint{
			gradKind: gradLinear,
			c0:       premul(first.Color),
			c1:       premul(last.Color),
			grad:     [4]float32{float32(p0.X), float32(p0.Y), float32(p1.X), float32(p1.Y)},
		}

	case quill.RadialGradientBrush:
		if len(br.Stops) == 0 {
			return paint{gradKind: gradNone}
		}
		if len(br.Stops) == 1 {
			return paint{gradKind: gradNone, c0: premul(br.Stops[0].Color)}
		}
		first := br.Stops[0]
		last := br.Stops[len(br.Stops)-1]
		center := dm.TransformPoint(br.Center)
		radius := br.Radius * dm.ScaleFactor()
		return paint{
			gradKind: gradRadial,
			c0:       premul(first.Color),
			c1:       premul(last.Color),
			grad: [4]float32{
				float32(center.X), float32(center.Y),
				float32(radius * first.Offset), float32(radius * last.Offset),
			},
		}

	default:
		return paint{gradKind: gradNone, c0: premul(quill.BrushColor(b, quill.Point{}))}
	}
}

// solidPaint is a shortcut for glyph and image tints.
func solidPaint(c quill.RGBA) paint {
	return paint{gradKind: gradNone, c0: premul(c)}
}
