package quill

import (
	"math"
	"sort"
)

// Brush represents what to paint with.
// This is a sealed interface - only types in this package implement it.
//
// Supported brush types:
//   - SolidBrush: a single solid color
//   - LinearGradientBrush: a two-point linear gradient
//   - RadialGradientBrush: a center/radius radial gradient
//
// A backend that cannot express a brush kind falls back to the brush's
// color at the shape center; a brush never causes a draw call to fail.
type Brush interface {
	// brushMarker is an unexported method that seals this interface.
	// Only types in this package can implement Brush.
	brushMarker()

	// ColorAt returns the color at the given coordinates.
	// For solid brushes, this returns the same color regardless of position.
	ColorAt(x, y float64) RGBA
}

// ColorStop represents a color at a specific position in a gradient.
type ColorStop struct {
	Offset float64 // Position in gradient, 0.0 to 1.0
	Color  RGBA    // Color at this position
}

// SolidBrush is a single-color brush.
type SolidBrush struct {
	Color RGBA
}

// brushMarker implements the sealed Brush interface.
func (SolidBrush) brushMarker() {}

// ColorAt implements Brush. Returns the solid color regardless of position.
func (b SolidBrush) ColorAt(_, _ float64) RGBA {
	return b.Color
}

// Solid creates a SolidBrush from an RGBA color.
func Solid(c RGBA) SolidBrush {
	return SolidBrush{Color: c}
}

// SolidRGB creates an opaque SolidBrush from RGB components (0-1 range).
func SolidRGB(r, g, b float64) SolidBrush {
	return SolidBrush{Color: RGB(r, g, b)}
}

// LinearGradientBrush interpolates colors along the segment from Start
// to End, in the shape's local coordinate space.
type LinearGradientBrush struct {
	Start Point
	End   Point
	Stops []ColorStop
}

func (LinearGradientBrush) brushMarker() {}

// ColorAt implements Brush.
func (b LinearGradientBrush) ColorAt(x, y float64) RGBA {
	d := b.End.Sub(b.Start)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return colorAtOffset(b.Stops, 0)
	}
	t := Pt(x, y).Sub(b.Start).Dot(d) / lenSq
	return colorAtOffset(b.Stops, t)
}

// RadialGradientBrush interpolates colors from Center outward to Radius.
type RadialGradientBrush struct {
	Center Point
	Radius float64
	Stops  []ColorStop
}

func (RadialGradientBrush) brushMarker() {}

// ColorAt implements Brush.
func (b RadialGradientBrush) ColorAt(x, y float64) RGBA {
	if b.Radius <= 0 {
		return colorAtOffset(b.Stops, 0)
	}
	t := Pt(x, y).Distance(b.Center) / b.Radius
	return colorAtOffset(b.Stops, t)
}

// LinearGradient creates a linear gradient brush between two points.
func LinearGradient(start, end Point, stops ...ColorStop) LinearGradientBrush {
	return LinearGradientBrush{Start: start, End: end, Stops: sortStops(stops)}
}

// RadialGradient creates a radial gradient brush.
func RadialGradient(center Point, radius float64, stops ...ColorStop) RadialGradientBrush {
	return RadialGradientBrush{Center: center, Radius: radius, Stops: sortStops(stops)}
}

// BrushColor resolves a brush to a representative solid color, sampled
// at the given point. Backends use it when a gradient cannot be
// expressed natively.
func BrushColor(b Brush, at Point) RGBA {
	if b == nil {
		return Transparent
	}
	return b.ColorAt(at.X, at.Y)
}

// sortStops returns the stops sorted by offset. The input is not
// modified.
func sortStops(stops []ColorStop) []ColorStop {
	if len(stops) == 0 {
		return stops
	}
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// colorAtOffset returns the interpolated color at a given offset.
// t outside [0, 1] is clamped (pad extension).
func colorAtOffset(stops []ColorStop, t float64) RGBA {
	if len(stops) == 0 {
		return Transparent
	}
	if len(stops) == 1 {
		return stops[0].Color
	}
	t = math.Min(math.Max(t, 0), 1)

	idx := sort.Search(len(stops), func(i int) bool {
		return stops[i].Offset >= t
	})
	if idx == 0 {
		return stops[0].Color
	}
	if idx >= len(stops) {
		return stops[len(stops)-1].Color
	}

	s1 := stops[idx-1]
	s2 := stops[idx]
	if s2.Offset == s1.Offset {
		return s1.Color
	}
	localT := (t - s1.Offset) / (s2.Offset - s1.Offset)
	return s1.Color.Lerp(s2.Color, localT)
}
