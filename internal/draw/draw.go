// Package draw provides the 2D surfaces the starfield renders onto: a
// terminal half-block canvas, a gg raster image, and a call recorder.
package draw

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Surface is a 2D raster target. Coordinates are logical pixels with the
// origin at the top-left corner.
type Surface interface {
	// Size returns the logical width and height of the surface.
	Size() (width, height float64)

	// Fill paints the whole surface with an opaque colour.
	Fill(c colorful.Color)

	// FillCircle composites a filled disc of colour c at the given opacity.
	FillCircle(x, y, r float64, c colorful.Color, alpha float64)

	// StrokeLine strokes a round-capped line from (x0, y0) to (x1, y1).
	// Opacity along the line is interpolated between stops, where offset 0
	// is the start and offset 1 the end.
	StrokeLine(x0, y0, x1, y1, width float64, c colorful.Color, stops []Stop)
}

// Stop is an opacity stop on a line gradient.
type Stop struct {
	Offset float64 // Position along the line in [0, 1]
	Alpha  float64 // Opacity at that position
}

// AlphaAt interpolates the opacity of stops at offset t.
// Offsets before the first stop or after the last one clamp to the end stops.
func AlphaAt(stops []Stop, t float64) float64 {
	if len(stops) == 0 {
		return 0
	}
	if t <= stops[0].Offset {
		return stops[0].Alpha
	}
	for i := 1; i < len(stops); i++ {
		prev, next := stops[i-1], stops[i]
		if t <= next.Offset {
			span := next.Offset - prev.Offset
			if span <= 0 {
				return next.Alpha
			}
			f := (t - prev.Offset) / span
			return prev.Alpha + (next.Alpha-prev.Alpha)*f
		}
	}
	return stops[len(stops)-1].Alpha
}

// Hex parses a "#RRGGBB" colour, returning fallback if it is malformed.
func Hex(s string, fallback colorful.Color) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}

// Shade characters from lightest to darkest.
// Used to render intensity on terminals without colour support.
var Shades = []rune{' ', '░', '▒', '▓', '█'}

// ShadeLevel returns a shade character for a value between 0.0 (empty) and 1.0 (solid).
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	idx := int(intensity * float64(len(Shades)-1))
	return Shades[idx]
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
