// Package object implements the three particle kinds of the starfield:
// ambient points, glyph points and streaks.
package object

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/starfield/internal/draw"
)

// Pointer is the last known cursor position in logical coordinates.
type Pointer struct {
	X, Y float64
}

// OffscreenPointer is the pointer position before the first movement. It is
// far enough outside any surface that nothing is repelled.
var OffscreenPointer = Pointer{X: -1000, Y: -1000}

// UpdateContext provides all the information a particle needs during update.
type UpdateContext struct {
	Time    float64 // Frame timestamp in milliseconds, drives twinkling
	Elapsed float64 // Milliseconds since the scene first became visible
	Pointer Pointer
	Width   float64 // Surface bounds
	Height  float64
}

// DrawContext provides drawing resources for particles.
type DrawContext struct {
	Surface draw.Surface
	Color   colorful.Color // Star hue
}

// Object is a drawable and updatable scene entity.
type Object interface {
	// Update advances the particle by one frame.
	Update(ctx UpdateContext)

	// Draw renders the particle. Particles with nothing to show draw nothing.
	Draw(ctx DrawContext)
}

// twinkle maps sin(time*speed + offset) onto [0, 1].
func twinkle(time, speed, offset float64) float64 {
	return math.Sin(time*speed+offset)*0.5 + 0.5
}
