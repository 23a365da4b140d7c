package object

import (
	"math"
	"math/rand/v2"

	"github.com/tomz197/starfield/internal/physics"
)

// AmbientPoint is a background star that twinkles in place and drifts away
// from the pointer.
type AmbientPoint struct {
	physics.Body

	BaseSize          float64
	Size              float64
	TwinkleSpeed      float64 // Radians per millisecond
	TwinkleOffset     float64
	Brightness        float64 // Peak brightness
	CurrentBrightness float64
}

// NewAmbientPoint places a star uniformly at random on a width x height surface.
func NewAmbientPoint(rng *rand.Rand, width, height float64) *AmbientPoint {
	p := &AmbientPoint{
		BaseSize:      rng.Float64()*2 + 0.5,
		TwinkleSpeed:  rng.Float64()*0.004 + 0.001,
		TwinkleOffset: rng.Float64() * math.Pi * 2,
		Brightness:    rng.Float64()*0.6 + 0.4,
	}
	p.Place(rng.Float64()*width, rng.Float64()*height)
	p.Size = p.BaseSize
	p.CurrentBrightness = p.Brightness
	return p
}

// Update twinkles the star and applies pointer repulsion.
func (p *AmbientPoint) Update(ctx UpdateContext) {
	t := twinkle(ctx.Time, p.TwinkleSpeed, p.TwinkleOffset)
	p.Size = p.BaseSize * (0.5 + 0.5*t)
	p.CurrentBrightness = p.Brightness * (0.4 + 0.6*t)

	physics.Repel(&p.Body, ctx.Pointer.X, ctx.Pointer.Y, physics.AmbientRepel)
}

// Draw renders a soft glow and a bright core.
func (p *AmbientPoint) Draw(ctx DrawContext) {
	ctx.Surface.FillCircle(p.X, p.Y, p.Size*2.5, ctx.Color, p.CurrentBrightness*0.15)
	ctx.Surface.FillCircle(p.X, p.Y, p.Size, ctx.Color, p.CurrentBrightness)
}
