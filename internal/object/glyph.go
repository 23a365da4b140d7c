package object

import (
	"math"
	"math/rand/v2"

	"github.com/tomz197/starfield/internal/physics"
)

// GlyphPoint is a star anchored on a caption pixel. It stays hidden until its
// scheduled delay, then pops in with an elastic overshoot.
type GlyphPoint struct {
	physics.Body

	Delay     float64 // Scene time of birth, in milliseconds
	BirthTime float64 // Scene time at which the point was actually born
	Born      bool

	TargetSize       float64
	TargetBrightness float64
	PopDuration      float64 // Milliseconds
	TwinkleSpeed     float64
	TwinkleOffset    float64

	Size              float64 // Pop-in size before twinkling
	Brightness        float64 // Pop-in brightness before twinkling
	DisplaySize       float64
	CurrentBrightness float64
}

// NewGlyphPoint creates a point anchored at (x, y) that is born delay
// milliseconds after the scene starts.
func NewGlyphPoint(rng *rand.Rand, x, y, delay float64) *GlyphPoint {
	p := &GlyphPoint{
		Delay:            delay,
		TargetSize:       rng.Float64()*1.5 + 1.5,
		TwinkleSpeed:     rng.Float64()*0.004 + 0.002,
		TwinkleOffset:    rng.Float64() * math.Pi * 2,
		TargetBrightness: rng.Float64()*0.3 + 0.7,
		PopDuration:      300 + rng.Float64()*200,
	}
	p.Place(x, y)
	return p
}

// ElasticOut eases progress in [0, 1] with a damped overshoot:
// 1 - 2^(-10p) * cos(2πp).
func ElasticOut(progress float64) float64 {
	return 1 - math.Pow(2, -10*progress)*math.Cos(progress*math.Pi*2)
}

// Update latches the birth, runs the pop-in, twinkles, and applies pointer
// repulsion. Unborn points are left untouched.
func (p *GlyphPoint) Update(ctx UpdateContext) {
	if !p.Born && ctx.Elapsed >= p.Delay {
		p.Born = true
		p.BirthTime = ctx.Elapsed
	}
	if !p.Born {
		return
	}

	age := ctx.Elapsed - p.BirthTime
	if age < p.PopDuration {
		progress := age / p.PopDuration
		p.Size = p.TargetSize * math.Min(ElasticOut(progress), 1)
		// Brightness settles before the size does.
		p.Brightness = p.TargetBrightness * math.Min(progress*1.5, 1)
	} else {
		p.Size = p.TargetSize
		p.Brightness = p.TargetBrightness
	}

	t := twinkle(ctx.Time, p.TwinkleSpeed, p.TwinkleOffset)
	p.CurrentBrightness = p.Brightness * (0.7 + 0.3*t)
	p.DisplaySize = p.Size * (0.8 + 0.2*t)

	physics.Repel(&p.Body, ctx.Pointer.X, ctx.Pointer.Y, physics.GlyphRepel)
}

// Draw renders two glow rings and a core once the point is born.
func (p *GlyphPoint) Draw(ctx DrawContext) {
	if !p.Born || p.Size <= 0 {
		return
	}
	ctx.Surface.FillCircle(p.X, p.Y, p.DisplaySize*3, ctx.Color, p.CurrentBrightness*0.1)
	ctx.Surface.FillCircle(p.X, p.Y, p.DisplaySize*1.8, ctx.Color, p.CurrentBrightness*0.25)
	ctx.Surface.FillCircle(p.X, p.Y, p.DisplaySize, ctx.Color, p.CurrentBrightness)
}
