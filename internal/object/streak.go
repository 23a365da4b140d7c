package object

import (
	"math"
	"math/rand/v2"

	"github.com/tomz197/starfield/internal/draw"
)

// Streak tuning
const (
	streakFade   = 0.015 // Opacity lost per frame
	streakMargin = 100.0 // Distance past the surface edge before deactivation
)

// Streak is a shooting star. Inactive streaks are inert until re-activated
// by their pool.
type Streak struct {
	Active    bool
	X, Y      float64 // Head position
	Angle     float64 // Direction of travel, radians
	Speed     float64 // Units per frame
	Length    float64 // Trail length
	Opacity   float64
	Thickness float64
}

// Activate launches the streak from the upper-left region of a
// width x height surface, heading down and to the right.
func (s *Streak) Activate(rng *rand.Rand, width, height float64) {
	s.X = rng.Float64() * width * 0.8
	s.Y = rng.Float64() * height * 0.4
	s.Length = rng.Float64()*100 + 50
	s.Speed = rng.Float64()*15 + 10
	s.Angle = math.Pi/4 + (rng.Float64()-0.5)*0.3
	s.Opacity = 1
	s.Thickness = rng.Float64()*2 + 1
	s.Active = true
}

// Update moves the head along its angle and fades the streak, deactivating it
// once invisible or well past the surface bounds.
func (s *Streak) Update(ctx UpdateContext) {
	if !s.Active {
		return
	}
	s.X += math.Cos(s.Angle) * s.Speed
	s.Y += math.Sin(s.Angle) * s.Speed
	s.Opacity -= streakFade

	if s.Opacity <= 0 || s.X > ctx.Width+streakMargin || s.Y > ctx.Height+streakMargin {
		s.Active = false
	}
}

// Tail returns the end of the trail behind the head.
func (s *Streak) Tail() (x, y float64) {
	return s.X - math.Cos(s.Angle)*s.Length, s.Y - math.Sin(s.Angle)*s.Length
}

// Draw renders a fading trail and a bright head.
func (s *Streak) Draw(ctx DrawContext) {
	if !s.Active {
		return
	}
	tailX, tailY := s.Tail()
	stops := [...]draw.Stop{
		{Offset: 0, Alpha: s.Opacity},
		{Offset: 0.3, Alpha: s.Opacity * 0.6},
		{Offset: 1, Alpha: 0},
	}
	ctx.Surface.StrokeLine(s.X, s.Y, tailX, tailY, s.Thickness, ctx.Color, stops[:])
	ctx.Surface.FillCircle(s.X, s.Y, s.Thickness, ctx.Color, s.Opacity)
}

// StreakPool is a fixed set of streaks that are recycled rather than
// allocated.
type StreakPool struct {
	streaks []Streak
}

// NewStreakPool allocates size inactive streaks.
func NewStreakPool(size int) *StreakPool {
	return &StreakPool{streaks: make([]Streak, size)}
}

// Len returns the pool size.
func (p *StreakPool) Len() int {
	return len(p.streaks)
}

// At returns the i-th streak.
func (p *StreakPool) At(i int) *Streak {
	return &p.streaks[i]
}

// Inactive returns the first dormant streak, or nil if all are in flight.
func (p *StreakPool) Inactive() *Streak {
	for i := range p.streaks {
		if !p.streaks[i].Active {
			return &p.streaks[i]
		}
	}
	return nil
}

// ActiveCount returns how many streaks are in flight.
func (p *StreakPool) ActiveCount() int {
	n := 0
	for i := range p.streaks {
		if p.streaks[i].Active {
			n++
		}
	}
	return n
}

// Update advances every streak.
func (p *StreakPool) Update(ctx UpdateContext) {
	for i := range p.streaks {
		p.streaks[i].Update(ctx)
	}
}

// Draw renders every active streak.
func (p *StreakPool) Draw(ctx DrawContext) {
	for i := range p.streaks {
		p.streaks[i].Draw(ctx)
	}
}
