// Package scene owns the live particle collections and runs one frame of the
// starfield at a time.
package scene

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/glyph"
	"github.com/tomz197/starfield/internal/object"
)

// GlyphSource produces the caption spawn points for a surface size.
type GlyphSource interface {
	Sample(caption string, width, height int) []glyph.Point
}

// Counts reports the size of each particle collection.
type Counts struct {
	Ambient int
	Glyph   int
	Streaks int
}

// Scene holds every particle plus the timing state of one animation cycle.
// It is not safe for concurrent use: all calls belong to the animation loop.
type Scene struct {
	cfg     config.Scene
	glyphs  GlyphSource
	rng     *rand.Rand
	bg      colorful.Color
	starHue colorful.Color

	Width  float64
	Height float64

	Ambient []*object.AmbientPoint
	Glyph   []*object.GlyphPoint
	Streaks *object.StreakPool

	Pointer object.Pointer

	start      float64 // Timestamp of the first visible frame
	started    bool
	lastStreak float64 // Timestamp of the last streak launch
}

// New creates an empty scene. Call Init before the first frame.
// A nil glyphs source disables the caption layer.
func New(cfg config.Scene, glyphs GlyphSource, rng *rand.Rand) *Scene {
	return &Scene{
		cfg:     cfg,
		glyphs:  glyphs,
		rng:     rng,
		bg:      draw.Hex(cfg.Background, colorful.Color{}),
		starHue: draw.Hex(cfg.StarColor, colorful.Color{R: 1, G: 1, B: 1}),
		Streaks: object.NewStreakPool(0),
		Pointer: object.OffscreenPointer,
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Init discards every particle and rebuilds the scene for a width x height
// surface. The scene clock restarts on the next visible frame.
func (s *Scene) Init(width, height float64) {
	s.Width = width
	s.Height = height

	s.Ambient = make([]*object.AmbientPoint, 0, s.cfg.AmbientCount)
	for i := 0; i < s.cfg.AmbientCount; i++ {
		s.Ambient = append(s.Ambient, object.NewAmbientPoint(s.rng, s.Width, s.Height))
	}

	s.Glyph = s.buildGlyph()
	s.Streaks = object.NewStreakPool(s.cfg.StreakPoolSize)
	s.started = false

	log.Debug("scene initialized",
		"width", s.Width, "height", s.Height,
		"ambient", len(s.Ambient), "glyph", len(s.Glyph), "streaks", s.Streaks.Len())
}

// buildGlyph samples the caption and schedules each point across the reveal
// window in a loosely left-to-right order.
func (s *Scene) buildGlyph() []*object.GlyphPoint {
	if s.glyphs == nil {
		return nil
	}
	points := s.glyphs.Sample(s.cfg.Caption, int(s.Width), int(s.Height))
	if len(points) == 0 {
		return nil
	}

	// The key is drawn afresh on every comparison, so the order is heavily
	// randomized with only a slight left bias.
	sort.SliceStable(points, func(i, j int) bool {
		return s.revealKey(points[i]) < s.revealKey(points[j])
	})

	start := ms(s.cfg.RevealStart)
	duration := ms(s.cfg.RevealDuration)
	jitter := ms(s.cfg.RevealJitter)

	out := make([]*object.GlyphPoint, len(points))
	for i, p := range points {
		delay := start + float64(i)/float64(len(points))*duration
		delay += (s.rng.Float64() - 0.5) * 2 * jitter
		out[i] = object.NewGlyphPoint(s.rng, float64(p.X), float64(p.Y), delay)
	}
	return out
}

func (s *Scene) revealKey(p glyph.Point) float64 {
	return float64(p.X)*0.3 + s.rng.Float64()*s.Width*0.7
}

// Resize adopts a new surface size and rebuilds the scene.
func (s *Scene) Resize(width, height float64) {
	s.Init(width, height)
}

// Restart rebuilds the scene at its current size.
func (s *Scene) Restart() {
	s.Init(s.Width, s.Height)
}

// SetPointer records the latest cursor position.
func (s *Scene) SetPointer(x, y float64) {
	s.Pointer = object.Pointer{X: x, Y: y}
}

// Started reports whether the scene clock is running.
func (s *Scene) Started() bool {
	return s.started
}

// Elapsed returns milliseconds of visible scene time at timestamp, or 0 if
// the scene has not started.
func (s *Scene) Elapsed(timestamp float64) float64 {
	if !s.started {
		return 0
	}
	return timestamp - s.start
}

// Counts returns the number of particles of each kind.
func (s *Scene) Counts() Counts {
	return Counts{Ambient: len(s.Ambient), Glyph: len(s.Glyph), Streaks: s.Streaks.Len()}
}

// Frame advances and draws one frame at timestamp (milliseconds). Hidden
// frames do nothing at all, so the scene clock does not advance while
// hidden. It reports whether anything was drawn.
func (s *Scene) Frame(timestamp float64, visible bool, surface draw.Surface) bool {
	if !visible {
		return false
	}
	if !s.started {
		s.start = timestamp
		s.started = true
	}
	elapsed := timestamp - s.start

	surface.Fill(s.bg)

	gap := ms(s.cfg.StreakMinGap) + s.rng.Float64()*ms(s.cfg.StreakMaxGap-s.cfg.StreakMinGap)
	if timestamp-s.lastStreak > gap {
		if streak := s.Streaks.Inactive(); streak != nil {
			streak.Activate(s.rng, s.Width, s.Height)
			s.lastStreak = timestamp
		}
	}

	uctx := object.UpdateContext{
		Time:    timestamp,
		Elapsed: elapsed,
		Pointer: s.Pointer,
		Width:   s.Width,
		Height:  s.Height,
	}
	dctx := object.DrawContext{Surface: surface, Color: s.starHue}

	// Streaks beneath ambient dust beneath the caption.
	s.Streaks.Update(uctx)
	s.Streaks.Draw(dctx)
	for _, p := range s.Ambient {
		p.Update(uctx)
		p.Draw(dctx)
	}
	for _, p := range s.Glyph {
		p.Update(uctx)
		p.Draw(dctx)
	}
	return true
}
