package scene

import (
	"math/rand/v2"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/glyph"
	"github.com/tomz197/starfield/internal/object"
)

type fixedGlyphs struct {
	points []glyph.Point
	calls  int
}

func (f *fixedGlyphs) Sample(_ string, _, _ int) []glyph.Point {
	f.calls++
	return append([]glyph.Point(nil), f.points...)
}

func gridPoints(n int) []glyph.Point {
	pts := make([]glyph.Point, n)
	for i := range pts {
		pts[i] = glyph.Point{X: 100 + (i%40)*6, Y: 280 + (i/40)*6}
	}
	return pts
}

func newTestScene(glyphs GlyphSource) *Scene {
	s := New(config.DefaultScene(), glyphs, rand.New(rand.NewPCG(1, 2)))
	s.Init(800, 600)
	return s
}

func TestInitCounts(t *testing.T) {
	src := &fixedGlyphs{points: gridPoints(120)}
	s := newTestScene(src)

	got := s.Counts()
	want := Counts{Ambient: 200, Glyph: 120, Streaks: 5}
	if got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
	if src.calls != 1 {
		t.Errorf("sampler called %d times, want 1", src.calls)
	}
	if s.Streaks.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d after init, want 0", s.Streaks.ActiveCount())
	}
	for i, p := range s.Ambient {
		if p.X < 0 || p.X >= 800 || p.Y < 0 || p.Y >= 600 {
			t.Fatalf("ambient %d at (%v, %v) outside surface", i, p.X, p.Y)
		}
	}
}

func TestInitWithoutGlyphs(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  GlyphSource
	}{
		{"nil source", nil},
		{"empty sample", &fixedGlyphs{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestScene(tc.src)
			if n := s.Counts().Glyph; n != 0 {
				t.Errorf("Glyph count = %d, want 0", n)
			}
			rec := draw.NewRecorder(800, 600)
			if !s.Frame(0, true, rec) {
				t.Error("Frame() = false, want true")
			}
		})
	}
}

func TestRevealSchedule(t *testing.T) {
	s := newTestScene(&fixedGlyphs{points: gridPoints(200)})
	cfg := config.DefaultScene()

	lo := ms(cfg.RevealStart - cfg.RevealJitter)
	hi := ms(cfg.RevealStart + cfg.RevealDuration + cfg.RevealJitter)
	for i, p := range s.Glyph {
		if p.Delay < lo || p.Delay > hi {
			t.Errorf("glyph %d delay %v outside [%v, %v]", i, p.Delay, lo, hi)
		}
		if p.Born {
			t.Errorf("glyph %d born before the first frame", i)
		}
	}
}

func TestRevealScheduleWithoutJitter(t *testing.T) {
	cfg := config.DefaultScene()
	cfg.RevealJitter = 0
	s := New(cfg, &fixedGlyphs{points: gridPoints(50)}, rand.New(rand.NewPCG(3, 4)))
	s.Init(800, 600)

	for i := 1; i < len(s.Glyph); i++ {
		if s.Glyph[i].Delay <= s.Glyph[i-1].Delay {
			t.Fatalf("delay[%d] = %v not after delay[%d] = %v", i, s.Glyph[i].Delay, i-1, s.Glyph[i-1].Delay)
		}
	}
	if d := s.Glyph[0].Delay; d != 2000 {
		t.Errorf("first delay = %v, want 2000", d)
	}
}

func TestHiddenFrameIsInert(t *testing.T) {
	s := newTestScene(&fixedGlyphs{points: gridPoints(10)})
	rec := draw.NewRecorder(800, 600)

	before := s.Ambient[0].Body
	if s.Frame(50000, false, rec) {
		t.Error("hidden Frame() = true, want false")
	}
	if len(rec.Calls) != 0 {
		t.Errorf("hidden frame recorded %d calls, want 0", len(rec.Calls))
	}
	if s.Started() {
		t.Error("hidden frame latched the scene start")
	}
	if s.Ambient[0].Body != before {
		t.Error("hidden frame moved an ambient point")
	}
	if s.Elapsed(50000) != 0 {
		t.Errorf("Elapsed() = %v before start, want 0", s.Elapsed(50000))
	}
}

func TestHiddenFrameFreezesStartedScene(t *testing.T) {
	s := newTestScene(&fixedGlyphs{points: gridPoints(40)})
	rec := draw.NewRecorder(800, 600)

	s.Frame(1000, true, rec)
	s.Frame(3500, true, rec)
	s.Streaks.Inactive().Activate(s.rng, s.Width, s.Height)

	born := 0
	glyphs := make([]object.GlyphPoint, len(s.Glyph))
	for i, p := range s.Glyph {
		glyphs[i] = *p
		if p.Born {
			born++
		}
	}
	if born == len(s.Glyph) {
		t.Fatal("every glyph point born before the hidden frame")
	}
	streak := *s.Streaks.At(0)
	active := s.Streaks.ActiveCount()
	ambient := s.Ambient[0].Body

	// Far past the reveal window.
	rec.Reset()
	if s.Frame(600000, false, rec) {
		t.Error("hidden Frame() = true, want false")
	}
	if len(rec.Calls) != 0 {
		t.Errorf("hidden frame recorded %d calls, want 0", len(rec.Calls))
	}
	for i, p := range s.Glyph {
		if *p != glyphs[i] {
			t.Fatalf("glyph %d changed on a hidden frame: %+v, was %+v", i, *p, glyphs[i])
		}
	}
	if got := s.Streaks.ActiveCount(); got != active {
		t.Errorf("ActiveCount() = %d after hidden frame, want %d", got, active)
	}
	if *s.Streaks.At(0) != streak {
		t.Error("hidden frame moved a streak")
	}
	if s.Ambient[0].Body != ambient {
		t.Error("hidden frame moved an ambient point")
	}
}

func TestStartLatchesOnFirstVisibleFrame(t *testing.T) {
	s := newTestScene(&fixedGlyphs{points: gridPoints(10)})
	rec := draw.NewRecorder(800, 600)

	s.Frame(1000, false, rec)
	s.Frame(5000, true, rec)
	if !s.Started() {
		t.Fatal("scene not started after a visible frame")
	}
	if got := s.Elapsed(6500); got != 1500 {
		t.Errorf("Elapsed(6500) = %v, want 1500", got)
	}

	// Hidden frames in between leave the origin alone.
	s.Frame(7000, false, rec)
	s.Frame(8000, true, rec)
	if got := s.Elapsed(8000); got != 3000 {
		t.Errorf("Elapsed(8000) = %v, want 3000", got)
	}
}

func TestFrameClearsWithBackground(t *testing.T) {
	s := newTestScene(nil)
	rec := draw.NewRecorder(800, 600)
	s.Frame(0, true, rec)

	if len(rec.Calls) == 0 || rec.Calls[0].Op != draw.OpFill {
		t.Fatal("first call is not a fill")
	}
	want := draw.Hex("#000008", colorful.Color{})
	if got := rec.Calls[0].Color; got.Hex() != want.Hex() {
		t.Errorf("background = %s, want %s", got.Hex(), want.Hex())
	}
	if n := rec.Count(draw.OpFill); n != 1 {
		t.Errorf("fills = %d, want 1", n)
	}
}

func TestGlyphHiddenBeforeReveal(t *testing.T) {
	s := newTestScene(&fixedGlyphs{points: gridPoints(80)})
	rec := draw.NewRecorder(800, 600)

	s.Frame(0, true, rec)
	rec.Reset()
	s.Frame(1000, true, rec)
	// Two circles per ambient point, nothing from the caption yet.
	if n := rec.Count(draw.OpCircle); n != 2*200 {
		t.Errorf("circles at 1s = %d, want %d", n, 2*200)
	}
	for _, p := range s.Glyph {
		if p.Born {
			t.Fatal("glyph point born before the reveal window")
		}
	}
}

func TestGlyphFullyRevealed(t *testing.T) {
	s := newTestScene(&fixedGlyphs{points: gridPoints(80)})
	rec := draw.NewRecorder(800, 600)

	s.Frame(0, true, rec)
	s.Frame(6300, true, rec)
	s.Frame(7000, true, rec)
	for i, p := range s.Glyph {
		if !p.Born {
			t.Fatalf("glyph %d not born after the reveal window", i)
		}
	}
	rec.Reset()
	s.Frame(7100, true, rec)
	if n := rec.Count(draw.OpCircle); n < 2*200+3*80 {
		t.Errorf("circles = %d, want at least %d", n, 2*200+3*80)
	}
}

func TestStreakLaunch(t *testing.T) {
	s := newTestScene(nil)
	rec := draw.NewRecorder(800, 600)

	s.Frame(1000, true, rec)
	if n := s.Streaks.ActiveCount(); n != 0 {
		t.Fatalf("ActiveCount() = %d before the minimum gap, want 0", n)
	}

	rec.Reset()
	s.Frame(20000, true, rec)
	if n := s.Streaks.ActiveCount(); n != 1 {
		t.Fatalf("ActiveCount() = %d after the maximum gap, want 1", n)
	}
	// Streaks draw before anything else.
	if rec.Calls[1].Op != draw.OpLine {
		t.Errorf("call after fill = %v, want a streak line", rec.Calls[1].Op)
	}

	// Another launch needs another gap.
	s.Frame(20100, true, rec)
	if n := s.Streaks.ActiveCount(); n != 1 {
		t.Errorf("ActiveCount() = %d shortly after a launch, want 1", n)
	}
}

func TestStreakPoolExhaustion(t *testing.T) {
	cfg := config.DefaultScene()
	cfg.StreakMinGap = 0
	cfg.StreakMaxGap = 0
	s := New(cfg, nil, rand.New(rand.NewPCG(5, 6)))
	s.Init(100000, 100000)
	rec := draw.NewRecorder(100000, 100000)

	for ts := 1.0; ts <= 10; ts++ {
		s.Frame(ts, true, rec)
	}
	if n := s.Streaks.ActiveCount(); n != cfg.StreakPoolSize {
		t.Errorf("ActiveCount() = %d, want pool size %d", n, cfg.StreakPoolSize)
	}
	if s.Streaks.Len() != cfg.StreakPoolSize {
		t.Errorf("pool grew to %d", s.Streaks.Len())
	}
}

func TestRestartResetsStart(t *testing.T) {
	src := &fixedGlyphs{points: gridPoints(30)}
	s := newTestScene(src)
	rec := draw.NewRecorder(800, 600)

	s.Frame(1000, true, rec)
	s.Frame(9000, true, rec)
	s.Restart()

	if s.Started() {
		t.Error("scene still started after Restart")
	}
	if src.calls != 2 {
		t.Errorf("sampler called %d times, want 2", src.calls)
	}
	if c := s.Counts(); c.Ambient != 200 || c.Glyph != 30 {
		t.Errorf("Counts() after restart = %+v", c)
	}

	s.Frame(30000, true, rec)
	if got := s.Elapsed(30500); got != 500 {
		t.Errorf("Elapsed(30500) = %v, want 500", got)
	}
}

func TestResizeRebuilds(t *testing.T) {
	s := newTestScene(&fixedGlyphs{points: gridPoints(10)})
	s.SetPointer(10, 10)
	s.Resize(200, 100)

	if s.Width != 200 || s.Height != 100 {
		t.Errorf("size = %vx%v, want 200x100", s.Width, s.Height)
	}
	for i, p := range s.Ambient {
		if p.X >= 200 || p.Y >= 100 {
			t.Fatalf("ambient %d at (%v, %v) outside resized surface", i, p.X, p.Y)
		}
	}
	if s.Pointer.X != 10 || s.Pointer.Y != 10 {
		t.Errorf("pointer lost on resize: %+v", s.Pointer)
	}
}

func TestPointerRepelsAmbient(t *testing.T) {
	s := newTestScene(nil)
	p := s.Ambient[0]
	s.SetPointer(p.BaseX-3, p.BaseY)

	rec := draw.NewRecorder(800, 600)
	s.Frame(0, true, rec)
	if p.X <= p.BaseX {
		t.Errorf("X = %v, want pushed right of %v", p.X, p.BaseX)
	}
}
