package object

import (
	"bytes"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
	"github.com/tomz197/starfield/internal/draw"
)

const eps = 1e-9

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func farCtx(time, elapsed float64) UpdateContext {
	return UpdateContext{Time: time, Elapsed: elapsed, Pointer: OffscreenPointer, Width: 800, Height: 600}
}

func drawCtx(s draw.Surface) DrawContext {
	return DrawContext{Surface: s, Color: colorful.Color{R: 1, G: 250.0 / 255, B: 220.0 / 255}}
}

func TestAmbientSpawnRanges(t *testing.T) {
	rng := testRand()
	for i := 0; i < 1000; i++ {
		p := NewAmbientPoint(rng, 800, 600)
		if p.BaseX < 0 || p.BaseX >= 800 || p.BaseY < 0 || p.BaseY >= 600 {
			t.Fatalf("base (%v, %v) outside surface", p.BaseX, p.BaseY)
		}
		if p.X != p.BaseX || p.Y != p.BaseY {
			t.Fatal("ambient point does not start at its anchor")
		}
		if p.BaseSize < 0.5 || p.BaseSize >= 2.5 {
			t.Fatalf("BaseSize = %v, want [0.5, 2.5)", p.BaseSize)
		}
		if p.Brightness < 0.4 || p.Brightness >= 1 {
			t.Fatalf("Brightness = %v, want [0.4, 1)", p.Brightness)
		}
		if p.TwinkleSpeed < 0.001 || p.TwinkleSpeed >= 0.005 {
			t.Fatalf("TwinkleSpeed = %v, want [0.001, 0.005)", p.TwinkleSpeed)
		}
	}
}

func TestAmbientTwinkleBounds(t *testing.T) {
	p := NewAmbientPoint(testRand(), 800, 600)

	for ts := 0.0; ts < 20000; ts += 7.3 {
		p.Update(farCtx(ts, ts))
		if p.Size < 0.5*p.BaseSize-eps || p.Size > p.BaseSize+eps {
			t.Fatalf("t=%v: Size %v outside [%v, %v]", ts, p.Size, 0.5*p.BaseSize, p.BaseSize)
		}
		if p.CurrentBrightness < 0.4*p.Brightness-eps || p.CurrentBrightness > p.Brightness+eps {
			t.Fatalf("t=%v: brightness %v outside [%v, %v]", ts, p.CurrentBrightness, 0.4*p.Brightness, p.Brightness)
		}
	}
}

func TestAmbientDraw(t *testing.T) {
	p := NewAmbientPoint(testRand(), 800, 600)
	p.Update(farCtx(100, 100))

	rec := draw.NewRecorder(800, 600)
	p.Draw(drawCtx(rec))

	if len(rec.Calls) != 2 {
		t.Fatalf("ambient draw made %d calls, want 2", len(rec.Calls))
	}
	glow, core := rec.Calls[0], rec.Calls[1]
	if math.Abs(glow.R-2.5*p.Size) > eps || math.Abs(glow.Alpha-0.15*p.CurrentBrightness) > eps {
		t.Errorf("glow = r %v alpha %v", glow.R, glow.Alpha)
	}
	if core.R != p.Size || core.Alpha != p.CurrentBrightness {
		t.Errorf("core = r %v alpha %v", core.R, core.Alpha)
	}
}

func TestAmbientRepelledByPointer(t *testing.T) {
	p := NewAmbientPoint(testRand(), 800, 600)
	ctx := farCtx(0, 0)
	ctx.Pointer = Pointer{X: p.X - 3, Y: p.Y}

	p.Update(ctx)

	if p.X <= p.BaseX {
		t.Errorf("X = %v, want pushed right of base %v", p.X, p.BaseX)
	}
}

func TestElasticOut(t *testing.T) {
	if got := ElasticOut(0); math.Abs(got) > eps {
		t.Errorf("ElasticOut(0) = %v, want 0", got)
	}
	if got := ElasticOut(1); math.Abs(got-1) > 0.001 {
		t.Errorf("ElasticOut(1) = %v, want ~1", got)
	}
	overshoot := false
	for p := 0.0; p <= 1; p += 0.01 {
		if ElasticOut(p) > 1 {
			overshoot = true
		}
	}
	if !overshoot {
		t.Error("ElasticOut never overshoots 1")
	}
}

func TestGlyphNotBornBeforeDelay(t *testing.T) {
	p := NewGlyphPoint(testRand(), 100, 100, 2500)
	rec := draw.NewRecorder(800, 600)

	for elapsed := 0.0; elapsed < 2500; elapsed += 16 {
		p.Update(farCtx(elapsed, elapsed))
		p.Draw(drawCtx(rec))
		if p.Born {
			t.Fatalf("born at elapsed %v, before delay 2500", elapsed)
		}
	}
	if len(rec.Calls) != 0 {
		t.Errorf("unborn point drew %d calls", len(rec.Calls))
	}

	p.Update(farCtx(2500, 2500))
	if !p.Born || p.BirthTime != 2500 {
		t.Errorf("Born = %v BirthTime = %v, want born at 2500", p.Born, p.BirthTime)
	}
}

func TestGlyphPopIn(t *testing.T) {
	p := NewGlyphPoint(testRand(), 100, 100, 1000)

	p.Update(farCtx(1000, 1000))
	if p.Size > 1e-6 || p.Brightness > 1e-6 {
		t.Errorf("at age 0: Size = %v Brightness = %v, want 0", p.Size, p.Brightness)
	}

	for age := 10.0; age < p.PopDuration; age += 10 {
		p.Update(farCtx(1000+age, 1000+age))
		if p.Size > p.TargetSize+eps {
			t.Fatalf("age %v: Size %v exceeds target %v", age, p.Size, p.TargetSize)
		}
		if p.Brightness > p.TargetBrightness+eps {
			t.Fatalf("age %v: Brightness %v exceeds target %v", age, p.Brightness, p.TargetBrightness)
		}
	}

	// Brightness ramps 1.5x faster than the pop and is complete by 2/3.
	p.Update(farCtx(1000+p.PopDuration*0.7, 1000+p.PopDuration*0.7))
	if math.Abs(p.Brightness-p.TargetBrightness) > eps {
		t.Errorf("brightness at 70%% of pop = %v, want target %v", p.Brightness, p.TargetBrightness)
	}

	end := 1000 + p.PopDuration
	p.Update(farCtx(end, end))
	if p.Size != p.TargetSize || p.Brightness != p.TargetBrightness {
		t.Errorf("after pop: Size %v Brightness %v, want exactly %v / %v",
			p.Size, p.Brightness, p.TargetSize, p.TargetBrightness)
	}
	if p.DisplaySize < 0.8*p.TargetSize-eps || p.DisplaySize > p.TargetSize+eps {
		t.Errorf("DisplaySize %v outside twinkle band", p.DisplaySize)
	}
	if p.CurrentBrightness < 0.7*p.TargetBrightness-eps || p.CurrentBrightness > p.TargetBrightness+eps {
		t.Errorf("CurrentBrightness %v outside twinkle band", p.CurrentBrightness)
	}
}

func TestGlyphDraw(t *testing.T) {
	p := NewGlyphPoint(testRand(), 100, 100, 0)
	p.Update(farCtx(0, 0))
	p.Update(farCtx(1000, 1000))

	rec := draw.NewRecorder(800, 600)
	p.Draw(drawCtx(rec))

	if len(rec.Calls) != 3 {
		t.Fatalf("glyph draw made %d calls, want 3", len(rec.Calls))
	}
	wantR := []float64{3, 1.8, 1}
	wantA := []float64{0.1, 0.25, 1}
	for i, c := range rec.Calls {
		if math.Abs(c.R-wantR[i]*p.DisplaySize) > eps || math.Abs(c.Alpha-wantA[i]*p.CurrentBrightness) > eps {
			t.Errorf("circle %d = r %v alpha %v", i, c.R, c.Alpha)
		}
	}
}

func TestGlyphSpringsHome(t *testing.T) {
	p := NewGlyphPoint(testRand(), 200, 200, 0)
	p.X, p.Y = 215, 190

	for i := 0; i < 500; i++ {
		p.Update(farCtx(float64(i)*16, float64(i)*16))
	}
	if d := p.Displacement(); d >= 0.5 {
		t.Errorf("displacement after 500 frames = %v, want < 0.5", d)
	}
}

func TestStreakLifecycle(t *testing.T) {
	var s Streak
	rec := draw.NewRecorder(800, 600)
	ctx := UpdateContext{Width: 10000, Height: 10000}

	s.Update(ctx)
	s.Draw(drawCtx(rec))
	if s.Active || len(rec.Calls) != 0 {
		t.Fatal("inactive streak changed or drew")
	}

	s.Activate(testRand(), 800, 600)
	if !s.Active || s.Opacity != 1 {
		t.Fatalf("after Activate: Active %v Opacity %v", s.Active, s.Opacity)
	}
	if s.X < 0 || s.X >= 640 || s.Y < 0 || s.Y >= 240 {
		t.Errorf("start (%v, %v) outside upper-left region", s.X, s.Y)
	}
	if s.Angle < math.Pi/4-0.15 || s.Angle > math.Pi/4+0.15 {
		t.Errorf("angle %v not near 45°", s.Angle)
	}

	prev := s.Opacity
	frames := 0
	for s.Active {
		s.Update(ctx)
		frames++
		if s.Opacity >= prev {
			t.Fatalf("opacity did not decrease: %v -> %v", prev, s.Opacity)
		}
		if math.Abs(prev-s.Opacity-streakFade) > eps {
			t.Fatalf("opacity dropped by %v, want %v", prev-s.Opacity, streakFade)
		}
		prev = s.Opacity
		if frames > 100 {
			t.Fatal("streak never deactivated")
		}
	}
	if s.Opacity > 0 {
		t.Errorf("deactivated with opacity %v in an unbounded surface", s.Opacity)
	}

	rec.Reset()
	s.Draw(drawCtx(rec))
	if len(rec.Calls) != 0 {
		t.Error("deactivated streak drew")
	}
}

func TestStreakLeavesBounds(t *testing.T) {
	s := Streak{Active: true, X: 890, Y: 10, Angle: 0, Speed: 20, Opacity: 1, Thickness: 1}
	s.Update(UpdateContext{Width: 800, Height: 600})
	if s.Active {
		t.Errorf("streak at x=%v past width+margin still active", s.X)
	}
}

func TestStreakDraw(t *testing.T) {
	var s Streak
	s.Activate(testRand(), 800, 600)

	rec := draw.NewRecorder(800, 600)
	s.Draw(drawCtx(rec))

	if rec.Count(draw.OpLine) != 1 || rec.Count(draw.OpCircle) != 1 {
		t.Fatalf("streak drew %+v", rec.Calls)
	}
	line := rec.Calls[0]
	tx, ty := s.Tail()
	if line.X != s.X || line.Y != s.Y || line.X1 != tx || line.Y1 != ty {
		t.Errorf("line from (%v,%v) to (%v,%v), want head to tail", line.X, line.Y, line.X1, line.Y1)
	}
	if math.Abs(math.Hypot(tx-s.X, ty-s.Y)-s.Length) > 1e-6 {
		t.Error("tail is not Length behind the head")
	}
	want := []draw.Stop{
		{Offset: 0, Alpha: 1},
		{Offset: 0.3, Alpha: 0.6},
		{Offset: 1, Alpha: 0},
	}
	for i, st := range line.Stops {
		if math.Abs(st.Offset-want[i].Offset) > eps || math.Abs(st.Alpha-want[i].Alpha) > eps {
			t.Errorf("stop %d = %+v, want %+v", i, st, want[i])
		}
	}
}

func TestStreakPool(t *testing.T) {
	pool := NewStreakPool(5)
	rng := testRand()

	if pool.Len() != 5 || pool.ActiveCount() != 0 {
		t.Fatalf("new pool: len %d active %d", pool.Len(), pool.ActiveCount())
	}

	seen := map[*Streak]bool{}
	for i := 0; i < 5; i++ {
		s := pool.Inactive()
		if s == nil {
			t.Fatalf("no inactive streak after %d activations", i)
		}
		if seen[s] {
			t.Fatal("Inactive returned an already active streak")
		}
		seen[s] = true
		s.Activate(rng, 800, 600)
	}
	if pool.Inactive() != nil {
		t.Error("full pool returned an inactive streak")
	}

	for i := 0; i < 200; i++ {
		pool.Update(UpdateContext{Width: 800, Height: 600})
	}
	if pool.ActiveCount() != 0 {
		t.Errorf("streaks still active after 200 frames: %d", pool.ActiveCount())
	}
	if s := pool.Inactive(); s != pool.At(0) {
		t.Error("recycled streak is not a pool member")
	}
}

func TestTextRender(t *testing.T) {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(termenv.TrueColor)
	txt := Text{Value: "q quit", Style: HintStyle(r)}

	got := txt.Render()
	if !strings.Contains(got, "q quit") || !strings.Contains(got, "\x1b[") {
		t.Errorf("Render() = %q, want styled text", got)
	}
	if txt.Width() != len("q quit") {
		t.Errorf("Width() = %d, want %d", txt.Width(), len("q quit"))
	}

	if got := (Text{Style: HintStyle(r)}).Render(); got != "" {
		t.Errorf("empty Render() = %q", got)
	}
}
