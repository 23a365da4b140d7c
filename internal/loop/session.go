package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/input"
	"github.com/tomz197/starfield/internal/object"
	"github.com/tomz197/starfield/internal/scene"
)

// Key hints shown in the bottom-left corner.
const (
	hintVisible = "click/r restart · q quit"
	hintHidden  = "scroll ↓ %d · q quit"
)

// Session runs the starfield in one terminal: the local console or an SSH
// connection.
type Session struct {
	scene        *scene.Scene
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates output for chunked writes
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	animator     *Animator
	gate         ScrollGate
	cfg          config.Terminal
	background   colorful.Color

	hint     object.Text
	lastHint string

	err error
}

// SessionOptions configures a session. Zero values select defaults.
type SessionOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Profile      termenv.Profile
	Renderer     *lipgloss.Renderer // Renderer bound to the session output, for the hint style
	Clock        Clock
	Rand         *rand.Rand
	Glyphs       scene.GlyphSource
	Scene        config.Scene
	Terminal     config.Terminal
}

// NewSession creates a session reading input from r and drawing to w.
func NewSession(r *bufio.Reader, w io.Writer, opts SessionOptions) *Session {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.NewRenderer(w)
	}
	cfg := opts.Terminal
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = config.DefaultCellWidth
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = config.DefaultCellHeight
	}

	termWidth, termHeight, _ := draw.TerminalSizeRawWith(termSizeFunc)
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	logicalWidth := float64(renderWidth) * cfg.CellWidth
	logicalHeight := float64(renderHeight) * cfg.CellHeight

	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, logicalWidth, logicalHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	canvas.SetProfile(opts.Profile)

	sc := scene.New(opts.Scene, opts.Glyphs, rng)
	sc.Init(logicalWidth, logicalHeight)

	s := &Session{
		scene:        sc,
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		gate:         ScrollGate{Threshold: cfg.ScrollThreshold, Viewport: renderHeight},
		cfg:          cfg,
		background:   draw.Hex(opts.Scene.Background, colorful.Color{}),
		hint:         object.Text{Style: object.HintStyle(renderer)},
	}
	s.animator = NewAnimator(opts.Clock, cfg.FPS, s.frame)
	return s
}

// Scene returns the animated scene.
func (s *Session) Scene() *scene.Scene {
	return s.scene
}

// Run takes over the terminal and animates until the user quits, the input
// closes, or ctx is cancelled. The terminal is restored before returning.
func (s *Session) Run(ctx context.Context) error {
	draw.EnterAltScreen(s.writer)
	draw.HideCursor(s.writer)
	draw.EnableMouse(s.writer)
	defer func() {
		draw.DisableMouse(s.writer)
		draw.ShowCursor(s.writer)
		draw.ExitAltScreen(s.writer)
	}()
	draw.ClearScreen(s.writer)

	s.animator.Run(ctx)
	return s.err
}

// Stop ends Run from another goroutine.
func (s *Session) Stop() {
	s.animator.Stop()
}

// Step runs a single frame and reports whether the session is still running.
func (s *Session) Step() bool {
	return s.animator.Step()
}

// frame is the Input → Update → Draw cycle for one tick.
func (s *Session) frame(timestamp float64) bool {
	in := input.ReadInput(s.inputStream)
	if in.Quit {
		return false
	}

	s.updateScreen()
	s.apply(in)

	if !s.scene.Frame(timestamp, s.gate.Visible(), s.canvas) {
		s.canvas.Fill(s.background)
	}

	if err := s.drawFrame(); err != nil {
		s.err = fmt.Errorf("draw frame: %w", err)
		return false
	}
	return true
}

// apply routes one frame's input to the scene and the scroll gate.
func (s *Session) apply(in input.Input) {
	if in.Moved {
		x, y := s.canvas.TerminalToLogical(in.Col, in.Row)
		s.scene.SetPointer(x, y)
	}
	if in.Click || in.Restart {
		s.scene.Restart()
	}
	if in.Scroll != 0 {
		s.gate.Scroll(in.Scroll)
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes the scene is rebuilt for the new logical size and
// the terminal is cleared to remove residual pixels outside the new area.
func (s *Session) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(s.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	sizeChanged := renderWidth != s.canvas.TerminalWidth() || renderHeight != s.canvas.TerminalHeight()
	if sizeChanged || offsetCol != s.canvas.OffsetCol() || offsetRow != s.canvas.OffsetRow() {
		s.chunkWriter.WriteString("\033[H\033[2J")
		s.canvas.ForceRedraw()
	}

	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.chunkWriter.SetOffset(offsetCol, offsetRow)

	if sizeChanged {
		w := float64(renderWidth) * s.cfg.CellWidth
		h := float64(renderHeight) * s.cfg.CellHeight
		s.canvas.SetLogicalSize(w, h)
		s.scene.Resize(w, h)
		s.gate.Viewport = renderHeight
		s.gate.Scroll(0)
		log.Debug("terminal resized", "cols", renderWidth, "rows", renderHeight)
	}
}

// drawFrame renders the canvas, border and hint, then flushes.
func (s *Session) drawFrame() error {
	hint := hintVisible
	if !s.gate.Visible() {
		hint = fmt.Sprintf(hintHidden, s.gate.Remaining())
	}
	if hint != s.lastHint {
		// Cells under the old hint must be repainted.
		s.canvas.ForceRedraw()
		s.lastHint = hint
	}

	if err := s.canvas.Render(s.chunkWriter); err != nil {
		return err
	}
	if err := s.canvas.RenderBorder(s.chunkWriter); err != nil {
		return err
	}

	s.hint.Value = hint
	if s.hint.Width() <= s.canvas.TerminalWidth()-2 {
		s.chunkWriter.WriteAt(2, s.canvas.TerminalHeight(), s.hint.Render())
	}

	return s.chunkWriter.Flush()
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = termWidth
	renderHeight = termHeight
	if renderWidth > config.MaxTermWidth {
		renderWidth = config.MaxTermWidth
	}
	if renderHeight > config.MaxTermHeight {
		renderHeight = config.MaxTermHeight
	}
	if renderWidth < 1 {
		renderWidth = 1
	}
	if renderHeight < 1 {
		renderHeight = 1
	}
	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}
