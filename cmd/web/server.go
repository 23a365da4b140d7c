package main

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/scene"
)

// idleAfter is how long the animation keeps running after the last frame
// request. With no viewer the scene clock stands still.
const idleAfter = 5 * time.Second

// maxFrameSize bounds either side of a requested frame size.
const maxFrameSize = 4096

// frameServer animates a scene into a raster and serves the latest frame.
// The scene is only touched by the animation goroutine; handlers queue
// commands for it.
type frameServer struct {
	scene    *scene.Scene
	commands chan func(*scene.Scene)

	mu     sync.RWMutex
	raster *draw.Raster
	png    []byte // Encoded latest frame, nil when stale
	frames int

	lastViewed atomic.Int64 // Unix nanoseconds of the last frame request

	now  func() time.Time
	page string
}

func newFrameServer(sc *scene.Scene, raster *draw.Raster, page string) *frameServer {
	return &frameServer{
		scene:    sc,
		commands: make(chan func(*scene.Scene), 64),
		raster:   raster,
		now:      time.Now,
		page:     page,
	}
}

// frame is the animator callback.
func (f *frameServer) frame(timestamp float64) bool {
drain:
	for {
		select {
		case cmd := <-f.commands:
			cmd(f.scene)
		default:
			break drain
		}
	}

	visible := f.now().Sub(time.Unix(0, f.lastViewed.Load())) < idleAfter

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scene.Frame(timestamp, visible, f.raster) {
		f.png = nil
		f.frames++
	}
	return true
}

// send queues a scene command, dropping it if the queue is full.
func (f *frameServer) send(cmd func(*scene.Scene)) bool {
	select {
	case f.commands <- cmd:
		return true
	default:
		return false
	}
}

// latestPNG returns the encoded latest frame and marks the scene as viewed.
func (f *frameServer) latestPNG() ([]byte, error) {
	f.lastViewed.Store(f.now().UnixNano())

	f.mu.RLock()
	data := f.png
	f.mu.RUnlock()
	if data != nil {
		return data, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.png == nil {
		var buf bytes.Buffer
		if err := f.raster.EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("encode frame: %w", err)
		}
		f.png = buf.Bytes()
	}
	return f.png, nil
}

func (f *frameServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", f.handleIndex)
	mux.HandleFunc("GET /frame.png", f.handleFrame)
	mux.HandleFunc("POST /restart", f.handleRestart)
	mux.HandleFunc("GET /pointer", f.handlePointer)
	mux.HandleFunc("POST /resize", f.handleResize)
	return mux
}

func (f *frameServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, f.page)
}

func (f *frameServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	data, err := f.latestPNG()
	if err != nil {
		log.Error("frame request failed", "err", err)
		http.Error(w, "frame unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (f *frameServer) handleRestart(w http.ResponseWriter, r *http.Request) {
	if !f.send((*scene.Scene).Restart) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *frameServer) handlePointer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be numbers", http.StatusBadRequest)
		return
	}
	if !f.send(func(s *scene.Scene) { s.SetPointer(x, y) }) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *frameServer) handleResize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, errW := strconv.Atoi(q.Get("w"))
	height, errH := strconv.Atoi(q.Get("h"))
	if errW != nil || errH != nil || width < 1 || height < 1 || width > maxFrameSize || height > maxFrameSize {
		http.Error(w, fmt.Sprintf("w and h must be integers in [1, %d]", maxFrameSize), http.StatusBadRequest)
		return
	}
	if !f.send(func(s *scene.Scene) { f.resize(s, width, height) }) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resize changes the frame size and rebuilds the scene for it. It runs on
// the animation goroutine like every other command.
func (f *frameServer) resize(s *scene.Scene, width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.raster.Resize(width, height); err != nil {
		log.Error("resize failed", "width", width, "height", height, "err", err)
		return
	}
	f.png = nil
	s.Resize(float64(width), float64(height))
	log.Debug("frame resized", "width", width, "height", height)
}
