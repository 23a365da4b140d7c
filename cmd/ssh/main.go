package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/glyph"
	"github.com/tomz197/starfield/internal/loop"
)

func main() {
	cfg := config.Load()
	log.SetPrefix("starfield-ssh")
	log.SetReportTimestamp(true)

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		log.Warn("failed to get working directory", "err", workErr)
	}
	log.Info("SSH config", "host", cfg.SSH.Host, "port", cfg.SSH.Port,
		"hostKeyPath", cfg.SSH.HostKeyPath, "workingDir", workingDir)

	// One sampler for every session; it caches the parsed font.
	glyphs := glyph.NewSampler(glyph.Options{
		Gap:            cfg.Scene.SampleGap,
		AlphaThreshold: cfg.Scene.AlphaThreshold,
		MaxFontSize:    cfg.Scene.MaxFontSize,
		WidthDivisor:   cfg.Scene.FontWidthDivisor,
	})

	// Cancelled on shutdown so every session restores its terminal and exits.
	sessionsCtx, cancelSessions := context.WithCancel(context.Background())
	defer cancelSessions()
	var sessions sync.WaitGroup

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		wish.WithMiddleware(
			starfieldMiddleware(sessionsCtx, &sessions, cfg, glyphs),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for pointer input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if cfg.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info("starting SSH server", "host", cfg.SSH.Host, "port", cfg.SSH.Port)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatal("server error", "err", err)
		}
	}()

	<-done
	log.Info("shutting down server")

	// End every session first so clients get their terminal back.
	cancelSessions()
	waitTimeout(&sessions, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Fatal("shutdown error", "err", err)
	}
}

// starfieldMiddleware runs one starfield session per SSH connection.
func starfieldMiddleware(ctx context.Context, wg *sync.WaitGroup, cfg config.Config, glyphs *glyph.Sampler) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}
			wg.Add(1)
			defer wg.Done()

			// Colours follow the client's TERM and environment, not the server's.
			env := draw.NewSessionEnviron(pty.Term, sess.Environ())
			renderer := lipgloss.NewRenderer(sess, env.OutputOptions()...)
			profile := renderer.ColorProfile()
			log.Info("new session", "user", sess.User(), "term", pty.Term,
				"width", pty.Window.Width, "height", pty.Window.Height, "profile", profile)

			// Create a terminal size tracker that updates on window changes
			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

			// Listen for window size changes in a goroutine
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			sessCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				select {
				case <-sess.Context().Done():
					cancel()
				case <-sessCtx.Done():
				}
			}()

			session := loop.NewSession(bufio.NewReader(sess), sess, loop.SessionOptions{
				TermSizeFunc: sizeTracker.getSize,
				Profile:      profile,
				Renderer:     renderer,
				Rand:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
				Glyphs:       glyphs,
				Scene:        cfg.Scene,
				Terminal:     cfg.Terminal,
			})
			if err := session.Run(sessCtx); err != nil {
				log.Error("session error", "user", sess.User(), "err", err)
			}

			log.Info("session ended", "user", sess.User())
			next(sess)
		}
	}
}

// waitTimeout waits for wg, giving up after d.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) {
	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(d):
		log.Warn("sessions still running after timeout", "timeout", d)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
