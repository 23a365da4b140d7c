package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/glyph"
	"github.com/tomz197/starfield/internal/loop"
	"golang.org/x/term"
)

func main() {
	cfg := config.Load()

	// The terminal belongs to the animation, so logs go to a file or nowhere.
	logOut := io.Discard
	if cfg.Terminal.LogPath != "" {
		f, err := os.OpenFile(cfg.Terminal.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	log.SetDefault(log.NewWithOptions(logOut, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		Prefix:          "starfield",
	}))

	profile := termenv.EnvColorProfile()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	glyphs := glyph.NewSampler(glyph.Options{
		Gap:            cfg.Scene.SampleGap,
		AlphaThreshold: cfg.Scene.AlphaThreshold,
		MaxFontSize:    cfg.Scene.MaxFontSize,
		WidthDivisor:   cfg.Scene.FontWidthDivisor,
	})

	renderer := lipgloss.NewRenderer(os.Stdout)
	renderer.SetColorProfile(profile)

	log.Info("starting local session", "profile", profile)
	session := loop.NewSession(bufio.NewReader(os.Stdin), os.Stdout, loop.SessionOptions{
		Profile:  profile,
		Renderer: renderer,
		Glyphs:   glyphs,
		Scene:    cfg.Scene,
		Terminal: cfg.Terminal,
	})
	if err := session.Run(ctx); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "starfield error: %v\n", err)
		os.Exit(1)
	}
	log.Info("session ended")
}
