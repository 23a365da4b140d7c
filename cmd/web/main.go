package main

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"
	"github.com/tomz197/starfield/internal/config"
	"github.com/tomz197/starfield/internal/draw"
	"github.com/tomz197/starfield/internal/glyph"
	"github.com/tomz197/starfield/internal/loop"
	"github.com/tomz197/starfield/internal/scene"
)

//go:embed index.html
var htmlPage string

func main() {
	cfg := config.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "starfield-web",
	})
	log.SetDefault(logger)
	// Route the renderer's own diagnostics through the same logger.
	gg.SetLogger(slog.New(logger))

	raster, err := draw.NewRaster(cfg.Web.Width, cfg.Web.Height)
	if err != nil {
		log.Fatal("failed to create raster", "err", err)
	}
	defer raster.Close()

	glyphs := glyph.NewSampler(glyph.Options{
		Gap:            cfg.Scene.SampleGap,
		AlphaThreshold: cfg.Scene.AlphaThreshold,
		MaxFontSize:    cfg.Scene.MaxFontSize,
		WidthDivisor:   cfg.Scene.FontWidthDivisor,
	})
	sc := scene.New(cfg.Scene, glyphs, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	sc.Init(float64(cfg.Web.Width), float64(cfg.Web.Height))

	frames := newFrameServer(sc, raster, htmlPage)
	animator := loop.NewAnimator(loop.SystemClock{}, cfg.Web.FPS, frames.frame)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go animator.Run(ctx)

	addr := net.JoinHostPort(cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           frames.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down web server")
		animator.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "err", err)
		}
	}()

	log.Info("starting web server", "url", "http://"+addr, "width", cfg.Web.Width, "height", cfg.Web.Height, "fps", cfg.Web.FPS)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server error", "err", err)
	}
}
