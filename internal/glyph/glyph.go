// Package glyph converts rendered caption text into particle spawn points.
package glyph

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
)

// Point is a sampled pixel coordinate on a glyph stroke.
type Point struct {
	X, Y int
}

// Options tunes how text is rasterized and sampled.
type Options struct {
	Gap            int     // Sampling grid step in pixels, both axes
	AlphaThreshold uint8   // Pixels with alpha strictly above this are emitted
	MaxFontSize    float64 // Upper bound on the font size
	WidthDivisor   float64 // Font size is width / WidthDivisor, capped at MaxFontSize
}

// DefaultOptions returns the sampling parameters of the caption layer.
func DefaultOptions() Options {
	return Options{
		Gap:            6,
		AlphaThreshold: 128,
		MaxFontSize:    110,
		WidthDivisor:   7,
	}
}

// Sampler rasterizes text off-screen and samples it on a grid.
// The bold font is parsed once, on first use.
type Sampler struct {
	opts Options
	font []byte

	once   sync.Once
	source *text.FontSource
	err    error
}

// NewSampler creates a sampler that renders with the Go Bold typeface.
func NewSampler(opts Options) *Sampler {
	return NewSamplerWithFont(opts, gobold.TTF)
}

// NewSamplerWithFont creates a sampler for the given TrueType/OpenType data.
func NewSamplerWithFont(opts Options, font []byte) *Sampler {
	if opts.Gap <= 0 {
		opts.Gap = 1
	}
	if opts.WidthDivisor <= 0 {
		opts.WidthDivisor = DefaultOptions().WidthDivisor
	}
	return &Sampler{opts: opts, font: font}
}

// FontSize returns the caption font size for a surface width.
func (s *Sampler) FontSize(width int) float64 {
	size := float64(width) / s.opts.WidthDivisor
	if s.opts.MaxFontSize > 0 {
		size = math.Min(size, s.opts.MaxFontSize)
	}
	return size
}

// Sample renders caption bold, centred on a width x height buffer, and returns
// every grid coordinate whose alpha exceeds the threshold, in row-major order.
// It returns nil when the text cannot be rendered; the caption layer then
// stays empty.
func (s *Sampler) Sample(caption string, width, height int) []Point {
	if width <= 0 || height <= 0 || caption == "" {
		return nil
	}

	s.once.Do(func() {
		s.source, s.err = text.NewFontSource(s.font)
		if s.err != nil {
			log.Warn("caption font unavailable, glyph layer disabled", "err", s.err)
		}
	})
	if s.err != nil {
		return nil
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.SetFont(s.source.Face(s.FontSize(width)))
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(caption, float64(width)/2, float64(height)/2, 0.5, 0.5)
	if err := dc.FlushGPU(); err != nil {
		log.Warn("flushing caption raster failed", "err", err)
		return nil
	}

	return scan(dc.ResizeTarget().Data(), width, height, s.opts.Gap, s.opts.AlphaThreshold)
}

// scan walks an RGBA buffer on a gap-sized grid and collects the points whose
// alpha byte is above threshold.
func scan(pix []uint8, width, height, gap int, threshold uint8) []Point {
	var points []Point
	for y := 0; y < height; y += gap {
		for x := 0; x < width; x += gap {
			i := (y*width+x)*4 + 3
			if i < len(pix) && pix[i] > threshold {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}
