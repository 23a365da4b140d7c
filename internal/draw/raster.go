package draw

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Raster is a Surface backed by a gg software context. One logical unit is
// one image pixel.
type Raster struct {
	dc *gg.Context
}

// Compile-time check that Raster implements Surface.
var _ Surface = (*Raster)(nil)

// NewRaster creates an image surface of the given pixel size.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	return &Raster{dc: gg.NewContext(width, height)}, nil
}

// Resize changes the image size. Contents are discarded.
func (r *Raster) Resize(width, height int) error {
	return r.dc.Resize(width, height)
}

// Size returns the image dimensions.
func (r *Raster) Size() (float64, float64) {
	return float64(r.dc.Width()), float64(r.dc.Height())
}

// Fill paints the whole image with c.
func (r *Raster) Fill(c colorful.Color) {
	r.dc.ClearWithColor(toRGBA(c, 1))
}

// FillCircle composites a filled disc.
func (r *Raster) FillCircle(x, y, radius float64, c colorful.Color, alpha float64) {
	if radius <= 0 || alpha <= 0 {
		return
	}
	r.dc.DrawCircle(x, y, radius)
	r.dc.SetFillBrush(gg.Solid(toRGBA(c, alpha)))
	_ = r.dc.Fill()
}

// StrokeLine strokes a round-capped line with a linear opacity gradient.
func (r *Raster) StrokeLine(x0, y0, x1, y1, width float64, c colorful.Color, stops []Stop) {
	if width <= 0 || len(stops) == 0 {
		return
	}
	gradient := gg.NewLinearGradientBrush(x0, y0, x1, y1)
	for _, s := range stops {
		gradient.AddColorStop(s.Offset, toRGBA(c, s.Alpha))
	}
	r.dc.SetStrokeBrush(gradient)
	r.dc.SetLineWidth(width)
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.MoveTo(x0, y0)
	r.dc.LineTo(x1, y1)
	_ = r.dc.Stroke()
}

// Image returns a copy of the current pixels.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// EncodePNG writes the current image as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// Close releases the underlying context.
func (r *Raster) Close() error {
	return r.dc.Close()
}

func toRGBA(c colorful.Color, alpha float64) gg.RGBA {
	c = c.Clamped()
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: clamp01(alpha)}
}
