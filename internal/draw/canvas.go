package draw

import (
	"io"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Canvas is a colour drawing buffer with 2x vertical resolution using
// half-block characters. It scales from logical coordinates to terminal
// sub-pixels and composites with per-pixel opacity.
type Canvas struct {
	termWidth      int              // Actual terminal columns
	termHeight     int              // Actual terminal rows
	subPixelHeight int              // termHeight * 2
	pixels         []colorful.Color // Flat slice: [y * termWidth + x]

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	profile termenv.Profile

	// Last rendered cell contents, used to skip unchanged cells.
	rendered []uint64

	// Reusable buffers to reduce allocations
	renderBuf strings.Builder
	lineBuf   map[int]float64 // Max opacity per pixel for the line being stroked
	seqCache  map[uint32]string
}

// Compile-time check that Canvas implements Surface.
var _ Surface = (*Canvas)(nil)

// unrendered marks a cell that must be redrawn on the next Render.
const unrendered = ^uint64(0)

// NewCanvas creates a canvas for the given terminal dimensions.
// No scaling is applied (1:1 mapping).
func NewCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by the scene.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		profile:       termenv.TrueColor,
		lineBuf:       make(map[int]float64),
		seqCache:      make(map[uint32]string),
	}
	c.Resize(termWidth, termHeight)
	return c
}

// SetProfile selects the colour profile used by Render.
func (c *Canvas) SetProfile(p termenv.Profile) {
	if p != c.profile {
		c.profile = p
		clear(c.seqCache)
		c.ForceRedraw()
	}
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 1 {
		termWidth = 1
	}
	if termHeight < 1 {
		termHeight = 1
	}
	subPixelHeight := termHeight * 2

	// Reallocate if size changed
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]colorful.Color, subPixelHeight*termWidth)
		c.rendered = make([]uint64, termHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
		c.ForceRedraw()
	}

	c.updateScale()
}

// SetLogicalSize changes the logical coordinate space mapped onto the terminal.
func (c *Canvas) SetLogicalSize(width, height float64) {
	c.logicalWidth = width
	c.logicalHeight = height
	c.updateScale()
}

func (c *Canvas) updateScale() {
	if c.logicalWidth > 0 {
		c.scaleX = float64(c.termWidth) / c.logicalWidth
	}
	if c.logicalHeight > 0 {
		c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
	}
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.ForceRedraw()
	}
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	for i := range c.rendered {
		c.rendered[i] = unrendered
	}
}

// Size returns the logical dimensions.
func (c *Canvas) Size() (float64, float64) {
	return c.logicalWidth, c.logicalHeight
}

// Fill sets every pixel to col.
func (c *Canvas) Fill(col colorful.Color) {
	for i := range c.pixels {
		c.pixels[i] = col
	}
}

// Clear resets all pixels to black.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// At returns the colour of a sub-pixel in terminal pixel coordinates.
func (c *Canvas) At(x, y int) colorful.Color {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return colorful.Color{}
	}
	return c.pixels[y*c.termWidth+x]
}

// blend composites col over a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) blend(x, y int, col colorful.Color, alpha float64) {
	if alpha <= 0 || x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return
	}
	i := y*c.termWidth + x
	c.pixels[i] = c.pixels[i].BlendRgb(col, clamp01(alpha))
}

// FillCircle composites a disc given in logical coordinates.
// Discs smaller than a sub-pixel contribute to the pixel under their centre
// in proportion to their area.
func (c *Canvas) FillCircle(x, y, r float64, col colorful.Color, alpha float64) {
	if r <= 0 || alpha <= 0 {
		return
	}
	cx, cy := x*c.scaleX, y*c.scaleY
	rx, ry := r*c.scaleX, r*c.scaleY

	if rx < 1 && ry < 1 {
		coverage := math.Sqrt(math.Min(1, math.Pi*rx*ry))
		c.blend(int(math.Floor(cx)), int(math.Floor(cy)), col, alpha*coverage)
		return
	}

	minX := int(math.Floor(cx - rx))
	maxX := int(math.Ceil(cx + rx))
	minY := int(math.Floor(cy - ry))
	maxY := int(math.Ceil(cy + ry))
	edge := math.Min(rx, ry)

	for py := minY; py <= maxY; py++ {
		ny := (float64(py) + 0.5 - cy) / ry
		for px := minX; px <= maxX; px++ {
			nx := (float64(px) + 0.5 - cx) / rx
			d := math.Sqrt(nx*nx + ny*ny)
			// Soft edge about one pixel wide
			coverage := clamp01((1-d)*edge + 0.5)
			if coverage > 0 {
				c.blend(px, py, col, alpha*coverage)
			}
		}
	}
}

// StrokeLine strokes a line given in logical coordinates. Each pixel is
// composited once, with the highest opacity the line reaches over it.
func (c *Canvas) StrokeLine(x0, y0, x1, y1, width float64, col colorful.Color, stops []Stop) {
	px0, py0 := x0*c.scaleX, y0*c.scaleY
	px1, py1 := x1*c.scaleX, y1*c.scaleY
	length := math.Hypot(px1-px0, py1-py0)
	halfWidth := width * c.scaleX / 2
	thin := halfWidth < 0.5
	thinCoverage := clamp01(width * c.scaleX)

	clear(c.lineBuf)
	steps := int(math.Ceil(length*2)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		a := AlphaAt(stops, t)
		if a <= 0 {
			continue
		}
		sx := px0 + (px1-px0)*t
		sy := py0 + (py1-py0)*t

		if thin {
			c.markLinePixel(int(math.Floor(sx)), int(math.Floor(sy)), a*math.Max(thinCoverage, 0.35))
			continue
		}
		r := int(math.Ceil(halfWidth))
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if float64(dx*dx+dy*dy) <= halfWidth*halfWidth+0.25 {
					c.markLinePixel(int(math.Floor(sx))+dx, int(math.Floor(sy))+dy, a)
				}
			}
		}
	}

	for i, a := range c.lineBuf {
		c.blend(i%c.termWidth, i/c.termWidth, col, a)
	}
}

func (c *Canvas) markLinePixel(x, y int, alpha float64) {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return
	}
	i := y*c.termWidth + x
	if alpha > c.lineBuf[i] {
		c.lineBuf[i] = alpha
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1400 bytes stays under a typical 1500-byte MTU for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render outputs the canvas to the writer using upper half-block characters:
// the foreground colour paints the top sub-pixel, the background the bottom.
// Cells identical to the previous Render are skipped.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()

	lastRow, lastCol := -1, -1
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := rgb24(c.pixels[topOffset+col])
			bottom := rgb24(c.pixels[bottomOffset+col])
			key := uint64(top)<<24 | uint64(bottom)

			cell := row*c.termWidth + col
			if c.rendered[cell] == key {
				continue
			}
			c.rendered[cell] = key

			if row != lastRow || col != lastCol+1 {
				c.moveCursor(col+1+c.offsetCol, row+1+c.offsetRow)
			}
			lastRow, lastCol = row, col
			c.writeCell(top, bottom)
		}
	}
	if c.renderBuf.Len() == 0 {
		return nil
	}
	c.renderBuf.WriteString("\033[0m")

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

func (c *Canvas) moveCursor(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.WriteString(strconv.Itoa(row))
	c.renderBuf.WriteByte(';')
	c.renderBuf.WriteString(strconv.Itoa(col))
	c.renderBuf.WriteByte('H')
}

func (c *Canvas) writeCell(top, bottom uint32) {
	if c.profile == termenv.Ascii {
		c.renderBuf.WriteRune(ShadeLevel((lightness(top) + lightness(bottom)) / 2))
		return
	}
	c.renderBuf.WriteString("\033[")
	c.renderBuf.WriteString(c.sequence(top, false))
	c.renderBuf.WriteByte(';')
	c.renderBuf.WriteString(c.sequence(bottom, true))
	c.renderBuf.WriteByte('m')
	c.renderBuf.WriteRune(BlockUpperHalf)
}

// sequence returns the SGR parameters for an RGB colour under the active profile.
func (c *Canvas) sequence(rgb uint32, bg bool) string {
	key := rgb
	if bg {
		key |= 1 << 31
	}
	if seq, ok := c.seqCache[key]; ok {
		return seq
	}
	hex := "#" + strconv.FormatUint(uint64(rgb)|1<<24, 16)[1:]
	seq := c.profile.Color(hex).Sequence(bg)
	if seq == "" {
		// Profiles without colour still need a valid SGR parameter.
		seq = "0"
	}
	c.seqCache[key] = seq
	return seq
}

func rgb24(col colorful.Color) uint32 {
	r, g, b := col.Clamped().RGB255()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func lightness(rgb uint32) float64 {
	r := float64(rgb>>16&0xff) / 255
	g := float64(rgb>>8&0xff) / 255
	b := float64(rgb&0xff) / 255
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
// Draws horizontal borders when there is vertical offset, vertical borders
// when there is horizontal offset, and corners when both are present.
func (c *Canvas) RenderBorder(w io.Writer) error {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars
	if !hasH && !hasV {
		return nil
	}

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	buf.Grow((c.termWidth+2)*2 + c.termHeight*2*12) // Estimate buffer size

	at := func(row, col int) {
		buf.WriteString("\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H")
	}

	if hasV {
		horizontal := strings.Repeat("─", c.termWidth)
		if hasH {
			at(top, left)
			buf.WriteString("┌" + horizontal + "┐")
			at(bottom, left)
			buf.WriteString("└" + horizontal + "┘")
		} else {
			at(top, c.offsetCol+1)
			buf.WriteString(horizontal)
			at(bottom, c.offsetCol+1)
			buf.WriteString(horizontal)
		}
	}

	if hasH {
		startRow := top + 1
		endRow := bottom
		if !hasV {
			// No horizontal borders, side bars span full canvas height
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			at(row, left)
			buf.WriteString("│")
			at(row, right)
			buf.WriteString("│")
		}
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to 1-based terminal position (col, row).
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Floor(x * c.scaleX))
	py := int(math.Floor(y * c.scaleY))
	return px + 1 + c.offsetCol, py/2 + 1 + c.offsetRow
}

// TerminalToLogical converts a 1-based terminal cell (col, row), such as a
// mouse report, to the logical coordinates of the cell centre.
func (c *Canvas) TerminalToLogical(col, row int) (x, y float64) {
	px := float64(col-1-c.offsetCol) + 0.5
	py := float64((row-1-c.offsetRow)*2) + 1
	if c.scaleX > 0 {
		x = px / c.scaleX
	}
	if c.scaleY > 0 {
		y = py / c.scaleY
	}
	return x, y
}
