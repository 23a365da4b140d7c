package draw

import colorful "github.com/lucasb-eyer/go-colorful"

// Op identifies a recorded drawing call.
type Op int

const (
	OpFill Op = iota
	OpCircle
	OpLine
)

// Call is one recorded drawing call.
type Call struct {
	Op     Op
	X, Y   float64 // Circle centre or line start
	X1, Y1 float64 // Line end
	R      float64 // Circle radius or line width
	Alpha  float64 // Circle opacity
	Color  colorful.Color
	Stops  []Stop
}

// Recorder is a Surface that records calls instead of drawing them.
type Recorder struct {
	Width, Height float64
	Calls         []Call
}

// Compile-time check that Recorder implements Surface.
var _ Surface = (*Recorder)(nil)

// NewRecorder creates a recorder reporting the given logical size.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{Width: width, Height: height}
}

// Size returns the configured dimensions.
func (r *Recorder) Size() (float64, float64) {
	return r.Width, r.Height
}

// Fill records a surface fill.
func (r *Recorder) Fill(c colorful.Color) {
	r.Calls = append(r.Calls, Call{Op: OpFill, Color: c, Alpha: 1})
}

// FillCircle records a disc.
func (r *Recorder) FillCircle(x, y, radius float64, c colorful.Color, alpha float64) {
	r.Calls = append(r.Calls, Call{Op: OpCircle, X: x, Y: y, R: radius, Color: c, Alpha: alpha})
}

// StrokeLine records a line.
func (r *Recorder) StrokeLine(x0, y0, x1, y1, width float64, c colorful.Color, stops []Stop) {
	r.Calls = append(r.Calls, Call{
		Op: OpLine, X: x0, Y: y0, X1: x1, Y1: y1, R: width, Color: c,
		Stops: append([]Stop(nil), stops...),
	})
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}
