package loop

import "math"

// ScrollGate tracks a virtual scroll offset and hides the scene until the
// offset reaches Threshold viewport heights.
type ScrollGate struct {
	Threshold float64 // In viewport heights; 0 shows the scene immediately
	Viewport  int     // Viewport height in lines
	Offset    int     // Current scroll offset in lines
}

// Limit returns the offset at which the scene becomes visible.
func (g *ScrollGate) Limit() int {
	return int(math.Ceil(g.Threshold * float64(g.Viewport)))
}

// Scroll moves the offset by lines, clamped to [0, Limit].
func (g *ScrollGate) Scroll(lines int) {
	g.Offset += lines
	if limit := g.Limit(); g.Offset > limit {
		g.Offset = limit
	}
	if g.Offset < 0 {
		g.Offset = 0
	}
}

// Visible reports whether the scene should animate.
func (g *ScrollGate) Visible() bool {
	return g.Threshold <= 0 || float64(g.Offset) >= g.Threshold*float64(g.Viewport)
}

// Remaining returns how many lines are left to scroll before the scene shows.
func (g *ScrollGate) Remaining() int {
	if g.Visible() {
		return 0
	}
	return g.Limit() - g.Offset
}
