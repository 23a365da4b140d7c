// Package physics provides distance utilities and the pointer repulsion model
// shared by anchored particles.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(px, py, cx, cy, radius float64) bool {
	return DistanceSquared(px, py, cx, cy) <= radius*radius
}

// Body is a particle anchored to a rest position.
type Body struct {
	X, Y         float64 // Current position
	VX, VY       float64 // Velocity, units per frame
	BaseX, BaseY float64 // Anchor the spring pulls toward
}

// RepelParams tunes the repulsion model for one particle kind.
type RepelParams struct {
	Radius   float64 // Pointer influence radius
	Push     float64 // Push strength at zero distance
	Spring   float64 // Pull toward the anchor per frame
	Friction float64 // Velocity damping, must be < 1
}

// Repulsion presets per particle kind.
var (
	AmbientRepel = RepelParams{Radius: 8, Push: 4, Spring: 0.002, Friction: 0.92}
	GlyphRepel   = RepelParams{Radius: 8, Push: 5, Spring: 0.003, Friction: 0.90}
)

// Repel advances b by one frame: pushes it away from the pointer at (px, py)
// when closer than p.Radius, springs it toward its anchor, damps the velocity
// and integrates the position.
//
// A body exactly at the pointer gets no push, since the direction is undefined.
func Repel(b *Body, px, py float64, p RepelParams) {
	// At exactly the radius the force is zero, so the inclusive test is safe.
	if PointInCircle(b.X, b.Y, px, py, p.Radius) {
		if dist := Distance(px, py, b.X, b.Y); dist > 0 {
			force := (p.Radius - dist) / p.Radius
			b.VX += (b.X - px) / dist * force * p.Push
			b.VY += (b.Y - py) / dist * force * p.Push
		}
	}

	b.VX += (b.BaseX - b.X) * p.Spring
	b.VY += (b.BaseY - b.Y) * p.Spring

	b.VX *= p.Friction
	b.VY *= p.Friction

	b.X += b.VX
	b.Y += b.VY
}

// Displacement returns how far b is from its anchor.
func (b *Body) Displacement() float64 {
	return Distance(b.X, b.Y, b.BaseX, b.BaseY)
}

// Place sets both the anchor and the current position, and zeroes the velocity.
func (b *Body) Place(x, y float64) {
	b.X, b.Y = x, y
	b.BaseX, b.BaseY = x, y
	b.VX, b.VY = 0, 0
}
