package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Occluder is a rotated box that blocks light. Shapes partially outside the
// viewport still contribute valid distances near the boundary.
type Occluder struct {
	Center     mgl32.Vec2
	HalfExtent mgl32.Vec2
	// Rotation about the center, radians, counter-clockwise.
	Rotation float32
}

// Distance returns the signed distance from p to the occluder boundary:
// negative inside, zero on the boundary, positive outside.
func (o Occluder) Distance(p mgl32.Vec2) float32 {
	d := p.Sub(o.Center)

	// Rotate into the box frame.
	c := float32(math.Cos(float64(-o.Rotation)))
	s := float32(math.Sin(float64(-o.Rotation)))
	local := mgl32.Vec2{
		c*d.X() - s*d.Y(),
		s*d.X() + c*d.Y(),
	}

	qx := abs32(local.X()) - o.HalfExtent.X()
	qy := abs32(local.Y()) - o.HalfExtent.Y()

	// min32/max32 pick the finite operand when the other is NaN, which
	// would turn a degenerate shape into distance zero everywhere.
	if qx != qx || qy != qy {
		return float32(math.NaN())
	}

	ox := max32(qx, 0)
	oy := max32(qy, 0)
	outside := float32(math.Sqrt(float64(ox*ox + oy*oy)))
	inside := min32(max32(qx, qy), 0)
	return outside + inside
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
