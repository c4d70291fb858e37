package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera2D is an orthographic camera over the scene plane.
type Camera2D struct {
	Position mgl32.Vec2
	// Zoom is world-to-clip scale: larger means closer.
	Zoom float32
}

func NewCamera2D() *Camera2D {
	return &Camera2D{Zoom: 1.0}
}

// ViewProj builds the combined view-projection matrix for a viewport of
// width x height pixels. One world unit maps to Zoom pixels.
func (c *Camera2D) ViewProj(width, height int) mgl32.Mat4 {
	if width <= 0 || height <= 0 {
		return mgl32.Ident4()
	}
	hw := float32(width) / (2 * c.Zoom)
	hh := float32(height) / (2 * c.Zoom)
	proj := mgl32.Ortho2D(-hw, hw, -hh, hh)
	view := mgl32.Translate3D(-c.Position.X(), -c.Position.Y(), 0)
	return proj.Mul4(view)
}

// InverseViewProj maps clip space back to world space.
func (c *Camera2D) InverseViewProj(width, height int) mgl32.Mat4 {
	return c.ViewProj(width, height).Inv()
}

// WorldViewport returns the world-space rectangle visible through a viewport
// of the given pixel size: origin of the lower-left corner and the world
// size of a single texel.
func (c *Camera2D) WorldViewport(width, height int) (origin mgl32.Vec2, texel float32) {
	if c.Zoom <= 0 {
		return c.Position, 1
	}
	texel = 1 / c.Zoom
	origin = mgl32.Vec2{
		c.Position.X() - float32(width)*texel/2,
		c.Position.Y() - float32(height)*texel/2,
	}
	return origin, texel
}
