package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// OmniLight is a point light on the scene plane. Immutable within a frame;
// the set of lights may be empty.
type OmniLight struct {
	Position  mgl32.Vec2
	Color     [3]float32
	Intensity float32
	// FalloffRadius bounds the light's influence in world units. Probes
	// beyond it receive no contribution.
	FalloffRadius float32

	// JitterIntensity and JitterTranslation add per-frame random wobble,
	// giving torches and candles an organic flicker.
	JitterIntensity   float32
	JitterTranslation float32
}

// Skylight is an unbounded ambient contribution applied everywhere except
// inside skylight masks.
type Skylight struct {
	Color     [3]float32
	Intensity float32
}

// SkylightMask is an axis-aligned region that blocks the skylight, used for
// interiors.
type SkylightMask struct {
	Center     mgl32.Vec2
	HalfExtent mgl32.Vec2
}

// Contains reports whether the world point lies inside the mask.
func (m SkylightMask) Contains(p mgl32.Vec2) bool {
	d := p.Sub(m.Center)
	return abs32(d.X()) <= m.HalfExtent.X() && abs32(d.Y()) <= m.HalfExtent.Y()
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
