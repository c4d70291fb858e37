package lightmap

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sschneiders/magiclight2d/core"
)

func TestComputeBounceEmptyCache(t *testing.T) {
	s := probeSettings()
	b := SDFBuilder{Saturation: 512}
	f, _ := b.Build(testView(64, 64), nil, 0)
	g := NewProbeGrid(testView(64, 64), s.ProbeStride, 8, 8)

	dst := NewImage(8, 8)
	ComputeBounce(dst, f, g, NewImage(8, 8), s)

	for j := 0; j < 8; j++ {
		for i := 0; i < 8; i++ {
			if c := dst.At(i, j); c[0] != 0 || c[1] != 0 || c[2] != 0 {
				t.Fatalf("bounce from a dark cache at (%d,%d) = %v, want 0", i, j, c)
			}
		}
	}
}

func TestComputeBounceGathersFromLitCache(t *testing.T) {
	s := probeSettings()
	b := SDFBuilder{Saturation: 512}
	f, _ := b.Build(testView(64, 64), nil, 0)
	g := NewProbeGrid(testView(64, 64), s.ProbeStride, 8, 8)

	prev := constImage(8, 8, [4]float32{2, 1, 0.5, 1})
	dst := NewImage(8, 8)
	ComputeBounce(dst, f, g, prev, s)

	// With no occluders and a uniform cache every gather returns the cache
	// value, so the normalized sum equals it.
	c := dst.At(4, 4)
	for ch, want := range []float32{2, 1, 0.5} {
		diff := c[ch] - want
		if diff > 1e-4 || diff < -1e-4 {
			t.Errorf("channel %d = %v, want %v", ch, c[ch], want)
		}
	}
}

func TestComputeBounceBlockedByWall(t *testing.T) {
	s := probeSettings()
	s.IndirectRings = 1
	s.IndirectRaysRadiusFactor = 2
	b := SDFBuilder{Saturation: 512}

	// A closed box around the central probe blocks every gather ray: the
	// walls sit ~6 units from the probe, well inside the gather radius of 16.
	occ := []core.Occluder{
		{Center: mgl32.Vec2{28, 36}, HalfExtent: mgl32.Vec2{2, 12}},
		{Center: mgl32.Vec2{44, 36}, HalfExtent: mgl32.Vec2{2, 12}},
		{Center: mgl32.Vec2{36, 28}, HalfExtent: mgl32.Vec2{12, 2}},
		{Center: mgl32.Vec2{36, 44}, HalfExtent: mgl32.Vec2{12, 2}},
	}
	f, _ := b.Build(testView(72, 72), occ, 1)
	g := NewProbeGrid(testView(72, 72), s.ProbeStride, 9, 9)

	prev := constImage(9, 9, [4]float32{4, 4, 4, 1})
	dst := NewImage(9, 9)
	ComputeBounce(dst, f, g, prev, s)

	// Probe (4,4) sits at world (36,36), inside the closed box; the gather
	// radius of 16 puts every sample behind a wall.
	if c := dst.At(4, 4); c[0] != 0 {
		t.Errorf("bounce inside a closed box = %v, want 0", c)
	}
	// A probe far outside the box still gathers freely.
	if c := dst.At(0, 0); c[0] <= 0 {
		t.Errorf("bounce outside the box = %v, want positive", c)
	}
}

func TestComputeBounceDisabled(t *testing.T) {
	s := probeSettings()
	s.IndirectRaysPerSample = 0
	b := SDFBuilder{Saturation: 512}
	f, _ := b.Build(testView(64, 64), nil, 0)
	g := NewProbeGrid(testView(64, 64), s.ProbeStride, 8, 8)

	prev := constImage(8, 8, [4]float32{9, 9, 9, 1})
	dst := constImage(8, 8, [4]float32{5, 5, 5, 1})
	ComputeBounce(dst, f, g, prev, s)

	if c := dst.At(3, 3); c[0] != 0 {
		t.Errorf("disabled bounce = %v, want cleared to 0", c)
	}
}
