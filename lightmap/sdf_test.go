package lightmap

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sschneiders/magiclight2d/core"
)

func testView(w, h int) Viewport {
	return Viewport{Origin: mgl32.Vec2{0, 0}, TexelSize: 1, W: w, H: h}
}

func TestSDFEmptySceneSaturates(t *testing.T) {
	b := SDFBuilder{Saturation: 512}
	f, rebuilt := b.Build(testView(16, 16), nil, 0)
	if !rebuilt {
		t.Fatalf("first build must rebuild")
	}
	for i, d := range f.D {
		if d != 512 {
			t.Fatalf("texel %d = %v, want saturation 512", i, d)
		}
	}
}

func TestSDFSignsAroundOccluder(t *testing.T) {
	b := SDFBuilder{Saturation: 512}
	occ := []core.Occluder{{Center: mgl32.Vec2{32, 32}, HalfExtent: mgl32.Vec2{8, 8}}}
	f, _ := b.Build(testView(64, 64), occ, 1)

	if d := f.Eval(mgl32.Vec2{32, 32}); d >= 0 {
		t.Errorf("inside the box: %v, want negative", d)
	}
	if d := f.Eval(mgl32.Vec2{32, 50}); d <= 0 {
		t.Errorf("outside the box: %v, want positive", d)
	}

	// Crossing the boundary along +x the distance changes sign exactly once
	// and is monotonic on the outside.
	prev := f.Eval(mgl32.Vec2{40.5, 32})
	for x := float32(41.5); x < 55; x++ {
		d := f.Eval(mgl32.Vec2{x, 32})
		if d < prev {
			t.Fatalf("distance not monotonic outside the boundary at x=%v: %v < %v", x, d, prev)
		}
		prev = d
	}
}

func TestSDFBoundaryZero(t *testing.T) {
	b := SDFBuilder{Saturation: 512}
	// Box edge at x=40, aligned with a texel center (39.5 + 0.5).
	occ := []core.Occluder{{Center: mgl32.Vec2{32, 32.5}, HalfExtent: mgl32.Vec2{8, 8}}}
	f, _ := b.Build(testView(64, 64), occ, 1)

	d := f.Eval(mgl32.Vec2{39.5 + 0.5, 32.5})
	if float32(math.Abs(float64(d))) > 0.51 {
		t.Errorf("distance at the boundary = %v, want ~0", d)
	}
}

func TestSDFFastPath(t *testing.T) {
	b := SDFBuilder{Saturation: 512}
	occ := []core.Occluder{{Center: mgl32.Vec2{8, 8}, HalfExtent: mgl32.Vec2{2, 2}}}
	view := testView(16, 16)

	f1, rebuilt := b.Build(view, occ, 7)
	if !rebuilt {
		t.Fatalf("first build must rebuild")
	}
	f2, rebuilt := b.Build(view, occ, 7)
	if rebuilt {
		t.Errorf("unchanged revision and view must reuse the field")
	}
	if f1 != f2 {
		t.Errorf("fast path returned a different field")
	}

	_, rebuilt = b.Build(view, occ, 8)
	if !rebuilt {
		t.Errorf("bumped revision must rebuild")
	}

	shifted := view
	shifted.Origin = mgl32.Vec2{5, 0}
	_, rebuilt = b.Build(shifted, occ, 8)
	if !rebuilt {
		t.Errorf("moved viewport must rebuild")
	}
}

func TestSDFMonotonicWithDistance(t *testing.T) {
	b := SDFBuilder{Saturation: 24}
	occ := []core.Occluder{{Center: mgl32.Vec2{32, 32}, HalfExtent: mgl32.Vec2{4, 4}}}
	f, _ := b.Build(testView(64, 64), occ, 1)

	inv := float32(1 / math.Sqrt2)
	dirs := []mgl32.Vec2{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {inv, inv}, {-inv, inv}}
	for _, dir := range dirs {
		prev := float32(math.Inf(-1))
		for step := float32(5); step <= 28; step++ {
			d := f.Eval(mgl32.Vec2{32, 32}.Add(dir.Mul(step)))
			if d < prev-1e-3 {
				t.Fatalf("dir %v step %v: distance %v < %v, not non-decreasing", dir, step, d, prev)
			}
			if d > 24 {
				t.Fatalf("dir %v step %v: distance %v exceeds saturation", dir, step, d)
			}
			prev = d
		}
	}

	// Beyond the saturation distance the field is clamped flat.
	if d := f.Eval(mgl32.Vec2{2, 32}); d != 24 {
		t.Errorf("far field = %v, want saturation 24", d)
	}
}

func TestSDFDegenerateOccluder(t *testing.T) {
	b := SDFBuilder{Saturation: 512}
	nan := float32(math.NaN())
	occ := []core.Occluder{{Center: mgl32.Vec2{nan, nan}, HalfExtent: mgl32.Vec2{nan, nan}}}
	f, _ := b.Build(testView(8, 8), occ, 1)

	for i, d := range f.D {
		if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
			t.Fatalf("texel %d holds non-finite %v", i, d)
		}
		if d != 512 {
			t.Fatalf("texel %d = %v, want saturation for a degenerate shape", i, d)
		}
	}
}

func TestFieldVisibility(t *testing.T) {
	b := SDFBuilder{Saturation: 512}
	// Wall between the two endpoints.
	occ := []core.Occluder{{Center: mgl32.Vec2{32, 32}, HalfExtent: mgl32.Vec2{2, 20}}}
	f, _ := b.Build(testView(64, 64), occ, 1)

	if v := f.Visibility(mgl32.Vec2{10, 32}, mgl32.Vec2{54, 32}); v != 0 {
		t.Errorf("segment through the wall: visibility %v, want 0", v)
	}
	if v := f.Visibility(mgl32.Vec2{10, 58}, mgl32.Vec2{54, 58}); v != 1 {
		t.Errorf("segment above the wall: visibility %v, want 1", v)
	}
	// Destination on the wall surface does not count as occlusion.
	if v := f.Visibility(mgl32.Vec2{10, 32}, mgl32.Vec2{30, 32}); v != 1 {
		t.Errorf("segment ending at the wall: visibility %v, want 1", v)
	}
}
