package lightmap

import "github.com/go-gl/mathgl/mgl32"

// Halton computes the radical-inverse low-discrepancy sequence for the
// given base. Used to jitter probe sample positions across frames so the
// temporal blend integrates over the probe cell.
func Halton(index, base int) float32 {
	f := float32(1)
	r := float32(0)
	for index > 0 {
		f /= float32(base)
		r += f * float32(index%base)
		index /= base
	}
	return r
}

// ProbeJitter returns the sub-cell offset for the given frame counter, in
// [0,1) on both axes.
func ProbeJitter(frame int) mgl32.Vec2 {
	return mgl32.Vec2{Halton(frame+1, 2), Halton(frame+1, 3)}
}
