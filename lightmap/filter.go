package lightmap

import (
	"github.com/sschneiders/magiclight2d/core"
)

// Upsample expands the sparse probe image to full resolution by bilinear
// interpolation between the four nearest probes.
func Upsample(dst *Image, probeImg *Image, g ProbeGrid) {
	inv := 1 / float32(g.Stride)
	for y := 0; y < dst.H; y++ {
		fy := (float32(y)+0.5)*inv - 0.5
		for x := 0; x < dst.W; x++ {
			fx := (float32(x)+0.5)*inv - 0.5
			dst.Set(x, y, probeImg.SampleBilinear(fx, fy))
		}
	}
}

// SmoothEdgeAware applies a box smoothing pass that refuses to blend across
// strong SDF discontinuities, so reconstructed light does not bleed through
// walls.
func SmoothEdgeAware(dst, src *Image, f *Field, view Viewport, settings core.PipelineSettings) {
	kh := settings.SmoothKernelSizeH
	kw := settings.SmoothKernelSizeW
	if kh <= 0 && kw <= 0 {
		copy(dst.Pix, src.Pix)
		return
	}

	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			center := view.WorldAt(x, y)
			d0 := f.Eval(center)

			var acc [4]float32
			var total float32
			for dy := -kh; dy <= kh; dy++ {
				for dx := -kw; dx <= kw; dx++ {
					nx := clampi(x+dx, 0, src.W-1)
					ny := clampi(y+dy, 0, src.H-1)
					dq := f.Eval(view.WorldAt(nx, ny))
					if !blendable(d0, dq, settings.EdgeStopDistance) {
						continue
					}
					c := src.At(nx, ny)
					acc[0] += c[0]
					acc[1] += c[1]
					acc[2] += c[2]
					acc[3] += c[3]
					total++
				}
			}

			if total == 0 {
				dst.Set(x, y, src.At(x, y))
				continue
			}
			inv := 1 / total
			dst.Set(x, y, [4]float32{acc[0] * inv, acc[1] * inv, acc[2] * inv, acc[3] * inv})
		}
	}
}

// blendable reports whether two SDF samples lie on the same side of an
// occluder boundary and close enough in distance to average.
func blendable(d0, d1, edgeStop float32) bool {
	if (d0 < 0) != (d1 < 0) {
		return false
	}
	diff := d0 - d1
	if diff < 0 {
		diff = -diff
	}
	return diff <= edgeStop
}

// Reconstruct runs the full spatial stage: bilinear upsampling of the probe
// grid followed by the edge-aware smoothing pass. scratch must be sized
// like dst.
func Reconstruct(dst, scratch *Image, probeImg *Image, g ProbeGrid, f *Field, view Viewport, settings core.PipelineSettings) {
	Upsample(scratch, probeImg, g)
	SmoothEdgeAware(dst, scratch, f, view, settings)
}
