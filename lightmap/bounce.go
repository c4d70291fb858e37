package lightmap

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sschneiders/magiclight2d/core"
)

// ComputeBounce approximates one indirect bounce per probe by gathering
// from the previous frame's accumulated cache at log-spaced radii around
// the probe, each sample gated by an SDF visibility test.
//
// Sampling the accumulated cache instead of this frame's direct estimate
// breaks the in-frame dependency cycle at the cost of one frame of bounce
// latency.
func ComputeBounce(
	dst *Image,
	f *Field,
	g ProbeGrid,
	prevCache *Image,
	settings core.PipelineSettings,
) {
	rays := settings.IndirectRaysPerSample
	rings := settings.IndirectRings
	if rays <= 0 || rings <= 0 {
		dst.Fill([4]float32{0, 0, 0, 1})
		return
	}

	baseRadius := float32(g.Stride) * g.View.TexelSize * settings.IndirectRaysRadiusFactor

	for j := 0; j < g.H; j++ {
		for i := 0; i < g.W; i++ {
			p := g.Center(i, j, mgl32.Vec2{0.5, 0.5})

			var acc [3]float32
			taken := 0
			for ring := 0; ring < rings; ring++ {
				radius := baseRadius * float32(uint(1)<<uint(ring))
				// Rotate alternate rings by half a step to break up
				// direction aliasing.
				phase := float64(ring) * math.Pi / float64(rays)
				for k := 0; k < rays; k++ {
					angle := phase + 2*math.Pi*float64(k)/float64(rays)
					dir := mgl32.Vec2{
						float32(math.Cos(angle)),
						float32(math.Sin(angle)),
					}
					sample := p.Add(dir.Mul(radius))
					if f.Visibility(p, sample) == 0 {
						continue
					}
					fx, fy := g.ProbeCoords(sample)
					c := prevCache.SampleBilinear(fx, fy)
					acc[0] += c[0]
					acc[1] += c[1]
					acc[2] += c[2]
					taken++
				}
			}

			if taken > 0 {
				inv := 1 / float32(rays*rings)
				acc[0] *= inv
				acc[1] *= inv
				acc[2] *= inv
			}
			dst.Set(i, j, [4]float32{acc[0], acc[1], acc[2], 1})
		}
	}
}
