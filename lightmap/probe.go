package lightmap

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sschneiders/magiclight2d/core"
)

// ProbeGrid places probes every Stride texels of the primary viewport.
// Probes are regenerated every frame at the same grid coordinates; the grid
// is a function of target resolution only.
type ProbeGrid struct {
	View   Viewport
	Stride int
	W, H   int
}

func NewProbeGrid(view Viewport, stride, w, h int) ProbeGrid {
	return ProbeGrid{View: view, Stride: stride, W: w, H: h}
}

// Center returns the world position of probe (i, j), displaced by a
// sub-cell jitter in [0,1)².
func (g ProbeGrid) Center(i, j int, jitter mgl32.Vec2) mgl32.Vec2 {
	tx := float32(i*g.Stride) + jitter.X()*float32(g.Stride)
	ty := float32(j*g.Stride) + jitter.Y()*float32(g.Stride)
	return mgl32.Vec2{
		g.View.Origin.X() + tx*g.View.TexelSize,
		g.View.Origin.Y() + ty*g.View.TexelSize,
	}
}

// ProbeCoords maps a world position onto fractional probe grid coordinates.
func (g ProbeGrid) ProbeCoords(p mgl32.Vec2) (float32, float32) {
	fx, fy := g.View.TexelAt(p)
	return fx / float32(g.Stride), fy / float32(g.Stride)
}

// Attenuation is the windowed inverse-square falloff: zero at and beyond
// the radius, monotonically decreasing with distance.
func Attenuation(dist, radius float32) float32 {
	if radius <= 0 || dist >= radius {
		return 0
	}
	w := 1 - dist/radius
	return w * w / (1 + dist*dist/(radius*radius))
}

// ComputeDirect estimates light received directly from sources at every
// probe, occlusion-tested through the SDF. Stateless: a pure function of
// the current frame's inputs. Probes outside all light radii receive zero.
func ComputeDirect(
	dst *Image,
	f *Field,
	g ProbeGrid,
	lights []core.OmniLight,
	sky core.Skylight,
	masks []core.SkylightMask,
	jitter mgl32.Vec2,
	settings core.PipelineSettings,
) {
	for j := 0; j < g.H; j++ {
		for i := 0; i < g.W; i++ {
			p := g.Center(i, j, jitter)

			var acc [3]float32
			if sky.Intensity > 0 && !maskedFromSky(p, masks) {
				acc[0] += sky.Color[0] * sky.Intensity
				acc[1] += sky.Color[1] * sky.Intensity
				acc[2] += sky.Color[2] * sky.Intensity
			}

			sampled := 0
			for _, light := range lights {
				if settings.ReservoirSize > 0 && sampled >= settings.ReservoirSize {
					break
				}
				d := light.Position.Sub(p).Len()
				att := Attenuation(d, light.FalloffRadius)
				if att == 0 {
					continue
				}
				sampled++
				vis := f.Visibility(p, light.Position)
				if vis == 0 {
					continue
				}
				s := att * vis * light.Intensity
				acc[0] += light.Color[0] * s
				acc[1] += light.Color[1] * s
				acc[2] += light.Color[2] * s
			}

			dst.Set(i, j, [4]float32{acc[0], acc[1], acc[2], 1})
		}
	}
}

func maskedFromSky(p mgl32.Vec2, masks []core.SkylightMask) bool {
	for _, m := range masks {
		if m.Contains(p) {
			return true
		}
	}
	return false
}
