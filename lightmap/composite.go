package lightmap

import (
	"math"

	"github.com/sschneiders/magiclight2d/core"
)

// Composite combines the three layer targets with the reconstructed
// irradiance: each layer is modulated by irradiance times its exposure and
// stacked floor -> walls -> objects by alpha, then gamma corrected. A pure
// function of its four inputs; no state survives the frame.
func Composite(dst *Image, floor, walls, objects, irradiance *Image, settings core.PipelineSettings) {
	invGamma := float32(1)
	if settings.Gamma > 0 {
		invGamma = 1 / settings.Gamma
	}

	for y := 0; y < dst.H; y++ {
		for x := 0; x < dst.W; x++ {
			irr := irradiance.At(x, y)

			out := modulate(floor.At(x, y), irr, settings.LayerExposure[0])
			out = over(out, modulate(walls.At(x, y), irr, settings.LayerExposure[1]))
			out = over(out, modulate(objects.At(x, y), irr, settings.LayerExposure[2]))

			dst.Set(x, y, [4]float32{
				gamma(out[0], invGamma),
				gamma(out[1], invGamma),
				gamma(out[2], invGamma),
				1,
			})
		}
	}
}

func modulate(layer, irr [4]float32, exposure float32) [4]float32 {
	return [4]float32{
		layer[0] * irr[0] * exposure,
		layer[1] * irr[1] * exposure,
		layer[2] * irr[2] * exposure,
		layer[3],
	}
}

// over composites src onto dst weighted by src alpha.
func over(dst, src [4]float32) [4]float32 {
	a := src[3]
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return [4]float32{
		dst[0]*(1-a) + src[0]*a,
		dst[1]*(1-a) + src[1]*a,
		dst[2]*(1-a) + src[2]*a,
		dst[3] + (1-dst[3])*a,
	}
}

func gamma(v, invGamma float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Pow(float64(v), float64(invGamma)))
}
