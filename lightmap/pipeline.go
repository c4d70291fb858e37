package lightmap

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/sschneiders/magiclight2d/core"
)

// Pipeline runs the whole illumination chain on the CPU, one frame per
// Step. It owns every intermediate buffer and mirrors the frame order of
// the GPU path: SDF -> direct -> bounce -> temporal blend -> reconstruct ->
// composite -> swap.
type Pipeline struct {
	Settings core.PipelineSettings
	Log      core.Logger
	Tracker  *core.ProjectionTracker

	// Layer inputs, written by the caller, sized to the primary target.
	Floor   *Image
	Walls   *Image
	Objects *Image

	sizes   core.TargetSizes
	sdf     SDFBuilder
	cache   *IrradianceCache
	direct  *Image
	bounce  *Image
	raw     *Image
	scratch *Image
	filter  *Image
	output  *Image

	frame int
	rng   *rand.Rand
}

func NewPipeline(settings core.PipelineSettings, logger core.Logger) *Pipeline {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Pipeline{
		Settings: settings,
		Log:      logger,
		Tracker:  core.NewProjectionTracker(settings),
		sdf:      SDFBuilder{Saturation: settings.SDFSaturationDistance},
		rng:      rand.New(rand.NewSource(1)),
	}
}

// Resize reallocates every target for the new viewport, consumers last:
// probe-resolution buffers and the cache first, then the full-resolution
// buffers that read them. Temporal history does not survive a resize.
func (p *Pipeline) Resize(w, h int) {
	sizes := core.ComputeTargetSizes(w, h, p.Settings)
	if !sizes.Valid() {
		p.Log.Debugf("pipeline resize to %dx%d: invalid sizes, keeping previous targets", w, h)
		return
	}
	p.sizes = sizes

	gw := sizes.PrimaryW / p.Settings.ProbeStride
	gh := sizes.PrimaryH / p.Settings.ProbeStride
	if gw < 1 {
		gw = 1
	}
	if gh < 1 {
		gh = 1
	}

	p.direct = NewImage(gw, gh)
	p.bounce = NewImage(gw, gh)
	p.raw = NewImage(gw, gh)
	if p.cache == nil {
		p.cache = NewIrradianceCache(gw, gh)
	} else {
		p.cache.Resize(gw, gh)
	}

	p.scratch = NewImage(sizes.PrimaryW, sizes.PrimaryH)
	p.filter = NewImage(sizes.PrimaryW, sizes.PrimaryH)
	p.output = NewImage(sizes.PrimaryW, sizes.PrimaryH)

	p.Floor = NewImage(sizes.PrimaryW, sizes.PrimaryH)
	p.Walls = NewImage(sizes.PrimaryW, sizes.PrimaryH)
	p.Objects = NewImage(sizes.PrimaryW, sizes.PrimaryH)
}

// Ready reports whether every target is allocated for the current sizes.
// No stage runs against a target that is not fully allocated.
func (p *Pipeline) Ready() bool {
	if !p.sizes.Valid() {
		return false
	}
	full := []*Image{p.scratch, p.filter, p.output, p.Floor, p.Walls, p.Objects}
	for _, img := range full {
		if img == nil || img.W != p.sizes.PrimaryW || img.H != p.sizes.PrimaryH {
			return false
		}
	}
	if p.direct == nil || p.bounce == nil || p.raw == nil || p.cache == nil {
		return false
	}
	return true
}

// Invalidate drops the reconstruction target, as a mid-resize frame would.
// The next Step skips until Resize restores it.
func (p *Pipeline) Invalidate() {
	p.filter = nil
}

// Step runs one frame against the scene. Returns false when the pipeline
// was skipped because targets were not ready; a skipped frame leaves the
// cache buffers and tracker state untouched so it is transparent to
// subsequent temporal logic.
func (p *Pipeline) Step(scene *core.Scene) bool {
	if !p.Ready() {
		p.Log.Debugf("illumination pipeline skipped: targets not ready")
		return false
	}

	viewProj := scene.Camera.ViewProj(p.sizes.PrimaryW, p.sizes.PrimaryH)
	signal := p.Tracker.Observe(viewProj)
	multiplier := signal.TemporalMultiplier(p.Settings.MultiplierFloor, p.Settings.MultiplierSlope)

	origin, texel := scene.Camera.WorldViewport(p.sizes.PrimaryW, p.sizes.PrimaryH)
	primaryView := Viewport{Origin: origin, TexelSize: texel, W: p.sizes.PrimaryW, H: p.sizes.PrimaryH}
	sdfView := Viewport{
		Origin:    origin,
		TexelSize: texel * p.Settings.SDFScale,
		W:         p.sizes.SDFW,
		H:         p.sizes.SDFH,
	}

	p.sdf.Saturation = p.Settings.SDFSaturationDistance
	field, rebuilt := p.sdf.Build(sdfView, scene.Occluders(), scene.OccluderRev())
	if rebuilt {
		p.Log.Debugf("sdf rebuilt (%dx%d)", sdfView.W, sdfView.H)
	}

	grid := NewProbeGrid(primaryView, p.Settings.ProbeStride, p.direct.W, p.direct.H)
	jitter := ProbeJitter(p.frame)

	lights := p.jitteredLights(scene.Lights())
	ComputeDirect(p.direct, field, grid, lights, scene.Skylight, scene.SkylightMasks(), jitter, p.Settings)
	ComputeBounce(p.bounce, field, grid, p.cache.Previous(), p.Settings)

	p.raw.Fill([4]float32{0, 0, 0, 1})
	AddScaled(p.raw, p.direct, p.Settings.DirectLightContrib)
	AddScaled(p.raw, p.bounce, p.Settings.IndirectLightContrib)

	BlendTemporal(p.cache.Current(), p.raw, p.cache.Previous(), p.Settings.Retention, multiplier)

	Reconstruct(p.filter, p.scratch, p.cache.Current(), grid, field, primaryView, p.Settings)

	Composite(p.output, p.Floor, p.Walls, p.Objects, p.filter, p.Settings)

	p.cache.Swap()
	p.frame = (p.frame + 1) % (p.Settings.ProbeStride * p.Settings.ProbeStride)
	return true
}

func (p *Pipeline) jitteredLights(lights []core.OmniLight) []core.OmniLight {
	out := make([]core.OmniLight, len(lights))
	for i, l := range lights {
		if l.JitterIntensity != 0 {
			l.Intensity += (p.rng.Float32()*2 - 1) * l.JitterIntensity
			if l.Intensity < 0 {
				l.Intensity = 0
			}
		}
		if l.JitterTranslation != 0 {
			l.Position = l.Position.Add(mgl32.Vec2{
				(p.rng.Float32()*2 - 1) * l.JitterTranslation,
				(p.rng.Float32()*2 - 1) * l.JitterTranslation,
			})
		}
		out[i] = l
	}
	return out
}

// Output is the final composited frame.
func (p *Pipeline) Output() *Image { return p.output }

// Irradiance is the reconstructed full-resolution irradiance, read-only.
func (p *Pipeline) Irradiance() *Image { return p.filter }

// Cache exposes the temporal accumulation store, read-only.
func (p *Pipeline) Cache() *IrradianceCache { return p.cache }

// SDF exposes the current distance field, read-only.
func (p *Pipeline) SDF() *Field { return p.sdf.field }

// Sizes returns the current target sizes.
func (p *Pipeline) Sizes() core.TargetSizes { return p.sizes }
