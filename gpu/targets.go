// Package gpu owns every GPU-resident target and buffer of the
// illumination pipeline and the pipelines dispatching against them. Each
// target carries a version counter bumped on (re)allocation; consumers
// record the versions they were built against and rebuild on mismatch, so
// nothing ever binds a stale handle regardless of call order elsewhere in
// the frame.
package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sschneiders/magiclight2d/core"
)

const (
	SDFFormat    = wgpu.TextureFormatR32Float
	ProbeFormat  = wgpu.TextureFormatRGBA16Float
	BounceFormat = wgpu.TextureFormatRGBA16Float
	CacheFormat  = wgpu.TextureFormatRGBA16Float
	FilterFormat = wgpu.TextureFormatRGBA16Float
	PoseFormat   = wgpu.TextureFormatRG32Float
	LayerFormat  = wgpu.TextureFormatRGBA8Unorm
)

// Target is one render/storage texture plus its identity version.
type Target struct {
	Label   string
	Tex     *wgpu.Texture
	View    *wgpu.TextureView
	W, H    uint32
	Format  wgpu.TextureFormat
	Version uint64
}

func (t *Target) allocate(device *wgpu.Device, w, h uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) {
	if t.Tex != nil {
		t.View.Release()
		t.Tex.Release()
		t.Tex = nil
		t.View = nil
	}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         t.Label,
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		panic(err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}

	t.Tex = tex
	t.View = view
	t.W = w
	t.H = h
	t.Format = format
	t.Version++
}

func (t *Target) sized(w, h uint32) bool {
	return t.Tex != nil && t.View != nil && t.W == w && t.H == h
}

func (t *Target) release() {
	if t.Tex != nil {
		t.View.Release()
		t.Tex.Release()
		t.Tex = nil
		t.View = nil
	}
}

// TargetSet owns every texture of the pipeline. The blend pair is the
// double-buffered irradiance cache: exactly one buffer is current and one
// previous, swapped by index each frame, never aliased.
type TargetSet struct {
	device *wgpu.Device

	SDF    Target
	Probe  Target
	Bounce Target
	Blend  [2]Target
	Filter Target
	Pose   Target

	Floor   Target
	Walls   Target
	Objects Target

	blendCurrent int
	sizes        core.TargetSizes
}

func NewTargetSet(device *wgpu.Device) *TargetSet {
	ts := &TargetSet{device: device}
	ts.SDF.Label = "gi_sdf_target"
	ts.Probe.Label = "gi_probe_target"
	ts.Bounce.Label = "gi_bounce_target"
	ts.Blend[0].Label = "gi_blend_target_0"
	ts.Blend[1].Label = "gi_blend_target_1"
	ts.Filter.Label = "gi_filter_target"
	ts.Pose.Label = "gi_pose_target"
	ts.Floor.Label = "layer_floor_target"
	ts.Walls.Label = "layer_walls_target"
	ts.Objects.Label = "layer_objects_target"
	return ts
}

// Allocate (re)creates every target for the given sizes. Targets are plain
// leaves; anything referencing them (bind groups) is rebuilt afterward by
// version comparison, so allocation order cannot produce stale references.
func (ts *TargetSet) Allocate(sizes core.TargetSizes) {
	if !sizes.Valid() {
		return
	}

	compute := wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	layer := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst

	ts.SDF.allocate(ts.device, uint32(sizes.SDFW), uint32(sizes.SDFH), SDFFormat, compute)
	ts.Probe.allocate(ts.device, uint32(sizes.ProbeW), uint32(sizes.ProbeH), ProbeFormat, compute)
	ts.Bounce.allocate(ts.device, uint32(sizes.ProbeW), uint32(sizes.ProbeH), BounceFormat, compute)
	ts.Blend[0].allocate(ts.device, uint32(sizes.ProbeW), uint32(sizes.ProbeH), CacheFormat, compute)
	ts.Blend[1].allocate(ts.device, uint32(sizes.ProbeW), uint32(sizes.ProbeH), CacheFormat, compute)
	ts.Filter.allocate(ts.device, uint32(sizes.PrimaryW), uint32(sizes.PrimaryH), FilterFormat, compute)
	ts.Pose.allocate(ts.device, uint32(sizes.PrimaryW), uint32(sizes.PrimaryH), PoseFormat, compute)

	ts.Floor.allocate(ts.device, uint32(sizes.PrimaryW), uint32(sizes.PrimaryH), LayerFormat, layer)
	ts.Walls.allocate(ts.device, uint32(sizes.PrimaryW), uint32(sizes.PrimaryH), LayerFormat, layer)
	ts.Objects.allocate(ts.device, uint32(sizes.PrimaryW), uint32(sizes.PrimaryH), LayerFormat, layer)

	// A resize drops temporal history; restart on buffer 0.
	ts.blendCurrent = 0
	ts.sizes = sizes
}

// Ready reports whether every target exists at the requested sizes. No
// pass may be dispatched, and no bind group built, unless this holds.
func (ts *TargetSet) Ready(sizes core.TargetSizes) bool {
	if !sizes.Valid() {
		return false
	}
	return ts.SDF.sized(uint32(sizes.SDFW), uint32(sizes.SDFH)) &&
		ts.Probe.sized(uint32(sizes.ProbeW), uint32(sizes.ProbeH)) &&
		ts.Bounce.sized(uint32(sizes.ProbeW), uint32(sizes.ProbeH)) &&
		ts.Blend[0].sized(uint32(sizes.ProbeW), uint32(sizes.ProbeH)) &&
		ts.Blend[1].sized(uint32(sizes.ProbeW), uint32(sizes.ProbeH)) &&
		ts.Filter.sized(uint32(sizes.PrimaryW), uint32(sizes.PrimaryH)) &&
		ts.Pose.sized(uint32(sizes.PrimaryW), uint32(sizes.PrimaryH)) &&
		ts.Floor.sized(uint32(sizes.PrimaryW), uint32(sizes.PrimaryH)) &&
		ts.Walls.sized(uint32(sizes.PrimaryW), uint32(sizes.PrimaryH)) &&
		ts.Objects.sized(uint32(sizes.PrimaryW), uint32(sizes.PrimaryH))
}

// CurrentBlend is the cache buffer written this frame.
func (ts *TargetSet) CurrentBlend() *Target { return &ts.Blend[ts.blendCurrent] }

// PreviousBlend is the cache buffer accumulated up to the last frame.
func (ts *TargetSet) PreviousBlend() *Target { return &ts.Blend[1-ts.blendCurrent] }

// BlendIndex reports which blend buffer is current.
func (ts *TargetSet) BlendIndex() int { return ts.blendCurrent }

// SwapBlend flips the cache roles. Called once per completed frame.
func (ts *TargetSet) SwapBlend() { ts.blendCurrent = 1 - ts.blendCurrent }

func (ts *TargetSet) Release() {
	for _, t := range []*Target{
		&ts.SDF, &ts.Probe, &ts.Bounce, &ts.Blend[0], &ts.Blend[1],
		&ts.Filter, &ts.Pose, &ts.Floor, &ts.Walls, &ts.Objects,
	} {
		t.release()
	}
}
