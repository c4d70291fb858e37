package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroups caches the per-pass bind groups. They are rebuilt whenever any
// referenced target or buffer changed identity, or when the cache ping-pong
// flipped (blend and bounce bind opposite cache buffers each frame).
type BindGroups struct {
	device *wgpu.Device

	SDF       *wgpu.BindGroup
	Probe     *wgpu.BindGroup
	Bounce    *wgpu.BindGroup
	Blend     *wgpu.BindGroup
	Filter    *wgpu.BindGroup
	Composite *wgpu.BindGroup

	stamp stamp
	valid bool
}

// stamp captures every identity a bind group entry can reference.
type stamp struct {
	buffers  uint64
	sdf      uint64
	probe    uint64
	bounce   uint64
	blend0   uint64
	blend1   uint64
	filter   uint64
	pose     uint64
	floor    uint64
	walls    uint64
	objects  uint64
	blendIdx int
}

func makeStamp(ts *TargetSet, bs *BufferSet) stamp {
	return stamp{
		buffers:  bs.Version,
		sdf:      ts.SDF.Version,
		probe:    ts.Probe.Version,
		bounce:   ts.Bounce.Version,
		blend0:   ts.Blend[0].Version,
		blend1:   ts.Blend[1].Version,
		filter:   ts.Filter.Version,
		pose:     ts.Pose.Version,
		floor:    ts.Floor.Version,
		walls:    ts.Walls.Version,
		objects:  ts.Objects.Version,
		blendIdx: ts.BlendIndex(),
	}
}

func NewBindGroups(device *wgpu.Device) *BindGroups {
	return &BindGroups{device: device}
}

// Refresh rebuilds the bind groups if anything they reference changed.
func (bg *BindGroups) Refresh(ps *PipelineSet, ts *TargetSet, bs *BufferSet) error {
	s := makeStamp(ts, bs)
	if bg.valid && s == bg.stamp {
		return nil
	}
	bg.release()

	var err error
	bg.SDF, err = bg.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "gi_sdf_bg",
		Layout: ps.SDF.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bs.Camera, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: bs.Params, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: bs.Occluders, Size: wgpu.WholeSize},
			{Binding: 3, TextureView: ts.SDF.View},
		},
	})
	if err != nil {
		return err
	}

	bg.Probe, err = bg.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "gi_probe_bg",
		Layout: ps.Probe.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bs.Camera, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: bs.Params, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: bs.Lights, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: bs.Masks, Size: wgpu.WholeSize},
			{Binding: 4, TextureView: ts.SDF.View},
			{Binding: 5, Sampler: ps.LinearSampler},
			{Binding: 6, TextureView: ts.Probe.View},
		},
	})
	if err != nil {
		return err
	}

	bg.Bounce, err = bg.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "gi_bounce_bg",
		Layout: ps.Bounce.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bs.Camera, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: bs.Params, Size: wgpu.WholeSize},
			{Binding: 2, TextureView: ts.SDF.View},
			{Binding: 3, Sampler: ps.LinearSampler},
			{Binding: 4, TextureView: ts.Probe.View},
			{Binding: 5, TextureView: ts.PreviousBlend().View},
			{Binding: 6, Sampler: ps.LinearSampler},
			{Binding: 7, TextureView: ts.Bounce.View},
		},
	})
	if err != nil {
		return err
	}

	bg.Blend, err = bg.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "gi_blend_bg",
		Layout: ps.Blend.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bs.Camera, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: bs.Params, Size: wgpu.WholeSize},
			{Binding: 2, TextureView: ts.Bounce.View},
			{Binding: 3, TextureView: ts.PreviousBlend().View},
			{Binding: 4, TextureView: ts.CurrentBlend().View},
		},
	})
	if err != nil {
		return err
	}

	bg.Filter, err = bg.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "gi_filter_bg",
		Layout: ps.Filter.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bs.Camera, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: bs.Params, Size: wgpu.WholeSize},
			{Binding: 2, TextureView: ts.CurrentBlend().View},
			{Binding: 3, Sampler: ps.LinearSampler},
			{Binding: 4, TextureView: ts.SDF.View},
			{Binding: 5, Sampler: ps.LinearSampler},
			{Binding: 6, TextureView: ts.Filter.View},
			{Binding: 7, TextureView: ts.Pose.View},
		},
	})
	if err != nil {
		return err
	}

	bg.Composite, err = bg.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "gi_composite_bg",
		Layout: ps.Composite.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bs.Params, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: ps.LinearSampler},
			{Binding: 2, TextureView: ts.Floor.View},
			{Binding: 3, TextureView: ts.Walls.View},
			{Binding: 4, TextureView: ts.Objects.View},
			{Binding: 5, TextureView: ts.Filter.View},
		},
	})
	if err != nil {
		return err
	}

	bg.stamp = s
	bg.valid = true
	return nil
}

func (bg *BindGroups) release() {
	for _, g := range []**wgpu.BindGroup{&bg.SDF, &bg.Probe, &bg.Bounce, &bg.Blend, &bg.Filter, &bg.Composite} {
		if *g != nil {
			(*g).Release()
			*g = nil
		}
	}
	bg.valid = false
}

func (bg *BindGroups) Release() { bg.release() }
