package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sschneiders/magiclight2d/shaders"
)

// PipelineSet holds the five compute stages plus the compositing render
// pipeline. All compute pipelines use auto bind group layouts; the WGSL
// binding declarations are the single source of truth.
type PipelineSet struct {
	SDF       *wgpu.ComputePipeline
	Probe     *wgpu.ComputePipeline
	Bounce    *wgpu.ComputePipeline
	Blend     *wgpu.ComputePipeline
	Filter    *wgpu.ComputePipeline
	Composite *wgpu.RenderPipeline

	LinearSampler  *wgpu.Sampler
	NearestSampler *wgpu.Sampler
}

func computePipeline(device *wgpu.Device, label, code string) (*wgpu.ComputePipeline, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + " CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s shader module: %w", label, err)
	}
	defer module.Release()

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: label + " Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s pipeline: %w", label, err)
	}
	return pipeline, nil
}

func NewPipelineSet(device *wgpu.Device, surfaceFormat wgpu.TextureFormat) (*PipelineSet, error) {
	ps := &PipelineSet{}

	var err error
	if ps.SDF, err = computePipeline(device, "GI SDF", shaders.SDFWGSL); err != nil {
		return nil, err
	}
	if ps.Probe, err = computePipeline(device, "GI Probe", shaders.ProbeWGSL); err != nil {
		return nil, err
	}
	if ps.Bounce, err = computePipeline(device, "GI Bounce", shaders.BounceWGSL); err != nil {
		return nil, err
	}
	if ps.Blend, err = computePipeline(device, "GI Blend", shaders.BlendWGSL); err != nil {
		return nil, err
	}
	if ps.Filter, err = computePipeline(device, "GI Filter", shaders.FilterWGSL); err != nil {
		return nil, err
	}

	compModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "GI Composite VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.CompositeWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create composite shader module: %w", err)
	}
	defer compModule.Release()

	ps.Composite, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "GI Composite Pipeline",
		Vertex: wgpu.VertexState{
			Module:     compModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     compModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format: surfaceFormat,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorZero,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorZero,
						},
					},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create composite pipeline: %w", err)
	}

	ps.LinearSampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "gi_linear_sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create linear sampler: %w", err)
	}
	ps.NearestSampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "gi_nearest_sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create nearest sampler: %w", err)
	}

	return ps, nil
}

func (ps *PipelineSet) Release() {
	if ps.SDF != nil {
		ps.SDF.Release()
	}
	if ps.Probe != nil {
		ps.Probe.Release()
	}
	if ps.Bounce != nil {
		ps.Bounce.Release()
	}
	if ps.Blend != nil {
		ps.Blend.Release()
	}
	if ps.Filter != nil {
		ps.Filter.Release()
	}
	if ps.Composite != nil {
		ps.Composite.Release()
	}
	if ps.LinearSampler != nil {
		ps.LinearSampler.Release()
	}
	if ps.NearestSampler != nil {
		ps.NearestSampler.Release()
	}
}
