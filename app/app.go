// Package app owns the window, the GPU device, and the per-frame
// orchestration of the illumination passes.
package app

import (
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sschneiders/magiclight2d/core"
	"github.com/sschneiders/magiclight2d/gpu"
	"github.com/sschneiders/magiclight2d/shaders"
)

// Layer selects one of the compositing inputs for uploads.
type Layer int

const (
	LayerFloor Layer = iota
	LayerWalls
	LayerObjects
)

type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	Targets   *gpu.TargetSet
	Buffers   *gpu.BufferSet
	Pipelines *gpu.PipelineSet
	Binds     *gpu.BindGroups

	Scene    *core.Scene
	Settings core.PipelineSettings
	Tracker  *core.ProjectionTracker
	Log      core.Logger
	Profiler *Profiler

	Overlay          *OverlayText
	TextPipeline     *wgpu.RenderPipeline
	TextAtlasView    *wgpu.TextureView
	TextBindGroup    *wgpu.BindGroup
	TextVertexBuffer *wgpu.Buffer
	TextItems        []OverlayItem
	textVertexCount  uint32

	DebugMode bool

	sizes        core.TargetSizes
	frameCounter int
	rng          *rand.Rand

	// SDF fast path bookkeeping.
	sdfRev     uint64
	sdfOrigin  mgl32.Vec2
	sdfTexel   float32
	sdfVersion uint64
	sdfValid   bool

	FrameCount     int
	FPS            float64
	fpsTime        float64
	lastRenderTime float64
}

func NewApp(window *glfw.Window, settings core.PipelineSettings, log core.Logger) *App {
	if log == nil {
		log = core.NewNopLogger()
	}
	return &App{
		Window:   window,
		Scene:    core.NewScene(),
		Settings: settings,
		Tracker:  core.NewProjectionTracker(settings),
		Log:      log,
		Profiler: NewProfiler(),
		rng:      rand.New(rand.NewSource(1)),
	}
}

func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)

	surface := a.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.Window))
	a.Surface = surface

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return err
	}
	a.Adapter = adapter

	a.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return err
	}
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	format := caps.Formats[0]

	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, a.Device, a.Config)

	a.Pipelines, err = gpu.NewPipelineSet(a.Device, format)
	if err != nil {
		return err
	}
	a.Buffers = gpu.NewBufferSet(a.Device, a.Queue)
	a.Targets = gpu.NewTargetSet(a.Device)
	a.Binds = gpu.NewBindGroups(a.Device)

	if err := a.setupTextResources(); err != nil {
		a.Log.Warnf("debug overlay disabled: %v", err)
	}

	a.allocateTargets(width, height)
	a.Log.Infof("renderer initialized: %dx%d, surface format %v", width, height, format)
	return nil
}

func (a *App) allocateTargets(w, h int) {
	sizes := core.ComputeTargetSizes(w, h, a.Settings)
	if !sizes.Valid() {
		return
	}
	a.sizes = sizes
	a.Targets.Allocate(sizes)
	// New cache contents are undefined; restart accumulation from scratch.
	a.Tracker = core.NewProjectionTracker(a.Settings)
	a.frameCounter = 0
	a.sdfValid = false
}

func (a *App) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.Config.Width = uint32(w)
	a.Config.Height = uint32(h)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
	a.allocateTargets(w, h)
	a.Log.Debugf("resized to %dx%d (probe atlas %dx%d)", w, h, a.sizes.ProbeW, a.sizes.ProbeH)
}

// WriteLayer uploads RGBA8 pixel data into one of the compositing layers.
// The data must cover the full primary target.
func (a *App) WriteLayer(layer Layer, pix []byte) error {
	var t *gpu.Target
	switch layer {
	case LayerFloor:
		t = &a.Targets.Floor
	case LayerWalls:
		t = &a.Targets.Walls
	case LayerObjects:
		t = &a.Targets.Objects
	default:
		return fmt.Errorf("unknown layer %d", layer)
	}
	if t.Tex == nil {
		return fmt.Errorf("layer target not allocated")
	}
	if len(pix) != int(t.W*t.H*4) {
		return fmt.Errorf("layer data size %d does not match %dx%d", len(pix), t.W, t.H)
	}
	a.Queue.WriteTexture(t.Tex.AsImageCopy(), pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  t.W * 4,
		RowsPerImage: t.H,
	}, &wgpu.Extent3D{Width: t.W, Height: t.H, DepthOrArrayLayers: 1})
	return nil
}

func (a *App) ClearText() {
	a.TextItems = a.TextItems[:0]
	a.textVertexCount = 0
}

func (a *App) DrawText(text string, x, y float32, scale float32, color [4]float32) {
	a.TextItems = append(a.TextItems, OverlayItem{
		Text:     text,
		Position: [2]float32{x, y},
		Scale:    scale,
		Color:    color,
	})
}

// Update prepares per-frame CPU state: debug overlay contents and the text
// vertex buffer. Scene and camera edits happen before this.
func (a *App) Update() {
	if a.DebugMode && a.Overlay != nil {
		a.DrawText(fmt.Sprintf("FPS: %.1f\n%s", a.FPS, a.Profiler.StatsString()),
			10, 10, 1.0, [4]float32{1, 1, 0, 1})
	}

	if len(a.TextItems) > 0 && a.Overlay != nil {
		vertices := a.Overlay.BuildVertices(a.TextItems, int(a.Config.Width), int(a.Config.Height))
		if len(vertices) > 0 {
			vSize := uint64(len(vertices) * int(unsafe.Sizeof(OverlayVertex{})))
			if a.TextVertexBuffer == nil || a.TextVertexBuffer.GetSize() < vSize {
				if a.TextVertexBuffer != nil {
					a.TextVertexBuffer.Release()
				}
				a.TextVertexBuffer, _ = a.Device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: "Overlay VB",
					Size:  vSize,
					Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
				})
			}
			a.Queue.WriteBuffer(a.TextVertexBuffer, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize))
			a.textVertexCount = uint32(len(vertices))
		}
	}
}

func (a *App) jitteredLights() []core.OmniLight {
	lights := a.Scene.Lights()
	out := make([]core.OmniLight, len(lights))
	for i, l := range lights {
		out[i] = l
		if l.JitterIntensity > 0 {
			out[i].Intensity += (a.rng.Float32()*2 - 1) * l.JitterIntensity
			if out[i].Intensity < 0 {
				out[i].Intensity = 0
			}
		}
		if l.JitterTranslation > 0 {
			out[i].Position[0] += (a.rng.Float32()*2 - 1) * l.JitterTranslation
			out[i].Position[1] += (a.rng.Float32()*2 - 1) * l.JitterTranslation
		}
	}
	return out
}

// Render runs the full frame: five compute passes, the composite, and the
// overlay. If any target is missing at the expected size the frame is
// skipped entirely; neither the projection tracker nor the cache advance,
// so accumulation resumes seamlessly once targets return.
func (a *App) Render() {
	if !a.Targets.Ready(a.sizes) {
		a.Log.Debugf("render targets not ready, skipping frame")
		return
	}

	w := int(a.Config.Width)
	h := int(a.Config.Height)
	viewProj := a.Scene.Camera.ViewProj(w, h)
	signal := a.Tracker.Observe(viewProj)
	mult := signal.TemporalMultiplier(a.Settings.MultiplierFloor, a.Settings.MultiplierSlope)
	if signal.Changed {
		a.Log.Debugf("projection changed (scale delta %.3f), temporal multiplier %.2f", signal.ScaleDelta, mult)
	}

	a.Profiler.BeginScope(ScopeUpload)
	origin, texel := a.Scene.Camera.WorldViewport(w, h)
	a.Buffers.WriteCamera(gpu.CameraUpload{
		ViewProj:    viewProj,
		InvViewProj: viewProj.Inv(),
		ScreenW:     float32(w),
		ScreenH:     float32(h),
		SDFScale:    a.Settings.SDFScale,
		ViewOrigin:  origin,
		TexelSize:   texel,
	})
	a.Buffers.WriteParams(gpu.ParamsUpload{
		FrameCounter:       int32(a.frameCounter),
		ProbeAtlasCols:     int32(a.sizes.ProbeW),
		ProbeAtlasRows:     int32(a.sizes.ProbeH),
		TemporalMultiplier: mult,
		Skylight:           a.Scene.Skylight,
		Settings:           a.Settings,
	})
	lights := a.jitteredLights()
	occluders := a.Scene.Occluders()
	masks := a.Scene.SkylightMasks()
	a.Buffers.WriteLights(lights)
	a.Buffers.WriteOccluders(occluders)
	a.Buffers.WriteMasks(masks)
	a.Profiler.EndScope(ScopeUpload)
	a.Profiler.SetCount("lights", len(lights))
	a.Profiler.SetCount("occluders", len(occluders))

	if err := a.Binds.Refresh(a.Pipelines, a.Targets, a.Buffers); err != nil {
		a.Log.Errorf("bind group refresh failed: %v", err)
		return
	}

	nextTexture, err := a.Surface.GetCurrentTexture()
	if err != nil {
		a.Log.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		a.Log.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.Log.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}

	a.Profiler.BeginScope(ScopeEncode)
	cPass := encoder.BeginComputePass(nil)

	// The distance field only changes with the occluder set or the viewport.
	rev := a.Scene.OccluderRev()
	if !a.sdfValid || rev != a.sdfRev || origin != a.sdfOrigin || texel != a.sdfTexel ||
		a.Targets.SDF.Version != a.sdfVersion {
		cPass.SetPipeline(a.Pipelines.SDF)
		cPass.SetBindGroup(0, a.Binds.SDF, nil)
		cPass.DispatchWorkgroups(dispatchDim(a.sizes.SDFW), dispatchDim(a.sizes.SDFH), 1)
		a.sdfRev = rev
		a.sdfOrigin = origin
		a.sdfTexel = texel
		a.sdfVersion = a.Targets.SDF.Version
		a.sdfValid = true
	}

	probeX := dispatchDim(a.sizes.ProbeW)
	probeY := dispatchDim(a.sizes.ProbeH)

	cPass.SetPipeline(a.Pipelines.Probe)
	cPass.SetBindGroup(0, a.Binds.Probe, nil)
	cPass.DispatchWorkgroups(probeX, probeY, 1)

	cPass.SetPipeline(a.Pipelines.Bounce)
	cPass.SetBindGroup(0, a.Binds.Bounce, nil)
	cPass.DispatchWorkgroups(probeX, probeY, 1)

	cPass.SetPipeline(a.Pipelines.Blend)
	cPass.SetBindGroup(0, a.Binds.Blend, nil)
	cPass.DispatchWorkgroups(probeX, probeY, 1)

	cPass.SetPipeline(a.Pipelines.Filter)
	cPass.SetBindGroup(0, a.Binds.Filter, nil)
	cPass.DispatchWorkgroups(dispatchDim(a.sizes.PrimaryW), dispatchDim(a.sizes.PrimaryH), 1)

	if err := cPass.End(); err != nil {
		a.Log.Errorf("compute pass End failed: %v", err)
	}

	rPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	rPass.SetPipeline(a.Pipelines.Composite)
	rPass.SetBindGroup(0, a.Binds.Composite, nil)
	rPass.Draw(3, 1, 0, 0)

	if len(a.TextItems) > 0 && a.TextVertexBuffer != nil && a.TextPipeline != nil {
		rPass.SetPipeline(a.TextPipeline)
		rPass.SetBindGroup(0, a.TextBindGroup, nil)
		rPass.SetVertexBuffer(0, a.TextVertexBuffer, 0, a.TextVertexBuffer.GetSize())
		rPass.Draw(a.textVertexCount, 1, 0, 0)
	}

	if err := rPass.End(); err != nil {
		a.Log.Errorf("render pass End failed: %v", err)
	}
	a.Profiler.EndScope(ScopeEncode)

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.Log.Errorf("encoder Finish failed: %v", err)
		return
	}

	a.Profiler.BeginScope(ScopePresent)
	a.Queue.Submit(cmd)
	a.Surface.Present()
	a.Profiler.EndScope(ScopePresent)

	a.Targets.SwapBlend()
	a.frameCounter = (a.frameCounter + 1) % (a.Settings.ProbeStride * a.Settings.ProbeStride)

	now := glfw.GetTime()
	if a.lastRenderTime > 0 {
		a.FrameCount++
		a.fpsTime += now - a.lastRenderTime
		if a.fpsTime >= 1.0 {
			a.FPS = float64(a.FrameCount) / a.fpsTime
			a.FrameCount = 0
			a.fpsTime = 0
		}
	}
	a.lastRenderTime = now
}

func dispatchDim(n int) uint32 {
	return (uint32(n) + core.WorkgroupSize - 1) / core.WorkgroupSize
}

func (a *App) setupTextResources() error {
	overlay, err := NewOverlayText("", 16)
	if err != nil {
		return err
	}
	a.Overlay = overlay

	w, h := overlay.Atlas.Bounds().Dx(), overlay.Atlas.Bounds().Dy()
	tex, err := a.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Overlay Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	a.Queue.WriteTexture(tex.AsImageCopy(), overlay.Atlas.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(w),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	a.TextAtlasView, err = tex.CreateView(nil)
	if err != nil {
		return err
	}

	textMod, err := a.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Overlay Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return err
	}
	defer textMod.Release()

	a.TextPipeline, err = a.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Overlay Pipeline",
		Vertex: wgpu.VertexState{
			Module:     textMod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(OverlayVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     textMod,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: a.Config.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
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
		return err
	}

	a.TextBindGroup, err = a.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: a.TextPipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: a.TextAtlasView},
			{Binding: 1, Sampler: a.Pipelines.LinearSampler},
		},
	})
	return err
}
