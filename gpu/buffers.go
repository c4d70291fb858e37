package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sschneiders/magiclight2d/core"
)

const (
	cameraParamsSize = 176
	passParamsSize   = 96
	lightStride      = 32
	occluderStride   = 32
	maskStride       = 16
	// Storage buffers open with a 16-byte count header so the runtime
	// arrays behind it stay 16-aligned.
	storageHeader = 16
)

// BufferSet owns the uniform and storage buffers shared by every pass.
// Storage buffers grow to fit and are never shrunk; a reallocation bumps
// Version so bind groups referencing the old buffer get rebuilt.
type BufferSet struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	Camera    *wgpu.Buffer
	Params    *wgpu.Buffer
	Lights    *wgpu.Buffer
	Occluders *wgpu.Buffer
	Masks     *wgpu.Buffer

	lightsCap    uint64
	occludersCap uint64
	masksCap     uint64

	Version uint64

	scratch []byte
}

func NewBufferSet(device *wgpu.Device, queue *wgpu.Queue) *BufferSet {
	bs := &BufferSet{device: device, queue: queue}
	bs.Camera = bs.createBuffer("gi_camera_params", cameraParamsSize,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	bs.Params = bs.createBuffer("gi_pass_params", passParamsSize,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	bs.Version = 1
	return bs
}

func (bs *BufferSet) createBuffer(label string, size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	buf, err := bs.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		panic(err)
	}
	return buf
}

func (bs *BufferSet) ensureStorage(buf **wgpu.Buffer, capacity *uint64, label string, need uint64) {
	if *buf != nil && *capacity >= need {
		return
	}
	if *buf != nil {
		(*buf).Release()
	}
	grown := need
	if grown < *capacity*2 {
		grown = *capacity * 2
	}
	*buf = bs.createBuffer(label, grown, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	*capacity = grown
	bs.Version++
}

func (bs *BufferSet) bytes(n int) []byte {
	if cap(bs.scratch) < n {
		bs.scratch = make([]byte, n)
	}
	bs.scratch = bs.scratch[:n]
	for i := range bs.scratch {
		bs.scratch[i] = 0
	}
	return bs.scratch
}

func putF32(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}

func putI32(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:], uint32(v))
}

func putMat4(b []byte, off int, m mgl32.Mat4) {
	// mgl32 stores column-major, matching the shader side.
	for i := 0; i < 16; i++ {
		putF32(b, off+i*4, m[i])
	}
}

// CameraUpload is the per-frame camera block shared by every pass.
type CameraUpload struct {
	ViewProj    mgl32.Mat4
	InvViewProj mgl32.Mat4
	ScreenW     float32
	ScreenH     float32
	SDFScale    float32
	ViewOrigin  mgl32.Vec2
	TexelSize   float32
}

func (bs *BufferSet) WriteCamera(c CameraUpload) {
	b := bs.bytes(cameraParamsSize)
	putMat4(b, 0, c.ViewProj)
	putMat4(b, 64, c.InvViewProj)
	putF32(b, 128, c.ScreenW)
	putF32(b, 132, c.ScreenH)
	putF32(b, 136, 1.0/c.ScreenW)
	putF32(b, 140, 1.0/c.ScreenH)
	putF32(b, 144, c.SDFScale)
	putF32(b, 148, c.SDFScale)
	putF32(b, 152, 1.0/c.SDFScale)
	putF32(b, 156, 1.0/c.SDFScale)
	putF32(b, 160, c.ViewOrigin.X())
	putF32(b, 164, c.ViewOrigin.Y())
	putF32(b, 168, c.TexelSize)
	bs.queue.WriteBuffer(bs.Camera, 0, b)
}

// ParamsUpload carries the per-frame pass constants.
type ParamsUpload struct {
	FrameCounter       int32
	ProbeAtlasCols     int32
	ProbeAtlasRows     int32
	TemporalMultiplier float32
	Skylight           core.Skylight
	Settings           core.PipelineSettings
}

func (bs *BufferSet) WriteParams(p ParamsUpload) {
	s := p.Settings
	b := bs.bytes(passParamsSize)
	putI32(b, 0, p.FrameCounter)
	putI32(b, 4, int32(s.ProbeStride))
	putI32(b, 8, p.ProbeAtlasCols)
	putI32(b, 12, p.ProbeAtlasRows)
	putI32(b, 16, int32(s.ReservoirSize))
	putI32(b, 20, int32(s.SmoothKernelSizeH))
	putI32(b, 24, int32(s.SmoothKernelSizeW))
	putF32(b, 28, s.DirectLightContrib)
	putF32(b, 32, s.IndirectLightContrib)
	putI32(b, 36, int32(s.IndirectRaysPerSample))
	putF32(b, 40, s.IndirectRaysRadiusFactor)
	putI32(b, 44, int32(s.IndirectRings))
	putF32(b, 48, p.TemporalMultiplier)
	putF32(b, 52, s.Retention)
	putF32(b, 56, s.SDFSaturationDistance)
	putF32(b, 60, s.EdgeStopDistance)
	putF32(b, 64, p.Skylight.Color[0]*p.Skylight.Intensity)
	putF32(b, 68, p.Skylight.Color[1]*p.Skylight.Intensity)
	putF32(b, 72, p.Skylight.Color[2]*p.Skylight.Intensity)
	putF32(b, 76, s.Gamma)
	putF32(b, 80, s.LayerExposure[0])
	putF32(b, 84, s.LayerExposure[1])
	putF32(b, 88, s.LayerExposure[2])
	bs.queue.WriteBuffer(bs.Params, 0, b)
}

func (bs *BufferSet) WriteLights(lights []core.OmniLight) {
	need := uint64(storageHeader + len(lights)*lightStride)
	bs.ensureStorage(&bs.Lights, &bs.lightsCap, "gi_lights", need)

	b := bs.bytes(int(need))
	binary.LittleEndian.PutUint32(b, uint32(len(lights)))
	for i, l := range lights {
		off := storageHeader + i*lightStride
		putF32(b, off, l.Position[0])
		putF32(b, off+4, l.Position[1])
		putF32(b, off+8, l.FalloffRadius)
		putF32(b, off+12, l.Intensity)
		putF32(b, off+16, l.Color[0])
		putF32(b, off+20, l.Color[1])
		putF32(b, off+24, l.Color[2])
	}
	bs.queue.WriteBuffer(bs.Lights, 0, b)
}

func (bs *BufferSet) WriteOccluders(occs []core.Occluder) {
	need := uint64(storageHeader + len(occs)*occluderStride)
	bs.ensureStorage(&bs.Occluders, &bs.occludersCap, "gi_occluders", need)

	b := bs.bytes(int(need))
	binary.LittleEndian.PutUint32(b, uint32(len(occs)))
	for i, o := range occs {
		off := storageHeader + i*occluderStride
		putF32(b, off, o.Center.X())
		putF32(b, off+4, o.Center.Y())
		putF32(b, off+8, o.HalfExtent.X())
		putF32(b, off+12, o.HalfExtent.Y())
		putF32(b, off+16, o.Rotation)
	}
	bs.queue.WriteBuffer(bs.Occluders, 0, b)
}

func (bs *BufferSet) WriteMasks(masks []core.SkylightMask) {
	need := uint64(storageHeader + len(masks)*maskStride)
	bs.ensureStorage(&bs.Masks, &bs.masksCap, "gi_skylight_masks", need)

	b := bs.bytes(int(need))
	binary.LittleEndian.PutUint32(b, uint32(len(masks)))
	for i, m := range masks {
		off := storageHeader + i*maskStride
		putF32(b, off, m.Center[0])
		putF32(b, off+4, m.Center[1])
		putF32(b, off+8, m.HalfExtent[0])
		putF32(b, off+12, m.HalfExtent[1])
	}
	bs.queue.WriteBuffer(bs.Masks, 0, b)
}

func (bs *BufferSet) Release() {
	for _, buf := range []*wgpu.Buffer{bs.Camera, bs.Params, bs.Lights, bs.Occluders, bs.Masks} {
		if buf != nil {
			buf.Release()
		}
	}
	bs.Camera, bs.Params, bs.Lights, bs.Occluders, bs.Masks = nil, nil, nil, nil, nil
}
