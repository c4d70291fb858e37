package core

// WorkgroupSize is the compute dispatch tile edge shared by every kernel.
const WorkgroupSize = 8

// TargetSizes holds the resolutions of every render target for the current
// viewport. Derived purely from the window size and settings.
type TargetSizes struct {
	// PrimaryW/H is the full irradiance and layer resolution.
	PrimaryW, PrimaryH int
	// SDFW/H is the distance field resolution (primary over SDFScale).
	SDFW, SDFH int
	// ProbeW/H is the probe grid resolution (primary over ProbeStride).
	ProbeW, ProbeH int
}

func alignUp(v, to int) int {
	if v%to == 0 {
		return v
	}
	return v + to - v%to
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// ComputeTargetSizes derives all target resolutions from a window size.
// Every dimension is aligned up to the workgroup size so dispatch grids
// cover the whole target.
func ComputeTargetSizes(windowW, windowH int, settings PipelineSettings) TargetSizes {
	if windowW <= 0 || windowH <= 0 {
		return TargetSizes{}
	}

	pw := alignUp(windowW, WorkgroupSize)
	ph := alignUp(windowH, WorkgroupSize)

	sdfScale := settings.SDFScale
	if sdfScale < 1 {
		sdfScale = 1
	}
	sw := alignUp(ceilDiv(pw, int(sdfScale)), WorkgroupSize)
	sh := alignUp(ceilDiv(ph, int(sdfScale)), WorkgroupSize)

	stride := settings.ProbeStride
	if stride < 1 {
		stride = 1
	}
	gw := alignUp(ceilDiv(pw, stride), WorkgroupSize)
	gh := alignUp(ceilDiv(ph, stride), WorkgroupSize)

	return TargetSizes{
		PrimaryW: pw, PrimaryH: ph,
		SDFW: sw, SDFH: sh,
		ProbeW: gw, ProbeH: gh,
	}
}

// Valid reports whether the sizes describe allocatable targets. A minimized
// window yields invalid sizes and the pipeline skips frames until restored.
func (ts TargetSizes) Valid() bool {
	return ts.PrimaryW > 0 && ts.PrimaryH > 0 &&
		ts.SDFW > 0 && ts.SDFH > 0 &&
		ts.ProbeW > 0 && ts.ProbeH > 0
}
