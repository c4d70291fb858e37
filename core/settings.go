package core

// PipelineSettings carries every tunable of the illumination pipeline.
// The zero value is not usable; start from DefaultSettings.
type PipelineSettings struct {
	// ScaleChangeThreshold is the relative zoom change above which the
	// projection tracker reports a change (0.10 = 10%).
	ScaleChangeThreshold float32
	// ProjectionThreshold is the maximum absolute per-element view-projection
	// delta tolerated before a change is reported.
	ProjectionThreshold float32

	// ProbeStride is the probe grid spacing in texels. Direct and bounce
	// irradiance are only computed at probe centers.
	ProbeStride int

	// Retention is the per-frame fraction of accumulated history kept by the
	// temporal blend. 0.88 gives roughly an eight frame window.
	Retention float32
	// MultiplierFloor and MultiplierSlope shape the temporal weight ramp on
	// projection change: max(MultiplierFloor, 1 - delta*MultiplierSlope).
	MultiplierFloor float32
	MultiplierSlope float32

	// SDFSaturationDistance clamps stored distances, in world units.
	SDFSaturationDistance float32
	// SDFScale is the ratio of primary resolution to SDF resolution.
	SDFScale float32

	// DirectLightContrib and IndirectLightContrib weight the two irradiance
	// estimates before temporal accumulation.
	DirectLightContrib   float32
	IndirectLightContrib float32

	// IndirectRaysPerSample is the number of gather directions per ring in
	// the bounce pass; IndirectRaysRadiusFactor scales the log-spaced ring
	// radii; IndirectRings is the ring count.
	IndirectRaysPerSample    int
	IndirectRaysRadiusFactor float32
	IndirectRings            int

	// ReservoirSize bounds the per-probe light reservoir in the direct pass.
	ReservoirSize int

	// SmoothKernelSizeH and SmoothKernelSizeW set the half extents of the
	// edge-aware smoothing kernel in the filter pass.
	SmoothKernelSizeH int
	SmoothKernelSizeW int

	// EdgeStopDistance is the SDF delta across which the filter refuses to
	// blend, keeping light from bleeding through walls.
	EdgeStopDistance float32

	// LayerExposure scales irradiance per composited layer:
	// floor, walls, objects.
	LayerExposure [3]float32

	// Gamma applied by the compositor.
	Gamma float32
}

func DefaultSettings() PipelineSettings {
	return PipelineSettings{
		ScaleChangeThreshold:     0.10,
		ProjectionThreshold:      0.1,
		ProbeStride:              8,
		Retention:                0.88,
		MultiplierFloor:          0.1,
		MultiplierSlope:          5.0,
		SDFSaturationDistance:    512.0,
		SDFScale:                 2.0,
		DirectLightContrib:       1.0,
		IndirectLightContrib:     0.5,
		IndirectRaysPerSample:    8,
		IndirectRaysRadiusFactor: 1.0,
		IndirectRings:            3,
		ReservoirSize:            16,
		SmoothKernelSizeH:        2,
		SmoothKernelSizeW:        2,
		EdgeStopDistance:         4.0,
		LayerExposure:            [3]float32{1.0, 1.0, 1.0},
		Gamma:                    2.2,
	}
}
