package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TrackerState tags whether a previous transform has been recorded yet.
// The explicit Uninitialized state exists so the first frame never divides
// by a possibly-zero prior scale.
type TrackerState int

const (
	TrackerUninitialized TrackerState = iota
	TrackerTracking
)

// ProjectionChangeSignal is recomputed every frame and never persisted.
// ScaleDelta carries the relative magnitude so downstream temporal weighting
// can be graded instead of binary.
type ProjectionChangeSignal struct {
	Changed    bool
	ScaleDelta float32
}

// TemporalMultiplier maps the signal onto the temporal accumulation weight:
// 1.0 while the projection is stable, otherwise a linear ramp with a floor
// so a large jump still retains some history instead of hard-resetting.
func (s ProjectionChangeSignal) TemporalMultiplier(floor, slope float32) float32 {
	if !s.Changed {
		return 1.0
	}
	m := 1.0 - s.ScaleDelta*slope
	if m < floor {
		return floor
	}
	return m
}

// ProjectionTracker detects frame-to-frame view-projection discontinuities
// that invalidate screen-space temporal history.
type ProjectionTracker struct {
	state                TrackerState
	prevViewProj         mgl32.Mat4
	ScaleChangeThreshold float32
	ProjectionThreshold  float32
}

func NewProjectionTracker(settings PipelineSettings) *ProjectionTracker {
	return &ProjectionTracker{
		state:                TrackerUninitialized,
		ScaleChangeThreshold: settings.ScaleChangeThreshold,
		ProjectionThreshold:  settings.ProjectionThreshold,
	}
}

func (t *ProjectionTracker) State() TrackerState { return t.state }

// Previous returns the stored previous-frame transform. Only meaningful in
// the Tracking state.
func (t *ProjectionTracker) Previous() mgl32.Mat4 { return t.prevViewProj }

// scaleEstimate derives a uniform scale from the x/y basis vector magnitudes.
func scaleEstimate(m mgl32.Mat4) float32 {
	sx := float32(math.Abs(float64(m.At(0, 0))))
	sy := float32(math.Abs(float64(m.At(1, 1))))
	return (sx + sy) / 2
}

// Observe compares the current transform against the stored previous one and
// reports whether temporal history should be devalued. The stored transform
// is always overwritten afterward, so the signal is re-evaluated fresh every
// frame and never sticks.
//
// Callers must not invoke Observe on frames the pipeline skips; a skipped
// frame has to be transparent to subsequent temporal logic.
func (t *ProjectionTracker) Observe(current mgl32.Mat4) ProjectionChangeSignal {
	if t.state == TrackerUninitialized {
		t.prevViewProj = current
		t.state = TrackerTracking
		return ProjectionChangeSignal{}
	}

	prevScale := scaleEstimate(t.prevViewProj)
	curScale := scaleEstimate(current)

	var relDelta float32
	if prevScale > 0 {
		relDelta = float32(math.Abs(float64(curScale-prevScale))) / prevScale
	}

	var maxElemDelta float32
	for i := 0; i < 16; i++ {
		d := float32(math.Abs(float64(current[i] - t.prevViewProj[i])))
		if d > maxElemDelta {
			maxElemDelta = d
		}
	}

	t.prevViewProj = current

	return ProjectionChangeSignal{
		Changed:    relDelta > t.ScaleChangeThreshold || maxElemDelta > t.ProjectionThreshold,
		ScaleDelta: relDelta,
	}
}
