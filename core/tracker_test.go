package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func trackerSettings() PipelineSettings {
	s := DefaultSettings()
	s.ScaleChangeThreshold = 0.10
	s.ProjectionThreshold = 0.1
	return s
}

func scaleMat(s float32) mgl32.Mat4 {
	return mgl32.Scale3D(s, s, 1)
}

func TestTrackerFirstObservationNeverSignals(t *testing.T) {
	tr := NewProjectionTracker(trackerSettings())

	if tr.State() != TrackerUninitialized {
		t.Fatalf("expected uninitialized state, got %v", tr.State())
	}

	sig := tr.Observe(scaleMat(0.5))
	if sig.Changed {
		t.Errorf("first observation must not report a change")
	}
	if sig.ScaleDelta != 0 {
		t.Errorf("first observation scale delta = %v, want 0", sig.ScaleDelta)
	}
	if tr.State() != TrackerTracking {
		t.Errorf("expected tracking state after first observation")
	}
}

func TestTrackerDetectsZoomJump(t *testing.T) {
	tr := NewProjectionTracker(trackerSettings())
	tr.Observe(scaleMat(1.0))

	// 20% zoom change, well past the 10% threshold.
	sig := tr.Observe(scaleMat(1.2))
	if !sig.Changed {
		t.Fatalf("20%% scale change not detected")
	}
	if sig.ScaleDelta < 0.19 || sig.ScaleDelta > 0.21 {
		t.Errorf("scale delta = %v, want ~0.2", sig.ScaleDelta)
	}

	mult := sig.TemporalMultiplier(0.1, 5.0)
	if mult != 0.1 {
		t.Errorf("multiplier = %v, want floor 0.1 (1 - 0.2*5 = 0)", mult)
	}
}

func TestTrackerToleratesSmallZoomDrift(t *testing.T) {
	tr := NewProjectionTracker(trackerSettings())
	tr.Observe(scaleMat(1.0))

	sig := tr.Observe(scaleMat(1.05))
	if sig.Changed {
		t.Fatalf("5%% scale change must stay under the 10%% threshold")
	}
	if m := sig.TemporalMultiplier(0.1, 5.0); m != 1.0 {
		t.Errorf("multiplier = %v, want 1.0 for unchanged projection", m)
	}
}

func TestTrackerDetectsTranslationJump(t *testing.T) {
	tr := NewProjectionTracker(trackerSettings())
	tr.Observe(scaleMat(1.0))

	// Same scale, large translation element delta.
	m := scaleMat(1.0)
	m.SetCol(3, mgl32.Vec4{0.5, 0, 0, 1})
	sig := tr.Observe(m)
	if !sig.Changed {
		t.Errorf("element delta of 0.5 not detected")
	}
}

func TestTrackerAlwaysOverwritesPrevious(t *testing.T) {
	tr := NewProjectionTracker(trackerSettings())
	tr.Observe(scaleMat(1.0))
	tr.Observe(scaleMat(2.0))

	// The change signal must not stick: the 2.0 frame became the new
	// baseline, so observing 2.0 again is quiet.
	sig := tr.Observe(scaleMat(2.0))
	if sig.Changed {
		t.Errorf("signal persisted across a stable frame")
	}
	if tr.Previous() != scaleMat(2.0) {
		t.Errorf("previous transform not overwritten")
	}
}

func TestTemporalMultiplierRamp(t *testing.T) {
	cases := []struct {
		delta float32
		want  float32
	}{
		{0.12, 0.4},  // 1 - 0.12*5
		{0.15, 0.25}, // 1 - 0.15*5
		{0.5, 0.1},   // floored
	}
	for _, c := range cases {
		sig := ProjectionChangeSignal{Changed: true, ScaleDelta: c.delta}
		got := sig.TemporalMultiplier(0.1, 5.0)
		if diff := got - c.want; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("multiplier for delta %v = %v, want %v", c.delta, got, c.want)
		}
	}
}
