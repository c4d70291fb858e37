package lightmap

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sschneiders/magiclight2d/core"
)

func newTestPipeline(t *testing.T) (*Pipeline, *core.Scene) {
	t.Helper()
	s := core.DefaultSettings()
	p := NewPipeline(s, core.NewNopLogger())
	p.Resize(64, 64)

	scene := core.NewScene()
	scene.Camera.Position = mgl32.Vec2{32, 32}
	scene.Camera.Zoom = 1
	scene.AddLight(core.OmniLight{
		Position:      mgl32.Vec2{32, 32},
		Color:         [3]float32{1, 1, 1},
		Intensity:     4,
		FalloffRadius: 100,
	})
	return p, scene
}

func TestPipelineStepProducesLight(t *testing.T) {
	p, scene := newTestPipeline(t)
	p.Floor.Fill([4]float32{0.5, 0.5, 0.5, 1})

	require.True(t, p.Ready())
	require.True(t, p.Step(scene))

	// The cache holds the first frame's contribution after the swap.
	var sum float32
	for _, v := range p.Cache().Previous().Pix {
		sum += v
	}
	assert.Greater(t, sum, float32(0), "cache stayed dark after a lit frame")

	out := p.Output()
	var outSum float32
	for _, v := range out.Pix {
		outSum += v
	}
	assert.Greater(t, outSum, float32(0), "composited output stayed dark")
}

func TestPipelineSkipTransparency(t *testing.T) {
	p, scene := newTestPipeline(t)
	require.True(t, p.Step(scene))
	require.True(t, p.Step(scene))

	cacheBefore := p.Cache().Previous().Clone()
	trackerBefore := p.Tracker.Previous()

	// A mid-resize frame: the reconstruction target is gone.
	p.Invalidate()
	require.False(t, p.Ready())

	// Move the camera during the outage; a skipped frame must observe
	// nothing.
	scene.Camera.Position = mgl32.Vec2{500, 500}
	assert.False(t, p.Step(scene), "step must report a skipped frame")

	assert.Equal(t, cacheBefore.Pix, p.Cache().Previous().Pix,
		"skipped frame touched the cache")
	assert.Equal(t, trackerBefore, p.Tracker.Previous(),
		"skipped frame advanced the tracker")

	// Restoring targets resumes normally.
	scene.Camera.Position = mgl32.Vec2{32, 32}
	p.Resize(64, 64)
	assert.True(t, p.Step(scene))
}

func TestPipelineTemporalAccumulation(t *testing.T) {
	p, scene := newTestPipeline(t)

	// A static scene converges: the frame-to-frame cache change decays
	// toward the probe-jitter noise floor.
	deltas := make([]float32, 0, 24)
	last := p.Cache().Previous().Clone()
	for frame := 0; frame < 24; frame++ {
		require.True(t, p.Step(scene))
		cur := p.Cache().Previous()
		var delta float32
		for i := range cur.Pix {
			d := cur.Pix[i] - last.Pix[i]
			if d < 0 {
				d = -d
			}
			delta += d
		}
		deltas = append(deltas, delta)
		last = cur.Clone()
	}

	mean := func(s []float32) float32 {
		var sum float32
		for _, v := range s {
			sum += v
		}
		return sum / float32(len(s))
	}
	early := mean(deltas[1:9])
	late := mean(deltas[16:24])
	assert.Less(t, late, early*0.75,
		"per-frame cache change did not shrink: early %v, late %v", early, late)

	var total float32
	for _, v := range last.Pix {
		total += v
	}
	assert.Less(t, late, total, "cache oscillating after convergence")
}

func TestPipelineResizeDropsHistory(t *testing.T) {
	p, scene := newTestPipeline(t)
	require.True(t, p.Step(scene))

	p.Resize(128, 96)
	require.True(t, p.Ready())

	sizes := p.Sizes()
	assert.Equal(t, 0, sizes.PrimaryW%core.WorkgroupSize)
	assert.Equal(t, 0, sizes.PrimaryH%core.WorkgroupSize)

	for _, v := range p.Cache().Previous().Pix {
		require.Zero(t, v, "temporal history survived a resize")
	}
	require.True(t, p.Step(scene))
}

func TestPipelineRejectsInvalidResize(t *testing.T) {
	p, scene := newTestPipeline(t)
	require.True(t, p.Step(scene))

	// A minimized window keeps the previous targets and keeps running.
	p.Resize(0, 0)
	assert.True(t, p.Ready())
	assert.True(t, p.Step(scene))
}
