package lightmap

import (
	"testing"
)

func constImage(w, h int, c [4]float32) *Image {
	img := NewImage(w, h)
	img.Fill(c)
	return img
}

func TestBlendTemporalFormula(t *testing.T) {
	raw := constImage(4, 4, [4]float32{1, 1, 1, 1})
	prev := constImage(4, 4, [4]float32{0, 0, 0, 1})
	dst := NewImage(4, 4)

	// w = 0.88 * 1.0: dst = raw*0.12 + prev*0.88.
	BlendTemporal(dst, raw, prev, 0.88, 1.0)
	got := dst.At(2, 2)[0]
	if diff := got - 0.12; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("blended value = %v, want 0.12", got)
	}

	// Devalued history: w = 0.88 * 0.1.
	BlendTemporal(dst, raw, prev, 0.88, 0.1)
	got = dst.At(2, 2)[0]
	want := float32(1 - 0.88*0.1)
	if diff := got - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("devalued blend = %v, want %v", got, want)
	}
}

func TestBlendTemporalClampsWeight(t *testing.T) {
	raw := constImage(2, 2, [4]float32{1, 1, 1, 1})
	prev := constImage(2, 2, [4]float32{5, 5, 5, 1})
	dst := NewImage(2, 2)

	// A weight above 1 would ignore the frame entirely and overshoot.
	BlendTemporal(dst, raw, prev, 0.88, 2.0)
	if got := dst.At(0, 0)[0]; got > 5 || got < 1 {
		t.Errorf("clamped blend = %v, want within [raw, prev]", got)
	}
}

func TestBlendTemporalConvergence(t *testing.T) {
	// Feeding a constant raw signal must converge monotonically toward it.
	cache := NewIrradianceCache(4, 4)
	raw := constImage(4, 4, [4]float32{1, 1, 1, 1})

	prevErr := float32(1)
	for frame := 0; frame < 32; frame++ {
		BlendTemporal(cache.Current(), raw, cache.Previous(), 0.88, 1.0)
		got := cache.Current().At(1, 1)[0]
		err := 1 - got
		if err < 0 {
			t.Fatalf("frame %d overshot the target: %v", frame, got)
		}
		if err >= prevErr {
			t.Fatalf("frame %d did not converge: error %v >= %v", frame, err, prevErr)
		}
		prevErr = err
		cache.Swap()
	}
	if prevErr > 0.02 {
		t.Errorf("after 32 frames error is still %v", prevErr)
	}
}

func TestIrradianceCacheSwap(t *testing.T) {
	cache := NewIrradianceCache(2, 2)

	if cache.Current() == cache.Previous() {
		t.Fatalf("current and previous must never alias")
	}

	cur := cache.Current()
	prev := cache.Previous()
	cache.Swap()
	if cache.Current() != prev || cache.Previous() != cur {
		t.Errorf("swap did not exchange buffer roles")
	}
	if cache.Current() == cache.Previous() {
		t.Errorf("buffers alias after swap")
	}

	cache.Swap()
	if cache.Current() != cur {
		t.Errorf("double swap is not the identity")
	}
}

func TestIrradianceCacheResizeDropsHistory(t *testing.T) {
	cache := NewIrradianceCache(4, 4)
	cache.Current().Fill([4]float32{3, 3, 3, 1})
	cache.Swap()

	cache.Resize(8, 8)
	if cache.CurrentIndex() != 0 {
		t.Errorf("resize must reset the buffer index")
	}
	if w, h := cache.Current().W, cache.Current().H; w != 8 || h != 8 {
		t.Fatalf("resized buffers are %dx%d, want 8x8", w, h)
	}
	for _, v := range cache.Previous().Pix {
		if v != 0 {
			t.Fatalf("history survived the resize")
		}
	}
}
