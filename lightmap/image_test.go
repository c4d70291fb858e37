package lightmap

import "testing"

func TestImageSampleBilinearClampsToEdge(t *testing.T) {
	img := NewImage(4, 4)
	img.Fill([4]float32{1, 2, 3, 1})

	for _, p := range [][2]float32{{-5, -5}, {10, 1}, {1.5, 20}} {
		c := img.SampleBilinear(p[0], p[1])
		if c[0] != 1 || c[1] != 2 || c[2] != 3 {
			t.Fatalf("sample at %v = %v, want clamped constant", p, c)
		}
	}
}

func TestImageSampleBilinearInterpolates(t *testing.T) {
	img := NewImage(2, 1)
	img.Set(0, 0, [4]float32{0, 0, 0, 1})
	img.Set(1, 0, [4]float32{4, 4, 4, 1})

	c := img.SampleBilinear(0.5, 0)
	if c[0] != 2 {
		t.Errorf("midpoint sample = %v, want 2", c[0])
	}
}

func TestAddScaled(t *testing.T) {
	dst := constImage(2, 2, [4]float32{1, 1, 1, 1})
	src := constImage(2, 2, [4]float32{2, 2, 2, 1})
	AddScaled(dst, src, 0.5)

	if c := dst.At(0, 0); c[0] != 2 {
		t.Errorf("dst = %v, want 1 + 2*0.5", c[0])
	}
}
