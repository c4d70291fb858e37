// Package lightmap implements the illumination pipeline stages on the CPU.
// The WGSL kernels under shaders/ mirror this package stage for stage; the
// CPU path is the reference used by tests and by headless callers.
package lightmap

// Image is a float RGBA grid, row-major, 4 floats per pixel.
type Image struct {
	W, H int
	Pix  []float32
}

func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]float32, w*h*4)}
}

func (img *Image) At(x, y int) [4]float32 {
	i := (y*img.W + x) * 4
	return [4]float32{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

func (img *Image) Set(x, y int, c [4]float32) {
	i := (y*img.W + x) * 4
	img.Pix[i] = c[0]
	img.Pix[i+1] = c[1]
	img.Pix[i+2] = c[2]
	img.Pix[i+3] = c[3]
}

func (img *Image) Fill(c [4]float32) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c[0]
		img.Pix[i+1] = c[1]
		img.Pix[i+2] = c[2]
		img.Pix[i+3] = c[3]
	}
}

func (img *Image) Clone() *Image {
	out := NewImage(img.W, img.H)
	copy(out.Pix, img.Pix)
	return out
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SampleBilinear samples at fractional pixel coordinates with clamp-to-edge
// addressing. Coordinates are pixel centers: (0,0) is the center of the
// first pixel.
func (img *Image) SampleBilinear(fx, fy float32) [4]float32 {
	x0 := int(floor32(fx))
	y0 := int(floor32(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x1 := clampi(x0+1, 0, img.W-1)
	y1 := clampi(y0+1, 0, img.H-1)
	x0 = clampi(x0, 0, img.W-1)
	y0 = clampi(y0, 0, img.H-1)

	c00 := img.At(x0, y0)
	c10 := img.At(x1, y0)
	c01 := img.At(x0, y1)
	c11 := img.At(x1, y1)

	var out [4]float32
	for i := 0; i < 4; i++ {
		top := c00[i]*(1-tx) + c10[i]*tx
		bot := c01[i]*(1-tx) + c11[i]*tx
		out[i] = top*(1-ty) + bot*ty
	}
	return out
}

// AddScaled accumulates src*scale into dst. Both images must share
// dimensions.
func AddScaled(dst, src *Image, scale float32) {
	for i := range dst.Pix {
		dst.Pix[i] += src.Pix[i] * scale
	}
}

// Scale multiplies every channel in place.
func (img *Image) Scale(s float32) {
	for i := range img.Pix {
		img.Pix[i] *= s
	}
}
