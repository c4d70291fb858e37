package lightmap

// IrradianceCache is the double-buffered temporal accumulation store. At
// any time exactly one buffer is "current" (written this frame) and one is
// "previous" (read this frame); Swap toggles the index, never copies
// contents, and the two buffers are never aliased.
type IrradianceCache struct {
	bufs    [2]*Image
	current int
}

func NewIrradianceCache(w, h int) *IrradianceCache {
	return &IrradianceCache{
		bufs: [2]*Image{NewImage(w, h), NewImage(w, h)},
	}
}

// Current is the buffer written this frame.
func (c *IrradianceCache) Current() *Image { return c.bufs[c.current] }

// Previous is the buffer accumulated up to the last completed frame. The
// bounce stage and the temporal blend read it.
func (c *IrradianceCache) Previous() *Image { return c.bufs[1-c.current] }

// CurrentIndex reports which buffer is current, for GPU-side mirroring.
func (c *IrradianceCache) CurrentIndex() int { return c.current }

// Swap flips buffer roles. Called once per completed frame, after all
// readers of Previous have finished.
func (c *IrradianceCache) Swap() { c.current = 1 - c.current }

// Resize reallocates both buffers, dropping all history.
func (c *IrradianceCache) Resize(w, h int) {
	c.bufs[0] = NewImage(w, h)
	c.bufs[1] = NewImage(w, h)
	c.current = 0
}

// BlendTemporal writes dst = raw*(1-w) + prev*w with w = retention *
// multiplier. The multiplier comes from the projection change signal and is
// clamped to [floor, 1] upstream, so history is never fully discarded and
// new data is never fully ignored.
func BlendTemporal(dst, raw, prev *Image, retention, multiplier float32) {
	w := retention * multiplier
	if w < 0 {
		w = 0
	}
	if w > 1 {
		w = 1
	}
	for i := range dst.Pix {
		dst.Pix[i] = raw.Pix[i]*(1-w) + prev.Pix[i]*w
	}
}
